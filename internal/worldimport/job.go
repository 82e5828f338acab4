package worldimport

import (
	"fmt"
	"log"

	"github.com/ardenvale/illuminator-go/internal/jobs"
	"github.com/ardenvale/illuminator-go/internal/models"
	"github.com/ardenvale/illuminator-go/internal/store"
)

// RunImportJob is the manual re-import maintenance job: it rescans the export
// directory and reports the outcome over the websocket hub.
func RunImportJob(ctx jobs.JobContext) {
	cfg := ctx.Config()
	st := store.New(ctx.DB())

	ctx.WsHub().BroadcastJSON(models.ProgressUpdate{
		OpKind:   "world-import",
		Message:  "Importing world exports...",
		Progress: 0,
		Status:   "running",
	})

	res, err := ImportDir(st, cfg.World.ExportPath, cfg.World.SchemaVersion)
	if err != nil {
		log.Printf("World import job failed: %v", err)
		ctx.WsHub().BroadcastJSON(models.ProgressUpdate{
			OpKind:   "world-import",
			Message:  fmt.Sprintf("Import failed: %v", err),
			Progress: 100,
			Status:   "failed",
			Done:     true,
		})
		return
	}

	ctx.WsHub().BroadcastJSON(models.ProgressUpdate{
		OpKind: "world-import",
		Message: fmt.Sprintf("Imported %d snapshot(s): %d entities, %d chronicles (%d skipped)",
			res.Files, res.Entities, res.Chronicles, res.Skipped),
		Progress: 100,
		Status:   "success",
		Done:     true,
	})
}
