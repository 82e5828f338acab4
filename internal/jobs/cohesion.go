package jobs

import (
	"fmt"
	"log"
	"regexp"

	"github.com/ardenvale/illuminator-go/internal/models"
	"github.com/ardenvale/illuminator-go/internal/store"
)

// Chronicles reference entities with [[Entity Name]] markers carried over
// from the world export.
var entityRefPattern = regexp.MustCompile(`\[\[([^\[\]]+)\]\]`)

// RunCohesionSweep walks every chronicle and records an issue for each entity
// reference that the current world export no longer contains.
func RunCohesionSweep(ctx JobContext) {
	st := store.New(ctx.DB())

	names, err := st.ListEntityNames()
	if err != nil {
		log.Printf("Cohesion sweep could not list entities: %v", err)
		return
	}
	known := make(map[string]bool, len(names))
	for _, n := range names {
		known[n] = true
	}

	chronicles, err := st.ListChronicles()
	if err != nil {
		log.Printf("Cohesion sweep could not list chronicles: %v", err)
		return
	}

	found := 0
	for i, c := range chronicles {
		for _, match := range entityRefPattern.FindAllStringSubmatch(c.Body, -1) {
			name := match[1]
			if known[name] {
				continue
			}
			detail := fmt.Sprintf("chronicle %q references unknown entity %q", c.Title, name)
			inserted, err := st.RecordCohesionIssue(c.ID, name, detail)
			if err != nil {
				log.Printf("Cohesion sweep could not record issue: %v", err)
				continue
			}
			if inserted {
				found++
			}
		}

		progress := float64(i+1) / float64(len(chronicles)) * 100
		ctx.WsHub().BroadcastJSON(models.ProgressUpdate{
			OpKind:   "cohesion-sweep",
			Message:  fmt.Sprintf("Checked %d of %d chronicles", i+1, len(chronicles)),
			Progress: progress,
			Status:   "running",
			Done:     false,
		})
	}

	ctx.WsHub().BroadcastJSON(models.ProgressUpdate{
		OpKind:   "cohesion-sweep",
		Message:  fmt.Sprintf("Sweep complete. Found %d unresolved references.", found),
		Progress: 100,
		Status:   "success",
		Done:     true,
	})
}
