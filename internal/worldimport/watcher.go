// This file implements a file system watcher for the world export directory.
// New or rewritten export files trigger a debounced re-import.

package worldimport

import (
	"log"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ardenvale/illuminator-go/internal/jobs"
	"github.com/ardenvale/illuminator-go/internal/store"
)

// WatcherService watches the export directory and re-imports snapshots when
// the simulation writes new ones.
type WatcherService struct {
	ctx           jobs.JobContext
	watcher       *fsnotify.Watcher
	changedFiles  map[string]bool
	mu            sync.Mutex
	debounceTimer *time.Timer
	debounceDelay time.Duration
	stopChan      chan struct{}
}

// NewWatcherService creates a new export directory watcher.
func NewWatcherService(ctx jobs.JobContext) *WatcherService {
	return &WatcherService{
		ctx:           ctx,
		changedFiles:  make(map[string]bool),
		debounceDelay: 2 * time.Second, // Wait 2 seconds after last change before importing
		stopChan:      make(chan struct{}),
	}
}

// Start begins watching the export directory for changes.
func (w *WatcherService) Start() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	w.watcher = watcher

	exportPath := w.ctx.Config().World.ExportPath
	if err := watcher.Add(exportPath); err != nil {
		watcher.Close()
		return err
	}

	log.Printf("Export watcher started for: %s", exportPath)

	go w.processEvents()
	return nil
}

// Stop stops the watcher.
func (w *WatcherService) Stop() error {
	close(w.stopChan)
	if w.watcher != nil {
		return w.watcher.Close()
	}
	return nil
}

func (w *WatcherService) processEvents() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("Export watcher error: %v", err)

		case <-w.stopChan:
			return
		}
	}
}

func (w *WatcherService) handleEvent(event fsnotify.Event) {
	// Chmod events fire when the directory is merely browsed.
	if event.Op == fsnotify.Chmod {
		return
	}
	if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) {
		return
	}
	if !IsSnapshotFile(event.Name) {
		return
	}

	w.mu.Lock()
	w.changedFiles[event.Name] = true
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(w.debounceDelay, w.triggerImport)
	w.mu.Unlock()
}

// TriggerImport manually schedules an import pass, debounced like a file event.
func (w *WatcherService) TriggerImport() {
	w.mu.Lock()
	w.changedFiles["<manual>"] = true
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(w.debounceDelay, w.triggerImport)
	w.mu.Unlock()
}

func (w *WatcherService) triggerImport() {
	w.mu.Lock()
	if len(w.changedFiles) == 0 {
		w.mu.Unlock()
		return
	}
	changed := len(w.changedFiles)
	w.changedFiles = make(map[string]bool)
	w.mu.Unlock()

	log.Printf("Export watcher detected %d changed file(s), re-importing", changed)

	go func() {
		cfg := w.ctx.Config()
		st := store.New(w.ctx.DB())
		res, err := ImportDir(st, cfg.World.ExportPath, cfg.World.SchemaVersion)
		if err != nil {
			log.Printf("Export import error: %v", err)
			return
		}
		log.Printf("Imported %d snapshot(s): %d entities, %d chronicles (%d skipped)",
			res.Files, res.Entities, res.Chronicles, res.Skipped)
	}()
}
