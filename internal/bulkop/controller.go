// Package bulkop drives long-running, batched, cancellable illumination
// operations. A Controller owns one operation kind (bulk backport, historian
// annotation, tone rewrite, ...) and walks it through a strict lifecycle:
//
//	idle -> confirming -> running -> complete | cancelled | failed -> idle
//
// The controller is payload-agnostic: the actual LLM work happens in a
// DispatchFunc supplied per kind. UI layers read Snapshot() and subscribe for
// change notifications; they never mutate controller state directly.
package bulkop

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"

	"github.com/ardenvale/illuminator-go/internal/models"
)

// Status is the lifecycle phase of a bulk operation.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusConfirming Status = "confirming"
	StatusRunning    Status = "running"
	StatusComplete   Status = "complete"
	StatusCancelled  Status = "cancelled"
	StatusFailed     Status = "failed"
)

// Terminal reports whether no further automatic transitions occur.
func (s Status) Terminal() bool {
	return s == StatusComplete || s == StatusCancelled || s == StatusFailed
}

// ItemResult is what a dispatcher returns for one successfully processed item.
type ItemResult struct {
	Output string
	Cost   float64
}

// DispatchFunc performs the work for a single item. A plain error is recorded
// as a per-item failure and the run continues; an error wrapping ErrFatal
// aborts the whole run.
type DispatchFunc func(ctx context.Context, item models.WorkItem) (*ItemResult, error)

// FailedItem pairs a work item with the error that sank it.
type FailedItem struct {
	Item  models.WorkItem `json:"item"`
	Error string          `json:"error"`
}

// Progress is the read model exposed to UI layers. It is always a copy;
// holding one never observes later mutations.
type Progress struct {
	Kind           string           `json:"kind"`
	Label          string           `json:"label"`
	RunID          string           `json:"run_id,omitempty"`
	Status         Status           `json:"status"`
	TotalItems     int              `json:"total_items"`
	ProcessedItems int              `json:"processed_items"`
	CurrentItem    *models.WorkItem `json:"current_item,omitempty"`
	FailedItems    []FailedItem     `json:"failed_items,omitempty"`
	TotalCost      float64          `json:"total_cost"`
	Error          string           `json:"error,omitempty"`
	Minimized      bool             `json:"minimized"`
	PillLabel      string           `json:"-"`
	TabID          string           `json:"-"`
}

// SucceededCount derives the number of items that completed without error.
func (p Progress) SucceededCount() int {
	return p.ProcessedItems - len(p.FailedItems)
}

// Options tunes one confirmation/run cycle.
type Options struct {
	// BatchSize > 1 dispatches that many items concurrently per batch. The
	// per-item ordering guarantee then relaxes to per-batch completion.
	BatchSize int
}

// PillMeta is the display metadata captured when the operator minimizes the
// operation's modal.
type PillMeta struct {
	Label string `json:"label"`
	TabID string `json:"tab_id,omitempty"`
}

// Controller is the single writer of one operation kind's progress state.
type Controller struct {
	kind     string
	label    string
	dispatch DispatchFunc

	mu         sync.Mutex
	status     Status
	runID      string
	items      []models.WorkItem
	batchSize  int
	processed  int
	current    *models.WorkItem
	failed     []FailedItem
	totalCost  float64
	lastError  string
	minimized  bool
	pillLabel  string
	tabID      string
	listeners  []func(Progress)
}

// NewController creates an idle controller for one operation kind.
func NewController(kind, label string, dispatch DispatchFunc) *Controller {
	return &Controller{
		kind:     kind,
		label:    label,
		status:   StatusIdle,
		dispatch: dispatch,
	}
}

// Kind returns the stable operation kind identifier.
func (c *Controller) Kind() string { return c.kind }

// Subscribe registers a listener invoked with a fresh snapshot after every
// state change. Listeners must not call back into the controller's mutating
// operations.
func (c *Controller) Subscribe(fn func(Progress)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// Snapshot returns a copy of the current progress state.
func (c *Controller) Snapshot() Progress {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Progress {
	p := Progress{
		Kind:           c.kind,
		Label:          c.label,
		RunID:          c.runID,
		Status:         c.status,
		TotalItems:     len(c.items),
		ProcessedItems: c.processed,
		TotalCost:      c.totalCost,
		Error:          c.lastError,
		Minimized:      c.minimized,
		PillLabel:      c.pillLabel,
		TabID:          c.tabID,
	}
	if c.current != nil {
		item := *c.current
		p.CurrentItem = &item
	}
	if len(c.failed) > 0 {
		p.FailedItems = append([]FailedItem(nil), c.failed...)
	}
	return p
}

// notifyLocked snapshots state and schedules listener delivery. The caller
// must hold c.mu; listeners run after it is released.
func (c *Controller) notifyLocked() func() {
	snap := c.snapshotLocked()
	listeners := append([]func(Progress){}, c.listeners...)
	return func() {
		for _, fn := range listeners {
			fn(snap)
		}
	}
}

// BeginConfirmation moves an idle controller into the confirming phase with
// the given work list. It is a silent no-op while an operation of this kind
// is already underway. An empty work list resolves immediately to complete
// so the operation can never hang with nothing to do.
func (c *Controller) BeginConfirmation(items []models.WorkItem, opts Options) {
	c.mu.Lock()
	if c.status != StatusIdle {
		c.mu.Unlock()
		return
	}

	c.runID = uuid.NewString()
	c.items = append([]models.WorkItem(nil), items...)
	c.batchSize = opts.BatchSize
	if c.batchSize < 1 {
		c.batchSize = 1
	}
	c.processed = 0
	c.current = nil
	c.failed = nil
	c.totalCost = 0
	c.lastError = ""
	c.minimized = false

	if len(items) == 0 {
		c.status = StatusComplete
	} else {
		c.status = StatusConfirming
	}
	notify := c.notifyLocked()
	c.mu.Unlock()
	notify()
}

// Confirm starts the run. Valid only from confirming; anywhere else it is a
// no-op, so a re-entrant confirm while already running changes nothing.
func (c *Controller) Confirm(ctx context.Context) {
	c.mu.Lock()
	if c.status != StatusConfirming {
		c.mu.Unlock()
		return
	}
	c.status = StatusRunning
	runID := c.runID
	items := append([]models.WorkItem(nil), c.items...)
	batch := c.batchSize
	notify := c.notifyLocked()
	c.mu.Unlock()
	notify()

	go c.run(ctx, runID, items, batch)
}

// run drives the work list batch by batch. Per-item errors are recorded and
// the run continues; anything escaping the dispatch boundary is batch-fatal.
func (c *Controller) run(ctx context.Context, runID string, items []models.WorkItem, batch int) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Bulk operation %q panicked: %v", c.kind, r)
			c.failRun(runID, fmt.Sprintf("operation panicked: %v", r))
		}
	}()

	for start := 0; start < len(items); start += batch {
		if !c.stillRunning(runID) {
			return
		}
		end := start + batch
		if end > len(items) {
			end = len(items)
		}
		if fatal := c.processBatch(ctx, runID, items[start:end]); fatal != nil {
			c.failRun(runID, fatal.Error())
			return
		}
	}
	c.completeRun(runID)
}

// processBatch dispatches one batch, sequentially for batch size 1 and
// concurrently otherwise. It returns the first fatal error encountered.
func (c *Controller) processBatch(ctx context.Context, runID string, group []models.WorkItem) error {
	if len(group) == 1 {
		return c.processItem(ctx, runID, group[0])
	}

	var wg sync.WaitGroup
	fatals := make([]error, len(group))
	for i, item := range group {
		wg.Add(1)
		go func(i int, item models.WorkItem) {
			defer wg.Done()
			fatals[i] = c.processItem(ctx, runID, item)
		}(i, item)
	}
	wg.Wait()
	for _, err := range fatals {
		if err != nil {
			return err
		}
	}
	return nil
}

func (c *Controller) processItem(ctx context.Context, runID string, item models.WorkItem) error {
	if !c.markInFlight(runID, item) {
		return nil
	}
	res, err := c.safeDispatch(ctx, item)
	if err != nil && errors.Is(err, ErrFatal) {
		return err
	}
	c.recordItemResult(runID, item, res, err)
	return nil
}

// safeDispatch keeps a panicking dispatcher from escaping the per-item
// boundary: the panic becomes that item's failure, not a batch abort.
func (c *Controller) safeDispatch(ctx context.Context, item models.WorkItem) (res *ItemResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			res = nil
			err = fmt.Errorf("dispatch panicked: %v", r)
		}
	}()
	return c.dispatch(ctx, item)
}

func (c *Controller) stillRunning(runID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status == StatusRunning && c.runID == runID
}

func (c *Controller) markInFlight(runID string, item models.WorkItem) bool {
	c.mu.Lock()
	if c.status != StatusRunning || c.runID != runID {
		c.mu.Unlock()
		return false
	}
	c.current = &item
	notify := c.notifyLocked()
	c.mu.Unlock()
	notify()
	return true
}

// recordItemResult advances processedItems and accumulates cost or failure.
// A result arriving after cancellation (or after the run was superseded) is
// discarded so nothing is ever double-counted.
func (c *Controller) recordItemResult(runID string, item models.WorkItem, res *ItemResult, err error) {
	c.mu.Lock()
	if c.status != StatusRunning || c.runID != runID {
		c.mu.Unlock()
		return
	}
	c.processed++
	c.current = nil
	if err != nil {
		c.failed = append(c.failed, FailedItem{Item: item, Error: err.Error()})
	} else if res != nil {
		c.totalCost += res.Cost
	}
	notify := c.notifyLocked()
	c.mu.Unlock()
	notify()
}

func (c *Controller) completeRun(runID string) {
	c.mu.Lock()
	if c.status != StatusRunning || c.runID != runID {
		c.mu.Unlock()
		return
	}
	c.status = StatusComplete
	c.current = nil
	notify := c.notifyLocked()
	c.mu.Unlock()
	notify()
}

func (c *Controller) failRun(runID string, msg string) {
	c.mu.Lock()
	if c.status != StatusRunning || c.runID != runID {
		c.mu.Unlock()
		return
	}
	c.status = StatusFailed
	c.lastError = msg
	c.current = nil
	notify := c.notifyLocked()
	c.mu.Unlock()
	notify()
}

// Cancel stops the operation cooperatively. From confirming it discards the
// work list and returns to idle; from running it stops dispatching further
// items and lands in cancelled. Anywhere else it is a no-op.
func (c *Controller) Cancel() {
	c.mu.Lock()
	switch c.status {
	case StatusConfirming:
		c.resetLocked()
	case StatusRunning:
		c.status = StatusCancelled
		c.current = nil
	default:
		c.mu.Unlock()
		return
	}
	notify := c.notifyLocked()
	c.mu.Unlock()
	notify()
}

// Close returns a terminal operation to idle, clearing failed items, cost and
// any pill. Closing a non-terminal operation is rejected.
func (c *Controller) Close() error {
	c.mu.Lock()
	if !c.status.Terminal() {
		c.mu.Unlock()
		return ErrNotTerminal
	}
	c.resetLocked()
	notify := c.notifyLocked()
	c.mu.Unlock()
	notify()
	return nil
}

func (c *Controller) resetLocked() {
	c.status = StatusIdle
	c.runID = ""
	c.items = nil
	c.processed = 0
	c.current = nil
	c.failed = nil
	c.totalCost = 0
	c.lastError = ""
	c.minimized = false
	c.pillLabel = ""
	c.tabID = ""
}

// Minimize collapses the modal into a pill. Status is untouched; an idle
// operation has nothing to minimize.
func (c *Controller) Minimize(meta PillMeta) {
	c.mu.Lock()
	if c.status == StatusIdle {
		c.mu.Unlock()
		return
	}
	c.minimized = true
	c.pillLabel = meta.Label
	if c.pillLabel == "" {
		c.pillLabel = c.label
	}
	c.tabID = meta.TabID
	notify := c.notifyLocked()
	c.mu.Unlock()
	notify()
}

// Expand restores the modal as the active presentation and drops the pill.
// The modal re-reads live controller state, never a frozen snapshot.
func (c *Controller) Expand() {
	c.mu.Lock()
	c.minimized = false
	notify := c.notifyLocked()
	c.mu.Unlock()
	notify()
}
