package bulkop

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardenvale/illuminator-go/internal/models"
	"github.com/ardenvale/illuminator-go/internal/pills"
)

func testItems(n int) []models.WorkItem {
	items := make([]models.WorkItem, n)
	for i := range items {
		items[i] = models.WorkItem{
			Kind:  models.WorkItemChronicle,
			ID:    int64(i + 1),
			Label: fmt.Sprintf("Chronicle %d", i+1),
		}
	}
	return items
}

// waitStatus polls until the controller reaches the wanted status or the
// deadline expires.
func waitStatus(t *testing.T, c *Controller, want Status) Progress {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if p := c.Snapshot(); p.Status == want {
			return p
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("controller never reached status %q, stuck at %q", want, c.Snapshot().Status)
	return Progress{}
}

func TestControllerFullSuccessRun(t *testing.T) {
	var mu sync.Mutex
	var dispatched []int64
	c := NewController("backport", "Bulk Backport", func(ctx context.Context, item models.WorkItem) (*ItemResult, error) {
		mu.Lock()
		dispatched = append(dispatched, item.ID)
		mu.Unlock()
		return &ItemResult{Output: "ok", Cost: 0.25}, nil
	})

	c.BeginConfirmation(testItems(4), Options{})
	assert.Equal(t, StatusConfirming, c.Snapshot().Status)
	assert.Equal(t, 4, c.Snapshot().TotalItems)

	c.Confirm(context.Background())
	p := waitStatus(t, c, StatusComplete)

	assert.Equal(t, 4, p.ProcessedItems)
	assert.Empty(t, p.FailedItems)
	assert.InDelta(t, 1.0, p.TotalCost, 1e-9)
	assert.Nil(t, p.CurrentItem)

	// With batch size 1, items complete in the order they were queued.
	mu.Lock()
	assert.Equal(t, []int64{1, 2, 3, 4}, dispatched)
	mu.Unlock()
}

func TestControllerPerItemFailureContinuesRun(t *testing.T) {
	c := NewController("backport", "Bulk Backport", func(ctx context.Context, item models.WorkItem) (*ItemResult, error) {
		if item.ID == 2 {
			return nil, errors.New("model refused")
		}
		return &ItemResult{Cost: 0.1}, nil
	})

	c.BeginConfirmation(testItems(3), Options{})
	c.Confirm(context.Background())
	p := waitStatus(t, c, StatusComplete)

	// A succeeds, B fails, C succeeds: the run still completes.
	assert.Equal(t, 3, p.ProcessedItems)
	require.Len(t, p.FailedItems, 1)
	assert.Equal(t, int64(2), p.FailedItems[0].Item.ID)
	assert.Equal(t, "model refused", p.FailedItems[0].Error)
	assert.Equal(t, 2, p.SucceededCount())
	// processedItems == failedItems + succeeded at completion.
	assert.Equal(t, p.ProcessedItems, len(p.FailedItems)+p.SucceededCount())
}

func TestControllerFatalErrorAbortsRun(t *testing.T) {
	c := NewController("backport", "Bulk Backport", func(ctx context.Context, item models.WorkItem) (*ItemResult, error) {
		if item.ID == 2 {
			return nil, fmt.Errorf("%w: credentials rejected", ErrFatal)
		}
		return &ItemResult{}, nil
	})

	c.BeginConfirmation(testItems(3), Options{})
	c.Confirm(context.Background())
	p := waitStatus(t, c, StatusFailed)

	assert.Contains(t, p.Error, "credentials rejected")
	// The fatal item is not double-counted as a per-item failure.
	assert.Equal(t, 1, p.ProcessedItems)
	assert.Empty(t, p.FailedItems)
}

func TestControllerDispatchPanicIsPerItemFailure(t *testing.T) {
	c := NewController("backport", "Bulk Backport", func(ctx context.Context, item models.WorkItem) (*ItemResult, error) {
		if item.ID == 1 {
			panic("boom")
		}
		return &ItemResult{}, nil
	})

	c.BeginConfirmation(testItems(2), Options{})
	c.Confirm(context.Background())
	p := waitStatus(t, c, StatusComplete)

	assert.Equal(t, 2, p.ProcessedItems)
	require.Len(t, p.FailedItems, 1)
	assert.Contains(t, p.FailedItems[0].Error, "dispatch panicked")
}

func TestControllerCancelDuringRun(t *testing.T) {
	entered := make(chan int64, 8)
	release := make(chan struct{})
	c := NewController("backport", "Bulk Backport", func(ctx context.Context, item models.WorkItem) (*ItemResult, error) {
		entered <- item.ID
		<-release
		return &ItemResult{}, nil
	})

	c.BeginConfirmation(testItems(2), Options{})
	c.Confirm(context.Background())

	// Let item A finish cleanly.
	<-entered
	release <- struct{}{}

	// Item B enters flight; cancel while it is dispatched.
	<-entered
	c.Cancel()
	p := waitStatus(t, c, StatusCancelled)
	assert.Equal(t, 1, p.ProcessedItems)

	// B's late result arrives after cancellation and is discarded.
	release <- struct{}{}
	time.Sleep(20 * time.Millisecond)
	p = c.Snapshot()
	assert.Equal(t, StatusCancelled, p.Status)
	assert.Equal(t, 1, p.ProcessedItems)
	assert.Empty(t, p.FailedItems)
}

func TestControllerCancelFromConfirmingReturnsToIdle(t *testing.T) {
	c := NewController("backport", "Bulk Backport", nil)
	c.BeginConfirmation(testItems(3), Options{})
	c.Cancel()
	p := c.Snapshot()
	assert.Equal(t, StatusIdle, p.Status)
	assert.Equal(t, 0, p.TotalItems)
}

func TestControllerEmptyWorkListResolvesImmediately(t *testing.T) {
	c := NewController("backport", "Bulk Backport", nil)
	c.BeginConfirmation(nil, Options{})
	p := c.Snapshot()
	// Never hangs in confirming/running with nothing to do.
	assert.Equal(t, StatusComplete, p.Status)
	assert.Equal(t, 0, p.TotalItems)
	assert.Equal(t, 0, p.ProcessedItems)
}

func TestControllerNoOpTransitions(t *testing.T) {
	c := NewController("backport", "Bulk Backport", func(ctx context.Context, item models.WorkItem) (*ItemResult, error) {
		return &ItemResult{}, nil
	})

	// Confirm from idle is a no-op.
	c.Confirm(context.Background())
	assert.Equal(t, StatusIdle, c.Snapshot().Status)

	// Cancel from idle is a no-op.
	c.Cancel()
	assert.Equal(t, StatusIdle, c.Snapshot().Status)

	// BeginConfirmation while non-idle fails silently.
	c.BeginConfirmation(testItems(2), Options{})
	first := c.Snapshot().RunID
	c.BeginConfirmation(testItems(5), Options{})
	p := c.Snapshot()
	assert.Equal(t, first, p.RunID)
	assert.Equal(t, 2, p.TotalItems)

	c.Confirm(context.Background())
	waitStatus(t, c, StatusComplete)

	// Cancel after a terminal status is a no-op.
	c.Cancel()
	assert.Equal(t, StatusComplete, c.Snapshot().Status)
}

func TestControllerCloseLifecycle(t *testing.T) {
	c := NewController("backport", "Bulk Backport", func(ctx context.Context, item models.WorkItem) (*ItemResult, error) {
		if item.ID == 1 {
			return nil, errors.New("nope")
		}
		return &ItemResult{Cost: 1}, nil
	})

	c.BeginConfirmation(testItems(2), Options{})

	// Close is rejected before a terminal state.
	assert.ErrorIs(t, c.Close(), ErrNotTerminal)

	c.Confirm(context.Background())
	waitStatus(t, c, StatusComplete)

	require.NoError(t, c.Close())
	p := c.Snapshot()
	assert.Equal(t, StatusIdle, p.Status)
	assert.Empty(t, p.FailedItems)
	assert.Zero(t, p.TotalCost)
	assert.Zero(t, p.TotalItems)
}

func TestControllerStatusOnlyMovesForward(t *testing.T) {
	order := map[Status]int{
		StatusIdle:       0,
		StatusConfirming: 1,
		StatusRunning:    2,
		StatusComplete:   3,
		StatusCancelled:  3,
		StatusFailed:     3,
	}

	var mu sync.Mutex
	var seen []Status
	c := NewController("backport", "Bulk Backport", func(ctx context.Context, item models.WorkItem) (*ItemResult, error) {
		return &ItemResult{}, nil
	})
	c.Subscribe(func(p Progress) {
		mu.Lock()
		seen = append(seen, p.Status)
		mu.Unlock()
	})

	c.BeginConfirmation(testItems(3), Options{})
	c.Confirm(context.Background())
	waitStatus(t, c, StatusComplete)
	require.NoError(t, c.Close())

	mu.Lock()
	defer mu.Unlock()
	prev := 0
	closed := false
	for _, s := range seen {
		if s == StatusIdle && prev == 3 {
			closed = true // explicit close wraps back to idle
			prev = 0
			continue
		}
		rank := order[s]
		if rank < prev {
			t.Fatalf("status moved backwards: %v", seen)
		}
		prev = rank
	}
	assert.True(t, closed, "expected the lifecycle to end back at idle")
}

func TestControllerNotifiesEverySubscriber(t *testing.T) {
	c := NewController("backport", "Bulk Backport", func(ctx context.Context, item models.WorkItem) (*ItemResult, error) {
		return &ItemResult{}, nil
	})

	var mu sync.Mutex
	var counts [3]int
	for i := range counts {
		c.Subscribe(func(p Progress) {
			mu.Lock()
			counts[i]++
			mu.Unlock()
		})
	}

	c.BeginConfirmation(testItems(2), Options{})
	c.Confirm(context.Background())
	waitStatus(t, c, StatusComplete)

	mu.Lock()
	defer mu.Unlock()
	assert.Greater(t, counts[0], 0)
	assert.Equal(t, counts[0], counts[1])
	assert.Equal(t, counts[0], counts[2])
}

func TestControllerBatchedRun(t *testing.T) {
	var mu sync.Mutex
	inFlight, peak := 0, 0
	c := NewController("annotate", "Historian Annotation", func(ctx context.Context, item models.WorkItem) (*ItemResult, error) {
		mu.Lock()
		inFlight++
		if inFlight > peak {
			peak = inFlight
		}
		mu.Unlock()
		time.Sleep(10 * time.Millisecond)
		mu.Lock()
		inFlight--
		mu.Unlock()
		return &ItemResult{Cost: 0.5}, nil
	})

	c.BeginConfirmation(testItems(6), Options{BatchSize: 3})
	c.Confirm(context.Background())
	p := waitStatus(t, c, StatusComplete)

	assert.Equal(t, 6, p.ProcessedItems)
	assert.InDelta(t, 3.0, p.TotalCost, 1e-9)
	mu.Lock()
	assert.LessOrEqual(t, peak, 3, "batch size bounds concurrency")
	assert.Greater(t, peak, 1, "batched items dispatch concurrently")
	mu.Unlock()
}

func TestControllerPillLifecycle(t *testing.T) {
	entered := make(chan struct{}, 4)
	release := make(chan struct{})
	c := NewController("tone-rewrite", "Tone Rewrite", func(ctx context.Context, item models.WorkItem) (*ItemResult, error) {
		entered <- struct{}{}
		<-release
		return &ItemResult{}, nil
	})
	registry := pills.NewRegistry()
	BindPills(c, registry)

	c.BeginConfirmation(testItems(2), Options{})
	// Not minimized yet: no pill even though the operation is active.
	assert.False(t, registry.IsMinimized("tone-rewrite"))

	c.Confirm(context.Background())
	<-entered
	c.Minimize(PillMeta{Label: "Rewriting tones", TabID: "chronicles"})

	pill, ok := registry.Get("tone-rewrite")
	require.True(t, ok)
	assert.Equal(t, "Rewriting tones", pill.Label)
	assert.Equal(t, "amber", pill.StatusColor)
	assert.Equal(t, "chronicles", pill.TabID)

	// An item completing while minimized updates the pill without the modal.
	release <- struct{}{}
	<-entered
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		pill, _ = registry.Get("tone-rewrite")
		if pill.StatusText == "1 of 2: Chronicle \"Chronicle 2\"" {
			break
		}
		time.Sleep(2 * time.Millisecond)
	}
	assert.Contains(t, pill.StatusText, "1 of 2")

	// Expanding restores the modal and drops the pill; status is untouched.
	c.Expand()
	assert.False(t, registry.IsMinimized("tone-rewrite"))
	assert.Equal(t, StatusRunning, c.Snapshot().Status)

	// Finish the run minimized again, then close: the pill goes with it.
	c.Minimize(PillMeta{})
	release <- struct{}{}
	p := waitStatus(t, c, StatusComplete)
	assert.True(t, p.Minimized)
	pill, _ = registry.Get("tone-rewrite")
	assert.Equal(t, "green", pill.StatusColor)

	require.NoError(t, c.Close())
	assert.False(t, registry.IsMinimized("tone-rewrite"))
}

func TestRegistrySingleInstancePerKind(t *testing.T) {
	r := NewRegistry()
	c := NewController("backport", "Bulk Backport", nil)
	r.Register(c)

	assert.Same(t, c, r.Get("backport"))
	assert.Nil(t, r.Get("unknown"))
	assert.Panics(t, func() { r.Register(NewController("backport", "dup", nil)) })

	snaps := r.Snapshots()
	require.Len(t, snaps, 1)
	assert.Equal(t, StatusIdle, snaps[0].Status)
}
