package bulkop

import (
	"fmt"
	"math"

	"github.com/ardenvale/illuminator-go/internal/models"
)

// This file holds the shared progress/terminal display helpers. Every bulk
// modal and the pill render from these so percentage rounding, bar colors and
// terminal copy stay consistent across operation kinds.

// Percent converts processed/total into a rounded 0-100 percentage. A run
// with nothing to do reads as fully complete.
func Percent(processed, total int) int {
	if total <= 0 {
		return 100
	}
	return int(math.Round(float64(processed) / float64(total) * 100))
}

// StatusColor is the derivation table shared by progress bars and pills.
func StatusColor(s Status) string {
	switch s {
	case StatusRunning:
		return "amber"
	case StatusComplete:
		return "green"
	case StatusFailed:
		return "red"
	case StatusCancelled:
		return "amber"
	default:
		return "gray"
	}
}

// StatusText renders the one-line summary shown in pills and the progress
// banner.
func StatusText(p Progress) string {
	switch p.Status {
	case StatusConfirming:
		return fmt.Sprintf("Awaiting confirmation (%d items)", p.TotalItems)
	case StatusRunning:
		if p.CurrentItem != nil {
			return fmt.Sprintf("%d of %d: %s", p.ProcessedItems, p.TotalItems, p.CurrentItem.Describe())
		}
		return fmt.Sprintf("%d of %d", p.ProcessedItems, p.TotalItems)
	case StatusComplete, StatusCancelled, StatusFailed:
		return TerminalMessage(p)
	default:
		return ""
	}
}

// TerminalMessage differentiates the three terminal banners. A complete run
// with per-item failures still reports them.
func TerminalMessage(p Progress) string {
	switch p.Status {
	case StatusComplete:
		if n := len(p.FailedItems); n > 0 {
			return fmt.Sprintf("Completed %d of %d (%d failed)", p.ProcessedItems, p.TotalItems, n)
		}
		return fmt.Sprintf("Completed %d of %d", p.ProcessedItems, p.TotalItems)
	case StatusCancelled:
		return fmt.Sprintf("Cancelled after processing %d of %d", p.ProcessedItems, p.TotalItems)
	case StatusFailed:
		return fmt.Sprintf("Failed: %s", p.Error)
	default:
		return ""
	}
}

// Update projects a progress snapshot into the WebSocket wire payload.
func Update(p Progress) models.ProgressUpdate {
	return models.ProgressUpdate{
		OpKind:   p.Kind,
		RunID:    p.RunID,
		Message:  StatusText(p),
		Progress: float64(Percent(p.ProcessedItems, p.TotalItems)),
		Status:   string(p.Status),
		Cost:     p.TotalCost,
		Done:     p.Status.Terminal(),
	}
}
