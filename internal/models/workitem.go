// This file defines the unit of work flowing through bulk operations. A work
// item is a tagged union: it refers to either a chronicle or an entity, and
// carries just enough display metadata for confirmation lists and the
// current-item banner without exposing the full record.

package models

import "fmt"

// WorkItemKind discriminates the WorkItem union.
type WorkItemKind string

const (
	WorkItemChronicle WorkItemKind = "chronicle"
	WorkItemEntity    WorkItemKind = "entity"
)

// WorkItem is one unit of work in a bulk operation's queue.
type WorkItem struct {
	Kind  WorkItemKind `json:"kind"`
	ID    int64        `json:"id"`
	Label string       `json:"label"` // chronicle title or entity name
	Tone  string       `json:"tone"`  // tone/category tag for display
}

// ChronicleItem builds a work item referring to a chronicle.
func ChronicleItem(c *Chronicle) WorkItem {
	return WorkItem{Kind: WorkItemChronicle, ID: c.ID, Label: c.Title, Tone: c.Tone}
}

// EntityItem builds a work item referring to an entity.
func EntityItem(e *Entity) WorkItem {
	return WorkItem{Kind: WorkItemEntity, ID: e.ID, Label: e.Name, Tone: e.Tone}
}

// Describe returns the banner string shown while the item is in flight.
func (w WorkItem) Describe() string {
	switch w.Kind {
	case WorkItemChronicle:
		return fmt.Sprintf("Chronicle %q", w.Label)
	case WorkItemEntity:
		return fmt.Sprintf("Entity %q", w.Label)
	default:
		return w.Label
	}
}
