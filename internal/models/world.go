// This file defines the core data structures (models) for the application.
// These structs represent the simulated world's entities, chronicles, and the
// historian material layered on top of them.

package models

import "time"

// Entity represents a single inhabitant, place, or artifact of the simulated
// world. Description and Tone are filled in by illumination runs; the rest
// comes from the world export.
type Entity struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Kind        string    `json:"kind"` // "person", "place", "artifact", "faction"
	Era         string    `json:"era"`
	Description string    `json:"description"`
	Tone        string    `json:"tone"`
	Backported  bool      `json:"backported"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Chronicle is a narrative passage covering a slice of the world's history.
type Chronicle struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Era       string    `json:"era"`
	Tone      string    `json:"tone"`
	CreatedAt time.Time `json:"-"` // Hide from JSON responses
	UpdatedAt time.Time `json:"-"` // Hide from JSON responses
}

// Annotation is a historian's margin note attached to a chronicle. AnchorText
// is the quoted passage the note hangs off; AnchorOffset is the byte offset
// where the anchor was last located in the body.
type Annotation struct {
	ID           int64     `json:"id"`
	ChronicleID  int64     `json:"chronicle_id"`
	AnchorText   string    `json:"anchor_text"`
	AnchorOffset int       `json:"anchor_offset"`
	Body         string    `json:"body"`
	CreatedAt    time.Time `json:"created_at"`
}

// CohesionIssue records a consistency problem found by the cohesion sweep,
// e.g. a chronicle that names an entity the world export no longer contains.
type CohesionIssue struct {
	ID          int64     `json:"id"`
	ChronicleID int64     `json:"chronicle_id"`
	EntityName  string    `json:"entity_name"`
	Detail      string    `json:"detail"`
	Resolved    bool      `json:"resolved"`
	CreatedAt   time.Time `json:"created_at"`
}

// GeneratedImage is a stored illustration produced for an entity, kept as a
// data URI thumbnail plus the prompt that produced it.
type GeneratedImage struct {
	ID        int64     `json:"id"`
	EntityID  int64     `json:"entity_id"`
	Prompt    string    `json:"prompt"`
	Thumbnail string    `json:"thumbnail"`
	CreatedAt time.Time `json:"created_at"`
}
