// Package pills holds the registry of minimized bulk operations. Each active
// operation that the operator has collapsed out of modal view owns exactly one
// pill, keyed by its operation kind. Only the owning controller ever writes an
// entry; readers get copies.
package pills

import (
	"sort"
	"sync"

	"github.com/ardenvale/illuminator-go/internal/models"
)

// Registry is a keyed store of pill entries with single-writer-per-key
// discipline.
type Registry struct {
	mu    sync.RWMutex
	pills map[string]models.Pill
}

// NewRegistry creates an empty pill registry.
func NewRegistry() *Registry {
	return &Registry{pills: make(map[string]models.Pill)}
}

// Set creates or replaces the pill for its ID.
func (r *Registry) Set(p models.Pill) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pills[p.ID] = p
}

// Update applies a partial update to an existing pill. Missing IDs are
// ignored; a pill must have been minimized into existence first.
func (r *Registry) Update(id string, statusText, statusColor string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.pills[id]
	if !ok {
		return
	}
	p.StatusText = statusText
	p.StatusColor = statusColor
	r.pills[id] = p
}

// Remove deletes the pill for the given ID. Removing an absent pill is a no-op.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.pills, id)
}

// IsMinimized reports whether a pill currently exists for the given ID.
func (r *Registry) IsMinimized(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.pills[id]
	return ok
}

// Get returns a copy of the pill for the given ID.
func (r *Registry) Get(id string) (models.Pill, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.pills[id]
	return p, ok
}

// List returns all pills ordered by ID so the UI renders them stably.
func (r *Registry) List() []models.Pill {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.Pill, 0, len(r.pills))
	for _, p := range r.pills {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
