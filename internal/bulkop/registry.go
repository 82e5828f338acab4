package bulkop

import (
	"sort"
	"sync"
)

// Registry holds the single controller instance per operation kind. Exactly
// one progress state is visible per kind at a time; duplicate concurrent runs
// of the same bulk type are impossible by construction.
type Registry struct {
	mu          sync.RWMutex
	controllers map[string]*Controller
}

// NewRegistry creates an empty controller registry.
func NewRegistry() *Registry {
	return &Registry{controllers: make(map[string]*Controller)}
}

// Register adds a controller under its kind. Registering the same kind twice
// is a programming error and panics early.
func (r *Registry) Register(c *Controller) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.controllers[c.Kind()]; exists {
		panic("bulkop: duplicate controller kind " + c.Kind())
	}
	r.controllers[c.Kind()] = c
}

// Get returns the controller for a kind, or nil when the kind is unknown.
func (r *Registry) Get(kind string) *Controller {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.controllers[kind]
}

// Snapshots returns the progress of every registered controller, ordered by
// kind for stable rendering.
func (r *Registry) Snapshots() []Progress {
	r.mu.RLock()
	controllers := make([]*Controller, 0, len(r.controllers))
	for _, c := range r.controllers {
		controllers = append(controllers, c)
	}
	r.mu.RUnlock()

	out := make([]Progress, 0, len(controllers))
	for _, c := range controllers {
		out = append(out, c.Snapshot())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Kind < out[j].Kind })
	return out
}
