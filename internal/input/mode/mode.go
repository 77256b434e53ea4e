// Package mode provides the global mode registry plugins register editing
// modes with.
package mode

import (
	"fmt"
	"sort"
	"sync"
)

// Metadata describes an editing mode.
type Metadata struct {
	// ID is the unique mode identifier (e.g., "normal", "marks").
	ID string

	// Name is a human-readable name for the status line.
	Name string

	// Description explains what the mode is for.
	Description string

	// HidesCursor hides the cursor while the mode is active.
	HidesCursor bool
}

// Registry holds every registered mode by id.
type Registry struct {
	mu    sync.RWMutex
	modes map[string]Metadata
}

// NewRegistry creates an empty mode registry.
func NewRegistry() *Registry {
	return &Registry{modes: make(map[string]Metadata)}
}

// Register adds a mode. Registering an id that already exists is an error.
func (r *Registry) Register(md Metadata) error {
	if md.ID == "" {
		return fmt.Errorf("mode id cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.modes[md.ID]; exists {
		return fmt.Errorf("mode %q is already registered", md.ID)
	}
	r.modes[md.ID] = md
	return nil
}

// Deregister removes a mode by id. Unknown ids are a no-op.
func (r *Registry) Deregister(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.modes, id)
}

// Get returns a mode by id.
func (r *Registry) Get(id string) (Metadata, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	md, ok := r.modes[id]
	return md, ok
}

// Names returns all registered mode ids, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.modes))
	for id := range r.modes {
		names = append(names, id)
	}
	sort.Strings(names)
	return names
}
