package plugin

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// Registry is the catalog mapping plugin names to their definitions. It is
// an explicit object owned by the host and injected into each Manager, not
// an ambient singleton. It is shared across sessions: effectively
// write-once-per-name, read-many.
type Registry struct {
	mu          sync.RWMutex
	definitions map[string]Definition
}

// NewRegistry creates an empty plugin registry.
func NewRegistry() *Registry {
	return &Registry{definitions: make(map[string]Definition)}
}

// Register fills metadata defaults and stores the definition. Registering a
// name that already exists silently replaces the previous definition.
// A missing Disable is wrapped with the default disable: unwind every
// registration once, then always fail with ErrDisableUnsupported.
func (r *Registry) Register(def Definition) error {
	if def.Name == "" {
		return fmt.Errorf("plugin name cannot be empty")
	}
	if def.Enable == nil {
		return fmt.Errorf("plugin %q: enable function is required", def.Name)
	}

	if def.Version == 0 {
		def.Version = DefaultVersion
	}
	if def.Author == "" {
		def.Author = DefaultAuthor
	}
	if def.Disable == nil {
		def.Disable = defaultDisable(def.Name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.definitions[def.Name] = def
	return nil
}

// Get returns the definition registered under name.
func (r *Registry) Get(name string) (Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.definitions[name]
	return def, ok
}

// Has reports whether a definition is registered under name.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.definitions[name]
	return ok
}

// All returns a copy of the full name-to-definition mapping.
func (r *Registry) All() map[string]Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]Definition, len(r.definitions))
	for name, def := range r.definitions {
		out[name] = def
	}
	return out
}

// Names returns all registered plugin names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.definitions))
	for name := range r.definitions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// defaultDisable builds the disable substituted for plugins that supply
// none. The unwind runs at most once no matter how many times the wrapper is
// invoked; the error is returned every time.
func defaultDisable(name string) DisableFunc {
	var once sync.Once
	return func(_ context.Context, api *API, _ any) error {
		once.Do(func() {
			if api != nil {
				api.DeregisterAll()
			}
		})
		return fmt.Errorf("plugin %q: %w", name, ErrDisableUnsupported)
	}
}
