// Package keymap provides the key-binding registries plugins attach to: the
// per-mode default mapping table and the named motion/action definitions.
package keymap

import (
	"fmt"
	"sync"
)

// Mappings maps a key sequence (e.g., "ctrl+m", "gg") to the name of the
// motion or action it triggers.
type Mappings map[string]string

// Defaults holds the default key mappings per mode.
type Defaults struct {
	mu    sync.RWMutex
	modes map[string]Mappings
}

// NewDefaults creates an empty default-mapping registry.
func NewDefaults() *Defaults {
	return &Defaults{modes: make(map[string]Mappings)}
}

// RegisterModeMappings merges mappings into a mode's table. A key that is
// already bound in that mode rejects the whole call, leaving the table
// untouched.
func (d *Defaults) RegisterModeMappings(modeID string, mappings Mappings) error {
	if modeID == "" {
		return fmt.Errorf("mode id cannot be empty")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	current := d.modes[modeID]
	for keys := range mappings {
		if _, bound := current[keys]; bound {
			return fmt.Errorf("mode %q: key %q is already mapped", modeID, keys)
		}
	}

	if current == nil {
		current = make(Mappings, len(mappings))
		d.modes[modeID] = current
	}
	for keys, command := range mappings {
		current[keys] = command
	}
	return nil
}

// DeregisterModeMappings removes exactly the given keys from a mode's table.
func (d *Defaults) DeregisterModeMappings(modeID string, mappings Mappings) {
	d.mu.Lock()
	defer d.mu.Unlock()

	current, ok := d.modes[modeID]
	if !ok {
		return
	}
	for keys := range mappings {
		delete(current, keys)
	}
	if len(current) == 0 {
		delete(d.modes, modeID)
	}
}

// ForMode returns a copy of a mode's mapping table.
func (d *Defaults) ForMode(modeID string) Mappings {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make(Mappings, len(d.modes[modeID]))
	for keys, command := range d.modes[modeID] {
		out[keys] = command
	}
	return out
}

// Lookup resolves a key sequence in a mode.
func (d *Defaults) Lookup(modeID, keys string) (string, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	command, ok := d.modes[modeID][keys]
	return command, ok
}
