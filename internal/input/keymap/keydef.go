package keymap

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// MotionFunc moves a cursor-like position. Arguments are supplied by the
// dispatcher at invocation time.
type MotionFunc func(ctx context.Context, args map[string]any) (any, error)

// ActionFunc performs an editing action.
type ActionFunc func(ctx context.Context, args map[string]any) error

// Motion is a named, dispatchable cursor movement.
type Motion struct {
	Name        string
	Description string
	Fn          MotionFunc
}

// Action is a named, dispatchable editing command.
type Action struct {
	Name        string
	Description string
	Fn          ActionFunc
}

// Definitions is the key-definition registry holding every named motion and
// action mappings can refer to.
type Definitions struct {
	mu      sync.RWMutex
	motions map[string]Motion
	actions map[string]Action
}

// NewDefinitions creates an empty key-definition registry.
func NewDefinitions() *Definitions {
	return &Definitions{
		motions: make(map[string]Motion),
		actions: make(map[string]Action),
	}
}

// RegisterMotion adds a motion. A duplicate name is an error.
func (d *Definitions) RegisterMotion(m Motion) error {
	if m.Name == "" {
		return fmt.Errorf("motion name cannot be empty")
	}
	if m.Fn == nil {
		return fmt.Errorf("motion %q: nil function", m.Name)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.motions[m.Name]; exists {
		return fmt.Errorf("motion %q is already registered", m.Name)
	}
	d.motions[m.Name] = m
	return nil
}

// DeregisterMotion removes a motion by name. Unknown names are a no-op.
func (d *Definitions) DeregisterMotion(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.motions, name)
}

// RegisterAction adds an action. A duplicate name is an error.
func (d *Definitions) RegisterAction(a Action) error {
	if a.Name == "" {
		return fmt.Errorf("action name cannot be empty")
	}
	if a.Fn == nil {
		return fmt.Errorf("action %q: nil function", a.Name)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.actions[a.Name]; exists {
		return fmt.Errorf("action %q is already registered", a.Name)
	}
	d.actions[a.Name] = a
	return nil
}

// DeregisterAction removes an action by name. Unknown names are a no-op.
func (d *Definitions) DeregisterAction(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.actions, name)
}

// Motion returns a motion by name.
func (d *Definitions) Motion(name string) (Motion, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	m, ok := d.motions[name]
	return m, ok
}

// Action returns an action by name.
func (d *Definitions) Action(name string) (Action, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	a, ok := d.actions[name]
	return a, ok
}

// MotionNames returns all registered motion names, sorted.
func (d *Definitions) MotionNames() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	names := make([]string, 0, len(d.motions))
	for name := range d.motions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ActionNames returns all registered action names, sorted.
func (d *Definitions) ActionNames() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	names := make([]string, 0, len(d.actions))
	for name := range d.actions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
