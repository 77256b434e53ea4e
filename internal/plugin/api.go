package plugin

import (
	"fmt"
	"sync"

	"github.com/dshills/plugkit/internal/event"
	"github.com/dshills/plugkit/internal/input/keymap"
	"github.com/dshills/plugkit/internal/input/mode"
	"github.com/dshills/plugkit/internal/session"
)

// EmitterTarget selects which collaborator emitter a listener or hook
// attaches to. It is a closed set; out-of-range values fail with
// ErrUnknownEmitter.
type EmitterTarget int

const (
	// TargetDocument is the document emitter.
	TargetDocument EmitterTarget = iota

	// TargetSession is the session emitter.
	TargetSession
)

// String returns a string representation of the target.
func (t EmitterTarget) String() string {
	switch t {
	case TargetDocument:
		return "document"
	case TargetSession:
		return "session"
	default:
		return "unknown"
	}
}

// Env bundles the collaborator subsystems capability registrations attach
// to. All fields are required.
type Env struct {
	Session  *session.Session
	Modes    *mode.Registry
	Defaults *keymap.Defaults
	KeyDefs  *keymap.Definitions
}

// emitter resolves an EmitterTarget to its emitter.
func (e Env) emitter(target EmitterTarget) (*event.Emitter, error) {
	switch target {
	case TargetDocument:
		return e.Session.Document().Emitter(), nil
	case TargetSession:
		return e.Session.Emitter(), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownEmitter, target)
	}
}

// disposer undoes exactly one capability registration.
type disposer func()

// API is the capability object minted once per successful enable call,
// scoped to one plugin instance within one session. Every registration made
// through it pushes one disposer; DeregisterAll pops and invokes them in
// reverse order. An API must not outlive its plugin's disable step and is
// never reused across a disable/re-enable cycle.
type API struct {
	env     Env
	manager *Manager
	def     Definition

	mu            sync.Mutex
	registrations []disposer
}

func newAPI(env Env, manager *Manager, def Definition) *API {
	return &API{
		env:     env,
		manager: manager,
		def:     def,
	}
}

// Name returns the owning plugin's name.
func (a *API) Name() string {
	return a.def.Name
}

// Session returns the session this api is scoped to.
func (a *API) Session() *session.Session {
	return a.env.Session
}

// push records the inverse of a registration.
func (a *API) push(d disposer) {
	a.mu.Lock()
	a.registrations = append(a.registrations, d)
	a.mu.Unlock()
}

// RegistrationCount returns the current depth of the undo stack.
func (a *API) RegistrationCount() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.registrations)
}

// SetData stores a value in the host's persistent store, namespaced by this
// plugin's name.
func (a *API) SetData(key string, value any) error {
	return a.env.Session.Document().SetPluginData(a.def.Name, key, value)
}

// GetData reads a value from this plugin's namespace, returning def when
// the key is absent.
func (a *API) GetData(key string, def any) any {
	return a.env.Session.Document().GetPluginData(a.def.Name, key, def)
}

// UpdatedDataForRender marks a row's derived presentation state stale
// because this plugin's data for it changed.
func (a *API) UpdatedDataForRender(row int) {
	a.env.Session.UpdatedDataForRender(row)
}

// RegisterMode registers an editing mode with the global mode registry.
func (a *API) RegisterMode(md mode.Metadata) error {
	if err := a.env.Modes.Register(md); err != nil {
		return err
	}
	a.push(func() { a.DeregisterMode(md.ID) })
	return nil
}

// DeregisterMode removes a mode from the global mode registry.
func (a *API) DeregisterMode(id string) {
	a.env.Modes.Deregister(id)
}

// RegisterDefaultMappings registers per-mode hotkey mappings.
func (a *API) RegisterDefaultMappings(modeID string, mappings keymap.Mappings) error {
	if err := a.env.Defaults.RegisterModeMappings(modeID, mappings); err != nil {
		return err
	}
	a.push(func() { a.DeregisterDefaultMappings(modeID, mappings) })
	return nil
}

// DeregisterDefaultMappings removes per-mode hotkey mappings.
func (a *API) DeregisterDefaultMappings(modeID string, mappings keymap.Mappings) {
	a.env.Defaults.DeregisterModeMappings(modeID, mappings)
}

// RegisterMotion constructs a named motion and registers it with the
// key-definition registry.
func (a *API) RegisterMotion(name, description string, fn keymap.MotionFunc) error {
	m := keymap.Motion{Name: name, Description: description, Fn: fn}
	if err := a.env.KeyDefs.RegisterMotion(m); err != nil {
		return err
	}
	a.push(func() { a.DeregisterMotion(name) })
	return nil
}

// DeregisterMotion removes a motion from the key-definition registry.
func (a *API) DeregisterMotion(name string) {
	a.env.KeyDefs.DeregisterMotion(name)
}

// RegisterAction constructs a named action and registers it with the
// key-definition registry.
func (a *API) RegisterAction(name, description string, fn keymap.ActionFunc) error {
	act := keymap.Action{Name: name, Description: description, Fn: fn}
	if err := a.env.KeyDefs.RegisterAction(act); err != nil {
		return err
	}
	a.push(func() { a.DeregisterAction(name) })
	return nil
}

// DeregisterAction removes an action from the key-definition registry.
func (a *API) DeregisterAction(name string) {
	a.env.KeyDefs.DeregisterAction(name)
}

// On attaches a listener to the targeted collaborator emitter.
func (a *API) On(target EmitterTarget, eventName string, fn event.Listener) (*event.Subscription, error) {
	em, err := a.env.emitter(target)
	if err != nil {
		return nil, err
	}
	sub := em.On(eventName, fn)
	a.push(func() { em.Off(sub) })
	return sub, nil
}

// Off detaches a listener from the targeted collaborator emitter.
func (a *API) Off(target EmitterTarget, sub *event.Subscription) error {
	em, err := a.env.emitter(target)
	if err != nil {
		return err
	}
	em.Off(sub)
	return nil
}

// AddHook attaches a transform hook to the targeted collaborator emitter.
// A hook can alter output for any row, so the derived-data cache is cleared
// unconditionally.
func (a *API) AddHook(target EmitterTarget, eventName string, hook event.Hook) (*event.HookHandle, error) {
	em, err := a.env.emitter(target)
	if err != nil {
		return nil, err
	}
	handle := em.AddHook(eventName, hook)
	a.env.Session.Document().Cache().Clear()
	a.push(func() {
		em.RemoveHook(handle)
		a.env.Session.Document().Cache().Clear()
	})
	return handle, nil
}

// RemoveHook detaches a transform hook and clears the derived-data cache.
func (a *API) RemoveHook(target EmitterTarget, handle *event.HookHandle) error {
	em, err := a.env.emitter(target)
	if err != nil {
		return err
	}
	em.RemoveHook(handle)
	a.env.Session.Document().Cache().Clear()
	return nil
}

// DeregisterAll pops and invokes every disposer in reverse-of-registration
// order, then empties the stack. Safe to call multiple times: the second
// call finds an empty stack and does nothing. This is the single unwind
// mechanism used by the registry's default disable wrapper and by
// well-behaved custom disable implementations.
func (a *API) DeregisterAll() {
	a.mu.Lock()
	regs := a.registrations
	a.registrations = nil
	a.mu.Unlock()

	for i := len(regs) - 1; i >= 0; i-- {
		regs[i]()
	}
}

// Panic lets a plugin declare itself broken. It always returns
// ErrPluginPanic for the host to surface to the user.
// TODO: consider having the manager auto-disable the plugin here.
func (a *API) Panic() error {
	return fmt.Errorf("plugin %q: %w", a.def.Name, ErrPluginPanic)
}
