package plugin

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"
)

// EventType is the type of manager event.
type EventType int

const (
	// EventStatusChanged is emitted after every per-plugin status change.
	EventStatusChanged EventType = iota

	// EventEnabledChanged is emitted after every completed enable or
	// disable, carrying the full set of currently-enabled plugin names.
	EventEnabledChanged
)

// String returns a string representation of the event type.
func (t EventType) String() string {
	switch t {
	case EventStatusChanged:
		return "status"
	case EventEnabledChanged:
		return "enabledPluginsChange"
	default:
		return "unknown"
	}
}

// Event represents a plugin manager event.
type Event struct {
	Type   EventType
	Plugin string
	Status Status

	// Enabled is the sorted set of enabled plugin names. Only populated for
	// EventEnabledChanged.
	Enabled []string
}

// EventHandler handles plugin manager events.
// Handlers must be non-blocking and should not call back into the Manager
// to avoid deadlocks. Panics in handlers are recovered.
type EventHandler func(event Event)

// instance is the per-plugin record held while a plugin is enabled or
// transitioning. Once a plugin fully disables its record is deleted and the
// status reads as StatusDisabled again.
type instance struct {
	api    *API
	value  any
	status Status
}

// Manager owns the per-session enable/disable state machine. Each session
// gets its own Manager; the Registry may be shared across sessions.
//
// Status checks and status writes happen under one mutex, so two concurrent
// Enable calls for the same name cannot both observe StatusDisabled: the
// loser fails fast with a TransitionError rather than queuing. There is no
// cancellation beyond the context passed through to the plugin: a plugin
// whose enable or disable never returns leaves that name stuck in
// StatusEnabling/StatusDisabling for good.
type Manager struct {
	mu sync.Mutex

	registry  *Registry
	env       Env
	instances map[string]*instance

	// Event handlers (protected by mu)
	handlers []EventHandler

	log *zap.Logger
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithLogger sets the manager's logger. Defaults to a no-op logger.
func WithLogger(log *zap.Logger) ManagerOption {
	return func(m *Manager) {
		if log != nil {
			m.log = log
		}
	}
}

// NewManager creates a manager bound to one session and its collaborators.
func NewManager(registry *Registry, env Env, opts ...ManagerOption) *Manager {
	m := &Manager{
		registry:  registry,
		env:       env,
		instances: make(map[string]*instance),
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Registry returns the plugin catalog this manager reads definitions from.
func (m *Manager) Registry() *Registry {
	return m.registry
}

// Subscribe adds an event handler.
// Returns an unsubscribe function to remove the handler.
func (m *Manager) Subscribe(handler EventHandler) func() {
	if handler == nil {
		return func() {}
	}

	m.mu.Lock()
	m.handlers = append(m.handlers, handler)
	index := len(m.handlers) - 1
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		// Set to nil instead of removing to avoid index shifting issues
		if index < len(m.handlers) {
			m.handlers[index] = nil
		}
	}
}

// GetStatus returns StatusUnregistered when no definition exists under name,
// otherwise the stored status, defaulting to StatusDisabled when the plugin
// has no instance record.
func (m *Manager) GetStatus(name string) Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.statusLocked(name)
}

func (m *Manager) statusLocked(name string) Status {
	if !m.registry.Has(name) {
		return StatusUnregistered
	}
	if inst, ok := m.instances[name]; ok {
		return inst.status
	}
	return StatusDisabled
}

// SetStatus persists a status into (or creates) the plugin's instance record
// and emits a status event. Setting the status of an unregistered plugin is
// a host configuration bug and returns a ConsistencyError.
func (m *Manager) SetStatus(name string, status Status) error {
	m.mu.Lock()
	if !m.registry.Has(name) {
		m.mu.Unlock()
		return &ConsistencyError{Name: name, Detail: "set status of unregistered plugin"}
	}
	m.setStatusLocked(name, status)
	m.mu.Unlock()

	m.emit(Event{Type: EventStatusChanged, Plugin: name, Status: status})
	return nil
}

// setStatusLocked updates or creates the instance record.
// Caller must hold mu and emit the status event after unlocking.
func (m *Manager) setStatusLocked(name string, status Status) {
	inst, ok := m.instances[name]
	if !ok {
		inst = &instance{}
		m.instances[name] = inst
	}
	inst.status = status
}

// EnabledPlugins returns the sorted names of all currently enabled plugins.
func (m *Manager) EnabledPlugins() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.enabledLocked()
}

func (m *Manager) enabledLocked() []string {
	names := make([]string, 0, len(m.instances))
	for name, inst := range m.instances {
		if inst.status == StatusEnabled {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Enable runs the named plugin's enable function and flips it to
// StatusEnabled.
//
// Enabling an unregistered name logs an error and returns nil without any
// effect; this asymmetry with Disable (which returns UnregisteredError) is
// part of the contract. Any other non-disabled state fails fast with a
// TransitionError. If the enable function fails, its partially-applied
// registrations are NOT rolled back and the plugin stays in StatusEnabling:
// unwinding is the plugin's own responsibility.
func (m *Manager) Enable(ctx context.Context, name string) error {
	m.mu.Lock()
	status := m.statusLocked(name)
	switch status {
	case StatusUnregistered:
		m.mu.Unlock()
		m.log.Error("cannot enable unregistered plugin", zap.String("plugin", name))
		return nil
	case StatusEnabling, StatusDisabling, StatusEnabled:
		m.mu.Unlock()
		return &TransitionError{Name: name, Status: status, Op: "enable"}
	}

	// StatusDisabled: claim the transition before releasing the lock so no
	// concurrent Enable can also pass the check.
	def, _ := m.registry.Get(name)
	m.setStatusLocked(name, StatusEnabling)
	m.mu.Unlock()

	m.emit(Event{Type: EventStatusChanged, Plugin: name, Status: StatusEnabling})
	m.log.Debug("enabling plugin", zap.String("plugin", name), zap.Int("version", def.Version))

	api := newAPI(m.env, m, def)
	value, err := def.Enable(ctx, api)
	if err != nil {
		// Propagated unmodified; no rollback, status stays StatusEnabling.
		return err
	}

	m.mu.Lock()
	inst := m.instances[name]
	inst.api = api
	inst.value = value
	inst.status = StatusEnabled
	enabled := m.enabledLocked()
	m.mu.Unlock()

	m.emit(Event{Type: EventStatusChanged, Plugin: name, Status: StatusEnabled})
	m.emit(Event{Type: EventEnabledChanged, Plugin: name, Enabled: enabled})
	m.log.Info("plugin enabled", zap.String("plugin", name))
	return nil
}

// Disable runs the named plugin's disable function and removes its instance
// record, after which the status reads StatusDisabled.
//
// Unlike Enable, disabling an unregistered name is an error. The record is
// removed even when the disable function fails, so a plugin relying on the
// default disable wrapper (unwind, then fail with ErrDisableUnsupported)
// still ends up disabled; the failure is returned for the host to surface.
func (m *Manager) Disable(ctx context.Context, name string) error {
	m.mu.Lock()
	status := m.statusLocked(name)
	switch status {
	case StatusUnregistered:
		m.mu.Unlock()
		return &UnregisteredError{Name: name}
	case StatusEnabling, StatusDisabling, StatusDisabled:
		m.mu.Unlock()
		return &TransitionError{Name: name, Status: status, Op: "disable"}
	}

	// StatusEnabled: claim the transition.
	m.setStatusLocked(name, StatusDisabling)
	inst := m.instances[name]
	def, defOK := m.registry.Get(name)
	m.mu.Unlock()

	m.emit(Event{Type: EventStatusChanged, Plugin: name, Status: StatusDisabling})

	if inst.api == nil {
		return &ConsistencyError{Name: name, Detail: "enabled instance has no api"}
	}
	if !defOK {
		return &ConsistencyError{Name: name, Detail: "enabled instance has no definition"}
	}

	disableErr := def.Disable(ctx, inst.api, inst.value)

	m.mu.Lock()
	delete(m.instances, name)
	enabled := m.enabledLocked()
	m.mu.Unlock()

	m.emit(Event{Type: EventEnabledChanged, Plugin: name, Enabled: enabled})
	if disableErr != nil {
		m.log.Warn("plugin disable reported an error",
			zap.String("plugin", name), zap.Error(disableErr))
		return disableErr
	}
	m.log.Info("plugin disabled", zap.String("plugin", name))
	return nil
}

// Value returns the opaque value the named plugin's enable function
// resolved to.
func (m *Manager) Value(name string) (any, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	inst, ok := m.instances[name]
	if !ok || inst.status != StatusEnabled {
		return nil, false
	}
	return inst.value, true
}

// emit sends an event to all handlers.
// Handlers are called outside any locks and panics are recovered.
func (m *Manager) emit(event Event) {
	m.mu.Lock()
	handlers := make([]EventHandler, len(m.handlers))
	copy(handlers, m.handlers)
	m.mu.Unlock()

	for _, handler := range handlers {
		if handler == nil {
			continue
		}
		func() {
			defer func() {
				recover() // Ignore panics from handlers
			}()
			handler(event)
		}()
	}
}
