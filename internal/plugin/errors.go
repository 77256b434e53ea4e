package plugin

import (
	"errors"
	"fmt"
)

// Plugin runtime errors.
var (
	// ErrDisableUnsupported is returned by the default disable wrapper after
	// it has unwound the plugin's registrations: the plugin supplied no
	// disable function, so the host must reload to finish disabling.
	ErrDisableUnsupported = errors.New("plugin does not support online disable; refresh to disable")

	// ErrPluginPanic is returned by API.Panic when a plugin declares itself
	// broken.
	ErrPluginPanic = errors.New("plugin signaled a major problem")

	// ErrUnknownEmitter is returned when a listener or hook names an emitter
	// target outside the known set.
	ErrUnknownEmitter = errors.New("unknown emitter target")
)

// TransitionError reports an enable or disable call made from a state that
// forbids it. It surfaces verbatim to the caller and is never retried.
type TransitionError struct {
	Name   string
	Status Status
	Op     string
}

func (e *TransitionError) Error() string {
	switch {
	case e.Op == "enable" && e.Status == StatusEnabling:
		return fmt.Sprintf("plugin %q is already enabling", e.Name)
	case e.Op == "enable" && e.Status == StatusDisabling:
		return fmt.Sprintf("plugin %q is still disabling", e.Name)
	case e.Op == "enable" && e.Status == StatusEnabled:
		return fmt.Sprintf("plugin %q is already enabled", e.Name)
	case e.Op == "disable" && e.Status == StatusEnabling:
		return fmt.Sprintf("plugin %q is still enabling", e.Name)
	case e.Op == "disable" && e.Status == StatusDisabling:
		return fmt.Sprintf("plugin %q is already disabling", e.Name)
	case e.Op == "disable" && e.Status == StatusDisabled:
		return fmt.Sprintf("plugin %q is already disabled", e.Name)
	default:
		return fmt.Sprintf("plugin %q: cannot %s while %s", e.Name, e.Op, e.Status)
	}
}

// UnregisteredError reports an operation referencing a name with no
// registered definition.
type UnregisteredError struct {
	Name string
}

func (e *UnregisteredError) Error() string {
	return fmt.Sprintf("plugin %q is not registered", e.Name)
}

// ConsistencyError reports a host-side invariant violation, distinct from
// ordinary lifecycle errors: an enabled record missing its api, or a live
// instance whose definition has vanished. Not recoverable.
type ConsistencyError struct {
	Name   string
	Detail string
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("plugin %q: internal inconsistency: %s", e.Name, e.Detail)
}
