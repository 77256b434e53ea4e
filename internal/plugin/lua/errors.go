package lua

import "errors"

var (
	// ErrStateClosed is returned when operating on a closed Lua state.
	ErrStateClosed = errors.New("lua state is closed")

	// ErrNoEnable is returned when a plugin script defines no enable function.
	ErrNoEnable = errors.New("script does not define an enable function")
)

// CapabilityError is returned when a script requires a capability the host
// did not grant.
type CapabilityError struct {
	Capability Capability
}

func (e *CapabilityError) Error() string {
	return "capability not granted: " + string(e.Capability)
}
