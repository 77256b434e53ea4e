package plugin

// Status represents the lifecycle state of a plugin within one session.
type Status int

// Plugin statuses.
const (
	// StatusUnregistered - no definition exists under the name. Synthetic:
	// it is reported by GetStatus but never stored.
	StatusUnregistered Status = iota

	// StatusDisabling - the plugin's disable function is running.
	StatusDisabling

	// StatusDisabled - the plugin is registered but not enabled. This is the
	// default for any registered plugin with no instance record.
	StatusDisabled

	// StatusEnabling - the plugin's enable function is running.
	StatusEnabling

	// StatusEnabled - the plugin is enabled and its instance record holds
	// both the api and the resolved value.
	StatusEnabled
)

// String returns a string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusUnregistered:
		return "unregistered"
	case StatusDisabling:
		return "disabling"
	case StatusDisabled:
		return "disabled"
	case StatusEnabling:
		return "enabling"
	case StatusEnabled:
		return "enabled"
	default:
		return "unknown"
	}
}

// Transitioning returns true while an enable or disable is in flight.
func (s Status) Transitioning() bool {
	return s == StatusEnabling || s == StatusDisabling
}
