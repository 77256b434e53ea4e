package plugin

import "context"

// EnableFunc attaches the plugin's behavior to the host through the supplied
// api. The returned value is opaque to the runtime; it is retained for the
// lifetime of the enabled instance and handed back to DisableFunc.
type EnableFunc func(ctx context.Context, api *API) (any, error)

// DisableFunc detaches the plugin, conventionally by calling
// api.DeregisterAll. It receives the value EnableFunc returned.
type DisableFunc func(ctx context.Context, api *API, value any) error

// Defaults applied by Registry.Register.
const (
	DefaultVersion = 1
	DefaultAuthor  = "anonymous"
)

// Definition is the immutable description of a plugin held by the Registry.
type Definition struct {
	// Name is the unique registry key.
	Name string

	// Version of the plugin. Defaults to DefaultVersion.
	Version int

	// Author of the plugin. Defaults to DefaultAuthor.
	Author string

	// Description explains what the plugin does.
	Description string

	// Enable attaches the plugin. Required.
	Enable EnableFunc

	// Disable detaches the plugin. Optional: when nil, Register substitutes
	// a default that unwinds registrations and then fails with
	// ErrDisableUnsupported.
	Disable DisableFunc
}
