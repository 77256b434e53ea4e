// Package plugin provides the plugin lifecycle and capability-registration
// runtime: third-party extension code attaches behavior (modes, key
// mappings, motions, actions, event listeners, transform hooks) to a running
// session and detaches it cleanly later.
//
// # Components
//
//   - Registry: catalog mapping a plugin name to its immutable Definition.
//     Explicitly constructed and injected, never an ambient singleton; shared
//     across sessions.
//   - Manager: per-session orchestrator owning the enable/disable state
//     machine and the table of live plugin instances.
//   - API: capability object minted once per successful enable, scoped to
//     one plugin instance within one session, tracking an ordered undo stack
//     of disposers.
//
// # Lifecycle
//
// Statuses per plugin name within a session:
//
//	StatusUnregistered  -- enable logs and no-ops; disable errors
//	StatusDisabled      -- Enable() --> StatusEnabling
//	StatusEnabling      -- (enable fn returns) --> StatusEnabled
//	StatusEnabled       -- Disable() --> StatusDisabling
//	StatusDisabling     -- (disable fn returns) --> record removed,
//	                       reads StatusDisabled
//
// The status check and the flip into StatusEnabling/StatusDisabling happen
// atomically under the manager's mutex, so concurrent transitions for the
// same name fail fast instead of racing. Once a transition is in flight,
// every further Enable/Disable for that name returns a TransitionError.
//
// # Contract asymmetry
//
// Enable on an unregistered name logs an error and returns nil; Disable on
// an unregistered name returns an UnregisteredError. Both behaviors are
// deliberate parts of the contract, preserved rather than reconciled.
//
// # Authoring plugins
//
// Register with a name, optional version/author/description, an enable
// function, and an optional disable function:
//
//	registry.Register(plugin.Definition{
//	    Name:        "outline-marks",
//	    Description: "named bookmarks for outline rows",
//	    Enable: func(ctx context.Context, api *plugin.API) (any, error) {
//	        if err := api.RegisterAction("marks.set", "set a mark", setMark); err != nil {
//	            return nil, err
//	        }
//	        return newMarkState(), nil
//	    },
//	    Disable: func(ctx context.Context, api *plugin.API, value any) error {
//	        api.DeregisterAll()
//	        return nil
//	    },
//	})
//
// Enable may perform arbitrary capability registrations through the api and
// return an opaque value retained while the plugin is enabled. Disable must
// leave the host as it was before enable, conventionally via
// api.DeregisterAll(). If Disable is omitted, a default is substituted that
// unwinds the registrations and then fails with ErrDisableUnsupported,
// forcing the host to treat re-disable as requiring a full reload.
//
// The manager never rolls back a partially-failed enable: a plugin whose
// enable function fails after registering capabilities is responsible for
// unwinding them itself (typically DeregisterAll in its failure path).
package plugin
