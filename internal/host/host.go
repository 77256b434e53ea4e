// Package host wires the plugin runtime together: the persistent store, the
// session collaborators, the script loader, the catalog and the manager.
package host

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/dshills/plugkit/internal/config"
	"github.com/dshills/plugkit/internal/doc"
	"github.com/dshills/plugkit/internal/input/keymap"
	"github.com/dshills/plugkit/internal/input/mode"
	"github.com/dshills/plugkit/internal/plugin"
	"github.com/dshills/plugkit/internal/plugin/lua"
	"github.com/dshills/plugkit/internal/session"
)

// Host is one assembled runtime: a shared catalog plus one session's manager
// and collaborators.
type Host struct {
	cfg *config.Config
	log *zap.Logger

	env      plugin.Env
	registry *plugin.Registry
	manager  *plugin.Manager
	scripts  []*lua.Script
}

// New builds a host from configuration. Scripts found in the configured
// plugin directories are registered but not enabled.
func New(cfg *config.Config, log *zap.Logger) (*Host, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if log == nil {
		log = zap.NewNop()
	}

	store := doc.NewStore()
	if cfg.DataFile != "" {
		var err error
		store, err = doc.OpenStore(cfg.DataFile)
		if err != nil {
			return nil, fmt.Errorf("plugin data store: %w", err)
		}
	}

	document := doc.New(doc.WithStore(store))
	env := plugin.Env{
		Session:  session.New(document),
		Modes:    mode.NewRegistry(),
		Defaults: keymap.NewDefaults(),
		KeyDefs:  keymap.NewDefinitions(),
	}

	loaderOpts := []lua.LoaderOption{
		lua.WithStateOptions(
			lua.WithInstructionLimit(cfg.Lua.InstructionLimit),
			lua.WithExecutionTimeout(cfg.Lua.ExecutionTimeout),
		),
	}
	if len(cfg.PluginDirs) > 0 {
		loaderOpts = append(loaderOpts, lua.WithPaths(cfg.PluginDirs...))
	}

	registry := plugin.NewRegistry()
	scripts, err := lua.NewLoader(loaderOpts...).RegisterAll(registry)
	if err != nil {
		return nil, fmt.Errorf("registering plugin scripts: %w", err)
	}
	for _, s := range scripts {
		log.Debug("registered plugin script",
			zap.String("plugin", s.Name), zap.String("path", s.Path))
	}

	return &Host{
		cfg:      cfg,
		log:      log,
		env:      env,
		registry: registry,
		manager:  plugin.NewManager(registry, env, plugin.WithLogger(log)),
		scripts:  scripts,
	}, nil
}

// Manager returns the session's plugin manager.
func (h *Host) Manager() *plugin.Manager {
	return h.manager
}

// Registry returns the plugin catalog.
func (h *Host) Registry() *plugin.Registry {
	return h.registry
}

// Env returns the session collaborators.
func (h *Host) Env() plugin.Env {
	return h.env
}

// Scripts returns the discovered plugin scripts.
func (h *Host) Scripts() []*lua.Script {
	return h.scripts
}

// EnableStartup enables every plugin the config lists. Failures are logged
// and skipped so one bad plugin does not block the rest; the first error is
// returned for the caller to surface.
func (h *Host) EnableStartup(ctx context.Context) error {
	var firstErr error
	for _, name := range h.cfg.Enabled {
		if err := h.manager.Enable(ctx, name); err != nil {
			h.log.Error("enabling startup plugin",
				zap.String("plugin", name), zap.Error(err))
			if firstErr == nil {
				firstErr = fmt.Errorf("enable %s: %w", name, err)
			}
		}
	}
	return firstErr
}

// Shutdown disables every enabled plugin. Default-disable refresh errors
// are expected here and logged at debug only.
func (h *Host) Shutdown(ctx context.Context) {
	for _, name := range h.manager.EnabledPlugins() {
		if err := h.manager.Disable(ctx, name); err != nil {
			h.log.Debug("disabling plugin on shutdown",
				zap.String("plugin", name), zap.Error(err))
		}
	}
}
