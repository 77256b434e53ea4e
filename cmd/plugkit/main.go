// Package main is the entry point for the plugkit host.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/dshills/plugkit/internal/config"
	"github.com/dshills/plugkit/internal/host"
	"github.com/dshills/plugkit/internal/plugin"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if opts.pluginDir != "" {
		cfg.PluginDirs = append([]string{opts.pluginDir}, cfg.PluginDirs...)
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}

	log, err := newLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer log.Sync() //nolint:errcheck

	h, err := host.New(cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}

	h.Manager().Subscribe(func(e plugin.Event) {
		switch e.Type {
		case plugin.EventStatusChanged:
			log.Info("plugin status",
				zap.String("plugin", e.Plugin), zap.Stringer("status", e.Status))
		case plugin.EventEnabledChanged:
			log.Info("enabled plugins changed", zap.Strings("enabled", e.Enabled))
		}
	})

	ctx := context.Background()
	if err := h.EnableStartup(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	log.Info("host ready",
		zap.Strings("registered", h.Registry().Names()),
		zap.Strings("enabled", h.Manager().EnabledPlugins()))

	// Wait for shutdown signal
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	<-signals

	h.Shutdown(ctx)
	return 0
}

type options struct {
	configPath string
	pluginDir  string
	logLevel   string
}

func parseFlags() options {
	var opts options
	var showVersion bool

	flag.StringVar(&opts.configPath, "config", config.DefaultPath(), "Path to configuration file")
	flag.StringVar(&opts.configPath, "c", config.DefaultPath(), "Path to configuration file (shorthand)")
	flag.StringVar(&opts.pluginDir, "plugins", "", "Additional plugin script directory")
	flag.StringVar(&opts.pluginDir, "p", "", "Additional plugin script directory (shorthand)")
	flag.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "plugkit - Lua plugin runtime host\n\n")
		fmt.Fprintf(os.Stderr, "Usage: plugkit [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if showVersion {
		fmt.Printf("plugkit %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		os.Exit(0)
	}

	return opts
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	return cfg.Build()
}
