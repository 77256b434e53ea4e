// Package config loads the host configuration from YAML.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the host configuration.
type Config struct {
	// PluginDirs are the directories searched for plugin scripts, in
	// priority order. Empty means the loader defaults.
	PluginDirs []string `yaml:"plugin_dirs"`

	// DataFile is the path of the persistent plugin data store. Empty means
	// data is kept in memory only.
	DataFile string `yaml:"data_file"`

	// Enabled lists plugins enabled at startup.
	Enabled []string `yaml:"enabled"`

	LogLevel string `yaml:"log_level"`

	Lua LuaConfig `yaml:"lua"`
}

// LuaConfig bounds plugin script execution.
type LuaConfig struct {
	InstructionLimit int64         `yaml:"instruction_limit"`
	ExecutionTimeout time.Duration `yaml:"execution_timeout"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Lua: LuaConfig{
			InstructionLimit: 10_000_000,
			ExecutionTimeout: 5 * time.Second,
		},
	}
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "plugkit.yaml"
	}
	return filepath.Join(home, ".config", "plugkit", "config.yaml")
}

// Load reads a YAML config file, filling unset fields from Default. A
// missing file is not an error and yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks field values.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level %q", c.LogLevel)
	}
	if c.Lua.InstructionLimit < 0 {
		return fmt.Errorf("instruction_limit must be >= 0, got %d", c.Lua.InstructionLimit)
	}
	if c.Lua.ExecutionTimeout < 0 {
		return fmt.Errorf("execution_timeout must be >= 0, got %s", c.Lua.ExecutionTimeout)
	}
	return nil
}
