package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
	if cfg.Lua.InstructionLimit != 10_000_000 {
		t.Errorf("InstructionLimit = %d", cfg.Lua.InstructionLimit)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
plugin_dirs:
  - /opt/plugins
data_file: /tmp/plugkit.json
enabled: [marks, spell]
log_level: debug
lua:
  instruction_limit: 1000
  execution_timeout: 2s
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(cfg.PluginDirs) != 1 || cfg.PluginDirs[0] != "/opt/plugins" {
		t.Errorf("PluginDirs = %v", cfg.PluginDirs)
	}
	if cfg.DataFile != "/tmp/plugkit.json" {
		t.Errorf("DataFile = %q", cfg.DataFile)
	}
	if len(cfg.Enabled) != 2 || cfg.Enabled[0] != "marks" {
		t.Errorf("Enabled = %v", cfg.Enabled)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
	if cfg.Lua.InstructionLimit != 1000 {
		t.Errorf("InstructionLimit = %d", cfg.Lua.InstructionLimit)
	}
	if cfg.Lua.ExecutionTimeout != 2*time.Second {
		t.Errorf("ExecutionTimeout = %s", cfg.Lua.ExecutionTimeout)
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("log_level: warn\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
	if cfg.Lua.ExecutionTimeout != 5*time.Second {
		t.Errorf("ExecutionTimeout = %s, want default", cfg.Lua.ExecutionTimeout)
	}
}

func TestLoadRejectsBadLogLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("log_level: loud\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("Load() error = nil, want invalid log_level")
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(":\n  - ["), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("Load() error = nil, want parse error")
	}
}

func TestValidateNegativeLimits(t *testing.T) {
	cfg := Default()
	cfg.Lua.InstructionLimit = -1
	if err := cfg.Validate(); err == nil {
		t.Error("Validate() = nil, want error for negative instruction limit")
	}
}
