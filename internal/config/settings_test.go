package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadCoreConfigDefaults(t *testing.T) {
	cfg, err := loadCoreConfigFromPath(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.AgentCommand() != "codex" {
		t.Fatalf("agent command = %q", cfg.AgentCommand())
	}
	if cfg.DefaultModel() != "gpt-5.1-codex" {
		t.Fatalf("default model = %q", cfg.DefaultModel())
	}
	if cfg.LogLevel() != "info" {
		t.Fatalf("log level = %q", cfg.LogLevel())
	}
	if !cfg.NotificationsEnabled() {
		t.Fatalf("notifications should default on")
	}
}

func TestLoadCoreConfigOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	contents := `
[agent]
command = "/opt/codex/bin/codex"
default_model = "gpt-5.2-codex"

[store]
backend = "bbolt"

[logging]
level = "debug"

[notifications]
enabled = false
methods = ["bell"]
timeout_seconds = 3
`
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := loadCoreConfigFromPath(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.AgentCommand() != "/opt/codex/bin/codex" {
		t.Fatalf("agent command = %q", cfg.AgentCommand())
	}
	if cfg.DefaultModel() != "gpt-5.2-codex" {
		t.Fatalf("default model = %q", cfg.DefaultModel())
	}
	if cfg.StoreBackend() != "bbolt" {
		t.Fatalf("store backend = %q", cfg.StoreBackend())
	}
	if cfg.LogLevel() != "debug" {
		t.Fatalf("log level = %q", cfg.LogLevel())
	}
	if cfg.NotificationsEnabled() {
		t.Fatalf("notifications should be off")
	}
	if len(cfg.Notifications.Methods) != 1 || cfg.Notifications.Methods[0] != "bell" {
		t.Fatalf("methods = %v", cfg.Notifications.Methods)
	}
	if cfg.Notifications.TimeoutSeconds != 3 {
		t.Fatalf("timeout = %d", cfg.Notifications.TimeoutSeconds)
	}
}

func TestLoadCoreConfigEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("  \n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := loadCoreConfigFromPath(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.AgentCommand() != "codex" {
		t.Fatalf("empty file should yield defaults")
	}
}
