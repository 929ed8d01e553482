package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFileMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
db_path = "/tmp/custom.db"
desktop_notifications = true
scheduler_buffer = 128
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadFile(Default(), path)
	if err != nil {
		t.Fatalf("load file: %v", err)
	}
	if cfg.DBPath != "/tmp/custom.db" {
		t.Fatalf("db_path not applied: %q", cfg.DBPath)
	}
	if !cfg.DesktopNotifications {
		t.Fatal("desktop_notifications not applied")
	}
	if cfg.SchedulerBuffer != 128 {
		t.Fatalf("scheduler_buffer not applied: %d", cfg.SchedulerBuffer)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("unset key must keep default: %q", cfg.LogLevel)
	}
}

func TestLoadFileMissingIsNotAnError(t *testing.T) {
	cfg, err := LoadFile(Default(), filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("missing file must not error: %v", err)
	}
	if cfg.SchedulerBuffer != Default().SchedulerBuffer {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestLoadFileMalformedFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("db_path = [broken"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadFile(Default(), path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("TODODESK_DB_PATH", "/tmp/env.db")
	t.Setenv("TODODESK_DESKTOP_NOTIFICATIONS", "yes")
	t.Setenv("TODODESK_SCHEDULER_BUFFER", "256")
	t.Setenv("TODODESK_COARSE_TIMER_SECONDS", "30")
	t.Setenv("TODODESK_LOG_LEVEL", "debug")

	cfg := FromEnv(Default())
	if cfg.DBPath != "/tmp/env.db" || !cfg.DesktopNotifications || cfg.SchedulerBuffer != 256 {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
	if cfg.CoarseTimerSeconds != 30 || cfg.LogLevel != "debug" {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
}

func TestFromEnvIgnoresInvalidValues(t *testing.T) {
	t.Setenv("TODODESK_SCHEDULER_BUFFER", "not-a-number")
	t.Setenv("TODODESK_DESKTOP_NOTIFICATIONS", "maybe")

	cfg := FromEnv(Default())
	if cfg.SchedulerBuffer != Default().SchedulerBuffer {
		t.Fatalf("invalid int must keep default: %d", cfg.SchedulerBuffer)
	}
	if cfg.DesktopNotifications != Default().DesktopNotifications {
		t.Fatal("invalid bool must keep default")
	}
}
