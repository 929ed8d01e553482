// Package config loads runtime settings from an optional TOML file,
// then applies TODODESK_* environment overrides on top.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

type Config struct {
	DBPath               string `toml:"db_path"`
	DesktopNotifications bool   `toml:"desktop_notifications"`
	SchedulerBuffer      int    `toml:"scheduler_buffer"`
	CoarseTimerSeconds   int    `toml:"coarse_timer_seconds"`
	LogLevel             string `toml:"log_level"`
}

func Default() Config {
	return Config{
		DBPath:               defaultDBPath(),
		DesktopNotifications: false,
		SchedulerBuffer:      64,
		CoarseTimerSeconds:   0,
		LogLevel:             "info",
	}
}

// DefaultPath is the per-user config file location.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "tododesk", "config.toml")
}

func defaultDBPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "tododesk.db"
	}
	return filepath.Join(dir, "tododesk", "tododesk.db")
}

// LoadFile merges the TOML file at path over base. A missing file is
// not an error; a malformed one is.
func LoadFile(base Config, path string) (Config, error) {
	if strings.TrimSpace(path) == "" {
		return base, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return base, nil
		}
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := base
	if err := toml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// FromEnv applies TODODESK_* overrides.
func FromEnv(base Config) Config {
	cfg := base
	if v := strings.TrimSpace(os.Getenv("TODODESK_DB_PATH")); v != "" {
		cfg.DBPath = v
	}
	if v, ok := getEnvBool("TODODESK_DESKTOP_NOTIFICATIONS"); ok {
		cfg.DesktopNotifications = v
	}
	if v, ok := getEnvInt("TODODESK_SCHEDULER_BUFFER"); ok && v > 0 {
		cfg.SchedulerBuffer = v
	}
	if v, ok := getEnvInt("TODODESK_COARSE_TIMER_SECONDS"); ok && v >= 0 {
		cfg.CoarseTimerSeconds = v
	}
	if v := strings.TrimSpace(os.Getenv("TODODESK_LOG_LEVEL")); v != "" {
		cfg.LogLevel = v
	}
	return cfg
}

// Load is the full chain: defaults, then file, then environment.
func Load(path string) (Config, error) {
	cfg, err := LoadFile(Default(), path)
	if err != nil {
		return Config{}, err
	}
	return FromEnv(cfg), nil
}

func getEnvInt(name string) (int, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func getEnvBool(name string) (bool, bool) {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return false, false
	}
	switch raw {
	case "1", "true", "yes", "y", "on":
		return true, true
	case "0", "false", "no", "n", "off":
		return false, true
	default:
		return false, false
	}
}
