// Package config loads the client configuration file, falling back to
// defaults when it is missing.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds everything the sync client needs: where the nutrition
// server lives and where local state goes.
type Config struct {
	ServerURL     string
	DataDir       string
	StateDBPath   string
	Timeout       time.Duration
	SyncInterval  time.Duration
	StaticVersion int
}

const (
	defaultConfigPath   = "~/.config/mealsync/config.yaml"
	defaultDataDir      = "~/.local/share/mealsync"
	defaultServerURL    = "http://127.0.0.1:5001"
	defaultTimeout      = 10 * time.Second
	defaultSyncInterval = 30 * time.Second
)

// Load locates and parses the config file. A missing file is not an
// error; every field has a usable default.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		ServerURL:     defaultServerURL,
		Timeout:       defaultTimeout,
		SyncInterval:  defaultSyncInterval,
		StaticVersion: 1,
	}

	bytes, err := os.ReadFile(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg.DataDir = mustExpand(defaultDataDir)
			cfg.StateDBPath = filepath.Join(cfg.DataDir, "state.db")
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		ServerURL     string `yaml:"server_url"`
		DataDir       string `yaml:"data_dir"`
		TimeoutSec    int    `yaml:"timeout_seconds"`
		SyncSec       int    `yaml:"sync_interval_seconds"`
		StaticVersion int    `yaml:"static_cache_version"`
	}
	if err := yaml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if url := strings.TrimSpace(raw.ServerURL); url != "" {
		cfg.ServerURL = url
	}

	dir := strings.TrimSpace(raw.DataDir)
	if dir == "" {
		dir = defaultDataDir
	}
	cfg.DataDir = mustExpand(dir)
	cfg.StateDBPath = filepath.Join(cfg.DataDir, "state.db")

	if raw.TimeoutSec > 0 {
		cfg.Timeout = time.Duration(raw.TimeoutSec) * time.Second
	}
	if raw.SyncSec > 0 {
		cfg.SyncInterval = time.Duration(raw.SyncSec) * time.Second
	}
	if raw.StaticVersion > 0 {
		cfg.StaticVersion = raw.StaticVersion
	}

	return cfg, nil
}

// EnsureDataDir creates the data directory when it does not exist.
func (c Config) EnsureDataDir() error {
	if strings.TrimSpace(c.DataDir) == "" {
		return fmt.Errorf("data dir is empty")
	}
	if err := os.MkdirAll(c.DataDir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	return nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
