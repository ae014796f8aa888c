package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"time"

	pebblestore "github.com/rzbill/docstream/internal/storage/pebble"
)

// Config is the top-level configuration loaded from file/env.
type Config struct {
	DataDir       string                `json:"dataDir"`
	GRPCAddr      string                `json:"grpcAddr"`
	FsyncMode     string                `json:"fsyncMode"`
	Fsync         pebblestore.FsyncMode `json:"-"`
	FsyncInterval time.Duration         `json:"fsyncIntervalMs"`
	Reconnect     ReconnectPolicy       `json:"reconnect"`
	Pending       PendingLimits         `json:"pending"`
}

// ReconnectPolicy configures the delta client's backoff-with-jitter loop.
type ReconnectPolicy struct {
	BackoffMin time.Duration `json:"backoffMinMs"`
	BackoffMax time.Duration `json:"backoffMaxMs"`
}

// PendingLimits caps the size of a single batch handed to the sequencer.
type PendingLimits struct {
	MaxBatchBytes int `json:"maxBatchBytes"`
}

// Default returns built-in defaults.
func Default() Config {
	return Config{
		DataDir:       DefaultDataDir(),
		GRPCAddr:      "127.0.0.1:7420",
		FsyncMode:     "interval",
		Fsync:         pebblestore.FsyncModeInterval,
		FsyncInterval: 5 * time.Millisecond,
		Reconnect: ReconnectPolicy{
			BackoffMin: 200 * time.Millisecond,
			BackoffMax: 10 * time.Second,
		},
		Pending: PendingLimits{
			MaxBatchBytes: 1 << 20,
		},
	}
}

// Load reads configuration from a JSON file (by extension). If path is empty, returns defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	switch ext := filepath.Ext(path); ext {
	case ".json", "":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return Config{}, err
		}
	case ".yaml", ".yml":
		// Lazy inline YAML support via json tags using a minimal shim to keep deps light.
		// If YAML is needed now, prefer adding gopkg.in/yaml.v3; for MVP we accept JSON-only.
		return Config{}, errors.New("yaml config not supported yet; use JSON for now")
	default:
		if err := json.Unmarshal(b, &cfg); err != nil {
			return Config{}, err
		}
	}
	if mode, err := pebblestore.ParseFsyncMode(cfg.FsyncMode); err == nil {
		cfg.Fsync = mode
	}
	return cfg, nil
}
