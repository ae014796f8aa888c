package config

import (
	"os"
	"strconv"
	"time"

	pebblestore "github.com/rzbill/docstream/internal/storage/pebble"
)

// FromEnv overlays DOCSTREAM_* environment variables onto cfg.
func FromEnv(cfg *Config) {
	if v := os.Getenv("DOCSTREAM_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("DOCSTREAM_GRPC_ADDR"); v != "" {
		cfg.GRPCAddr = v
	}
	if v := os.Getenv("DOCSTREAM_FSYNC_MODE"); v != "" {
		if mode, err := pebblestore.ParseFsyncMode(v); err == nil {
			cfg.FsyncMode = v
			cfg.Fsync = mode
		}
	}
	if v := os.Getenv("DOCSTREAM_FSYNC_INTERVAL_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.FsyncInterval = time.Duration(n) * time.Millisecond
		}
	}
	if v := os.Getenv("DOCSTREAM_RECONNECT_BACKOFF_MIN_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Reconnect.BackoffMin = time.Duration(n) * time.Millisecond
		}
	}
	if v := os.Getenv("DOCSTREAM_RECONNECT_BACKOFF_MAX_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Reconnect.BackoffMax = time.Duration(n) * time.Millisecond
		}
	}
	if v := os.Getenv("DOCSTREAM_PENDING_MAX_BATCH_BYTES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Pending.MaxBatchBytes = n
		}
	}
}
