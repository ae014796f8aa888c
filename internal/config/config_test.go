package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	pebblestore "github.com/rzbill/docstream/internal/storage/pebble"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.GRPCAddr == "" {
		t.Fatalf("default grpc addr should be set")
	}
	if cfg.Fsync != pebblestore.FsyncModeInterval {
		t.Fatalf("default fsync mode")
	}
	if cfg.Reconnect.BackoffMin <= 0 || cfg.Reconnect.BackoffMax <= cfg.Reconnect.BackoffMin {
		t.Fatalf("default reconnect backoff bounds")
	}
	if cfg.Pending.MaxBatchBytes <= 0 {
		t.Fatalf("default max batch bytes")
	}
}

func TestLoadJSON(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "docstream.json")
	data := []byte(`{"grpcAddr":"127.0.0.1:9000","fsyncMode":"always","pending":{"maxBatchBytes":4096}}`)
	if err := os.WriteFile(file, data, 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(file)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.GRPCAddr != "127.0.0.1:9000" {
		t.Fatalf("expected overridden grpc addr, got %q", cfg.GRPCAddr)
	}
	if cfg.Fsync != pebblestore.FsyncModeAlways {
		t.Fatalf("expected always fsync mode, got %v", cfg.Fsync)
	}
	if cfg.Pending.MaxBatchBytes != 4096 {
		t.Fatalf("expected 4096, got %d", cfg.Pending.MaxBatchBytes)
	}
}

func TestFromEnv(t *testing.T) {
	cfg := Default()
	os.Setenv("DOCSTREAM_GRPC_ADDR", "0.0.0.0:8080")
	os.Setenv("DOCSTREAM_FSYNC_MODE", "never")
	os.Setenv("DOCSTREAM_RECONNECT_BACKOFF_MIN_MS", "50")
	t.Cleanup(func() {
		os.Unsetenv("DOCSTREAM_GRPC_ADDR")
		os.Unsetenv("DOCSTREAM_FSYNC_MODE")
		os.Unsetenv("DOCSTREAM_RECONNECT_BACKOFF_MIN_MS")
	})
	FromEnv(&cfg)
	if cfg.GRPCAddr != "0.0.0.0:8080" {
		t.Fatalf("env override grpc addr")
	}
	if cfg.Fsync != pebblestore.FsyncModeNever {
		t.Fatalf("env override fsync mode")
	}
	if cfg.Reconnect.BackoffMin != 50*time.Millisecond {
		t.Fatalf("env override backoff min")
	}
}
