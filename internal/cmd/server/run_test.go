package serverrun

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	cfgpkg "github.com/rzbill/docstream/internal/config"
	pebblestore "github.com/rzbill/docstream/internal/storage/pebble"
)

func TestOptionsDataDirFallback(t *testing.T) {
	tests := []struct {
		name     string
		dataDir  string
		expected string
	}{
		{name: "empty data dir uses default", dataDir: "", expected: ""},
		{name: "provided data dir is preserved", dataDir: "/custom/data", expected: "/custom/data"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := Options{
				DataDir:       tt.dataDir,
				GRPCAddr:      ":50051",
				Fsync:         pebblestore.FsyncModeAlways,
				FsyncInterval: 5 * time.Millisecond,
				Config:        cfgpkg.Default(),
			}

			if opts.DataDir == "" {
				opts.DataDir = cfgpkg.DefaultDataDir()
			}

			if tt.expected == "" {
				if opts.DataDir == "" {
					t.Error("expected DataDir to be set after fallback")
				}
			} else if opts.DataDir != tt.expected {
				t.Errorf("expected DataDir %s, got %s", tt.expected, opts.DataDir)
			}
		})
	}
}

func TestGetenvDefault(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		def      string
		envValue string
		expected string
	}{
		{name: "environment variable set", key: "TEST_VAR", def: "default", envValue: "env_value", expected: "env_value"},
		{name: "environment variable not set", key: "TEST_VAR_NOT_SET", def: "default", envValue: "", expected: "default"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue != "" {
				_ = os.Setenv(tt.key, tt.envValue)
			} else {
				_ = os.Unsetenv(tt.key)
			}
			t.Cleanup(func() { _ = os.Unsetenv(tt.key) })

			result := getenvDefault(tt.key, tt.def)
			if result != tt.expected {
				t.Errorf("getenvDefault(%s, %s) = %s, expected %s", tt.key, tt.def, result, tt.expected)
			}
		})
	}
}

func TestDataDirStoreSubdirectory(t *testing.T) {
	baseDir := "/tmp/docstream"
	expectedStoreDir := filepath.Join(baseDir, "store")

	opts := Options{DataDir: baseDir}
	storeDir := filepath.Join(opts.DataDir, "store")
	if storeDir != expectedStoreDir {
		t.Errorf("expected store dir %s, got %s", expectedStoreDir, storeDir)
	}
}

func TestDefaultDataDirIntegration(t *testing.T) {
	opts := Options{DataDir: ""}
	if opts.DataDir == "" {
		opts.DataDir = cfgpkg.DefaultDataDir()
	}
	if opts.DataDir == "" {
		t.Error("DataDir should not be empty after fallback")
	}
	if !strings.Contains(opts.DataDir, "docstream") {
		t.Errorf("DataDir should contain 'docstream' in the path, got %s", opts.DataDir)
	}
}

// TestRunIntegration is a basic integration test that verifies Run can be
// started and shut down cleanly. Skipped in short mode since it starts a
// real listener.
func TestRunIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	tempDir := t.TempDir()
	opts := Options{
		DataDir:       tempDir,
		GRPCAddr:      "127.0.0.1:0",
		Fsync:         pebblestore.FsyncModeNever,
		FsyncInterval: time.Millisecond,
		Config:        cfgpkg.Default(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	err := Run(ctx, opts)
	if err != nil && err != context.DeadlineExceeded && err != context.Canceled {
		t.Errorf("expected context cancellation error, got %v", err)
	}
}
