package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.LogLevel != "info" {
		t.Fatalf("LogLevel = %q, want info", cfg.LogLevel)
	}
	if cfg.DefaultReadSize != 500 {
		t.Fatalf("DefaultReadSize = %d, want 500", cfg.DefaultReadSize)
	}
}

func TestLoadFromJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, []byte(`{"logLevel":"debug","defaultReadBatchSize":10}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Fatalf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if cfg.DefaultReadSize != 10 {
		t.Fatalf("DefaultReadSize = %d, want 10", cfg.DefaultReadSize)
	}
	// Fields absent from the file keep their defaults.
	if cfg.DefaultTimeout != 30_000 {
		t.Fatalf("DefaultTimeout = %d, want 30000", cfg.DefaultTimeout)
	}
}

func TestFromEnvOverlay(t *testing.T) {
	t.Setenv("SUBENGINE_LOG_LEVEL", "warn")
	t.Setenv("SUBENGINE_DEFAULT_TIMEOUT_MS", "5000")

	cfg := Default()
	FromEnv(&cfg)
	if cfg.LogLevel != "warn" {
		t.Fatalf("LogLevel = %q, want warn", cfg.LogLevel)
	}
	if cfg.DefaultTimeout != 5000 {
		t.Fatalf("DefaultTimeout = %d, want 5000", cfg.DefaultTimeout)
	}
}
