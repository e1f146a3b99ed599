package config

import (
	"os"
	"strconv"
)

// FromEnv overlays SUBENGINE_* environment variables onto cfg.
func FromEnv(cfg *Config) {
	if v := os.Getenv("SUBENGINE_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("SUBENGINE_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("SUBENGINE_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
	if v := os.Getenv("SUBENGINE_DEFAULT_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.DefaultTimeout = n
		}
	}
	if v := os.Getenv("SUBENGINE_DEFAULT_READ_BATCH_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.DefaultReadSize = n
		}
	}
}
