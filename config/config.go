// Package config loads process configuration from the environment,
// optionally seeded from a .env file, following the teacher's
// godotenv-based bootstrap convention.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"quantcore/logger"
)

// Config holds the knobs that control the daemon and HTTP surfaces. Core
// packages (backtest, paper, allocator, ...) never read process config
// directly — they take explicit parameters — so this type stays small and
// only feeds cmd/ entrypoints.
type Config struct {
	SQLitePath      string
	HTTPAddr        string
	SnapshotCron    string
	LogLevel        string
	WalkForwardGate float64
}

// Load reads .env (if present, errors are non-fatal) then populates Config
// from the environment with sane defaults.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		logger.Debugf("no .env file loaded: %v", err)
	}

	cfg := &Config{
		SQLitePath:      getString("QUANTCORE_SQLITE_PATH", "quantcore.db"),
		HTTPAddr:        getString("QUANTCORE_HTTP_ADDR", ":8080"),
		SnapshotCron:    getString("QUANTCORE_SNAPSHOT_CRON", "@every 1h"),
		LogLevel:        getString("QUANTCORE_LOG_LEVEL", "info"),
		WalkForwardGate: getFloat("QUANTCORE_WALKFORWARD_THRESHOLD", 0.6),
	}
	return cfg
}

func getString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

// getDuration is unused today but kept for daemon knobs that will parse
// durations directly from the environment (e.g. scan interval overrides).
func getDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
