// Package config loads runtime configuration from the environment,
// optionally seeded from a .env file.
package config

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Config holds the runtime settings for the AgentMap core.
type Config struct {
	// BundleDir is the root directory for persisted bundle files.
	BundleDir string
	// SQLitePath is the database file for the SQLite stores; empty
	// selects the in-memory stores.
	SQLitePath string
	// PostgresDSN, when set, selects the PostgreSQL stores instead.
	PostgresDSN string
	// LogLevel is a zerolog level name (debug, info, warn, error).
	LogLevel string
}

// Load reads configuration from the environment. A missing .env file is
// not an error; explicit environment variables always win.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		BundleDir:   getEnv("AGENTMAP_BUNDLE_DIR", "bundles"),
		SQLitePath:  os.Getenv("AGENTMAP_SQLITE_PATH"),
		PostgresDSN: os.Getenv("AGENTMAP_POSTGRES_DSN"),
		LogLevel:    getEnv("AGENTMAP_LOG_LEVEL", "info"),
	}
}

// Level parses the configured log level, defaulting to info.
func (c *Config) Level() zerolog.Level {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return level
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
