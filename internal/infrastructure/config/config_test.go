package config

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("AGENTMAP_BUNDLE_DIR", "")
	t.Setenv("AGENTMAP_LOG_LEVEL", "")

	cfg := Load()
	assert.Equal(t, "bundles", cfg.BundleDir)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.SQLitePath)
	assert.Empty(t, cfg.PostgresDSN)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("AGENTMAP_BUNDLE_DIR", "/var/lib/agentmap")
	t.Setenv("AGENTMAP_SQLITE_PATH", "/var/lib/agentmap/state.db")
	t.Setenv("AGENTMAP_LOG_LEVEL", "debug")

	cfg := Load()
	assert.Equal(t, "/var/lib/agentmap", cfg.BundleDir)
	assert.Equal(t, "/var/lib/agentmap/state.db", cfg.SQLitePath)
	assert.Equal(t, zerolog.DebugLevel, cfg.Level())
}

func TestLevelFallsBackToInfo(t *testing.T) {
	cfg := &Config{LogLevel: "shouting"}
	assert.Equal(t, zerolog.InfoLevel, cfg.Level())

	cfg.LogLevel = ""
	assert.Equal(t, zerolog.InfoLevel, cfg.Level())
}
