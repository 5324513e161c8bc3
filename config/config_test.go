package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 24*time.Hour, cfg.Cache.TTL)
	assert.Equal(t, "./data", cfg.Storage.BasePath)
	assert.Equal(t, 10, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 20, cfg.RateLimit.Burst)
	assert.Empty(t, cfg.Database.URL)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "8088")
	t.Setenv("DATA_DIR", "/var/lib/planner")
	t.Setenv("DATABASE_URL", "postgres://localhost/planner")
	t.Setenv("INTERNAL_API_KEY", "sekret")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8088, cfg.Server.Port)
	assert.Equal(t, "/var/lib/planner", cfg.Storage.BasePath)
	assert.Equal(t, "postgres://localhost/planner", cfg.Database.URL)
	assert.Equal(t, "sekret", cfg.Auth.InternalAPIKey)
}

func TestLoadSetsGlobal(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Same(t, cfg, Get())
}
