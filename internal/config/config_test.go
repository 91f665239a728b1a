package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_NAME", "APP_ENV", "APP_URL", "HTTP_ADDR", "SHUTDOWN_TIMEOUT",
		"WRITE_RATE_LIMIT", "WRITE_RATE_WINDOW",
		"DATABASE_URL", "POSTGRES_URL", "DATABASE_MAX_CONNS",
		"DATABASE_MAX_CONN_LIFETIME", "DATABASE_MAX_CONN_IDLE_TIME", "DATABASE_AUTO_MIGRATE",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	clearEnv(t)

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL is required")
}

func TestLoadFallsBackToPostgresURL(t *testing.T) {
	clearEnv(t)
	t.Setenv("POSTGRES_URL", "postgres://app@localhost:5432/items")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres://app@localhost:5432/items", cfg.Database.URL)
}

func TestLoadPrefersDatabaseURL(t *testing.T) {
	clearEnv(t)
	t.Setenv("POSTGRES_URL", "postgres://old@localhost/items")
	t.Setenv("DATABASE_URL", " sqlite:///items.db ")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sqlite:///items.db", cfg.Database.URL)
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "sqlite://")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, defaultAppName, cfg.AppName)
	assert.Equal(t, defaultHTTPAddr, cfg.HTTPAddr)
	assert.Equal(t, defaultShutdownTimeout, cfg.ShutdownTimeout)
	assert.Equal(t, defaultWriteRateLimit, cfg.RateLimit.WriteRequests)
	assert.Equal(t, defaultWriteRateWindow, cfg.RateLimit.WriteWindow)
	assert.Equal(t, defaultDBMaxConns, cfg.Database.MaxConns)
	assert.True(t, cfg.Database.AutoMigrate)
}

func TestLoadParsesOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "sqlite://")
	t.Setenv("SHUTDOWN_TIMEOUT", "12")
	t.Setenv("WRITE_RATE_LIMIT", "5")
	t.Setenv("WRITE_RATE_WINDOW", "30s")
	t.Setenv("DATABASE_MAX_CONNS", "8")
	t.Setenv("DATABASE_AUTO_MIGRATE", "false")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 12*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 5, cfg.RateLimit.WriteRequests)
	assert.Equal(t, 30*time.Second, cfg.RateLimit.WriteWindow)
	assert.Equal(t, int32(8), cfg.Database.MaxConns)
	assert.False(t, cfg.Database.AutoMigrate)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "max conns", key: "DATABASE_MAX_CONNS", value: "0"},
		{name: "max conns overflow", key: "DATABASE_MAX_CONNS", value: "3000000000"},
		{name: "rate limit", key: "WRITE_RATE_LIMIT", value: "many"},
		{name: "duration", key: "SHUTDOWN_TIMEOUT", value: "soon"},
		{name: "app url", key: "APP_URL", value: "not a url"},
		{name: "auto migrate", key: "DATABASE_AUTO_MIGRATE", value: "maybe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("DATABASE_URL", "sqlite://")
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoadAcceptsLargestMaxConns(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "sqlite://")
	t.Setenv("DATABASE_MAX_CONNS", "2147483647")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, int32(2147483647), cfg.Database.MaxConns)
}

func TestLoadRequiresHTTPSInProduction(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "sqlite://")
	t.Setenv("APP_ENV", "production")
	t.Setenv("APP_URL", "http://items.example.com")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "https")
}
