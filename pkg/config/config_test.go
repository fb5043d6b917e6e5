package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, LogProduction, cfg.LogLevel)
	assert.Equal(t, BackendMongo, cfg.StoreBackend)
	assert.Equal(t, "bookstore", cfg.Mongo.Database)
	assert.Equal(t, 5432, cfg.Postgres.Port)
	assert.Equal(t, float64(0), cfg.RateLimit.RPS)
	assert.False(t, cfg.SeedData)
	assert.False(t, cfg.FaultInjection)
	assert.Equal(t, 5, cfg.Breaker.MaxFailures)
	assert.Equal(t, 30*time.Second, cfg.Breaker.OpenFor)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("STORE_BACKEND", "postgres")
	t.Setenv("DB_HOST", "db.internal")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("RATE_LIMIT_BURST", "5")
	t.Setenv("SEED_DATA", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, BackendPostgres, cfg.StoreBackend)
	assert.Equal(t, "db.internal", cfg.Postgres.Host)
	assert.Equal(t, 2.5, cfg.RateLimit.RPS)
	assert.Equal(t, 5, cfg.RateLimit.Burst)
	assert.True(t, cfg.SeedData)
}

func TestLoadNormalisesLogLevel(t *testing.T) {
	t.Setenv("LOGGING_LEVEL", " development ")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, LogDevelopment, cfg.LogLevel)
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "unknown backend", key: "STORE_BACKEND", value: "cassandra"},
		{name: "non numeric port", key: "PORT", value: "eighty"},
		{name: "port out of range", key: "PORT", value: "70000"},
		{name: "negative rate", key: "RATE_LIMIT_RPS", value: "-1"},
		{name: "breaker never closes", key: "BREAKER_OPEN_SECONDS", value: "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
