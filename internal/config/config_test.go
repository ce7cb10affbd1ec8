package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 20, cfg.Server.RateLimit)
	assert.Equal(t, 30*time.Second, cfg.Monitor.Interval)
	assert.Equal(t, 3, cfg.Monitor.MaxRetries)
	assert.Equal(t, time.Hour, cfg.Monitor.FreshnessWindow)
	assert.Equal(t, 10*time.Second, cfg.Feed.Timeout)
	assert.Empty(t, cfg.Feed.APIKey)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("FEED_API_KEY", "secret")
	t.Setenv("MONITOR_INTERVAL", "5s")
	t.Setenv("MONITOR_MAX_RETRIES", "5")
	t.Setenv("FEED_TIMEOUT", "3s")
	t.Setenv("LOG_FORMAT", "text")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "secret", cfg.Feed.APIKey)
	assert.Equal(t, 5*time.Second, cfg.Monitor.Interval)
	assert.Equal(t, 5, cfg.Monitor.MaxRetries)
	assert.Equal(t, 3*time.Second, cfg.Feed.Timeout)
	assert.Equal(t, "text", cfg.Logging.Format)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{"port out of range", "SERVER_PORT", "70000"},
		{"unknown log level", "LOG_LEVEL", "verbose"},
		{"unknown log format", "LOG_FORMAT", "xml"},
		{"feed timeout above bound", "FEED_TIMEOUT", "30s"},
		{"interval too short", "MONITOR_INTERVAL", "100ms"},
		{"zero retries", "MONITOR_MAX_RETRIES", "0"},
		{"zero worker buffer", "WORKER_BUFFER_SIZE", "0"},
		{"zero rate limit", "SERVER_RATE_LIMIT", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
