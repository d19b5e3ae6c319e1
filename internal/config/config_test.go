package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	// Point at a missing file so a developer .env cannot leak in
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:3000", cfg.APIURL)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, 0, cfg.MaxRetries)
	assert.Nil(t, cfg.RetryConfig())
	assert.False(t, cfg.Breaker)
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, time.Local, cfg.Location)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("FLUXO_API_URL", "https://api.example.com/")
	t.Setenv("FLUXO_TIMEOUT", "5s")
	t.Setenv("FLUXO_MAX_RETRIES", "3")
	t.Setenv("FLUXO_RETRY_WAIT", "100ms")
	t.Setenv("FLUXO_BREAKER", "true")
	t.Setenv("FLUXO_RATE_LIMIT", "2.5")
	t.Setenv("FLUXO_TZ", "America/Sao_Paulo")
	t.Setenv("FLUXO_LOG_LEVEL", "DEBUG")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com", cfg.APIURL)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "America/Sao_Paulo", cfg.Location.String())

	retry := cfg.RetryConfig()
	require.NotNil(t, retry)
	assert.Equal(t, 3, retry.MaxRetries)
	assert.Equal(t, 100*time.Millisecond, retry.RetryWait)

	opts := cfg.ClientOptions(nil, nil)
	assert.Equal(t, "https://api.example.com", opts.BaseURL)
	assert.NotNil(t, opts.Breaker)
	assert.NotNil(t, opts.RateLimiter)
	assert.Nil(t, opts.SentryOptions)
}

func TestLoad_DotEnvDoesNotOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("FLUXO_API_URL=http://from-file:3000\nFLUXO_SENTRY_DSN=https://key@sentry.example.com/1\n"), 0o600))

	t.Setenv("FLUXO_API_URL", "http://from-env:3000")
	// Registered so t restores it after godotenv sets it
	t.Setenv("FLUXO_SENTRY_DSN", "")
	require.NoError(t, os.Unsetenv("FLUXO_SENTRY_DSN"))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "http://from-env:3000", cfg.APIURL)
	assert.Equal(t, "https://key@sentry.example.com/1", cfg.SentryDSN)
	assert.NotNil(t, cfg.ClientOptions(nil, nil).SentryOptions)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  string
	}{
		{name: "relative url", key: "FLUXO_API_URL", val: "localhost"},
		{name: "log level", key: "FLUXO_LOG_LEVEL", val: "verbose"},
		{name: "timezone", key: "FLUXO_TZ", val: "Mars/Olympus"},
		{name: "negative retries", key: "FLUXO_MAX_RETRIES", val: "-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.val)

			_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
			assert.Error(t, err)
		})
	}
}
