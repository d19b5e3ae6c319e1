// Package config loads fluxo settings from the environment.
// Values come from environment variables with defaults; an optional .env
// file is read first and never overrides variables already set.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fluxo-app/fluxo-go/internal/types"
	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	// Backend
	APIURL       string
	Timeout      time.Duration
	MaxRetries   int
	RetryWait    time.Duration
	RetryMaxWait time.Duration
	RateLimit    float64 // requests per second, 0 disables limiting
	Breaker      bool

	// Calendar used for month windows and date-only values
	Timezone string
	Location *time.Location

	// Server
	ListenAddr string

	// Observability
	LogLevel    string
	SentryDSN   string
	Environment string
}

// Load reads an optional .env (or the given files) and then the environment.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading env file: %w", err)
	}

	cfg := &Config{
		APIURL:       strings.TrimRight(getEnv("FLUXO_API_URL", types.DefaultBaseURL), "/"),
		Timeout:      getEnvDuration("FLUXO_TIMEOUT", types.DefaultTimeout),
		MaxRetries:   getEnvInt("FLUXO_MAX_RETRIES", 0),
		RetryWait:    getEnvDuration("FLUXO_RETRY_WAIT", 500*time.Millisecond),
		RetryMaxWait: getEnvDuration("FLUXO_RETRY_MAX_WAIT", 5*time.Second),
		RateLimit:    getEnvFloat("FLUXO_RATE_LIMIT", 0),
		Breaker:      getEnvBool("FLUXO_BREAKER", false),

		Timezone: getEnv("FLUXO_TZ", ""),

		ListenAddr: getEnv("FLUXO_LISTEN_ADDR", ":8080"),

		LogLevel:    strings.ToLower(getEnv("FLUXO_LOG_LEVEL", "info")),
		SentryDSN:   getEnv("FLUXO_SENTRY_DSN", ""),
		Environment: getEnv("FLUXO_ENVIRONMENT", "development"),
	}

	cfg.Location = time.Local
	if cfg.Timezone != "" {
		loc, err := time.LoadLocation(cfg.Timezone)
		if err != nil {
			return nil, fmt.Errorf("invalid FLUXO_TZ %q: %w", cfg.Timezone, err)
		}
		cfg.Location = loc
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the configuration and reports every problem at once
func (c *Config) Validate() error {
	var problems []string

	if u, err := url.Parse(c.APIURL); err != nil || u.Scheme == "" || u.Host == "" {
		problems = append(problems, fmt.Sprintf("invalid FLUXO_API_URL %q: must be an absolute URL", c.APIURL))
	}
	if c.Timeout <= 0 {
		problems = append(problems, "FLUXO_TIMEOUT must be positive")
	}
	if c.MaxRetries < 0 {
		problems = append(problems, "FLUXO_MAX_RETRIES must not be negative")
	}
	if c.RateLimit < 0 {
		problems = append(problems, "FLUXO_RATE_LIMIT must not be negative")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Sprintf("invalid FLUXO_LOG_LEVEL %q", c.LogLevel))
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(problems, "; "))
	}
	return nil
}

// RetryConfig returns the retry settings, or nil when retries are disabled
func (c *Config) RetryConfig() *types.RetryConfig {
	if c.MaxRetries <= 0 {
		return nil
	}
	return &types.RetryConfig{
		MaxRetries: c.MaxRetries,
		RetryWait:  c.RetryWait,
		MaxWait:    c.RetryMaxWait,
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
