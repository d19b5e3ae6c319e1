package config

import (
	"time"

	"github.com/fluxo-app/fluxo-go/internal/types"
	"github.com/fluxo-app/fluxo-go/pkg/fluxo"
	"github.com/getsentry/sentry-go"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

// ClientOptions builds the backend client options for this configuration.
func (c *Config) ClientOptions(logger types.Logger, hooks *types.Hooks) *fluxo.ClientOptions {
	opts := &fluxo.ClientOptions{
		BaseURL:     c.APIURL,
		Timeout:     c.Timeout,
		Location:    c.Location,
		Logger:      logger,
		RetryConfig: c.RetryConfig(),
		Hooks:       hooks,
	}

	if c.RateLimit > 0 {
		burst := int(c.RateLimit)
		if burst < 1 {
			burst = 1
		}
		opts.RateLimiter = rate.NewLimiter(rate.Limit(c.RateLimit), burst)
	}

	if c.Breaker {
		opts.Breaker = NewCircuitBreaker("fluxo-backend")
	}

	if c.SentryDSN != "" {
		opts.SentryOptions = &sentry.ClientOptions{
			Dsn:         c.SentryDSN,
			Environment: c.Environment,
			Release:     types.UserAgent,
		}
	}

	return opts
}

// NewCircuitBreaker opens after five mostly-failing requests and probes again after ten seconds.
func NewCircuitBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,                // half-open: allow 3 requests
		Interval:    30 * time.Second, // closed: reset counters every 30s
		Timeout:     10 * time.Second, // open -> half-open after 10s
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 5 && failureRatio >= 0.6
		},
	})
}
