package fluxo

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/fluxo-app/fluxo-go/internal/transport"
	internalTypes "github.com/fluxo-app/fluxo-go/internal/types"
	"github.com/getsentry/sentry-go"
	"github.com/sony/gobreaker"
)

const (
	// DefaultBaseURL is the default backend origin
	DefaultBaseURL = internalTypes.DefaultBaseURL

	// DefaultTimeout is the default HTTP client timeout
	DefaultTimeout = internalTypes.DefaultTimeout

	// UserAgent is the user agent string
	UserAgent = internalTypes.UserAgent

	// DefaultPageSize is the page size used when following paginated month fetches
	DefaultPageSize = 100
)

// Client is the main backend API client
type Client struct {
	// Service interfaces
	Transactions   TransactionService
	Categories     CategoryService
	PaymentMethods PaymentMethodService

	// Internal fields
	baseURL    string
	httpClient *http.Client
	transport  Transport
	options    *ClientOptions
}

// ClientOptions configures the client
type ClientOptions struct {
	// BaseURL overrides the default backend origin
	BaseURL string

	// HTTPClient allows using a custom HTTP client
	HTTPClient *http.Client

	// Timeout sets the HTTP client timeout
	Timeout time.Duration

	// Location is the calendar used to read date-only values and bucket days.
	// Defaults to time.Local.
	Location *time.Location

	// PageSize for paginated month fetches
	PageSize int

	// Logger for debug logging
	Logger Logger

	// RetryConfig enables retries; nil means a failed call is not repeated
	RetryConfig *internalTypes.RetryConfig

	// RateLimiter for rate limiting
	RateLimiter RateLimiter

	// Breaker trips after repeated backend failures when set
	Breaker *gobreaker.CircuitBreaker

	// Hooks for observability
	Hooks *internalTypes.Hooks

	// SentryDSN enables Sentry error tracking when set
	SentryDSN string

	// SentryOptions allows custom Sentry configuration
	SentryOptions *sentry.ClientOptions
}

// Logger interface for logging
type Logger = internalTypes.Logger

// RetryConfig configures retry behavior
type RetryConfig = internalTypes.RetryConfig

// Hooks provides lifecycle hooks for requests
type Hooks = internalTypes.Hooks

// Request describes a single backend call
type Request = internalTypes.Request

// RateLimiter interface for rate limiting
type RateLimiter interface {
	Wait(ctx context.Context) error
}

// Transport handles HTTP/JSON communication
type Transport interface {
	Do(ctx context.Context, req *internalTypes.Request, result interface{}) error
}

// NewClient creates a new backend client
func NewClient(opts *ClientOptions) (*Client, error) {
	if opts == nil {
		opts = &ClientOptions{}
	}

	// Initialize Sentry if DSN is provided
	if opts.SentryDSN != "" || opts.SentryOptions != nil {
		sentryOpts := sentry.ClientOptions{}

		if opts.SentryOptions != nil {
			sentryOpts = *opts.SentryOptions
		}

		// Override DSN if provided separately
		if opts.SentryDSN != "" {
			sentryOpts.Dsn = opts.SentryDSN
		}

		if sentryOpts.Environment == "" {
			sentryOpts.Environment = "production"
		}

		// Log error but don't fail client creation
		if err := sentry.Init(sentryOpts); err != nil && opts.Logger != nil {
			opts.Logger.Error("Failed to initialize Sentry", "error", err)
		}
	}

	// Set defaults
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}

	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{
			Timeout: DefaultTimeout,
		}
	}

	if opts.Timeout > 0 {
		opts.HTTPClient.Timeout = opts.Timeout
	}

	if opts.Location == nil {
		opts.Location = time.Local
	}

	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}

	trans := transport.NewRESTTransport(&transport.Options{
		BaseURL:     opts.BaseURL,
		HTTPClient:  opts.HTTPClient,
		RetryConfig: opts.RetryConfig,
		Breaker:     opts.Breaker,
		Logger:      opts.Logger,
		Hooks:       opts.Hooks,
	})

	c := &Client{
		baseURL:    opts.BaseURL,
		httpClient: opts.HTTPClient,
		transport:  trans,
		options:    opts,
	}

	c.initServices()

	return c, nil
}

// NewClientWithURL creates a client against the given backend origin
func NewClientWithURL(baseURL string) (*Client, error) {
	return NewClient(&ClientOptions{
		BaseURL: baseURL,
	})
}

// initServices initializes all service implementations
func (c *Client) initServices() {
	c.Transactions = newTransactionService(c)
	c.Categories = &categoryService{client: c}
	c.PaymentMethods = &paymentMethodService{client: c}
}

// BaseURL returns the backend origin the client talks to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Location returns the calendar location used for dates
func (c *Client) Location() *time.Location {
	if c.options == nil || c.options.Location == nil {
		return time.Local
	}
	return c.options.Location
}

func (c *Client) logger() Logger {
	if c.options == nil {
		return nil
	}
	return c.options.Logger
}

func (c *Client) pageSize() int {
	if c.options == nil || c.options.PageSize <= 0 {
		return DefaultPageSize
	}
	return c.options.PageSize
}

// execute performs a backend call, reporting failures to Sentry
func (c *Client) execute(ctx context.Context, req *internalTypes.Request, result interface{}) error {
	// Rate limiting
	if c.options != nil && c.options.RateLimiter != nil {
		if err := c.options.RateLimiter.Wait(ctx); err != nil {
			if hub := sentry.GetHubFromContext(ctx); hub != nil {
				hub.CaptureException(err)
			} else {
				sentry.CaptureException(err)
			}
			return fmt.Errorf("rate limiter: %w", err)
		}
	}

	start := time.Now()
	err := c.transport.Do(ctx, req, result)
	duration := time.Since(start)

	if err != nil {
		capture := func(hub *sentry.Hub) {
			hub.WithScope(func(scope *sentry.Scope) {
				scope.SetTag("http.method", req.Method)
				scope.SetTag("http.path", req.Path)
				scope.SetContext("request", map[string]interface{}{
					"query":    req.Query.Encode(),
					"duration": duration.String(),
				})
				hub.CaptureException(err)
			})
		}
		if hub := sentry.GetHubFromContext(ctx); hub != nil {
			capture(hub)
		} else {
			capture(sentry.CurrentHub())
		}
	}

	return err
}

// Close flushes any pending Sentry events and performs cleanup
func (c *Client) Close() {
	sentry.Flush(2 * time.Second)
}
