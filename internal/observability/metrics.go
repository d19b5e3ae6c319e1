package observability

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/fluxo-app/fluxo-go/internal/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus metrics of the client and the BFF.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	backendRequests *prometheus.CounterVec
	backendDuration *prometheus.HistogramVec
	backendErrors   *prometheus.CounterVec
	dashboardLoads  *prometheus.CounterVec
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// metrics in it, so it can be called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		backendRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fluxo_backend_requests_total",
				Help: "Backend API responses by method and status code.",
			},
			[]string{"method", "status"},
		),
		backendDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fluxo_backend_request_duration_seconds",
				Help:    "Duration of backend API calls.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		backendErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fluxo_backend_errors_total",
				Help: "Failed backend API calls by kind.",
			},
			[]string{"kind"},
		),
		dashboardLoads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fluxo_dashboard_loads_total",
				Help: "Monthly dashboard loads by result (ok, error, stale).",
			},
			[]string{"result"},
		),
		httpRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fluxo_http_requests_total",
				Help: "BFF requests by method, route and status.",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fluxo_http_request_duration_seconds",
				Help:    "Duration of BFF requests by route.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
	}
}

// Hooks returns client hooks that feed the backend metrics
func (m *Metrics) Hooks() *types.Hooks {
	return &types.Hooks{
		OnResponse: func(ctx context.Context, resp *http.Response, duration time.Duration) {
			method := "UNKNOWN"
			if resp.Request != nil {
				method = resp.Request.Method
			}
			m.backendRequests.WithLabelValues(method, strconv.Itoa(resp.StatusCode)).Inc()
			m.backendDuration.WithLabelValues(method).Observe(duration.Seconds())
		},
		OnError: func(ctx context.Context, err error) {
			m.backendErrors.WithLabelValues(ErrorKind(err)).Inc()
		},
	}
}

// IncrDashboardLoad counts a dashboard load outcome
func (m *Metrics) IncrDashboardLoad(result string) {
	m.dashboardLoads.WithLabelValues(result).Inc()
}

// ObserveHTTP records one BFF request
func (m *Metrics) ObserveHTTP(method, route, status string, d time.Duration) {
	m.httpRequests.WithLabelValues(method, route, status).Inc()
	m.httpDuration.WithLabelValues(route).Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// ErrorKind classifies a backend error for metric labels
func ErrorKind(err error) string {
	switch {
	case errors.Is(err, types.ErrNotFound):
		return "not_found"
	case errors.Is(err, types.ErrRateLimited):
		return "rate_limited"
	case errors.Is(err, types.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, types.ErrCircuitOpen):
		return "circuit_open"
	case errors.Is(err, types.ErrServerError):
		return "server_error"
	}

	var apiErr *types.Error
	if errors.As(err, &apiErr) {
		return "client_error"
	}
	return "transport"
}
