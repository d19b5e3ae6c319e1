package observability

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fluxo-app/fluxo-go/internal/types"
	"github.com/go-chi/chi/v5"
	pkgerrors "github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestHooks_RecordBackendCalls(t *testing.T) {
	m := NewMetrics()
	hooks := m.Hooks()

	req := httptest.NewRequest(http.MethodGet, "/transactions", nil)
	hooks.OnResponse(context.Background(), &http.Response{StatusCode: 200, Request: req}, 20*time.Millisecond)
	hooks.OnResponse(context.Background(), &http.Response{StatusCode: 404, Request: req}, 5*time.Millisecond)
	hooks.OnError(context.Background(), &types.Error{Code: "NOT_FOUND", Err: types.ErrNotFound})
	hooks.OnError(context.Background(), pkgerrors.Wrap(types.ErrTimeout, "slow"))

	assert.Equal(t, float64(1), testutil.ToFloat64(m.backendRequests.WithLabelValues("GET", "200")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.backendRequests.WithLabelValues("GET", "404")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.backendErrors.WithLabelValues("not_found")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.backendErrors.WithLabelValues("timeout")))
}

func TestErrorKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{types.ErrRateLimited, "rate_limited"},
		{types.ErrCircuitOpen, "circuit_open"},
		{&types.Error{StatusCode: 502, Err: types.ErrServerError}, "server_error"},
		{&types.Error{StatusCode: 400, Code: "BAD_REQUEST"}, "client_error"},
		{context.DeadlineExceeded, "timeout"},
		{errors.New("connection refused"), "transport"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorKind(tt.err))
		})
	}
}

func TestMetricsHandler_Exposes(t *testing.T) {
	m := NewMetrics()
	m.IncrDashboardLoad("stale")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `fluxo_dashboard_loads_total{result="stale"} 1`)
}

func TestMiddlewares(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	m := NewMetrics()

	r := chi.NewRouter()
	r.Use(ZapLoggerMiddleware(zap.New(core)))
	r.Use(MetricsMiddleware(m))
	r.Get("/v1/transactions/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/transactions/9", nil))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.WarnLevel, entry.Level)
	assert.Equal(t, int64(404), entry.ContextMap()["status"])

	assert.Equal(t, float64(1), testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/v1/transactions/{id}", "404")))
}

func TestClientLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := NewClientLogger(zap.New(core))

	logger.Debug("backend request", "method", "GET")
	logger.Warn("malformed transaction amount, using zero", "transaction_id", int64(3))

	require.Equal(t, 2, logs.Len())
	warn := logs.All()[1]
	assert.Equal(t, zapcore.WarnLevel, warn.Level)
	assert.Equal(t, "fluxo", warn.LoggerName)
	assert.Equal(t, int64(3), warn.ContextMap()["transaction_id"])
	assert.True(t, strings.HasPrefix(warn.Message, "malformed"))

	// Nil falls back to a no-op logger
	NewClientLogger(nil).Info("ignored")
}
