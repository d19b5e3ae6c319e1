package server

import (
	"net/http"

	"github.com/fluxo-app/fluxo-go/internal/observability"
	"github.com/fluxo-app/fluxo-go/pkg/fluxo"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// NewRouter creates the BFF router with all routes and middleware.
// Every request is served statelessly from the backend through client.
func NewRouter(client *fluxo.Client, metrics *observability.Metrics, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if metrics == nil {
		metrics = observability.NewMetrics()
	}

	h := &handlers{client: client, metrics: metrics, logger: logger}

	r := chi.NewRouter()

	// --- Middleware ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(observability.ZapLoggerMiddleware(logger))
	r.Use(observability.MetricsMiddleware(metrics))
	r.Use(middleware.Recoverer)

	// --- Operational endpoints ---
	r.Get("/healthz", healthzHandler)
	r.Handle("/metrics", metrics.Handler())

	// --- API v1 ---
	r.Route("/v1", func(r chi.Router) {
		r.Get("/dashboard", h.dashboard)

		r.Get("/transactions", h.listTransactions)
		r.Post("/transactions", h.createTransaction)
		r.Get("/transactions/{id}", h.getTransaction)
		r.Put("/transactions/{id}", h.updateTransaction)
		r.Delete("/transactions/{id}", h.deleteTransaction)
		r.Post("/transactions/{id}/settle", h.settleTransaction)
		r.Post("/transactions/{id}/cancel", h.cancelTransaction)

		r.Post("/installments/preview", h.previewInstallments)

		r.Get("/categories", h.listCategories)
		r.Get("/payment-methods", h.listPaymentMethods)
	})

	return r
}

func healthzHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
