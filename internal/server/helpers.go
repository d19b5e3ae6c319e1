package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/fluxo-app/fluxo-go/pkg/fluxo"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func decodeBody(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func parseID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid transaction id")
	}
	return id, nil
}

func parsePagination(r *http.Request) (page, limit int) {
	page = 1
	limit = 20
	if v := r.URL.Query().Get("page"); v != "" {
		if p, err := strconv.Atoi(v); err == nil && p > 0 {
			page = p
		}
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if l, err := strconv.Atoi(v); err == nil && l > 0 && l <= 100 {
			limit = l
		}
	}
	return
}

// handleClientError maps client errors to HTTP responses. Backend
// failures become 502 with the backend-provided message when present.
func handleClientError(w http.ResponseWriter, err error, fallback string, logger *zap.Logger) {
	switch {
	case errors.Is(err, fluxo.ErrInvalidRequest):
		logger.Debug("validation error", zap.String("error", err.Error()))
		writeError(w, http.StatusBadRequest, fluxo.UserMessage(err, fallback))
	case errors.Is(err, fluxo.ErrNotFound):
		logger.Debug("not found", zap.String("error", err.Error()))
		writeError(w, http.StatusNotFound, fluxo.UserMessage(err, fallback))
	case errors.Is(err, fluxo.ErrCircuitOpen):
		logger.Error("circuit breaker open", zap.Error(err))
		writeError(w, http.StatusServiceUnavailable, fallback)
	case errors.Is(err, fluxo.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		logger.Error("backend timeout", zap.Error(err))
		writeError(w, http.StatusGatewayTimeout, fallback)
	default:
		logger.Error("backend request failed", zap.Error(err))
		writeError(w, http.StatusBadGateway, fluxo.UserMessage(err, fallback))
	}
}
