package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/fluxo-app/fluxo-go/internal/observability"
	"github.com/fluxo-app/fluxo-go/pkg/fluxo"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type handlers struct {
	client  *fluxo.Client
	metrics *observability.Metrics
	logger  *zap.Logger
}

// ============================================================
// Dashboard
// ============================================================

func (h *handlers) dashboard(w http.ResponseWriter, r *http.Request) {
	loc := h.client.Location()

	window := fluxo.MonthOf(time.Now().In(loc))
	if key := r.URL.Query().Get("month"); key != "" {
		parsed, err := fluxo.ParseMonth(key, loc)
		if err != nil {
			writeError(w, http.StatusBadRequest, "month must be "+fluxo.MonthLayout)
			return
		}
		window = parsed
	}

	dashboard, err := h.client.Dashboard(r.Context(), window)
	if err != nil {
		h.metrics.IncrDashboardLoad("error")
		handleClientError(w, err, "could not load the dashboard", h.logger)
		return
	}

	h.metrics.IncrDashboardLoad("ok")
	writeJSON(w, http.StatusOK, dashboard)
}

// ============================================================
// Transactions
// ============================================================

func (h *handlers) listTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, limit := parsePagination(r)

	query := h.client.Transactions.Query().Page(page).Limit(limit)

	if v := q.Get("type"); v != "" {
		t := fluxo.TransactionType(strings.ToUpper(v))
		if !t.Valid() {
			writeError(w, http.StatusBadRequest, "type must be RECEITA or DESPESA")
			return
		}
		query = query.OfType(t)
	}
	if v := strings.TrimSpace(q.Get("q")); v != "" {
		query = query.Search(v)
	}

	from, err := h.parseDay(q.Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "from must be "+fluxo.DateLayout)
		return
	}
	to, err := h.parseDay(q.Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "to must be "+fluxo.DateLayout)
		return
	}
	if !from.IsZero() || !to.IsZero() {
		query = query.Between(from, to)
	}

	list, err := query.Execute(r.Context())
	if err != nil {
		handleClientError(w, err, "could not load transactions", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *handlers) getTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	txn, err := h.client.Transactions.Get(r.Context(), id)
	if err != nil {
		handleClientError(w, err, "could not load the transaction", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, txn)
}

type createRequest struct {
	Description     string                `json:"description"`
	Amount          json.RawMessage       `json:"amount"`
	Date            string                `json:"date"`
	Type            fluxo.TransactionType `json:"type"`
	CategoryID      int64                 `json:"categoryId"`
	PaymentMethodID int64                 `json:"paymentMethodId"`
	RepeatCount     int                   `json:"repeatCount"`
	DistributeTotal bool                  `json:"distributeTotal"`
}

func (h *handlers) createTransaction(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	amount, err := fluxo.ParseAmount(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid amount")
		return
	}
	date, err := h.parseDay(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "date must be "+fluxo.DateLayout)
		return
	}

	created, err := h.client.Transactions.Create(r.Context(), &fluxo.CreateTransactionParams{
		Description:     req.Description,
		Amount:          amount,
		Date:            date,
		Type:            req.Type,
		CategoryID:      req.CategoryID,
		PaymentMethodID: req.PaymentMethodID,
		RepeatCount:     req.RepeatCount,
		DistributeTotal: req.DistributeTotal,
	})
	if err != nil {
		handleClientError(w, err, "could not save the transaction", h.logger)
		return
	}

	h.logger.Info("transaction created", zap.Int("occurrences", len(created)))
	writeJSON(w, http.StatusCreated, map[string]any{"items": created})
}

type updateRequest struct {
	Description     *string                `json:"description"`
	Amount          json.RawMessage        `json:"amount"`
	Date            *string                `json:"date"`
	Type            *fluxo.TransactionType `json:"type"`
	CategoryID      *int64                 `json:"categoryId"`
	PaymentMethodID *int64                 `json:"paymentMethodId"`
}

func (h *handlers) updateTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req updateRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	params := &fluxo.UpdateTransactionParams{
		Description:     req.Description,
		Type:            req.Type,
		CategoryID:      req.CategoryID,
		PaymentMethodID: req.PaymentMethodID,
	}
	if len(req.Amount) > 0 {
		amount, err := fluxo.ParseAmount(req.Amount)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid amount")
			return
		}
		params.Amount = &amount
	}
	if req.Date != nil {
		date, err := h.parseDay(*req.Date)
		if err != nil || date.IsZero() {
			writeError(w, http.StatusBadRequest, "date must be "+fluxo.DateLayout)
			return
		}
		params.Date = &date
	}

	txn, err := h.client.Transactions.Update(r.Context(), id, params)
	if err != nil {
		handleClientError(w, err, "could not save the transaction", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, txn)
}

func (h *handlers) deleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.client.Transactions.Delete(r.Context(), id); err != nil {
		handleClientError(w, err, "could not delete the transaction", h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handlers) settleTransaction(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.client.Transactions.Settle, "could not settle the transaction")
}

func (h *handlers) cancelTransaction(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.client.Transactions.Cancel, "could not cancel the transaction")
}

func (h *handlers) transition(w http.ResponseWriter, r *http.Request, action func(ctx context.Context, id int64) (*fluxo.Transaction, error), fallback string) {
	id, err := parseID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	txn, err := action(r.Context(), id)
	if err != nil {
		handleClientError(w, err, fallback, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, txn)
}

// parseDay reads a YYYY-MM-DD date in the client location; empty is zero
func (h *handlers) parseDay(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	return time.ParseInLocation(fluxo.DateLayout, s, h.client.Location())
}

// ============================================================
// Installment preview
// ============================================================

type previewRequest struct {
	Amount     json.RawMessage `json:"amount"`
	Date       string          `json:"date"`
	Count      int             `json:"count"`
	Distribute bool            `json:"distribute"`
}

type previewResponse struct {
	Items []fluxo.Installment `json:"items"`
	Total decimal.Decimal     `json:"total"`
}

// previewInstallments never fails on incomplete input; it previews nothing
func (h *handlers) previewInstallments(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	items := []fluxo.Installment{}
	amount, amountErr := fluxo.ParseAmount(req.Amount)
	start, dateErr := h.parseDay(req.Date)
	if amountErr == nil && dateErr == nil {
		items = fluxo.PreviewInstallments(amount, start, req.Count, req.Distribute)
	}

	writeJSON(w, http.StatusOK, previewResponse{Items: items, Total: fluxo.InstallmentsTotal(items)})
}

// ============================================================
// Reference data
// ============================================================

func (h *handlers) listCategories(w http.ResponseWriter, r *http.Request) {
	var (
		categories []*fluxo.Category
		err        error
	)
	if v := r.URL.Query().Get("type"); v != "" {
		t := fluxo.TransactionType(strings.ToUpper(v))
		if !t.Valid() {
			writeError(w, http.StatusBadRequest, "type must be RECEITA or DESPESA")
			return
		}
		categories, err = h.client.Categories.ForType(r.Context(), t)
	} else {
		categories, err = h.client.Categories.List(r.Context())
	}
	if err != nil {
		handleClientError(w, err, "could not load categories", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

func (h *handlers) listPaymentMethods(w http.ResponseWriter, r *http.Request) {
	methods, err := h.client.PaymentMethods.List(r.Context())
	if err != nil {
		handleClientError(w, err, "could not load payment methods", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, methods)
}
