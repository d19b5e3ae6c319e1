package fluxo

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// listShape identifies which of the two list payloads the backend sent
type listShape int

const (
	shapeArray listShape = iota + 1
	shapeEnvelope
)

// wireTransaction is a transaction as the backend serializes it.
// Amount and Date stay raw until normalize coerces them.
type wireTransaction struct {
	ID                int64             `json:"id"`
	Description       string            `json:"description"`
	Amount            json.RawMessage   `json:"amount"`
	Date              string            `json:"date"`
	Type              TransactionType   `json:"type"`
	Status            TransactionStatus `json:"status"`
	CategoryID        int64             `json:"categoryId"`
	PaymentMethodID   int64             `json:"paymentMethodId"`
	SeriesID          *string           `json:"seriesId"`
	InstallmentNumber *int              `json:"installmentNumber"`
	InstallmentTotal  *int              `json:"installmentTotal"`
	CreatedAt         *time.Time        `json:"createdAt"`
	UpdatedAt         *time.Time        `json:"updatedAt"`
	Category          *Category         `json:"category"`
	PaymentMethod     *PaymentMethod    `json:"paymentMethod"`
}

// listResponse is either a raw array of transactions or a paginated envelope
type listResponse struct {
	shape       listShape
	items       []wireTransaction
	total       *int
	totalPages  *int
	currentPage *int
	pageSize    *int
}

type listEnvelope struct {
	Items       []wireTransaction `json:"items"`
	Total       *int              `json:"total"`
	TotalPages  *int              `json:"totalPages"`
	CurrentPage *int              `json:"currentPage"`
	PageSize    *int              `json:"pageSize"`
}

// UnmarshalJSON picks the variant from the first JSON token
func (r *listResponse) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		r.shape = shapeArray
		return nil
	}

	switch data[0] {
	case '[':
		r.shape = shapeArray
		return json.Unmarshal(data, &r.items)
	case '{':
		var env listEnvelope
		if err := json.Unmarshal(data, &env); err != nil {
			return err
		}
		r.shape = shapeEnvelope
		r.items = env.Items
		r.total = env.Total
		r.totalPages = env.TotalPages
		r.currentPage = env.CurrentPage
		r.pageSize = env.PageSize
		return nil
	default:
		return fmt.Errorf("unexpected list payload starting with %q", data[0])
	}
}

// normalize converts the payload into canonical records and pagination.
// Absent pagination fields default to a single page holding every item.
func (r *listResponse) normalize(logger Logger, loc *time.Location) *TransactionList {
	txns := make([]*Transaction, 0, len(r.items))
	for i := range r.items {
		txns = append(txns, r.items[i].normalize(logger, loc))
	}

	page := Pagination{
		Total:       intOr(r.total, len(txns)),
		TotalPages:  intOr(r.totalPages, 1),
		CurrentPage: intOr(r.currentPage, 1),
		PageSize:    intOr(r.pageSize, len(txns)),
	}

	return &TransactionList{
		Transactions: txns,
		Pagination:   page,
		HasMore:      page.CurrentPage < page.TotalPages,
	}
}

// normalizePage is normalize for a response to a request for page
// requested. An envelope without currentPage is taken to be that page.
func (r *listResponse) normalizePage(logger Logger, loc *time.Location, requested int) *TransactionList {
	list := r.normalize(logger, loc)
	if r.shape == shapeEnvelope && r.currentPage == nil && requested > 0 {
		list.CurrentPage = requested
		list.HasMore = requested < list.TotalPages
	}
	return list
}

func (w *wireTransaction) normalize(logger Logger, loc *time.Location) *Transaction {
	amount, err := ParseAmount(w.Amount)
	if err != nil && logger != nil {
		logger.Warn("malformed transaction amount, using zero", "transaction_id", w.ID, "error", err)
	}

	date, err := ParseDate(w.Date, loc)
	if err != nil && logger != nil {
		logger.Warn("malformed transaction date", "transaction_id", w.ID, "error", err)
	}

	t := &Transaction{
		ID:              w.ID,
		Description:     w.Description,
		Amount:          amount,
		Date:            date,
		Type:            w.Type,
		Status:          w.Status,
		CategoryID:      w.CategoryID,
		PaymentMethodID: w.PaymentMethodID,
		Category:        w.Category,
		PaymentMethod:   w.PaymentMethod,
	}

	if w.Category != nil {
		t.CategoryName = w.Category.Name
		if t.CategoryID == 0 {
			t.CategoryID = w.Category.ID
		}
	}
	if w.PaymentMethod != nil {
		t.PaymentMethodName = w.PaymentMethod.Name
		if t.PaymentMethodID == 0 {
			t.PaymentMethodID = w.PaymentMethod.ID
		}
	}
	if w.SeriesID != nil {
		t.SeriesID = *w.SeriesID
	}
	if w.InstallmentNumber != nil {
		t.InstallmentNumber = *w.InstallmentNumber
	}
	if w.InstallmentTotal != nil {
		t.InstallmentTotal = *w.InstallmentTotal
	}
	if w.CreatedAt != nil {
		t.CreatedAt = *w.CreatedAt
	}
	if w.UpdatedAt != nil {
		t.UpdatedAt = *w.UpdatedAt
	}

	return t
}

func intOr(v *int, fallback int) int {
	if v == nil {
		return fallback
	}
	return *v
}
