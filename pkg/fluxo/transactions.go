package fluxo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	internalTypes "github.com/fluxo-app/fluxo-go/internal/types"
	"github.com/pkg/errors"
)

// maxMonthlyPages bounds how many pages a monthly fetch will follow
const maxMonthlyPages = 50

// transactionService implements the TransactionService interface
type transactionService struct {
	client *Client
}

// newTransactionService creates a new transaction service
func newTransactionService(client *Client) *transactionService {
	return &transactionService{client: client}
}

// Query returns a transaction query builder
func (s *transactionService) Query() TransactionQueryBuilder {
	return &transactionQueryBuilder{
		client: s.client,
		page:   1,
		limit:  20,
	}
}

// Monthly fetches the transactions of one month
func (s *transactionService) Monthly(ctx context.Context, window MonthWindow) (*TransactionList, error) {
	if window.Location == nil {
		window.Location = s.client.Location()
	}

	limit := s.client.pageSize()
	var all []*Transaction
	var last Pagination

	for page := 1; page <= maxMonthlyPages; page++ {
		query := url.Values{}
		query.Set("from", window.From().Format(time.RFC3339))
		query.Set("to", window.To().Format(time.RFC3339))
		query.Set("page", strconv.Itoa(page))
		query.Set("limit", strconv.Itoa(limit))

		var result listResponse
		req := &internalTypes.Request{Method: http.MethodGet, Path: "/transactions", Query: query}
		if err := s.client.execute(ctx, req, &result); err != nil {
			return nil, loadError("failed to fetch monthly transactions", err)
		}

		list := result.normalizePage(s.client.logger(), s.client.Location(), page)
		all = append(all, list.Transactions...)
		last = list.Pagination

		// A raw array is the whole month; an envelope continues until the
		// page count is reached, whatever page the backend says it sent
		if result.shape != shapeEnvelope || len(list.Transactions) == 0 || page >= list.TotalPages {
			break
		}
	}

	if all == nil {
		all = []*Transaction{}
	}

	return &TransactionList{
		Transactions: all,
		Pagination: Pagination{
			Total:       len(all),
			TotalPages:  last.TotalPages,
			CurrentPage: last.CurrentPage,
			PageSize:    last.PageSize,
		},
	}, nil
}

// RecentActivity returns the latest transactions in a date range
func (s *transactionService) RecentActivity(ctx context.Context, from, to time.Time, limit int) ([]*Transaction, error) {
	if limit <= 0 {
		limit = 20
	}

	query := url.Values{}
	query.Set("from", from.Format(time.RFC3339))
	query.Set("to", to.Format(time.RFC3339))
	query.Set("page", "1")
	query.Set("limit", strconv.Itoa(limit))

	var result listResponse
	req := &internalTypes.Request{Method: http.MethodGet, Path: "/transactions/recent-activity", Query: query}
	if err := s.client.execute(ctx, req, &result); err != nil {
		return nil, loadError("failed to fetch recent activity", err)
	}

	return result.normalize(s.client.logger(), s.client.Location()).Transactions, nil
}

// Get retrieves a single transaction
func (s *transactionService) Get(ctx context.Context, id int64) (*Transaction, error) {
	var result *wireTransaction
	req := &internalTypes.Request{Method: http.MethodGet, Path: transactionPath(id)}
	if err := s.client.execute(ctx, req, &result); err != nil {
		return nil, loadError("failed to get transaction", err)
	}

	if result == nil {
		return nil, ErrNotFound
	}

	return result.normalize(s.client.logger(), s.client.Location()), nil
}

// Create creates a new transaction or series
func (s *transactionService) Create(ctx context.Context, params *CreateTransactionParams) ([]*Transaction, error) {
	if params == nil {
		return nil, errors.Wrap(ErrInvalidRequest, "missing transaction parameters")
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	repeat := params.RepeatCount
	if repeat < 1 {
		repeat = 1
	}

	// The backend expands repeatCount/distributeTotal into the series
	body := map[string]interface{}{
		"description":     strings.TrimSpace(params.Description),
		"amount":          FormatAmount(params.Amount),
		"date":            params.Date.Format(DateLayout),
		"type":            params.Type,
		"categoryId":      params.CategoryID,
		"paymentMethodId": params.PaymentMethodID,
		"repeatCount":     repeat,
		"distributeTotal": params.DistributeTotal,
	}

	var result createdResponse
	req := &internalTypes.Request{Method: http.MethodPost, Path: "/transactions", Body: body}
	if err := s.client.execute(ctx, req, &result); err != nil {
		return nil, saveError("failed to create transaction", err)
	}

	return result.normalize(s.client.logger(), s.client.Location()), nil
}

// Update updates an existing transaction
func (s *transactionService) Update(ctx context.Context, id int64, params *UpdateTransactionParams) (*Transaction, error) {
	if params == nil {
		return nil, errors.Wrap(ErrInvalidRequest, "missing transaction parameters")
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	// Only changed fields are sent; series fields never are
	body := map[string]interface{}{}

	if params.Description != nil {
		body["description"] = strings.TrimSpace(*params.Description)
	}
	if params.Amount != nil {
		body["amount"] = FormatAmount(*params.Amount)
	}
	if params.Date != nil {
		body["date"] = params.Date.Format(DateLayout)
	}
	if params.Type != nil {
		body["type"] = *params.Type
	}
	if params.CategoryID != nil {
		body["categoryId"] = *params.CategoryID
	}
	if params.PaymentMethodID != nil {
		body["paymentMethodId"] = *params.PaymentMethodID
	}

	var result *wireTransaction
	req := &internalTypes.Request{Method: http.MethodPut, Path: transactionPath(id), Body: body}
	if err := s.client.execute(ctx, req, &result); err != nil {
		return nil, saveError("failed to update transaction", err)
	}

	if result == nil {
		return s.Get(ctx, id)
	}

	return result.normalize(s.client.logger(), s.client.Location()), nil
}

// Delete deletes a transaction
func (s *transactionService) Delete(ctx context.Context, id int64) error {
	req := &internalTypes.Request{Method: http.MethodDelete, Path: transactionPath(id)}
	if err := s.client.execute(ctx, req, nil); err != nil {
		return saveError("failed to delete transaction", err)
	}
	return nil
}

// Settle marks a transaction as paid or received
func (s *transactionService) Settle(ctx context.Context, id int64) (*Transaction, error) {
	return s.transition(ctx, id, "settle")
}

// Cancel reverts a settled transaction
func (s *transactionService) Cancel(ctx context.Context, id int64) (*Transaction, error) {
	return s.transition(ctx, id, "cancel")
}

func (s *transactionService) transition(ctx context.Context, id int64, action string) (*Transaction, error) {
	var result *wireTransaction
	req := &internalTypes.Request{Method: http.MethodPost, Path: transactionPath(id) + "/" + action}
	if err := s.client.execute(ctx, req, &result); err != nil {
		return nil, saveError(fmt.Sprintf("failed to %s transaction", action), err)
	}

	if result == nil {
		return s.Get(ctx, id)
	}

	return result.normalize(s.client.logger(), s.client.Location()), nil
}

func transactionPath(id int64) string {
	return "/transactions/" + strconv.FormatInt(id, 10)
}

// loadError marks err as a failed load while keeping its cause reachable
func loadError(msg string, err error) error {
	return errors.WithMessage(fmt.Errorf("%w: %w", ErrLoadFailed, err), msg)
}

// saveError marks err as a failed save while keeping its cause reachable
func saveError(msg string, err error) error {
	return errors.WithMessage(fmt.Errorf("%w: %w", ErrSaveFailed, err), msg)
}

// Validate checks the fields the create form requires
func (p *CreateTransactionParams) Validate() error {
	verr := &ValidationErrors{}

	if strings.TrimSpace(p.Description) == "" {
		verr.add("description", "is required", p.Description)
	}
	if !p.Amount.IsPositive() {
		verr.add("amount", "must be greater than zero", p.Amount.String())
	}
	if p.Date.IsZero() {
		verr.add("date", "is required", nil)
	}
	if !p.Type.Valid() {
		verr.add("type", fmt.Sprintf("must be %s or %s", TypeIncome, TypeExpense), p.Type)
	}
	if p.CategoryID <= 0 {
		verr.add("categoryId", "is required", p.CategoryID)
	}
	if p.PaymentMethodID <= 0 {
		verr.add("paymentMethodId", "is required", p.PaymentMethodID)
	}
	if p.RepeatCount < 0 {
		verr.add("repeatCount", "must not be negative", p.RepeatCount)
	}

	return verr.orNil()
}

// Validate checks the fields that are being changed
func (p *UpdateTransactionParams) Validate() error {
	verr := &ValidationErrors{}

	if p.Description != nil && strings.TrimSpace(*p.Description) == "" {
		verr.add("description", "must not be empty", *p.Description)
	}
	if p.Amount != nil && !p.Amount.IsPositive() {
		verr.add("amount", "must be greater than zero", p.Amount.String())
	}
	if p.Date != nil && p.Date.IsZero() {
		verr.add("date", "must not be empty", nil)
	}
	if p.Type != nil && !p.Type.Valid() {
		verr.add("type", fmt.Sprintf("must be %s or %s", TypeIncome, TypeExpense), *p.Type)
	}

	return verr.orNil()
}

// transactionQueryBuilder implements TransactionQueryBuilder
type transactionQueryBuilder struct {
	client      *Client
	from        time.Time
	to          time.Time
	txnType     TransactionType
	description string
	page        int
	limit       int
}

// Between sets date range filter
func (b *transactionQueryBuilder) Between(start, end time.Time) TransactionQueryBuilder {
	b.from = start
	b.to = end
	return b
}

// OfType filters by income or expense
func (b *transactionQueryBuilder) OfType(t TransactionType) TransactionQueryBuilder {
	b.txnType = t
	return b
}

// Search filters by description
func (b *transactionQueryBuilder) Search(description string) TransactionQueryBuilder {
	b.description = description
	return b
}

// Page selects the 1-based page
func (b *transactionQueryBuilder) Page(page int) TransactionQueryBuilder {
	if page < 1 {
		page = 1
	}
	b.page = page
	return b
}

// Limit sets result limit
func (b *transactionQueryBuilder) Limit(limit int) TransactionQueryBuilder {
	b.limit = limit
	return b
}

func (b *transactionQueryBuilder) values() url.Values {
	query := url.Values{}
	if b.txnType != "" {
		query.Set("type", string(b.txnType))
	}
	if b.description != "" {
		query.Set("description", b.description)
	}
	if !b.from.IsZero() {
		query.Set("from", b.from.Format(DateLayout))
	}
	if !b.to.IsZero() {
		query.Set("to", b.to.Format(DateLayout))
	}
	query.Set("page", strconv.Itoa(b.page))
	if b.limit > 0 {
		query.Set("limit", strconv.Itoa(b.limit))
	}
	return query
}

// Execute runs the query
func (b *transactionQueryBuilder) Execute(ctx context.Context) (*TransactionList, error) {
	var result listResponse
	req := &internalTypes.Request{Method: http.MethodGet, Path: "/transactions/paginated", Query: b.values()}
	if err := b.client.execute(ctx, req, &result); err != nil {
		return nil, loadError("failed to get transactions", err)
	}

	return result.normalizePage(b.client.logger(), b.client.Location(), b.page), nil
}

// Stream returns results as a channel, following pages until the last one
func (b *transactionQueryBuilder) Stream(ctx context.Context) (<-chan *Transaction, <-chan error) {
	txnChan := make(chan *Transaction)
	errChan := make(chan error, 1)

	go func() {
		defer close(txnChan)
		defer close(errChan)

		page := b.page
		for {
			// Copy of the builder at the current page
			pageBuilder := *b
			pageBuilder.page = page

			result, err := pageBuilder.Execute(ctx)
			if err != nil {
				errChan <- err
				return
			}

			for _, txn := range result.Transactions {
				select {
				case <-ctx.Done():
					errChan <- ctx.Err()
					return
				case txnChan <- txn:
				}
			}

			if len(result.Transactions) == 0 || page >= result.TotalPages {
				return
			}

			page++
		}
	}()

	return txnChan, errChan
}

// createdResponse is what POST /transactions returns: a single record,
// the materialized series as an array, or an envelope of it
type createdResponse struct {
	items []wireTransaction
}

// UnmarshalJSON accepts all three shapes
func (r *createdResponse) UnmarshalJSON(data []byte) error {
	var list listResponse
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	if list.shape == shapeArray || list.items != nil {
		r.items = list.items
		return nil
	}

	var single wireTransaction
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	r.items = []wireTransaction{single}
	return nil
}

func (r *createdResponse) normalize(logger Logger, loc *time.Location) []*Transaction {
	out := make([]*Transaction, 0, len(r.items))
	for i := range r.items {
		out = append(out, r.items[i].normalize(logger, loc))
	}
	return out
}
