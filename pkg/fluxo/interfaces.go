package fluxo

import (
	"context"
	"time"
)

// TransactionService handles transaction operations
type TransactionService interface {
	// Query returns a builder over the paginated list endpoint
	Query() TransactionQueryBuilder

	// Monthly fetches every transaction dated inside the month window,
	// following pagination when the backend pages the result
	Monthly(ctx context.Context, window MonthWindow) (*TransactionList, error)

	// RecentActivity returns the latest transactions between from and to
	RecentActivity(ctx context.Context, from, to time.Time, limit int) ([]*Transaction, error)

	// Get retrieves a single transaction
	Get(ctx context.Context, id int64) (*Transaction, error)

	// Create creates a transaction, or a monthly series when RepeatCount > 1.
	// Every transaction the backend materialized is returned.
	Create(ctx context.Context, params *CreateTransactionParams) ([]*Transaction, error)

	// Update edits a single transaction; it never recreates a series
	Update(ctx context.Context, id int64, params *UpdateTransactionParams) (*Transaction, error)

	// Delete removes a transaction
	Delete(ctx context.Context, id int64) error

	// Settle marks a transaction as paid or received
	Settle(ctx context.Context, id int64) (*Transaction, error)

	// Cancel reverts a settled transaction
	Cancel(ctx context.Context, id int64) (*Transaction, error)
}

// TransactionQueryBuilder provides fluent query building
type TransactionQueryBuilder interface {
	Between(start, end time.Time) TransactionQueryBuilder
	OfType(t TransactionType) TransactionQueryBuilder
	Search(description string) TransactionQueryBuilder
	Page(page int) TransactionQueryBuilder
	Limit(limit int) TransactionQueryBuilder

	Execute(ctx context.Context) (*TransactionList, error)
	Stream(ctx context.Context) (<-chan *Transaction, <-chan error)
}

// CategoryService handles categories
type CategoryService interface {
	List(ctx context.Context) ([]*Category, error)

	// ForType returns the categories usable for a transaction type
	ForType(ctx context.Context, t TransactionType) ([]*Category, error)
}

// PaymentMethodService handles payment methods
type PaymentMethodService interface {
	List(ctx context.Context) ([]*PaymentMethod, error)
}
