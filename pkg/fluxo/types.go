package fluxo

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType tells income from expense
type TransactionType string

const (
	// TypeIncome marks money coming in
	TypeIncome TransactionType = "RECEITA"
	// TypeExpense marks money going out
	TypeExpense TransactionType = "DESPESA"
)

// Valid reports whether t is a known transaction type
func (t TransactionType) Valid() bool {
	return t == TypeIncome || t == TypeExpense
}

// TransactionStatus is the settlement state of a transaction
type TransactionStatus string

const (
	StatusPending  TransactionStatus = "PENDENTE"
	StatusPaid     TransactionStatus = "PAGO"
	StatusReceived TransactionStatus = "RECEBIDO"
	StatusOverdue  TransactionStatus = "ATRASADO"
)

// Settled reports whether the transaction has been paid or received
func (s TransactionStatus) Settled() bool {
	return s == StatusPaid || s == StatusReceived
}

// Category represents a transaction category
type Category struct {
	ID   int64           `json:"id"`
	Name string          `json:"name"`
	Type TransactionType `json:"type"`
}

// PaymentMethod represents how a transaction is paid
type PaymentMethod struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Transaction is the canonical, normalized transaction record
type Transaction struct {
	ID                int64             `json:"id"`
	Description       string            `json:"description"`
	Amount            decimal.Decimal   `json:"amount"`
	Date              Date              `json:"date"`
	Type              TransactionType   `json:"type"`
	Status            TransactionStatus `json:"status"`
	CategoryID        int64             `json:"categoryId"`
	PaymentMethodID   int64             `json:"paymentMethodId"`
	Category          *Category         `json:"category,omitempty"`
	PaymentMethod     *PaymentMethod    `json:"paymentMethod,omitempty"`
	CategoryName      string            `json:"categoryName,omitempty"`
	PaymentMethodName string            `json:"paymentMethodName,omitempty"`
	SeriesID          string            `json:"seriesId,omitempty"`
	InstallmentNumber int               `json:"installmentNumber,omitempty"`
	InstallmentTotal  int               `json:"installmentTotal,omitempty"`
	CreatedAt         time.Time         `json:"createdAt"`
	UpdatedAt         time.Time         `json:"updatedAt"`
}

// IsIncome reports whether the transaction is income
func (t *Transaction) IsIncome() bool {
	return t.Type == TypeIncome
}

// IsExpense reports whether the transaction is an expense
func (t *Transaction) IsExpense() bool {
	return t.Type == TypeExpense
}

// InSeries reports whether the transaction is one occurrence of an installment series
func (t *Transaction) InSeries() bool {
	return t.SeriesID != "" && t.InstallmentTotal > 1
}

// Pagination is the page metadata of a list response
type Pagination struct {
	Total       int `json:"total"`
	TotalPages  int `json:"totalPages"`
	CurrentPage int `json:"currentPage"`
	PageSize    int `json:"pageSize"`
}

// TransactionList represents a page of transactions
type TransactionList struct {
	Transactions []*Transaction `json:"items"`
	Pagination
	HasMore bool `json:"hasMore"`
}

// CreateTransactionParams contains parameters for creating a transaction.
// RepeatCount and DistributeTotal ask the backend to materialize a monthly series.
type CreateTransactionParams struct {
	Description     string
	Amount          decimal.Decimal
	Date            time.Time
	Type            TransactionType
	CategoryID      int64
	PaymentMethodID int64
	RepeatCount     int
	DistributeTotal bool
}

// UpdateTransactionParams contains parameters for updating a transaction
type UpdateTransactionParams struct {
	Description     *string
	Amount          *decimal.Decimal
	Date            *time.Time
	Type            *TransactionType
	CategoryID      *int64
	PaymentMethodID *int64
}

// Installment is one previewed occurrence of a series
type Installment struct {
	Index  int             `json:"index"`
	Total  int             `json:"total"`
	Date   time.Time       `json:"date"`
	Amount decimal.Decimal `json:"amount"`
}

// CategoryBucket is the summed amount of one category
type CategoryBucket struct {
	Name  string          `json:"name"`
	Value decimal.Decimal `json:"value"`
}

// CashDayPoint is the income and expense of one calendar day
type CashDayPoint struct {
	Day     int             `json:"day"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Net     decimal.Decimal `json:"net"`
}

// Summary is the aggregated view-model of one month of transactions
type Summary struct {
	TotalIncome        decimal.Decimal  `json:"totalIncome"`
	TotalExpense       decimal.Decimal  `json:"totalExpense"`
	Net                decimal.Decimal  `json:"net"`
	PendingValue       decimal.Decimal  `json:"pendingValue"`
	OverdueValue       decimal.Decimal  `json:"overdueValue"`
	ExpensesByCategory []CategoryBucket `json:"expensesByCategory"`
	IncomeByCategory   []CategoryBucket `json:"incomeByCategory"`
	CashSeries         []CashDayPoint   `json:"cashSeries"`
}

// Dashboard is everything the monthly dashboard shows
type Dashboard struct {
	Window  MonthWindow    `json:"window"`
	Summary *Summary       `json:"summary"`
	Recent  []*Transaction `json:"recent"`
}
