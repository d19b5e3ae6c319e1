package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/fluxo-app/fluxo-go/pkg/fluxo"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// fluxoTools holds the backend client and implements all tool handlers
type fluxoTools struct {
	client *fluxo.Client
}

// Amounts are returned as decimal strings with two places so no
// precision is lost on the way to the model.

// GetMonthlyDashboard tool - aggregates one month of transactions
type GetMonthlyDashboardInput struct {
	Month string `json:"month,omitempty" jsonschema:"Month in YYYY-MM format (e.g. 2025-10), defaults to the current month"`
}

type CategoryAmount struct {
	Category string `json:"category" jsonschema:"Category name"`
	Amount   string `json:"amount" jsonschema:"Summed amount"`
}

type DayAmount struct {
	Day     int    `json:"day" jsonschema:"Day of the month"`
	Income  string `json:"income" jsonschema:"Income on this day"`
	Expense string `json:"expense" jsonschema:"Expenses on this day"`
	Net     string `json:"net" jsonschema:"Income minus expenses"`
}

type GetMonthlyDashboardOutput struct {
	Month              string             `json:"month" jsonschema:"Month of the dashboard (YYYY-MM)"`
	TotalIncome        string             `json:"totalIncome" jsonschema:"Sum of income"`
	TotalExpense       string             `json:"totalExpense" jsonschema:"Sum of expenses"`
	Net                string             `json:"net" jsonschema:"Income minus expenses"`
	PendingValue       string             `json:"pendingValue" jsonschema:"Sum of pending transactions of both types"`
	OverdueValue       string             `json:"overdueValue" jsonschema:"Sum of overdue transactions of both types"`
	ExpensesByCategory []CategoryAmount   `json:"expensesByCategory" jsonschema:"Expenses per category in first-seen order"`
	IncomeByCategory   []CategoryAmount   `json:"incomeByCategory" jsonschema:"Income per category in first-seen order"`
	CashSeries         []DayAmount        `json:"cashSeries" jsonschema:"One entry per day of the month"`
	Recent             []TransactionEntry `json:"recent" jsonschema:"Most recent transactions of the month"`
}

func (t *fluxoTools) GetMonthlyDashboard(ctx context.Context, req *mcp.CallToolRequest, input GetMonthlyDashboardInput) (*mcp.CallToolResult, GetMonthlyDashboardOutput, error) {
	loc := t.client.Location()

	window := fluxo.MonthOf(time.Now().In(loc))
	if input.Month != "" {
		parsed, err := fluxo.ParseMonth(input.Month, loc)
		if err != nil {
			return nil, GetMonthlyDashboardOutput{}, fmt.Errorf("invalid month format (expected YYYY-MM): %w", err)
		}
		window = parsed
	}

	dashboard, err := t.client.Dashboard(ctx, window)
	if err != nil {
		return nil, GetMonthlyDashboardOutput{}, fmt.Errorf("failed to load dashboard: %s", fluxo.UserMessage(err, err.Error()))
	}

	s := dashboard.Summary
	out := GetMonthlyDashboardOutput{
		Month:              window.Key(),
		TotalIncome:        fluxo.FormatAmount(s.TotalIncome),
		TotalExpense:       fluxo.FormatAmount(s.TotalExpense),
		Net:                fluxo.FormatAmount(s.Net),
		PendingValue:       fluxo.FormatAmount(s.PendingValue),
		OverdueValue:       fluxo.FormatAmount(s.OverdueValue),
		ExpensesByCategory: toCategoryAmounts(s.ExpensesByCategory),
		IncomeByCategory:   toCategoryAmounts(s.IncomeByCategory),
		CashSeries:         make([]DayAmount, 0, len(s.CashSeries)),
		Recent:             toEntries(dashboard.Recent),
	}
	for _, p := range s.CashSeries {
		out.CashSeries = append(out.CashSeries, DayAmount{
			Day:     p.Day,
			Income:  fluxo.FormatAmount(p.Income),
			Expense: fluxo.FormatAmount(p.Expense),
			Net:     fluxo.FormatAmount(p.Net),
		})
	}

	return nil, out, nil
}

func toCategoryAmounts(buckets []fluxo.CategoryBucket) []CategoryAmount {
	out := make([]CategoryAmount, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, CategoryAmount{Category: b.Name, Amount: fluxo.FormatAmount(b.Value)})
	}
	return out
}

// ListTransactions tool - queries transactions with optional filters
type ListTransactionsInput struct {
	Type        string `json:"type,omitempty" jsonschema:"income or expense (optional)"`
	Description string `json:"description,omitempty" jsonschema:"Text the description contains (optional)"`
	StartDate   string `json:"startDate,omitempty" jsonschema:"Start date in YYYY-MM-DD format (optional)"`
	EndDate     string `json:"endDate,omitempty" jsonschema:"End date in YYYY-MM-DD format (optional)"`
	Page        int    `json:"page,omitempty" jsonschema:"Page number starting at 1 (default: 1)"`
	Limit       int    `json:"limit,omitempty" jsonschema:"Transactions per page (default: 20)"`
}

type TransactionEntry struct {
	ID            int64  `json:"id" jsonschema:"Transaction ID"`
	Date          string `json:"date" jsonschema:"Transaction date (YYYY-MM-DD)"`
	Description   string `json:"description" jsonschema:"Transaction description"`
	Amount        string `json:"amount" jsonschema:"Transaction amount, always positive"`
	Type          string `json:"type" jsonschema:"income or expense"`
	Status        string `json:"status,omitempty" jsonschema:"PENDENTE, PAGO, RECEBIDO or ATRASADO"`
	Category      string `json:"category,omitempty" jsonschema:"Transaction category"`
	PaymentMethod string `json:"paymentMethod,omitempty" jsonschema:"Payment method"`
	Installment   string `json:"installment,omitempty" jsonschema:"Position in an installment series, e.g. 2/10"`
}

type ListTransactionsOutput struct {
	Transactions []TransactionEntry `json:"transactions" jsonschema:"List of transactions"`
	Count        int                `json:"count" jsonschema:"Number of transactions returned"`
	Page         int                `json:"page" jsonschema:"Current page"`
	TotalPages   int                `json:"totalPages" jsonschema:"Number of pages"`
	Total        int                `json:"total" jsonschema:"Number of matching transactions"`
}

func (t *fluxoTools) ListTransactions(ctx context.Context, req *mcp.CallToolRequest, input ListTransactionsInput) (*mcp.CallToolResult, ListTransactionsOutput, error) {
	query := t.client.Transactions.Query()

	if input.Type != "" {
		txnType, err := parseType(input.Type)
		if err != nil {
			return nil, ListTransactionsOutput{}, err
		}
		query = query.OfType(txnType)
	}

	if input.Description != "" {
		query = query.Search(input.Description)
	}

	// Parse and apply date filters
	loc := t.client.Location()
	var startDate, endDate time.Time
	var err error
	if input.StartDate != "" {
		startDate, err = time.ParseInLocation(fluxo.DateLayout, input.StartDate, loc)
		if err != nil {
			return nil, ListTransactionsOutput{}, fmt.Errorf("invalid startDate format (expected YYYY-MM-DD): %w", err)
		}
	}
	if input.EndDate != "" {
		endDate, err = time.ParseInLocation(fluxo.DateLayout, input.EndDate, loc)
		if err != nil {
			return nil, ListTransactionsOutput{}, fmt.Errorf("invalid endDate format (expected YYYY-MM-DD): %w", err)
		}
	}
	if !startDate.IsZero() || !endDate.IsZero() {
		query = query.Between(startDate, endDate)
	}

	page := input.Page
	if page <= 0 {
		page = 1
	}
	limit := input.Limit
	if limit <= 0 {
		limit = 20
	}

	result, err := query.Page(page).Limit(limit).Execute(ctx)
	if err != nil {
		return nil, ListTransactionsOutput{}, fmt.Errorf("failed to fetch transactions: %s", fluxo.UserMessage(err, err.Error()))
	}

	entries := toEntries(result.Transactions)
	return nil, ListTransactionsOutput{
		Transactions: entries,
		Count:        len(entries),
		Page:         result.CurrentPage,
		TotalPages:   result.TotalPages,
		Total:        result.Total,
	}, nil
}

func toEntries(txns []*fluxo.Transaction) []TransactionEntry {
	entries := make([]TransactionEntry, 0, len(txns))
	for _, tx := range txns {
		entry := TransactionEntry{
			ID:            tx.ID,
			Date:          tx.Date.String(),
			Description:   tx.Description,
			Amount:        fluxo.FormatAmount(tx.Amount),
			Type:          "expense",
			Status:        string(tx.Status),
			Category:      tx.CategoryName,
			PaymentMethod: tx.PaymentMethodName,
		}
		if tx.IsIncome() {
			entry.Type = "income"
		}
		if tx.InSeries() {
			entry.Installment = fmt.Sprintf("%d/%d", tx.InstallmentNumber, tx.InstallmentTotal)
		}
		entries = append(entries, entry)
	}
	return entries
}

func parseType(s string) (fluxo.TransactionType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "income", "receita":
		return fluxo.TypeIncome, nil
	case "expense", "despesa":
		return fluxo.TypeExpense, nil
	}
	return "", fmt.Errorf("invalid type %q (expected income or expense)", s)
}

// PreviewInstallments tool - previews a series without saving it
type PreviewInstallmentsInput struct {
	Amount     string `json:"amount" jsonschema:"Amount, e.g. 100.00"`
	StartDate  string `json:"startDate" jsonschema:"Date of the first occurrence in YYYY-MM-DD format"`
	Count      int    `json:"count" jsonschema:"Number of monthly occurrences"`
	Distribute bool   `json:"distribute,omitempty" jsonschema:"Split the amount across the occurrences instead of repeating it"`
}

type InstallmentEntry struct {
	Index  int    `json:"index" jsonschema:"Occurrence number starting at 1"`
	Total  int    `json:"total" jsonschema:"Number of occurrences"`
	Date   string `json:"date" jsonschema:"Occurrence date (YYYY-MM-DD)"`
	Amount string `json:"amount" jsonschema:"Occurrence amount"`
}

type PreviewInstallmentsOutput struct {
	Installments []InstallmentEntry `json:"installments" jsonschema:"Previewed occurrences, empty when the input is incomplete"`
	Total        string             `json:"total" jsonschema:"Sum of the occurrence amounts"`
}

func (t *fluxoTools) PreviewInstallments(ctx context.Context, req *mcp.CallToolRequest, input PreviewInstallmentsInput) (*mcp.CallToolResult, PreviewInstallmentsOutput, error) {
	items := fluxo.PreviewFromForm(input.Amount, input.StartDate, input.Count, input.Distribute)

	entries := make([]InstallmentEntry, 0, len(items))
	for _, it := range items {
		entries = append(entries, InstallmentEntry{
			Index:  it.Index,
			Total:  it.Total,
			Date:   it.Date.Format(fluxo.DateLayout),
			Amount: fluxo.FormatAmount(it.Amount),
		})
	}

	return nil, PreviewInstallmentsOutput{
		Installments: entries,
		Total:        fluxo.FormatAmount(fluxo.InstallmentsTotal(items)),
	}, nil
}

// GetCategories tool - retrieves transaction categories
type GetCategoriesInput struct {
	Type string `json:"type,omitempty" jsonschema:"income or expense to keep only usable categories (optional)"`
}

type CategoryEntry struct {
	ID   int64  `json:"id" jsonschema:"Category ID"`
	Name string `json:"name" jsonschema:"Category name"`
	Type string `json:"type,omitempty" jsonschema:"income or expense, empty when usable for both"`
}

type GetCategoriesOutput struct {
	Categories []CategoryEntry `json:"categories" jsonschema:"List of categories"`
	Count      int             `json:"count" jsonschema:"Number of categories"`
}

func (t *fluxoTools) GetCategories(ctx context.Context, req *mcp.CallToolRequest, input GetCategoriesInput) (*mcp.CallToolResult, GetCategoriesOutput, error) {
	var (
		categories []*fluxo.Category
		err        error
	)
	if input.Type != "" {
		txnType, perr := parseType(input.Type)
		if perr != nil {
			return nil, GetCategoriesOutput{}, perr
		}
		categories, err = t.client.Categories.ForType(ctx, txnType)
	} else {
		categories, err = t.client.Categories.List(ctx)
	}
	if err != nil {
		return nil, GetCategoriesOutput{}, fmt.Errorf("failed to fetch categories: %w", err)
	}

	entries := make([]CategoryEntry, 0, len(categories))
	for _, cat := range categories {
		entry := CategoryEntry{ID: cat.ID, Name: cat.Name}
		switch cat.Type {
		case fluxo.TypeIncome:
			entry.Type = "income"
		case fluxo.TypeExpense:
			entry.Type = "expense"
		}
		entries = append(entries, entry)
	}

	return nil, GetCategoriesOutput{
		Categories: entries,
		Count:      len(entries),
	}, nil
}

// GetPaymentMethods tool - retrieves payment methods
type GetPaymentMethodsInput struct {
	// No input parameters needed
}

type PaymentMethodEntry struct {
	ID   int64  `json:"id" jsonschema:"Payment method ID"`
	Name string `json:"name" jsonschema:"Payment method name"`
}

type GetPaymentMethodsOutput struct {
	PaymentMethods []PaymentMethodEntry `json:"paymentMethods" jsonschema:"List of payment methods"`
	Count          int                  `json:"count" jsonschema:"Number of payment methods"`
}

func (t *fluxoTools) GetPaymentMethods(ctx context.Context, req *mcp.CallToolRequest, input GetPaymentMethodsInput) (*mcp.CallToolResult, GetPaymentMethodsOutput, error) {
	methods, err := t.client.PaymentMethods.List(ctx)
	if err != nil {
		return nil, GetPaymentMethodsOutput{}, fmt.Errorf("failed to fetch payment methods: %w", err)
	}

	entries := make([]PaymentMethodEntry, 0, len(methods))
	for _, m := range methods {
		entries = append(entries, PaymentMethodEntry{ID: m.ID, Name: m.Name})
	}

	return nil, GetPaymentMethodsOutput{
		PaymentMethods: entries,
		Count:          len(entries),
	}, nil
}
