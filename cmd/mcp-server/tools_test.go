package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/fluxo-app/fluxo-go/pkg/fluxo"
)

func newTestTools(t *testing.T) *fluxoTools {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/transactions", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[
			{"id": 1, "description": "Salary", "amount": "3000.00", "date": "2025-10-01", "type": "RECEITA", "status": "RECEBIDO"},
			{"id": 2, "description": "Market", "amount": 250.4, "date": "2025-10-02", "type": "DESPESA", "status": "ATRASADO", "category": {"id": 4, "name": "Food"}}
		]`))
	})
	mux.HandleFunc("/transactions/recent-activity", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id": 2, "description": "Market", "amount": "250.40", "date": "2025-10-02", "type": "DESPESA", "seriesId": "x", "installmentNumber": 1, "installmentTotal": 3}]`))
	})
	mux.HandleFunc("/transactions/paginated", func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("type"); got != "RECEITA" {
			t.Errorf("expected type RECEITA, got %q", got)
		}
		_, _ = w.Write([]byte(`{"items": [{"id": 1, "amount": "3000", "type": "RECEITA"}], "total": 1, "totalPages": 1, "currentPage": 1, "pageSize": 20}`))
	})
	mux.HandleFunc("/categories", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id": 4, "name": "Food", "type": "DESPESA"}, {"id": 5, "name": "Salary", "type": "RECEITA"}]`))
	})
	mux.HandleFunc("/payment-methods", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id": 1, "name": "Pix"}, {"id": 2, "name": "Card"}]`))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client, err := fluxo.NewClient(&fluxo.ClientOptions{BaseURL: srv.URL, Location: time.UTC})
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	return &fluxoTools{client: client}
}

func TestGetMonthlyDashboardTool(t *testing.T) {
	tools := newTestTools(t)

	_, output, err := tools.GetMonthlyDashboard(context.Background(), nil, GetMonthlyDashboardInput{Month: "2025-10"})
	if err != nil {
		t.Fatalf("GetMonthlyDashboard failed: %v", err)
	}

	if output.Month != "2025-10" {
		t.Errorf("expected month 2025-10, got %s", output.Month)
	}
	if output.Net != "2749.60" {
		t.Errorf("expected net 2749.60, got %s", output.Net)
	}
	if output.OverdueValue != "250.40" {
		t.Errorf("expected overdue 250.40, got %s", output.OverdueValue)
	}
	if len(output.CashSeries) != 31 {
		t.Errorf("expected 31 days, got %d", len(output.CashSeries))
	}
	if len(output.ExpensesByCategory) != 1 || output.ExpensesByCategory[0].Category != "Food" {
		t.Errorf("unexpected expense buckets: %+v", output.ExpensesByCategory)
	}
	if len(output.IncomeByCategory) != 1 || output.IncomeByCategory[0].Category != fluxo.UncategorizedLabel {
		t.Errorf("unexpected income buckets: %+v", output.IncomeByCategory)
	}
	if len(output.Recent) != 1 || output.Recent[0].Installment != "1/3" {
		t.Errorf("unexpected recent activity: %+v", output.Recent)
	}
}

func TestGetMonthlyDashboardTool_BadMonth(t *testing.T) {
	tools := newTestTools(t)

	if _, _, err := tools.GetMonthlyDashboard(context.Background(), nil, GetMonthlyDashboardInput{Month: "October"}); err == nil {
		t.Fatal("expected an error for an invalid month")
	}
}

func TestListTransactionsTool(t *testing.T) {
	tools := newTestTools(t)

	_, output, err := tools.ListTransactions(context.Background(), nil, ListTransactionsInput{Type: "income", StartDate: "2025-10-01"})
	if err != nil {
		t.Fatalf("ListTransactions failed: %v", err)
	}

	if output.Count != 1 || output.Transactions[0].Type != "income" {
		t.Errorf("unexpected transactions: %+v", output.Transactions)
	}
	if output.Transactions[0].Amount != "3000.00" {
		t.Errorf("expected amount 3000.00, got %s", output.Transactions[0].Amount)
	}

	if _, _, err := tools.ListTransactions(context.Background(), nil, ListTransactionsInput{Type: "transfer"}); err == nil {
		t.Error("expected an error for an unknown type")
	}
	if _, _, err := tools.ListTransactions(context.Background(), nil, ListTransactionsInput{EndDate: "10/31/2025"}); err == nil {
		t.Error("expected an error for an invalid endDate")
	}
}

func TestPreviewInstallmentsTool(t *testing.T) {
	tools := newTestTools(t)

	_, output, err := tools.PreviewInstallments(context.Background(), nil, PreviewInstallmentsInput{
		Amount:     "100",
		StartDate:  "2025-01-31",
		Count:      3,
		Distribute: true,
	})
	if err != nil {
		t.Fatalf("PreviewInstallments failed: %v", err)
	}

	if len(output.Installments) != 3 {
		t.Fatalf("expected 3 installments, got %d", len(output.Installments))
	}
	want := []string{"33.34", "33.33", "33.33"}
	for i, it := range output.Installments {
		if it.Amount != want[i] {
			t.Errorf("installment %d: expected %s, got %s", i+1, want[i], it.Amount)
		}
	}
	if output.Total != "100.00" {
		t.Errorf("expected total 100.00, got %s", output.Total)
	}

	_, output, _ = tools.PreviewInstallments(context.Background(), nil, PreviewInstallmentsInput{Amount: "abc", StartDate: "2025-01-31", Count: 2})
	if len(output.Installments) != 0 {
		t.Errorf("expected no installments for an invalid amount, got %d", len(output.Installments))
	}
}

func TestGetCategoriesTool(t *testing.T) {
	tools := newTestTools(t)

	_, output, err := tools.GetCategories(context.Background(), nil, GetCategoriesInput{Type: "expense"})
	if err != nil {
		t.Fatalf("GetCategories failed: %v", err)
	}

	if output.Count != 1 || output.Categories[0].Name != "Food" || output.Categories[0].Type != "expense" {
		t.Errorf("unexpected categories: %+v", output.Categories)
	}
}

func TestGetPaymentMethodsTool(t *testing.T) {
	tools := newTestTools(t)

	_, output, err := tools.GetPaymentMethods(context.Background(), nil, GetPaymentMethodsInput{})
	if err != nil {
		t.Fatalf("GetPaymentMethods failed: %v", err)
	}

	if output.Count != 2 {
		t.Errorf("expected 2 payment methods, got %d", output.Count)
	}
}
