package main

import (
	"context"
	"log"

	"github.com/fluxo-app/fluxo-go/internal/config"
	"github.com/fluxo-app/fluxo-go/internal/observability"
	"github.com/fluxo-app/fluxo-go/pkg/fluxo"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

func main() {
	// FLUXO_API_URL and friends, optionally from .env
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// zap writes to stderr, leaving stdout to the protocol
	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	client, err := fluxo.NewClient(cfg.ClientOptions(observability.NewClientLogger(logger), nil))
	if err != nil {
		logger.Fatal("failed to initialize fluxo client", zap.Error(err))
	}
	defer client.Close()

	impl := &mcp.Implementation{
		Name:    "fluxo",
		Version: "1.0.0",
	}

	server := mcp.NewServer(impl, nil)

	// Register all tools
	registerTools(server, client)

	// Run server over stdio transport
	if err := server.Run(context.Background(), &mcp.StdioTransport{}); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}

func registerTools(server *mcp.Server, client *fluxo.Client) {
	tools := &fluxoTools{client: client}

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_monthly_dashboard",
		Description: "Get the dashboard of one month: total income, total expenses, net, pending and overdue values, spending and income by category, the daily cash series and the most recent transactions.",
	}, tools.GetMonthlyDashboard)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_transactions",
		Description: "Search transactions by type, description and date range, one page at a time. Returns date, amount, type, status, category and installment position.",
	}, tools.ListTransactions)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "preview_installments",
		Description: "Preview the monthly occurrences a new transaction would create, either repeating the amount every month or splitting it across the months. Nothing is saved.",
	}, tools.PreviewInstallments)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_categories",
		Description: "Get the transaction categories, optionally only those usable for income or for expenses.",
	}, tools.GetCategories)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_payment_methods",
		Description: "Get the available payment methods.",
	}, tools.GetPaymentMethods)
}
