package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fluxo-app/fluxo-go/internal/config"
	"github.com/fluxo-app/fluxo-go/internal/observability"
	"github.com/fluxo-app/fluxo-go/pkg/fluxo"
	"go.uber.org/zap"
)

const usage = `usage: fluxo <command> [flags]

commands:
  dashboard        monthly summary, category breakdown and recent activity
  list             search transactions
  preview          preview an installment series without saving it
  create           create a transaction or series
  update           change a transaction
  delete           delete a transaction
  settle           mark a transaction as paid or received
  cancel           revert a settled transaction
  categories       list categories
  payment-methods  list payment methods
  serve            run the HTTP API
  tui              interactive month-by-month dashboard

Run "fluxo <command> -h" for the flags of a command.
`

// app carries what every command needs
type app struct {
	cfg     *config.Config
	client  *fluxo.Client
	logger  *zap.Logger
	metrics *observability.Metrics
	out     io.Writer
}

func main() {
	if len(os.Args) < 2 || os.Args[1] == "-h" || os.Args[1] == "help" {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel)
	defer logger.Sync()

	metrics := observability.NewMetrics()

	client, err := fluxo.NewClient(cfg.ClientOptions(observability.NewClientLogger(logger), metrics.Hooks()))
	if err != nil {
		logger.Fatal("failed to create client", zap.Error(err))
	}
	defer client.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a := &app{cfg: cfg, client: client, logger: logger, metrics: metrics, out: os.Stdout}
	if err := a.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", fluxo.UserMessage(err, err.Error()))
		stop()
		os.Exit(1)
	}
}

func (a *app) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "dashboard":
		return a.dashboard(ctx, args)
	case "list":
		return a.list(ctx, args)
	case "preview":
		return a.preview(args)
	case "create":
		return a.create(ctx, args)
	case "update":
		return a.update(ctx, args)
	case "delete":
		return a.delete(ctx, args)
	case "settle":
		return a.transition(ctx, "settle", args)
	case "cancel":
		return a.transition(ctx, "cancel", args)
	case "categories":
		return a.categories(ctx, args)
	case "payment-methods":
		return a.paymentMethods(ctx, args)
	case "serve":
		return a.serve(ctx, args)
	case "tui":
		return a.tui(ctx, args)
	default:
		return fmt.Errorf("unknown command %q\n\n%s", command, usage)
	}
}
