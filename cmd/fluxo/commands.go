package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/fluxo-app/fluxo-go/internal/render"
	"github.com/fluxo-app/fluxo-go/internal/server"
	"github.com/fluxo-app/fluxo-go/internal/tui"
	"github.com/fluxo-app/fluxo-go/pkg/fluxo"
)

func newFlagSet(name string) *flag.FlagSet {
	return flag.NewFlagSet("fluxo "+name, flag.ContinueOnError)
}

func (a *app) emit(asJSON bool, v interface{}, text string) error {
	if asJSON {
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	_, err := fmt.Fprintln(a.out, text)
	return err
}

func (a *app) month(key string) (fluxo.MonthWindow, error) {
	if key == "" {
		return fluxo.MonthOf(time.Now().In(a.client.Location())), nil
	}
	return fluxo.ParseMonth(key, a.client.Location())
}

func (a *app) day(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.ParseInLocation(fluxo.DateLayout, s, a.client.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("dates must be %s: %q", fluxo.DateLayout, s)
	}
	return t, nil
}

func parseType(s string) (fluxo.TransactionType, error) {
	switch strings.ToLower(s) {
	case "":
		return "", nil
	case "income", "receita":
		return fluxo.TypeIncome, nil
	case "expense", "despesa":
		return fluxo.TypeExpense, nil
	}
	return "", fmt.Errorf("type must be income or expense, got %q", s)
}

func (a *app) dashboard(ctx context.Context, args []string) error {
	fs := newFlagSet("dashboard")
	month := fs.String("month", "", "month to show (YYYY-MM, default current)")
	asJSON := fs.Bool("json", false, "print JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	window, err := a.month(*month)
	if err != nil {
		return err
	}

	dashboard, err := a.client.Dashboard(ctx, window)
	if err != nil {
		a.metrics.IncrDashboardLoad("error")
		return err
	}
	a.metrics.IncrDashboardLoad("ok")

	return a.emit(*asJSON, dashboard, render.Dashboard(dashboard))
}

func (a *app) list(ctx context.Context, args []string) error {
	fs := newFlagSet("list")
	kind := fs.String("type", "", "income or expense")
	search := fs.String("q", "", "description contains")
	from := fs.String("from", "", "first day (YYYY-MM-DD)")
	to := fs.String("to", "", "last day (YYYY-MM-DD)")
	page := fs.Int("page", 1, "page number")
	limit := fs.Int("limit", 20, "page size")
	all := fs.Bool("all", false, "follow every page")
	asJSON := fs.Bool("json", false, "print JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	t, err := parseType(*kind)
	if err != nil {
		return err
	}
	start, err := a.day(*from)
	if err != nil {
		return err
	}
	end, err := a.day(*to)
	if err != nil {
		return err
	}

	query := a.client.Transactions.Query().Page(*page).Limit(*limit)
	if t != "" {
		query = query.OfType(t)
	}
	if *search != "" {
		query = query.Search(*search)
	}
	if !start.IsZero() || !end.IsZero() {
		query = query.Between(start, end)
	}

	if !*all {
		list, err := query.Execute(ctx)
		if err != nil {
			return err
		}
		text := render.Transactions(list.Transactions)
		if list.TotalPages > 0 {
			text += "\n" + render.Muted(fmt.Sprintf("page %d of %d, %d total", list.CurrentPage, list.TotalPages, list.Total))
		}
		return a.emit(*asJSON, list, text)
	}

	txnCh, errCh := query.Stream(ctx)
	var txns []*fluxo.Transaction
	for txn := range txnCh {
		txns = append(txns, txn)
	}
	if err := <-errCh; err != nil {
		return err
	}
	return a.emit(*asJSON, txns, render.Transactions(txns))
}

func (a *app) preview(args []string) error {
	fs := newFlagSet("preview")
	amount := fs.String("amount", "", "amount, e.g. 100.00")
	date := fs.String("date", time.Now().Format(fluxo.DateLayout), "first occurrence (YYYY-MM-DD)")
	count := fs.Int("count", 1, "number of occurrences")
	distribute := fs.Bool("distribute", false, "split the amount across the occurrences")
	asJSON := fs.Bool("json", false, "print JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	items := fluxo.PreviewFromForm(*amount, *date, *count, *distribute)
	return a.emit(*asJSON, items, render.Installments(items))
}

func (a *app) create(ctx context.Context, args []string) error {
	fs := newFlagSet("create")
	description := fs.String("description", "", "description")
	amount := fs.String("amount", "", "amount, e.g. 100.00")
	date := fs.String("date", time.Now().Format(fluxo.DateLayout), "date (YYYY-MM-DD)")
	kind := fs.String("type", "expense", "income or expense")
	category := fs.Int64("category", 0, "category id")
	method := fs.Int64("payment-method", 0, "payment method id")
	repeat := fs.Int("repeat", 1, "number of monthly occurrences")
	distribute := fs.Bool("distribute", false, "split the amount across the occurrences")
	asJSON := fs.Bool("json", false, "print JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	value, err := fluxo.ParseAmountText(*amount)
	if err != nil {
		return err
	}
	day, err := a.day(*date)
	if err != nil {
		return err
	}
	t, err := parseType(*kind)
	if err != nil {
		return err
	}

	created, err := a.client.Transactions.Create(ctx, &fluxo.CreateTransactionParams{
		Description:     *description,
		Amount:          value,
		Date:            day,
		Type:            t,
		CategoryID:      *category,
		PaymentMethodID: *method,
		RepeatCount:     *repeat,
		DistributeTotal: *distribute,
	})
	if err != nil {
		return err
	}
	return a.emit(*asJSON, created, render.Transactions(created))
}

func (a *app) update(ctx context.Context, args []string) error {
	fs := newFlagSet("update")
	id := fs.Int64("id", 0, "transaction id")
	description := fs.String("description", "", "description")
	amount := fs.String("amount", "", "amount")
	date := fs.String("date", "", "date (YYYY-MM-DD)")
	kind := fs.String("type", "", "income or expense")
	category := fs.Int64("category", 0, "category id")
	method := fs.Int64("payment-method", 0, "payment method id")
	asJSON := fs.Bool("json", false, "print JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id <= 0 {
		return errors.New("-id is required")
	}

	params := &fluxo.UpdateTransactionParams{}
	var parseErr error
	// Only flags given on the command line are sent
	fs.Visit(func(f *flag.Flag) {
		if parseErr != nil {
			return
		}
		switch f.Name {
		case "description":
			params.Description = description
		case "amount":
			value, err := fluxo.ParseAmountText(*amount)
			parseErr = err
			params.Amount = &value
		case "date":
			day, err := a.day(*date)
			parseErr = err
			params.Date = &day
		case "type":
			t, err := parseType(*kind)
			parseErr = err
			params.Type = &t
		case "category":
			params.CategoryID = category
		case "payment-method":
			params.PaymentMethodID = method
		}
	})
	if parseErr != nil {
		return parseErr
	}

	txn, err := a.client.Transactions.Update(ctx, *id, params)
	if err != nil {
		return err
	}
	return a.emit(*asJSON, txn, render.Transactions([]*fluxo.Transaction{txn}))
}

func (a *app) delete(ctx context.Context, args []string) error {
	fs := newFlagSet("delete")
	id := fs.Int64("id", 0, "transaction id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id <= 0 {
		return errors.New("-id is required")
	}

	if err := a.client.Transactions.Delete(ctx, *id); err != nil {
		return err
	}
	_, err := fmt.Fprintf(a.out, "deleted transaction %d\n", *id)
	return err
}

func (a *app) transition(ctx context.Context, action string, args []string) error {
	fs := newFlagSet(action)
	id := fs.Int64("id", 0, "transaction id")
	asJSON := fs.Bool("json", false, "print JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id <= 0 {
		return errors.New("-id is required")
	}

	apply := a.client.Transactions.Settle
	if action == "cancel" {
		apply = a.client.Transactions.Cancel
	}

	txn, err := apply(ctx, *id)
	if err != nil {
		return err
	}
	return a.emit(*asJSON, txn, render.Transactions([]*fluxo.Transaction{txn}))
}

func (a *app) categories(ctx context.Context, args []string) error {
	fs := newFlagSet("categories")
	kind := fs.String("type", "", "only categories usable for income or expense")
	asJSON := fs.Bool("json", false, "print JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	t, err := parseType(*kind)
	if err != nil {
		return err
	}

	var cats []*fluxo.Category
	if t != "" {
		cats, err = a.client.Categories.ForType(ctx, t)
	} else {
		cats, err = a.client.Categories.List(ctx)
	}
	if err != nil {
		return err
	}
	return a.emit(*asJSON, cats, render.Categories(cats))
}

func (a *app) paymentMethods(ctx context.Context, args []string) error {
	fs := newFlagSet("payment-methods")
	asJSON := fs.Bool("json", false, "print JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	methods, err := a.client.PaymentMethods.List(ctx)
	if err != nil {
		return err
	}
	return a.emit(*asJSON, methods, render.PaymentMethods(methods))
}

func (a *app) serve(ctx context.Context, args []string) error {
	fs := newFlagSet("serve")
	addr := fs.String("addr", a.cfg.ListenAddr, "listen address")
	if err := fs.Parse(args); err != nil {
		return err
	}

	router := server.NewRouter(a.client, a.metrics, a.logger)
	return server.ListenAndServe(ctx, *addr, router, a.logger)
}

func (a *app) tui(ctx context.Context, args []string) error {
	fs := newFlagSet("tui")
	month := fs.String("month", "", "first month to show (YYYY-MM, default current)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	window, err := a.month(*month)
	if err != nil {
		return err
	}

	return tui.Run(ctx, a.client, window,
		tui.WithLoadTimeout(a.cfg.Timeout),
		tui.WithLoadObserver(a.metrics.IncrDashboardLoad),
	)
}
