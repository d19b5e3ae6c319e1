package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fluxo-app/fluxo-go/pkg/fluxo"
)

const descWidth = 28

// Transactions renders a transaction table
func Transactions(txns []*fluxo.Transaction) string {
	if len(txns) == 0 {
		return Muted("no transactions")
	}

	rows := []string{headerStyle.Render(fmt.Sprintf("%-6s %-10s %-*s %-16s %-9s %s",
		"ID", "DATE", descWidth, "DESCRIPTION", "CATEGORY", "STATUS", "AMOUNT"))}
	for _, t := range txns {
		rows = append(rows, transactionRow(t))
	}
	return strings.Join(rows, "\n")
}

func transactionRow(t *fluxo.Transaction) string {
	desc := t.Description
	if t.InSeries() {
		desc = fmt.Sprintf("%s (%d/%d)", desc, t.InstallmentNumber, t.InstallmentTotal)
	}

	category := t.CategoryName
	if category == "" {
		category = "-"
	}

	sign := "-"
	if t.IsIncome() {
		sign = "+"
	}

	return fmt.Sprintf("%-6d %-10s %s %s %-9s %s",
		t.ID,
		t.Date.String(),
		padRight(truncate(desc, descWidth), descWidth),
		padRight(truncate(category, 16), 16),
		string(t.Status),
		amountStyle(t.IsIncome()).Render(sign+Money(t.Amount)),
	)
}

func truncate(s string, width int) string {
	if lipgloss.Width(s) <= width {
		return s
	}
	r := []rune(s)
	if len(r) > width-1 {
		r = r[:width-1]
	}
	return string(r) + "…"
}

// Installments renders a previewed series with its total
func Installments(items []fluxo.Installment) string {
	if len(items) == 0 {
		return Muted("nothing to preview")
	}

	rows := make([]string, 0, len(items)+1)
	for _, it := range items {
		rows = append(rows, fmt.Sprintf("%3d/%-3d %s  %s", it.Index, it.Total, it.Date.Format(fluxo.DateLayout), Money(it.Amount)))
	}
	rows = append(rows, titleStyle.Render("total "+Money(fluxo.InstallmentsTotal(items))))
	return strings.Join(rows, "\n")
}

// Categories renders categories and their types
func Categories(cats []*fluxo.Category) string {
	if len(cats) == 0 {
		return Muted("no categories")
	}
	rows := make([]string, 0, len(cats))
	for _, c := range cats {
		kind := string(c.Type)
		if kind == "" {
			kind = "ANY"
		}
		rows = append(rows, fmt.Sprintf("%-6d %-24s %s", c.ID, c.Name, mutedStyle.Render(kind)))
	}
	return strings.Join(rows, "\n")
}

// PaymentMethods renders payment methods
func PaymentMethods(methods []*fluxo.PaymentMethod) string {
	if len(methods) == 0 {
		return Muted("no payment methods")
	}
	rows := make([]string, 0, len(methods))
	for _, m := range methods {
		rows = append(rows, fmt.Sprintf("%-6d %s", m.ID, m.Name))
	}
	return strings.Join(rows, "\n")
}
