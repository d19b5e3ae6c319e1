package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fluxo-app/fluxo-go/pkg/fluxo"
	"github.com/shopspring/decimal"
)

// BarWidth is the width of the longest category bar
const BarWidth = 30

var sparks = []rune("▁▂▃▄▅▆▇█")

// Dashboard renders the whole monthly dashboard
func Dashboard(d *fluxo.Dashboard) string {
	if d == nil || d.Summary == nil {
		return Muted("no data")
	}

	s := d.Summary
	sections := []string{
		titleStyle.Render(d.Window.Label()),
		Cards(s),
		section("Expenses by category", CategoryBars(s.ExpensesByCategory, false)),
		section("Income by category", CategoryBars(s.IncomeByCategory, true)),
		section("Daily cash flow", CashSeries(s.CashSeries)),
		section("Recent activity", Transactions(d.Recent)),
	}
	return strings.Join(sections, "\n\n")
}

func section(title, body string) string {
	return headerStyle.Render(title) + "\n" + body
}

// Cards renders the summary totals side by side
func Cards(s *fluxo.Summary) string {
	card := func(label string, value decimal.Decimal, style lipgloss.Style) string {
		return cardStyle.Render(mutedStyle.Render(label) + "\n" + style.Bold(true).Render(Money(value)))
	}

	netStyle := amountStyle(!s.Net.IsNegative())
	return lipgloss.JoinHorizontal(lipgloss.Top,
		card("Income", s.TotalIncome, amountStyle(true)),
		card("Expenses", s.TotalExpense, amountStyle(false)),
		card("Net", s.Net, netStyle),
		card("Pending", s.PendingValue, lipgloss.NewStyle().Foreground(warnCol)),
		card("Overdue", s.OverdueValue, lipgloss.NewStyle().Foreground(expenseCol)),
	)
}

// CategoryBars renders one horizontal bar per bucket, scaled to the largest
func CategoryBars(buckets []fluxo.CategoryBucket, income bool) string {
	if len(buckets) == 0 {
		return Muted("nothing this month")
	}

	largest := decimal.Zero
	nameWidth := 0
	for _, b := range buckets {
		if b.Value.GreaterThan(largest) {
			largest = b.Value
		}
		if w := lipgloss.Width(b.Name); w > nameWidth {
			nameWidth = w
		}
	}

	style := amountStyle(income)
	lines := make([]string, 0, len(buckets))
	for _, b := range buckets {
		lines = append(lines, fmt.Sprintf("%-*s %s %s",
			nameWidth, b.Name,
			style.Render(padRight(strings.Repeat("█", barLen(b.Value, largest)), BarWidth)),
			Money(b.Value),
		))
	}
	return strings.Join(lines, "\n")
}

func barLen(value, largest decimal.Decimal) int {
	if !largest.IsPositive() || !value.IsPositive() {
		return 0
	}
	n := int(value.Mul(decimal.NewFromInt(BarWidth)).Div(largest).Round(0).IntPart())
	if n == 0 {
		n = 1
	}
	return n
}

func padRight(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		return s + strings.Repeat(" ", width-w)
	}
	return s
}

// CashSeries renders a net sparkline over the month followed by the days with movement
func CashSeries(points []fluxo.CashDayPoint) string {
	if len(points) == 0 {
		return Muted("no days")
	}

	maxAbs := decimal.Zero
	for _, p := range points {
		if a := p.Net.Abs(); a.GreaterThan(maxAbs) {
			maxAbs = a
		}
	}

	var spark strings.Builder
	for _, p := range points {
		spark.WriteString(sparkCell(p.Net, maxAbs))
	}

	lines := []string{spark.String()}
	for _, p := range points {
		if p.Income.IsZero() && p.Expense.IsZero() {
			continue
		}
		lines = append(lines, fmt.Sprintf("%2d  %s  %s  net %s",
			p.Day,
			amountStyle(true).Render("+"+Money(p.Income)),
			amountStyle(false).Render("-"+Money(p.Expense)),
			Money(p.Net),
		))
	}
	return strings.Join(lines, "\n")
}

func sparkCell(net, maxAbs decimal.Decimal) string {
	if net.IsZero() || !maxAbs.IsPositive() {
		return mutedStyle.Render("·")
	}
	idx := int(net.Abs().Mul(decimal.NewFromInt(int64(len(sparks) - 1))).Div(maxAbs).Round(0).IntPart())
	return amountStyle(net.IsPositive()).Render(string(sparks[idx]))
}
