package fluxo

import (
	"time"

	"github.com/shopspring/decimal"
)

// PreviewInstallments lists the occurrences a create request with
// repeatCount=count would produce, one calendar month apart from start.
//
// In repeat mode every occurrence carries amount. In distribute mode
// (count > 1) amount is split into cent-rounded shares and the rounding
// remainder is spread one cent at a time over the first occurrences, so
// the shares always add up to amount. A zero start or zero amount yields
// no preview; count is clamped to at least 1.
func PreviewInstallments(amount decimal.Decimal, start time.Time, count int, distribute bool) []Installment {
	if count < 1 {
		count = 1
	}
	amount = amount.Round(2)
	if start.IsZero() || amount.IsZero() {
		return []Installment{}
	}

	out := make([]Installment, count)
	for i := range out {
		out[i] = Installment{
			Index:  i + 1,
			Total:  count,
			Date:   start.AddDate(0, i, 0),
			Amount: amount,
		}
	}

	if !distribute || count == 1 {
		return out
	}

	n := decimal.NewFromInt(int64(count))
	base := amount.Div(n).Round(2)
	diff := amount.Sub(base.Mul(n)).Round(2)

	step := cents
	if diff.IsNegative() {
		step = cents.Neg()
	}

	for i := range out {
		v := base
		if !diff.IsZero() {
			v = v.Add(step)
			diff = diff.Sub(step)
		}
		out[i].Amount = v
	}

	return out
}

// PreviewFromForm runs PreviewInstallments on raw form input: an amount
// as typed and a YYYY-MM-DD date read as local midnight. Unparseable
// input yields no preview.
func PreviewFromForm(amountText, dateText string, count int, distribute bool) []Installment {
	amount, err := ParseAmountText(amountText)
	if err != nil {
		return []Installment{}
	}
	start, err := time.ParseInLocation(DateLayout, dateText, time.Local)
	if err != nil {
		return []Installment{}
	}
	return PreviewInstallments(amount, start, count, distribute)
}

// InstallmentsTotal sums the amounts of a preview
func InstallmentsTotal(items []Installment) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Amount)
	}
	return total
}
