package fluxo

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func amounts(items []Installment) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = FormatAmount(it.Amount)
	}
	return out
}

func TestPreviewInstallments_Distribute(t *testing.T) {
	start := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)

	items := PreviewInstallments(dec("100.00"), start, 3, true)

	require.Len(t, items, 3)
	assert.Equal(t, []string{"33.34", "33.33", "33.33"}, amounts(items))
	assert.Equal(t, "100.00", FormatAmount(InstallmentsTotal(items)))
	for i, it := range items {
		assert.Equal(t, i+1, it.Index)
		assert.Equal(t, 3, it.Total)
	}
}

func TestPreviewInstallments_DistributeSumsToAmount(t *testing.T) {
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	for _, tc := range []struct {
		amount string
		count  int
	}{
		{"100.00", 3},
		{"100.00", 7},
		{"0.05", 3},
		{"1999.99", 12},
		{"10.01", 4},
		{"200.00", 6},
		{"-100.00", 3},
		{"33.335", 2},
	} {
		items := PreviewInstallments(dec(tc.amount), start, tc.count, true)
		require.Len(t, items, tc.count)

		want := dec(tc.amount).Round(2)
		assert.True(t, InstallmentsTotal(items).Equal(want), "%s / %d: got %s", tc.amount, tc.count, InstallmentsTotal(items))

		// No share is more than a cent away from the rounded base
		base := want.Div(decimal.NewFromInt(int64(tc.count))).Round(2)
		for _, it := range items {
			assert.True(t, it.Amount.Sub(base).Abs().LessThanOrEqual(cents), "%s / %d: share %s", tc.amount, tc.count, it.Amount)
		}
	}
}

func TestPreviewInstallments_Repeat(t *testing.T) {
	start := time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC)

	items := PreviewInstallments(dec("50.00"), start, 4, false)

	require.Len(t, items, 4)
	assert.Equal(t, []string{"50.00", "50.00", "50.00", "50.00"}, amounts(items))
	assert.Equal(t, start, items[0].Date)
	assert.Equal(t, time.Date(2025, 6, 20, 0, 0, 0, 0, time.UTC), items[1].Date)
	assert.Equal(t, time.Date(2025, 7, 20, 0, 0, 0, 0, time.UTC), items[2].Date)
	assert.Equal(t, time.Date(2025, 8, 20, 0, 0, 0, 0, time.UTC), items[3].Date)
}

func TestPreviewInstallments_SingleOccurrence(t *testing.T) {
	start := time.Date(2025, 5, 20, 0, 0, 0, 0, time.UTC)

	for _, distribute := range []bool{false, true} {
		items := PreviewInstallments(dec("123.45"), start, 1, distribute)

		require.Len(t, items, 1)
		assert.Equal(t, start, items[0].Date)
		assert.Equal(t, "123.45", FormatAmount(items[0].Amount))
	}
}

func TestPreviewInstallments_MonthOverflow(t *testing.T) {
	start := time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC)

	items := PreviewInstallments(dec("10"), start, 3, false)

	require.Len(t, items, 3)
	// 31 Feb rolls into March
	assert.Equal(t, time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC), items[1].Date)
	assert.Equal(t, time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC), items[2].Date)
}

func TestPreviewInstallments_Guards(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.Empty(t, PreviewInstallments(dec("10"), time.Time{}, 3, false))
	assert.Empty(t, PreviewInstallments(decimal.Zero, start, 3, true))
	assert.Empty(t, PreviewInstallments(dec("0.001"), start, 3, true))

	// Count is clamped to one
	items := PreviewInstallments(dec("10"), start, 0, true)
	require.Len(t, items, 1)
	assert.Equal(t, "10.00", FormatAmount(items[0].Amount))
	assert.Len(t, PreviewInstallments(dec("10"), start, -4, false), 1)
}

func TestPreviewFromForm(t *testing.T) {
	items := PreviewFromForm("100", "2025-02-10", 3, true)
	require.Len(t, items, 3)
	assert.Equal(t, []string{"33.34", "33.33", "33.33"}, amounts(items))
	assert.Equal(t, 2025, items[0].Date.Year())
	assert.Equal(t, time.February, items[0].Date.Month())
	assert.Equal(t, 10, items[0].Date.Day())
	assert.Equal(t, 0, items[0].Date.Hour())

	assert.Len(t, PreviewFromForm("12,50", "2025-02-10", 2, false), 2)
	assert.Empty(t, PreviewFromForm("", "2025-02-10", 2, false))
	assert.Empty(t, PreviewFromForm("abc", "2025-02-10", 2, false))
	assert.Empty(t, PreviewFromForm("100", "", 2, false))
	assert.Empty(t, PreviewFromForm("100", "10/02/2025", 2, false))
}
