package fluxo

import (
	"github.com/shopspring/decimal"
)

// UncategorizedLabel names the bucket of transactions without a category
const UncategorizedLabel = "Uncategorized"

// Aggregate folds one month of transactions into the dashboard summary.
//
// Pending and overdue values are summed across income and expense alike.
// The cash series has one point per calendar day of w, bucketed by the
// transaction's calendar day in w's location; days without activity are
// zero. Nil records and zero amounts contribute nothing.
func Aggregate(txns []*Transaction, w MonthWindow) *Summary {
	days := w.DaysInMonth()
	series := make([]CashDayPoint, days)
	for i := range series {
		series[i] = CashDayPoint{
			Day:     i + 1,
			Income:  decimal.Zero,
			Expense: decimal.Zero,
			Net:     decimal.Zero,
		}
	}

	s := &Summary{
		TotalIncome:        decimal.Zero,
		TotalExpense:       decimal.Zero,
		PendingValue:       decimal.Zero,
		OverdueValue:       decimal.Zero,
		ExpensesByCategory: []CategoryBucket{},
		IncomeByCategory:   []CategoryBucket{},
		CashSeries:         series,
	}

	expenses := newBucketSet()
	income := newBucketSet()
	loc := w.loc()

	for _, t := range txns {
		if t == nil {
			continue
		}
		amount := t.Amount

		switch t.Status {
		case StatusPending:
			s.PendingValue = s.PendingValue.Add(amount)
		case StatusOverdue:
			s.OverdueValue = s.OverdueValue.Add(amount)
		}

		var point *CashDayPoint
		if !t.Date.IsZero() {
			y, m, d := t.Date.Day(loc)
			if y == w.Year && m == w.Month {
				point = &series[d-1]
			}
		}

		switch t.Type {
		case TypeIncome:
			s.TotalIncome = s.TotalIncome.Add(amount)
			income.add(t.categoryLabel(), amount)
			if point != nil {
				point.Income = point.Income.Add(amount)
			}
		case TypeExpense:
			s.TotalExpense = s.TotalExpense.Add(amount)
			expenses.add(t.categoryLabel(), amount)
			if point != nil {
				point.Expense = point.Expense.Add(amount)
			}
		}
	}

	for i := range series {
		series[i].Net = series[i].Income.Sub(series[i].Expense)
	}

	s.Net = s.TotalIncome.Sub(s.TotalExpense)
	s.ExpensesByCategory = expenses.buckets
	s.IncomeByCategory = income.buckets
	return s
}

func (t *Transaction) categoryLabel() string {
	if t.CategoryName != "" {
		return t.CategoryName
	}
	if t.Category != nil && t.Category.Name != "" {
		return t.Category.Name
	}
	return UncategorizedLabel
}

// bucketSet sums amounts per name, keeping first-appearance order
type bucketSet struct {
	index   map[string]int
	buckets []CategoryBucket
}

func newBucketSet() *bucketSet {
	return &bucketSet{index: make(map[string]int), buckets: []CategoryBucket{}}
}

func (b *bucketSet) add(name string, amount decimal.Decimal) {
	if i, ok := b.index[name]; ok {
		b.buckets[i].Value = b.buckets[i].Value.Add(amount)
		return
	}
	b.index[name] = len(b.buckets)
	b.buckets = append(b.buckets, CategoryBucket{Name: name, Value: amount})
}
