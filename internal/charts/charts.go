// Package charts turns snapshot records into bounded, rankable aggregates
// ready for rendering. Every builder is a pure function returning nil when
// there is nothing to display; callers treat nil as "insufficient data",
// never as an error.
package charts

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dvloznov/finance-assistant/internal/domain"
	"github.com/dvloznov/finance-assistant/internal/snapshot"
)

const (
	// topCategories is how many category groups survive verbatim before
	// the remainder folds into the "Outros" bucket.
	topCategories = 7
	// foldThreshold is the group count above which folding kicks in.
	foldThreshold = 8
	// maxBudgetRows bounds the budget progress chart.
	maxBudgetRows = 10

	// OtherLabel is the synthetic bucket for folded category groups.
	OtherLabel = "Outros"
)

// CategorySlice is one category's expense total.
type CategorySlice struct {
	Name  string
	Total decimal.Decimal
}

// CategoryBreakdown is the PIE payload: expense totals per category,
// ranked descending, at most foldThreshold slices.
type CategoryBreakdown struct {
	Slices []CategorySlice
	Total  decimal.Decimal
}

// BuildCategoryBreakdown aggregates the absolute value of expense
// transactions by category name. Returns nil when there are no expenses.
func BuildCategoryBreakdown(txs []snapshot.DisplayTransaction) *CategoryBreakdown {
	totals := make(map[string]decimal.Decimal)
	for _, tx := range txs {
		if !tx.IsExpense() {
			continue
		}
		totals[tx.Category] = totals[tx.Category].Add(tx.AbsAmount())
	}
	if len(totals) == 0 {
		return nil
	}

	slices := make([]CategorySlice, 0, len(totals))
	for name, total := range totals {
		slices = append(slices, CategorySlice{Name: name, Total: total})
	}
	sort.Slice(slices, func(i, j int) bool {
		if !slices[i].Total.Equal(slices[j].Total) {
			return slices[i].Total.GreaterThan(slices[j].Total)
		}
		return slices[i].Name < slices[j].Name // deterministic tie-break
	})

	if len(slices) > foldThreshold {
		folded := decimal.Zero
		for _, s := range slices[topCategories:] {
			folded = folded.Add(s.Total)
		}
		slices = append(slices[:topCategories:topCategories], CategorySlice{Name: OtherLabel, Total: folded})
	}

	grand := decimal.Zero
	for _, s := range slices {
		grand = grand.Add(s.Total)
	}
	return &CategoryBreakdown{Slices: slices, Total: grand}
}

// DailyPoint is one day's expense total.
type DailyPoint struct {
	Date  time.Time
	Total decimal.Decimal
}

// DailySpending is the BAR payload: expense totals per calendar day in
// ascending date order.
type DailySpending struct {
	Points []DailyPoint
}

// BuildDailySpending aggregates the absolute value of expense transactions
// by calendar day. Returns nil when there are no expenses.
func BuildDailySpending(txs []snapshot.DisplayTransaction) *DailySpending {
	totals := make(map[time.Time]decimal.Decimal)
	for _, tx := range txs {
		if !tx.IsExpense() {
			continue
		}
		totals[tx.Date] = totals[tx.Date].Add(tx.AbsAmount())
	}
	if len(totals) == 0 {
		return nil
	}

	points := make([]DailyPoint, 0, len(totals))
	for date, total := range totals {
		points = append(points, DailyPoint{Date: date, Total: total})
	}
	sort.Slice(points, func(i, j int) bool {
		return points[i].Date.Before(points[j].Date)
	})
	return &DailySpending{Points: points}
}

// MonthSummary is the SUMMARY payload: one month's totals.
type MonthSummary struct {
	Month    string
	Income   decimal.Decimal
	Expenses decimal.Decimal
	Net      decimal.Decimal
}

// BuildMonthSummary passes through the snapshot's month totals.
func BuildMonthSummary(s snapshot.Summary) *MonthSummary {
	return &MonthSummary{
		Month:    s.Month,
		Income:   s.Income,
		Expenses: s.Expenses,
		Net:      s.Net,
	}
}

// BudgetRow pairs one budget's target with its actual spend.
type BudgetRow struct {
	Category string
	Target   decimal.Decimal
	Actual   decimal.Decimal
	Percent  float64
	Over     bool // actual exceeded the target
}

// BudgetProgress is the BUDGET payload: at most maxBudgetRows rows in the
// ledger's budget order.
type BudgetProgress struct {
	Rows []BudgetRow
}

// BuildBudgetProgress pairs targets with actuals for up to the first ten
// budget entries. Percent is zero when the target is zero. Returns nil
// when there are no budgets.
func BuildBudgetProgress(entries []snapshot.BudgetEntry) *BudgetProgress {
	if len(entries) == 0 {
		return nil
	}
	if len(entries) > maxBudgetRows {
		entries = entries[:maxBudgetRows]
	}

	rows := make([]BudgetRow, 0, len(entries))
	for _, e := range entries {
		percent := 0.0
		if !e.Target.IsZero() {
			percent, _ = e.Actual.Div(e.Target).Mul(decimal.NewFromInt(100)).Float64()
		}
		rows = append(rows, BudgetRow{
			Category: e.Category,
			Target:   e.Target,
			Actual:   e.Actual,
			Percent:  percent,
			Over:     percent > 100,
		})
	}
	return &BudgetProgress{Rows: rows}
}

// InvoicePoint is one statement labeled by its month.
type InvoicePoint struct {
	Label  string // MM/YYYY
	Amount decimal.Decimal
}

// InvoiceHistory is the INVOICE payload: statements in ascending date
// order.
type InvoiceHistory struct {
	Points []InvoicePoint
}

// BuildInvoiceHistory sorts invoices ascending by statement date and emits
// month-labeled amounts. Returns nil when there are no invoices.
func BuildInvoiceHistory(invoices []domain.Invoice) *InvoiceHistory {
	if len(invoices) == 0 {
		return nil
	}

	sorted := make([]domain.Invoice, len(invoices))
	copy(sorted, invoices)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	points := make([]InvoicePoint, 0, len(sorted))
	for _, inv := range sorted {
		points = append(points, InvoicePoint{
			Label:  inv.Date.Format("01/2006"),
			Amount: inv.Amount,
		})
	}
	return &InvoiceHistory{Points: points}
}

// MonthComparison is the COMPARISON payload: the current and previous
// month's summaries paired positionally (income, expenses, net).
type MonthComparison struct {
	Current  MonthSummary
	Previous MonthSummary
}

// BuildMonthComparison pairs two already-built summaries.
func BuildMonthComparison(current, previous snapshot.Summary) *MonthComparison {
	return &MonthComparison{
		Current:  *BuildMonthSummary(current),
		Previous: *BuildMonthSummary(previous),
	}
}
