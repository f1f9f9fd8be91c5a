package render

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvloznov/finance-assistant/internal/charts"
)

var pngMagic = []byte{0x89, 0x50, 0x4e, 0x47}

func assertPNG(t *testing.T, img []byte, err error) {
	t.Helper()
	require.NoError(t, err)
	require.Greater(t, len(img), 8)
	assert.Equal(t, pngMagic, img[:4])
}

func TestRenderCategoryBreakdown(t *testing.T) {
	r := NewImageRenderer()

	img, err := r.RenderCategoryBreakdown(&charts.CategoryBreakdown{
		Slices: []charts.CategorySlice{
			{Name: "Alimentação", Total: decimal.New(8000, -2)},
			{Name: "Transporte", Total: decimal.New(2000, -2)},
		},
		Total: decimal.New(10000, -2),
	})

	assertPNG(t, img, err)
}

func TestRenderDailySpending(t *testing.T) {
	r := NewImageRenderer()

	img, err := r.RenderDailySpending(&charts.DailySpending{
		Points: []charts.DailyPoint{
			{Date: time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC), Total: decimal.New(1500, -2)},
			{Date: time.Date(2025, 8, 2, 0, 0, 0, 0, time.UTC), Total: decimal.New(4200, -2)},
		},
	})

	assertPNG(t, img, err)
}

func TestRenderMonthSummaryEmptyMonth(t *testing.T) {
	// All-zero totals still produce an image.
	r := NewImageRenderer()

	img, err := r.RenderMonthSummary(&charts.MonthSummary{Month: "agosto"})

	assertPNG(t, img, err)
}

func TestRenderMonthSummaryNegativeNet(t *testing.T) {
	r := NewImageRenderer()

	img, err := r.RenderMonthSummary(&charts.MonthSummary{
		Month:    "agosto",
		Income:   decimal.New(250000, -2),
		Expenses: decimal.New(310000, -2),
		Net:      decimal.New(-60000, -2),
	})

	assertPNG(t, img, err)
}

func TestRenderBudgetProgress(t *testing.T) {
	r := NewImageRenderer()

	img, err := r.RenderBudgetProgress(&charts.BudgetProgress{
		Rows: []charts.BudgetRow{
			{Category: "Alimentação", Target: decimal.New(50000, -2), Actual: decimal.New(62000, -2), Percent: 124, Over: true},
			{Category: "Lazer", Target: decimal.New(20000, -2), Actual: decimal.New(5000, -2), Percent: 25},
		},
	})

	assertPNG(t, img, err)
}

func TestRenderInvoiceHistory(t *testing.T) {
	r := NewImageRenderer()

	img, err := r.RenderInvoiceHistory(&charts.InvoiceHistory{
		Points: []charts.InvoicePoint{
			{Label: "06/2025", Amount: decimal.New(120000, -2)},
			{Label: "07/2025", Amount: decimal.New(98000, -2)},
		},
	})

	assertPNG(t, img, err)
}

func TestRenderMonthComparison(t *testing.T) {
	r := NewImageRenderer()

	img, err := r.RenderMonthComparison(&charts.MonthComparison{
		Current:  charts.MonthSummary{Month: "agosto", Income: decimal.New(250000, -2), Expenses: decimal.New(180000, -2), Net: decimal.New(70000, -2)},
		Previous: charts.MonthSummary{Month: "julho", Income: decimal.New(250000, -2), Expenses: decimal.New(210000, -2), Net: decimal.New(40000, -2)},
	})

	assertPNG(t, img, err)
}

func TestBarWidthNarrowsWithCount(t *testing.T) {
	r := NewImageRenderer()

	assert.Equal(t, barWidth, r.barWidth(3))
	assert.Less(t, r.barWidth(31), barWidth)
	assert.GreaterOrEqual(t, r.barWidth(500), 8)
}
