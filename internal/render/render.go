// Package render draws chart payloads as PNG images. It is the only
// package that knows about pixels; the pipeline upstream treats its
// output as opaque bytes.
package render

import (
	"bytes"
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	chart "github.com/wcharczuk/go-chart/v2"

	"github.com/dvloznov/finance-assistant/internal/charts"
)

const (
	imageWidth  = 900
	imageHeight = 600
	barWidth    = 48
)

// ImageRenderer renders chart payloads with fixed dimensions.
type ImageRenderer struct {
	width  int
	height int
}

// NewImageRenderer returns a renderer with the default canvas size.
func NewImageRenderer() *ImageRenderer {
	return &ImageRenderer{width: imageWidth, height: imageHeight}
}

// RenderCategoryBreakdown draws the expense split as a pie chart.
func (r *ImageRenderer) RenderCategoryBreakdown(data *charts.CategoryBreakdown) ([]byte, error) {
	values := make([]chart.Value, 0, len(data.Slices))
	for _, s := range data.Slices {
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s (R$ %s)", s.Name, s.Total.StringFixed(2)),
			Value: toFloat(s.Total),
		})
	}

	pie := chart.PieChart{
		Title:  "Gastos por categoria",
		Width:  r.width,
		Height: r.height,
		Values: values,
	}
	return encodePNG(&pie)
}

// RenderDailySpending draws per-day expense totals as a bar chart.
func (r *ImageRenderer) RenderDailySpending(data *charts.DailySpending) ([]byte, error) {
	bars := make([]chart.Value, 0, len(data.Points))
	var top decimal.Decimal
	for _, p := range data.Points {
		bars = append(bars, chart.Value{
			Label: p.Date.Format("02/01"),
			Value: toFloat(p.Total),
		})
		if p.Total.GreaterThan(top) {
			top = p.Total
		}
	}

	bar := chart.BarChart{
		Title:    "Gastos diários (R$)",
		Width:    r.width,
		Height:   r.height,
		BarWidth: r.barWidth(len(bars)),
		Bars:     bars,
		YAxis:    yAxis(0, toFloat(top)),
	}
	return encodePNG(&bar)
}

// RenderMonthSummary draws income, expenses and net as three bars. The
// net bar may be negative.
func (r *ImageRenderer) RenderMonthSummary(data *charts.MonthSummary) ([]byte, error) {
	bars := []chart.Value{
		{Label: "Receitas", Value: toFloat(data.Income)},
		{Label: "Despesas", Value: toFloat(data.Expenses)},
		{Label: "Saldo", Value: toFloat(data.Net)},
	}

	low := minFloat(0, toFloat(data.Net))
	high := maxFloat(toFloat(data.Income), toFloat(data.Expenses))
	bar := chart.BarChart{
		Title:    fmt.Sprintf("Resumo de %s (R$)", data.Month),
		Width:    r.width,
		Height:   r.height,
		BarWidth: barWidth,
		Bars:     bars,
		YAxis:    yAxis(low, high),
	}
	return encodePNG(&bar)
}

// RenderBudgetProgress draws spend as a percentage of each budget's
// target, with the 100% line inside the visible range.
func (r *ImageRenderer) RenderBudgetProgress(data *charts.BudgetProgress) ([]byte, error) {
	bars := make([]chart.Value, 0, len(data.Rows))
	high := 120.0
	for _, row := range data.Rows {
		bars = append(bars, chart.Value{
			Label: fmt.Sprintf("%s (%.0f%%)", row.Category, row.Percent),
			Value: row.Percent,
		})
		if row.Percent > high {
			high = row.Percent
		}
	}

	bar := chart.BarChart{
		Title:    "Orçamento do mês (% da meta)",
		Width:    r.width,
		Height:   r.height,
		BarWidth: r.barWidth(len(bars)),
		Bars:     bars,
		YAxis:    yAxis(0, high),
	}
	return encodePNG(&bar)
}

// RenderInvoiceHistory draws statement amounts per month.
func (r *ImageRenderer) RenderInvoiceHistory(data *charts.InvoiceHistory) ([]byte, error) {
	bars := make([]chart.Value, 0, len(data.Points))
	var top decimal.Decimal
	for _, p := range data.Points {
		bars = append(bars, chart.Value{
			Label: p.Label,
			Value: toFloat(p.Amount),
		})
		if p.Amount.GreaterThan(top) {
			top = p.Amount
		}
	}

	bar := chart.BarChart{
		Title:    "Faturas do cartão (R$)",
		Width:    r.width,
		Height:   r.height,
		BarWidth: r.barWidth(len(bars)),
		Bars:     bars,
		YAxis:    yAxis(0, toFloat(top)),
	}
	return encodePNG(&bar)
}

// RenderMonthComparison draws the current and previous month's totals
// side by side.
func (r *ImageRenderer) RenderMonthComparison(data *charts.MonthComparison) ([]byte, error) {
	cur, prev := data.Current, data.Previous
	bars := []chart.Value{
		{Label: "Receitas " + prev.Month, Value: toFloat(prev.Income)},
		{Label: "Receitas " + cur.Month, Value: toFloat(cur.Income)},
		{Label: "Despesas " + prev.Month, Value: toFloat(prev.Expenses)},
		{Label: "Despesas " + cur.Month, Value: toFloat(cur.Expenses)},
		{Label: "Saldo " + prev.Month, Value: toFloat(prev.Net)},
		{Label: "Saldo " + cur.Month, Value: toFloat(cur.Net)},
	}

	low := minFloat(0, minFloat(toFloat(prev.Net), toFloat(cur.Net)))
	high := 0.0
	for _, b := range bars {
		high = maxFloat(high, b.Value)
	}
	bar := chart.BarChart{
		Title:    fmt.Sprintf("Comparativo %s x %s (R$)", prev.Month, cur.Month),
		Width:    r.width,
		Height:   r.height,
		BarWidth: r.barWidth(len(bars)),
		Bars:     bars,
		YAxis:    yAxis(low, high),
	}
	return encodePNG(&bar)
}

// barWidth narrows bars as the count grows so long months still fit the
// canvas.
func (r *ImageRenderer) barWidth(count int) int {
	if count == 0 {
		return barWidth
	}
	w := (r.width - 100) / count
	if w > barWidth {
		return barWidth
	}
	if w < 8 {
		return 8
	}
	return w
}

type pngRenderable interface {
	Render(rp chart.RendererProvider, w io.Writer) error
}

func encodePNG(c pngRenderable) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("encodePNG: rendering chart: %w", err)
	}
	return buf.Bytes(), nil
}

// yAxis builds a fixed range so months where every value is zero still
// render instead of failing on a degenerate axis.
func yAxis(low, high float64) chart.YAxis {
	if high <= low {
		high = low + 1
	}
	return chart.YAxis{
		Range: &chart.ContinuousRange{Min: low, Max: high * 1.1},
	}
}

func toFloat(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
