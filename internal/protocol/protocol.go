// Package protocol parses the command markers the language model embeds in
// its free-form replies. Markers are a closed side-channel protocol of the
// shape [CHART:KIND] and [ACTION:KIND]; extraction only recognizes the
// known enums, stripping tolerates any alphanumeric payload.
package protocol

import (
	"regexp"
	"strings"
)

// ChartKind identifies one of the renderable chart types.
type ChartKind string

const (
	ChartPie        ChartKind = "PIE"
	ChartBar        ChartKind = "BAR"
	ChartSummary    ChartKind = "SUMMARY"
	ChartBudget     ChartKind = "BUDGET"
	ChartInvoice    ChartKind = "INVOICE"
	ChartComparison ChartKind = "COMPARISON"
)

// ActionKind identifies a write action the model proposes on the user's
// behalf. The pipeline only detects and signals these; it never executes
// them.
type ActionKind string

const (
	ActionCreateExpense  ActionKind = "CREATE_EXPENSE"
	ActionCreateIncome   ActionKind = "CREATE_INCOME"
	ActionCreateTransfer ActionKind = "CREATE_TRANSFER"
	ActionCreateCategory ActionKind = "CREATE_CATEGORY"
	ActionSetBudget      ActionKind = "SET_BUDGET"
)

// chartPriority is the fixed tie-break order when a reply pathologically
// contains more than one chart marker. This is the enumeration order, not
// order of appearance in the text.
var chartPriority = []ChartKind{
	ChartPie, ChartBar, ChartSummary, ChartBudget, ChartInvoice, ChartComparison,
}

// actionPriority is the fixed tie-break order for action markers.
var actionPriority = []ActionKind{
	ActionCreateExpense, ActionCreateIncome, ActionCreateTransfer,
	ActionCreateCategory, ActionSetBudget,
}

var (
	chartMarkerRe  = regexp.MustCompile(`\[CHART:\w+\]`)
	actionMarkerRe = regexp.MustCompile(`\[ACTION:\w+\]`)
)

// ExtractChartCommand returns the first chart kind, in priority order,
// whose marker appears literally in text.
func ExtractChartCommand(text string) (ChartKind, bool) {
	for _, kind := range chartPriority {
		if strings.Contains(text, "[CHART:"+string(kind)+"]") {
			return kind, true
		}
	}
	return "", false
}

// ExtractActionCommand returns the first action kind, in priority order,
// whose marker appears literally in text.
func ExtractActionCommand(text string) (ActionKind, bool) {
	for _, kind := range actionPriority {
		if strings.Contains(text, "[ACTION:"+string(kind)+"]") {
			return kind, true
		}
	}
	return "", false
}

// StripMarkers removes every [CHART:*] and [ACTION:*] token, known or not,
// and trims surrounding whitespace. No other character of the reply is
// altered. Idempotent.
func StripMarkers(text string) string {
	text = chartMarkerRe.ReplaceAllString(text, "")
	text = actionMarkerRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}
