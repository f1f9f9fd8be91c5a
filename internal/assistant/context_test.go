package assistant

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dvloznov/finance-assistant/internal/domain"
	"github.com/dvloznov/finance-assistant/internal/logger"
	"github.com/dvloznov/finance-assistant/internal/snapshot"
)

func TestFormatFinancialContext(t *testing.T) {
	catID := int64(1)
	snap := &snapshot.Snapshot{
		Date:         time.Date(2025, 8, 20, 0, 0, 0, 0, time.UTC),
		MonthLabel:   "agosto",
		Year:         2025,
		TotalBalance: decimal.RequireFromString("950.00"),
		Income:       decimal.RequireFromString("2500.00"),
		Expenses:     decimal.RequireFromString("1800.00"),
		Net:          decimal.RequireFromString("700.00"),
		Accounts: []domain.Account{
			{ID: 1, Name: "Nubank", Kind: domain.AccountChecking, Balance: decimal.RequireFromString("950.00")},
		},
		Recent: []snapshot.DisplayTransaction{
			{
				Transaction: domain.Transaction{
					ID:          10,
					Description: "Mercado",
					Date:        time.Date(2025, 8, 3, 0, 0, 0, 0, time.UTC),
					Amount:      decimal.RequireFromString("-45.50"),
					CategoryID:  &catID,
					Paid:        true,
				},
				Category: "Alimentação",
			},
		},
		CategoryNames: map[int64]string{1: "Alimentação", 2: "Transporte"},
		Previous: snapshot.Summary{
			Month:    "julho",
			Income:   decimal.RequireFromString("2000.00"),
			Expenses: decimal.RequireFromString("2100.00"),
			Net:      decimal.RequireFromString("-100.00"),
		},
	}

	block, err := formatFinancialContext(snap)
	require.NoError(t, err)

	require.True(t, strings.HasPrefix(block, "Dados financeiros atuais:\n"))

	var view map[string]interface{}
	raw := strings.TrimPrefix(block, "Dados financeiros atuais:\n")
	require.NoError(t, json.Unmarshal([]byte(raw), &view))

	assert.Equal(t, "20/08/2025", view["today"])
	assert.Equal(t, "agosto", view["month"])
	assert.Equal(t, "2500", view["income"], "amounts marshal as decimal strings")

	recent, ok := view["recentTransactions"].([]interface{})
	require.True(t, ok)
	require.Len(t, recent, 1)
	first := recent[0].(map[string]interface{})
	assert.Equal(t, "Mercado", first["description"])
	assert.Equal(t, "Alimentação", first["category"])
	assert.Equal(t, "2025-08-03", first["date"])

	prev := view["previousMonth"].(map[string]interface{})
	assert.Equal(t, "julho", prev["month"])

	cats := view["categories"].([]interface{})
	assert.Equal(t, []interface{}{"Alimentação", "Transporte"}, cats)
}

func TestNew_RequiresAPIKey(t *testing.T) {
	_, err := New(t.Context(), Config{}, logger.NewWithLevel("disabled"))
	assert.Error(t, err)
}
