package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestTransactionSign(t *testing.T) {
	tests := []struct {
		name    string
		amount  decimal.Decimal
		expense bool
		income  bool
	}{
		{name: "expense", amount: decimal.New(-5000, -2), expense: true},
		{name: "income", amount: decimal.New(250000, -2), income: true},
		{name: "zero is neither", amount: decimal.Zero},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := Transaction{Amount: tt.amount}
			assert.Equal(t, tt.expense, tx.IsExpense())
			assert.Equal(t, tt.income, tx.IsIncome())
			assert.False(t, tx.AbsAmount().IsNegative())
		})
	}
}

func TestBudgetProgress(t *testing.T) {
	b := Budget{Target: decimal.New(50000, -2), Actual: decimal.New(25000, -2)}
	assert.True(t, b.Progress().Equal(decimal.NewFromFloat(0.5)))

	over := Budget{Target: decimal.New(10000, -2), Actual: decimal.New(15000, -2)}
	assert.True(t, over.Progress().GreaterThan(decimal.NewFromInt(1)))

	empty := Budget{Actual: decimal.New(15000, -2)}
	assert.True(t, empty.Progress().IsZero())
}
