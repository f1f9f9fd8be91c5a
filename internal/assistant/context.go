package assistant

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/dvloznov/finance-assistant/internal/snapshot"
)

// The view structs below define exactly what the model sees. Amounts
// marshal as quoted decimal strings; internal ids are kept so the model
// can reference them when proposing actions.

type accountView struct {
	ID      int64           `json:"id"`
	Name    string          `json:"name"`
	Type    string          `json:"type"`
	Balance decimal.Decimal `json:"balance"`
}

type transactionView struct {
	ID          int64           `json:"id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Date        string          `json:"date"`
	Category    string          `json:"category"`
	Paid        bool            `json:"paid"`
}

type cardView struct {
	ID         int64           `json:"id"`
	Name       string          `json:"name"`
	Network    string          `json:"network"`
	Limit      decimal.Decimal `json:"limit"`
	ClosingDay int             `json:"closing_day"`
	DueDay     int             `json:"due_day"`
}

type budgetView struct {
	Category string          `json:"category"`
	Target   decimal.Decimal `json:"target"`
	Actual   decimal.Decimal `json:"actual"`
}

type invoiceView struct {
	Month  string          `json:"month"`
	Amount decimal.Decimal `json:"amount"`
}

type summaryView struct {
	Month    string          `json:"month"`
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
	Balance  decimal.Decimal `json:"balance"`
}

type contextView struct {
	Today              string            `json:"today"`
	Month              string            `json:"month"`
	Year               int               `json:"year"`
	Accounts           []accountView     `json:"accounts"`
	TotalBalance       decimal.Decimal   `json:"totalBalance"`
	Income             decimal.Decimal   `json:"income"`
	Expenses           decimal.Decimal   `json:"expenses"`
	Balance            decimal.Decimal   `json:"balance"`
	RecentTransactions []transactionView `json:"recentTransactions"`
	CreditCards        []cardView        `json:"creditCards"`
	Budgets            []budgetView      `json:"budgets"`
	Invoices           []invoiceView     `json:"invoices"`
	PreviousMonth      summaryView       `json:"previousMonth"`
	Categories         []string          `json:"categories"`
}

// formatFinancialContext renders the snapshot as the JSON context block of
// the prompt.
func formatFinancialContext(snap *snapshot.Snapshot) (string, error) {
	view := contextView{
		Today:        snap.Date.Format("02/01/2006"),
		Month:        snap.MonthLabel,
		Year:         snap.Year,
		TotalBalance: snap.TotalBalance,
		Income:       snap.Income,
		Expenses:     snap.Expenses,
		Balance:      snap.Net,
		PreviousMonth: summaryView{
			Month:    snap.Previous.Month,
			Income:   snap.Previous.Income,
			Expenses: snap.Previous.Expenses,
			Balance:  snap.Previous.Net,
		},
	}

	for _, acc := range snap.Accounts {
		view.Accounts = append(view.Accounts, accountView{
			ID:      acc.ID,
			Name:    acc.Name,
			Type:    string(acc.Kind),
			Balance: acc.Balance,
		})
	}

	for _, tx := range snap.Recent {
		view.RecentTransactions = append(view.RecentTransactions, transactionView{
			ID:          tx.ID,
			Description: tx.Description,
			Amount:      tx.Amount,
			Date:        tx.Date.Format("2006-01-02"),
			Category:    tx.Category,
			Paid:        tx.Paid,
		})
	}

	for _, card := range snap.CreditCards {
		view.CreditCards = append(view.CreditCards, cardView{
			ID:         card.ID,
			Name:       card.Name,
			Network:    card.Network,
			Limit:      card.Limit,
			ClosingDay: card.ClosingDay,
			DueDay:     card.DueDay,
		})
	}

	for _, b := range snap.Budgets {
		view.Budgets = append(view.Budgets, budgetView{
			Category: b.Category,
			Target:   b.Target,
			Actual:   b.Actual,
		})
	}

	for _, inv := range snap.Invoices {
		view.Invoices = append(view.Invoices, invoiceView{
			Month:  inv.Date.Format("01/2006"),
			Amount: inv.Amount,
		})
	}

	for _, name := range snap.CategoryNames {
		view.Categories = append(view.Categories, name)
	}
	sort.Strings(view.Categories)

	raw, err := json.MarshalIndent(view, "", "  ")
	if err != nil {
		return "", fmt.Errorf("formatFinancialContext: marshal: %w", err)
	}
	return "Dados financeiros atuais:\n" + string(raw), nil
}
