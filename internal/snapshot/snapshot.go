// Package snapshot builds the point-in-time financial picture fed to the
// language model and to the chart builders. A snapshot is assembled fresh
// for every inbound message and never mutated afterwards.
package snapshot

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/dvloznov/finance-assistant/internal/domain"
)

// RecentLimit bounds the transaction list shown to the model verbatim.
const RecentLimit = 15

// UncategorizedLabel is the sentinel category name for transactions whose
// category id is missing or unknown.
const UncategorizedLabel = "Sem categoria"

// UnknownBudgetLabel is the sentinel category name for budget rows whose
// category id is unknown.
const UnknownBudgetLabel = "Desconhecida"

// DisplayTransaction is a transaction with its category name resolved for
// presentation.
type DisplayTransaction struct {
	domain.Transaction
	Category string
}

// BudgetEntry is a budget row with its category name resolved.
type BudgetEntry struct {
	domain.Budget
	Category string
}

// Summary holds one month's income/expense/net totals. Net is always
// income minus expenses, computed from the same transaction list.
type Summary struct {
	Month    string
	Income   decimal.Decimal
	Expenses decimal.Decimal
	Net      decimal.Decimal
}

// Snapshot is the immutable aggregate handed to the model and the chart
// builders. All monetary values share the same currency unit.
type Snapshot struct {
	Date       time.Time
	MonthLabel string
	Year       int

	Accounts     []domain.Account // non-archived only
	TotalBalance decimal.Decimal

	Income   decimal.Decimal
	Expenses decimal.Decimal
	Net      decimal.Decimal

	Recent []DisplayTransaction // newest first, at most RecentLimit
	All    []DisplayTransaction // full current-month list, ledger order

	CreditCards []domain.CreditCard // non-archived only
	Budgets     []BudgetEntry
	Invoices    []domain.Invoice // reference year, all active cards

	CategoryNames map[int64]string

	Previous Summary
}

// Summary returns the current month's totals.
func (s *Snapshot) Summary() Summary {
	return Summary{
		Month:    s.MonthLabel,
		Income:   s.Income,
		Expenses: s.Expenses,
		Net:      s.Net,
	}
}

// CategoryName resolves a nullable category id to a display name.
func (s *Snapshot) CategoryName(id *int64) string {
	if id == nil {
		return UncategorizedLabel
	}
	if name, ok := s.CategoryNames[*id]; ok {
		return name
	}
	return UncategorizedLabel
}

var monthLabelsPT = [...]string{
	"janeiro", "fevereiro", "março", "abril", "maio", "junho",
	"julho", "agosto", "setembro", "outubro", "novembro", "dezembro",
}

// MonthLabelPT returns the Portuguese name of a month.
func MonthLabelPT(m time.Month) string {
	return monthLabelsPT[int(m)-1]
}
