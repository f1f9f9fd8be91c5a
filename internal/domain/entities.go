// Package domain holds the typed projections of ledger state consumed by
// the assistant pipeline. All monetary values are decimal reais; the cents
// integers spoken by the ledger wire format are converted at the client
// boundary and never leak past it.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountKind is the ledger's account classification.
type AccountKind string

const (
	AccountChecking AccountKind = "checking"
	AccountSavings  AccountKind = "savings"
	AccountOther    AccountKind = "other"
)

// Account is a bank account as reported by the ledger.
type Account struct {
	ID       int64
	Name     string
	Kind     AccountKind
	Balance  decimal.Decimal
	Archived bool
}

// Category is a transaction category. ParentID is set for subcategories;
// snapshot consumers treat the hierarchy as flat.
type Category struct {
	ID       int64
	Name     string
	Color    string
	ParentID *int64
}

// Transaction is a single ledger entry. Amount is signed: negative for
// expenses, positive for income. Exactly one of AccountID or CreditCardID
// is set.
type Transaction struct {
	ID           int64
	Description  string
	Date         time.Time // calendar day, normalized to midnight UTC
	Amount       decimal.Decimal
	CategoryID   *int64
	AccountID    *int64
	CreditCardID *int64
	Tags         []string
	Notes        string
	Paid         bool
}

// IsExpense reports whether the transaction is an expense.
func (t Transaction) IsExpense() bool {
	return t.Amount.IsNegative()
}

// IsIncome reports whether the transaction is income.
func (t Transaction) IsIncome() bool {
	return t.Amount.IsPositive()
}

// AbsAmount returns the absolute value of the amount.
func (t Transaction) AbsAmount() decimal.Decimal {
	return t.Amount.Abs()
}

// CreditCard is a credit card as reported by the ledger.
type CreditCard struct {
	ID         int64
	Name       string
	Network    string
	Limit      decimal.Decimal
	ClosingDay int
	DueDay     int
	Archived   bool
}

// Budget is a monthly spending target for one category. Actual carries the
// spent-to-date amount reported by the ledger.
type Budget struct {
	ID         int64
	CategoryID int64
	Target     decimal.Decimal
	Actual     decimal.Decimal
}

// Progress returns actual/target as a ratio, or zero when the target is zero.
func (b Budget) Progress() decimal.Decimal {
	if b.Target.IsZero() {
		return decimal.Zero
	}
	return b.Actual.Div(b.Target)
}

// Invoice is one credit card statement.
type Invoice struct {
	ID            int64
	CreditCardID  int64
	Date          time.Time // statement date
	Amount        decimal.Decimal
	PaymentAmount decimal.Decimal
	Balance       decimal.Decimal
}

// Transfer is a movement between two bank accounts.
type Transfer struct {
	ID            int64
	Amount        decimal.Decimal
	Date          time.Time
	Description   string
	FromAccountID int64
	ToAccountID   int64
	Tags          []string
}
