package organizze

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dvloznov/finance-assistant/internal/domain"
)

const dateLayout = "2006-01-02"

// centsToDecimal converts integer cents into a decimal amount in reais.
func centsToDecimal(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// decimalToCents converts a decimal amount in reais into integer cents,
// rounding half away from zero.
func decimalToCents(d decimal.Decimal) int64 {
	return d.Shift(2).Round(0).IntPart()
}

func parseAPIDate(s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("organizze: parsing date %q: %w", s, err)
	}
	return t, nil
}

// accountRow is the wire shape of GET /accounts entries.
type accountRow struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	Type           string `json:"type"`
	DefaultBalance int64  `json:"default_balance"`
	Archived       bool   `json:"archived"`
}

func (r accountRow) toDomain() domain.Account {
	kind := domain.AccountKind(r.Type)
	switch kind {
	case domain.AccountChecking, domain.AccountSavings:
	default:
		kind = domain.AccountOther
	}
	return domain.Account{
		ID:       r.ID,
		Name:     r.Name,
		Kind:     kind,
		Balance:  centsToDecimal(r.DefaultBalance),
		Archived: r.Archived,
	}
}

// categoryRow is the wire shape of GET /categories entries.
type categoryRow struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Color    string `json:"color"`
	ParentID *int64 `json:"parent_id"`
}

func (r categoryRow) toDomain() domain.Category {
	return domain.Category{
		ID:       r.ID,
		Name:     r.Name,
		Color:    r.Color,
		ParentID: r.ParentID,
	}
}

// transactionRow is the wire shape of GET /transactions entries.
type transactionRow struct {
	ID           int64    `json:"id"`
	Description  string   `json:"description"`
	Date         string   `json:"date"`
	AmountCents  int64    `json:"amount_cents"`
	CategoryID   *int64   `json:"category_id"`
	AccountID    *int64   `json:"account_id"`
	CreditCardID *int64   `json:"credit_card_id"`
	Tags         []string `json:"tags"`
	Notes        string   `json:"notes"`
	Paid         bool     `json:"paid"`
}

func (r transactionRow) toDomain() (domain.Transaction, error) {
	date, err := parseAPIDate(r.Date)
	if err != nil {
		return domain.Transaction{}, err
	}
	return domain.Transaction{
		ID:           r.ID,
		Description:  r.Description,
		Date:         date,
		Amount:       centsToDecimal(r.AmountCents),
		CategoryID:   r.CategoryID,
		AccountID:    r.AccountID,
		CreditCardID: r.CreditCardID,
		Tags:         r.Tags,
		Notes:        r.Notes,
		Paid:         r.Paid,
	}, nil
}

// creditCardRow is the wire shape of GET /credit_cards entries.
type creditCardRow struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Network    string `json:"card_network"`
	LimitCents int64  `json:"limit_cents"`
	ClosingDay int    `json:"closing_day"`
	DueDay     int    `json:"due_day"`
	Archived   bool   `json:"archived"`
}

func (r creditCardRow) toDomain() domain.CreditCard {
	return domain.CreditCard{
		ID:         r.ID,
		Name:       r.Name,
		Network:    r.Network,
		Limit:      centsToDecimal(r.LimitCents),
		ClosingDay: r.ClosingDay,
		DueDay:     r.DueDay,
		Archived:   r.Archived,
	}
}

// budgetRow is the wire shape of GET /budgets entries. The actual/predicted
// fields arrive as plain reais, unlike the cents fields.
type budgetRow struct {
	ID          int64   `json:"id"`
	CategoryID  int64   `json:"category_id"`
	AmountCents int64   `json:"amount_in_cents"`
	Actual      float64 `json:"total"`
}

func (r budgetRow) toDomain() domain.Budget {
	return domain.Budget{
		ID:         r.ID,
		CategoryID: r.CategoryID,
		Target:     centsToDecimal(r.AmountCents),
		Actual:     decimal.NewFromFloat(r.Actual),
	}
}

// invoiceRow is the wire shape of GET /credit_cards/{id}/invoices entries.
type invoiceRow struct {
	ID                 int64  `json:"id"`
	Date               string `json:"date"`
	AmountCents        int64  `json:"amount_cents"`
	PaymentAmountCents int64  `json:"payment_amount_cents"`
	BalanceCents       int64  `json:"balance_cents"`
}

func (r invoiceRow) toDomain(cardID int64) (domain.Invoice, error) {
	date, err := parseAPIDate(r.Date)
	if err != nil {
		return domain.Invoice{}, err
	}
	return domain.Invoice{
		ID:            r.ID,
		CreditCardID:  cardID,
		Date:          date,
		Amount:        centsToDecimal(r.AmountCents),
		PaymentAmount: centsToDecimal(r.PaymentAmountCents),
		Balance:       centsToDecimal(r.BalanceCents),
	}, nil
}
