package organizze

import (
	"context"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/dvloznov/finance-assistant/internal/domain"
)

// NewTransaction describes a transaction to be recorded. Amount is signed:
// negative for expenses, positive for income. Exactly one of AccountID or
// CreditCardID must be set.
type NewTransaction struct {
	Description  string
	Date         string // YYYY-MM-DD
	Amount       decimal.Decimal
	CategoryID   int64
	AccountID    *int64
	CreditCardID *int64
	Notes        string
	Tags         []string
}

// CreateTransaction records a single transaction in the ledger.
func (c *Client) CreateTransaction(ctx context.Context, tx NewTransaction) (domain.Transaction, error) {
	if (tx.AccountID == nil) == (tx.CreditCardID == nil) {
		return domain.Transaction{}, fmt.Errorf("CreateTransaction: exactly one of account or credit card must be set")
	}

	body := map[string]interface{}{
		"description":  tx.Description,
		"date":         tx.Date,
		"amount_cents": decimalToCents(tx.Amount),
		"category_id":  tx.CategoryID,
	}
	if tx.AccountID != nil {
		body["account_id"] = *tx.AccountID
	}
	if tx.CreditCardID != nil {
		body["credit_card_id"] = *tx.CreditCardID
	}
	if tx.Notes != "" {
		body["notes"] = tx.Notes
	}
	if len(tx.Tags) > 0 {
		body["tags"] = tx.Tags
	}

	var row transactionRow
	if err := c.do(ctx, http.MethodPost, "/transactions", nil, body, &row); err != nil {
		return domain.Transaction{}, fmt.Errorf("CreateTransaction: %w", err)
	}
	created, err := row.toDomain()
	if err != nil {
		return domain.Transaction{}, fmt.Errorf("CreateTransaction: %w", err)
	}
	return created, nil
}

// NewTransfer describes a movement between two bank accounts. Amount must
// be positive; transfers never involve credit cards.
type NewTransfer struct {
	Amount        decimal.Decimal
	Date          string // YYYY-MM-DD
	FromAccountID int64
	ToAccountID   int64
	Description   string
}

// CreateTransfer records a transfer between bank accounts.
func (c *Client) CreateTransfer(ctx context.Context, tr NewTransfer) error {
	if !tr.Amount.IsPositive() {
		return fmt.Errorf("CreateTransfer: amount must be positive")
	}

	body := map[string]interface{}{
		"amount_cents":    decimalToCents(tr.Amount),
		"date":            tr.Date,
		"from_account_id": tr.FromAccountID,
		"to_account_id":   tr.ToAccountID,
	}
	if tr.Description != "" {
		body["description"] = tr.Description
	}

	if err := c.do(ctx, http.MethodPost, "/transfers", nil, body, nil); err != nil {
		return fmt.Errorf("CreateTransfer: %w", err)
	}
	return nil
}

// CreateCategory creates a new category. Color is an optional hex code.
// The cached category list is invalidated so the new entry shows up on the
// next snapshot.
func (c *Client) CreateCategory(ctx context.Context, name, color string) (domain.Category, error) {
	body := map[string]interface{}{"name": name}
	if color != "" {
		body["color"] = color
	}

	var row categoryRow
	if err := c.do(ctx, http.MethodPost, "/categories", nil, body, &row); err != nil {
		return domain.Category{}, fmt.Errorf("CreateCategory: %w", err)
	}

	c.cache.Delete(categoryCacheKey)
	return row.toDomain(), nil
}
