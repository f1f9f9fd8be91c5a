package organizze

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/dvloznov/finance-assistant/internal/domain"
)

// Accounts lists all bank accounts, archived ones included.
func (c *Client) Accounts(ctx context.Context) ([]domain.Account, error) {
	var rows []accountRow
	if err := c.do(ctx, http.MethodGet, "/accounts", nil, nil, &rows); err != nil {
		return nil, fmt.Errorf("Accounts: %w", err)
	}
	accounts := make([]domain.Account, 0, len(rows))
	for _, r := range rows {
		accounts = append(accounts, r.toDomain())
	}
	return accounts, nil
}

// Categories lists all categories. Results are cached briefly; the category
// taxonomy changes far less often than it is read.
func (c *Client) Categories(ctx context.Context) ([]domain.Category, error) {
	if cached, ok := c.cache.Get(categoryCacheKey); ok {
		return cached.([]domain.Category), nil
	}

	var rows []categoryRow
	if err := c.do(ctx, http.MethodGet, "/categories", nil, nil, &rows); err != nil {
		return nil, fmt.Errorf("Categories: %w", err)
	}
	categories := make([]domain.Category, 0, len(rows))
	for _, r := range rows {
		categories = append(categories, r.toDomain())
	}

	c.cache.Set(categoryCacheKey, categories, categoryCacheTTL)
	return categories, nil
}

// Transactions lists transactions in the inclusive [start, end] date range.
func (c *Client) Transactions(ctx context.Context, start, end time.Time) ([]domain.Transaction, error) {
	query := url.Values{}
	query.Set("start_date", start.Format(dateLayout))
	query.Set("end_date", end.Format(dateLayout))

	var rows []transactionRow
	if err := c.do(ctx, http.MethodGet, "/transactions", query, nil, &rows); err != nil {
		return nil, fmt.Errorf("Transactions: %w", err)
	}
	transactions := make([]domain.Transaction, 0, len(rows))
	for _, r := range rows {
		tx, err := r.toDomain()
		if err != nil {
			return nil, fmt.Errorf("Transactions: %w", err)
		}
		transactions = append(transactions, tx)
	}
	return transactions, nil
}

// CreditCards lists all credit cards, archived ones included.
func (c *Client) CreditCards(ctx context.Context) ([]domain.CreditCard, error) {
	var rows []creditCardRow
	if err := c.do(ctx, http.MethodGet, "/credit_cards", nil, nil, &rows); err != nil {
		return nil, fmt.Errorf("CreditCards: %w", err)
	}
	cards := make([]domain.CreditCard, 0, len(rows))
	for _, r := range rows {
		cards = append(cards, r.toDomain())
	}
	return cards, nil
}

// Budgets lists the budget targets for one calendar month.
func (c *Client) Budgets(ctx context.Context, year int, month time.Month) ([]domain.Budget, error) {
	endpoint := fmt.Sprintf("/budgets/%d/%d", year, int(month))

	var rows []budgetRow
	if err := c.do(ctx, http.MethodGet, endpoint, nil, nil, &rows); err != nil {
		return nil, fmt.Errorf("Budgets: %w", err)
	}
	budgets := make([]domain.Budget, 0, len(rows))
	for _, r := range rows {
		budgets = append(budgets, r.toDomain())
	}
	return budgets, nil
}

// Invoices lists one credit card's statements for the given year.
func (c *Client) Invoices(ctx context.Context, cardID int64, year int) ([]domain.Invoice, error) {
	endpoint := fmt.Sprintf("/credit_cards/%d/invoices", cardID)
	query := url.Values{}
	query.Set("year", fmt.Sprintf("%d", year))

	var rows []invoiceRow
	if err := c.do(ctx, http.MethodGet, endpoint, query, nil, &rows); err != nil {
		return nil, fmt.Errorf("Invoices: %w", err)
	}
	invoices := make([]domain.Invoice, 0, len(rows))
	for _, r := range rows {
		inv, err := r.toDomain(cardID)
		if err != nil {
			return nil, fmt.Errorf("Invoices: %w", err)
		}
		invoices = append(invoices, inv)
	}
	return invoices, nil
}
