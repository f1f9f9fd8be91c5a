package snapshot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/dvloznov/finance-assistant/internal/domain"
)

// ErrLedgerUnavailable marks a snapshot build that failed because one of
// the constituent ledger queries failed. A snapshot is all-or-nothing;
// partial data is never returned.
var ErrLedgerUnavailable = errors.New("snapshot: ledger unavailable")

// Ledger is the read surface the builder needs from the ledger service.
type Ledger interface {
	Accounts(ctx context.Context) ([]domain.Account, error)
	Categories(ctx context.Context) ([]domain.Category, error)
	Transactions(ctx context.Context, start, end time.Time) ([]domain.Transaction, error)
	CreditCards(ctx context.Context) ([]domain.CreditCard, error)
	Budgets(ctx context.Context, year int, month time.Month) ([]domain.Budget, error)
	Invoices(ctx context.Context, cardID int64, year int) ([]domain.Invoice, error)
}

// Builder assembles snapshots from independent ledger queries.
type Builder struct {
	ledger Ledger
	log    zerolog.Logger
}

// NewBuilder creates a snapshot builder over the given ledger.
func NewBuilder(ledger Ledger, log zerolog.Logger) *Builder {
	return &Builder{ledger: ledger, log: log}
}

// Build assembles the snapshot for the calendar month containing ref.
// The transaction range is the first day of the month through ref,
// inclusive. Any failing ledger query fails the whole build with an error
// matching ErrLedgerUnavailable.
func (b *Builder) Build(ctx context.Context, ref time.Time) (*Snapshot, error) {
	monthStart := time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, time.UTC)
	refDay := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, time.UTC)

	prevEnd := monthStart.AddDate(0, 0, -1)
	prevStart := time.Date(prevEnd.Year(), prevEnd.Month(), 1, 0, 0, 0, 0, time.UTC)

	var (
		accounts   []domain.Account
		categories []domain.Category
		current    []domain.Transaction
		previous   []domain.Transaction
		cards      []domain.CreditCard
		budgets    []domain.Budget
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		accounts, err = b.ledger.Accounts(gctx)
		return err
	})
	g.Go(func() (err error) {
		categories, err = b.ledger.Categories(gctx)
		return err
	})
	g.Go(func() (err error) {
		current, err = b.ledger.Transactions(gctx, monthStart, refDay)
		return err
	})
	g.Go(func() (err error) {
		previous, err = b.ledger.Transactions(gctx, prevStart, prevEnd)
		return err
	})
	g.Go(func() (err error) {
		cards, err = b.ledger.CreditCards(gctx)
		return err
	})
	g.Go(func() (err error) {
		budgets, err = b.ledger.Budgets(gctx, ref.Year(), ref.Month())
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLedgerUnavailable, err)
	}

	snap := &Snapshot{
		Date:          refDay,
		MonthLabel:    MonthLabelPT(ref.Month()),
		Year:          ref.Year(),
		CategoryNames: make(map[int64]string, len(categories)),
	}

	for _, cat := range categories {
		snap.CategoryNames[cat.ID] = cat.Name
	}

	snap.TotalBalance = decimal.Zero
	snap.Accounts = make([]domain.Account, 0, len(accounts))
	for _, acc := range accounts {
		if acc.Archived {
			continue
		}
		snap.Accounts = append(snap.Accounts, acc)
		snap.TotalBalance = snap.TotalBalance.Add(acc.Balance)
	}

	snap.Income, snap.Expenses = partitionTotals(current)
	snap.Net = snap.Income.Sub(snap.Expenses)

	snap.All = make([]DisplayTransaction, 0, len(current))
	for _, tx := range current {
		snap.All = append(snap.All, DisplayTransaction{
			Transaction: tx,
			Category:    snap.CategoryName(tx.CategoryID),
		})
	}
	snap.Recent = recentNewestFirst(snap.All)

	snap.CreditCards = make([]domain.CreditCard, 0, len(cards))
	for _, card := range cards {
		if !card.Archived {
			snap.CreditCards = append(snap.CreditCards, card)
		}
	}

	snap.Budgets = make([]BudgetEntry, 0, len(budgets))
	for _, bd := range budgets {
		name, ok := snap.CategoryNames[bd.CategoryID]
		if !ok {
			name = UnknownBudgetLabel
		}
		snap.Budgets = append(snap.Budgets, BudgetEntry{Budget: bd, Category: name})
	}

	invoices, err := b.fetchInvoices(ctx, snap.CreditCards, ref.Year())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLedgerUnavailable, err)
	}
	snap.Invoices = invoices

	prevIncome, prevExpenses := partitionTotals(previous)
	snap.Previous = Summary{
		Month:    MonthLabelPT(prevEnd.Month()),
		Income:   prevIncome,
		Expenses: prevExpenses,
		Net:      prevIncome.Sub(prevExpenses),
	}

	b.log.Debug().
		Int("accounts", len(snap.Accounts)).
		Int("transactions", len(snap.All)).
		Int("cards", len(snap.CreditCards)).
		Int("budgets", len(snap.Budgets)).
		Int("invoices", len(snap.Invoices)).
		Msg("Snapshot built")

	return snap, nil
}

// fetchInvoices pulls the reference year's statements for every active
// card. Cards with no statements contribute nothing.
func (b *Builder) fetchInvoices(ctx context.Context, cards []domain.CreditCard, year int) ([]domain.Invoice, error) {
	invoices := make([]domain.Invoice, 0)
	for _, card := range cards {
		cardInvoices, err := b.ledger.Invoices(ctx, card.ID, year)
		if err != nil {
			return nil, fmt.Errorf("fetchInvoices: card %d: %w", card.ID, err)
		}
		invoices = append(invoices, cardInvoices...)
	}
	return invoices, nil
}

// partitionTotals splits a transaction list into income and expense sums.
// Expenses come back as a positive magnitude.
func partitionTotals(txs []domain.Transaction) (income, expenses decimal.Decimal) {
	income, expenses = decimal.Zero, decimal.Zero
	for _, tx := range txs {
		if tx.Amount.IsPositive() {
			income = income.Add(tx.Amount)
		} else {
			expenses = expenses.Add(tx.Amount.Abs())
		}
	}
	return income, expenses
}

// recentNewestFirst returns the last RecentLimit entries of all, reversed
// so the newest comes first. The input is assumed to be in ledger order,
// oldest first.
func recentNewestFirst(all []DisplayTransaction) []DisplayTransaction {
	start := len(all) - RecentLimit
	if start < 0 {
		start = 0
	}
	tail := all[start:]
	recent := make([]DisplayTransaction, len(tail))
	for i, tx := range tail {
		recent[len(tail)-1-i] = tx
	}
	return recent
}
