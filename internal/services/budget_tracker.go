// Package services holds the derived-view and scheduling logic built on
// top of the ledger: budget consumption, savings goals, recurring
// materialization, reports, and spending insights.
package services

import (
	"context"
	"fmt"
	"time"

	"finagent/internal/core"
	"finagent/internal/ledger"
)

// PeriodStart returns the first day of the period window containing now.
// Weeks start on Monday; months on the 1st; years on Jan 1.
func PeriodStart(period core.BudgetPeriod, now time.Time) core.Date {
	switch period {
	case core.PeriodWeekly:
		// time.Weekday counts Sunday as 0; shift so Monday is 0.
		offset := (int(now.Weekday()) + 6) % 7
		return core.DateOf(now.AddDate(0, 0, -offset))
	case core.PeriodYearly:
		return core.NewDate(now.Year(), 1, 1)
	default:
		return core.NewDate(now.Year(), int(now.Month()), 1)
	}
}

// BudgetStore is the persistence port for budget definitions.
type BudgetStore interface {
	InsertBudget(ctx context.Context, b core.Budget) (core.Budget, error)
	GetBudget(ctx context.Context, ownerID, id int64) (core.Budget, error)
	ListBudgets(ctx context.Context, ownerID int64) ([]core.Budget, error)
	DeleteBudget(ctx context.Context, ownerID, id int64) error
}

// BudgetTracker manages budget definitions and derives period-relative
// consumption. Spent and percentage are never stored; every call
// recomputes from the ledger against the window containing the supplied
// now.
type BudgetTracker struct {
	ledger *ledger.Ledger
	store  BudgetStore
}

func NewBudgetTracker(l *ledger.Ledger, store BudgetStore) *BudgetTracker {
	return &BudgetTracker{ledger: l, store: store}
}

func (bt *BudgetTracker) Create(ctx context.Context, b core.Budget) (core.Budget, error) {
	if err := b.Validate(); err != nil {
		return core.Budget{}, err
	}
	return bt.store.InsertBudget(ctx, b)
}

func (bt *BudgetTracker) Get(ctx context.Context, ownerID, id int64) (core.Budget, error) {
	return bt.store.GetBudget(ctx, ownerID, id)
}

func (bt *BudgetTracker) List(ctx context.Context, ownerID int64) ([]core.Budget, error) {
	return bt.store.ListBudgets(ctx, ownerID)
}

func (bt *BudgetTracker) Delete(ctx context.Context, ownerID, id int64) error {
	return bt.store.DeleteBudget(ctx, ownerID, id)
}

// Status computes the budget's expense total since the period start and
// its share of the limit. A limit of zero or less always reads as 0%
// used; over-budget percentages above 100 are reported as-is.
func (bt *BudgetTracker) Status(ctx context.Context, b core.Budget, now time.Time) (core.BudgetStatus, error) {
	spent, err := bt.ledger.Sum(ctx, b.OwnerID, core.TransactionFilter{
		Kind:     core.KindExpense,
		Category: b.Category,
		From:     PeriodStart(b.Period, now),
		To:       core.DateOf(now),
	})
	if err != nil {
		return core.BudgetStatus{}, fmt.Errorf("budget spend for %q: %w", b.Category, err)
	}

	return core.BudgetStatus{
		Budget:     b,
		Spent:      spent,
		Percentage: spent.Percent(b.Limit),
	}, nil
}

// StatusAll computes the status of every budget in the slice against the
// same now, best effort as of query time.
func (bt *BudgetTracker) StatusAll(ctx context.Context, budgets []core.Budget, now time.Time) ([]core.BudgetStatus, error) {
	out := make([]core.BudgetStatus, 0, len(budgets))
	for _, b := range budgets {
		st, err := bt.Status(ctx, b, now)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, nil
}
