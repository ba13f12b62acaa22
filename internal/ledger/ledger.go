// Package ledger is the append-only transaction store every other
// component builds on. It validates writes and answers filtered
// list/sum queries; sums are exact integer cents, never floats.
package ledger

import (
	"context"
	"fmt"
	"log/slog"

	"finagent/internal/core"
)

// Reads are capped so a missing limit cannot drag the whole history
// through a handler.
const maxQueryLimit = 200

// Store is the persistence port the ledger talks to.
type Store interface {
	InsertTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
	GetTransaction(ctx context.Context, ownerID, id int64) (core.Transaction, error)
	UpdateTransaction(ctx context.Context, t core.Transaction) error
	DeleteTransaction(ctx context.Context, ownerID, id int64) error
	ListTransactions(ctx context.Context, ownerID int64, f core.TransactionFilter) ([]core.Transaction, error)
	SumTransactions(ctx context.Context, ownerID int64, f core.TransactionFilter) (core.Money, error)
	SumTransactionsByCategory(ctx context.Context, ownerID int64, f core.TransactionFilter) ([]core.CategoryAmount, error)
}

type Ledger struct {
	store Store
}

func New(store Store) *Ledger {
	return &Ledger{store: store}
}

// Record validates and persists a new transaction, returning the stored
// entity with its assigned id. Nothing is written when validation fails.
func (l *Ledger) Record(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	t.Date = core.DateOf(t.Date.Time)
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}

	stored, err := l.store.InsertTransaction(ctx, t)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("record transaction: %w", err)
	}

	slog.InfoContext(ctx, "Transaction recorded",
		"id", stored.ID,
		"owner_id", stored.OwnerID,
		"kind", stored.Kind,
		"category", stored.Category,
		"amount_cents", stored.Amount.Cents,
		"date", stored.Date.Format("2006-01-02"))
	return stored, nil
}

func (l *Ledger) Get(ctx context.Context, ownerID, id int64) (core.Transaction, error) {
	return l.store.GetTransaction(ctx, ownerID, id)
}

// Edit is the only mutation path for a stored transaction. The owner and
// id of the existing row are authoritative; everything else is replaced
// after re-validation.
func (l *Ledger) Edit(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	t.Date = core.DateOf(t.Date.Time)
	if err := t.Validate(); err != nil {
		return core.Transaction{}, err
	}
	if err := l.store.UpdateTransaction(ctx, t); err != nil {
		return core.Transaction{}, err
	}
	return l.store.GetTransaction(ctx, t.OwnerID, t.ID)
}

func (l *Ledger) Delete(ctx context.Context, ownerID, id int64) error {
	return l.store.DeleteTransaction(ctx, ownerID, id)
}

// Query returns matching transactions most recent first: date descending,
// then creation order descending.
func (l *Ledger) Query(ctx context.Context, ownerID int64, f core.TransactionFilter) ([]core.Transaction, error) {
	if f.Limit <= 0 || f.Limit > maxQueryLimit {
		f.Limit = maxQueryLimit
	}
	return l.store.ListTransactions(ctx, ownerID, f)
}

// Sum returns the exact cent total of matching transactions, zero when
// nothing matches.
func (l *Ledger) Sum(ctx context.Context, ownerID int64, f core.TransactionFilter) (core.Money, error) {
	f.Limit = 0
	return l.store.SumTransactions(ctx, ownerID, f)
}

// SumByCategory groups matching transactions by category and sums each
// group. Categories with no matching rows do not appear.
func (l *Ledger) SumByCategory(ctx context.Context, ownerID int64, f core.TransactionFilter) ([]core.CategoryAmount, error) {
	f.Limit = 0
	return l.store.SumTransactionsByCategory(ctx, ownerID, f)
}
