// Package ledgertest provides an in-memory ledger.Store for tests.
package ledgertest

import (
	"context"
	"sort"
	"strings"
	"sync"

	"finagent/internal/core"
)

type Store struct {
	mu     sync.Mutex
	nextID int64
	items  []core.Transaction
}

func New() *Store {
	return &Store{}
}

func (s *Store) InsertTransaction(_ context.Context, t core.Transaction) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	t.ID = s.nextID
	s.items = append(s.items, t)
	return t, nil
}

func (s *Store) GetTransaction(_ context.Context, ownerID, id int64) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.items {
		if t.ID == id && t.OwnerID == ownerID {
			return t, nil
		}
	}
	return core.Transaction{}, core.ErrNotFound
}

func (s *Store) UpdateTransaction(_ context.Context, t core.Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, have := range s.items {
		if have.ID == t.ID && have.OwnerID == t.OwnerID {
			t.CreatedAt = have.CreatedAt
			s.items[i] = t
			return nil
		}
	}
	return core.ErrNotFound
}

func (s *Store) DeleteTransaction(_ context.Context, ownerID, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.items {
		if t.ID == id && t.OwnerID == ownerID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return core.ErrNotFound
}

func matches(t core.Transaction, ownerID int64, f core.TransactionFilter) bool {
	if t.OwnerID != ownerID {
		return false
	}
	if f.Kind != "" && t.Kind != f.Kind {
		return false
	}
	if f.Category != "" && !strings.EqualFold(t.Category, f.Category) {
		return false
	}
	if !f.From.IsEmpty() && t.Date.Before(f.From.Time) {
		return false
	}
	if !f.To.IsEmpty() && t.Date.After(f.To.Time) {
		return false
	}
	return true
}

func (s *Store) ListTransactions(_ context.Context, ownerID int64, f core.TransactionFilter) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []core.Transaction
	for _, t := range s.items {
		if matches(t, ownerID, f) {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date.Time) {
			return out[i].Date.After(out[j].Date.Time)
		}
		return out[i].ID > out[j].ID
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (s *Store) SumTransactions(_ context.Context, ownerID int64, f core.TransactionFilter) (core.Money, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var cents int64
	for _, t := range s.items {
		if matches(t, ownerID, f) {
			cents += t.Amount.Cents
		}
	}
	return core.Money{Cents: cents}, nil
}

func (s *Store) SumTransactionsByCategory(_ context.Context, ownerID int64, f core.TransactionFilter) ([]core.CategoryAmount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sums := make(map[string]int64)
	for _, t := range s.items {
		if matches(t, ownerID, f) {
			sums[t.Category] += t.Amount.Cents
		}
	}

	out := make([]core.CategoryAmount, 0, len(sums))
	for name, cents := range sums {
		out = append(out, core.CategoryAmount{Name: name, Amount: core.Money{Cents: cents}})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount.Cents != out[j].Amount.Cents {
			return out[i].Amount.Cents > out[j].Amount.Cents
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}
