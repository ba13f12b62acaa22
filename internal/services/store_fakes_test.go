package services

import (
	"context"
	"sort"
	"time"

	"finagent/internal/core"
)

// In-memory ports mirroring the SQLite repository's semantics, shared
// by the service tests.

type fakeBudgetStore struct {
	nextID int64
	items  []core.Budget
}

func (s *fakeBudgetStore) InsertBudget(_ context.Context, b core.Budget) (core.Budget, error) {
	s.nextID++
	b.ID = s.nextID
	s.items = append(s.items, b)
	return b, nil
}

func (s *fakeBudgetStore) GetBudget(_ context.Context, ownerID, id int64) (core.Budget, error) {
	for _, b := range s.items {
		if b.ID == id && b.OwnerID == ownerID {
			return b, nil
		}
	}
	return core.Budget{}, core.ErrNotFound
}

func (s *fakeBudgetStore) ListBudgets(_ context.Context, ownerID int64) ([]core.Budget, error) {
	var out []core.Budget
	for _, b := range s.items {
		if b.OwnerID == ownerID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *fakeBudgetStore) DeleteBudget(_ context.Context, ownerID, id int64) error {
	for i, b := range s.items {
		if b.ID == id && b.OwnerID == ownerID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return core.ErrNotFound
}

type fakeGoalStore struct {
	nextID int64
	items  []core.SavingsGoal
	// conflictsLeft makes the next N ApplyAutoSave calls lose the race.
	conflictsLeft int
}

func (s *fakeGoalStore) InsertGoal(_ context.Context, g core.SavingsGoal) (core.SavingsGoal, error) {
	s.nextID++
	g.ID = s.nextID
	g.Version = 1
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now().UTC()
	}
	s.items = append(s.items, g)
	return g, nil
}

func (s *fakeGoalStore) GetGoal(_ context.Context, ownerID, id int64) (core.SavingsGoal, error) {
	for _, g := range s.items {
		if g.ID == id && g.OwnerID == ownerID {
			return g, nil
		}
	}
	return core.SavingsGoal{}, core.ErrNotFound
}

func (s *fakeGoalStore) ListGoals(_ context.Context, ownerID int64) ([]core.SavingsGoal, error) {
	var out []core.SavingsGoal
	for _, g := range s.items {
		if g.OwnerID == ownerID {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority < out[j].Priority
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *fakeGoalStore) ListAutoSaveGoals(_ context.Context) ([]core.SavingsGoal, error) {
	var out []core.SavingsGoal
	for _, g := range s.items {
		if g.AutoSave.Enabled {
			out = append(out, g)
		}
	}
	return out, nil
}

func (s *fakeGoalStore) SetGoalPriority(_ context.Context, ownerID, id int64, priority int) error {
	for i, g := range s.items {
		if g.ID == id && g.OwnerID == ownerID {
			s.items[i].Priority = priority
			return nil
		}
	}
	// Unknown and foreign ids are skipped, matching the UPDATE that
	// touches zero rows.
	return nil
}

func (s *fakeGoalStore) ApplyAutoSave(_ context.Context, ownerID, id, version, addCents int64, now time.Time) error {
	if s.conflictsLeft > 0 {
		s.conflictsLeft--
		for i, g := range s.items {
			if g.ID == id && g.OwnerID == ownerID {
				s.items[i].Version++
			}
		}
		return core.ErrConflict
	}
	for i, g := range s.items {
		if g.ID == id && g.OwnerID == ownerID {
			if g.Version != version {
				return core.ErrConflict
			}
			s.items[i].Current.Cents += addCents
			s.items[i].AutoSave.LastApplied = now
			s.items[i].Version++
			return nil
		}
	}
	return core.ErrNotFound
}

func (s *fakeGoalStore) UpdateGoal(_ context.Context, g core.SavingsGoal) error {
	for i, have := range s.items {
		if have.ID == g.ID && have.OwnerID == g.OwnerID {
			g.Version = have.Version + 1
			g.CreatedAt = have.CreatedAt
			s.items[i] = g
			return nil
		}
	}
	return core.ErrNotFound
}

func (s *fakeGoalStore) DeleteGoal(_ context.Context, ownerID, id int64) error {
	for i, g := range s.items {
		if g.ID == id && g.OwnerID == ownerID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return core.ErrNotFound
}

type fakeRecurringStore struct {
	nextID   int64
	nextTxID int64
	defs     []core.RecurringDefinition
	txs      []core.Transaction
	// conflictsLeft makes the next N ApplyMaterialization calls lose
	// the race.
	conflictsLeft int
}

func (s *fakeRecurringStore) InsertTransaction(_ context.Context, t core.Transaction) (core.Transaction, error) {
	s.nextTxID++
	t.ID = s.nextTxID
	s.txs = append(s.txs, t)
	return t, nil
}

func (s *fakeRecurringStore) InsertRecurring(_ context.Context, d core.RecurringDefinition) (core.RecurringDefinition, error) {
	s.nextID++
	d.ID = s.nextID
	s.defs = append(s.defs, d)
	return d, nil
}

func (s *fakeRecurringStore) GetRecurring(_ context.Context, ownerID, id int64) (core.RecurringDefinition, error) {
	for _, d := range s.defs {
		if d.ID == id && d.OwnerID == ownerID {
			return d, nil
		}
	}
	return core.RecurringDefinition{}, core.ErrNotFound
}

func (s *fakeRecurringStore) ListRecurring(_ context.Context, ownerID int64) ([]core.RecurringDefinition, error) {
	var out []core.RecurringDefinition
	for _, d := range s.defs {
		if d.OwnerID == ownerID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (s *fakeRecurringStore) ListDueRecurring(_ context.Context, now time.Time) ([]core.RecurringDefinition, error) {
	today := core.DateOf(now)
	var out []core.RecurringDefinition
	for _, d := range s.defs {
		if d.Active && !d.NextDue.After(today.Time) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (s *fakeRecurringStore) ApplyMaterialization(ctx context.Context, def core.RecurringDefinition, txs []core.Transaction, newNextDue core.Date, active bool) error {
	if s.conflictsLeft > 0 {
		s.conflictsLeft--
		return core.ErrConflict
	}
	for i, d := range s.defs {
		if d.ID == def.ID && d.OwnerID == def.OwnerID {
			if !d.NextDue.Equal(def.NextDue.Time) || !d.Active {
				return core.ErrConflict
			}
			for _, t := range txs {
				if _, err := s.InsertTransaction(ctx, t); err != nil {
					return err
				}
			}
			s.defs[i].NextDue = newNextDue
			s.defs[i].Active = active
			return nil
		}
	}
	return core.ErrNotFound
}

type fakeAlertStore struct {
	nextID int64
	items  []core.Alert
}

func (s *fakeAlertStore) InsertAlert(_ context.Context, a core.Alert) (core.Alert, error) {
	s.nextID++
	a.ID = s.nextID
	s.items = append(s.items, a)
	return a, nil
}

func (s *fakeAlertStore) ListAlerts(_ context.Context, ownerID int64, limit int) ([]core.Alert, error) {
	var out []core.Alert
	for i := len(s.items) - 1; i >= 0; i-- {
		if s.items[i].OwnerID == ownerID {
			out = append(out, s.items[i])
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (s *fakeAlertStore) MarkAlertRead(_ context.Context, ownerID, id int64) error {
	for i, a := range s.items {
		if a.ID == id && a.OwnerID == ownerID {
			s.items[i].Read = true
			return nil
		}
	}
	return core.ErrNotFound
}
