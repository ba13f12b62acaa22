package http

import (
	"context"
	"sort"
	"time"

	"finagent/internal/core"
)

// In-memory ports for the handler tests. Behavior mirrors the SQLite
// repository: owner-scoped lookups, priority ordering, version-guarded
// auto-save writes.

type memBudgetStore struct {
	nextID int64
	items  []core.Budget
}

func (s *memBudgetStore) InsertBudget(_ context.Context, b core.Budget) (core.Budget, error) {
	s.nextID++
	b.ID = s.nextID
	s.items = append(s.items, b)
	return b, nil
}

func (s *memBudgetStore) GetBudget(_ context.Context, ownerID, id int64) (core.Budget, error) {
	for _, b := range s.items {
		if b.ID == id && b.OwnerID == ownerID {
			return b, nil
		}
	}
	return core.Budget{}, core.ErrNotFound
}

func (s *memBudgetStore) ListBudgets(_ context.Context, ownerID int64) ([]core.Budget, error) {
	var out []core.Budget
	for _, b := range s.items {
		if b.OwnerID == ownerID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *memBudgetStore) DeleteBudget(_ context.Context, ownerID, id int64) error {
	for i, b := range s.items {
		if b.ID == id && b.OwnerID == ownerID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return core.ErrNotFound
}

type memGoalStore struct {
	nextID int64
	items  []core.SavingsGoal
}

func (s *memGoalStore) InsertGoal(_ context.Context, g core.SavingsGoal) (core.SavingsGoal, error) {
	s.nextID++
	g.ID = s.nextID
	g.Version = 1
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now().UTC()
	}
	s.items = append(s.items, g)
	return g, nil
}

func (s *memGoalStore) GetGoal(_ context.Context, ownerID, id int64) (core.SavingsGoal, error) {
	for _, g := range s.items {
		if g.ID == id && g.OwnerID == ownerID {
			return g, nil
		}
	}
	return core.SavingsGoal{}, core.ErrNotFound
}

func (s *memGoalStore) ListGoals(_ context.Context, ownerID int64) ([]core.SavingsGoal, error) {
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

func (s *memGoalStore) ListAutoSaveGoals(_ context.Context) ([]core.SavingsGoal, error) {
	var out []core.SavingsGoal
	for _, g := range s.items {
		if g.AutoSave.Enabled {
			out = append(out, g)
		}
	}
	return out, nil
}

func (s *memGoalStore) SetGoalPriority(_ context.Context, ownerID, id int64, priority int) error {
	for i, g := range s.items {
		if g.ID == id && g.OwnerID == ownerID {
			s.items[i].Priority = priority
		}
	}
	return nil
}

func (s *memGoalStore) ApplyAutoSave(_ context.Context, ownerID, id, version, addCents int64, now time.Time) error {
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

func (s *memGoalStore) UpdateGoal(_ context.Context, g core.SavingsGoal) error {
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

func (s *memGoalStore) DeleteGoal(_ context.Context, ownerID, id int64) error {
	for i, g := range s.items {
		if g.ID == id && g.OwnerID == ownerID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return nil
		}
	}
	return core.ErrNotFound
}
