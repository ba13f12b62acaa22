package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"finagent/internal/core"
)

func TestProgress(t *testing.T) {
	tests := []struct {
		name    string
		target  int64
		current int64
		want    float64
	}{
		{"halfway", 10000, 5000, 50.0},
		{"complete", 10000, 10000, 100.0},
		{"overfunded", 10000, 12500, 125.0},
		{"zero target", 0, 5000, 0},
		{"nothing saved", 10000, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Progress(core.SavingsGoal{
				Target:  core.Money{Cents: tt.target},
				Current: core.Money{Cents: tt.current},
			})
			if p.Percentage != tt.want {
				t.Errorf("Percentage = %v, want %v", p.Percentage, tt.want)
			}
		})
	}
}

func newGoal(t *testing.T, m *SavingsGoalManager, g core.SavingsGoal) core.SavingsGoal {
	t.Helper()
	if g.Name == "" {
		g.Name = "Vacation"
	}
	if g.OwnerID == 0 {
		g.OwnerID = 1
	}
	stored, err := m.Create(context.Background(), g)
	if err != nil {
		t.Fatalf("create goal: %v", err)
	}
	return stored
}

func TestSavingsGoalManager_CreateValidates(t *testing.T) {
	store := &fakeGoalStore{}
	m := NewSavingsGoalManager(store)

	_, err := m.Create(context.Background(), core.SavingsGoal{OwnerID: 1, Name: "   "})
	if !core.IsValidation(err) {
		t.Fatalf("blank name should fail validation, got %v", err)
	}
	if len(store.items) != 0 {
		t.Error("invalid goal must not be stored")
	}
}

func TestSavingsGoalManager_Reorder(t *testing.T) {
	store := &fakeGoalStore{}
	m := NewSavingsGoalManager(store)
	ctx := context.Background()

	a := newGoal(t, m, core.SavingsGoal{Name: "Emergency fund"})
	b := newGoal(t, m, core.SavingsGoal{Name: "Vacation"})
	c := newGoal(t, m, core.SavingsGoal{Name: "New laptop"})
	foreign := newGoal(t, m, core.SavingsGoal{OwnerID: 2, Name: "Someone else's"})

	// Unknown and foreign ids are skipped without error.
	if err := m.Reorder(ctx, 1, []int64{c.ID, 999, foreign.ID, a.ID, b.ID}); err != nil {
		t.Fatalf("reorder: %v", err)
	}

	goals, err := m.List(ctx, 1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	wantOrder := []int64{c.ID, a.ID, b.ID}
	if len(goals) != len(wantOrder) {
		t.Fatalf("listed %d goals, want %d", len(goals), len(wantOrder))
	}
	for i, g := range goals {
		if g.ID != wantOrder[i] {
			t.Errorf("position %d: goal %d, want %d", i, g.ID, wantOrder[i])
		}
	}

	other, err := m.List(ctx, 2)
	if err != nil {
		t.Fatalf("list owner 2: %v", err)
	}
	if other[0].Priority != 0 {
		t.Errorf("foreign goal priority changed to %d", other[0].Priority)
	}
}

func autoSaveGoal(created time.Time) core.SavingsGoal {
	return core.SavingsGoal{
		OwnerID:   1,
		Name:      "Emergency fund",
		Target:    core.Money{Cents: 100000},
		CreatedAt: created,
		AutoSave: core.AutoSaveRule{
			Enabled:   true,
			Amount:    core.Money{Cents: 2500},
			Frequency: core.Weekly,
		},
	}
}

func TestSavingsGoalManager_Tick(t *testing.T) {
	created := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)

	t.Run("one increment per boundary crossed", func(t *testing.T) {
		store := &fakeGoalStore{}
		m := NewSavingsGoalManager(store)
		g := newGoal(t, m, autoSaveGoal(created))

		// Three weekly boundaries since creation: Jan 12, 19, 26.
		now := time.Date(2026, 1, 28, 0, 0, 0, 0, time.UTC)
		n, err := m.Tick(context.Background(), g, now)
		if err != nil {
			t.Fatalf("tick: %v", err)
		}
		if n != 3 {
			t.Fatalf("applied %d increments, want 3", n)
		}

		got, _ := m.Get(context.Background(), 1, g.ID)
		if got.Current.Cents != 7500 {
			t.Errorf("current = %d cents, want 7500", got.Current.Cents)
		}
		if !got.AutoSave.LastApplied.Equal(now) {
			t.Errorf("last applied = %v, want %v", got.AutoSave.LastApplied, now)
		}
	})

	t.Run("no boundary crossed is a no-op", func(t *testing.T) {
		store := &fakeGoalStore{}
		m := NewSavingsGoalManager(store)
		g := newGoal(t, m, autoSaveGoal(created))

		n, err := m.Tick(context.Background(), g, created.Add(24*time.Hour))
		if err != nil {
			t.Fatalf("tick: %v", err)
		}
		if n != 0 {
			t.Errorf("applied %d, want 0", n)
		}
	})

	t.Run("disabled rule is a no-op", func(t *testing.T) {
		store := &fakeGoalStore{}
		m := NewSavingsGoalManager(store)
		g := autoSaveGoal(created)
		g.AutoSave.Enabled = false
		stored := newGoal(t, m, g)

		n, err := m.Tick(context.Background(), stored, created.AddDate(0, 1, 0))
		if err != nil {
			t.Fatalf("tick: %v", err)
		}
		if n != 0 {
			t.Errorf("applied %d, want 0", n)
		}
	})

	t.Run("resumes from last application", func(t *testing.T) {
		store := &fakeGoalStore{}
		m := NewSavingsGoalManager(store)
		g := autoSaveGoal(created)
		g.AutoSave.LastApplied = time.Date(2026, 1, 19, 0, 0, 0, 0, time.UTC)
		stored := newGoal(t, m, g)

		// Only Jan 26 remains between the last application and now.
		now := time.Date(2026, 1, 28, 0, 0, 0, 0, time.UTC)
		n, err := m.Tick(context.Background(), stored, now)
		if err != nil {
			t.Fatalf("tick: %v", err)
		}
		if n != 1 {
			t.Errorf("applied %d, want 1", n)
		}
	})

	t.Run("lost race re-reads and retries", func(t *testing.T) {
		store := &fakeGoalStore{conflictsLeft: 1}
		m := NewSavingsGoalManager(store)
		g := newGoal(t, m, autoSaveGoal(created))

		now := time.Date(2026, 1, 13, 0, 0, 0, 0, time.UTC)
		n, err := m.Tick(context.Background(), g, now)
		if err != nil {
			t.Fatalf("tick should survive one conflict: %v", err)
		}
		if n != 1 {
			t.Errorf("applied %d, want 1", n)
		}
	})

	t.Run("persistent conflict surfaces", func(t *testing.T) {
		store := &fakeGoalStore{conflictsLeft: tickRetries}
		m := NewSavingsGoalManager(store)
		g := newGoal(t, m, autoSaveGoal(created))

		_, err := m.Tick(context.Background(), g, time.Date(2026, 1, 13, 0, 0, 0, 0, time.UTC))
		if !errors.Is(err, core.ErrConflict) {
			t.Fatalf("want ErrConflict after exhausted retries, got %v", err)
		}
	})
}

// Monthly boundaries step from the previous boundary, so a clamped
// month-end stays clamped: created Jan 31 gives Feb 28, then Mar 28.
func TestAutoSaveBoundariesMonthlyClamp(t *testing.T) {
	created := time.Date(2026, 1, 31, 0, 0, 0, 0, time.UTC)
	now := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	if n := autoSaveBoundaries(created, now, core.Monthly); n != 2 {
		t.Errorf("boundaries = %d, want 2 (Feb 28 and Mar 28)", n)
	}
}

// A rename-style edit carries a zero LastApplied; the update must not
// let that reset the stamp, or the next tick would recount boundaries
// already applied and double the balance.
func TestSavingsGoalManager_UpdateKeepsAutoSaveStamp(t *testing.T) {
	store := &fakeGoalStore{}
	m := NewSavingsGoalManager(store)
	ctx := context.Background()
	created := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	g := newGoal(t, m, autoSaveGoal(created))

	now := time.Date(2026, 1, 28, 0, 0, 0, 0, time.UTC)
	if n, err := m.Tick(ctx, g, now); err != nil || n != 3 {
		t.Fatalf("first tick applied %d (%v), want 3", n, err)
	}

	ticked, err := m.Get(ctx, 1, g.ID)
	if err != nil {
		t.Fatalf("get after tick: %v", err)
	}

	edit := ticked
	edit.Name = "Rainy day fund"
	edit.AutoSave.LastApplied = time.Time{}
	if err := m.Update(ctx, edit); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := m.Get(ctx, 1, g.ID)
	if err != nil {
		t.Fatalf("get after update: %v", err)
	}
	if got.Name != "Rainy day fund" {
		t.Errorf("name = %q, want the edit applied", got.Name)
	}
	if !got.AutoSave.LastApplied.Equal(now) {
		t.Fatalf("last applied = %v, want %v preserved", got.AutoSave.LastApplied, now)
	}

	// Same instant again: every boundary is already counted.
	n, err := m.Tick(ctx, got, now)
	if err != nil {
		t.Fatalf("second tick: %v", err)
	}
	if n != 0 {
		t.Errorf("second tick applied %d increments, want 0", n)
	}
	final, _ := m.Get(ctx, 1, g.ID)
	if final.Current.Cents != 7500 {
		t.Errorf("current = %d cents, want 7500", final.Current.Cents)
	}
}

func TestSavingsGoalManager_TickAll(t *testing.T) {
	store := &fakeGoalStore{}
	m := NewSavingsGoalManager(store)
	created := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)

	newGoal(t, m, autoSaveGoal(created))
	g2 := autoSaveGoal(created)
	g2.Name = "Vacation"
	g2.AutoSave.Frequency = core.Daily
	newGoal(t, m, g2)
	g3 := autoSaveGoal(created)
	g3.Name = "Paused"
	g3.AutoSave.Enabled = false
	newGoal(t, m, g3)

	// Weekly crosses one boundary (Jan 12), daily crosses seven.
	now := time.Date(2026, 1, 12, 12, 0, 0, 0, time.UTC)
	applied, err := m.TickAll(context.Background(), now)
	if err != nil {
		t.Fatalf("tick all: %v", err)
	}
	if applied != 8 {
		t.Errorf("applied = %d increments, want 8", applied)
	}
}
