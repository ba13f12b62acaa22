package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"finagent/internal/core"
)

const tickRetries = 3

// GoalStore is the persistence port for savings goals. ApplyAutoSave is
// the atomic read-modify-write unit: it must add to the current amount
// and stamp the tick time only if the version is still the one the
// caller read, failing with core.ErrConflict otherwise.
type GoalStore interface {
	InsertGoal(ctx context.Context, g core.SavingsGoal) (core.SavingsGoal, error)
	GetGoal(ctx context.Context, ownerID, id int64) (core.SavingsGoal, error)
	ListGoals(ctx context.Context, ownerID int64) ([]core.SavingsGoal, error)
	ListAutoSaveGoals(ctx context.Context) ([]core.SavingsGoal, error)
	SetGoalPriority(ctx context.Context, ownerID, id int64, priority int) error
	ApplyAutoSave(ctx context.Context, ownerID, id, version, addCents int64, now time.Time) error
	UpdateGoal(ctx context.Context, g core.SavingsGoal) error
	DeleteGoal(ctx context.Context, ownerID, id int64) error
}

// SavingsGoalManager tracks goal progress and applies scheduled
// auto-save increments.
type SavingsGoalManager struct {
	store GoalStore
}

func NewSavingsGoalManager(store GoalStore) *SavingsGoalManager {
	return &SavingsGoalManager{store: store}
}

// Progress derives the goal's completion percentage. A target of zero or
// less reads as 0% rather than dividing; overfunded goals report above
// 100.
func Progress(g core.SavingsGoal) core.GoalProgress {
	return core.GoalProgress{
		Goal:       g,
		Percentage: g.Current.Percent(g.Target),
	}
}

func (m *SavingsGoalManager) Create(ctx context.Context, g core.SavingsGoal) (core.SavingsGoal, error) {
	if err := g.Validate(); err != nil {
		return core.SavingsGoal{}, err
	}
	return m.store.InsertGoal(ctx, g)
}

func (m *SavingsGoalManager) Get(ctx context.Context, ownerID, id int64) (core.SavingsGoal, error) {
	return m.store.GetGoal(ctx, ownerID, id)
}

func (m *SavingsGoalManager) List(ctx context.Context, ownerID int64) ([]core.SavingsGoal, error) {
	return m.store.ListGoals(ctx, ownerID)
}

// Update replaces the client-editable fields of a goal. The auto-save
// stamp is tick bookkeeping, not client state: the stored LastApplied
// survives the write no matter what the caller passes, so an edit can
// never make Tick recount boundaries already applied.
func (m *SavingsGoalManager) Update(ctx context.Context, g core.SavingsGoal) error {
	if err := g.Validate(); err != nil {
		return err
	}
	existing, err := m.store.GetGoal(ctx, g.OwnerID, g.ID)
	if err != nil {
		return err
	}
	g.AutoSave.LastApplied = existing.AutoSave.LastApplied
	return m.store.UpdateGoal(ctx, g)
}

func (m *SavingsGoalManager) Delete(ctx context.Context, ownerID, id int64) error {
	return m.store.DeleteGoal(ctx, ownerID, id)
}

// Reorder assigns each listed goal the priority of its index. Ids that
// are unknown or belong to another owner are silently skipped, so the
// operation is idempotent and safe against stale client state.
func (m *SavingsGoalManager) Reorder(ctx context.Context, ownerID int64, orderedIDs []int64) error {
	for i, id := range orderedIDs {
		if err := m.store.SetGoalPriority(ctx, ownerID, id, i); err != nil {
			return fmt.Errorf("reorder goal %d: %w", id, err)
		}
	}
	return nil
}

// autoSaveBoundaries counts the frequency boundaries crossed between the
// last application and now, calendar-based: daily and weekly advance by
// days, monthly by calendar month with end-of-month clamping. The clamp
// is sticky: a goal created Jan 31 ticks Feb 28, then Mar 28 and so on,
// because each monthly step starts from the previous boundary.
func autoSaveBoundaries(last time.Time, now time.Time, f core.Frequency) int {
	today := core.DateOf(now)
	n := 0
	for t := Advance(core.DateOf(last), f); !t.After(today.Time); t = Advance(t, f) {
		n++
	}
	return n
}

// Tick applies the goal's auto-save rule, one increment per boundary
// crossed since the last application (or since creation if never
// applied). The write is atomic; a lost race re-reads and retries.
// Returns the number of increments applied.
func (m *SavingsGoalManager) Tick(ctx context.Context, g core.SavingsGoal, now time.Time) (int, error) {
	for attempt := 0; attempt < tickRetries; attempt++ {
		if !g.AutoSave.Enabled {
			return 0, nil
		}
		last := g.AutoSave.LastApplied
		if last.IsZero() {
			last = g.CreatedAt
		}

		n := autoSaveBoundaries(last, now, g.AutoSave.Frequency)
		if n == 0 {
			return 0, nil
		}

		add := g.AutoSave.Amount.Cents * int64(n)
		err := m.store.ApplyAutoSave(ctx, g.OwnerID, g.ID, g.Version, add, now)
		if err == nil {
			slog.InfoContext(ctx, "Auto-save applied",
				"goal_id", g.ID,
				"owner_id", g.OwnerID,
				"boundaries", n,
				"added_cents", add)
			return n, nil
		}
		if !errors.Is(err, core.ErrConflict) {
			return 0, fmt.Errorf("tick goal %d: %w", g.ID, err)
		}

		g, err = m.store.GetGoal(ctx, g.OwnerID, g.ID)
		if err != nil {
			return 0, fmt.Errorf("re-read goal after conflict: %w", err)
		}
	}
	return 0, fmt.Errorf("tick goal %d: %w", g.ID, core.ErrConflict)
}

// TickAll applies auto-save to every enabled goal across all owners.
// Failures on one goal do not stop the rest.
func (m *SavingsGoalManager) TickAll(ctx context.Context, now time.Time) (int, error) {
	goals, err := m.store.ListAutoSaveGoals(ctx)
	if err != nil {
		return 0, fmt.Errorf("list auto-save goals: %w", err)
	}

	applied := 0
	for _, g := range goals {
		n, err := m.Tick(ctx, g, now)
		if err != nil {
			slog.ErrorContext(ctx, "Auto-save tick failed",
				"goal_id", g.ID, "owner_id", g.OwnerID, "error", err)
			continue
		}
		applied += n
	}
	return applied, nil
}
