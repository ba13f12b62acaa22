package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"finagent/internal/core"
)

// materializeRetries bounds the optimistic retry loop when a concurrent
// tick wins the due-date update.
const materializeRetries = 3

func lastDayOfMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Advance returns the next due date after d for the given frequency.
// Monthly keeps the day-of-month, clamped to the shorter month's last day
// (Jan 31 advances to Feb 28/29). Yearly clamps Feb 29 to Feb 28 on
// non-leap years. The result is always after d, so due dates never move
// backward.
func Advance(d core.Date, f core.Frequency) core.Date {
	switch f {
	case core.Daily:
		return core.DateOf(d.AddDate(0, 0, 1))
	case core.Weekly:
		return core.DateOf(d.AddDate(0, 0, 7))
	case core.Yearly:
		year, month, day := d.Date()
		if last := lastDayOfMonth(year+1, month); day > last {
			day = last
		}
		return core.NewDate(year+1, int(month), day)
	default: // monthly
		year, month, day := d.Date()
		next := time.Date(year, month+1, 1, 0, 0, 0, 0, time.UTC)
		if last := lastDayOfMonth(next.Year(), next.Month()); day > last {
			day = last
		}
		return core.NewDate(next.Year(), int(next.Month()), day)
	}
}

// RecurringStore is the persistence port for recurring definitions.
// ApplyMaterialization must commit the batch of cloned transactions, the
// advanced due date, and the active flag as one atomic unit, failing with
// core.ErrConflict when the definition moved underneath the caller.
type RecurringStore interface {
	InsertTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error)
	InsertRecurring(ctx context.Context, d core.RecurringDefinition) (core.RecurringDefinition, error)
	GetRecurring(ctx context.Context, ownerID, id int64) (core.RecurringDefinition, error)
	ListRecurring(ctx context.Context, ownerID int64) ([]core.RecurringDefinition, error)
	ListDueRecurring(ctx context.Context, now time.Time) ([]core.RecurringDefinition, error)
	ApplyMaterialization(ctx context.Context, def core.RecurringDefinition, txs []core.Transaction, newNextDue core.Date, active bool) error
}

// RecurringScheduler advances due dates and turns recurring templates
// into concrete ledger transactions, one per missed period.
type RecurringScheduler struct {
	store RecurringStore
}

func NewRecurringScheduler(store RecurringStore) *RecurringScheduler {
	return &RecurringScheduler{store: store}
}

// Define validates and persists a new recurring definition. The first due
// date defaults to the start date.
func (s *RecurringScheduler) Define(ctx context.Context, d core.RecurringDefinition) (core.RecurringDefinition, error) {
	if d.NextDue.IsEmpty() {
		d.NextDue = d.StartDate
	}
	d.Active = true
	if err := d.Validate(); err != nil {
		return core.RecurringDefinition{}, err
	}
	return s.store.InsertRecurring(ctx, d)
}

func (s *RecurringScheduler) Get(ctx context.Context, ownerID, id int64) (core.RecurringDefinition, error) {
	return s.store.GetRecurring(ctx, ownerID, id)
}

func (s *RecurringScheduler) List(ctx context.Context, ownerID int64) ([]core.RecurringDefinition, error) {
	return s.store.ListRecurring(ctx, ownerID)
}

// planMaterialization computes, without side effects, the transactions a
// definition owes as of now, the advanced due date, and whether the
// definition stays active. A definition N periods behind yields exactly N
// clones, each dated its own period boundary.
func planMaterialization(def core.RecurringDefinition, now time.Time) ([]core.Transaction, core.Date, bool) {
	today := core.DateOf(now)
	nextDue := def.NextDue

	var txs []core.Transaction
	for def.Active && !nextDue.After(today.Time) &&
		(def.EndDate.IsEmpty() || !nextDue.After(def.EndDate.Time)) {
		txs = append(txs, core.Transaction{
			OwnerID:       def.OwnerID,
			Kind:          def.Kind,
			Amount:        def.Amount,
			Category:      def.Category,
			Description:   def.Description,
			PaymentMethod: def.PaymentMethod,
			Date:          nextDue,
			RecurringID:   def.ID,
		})
		nextDue = Advance(nextDue, def.Frequency)
	}

	active := def.Active
	if !def.EndDate.IsEmpty() && nextDue.After(def.EndDate.Time) {
		active = false
	}
	return txs, nextDue, active
}

// Materialize catches a definition up to now. The whole batch commits
// atomically; on a lost race the definition is re-read and re-planned.
// Returns the number of transactions created.
func (s *RecurringScheduler) Materialize(ctx context.Context, def core.RecurringDefinition, now time.Time) (int, error) {
	for attempt := 0; attempt < materializeRetries; attempt++ {
		txs, nextDue, active := planMaterialization(def, now)
		if len(txs) == 0 && nextDue.Equal(def.NextDue.Time) && active == def.Active {
			return 0, nil
		}

		err := s.store.ApplyMaterialization(ctx, def, txs, nextDue, active)
		if err == nil {
			return len(txs), nil
		}
		if !errors.Is(err, core.ErrConflict) {
			return 0, fmt.Errorf("materialize recurring %d: %w", def.ID, err)
		}

		slog.WarnContext(ctx, "Materialization lost a race, re-reading",
			"recurring_id", def.ID, "attempt", attempt+1)
		def, err = s.store.GetRecurring(ctx, def.OwnerID, def.ID)
		if err != nil {
			return 0, fmt.Errorf("re-read recurring %d: %w", def.ID, err)
		}
	}
	return 0, fmt.Errorf("materialize recurring %d: %w", def.ID, core.ErrConflict)
}

// MaterializeDue catches up every active definition across all owners.
// Failures on one definition do not stop the rest.
func (s *RecurringScheduler) MaterializeDue(ctx context.Context, now time.Time) (int, error) {
	due, err := s.store.ListDueRecurring(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("list due definitions: %w", err)
	}

	total := 0
	for _, def := range due {
		n, err := s.Materialize(ctx, def, now)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to materialize recurring definition",
				"recurring_id", def.ID, "owner_id", def.OwnerID, "error", err)
			continue
		}
		total += n
	}

	slog.InfoContext(ctx, "Recurring materialization complete",
		"definitions_due", len(due), "transactions_created", total)
	return total, nil
}
