// Package worker holds the background processes: the periodic tick
// that materializes recurring definitions and applies auto-save rules,
// and the alert consumer fed by transaction events.
package worker

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"finagent/internal/services"
)

// TickWorker drives the two catch-up passes on a fixed interval. The
// passes are independent, so they run concurrently within a tick.
type TickWorker struct {
	scheduler *services.RecurringScheduler
	goals     *services.SavingsGoalManager
	interval  time.Duration
}

func NewTickWorker(scheduler *services.RecurringScheduler, goals *services.SavingsGoalManager, interval time.Duration) *TickWorker {
	return &TickWorker{
		scheduler: scheduler,
		goals:     goals,
		interval:  interval,
	}
}

// RunOnce executes a single tick. Both passes always run; the first
// error is returned after both finish.
func (w *TickWorker) RunOnce(ctx context.Context, now time.Time) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		created, err := w.scheduler.MaterializeDue(ctx, now)
		if err != nil {
			return err
		}
		slog.InfoContext(ctx, "Recurring definitions processed", "transactions_created", created)
		return nil
	})
	g.Go(func() error {
		applied, err := w.goals.TickAll(ctx, now)
		if err != nil {
			return err
		}
		slog.InfoContext(ctx, "Auto-save rules processed", "contributions_applied", applied)
		return nil
	})

	return g.Wait()
}

// Run ticks immediately on startup, then on every interval until ctx
// ends.
func (w *TickWorker) Run(ctx context.Context) error {
	if err := w.RunOnce(ctx, time.Now()); err != nil {
		slog.ErrorContext(ctx, "Initial tick failed", "error", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			if err := w.RunOnce(ctx, now); err != nil {
				slog.ErrorContext(ctx, "Tick failed", "error", err)
			}
		}
	}
}
