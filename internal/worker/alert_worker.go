package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"finagent/internal/amqp"
	"finagent/internal/core"
	"finagent/internal/services"
)

// AlertWorker re-evaluates an owner's spending alerts whenever one of
// their transactions is recorded.
type AlertWorker struct {
	insights *services.InsightService
}

func NewAlertWorker(insights *services.InsightService) *AlertWorker {
	return &AlertWorker{insights: insights}
}

// HandleTransactionEvent processes one event. Non-expense events are
// acknowledged without work; alert rules only look at spending.
func (w *AlertWorker) HandleTransactionEvent(ctx context.Context, msg *amqp.TransactionEventMessage) error {
	if core.TransactionKind(msg.Kind) != core.KindExpense {
		return nil
	}

	alerts, err := w.insights.EvaluateAlerts(ctx, msg.OwnerID, time.Now())
	if err != nil {
		return fmt.Errorf("evaluate alerts for owner %d: %w", msg.OwnerID, err)
	}
	if len(alerts) > 0 {
		slog.InfoContext(ctx, "Alerts stored",
			"owner_id", msg.OwnerID,
			"count", len(alerts),
			"trigger_transaction", msg.TransactionID)
	}
	return nil
}
