// Package assistant answers free-text finance questions. Every message
// is classified into one advisory category, enriched with a snapshot of
// the owner's ledger, and answered by the external generator when one
// is configured, or by a canned response otherwise. Provider failures
// never reach the caller.
package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"finagent/internal/core"
	"finagent/internal/ledger"
	"finagent/internal/nlg"
	"finagent/internal/services"
)

const contextWindowTxs = 20

// ChatStore is the persistence port for the append-only chat log.
type ChatStore interface {
	InsertChatEntry(ctx context.Context, e core.ChatEntry) (core.ChatEntry, error)
	ListChatEntries(ctx context.Context, ownerID int64, limit int) ([]core.ChatEntry, error)
	ClearChatEntries(ctx context.Context, ownerID int64) error
}

// Context is the financial snapshot injected into prompts and
// fallbacks.
type Context struct {
	Balance          core.Money
	RecentCount      int
	TopCategory      string
	BudgetCategories []string
	ActiveGoals      int
}

type Assistant struct {
	ledger    *ledger.Ledger
	tracker   *services.BudgetTracker
	goals     *services.SavingsGoalManager
	chats     ChatStore
	generator nlg.Generator // nil disables the external provider
	timeout   time.Duration
}

func New(l *ledger.Ledger, tracker *services.BudgetTracker, goals *services.SavingsGoalManager, chats ChatStore, generator nlg.Generator, timeout time.Duration) *Assistant {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Assistant{
		ledger:    l,
		tracker:   tracker,
		goals:     goals,
		chats:     chats,
		generator: generator,
		timeout:   timeout,
	}
}

// snapshot assembles the owner's financial context. Partial reads
// degrade to an emptier snapshot instead of failing the chat.
func (a *Assistant) snapshot(ctx context.Context, ownerID int64) Context {
	var fc Context

	income, err := a.ledger.Sum(ctx, ownerID, core.TransactionFilter{Kind: core.KindIncome})
	if err != nil {
		slog.WarnContext(ctx, "Chat context income unavailable", "error", err)
		return fc
	}
	expenses, err := a.ledger.Sum(ctx, ownerID, core.TransactionFilter{Kind: core.KindExpense})
	if err != nil {
		slog.WarnContext(ctx, "Chat context expenses unavailable", "error", err)
		return fc
	}
	fc.Balance = income.Sub(expenses)

	recent, err := a.ledger.Query(ctx, ownerID, core.TransactionFilter{Limit: contextWindowTxs})
	if err == nil {
		fc.RecentCount = len(recent)
		sums := make(map[string]int64)
		for _, t := range recent {
			if t.Kind == core.KindExpense {
				sums[services.NormalizeCategory(t.Category)] += t.Amount.Cents
			}
		}
		var topCents int64 = -1
		for name, cents := range sums {
			if cents > topCents || (cents == topCents && name < fc.TopCategory) {
				fc.TopCategory, topCents = name, cents
			}
		}
	}

	if budgets, err := a.tracker.List(ctx, ownerID); err == nil {
		for _, b := range budgets {
			fc.BudgetCategories = append(fc.BudgetCategories, b.Category)
		}
	}
	if goals, err := a.goals.List(ctx, ownerID); err == nil {
		fc.ActiveGoals = len(goals)
	}
	return fc
}

func buildPrompt(message, category string, fc Context) string {
	var b strings.Builder
	b.WriteString("You are a concise family finance assistant. Answer in 2-4 sentences.\n")
	fmt.Fprintf(&b, "Topic: %s\n", category)
	fmt.Fprintf(&b, "User balance: %s. Recent transactions: %d.\n", fc.Balance, fc.RecentCount)
	if fc.TopCategory != "" {
		fmt.Fprintf(&b, "Top spending category: %s.\n", fc.TopCategory)
	}
	if len(fc.BudgetCategories) > 0 {
		fmt.Fprintf(&b, "Budgeted categories: %s.\n", strings.Join(fc.BudgetCategories, ", "))
	}
	fmt.Fprintf(&b, "Active savings goals: %d.\n", fc.ActiveGoals)
	fmt.Fprintf(&b, "Question: %s", message)
	return b.String()
}

// Chat answers one message and appends the exchange to the owner's
// chat log.
func (a *Assistant) Chat(ctx context.Context, ownerID int64, message string) (core.ChatEntry, error) {
	if strings.TrimSpace(message) == "" {
		return core.ChatEntry{}, core.ErrEmptyMessage
	}

	category := Classify(message)
	sentiment := Sentiment(message)
	fc := a.snapshot(ctx, ownerID)

	response := ""
	if a.generator != nil {
		genCtx, cancel := context.WithTimeout(ctx, a.timeout)
		text, err := a.generator.Generate(genCtx, buildPrompt(message, category, fc))
		cancel()
		if err != nil {
			slog.WarnContext(ctx, "Generation failed, using fallback",
				"owner_id", ownerID, "category", category, "error", err)
		} else {
			response = text
		}
	}
	if response == "" {
		response = fallbackResponse(category, fc)
	}

	entry, err := a.chats.InsertChatEntry(ctx, core.ChatEntry{
		OwnerID:   ownerID,
		Message:   message,
		Response:  response,
		Category:  category,
		Sentiment: sentiment,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return core.ChatEntry{}, fmt.Errorf("append chat entry: %w", err)
	}

	slog.InfoContext(ctx, "Chat answered",
		"owner_id", ownerID, "category", category, "sentiment", sentiment)
	return entry, nil
}

// History returns the owner's chat log, newest first.
func (a *Assistant) History(ctx context.Context, ownerID int64, limit int) ([]core.ChatEntry, error) {
	return a.chats.ListChatEntries(ctx, ownerID, limit)
}

// ClearHistory deletes all of the owner's chat entries. This is the
// only deletion path for the log.
func (a *Assistant) ClearHistory(ctx context.Context, ownerID int64) error {
	if err := a.chats.ClearChatEntries(ctx, ownerID); err != nil {
		return fmt.Errorf("clear chat history: %w", err)
	}
	slog.InfoContext(ctx, "Chat history cleared", "owner_id", ownerID)
	return nil
}
