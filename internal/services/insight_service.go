package services

import (
	"context"
	"fmt"
	"time"

	"finagent/internal/core"
	"finagent/internal/ledger"
)

// Weekly spending thresholds for alert rules, in cents.
const (
	overspendThresholdCents = 15000_00
	categoryThresholdCents  = 8000_00
	goodWeekThresholdCents  = 8000_00
)

const (
	AlertOverspending = "overspending"
	AlertCategory     = "category_alert"
	AlertGoodProgress = "good_progress"
	AlertWelcome      = "welcome"
	AlertTip          = "tip"
)

// AlertStore is the persistence port for spending alerts.
type AlertStore interface {
	InsertAlert(ctx context.Context, a core.Alert) (core.Alert, error)
	ListAlerts(ctx context.Context, ownerID int64, limit int) ([]core.Alert, error)
	MarkAlertRead(ctx context.Context, ownerID, id int64) error
}

// InsightService evaluates spending alerts over the trailing week and
// produces deterministic analysis text and dashboard rollups.
type InsightService struct {
	ledger  *ledger.Ledger
	reports *ReportAggregator
	tracker *BudgetTracker
	goals   *SavingsGoalManager
	alerts  AlertStore
}

func NewInsightService(l *ledger.Ledger, reports *ReportAggregator, tracker *BudgetTracker, goals *SavingsGoalManager, alerts AlertStore) *InsightService {
	return &InsightService{
		ledger:  l,
		reports: reports,
		tracker: tracker,
		goals:   goals,
		alerts:  alerts,
	}
}

// EvaluateAlerts inspects the owner's trailing seven days of expenses
// and stores one alert per triggered rule. Returns the stored alerts.
func (s *InsightService) EvaluateAlerts(ctx context.Context, ownerID int64, now time.Time) ([]core.Alert, error) {
	weekFilter := core.TransactionFilter{
		Kind: core.KindExpense,
		From: core.DateOf(now.AddDate(0, 0, -7)),
		To:   core.DateOf(now),
	}

	weekTotal, err := s.ledger.Sum(ctx, ownerID, weekFilter)
	if err != nil {
		return nil, fmt.Errorf("weekly total: %w", err)
	}
	byCategory, err := s.ledger.SumByCategory(ctx, ownerID, weekFilter)
	if err != nil {
		return nil, fmt.Errorf("weekly categories: %w", err)
	}

	var pending []core.Alert
	if weekTotal.Cents > overspendThresholdCents {
		pending = append(pending, core.Alert{
			OwnerID: ownerID,
			Type:    AlertOverspending,
			Message: fmt.Sprintf("High spending alert: %s this week. Consider reviewing your budget.", weekTotal),
		})
	}
	if len(byCategory) > 0 {
		top := byCategory[0]
		if top.Amount.Cents > categoryThresholdCents {
			pending = append(pending, core.Alert{
				OwnerID: ownerID,
				Type:    AlertCategory,
				Message: fmt.Sprintf("%s spending is high this week (%s). Try setting a weekly limit.",
					NormalizeCategory(top.Name), top.Amount),
			})
		}
	}
	if weekTotal.Cents > 0 && weekTotal.Cents < goodWeekThresholdCents {
		pending = append(pending, core.Alert{
			OwnerID: ownerID,
			Type:    AlertGoodProgress,
			Message: fmt.Sprintf("Great job! You've kept spending under control this week (%s). Keep it up!", weekTotal),
		})
	}

	// One alert of each type per calendar day; re-evaluation on every
	// transaction must not flood the feed.
	existing, err := s.alerts.ListAlerts(ctx, ownerID, 20)
	if err != nil {
		return nil, fmt.Errorf("list existing alerts: %w", err)
	}
	today := core.DateOf(now)
	seenToday := make(map[string]bool)
	for _, a := range existing {
		if core.DateOf(a.CreatedAt).Equal(today.Time) {
			seenToday[a.Type] = true
		}
	}

	stored := make([]core.Alert, 0, len(pending))
	for _, a := range pending {
		if seenToday[a.Type] {
			continue
		}
		a.CreatedAt = now
		saved, err := s.alerts.InsertAlert(ctx, a)
		if err != nil {
			return stored, fmt.Errorf("store alert: %w", err)
		}
		stored = append(stored, saved)
	}
	return stored, nil
}

// ListAlerts returns the owner's stored alerts, newest first. Owners
// with no alerts yet get the onboarding pair instead; those are not
// persisted.
func (s *InsightService) ListAlerts(ctx context.Context, ownerID int64, now time.Time) ([]core.Alert, error) {
	alerts, err := s.alerts.ListAlerts(ctx, ownerID, 20)
	if err != nil {
		return nil, err
	}
	if len(alerts) > 0 {
		return alerts, nil
	}
	return []core.Alert{
		{
			OwnerID:   ownerID,
			Type:      AlertWelcome,
			Message:   "Welcome to FinAgent! Start by adding your daily expenses to get personalized insights.",
			CreatedAt: now,
		},
		{
			OwnerID:   ownerID,
			Type:      AlertTip,
			Message:   "Pro tip: Set up weekly budgets for different categories like Food, Transport, and Entertainment.",
			CreatedAt: now,
		},
	}, nil
}

func (s *InsightService) MarkAlertRead(ctx context.Context, ownerID, id int64) error {
	return s.alerts.MarkAlertRead(ctx, ownerID, id)
}

var insightTemplates = []string{
	"You've spent %s across %d transactions. %s is your biggest expense (%s). Consider setting a weekly limit for better control.",
	"Smart insight: your %[3]s spending (%[4]s) is trending high against a total of %[1]s over %[2]d transactions. Try the 50-30-20 rule: 50%% needs, 30%% wants, 20%% savings.",
	"Great progress! Total spending: %s over %d transactions. Reviewing %s expenses (%s) weekly is where small cuts add up fastest.",
	"Spending pattern detected: out of %s across %d transactions, %s dominates at %s. A subscription audit or meal plan could trim this category.",
}

// Insights produces one analysis paragraph over the owner's 30 most
// recent transactions. Template selection rotates on transaction count,
// so the same ledger state always yields the same text.
func (s *InsightService) Insights(ctx context.Context, ownerID int64) (string, error) {
	recent, err := s.ledger.Query(ctx, ownerID, core.TransactionFilter{
		Kind:  core.KindExpense,
		Limit: 30,
	})
	if err != nil {
		return "", fmt.Errorf("recent transactions: %w", err)
	}
	if len(recent) == 0 {
		return "Ready to start tracking! Add your first expense to get personalized insights.", nil
	}

	var total int64
	sums := make(map[string]int64)
	for _, t := range recent {
		total += t.Amount.Cents
		sums[NormalizeCategory(t.Category)] += t.Amount.Cents
	}
	topName, topCents := "", int64(-1)
	for name, cents := range sums {
		if cents > topCents || (cents == topCents && name < topName) {
			topName, topCents = name, cents
		}
	}

	tpl := insightTemplates[len(recent)%len(insightTemplates)]
	return fmt.Sprintf(tpl,
		core.Money{Cents: total}, len(recent), topName, core.Money{Cents: topCents}), nil
}

// DashboardStats is the compact rollup behind the dashboard cards.
type DashboardStats struct {
	MonthSpending   core.Money
	BudgetRemaining core.Money
	GoalsOnTrack    int
	TotalGoals      int
	MonthSavings    core.Money
}

// onTrack reports whether a goal's funding keeps pace with the time
// elapsed toward its target date. Goals without a target date only need
// a positive balance.
func onTrack(g core.SavingsGoal, now time.Time) bool {
	if g.Target.Cents <= 0 {
		return true
	}
	if g.TargetDate.IsEmpty() {
		return g.Current.Cents > 0
	}
	total := g.TargetDate.Sub(g.CreatedAt)
	if total <= 0 {
		return g.Current.Cents >= g.Target.Cents
	}
	elapsed := now.Sub(g.CreatedAt)
	if elapsed < 0 {
		elapsed = 0
	}
	expected := g.Target.Cents * int64(elapsed) / int64(total)
	return g.Current.Cents >= expected
}

// Dashboard composes the month's spending, remaining monthly budget,
// goal pacing, and month savings in one pass.
func (s *InsightService) Dashboard(ctx context.Context, ownerID int64, now time.Time) (DashboardStats, error) {
	monthStart := PeriodStart(core.PeriodMonthly, now)

	spending, err := s.ledger.Sum(ctx, ownerID, core.TransactionFilter{
		Kind: core.KindExpense,
		From: monthStart,
		To:   core.DateOf(now),
	})
	if err != nil {
		return DashboardStats{}, fmt.Errorf("month spending: %w", err)
	}

	budgets, err := s.tracker.List(ctx, ownerID)
	if err != nil {
		return DashboardStats{}, fmt.Errorf("list budgets: %w", err)
	}
	var remaining int64
	for _, b := range budgets {
		if b.Period != core.PeriodMonthly {
			continue
		}
		st, err := s.tracker.Status(ctx, b, now)
		if err != nil {
			return DashboardStats{}, err
		}
		remaining += b.Limit.Cents - st.Spent.Cents
	}

	goals, err := s.goals.List(ctx, ownerID)
	if err != nil {
		return DashboardStats{}, fmt.Errorf("list goals: %w", err)
	}
	tracked := 0
	for _, g := range goals {
		if onTrack(g, now) {
			tracked++
		}
	}

	from, to := MonthWindow(now, 0)
	summary, err := s.reports.Summary(ctx, ownerID, from, to)
	if err != nil {
		return DashboardStats{}, err
	}

	return DashboardStats{
		MonthSpending:   spending,
		BudgetRemaining: core.Money{Cents: remaining},
		GoalsOnTrack:    tracked,
		TotalGoals:      len(goals),
		MonthSavings:    summary.Savings,
	}, nil
}
