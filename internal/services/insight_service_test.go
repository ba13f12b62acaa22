package services

import (
	"context"
	"testing"
	"time"

	"finagent/internal/core"
	"finagent/internal/ledger"
	"finagent/internal/ledger/ledgertest"
)

func newInsightFixture(t *testing.T) (*InsightService, *ledger.Ledger, *fakeGoalStore, *fakeBudgetStore, *fakeAlertStore) {
	t.Helper()
	led := ledger.New(ledgertest.New())
	budgets := &fakeBudgetStore{}
	goalStore := &fakeGoalStore{}
	alerts := &fakeAlertStore{}
	tracker := NewBudgetTracker(led, budgets)
	goals := NewSavingsGoalManager(goalStore)
	reports := NewReportAggregator(led)
	return NewInsightService(led, reports, tracker, goals, alerts), led, goalStore, budgets, alerts
}

func TestInsightService_EvaluateAlerts(t *testing.T) {
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	t.Run("overspending and category alerts", func(t *testing.T) {
		svc, led, _, _, _ := newInsightFixture(t)
		mustRecord(t, led, 1, core.KindExpense, 16000_00, "Rent", core.NewDate(2026, 3, 14))

		alerts, err := svc.EvaluateAlerts(context.Background(), 1, now)
		if err != nil {
			t.Fatalf("evaluate: %v", err)
		}
		if len(alerts) != 2 {
			t.Fatalf("stored %d alerts, want 2: %+v", len(alerts), alerts)
		}
		if alerts[0].Type != AlertOverspending {
			t.Errorf("first alert type = %q, want %q", alerts[0].Type, AlertOverspending)
		}
		if alerts[1].Type != AlertCategory {
			t.Errorf("second alert type = %q, want %q", alerts[1].Type, AlertCategory)
		}
	})

	t.Run("modest week earns good progress", func(t *testing.T) {
		svc, led, _, _, _ := newInsightFixture(t)
		mustRecord(t, led, 1, core.KindExpense, 5000_00, "Groceries", core.NewDate(2026, 3, 14))

		alerts, err := svc.EvaluateAlerts(context.Background(), 1, now)
		if err != nil {
			t.Fatalf("evaluate: %v", err)
		}
		if len(alerts) != 1 || alerts[0].Type != AlertGoodProgress {
			t.Fatalf("want a single good_progress alert, got %+v", alerts)
		}
	})

	t.Run("no spending triggers nothing", func(t *testing.T) {
		svc, _, _, _, _ := newInsightFixture(t)
		alerts, err := svc.EvaluateAlerts(context.Background(), 1, now)
		if err != nil {
			t.Fatalf("evaluate: %v", err)
		}
		if len(alerts) != 0 {
			t.Errorf("want no alerts on an empty week, got %+v", alerts)
		}
	})

	t.Run("one alert of each type per day", func(t *testing.T) {
		svc, led, _, _, store := newInsightFixture(t)
		mustRecord(t, led, 1, core.KindExpense, 16000_00, "Rent", core.NewDate(2026, 3, 14))

		if _, err := svc.EvaluateAlerts(context.Background(), 1, now); err != nil {
			t.Fatalf("first evaluate: %v", err)
		}
		again, err := svc.EvaluateAlerts(context.Background(), 1, now.Add(2*time.Hour))
		if err != nil {
			t.Fatalf("second evaluate: %v", err)
		}
		if len(again) != 0 {
			t.Errorf("same-day re-evaluation stored %d alerts, want 0", len(again))
		}
		if len(store.items) != 2 {
			t.Errorf("store holds %d alerts, want 2", len(store.items))
		}

		// The next day the rules fire again.
		tomorrow, err := svc.EvaluateAlerts(context.Background(), 1, now.AddDate(0, 0, 1))
		if err != nil {
			t.Fatalf("next-day evaluate: %v", err)
		}
		if len(tomorrow) != 2 {
			t.Errorf("next day stored %d alerts, want 2", len(tomorrow))
		}
	})

	t.Run("week window excludes older spending", func(t *testing.T) {
		svc, led, _, _, _ := newInsightFixture(t)
		mustRecord(t, led, 1, core.KindExpense, 16000_00, "Rent", core.NewDate(2026, 3, 1))

		alerts, err := svc.EvaluateAlerts(context.Background(), 1, now)
		if err != nil {
			t.Fatalf("evaluate: %v", err)
		}
		if len(alerts) != 0 {
			t.Errorf("spending outside the trailing week should not alert, got %+v", alerts)
		}
	})
}

func TestInsightService_ListAlertsDefaults(t *testing.T) {
	svc, _, _, _, store := newInsightFixture(t)
	now := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)

	alerts, err := svc.ListAlerts(context.Background(), 1, now)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(alerts) != 2 || alerts[0].Type != AlertWelcome || alerts[1].Type != AlertTip {
		t.Fatalf("want the welcome and tip pair, got %+v", alerts)
	}
	if len(store.items) != 0 {
		t.Error("onboarding alerts must not be persisted")
	}
}

func TestInsightService_Insights(t *testing.T) {
	t.Run("empty ledger", func(t *testing.T) {
		svc, _, _, _, _ := newInsightFixture(t)
		got, err := svc.Insights(context.Background(), 1)
		if err != nil {
			t.Fatalf("insights: %v", err)
		}
		want := "Ready to start tracking! Add your first expense to get personalized insights."
		if got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("single transaction", func(t *testing.T) {
		svc, led, _, _, _ := newInsightFixture(t)
		mustRecord(t, led, 1, core.KindExpense, 2500, "coffee", core.NewDate(2026, 3, 10))

		got, err := svc.Insights(context.Background(), 1)
		if err != nil {
			t.Fatalf("insights: %v", err)
		}
		want := "Smart insight: your Coffee spending (25.00) is trending high against a total of 25.00 over 1 transactions. Try the 50-30-20 rule: 50% needs, 30% wants, 20% savings."
		if got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("rotation and top category", func(t *testing.T) {
		svc, led, _, _, _ := newInsightFixture(t)
		mustRecord(t, led, 1, core.KindExpense, 1000, "Food", core.NewDate(2026, 3, 10))
		mustRecord(t, led, 1, core.KindExpense, 1000, "food", core.NewDate(2026, 3, 11))
		mustRecord(t, led, 1, core.KindExpense, 1000, "FOOD", core.NewDate(2026, 3, 12))
		mustRecord(t, led, 1, core.KindExpense, 500, "Bus", core.NewDate(2026, 3, 13))

		got, err := svc.Insights(context.Background(), 1)
		if err != nil {
			t.Fatalf("insights: %v", err)
		}
		want := "You've spent 35.00 across 4 transactions. Food is your biggest expense (30.00). Consider setting a weekly limit for better control."
		if got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})
}

func TestOnTrack(t *testing.T) {
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	now := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		goal core.SavingsGoal
		want bool
	}{
		{
			"zero target is always on track",
			core.SavingsGoal{Target: core.Money{}, CreatedAt: created},
			true,
		},
		{
			"no target date needs any balance",
			core.SavingsGoal{Target: core.Money{Cents: 10000}, Current: core.Money{Cents: 1}, CreatedAt: created},
			true,
		},
		{
			"no target date and empty balance",
			core.SavingsGoal{Target: core.Money{Cents: 10000}, CreatedAt: created},
			false,
		},
		{
			"ahead of pace",
			core.SavingsGoal{
				Target:     core.Money{Cents: 10000},
				Current:    core.Money{Cents: 5000},
				TargetDate: core.NewDate(2026, 12, 31),
				CreatedAt:  created,
			},
			true,
		},
		{
			"behind pace",
			core.SavingsGoal{
				Target:     core.Money{Cents: 10000},
				Current:    core.Money{Cents: 4000},
				TargetDate: core.NewDate(2026, 12, 31),
				CreatedAt:  created,
			},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := onTrack(tt.goal, now); got != tt.want {
				t.Errorf("onTrack = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInsightService_Dashboard(t *testing.T) {
	svc, led, goalStore, budgetStore, _ := newInsightFixture(t)
	ctx := context.Background()
	now := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

	mustRecord(t, led, 1, core.KindIncome, 9000_00, "Salary", core.NewDate(2026, 3, 1))
	mustRecord(t, led, 1, core.KindExpense, 5000_00, "Food", core.NewDate(2026, 3, 10))
	// Last month's spending does not count toward this month.
	mustRecord(t, led, 1, core.KindExpense, 2000_00, "Food", core.NewDate(2026, 2, 20))

	tracker := NewBudgetTracker(led, budgetStore)
	if _, err := tracker.Create(ctx, core.Budget{
		OwnerID: 1, Category: "Food", Limit: core.Money{Cents: 6000_00}, Period: core.PeriodMonthly,
	}); err != nil {
		t.Fatalf("create budget: %v", err)
	}

	goals := NewSavingsGoalManager(goalStore)
	if _, err := goals.Create(ctx, core.SavingsGoal{
		OwnerID: 1, Name: "Funded", Target: core.Money{Cents: 10000}, Current: core.Money{Cents: 500},
	}); err != nil {
		t.Fatalf("create goal: %v", err)
	}
	if _, err := goals.Create(ctx, core.SavingsGoal{
		OwnerID: 1, Name: "Untouched", Target: core.Money{Cents: 10000},
	}); err != nil {
		t.Fatalf("create goal: %v", err)
	}

	stats, err := svc.Dashboard(ctx, 1, now)
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if stats.MonthSpending.Cents != 5000_00 {
		t.Errorf("month spending = %d, want 500000", stats.MonthSpending.Cents)
	}
	if stats.BudgetRemaining.Cents != 1000_00 {
		t.Errorf("budget remaining = %d, want 100000", stats.BudgetRemaining.Cents)
	}
	if stats.GoalsOnTrack != 1 || stats.TotalGoals != 2 {
		t.Errorf("goals on track = %d/%d, want 1/2", stats.GoalsOnTrack, stats.TotalGoals)
	}
	if stats.MonthSavings.Cents != 4000_00 {
		t.Errorf("month savings = %d, want 400000", stats.MonthSavings.Cents)
	}
}
