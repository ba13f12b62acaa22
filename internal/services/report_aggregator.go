package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode"

	"finagent/internal/core"
	"finagent/internal/ledger"
)

// ReportAggregator builds summary, trend, and category-breakdown views.
// Everything is recomputed from the ledger at query time; reports are
// best effort as of that moment, not isolated snapshots.
type ReportAggregator struct {
	ledger *ledger.Ledger
}

func NewReportAggregator(l *ledger.Ledger) *ReportAggregator {
	return &ReportAggregator{ledger: l}
}

// Summary totals income and expenses over the inclusive date range.
// Savings is always the exact difference, negative when expenses exceed
// income.
func (ra *ReportAggregator) Summary(ctx context.Context, ownerID int64, from, to core.Date) (core.Summary, error) {
	income, err := ra.ledger.Sum(ctx, ownerID, core.TransactionFilter{
		Kind: core.KindIncome, From: from, To: to,
	})
	if err != nil {
		return core.Summary{}, fmt.Errorf("sum income: %w", err)
	}
	expenses, err := ra.ledger.Sum(ctx, ownerID, core.TransactionFilter{
		Kind: core.KindExpense, From: from, To: to,
	})
	if err != nil {
		return core.Summary{}, fmt.Errorf("sum expenses: %w", err)
	}

	return core.Summary{
		Income:   income,
		Expenses: expenses,
		Savings:  income.Sub(expenses),
	}, nil
}

// MonthWindow returns the first and last day of the calendar month that
// is monthsAgo months before the month containing now. The last day is
// derived from the following month's first day, so Feb 29 and short
// months come out right.
func MonthWindow(now time.Time, monthsAgo int) (core.Date, core.Date) {
	start := time.Date(now.Year(), now.Month()-time.Month(monthsAgo), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0).AddDate(0, 0, -1)
	return core.DateOf(start), core.DateOf(end)
}

// MonthlyTrend returns one point per month for the monthsBack months up
// to and including the month containing now, oldest first.
func (ra *ReportAggregator) MonthlyTrend(ctx context.Context, ownerID int64, now time.Time, monthsBack int) ([]core.TrendPoint, error) {
	if monthsBack <= 0 {
		monthsBack = 6
	}

	points := make([]core.TrendPoint, 0, monthsBack)
	for i := monthsBack - 1; i >= 0; i-- {
		from, to := MonthWindow(now, i)

		income, err := ra.ledger.Sum(ctx, ownerID, core.TransactionFilter{
			Kind: core.KindIncome, From: from, To: to,
		})
		if err != nil {
			return nil, fmt.Errorf("trend income %s: %w", from.Format("2006-01"), err)
		}
		expenses, err := ra.ledger.Sum(ctx, ownerID, core.TransactionFilter{
			Kind: core.KindExpense, From: from, To: to,
		})
		if err != nil {
			return nil, fmt.Errorf("trend expenses %s: %w", from.Format("2006-01"), err)
		}

		points = append(points, core.TrendPoint{
			Label:    from.Format("Jan"),
			Income:   income,
			Expenses: expenses,
		})
	}
	return points, nil
}

// NormalizeCategory maps a raw category to its display form: words
// capitalized, the rest lowered. "food & dining" and "FOOD & DINING"
// collapse to the same label.
func NormalizeCategory(raw string) string {
	words := strings.Fields(strings.ToLower(strings.TrimSpace(raw)))
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

// CategoryBreakdown groups the range's transactions of one kind by
// normalized category. Categories with no matching rows are omitted.
func (ra *ReportAggregator) CategoryBreakdown(ctx context.Context, ownerID int64, kind core.TransactionKind, from, to core.Date) ([]core.CategoryAmount, error) {
	raw, err := ra.ledger.SumByCategory(ctx, ownerID, core.TransactionFilter{
		Kind: kind, From: from, To: to,
	})
	if err != nil {
		return nil, fmt.Errorf("category breakdown: %w", err)
	}

	// Case variants of the same category merge under one label.
	merged := make(map[string]int64, len(raw))
	for _, ca := range raw {
		merged[NormalizeCategory(ca.Name)] += ca.Amount.Cents
	}

	out := make([]core.CategoryAmount, 0, len(merged))
	for name, cents := range merged {
		out = append(out, core.CategoryAmount{Name: name, Amount: core.Money{Cents: cents}})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Amount.Cents != out[j].Amount.Cents {
			return out[i].Amount.Cents > out[j].Amount.Cents
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}
