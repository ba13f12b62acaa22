package ledger

import (
	"context"
	"errors"
	"testing"

	"finagent/internal/core"
	"finagent/internal/ledger/ledgertest"
)

func expense(owner int64, cents int64, category string, date core.Date) core.Transaction {
	return core.Transaction{
		OwnerID:  owner,
		Kind:     core.KindExpense,
		Amount:   core.Money{Cents: cents},
		Category: category,
		Date:     date,
	}
}

func TestRecordValidates(t *testing.T) {
	l := New(ledgertest.New())
	ctx := context.Background()

	_, err := l.Record(ctx, expense(1, 0, "Food", core.NewDate(2024, 1, 10)))
	if !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("Record() error = %v, want ErrInvalidAmount", err)
	}

	stored, err := l.Record(ctx, expense(1, 2500, "Food", core.NewDate(2024, 1, 10)))
	if err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if stored.ID == 0 {
		t.Error("Record() did not assign an id")
	}
}

func TestQueryOrderAndOwnerScope(t *testing.T) {
	l := New(ledgertest.New())
	ctx := context.Background()

	first, _ := l.Record(ctx, expense(1, 100, "Food", core.NewDate(2024, 1, 10)))
	second, _ := l.Record(ctx, expense(1, 200, "Food", core.NewDate(2024, 1, 10)))
	newest, _ := l.Record(ctx, expense(1, 300, "Transport", core.NewDate(2024, 1, 12)))
	l.Record(ctx, expense(2, 999, "Food", core.NewDate(2024, 1, 11)))

	got, err := l.Query(ctx, 1, core.TransactionFilter{})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Query() returned %d transactions, want 3", len(got))
	}
	// Most recent date first, then newest insertion first within a day.
	wantOrder := []int64{newest.ID, second.ID, first.ID}
	for i, w := range wantOrder {
		if got[i].ID != w {
			t.Errorf("Query()[%d].ID = %d, want %d", i, got[i].ID, w)
		}
	}
}

func TestSumFiltersAndEmpty(t *testing.T) {
	l := New(ledgertest.New())
	ctx := context.Background()

	l.Record(ctx, expense(1, 1000, "Food", core.NewDate(2024, 1, 5)))
	l.Record(ctx, expense(1, 2000, "Food", core.NewDate(2024, 1, 20)))
	l.Record(ctx, expense(1, 4000, "Transport", core.NewDate(2024, 1, 20)))

	sum, err := l.Sum(ctx, 1, core.TransactionFilter{
		Kind:     core.KindExpense,
		Category: "Food",
		From:     core.NewDate(2024, 1, 10),
	})
	if err != nil {
		t.Fatalf("Sum() error = %v", err)
	}
	if sum.Cents != 2000 {
		t.Errorf("Sum() = %d cents, want 2000", sum.Cents)
	}

	empty, err := l.Sum(ctx, 3, core.TransactionFilter{})
	if err != nil {
		t.Fatalf("Sum() error = %v", err)
	}
	if empty.Cents != 0 {
		t.Errorf("Sum() with no rows = %d, want 0", empty.Cents)
	}
}

func TestEditAndDeleteOwnerScoped(t *testing.T) {
	l := New(ledgertest.New())
	ctx := context.Background()

	stored, _ := l.Record(ctx, expense(1, 100, "Food", core.NewDate(2024, 1, 10)))

	stored.Amount = core.Money{Cents: 150}
	if _, err := l.Edit(ctx, stored); err != nil {
		t.Fatalf("Edit() error = %v", err)
	}

	foreign := stored
	foreign.OwnerID = 2
	if _, err := l.Edit(ctx, foreign); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Edit() for foreign owner = %v, want ErrNotFound", err)
	}

	if err := l.Delete(ctx, 2, stored.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("Delete() for foreign owner = %v, want ErrNotFound", err)
	}
	if err := l.Delete(ctx, 1, stored.ID); err != nil {
		t.Errorf("Delete() error = %v", err)
	}
}
