package core

import (
	"errors"
	"testing"
)

func TestTransactionValidate(t *testing.T) {
	valid := Transaction{
		OwnerID:  1,
		Kind:     KindExpense,
		Amount:   Money{Cents: 1500},
		Category: "Food",
		Date:     NewDate(2024, 1, 15),
	}

	tests := []struct {
		name    string
		mutate  func(tx *Transaction)
		wantErr error
	}{
		{"valid", func(tx *Transaction) {}, nil},
		{"unknown kind", func(tx *Transaction) { tx.Kind = "refund" }, ErrInvalidKind},
		{"zero amount", func(tx *Transaction) { tx.Amount = Money{} }, ErrInvalidAmount},
		{"negative amount", func(tx *Transaction) { tx.Amount = Money{Cents: -10} }, ErrInvalidAmount},
		{"empty category", func(tx *Transaction) { tx.Category = "  " }, ErrEmptyCategory},
		{"zero date", func(tx *Transaction) { tx.Date = Date{} }, ErrInvalidDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := valid
			tt.mutate(&tx)
			err := tx.Validate()
			if !errors.Is(err, tt.wantErr) && err != tt.wantErr {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRecurringDefinitionValidate(t *testing.T) {
	valid := RecurringDefinition{
		OwnerID:   1,
		Kind:      KindExpense,
		Amount:    Money{Cents: 9900},
		Category:  "Utilities",
		Frequency: Monthly,
		StartDate: NewDate(2024, 1, 1),
		NextDue:   NewDate(2024, 1, 1),
		Active:    true,
	}

	if err := valid.Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}

	bad := valid
	bad.EndDate = NewDate(2023, 12, 1)
	if err := bad.Validate(); !errors.Is(err, ErrInvalidDate) {
		t.Errorf("end before start: Validate() = %v, want ErrInvalidDate", err)
	}

	bad = valid
	bad.NextDue = NewDate(2023, 6, 1)
	if err := bad.Validate(); !errors.Is(err, ErrInvalidDate) {
		t.Errorf("next due before start: Validate() = %v, want ErrInvalidDate", err)
	}

	bad = valid
	bad.Frequency = "fortnightly"
	if err := bad.Validate(); !errors.Is(err, ErrInvalidFrequency) {
		t.Errorf("Validate() = %v, want ErrInvalidFrequency", err)
	}
}

func TestGoalValidate(t *testing.T) {
	g := SavingsGoal{OwnerID: 1, Name: "Emergency fund", Target: Money{Cents: 100000}}
	if err := g.Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}

	// Zero target is a degenerate configuration, not an error.
	g.Target = Money{}
	if err := g.Validate(); err != nil {
		t.Errorf("zero target: Validate() = %v, want nil", err)
	}

	g.AutoSave = AutoSaveRule{Enabled: true, Amount: Money{Cents: 0}, Frequency: Weekly}
	if err := g.Validate(); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("auto-save zero amount: Validate() = %v, want ErrInvalidAmount", err)
	}
}

func TestIsValidation(t *testing.T) {
	if !IsValidation(ErrInvalidAmount) {
		t.Error("ErrInvalidAmount should be a validation error")
	}
	if IsValidation(ErrNotFound) {
		t.Error("ErrNotFound is not a validation error")
	}
	if IsValidation(ErrConflict) {
		t.Error("ErrConflict is not a validation error")
	}
}
