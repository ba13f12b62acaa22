package core

import (
	"errors"
	"strings"
	"time"
)

const (
	KindIncome      TransactionKind = "income"
	KindExpense     TransactionKind = "expense"
	KindTransfer    TransactionKind = "transfer"
	KindInvestment  TransactionKind = "investment"
	KindDebtPayment TransactionKind = "debt_payment"
)

const (
	PeriodWeekly  BudgetPeriod = "weekly"
	PeriodMonthly BudgetPeriod = "monthly"
	PeriodYearly  BudgetPeriod = "yearly"
)

const (
	Daily   Frequency = "daily"
	Weekly  Frequency = "weekly"
	Monthly Frequency = "monthly"
	Yearly  Frequency = "yearly"
)

type (
	TransactionKind string
	BudgetPeriod    string
	Frequency       string

	// Date is a calendar day with no time-of-day component. All dates are
	// stored at midnight UTC so comparisons are unambiguous.
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	Transaction struct {
		ID            int64
		OwnerID       int64
		Kind          TransactionKind
		Amount        Money
		Category      string
		Subcategory   string
		Description   string
		Date          Date
		PaymentMethod string
		Tags          string
		Notes         string
		// RecurringID links a materialized transaction back to the
		// definition that produced it. Zero means manually entered.
		RecurringID int64
		Verified    bool
		CreatedAt   time.Time
	}

	Budget struct {
		ID       int64
		OwnerID  int64
		Category string
		Limit    Money
		Period   BudgetPeriod
	}

	AutoSaveRule struct {
		Enabled     bool
		Amount      Money
		Frequency   Frequency
		LastApplied time.Time
	}

	SavingsGoal struct {
		ID         int64
		OwnerID    int64
		Name       string
		Target     Money
		Current    Money
		TargetDate Date
		Priority   int
		AutoSave   AutoSaveRule
		// Version guards the read-modify-write in auto-save ticks.
		Version   int64
		CreatedAt time.Time
	}

	RecurringDefinition struct {
		ID            int64
		OwnerID       int64
		Kind          TransactionKind
		Amount        Money
		Category      string
		Description   string
		PaymentMethod string
		Frequency     Frequency
		StartDate     Date
		EndDate       Date // zero means open-ended
		NextDue       Date
		Active        bool
	}

	ChatEntry struct {
		ID        int64
		OwnerID   int64
		Message   string
		Response  string
		Category  string
		Sentiment string
		CreatedAt time.Time
	}

	Alert struct {
		ID        int64
		OwnerID   int64
		Type      string
		Message   string
		Read      bool
		CreatedAt time.Time
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidKind      = errors.New("invalid transaction kind")
	ErrInvalidPeriod    = errors.New("invalid budget period")
	ErrInvalidFrequency = errors.New("invalid frequency")
	ErrInvalidDate      = errors.New("invalid date")
	ErrEmptyCategory    = errors.New("empty category")
	ErrEmptyName        = errors.New("empty name")
	ErrEmptyMessage     = errors.New("empty message")

	// ErrNotFound covers both absent ids and ids owned by another user,
	// so ownership cannot be probed through error responses.
	ErrNotFound = errors.New("not found")

	// ErrConflict reports a lost optimistic write; callers re-read and retry.
	ErrConflict = errors.New("concurrent modification")
)

// IsValidation reports whether err belongs to the validation taxonomy,
// as opposed to not-found, conflict, or infrastructure failures.
func IsValidation(err error) bool {
	for _, v := range []error{
		ErrInvalidAmount, ErrInvalidKind, ErrInvalidPeriod,
		ErrInvalidFrequency, ErrInvalidDate, ErrEmptyCategory,
		ErrEmptyName, ErrEmptyMessage,
	} {
		if errors.Is(err, v) {
			return true
		}
	}
	return false
}

// NewDate creates a Date at midnight UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

func (d Date) IsEmpty() bool {
	return d.IsZero()
}

func (k TransactionKind) Validate() error {
	switch k {
	case KindIncome, KindExpense, KindTransfer, KindInvestment, KindDebtPayment:
		return nil
	}
	return ErrInvalidKind
}

func (p BudgetPeriod) Validate() error {
	switch p {
	case PeriodWeekly, PeriodMonthly, PeriodYearly:
		return nil
	}
	return ErrInvalidPeriod
}

func (f Frequency) Validate() error {
	switch f {
	case Daily, Weekly, Monthly, Yearly:
		return nil
	}
	return ErrInvalidFrequency
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (t Transaction) Validate() error {
	if err := t.Kind.Validate(); err != nil {
		return err
	}
	if err := t.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.Category) == "" {
		return ErrEmptyCategory
	}
	if err := t.Date.Validate(); err != nil {
		return err
	}
	return nil
}

func (b Budget) Validate() error {
	if strings.TrimSpace(b.Category) == "" {
		return ErrEmptyCategory
	}
	// A limit <= 0 is a degenerate configuration, not an error: the
	// budget reports 0% used until the limit is raised.
	return b.Period.Validate()
}

func (g SavingsGoal) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return ErrEmptyName
	}
	if g.Target.Cents < 0 || g.Current.Cents < 0 {
		return ErrInvalidAmount
	}
	if g.AutoSave.Enabled {
		if err := g.AutoSave.Amount.Validate(); err != nil {
			return err
		}
		if err := g.AutoSave.Frequency.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (rd RecurringDefinition) Validate() error {
	if err := rd.Kind.Validate(); err != nil {
		return err
	}
	if err := rd.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(rd.Category) == "" {
		return ErrEmptyCategory
	}
	if err := rd.Frequency.Validate(); err != nil {
		return err
	}
	if err := rd.StartDate.Validate(); err != nil {
		return err
	}
	if !rd.EndDate.IsEmpty() && rd.EndDate.Before(rd.StartDate.Time) {
		return ErrInvalidDate
	}
	if !rd.NextDue.IsEmpty() && rd.NextDue.Before(rd.StartDate.Time) {
		return ErrInvalidDate
	}
	return nil
}
