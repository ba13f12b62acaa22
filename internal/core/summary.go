package core

// CategoryAmount is an amount aggregated under one category label.
type CategoryAmount struct {
	Name   string
	Amount Money
}

// Summary is the income/expense/savings rollup for a date range.
// Savings is always Income − Expenses, exact.
type Summary struct {
	Income   Money
	Expenses Money
	Savings  Money
}

// TrendPoint is one month of a trailing trend, labelled with the short
// month name ("Jan", "Feb", ...).
type TrendPoint struct {
	Label    string
	Income   Money
	Expenses Money
}

// BudgetStatus is the derived consumption of a budget for the current
// period window. Percentage may exceed 100.
type BudgetStatus struct {
	Budget     Budget
	Spent      Money
	Percentage float64
}

// GoalProgress is the derived completion of a savings goal.
type GoalProgress struct {
	Goal       SavingsGoal
	Percentage float64
}
