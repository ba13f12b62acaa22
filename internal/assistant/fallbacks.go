package assistant

import "fmt"

// fallbackResponse returns the canned advisory paragraph for a
// category. Used whenever the external provider fails or is not
// configured, so the assistant always answers.
func fallbackResponse(category string, fc Context) string {
	top := fc.TopCategory
	if top == "" {
		top = "Food & Dining"
	}

	switch category {
	case CategoryGreeting:
		return "Hi there! I'm your family finance assistant. Ask me about budgeting, savings goals, spending patterns, or any money question."
	case CategoryBudget:
		return fmt.Sprintf("Family budgeting made simple: 50%% for needs (rent, groceries), 30%% for wants, 20%% for savings and debt. Your %s spending is the first place to check against that split.", top)
	case CategoryExpenses:
		if fc.RecentCount == 0 {
			return "You haven't recorded any transactions yet. Start tracking your expenses to get personalized spending insights."
		}
		return fmt.Sprintf("Across your last %d transactions, %s is your top spending category. Want to set a weekly limit for it?", fc.RecentCount, top)
	case CategorySavings:
		return "Smart saving tips: automate a fixed monthly transfer, apply the 24-hour rule to big purchases, and audit subscriptions quarterly. An emergency fund of six months' expenses comes first."
	case CategoryDebt:
		return "Tackle debt with the avalanche method: list balances by interest rate, pay minimums on everything, and put every spare unit toward the highest rate. Revisit the list monthly."
	case CategoryInvestment:
		return "Before investing, secure an emergency fund and clear high-interest debt. Then favor broad, low-cost index funds over stock picking, and automate the contribution."
	case CategoryRetirement:
		return "For retirement, start early and keep it boring: a fixed percentage of every income, invested in diversified low-cost funds, reviewed once a year. Compounding does the rest."
	default:
		return fmt.Sprintf("Consistent tracking beats clever tricks. Focus on your biggest category (%s right now), automate savings, and review the numbers monthly. What would you like to dig into?", top)
	}
}
