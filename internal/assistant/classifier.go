package assistant

import "strings"

// Advisory categories. CategoryGeneral is the fallback when no rule
// matches.
const (
	CategoryGreeting   = "greeting"
	CategoryBudget     = "budget_help"
	CategoryExpenses   = "expense_tracking"
	CategorySavings    = "savings_goal"
	CategoryDebt       = "debt_management"
	CategoryInvestment = "investment_advice"
	CategoryRetirement = "retirement_planning"
	CategoryGeneral    = "general_financial_advice"
)

const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

type rule struct {
	category string
	keywords []string
}

// classifyRules is evaluated top to bottom; the first rule whose
// keyword set intersects the message wins. Narrow topics come before
// broad ones because the keyword sets overlap: "save for retirement"
// must hit retirement_planning, not savings_goal.
var classifyRules = []rule{
	{CategoryGreeting, []string{"hello", "hi", "hey", "greetings"}},
	{CategoryRetirement, []string{"retirement", "retire", "pension"}},
	{CategoryInvestment, []string{"invest", "investment", "investing", "stock", "stocks", "portfolio", "mutual"}},
	{CategoryDebt, []string{"debt", "loan", "loans", "emi", "credit", "owe"}},
	{CategoryBudget, []string{"budget", "budgeting", "overspend", "overspending"}},
	{CategoryExpenses, []string{"spend", "spent", "spending", "expense", "expenses", "track", "tracking"}},
	{CategorySavings, []string{"save", "saving", "savings", "goal", "goals", "target", "emergency"}},
}

var positiveLexicon = []string{
	"good", "great", "happy", "excellent", "awesome", "love",
	"progress", "nice", "thanks", "improved",
}

var negativeLexicon = []string{
	"bad", "worried", "worry", "stressed", "stress", "problem",
	"broke", "struggling", "hate", "anxious",
}

// tokenize lowercases the message and splits it on any non-letter
// rune, so punctuation never glues keywords together.
func tokenize(message string) []string {
	return strings.FieldsFunc(strings.ToLower(message), func(r rune) bool {
		return !('a' <= r && r <= 'z')
	})
}

func wordSet(message string) map[string]bool {
	fields := tokenize(message)
	set := make(map[string]bool, len(fields))
	for _, f := range fields {
		set[f] = true
	}
	return set
}

// Classify maps a free-text message to one advisory category. Pure
// function of the text and the fixed rule table.
func Classify(message string) string {
	ws := wordSet(message)
	for _, r := range classifyRules {
		for _, kw := range r.keywords {
			if ws[kw] {
				return r.category
			}
		}
	}
	return CategoryGeneral
}

// Sentiment counts lexicon occurrences in the message, repeats
// included. Ties, including the empty 0-0 case, are neutral.
func Sentiment(message string) string {
	counts := make(map[string]int)
	for _, tok := range tokenize(message) {
		counts[tok]++
	}
	var pos, neg int
	for _, w := range positiveLexicon {
		pos += counts[w]
	}
	for _, w := range negativeLexicon {
		neg += counts[w]
	}
	switch {
	case pos > neg:
		return SentimentPositive
	case neg > pos:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}
