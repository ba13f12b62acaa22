package http

import (
	"time"

	"finagent/internal/core"
	"finagent/internal/services"
)

// Amounts cross the wire as decimal strings ("12.34") and dates as
// "YYYY-MM-DD". Conversion to cents and midnight-UTC days happens here,
// at the boundary.

type transactionRequest struct {
	Kind          string `json:"kind"`
	Amount        string `json:"amount"`
	Category      string `json:"category"`
	Subcategory   string `json:"subcategory,omitempty"`
	Description   string `json:"description,omitempty"`
	Date          string `json:"date"`
	PaymentMethod string `json:"payment_method,omitempty"`
	Tags          string `json:"tags,omitempty"`
	Notes         string `json:"notes,omitempty"`
	Verified      bool   `json:"verified,omitempty"`
}

func (req transactionRequest) toDomain(ownerID int64) (core.Transaction, error) {
	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		return core.Transaction{}, err
	}
	date, err := parseDate(req.Date)
	if err != nil {
		return core.Transaction{}, err
	}
	return core.Transaction{
		OwnerID:       ownerID,
		Kind:          core.TransactionKind(req.Kind),
		Amount:        core.Money{Cents: cents},
		Category:      sanitizeInput(req.Category),
		Subcategory:   sanitizeInput(req.Subcategory),
		Description:   sanitizeInput(req.Description),
		Date:          date,
		PaymentMethod: sanitizeInput(req.PaymentMethod),
		Tags:          sanitizeInput(req.Tags),
		Notes:         sanitizeInput(req.Notes),
		Verified:      req.Verified,
	}, nil
}

type transactionResponse struct {
	ID            int64     `json:"id"`
	Kind          string    `json:"kind"`
	Amount        string    `json:"amount"`
	Category      string    `json:"category"`
	Subcategory   string    `json:"subcategory,omitempty"`
	Description   string    `json:"description,omitempty"`
	Date          string    `json:"date"`
	PaymentMethod string    `json:"payment_method,omitempty"`
	Tags          string    `json:"tags,omitempty"`
	Notes         string    `json:"notes,omitempty"`
	RecurringID   int64     `json:"recurring_id,omitempty"`
	Verified      bool      `json:"verified"`
	CreatedAt     time.Time `json:"created_at"`
}

func toTransactionResponse(t core.Transaction) transactionResponse {
	return transactionResponse{
		ID:            t.ID,
		Kind:          string(t.Kind),
		Amount:        t.Amount.String(),
		Category:      t.Category,
		Subcategory:   t.Subcategory,
		Description:   t.Description,
		Date:          t.Date.Format("2006-01-02"),
		PaymentMethod: t.PaymentMethod,
		Tags:          t.Tags,
		Notes:         t.Notes,
		RecurringID:   t.RecurringID,
		Verified:      t.Verified,
		CreatedAt:     t.CreatedAt,
	}
}

func toTransactionResponses(txs []core.Transaction) []transactionResponse {
	out := make([]transactionResponse, 0, len(txs))
	for _, t := range txs {
		out = append(out, toTransactionResponse(t))
	}
	return out
}

type budgetRequest struct {
	Category string `json:"category"`
	Limit    string `json:"limit"`
	Period   string `json:"period"`
}

// A zero limit is accepted: the budget then always reads 0% used.
func (req budgetRequest) toDomain(ownerID int64) (core.Budget, error) {
	cents, err := core.ParseDecimalToCentsAllowZero(req.Limit)
	if err != nil {
		return core.Budget{}, err
	}
	return core.Budget{
		OwnerID:  ownerID,
		Category: sanitizeInput(req.Category),
		Limit:    core.Money{Cents: cents},
		Period:   core.BudgetPeriod(req.Period),
	}, nil
}

type budgetResponse struct {
	ID       int64  `json:"id"`
	Category string `json:"category"`
	Limit    string `json:"limit"`
	Period   string `json:"period"`
}

func toBudgetResponse(b core.Budget) budgetResponse {
	return budgetResponse{
		ID:       b.ID,
		Category: b.Category,
		Limit:    b.Limit.String(),
		Period:   string(b.Period),
	}
}

type budgetStatusResponse struct {
	budgetResponse
	Spent      string  `json:"spent"`
	Percentage float64 `json:"percentage"`
}

func toBudgetStatusResponse(st core.BudgetStatus) budgetStatusResponse {
	return budgetStatusResponse{
		budgetResponse: toBudgetResponse(st.Budget),
		Spent:          st.Spent.String(),
		Percentage:     st.Percentage,
	}
}

type autoSaveRequest struct {
	Enabled   bool   `json:"enabled"`
	Amount    string `json:"amount,omitempty"`
	Frequency string `json:"frequency,omitempty"`
}

type goalRequest struct {
	Name       string           `json:"name"`
	Target     string           `json:"target"`
	Current    string           `json:"current,omitempty"`
	TargetDate string           `json:"target_date,omitempty"`
	Priority   int              `json:"priority,omitempty"`
	AutoSave   *autoSaveRequest `json:"auto_save,omitempty"`
}

func (req goalRequest) toDomain(ownerID int64) (core.SavingsGoal, error) {
	g := core.SavingsGoal{
		OwnerID:  ownerID,
		Name:     sanitizeInput(req.Name),
		Priority: req.Priority,
	}
	if req.Target != "" {
		cents, err := core.ParseDecimalToCents(req.Target)
		if err != nil {
			return core.SavingsGoal{}, err
		}
		g.Target = core.Money{Cents: cents}
	}
	if req.Current != "" {
		cents, err := core.ParseDecimalToCentsAllowZero(req.Current)
		if err != nil {
			return core.SavingsGoal{}, err
		}
		g.Current = core.Money{Cents: cents}
	}
	if req.TargetDate != "" {
		date, err := parseDate(req.TargetDate)
		if err != nil {
			return core.SavingsGoal{}, err
		}
		g.TargetDate = date
	}
	if req.AutoSave != nil {
		g.AutoSave.Enabled = req.AutoSave.Enabled
		g.AutoSave.Frequency = core.Frequency(req.AutoSave.Frequency)
		if req.AutoSave.Amount != "" {
			cents, err := core.ParseDecimalToCents(req.AutoSave.Amount)
			if err != nil {
				return core.SavingsGoal{}, err
			}
			g.AutoSave.Amount = core.Money{Cents: cents}
		}
	}
	return g, nil
}

type goalResponse struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	Target     string  `json:"target"`
	Current    string  `json:"current"`
	TargetDate string  `json:"target_date,omitempty"`
	Priority   int     `json:"priority"`
	Percentage float64 `json:"percentage"`
	AutoSave   struct {
		Enabled   bool   `json:"enabled"`
		Amount    string `json:"amount,omitempty"`
		Frequency string `json:"frequency,omitempty"`
	} `json:"auto_save"`
}

func toGoalResponse(g core.SavingsGoal) goalResponse {
	resp := goalResponse{
		ID:         g.ID,
		Name:       g.Name,
		Target:     g.Target.String(),
		Current:    g.Current.String(),
		Priority:   g.Priority,
		Percentage: g.Current.Percent(g.Target),
	}
	if !g.TargetDate.IsEmpty() {
		resp.TargetDate = g.TargetDate.Format("2006-01-02")
	}
	resp.AutoSave.Enabled = g.AutoSave.Enabled
	if g.AutoSave.Enabled {
		resp.AutoSave.Amount = g.AutoSave.Amount.String()
		resp.AutoSave.Frequency = string(g.AutoSave.Frequency)
	}
	return resp
}

type recurringRequest struct {
	Kind          string `json:"kind"`
	Amount        string `json:"amount"`
	Category      string `json:"category"`
	Description   string `json:"description,omitempty"`
	PaymentMethod string `json:"payment_method,omitempty"`
	Frequency     string `json:"frequency"`
	StartDate     string `json:"start_date"`
	EndDate       string `json:"end_date,omitempty"`
}

func (req recurringRequest) toDomain(ownerID int64) (core.RecurringDefinition, error) {
	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		return core.RecurringDefinition{}, err
	}
	start, err := parseDate(req.StartDate)
	if err != nil {
		return core.RecurringDefinition{}, err
	}
	def := core.RecurringDefinition{
		OwnerID:       ownerID,
		Kind:          core.TransactionKind(req.Kind),
		Amount:        core.Money{Cents: cents},
		Category:      sanitizeInput(req.Category),
		Description:   sanitizeInput(req.Description),
		PaymentMethod: sanitizeInput(req.PaymentMethod),
		Frequency:     core.Frequency(req.Frequency),
		StartDate:     start,
	}
	if req.EndDate != "" {
		end, err := parseDate(req.EndDate)
		if err != nil {
			return core.RecurringDefinition{}, err
		}
		def.EndDate = end
	}
	return def, nil
}

type recurringResponse struct {
	ID            int64  `json:"id"`
	Kind          string `json:"kind"`
	Amount        string `json:"amount"`
	Category      string `json:"category"`
	Description   string `json:"description,omitempty"`
	PaymentMethod string `json:"payment_method,omitempty"`
	Frequency     string `json:"frequency"`
	StartDate     string `json:"start_date"`
	EndDate       string `json:"end_date,omitempty"`
	NextDue       string `json:"next_due"`
	Active        bool   `json:"active"`
}

func toRecurringResponse(d core.RecurringDefinition) recurringResponse {
	resp := recurringResponse{
		ID:            d.ID,
		Kind:          string(d.Kind),
		Amount:        d.Amount.String(),
		Category:      d.Category,
		Description:   d.Description,
		PaymentMethod: d.PaymentMethod,
		Frequency:     string(d.Frequency),
		StartDate:     d.StartDate.Format("2006-01-02"),
		NextDue:       d.NextDue.Format("2006-01-02"),
		Active:        d.Active,
	}
	if !d.EndDate.IsEmpty() {
		resp.EndDate = d.EndDate.Format("2006-01-02")
	}
	return resp
}

type summaryResponse struct {
	Income   string `json:"income"`
	Expenses string `json:"expenses"`
	Savings  string `json:"savings"`
}

func toSummaryResponse(s core.Summary) summaryResponse {
	return summaryResponse{
		Income:   s.Income.String(),
		Expenses: s.Expenses.String(),
		Savings:  s.Savings.String(),
	}
}

type trendPointResponse struct {
	Label    string `json:"label"`
	Income   string `json:"income"`
	Expenses string `json:"expenses"`
}

type categoryAmountResponse struct {
	Category string `json:"category"`
	Amount   string `json:"amount"`
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	ID        int64     `json:"id"`
	Message   string    `json:"message"`
	Response  string    `json:"response"`
	Category  string    `json:"category"`
	Sentiment string    `json:"sentiment"`
	CreatedAt time.Time `json:"created_at"`
}

func toChatResponse(e core.ChatEntry) chatResponse {
	return chatResponse{
		ID:        e.ID,
		Message:   e.Message,
		Response:  e.Response,
		Category:  e.Category,
		Sentiment: e.Sentiment,
		CreatedAt: e.CreatedAt,
	}
}

type alertResponse struct {
	ID        int64     `json:"id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"created_at"`
}

func toAlertResponse(a core.Alert) alertResponse {
	return alertResponse{
		ID:        a.ID,
		Type:      a.Type,
		Message:   a.Message,
		Read:      a.Read,
		CreatedAt: a.CreatedAt,
	}
}

type dashboardResponse struct {
	MonthSpending   string `json:"month_spending"`
	BudgetRemaining string `json:"budget_remaining"`
	GoalsOnTrack    int    `json:"goals_on_track"`
	TotalGoals      int    `json:"total_goals"`
	MonthSavings    string `json:"month_savings"`
}

func toDashboardResponse(st services.DashboardStats) dashboardResponse {
	return dashboardResponse{
		MonthSpending:   st.MonthSpending.String(),
		BudgetRemaining: st.BudgetRemaining.String(),
		GoalsOnTrack:    st.GoalsOnTrack,
		TotalGoals:      st.TotalGoals,
		MonthSavings:    st.MonthSavings.String(),
	}
}
