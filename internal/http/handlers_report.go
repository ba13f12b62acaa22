package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"finagent/internal/core"
	"finagent/internal/services"
)

// handleSummary returns income, expenses, and savings for a date range.
// Without from/to it covers the current calendar month.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	from, to := services.MonthWindow(time.Now(), 0)
	if v := strings.TrimSpace(r.URL.Query().Get("from")); v != "" {
		if from, err = parseDate(v); err != nil {
			badRequest(w, "invalid from date")
			return
		}
	}
	if v := strings.TrimSpace(r.URL.Query().Get("to")); v != "" {
		if to, err = parseDate(v); err != nil {
			badRequest(w, "invalid to date")
			return
		}
	}

	summary, err := s.reports.Summary(r.Context(), owner, from, to)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toSummaryResponse(summary))
}

func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	months := 6
	if v := strings.TrimSpace(r.URL.Query().Get("months")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 24 {
			months = n
		}
	}

	points, err := s.reports.MonthlyTrend(r.Context(), owner, time.Now(), months)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]trendPointResponse, 0, len(points))
	for _, p := range points {
		out = append(out, trendPointResponse{
			Label:    p.Label,
			Income:   p.Income.String(),
			Expenses: p.Expenses.String(),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCategoryBreakdown(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	kind := core.KindExpense
	if v := strings.TrimSpace(r.URL.Query().Get("kind")); v != "" {
		kind = core.TransactionKind(v)
		if err := kind.Validate(); err != nil {
			writeError(w, r, err)
			return
		}
	}

	from, to := services.MonthWindow(time.Now(), 0)
	if v := strings.TrimSpace(r.URL.Query().Get("from")); v != "" {
		if from, err = parseDate(v); err != nil {
			badRequest(w, "invalid from date")
			return
		}
	}
	if v := strings.TrimSpace(r.URL.Query().Get("to")); v != "" {
		if to, err = parseDate(v); err != nil {
			badRequest(w, "invalid to date")
			return
		}
	}

	breakdown, err := s.reports.CategoryBreakdown(r.Context(), owner, kind, from, to)
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]categoryAmountResponse, 0, len(breakdown))
	for _, c := range breakdown {
		out = append(out, categoryAmountResponse{
			Category: c.Name,
			Amount:   c.Amount.String(),
		})
	}
	writeJSON(w, http.StatusOK, out)
}
