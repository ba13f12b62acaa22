package http

import (
	"encoding/json"
	"net/http"
	"time"
)

func (s *Server) handleCreateBudget(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	var req budgetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	b, err := req.toDomain(owner)
	if err != nil {
		writeError(w, r, err)
		return
	}

	stored, err := s.tracker.Create(r.Context(), b)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toBudgetResponse(stored))
}

// handleListBudgets returns every budget with its live status for the
// current period. Spent amounts are recomputed from the ledger on each
// read.
func (s *Server) handleListBudgets(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	budgets, err := s.tracker.List(r.Context(), owner)
	if err != nil {
		writeError(w, r, err)
		return
	}
	statuses, err := s.tracker.StatusAll(r.Context(), budgets, time.Now())
	if err != nil {
		writeError(w, r, err)
		return
	}

	out := make([]budgetStatusResponse, 0, len(statuses))
	for _, st := range statuses {
		out = append(out, toBudgetStatusResponse(st))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleBudgetStatus(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	id, err := pathID(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	b, err := s.tracker.Get(r.Context(), owner, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	st, err := s.tracker.Status(r.Context(), b, time.Now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toBudgetStatusResponse(st))
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	id, err := pathID(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	if err := s.tracker.Delete(r.Context(), owner, id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
