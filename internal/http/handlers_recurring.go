package http

import (
	"encoding/json"
	"net/http"
	"time"
)

func (s *Server) handleCreateRecurring(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	var req recurringRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	def, err := req.toDomain(owner)
	if err != nil {
		writeError(w, r, err)
		return
	}

	stored, err := s.scheduler.Define(r.Context(), def)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toRecurringResponse(stored))
}

func (s *Server) handleListRecurring(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	defs, err := s.scheduler.List(r.Context(), owner)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]recurringResponse, 0, len(defs))
	for _, d := range defs {
		out = append(out, toRecurringResponse(d))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetRecurring(w http.ResponseWriter, r *http.Request) {
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

	def, err := s.scheduler.Get(r.Context(), owner, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toRecurringResponse(def))
}

// handleMaterializeRecurring catches one definition up to today,
// cloning one transaction per missed period.
func (s *Server) handleMaterializeRecurring(w http.ResponseWriter, r *http.Request) {
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

	def, err := s.scheduler.Get(r.Context(), owner, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	created, err := s.scheduler.Materialize(r.Context(), def, time.Now())
	if err != nil {
		writeError(w, r, err)
		return
	}

	updated, err := s.scheduler.Get(r.Context(), owner, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Created    int               `json:"created"`
		Definition recurringResponse `json:"definition"`
	}{Created: created, Definition: toRecurringResponse(updated)})
}
