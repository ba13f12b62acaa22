package http

import (
	"encoding/json"
	"net/http"
)

func (s *Server) handleCreateGoal(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	var req goalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	g, err := req.toDomain(owner)
	if err != nil {
		writeError(w, r, err)
		return
	}

	stored, err := s.goals.Create(r.Context(), g)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toGoalResponse(stored))
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	goals, err := s.goals.List(r.Context(), owner)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]goalResponse, 0, len(goals))
	for _, g := range goals {
		out = append(out, toGoalResponse(g))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetGoal(w http.ResponseWriter, r *http.Request) {
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

	g, err := s.goals.Get(r.Context(), owner, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toGoalResponse(g))
}

func (s *Server) handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
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

	var req goalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	g, err := req.toDomain(owner)
	if err != nil {
		writeError(w, r, err)
		return
	}
	g.ID = id

	// Saved progress is server state; an edit that omits it keeps it.
	if req.Current == "" {
		existing, err := s.goals.Get(r.Context(), owner, id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		g.Current = existing.Current
	}

	if err := s.goals.Update(r.Context(), g); err != nil {
		writeError(w, r, err)
		return
	}
	updated, err := s.goals.Get(r.Context(), owner, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toGoalResponse(updated))
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
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

	if err := s.goals.Delete(r.Context(), owner, id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleReorderGoals sets priorities from the given id order. Unknown
// or foreign ids are skipped rather than failing the whole request.
func (s *Server) handleReorderGoals(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	var req struct {
		IDs []int64 `json:"ids"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	if err := s.goals.Reorder(r.Context(), owner, req.IDs); err != nil {
		writeError(w, r, err)
		return
	}

	goals, err := s.goals.List(r.Context(), owner)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]goalResponse, 0, len(goals))
	for _, g := range goals {
		out = append(out, toGoalResponse(g))
	}
	writeJSON(w, http.StatusOK, out)
}
