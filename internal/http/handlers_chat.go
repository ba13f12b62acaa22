package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
)

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	entry, err := s.assistant.Chat(r.Context(), owner, req.Message)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toChatResponse(entry))
}

func (s *Server) handleChatHistory(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	limit := 50
	if v := strings.TrimSpace(r.URL.Query().Get("limit")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	entries, err := s.assistant.History(r.Context(), owner, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]chatResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, toChatResponse(e))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleClearChatHistory(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	if err := s.assistant.ClearHistory(r.Context(), owner); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
