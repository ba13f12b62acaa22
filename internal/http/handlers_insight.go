package http

import (
	"net/http"
	"time"
)

func (s *Server) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	alerts, err := s.insights.ListAlerts(r.Context(), owner, time.Now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]alertResponse, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, toAlertResponse(a))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleMarkAlertRead(w http.ResponseWriter, r *http.Request) {
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

	if err := s.insights.MarkAlertRead(r.Context(), owner, id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	text, err := s.insights.Insights(r.Context(), owner)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"insight": text})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	stats, err := s.insights.Dashboard(r.Context(), owner, time.Now())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toDashboardResponse(stats))
}
