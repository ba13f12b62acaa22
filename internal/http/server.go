// Package http exposes the ledger engine as a JSON API. Owner identity
// arrives in the X-Owner-ID header; every route is scoped to it.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"finagent/internal/amqp"
	"finagent/internal/assistant"
	"finagent/internal/ledger"
	"finagent/internal/services"
)

// EventPublisher announces recorded transactions to downstream
// consumers. A nil publisher disables events without disabling writes.
type EventPublisher interface {
	PublishTransactionEvent(ctx context.Context, msg *amqp.TransactionEventMessage) error
}

// OwnerPurger removes every entity belonging to one owner.
type OwnerPurger interface {
	PurgeOwner(ctx context.Context, ownerID int64) error
}

type Server struct {
	http.Server

	ledger    *ledger.Ledger
	tracker   *services.BudgetTracker
	goals     *services.SavingsGoalManager
	scheduler *services.RecurringScheduler
	reports   *services.ReportAggregator
	insights  *services.InsightService
	assistant *assistant.Assistant
	purger    OwnerPurger
	publisher EventPublisher

	rateLimiter  *rateLimiter
	shutdownOnce sync.Once
}

type Deps struct {
	Ledger    *ledger.Ledger
	Tracker   *services.BudgetTracker
	Goals     *services.SavingsGoalManager
	Scheduler *services.RecurringScheduler
	Reports   *services.ReportAggregator
	Insights  *services.InsightService
	Assistant *assistant.Assistant
	Purger    OwnerPurger
	Publisher EventPublisher
}

// NewServer wires routes and middleware, returning a ready-to-run
// server.
func NewServer(addr string, deps Deps) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
		ledger:      deps.Ledger,
		tracker:     deps.Tracker,
		goals:       deps.Goals,
		scheduler:   deps.Scheduler,
		reports:     deps.Reports,
		insights:    deps.Insights,
		assistant:   deps.Assistant,
		purger:      deps.Purger,
		publisher:   deps.Publisher,
		rateLimiter: newRateLimiter(),
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("POST /transactions", s.guard(s.handleCreateTransaction))
	mux.HandleFunc("GET /transactions", s.guard(s.handleListTransactions))
	mux.HandleFunc("GET /transactions/{id}", s.guard(s.handleGetTransaction))
	mux.HandleFunc("PUT /transactions/{id}", s.guard(s.handleUpdateTransaction))
	mux.HandleFunc("DELETE /transactions/{id}", s.guard(s.handleDeleteTransaction))

	mux.HandleFunc("POST /budgets", s.guard(s.handleCreateBudget))
	mux.HandleFunc("GET /budgets", s.guard(s.handleListBudgets))
	mux.HandleFunc("GET /budgets/{id}", s.guard(s.handleBudgetStatus))
	mux.HandleFunc("DELETE /budgets/{id}", s.guard(s.handleDeleteBudget))

	mux.HandleFunc("POST /goals", s.guard(s.handleCreateGoal))
	mux.HandleFunc("GET /goals", s.guard(s.handleListGoals))
	mux.HandleFunc("GET /goals/{id}", s.guard(s.handleGetGoal))
	mux.HandleFunc("PUT /goals/{id}", s.guard(s.handleUpdateGoal))
	mux.HandleFunc("DELETE /goals/{id}", s.guard(s.handleDeleteGoal))
	mux.HandleFunc("POST /goals/reorder", s.guard(s.handleReorderGoals))

	mux.HandleFunc("POST /recurring", s.guard(s.handleCreateRecurring))
	mux.HandleFunc("GET /recurring", s.guard(s.handleListRecurring))
	mux.HandleFunc("GET /recurring/{id}", s.guard(s.handleGetRecurring))
	mux.HandleFunc("POST /recurring/{id}/materialize", s.guard(s.handleMaterializeRecurring))

	mux.HandleFunc("GET /reports/summary", s.guard(s.handleSummary))
	mux.HandleFunc("GET /reports/trend", s.guard(s.handleTrend))
	mux.HandleFunc("GET /reports/categories", s.guard(s.handleCategoryBreakdown))

	mux.HandleFunc("POST /chat", s.guard(s.handleChat))
	mux.HandleFunc("GET /chat/history", s.guard(s.handleChatHistory))
	mux.HandleFunc("DELETE /chat/history", s.guard(s.handleClearChatHistory))

	mux.HandleFunc("GET /alerts", s.guard(s.handleListAlerts))
	mux.HandleFunc("POST /alerts/{id}/read", s.guard(s.handleMarkAlertRead))
	mux.HandleFunc("GET /insights", s.guard(s.handleInsights))
	mux.HandleFunc("GET /dashboard", s.guard(s.handleDashboard))

	mux.HandleFunc("DELETE /owner", s.guard(s.handlePurgeOwner))

	return s
}

// guard adds security headers, per-IP rate limiting on writes, and a
// request ID to every API route.
func (s *Server) guard(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(r.Context(), "Rate limit exceeded",
				"client_ip", clientIP, "method", r.Method, "path", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("X-Request-ID", generateRequestID())

		next(w, r)
	}
}

// Shutdown stops the server and its background cleanup goroutines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
