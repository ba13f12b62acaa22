package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"finagent/internal/amqp"
	"finagent/internal/core"
)

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	tx, err := req.toDomain(owner)
	if err != nil {
		writeError(w, r, err)
		return
	}

	stored, err := s.ledger.Record(r.Context(), tx)
	if err != nil {
		writeError(w, r, err)
		return
	}

	s.publishTransactionEvent(r, stored, "api")
	writeJSON(w, http.StatusCreated, toTransactionResponse(stored))
}

// publishTransactionEvent is best-effort: a broker outage never fails
// the write it announces.
func (s *Server) publishTransactionEvent(r *http.Request, t core.Transaction, source string) {
	if s.publisher == nil {
		return
	}
	msg := amqp.NewTransactionEventMessage(
		t.OwnerID, t.ID, string(t.Kind), t.Category,
		t.Amount.Cents, t.Date.Format("2006-01-02"), source)
	if err := s.publisher.PublishTransactionEvent(r.Context(), msg); err != nil {
		slog.WarnContext(r.Context(), "Transaction event publish failed",
			"error", err, "transaction_id", t.ID)
	}
}

// parseTransactionFilter builds a filter from query parameters. Unknown
// or malformed values fall back to the unfiltered default.
func parseTransactionFilter(r *http.Request) core.TransactionFilter {
	q := r.URL.Query()
	var f core.TransactionFilter

	if v := strings.TrimSpace(q.Get("kind")); v != "" {
		f.Kind = core.TransactionKind(v)
	}
	f.Category = strings.TrimSpace(q.Get("category"))
	if v := strings.TrimSpace(q.Get("from")); v != "" {
		if d, err := parseDate(v); err == nil {
			f.From = d
		}
	}
	if v := strings.TrimSpace(q.Get("to")); v != "" {
		if d, err := parseDate(v); err == nil {
			f.To = d
		}
	}
	if v := strings.TrimSpace(q.Get("limit")); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			f.Limit = n
		}
	}
	return f
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}

	txs, err := s.ledger.Query(r.Context(), owner, parseTransactionFilter(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionResponses(txs))
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
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

	tx, err := s.ledger.Get(r.Context(), owner, id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionResponse(tx))
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
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

	var req transactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}
	tx, err := req.toDomain(owner)
	if err != nil {
		writeError(w, r, err)
		return
	}
	tx.ID = id

	updated, err := s.ledger.Edit(r.Context(), tx)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toTransactionResponse(updated))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
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

	if err := s.ledger.Delete(r.Context(), owner, id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePurgeOwner(w http.ResponseWriter, r *http.Request) {
	owner, err := ownerID(r)
	if err != nil {
		badRequest(w, err.Error())
		return
	}
	if err := s.purger.PurgeOwner(r.Context(), owner); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
