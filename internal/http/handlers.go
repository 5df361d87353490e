package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"hisab/internal/core"
	"hisab/internal/store"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.tracker == nil {
		writeError(w, r, http.StatusServiceUnavailable, "tracker not initialized")
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ready"})
}

// transactionPayload is the write-side representation of a row. Amount
// arrives as a JSON number or string and is validated before it reaches
// the store.
type transactionPayload struct {
	Date     string          `json:"date"`
	Category string          `json:"category"`
	Amount   json.RawMessage `json:"amount"`
	Type     string          `json:"type"`
}

// amountString returns the raw amount with surrounding JSON quotes removed.
func (p transactionPayload) amountString() string {
	raw := strings.TrimSpace(string(p.Amount))
	if unquoted, err := strconv.Unquote(raw); err == nil {
		return unquoted
	}
	return raw
}

// toTransaction validates the payload and converts it into a row. The
// store itself accepts anything; malformed input is rejected here.
func (p transactionPayload) toTransaction() (core.Transaction, error) {
	date := sanitizeInput(p.Date)
	if date == "" {
		date = time.Now().Format("2006-01-02")
	}

	category := sanitizeInput(p.Category)
	if category == "" {
		return core.Transaction{}, errors.New("category is required")
	}

	amount, err := core.ParseAmount(p.amountString())
	if err != nil {
		return core.Transaction{}, err
	}

	txType := core.NormalizeType(sanitizeInput(p.Type))
	if txType == "" {
		txType = core.TypeExpense
	}

	return core.Transaction{
		Date:     date,
		Category: category,
		Amount:   amount,
		Type:     txType,
	}, nil
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listTransactions(w, r)
	case http.MethodPost:
		s.createTransaction(w, r)
	default:
		methodNotAllowed(w, "GET", "POST")
	}
}

func (s *Server) listTransactions(w http.ResponseWriter, r *http.Request) {
	f := parseFilter(r)
	key := "list:" + f.Month + "|" + f.Category + "|" + f.Search

	if cached, ok := s.listCache.Get(key); ok {
		writeJSON(w, r, http.StatusOK, cached)
		return
	}

	result := s.tracker.ListTransactions(r.Context(), f)
	s.listCache.Set(key, result)
	writeJSON(w, r, http.StatusOK, result)
}

func (s *Server) createTransaction(w http.ResponseWriter, r *http.Request) {
	var payload transactionPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	tx, err := payload.toTransaction()
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if err := s.tracker.AddTransaction(r.Context(), tx); err != nil {
		slog.ErrorContext(r.Context(), "Failed to save transaction",
			"error", err,
			"date", tx.Date,
			"category", tx.Category,
			"amount", tx.Amount,
			"tx_type", tx.Type)
		writeError(w, r, http.StatusInternalServerError, "error saving transaction")
		return
	}

	s.invalidateCaches()

	slog.InfoContext(r.Context(), "Transaction created",
		"date", tx.Date,
		"category", tx.Category,
		"amount", tx.Amount,
		"tx_type", tx.Type)

	writeJSON(w, r, http.StatusCreated, map[string]string{"status": "created"})
}

func (s *Server) handleTransactionByIndex(w http.ResponseWriter, r *http.Request) {
	index, err := parsePathIndex(r.URL.Path, "/api/transactions/")
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	switch r.Method {
	case http.MethodPut:
		s.updateTransaction(w, r, index)
	case http.MethodDelete:
		s.deleteTransaction(w, r, index)
	default:
		methodNotAllowed(w, "PUT", "DELETE")
	}
}

func (s *Server) updateTransaction(w http.ResponseWriter, r *http.Request, index int) {
	var payload transactionPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	tx, err := payload.toTransaction()
	if err != nil {
		writeError(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if err := s.tracker.EditTransaction(r.Context(), index, tx); err != nil {
		if errors.Is(err, store.ErrRowNotFound) {
			writeError(w, r, http.StatusNotFound, "row not found")
			return
		}
		slog.ErrorContext(r.Context(), "Failed to update transaction", "error", err, "index", index)
		writeError(w, r, http.StatusInternalServerError, "error updating transaction")
		return
	}

	s.invalidateCaches()
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "updated"})
}

func (s *Server) deleteTransaction(w http.ResponseWriter, r *http.Request, index int) {
	if err := s.tracker.DeleteTransaction(r.Context(), index); err != nil {
		if errors.Is(err, store.ErrRowNotFound) {
			writeError(w, r, http.StatusNotFound, "row not found")
			return
		}
		slog.ErrorContext(r.Context(), "Failed to delete transaction", "error", err, "index", index)
		writeError(w, r, http.StatusInternalServerError, "error deleting transaction")
		return
	}

	s.invalidateCaches()
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "deleted"})
}
