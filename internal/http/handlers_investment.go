package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
)

func (s *Server) handleInvestments(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listInvestments(w, r)
	case http.MethodPost:
		s.createInvestment(w, r)
	default:
		methodNotAllowed(w, "GET", "POST")
	}
}

func (s *Server) listInvestments(w http.ResponseWriter, r *http.Request) {
	rows := s.tracker.Investments(r.Context())
	writeJSON(w, r, http.StatusOK, map[string]any{"rows": rows})
}

// createInvestment accepts the same payload as transactions but the type
// is always recorded as investment, whatever the client sent.
func (s *Server) createInvestment(w http.ResponseWriter, r *http.Request) {
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

	if err := s.tracker.AddInvestment(r.Context(), tx); err != nil {
		slog.ErrorContext(r.Context(), "Failed to save investment",
			"error", err,
			"date", tx.Date,
			"category", tx.Category,
			"amount", tx.Amount)
		writeError(w, r, http.StatusInternalServerError, "error saving investment")
		return
	}

	s.invalidateCaches()
	writeJSON(w, r, http.StatusCreated, map[string]string{"status": "created"})
}

func (s *Server) handleInvestmentReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	const key = "report:investments"
	if cached, ok := s.reportCache.Get(key); ok {
		writeJSON(w, r, http.StatusOK, cached)
		return
	}

	rep := s.tracker.InvestmentReport(r.Context())
	s.reportCache.Set(key, rep)
	writeJSON(w, r, http.StatusOK, rep)
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, "GET")
		return
	}

	kind := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/charts/"), "/")
	if kind == "" {
		writeError(w, r, http.StatusBadRequest, "missing chart kind")
		return
	}

	f := parseFilter(r)
	key := "chart:" + kind + "|" + f.Month + "|" + f.Category + "|" + f.Search

	if cached, ok := s.chartCache.Get(key); ok {
		writeJSON(w, r, http.StatusOK, cached)
		return
	}

	data, err := s.tracker.ChartData(r.Context(), kind, f)
	if err != nil {
		writeError(w, r, http.StatusNotFound, err.Error())
		return
	}

	s.chartCache.Set(key, data)
	writeJSON(w, r, http.StatusOK, data)
}
