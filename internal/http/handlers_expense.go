package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"kakeibo/internal/core"
	"kakeibo/internal/storage"
)

// expenseRequest is the validated body for create and update. Pointer
// fields distinguish "absent" from "zero" so missing required fields
// are reported precisely.
type expenseRequest struct {
	Date     string      `json:"date"`
	Amount   *core.Money `json:"amount"`
	Category string      `json:"category"`
	Memo     string      `json:"memo"`
}

// toRecord validates the request and converts it to a domain record.
func (req expenseRequest) toRecord() (core.Record, error) {
	if req.Amount == nil {
		return core.Record{}, core.ErrInvalidAmount
	}
	date, err := core.ParseDate(req.Date)
	if err != nil {
		return core.Record{}, err
	}
	rec := core.Record{
		Date:     date,
		Amount:   *req.Amount,
		Category: sanitizeInput(req.Category),
		Memo:     sanitizeInput(req.Memo),
	}
	if err := rec.Validate(); err != nil {
		return core.Record{}, err
	}
	return rec, nil
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusUnprocessableEntity, "invalid request body: "+err.Error())
		return
	}

	rec, err := req.toRecord()
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	saved, err := s.expenses.Create(r.Context(), rec)
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to create expense", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to save expense")
		return
	}

	s.reportCache.Purge()
	respondJSON(w, http.StatusCreated, saved)
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	records, err := s.expenses.List(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to list expenses", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to list expenses")
		return
	}
	respondJSON(w, http.StatusOK, records)
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		respondError(w, http.StatusUnprocessableEntity, "invalid expense id")
		return
	}

	rec, err := s.expenses.Get(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		respondError(w, http.StatusNotFound, "expense not found")
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to load expense", "error", err, "id", id)
		respondError(w, http.StatusInternalServerError, "failed to load expense")
		return
	}
	respondJSON(w, http.StatusOK, rec)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		respondError(w, http.StatusUnprocessableEntity, "invalid expense id")
		return
	}

	var req expenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusUnprocessableEntity, "invalid request body: "+err.Error())
		return
	}

	rec, err := req.toRecord()
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	rec.ID = id

	saved, err := s.expenses.Update(r.Context(), rec)
	if errors.Is(err, storage.ErrNotFound) {
		respondError(w, http.StatusNotFound, "expense not found")
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to update expense", "error", err, "id", id)
		respondError(w, http.StatusInternalServerError, "failed to update expense")
		return
	}

	s.reportCache.Purge()
	respondJSON(w, http.StatusOK, saved)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r)
	if !ok {
		respondError(w, http.StatusUnprocessableEntity, "invalid expense id")
		return
	}

	err := s.expenses.Delete(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		respondError(w, http.StatusNotFound, "expense not found")
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to delete expense", "error", err, "id", id)
		respondError(w, http.StatusInternalServerError, "failed to delete expense")
		return
	}

	s.reportCache.Purge()
	w.WriteHeader(http.StatusNoContent)
}
