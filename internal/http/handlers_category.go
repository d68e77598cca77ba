package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"kakeibo/internal/registry"
)

type categoryRequest struct {
	Name string `json:"name"`
	Icon string `json:"icon"`
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.categories.List())
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusUnprocessableEntity, "invalid request body: "+err.Error())
		return
	}

	cat, err := s.categories.Append(sanitizeInput(req.Name), sanitizeInput(req.Icon))
	if errors.Is(err, registry.ErrEmptyName) {
		respondError(w, http.StatusUnprocessableEntity, "category name is required")
		return
	}
	if errors.Is(err, registry.ErrDuplicate) {
		respondError(w, http.StatusConflict, "category already exists")
		return
	}
	if err != nil {
		slog.ErrorContext(r.Context(), "Failed to save category", "error", err)
		respondError(w, http.StatusInternalServerError, "failed to save category")
		return
	}

	// New categories change report labels
	s.reportCache.Purge()
	respondJSON(w, http.StatusCreated, cat)
}
