package handlers

import (
	"net/http"

	"honeypot-lab/internal/domain/services/honeypot"
)

// PatternsHandler exposes the active pattern library
type PatternsHandler struct {
	library *honeypot.PatternLibrary
}

// NewPatternsHandler creates a new PatternsHandler
func NewPatternsHandler(library *honeypot.PatternLibrary) *PatternsHandler {
	return &PatternsHandler{library: library}
}

// PatternsResponse lists keywords and extraction rules
type PatternsResponse struct {
	Keywords []string                  `json:"keywords"`
	Rules    []honeypot.ExtractionRule `json:"rules"`
}

// List handles GET /api/v1/patterns
func (h *PatternsHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.library == nil {
		respondError(w, http.StatusServiceUnavailable, "pattern library not loaded")
		return
	}
	respondJSON(w, http.StatusOK, PatternsResponse{
		Keywords: h.library.Keywords(),
		Rules:    h.library.Rules(),
	})
}
