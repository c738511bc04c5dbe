package handlers

import (
	"net/http"
	"strconv"

	"honeypot-lab/internal/domain/models"
	"honeypot-lab/pkg/logger"
)

const (
	defaultReportLimit = 50
	maxReportLimit     = 500
)

// ReportsHandler serves stored intelligence reports to analysts
type ReportsHandler struct {
	reports ReportLister
	logger  *logger.Logger
}

// NewReportsHandler creates a new ReportsHandler
func NewReportsHandler(reports ReportLister, log *logger.Logger) *ReportsHandler {
	return &ReportsHandler{
		reports: reports,
		logger:  log.WithComponent("reports"),
	}
}

// ReportsResponse is the list body
type ReportsResponse struct {
	Reports []*models.IntelligenceReport `json:"reports"`
	Count   int                          `json:"count"`
}

// List handles GET /api/v1/intelligence/reports
func (h *ReportsHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.reports == nil {
		respondError(w, http.StatusServiceUnavailable, "intelligence storage not configured")
		return
	}

	limit := defaultReportLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(n, maxReportLimit)
	}

	reports, err := h.reports.ListRecent(r.Context(), limit)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list intelligence reports")
		respondError(w, http.StatusInternalServerError, "failed to list reports")
		return
	}
	if reports == nil {
		reports = []*models.IntelligenceReport{}
	}

	respondJSON(w, http.StatusOK, ReportsResponse{Reports: reports, Count: len(reports)})
}
