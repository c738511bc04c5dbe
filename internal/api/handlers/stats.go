package handlers

import (
	"net/http"

	"honeypot-lab/internal/domain/services/honeypot"
	"honeypot-lab/pkg/logger"
)

// StatsHandler handles statistics endpoints
type StatsHandler struct {
	collector *honeypot.StatsCollector
	verdicts  VerdictCounter
	logger    *logger.Logger
}

// NewStatsHandler creates a new StatsHandler
func NewStatsHandler(collector *honeypot.StatsCollector, verdicts VerdictCounter, log *logger.Logger) *StatsHandler {
	return &StatsHandler{
		collector: collector,
		verdicts:  verdicts,
		logger:    log.WithComponent("stats"),
	}
}

// StatsResponse combines this replica's counters with the shared ones
type StatsResponse struct {
	Instance honeypot.Stats   `json:"instance"`
	Cluster  map[string]int64 `json:"cluster,omitempty"`
}

// Get handles GET /api/v1/stats
func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	resp := StatsResponse{Instance: h.collector.Snapshot()}

	if h.verdicts != nil {
		counts, err := h.verdicts.VerdictCounts(r.Context())
		if err != nil {
			h.logger.Warn().Err(err).Msg("failed to read shared verdict counts")
		} else {
			resp.Cluster = counts
		}
	}

	w.Header().Set("Cache-Control", "no-store")
	respondJSON(w, http.StatusOK, resp)
}
