package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"honeypot-lab/internal/domain/services"
	"honeypot-lab/internal/domain/services/honeypot"
	"honeypot-lab/internal/observability/metrics"
	"honeypot-lab/pkg/logger"
)

const defaultMaxBodyBytes = 1 << 20

// HoneypotHandler serves the conversational endpoint
type HoneypotHandler struct {
	orchestrator *honeypot.Orchestrator
	stats        *honeypot.StatsCollector
	reporter     *services.IntelReporter
	verdicts     VerdictCounter
	metrics      *metrics.Metrics
	maxBody      int64
	logger       *logger.Logger
}

// NewHoneypotHandler creates a new HoneypotHandler
func NewHoneypotHandler(deps Dependencies) *HoneypotHandler {
	maxBody := deps.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = defaultMaxBodyBytes
	}
	return &HoneypotHandler{
		orchestrator: deps.Orchestrator,
		stats:        deps.Stats,
		reporter:     deps.Reporter,
		verdicts:     deps.Verdicts,
		metrics:      deps.Metrics,
		maxBody:      maxBody,
		logger:       deps.Logger.WithComponent("honeypot"),
	}
}

// Handle handles POST /honeypot. Any JSON shape is accepted; missing or
// malformed fields fall back to defaults and the turn is still answered.
func (h *HoneypotHandler) Handle(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		respondError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	req := honeypot.NormalizeRequest(body)
	outcome := h.orchestrator.Evaluate(req.Message, req.History)
	resp := outcome.Response

	h.stats.Record(outcome)
	if h.metrics != nil {
		h.metrics.ObserveTurn(resp, outcome.Elapsed)
	}

	log := h.logger.
		WithRequestID(middleware.GetReqID(r.Context())).
		WithConversationID(req.ConversationID)

	if h.verdicts != nil {
		if err := h.verdicts.RecordVerdict(r.Context(), resp.IsScam); err != nil {
			log.WithError(err).Warn().Msg("failed to record verdict")
		}
	}

	// Delivery happens off the request path; drops are counted by the reporter
	if h.reporter != nil {
		h.reporter.Submit(req, outcome)
	}

	log.Info().
		Bool("is_scam", resp.IsScam).
		Float64("confidence", resp.Confidence).
		Strs("matched", outcome.Detection.Matched).
		Int("turn_count", resp.EngagementMetrics.TurnCount).
		Int("extracted", resp.ExtractedIntelligence.Total()).
		Msg("turn handled")

	respondJSON(w, http.StatusOK, resp)
}
