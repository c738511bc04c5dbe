package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"honeypot-lab/internal/domain/models"
	"honeypot-lab/internal/domain/services"
	"honeypot-lab/internal/domain/services/honeypot"
	"honeypot-lab/internal/observability/metrics"
	"honeypot-lab/pkg/logger"
)

// Pinger is a dependency the readiness probe can check
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// VerdictCounter keeps verdict counts shared across replicas
type VerdictCounter interface {
	RecordVerdict(ctx context.Context, isScam bool) error
	VerdictCounts(ctx context.Context) (map[string]int64, error)
}

// ReportLister reads back stored intelligence reports
type ReportLister interface {
	ListRecent(ctx context.Context, limit int) ([]*models.IntelligenceReport, error)
}

// Handlers holds all API handlers
type Handlers struct {
	Health   *HealthHandler
	Honeypot *HoneypotHandler
	Stats    *StatsHandler
	Patterns *PatternsHandler
	Reports  *ReportsHandler
}

// Dependencies holds dependencies for handlers. Optional interfaces must be
// left nil, not set to a typed nil pointer, when the backing store is disabled.
type Dependencies struct {
	Orchestrator *honeypot.Orchestrator
	Library      *honeypot.PatternLibrary
	Stats        *honeypot.StatsCollector
	Reporter     *services.IntelReporter
	Verdicts     VerdictCounter
	Reports      ReportLister
	Checks       map[string]Pinger
	Metrics      *metrics.Metrics
	MaxBodyBytes int64
	Version      string
	Logger       *logger.Logger
}

// NewHandlers creates all handlers
func NewHandlers(deps Dependencies) *Handlers {
	if deps.Stats == nil {
		deps.Stats = honeypot.NewStatsCollector()
	}
	return &Handlers{
		Health:   NewHealthHandler(deps.Checks, deps.Version, deps.Logger),
		Honeypot: NewHoneypotHandler(deps),
		Stats:    NewStatsHandler(deps.Stats, deps.Verdicts, deps.Logger),
		Patterns: NewPatternsHandler(deps.Library),
		Reports:  NewReportsHandler(deps.Reports, deps.Logger),
	}
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
