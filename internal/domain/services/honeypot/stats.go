package honeypot

import (
	"sync"

	"honeypot-lab/internal/domain/models"
)

// Stats contains in-process counters about handled turns
type Stats struct {
	TotalTurns      int64                          `json:"total_turns"`
	ScamsDetected   int64                          `json:"scams_detected"`
	AvgConfidence   float64                        `json:"avg_confidence"`
	AvgProcessingMs float64                        `json:"avg_processing_ms"`
	Extracted       map[models.IntelCategory]int64 `json:"extracted"`
}

// StatsCollector aggregates turn outcomes. It is the only mutable state shared
// between requests.
type StatsCollector struct {
	mu    sync.RWMutex
	stats Stats
}

// NewStatsCollector creates an empty collector
func NewStatsCollector() *StatsCollector {
	return &StatsCollector{
		stats: Stats{Extracted: make(map[models.IntelCategory]int64)},
	}
}

// Record folds one outcome into the running averages
func (c *StatsCollector) Record(outcome *TurnOutcome) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stats.TotalTurns++
	if outcome.Detection.IsScam {
		c.stats.ScamsDetected++
	}

	n := float64(c.stats.TotalTurns)
	c.stats.AvgConfidence = (c.stats.AvgConfidence*(n-1) + outcome.Response.Confidence) / n
	ms := float64(outcome.Elapsed.Microseconds()) / 1000
	c.stats.AvgProcessingMs = (c.stats.AvgProcessingMs*(n-1) + ms) / n

	record := outcome.Response.ExtractedIntelligence
	for _, category := range models.IntelCategories {
		if k := len(record.Get(category)); k > 0 {
			c.stats.Extracted[category] += int64(k)
		}
	}
}

// Snapshot returns a copy of the current statistics
func (c *StatsCollector) Snapshot() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := c.stats
	out.Extracted = make(map[models.IntelCategory]int64, len(c.stats.Extracted))
	for k, v := range c.stats.Extracted {
		out.Extracted[k] = v
	}
	return out
}
