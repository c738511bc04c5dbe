package streaming

import (
	"time"

	"github.com/google/uuid"

	"honeypot-lab/internal/domain/models"
)

// EventType represents the type of honeypot event
type EventType string

const (
	EventTypeScamDetected EventType = "scam_detected"
)

// ScamEvent is published for every turn classified as a scam
type ScamEvent struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`

	ReportID        string                    `json:"report_id"`
	ConversationID  string                    `json:"conversation_id"`
	Confidence      float64                   `json:"confidence"`
	MatchedKeywords []string                  `json:"matched_keywords,omitempty"`
	TurnCount       int                       `json:"turn_count"`
	Intelligence    models.IntelligenceRecord `json:"intelligence"`
}

// NewScamEvent creates an event from an intelligence report
func NewScamEvent(report *models.IntelligenceReport) *ScamEvent {
	return &ScamEvent{
		ID:              uuid.New().String(),
		Type:            EventTypeScamDetected,
		Timestamp:       time.Now().UTC(),
		ReportID:        report.ID.String(),
		ConversationID:  report.ConversationID,
		Confidence:      report.Confidence,
		MatchedKeywords: report.MatchedKeywords,
		TurnCount:       report.TurnCount,
		Intelligence:    report.Intelligence,
	}
}
