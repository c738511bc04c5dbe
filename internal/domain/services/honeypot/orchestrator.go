package honeypot

import (
	"math"
	"time"

	"honeypot-lab/internal/domain/models"
)

// TurnOutcome is the orchestrator result plus the detection details the
// transport layer needs for logging and reporting
type TurnOutcome struct {
	Response  models.TurnResponse
	Detection models.DetectionResult
	Elapsed   time.Duration
}

// Orchestrator combines classifier, extractor and reply selector into one
// response per turn. It holds no per-conversation state and is safe for
// concurrent use.
type Orchestrator struct {
	classifier *Classifier
	extractor  *Extractor
	replies    *ReplySelector
}

// NewOrchestrator creates a new turn orchestrator
func NewOrchestrator(classifier *Classifier, extractor *Extractor, replies *ReplySelector) *Orchestrator {
	return &Orchestrator{
		classifier: classifier,
		extractor:  extractor,
		replies:    replies,
	}
}

// HandleTurn processes one inbound message against caller-supplied history
func (o *Orchestrator) HandleTurn(message string, history []models.ConversationTurn) models.TurnResponse {
	return o.Evaluate(message, history).Response
}

// Evaluate runs the pipeline and returns the response with its detection details.
// Extraction is skipped entirely for benign messages.
func (o *Orchestrator) Evaluate(message string, history []models.ConversationTurn) *TurnOutcome {
	start := time.Now()

	detection := o.classifier.Classify(message)

	var (
		reply        string
		intelligence models.IntelligenceRecord
	)
	if detection.IsScam {
		intelligence = o.extractor.Extract(message)
		reply = o.replies.Select(len(history))
	} else {
		intelligence = models.NewIntelligenceRecord()
		reply = o.replies.Neutral()
	}

	elapsed := time.Since(start)

	return &TurnOutcome{
		Response: models.TurnResponse{
			IsScam:         detection.IsScam,
			Confidence:     roundConfidence(detection.Confidence),
			AgentActivated: detection.IsScam,
			ReplyMessage:   reply,
			EngagementMetrics: models.EngagementMetrics{
				TurnCount:      len(history) + 1,
				ResponseTimeMs: elapsed.Milliseconds(),
			},
			ExtractedIntelligence: intelligence,
		},
		Detection: detection,
		Elapsed:   elapsed,
	}
}

func roundConfidence(c float64) float64 {
	return math.Round(c*100) / 100
}
