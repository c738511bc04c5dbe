package honeypot

import (
	"strings"

	"honeypot-lab/internal/domain/models"
)

// ClassifierConfig holds the confidence curve: min(Base + n*Step, Cap)
type ClassifierConfig struct {
	Base float64
	Step float64
	Cap  float64
}

// DefaultClassifierConfig returns the stock confidence curve
func DefaultClassifierConfig() ClassifierConfig {
	return ClassifierConfig{
		Base: 0.6,
		Step: 0.1,
		Cap:  0.99,
	}
}

// Classifier scores a message against the library's indicator phrases
type Classifier struct {
	patterns *PatternLibrary
	config   ClassifierConfig
}

// NewClassifier creates a new keyword classifier
func NewClassifier(patterns *PatternLibrary, config ClassifierConfig) *Classifier {
	return &Classifier{
		patterns: patterns,
		config:   config,
	}
}

// Classify counts the distinct indicator phrases contained in text.
// It never fails; empty text yields a non-scam verdict at base confidence.
func (c *Classifier) Classify(text string) models.DetectionResult {
	contentLower := strings.ToLower(text)

	var matched []string
	for _, keyword := range c.patterns.keywords {
		if strings.Contains(contentLower, keyword) {
			matched = append(matched, keyword)
		}
	}

	return models.DetectionResult{
		IsScam:     len(matched) > 0,
		Confidence: c.confidence(len(matched)),
		Matched:    matched,
	}
}

func (c *Classifier) confidence(count int) float64 {
	score := c.config.Base + float64(count)*c.config.Step
	if score > c.config.Cap {
		score = c.config.Cap
	}
	return score
}
