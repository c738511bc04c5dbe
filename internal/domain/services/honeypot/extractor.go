package honeypot

import (
	"honeypot-lab/internal/domain/models"
)

// Extractor harvests identifiers from message text. Each rule runs
// independently over the full text; a digit run may land in several
// categories and no arbitration happens between them.
type Extractor struct {
	patterns *PatternLibrary
}

// NewExtractor creates a new intelligence extractor
func NewExtractor(patterns *PatternLibrary) *Extractor {
	return &Extractor{patterns: patterns}
}

// Extract returns all matches per category in the order they appear
func (e *Extractor) Extract(text string) models.IntelligenceRecord {
	record := models.NewIntelligenceRecord()
	for i := range e.patterns.rules {
		rule := &e.patterns.rules[i]
		record.Add(rule.Category, rule.FindAll(text)...)
	}
	return record
}
