package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"honeypot-lab/internal/domain/models"
	"honeypot-lab/internal/infrastructure/database"
)

// IntelligenceRepository handles intelligence report persistence
type IntelligenceRepository struct {
	db database.DBTX
}

// NewIntelligenceRepository creates a new intelligence repository
func NewIntelligenceRepository(db database.DBTX) *IntelligenceRepository {
	return &IntelligenceRepository{db: db}
}

// Create inserts a new report
func (r *IntelligenceRepository) Create(ctx context.Context, report *models.IntelligenceReport) error {
	if report.ID == uuid.Nil {
		report.ID = uuid.New()
	}
	if report.CreatedAt.IsZero() {
		report.CreatedAt = time.Now().UTC()
	}

	intel, err := json.Marshal(report.Intelligence)
	if err != nil {
		return fmt.Errorf("failed to marshal intelligence: %w", err)
	}

	keywords := report.MatchedKeywords
	if keywords == nil {
		keywords = []string{}
	}

	query := `
		INSERT INTO intelligence_reports (
			id, conversation_id, confidence, matched_keywords,
			turn_count, message, intelligence, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err = r.db.Exec(ctx, query,
		report.ID, report.ConversationID, report.Confidence, keywords,
		report.TurnCount, report.Message, intel, report.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create intelligence report: %w", err)
	}

	return nil
}

// ListRecent returns the newest reports first
func (r *IntelligenceRepository) ListRecent(ctx context.Context, limit int) ([]*models.IntelligenceReport, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}

	query := `
		SELECT id, conversation_id, confidence, matched_keywords,
			   turn_count, message, intelligence, created_at
		FROM intelligence_reports
		ORDER BY created_at DESC
		LIMIT $1`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list intelligence reports: %w", err)
	}
	defer rows.Close()

	var reports []*models.IntelligenceReport
	for rows.Next() {
		var (
			report models.IntelligenceReport
			intel  []byte
		)
		if err := rows.Scan(
			&report.ID, &report.ConversationID, &report.Confidence, &report.MatchedKeywords,
			&report.TurnCount, &report.Message, &intel, &report.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan intelligence report: %w", err)
		}

		report.Intelligence = models.NewIntelligenceRecord()
		if err := json.Unmarshal(intel, &report.Intelligence); err != nil {
			return nil, fmt.Errorf("failed to decode intelligence for report %s: %w", report.ID, err)
		}
		reports = append(reports, &report)
	}

	return reports, rows.Err()
}
