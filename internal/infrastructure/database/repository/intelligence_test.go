package repository

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"honeypot-lab/internal/domain/models"
)

// execRecorder captures Exec calls; reads are not exercised here
type execRecorder struct {
	query string
	args  []any
	err   error
}

func (e *execRecorder) Exec(_ context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	e.query = query
	e.args = args
	return pgconn.NewCommandTag("INSERT 0 1"), e.err
}

func (e *execRecorder) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}

func (e *execRecorder) QueryRow(context.Context, string, ...any) pgx.Row {
	return nil
}

func TestIntelligenceRepository_Create(t *testing.T) {
	db := &execRecorder{}
	repo := NewIntelligenceRepository(db)

	intel := models.NewIntelligenceRecord()
	intel.Add(models.IntelLinks, "http://x.io")
	report := &models.IntelligenceReport{
		ConversationID: "c1",
		Confidence:     0.7,
		TurnCount:      2,
		Message:        "click link http://x.io",
		Intelligence:   intel,
	}

	require.NoError(t, repo.Create(context.Background(), report))

	assert.NotEqual(t, uuid.Nil, report.ID)
	assert.False(t, report.CreatedAt.IsZero())
	assert.Contains(t, db.query, "INSERT INTO intelligence_reports")
	require.Len(t, db.args, 8)
	assert.Equal(t, "c1", db.args[1])
	assert.Equal(t, []string{}, db.args[3])

	var stored models.IntelligenceRecord
	require.NoError(t, json.Unmarshal(db.args[6].([]byte), &stored))
	assert.Equal(t, []string{"http://x.io"}, stored.Links)
	assert.Equal(t, []string{}, stored.PhoneNumbers)
}

func TestIntelligenceRepository_CreateError(t *testing.T) {
	repo := NewIntelligenceRepository(&execRecorder{err: errors.New("connection reset")})

	err := repo.Create(context.Background(), &models.IntelligenceReport{Intelligence: models.NewIntelligenceRecord()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
}

func TestIntelligenceRepository_ListRecentError(t *testing.T) {
	repo := NewIntelligenceRepository(&execRecorder{})

	_, err := repo.ListRecent(context.Background(), 10)
	assert.Error(t, err)
}
