package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zerolog.Level{
		"debug":   zerolog.DebugLevel,
		"warning": zerolog.WarnLevel,
		"WARN":    zerolog.WarnLevel,
		"trace":   zerolog.TraceLevel,
		"error":   zerolog.ErrorLevel,
		"bogus":   zerolog.InfoLevel,
		"":        zerolog.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, parseLevel(in), "level %q", in)
	}
}

func TestWithComponentAndConversation(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "info", Format: "json", Output: &buf})

	log.WithComponent("orchestrator").WithConversationID("c-1").Info().Msg("turn handled")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "orchestrator", entry["component"])
	assert.Equal(t, "c-1", entry["conversation_id"])
	assert.Equal(t, "turn handled", entry["message"])
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "warn", Format: "json", Output: &buf})

	log.Info().Msg("dropped")
	assert.Zero(t, buf.Len())

	log.Warn().Msg("kept")
	assert.Contains(t, buf.String(), "kept")
}

func TestRequestAndErrorFields(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "info", Format: "json", Service: "honeypot-lab", Output: &buf})

	log.WithRequestID("req-7").WithError(errors.New("db down")).Warn().Msg("report failed")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "honeypot-lab", entry["service"])
	assert.Equal(t, "req-7", entry["request_id"])
	assert.Equal(t, "db down", entry["error"])
}

func TestWithRequestID_Empty(t *testing.T) {
	log := NewNop()
	assert.Same(t, log, log.WithRequestID(""))
}
