package services

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"honeypot-lab/internal/domain/models"
	"honeypot-lab/internal/domain/services/honeypot"
	"honeypot-lab/internal/streaming"
	"honeypot-lab/pkg/logger"
)

type fakeStore struct {
	mu      sync.Mutex
	reports []*models.IntelligenceReport
	err     error
	// entered and release, when set, hold Create open until the test lets go
	entered chan struct{}
	release chan struct{}
}

func (f *fakeStore) Create(ctx context.Context, report *models.IntelligenceReport) error {
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("expected a deadline")
	}
	if f.entered != nil {
		f.entered <- struct{}{}
		<-f.release
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reports = append(f.reports, report)
	return f.err
}

func (f *fakeStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.reports)
}

type fakePublisher struct {
	mu     sync.Mutex
	events []*streaming.ScamEvent
	err    error
}

func (f *fakePublisher) PublishScamEvent(_ context.Context, event *streaming.ScamEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return f.err
}

func reporterConfig(workers, queue int) IntelReporterConfig {
	return IntelReporterConfig{WorkerCount: workers, QueueSize: queue, Timeout: time.Second}
}

func scamOutcome() *honeypot.TurnOutcome {
	intel := models.NewIntelligenceRecord()
	intel.Add(models.IntelPhoneNumbers, "9876543210")
	return &honeypot.TurnOutcome{
		Response: models.TurnResponse{
			IsScam:                true,
			Confidence:            0.7,
			EngagementMetrics:     models.EngagementMetrics{TurnCount: 2},
			ExtractedIntelligence: intel,
		},
		Detection: models.DetectionResult{IsScam: true, Confidence: 0.7, Matched: []string{"upi"}},
	}
}

func TestIntelReporter_Report(t *testing.T) {
	store := &fakeStore{}
	pub := &fakePublisher{}
	r := NewIntelReporter(store, pub, reporterConfig(1, 1), logger.NewNop())
	t.Cleanup(r.Close)

	req := models.TurnRequest{ConversationID: "c-1", Message: "pay via upi 9876543210"}
	require.NoError(t, r.Report(context.Background(), req, scamOutcome()))

	require.Len(t, store.reports, 1)
	report := store.reports[0]
	assert.Equal(t, "c-1", report.ConversationID)
	assert.Equal(t, 0.7, report.Confidence)
	assert.Equal(t, []string{"upi"}, report.MatchedKeywords)
	assert.Equal(t, 2, report.TurnCount)
	assert.Equal(t, []string{"9876543210"}, report.Intelligence.PhoneNumbers)

	require.Len(t, pub.events, 1)
	assert.Equal(t, streaming.EventTypeScamDetected, pub.events[0].Type)
	assert.Equal(t, report.ID.String(), pub.events[0].ReportID)
}

func TestIntelReporter_SkipsBenignTurns(t *testing.T) {
	store := &fakeStore{}
	r := NewIntelReporter(store, nil, reporterConfig(1, 1), logger.NewNop())
	t.Cleanup(r.Close)

	outcome := &honeypot.TurnOutcome{Response: models.TurnResponse{ExtractedIntelligence: models.NewIntelligenceRecord()}}
	require.NoError(t, r.Report(context.Background(), models.TurnRequest{}, outcome))
	assert.Empty(t, store.reports)
}

func TestIntelReporter_SurvivesCancelledCaller(t *testing.T) {
	store := &fakeStore{}
	r := NewIntelReporter(store, nil, reporterConfig(1, 1), logger.NewNop())
	t.Cleanup(r.Close)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, r.Report(ctx, models.TurnRequest{ConversationID: "c"}, scamOutcome()))
	assert.Len(t, store.reports, 1)
}

func TestIntelReporter_JoinsErrors(t *testing.T) {
	storeErr := errors.New("db down")
	pubErr := errors.New("nats down")
	r := NewIntelReporter(&fakeStore{err: storeErr}, &fakePublisher{err: pubErr}, reporterConfig(1, 1), logger.NewNop())
	t.Cleanup(r.Close)

	err := r.Report(context.Background(), models.TurnRequest{}, scamOutcome())
	require.Error(t, err)
	assert.ErrorIs(t, err, storeErr)
	assert.ErrorIs(t, err, pubErr)
}

func TestIntelReporter_Disabled(t *testing.T) {
	r := NewIntelReporter(nil, nil, IntelReporterConfig{}, logger.NewNop())
	t.Cleanup(r.Close)
	assert.False(t, r.Enabled())
	assert.NoError(t, r.Report(context.Background(), models.TurnRequest{}, scamOutcome()))
	assert.True(t, r.Submit(models.TurnRequest{}, scamOutcome()))
	r.Close()
}

func TestIntelReporter_SubmitDeliversInBackground(t *testing.T) {
	store := &fakeStore{}
	pub := &fakePublisher{}
	r := NewIntelReporter(store, pub, reporterConfig(2, 8), logger.NewNop())
	t.Cleanup(r.Close)

	for i := 0; i < 5; i++ {
		require.True(t, r.Submit(models.TurnRequest{ConversationID: "c"}, scamOutcome()))
	}
	benign := &honeypot.TurnOutcome{Response: models.TurnResponse{ExtractedIntelligence: models.NewIntelligenceRecord()}}
	require.True(t, r.Submit(models.TurnRequest{}, benign))

	assert.Eventually(t, func() bool { return store.count() == 5 }, time.Second, 5*time.Millisecond)
	r.Close()
	assert.Len(t, pub.events, 5)
}

func TestIntelReporter_SlowSinkDoesNotBlockSubmit(t *testing.T) {
	store := &fakeStore{entered: make(chan struct{}), release: make(chan struct{})}
	var mu sync.Mutex
	var failures []error
	cfg := reporterConfig(1, 1)
	cfg.OnFailure = func(err error) {
		mu.Lock()
		defer mu.Unlock()
		failures = append(failures, err)
	}
	r := NewIntelReporter(store, nil, cfg, logger.NewNop())
	t.Cleanup(r.Close)
	req := models.TurnRequest{ConversationID: "c"}

	// the only worker is stuck in the store
	require.True(t, r.Submit(req, scamOutcome()))
	<-store.entered

	// one slot of buffer, then the queue is full
	require.True(t, r.Submit(req, scamOutcome()))

	done := make(chan bool)
	go func() { done <- r.Submit(req, scamOutcome()) }()
	select {
	case accepted := <-done:
		assert.False(t, accepted)
	case <-time.After(time.Second):
		t.Fatal("Submit blocked on a full queue")
	}

	mu.Lock()
	require.Len(t, failures, 1)
	assert.ErrorIs(t, failures[0], ErrReportDropped)
	mu.Unlock()

	// Close drains the queued report before returning
	go func() {
		<-store.entered
		close(store.release)
	}()
	store.release <- struct{}{}
	r.Close()
	assert.Equal(t, 2, store.count())
}

func TestIntelReporter_DeliveryFailureCounted(t *testing.T) {
	var failures int
	var mu sync.Mutex
	cfg := reporterConfig(1, 4)
	cfg.OnFailure = func(error) {
		mu.Lock()
		defer mu.Unlock()
		failures++
	}

	var buf bytes.Buffer
	log := logger.New(logger.Config{Level: "warn", Format: "json", Output: &buf})
	r := NewIntelReporter(&fakeStore{err: errors.New("db down")}, nil, cfg, log)
	t.Cleanup(r.Close)

	require.True(t, r.Submit(models.TurnRequest{ConversationID: "c-9"}, scamOutcome()))
	r.Close()

	mu.Lock()
	assert.Equal(t, 1, failures)
	mu.Unlock()
	assert.Contains(t, buf.String(), `"error":"store: db down"`)
	assert.Contains(t, buf.String(), `"conversation_id":"c-9"`)
}

func TestIntelReporter_SubmitAfterClose(t *testing.T) {
	store := &fakeStore{}
	r := NewIntelReporter(store, nil, reporterConfig(1, 4), logger.NewNop())
	t.Cleanup(r.Close)
	r.Close()
	r.Close()

	assert.False(t, r.Submit(models.TurnRequest{}, scamOutcome()))
	assert.Zero(t, store.count())
}
