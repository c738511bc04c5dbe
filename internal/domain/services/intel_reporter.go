package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"honeypot-lab/internal/domain/models"
	"honeypot-lab/internal/domain/services/honeypot"
	"honeypot-lab/internal/streaming"
	"honeypot-lab/pkg/logger"
)

// ErrReportDropped is reported when a scam turn could not be queued for delivery
var ErrReportDropped = errors.New("intelligence report dropped")

// ReportStore persists intelligence reports
type ReportStore interface {
	Create(ctx context.Context, report *models.IntelligenceReport) error
}

// EventPublisher fans scam events out to downstream consumers
type EventPublisher interface {
	PublishScamEvent(ctx context.Context, event *streaming.ScamEvent) error
}

// IntelReporterConfig holds configuration for the reporter
type IntelReporterConfig struct {
	WorkerCount int
	QueueSize   int
	Timeout     time.Duration
	// OnFailure is called once per report that was dropped or failed to deliver
	OnFailure func(err error)
}

// DefaultIntelReporterConfig returns sensible defaults
func DefaultIntelReporterConfig() IntelReporterConfig {
	return IntelReporterConfig{
		WorkerCount: 2,
		QueueSize:   256,
		Timeout:     2 * time.Second,
	}
}

// reportJob is a scam turn waiting for delivery
type reportJob struct {
	req     models.TurnRequest
	outcome *honeypot.TurnOutcome
}

// IntelReporter records the intelligence gathered on scam turns. Reports are
// delivered by a bounded worker pool after the reply is sent and never change
// it; failures are only logged and counted.
type IntelReporter struct {
	store     ReportStore
	publisher EventPublisher
	timeout   time.Duration
	onFailure func(error)
	logger    *logger.Logger

	queue  chan reportJob
	wg     sync.WaitGroup
	mu     sync.RWMutex
	closed bool
}

// NewIntelReporter creates a reporter and starts its workers. store and
// publisher may be nil, in which case no workers run.
func NewIntelReporter(store ReportStore, publisher EventPublisher, cfg IntelReporterConfig, log *logger.Logger) *IntelReporter {
	defaults := DefaultIntelReporterConfig()
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = defaults.WorkerCount
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaults.QueueSize
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults.Timeout
	}

	r := &IntelReporter{
		store:     store,
		publisher: publisher,
		timeout:   cfg.Timeout,
		onFailure: cfg.OnFailure,
		logger:    log.WithComponent("intel-reporter"),
		queue:     make(chan reportJob, cfg.QueueSize),
	}

	// Start delivery workers
	if r.Enabled() {
		for i := 0; i < cfg.WorkerCount; i++ {
			r.wg.Add(1)
			go r.worker()
		}
		r.logger.Info().
			Int("workers", cfg.WorkerCount).
			Int("queue_size", cfg.QueueSize).
			Msg("intelligence report workers started")
	}

	return r
}

// Enabled reports whether any sink is configured
func (r *IntelReporter) Enabled() bool {
	return r.store != nil || r.publisher != nil
}

// Submit queues a scam turn for background delivery and never blocks. Benign
// turns are ignored. It returns false when the report was dropped because the
// queue is full or the reporter is closed.
func (r *IntelReporter) Submit(req models.TurnRequest, outcome *honeypot.TurnOutcome) bool {
	if !outcome.Detection.IsScam || !r.Enabled() {
		return true
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if !r.closed {
		select {
		case r.queue <- reportJob{req: req, outcome: outcome}:
			return true
		default:
		}
	}

	r.logger.WithError(ErrReportDropped).Warn().
		Str("conversation_id", req.ConversationID).
		Bool("closed", r.closed).
		Msg("intelligence report queue full")
	r.failed(ErrReportDropped)
	return false
}

// Close stops accepting reports and waits until queued ones are delivered
func (r *IntelReporter) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	close(r.queue)
	r.mu.Unlock()

	r.wg.Wait()
	r.logger.Info().Msg("intelligence reporter stopped")
}

// worker delivers queued reports until the queue is closed and drained
func (r *IntelReporter) worker() {
	defer r.wg.Done()

	for job := range r.queue {
		if err := r.Report(context.Background(), job.req, job.outcome); err != nil {
			r.failed(err)
		}
	}
}

func (r *IntelReporter) failed(err error) {
	if r.onFailure != nil {
		r.onFailure(err)
	}
}

// Report writes and publishes the outcome of a scam turn synchronously. Benign
// turns are ignored. The caller's cancellation is detached so a client hang-up
// does not lose the report.
func (r *IntelReporter) Report(ctx context.Context, req models.TurnRequest, outcome *honeypot.TurnOutcome) error {
	if !outcome.Detection.IsScam || !r.Enabled() {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
	defer cancel()

	report := &models.IntelligenceReport{
		ID:              uuid.New(),
		ConversationID:  req.ConversationID,
		Confidence:      outcome.Response.Confidence,
		MatchedKeywords: outcome.Detection.Matched,
		TurnCount:       outcome.Response.EngagementMetrics.TurnCount,
		Message:         req.Message,
		Intelligence:    outcome.Response.ExtractedIntelligence,
		CreatedAt:       time.Now().UTC(),
	}

	var errs []error
	if r.store != nil {
		if err := r.store.Create(ctx, report); err != nil {
			errs = append(errs, fmt.Errorf("store: %w", err))
		}
	}
	if r.publisher != nil {
		if err := r.publisher.PublishScamEvent(ctx, streaming.NewScamEvent(report)); err != nil {
			errs = append(errs, fmt.Errorf("publish: %w", err))
		}
	}

	err := errors.Join(errs...)
	if err != nil {
		r.logger.WithError(err).Warn().
			Str("conversation_id", req.ConversationID).
			Str("report_id", report.ID.String()).
			Msg("failed to report intelligence")
		return err
	}

	r.logger.Debug().
		Str("conversation_id", req.ConversationID).
		Str("report_id", report.ID.String()).
		Int("items", report.Intelligence.Total()).
		Msg("intelligence reported")
	return nil
}
