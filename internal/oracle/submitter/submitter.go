// Package submitter owns the on-chain write path. One goroutine, one signing
// account, one transaction at a time: every submission blocks until confirmed
// before the next result is accepted, so nonce ordering needs no coordination.
package submitter

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"cointribute/internal/audit"
	"cointribute/internal/chain"
	"cointribute/internal/oracle/metrics"
	"cointribute/internal/oracle/models"
	"cointribute/internal/oracle/queue"
)

// Result is a finished verification handed over by a worker.
type Result struct {
	Job       models.VerificationJob
	Breakdown models.ScoreBreakdown
}

// Config tunes the retry envelope.
type Config struct {
	MaxAttempts uint64        // total attempts per job, default 3
	MaxInterval time.Duration // backoff cap, default 30s
	Budget      time.Duration // wall-clock budget per job, default 5m
	BufferSize  int
}

func (c Config) withDefaults() Config {
	if c.MaxAttempts == 0 {
		c.MaxAttempts = 3
	}
	if c.MaxInterval <= 0 {
		c.MaxInterval = 30 * time.Second
	}
	if c.Budget <= 0 {
		c.Budget = 5 * time.Minute
	}
	if c.BufferSize <= 0 {
		c.BufferSize = 64
	}
	return c
}

// Submitter serializes confirmed writes to the registry.
type Submitter struct {
	writer   chain.Writer
	strategy DecisionStrategy
	queue    *queue.Queue
	recorder audit.Recorder
	metrics  *metrics.Metrics
	logger   *slog.Logger
	cfg      Config
	results  chan Result
}

func New(writer chain.Writer, strategy DecisionStrategy, q *queue.Queue, recorder audit.Recorder, m *metrics.Metrics, cfg Config, logger *slog.Logger) *Submitter {
	cfg = cfg.withDefaults()
	return &Submitter{
		writer:   writer,
		strategy: strategy,
		queue:    q,
		recorder: recorder,
		metrics:  m,
		logger:   logger,
		cfg:      cfg,
		results:  make(chan Result, cfg.BufferSize),
	}
}

// Enqueue hands a finished job to the writer, blocking if the buffer is full.
func (s *Submitter) Enqueue(ctx context.Context, result Result) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case s.results <- result:
		return nil
	}
}

// Run consumes results until ctx ends. A submission already started is
// finished under the per-job budget even across shutdown, so a score update
// is never left without its decision.
func (s *Submitter) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case result := <-s.results:
			s.submit(ctx, result)
		}
	}
}

func (s *Submitter) submit(ctx context.Context, result Result) {
	defer s.queue.Release(result.Job.CharityID)

	// Detached from the parent so an in-flight score+decision pair is not
	// severed by shutdown; the budget bounds how long that can take.
	jctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.Budget)
	defer cancel()

	start := time.Now()
	attempt := 0

	policy := backoff.NewExponentialBackOff()
	policy.MaxInterval = s.cfg.MaxInterval
	policy.MaxElapsedTime = s.cfg.Budget

	operation := func() error {
		attempt++
		if attempt > 1 {
			s.metrics.SubmissionRetries.Inc()
		}
		return s.strategy.Submit(jctx, s.writer, result.Job.CharityID, result.Breakdown)
	}

	err := backoff.Retry(operation, backoff.WithContext(
		backoff.WithMaxRetries(policy, s.cfg.MaxAttempts-1), jctx))
	if err != nil {
		s.logger.Error("submission exhausted retries",
			"charity_id", result.Job.CharityID,
			"attempts", attempt,
			"error", err,
		)
		s.metrics.JobsCompleted.WithLabelValues("failed").Inc()
		s.recorder.Record(jctx, audit.Event{
			Type:      audit.EventSubmissionFailed,
			CharityID: result.Job.CharityID,
			Detail: map[string]any{
				"attempts": attempt,
				"score":    result.Breakdown.FinalScore,
				"error":    err.Error(),
			},
		})
		return
	}

	s.metrics.ObserveSubmission(start)
	s.metrics.JobsCompleted.WithLabelValues("done").Inc()
	s.metrics.FinalScore.Observe(float64(result.Breakdown.FinalScore))

	s.logger.Info("decision submitted",
		"charity_id", result.Job.CharityID,
		"score", result.Breakdown.FinalScore,
		"approved", result.Breakdown.Approved,
		"strategy", s.strategy.Name(),
		"attempts", attempt,
	)
	s.recorder.Record(jctx, audit.Event{
		Type:      audit.EventDecisionSubmitted,
		CharityID: result.Job.CharityID,
		Detail: map[string]any{
			"score":    result.Breakdown.FinalScore,
			"approved": result.Breakdown.Approved,
			"strategy": s.strategy.Name(),
		},
	})
}

// DecisionStrategy maps a breakdown onto the registry's protocol variant.
type DecisionStrategy interface {
	Name() string
	Submit(ctx context.Context, writer chain.Writer, id uint64, b models.ScoreBreakdown) error
}

// ExplicitDecision writes the score and then an explicit approve or reject
// transaction. Registries on this variant hold records Pending until told.
type ExplicitDecision struct{}

func (ExplicitDecision) Name() string { return "explicit" }

func (ExplicitDecision) Submit(ctx context.Context, writer chain.Writer, id uint64, b models.ScoreBreakdown) error {
	if _, err := writer.UpdateScore(ctx, id, uint8(b.FinalScore)); err != nil {
		return fmt.Errorf("update score: %w", err)
	}
	if b.Approved {
		if _, err := writer.Approve(ctx, id); err != nil {
			return fmt.Errorf("approve: %w", err)
		}
		return nil
	}
	if _, err := writer.Reject(ctx, id); err != nil {
		return fmt.Errorf("reject: %w", err)
	}
	return nil
}

// AutoDecision writes only the score; the contract compares it to its own
// threshold and transitions the record itself.
type AutoDecision struct{}

func (AutoDecision) Name() string { return "auto" }

func (AutoDecision) Submit(ctx context.Context, writer chain.Writer, id uint64, b models.ScoreBreakdown) error {
	if _, err := writer.UpdateScore(ctx, id, uint8(b.FinalScore)); err != nil {
		return fmt.Errorf("update score: %w", err)
	}
	return nil
}

// StrategyFromName resolves a configured strategy name.
func StrategyFromName(name string) (DecisionStrategy, error) {
	switch name {
	case "", "explicit":
		return ExplicitDecision{}, nil
	case "auto":
		return AutoDecision{}, nil
	default:
		return nil, fmt.Errorf("unknown decision strategy %q", name)
	}
}
