// Package worker runs the verification loop: dequeue, re-check, assemble
// evidence, score, hand off to the submitter.
package worker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"cointribute/internal/audit"
	"cointribute/internal/chain"
	"cointribute/internal/oracle/metrics"
	"cointribute/internal/oracle/models"
	"cointribute/internal/oracle/pipeline"
	"cointribute/internal/oracle/queue"
	"cointribute/internal/oracle/submitter"
)

// Scorer is the pipeline surface the worker needs.
type Scorer interface {
	Score(ctx context.Context, in pipeline.Input) (models.ScoreBreakdown, error)
}

// Sink accepts finished verifications for on-chain submission.
type Sink interface {
	Enqueue(ctx context.Context, result submitter.Result) error
}

// Pool runs a fixed number of verification workers over the shared queue.
type Pool struct {
	queue    *queue.Queue
	reader   chain.Reader
	evidence EvidenceSource
	scorer   Scorer
	sink     Sink
	recorder audit.Recorder
	metrics  *metrics.Metrics
	logger   *slog.Logger
	count    int
}

// EvidenceSource assembles evidence URLs for a job.
type EvidenceSource interface {
	ForJob(ctx context.Context, id uint64, wallet string) ([]string, error)
}

func NewPool(q *queue.Queue, reader chain.Reader, ev EvidenceSource, scorer Scorer, sink Sink, recorder audit.Recorder, m *metrics.Metrics, count int, logger *slog.Logger) *Pool {
	if count <= 0 {
		count = 2
	}
	return &Pool{
		queue:    q,
		reader:   reader,
		evidence: ev,
		scorer:   scorer,
		sink:     sink,
		recorder: recorder,
		metrics:  m,
		logger:   logger,
		count:    count,
	}
}

// Run blocks until ctx ends, keeping count workers dequeuing.
func (p *Pool) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < p.count; i++ {
		g.Go(func() error {
			for {
				job, err := p.queue.Dequeue(gctx)
				if err != nil {
					return err
				}
				p.process(gctx, job)
			}
		})
	}
	return g.Wait()
}

// process runs one job end to end. Failures release the identifier so a
// later backlog pass can retry the charity from scratch; a successful score
// transfers the identifier to the submitter, which releases it after the
// write resolves.
func (p *Pool) process(ctx context.Context, job models.VerificationJob) {
	p.metrics.JobsEnqueued.WithLabelValues(string(job.Origin)).Inc()
	p.metrics.ActiveJobs.Set(float64(p.queue.Active()))
	defer func() { p.metrics.ActiveJobs.Set(float64(p.queue.Active())) }()

	log := p.logger.With("charity_id", job.CharityID, "origin", job.Origin, "job_id", job.ID)

	charity, err := p.reader.Charity(ctx, job.CharityID)
	if err != nil {
		log.Warn("fetch charity for scoring", "error", err)
		p.fail(job)
		return
	}

	// Decided records are never re-verified; the registration may have been
	// resolved between enqueue and now.
	if charity.Status != models.StatusPending {
		log.Info("charity no longer pending, skipping", "status", charity.Status.String())
		p.metrics.JobsCompleted.WithLabelValues("skipped").Inc()
		p.queue.Release(job.CharityID)
		return
	}

	urls, err := p.evidence.ForJob(ctx, job.CharityID, charity.Wallet)
	if err != nil {
		// Score without images rather than stalling the charity on a
		// storage hiccup; the document probe still runs off-chain data.
		log.Warn("assemble evidence", "error", err)
		urls = nil
	}

	job.State = models.StateScoring
	start := time.Now()

	breakdown, err := p.scorer.Score(ctx, pipeline.Input{Charity: charity, ImageURLs: urls})
	if err != nil {
		if failure, ok := models.AsStageFailure(err); ok {
			log.Error("scoring stage failed", "stage", failure.Stage, "kind", failure.Kind, "error", failure.Err)
		} else if !errors.Is(err, context.Canceled) {
			log.Error("scoring failed", "error", err)
		}
		p.fail(job)
		return
	}
	p.metrics.ObservePipeline(start)

	log.Info("verification completed",
		"score", breakdown.FinalScore,
		"approved", breakdown.Approved,
		"base", breakdown.BaseScore,
		"presence", breakdown.PresenceFound,
		"document", breakdown.DocumentValid,
		"image_score", breakdown.ImageScore,
		"flags", len(breakdown.Flags),
	)
	p.recorder.Record(ctx, audit.Event{
		Type:      audit.EventVerificationCompleted,
		CharityID: job.CharityID,
		Detail: map[string]any{
			"score":     breakdown.FinalScore,
			"approved":  breakdown.Approved,
			"base":      breakdown.BaseScore,
			"presence":  breakdown.PresenceFound,
			"document":  breakdown.DocumentValid,
			"image":     breakdown.ImageScore,
			"flags":     breakdown.Flags,
			"reasoning": breakdown.Reasoning,
		},
	})

	job.State = models.StateSubmitting
	if err := p.sink.Enqueue(ctx, submitter.Result{Job: job, Breakdown: breakdown}); err != nil {
		log.Warn("handoff to submitter abandoned", "error", err)
		p.fail(job)
	}
}

func (p *Pool) fail(job models.VerificationJob) {
	job.State = models.StateFailed
	p.metrics.JobsCompleted.WithLabelValues("failed").Inc()
	p.queue.Release(job.CharityID)
}
