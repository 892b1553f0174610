// Package scanner reconciles the full registry against the work queue. The
// event stream gives liveness; the scan gives completeness.
package scanner

import (
	"context"
	"log/slog"
	"time"

	"cointribute/internal/audit"
	"cointribute/internal/chain"
	"cointribute/internal/oracle/models"
	"cointribute/internal/oracle/queue"
)

// Scanner walks every registry record and enqueues the ones still awaiting a
// decision. One bad record never aborts the pass.
type Scanner struct {
	reader   chain.Reader
	queue    *queue.Queue
	recorder audit.Recorder
	logger   *slog.Logger

	// pace spaces record fetches to respect upstream rate limits.
	pace     time.Duration
	interval time.Duration
}

// Config tunes scan cadence. Zero values disable pacing and periodic rescans
// respectively; the startup scan always runs.
type Config struct {
	Pace     time.Duration
	Interval time.Duration
}

func New(reader chain.Reader, q *queue.Queue, recorder audit.Recorder, cfg Config, logger *slog.Logger) *Scanner {
	return &Scanner{
		reader:   reader,
		queue:    q,
		recorder: recorder,
		logger:   logger,
		pace:     cfg.Pace,
		interval: cfg.Interval,
	}
}

// Run performs the startup scan and then rescans on the configured interval.
func (s *Scanner) Run(ctx context.Context) error {
	if _, err := s.ScanOnce(ctx); err != nil {
		s.logger.Error("startup backlog scan", "error", err)
	}
	if s.interval <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := s.ScanOnce(ctx); err != nil {
				s.logger.Error("backlog scan", "error", err)
			}
		}
	}
}

// ScanOnce walks the registry once and reports how many jobs it enqueued.
// Per-record failures are logged and skipped; only a failure to read the
// record count fails the pass.
func (s *Scanner) ScanOnce(ctx context.Context) (int, error) {
	total, err := s.reader.TotalCharities(ctx)
	if err != nil {
		return 0, err
	}
	s.logger.Info("backlog scan started", "total", total)

	enqueued := 0
	for id := uint64(0); id < total; id++ {
		if ctx.Err() != nil {
			return enqueued, ctx.Err()
		}

		charity, err := s.reader.Charity(ctx, id)
		if err != nil {
			s.logger.Warn("fetch registry record", "charity_id", id, "error", err)
			continue
		}
		if charity.Status != models.StatusPending {
			continue
		}

		if s.queue.Enqueue(id, models.OriginBacklog) {
			enqueued++
			s.recorder.Record(ctx, audit.Event{
				Type:      audit.EventCharityDiscovered,
				CharityID: id,
				Detail: map[string]any{
					"origin": string(models.OriginBacklog),
					"name":   charity.Name,
				},
			})
		}

		if s.pace > 0 && id+1 < total {
			select {
			case <-ctx.Done():
				return enqueued, ctx.Err()
			case <-time.After(s.pace):
			}
		}
	}

	s.logger.Info("backlog scan finished", "total", total, "enqueued", enqueued)
	return enqueued, nil
}
