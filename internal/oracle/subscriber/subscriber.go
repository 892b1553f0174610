// Package subscriber feeds live registration events into the work queue.
package subscriber

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"cointribute/internal/audit"
	"cointribute/internal/chain"
	"cointribute/internal/oracle/models"
	"cointribute/internal/oracle/queue"
)

// Subscriber consumes the registration stream and enqueues verification
// jobs. It never scores or submits; discovery is its whole contract.
// Events missed while the stream is down are recovered by the backlog scan,
// so reconnecting here is about resuming liveness, not replaying history.
type Subscriber struct {
	source   chain.Subscriber
	queue    *queue.Queue
	recorder audit.Recorder
	logger   *slog.Logger
}

func New(source chain.Subscriber, q *queue.Queue, recorder audit.Recorder, logger *slog.Logger) *Subscriber {
	return &Subscriber{
		source:   source,
		queue:    q,
		recorder: recorder,
		logger:   logger,
	}
}

// Run subscribes and dispatches events until ctx ends, resubscribing with
// backoff whenever the stream drops.
func (s *Subscriber) Run(ctx context.Context) error {
	policy := backoff.NewExponentialBackOff()
	policy.MaxInterval = 30 * time.Second
	policy.MaxElapsedTime = 0 // retry forever; shutdown comes via ctx

	for {
		if err := s.consume(ctx); err != nil {
			return err
		}
		// Stream ended without a context error; wait and resubscribe.
		wait := policy.NextBackOff()
		s.logger.Warn("registration stream ended, resubscribing", "wait", wait)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

// consume runs one subscription to completion. A nil return means the stream
// closed and the caller should resubscribe.
func (s *Subscriber) consume(ctx context.Context) error {
	events, cancel, err := s.source.SubscribeRegistrations(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		s.logger.Warn("subscribe registrations", "error", err)
		return nil
	}
	defer cancel()

	s.logger.Info("registration stream connected")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case reg, ok := <-events:
			if !ok {
				return nil
			}
			s.dispatch(ctx, reg)
		}
	}
}

func (s *Subscriber) dispatch(ctx context.Context, reg chain.Registration) {
	if !s.queue.Enqueue(reg.CharityID, models.OriginEvent) {
		s.logger.Debug("registration merged into active job", "charity_id", reg.CharityID)
		return
	}

	s.logger.Info("charity registered",
		"charity_id", reg.CharityID,
		"name", reg.Name,
		"registrant", reg.Registrant,
	)
	s.recorder.Record(ctx, audit.Event{
		Type:      audit.EventCharityDiscovered,
		CharityID: reg.CharityID,
		Detail: map[string]any{
			"origin":     string(models.OriginEvent),
			"name":       reg.Name,
			"registrant": reg.Registrant,
		},
	})
}
