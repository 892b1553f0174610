package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Recorder accepts events from domain code. Implementations must never block
// the caller; auditing rides alongside verification, it does not gate it.
type Recorder interface {
	Record(ctx context.Context, event Event)
}

// NopRecorder discards every event.
type NopRecorder struct{}

func (NopRecorder) Record(context.Context, Event) {}

// Worker buffers events on a channel and drains them to the store, and to the
// publisher when one is configured. A full buffer drops the event with a
// warning rather than stalling the pipeline.
type Worker struct {
	store     Store
	publisher Publisher
	inbox     chan Event
	logger    *slog.Logger
}

// NewWorker builds a worker with the given buffer size.
func NewWorker(store Store, publisher Publisher, buffer int, logger *slog.Logger) *Worker {
	if buffer <= 0 {
		buffer = 256
	}
	return &Worker{
		store:     store,
		publisher: publisher,
		inbox:     make(chan Event, buffer),
		logger:    logger,
	}
}

// Record stamps and enqueues the event without blocking.
func (w *Worker) Record(_ context.Context, event Event) {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	select {
	case w.inbox <- event:
	default:
		w.logger.Warn("audit buffer full, dropping event",
			"type", event.Type,
			"charity_id", event.CharityID,
		)
	}
}

// Run drains the inbox until ctx ends, then flushes whatever is buffered.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			w.drain()
			return ctx.Err()
		case event := <-w.inbox:
			w.persist(ctx, event)
		}
	}
}

func (w *Worker) drain() {
	// Bounded by buffer size; use a fresh context so shutdown still flushes.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for {
		select {
		case event := <-w.inbox:
			w.persist(ctx, event)
		default:
			return
		}
	}
}

func (w *Worker) persist(ctx context.Context, event Event) {
	if err := w.store.Append(ctx, event); err != nil {
		w.logger.Error("append audit event",
			"type", event.Type,
			"charity_id", event.CharityID,
			"error", err,
		)
	}
	if w.publisher == nil {
		return
	}
	if err := w.publisher.Publish(ctx, event); err != nil {
		w.logger.Error("publish audit event",
			"type", event.Type,
			"charity_id", event.CharityID,
			"error", err,
		)
	}
}
