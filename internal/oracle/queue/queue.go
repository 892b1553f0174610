// Package queue holds the verification work queue. Its one job is the
// in-flight dedup guarantee: at most one active verification per charity
// identifier, with duplicate discoveries merged into the active one.
package queue

import (
	"context"
	"log/slog"
	"sync"

	"cointribute/internal/oracle/models"
)

const defaultCapacity = 256

// Queue is a bounded work queue with an active-identifier set. An identifier
// stays active from enqueue until Release, covering the queued, scoring and
// submitting states.
type Queue struct {
	mu     sync.Mutex
	active map[uint64]struct{}
	jobs   chan models.VerificationJob
	logger *slog.Logger
}

// New builds a queue. capacity <= 0 selects the default.
func New(capacity int, logger *slog.Logger) *Queue {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &Queue{
		active: make(map[uint64]struct{}),
		jobs:   make(chan models.VerificationJob, capacity),
		logger: logger,
	}
}

// Enqueue adds a job for the charity unless one is already queued or
// in-flight, in which case the request is merged and dropped. Returns whether
// a new job was accepted.
func (q *Queue) Enqueue(charityID uint64, origin models.JobOrigin) bool {
	q.mu.Lock()
	if _, dup := q.active[charityID]; dup {
		q.mu.Unlock()
		return false
	}
	q.active[charityID] = struct{}{}
	q.mu.Unlock()

	job := models.NewVerificationJob(charityID, origin)
	select {
	case q.jobs <- job:
		return true
	default:
		// Full queue: release the identifier so a later backlog pass can
		// pick the charity up again.
		q.Release(charityID)
		if q.logger != nil {
			q.logger.Warn("queue full, dropping job", "charity_id", charityID, "origin", origin)
		}
		return false
	}
}

// Dequeue blocks until a job is available or the context ends.
func (q *Queue) Dequeue(ctx context.Context) (models.VerificationJob, error) {
	select {
	case <-ctx.Done():
		return models.VerificationJob{}, ctx.Err()
	case job := <-q.jobs:
		return job, nil
	}
}

// Release removes a charity from the active set once its job resolved (done
// or failed), making the identifier eligible again on the next pass.
func (q *Queue) Release(charityID uint64) {
	q.mu.Lock()
	delete(q.active, charityID)
	q.mu.Unlock()
}

// Active reports how many identifiers are queued or in-flight.
func (q *Queue) Active() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.active)
}

// Pending reports how many jobs are waiting to be dequeued.
func (q *Queue) Pending() int {
	return len(q.jobs)
}
