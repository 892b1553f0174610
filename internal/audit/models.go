// Package audit captures the oracle's decision trail. The chain only records
// the final score and status, so discoveries, verdicts and submission
// outcomes are evented here for later review.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventType names the auditable actions.
type EventType string

const (
	EventCharityDiscovered     EventType = "charity_discovered"
	EventVerificationCompleted EventType = "verification_completed"
	EventDecisionSubmitted     EventType = "decision_submitted"
	EventSubmissionFailed      EventType = "submission_failed"
	EventEvidenceMigrated      EventType = "evidence_migrated"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	ID        uuid.UUID
	Type      EventType
	CharityID uint64
	Detail    map[string]any
	Timestamp time.Time
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByCharity(ctx context.Context, charityID uint64, limit int) ([]Event, error)
	ListRecent(ctx context.Context, limit int) ([]Event, error)
}

// Publisher fans events out to an external sink alongside the store.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close()
}
