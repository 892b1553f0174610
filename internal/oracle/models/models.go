package models

import (
	"math/big"
	"time"

	"github.com/google/uuid"
)

// CharityStatus mirrors the on-chain lifecycle enum. The registry owns all
// transitions; the oracle only ever reads status and requests a decision.
type CharityStatus uint8

const (
	StatusPending CharityStatus = iota
	StatusApproved
	StatusRejected
	StatusSuspended
)

func (s CharityStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusApproved:
		return "approved"
	case StatusRejected:
		return "rejected"
	case StatusSuspended:
		return "suspended"
	default:
		return "unknown"
	}
}

// Charity is the registry record as read from the contract. Read-only to the
// oracle; Score is always in [0,100].
type Charity struct {
	ID             uint64
	Name           string
	Description    string
	EvidenceRef    string // IPFS hash or full URL of the supporting document
	Wallet         string
	Score          uint8
	Status         CharityStatus
	RegisteredAt   time.Time
	DecidedAt      time.Time
	DecidedBy      string
	TotalDonations *big.Int
	DonorCount     uint64
	FundingGoal    *big.Int
	Deadline       time.Time
	IsActive       bool
}

// JobOrigin records which discovery path produced a verification job.
type JobOrigin string

const (
	OriginEvent   JobOrigin = "event"
	OriginBacklog JobOrigin = "backlog"
)

// JobState tracks a job through the queue and pipeline. At most one job per
// charity may be in StateScoring or StateSubmitting at a time; the queue's
// in-flight set enforces that.
type JobState string

const (
	StateQueued     JobState = "queued"
	StateScoring    JobState = "scoring"
	StateSubmitting JobState = "submitting"
	StateDone       JobState = "done"
	StateFailed     JobState = "failed"
)

// VerificationJob is the transient unit of work flowing from discovery to
// submission. It is never persisted; a lost job is recovered by the next
// backlog scan.
type VerificationJob struct {
	ID         uuid.UUID
	CharityID  uint64
	Origin     JobOrigin
	Attempt    int
	State      JobState
	EnqueuedAt time.Time
}

// NewVerificationJob builds a queued job for a charity identifier.
func NewVerificationJob(charityID uint64, origin JobOrigin) VerificationJob {
	return VerificationJob{
		ID:         uuid.New(),
		CharityID:  charityID,
		Origin:     origin,
		State:      StateQueued,
		EnqueuedAt: time.Now(),
	}
}

// ScoreBreakdown carries every stage output plus the aggregated result. It
// lives only long enough to be handed to the submitter and audited.
type ScoreBreakdown struct {
	BaseScore      int
	Reasoning      string
	Flags          []string
	PresenceFound  bool
	DocumentValid  bool
	ImageScore     int
	ImageValid     bool
	ImageReasoning string
	FinalScore     int
	Approved       bool
}
