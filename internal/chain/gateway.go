// Package chain defines the port through which the oracle consumes the
// charity registry contract. Implementations live in subpackages; the oracle
// core never imports an RPC client directly.
package chain

import (
	"context"
	"time"

	"cointribute/internal/oracle/models"
)

// Registration is the decoded CharityRegistered event.
type Registration struct {
	CharityID  uint64
	Registrant string
	Name       string
	Timestamp  time.Time
}

// TxHash identifies a confirmed transaction.
type TxHash string

// Reader exposes the registry's view functions.
type Reader interface {
	TotalCharities(ctx context.Context) (uint64, error)
	Charity(ctx context.Context, id uint64) (models.Charity, error)
	RequiredApprovals(ctx context.Context) (uint64, error)
	ApprovalCount(ctx context.Context, id uint64) (uint64, error)
}

// Writer exposes the registry's state-changing functions. Every call blocks
// until the transaction is confirmed, so callers get nonce ordering for free
// as long as a single goroutine owns the writer.
type Writer interface {
	UpdateScore(ctx context.Context, id uint64, score uint8) (TxHash, error)
	Approve(ctx context.Context, id uint64) (TxHash, error)
	Reject(ctx context.Context, id uint64) (TxHash, error)
	SetRequiredApprovals(ctx context.Context, n uint64) (TxHash, error)
}

// Subscriber delivers live registration events. Delivery is at-least-once
// while the stream is connected; events missed across a reconnect are only
// recovered by the next backlog scan. The returned cancel func tears down
// the subscription.
type Subscriber interface {
	SubscribeRegistrations(ctx context.Context) (<-chan Registration, func(), error)
}

// Gateway is the full contract surface the oracle consumes.
type Gateway interface {
	Reader
	Writer
	Subscriber
}
