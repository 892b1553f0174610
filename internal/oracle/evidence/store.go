// Package evidence correlates uploaded evidence URLs with a submitter wallet
// before registration and with the registry identifier afterwards.
package evidence

import (
	"context"
	"fmt"
	"strings"
)

// WalletKey builds the pre-registration key for a submitter address.
func WalletKey(address string) string {
	return "wallet:" + strings.ToLower(address)
}

// EntityKey builds the post-registration key for a registry identifier.
func EntityKey(id uint64) string {
	return fmt.Sprintf("entity:%d", id)
}

// Store is the durable key -> ordered-URL-list mapping. Implementations must
// tolerate concurrent readers during a write; writes themselves are
// serialized through the single owning worker.
type Store interface {
	// Get returns the URL list for a key, or ok=false when absent.
	Get(ctx context.Context, key string) (urls []string, ok bool, err error)

	// Put stores the URL list under a key, replacing any previous value.
	Put(ctx context.Context, key string, urls []string) error

	// Migrate writes toKey and removes fromKey as one durable update.
	Migrate(ctx context.Context, fromKey, toKey string, urls []string) error
}
