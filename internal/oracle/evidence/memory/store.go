// Package memory provides the in-memory evidence store used by tests and
// single-node development runs.
package memory

import (
	"context"
	"sync"

	"cointribute/internal/oracle/evidence"
)

// Store keeps evidence entries in a mutex-guarded map.
type Store struct {
	mu      sync.RWMutex
	entries map[string][]string
}

var _ evidence.Store = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{entries: make(map[string][]string)}
}

func (s *Store) Get(ctx context.Context, key string) ([]string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	urls, ok := s.entries[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]string, len(urls))
	copy(out, urls)
	return out, true, nil
}

func (s *Store) Put(ctx context.Context, key string, urls []string) error {
	stored := make([]string, len(urls))
	copy(stored, urls)
	s.mu.Lock()
	s.entries[key] = stored
	s.mu.Unlock()
	return nil
}

func (s *Store) Migrate(ctx context.Context, fromKey, toKey string, urls []string) error {
	stored := make([]string, len(urls))
	copy(stored, urls)
	s.mu.Lock()
	s.entries[toKey] = stored
	delete(s.entries, fromKey)
	s.mu.Unlock()
	return nil
}
