// Package redis persists evidence entries in Redis, for deployments that
// already run one and do not want PostgreSQL for a flat mapping.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"cointribute/internal/oracle/evidence"
)

const keyPrefix = "evidence:"

// Store is the go-redis backed evidence store.
type Store struct {
	client goredis.UniversalClient
}

var _ evidence.Store = (*Store)(nil)

// New wraps an existing client.
func New(client goredis.UniversalClient) *Store {
	return &Store{client: client}
}

func (s *Store) Get(ctx context.Context, key string) ([]string, bool, error) {
	raw, err := s.client.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get evidence entry: %w", err)
	}
	var urls []string
	if err := json.Unmarshal(raw, &urls); err != nil {
		return nil, false, fmt.Errorf("decode evidence urls: %w", err)
	}
	return urls, true, nil
}

func (s *Store) Put(ctx context.Context, key string, urls []string) error {
	raw, err := json.Marshal(urls)
	if err != nil {
		return fmt.Errorf("encode evidence urls: %w", err)
	}
	if err := s.client.Set(ctx, keyPrefix+key, raw, 0).Err(); err != nil {
		return fmt.Errorf("put evidence entry: %w", err)
	}
	return nil
}

// Migrate sets the entity entry and deletes the wallet entry in one MULTI/EXEC
// pipeline so readers never observe both keys or neither.
func (s *Store) Migrate(ctx context.Context, fromKey, toKey string, urls []string) error {
	raw, err := json.Marshal(urls)
	if err != nil {
		return fmt.Errorf("encode evidence urls: %w", err)
	}
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, keyPrefix+toKey, raw, 0)
	pipe.Del(ctx, keyPrefix+fromKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("migrate evidence entry: %w", err)
	}
	return nil
}
