// Package postgres persists evidence entries in PostgreSQL.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cointribute/internal/oracle/evidence"
)

// Store is the pgx-backed evidence store. It is pure I/O; key construction
// and migration policy live in the evidence service.
type Store struct {
	pool *pgxpool.Pool
}

var _ evidence.Store = (*Store)(nil)

// New wraps an existing connection pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// EnsureSchema creates the evidence table when missing. Called once at
// startup; the schema is a single flat mapping so full migrations would be
// overkill.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS evidence_entries (
			key        TEXT PRIMARY KEY,
			urls       JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`)
	if err != nil {
		return fmt.Errorf("ensure evidence schema: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, key string) ([]string, bool, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT urls FROM evidence_entries WHERE key = $1`, key).Scan(&raw)
	if err != nil {
		if err == pgx.ErrNoRows {
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
	_, err = s.pool.Exec(ctx, `
		INSERT INTO evidence_entries (key, urls, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET urls = EXCLUDED.urls, updated_at = now()
	`, key, raw)
	if err != nil {
		return fmt.Errorf("put evidence entry: %w", err)
	}
	return nil
}

// Migrate upserts the entity entry and deletes the wallet entry inside one
// transaction, which is what makes the key handover atomic and idempotent.
func (s *Store) Migrate(ctx context.Context, fromKey, toKey string, urls []string) error {
	raw, err := json.Marshal(urls)
	if err != nil {
		return fmt.Errorf("encode evidence urls: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin evidence migration: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		INSERT INTO evidence_entries (key, urls, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET urls = EXCLUDED.urls, updated_at = now()
	`, toKey, raw); err != nil {
		return fmt.Errorf("write entity entry: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM evidence_entries WHERE key = $1`, fromKey); err != nil {
		return fmt.Errorf("remove wallet entry: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit evidence migration: %w", err)
	}
	return nil
}
