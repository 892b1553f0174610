package evidence

import (
	"context"
	"fmt"
	"log/slog"

	"cointribute/internal/audit"
)

// Service applies the evidence keying rules on top of a Store: wallet-keyed
// entries before registration, entity-keyed afterwards, migrated exactly once.
type Service struct {
	store    Store
	recorder audit.Recorder
	logger   *slog.Logger
}

// NewService wires a Service to its backing store.
func NewService(store Store, recorder audit.Recorder, logger *slog.Logger) *Service {
	if recorder == nil {
		recorder = audit.NopRecorder{}
	}
	return &Service{store: store, recorder: recorder, logger: logger}
}

// StoreByWallet records evidence uploaded before the charity exists on-chain.
func (s *Service) StoreByWallet(ctx context.Context, address string, urls []string) error {
	if err := s.store.Put(ctx, WalletKey(address), urls); err != nil {
		return fmt.Errorf("store evidence for wallet %s: %w", address, err)
	}
	return nil
}

// GetByWallet returns wallet-keyed evidence, or nil when none exists.
func (s *Service) GetByWallet(ctx context.Context, address string) ([]string, error) {
	urls, ok, err := s.store.Get(ctx, WalletKey(address))
	if err != nil {
		return nil, fmt.Errorf("get evidence for wallet %s: %w", address, err)
	}
	if !ok {
		return nil, nil
	}
	return urls, nil
}

// StoreByEntity records evidence directly against a registry identifier.
func (s *Service) StoreByEntity(ctx context.Context, id uint64, urls []string) error {
	if err := s.store.Put(ctx, EntityKey(id), urls); err != nil {
		return fmt.Errorf("store evidence for entity %d: %w", id, err)
	}
	return nil
}

// GetByEntity returns entity-keyed evidence, or nil when none exists.
func (s *Service) GetByEntity(ctx context.Context, id uint64) ([]string, error) {
	urls, ok, err := s.store.Get(ctx, EntityKey(id))
	if err != nil {
		return nil, fmt.Errorf("get evidence for entity %d: %w", id, err)
	}
	if !ok {
		return nil, nil
	}
	return urls, nil
}

// Migrate moves a wallet-keyed entry to its entity key in one durable update.
// Idempotent: a second call finds no wallet entry and leaves the single
// entity entry in place.
func (s *Service) Migrate(ctx context.Context, address string, id uint64, urls []string) error {
	if err := s.store.Migrate(ctx, WalletKey(address), EntityKey(id), urls); err != nil {
		return fmt.Errorf("migrate evidence %s -> %d: %w", address, id, err)
	}
	if s.logger != nil {
		s.logger.InfoContext(ctx, "evidence migrated", "wallet", address, "charity_id", id, "urls", len(urls))
	}
	s.recorder.Record(ctx, audit.Event{
		Type:      audit.EventEvidenceMigrated,
		CharityID: id,
		Detail:    map[string]any{"wallet": address, "urls": len(urls)},
	})
	return nil
}

// ForJob assembles the evidence for a verification job: entity key first,
// wallet fallback with migration on the spot.
func (s *Service) ForJob(ctx context.Context, id uint64, wallet string) ([]string, error) {
	urls, err := s.GetByEntity(ctx, id)
	if err != nil {
		return nil, err
	}
	if urls != nil {
		return urls, nil
	}

	urls, err = s.GetByWallet(ctx, wallet)
	if err != nil {
		return nil, err
	}
	if urls == nil {
		return nil, nil
	}
	if err := s.Migrate(ctx, wallet, id, urls); err != nil {
		return nil, err
	}
	return urls, nil
}
