package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"cointribute/internal/oracle/evidence"
)

type MemoryStoreSuite struct {
	suite.Suite
	store *Store
	ctx   context.Context
}

func TestMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(MemoryStoreSuite))
}

func (s *MemoryStoreSuite) SetupTest() {
	s.store = New()
	s.ctx = context.Background()
}

func (s *MemoryStoreSuite) TestPutGet() {
	key := evidence.WalletKey("0xABCD")
	s.Require().NoError(s.store.Put(s.ctx, key, []string{"https://a", "https://b"}))

	urls, ok, err := s.store.Get(s.ctx, key)
	s.Require().NoError(err)
	s.True(ok)
	s.Equal([]string{"https://a", "https://b"}, urls, "order must be preserved")

	_, ok, err = s.store.Get(s.ctx, evidence.EntityKey(1))
	s.Require().NoError(err)
	s.False(ok)
}

func (s *MemoryStoreSuite) TestWalletKeyLowercases() {
	s.Equal(evidence.WalletKey("0xAbCd"), evidence.WalletKey("0xabcd"))
}

func (s *MemoryStoreSuite) TestMigrateIsAtomicAndIdempotent() {
	from := evidence.WalletKey("0xfeed")
	to := evidence.EntityKey(3)
	urls := []string{"https://img/1.jpg"}
	s.Require().NoError(s.store.Put(s.ctx, from, urls))

	s.Require().NoError(s.store.Migrate(s.ctx, from, to, urls))
	s.Require().NoError(s.store.Migrate(s.ctx, from, to, urls), "second migrate must be a no-op")

	_, ok, err := s.store.Get(s.ctx, from)
	s.Require().NoError(err)
	s.False(ok, "wallet entry must be gone")

	got, ok, err := s.store.Get(s.ctx, to)
	s.Require().NoError(err)
	s.True(ok)
	s.Equal(urls, got)
}

func (s *MemoryStoreSuite) TestGetReturnsCopy() {
	key := evidence.EntityKey(9)
	s.Require().NoError(s.store.Put(s.ctx, key, []string{"https://x"}))

	urls, _, err := s.store.Get(s.ctx, key)
	s.Require().NoError(err)
	urls[0] = "mutated"

	again, _, err := s.store.Get(s.ctx, key)
	s.Require().NoError(err)
	s.Equal("https://x", again[0])
}
