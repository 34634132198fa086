package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/suite"

	"selfid/internal/pseudonym/models"
	"selfid/internal/pseudonym/service"
	"selfid/internal/pseudonym/store"
)

var (
	_ service.Checkpointer = (*store.InMemoryStore)(nil)
	_ service.StoreTx      = (*store.BadgerTx)(nil)
	_ service.StoreTx      = (*store.RedisTx)(nil)
	_ service.StoreTx      = (*store.PostgresTx)(nil)
)

type InMemoryStoreSuite struct {
	storeSuite
	memory *store.InMemoryStore
}

func TestInMemoryStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryStoreSuite))
}

func (s *InMemoryStoreSuite) SetupTest() {
	s.memory = store.NewInMemory()
	s.store = s.memory
}

func (s *InMemoryStoreSuite) TestFindInfoReturnsCopy() {
	ctx := context.Background()
	id := models.MustParseIdentifier("copycat")
	s.Require().NoError(s.memory.Claim(ctx, alice, nil, id, models.NewInfo(alice)))

	info, err := s.memory.FindInfo(ctx, id)
	s.Require().NoError(err)
	info.ApplyVerification(vera, 7)

	stored, err := s.memory.FindInfo(ctx, id)
	s.Require().NoError(err)
	s.False(stored.Verified(), "mutating a loaded record must not write through")
}

func (s *InMemoryStoreSuite) TestCheckpointRollback() {
	ctx := context.Background()
	first := models.MustParseIdentifier("first_id")
	second := models.MustParseIdentifier("second_id")
	s.Require().NoError(s.memory.SetAuthority(ctx, alice))
	s.Require().NoError(s.memory.AddVerifier(ctx, vera))
	s.Require().NoError(s.memory.Claim(ctx, alice, nil, first, models.NewInfo(alice)))

	txCtx, rollback := s.memory.Checkpoint(ctx)
	s.Require().NoError(s.memory.Claim(txCtx, alice, &first, second, models.NewInfo(alice)))
	verified := models.NewInfo(alice)
	verified.ApplyVerification(vera, 9)
	s.Require().NoError(s.memory.SaveInfo(txCtx, second, verified))
	s.Require().NoError(s.memory.RemoveVerifier(txCtx, vera))
	s.Require().NoError(s.memory.AddVerifier(txCtx, bob))
	s.Require().NoError(s.memory.SetAuthority(txCtx, bob))
	s.Require().NoError(s.memory.Purge(txCtx))
	rollback()

	got, err := s.memory.FindPseudonym(ctx, alice)
	s.Require().NoError(err)
	s.Equal(first, got)
	info, err := s.memory.FindInfo(ctx, first)
	s.Require().NoError(err)
	s.Equal(alice, info.Owner)
	s.False(info.Verified())
	_, err = s.memory.FindInfo(ctx, second)
	s.Error(err)

	ok, err := s.memory.IsVerifier(ctx, vera)
	s.Require().NoError(err)
	s.True(ok)
	ok, err = s.memory.IsVerifier(ctx, bob)
	s.Require().NoError(err)
	s.False(ok)

	authority, err := s.memory.Authority(ctx)
	s.Require().NoError(err)
	s.Equal(alice, authority)
}

func (s *InMemoryStoreSuite) TestWritesOutsideCheckpointAreKept() {
	ctx := context.Background()
	_, rollback := s.memory.Checkpoint(ctx)
	s.Require().NoError(s.memory.AddVerifier(ctx, vera))
	rollback()

	ok, err := s.memory.IsVerifier(ctx, vera)
	s.Require().NoError(err)
	s.True(ok)
}
