package store_test

import (
	"context"
	"errors"

	"github.com/stretchr/testify/suite"

	"selfid/internal/pseudonym/models"
	"selfid/internal/pseudonym/service"
	"selfid/pkg/domain"
	"selfid/pkg/platform/sentinel"
)

// storeSuite runs the same behavior checks against every backend. Backend
// suites embed it and set store in SetupTest.
type storeSuite struct {
	suite.Suite
	store service.Store
}

var (
	alice = accountOf(0xa1)
	bob   = accountOf(0xb0)
	vera  = accountOf(0xee)
)

func accountOf(b byte) domain.AccountID {
	var a domain.AccountID
	for i := range a {
		a[i] = b
	}
	return a
}

func (s *storeSuite) TestAuthority() {
	ctx := context.Background()

	s.Run("absent before set", func() {
		_, err := s.store.Authority(ctx)
		s.True(errors.Is(err, sentinel.ErrNotFound))
	})

	s.Run("round trips", func() {
		s.Require().NoError(s.store.SetAuthority(ctx, alice))
		got, err := s.store.Authority(ctx)
		s.Require().NoError(err)
		s.Equal(alice, got)
	})
}

func (s *storeSuite) TestVerifiers() {
	ctx := context.Background()

	ok, err := s.store.IsVerifier(ctx, vera)
	s.Require().NoError(err)
	s.False(ok)

	s.Require().NoError(s.store.AddVerifier(ctx, vera))
	s.Require().NoError(s.store.AddVerifier(ctx, bob))
	ok, err = s.store.IsVerifier(ctx, vera)
	s.Require().NoError(err)
	s.True(ok)

	s.Require().NoError(s.store.RemoveVerifier(ctx, vera))
	ok, err = s.store.IsVerifier(ctx, vera)
	s.Require().NoError(err)
	s.False(ok)

	s.Require().NoError(s.store.ClearVerifiers(ctx))
	ok, err = s.store.IsVerifier(ctx, bob)
	s.Require().NoError(err)
	s.False(ok)
}

func (s *storeSuite) TestClaim() {
	ctx := context.Background()
	first := models.MustParseIdentifier("alice_01")
	second := models.MustParseIdentifier("alice_02")

	s.Run("missing entries report not found", func() {
		_, err := s.store.FindPseudonym(ctx, alice)
		s.True(errors.Is(err, sentinel.ErrNotFound))
		_, err = s.store.FindInfo(ctx, first)
		s.True(errors.Is(err, sentinel.ErrNotFound))
	})

	s.Run("first claim writes both mappings", func() {
		s.Require().NoError(s.store.Claim(ctx, alice, nil, first, models.NewInfo(alice)))

		id, err := s.store.FindPseudonym(ctx, alice)
		s.Require().NoError(err)
		s.Equal(first, id)

		info, err := s.store.FindInfo(ctx, first)
		s.Require().NoError(err)
		s.Equal(alice, info.Owner)
		s.False(info.Verified())
	})

	s.Run("replacement drops the previous identifier", func() {
		s.Require().NoError(s.store.Claim(ctx, alice, &first, second, models.NewInfo(alice)))

		id, err := s.store.FindPseudonym(ctx, alice)
		s.Require().NoError(err)
		s.Equal(second, id)

		_, err = s.store.FindInfo(ctx, first)
		s.True(errors.Is(err, sentinel.ErrNotFound))
	})
}

func (s *storeSuite) TestSaveInfo() {
	ctx := context.Background()
	id := models.MustParseIdentifier("bob_the_builder")

	s.Run("unknown identifier is not found", func() {
		err := s.store.SaveInfo(ctx, id, models.NewInfo(bob))
		s.True(errors.Is(err, sentinel.ErrNotFound))
	})

	s.Run("verification persists", func() {
		s.Require().NoError(s.store.Claim(ctx, bob, nil, id, models.NewInfo(bob)))

		info, err := s.store.FindInfo(ctx, id)
		s.Require().NoError(err)
		info.ApplyVerification(vera, 42)
		s.Require().NoError(s.store.SaveInfo(ctx, id, info))

		got, err := s.store.FindInfo(ctx, id)
		s.Require().NoError(err)
		s.Require().True(got.Verified())
		s.Equal(vera, *got.VerifiedBy)
		s.Equal(domain.BlockHeight(42), *got.VerifiedAt)
	})

	s.Run("re-claim starts unverified", func() {
		s.Require().NoError(s.store.Claim(ctx, bob, &id, id, models.NewInfo(bob)))
		got, err := s.store.FindInfo(ctx, id)
		s.Require().NoError(err)
		s.False(got.Verified())
	})
}

func (s *storeSuite) TestPurge() {
	ctx := context.Background()
	id := models.MustParseIdentifier("purged")

	s.Require().NoError(s.store.SetAuthority(ctx, alice))
	s.Require().NoError(s.store.AddVerifier(ctx, vera))
	s.Require().NoError(s.store.Claim(ctx, bob, nil, id, models.NewInfo(bob)))

	s.Require().NoError(s.store.Purge(ctx))

	authority, err := s.store.Authority(ctx)
	s.Require().NoError(err)
	s.Equal(alice, authority)

	ok, err := s.store.IsVerifier(ctx, vera)
	s.Require().NoError(err)
	s.False(ok)

	_, err = s.store.FindPseudonym(ctx, bob)
	s.True(errors.Is(err, sentinel.ErrNotFound))
	_, err = s.store.FindInfo(ctx, id)
	s.True(errors.Is(err, sentinel.ErrNotFound))
}
