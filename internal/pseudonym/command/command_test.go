package command_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/suite"

	"selfid/internal/chain"
	"selfid/internal/pseudonym/command"
	"selfid/internal/pseudonym/models"
	"selfid/internal/pseudonym/service"
	"selfid/internal/pseudonym/store"
	"selfid/pkg/domain"
)

type DispatchSuite struct {
	suite.Suite
	upgrader *chain.CodeRegistry
	registry *service.Service
}

var (
	authority = domain.AccountID{1}
	verifier  = domain.AccountID{2}
	holder    = domain.AccountID{3}
)

func TestDispatchSuite(t *testing.T) {
	suite.Run(t, new(DispatchSuite))
}

func (s *DispatchSuite) SetupTest() {
	s.upgrader = chain.NewCodeRegistry(domain.CodeHash{})
	svc, err := service.New(store.NewInMemory(),
		service.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		service.WithUpgrader(s.upgrader),
		service.WithClock(chain.Fixed(1)),
	)
	s.Require().NoError(err)
	_, err = svc.Instantiate(context.Background(), authority)
	s.Require().NoError(err)
	s.registry = svc
}

func (s *DispatchSuite) dispatch(caller domain.AccountID, cmd command.Command) (command.Result, error) {
	return command.Dispatch(context.Background(), s.registry, caller, cmd)
}

func (s *DispatchSuite) TestScenario() {
	res, err := s.dispatch(holder, command.ClaimPseudonym{Pseudonym: "alice_01"})
	s.Require().NoError(err)
	s.Nil(res.Pseudonym)

	res, err = s.dispatch(holder, command.GetPseudonym{})
	s.Require().NoError(err)
	s.Require().NotNil(res.Pseudonym)
	s.Equal("alice_01", *res.Pseudonym)

	_, err = s.dispatch(authority, command.SetVerifier{Verifier: verifier, Add: true})
	s.Require().NoError(err)

	_, err = s.dispatch(verifier, command.VerifyPseudonym{Pseudonym: "alice_01"})
	s.Require().NoError(err)

	_, err = s.dispatch(verifier, command.VerifyPseudonym{Pseudonym: "alice_01"})
	s.ErrorIs(err, models.ErrPseudonymAlreadyVerified)

	res, err = s.dispatch(verifier, command.GetPseudonymOf{Account: holder})
	s.Require().NoError(err)
	s.Equal("alice_01", *res.Pseudonym)

	res, err = s.dispatch(verifier, command.GetAuthority{})
	s.Require().NoError(err)
	s.Equal(authority, *res.Authority)

	_, err = s.dispatch(holder, command.ResetAll{})
	s.ErrorIs(err, models.ErrInsufficientPermission)

	_, err = s.dispatch(authority, command.ResetAll{})
	s.Require().NoError(err)

	hash := domain.CodeHash{0xc0}
	_, err = s.dispatch(authority, command.RedirectCode{CodeHash: hash})
	s.Require().NoError(err)
	s.Equal(hash, s.upgrader.Current())
}

func (s *DispatchSuite) TestLookupMiss() {
	res, err := s.dispatch(holder, command.GetPseudonymOf{Account: verifier})
	s.Require().NoError(err)
	s.Nil(res.Pseudonym)
}

func (s *DispatchSuite) TestMutating() {
	s.True(command.Mutating(command.ClaimPseudonym{}))
	s.True(command.Mutating(command.ResetAll{}))
	s.False(command.Mutating(command.GetAuthority{}))
	s.False(command.Mutating(command.GetPseudonymOf{}))
}

func (s *DispatchSuite) TestNames() {
	names := map[string]command.Command{
		"redirect_code":    command.RedirectCode{},
		"reset_all":        command.ResetAll{},
		"set_verifier":     command.SetVerifier{},
		"verify_pseudonym": command.VerifyPseudonym{},
		"claim_pseudonym":  command.ClaimPseudonym{},
		"get_pseudonym_of": command.GetPseudonymOf{},
		"get_pseudonym":    command.GetPseudonym{},
		"get_authority":    command.GetAuthority{},
	}
	for want, cmd := range names {
		s.Equal(want, cmd.Name())
	}
}
