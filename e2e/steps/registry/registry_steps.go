package registry

import (
	"context"
	"fmt"
	"net/http"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	Do(method, path, actor string, body any) error
	AccountOf(actor string) string
	GetLastResponseStatus() int
	GetResponseField(field string) (any, error)
}

// RegisterSteps registers registry step definitions
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &registrySteps{tc: tc}

	ctx.Step(`^an empty registry$`, steps.emptyRegistry)
	ctx.Step(`^"([^"]*)" is a verifier$`, steps.isVerifier)
	ctx.Step(`^"([^"]*)" adds verifier "([^"]*)"$`, steps.addVerifier)
	ctx.Step(`^"([^"]*)" removes verifier "([^"]*)"$`, steps.removeVerifier)
	ctx.Step(`^"([^"]*)" claims pseudonym "([^"]*)"$`, steps.claim)
	ctx.Step(`^"([^"]*)" verifies pseudonym "([^"]*)"$`, steps.verify)
	ctx.Step(`^"([^"]*)" resets the registry$`, steps.reset)
	ctx.Step(`^I look up the pseudonym of "([^"]*)"$`, steps.lookupPseudonymOf)
	ctx.Step(`^I look up pseudonym "([^"]*)"$`, steps.lookupInfo)
	ctx.Step(`^the owner should be "([^"]*)"$`, steps.ownerShouldBe)
}

type registrySteps struct {
	tc TestContext
}

// emptyRegistry relies on the server running with RESET_SCOPE=all.
func (s *registrySteps) emptyRegistry(ctx context.Context) error {
	if err := s.tc.Do(http.MethodPost, "/v1/admin/reset", "authority", nil); err != nil {
		return err
	}
	if status := s.tc.GetLastResponseStatus(); status != http.StatusNoContent {
		return fmt.Errorf("reset failed with status %d", status)
	}
	return nil
}

func (s *registrySteps) isVerifier(ctx context.Context, actor string) error {
	if err := s.addVerifier(ctx, "authority", actor); err != nil {
		return err
	}
	if status := s.tc.GetLastResponseStatus(); status != http.StatusNoContent {
		return fmt.Errorf("adding verifier failed with status %d", status)
	}
	return nil
}

func (s *registrySteps) addVerifier(ctx context.Context, actor, verifier string) error {
	return s.tc.Do(http.MethodPut, "/v1/admin/verifiers/"+s.tc.AccountOf(verifier), actor, nil)
}

func (s *registrySteps) removeVerifier(ctx context.Context, actor, verifier string) error {
	return s.tc.Do(http.MethodDelete, "/v1/admin/verifiers/"+s.tc.AccountOf(verifier), actor, nil)
}

func (s *registrySteps) claim(ctx context.Context, actor, pseudonym string) error {
	return s.tc.Do(http.MethodPut, "/v1/pseudonyms/me", actor, map[string]string{"pseudonym": pseudonym})
}

func (s *registrySteps) verify(ctx context.Context, actor, pseudonym string) error {
	return s.tc.Do(http.MethodPost, "/v1/verifications", actor, map[string]string{"pseudonym": pseudonym})
}

func (s *registrySteps) reset(ctx context.Context, actor string) error {
	return s.tc.Do(http.MethodPost, "/v1/admin/reset", actor, nil)
}

func (s *registrySteps) lookupPseudonymOf(ctx context.Context, actor string) error {
	return s.tc.Do(http.MethodGet, "/v1/accounts/"+s.tc.AccountOf(actor)+"/pseudonym", "", nil)
}

func (s *registrySteps) lookupInfo(ctx context.Context, pseudonym string) error {
	return s.tc.Do(http.MethodGet, "/v1/pseudonyms/"+pseudonym, "", nil)
}

func (s *registrySteps) ownerShouldBe(ctx context.Context, actor string) error {
	owner, err := s.tc.GetResponseField("owner")
	if err != nil {
		return err
	}
	if want := s.tc.AccountOf(actor); owner != want {
		return fmt.Errorf("expected owner %s (%s), got %v", actor, want, owner)
	}
	return nil
}
