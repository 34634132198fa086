// Package command is the closed set of registry calls. Each transport builds a
// Command and hands it to Dispatch together with the authenticated caller.
package command

import (
	"context"
	"fmt"

	"selfid/pkg/domain"
)

// Registry is the registry surface the commands drive.
type Registry interface {
	RedirectCode(ctx context.Context, caller domain.AccountID, hash domain.CodeHash) error
	ResetAll(ctx context.Context, caller domain.AccountID) error
	SetVerifier(ctx context.Context, caller, verifier domain.AccountID, add bool) error
	Verify(ctx context.Context, caller domain.AccountID, raw string) error
	Claim(ctx context.Context, caller domain.AccountID, raw string) error
	PseudonymOf(ctx context.Context, account domain.AccountID) (string, bool, error)
	Pseudonym(ctx context.Context, caller domain.AccountID) (string, bool, error)
	Authority(ctx context.Context) (domain.AccountID, error)
}

// Command is implemented only by the types in this package.
type Command interface {
	Name() string
	sealed()
}

type RedirectCode struct {
	CodeHash domain.CodeHash
}

type ResetAll struct{}

type SetVerifier struct {
	Verifier domain.AccountID
	Add      bool
}

type VerifyPseudonym struct {
	Pseudonym string
}

type ClaimPseudonym struct {
	Pseudonym string
}

type GetPseudonymOf struct {
	Account domain.AccountID
}

type GetPseudonym struct{}

type GetAuthority struct{}

func (RedirectCode) Name() string    { return "redirect_code" }
func (ResetAll) Name() string        { return "reset_all" }
func (SetVerifier) Name() string     { return "set_verifier" }
func (VerifyPseudonym) Name() string { return "verify_pseudonym" }
func (ClaimPseudonym) Name() string  { return "claim_pseudonym" }
func (GetPseudonymOf) Name() string  { return "get_pseudonym_of" }
func (GetPseudonym) Name() string    { return "get_pseudonym" }
func (GetAuthority) Name() string    { return "get_authority" }

func (RedirectCode) sealed()    {}
func (ResetAll) sealed()        {}
func (SetVerifier) sealed()     {}
func (VerifyPseudonym) sealed() {}
func (ClaimPseudonym) sealed()  {}
func (GetPseudonymOf) sealed()  {}
func (GetPseudonym) sealed()    {}
func (GetAuthority) sealed()    {}

// Result is what a command returns. Mutating commands return the zero value.
type Result struct {
	Pseudonym *string           `json:"pseudonym,omitempty"`
	Authority *domain.AccountID `json:"authority,omitempty"`
}

// Mutating reports whether cmd changes registry state.
func Mutating(cmd Command) bool {
	switch cmd.(type) {
	case GetPseudonymOf, GetPseudonym, GetAuthority:
		return false
	default:
		return true
	}
}

// Dispatch runs cmd on behalf of caller.
func Dispatch(ctx context.Context, registry Registry, caller domain.AccountID, cmd Command) (Result, error) {
	switch c := cmd.(type) {
	case RedirectCode:
		return Result{}, registry.RedirectCode(ctx, caller, c.CodeHash)
	case ResetAll:
		return Result{}, registry.ResetAll(ctx, caller)
	case SetVerifier:
		return Result{}, registry.SetVerifier(ctx, caller, c.Verifier, c.Add)
	case VerifyPseudonym:
		return Result{}, registry.Verify(ctx, caller, c.Pseudonym)
	case ClaimPseudonym:
		return Result{}, registry.Claim(ctx, caller, c.Pseudonym)
	case GetPseudonymOf:
		return lookup(registry.PseudonymOf(ctx, c.Account))
	case GetPseudonym:
		return lookup(registry.Pseudonym(ctx, caller))
	case GetAuthority:
		authority, err := registry.Authority(ctx)
		if err != nil {
			return Result{}, err
		}
		return Result{Authority: &authority}, nil
	default:
		return Result{}, fmt.Errorf("unknown command %T", cmd)
	}
}

func lookup(pseudonym string, found bool, err error) (Result, error) {
	if err != nil || !found {
		return Result{}, err
	}
	return Result{Pseudonym: &pseudonym}, nil
}
