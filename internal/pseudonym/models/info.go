package models

import (
	"selfid/pkg/domain"
	dErrors "selfid/pkg/domain-errors"
)

// Info is the attestation record of one identifier.
//
// Invariants:
//   - VerifiedBy and VerifiedAt are both nil or both set
//   - once set they never change; a kept identifier cannot be unverified
//   - the record is discarded, not demoted, when its owner claims another identifier
type Info struct {
	Owner      domain.AccountID    `json:"owner"`
	VerifiedBy *domain.AccountID   `json:"verified_by,omitempty"`
	VerifiedAt *domain.BlockHeight `json:"verified_at,omitempty"`
}

// NewInfo returns a fresh, unverified record.
func NewInfo(owner domain.AccountID) *Info {
	return &Info{Owner: owner}
}

func (i *Info) Verified() bool {
	return i.VerifiedAt != nil
}

// CanVerify checks the Claimed-Unverified -> Claimed-Verified transition.
func (i *Info) CanVerify() error {
	if i.Verified() {
		return ErrPseudonymAlreadyVerified
	}
	return nil
}

// ApplyVerification records the attestation. Call CanVerify first.
func (i *Info) ApplyVerification(verifier domain.AccountID, at domain.BlockHeight) {
	i.VerifiedBy = &verifier
	i.VerifiedAt = &at
}

// Validate checks the record invariants. Stores call it on every decode.
func (i *Info) Validate() error {
	if i.Owner.IsZero() {
		return dErrors.New(dErrors.CodeInvariantViolation, "pseudonym info has no owner")
	}
	if (i.VerifiedBy == nil) != (i.VerifiedAt == nil) {
		return dErrors.New(dErrors.CodeInvariantViolation, "pseudonym info is partially verified")
	}
	return nil
}
