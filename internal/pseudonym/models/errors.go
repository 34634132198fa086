package models

import (
	"errors"

	dErrors "selfid/pkg/domain-errors"
)

// Kind names one registry failure. The set is closed.
type Kind string

const (
	KindBadStringInput           Kind = "bad_string_input"
	KindBadPseudonymLength       Kind = "bad_pseudonym_length"
	KindTakenPseudonym           Kind = "taken_pseudonym"
	KindInsufficientPermission   Kind = "insufficient_permission"
	KindVerifierAlreadyExist     Kind = "verifier_already_exist"
	KindVerifierNotExist         Kind = "verifier_not_exist"
	KindPseudonymNotExist        Kind = "pseudonym_not_exist"
	KindPseudonymAlreadyVerified Kind = "pseudonym_already_verified"
)

// Registry errors. Operations return these unchanged (or wrapped with a
// narrower transport code), so callers branch with errors.Is or KindOf.
var (
	ErrBadStringInput           = dErrors.New(dErrors.CodeValidation, "only alphanumeric and underscore characters allowed")
	ErrBadPseudonymLength       = dErrors.New(dErrors.CodeValidation, "pseudonym length must be between 4 and 32 characters")
	ErrTakenPseudonym           = dErrors.New(dErrors.CodeConflict, "pseudonym already taken")
	ErrInsufficientPermission   = dErrors.New(dErrors.CodeForbidden, "insufficient permission")
	ErrVerifierAlreadyExist     = dErrors.New(dErrors.CodeConflict, "verifier already exists")
	ErrVerifierNotExist         = dErrors.New(dErrors.CodeNotFound, "verifier does not exist")
	ErrPseudonymNotExist        = dErrors.New(dErrors.CodeNotFound, "pseudonym does not exist")
	ErrPseudonymAlreadyVerified = dErrors.New(dErrors.CodeConflict, "pseudonym already verified")
)

var kinds = []struct {
	kind Kind
	err  error
}{
	{KindBadStringInput, ErrBadStringInput},
	{KindBadPseudonymLength, ErrBadPseudonymLength},
	{KindTakenPseudonym, ErrTakenPseudonym},
	{KindInsufficientPermission, ErrInsufficientPermission},
	{KindVerifierAlreadyExist, ErrVerifierAlreadyExist},
	{KindVerifierNotExist, ErrVerifierNotExist},
	{KindPseudonymNotExist, ErrPseudonymNotExist},
	{KindPseudonymAlreadyVerified, ErrPseudonymAlreadyVerified},
}

// KindOf reports which registry error err carries, if any.
func KindOf(err error) (Kind, bool) {
	if err == nil {
		return "", false
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind, true
		}
	}
	return "", false
}

// ErrNotVerifier is returned by the verification guard. It is
// ErrVerifierNotExist seen from the caller's side, so it maps to 403.
func ErrNotVerifier() error {
	return dErrors.Wrap(ErrVerifierNotExist, dErrors.CodeForbidden, "caller is not a verifier")
}
