package handler

import (
	"selfid/pkg/domain"
	dErrors "selfid/pkg/domain-errors"
)

// PseudonymRequest is the body of PUT /v1/pseudonyms/me and
// POST /v1/verifications. The identifier itself is checked by the registry so
// callers get the precise error kind.
type PseudonymRequest struct {
	Pseudonym string `json:"pseudonym"`
}

func (r *PseudonymRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	return nil
}

// RedirectCodeRequest is the body of POST /v1/admin/code.
type RedirectCodeRequest struct {
	CodeHash string `json:"code_hash"`

	parsedHash domain.CodeHash
}

// Validate parses the hash. The zero hash is refused here because the
// upgrade path treats it as fatal.
func (r *RedirectCodeRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	hash, err := domain.ParseCodeHash(r.CodeHash)
	if err != nil {
		return err
	}
	if hash.IsZero() {
		return dErrors.New(dErrors.CodeValidation, "code_hash must not be zero")
	}
	r.parsedHash = hash
	return nil
}
