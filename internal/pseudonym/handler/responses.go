package handler

import (
	"selfid/internal/pseudonym/command"
	"selfid/internal/pseudonym/models"
	"selfid/pkg/domain"
)

// PseudonymResponse answers the account lookups. Pseudonym is null when the
// account holds none.
type PseudonymResponse struct {
	Account   domain.AccountID `json:"account"`
	Pseudonym *string          `json:"pseudonym"`
}

// InfoResponse describes one claimed identifier.
type InfoResponse struct {
	Pseudonym  string              `json:"pseudonym"`
	Owner      domain.AccountID    `json:"owner"`
	Verified   bool                `json:"verified"`
	VerifiedBy *domain.AccountID   `json:"verified_by,omitempty"`
	VerifiedAt *domain.BlockHeight `json:"verified_at,omitempty"`
}

type AuthorityResponse struct {
	Authority domain.AccountID `json:"authority"`
}

func toPseudonymResponse(account domain.AccountID, result command.Result) PseudonymResponse {
	return PseudonymResponse{Account: account, Pseudonym: result.Pseudonym}
}

func toInfoResponse(pseudonym string, info *models.Info) InfoResponse {
	return InfoResponse{
		Pseudonym:  pseudonym,
		Owner:      info.Owner,
		Verified:   info.Verified(),
		VerifiedBy: info.VerifiedBy,
		VerifiedAt: info.VerifiedAt,
	}
}
