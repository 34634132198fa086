package service

import (
	"context"
	"errors"

	"selfid/internal/pseudonym/models"
	"selfid/pkg/domain"
	dErrors "selfid/pkg/domain-errors"
	"selfid/pkg/platform/sentinel"
)

// Claim binds raw to caller. A previously held identifier is dropped first,
// together with its attestation, and the new binding starts unverified.
// Claiming an identifier owned by another account fails with
// ErrTakenPseudonym.
func (s *Service) Claim(ctx context.Context, caller domain.AccountID, raw string) (err error) {
	ctx, end := s.begin(ctx, "claim", caller)
	defer func() { end(err) }()

	if err := requireCaller(caller); err != nil {
		return err
	}
	id, err := models.ParseIdentifier(raw)
	if err != nil {
		return err
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		at := s.clock.Height(txCtx)

		existing, err := s.findInfo(txCtx, id)
		if err != nil && !errors.Is(err, models.ErrPseudonymNotExist) {
			return err
		}
		if existing != nil && existing.Owner != caller {
			return models.ErrTakenPseudonym
		}

		previous, err := s.findPseudonym(txCtx, caller)
		if err != nil {
			return err
		}

		if err := s.store.Claim(txCtx, caller, previous, id, models.NewInfo(caller)); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to claim pseudonym")
		}

		if previous != nil {
			if err := s.emit(txCtx, models.IdentityRemoved{
				Account:   caller,
				Pseudonym: previous.String(),
				At:        at,
			}); err != nil {
				return err
			}
		}
		return s.emit(txCtx, models.IdentityInserted{
			Account:   caller,
			Pseudonym: id.String(),
			At:        at,
		})
	})
	if err != nil {
		return err
	}

	if s.metrics != nil {
		s.metrics.IncrementClaims()
	}
	return nil
}

// Verify attests raw on behalf of caller, who must be a verifier.
func (s *Service) Verify(ctx context.Context, caller domain.AccountID, raw string) (err error) {
	ctx, end := s.begin(ctx, "verify", caller)
	defer func() { end(err) }()

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.requireVerifier(txCtx, caller); err != nil {
			return err
		}
		id, err := models.ParseIdentifier(raw)
		if err != nil {
			return err
		}

		info, err := s.findInfo(txCtx, id)
		if err != nil {
			return err
		}
		if err := info.CanVerify(); err != nil {
			return err
		}

		at := s.clock.Height(txCtx)
		info.ApplyVerification(caller, at)
		if err := s.store.SaveInfo(txCtx, id, info); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save pseudonym info")
		}

		return s.emit(txCtx, models.IdentityVerified{
			Verifier:  caller,
			Pseudonym: id.String(),
			Account:   info.Owner,
			At:        at,
		})
	})
	if err != nil {
		return err
	}

	if s.metrics != nil {
		s.metrics.IncrementVerifications()
	}
	return nil
}

// PseudonymOf returns the identifier held by account, if any.
func (s *Service) PseudonymOf(ctx context.Context, account domain.AccountID) (pseudonym string, found bool, err error) {
	ctx, end := s.begin(ctx, "pseudonym_of", domain.AccountID{})
	defer func() { end(err) }()

	id, err := s.findPseudonym(ctx, account)
	if err != nil || id == nil {
		return "", false, err
	}
	return id.String(), true, nil
}

// Pseudonym returns the identifier held by caller, if any.
func (s *Service) Pseudonym(ctx context.Context, caller domain.AccountID) (string, bool, error) {
	return s.PseudonymOf(ctx, caller)
}

// Info returns the attestation record of raw.
func (s *Service) Info(ctx context.Context, raw string) (info *models.Info, err error) {
	ctx, end := s.begin(ctx, "info", domain.AccountID{})
	defer func() { end(err) }()

	id, err := models.ParseIdentifier(raw)
	if err != nil {
		return nil, err
	}
	return s.findInfo(ctx, id)
}

// findPseudonym returns nil when account holds nothing.
func (s *Service) findPseudonym(ctx context.Context, account domain.AccountID) (*models.Identifier, error) {
	id, err := s.store.FindPseudonym(ctx, account)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load account pseudonym")
	}
	return &id, nil
}

func (s *Service) findInfo(ctx context.Context, id models.Identifier) (*models.Info, error) {
	info, err := s.store.FindInfo(ctx, id)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, models.ErrPseudonymNotExist
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load pseudonym info")
	}
	return info, nil
}

func requireCaller(caller domain.AccountID) error {
	if caller.IsZero() {
		return dErrors.New(dErrors.CodeUnauthorized, "caller is required")
	}
	return nil
}
