package service

import (
	"context"
	"errors"
	"fmt"

	"selfid/internal/pseudonym/models"
	"selfid/pkg/domain"
	dErrors "selfid/pkg/domain-errors"
	"selfid/pkg/platform/sentinel"
)

// Instantiate makes creator the authority of an empty registry. The
// authority never changes afterwards; later calls return the stored one.
func (s *Service) Instantiate(ctx context.Context, creator domain.AccountID) (authority domain.AccountID, err error) {
	ctx, end := s.begin(ctx, "instantiate", creator)
	defer func() { end(err) }()

	if err := requireCaller(creator); err != nil {
		return domain.AccountID{}, err
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		current, err := s.store.Authority(txCtx)
		switch {
		case err == nil:
			authority = current
			return nil
		case errors.Is(err, sentinel.ErrNotFound):
		default:
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load authority")
		}
		if err := s.store.SetAuthority(txCtx, creator); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to set authority")
		}
		authority = creator
		return nil
	})
	if err != nil {
		return domain.AccountID{}, err
	}
	return authority, nil
}

// Authority returns the administering account.
func (s *Service) Authority(ctx context.Context) (domain.AccountID, error) {
	authority, err := s.store.Authority(ctx)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return domain.AccountID{}, dErrors.New(dErrors.CodeNotFound, "registry is not instantiated")
		}
		return domain.AccountID{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load authority")
	}
	return authority, nil
}

// SetVerifier adds verifier to the verifier set, or removes it when add is
// false. Only the authority may call it.
func (s *Service) SetVerifier(ctx context.Context, caller, verifier domain.AccountID, add bool) (err error) {
	ctx, end := s.begin(ctx, "set_verifier", caller)
	defer func() { end(err) }()

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.requireAuthority(txCtx, caller); err != nil {
			return err
		}
		if verifier.IsZero() {
			return dErrors.New(dErrors.CodeInvalidInput, "verifier account is required")
		}
		member, err := s.store.IsVerifier(txCtx, verifier)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load verifier")
		}

		at := s.clock.Height(txCtx)
		if add {
			if member {
				return models.ErrVerifierAlreadyExist
			}
			if err := s.store.AddVerifier(txCtx, verifier); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to add verifier")
			}
		} else {
			if !member {
				return models.ErrVerifierNotExist
			}
			if err := s.store.RemoveVerifier(txCtx, verifier); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to remove verifier")
			}
		}

		return s.emit(txCtx, models.VerifierUpdated{Who: verifier, Removed: !add, At: at})
	})
	if err != nil {
		return err
	}

	if s.metrics != nil {
		s.metrics.IncrementVerifierUpdate(!add)
	}
	return nil
}

// IsVerifier reports whether account may attest pseudonyms.
func (s *Service) IsVerifier(ctx context.Context, account domain.AccountID) (bool, error) {
	member, err := s.store.IsVerifier(ctx, account)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load verifier")
	}
	return member, nil
}

// ResetAll clears the verifier set. With ResetEverything it also drops every
// pseudonym and account binding. The authority is kept.
func (s *Service) ResetAll(ctx context.Context, caller domain.AccountID) (err error) {
	ctx, end := s.begin(ctx, "reset_all", caller)
	defer func() { end(err) }()

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.requireAuthority(txCtx, caller); err != nil {
			return err
		}
		at := s.clock.Height(txCtx)

		if s.resetScope == ResetEverything {
			if err := s.store.Purge(txCtx); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to purge registry")
			}
		} else {
			if err := s.store.ClearVerifiers(txCtx); err != nil {
				return dErrors.Wrap(err, dErrors.CodeInternal, "failed to clear verifiers")
			}
		}

		return s.emit(txCtx, models.StoragePurged{At: at})
	})
	if err != nil {
		return err
	}

	if s.metrics != nil {
		s.metrics.IncrementResets()
	}
	return nil
}

// RedirectCode points the registry at new code. A failing upgrade is fatal
// and panics.
func (s *Service) RedirectCode(ctx context.Context, caller domain.AccountID, hash domain.CodeHash) (err error) {
	ctx, end := s.begin(ctx, "redirect_code", caller)
	defer func() { end(err) }()

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.requireAuthority(txCtx, caller); err != nil {
			return err
		}
		at := s.clock.Height(txCtx)

		if err := s.upgrader.SetCodeHash(txCtx, hash); err != nil {
			s.logError(txCtx, "code upgrade failed",
				"code_hash", hash.String(),
				"error", err,
			)
			panic(fmt.Sprintf("failed to set code hash to %s: %v", hash, err))
		}

		return s.emit(txCtx, models.ContractUpgraded{NewCodeHash: hash, At: at})
	})
	if err != nil {
		return err
	}

	if s.metrics != nil {
		s.metrics.IncrementUpgrades()
	}
	return nil
}

// requireAuthority fails with ErrInsufficientPermission unless caller is the
// authority. An uninstantiated registry has no authority, so every call fails.
func (s *Service) requireAuthority(ctx context.Context, caller domain.AccountID) error {
	authority, err := s.store.Authority(ctx)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return models.ErrInsufficientPermission
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load authority")
	}
	if caller.IsZero() || caller != authority {
		return models.ErrInsufficientPermission
	}
	return nil
}

// requireVerifier admits members of the verifier set only.
func (s *Service) requireVerifier(ctx context.Context, caller domain.AccountID) error {
	if caller.IsZero() {
		return models.ErrNotVerifier()
	}
	member, err := s.store.IsVerifier(ctx, caller)
	if err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load verifier")
	}
	if !member {
		return models.ErrNotVerifier()
	}
	return nil
}
