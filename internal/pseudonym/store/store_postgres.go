package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"selfid/internal/pseudonym/models"
	"selfid/pkg/domain"
	dErrors "selfid/pkg/domain-errors"
	"selfid/pkg/platform/sentinel"
	txcontext "selfid/pkg/platform/tx"
)

//go:embed schema.sql
var schema string

// registryLockKey is the pg_advisory_xact_lock key that serializes registry
// writers across processes.
const registryLockKey int64 = 0x73656c666964

const uniqueViolation = "23505"

// PostgresStore persists the registry in PostgreSQL. Queries run on the
// transaction carried in ctx when there is one.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed registry store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the registry tables if they do not exist.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure registry schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Authority(ctx context.Context) (domain.AccountID, error) {
	var raw []byte
	err := txcontext.Exec(ctx, s.db).QueryRowContext(ctx,
		`SELECT account FROM registry_authority WHERE singleton`).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.AccountID{}, sentinel.ErrNotFound
		}
		return domain.AccountID{}, fmt.Errorf("find authority: %w", err)
	}
	return domain.AccountFromBytes(raw)
}

func (s *PostgresStore) SetAuthority(ctx context.Context, authority domain.AccountID) error {
	_, err := txcontext.Exec(ctx, s.db).ExecContext(ctx, `
		INSERT INTO registry_authority (singleton, account) VALUES (TRUE, $1)
		ON CONFLICT (singleton) DO UPDATE SET account = EXCLUDED.account`,
		authority[:])
	if err != nil {
		return fmt.Errorf("set authority: %w", err)
	}
	return nil
}

func (s *PostgresStore) IsVerifier(ctx context.Context, account domain.AccountID) (bool, error) {
	var exists bool
	err := txcontext.Exec(ctx, s.db).QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM registry_verifiers WHERE account = $1)`,
		account[:]).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check verifier: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) AddVerifier(ctx context.Context, account domain.AccountID) error {
	_, err := txcontext.Exec(ctx, s.db).ExecContext(ctx,
		`INSERT INTO registry_verifiers (account) VALUES ($1) ON CONFLICT DO NOTHING`,
		account[:])
	if err != nil {
		return fmt.Errorf("add verifier: %w", err)
	}
	return nil
}

func (s *PostgresStore) RemoveVerifier(ctx context.Context, account domain.AccountID) error {
	_, err := txcontext.Exec(ctx, s.db).ExecContext(ctx,
		`DELETE FROM registry_verifiers WHERE account = $1`, account[:])
	if err != nil {
		return fmt.Errorf("remove verifier: %w", err)
	}
	return nil
}

func (s *PostgresStore) ClearVerifiers(ctx context.Context) error {
	if _, err := txcontext.Exec(ctx, s.db).ExecContext(ctx, `DELETE FROM registry_verifiers`); err != nil {
		return fmt.Errorf("clear verifiers: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindPseudonym(ctx context.Context, account domain.AccountID) (models.Identifier, error) {
	var pseudonym string
	err := txcontext.Exec(ctx, s.db).QueryRowContext(ctx,
		`SELECT pseudonym FROM registry_pseudonyms WHERE owner = $1`, account[:]).Scan(&pseudonym)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Identifier{}, sentinel.ErrNotFound
		}
		return models.Identifier{}, fmt.Errorf("find pseudonym: %w", err)
	}
	return decodeIdentifier(pseudonym)
}

func (s *PostgresStore) FindInfo(ctx context.Context, id models.Identifier) (*models.Info, error) {
	var (
		owner      []byte
		verifiedBy []byte
		verifiedAt sql.NullInt64
	)
	err := txcontext.Exec(ctx, s.db).QueryRowContext(ctx, `
		SELECT owner, verified_by, verified_at
		FROM registry_pseudonyms WHERE pseudonym = $1`,
		id.String()).Scan(&owner, &verifiedBy, &verifiedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find pseudonym info: %w", err)
	}
	return toInfo(owner, verifiedBy, verifiedAt)
}

// Claim deletes the previous row and inserts the new one. Both statements
// share the transaction in ctx; without one they run in their own.
func (s *PostgresStore) Claim(ctx context.Context, account domain.AccountID, previous *models.Identifier, id models.Identifier, info *models.Info) error {
	return txcontext.Run(ctx, s.db, nil, func(ctx context.Context) error {
		exec := txcontext.Exec(ctx, s.db)
		if previous != nil {
			if _, err := exec.ExecContext(ctx,
				`DELETE FROM registry_pseudonyms WHERE pseudonym = $1 AND owner = $2`,
				previous.String(), account[:]); err != nil {
				return fmt.Errorf("delete previous pseudonym: %w", err)
			}
		}
		by, at := verificationArgs(info)
		_, err := exec.ExecContext(ctx, `
			INSERT INTO registry_pseudonyms (pseudonym, owner, verified_by, verified_at)
			VALUES ($1, $2, $3, $4)`,
			id.String(), account[:], by, at)
		if err != nil {
			if isUniqueViolation(err) {
				return sentinel.ErrConflict
			}
			return fmt.Errorf("insert pseudonym: %w", err)
		}
		return nil
	})
}

func (s *PostgresStore) SaveInfo(ctx context.Context, id models.Identifier, info *models.Info) error {
	by, at := verificationArgs(info)
	res, err := txcontext.Exec(ctx, s.db).ExecContext(ctx, `
		UPDATE registry_pseudonyms SET verified_by = $2, verified_at = $3
		WHERE pseudonym = $1 AND owner = $4`,
		id.String(), by, at, info.Owner[:])
	if err != nil {
		return fmt.Errorf("save pseudonym info: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("save pseudonym info: %w", err)
	}
	if n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Purge(ctx context.Context) error {
	_, err := txcontext.Exec(ctx, s.db).ExecContext(ctx,
		`TRUNCATE registry_verifiers, registry_pseudonyms`)
	if err != nil {
		return fmt.Errorf("purge registry: %w", err)
	}
	return nil
}

// PostgresTx serializes registry calls with a transaction-scoped advisory
// lock. The transaction travels in ctx, so the store and the outbox share it.
type PostgresTx struct {
	db      *sql.DB
	timeout time.Duration
}

// NewPostgresTx returns the transaction boundary for PostgresStore.
func NewPostgresTx(db *sql.DB) *PostgresTx {
	return &PostgresTx{db: db, timeout: 5 * time.Second}
}

func (t *PostgresTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}
	return txcontext.Run(ctx, t.db, nil, func(txCtx context.Context) error {
		if _, err := txcontext.Exec(txCtx, t.db).ExecContext(txCtx,
			`SELECT pg_advisory_xact_lock($1)`, registryLockKey); err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to lock registry")
		}
		return fn(txCtx)
	})
}

func verificationArgs(info *models.Info) (any, any) {
	if info == nil || !info.Verified() {
		return nil, nil
	}
	by := *info.VerifiedBy
	return by[:], int64(*info.VerifiedAt)
}

func toInfo(owner, verifiedBy []byte, verifiedAt sql.NullInt64) (*models.Info, error) {
	account, err := domain.AccountFromBytes(owner)
	if err != nil {
		return nil, err
	}
	info := models.NewInfo(account)
	if verifiedBy != nil || verifiedAt.Valid {
		if verifiedBy == nil || !verifiedAt.Valid {
			return nil, dErrors.New(dErrors.CodeInvariantViolation, "pseudonym info is partially verified")
		}
		by, err := domain.AccountFromBytes(verifiedBy)
		if err != nil {
			return nil, err
		}
		info.ApplyVerification(by, domain.BlockHeight(verifiedAt.Int64))
	}
	if err := info.Validate(); err != nil {
		return nil, err
	}
	return info, nil
}

func decodeIdentifier(raw string) (models.Identifier, error) {
	id, err := models.ParseIdentifier(raw)
	if err != nil {
		return models.Identifier{}, dErrors.Wrap(err, dErrors.CodeInvariantViolation, "stored pseudonym is not a valid identifier")
	}
	return id, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
