package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v2"
	"github.com/fxamacker/cbor/v2"

	"selfid/internal/pseudonym/models"
	"selfid/pkg/domain"
	dErrors "selfid/pkg/domain-errors"
	"selfid/pkg/platform/sentinel"
	txcontext "selfid/pkg/platform/tx"
)

// Key codes. Each key is one code byte followed by the fixed-width id.
const (
	codeAuthority byte = 1
	codeVerifier  byte = 2
	codeAccount   byte = 3
	codePseudonym byte = 4
)

// infoRecord is the stored form of models.Info.
type infoRecord struct {
	Owner      []byte  `cbor:"1,keyasint"`
	VerifiedBy []byte  `cbor:"2,keyasint,omitempty"`
	VerifiedAt *uint32 `cbor:"3,keyasint,omitempty"`
}

// BadgerStore keeps the registry in an embedded badger database. Outside
// BadgerTx every method runs in its own badger transaction.
type BadgerStore struct {
	db *badger.DB
}

// NewBadger wraps an open badger database.
func NewBadger(db *badger.DB) *BadgerStore {
	return &BadgerStore{db: db}
}

// OpenBadger opens (or creates) a database in dir.
func OpenBadger(dir string) (*badger.DB, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return db, nil
}

func makeKey(code byte, id []byte) []byte {
	key := make([]byte, 1+len(id))
	key[0] = code
	copy(key[1:], id)
	return key
}

type badgerTxKey struct{}

// badgerCall is the state of one call running under BadgerTx.
type badgerCall struct {
	txn   *badger.Txn
	drops [][]byte
}

func callFrom(ctx context.Context) (*badgerCall, bool) {
	call, ok := ctx.Value(badgerTxKey{}).(*badgerCall)
	return call, ok
}

// update runs fn in the call's transaction, or in its own.
func (s *BadgerStore) update(ctx context.Context, fn func(*badger.Txn) error) error {
	if call, ok := callFrom(ctx); ok {
		return fn(call.txn)
	}
	return s.db.Update(fn)
}

func (s *BadgerStore) view(ctx context.Context, fn func(*badger.Txn) error) error {
	if call, ok := callFrom(ctx); ok {
		return fn(call.txn)
	}
	return s.db.View(fn)
}

// dropPrefixes removes every key under prefixes. Inside a call the drop runs
// after the call's transaction commits; DropPrefix cannot join a transaction
// and does not grow one.
func (s *BadgerStore) dropPrefixes(ctx context.Context, prefixes ...[]byte) error {
	if call, ok := callFrom(ctx); ok {
		call.drops = append(call.drops, prefixes...)
		return nil
	}
	return s.drop(prefixes)
}

// drop is a no-op without prefixes; DropPrefix always stalls writes and
// flushes the memtables.
func (s *BadgerStore) drop(prefixes [][]byte) error {
	if len(prefixes) == 0 {
		return nil
	}
	if err := s.db.DropPrefix(prefixes...); err != nil {
		return fmt.Errorf("could not drop registry keys: %w", err)
	}
	return nil
}

func (s *BadgerStore) Authority(ctx context.Context) (domain.AccountID, error) {
	var authority domain.AccountID
	err := s.view(ctx, func(tx *badger.Txn) error {
		val, err := retrieve(tx, makeKey(codeAuthority, nil))
		if err != nil {
			return err
		}
		authority, err = domain.AccountFromBytes(val)
		return err
	})
	return authority, err
}

func (s *BadgerStore) SetAuthority(ctx context.Context, authority domain.AccountID) error {
	return s.update(ctx, func(tx *badger.Txn) error {
		return tx.Set(makeKey(codeAuthority, nil), authority[:])
	})
}

func (s *BadgerStore) IsVerifier(ctx context.Context, account domain.AccountID) (bool, error) {
	var exists bool
	err := s.view(ctx, check(makeKey(codeVerifier, account[:]), &exists))
	return exists, err
}

func (s *BadgerStore) AddVerifier(ctx context.Context, account domain.AccountID) error {
	return s.update(ctx, func(tx *badger.Txn) error {
		return tx.Set(makeKey(codeVerifier, account[:]), nil)
	})
}

func (s *BadgerStore) RemoveVerifier(ctx context.Context, account domain.AccountID) error {
	return s.update(ctx, func(tx *badger.Txn) error {
		return tx.Delete(makeKey(codeVerifier, account[:]))
	})
}

func (s *BadgerStore) ClearVerifiers(ctx context.Context) error {
	return s.dropPrefixes(ctx, []byte{codeVerifier})
}

func (s *BadgerStore) FindPseudonym(ctx context.Context, account domain.AccountID) (models.Identifier, error) {
	var id models.Identifier
	err := s.view(ctx, func(tx *badger.Txn) error {
		val, err := retrieve(tx, makeKey(codeAccount, account[:]))
		if err != nil {
			return err
		}
		if len(val) != len(id) {
			return fmt.Errorf("stored pseudonym has %d bytes", len(val))
		}
		copy(id[:], val)
		return nil
	})
	return id, err
}

func (s *BadgerStore) FindInfo(ctx context.Context, id models.Identifier) (*models.Info, error) {
	var info *models.Info
	err := s.view(ctx, func(tx *badger.Txn) error {
		val, err := retrieve(tx, makeKey(codePseudonym, id[:]))
		if err != nil {
			return err
		}
		info, err = decodeInfo(val)
		return err
	})
	return info, err
}

func (s *BadgerStore) Claim(ctx context.Context, account domain.AccountID, previous *models.Identifier, id models.Identifier, info *models.Info) error {
	val, err := encodeInfo(info)
	if err != nil {
		return err
	}
	return s.update(ctx, func(tx *badger.Txn) error {
		if previous != nil {
			if err := tx.Delete(makeKey(codePseudonym, previous[:])); err != nil {
				return fmt.Errorf("delete previous pseudonym: %w", err)
			}
			if err := tx.Delete(makeKey(codeAccount, account[:])); err != nil {
				return fmt.Errorf("delete previous account entry: %w", err)
			}
		}
		if err := tx.Set(makeKey(codeAccount, account[:]), id[:]); err != nil {
			return fmt.Errorf("store account entry: %w", err)
		}
		if err := tx.Set(makeKey(codePseudonym, id[:]), val); err != nil {
			return fmt.Errorf("store pseudonym: %w", err)
		}
		return nil
	})
}

func (s *BadgerStore) SaveInfo(ctx context.Context, id models.Identifier, info *models.Info) error {
	val, err := encodeInfo(info)
	if err != nil {
		return err
	}
	return s.update(ctx, func(tx *badger.Txn) error {
		key := makeKey(codePseudonym, id[:])
		var exists bool
		if err := check(key, &exists)(tx); err != nil {
			return err
		}
		if !exists {
			return sentinel.ErrNotFound
		}
		return tx.Set(key, val)
	})
}

// Purge drops the verifier, account and pseudonym key ranges whole, so its
// cost does not depend on the transaction size limit.
func (s *BadgerStore) Purge(ctx context.Context) error {
	return s.dropPrefixes(ctx, []byte{codeVerifier}, []byte{codeAccount}, []byte{codePseudonym})
}

// BadgerTx runs each registry call in one read-write badger transaction,
// serialized in this process. A failed call discards its transaction.
type BadgerTx struct {
	mu      sync.Mutex
	store   *BadgerStore
	timeout time.Duration
}

// Tx returns the transaction boundary for s.
func (s *BadgerStore) Tx() *BadgerTx {
	return &BadgerTx{store: s, timeout: 5 * time.Second}
}

func (t *BadgerTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	ctx, flush := txcontext.Deferred(ctx)
	call := &badgerCall{txn: t.store.db.NewTransaction(true)}
	defer call.txn.Discard()

	if err := fn(context.WithValue(ctx, badgerTxKey{}, call)); err != nil {
		return err
	}
	if err := call.txn.Commit(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to commit registry writes")
	}
	if err := t.store.drop(call.drops); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to purge registry")
	}
	flush()
	return nil
}

// retrieve returns a copy of the value under key, or sentinel.ErrNotFound.
func retrieve(tx *badger.Txn, key []byte) ([]byte, error) {
	item, err := tx.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("could not load data: %w", err)
	}
	val, err := item.ValueCopy(nil)
	if err != nil {
		return nil, fmt.Errorf("could not copy value: %w", err)
	}
	return val, nil
}

func check(key []byte, exists *bool) func(*badger.Txn) error {
	return func(tx *badger.Txn) error {
		_, err := tx.Get(key)
		if errors.Is(err, badger.ErrKeyNotFound) {
			*exists = false
			return nil
		}
		if err != nil {
			return fmt.Errorf("could not check existence: %w", err)
		}
		*exists = true
		return nil
	}
}

func encodeInfo(info *models.Info) ([]byte, error) {
	rec := infoRecord{Owner: info.Owner[:]}
	if info.Verified() {
		by := *info.VerifiedBy
		at := uint32(*info.VerifiedAt)
		rec.VerifiedBy = by[:]
		rec.VerifiedAt = &at
	}
	val, err := cbor.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("could not encode pseudonym info: %w", err)
	}
	return val, nil
}

func decodeInfo(val []byte) (*models.Info, error) {
	var rec infoRecord
	if err := cbor.Unmarshal(val, &rec); err != nil {
		return nil, fmt.Errorf("could not decode pseudonym info: %w", err)
	}
	owner, err := domain.AccountFromBytes(rec.Owner)
	if err != nil {
		return nil, err
	}
	info := models.NewInfo(owner)
	if rec.VerifiedBy != nil || rec.VerifiedAt != nil {
		if rec.VerifiedBy == nil || rec.VerifiedAt == nil {
			return nil, fmt.Errorf("pseudonym info is partially verified")
		}
		by, err := domain.AccountFromBytes(rec.VerifiedBy)
		if err != nil {
			return nil, err
		}
		info.ApplyVerification(by, domain.BlockHeight(*rec.VerifiedAt))
	}
	if err := info.Validate(); err != nil {
		return nil, err
	}
	return info, nil
}
