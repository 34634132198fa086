package store

import (
	"context"
	"sync"

	"selfid/internal/pseudonym/models"
	"selfid/pkg/domain"
	"selfid/pkg/platform/sentinel"
)

// InMemoryStore keeps the registry in process memory. It is the backend for
// tests and single-node development.
type InMemoryStore struct {
	mu         sync.RWMutex
	authority  *domain.AccountID
	verifiers  map[domain.AccountID]struct{}
	accounts   map[domain.AccountID]models.Identifier
	pseudonyms map[models.Identifier]models.Info
}

// NewInMemory returns an empty store.
func NewInMemory() *InMemoryStore {
	return &InMemoryStore{
		verifiers:  make(map[domain.AccountID]struct{}),
		accounts:   make(map[domain.AccountID]models.Identifier),
		pseudonyms: make(map[models.Identifier]models.Info),
	}
}

func (s *InMemoryStore) Authority(_ context.Context) (domain.AccountID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.authority == nil {
		return domain.AccountID{}, sentinel.ErrNotFound
	}
	return *s.authority, nil
}

func (s *InMemoryStore) SetAuthority(ctx context.Context, authority domain.AccountID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	previous := s.authority
	journal(ctx, func() { s.authority = previous })
	s.authority = &authority
	return nil
}

func (s *InMemoryStore) IsVerifier(_ context.Context, account domain.AccountID) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.verifiers[account]
	return ok, nil
}

func (s *InMemoryStore) AddVerifier(ctx context.Context, account domain.AccountID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.journalVerifier(ctx, account)
	s.verifiers[account] = struct{}{}
	return nil
}

func (s *InMemoryStore) RemoveVerifier(ctx context.Context, account domain.AccountID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.journalVerifier(ctx, account)
	delete(s.verifiers, account)
	return nil
}

func (s *InMemoryStore) ClearVerifiers(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	verifiers := s.verifiers
	journal(ctx, func() { s.verifiers = verifiers })
	s.verifiers = make(map[domain.AccountID]struct{})
	return nil
}

func (s *InMemoryStore) FindPseudonym(_ context.Context, account domain.AccountID) (models.Identifier, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.accounts[account]
	if !ok {
		return models.Identifier{}, sentinel.ErrNotFound
	}
	return id, nil
}

// FindInfo returns a copy; callers persist changes with SaveInfo.
func (s *InMemoryStore) FindInfo(_ context.Context, id models.Identifier) (*models.Info, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	info, ok := s.pseudonyms[id]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneInfo(info), nil
}

func (s *InMemoryStore) Claim(ctx context.Context, account domain.AccountID, previous *models.Identifier, id models.Identifier, info *models.Info) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.journalAccount(ctx, account)
	s.journalPseudonym(ctx, id)
	if previous != nil {
		s.journalPseudonym(ctx, *previous)
		delete(s.pseudonyms, *previous)
		delete(s.accounts, account)
	}
	s.accounts[account] = id
	s.pseudonyms[id] = *cloneInfo(*info)
	return nil
}

func (s *InMemoryStore) SaveInfo(ctx context.Context, id models.Identifier, info *models.Info) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.pseudonyms[id]; !ok {
		return sentinel.ErrNotFound
	}
	s.journalPseudonym(ctx, id)
	s.pseudonyms[id] = *cloneInfo(*info)
	return nil
}

func (s *InMemoryStore) Purge(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	verifiers, accounts, pseudonyms := s.verifiers, s.accounts, s.pseudonyms
	journal(ctx, func() {
		s.verifiers, s.accounts, s.pseudonyms = verifiers, accounts, pseudonyms
	})
	s.verifiers = make(map[domain.AccountID]struct{})
	s.accounts = make(map[domain.AccountID]models.Identifier)
	s.pseudonyms = make(map[models.Identifier]models.Info)
	return nil
}

type undoKey struct{}

type undoLog struct {
	ops []func()
}

// Checkpoint returns a context under which writes are journaled, and a
// rollback that reverts them newest first.
func (s *InMemoryStore) Checkpoint(ctx context.Context) (context.Context, func()) {
	log := &undoLog{}
	return context.WithValue(ctx, undoKey{}, log), func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i := len(log.ops) - 1; i >= 0; i-- {
			log.ops[i]()
		}
		log.ops = nil
	}
}

// journal records how to undo a write about to happen. Callers hold s.mu.
func journal(ctx context.Context, undo func()) {
	if log, ok := ctx.Value(undoKey{}).(*undoLog); ok {
		log.ops = append(log.ops, undo)
	}
}

func (s *InMemoryStore) journalVerifier(ctx context.Context, account domain.AccountID) {
	_, member := s.verifiers[account]
	journal(ctx, func() {
		if member {
			s.verifiers[account] = struct{}{}
		} else {
			delete(s.verifiers, account)
		}
	})
}

func (s *InMemoryStore) journalAccount(ctx context.Context, account domain.AccountID) {
	id, held := s.accounts[account]
	journal(ctx, func() {
		if held {
			s.accounts[account] = id
		} else {
			delete(s.accounts, account)
		}
	})
}

func (s *InMemoryStore) journalPseudonym(ctx context.Context, id models.Identifier) {
	info, claimed := s.pseudonyms[id]
	journal(ctx, func() {
		if claimed {
			s.pseudonyms[id] = info
		} else {
			delete(s.pseudonyms, id)
		}
	})
}

func cloneInfo(info models.Info) *models.Info {
	out := models.Info{Owner: info.Owner}
	if info.VerifiedBy != nil {
		by := *info.VerifiedBy
		out.VerifiedBy = &by
	}
	if info.VerifiedAt != nil {
		at := *info.VerifiedAt
		out.VerifiedAt = &at
	}
	return &out
}
