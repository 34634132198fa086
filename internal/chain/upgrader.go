package chain

import (
	"context"
	"errors"
	"sync"

	"selfid/pkg/domain"
)

// ErrZeroCodeHash is returned when an upgrade names no code.
var ErrZeroCodeHash = errors.New("code hash must not be zero")

// Upgrader swaps the code that serves the registry.
type Upgrader interface {
	SetCodeHash(ctx context.Context, hash domain.CodeHash) error
}

// CodeRegistry remembers the active code hash and its history.
type CodeRegistry struct {
	mu      sync.RWMutex
	current domain.CodeHash
	history []domain.CodeHash
}

// NewCodeRegistry starts with initial as the active code.
func NewCodeRegistry(initial domain.CodeHash) *CodeRegistry {
	return &CodeRegistry{current: initial}
}

func (r *CodeRegistry) SetCodeHash(ctx context.Context, hash domain.CodeHash) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if hash.IsZero() {
		return ErrZeroCodeHash
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.history = append(r.history, r.current)
	r.current = hash
	return nil
}

// Current returns the active code hash.
func (r *CodeRegistry) Current() domain.CodeHash {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// History returns the previously active hashes, oldest first.
func (r *CodeRegistry) History() []domain.CodeHash {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domain.CodeHash(nil), r.history...)
}
