package service

import (
	"context"
	"sync"
	"time"

	dErrors "selfid/pkg/domain-errors"
	txcontext "selfid/pkg/platform/tx"
)

// StoreTx is the boundary every registry call runs in. Implementations may
// wrap a database transaction or, in-process, a single lock. Calls are
// totally ordered by it. A call that fails leaves no writes and no events.
type StoreTx interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Checkpointer is implemented by stores that can undo their own writes.
// Writes made through the returned context are journaled; rollback reverts
// them newest first.
type Checkpointer interface {
	Checkpoint(ctx context.Context) (txCtx context.Context, rollback func())
}

// defaultTxTimeout is the maximum duration of one registry call.
const defaultTxTimeout = 5 * time.Second

// inMemoryStoreTx serializes calls behind one mutex and, when the store is a
// Checkpointer, reverts the writes of a failed call.
type inMemoryStoreTx struct {
	mu      sync.Mutex
	store   Store
	timeout time.Duration
}

// NewInMemoryStoreTx returns a StoreTx that serializes calls in this process.
// Stores that do not implement Checkpointer get no rollback.
func NewInMemoryStoreTx(store Store) StoreTx {
	return &inMemoryStoreTx{store: store, timeout: defaultTxTimeout}
}

func (t *inMemoryStoreTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	// Check again after acquiring lock
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	ctx, flush := txcontext.Deferred(ctx)
	rollback := func() {}
	if cp, ok := t.store.(Checkpointer); ok {
		ctx, rollback = cp.Checkpoint(ctx)
	}
	committed := false
	defer func() {
		if !committed {
			rollback()
		}
	}()

	if err := fn(ctx); err != nil {
		return err
	}
	committed = true
	flush()
	return nil
}
