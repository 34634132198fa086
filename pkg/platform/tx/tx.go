package tx

import (
	"context"
	"database/sql"
	"sync"
)

type ctxKey struct{}

var txKey = ctxKey{}

// WithTx stores a SQL transaction in context for downstream store usage.
func WithTx(ctx context.Context, tx *sql.Tx) context.Context {
	if tx == nil {
		return ctx
	}
	return context.WithValue(ctx, txKey, tx)
}

// From extracts a SQL transaction from context if present.
func From(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(txKey).(*sql.Tx)
	return tx, ok
}

// Executor is the query surface shared by *sql.DB and *sql.Tx.
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Exec returns the transaction in ctx, falling back to db.
func Exec(ctx context.Context, db *sql.DB) Executor {
	if tx, ok := From(ctx); ok {
		return tx
	}
	return db
}

// Run opens a transaction, exposes it through the returned context and commits
// when fn succeeds. Any error or panic from fn rolls the transaction back;
// panics are re-raised after the rollback.
func Run(ctx context.Context, db *sql.DB, opts *sql.TxOptions, fn func(ctx context.Context) error) error {
	if _, ok := From(ctx); ok {
		return fn(ctx)
	}
	tx, err := db.BeginTx(ctx, opts)
	if err != nil {
		return err
	}
	ctx, flush := Deferred(ctx)
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()
	if err := fn(WithTx(ctx, tx)); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	flush()
	return nil
}

type hooksKey struct{}

type hooks struct {
	mu  sync.Mutex
	fns []func()
}

func (h *hooks) run() {
	h.mu.Lock()
	fns := h.fns
	h.fns = nil
	h.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// Deferred returns a context collecting AfterCommit callbacks and a flush
// that runs them in order. A transaction that rolls back never calls flush.
// Nested calls share the outermost collector and get a no-op flush.
func Deferred(ctx context.Context) (context.Context, func()) {
	if _, ok := ctx.Value(hooksKey{}).(*hooks); ok {
		return ctx, func() {}
	}
	h := &hooks{}
	return context.WithValue(ctx, hooksKey{}, h), h.run
}

// AfterCommit runs fn once the transaction in ctx commits, or right away when
// ctx carries none.
func AfterCommit(ctx context.Context, fn func()) {
	if h, ok := ctx.Value(hooksKey{}).(*hooks); ok {
		h.mu.Lock()
		h.fns = append(h.fns, fn)
		h.mu.Unlock()
		return
	}
	fn()
}
