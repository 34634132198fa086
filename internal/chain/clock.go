// Package chain holds the execution-environment collaborators the registry
// consumes: the block height source and the code upgrade mechanism.
package chain

import (
	"context"
	"sync/atomic"
	"time"

	"selfid/pkg/domain"
)

// Clock reports the block height a call executes at.
type Clock interface {
	Height(ctx context.Context) domain.BlockHeight
}

// Ticker derives the height from wall time: one block per interval since
// genesis. Heights never go backwards even if the wall clock does.
type Ticker struct {
	genesis  time.Time
	interval time.Duration
	now      func() time.Time
	last     atomic.Uint32
}

// TickerOption configures a Ticker.
type TickerOption func(*Ticker)

// WithNow overrides the time source.
func WithNow(now func() time.Time) TickerOption {
	return func(t *Ticker) {
		if now != nil {
			t.now = now
		}
	}
}

// NewTicker builds a Ticker. A non-positive interval defaults to six seconds.
func NewTicker(genesis time.Time, interval time.Duration, opts ...TickerOption) *Ticker {
	if interval <= 0 {
		interval = 6 * time.Second
	}
	t := &Ticker{genesis: genesis, interval: interval, now: time.Now}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Ticker) Height(_ context.Context) domain.BlockHeight {
	elapsed := t.now().Sub(t.genesis)
	var h uint32
	if elapsed > 0 {
		blocks := int64(elapsed / t.interval)
		if blocks > int64(^uint32(0)) {
			blocks = int64(^uint32(0))
		}
		h = uint32(blocks)
	}
	for {
		last := t.last.Load()
		if h <= last {
			return domain.BlockHeight(last)
		}
		if t.last.CompareAndSwap(last, h) {
			return domain.BlockHeight(h)
		}
	}
}

// Fixed always reports the same height.
type Fixed domain.BlockHeight

func (f Fixed) Height(context.Context) domain.BlockHeight {
	return domain.BlockHeight(f)
}
