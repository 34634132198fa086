package memory

import (
	"context"
	"sync"

	"selfid/pkg/platform/events"
	txcontext "selfid/pkg/platform/tx"
)

// DefaultCapacity is how many envelopes a Feed retains unless configured.
const DefaultCapacity = 10000

// Feed keeps the most recent envelopes in order and fans them out to
// subscribers. Slow subscribers miss envelopes rather than block writers.
// Envelopes appended inside a transaction become visible when it commits.
type Feed struct {
	mu          sync.RWMutex
	capacity    int
	envelopes   []events.Envelope
	start       int
	subscribers []chan events.Envelope
}

type Option func(*Feed)

// WithCapacity bounds the retained envelopes; the oldest are evicted first.
// Values below one are ignored.
func WithCapacity(capacity int) Option {
	return func(f *Feed) {
		if capacity > 0 {
			f.capacity = capacity
		}
	}
}

func NewFeed(opts ...Option) *Feed {
	f := &Feed{capacity: DefaultCapacity}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Append never fails. Inside a transaction the envelope is held back until
// commit and dropped on rollback.
func (f *Feed) Append(ctx context.Context, envelope events.Envelope) error {
	txcontext.AfterCommit(ctx, func() { f.publish(envelope) })
	return nil
}

func (f *Feed) publish(envelope events.Envelope) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.envelopes) < f.capacity {
		f.envelopes = append(f.envelopes, envelope)
	} else {
		f.envelopes[f.start] = envelope
		f.start = (f.start + 1) % f.capacity
	}
	for _, ch := range f.subscribers {
		select {
		case ch <- envelope:
		default:
		}
	}
}

// List returns a copy of the retained envelopes, oldest first.
func (f *Feed) List() []events.Envelope {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]events.Envelope, 0, len(f.envelopes))
	out = append(out, f.envelopes[f.start:]...)
	return append(out, f.envelopes[:f.start]...)
}

// Types returns the event types of the retained envelopes, in order.
func (f *Feed) Types() []string {
	list := f.List()
	types := make([]string, len(list))
	for i, e := range list {
		types[i] = e.Type
	}
	return types
}

// Len reports how many envelopes are retained.
func (f *Feed) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.envelopes)
}

// Subscribe returns a channel receiving envelopes appended after the call.
// The channel is closed when ctx is done.
func (f *Feed) Subscribe(ctx context.Context, buffer int) <-chan events.Envelope {
	ch := make(chan events.Envelope, buffer)
	f.mu.Lock()
	f.subscribers = append(f.subscribers, ch)
	f.mu.Unlock()

	go func() {
		<-ctx.Done()
		f.mu.Lock()
		defer f.mu.Unlock()
		for i, sub := range f.subscribers {
			if sub == ch {
				f.subscribers = append(f.subscribers[:i], f.subscribers[i+1:]...)
				break
			}
		}
		close(ch)
	}()
	return ch
}

func (f *Feed) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.envelopes = nil
	f.start = 0
}
