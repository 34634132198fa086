package kafka

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"github.com/twmb/franz-go/pkg/kgo"

	"selfid/pkg/platform/circuit"
	"selfid/pkg/platform/events"
)

type fakeOutbox struct {
	mu        sync.Mutex
	pending   []events.Envelope
	published []uuid.UUID
	fetchErr  error
}

func (f *fakeOutbox) FetchUnpublished(_ context.Context, limit int) ([]events.Envelope, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	if len(f.pending) < limit {
		limit = len(f.pending)
	}
	return append([]events.Envelope(nil), f.pending[:limit]...), nil
}

func (f *fakeOutbox) MarkPublished(_ context.Context, ids []uuid.UUID, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, ids...)
	f.pending = f.pending[len(ids):]
	return nil
}

type fakeProducer struct {
	records []*kgo.Record
	err     error
}

func (p *fakeProducer) ProduceSync(_ context.Context, rs ...*kgo.Record) kgo.ProduceResults {
	results := make(kgo.ProduceResults, len(rs))
	for i, r := range rs {
		results[i] = kgo.ProduceResult{Record: r, Err: p.err}
	}
	if p.err == nil {
		p.records = append(p.records, rs...)
	}
	return results
}

type RelaySuite struct {
	suite.Suite
	outbox   *fakeOutbox
	producer *fakeProducer
	relay    *Relay
}

func TestRelaySuite(t *testing.T) {
	suite.Run(t, new(RelaySuite))
}

func (s *RelaySuite) SetupTest() {
	s.outbox = &fakeOutbox{}
	s.producer = &fakeProducer{}
	relay, err := NewRelay(s.outbox, s.producer, "selfid.registry",
		WithBatchSize(2),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	s.Require().NoError(err)
	s.relay = relay
}

func (s *RelaySuite) envelope(eventType, aggregate string) events.Envelope {
	env, err := events.New(eventType, "account", aggregate, 12, map[string]string{"pseudonym": "alice_01"})
	s.Require().NoError(err)
	return env
}

func (s *RelaySuite) TestNewRelay() {
	s.Run("outbox is required", func() {
		_, err := NewRelay(nil, s.producer, "t")
		s.ErrorContains(err, "outbox is required")
	})
	s.Run("producer is required", func() {
		_, err := NewRelay(s.outbox, nil, "t")
		s.ErrorContains(err, "producer is required")
	})
	s.Run("topic is required", func() {
		_, err := NewRelay(s.outbox, s.producer, "")
		s.ErrorContains(err, "topic is required")
	})
}

func (s *RelaySuite) TestRelayOnce() {
	s.Run("empty outbox publishes nothing", func() {
		n, err := s.relay.RelayOnce(context.Background())
		s.Require().NoError(err)
		s.Zero(n)
		s.Empty(s.producer.records)
	})

	s.Run("publishes a batch in order and marks it", func() {
		first := s.envelope("identity_removed", "0xaa")
		second := s.envelope("identity_inserted", "0xaa")
		third := s.envelope("verifier_updated", "0xbb")
		s.outbox.pending = []events.Envelope{first, second, third}

		n, err := s.relay.RelayOnce(context.Background())
		s.Require().NoError(err)
		s.Equal(2, n)
		s.Equal([]uuid.UUID{first.ID, second.ID}, s.outbox.published)

		s.Require().Len(s.producer.records, 2)
		rec := s.producer.records[0]
		s.Equal("selfid.registry", rec.Topic)
		s.Equal([]byte("0xaa"), rec.Key)
		s.JSONEq(`{"pseudonym":"alice_01"}`, string(rec.Value))
		s.Contains(rec.Headers, kgo.RecordHeader{Key: "event_type", Value: []byte("identity_removed")})
		s.Contains(rec.Headers, kgo.RecordHeader{Key: "height", Value: []byte("12")})
	})

	s.Run("producer failure leaves entries unpublished", func() {
		s.outbox.pending = []events.Envelope{s.envelope("storage_purged", "registry")}
		s.outbox.published = nil
		s.producer.err = errors.New("broker down")

		_, err := s.relay.RelayOnce(context.Background())
		s.ErrorContains(err, "broker down")
		s.Empty(s.outbox.published)
		s.Len(s.outbox.pending, 1)
	})

	s.Run("fetch failure is returned", func() {
		s.outbox.fetchErr = errors.New("db down")
		_, err := s.relay.RelayOnce(context.Background())
		s.ErrorContains(err, "db down")
	})
}

func (s *RelaySuite) TestRunStopsOnCancel() {
	ctx, cancel := context.WithCancel(context.Background())
	relay, err := NewRelay(s.outbox, s.producer, "t", WithInterval(5*time.Millisecond))
	s.Require().NoError(err)

	done := make(chan error, 1)
	go func() { done <- relay.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		s.ErrorIs(err, context.Canceled)
	case <-time.After(time.Second):
		s.Fail("relay did not stop")
	}
}

func (s *RelaySuite) TestBreakerStopsHammeringBroker() {
	breaker := circuit.New("kafka", circuit.WithFailureThreshold(2), circuit.WithCooldown(time.Hour))
	relay, err := NewRelay(s.outbox, s.producer, "selfid.registry",
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithBreaker(breaker),
	)
	s.Require().NoError(err)
	s.outbox.fetchErr = errors.New("db down")

	ctx := context.Background()
	relay.tick(ctx)
	s.False(breaker.IsOpen())
	relay.tick(ctx)
	s.True(breaker.IsOpen())

	// within the cooldown ticks are skipped, so a recovered outbox is not read
	s.outbox.fetchErr = nil
	s.outbox.pending = []events.Envelope{s.envelope("identity_inserted", "0xaa")}
	relay.tick(ctx)
	s.Len(s.outbox.pending, 1)
}
