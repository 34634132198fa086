// Package kafka publishes outbox entries to a Kafka topic.
package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"

	"selfid/pkg/platform/circuit"
	"selfid/pkg/platform/events"
)

// Outbox is the relay's view of the outbox table.
type Outbox interface {
	FetchUnpublished(ctx context.Context, limit int) ([]events.Envelope, error)
	MarkPublished(ctx context.Context, ids []uuid.UUID, at time.Time) error
}

// Producer is satisfied by *kgo.Client.
type Producer interface {
	ProduceSync(ctx context.Context, rs ...*kgo.Record) kgo.ProduceResults
}

// Relay polls the outbox and publishes unpublished entries in order. An
// entry is marked published only after the broker acknowledged it, so
// delivery is at least once.
type Relay struct {
	outbox    Outbox
	producer  Producer
	topic     string
	interval  time.Duration
	batchSize int
	logger    *slog.Logger
	breaker   *circuit.Breaker
}

type Option func(*Relay)

func WithInterval(d time.Duration) Option {
	return func(r *Relay) {
		if d > 0 {
			r.interval = d
		}
	}
}

func WithBatchSize(n int) Option {
	return func(r *Relay) {
		if n > 0 {
			r.batchSize = n
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(r *Relay) {
		r.logger = logger
	}
}

// WithBreaker skips ticks while the broker keeps failing, probing once per
// breaker cooldown.
func WithBreaker(b *circuit.Breaker) Option {
	return func(r *Relay) {
		r.breaker = b
	}
}

func NewRelay(outbox Outbox, producer Producer, topic string, opts ...Option) (*Relay, error) {
	if outbox == nil {
		return nil, errors.New("outbox is required")
	}
	if producer == nil {
		return nil, errors.New("producer is required")
	}
	if topic == "" {
		return nil, errors.New("topic is required")
	}
	r := &Relay{
		outbox:    outbox,
		producer:  producer,
		topic:     topic,
		interval:  time.Second,
		batchSize: 100,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Run publishes until ctx is done.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r.tick(ctx)
		}
	}
}

func (r *Relay) tick(ctx context.Context) {
	if r.breaker != nil && !r.breaker.Allow() {
		return
	}
	_, err := r.RelayOnce(ctx)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		r.logger.ErrorContext(ctx, "outbox relay failed", "error", err)
		if r.breaker != nil {
			if _, change := r.breaker.RecordFailure(); change.Opened {
				r.logger.WarnContext(ctx, "outbox relay circuit opened", "breaker", r.breaker.Name())
			}
		}
		return
	}
	if r.breaker != nil {
		if _, change := r.breaker.RecordSuccess(); change.Closed {
			r.logger.InfoContext(ctx, "outbox relay circuit closed", "breaker", r.breaker.Name())
		}
	}
}

// RelayOnce publishes one batch and returns how many entries it published.
func (r *Relay) RelayOnce(ctx context.Context) (int, error) {
	pending, err := r.outbox.FetchUnpublished(ctx, r.batchSize)
	if err != nil {
		return 0, err
	}
	if len(pending) == 0 {
		return 0, nil
	}

	records := make([]*kgo.Record, len(pending))
	for i, env := range pending {
		records[i] = toRecord(r.topic, env)
	}
	if err := r.producer.ProduceSync(ctx, records...).FirstErr(); err != nil {
		return 0, fmt.Errorf("produce outbox batch: %w", err)
	}

	ids := make([]uuid.UUID, len(pending))
	for i, env := range pending {
		ids[i] = env.ID
	}
	if err := r.outbox.MarkPublished(ctx, ids, time.Now().UTC()); err != nil {
		return 0, err
	}
	r.logger.DebugContext(ctx, "outbox batch published", "count", len(pending), "topic", r.topic)
	return len(pending), nil
}

// toRecord keys records by aggregate so one account's events stay ordered
// within a partition.
func toRecord(topic string, env events.Envelope) *kgo.Record {
	return &kgo.Record{
		Topic: topic,
		Key:   []byte(env.AggregateID),
		Value: env.Payload,
		Headers: []kgo.RecordHeader{
			{Key: "event_id", Value: []byte(env.ID.String())},
			{Key: "event_type", Value: []byte(env.Type)},
			{Key: "aggregate_type", Value: []byte(env.AggregateType)},
			{Key: "height", Value: []byte(strconv.FormatUint(uint64(env.Height), 10))},
			{Key: "request_id", Value: []byte(env.RequestID)},
		},
		Timestamp: env.CreatedAt,
	}
}

// EnsureTopic creates topic unless it already exists.
func EnsureTopic(ctx context.Context, admin *kadm.Client, topic string, partitions int32, replicationFactor int16) error {
	resp, err := admin.CreateTopics(ctx, partitions, replicationFactor, nil, topic)
	if err != nil {
		return fmt.Errorf("create topic %s: %w", topic, err)
	}
	result, ok := resp[topic]
	if !ok {
		return fmt.Errorf("create topic %s: no response", topic)
	}
	if result.Err != nil && !errors.Is(result.Err, kerr.TopicAlreadyExists) {
		return fmt.Errorf("create topic %s: %w", topic, result.Err)
	}
	return nil
}

// NewClient connects a producer to brokers.
func NewClient(brokers []string, opts ...kgo.Opt) (*kgo.Client, error) {
	opts = append([]kgo.Opt{
		kgo.SeedBrokers(brokers...),
		kgo.RequiredAcks(kgo.AllISRAcks()),
		kgo.ProducerLinger(5 * time.Millisecond),
	}, opts...)
	client, err := kgo.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	return client, nil
}
