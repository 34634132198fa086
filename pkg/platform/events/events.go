// Package events carries domain events from services to their transports.
// Services hand an Envelope to a Sink; the sink is an in-process feed or a
// transactional outbox relayed to Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Envelope is one event as stored and published. Payload is the JSON form of
// the domain event.
type Envelope struct {
	ID            uuid.UUID
	Type          string
	AggregateType string
	AggregateID   string
	Height        uint32
	RequestID     string
	Payload       json.RawMessage
	CreatedAt     time.Time
}

// Sink accepts envelopes. Append must be called inside the transaction that
// produced the change when the sink is transactional.
type Sink interface {
	Append(ctx context.Context, envelope Envelope) error
}

// New builds an envelope with a fresh id, encoding data as the payload.
func New(eventType, aggregateType, aggregateID string, height uint32, data any) (Envelope, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	return Envelope{
		ID:            uuid.New(),
		Type:          eventType,
		AggregateType: aggregateType,
		AggregateID:   aggregateID,
		Height:        height,
		Payload:       payload,
		CreatedAt:     time.Now().UTC(),
	}, nil
}
