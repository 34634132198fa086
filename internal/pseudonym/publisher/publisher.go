// Package publisher turns registry events into envelopes for an events.Sink.
package publisher

import (
	"context"
	"errors"

	"selfid/internal/pseudonym/models"
	"selfid/pkg/platform/events"
	"selfid/pkg/requestcontext"
)

const (
	aggregateAccount  = "account"
	aggregateRegistry = "registry"
)

// Publisher implements service.Emitter on top of a sink.
type Publisher struct {
	sink events.Sink
}

func New(sink events.Sink) (*Publisher, error) {
	if sink == nil {
		return nil, errors.New("event sink is required")
	}
	return &Publisher{sink: sink}, nil
}

func (p *Publisher) Emit(ctx context.Context, event models.Event) error {
	aggregateType, aggregateID := aggregateOf(event)
	env, err := events.New(string(event.Type()), aggregateType, aggregateID, uint32(event.Height()), event)
	if err != nil {
		return err
	}
	env.RequestID = requestcontext.RequestID(ctx)
	return p.sink.Append(ctx, env)
}

// aggregateOf keys account events by the account they change so a consumer
// sees one account's history in order.
func aggregateOf(event models.Event) (string, string) {
	switch e := event.(type) {
	case models.IdentityInserted:
		return aggregateAccount, e.Account.String()
	case models.IdentityRemoved:
		return aggregateAccount, e.Account.String()
	case models.IdentityVerified:
		return aggregateAccount, e.Account.String()
	case models.VerifierUpdated:
		return aggregateAccount, e.Who.String()
	default:
		return aggregateRegistry, aggregateRegistry
	}
}
