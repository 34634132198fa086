package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"selfid/pkg/platform/events"
	txcontext "selfid/pkg/platform/tx"
)

//go:embed schema.sql
var schema string

// Outbox implements events.Sink using the transactional outbox pattern.
// Envelopes are written to the outbox table in the caller's transaction and
// published to Kafka by the relay.
type Outbox struct {
	db *sql.DB
}

func New(db *sql.DB) *Outbox {
	return &Outbox{db: db}
}

// EnsureSchema creates the outbox table if it does not exist.
func (o *Outbox) EnsureSchema(ctx context.Context) error {
	if _, err := o.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure outbox schema: %w", err)
	}
	return nil
}

// Append writes an envelope to the outbox. It joins the transaction in ctx.
func (o *Outbox) Append(ctx context.Context, envelope events.Envelope) error {
	query := `
		INSERT INTO outbox (id, aggregate_type, aggregate_id, event_type, height, request_id, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := txcontext.Exec(ctx, o.db).ExecContext(ctx, query,
		envelope.ID,
		envelope.AggregateType,
		envelope.AggregateID,
		envelope.Type,
		int64(envelope.Height),
		envelope.RequestID,
		[]byte(envelope.Payload),
		envelope.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert outbox entry: %w", err)
	}
	return nil
}

// FetchUnpublished returns up to limit envelopes not yet published, oldest first.
func (o *Outbox) FetchUnpublished(ctx context.Context, limit int) ([]events.Envelope, error) {
	query := `
		SELECT id, aggregate_type, aggregate_id, event_type, height, request_id, payload, created_at
		FROM outbox
		WHERE published_at IS NULL
		ORDER BY seq
		LIMIT $1
	`
	rows, err := o.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query outbox: %w", err)
	}
	defer rows.Close()

	var envelopes []events.Envelope
	for rows.Next() {
		var (
			env     events.Envelope
			height  int64
			payload []byte
		)
		if err := rows.Scan(
			&env.ID,
			&env.AggregateType,
			&env.AggregateID,
			&env.Type,
			&height,
			&env.RequestID,
			&payload,
			&env.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan outbox entry: %w", err)
		}
		env.Height = uint32(height)
		env.Payload = payload
		envelopes = append(envelopes, env)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outbox: %w", err)
	}
	return envelopes, nil
}

// MarkPublished stamps the given entries as published.
func (o *Outbox) MarkPublished(ctx context.Context, ids []uuid.UUID, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	raw := make([]string, len(ids))
	for i, id := range ids {
		raw[i] = id.String()
	}
	_, err := o.db.ExecContext(ctx,
		`UPDATE outbox SET published_at = $2 WHERE id = ANY($1::uuid[]) AND published_at IS NULL`,
		pq.Array(raw), at)
	if err != nil {
		return fmt.Errorf("mark outbox published: %w", err)
	}
	return nil
}

// PurgePublished deletes entries published before cutoff.
func (o *Outbox) PurgePublished(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := o.db.ExecContext(ctx,
		`DELETE FROM outbox WHERE published_at IS NOT NULL AND published_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge outbox: %w", err)
	}
	return res.RowsAffected()
}
