//go:build integration

package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"selfid/pkg/platform/events"
	"selfid/pkg/platform/events/postgres"
	txcontext "selfid/pkg/platform/tx"
	"selfid/pkg/testutil/containers"
)

type OutboxSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	outbox   *postgres.Outbox
}

func TestOutboxSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(OutboxSuite))
}

func (s *OutboxSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.outbox = postgres.New(s.postgres.DB)
	s.Require().NoError(s.outbox.EnsureSchema(context.Background()))
}

func (s *OutboxSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "outbox"))
}

func (s *OutboxSuite) envelope(eventType string) events.Envelope {
	env, err := events.New(eventType, "registry", "registry", 1, struct{}{})
	s.Require().NoError(err)
	return env
}

func (s *OutboxSuite) TestAppendAndFetchInOrder() {
	ctx := context.Background()
	first, second := s.envelope("identity_removed"), s.envelope("identity_inserted")
	s.Require().NoError(s.outbox.Append(ctx, first))
	s.Require().NoError(s.outbox.Append(ctx, second))

	pending, err := s.outbox.FetchUnpublished(ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(pending, 2)
	s.Equal(first.ID, pending[0].ID)
	s.Equal(second.ID, pending[1].ID)
	s.Equal(uint32(1), pending[0].Height)
}

func (s *OutboxSuite) TestAppendJoinsTransaction() {
	ctx := context.Background()
	err := txcontext.Run(ctx, s.postgres.DB, nil, func(txCtx context.Context) error {
		s.Require().NoError(s.outbox.Append(txCtx, s.envelope("storage_purged")))
		return context.Canceled
	})
	s.ErrorIs(err, context.Canceled)

	pending, err := s.outbox.FetchUnpublished(ctx, 10)
	s.Require().NoError(err)
	s.Empty(pending)
}

func (s *OutboxSuite) TestMarkAndPurge() {
	ctx := context.Background()
	env := s.envelope("verifier_updated")
	s.Require().NoError(s.outbox.Append(ctx, env))

	s.Require().NoError(s.outbox.MarkPublished(ctx, []uuid.UUID{env.ID}, time.Now().Add(-time.Hour)))
	pending, err := s.outbox.FetchUnpublished(ctx, 10)
	s.Require().NoError(err)
	s.Empty(pending)

	n, err := s.outbox.PurgePublished(ctx, time.Now())
	s.Require().NoError(err)
	s.Equal(int64(1), n)
}
