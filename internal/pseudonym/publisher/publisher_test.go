package publisher

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"selfid/internal/pseudonym/models"
	"selfid/pkg/domain"
	"selfid/pkg/platform/events/memory"
	"selfid/pkg/requestcontext"
)

func TestNewRequiresSink(t *testing.T) {
	_, err := New(nil)
	assert.ErrorContains(t, err, "event sink is required")
}

func TestEmit(t *testing.T) {
	feed := memory.NewFeed()
	p, err := New(feed)
	require.NoError(t, err)

	var account domain.AccountID
	account[0] = 0xaa
	ctx := requestcontext.WithRequestID(context.Background(), "req-1")

	require.NoError(t, p.Emit(ctx, models.IdentityInserted{Account: account, Pseudonym: "alice_01", At: 7}))
	require.NoError(t, p.Emit(ctx, models.StoragePurged{At: 8}))

	got := feed.List()
	require.Len(t, got, 2)

	assert.Equal(t, "identity_inserted", got[0].Type)
	assert.Equal(t, "account", got[0].AggregateType)
	assert.Equal(t, account.String(), got[0].AggregateID)
	assert.Equal(t, uint32(7), got[0].Height)
	assert.Equal(t, "req-1", got[0].RequestID)
	assert.JSONEq(t,
		`{"account":"`+account.String()+`","pseudonym":"alice_01","at":7}`,
		string(got[0].Payload))

	assert.Equal(t, "storage_purged", got[1].Type)
	assert.Equal(t, "registry", got[1].AggregateID)
}
