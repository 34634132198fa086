package chain

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"selfid/pkg/domain"
)

func TestTicker(t *testing.T) {
	genesis := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	now := genesis
	ticker := NewTicker(genesis, 6*time.Second, WithNow(func() time.Time { return now }))
	ctx := context.Background()

	assert.Equal(t, domain.BlockHeight(0), ticker.Height(ctx))

	now = genesis.Add(61 * time.Second)
	assert.Equal(t, domain.BlockHeight(10), ticker.Height(ctx))

	t.Run("never goes backwards", func(t *testing.T) {
		now = genesis.Add(5 * time.Second)
		assert.Equal(t, domain.BlockHeight(10), ticker.Height(ctx))
	})

	t.Run("before genesis is height zero", func(t *testing.T) {
		early := NewTicker(genesis, 0, WithNow(func() time.Time { return genesis.Add(-time.Hour) }))
		assert.Equal(t, domain.BlockHeight(0), early.Height(ctx))
	})
}

func TestCodeRegistry(t *testing.T) {
	ctx := context.Background()
	initial := domain.CodeHash{1}
	registry := NewCodeRegistry(initial)

	require.ErrorIs(t, registry.SetCodeHash(ctx, domain.CodeHash{}), ErrZeroCodeHash)
	assert.Equal(t, initial, registry.Current())

	next := domain.CodeHash{2}
	require.NoError(t, registry.SetCodeHash(ctx, next))
	assert.Equal(t, next, registry.Current())
	assert.Equal(t, []domain.CodeHash{initial}, registry.History())

	t.Run("cancelled context fails", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		require.Error(t, registry.SetCodeHash(cancelled, domain.CodeHash{3}))
	})
}
