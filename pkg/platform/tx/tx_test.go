package tx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAfterCommit(t *testing.T) {
	t.Run("runs immediately outside a transaction", func(t *testing.T) {
		var ran bool
		AfterCommit(context.Background(), func() { ran = true })
		assert.True(t, ran)
	})

	t.Run("waits for flush inside a transaction", func(t *testing.T) {
		ctx, flush := Deferred(context.Background())
		var order []int
		AfterCommit(ctx, func() { order = append(order, 1) })
		AfterCommit(ctx, func() { order = append(order, 2) })
		assert.Empty(t, order)

		flush()
		assert.Equal(t, []int{1, 2}, order)

		flush()
		assert.Equal(t, []int{1, 2}, order, "callbacks run once")
	})

	t.Run("dropped when the transaction never flushes", func(t *testing.T) {
		ctx, _ := Deferred(context.Background())
		var ran bool
		AfterCommit(ctx, func() { ran = true })
		assert.False(t, ran)
	})

	t.Run("nested collectors defer to the outermost", func(t *testing.T) {
		outer, flush := Deferred(context.Background())
		inner, innerFlush := Deferred(outer)
		var ran bool
		AfterCommit(inner, func() { ran = true })

		innerFlush()
		assert.False(t, ran)
		flush()
		assert.True(t, ran)
	})
}
