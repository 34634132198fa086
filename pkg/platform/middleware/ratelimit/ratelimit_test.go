package ratelimit

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"selfid/pkg/domain"
	"selfid/pkg/testutil"
)

func TestAllowPerKey(t *testing.T) {
	l := New(1, 2)
	now := time.Unix(1_700_000_000, 0)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("a"))
	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"), "burst exhausted")
	assert.True(t, l.Allow("b"), "other keys have their own bucket")

	now = now.Add(time.Second)
	assert.True(t, l.Allow("a"), "one token refilled")
}

func TestIdleBucketsAreEvicted(t *testing.T) {
	l := New(1, 1)
	now := time.Unix(1_700_000_000, 0)
	l.now = func() time.Time { return now }

	l.Allow("a")
	now = now.Add(time.Hour)
	l.Allow("b")

	assert.Len(t, l.buckets, 1)
}

func TestMiddleware(t *testing.T) {
	l := New(0.5, 1)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := l.Middleware(logger)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	call := func(caller domain.AccountID) int {
		req := testutil.WithCaller(httptest.NewRequest(http.MethodPut, "/v1/pseudonyms/me", nil), caller)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code == http.StatusTooManyRequests {
			assert.Equal(t, "2", rec.Header().Get("Retry-After"))
		}
		return rec.Code
	}

	assert.Equal(t, http.StatusNoContent, call(testutil.AccountOf(1)))
	assert.Equal(t, http.StatusTooManyRequests, call(testutil.AccountOf(1)))
	assert.Equal(t, http.StatusNoContent, call(testutil.AccountOf(2)))
}
