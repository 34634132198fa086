package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, StoreMemory, cfg.Store.Backend)
	assert.Equal(t, "verifiers", cfg.Registry.ResetScope)
	assert.Equal(t, 6*time.Second, cfg.Registry.BlockInterval)
	assert.Equal(t, 10000, cfg.Registry.FeedCapacity)
	assert.Empty(t, cfg.Kafka.Brokers)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("SELFID_STORE", StorePostgres)
	t.Setenv("DATABASE_URL", "postgres://selfid@localhost/selfid")
	t.Setenv("KAFKA_BROKERS", "a:9092, b:9092,")
	t.Setenv("BLOCK_INTERVAL", "6s")
	t.Setenv("GENESIS_TIME", "2024-01-01T00:00:00Z")
	t.Setenv("RATE_LIMIT_RPS", "0.5")
	t.Setenv("EVENT_FEED_CAPACITY", "250")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, []string{"a:9092", "b:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 6*time.Second, cfg.Registry.BlockInterval)
	assert.Equal(t, 2024, cfg.Registry.Genesis.Year())
	assert.InDelta(t, 0.5, cfg.RateLimit.RPS, 1e-9)
	assert.Equal(t, 250, cfg.Registry.FeedCapacity)
}

func TestFromEnv_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"unknown store", map[string]string{"SELFID_STORE": "sqlite"}},
		{"postgres without url", map[string]string{"SELFID_STORE": StorePostgres}},
		{"redis without url", map[string]string{"SELFID_STORE": StoreRedis}},
		{"kafka without postgres", map[string]string{"KAFKA_BROKERS": "a:9092"}},
		{"bad duration", map[string]string{"BLOCK_INTERVAL": "soon"}},
		{"zero interval", map[string]string{"BLOCK_INTERVAL": "0s"}},
		{"bad genesis", map[string]string{"GENESIS_TIME": "yesterday"}},
		{"zero feed capacity", map[string]string{"EVENT_FEED_CAPACITY": "0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}
