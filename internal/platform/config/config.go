package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Store backends.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
	StoreBadger   = "badger"
)

// DefaultGenesis anchors block heights when GENESIS_TIME is unset, so
// heights stay monotonic across restarts.
var DefaultGenesis = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// Server captures process level configuration.
type Server struct {
	Addr         string
	LogFormat    string
	LogLevel     string
	MetricsToken string

	JWT       JWTConfig
	Store     StoreConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	Registry  RegistryConfig
	RateLimit RateLimitConfig
}

type JWTConfig struct {
	SigningKey string
	Issuer     string
	Audience   string
}

type StoreConfig struct {
	Backend     string
	DatabaseURL string
	BadgerDir   string
}

// RedisConfig tunes the go-redis pool. An empty URL means Redis is not used.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig enables the outbox relay when Brokers is non-empty.
type KafkaConfig struct {
	Brokers       []string
	Topic         string
	RelayInterval time.Duration
}

type RegistryConfig struct {
	// Authority is the account that instantiates the registry.
	Authority     string
	ResetScope    string
	Genesis       time.Time
	BlockInterval time.Duration
	// FeedCapacity bounds the in-process event feed of the memory, redis and
	// badger stores.
	FeedCapacity int
}

type RateLimitConfig struct {
	RPS   float64
	Burst int
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() (Server, error) {
	cfg := Server{
		Addr:         getEnv("SELFID_ADDR", ":8080"),
		LogFormat:    getEnv("LOG_FORMAT", "json"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		MetricsToken: os.Getenv("METRICS_TOKEN"),
		JWT: JWTConfig{
			// Use a default for development - should be overridden in production
			SigningKey: getEnv("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
			Issuer:     getEnv("JWT_ISSUER", "selfid"),
			Audience:   getEnv("JWT_AUDIENCE", "selfid"),
		},
		Store: StoreConfig{
			Backend:     getEnv("SELFID_STORE", StoreMemory),
			DatabaseURL: os.Getenv("DATABASE_URL"),
			BadgerDir:   getEnv("BADGER_DIR", "./data/badger"),
		},
		Redis: RedisConfig{
			URL: os.Getenv("REDIS_URL"),
		},
		Kafka: KafkaConfig{
			Topic: getEnv("KAFKA_TOPIC", "selfid.registry"),
		},
		Registry: RegistryConfig{
			Authority:  os.Getenv("AUTHORITY_ACCOUNT"),
			ResetScope: getEnv("RESET_SCOPE", "verifiers"),
		},
	}
	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.Kafka.Brokers = append(cfg.Kafka.Brokers, b)
			}
		}
	}

	var err error
	if cfg.Redis.PoolSize, err = getInt("REDIS_POOL_SIZE", 10); err != nil {
		return Server{}, err
	}
	if cfg.Redis.MinIdleConns, err = getInt("REDIS_MIN_IDLE_CONNS", 2); err != nil {
		return Server{}, err
	}
	if cfg.Redis.DialTimeout, err = getDuration("REDIS_DIAL_TIMEOUT", 5*time.Second); err != nil {
		return Server{}, err
	}
	if cfg.Redis.ReadTimeout, err = getDuration("REDIS_READ_TIMEOUT", 3*time.Second); err != nil {
		return Server{}, err
	}
	if cfg.Redis.WriteTimeout, err = getDuration("REDIS_WRITE_TIMEOUT", 3*time.Second); err != nil {
		return Server{}, err
	}
	if cfg.Kafka.RelayInterval, err = getDuration("KAFKA_RELAY_INTERVAL", time.Second); err != nil {
		return Server{}, err
	}
	if cfg.Registry.BlockInterval, err = getDuration("BLOCK_INTERVAL", 6*time.Second); err != nil {
		return Server{}, err
	}
	if cfg.Registry.FeedCapacity, err = getInt("EVENT_FEED_CAPACITY", 10000); err != nil {
		return Server{}, err
	}
	if cfg.RateLimit.Burst, err = getInt("RATE_LIMIT_BURST", 20); err != nil {
		return Server{}, err
	}
	rps := getEnv("RATE_LIMIT_RPS", "5")
	if cfg.RateLimit.RPS, err = strconv.ParseFloat(rps, 64); err != nil {
		return Server{}, fmt.Errorf("RATE_LIMIT_RPS: %w", err)
	}
	cfg.Registry.Genesis = DefaultGenesis
	if genesis := os.Getenv("GENESIS_TIME"); genesis != "" {
		if cfg.Registry.Genesis, err = time.Parse(time.RFC3339, genesis); err != nil {
			return Server{}, fmt.Errorf("GENESIS_TIME: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

// Validate checks cross-field requirements.
func (c Server) Validate() error {
	switch c.Store.Backend {
	case StoreMemory, StoreBadger:
	case StorePostgres:
		if c.Store.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres store")
		}
	case StoreRedis:
		if c.Redis.URL == "" {
			return fmt.Errorf("REDIS_URL is required for the redis store")
		}
	default:
		return fmt.Errorf("unknown SELFID_STORE %q", c.Store.Backend)
	}
	if c.Registry.BlockInterval <= 0 {
		return fmt.Errorf("BLOCK_INTERVAL must be positive")
	}
	if c.Registry.FeedCapacity <= 0 {
		return fmt.Errorf("EVENT_FEED_CAPACITY must be positive")
	}
	if len(c.Kafka.Brokers) > 0 && c.Store.Backend != StorePostgres {
		return fmt.Errorf("KAFKA_BROKERS requires the postgres store")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
