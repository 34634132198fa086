package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgraph-io/badger/v2"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"
	"golang.org/x/sync/errgroup"

	"selfid/internal/chain"
	jwttoken "selfid/internal/jwt_token"
	"selfid/internal/platform/config"
	"selfid/internal/platform/httpserver"
	"selfid/internal/platform/logger"
	"selfid/internal/platform/metrics"
	"selfid/internal/platform/redis"
	"selfid/internal/pseudonym/handler"
	pseudonymmetrics "selfid/internal/pseudonym/metrics"
	"selfid/internal/pseudonym/publisher"
	"selfid/internal/pseudonym/service"
	"selfid/internal/pseudonym/store"
	httptransport "selfid/internal/transport/http"
	"selfid/pkg/domain"
	"selfid/pkg/platform/circuit"
	"selfid/pkg/platform/events"
	"selfid/pkg/platform/events/kafka"
	"selfid/pkg/platform/events/memory"
	"selfid/pkg/platform/events/postgres"
	"selfid/pkg/platform/middleware/ratelimit"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogFormat, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("selfid stopped", "error", err)
		os.Exit(1)
	}
}

// backend is the storage a registry runs on, with whatever the chosen
// backend brings along.
type backend struct {
	store   service.Store
	tx      service.StoreTx
	sink    events.Sink
	outbox  *postgres.Outbox
	health  map[string]httptransport.HealthCheck
	closers []func() error
}

func (b *backend) close(log *slog.Logger) {
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil {
			log.Warn("failed to close backend", "error", err)
		}
	}
}

func run(ctx context.Context, cfg config.Server, log *slog.Logger) error {
	authority, err := domain.ParseAccountID(cfg.Registry.Authority)
	if err != nil {
		return fmt.Errorf("AUTHORITY_ACCOUNT: %w", err)
	}
	scope, err := service.ParseResetScope(cfg.Registry.ResetScope)
	if err != nil {
		return fmt.Errorf("RESET_SCOPE: %w", err)
	}

	b, err := openBackend(ctx, cfg)
	if err != nil {
		return err
	}
	defer b.close(log)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	emitter, err := publisher.New(b.sink)
	if err != nil {
		return err
	}
	opts := []service.Option{
		service.WithLogger(log),
		service.WithEmitter(emitter),
		service.WithClock(chain.NewTicker(cfg.Registry.Genesis, cfg.Registry.BlockInterval)),
		service.WithUpgrader(chain.NewCodeRegistry(domain.CodeHash{})),
		service.WithResetScope(scope),
		service.WithMetrics(pseudonymmetrics.New(reg)),
	}
	if b.tx != nil {
		opts = append(opts, service.WithTx(b.tx))
	}
	registry, err := service.New(b.store, opts...)
	if err != nil {
		return err
	}
	current, err := registry.Instantiate(ctx, authority)
	if err != nil {
		return fmt.Errorf("instantiate registry: %w", err)
	}
	if current != authority {
		log.Warn("registry already administered by another account", "authority", current.String())
	}

	jwtService := jwttoken.NewJWTService(cfg.JWT.SigningKey, cfg.JWT.Issuer, cfg.JWT.Audience)
	registryHandler := handler.New(registry, jwttoken.NewJWTServiceAdapter(jwtService), log,
		handler.WithRateLimiter(ratelimit.New(cfg.RateLimit.RPS, cfg.RateLimit.Burst)),
	)
	router := httptransport.NewRouter(httptransport.Config{
		Logger:       log,
		Metrics:      metrics.New(reg),
		Gatherer:     reg,
		MetricsToken: cfg.MetricsToken,
		Health:       b.health,
	}, registryHandler)
	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting selfid", "addr", cfg.Addr, "store", cfg.Store.Backend, "authority", current.String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		log.Info("selfid stopped")
		return nil
	})
	if len(cfg.Kafka.Brokers) > 0 && b.outbox != nil {
		if err := startRelay(gctx, g, cfg.Kafka, b.outbox, log); err != nil {
			return err
		}
	}
	return g.Wait()
}

func openBackend(ctx context.Context, cfg config.Server) (*backend, error) {
	feed := memory.NewFeed(memory.WithCapacity(cfg.Registry.FeedCapacity))
	switch cfg.Store.Backend {
	case config.StorePostgres:
		db, err := sql.Open("pgx", cfg.Store.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("ping postgres: %w", err)
		}
		pg := store.NewPostgres(db)
		outbox := postgres.New(db)
		for _, ensure := range []func(context.Context) error{pg.EnsureSchema, outbox.EnsureSchema} {
			if err := ensure(ctx); err != nil {
				_ = db.Close()
				return nil, err
			}
		}
		return &backend{
			store:   pg,
			tx:      store.NewPostgresTx(db),
			sink:    outbox,
			outbox:  outbox,
			health:  map[string]httptransport.HealthCheck{"postgres": db.PingContext},
			closers: []func() error{db.Close},
		}, nil

	case config.StoreRedis:
		client, err := redis.New(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		rs := store.NewRedis(client.Client)
		return &backend{
			store:   rs,
			tx:      rs.Tx(),
			sink:    feed,
			health:  map[string]httptransport.HealthCheck{"redis": client.Health},
			closers: []func() error{client.Close},
		}, nil

	case config.StoreBadger:
		db, err := store.OpenBadger(cfg.Store.BadgerDir)
		if err != nil {
			return nil, err
		}
		bs := store.NewBadger(db)
		return &backend{
			store:   bs,
			tx:      bs.Tx(),
			sink:    feed,
			health:  map[string]httptransport.HealthCheck{"badger": badgerHealth(db)},
			closers: []func() error{db.Close},
		}, nil

	default:
		return &backend{
			store: store.NewInMemory(),
			sink:  feed,
		}, nil
	}
}

func badgerHealth(db *badger.DB) httptransport.HealthCheck {
	return func(context.Context) error {
		if db.IsClosed() {
			return errors.New("badger is closed")
		}
		return nil
	}
}

// startRelay ships outbox rows to Kafka and prunes what was published a day ago.
func startRelay(ctx context.Context, g *errgroup.Group, cfg config.KafkaConfig, outbox *postgres.Outbox, log *slog.Logger) error {
	client, err := kafka.NewClient(cfg.Brokers, kgo.ClientID("selfid"))
	if err != nil {
		return err
	}
	if err := kafka.EnsureTopic(ctx, kadm.NewClient(client), cfg.Topic, 1, 1); err != nil {
		client.Close()
		return err
	}
	relay, err := kafka.NewRelay(outbox, client, cfg.Topic,
		kafka.WithInterval(cfg.RelayInterval),
		kafka.WithLogger(log),
		kafka.WithBreaker(circuit.New("kafka", circuit.WithFailureThreshold(5), circuit.WithCooldown(30*time.Second))),
	)
	if err != nil {
		client.Close()
		return err
	}

	g.Go(func() error {
		defer client.Close()
		if err := relay.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				n, err := outbox.PurgePublished(ctx, time.Now().Add(-24*time.Hour))
				if err != nil {
					log.Warn("failed to prune outbox", "error", err)
					continue
				}
				if n > 0 {
					log.Info("pruned outbox", "rows", n)
				}
			}
		}
	})
	return nil
}
