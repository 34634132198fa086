package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"selfid/internal/chain"
	pseudonymmetrics "selfid/internal/pseudonym/metrics"
	"selfid/internal/pseudonym/models"
	"selfid/pkg/domain"
)

// Store is the key-value substrate behind the registry. Every write method is
// atomic on its own; the service runs all checks before calling one.
// Lookups of absent keys return sentinel.ErrNotFound.
type Store interface {
	Authority(ctx context.Context) (domain.AccountID, error)
	SetAuthority(ctx context.Context, authority domain.AccountID) error

	IsVerifier(ctx context.Context, account domain.AccountID) (bool, error)
	AddVerifier(ctx context.Context, account domain.AccountID) error
	RemoveVerifier(ctx context.Context, account domain.AccountID) error
	ClearVerifiers(ctx context.Context) error

	FindPseudonym(ctx context.Context, account domain.AccountID) (models.Identifier, error)
	FindInfo(ctx context.Context, id models.Identifier) (*models.Info, error)

	// Claim deletes previous (when non-nil) from both mappings and inserts
	// account -> id and id -> info, as one write.
	Claim(ctx context.Context, account domain.AccountID, previous *models.Identifier, id models.Identifier, info *models.Info) error
	SaveInfo(ctx context.Context, id models.Identifier, info *models.Info) error

	// Purge drops verifiers, pseudonyms and accounts. The authority survives.
	Purge(ctx context.Context) error
}

// Emitter records successful state changes.
type Emitter interface {
	Emit(ctx context.Context, event models.Event) error
}

// ResetScope selects what ResetAll clears.
type ResetScope string

const (
	// ResetVerifiers clears only the verifier set; claimed pseudonyms stay.
	ResetVerifiers ResetScope = "verifiers"
	// ResetEverything also drops every pseudonym and account binding.
	ResetEverything ResetScope = "all"
)

// ParseResetScope accepts "verifiers" and "all"; "" means ResetVerifiers.
func ParseResetScope(s string) (ResetScope, error) {
	switch ResetScope(s) {
	case "", ResetVerifiers:
		return ResetVerifiers, nil
	case ResetEverything:
		return ResetEverything, nil
	}
	return "", fmt.Errorf("unknown reset scope %q", s)
}

// Service is the pseudonym registry: claim, verify, verifier administration
// and the authority-only reset and upgrade paths.
type Service struct {
	store      Store
	tx         StoreTx
	emitter    Emitter
	clock      chain.Clock
	upgrader   chain.Upgrader
	resetScope ResetScope
	logger     *slog.Logger
	metrics    *pseudonymmetrics.Metrics
	tracer     trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithEmitter(emitter Emitter) Option {
	return func(s *Service) {
		s.emitter = emitter
	}
}

func WithClock(clock chain.Clock) Option {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

func WithUpgrader(upgrader chain.Upgrader) Option {
	return func(s *Service) {
		if upgrader != nil {
			s.upgrader = upgrader
		}
	}
}

// WithTx replaces the default in-process transaction boundary.
func WithTx(tx StoreTx) Option {
	return func(s *Service) {
		if tx != nil {
			s.tx = tx
		}
	}
}

func WithResetScope(scope ResetScope) Option {
	return func(s *Service) {
		s.resetScope = scope
	}
}

func WithMetrics(m *pseudonymmetrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		if tracer != nil {
			s.tracer = tracer
		}
	}
}

// New constructs a Service. The store is required.
func New(store Store, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("pseudonym store is required")
	}
	s := &Service{
		store:      store,
		clock:      chain.NewTicker(time.Now(), 0),
		upgrader:   chain.NewCodeRegistry(domain.CodeHash{}),
		resetScope: ResetVerifiers,
		tracer:     otel.Tracer("selfid/internal/pseudonym/service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.tx == nil {
		s.tx = NewInMemoryStoreTx(store)
	}
	if _, err := ParseResetScope(string(s.resetScope)); err != nil {
		return nil, err
	}
	return s, nil
}
