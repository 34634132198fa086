package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the pseudonym registry.
// Tracks state changes, rejected calls by kind and per-operation latency.
type Metrics struct {
	Claims            prometheus.Counter
	Verifications     prometheus.Counter
	VerifierUpdates   *prometheus.CounterVec
	Resets            prometheus.Counter
	Upgrades          prometheus.Counter
	Rejections        *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
}

// New registers the registry metrics with reg. A nil reg uses the default
// registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)
	return &Metrics{
		Claims: f.NewCounter(prometheus.CounterOpts{
			Name: "selfid_pseudonym_claims_total",
			Help: "Total number of successful pseudonym claims",
		}),
		Verifications: f.NewCounter(prometheus.CounterOpts{
			Name: "selfid_pseudonym_verifications_total",
			Help: "Total number of pseudonyms verified",
		}),
		VerifierUpdates: f.NewCounterVec(prometheus.CounterOpts{
			Name: "selfid_verifier_updates_total",
			Help: "Total number of verifier set changes",
		}, []string{"action"}),
		Resets: f.NewCounter(prometheus.CounterOpts{
			Name: "selfid_registry_resets_total",
			Help: "Total number of registry resets",
		}),
		Upgrades: f.NewCounter(prometheus.CounterOpts{
			Name: "selfid_code_upgrades_total",
			Help: "Total number of code hash redirects",
		}),
		Rejections: f.NewCounterVec(prometheus.CounterOpts{
			Name: "selfid_registry_rejections_total",
			Help: "Registry calls rejected, by error kind",
		}, []string{"kind"}),
		OperationDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "selfid_registry_operation_duration_seconds",
			Help:    "Duration of registry operations",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"operation"}),
	}
}

func (m *Metrics) IncrementClaims() {
	m.Claims.Inc()
}

func (m *Metrics) IncrementVerifications() {
	m.Verifications.Inc()
}

// IncrementVerifierUpdate records an add or a removal.
func (m *Metrics) IncrementVerifierUpdate(removed bool) {
	action := "added"
	if removed {
		action = "removed"
	}
	m.VerifierUpdates.WithLabelValues(action).Inc()
}

func (m *Metrics) IncrementResets() {
	m.Resets.Inc()
}

func (m *Metrics) IncrementUpgrades() {
	m.Upgrades.Inc()
}

// IncrementRejection records a call that failed with a registry error kind.
func (m *Metrics) IncrementRejection(kind string) {
	m.Rejections.WithLabelValues(kind).Inc()
}

// ObserveOperation records the duration of one registry operation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveOperation(operation string, start time.Time) {
	m.OperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
