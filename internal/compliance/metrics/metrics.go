package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the compliance evaluator.
type Metrics struct {
	Evaluations        *prometheus.CounterVec
	CommitConflicts    prometheus.Counter
	EvaluationDuration prometheus.Histogram
}

// New creates a Metrics instance with all evaluator metrics registered.
func New() *Metrics {
	return &Metrics{
		Evaluations: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "fleetdesk_compliance_evaluations_total",
			Help: "Total number of compliance evaluations by decision",
		}, []string{"decision"}),
		CommitConflicts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fleetdesk_compliance_commit_conflicts_total",
			Help: "Total number of counter commits retried after a concurrent update",
		}),
		EvaluationDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "fleetdesk_compliance_evaluation_duration_seconds",
			Help:    "Duration of compliance evaluations (quote critical path)",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// IncrementEvaluation records one evaluation outcome.
func (m *Metrics) IncrementEvaluation(decision string) {
	m.Evaluations.WithLabelValues(decision).Inc()
}

// IncrementCommitConflict records a stale-baseline commit retry.
func (m *Metrics) IncrementCommitConflict() {
	m.CommitConflicts.Inc()
}

// ObserveEvaluation records the duration of one evaluation.
// Call with time.Now() at the start of the operation.
func (m *Metrics) ObserveEvaluation(start time.Time) {
	m.EvaluationDuration.Observe(time.Since(start).Seconds())
}
