package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the audit module. Write failures are
// the alerting signal: the evaluator keeps answering when audit writes fail,
// so this counter is the only place those failures surface besides logs.
type Metrics struct {
	EntriesRecorded prometheus.Counter
	WriteFailures   prometheus.Counter
	Published       prometheus.Counter
	PublishFailures prometheus.Counter
}

// New creates a Metrics instance with all audit module metrics registered.
func New() *Metrics {
	return &Metrics{
		EntriesRecorded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fleetdesk_audit_entries_recorded_total",
			Help: "Total number of compliance audit entries written",
		}),
		WriteFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fleetdesk_audit_write_failures_total",
			Help: "Total number of failed audit entry writes",
		}),
		Published: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fleetdesk_audit_outbox_published_total",
			Help: "Total number of outbox records published to Kafka",
		}),
		PublishFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fleetdesk_audit_outbox_publish_failures_total",
			Help: "Total number of failed outbox publish attempts",
		}),
	}
}

// IncrementRecorded records a successful audit entry write.
func (m *Metrics) IncrementRecorded() {
	m.EntriesRecorded.Inc()
}

// IncrementWriteFailure records a failed audit entry write.
func (m *Metrics) IncrementWriteFailure() {
	m.WriteFailures.Inc()
}

// IncrementPublished records outbox records successfully published.
func (m *Metrics) IncrementPublished(n int) {
	m.Published.Add(float64(n))
}

// IncrementPublishFailure records a failed outbox publish attempt.
func (m *Metrics) IncrementPublishFailure() {
	m.PublishFailures.Inc()
}
