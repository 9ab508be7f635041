package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the audit chain and its retention job.
type Metrics struct {
	EventsAppended    *prometheus.CounterVec
	AppendConflicts   prometheus.Counter
	PublishFailures   prometheus.Counter
	RetentionDeleted  prometheus.Counter
	RetentionFailed   prometheus.Counter
	RetentionDuration prometheus.Histogram
}

// New registers the audit metrics with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		EventsAppended: f.NewCounterVec(prometheus.CounterOpts{
			Name: "gdprkv_audit_events_appended_total",
			Help: "Audit events appended to subject chains, by event type",
		}, []string{"event_type"}),
		AppendConflicts: f.NewCounter(prometheus.CounterOpts{
			Name: "gdprkv_audit_append_conflicts_total",
			Help: "Appends retried because another writer took the chain head",
		}),
		PublishFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "gdprkv_audit_publish_failures_total",
			Help: "Appended audit events that could not be published downstream",
		}),
		RetentionDeleted: f.NewCounter(prometheus.CounterOpts{
			Name: "gdprkv_audit_retention_deleted_total",
			Help: "Audit events deleted by the retention job",
		}),
		RetentionFailed: f.NewCounter(prometheus.CounterOpts{
			Name: "gdprkv_audit_retention_failed_total",
			Help: "Audit events the retention job failed to delete",
		}),
		RetentionDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "gdprkv_audit_retention_duration_seconds",
			Help:    "Duration of audit retention runs",
			Buckets: prometheus.ExponentialBuckets(0.01, 4, 8),
		}),
	}
}

func (m *Metrics) IncrementAppended(eventType string) {
	if m == nil {
		return
	}
	m.EventsAppended.WithLabelValues(eventType).Inc()
}

func (m *Metrics) IncrementConflict() {
	if m == nil {
		return
	}
	m.AppendConflicts.Inc()
}

func (m *Metrics) IncrementPublishFailure() {
	if m == nil {
		return
	}
	m.PublishFailures.Inc()
}

// ObserveRetention records one retention run.
func (m *Metrics) ObserveRetention(deleted, failed int, start time.Time) {
	if m == nil {
		return
	}
	m.RetentionDeleted.Add(float64(deleted))
	m.RetentionFailed.Add(float64(failed))
	m.RetentionDuration.Observe(time.Since(start).Seconds())
}
