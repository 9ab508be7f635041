package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics covers record writes, tombstones and the purge sweeper.
type Metrics struct {
	RecordsWritten    *prometheus.CounterVec
	RecordsTombstoned prometheus.Counter
	VersionConflicts  prometheus.Counter
	PurgeCandidates   prometheus.Counter
	PurgeSkipped      prometheus.Counter
	Purged            prometheus.Counter
	PurgeFailed       prometheus.Counter
	PurgeRunDuration  prometheus.Histogram
}

// New registers the record metrics with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		RecordsWritten: f.NewCounterVec(prometheus.CounterOpts{
			Name: "gdprkv_records_written_total",
			Help: "Record writes, by kind (new, update)",
		}, []string{"kind"}),
		RecordsTombstoned: f.NewCounter(prometheus.CounterOpts{
			Name: "gdprkv_records_tombstoned_total",
			Help: "Records transitioned to tombstoned",
		}),
		VersionConflicts: f.NewCounter(prometheus.CounterOpts{
			Name: "gdprkv_record_version_conflicts_total",
			Help: "Record writes rejected by the optimistic version check",
		}),
		PurgeCandidates: f.NewCounter(prometheus.CounterOpts{
			Name: "gdprkv_purge_candidates_total",
			Help: "Records returned by the purge-due index",
		}),
		PurgeSkipped: f.NewCounter(prometheus.CounterOpts{
			Name: "gdprkv_purge_skipped_total",
			Help: "Purge candidates that failed re-validation",
		}),
		Purged: f.NewCounter(prometheus.CounterOpts{
			Name: "gdprkv_purged_total",
			Help: "Records physically deleted by the purge sweeper",
		}),
		PurgeFailed: f.NewCounter(prometheus.CounterOpts{
			Name: "gdprkv_purge_failed_total",
			Help: "Purge candidates that could not be deleted",
		}),
		PurgeRunDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "gdprkv_purge_run_duration_seconds",
			Help:    "Duration of purge sweeper runs",
			Buckets: prometheus.ExponentialBuckets(0.01, 4, 8),
		}),
	}
}

func (m *Metrics) IncrementWritten(isNew bool) {
	if m == nil {
		return
	}
	kind := "update"
	if isNew {
		kind = "new"
	}
	m.RecordsWritten.WithLabelValues(kind).Inc()
}

func (m *Metrics) IncrementTombstoned() {
	if m == nil {
		return
	}
	m.RecordsTombstoned.Inc()
}

func (m *Metrics) IncrementVersionConflict() {
	if m == nil {
		return
	}
	m.VersionConflicts.Inc()
}

// ObservePurgeRun records the totals of one sweeper run.
func (m *Metrics) ObservePurgeRun(candidates, skipped, purged, failed int, d time.Duration) {
	if m == nil {
		return
	}
	m.PurgeCandidates.Add(float64(candidates))
	m.PurgeSkipped.Add(float64(skipped))
	m.Purged.Add(float64(purged))
	m.PurgeFailed.Add(float64(failed))
	m.PurgeRunDuration.Observe(d.Seconds())
}
