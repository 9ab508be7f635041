package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics covers subject creation and erasure.
type Metrics struct {
	SubjectsCreated   prometheus.Counter
	Erasures          *prometheus.CounterVec
	ErasureTombstoned prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		SubjectsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "gdprkv_subjects_created_total",
			Help: "Subjects created",
		}),
		Erasures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "gdprkv_subject_erasures_total",
			Help: "Subject erasure requests, by outcome (completed, failed)",
		}, []string{"outcome"}),
		ErasureTombstoned: f.NewCounter(prometheus.CounterOpts{
			Name: "gdprkv_subject_erasure_records_tombstoned_total",
			Help: "Records tombstoned by subject erasure",
		}),
	}
}

func (m *Metrics) IncrementCreated() {
	if m == nil {
		return
	}
	m.SubjectsCreated.Inc()
}

// ObserveErasure records one erasure attempt.
func (m *Metrics) ObserveErasure(tombstoned int, err error) {
	if m == nil {
		return
	}
	outcome := "completed"
	if err != nil {
		outcome = "failed"
	}
	m.Erasures.WithLabelValues(outcome).Inc()
	m.ErasureTombstoned.Add(float64(tombstoned))
}
