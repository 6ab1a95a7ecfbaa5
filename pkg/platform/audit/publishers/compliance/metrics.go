package compliance

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	eventsEmitted   prometheus.Counter
	persistFailures prometheus.Counter
	persistDuration prometheus.Histogram
}

func NewMetrics() *Metrics {
	return NewMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func NewMetricsWithRegisterer(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		eventsEmitted: f.NewCounter(prometheus.CounterOpts{
			Name: "duediligence_audit_compliance_events_total",
			Help: "Compliance audit events persisted",
		}),
		persistFailures: f.NewCounter(prometheus.CounterOpts{
			Name: "duediligence_audit_compliance_failures_total",
			Help: "Compliance audit events that failed to persist",
		}),
		persistDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "duediligence_audit_compliance_persist_seconds",
			Help:    "Time to persist a compliance audit event",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		}),
	}
}

func (m *Metrics) IncEventsEmitted() {
	if m == nil {
		return
	}
	m.eventsEmitted.Inc()
}

func (m *Metrics) IncPersistFailures() {
	if m == nil {
		return
	}
	m.persistFailures.Inc()
}

func (m *Metrics) ObservePersistDuration(seconds float64) {
	if m == nil {
		return
	}
	m.persistDuration.Observe(seconds)
}
