package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for onboarding records and decisions.
type Metrics struct {
	OnboardingsCreated prometheus.Counter
	Decisions          *prometheus.CounterVec
	DecisionsRejected  *prometheus.CounterVec
	AccountsActivated  prometheus.Counter
	DecideDuration     prometheus.Histogram
}

func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		OnboardingsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "duediligence_onboardings_created_total",
			Help: "Onboarding records created",
		}),
		Decisions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "duediligence_onboarding_decisions_total",
			Help: "Onboarding decisions recorded, by outcome",
		}, []string{"outcome"}),
		DecisionsRejected: f.NewCounterVec(prometheus.CounterOpts{
			Name: "duediligence_onboarding_decisions_rejected_total",
			Help: "Decision attempts rejected, by error code",
		}, []string{"code"}),
		AccountsActivated: f.NewCounter(prometheus.CounterOpts{
			Name: "duediligence_accounts_activated_total",
			Help: "Accounts activated by an approved decision",
		}),
		DecideDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "duediligence_onboarding_decide_duration_seconds",
			Help:    "Duration of Decide including the store transaction",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

func (m *Metrics) IncCreated() {
	if m == nil {
		return
	}
	m.OnboardingsCreated.Inc()
}

// ObserveDecision records a successful decision and whether it activated an account.
func (m *Metrics) ObserveDecision(outcome string, activated bool, start time.Time) {
	if m == nil {
		return
	}
	m.Decisions.WithLabelValues(outcome).Inc()
	if activated {
		m.AccountsActivated.Inc()
	}
	m.DecideDuration.Observe(time.Since(start).Seconds())
}

func (m *Metrics) IncRejected(code string) {
	if m == nil {
		return
	}
	m.DecisionsRejected.WithLabelValues(code).Inc()
}
