package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the checklist module.
type Metrics struct {
	BatchesApplied     prometheus.Counter
	BatchesRejected    *prometheus.CounterVec
	StatusChanges      prometheus.Counter
	NotesAppended      prometheus.Counter
	TemplatesPublished prometheus.Counter
	TemplateCache      *prometheus.CounterVec
	ApplyDuration      prometheus.Histogram
}

// New registers the checklist metrics on the default registry.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		BatchesApplied: f.NewCounter(prometheus.CounterOpts{
			Name: "duediligence_checklist_batches_applied_total",
			Help: "Checklist update batches applied",
		}),
		BatchesRejected: f.NewCounterVec(prometheus.CounterOpts{
			Name: "duediligence_checklist_batches_rejected_total",
			Help: "Checklist update batches rejected, by error code",
		}, []string{"code"}),
		StatusChanges: f.NewCounter(prometheus.CounterOpts{
			Name: "duediligence_checklist_status_changes_total",
			Help: "Item status assignments applied",
		}),
		NotesAppended: f.NewCounter(prometheus.CounterOpts{
			Name: "duediligence_checklist_notes_appended_total",
			Help: "Item notes appended",
		}),
		TemplatesPublished: f.NewCounter(prometheus.CounterOpts{
			Name: "duediligence_checklist_templates_published_total",
			Help: "Checklist template versions published",
		}),
		TemplateCache: f.NewCounterVec(prometheus.CounterOpts{
			Name: "duediligence_checklist_template_cache_total",
			Help: "Template cache lookups by result (hit, miss, error, bypass)",
		}, []string{"result"}),
		ApplyDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "duediligence_checklist_apply_duration_seconds",
			Help:    "Duration of ApplyUpdates including the store transaction",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

// ObserveApplied records a successful batch.
func (m *Metrics) ObserveApplied(statuses, notes int, start time.Time) {
	if m == nil {
		return
	}
	m.BatchesApplied.Inc()
	m.StatusChanges.Add(float64(statuses))
	m.NotesAppended.Add(float64(notes))
	m.ApplyDuration.Observe(time.Since(start).Seconds())
}

func (m *Metrics) IncRejected(code string) {
	if m == nil {
		return
	}
	m.BatchesRejected.WithLabelValues(code).Inc()
}

func (m *Metrics) IncTemplatePublished() {
	if m == nil {
		return
	}
	m.TemplatesPublished.Inc()
}

func (m *Metrics) IncCache(result string) {
	if m == nil {
		return
	}
	m.TemplateCache.WithLabelValues(result).Inc()
}
