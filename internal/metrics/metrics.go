package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels.
const (
	OutcomeHit      = "hit"
	OutcomeMiss     = "miss"
	OutcomeError    = "error"
	OutcomeNotFound = "not_found"
	OutcomeSuccess  = "success"
	OutcomeInvalid  = "invalid"
)

type Metrics struct {
	DirectoryQueries       *prometheus.CounterVec
	DirectoryQueryDuration *prometheus.HistogramVec
	Resolutions            *prometheus.CounterVec
	Fallbacks              prometheus.Counter
	ParticipantNames       *prometheus.CounterVec
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		DirectoryQueries: f.NewCounterVec(prometheus.CounterOpts{
			Name: "contact_resolver_directory_queries_total",
			Help: "Directory queries issued, by field and outcome",
		}, []string{"field", "outcome"}),
		DirectoryQueryDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "contact_resolver_directory_query_duration_seconds",
			Help:    "Latency of single directory queries",
			Buckets: prometheus.DefBuckets,
		}, []string{"field"}),
		Resolutions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "contact_resolver_resolutions_total",
			Help: "Resolution calls, by strategy and outcome",
		}, []string{"strategy", "outcome"}),
		Fallbacks: f.NewCounter(prometheus.CounterOpts{
			Name: "contact_resolver_id_fallbacks_total",
			Help: "Contact id lookups that fell back to identity search",
		}),
		ParticipantNames: f.NewCounterVec(prometheus.CounterOpts{
			Name: "contact_resolver_participant_names_total",
			Help: "Participant names resolved, by source",
		}, []string{"source"}),
	}
}

func (m *Metrics) ObserveDirectoryQuery(field, outcome string, elapsed time.Duration) {
	m.DirectoryQueries.WithLabelValues(field, outcome).Inc()
	m.DirectoryQueryDuration.WithLabelValues(field).Observe(elapsed.Seconds())
}

func (m *Metrics) IncrementResolution(strategy, outcome string) {
	m.Resolutions.WithLabelValues(strategy, outcome).Inc()
}

func (m *Metrics) IncrementFallbacks() {
	m.Fallbacks.Inc()
}

func (m *Metrics) IncrementParticipantNames(source string) {
	m.ParticipantNames.WithLabelValues(source).Inc()
}
