package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for configuration resolution.
type Metrics struct {
	ResolutionsTotal     prometheus.Counter
	ResolutionFailures   prometheus.Counter
	ResolutionDurationMs prometheus.Histogram
	EntriesMatched       prometheus.Histogram
	SubscriptionsCreated prometheus.Counter
}

// New registers and returns configuration metrics collectors.
func New() *Metrics {
	return &Metrics{
		ResolutionsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "convoy_resolutions_total",
			Help: "Total number of descriptor resolution passes",
		}),
		ResolutionFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "convoy_resolution_failures_total",
			Help: "Total number of failed descriptor resolution passes",
		}),
		ResolutionDurationMs: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "convoy_resolution_duration_ms",
			Help:    "Duration of descriptor resolution passes in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		}),
		EntriesMatched: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "convoy_resolution_entries_matched",
			Help:    "Number of registry entries matched per configuration reference",
			Buckets: []float64{0, 1, 2, 3, 5, 10, 20},
		}),
		SubscriptionsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "convoy_subscriptions_created_total",
			Help: "Total number of configuration subscriptions created",
		}),
	}
}

func (m *Metrics) IncrementResolutions() {
	m.ResolutionsTotal.Inc()
}

func (m *Metrics) IncrementResolutionFailures() {
	m.ResolutionFailures.Inc()
}

func (m *Metrics) ObserveResolutionDuration(durationMs float64) {
	m.ResolutionDurationMs.Observe(durationMs)
}

func (m *Metrics) ObserveEntriesMatched(count int) {
	m.EntriesMatched.Observe(float64(count))
}

func (m *Metrics) IncrementSubscriptionsCreated(count int) {
	m.SubscriptionsCreated.Add(float64(count))
}
