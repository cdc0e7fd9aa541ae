package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus collectors for process lifecycle operations.
type Metrics struct {
	ProcessesStarted  prometheus.Counter
	ProcessesAborted  prometheus.Counter
	ProcessesRetried  prometheus.Counter
	ProcessesResumed  prometheus.Counter
	AbortConflicts    prometheus.Counter
	AbortDurationMs   prometheus.Histogram
	ActionFailures    *prometheus.CounterVec
	FamilySize        prometheus.Histogram
}

// New registers and returns lifecycle metrics collectors.
func New() *Metrics {
	return &Metrics{
		ProcessesStarted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "convoy_processes_started_total",
			Help: "Total number of process instances started",
		}),
		ProcessesAborted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "convoy_processes_aborted_total",
			Help: "Total number of process instances aborted",
		}),
		ProcessesRetried: promauto.NewCounter(prometheus.CounterOpts{
			Name: "convoy_processes_retried_total",
			Help: "Total number of stalled jobs re-executed",
		}),
		ProcessesResumed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "convoy_processes_resumed_total",
			Help: "Total number of process instances resumed past a wait state",
		}),
		AbortConflicts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "convoy_abort_conflicts_total",
			Help: "Total number of optimistic-locking conflicts hit while aborting",
		}),
		AbortDurationMs: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "convoy_abort_duration_ms",
			Help:    "Duration of abort operations in milliseconds",
			Buckets: []float64{10, 50, 100, 250, 500, 1000, 5000, 15000, 30000},
		}),
		ActionFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "convoy_action_failures_total",
			Help: "Total number of failed lifecycle actions by action id",
		}, []string{"action"}),
		FamilySize: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "convoy_process_family_size",
			Help:    "Number of instances per correlated process family acted on",
			Buckets: []float64{1, 2, 3, 5, 10, 20, 50},
		}),
	}
}

func (m *Metrics) IncrementProcessesStarted() {
	m.ProcessesStarted.Inc()
}

func (m *Metrics) IncrementProcessesAborted() {
	m.ProcessesAborted.Inc()
}

func (m *Metrics) IncrementProcessesRetried() {
	m.ProcessesRetried.Inc()
}

func (m *Metrics) IncrementProcessesResumed() {
	m.ProcessesResumed.Inc()
}

func (m *Metrics) IncrementAbortConflicts() {
	m.AbortConflicts.Inc()
}

func (m *Metrics) ObserveAbortDuration(durationMs float64) {
	m.AbortDurationMs.Observe(durationMs)
}

func (m *Metrics) IncrementActionFailures(action string) {
	m.ActionFailures.WithLabelValues(action).Inc()
}

func (m *Metrics) ObserveFamilySize(size int) {
	m.FamilySize.Observe(float64(size))
}
