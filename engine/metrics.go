package engine

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Run outcomes recorded by Metrics.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomeBusy    = "busy"
)

// Metrics are the engine's Prometheus collectors. A nil *Metrics records
// nothing.
type Metrics struct {
	runs      *prometheus.CounterVec
	quads     prometheus.Counter
	fallbacks *prometheus.CounterVec
	duration  prometheus.Histogram
}

// NewMetrics creates the collectors and registers them with reg when it is
// not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rdftab",
			Name:      "runs_total",
			Help:      "Conversion runs by outcome.",
		}, []string{"outcome"}),
		quads: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rdftab",
			Name:      "quads_emitted_total",
			Help:      "Quads assembled by successful runs.",
		}),
		fallbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rdftab",
			Name:      "coercion_fallbacks_total",
			Help:      "Cells coerced to a default value, by datatype.",
		}, []string{"datatype"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "rdftab",
			Name:      "run_duration_seconds",
			Help:      "Wall time of conversion runs.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg != nil {
		reg.MustRegister(m.runs, m.quads, m.fallbacks, m.duration)
	}
	return m
}

func (m *Metrics) observeRun(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.runs.WithLabelValues(outcome).Inc()
	if outcome != OutcomeBusy {
		m.duration.Observe(elapsed.Seconds())
	}
}

func (m *Metrics) observeGraph(quads int, fallbacks map[string]int) {
	if m == nil {
		return
	}
	m.quads.Add(float64(quads))
	for datatype, n := range fallbacks {
		m.fallbacks.WithLabelValues(datatype).Add(float64(n))
	}
}
