package runner

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Parts of Prometheus metric names.
const (
	namespace = "sprunner"
	subsystem = "invocations"
)

// Metrics tracks invocation outcomes, labeled by procedure and status, the
// way the teacher's client-facing metrics are labeled by opcode/command.
type Metrics struct {
	responses *prometheus.CounterVec
	latency   *prometheus.HistogramVec
}

// NewMetrics returns a fresh, unregistered Metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		responses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "responses_total",
				Help:      "Total number of invocation responses, by procedure and status.",
			},
			[]string{"procedure", "status"},
		),
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "duration_seconds",
				Help:      "Invocation duration in seconds, by procedure.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"procedure"},
		),
	}
}

// Describe implements [prometheus.Collector].
func (m *Metrics) Describe(ch chan<- *prometheus.Desc) {
	m.responses.Describe(ch)
	m.latency.Describe(ch)
}

// Collect implements [prometheus.Collector].
func (m *Metrics) Collect(ch chan<- prometheus.Metric) {
	m.responses.Collect(ch)
	m.latency.Collect(ch)
}

var _ prometheus.Collector = (*Metrics)(nil)
