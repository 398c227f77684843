package ledger

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for the operations counter.
const (
	OutcomeCommitted = "committed"
	OutcomeAppended  = "appended"
	OutcomeRejected  = "rejected"
	OutcomeConflict  = "conflict"
	OutcomeError     = "error"
)

// Metrics tracks ledger executions.
type Metrics struct {
	Operations *prometheus.CounterVec
	Duration   *prometheus.HistogramVec
	Version    prometheus.Gauge
}

// NewMetrics registers the ledger metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Operations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "didanchor_ledger_operations_total",
			Help: "Ledger executions by operation and outcome",
		}, []string{"operation", "outcome"}),
		Duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "didanchor_ledger_operation_duration_seconds",
			Help:    "Duration of ledger executions, load to commit",
			Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}, []string{"operation"}),
		Version: factory.NewGauge(prometheus.GaugeOpts{
			Name: "didanchor_ledger_version",
			Help: "Last committed ledger version",
		}),
	}
}

// Observe records one execution. Call with time.Now() taken at the start.
func (m *Metrics) Observe(operation, outcome string, start time.Time) {
	if m == nil {
		return
	}
	m.Operations.WithLabelValues(operation, outcome).Inc()
	m.Duration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// SetVersion records the committed version.
func (m *Metrics) SetVersion(v uint64) {
	if m == nil {
		return
	}
	m.Version.Set(float64(v))
}
