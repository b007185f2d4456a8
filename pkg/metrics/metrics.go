// Package metrics holds the Prometheus collectors for boolean operations.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "meshbool"
	subsystem = "bridge"
)

// Result labels for Operations.
const (
	ResultOK       = "ok"
	ResultGeometry = "geometry_error"
	ResultError    = "error"
)

// Metrics groups the bridge collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	// Operations counts Compute calls.
	// Labels: op (union, intersection, difference), result (ok, geometry_error, error)
	Operations *prometheus.CounterVec

	// Duration measures kernel time per Compute call, pre-union included.
	// Labels: op
	Duration *prometheus.HistogramVec

	// Untagged counts result elements whose provenance could not be resolved.
	// Labels: element (face, edge)
	Untagged *prometheus.CounterVec

	// PreUnionMerges counts component unions performed before the main
	// operation.
	PreUnionMerges prometheus.Counter
}

// New registers the collectors with reg. Passing nil registers nothing,
// which suits tests and one-shot CLI runs.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Operations: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "operations_total",
			Help:      "Boolean operations by operator and outcome",
		}, []string{"op", "result"}),
		Duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "compute_duration_seconds",
			Help:      "Kernel time spent per boolean operation",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
		}, []string{"op"}),
		Untagged: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "untagged_elements_total",
			Help:      "Result faces and half-edges with no traceable origin",
		}, []string{"element"}),
		PreUnionMerges: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "preunion_merges_total",
			Help:      "Operand components unioned before the main operation",
		}),
	}
}

// RecordOperation counts one Compute call.
func (m *Metrics) RecordOperation(op, result string, seconds float64) {
	if m == nil {
		return
	}
	m.Operations.WithLabelValues(op, result).Inc()
	if result != ResultError {
		m.Duration.WithLabelValues(op).Observe(seconds)
	}
}

// RecordUntagged adds untagged faces and half-edges.
func (m *Metrics) RecordUntagged(faces, edges int) {
	if m == nil {
		return
	}
	if faces > 0 {
		m.Untagged.WithLabelValues("face").Add(float64(faces))
	}
	if edges > 0 {
		m.Untagged.WithLabelValues("edge").Add(float64(edges))
	}
}

// RecordMerges adds pre-union merges.
func (m *Metrics) RecordMerges(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.PreUnionMerges.Add(float64(n))
}
