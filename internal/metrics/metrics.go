// Package metrics exposes Prometheus metrics for bill computation and RPCs.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the bill service.
type Metrics struct {
	// Bill computations by caller ("stored" or "adhoc")
	Computations *prometheus.CounterVec

	// Duration of a full ComputeBill pipeline
	ComputeLatency prometheus.Histogram

	// One-cent reconciliation steps taken while distributing charges
	RoundingAdjustments prometheus.Counter

	// RPCs by procedure and Connect code
	RPCs *prometheus.CounterVec
}

// New creates a new Metrics instance registered with reg.
// Pass prometheus.DefaultRegisterer in production and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Computations: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sharely_bill_computations_total",
			Help: "Total bill computations by source",
		}, []string{"source"}),

		ComputeLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "sharely_bill_compute_duration_seconds",
			Help:    "Duration of a bill computation",
			Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01},
		}),

		RoundingAdjustments: factory.NewCounter(prometheus.CounterOpts{
			Name: "sharely_rounding_adjustments_total",
			Help: "One-cent corrections made to reconcile per-person shares with bill totals",
		}),

		RPCs: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "sharely_rpc_requests_total",
			Help: "Total RPC requests by procedure and result code",
		}, []string{"procedure", "code"}),
	}
}

// ObserveComputation records one bill computation.
func (m *Metrics) ObserveComputation(source string, d time.Duration, adjustments int) {
	if m == nil {
		return
	}
	m.Computations.WithLabelValues(source).Inc()
	m.ComputeLatency.Observe(d.Seconds())
	m.RoundingAdjustments.Add(float64(adjustments))
}

// IncrementRPC records an RPC outcome.
func (m *Metrics) IncrementRPC(procedure, code string) {
	if m != nil {
		m.RPCs.WithLabelValues(procedure, code).Inc()
	}
}
