package registry

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/nomis52/activities/metrics"
)

const (
	outcomeSuccess = "success"
	outcomeFailure = "failure"
)

// Metrics records registry activity. A nil *Metrics records nothing.
type Metrics struct {
	operations metrics.CounterVec
	inFlight   metrics.GaugeVec
	size       metrics.Gauge
}

// NewMetrics registers the registry metrics with reg.
func NewMetrics(reg metrics.Registry) (*Metrics, error) {
	operations, err := reg.NewCounterVec(prometheus.CounterOpts{
		Name: "activity_operations_total",
		Help: "Remote activity operations by operation and outcome.",
	}, []string{"op", "outcome"})
	if err != nil {
		return nil, fmt.Errorf("creating operations counter: %w", err)
	}

	inFlight, err := reg.NewGaugeVec(prometheus.GaugeOpts{
		Name: "activity_operations_in_flight",
		Help: "Remote activity operations currently awaiting the backend.",
	}, []string{"op"})
	if err != nil {
		return nil, fmt.Errorf("creating in-flight gauge: %w", err)
	}

	size, err := reg.NewGauge(prometheus.GaugeOpts{
		Name: "activity_registry_size",
		Help: "Number of activities held in the registry.",
	})
	if err != nil {
		return nil, fmt.Errorf("creating size gauge: %w", err)
	}

	return &Metrics{operations: operations, inFlight: inFlight, size: size}, nil
}

// start marks op in flight and returns the func that records its outcome.
func (m *Metrics) start(op Op) func(error) {
	if m == nil {
		return func(error) {}
	}
	gauge := m.inFlight.With(prometheus.Labels{"op": string(op)})
	gauge.Inc()
	return func(err error) {
		gauge.Dec()
		outcome := outcomeSuccess
		if err != nil {
			outcome = outcomeFailure
		}
		m.operations.With(prometheus.Labels{"op": string(op), "outcome": outcome}).Inc()
	}
}

func (m *Metrics) setSize(n int) {
	if m == nil {
		return
	}
	m.size.Set(float64(n))
}
