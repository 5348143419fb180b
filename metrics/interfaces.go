// Package metrics provides Prometheus-compatible metrics for the activities
// binaries.
//
// Two registries implement the same Registry interface:
//   - ScrapeRegistry (server): metrics live in a Prometheus registry and are
//     exposed on /metrics.
//   - PushRegistry (CLI): values are held in memory and written to a
//     Prometheus remote-write endpoint by Flush before the process exits.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Gauge is a value that can go up and down.
type Gauge interface {
	Set(float64)
	Inc()
	Dec()
}

// Counter is a monotonically increasing value.
type Counter interface {
	Inc()
	// Add panics if v is negative.
	Add(v float64)
}

// GaugeVec is a Gauge partitioned by labels.
type GaugeVec interface {
	With(prometheus.Labels) Gauge
}

// CounterVec is a Counter partitioned by labels.
type CounterVec interface {
	With(prometheus.Labels) Counter
}

// Registry creates and registers metrics.
type Registry interface {
	NewGauge(opts prometheus.GaugeOpts) (Gauge, error)
	NewGaugeVec(opts prometheus.GaugeOpts, labels []string) (GaugeVec, error)
	NewCounter(opts prometheus.CounterOpts) (Counter, error)
	NewCounterVec(opts prometheus.CounterOpts, labels []string) (CounterVec, error)
}
