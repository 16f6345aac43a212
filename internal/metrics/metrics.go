// Package metrics exposes Prometheus counters for import runs.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Import counts import outcomes and timings on a private registry.
type Import struct {
	registry *prometheus.Registry
	entries  *prometheus.CounterVec
	duration prometheus.Histogram
}

// NewImport creates the import metrics.
func NewImport() *Import {
	m := &Import{
		registry: prometheus.NewRegistry(),
		entries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "bibsync",
			Subsystem: "import",
			Name:      "entries_total",
			Help:      "Entries processed by import, by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "bibsync",
			Subsystem: "import",
			Name:      "duration_seconds",
			Help:      "Time spent importing one entry.",
			Buckets:   prometheus.ExponentialBuckets(0.00005, 4, 8),
		}),
	}
	m.registry.MustRegister(m.entries, m.duration)
	return m
}

// Observe records one entry outcome.
func (m *Import) Observe(outcome string, elapsed time.Duration) {
	m.entries.WithLabelValues(outcome).Inc()
	m.duration.Observe(elapsed.Seconds())
}

// Registry returns the registry holding the import metrics.
func (m *Import) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes the metrics in the Prometheus text format, for the
// node exporter textfile collector.
func (m *Import) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}
