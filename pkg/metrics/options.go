// Package metrics provides Prometheus metrics for the Mergington activities service.
package metrics

import (
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures a Manager. Zero values leave the default in place, so a
// config field that was never set can be passed straight through.
type Option func(*Manager)

// WithNamespace overrides the "mergington" namespace (metrics_namespace).
func WithNamespace(namespace string) Option {
	return func(m *Manager) {
		if namespace = strings.TrimSpace(namespace); namespace != "" {
			m.namespace = namespace
		}
	}
}

// WithSubsystem overrides the "activities" subsystem (metrics_subsystem).
func WithSubsystem(subsystem string) Option {
	return func(m *Manager) {
		if subsystem = strings.TrimSpace(subsystem); subsystem != "" {
			m.subsystem = subsystem
		}
	}
}

// WithHistogramBuckets sets the millisecond buckets shared by the store,
// HTTP and error latency histograms (metrics_buckets).
func WithHistogramBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if len(buckets) > 0 {
			m.histogramBuckets = slices.Clone(buckets)
		}
	}
}

// WithMetricsEnabled switches event recording on or off (metrics_enabled).
// Gauges refreshed from the store are always published.
func WithMetricsEnabled(enabled bool) Option {
	return func(m *Manager) {
		m.enabled = enabled
	}
}

// WithRefreshInterval sets the tick of the directory and system gauge
// updaters (metrics_refresh_ms).
func WithRefreshInterval(interval time.Duration) Option {
	return func(m *Manager) {
		if interval > 0 {
			m.refreshInterval = interval
		}
	}
}

// WithCustomLabels attaches constant labels to every metric (metrics_labels),
// e.g. campus or deployment. Entries with a blank name are dropped.
func WithCustomLabels(labels map[string]string) Option {
	return func(m *Manager) {
		if len(labels) == 0 {
			return
		}
		cleaned := maps.Clone(labels)
		maps.DeleteFunc(cleaned, func(k, _ string) bool { return strings.TrimSpace(k) == "" })
		m.customLabels = cleaned
	}
}

// WithMetricPrefix prepends prefix to every metric name after the
// namespace and subsystem (metrics_prefix).
func WithMetricPrefix(prefix string) Option {
	return func(m *Manager) {
		if prefix != "" {
			m.metricPrefix = prefix
		}
	}
}

// WithPrometheusRegistry registers metrics on registry instead of the
// default registerer. Init always supplies its own.
func WithPrometheusRegistry(registry prometheus.Registerer) Option {
	return func(m *Manager) {
		if registry != nil {
			m.registry = registry
		}
	}
}
