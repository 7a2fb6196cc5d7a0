package metrics

import "github.com/prometheus/client_golang/prometheus"

// Option applies a configuration option to the Manager.
type Option func(*Manager)

// WithNamespace overrides the "lookbook" metric namespace.
func WithNamespace(namespace string) Option {
	return func(m *Manager) {
		if namespace != "" {
			m.namespace = namespace
		}
	}
}

// WithSubsystem overrides the "recommender" metric subsystem.
func WithSubsystem(subsystem string) Option {
	return func(m *Manager) {
		if subsystem != "" {
			m.subsystem = subsystem
		}
	}
}

// WithPrefix prepends prefix to every metric name after the subsystem.
func WithPrefix(prefix string) Option {
	return func(m *Manager) {
		if prefix != "" {
			m.metricPrefix = prefix
		}
	}
}

// WithLatencyBuckets sets the millisecond buckets used by the recommend,
// load and HTTP latency histograms.
func WithLatencyBuckets(bucketsMs []float64) Option {
	return func(m *Manager) {
		if len(bucketsMs) > 0 {
			m.latencyBuckets = bucketsMs
		}
	}
}

// WithOracleBuckets sets the millisecond buckets of the oracle round-trip
// histogram. The oracle is much slower than local work and has its own scale.
func WithOracleBuckets(bucketsMs []float64) Option {
	return func(m *Manager) {
		if len(bucketsMs) > 0 {
			m.oracleBuckets = bucketsMs
		}
	}
}

// WithConstLabels attaches labels to every metric, such as a deployment name.
func WithConstLabels(labels map[string]string) Option {
	return func(m *Manager) {
		if labels != nil {
			m.constLabels = labels
		}
	}
}

// WithRegistry registers the metrics on registry instead of the default one.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(m *Manager) {
		if registry != nil {
			m.registry = registry
		}
	}
}
