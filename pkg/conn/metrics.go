package conn

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsConfig configures the Prometheus collectors of a Metrics.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "mcproto").
	Namespace string

	// Subsystem is the metrics subsystem (default: "conn").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures NewMetrics.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "mcproto",
		Subsystem: "conn",
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics counts traffic of every connection it is attached to. A nil
// *Metrics records nothing.
type Metrics struct {
	packets     *prometheus.CounterVec
	bytes       *prometheus.CounterVec
	frameErrors *prometheus.CounterVec
	open        prometheus.Gauge
}

// NewMetrics registers the connection collectors.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		packets: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "packets_total",
			Help:        "Total number of frames sent and received",
			ConstLabels: config.ConstLabels,
		}, []string{"direction"}),

		bytes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "bytes_total",
			Help:        "Total number of raw bytes written and read, after encryption",
			ConstLabels: config.ConstLabels,
		}, []string{"direction"}),

		frameErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "frame_errors_total",
			Help:        "Total number of inbound frames rejected",
			ConstLabels: config.ConstLabels,
		}, []string{"kind"}),

		open: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "open_connections",
			Help:        "Number of connections not yet closed",
			ConstLabels: config.ConstLabels,
		}),
	}
}

func (m *Metrics) sent(frameLen int) {
	if m == nil {
		return
	}
	m.packets.WithLabelValues("out").Inc()
	m.bytes.WithLabelValues("out").Add(float64(frameLen))
}

func (m *Metrics) received(frameLen int) {
	if m == nil {
		return
	}
	m.packets.WithLabelValues("in").Inc()
	m.bytes.WithLabelValues("in").Add(float64(frameLen))
}

func (m *Metrics) frameError(kind string) {
	if m == nil {
		return
	}
	m.frameErrors.WithLabelValues(kind).Inc()
}

func (m *Metrics) opened() {
	if m == nil {
		return
	}
	m.open.Inc()
}

func (m *Metrics) closed() {
	if m == nil {
		return
	}
	m.open.Dec()
}
