package reactive

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsConfig configures the runtime's Prometheus collectors.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "reactive").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels
}

// MetricsOption configures MetricsConfig.
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

// Metrics holds the runtime's collectors. A nil *Metrics records nothing.
type Metrics struct {
	tracks             prometheus.Counter
	triggers           *prometheus.CounterVec
	effectRuns         prometheus.Counter
	effectsScheduled   prometheus.Counter
	readonlyViolations *prometheus.CounterVec
}

// NewMetrics creates and registers the runtime collectors with reg.
// It returns nil when reg is nil.
func NewMetrics(reg prometheus.Registerer, opts ...MetricsOption) *Metrics {
	if reg == nil {
		return nil
	}
	cfg := MetricsConfig{Namespace: "reactive"}
	for _, opt := range opts {
		opt(&cfg)
	}
	factory := promauto.With(reg)

	return &Metrics{
		tracks: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "tracks_total",
			Help:        "Total number of dependencies recorded",
			ConstLabels: cfg.ConstLabels,
		}),

		triggers: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "triggers_total",
			Help:        "Total number of classified mutations",
			ConstLabels: cfg.ConstLabels,
		}, []string{"op"}),

		effectRuns: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "effect_runs_total",
			Help:        "Total number of tracked effect runs",
			ConstLabels: cfg.ConstLabels,
		}),

		effectsScheduled: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "effects_scheduled_total",
			Help:        "Total number of notifications handed to a scheduler",
			ConstLabels: cfg.ConstLabels,
		}),

		readonlyViolations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   cfg.Namespace,
			Subsystem:   cfg.Subsystem,
			Name:        "readonly_violations_total",
			Help:        "Total number of mutations rejected by readonly views",
			ConstLabels: cfg.ConstLabels,
		}, []string{"op"}),
	}
}

func (m *Metrics) trackRecorded() {
	if m == nil {
		return
	}
	m.tracks.Inc()
}

func (m *Metrics) triggerFired(op TriggerOp) {
	if m == nil {
		return
	}
	m.triggers.WithLabelValues(op.String()).Inc()
}

func (m *Metrics) effectRan() {
	if m == nil {
		return
	}
	m.effectRuns.Inc()
}

func (m *Metrics) effectScheduled() {
	if m == nil {
		return
	}
	m.effectsScheduled.Inc()
}

func (m *Metrics) readonlyViolation(op string) {
	if m == nil {
		return
	}
	m.readonlyViolations.WithLabelValues(op).Inc()
}
