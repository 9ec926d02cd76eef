package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsConfig configures the Prometheus collectors.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "orbit").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for behavior resolution.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the Prometheus collectors.
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

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
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
		Namespace: "orbit",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics holds the runtime's Prometheus collectors.
type Metrics struct {
	scopesActive     prometheus.Gauge
	scopeTransitions *prometheus.CounterVec
	bindingsActive   *prometheus.GaugeVec
	bindingErrors    *prometheus.CounterVec
	notifications    prometheus.Counter
	subscriptions    prometheus.Gauge
	resolveDuration  *prometheus.HistogramVec
}

// NewMetrics creates and registers the runtime collectors.
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}

	factory := promauto.With(config.Registry)

	return &Metrics{
		scopesActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "scopes_active",
			Help:        "Number of scopes that have not been destroyed",
			ConstLabels: config.ConstLabels,
		}),

		scopeTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "scope_transitions_total",
			Help:        "Scope lifecycle transitions by scope name and target state",
			ConstLabels: config.ConstLabels,
		}, []string{"scope", "state"}),

		bindingsActive: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "bindings_active",
			Help:        "Installed directive bindings by directive kind",
			ConstLabels: config.ConstLabels,
		}, []string{"kind"}),

		bindingErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "binding_errors_total",
			Help:        "Diagnostics reported by the runtime by error code",
			ConstLabels: config.ConstLabels,
		}, []string{"code"}),

		notifications: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "store_notifications_total",
			Help:        "Subscriber callbacks invoked by state store writes",
			ConstLabels: config.ConstLabels,
		}),

		subscriptions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "store_subscriptions",
			Help:        "Live state store subscriptions",
			ConstLabels: config.ConstLabels,
		}),

		resolveDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "behavior_resolve_seconds",
			Help:        "Time spent resolving scope behaviors",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"scope", "status"}),
	}
}

// ScopeTransition records a scope entering state.
func (m *Metrics) ScopeTransition(scope, state string) {
	if m == nil {
		return
	}
	m.scopeTransitions.WithLabelValues(scope, state).Inc()
}

// ScopeCreated increments the live scope gauge.
func (m *Metrics) ScopeCreated() {
	if m == nil {
		return
	}
	m.scopesActive.Inc()
}

// ScopeDestroyed decrements the live scope gauge.
func (m *Metrics) ScopeDestroyed() {
	if m == nil {
		return
	}
	m.scopesActive.Dec()
}

// BindingInstalled increments the binding gauge for kind.
func (m *Metrics) BindingInstalled(kind string) {
	if m == nil {
		return
	}
	m.bindingsActive.WithLabelValues(kind).Inc()
}

// BindingRemoved decrements the binding gauge for kind.
func (m *Metrics) BindingRemoved(kind string) {
	if m == nil {
		return
	}
	m.bindingsActive.WithLabelValues(kind).Dec()
}

// Diagnostic counts a reported error by code.
func (m *Metrics) Diagnostic(code string) {
	if m == nil {
		return
	}
	if code == "" {
		code = "unknown"
	}
	m.bindingErrors.WithLabelValues(code).Inc()
}

// Notified counts n subscriber callbacks.
func (m *Metrics) Notified(n int) {
	if m == nil || n == 0 {
		return
	}
	m.notifications.Add(float64(n))
}

// Subscribed adjusts the live subscription gauge by delta.
func (m *Metrics) Subscribed(delta int) {
	if m == nil {
		return
	}
	m.subscriptions.Add(float64(delta))
}

// ResolveObserved records how long a behavior took to resolve.
func (m *Metrics) ResolveObserved(scope string, start time.Time, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.resolveDuration.WithLabelValues(scope, status).Observe(time.Since(start).Seconds())
}
