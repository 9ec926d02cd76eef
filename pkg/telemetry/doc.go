// Package telemetry provides Prometheus metrics and OpenTelemetry tracing for
// the Orbit runtime.
//
// Metrics are registered on a caller-supplied registry so several runtimes can
// coexist in one process:
//
//	reg := prometheus.NewRegistry()
//	m := telemetry.NewMetrics(telemetry.WithRegistry(reg))
//	rt := orbit.New(doc, orbit.WithMetrics(m))
//
// Metrics collected:
//   - orbit_scopes_active: Gauge of live scopes
//   - orbit_scope_transitions_total: Counter of lifecycle transitions by state
//   - orbit_bindings_active: Gauge of installed directive bindings by kind
//   - orbit_binding_errors_total: Counter of binding diagnostics by code
//   - orbit_store_notifications_total: Counter of subscriber callbacks fired
//   - orbit_store_subscriptions: Gauge of live store subscriptions
//   - orbit_behavior_resolve_seconds: Histogram of behavior resolution time
//
// A nil *Metrics is valid and records nothing.
//
// Tracing uses the global OpenTelemetry tracer provider unless a tracer is
// supplied explicitly.
package telemetry
