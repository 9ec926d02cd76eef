package orbit

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/orbit/pkg/directive"
	"github.com/vango-dev/orbit/pkg/expression"
	"github.com/vango-dev/orbit/pkg/telemetry"
)

// Option configures a Runtime.
type Option func(*Runtime)

// WithLogger sets the runtime logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runtime) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithPrefix sets the directive attribute prefix, "o-" by default.
// It replaces any registry set earlier with a default one for prefix.
func WithPrefix(prefix string) Option {
	return func(r *Runtime) {
		r.registry = directive.NewRegistry(directive.NewVocabulary(prefix))
	}
}

// WithRegistry uses a prepared directive registry, for instance one with
// custom directives installed.
func WithRegistry(registry *directive.Registry) Option {
	return func(r *Runtime) {
		r.registry = registry
	}
}

// WithMetrics records runtime metrics.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(r *Runtime) {
		r.metrics = m
	}
}

// WithTracer sets the tracer used for behavior resolution spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(r *Runtime) {
		r.tracer = tracer
	}
}

// WithEvaluator sets the engine behind Ctx.Compute.
func WithEvaluator(e expression.Evaluator) Option {
	return func(r *Runtime) {
		r.evaluator = e
	}
}

// WithErrorHandler receives every diagnostic the runtime and its scopes
// report.
func WithErrorHandler(fn func(error)) Option {
	return func(r *Runtime) {
		r.onError = fn
	}
}

// WithContext sets the parent of every scope context.
func WithContext(ctx context.Context) Option {
	return func(r *Runtime) {
		if ctx != nil {
			r.parent = ctx
		}
	}
}
