package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.opentelemetry.io/otel/trace/noop"
)

func TestMetricsRecording(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(WithRegistry(reg), WithNamespace("test"))

	m.ScopeCreated()
	m.ScopeCreated()
	m.ScopeDestroyed()
	if got := testutil.ToFloat64(m.scopesActive); got != 1 {
		t.Errorf("scopes_active = %v, want 1", got)
	}

	m.BindingInstalled("text")
	m.BindingInstalled("text")
	m.BindingRemoved("text")
	if got := testutil.ToFloat64(m.bindingsActive.WithLabelValues("text")); got != 1 {
		t.Errorf("bindings_active{kind=text} = %v, want 1", got)
	}

	m.Diagnostic("E002")
	m.Diagnostic("")
	if got := testutil.ToFloat64(m.bindingErrors.WithLabelValues("unknown")); got != 1 {
		t.Errorf("binding_errors_total{code=unknown} = %v, want 1", got)
	}

	m.Notified(3)
	m.Notified(0)
	if got := testutil.ToFloat64(m.notifications); got != 3 {
		t.Errorf("store_notifications_total = %v, want 3", got)
	}

	m.ScopeTransition("counter", "ready")
	m.ResolveObserved("counter", time.Now(), errors.New("x"))

	count, err := testutil.GatherAndCount(reg)
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if count == 0 {
		t.Error("expected gathered metrics")
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ScopeCreated()
	m.ScopeDestroyed()
	m.ScopeTransition("a", "b")
	m.BindingInstalled("x")
	m.BindingRemoved("x")
	m.Diagnostic("E001")
	m.Notified(1)
	m.Subscribed(1)
	m.ResolveObserved("a", time.Now(), nil)
}

func TestStartResolve(t *testing.T) {
	tracer := noop.NewTracerProvider().Tracer("test")
	ctx, end := StartResolve(context.Background(), tracer, "counter", "id-1")
	if ctx == nil {
		t.Fatal("nil context")
	}
	end(nil)

	_, end = StartResolve(context.Background(), nil, "counter", "id-2")
	end(errors.New("failed"))
}
