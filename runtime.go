package orbit

import (
	"context"
	"log/slog"
	"sort"

	"go.opentelemetry.io/otel/trace"

	oerrors "github.com/vango-dev/orbit/internal/errors"
	"github.com/vango-dev/orbit/pkg/directive"
	"github.com/vango-dev/orbit/pkg/expression"
	"github.com/vango-dev/orbit/pkg/host"
	"github.com/vango-dev/orbit/pkg/observe"
	"github.com/vango-dev/orbit/pkg/scope"
	"github.com/vango-dev/orbit/pkg/telemetry"
)

// LoadVisible is the load strategy that defers a scope until its root
// becomes visible.
const LoadVisible = "visible"

// Runtime discovers scope roots in a document and runs their behaviors.
type Runtime struct {
	doc       host.Document
	registry  *directive.Registry
	vocab     directive.Vocabulary
	loaders   map[string]scope.Loader
	logger    *slog.Logger
	metrics   *telemetry.Metrics
	tracer    trace.Tracer
	evaluator expression.Evaluator
	onError   func(error)
	parent    context.Context

	ctx      context.Context
	cancel   context.CancelFunc
	observer *observe.Observer
	scopes   map[host.Element]*scope.Scope
	order    []*scope.Scope
	started  bool
}

// New creates a runtime for doc. Nothing happens until Start.
func New(doc host.Document, opts ...Option) *Runtime {
	r := &Runtime{
		doc:     doc,
		loaders: make(map[string]scope.Loader),
		logger:  slog.Default(),
		parent:  context.Background(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.registry == nil {
		r.registry = directive.NewRegistry(directive.NewVocabulary(directive.DefaultPrefix))
	}
	r.vocab = r.registry.Vocabulary()
	if r.evaluator == nil {
		r.evaluator = expression.NewExpr()
	}
	return r
}

// Register associates a scope name with its loader, replacing any earlier
// registration. Scopes already running keep their behavior.
func (r *Runtime) Register(name string, loader Loader) {
	r.loaders[name] = loader
}

// Define registers a behavior that is available immediately.
func (r *Runtime) Define(name string, mount func(ctx Ctx, props map[string]any) func()) {
	r.Register(name, scope.MountFunc(mount))
}

// Lazy registers a behavior that is loaded on demand.
func (r *Runtime) Lazy(name string, load func(ctx context.Context) (Behavior, error)) {
	r.Register(name, scope.LoaderFunc(load))
}

// Registry returns the directive registry shared by every scope.
func (r *Runtime) Registry() *Registry {
	return r.registry
}

// Document returns the host document.
func (r *Runtime) Document() host.Document {
	return r.doc
}

// Started reports whether the runtime is running.
func (r *Runtime) Started() bool {
	return r.started
}

// Start observes the whole document and mounts every scope root, now and as
// roots are inserted later.
func (r *Runtime) Start() error {
	if r.started {
		return oerrors.New("E050")
	}
	r.started = true
	r.ctx, r.cancel = context.WithCancel(r.parent)
	r.scopes = make(map[host.Element]*scope.Scope)
	r.order = nil

	r.observer = observe.Observe(r.doc, r.doc.Root(), observe.Hooks{
		OnMount:   r.mount,
		OnUnmount: r.unmount,
	}, observe.Options{
		Deferred: r.deferred,
		Reveal: func(el host.Element) {
			el.RemoveAttr(r.vocab.Load)
		},
	})
	r.logger.Info("runtime started", "scopes", len(r.scopes), "prefix", r.vocab.Prefix)
	return nil
}

// Stop disposes every scope, innermost first, and stops observing. A later
// Start behaves like a fresh run.
func (r *Runtime) Stop() {
	if !r.started {
		return
	}
	r.started = false
	r.observer.Stop()
	r.observer = nil

	for i := len(r.order) - 1; i >= 0; i-- {
		r.order[i].Dispose()
	}
	r.order = nil
	r.scopes = nil
	r.cancel()
	r.logger.Info("runtime stopped")
}

// Scopes returns the live scopes in creation order.
func (r *Runtime) Scopes() []*Scope {
	return append([]*scope.Scope(nil), r.order...)
}

// ScopeFor returns the scope rooted at el, or nil.
func (r *Runtime) ScopeFor(el host.Element) *Scope {
	return r.scopes[el]
}

// Names returns the registered scope names in sorted order.
func (r *Runtime) Names() []string {
	names := make([]string, 0, len(r.loaders))
	for name := range r.loaders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Runtime) deferred(el host.Element) bool {
	v, ok := el.Attr(r.vocab.Load)
	return ok && v == LoadVisible
}

func (r *Runtime) mount(el host.Element) {
	name, ok := el.Attr(r.vocab.Scope)
	if !ok {
		return
	}
	if _, running := r.scopes[el]; running {
		return
	}
	loader, ok := r.loaders[name]
	if !ok {
		r.report(oerrors.New("E001").WithScope(name).WithAttribute(r.vocab.Scope, name))
		return
	}

	s := scope.New(el, loader, scope.Options{
		Name:      name,
		Document:  r.doc,
		Registry:  r.registry,
		Evaluator: r.evaluator,
		Context:   r.ctx,
		Logger:    r.logger,
		Metrics:   r.metrics,
		Tracer:    r.tracer,
		OnError:   r.onError,
	})
	r.scopes[el] = s
	r.order = append(r.order, s)
	s.Start()
}

func (r *Runtime) unmount(el host.Element) {
	s, ok := r.scopes[el]
	if !ok {
		return
	}
	delete(r.scopes, el)
	for i, existing := range r.order {
		if existing == s {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	s.Dispose()
}

func (r *Runtime) report(err error) {
	r.metrics.Diagnostic(oerrors.Code(err))
	r.logger.Error("runtime error", "error", err)
	if r.onError != nil {
		r.onError(err)
	}
}
