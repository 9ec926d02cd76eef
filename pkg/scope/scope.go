package scope

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	oerrors "github.com/vango-dev/orbit/internal/errors"
	"github.com/vango-dev/orbit/pkg/directive"
	"github.com/vango-dev/orbit/pkg/expression"
	"github.com/vango-dev/orbit/pkg/host"
	"github.com/vango-dev/orbit/pkg/observe"
	"github.com/vango-dev/orbit/pkg/store"
	"github.com/vango-dev/orbit/pkg/telemetry"
)

// ErrDisposed is reported by a deferred loader whose scope was disposed
// before the behavior arrived.
var ErrDisposed = errors.New("scope: disposed")

// State is a scope lifecycle state.
type State int

const (
	Created State = iota
	Resolving
	Ready
	Destroyed
)

func (s State) String() string {
	switch s {
	case Created:
		return "created"
	case Resolving:
		return "resolving"
	case Ready:
		return "ready"
	case Destroyed:
		return "destroyed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Behavior initializes a scope. Mount runs once, on the host thread, with
// the scope's capabilities and parsed props. The returned function, if
// any, runs when the scope is disposed.
type Behavior interface {
	Mount(ctx Ctx, props map[string]any) (unmount func())
}

// Loader produces a Behavior.
//
// A Loader that is also a Behavior is used directly and the scope becomes
// ready inside Start. Any other Loader runs on its own goroutine.
type Loader interface {
	Load(ctx context.Context) (Behavior, error)
}

// MountFunc is a Behavior and a Loader that resolves to itself.
type MountFunc func(ctx Ctx, props map[string]any) func()

// Mount calls f.
func (f MountFunc) Mount(ctx Ctx, props map[string]any) func() {
	return f(ctx, props)
}

// Load returns f.
func (f MountFunc) Load(context.Context) (Behavior, error) {
	return f, nil
}

// LoaderFunc adapts a function to Loader. ctx is canceled when the scope is
// disposed.
type LoaderFunc func(ctx context.Context) (Behavior, error)

// Load calls f.
func (f LoaderFunc) Load(ctx context.Context) (Behavior, error) {
	return f(ctx)
}

// Options configure a Scope.
type Options struct {
	// Name is the declared scope name, used in diagnostics and metrics.
	Name string

	Document  host.Document
	Registry  *directive.Registry
	Evaluator expression.Evaluator

	// Context is the parent of the scope context.
	Context context.Context

	Logger  *slog.Logger
	Metrics *telemetry.Metrics
	Tracer  trace.Tracer

	// OnError receives every diagnostic raised inside the scope.
	OnError func(error)
}

// Scope is one interactive region.
type Scope struct {
	id     string
	name   string
	root   host.Element
	loader Loader

	doc       host.Document
	vocab     directive.Vocabulary
	evaluator expression.Evaluator
	logger    *slog.Logger
	metrics   *telemetry.Metrics
	tracer    trace.Tracer
	onError   func(error)

	ctx    context.Context
	cancel context.CancelFunc

	state    State
	err      error
	store    *store.Store
	binder   *directive.Binder
	observer *observe.Observer

	// queue holds elements discovered while resolving, in mount order.
	queue []host.Element

	endSpan     func(error)
	resolveFrom time.Time

	disposables []func()
	unmount     func()

	// refs holds the live captures per name, oldest first.
	refs       map[string][]*refCapture
	refHooks   map[string]RefHook
	stateTaken bool
	refTaken   bool
}

// refCapture is one bound o-ref element and the cleanup its hook returned.
type refCapture struct {
	el      host.Element
	ctx     context.Context
	cleanup func()
}

// New creates a scope for root. It does nothing until Start.
func New(root host.Element, loader Loader, opts Options) *Scope {
	parent := opts.Context
	if parent == nil {
		parent = context.Background()
	}
	registry := opts.Registry
	if registry == nil {
		registry = directive.NewRegistry(directive.NewVocabulary(directive.DefaultPrefix))
	}
	evaluator := opts.Evaluator
	if evaluator == nil {
		evaluator = expression.NewExpr()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Scope{
		id:          uuid.NewString(),
		name:        opts.Name,
		root:        root,
		loader:      loader,
		doc:         opts.Document,
		vocab:       registry.Vocabulary(),
		evaluator:   evaluator,
		metrics:     opts.Metrics,
		tracer:      opts.Tracer,
		onError:     opts.OnError,
		refs:        make(map[string][]*refCapture),
		refHooks:    make(map[string]RefHook),
	}
	s.logger = logger.With("scope", s.name, "scope_id", s.id)
	s.ctx, s.cancel = context.WithCancel(parent)
	s.store = store.New(store.WithLogger(s.logger), store.WithMetrics(s.metrics))
	s.binder = directive.NewBinder(directive.Config{
		Store:    s.store,
		Document: s.doc,
		Registry: registry,
		Refs:     s,
		Context:  s.ctx,
		Scope:    s.name,
		Logger:   s.logger,
		Metrics:  s.metrics,
		OnError:  s.onError,
	})
	s.metrics.ScopeCreated()
	s.metrics.ScopeTransition(s.name, Created.String())
	return s
}

// Create starts a scope and returns its Dispose method.
func Create(root host.Element, loader Loader, opts Options) (dispose func()) {
	s := New(root, loader, opts)
	s.Start()
	return s.Dispose
}

// ID returns the scope's unique id.
func (s *Scope) ID() string { return s.id }

// Name returns the declared scope name.
func (s *Scope) Name() string { return s.name }

// Root returns the scope root.
func (s *Scope) Root() host.Element { return s.root }

// State returns the lifecycle state.
func (s *Scope) State() State { return s.state }

// Err returns the error that destroyed the scope, if any.
func (s *Scope) Err() error { return s.err }

// Store returns the scope's state store.
func (s *Scope) Store() *store.Store { return s.store }

// Binder returns the scope's directive binder.
func (s *Scope) Binder() *directive.Binder { return s.binder }

// Start begins observing the root and resolving the behavior. Calling Start
// more than once, or after Dispose, does nothing.
func (s *Scope) Start() {
	if s.state != Created {
		return
	}
	s.transition(Resolving)
	s.resolveFrom = time.Now()
	s.ctx, s.endSpan = telemetry.StartResolve(s.ctx, s.tracer, s.name, s.id)

	s.observer = observe.Observe(s.doc, s.root, observe.Hooks{
		OnMount:   s.mount,
		OnUnmount: s.unmountElement,
	}, observe.Options{Boundary: s.vocab.IsScope})

	if b, ok := s.loader.(Behavior); ok {
		s.resolved(b, nil)
		return
	}
	if s.loader == nil {
		s.resolved(nil, oerrors.New("E010").WithScope(s.name).WithDetail("no loader"))
		return
	}

	ctx, loader, doc := s.ctx, s.loader, s.doc
	go func() {
		var (
			b   Behavior
			err error
		)
		defer func() {
			if r := recover(); r != nil {
				b, err = nil, oerrors.New("E010").WithScope(s.name).WithDetail(fmt.Sprintf("loader panicked: %v", r))
			}
			doc.Post(func() { s.resolved(b, err) })
		}()
		b, err = loader.Load(ctx)
		if ctx.Err() != nil && err == nil {
			err = ErrDisposed
		}
	}()
}

func (s *Scope) resolved(b Behavior, err error) {
	if s.state != Resolving {
		s.logger.Debug("discarding resolved behavior", "state", s.state.String())
		return
	}
	if err == nil && b == nil {
		err = errors.New("loader returned no behavior")
	}
	if err != nil {
		s.fail(oerrors.FromError(err, "E010").WithScope(s.name))
		return
	}

	s.transition(Ready)
	queue := s.queue
	s.queue = nil
	for _, el := range queue {
		if s.root.Contains(el) {
			s.binder.Bind(el)
		}
	}

	if err := s.run(b); err != nil {
		s.fail(err)
		return
	}
	s.finishResolve(nil)
	s.logger.Debug("scope ready", "bindings", s.binder.Len())
}

// run mounts the behavior and converts a panic into an error.
func (s *Scope) run(b Behavior) (err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		if e, ok := r.(*oerrors.Error); ok {
			err = e.WithScope(s.name)
			return
		}
		err = oerrors.New("E011").WithScope(s.name).WithDetail(fmt.Sprint(r))
	}()
	s.unmount = b.Mount(&scopeCtx{scope: s}, s.props())
	return nil
}

func (s *Scope) fail(err error) {
	s.err = err
	s.report(err)
	s.finishResolve(err)
	s.Dispose()
}

func (s *Scope) finishResolve(err error) {
	if s.endSpan == nil {
		return
	}
	s.endSpan(err)
	s.endSpan = nil
	s.metrics.ResolveObserved(s.name, s.resolveFrom, err)
}

func (s *Scope) mount(el host.Element) {
	switch s.state {
	case Resolving:
		s.queue = append(s.queue, el)
	case Ready:
		s.binder.Bind(el)
	}
}

func (s *Scope) unmountElement(el host.Element) {
	switch s.state {
	case Resolving:
		for i, q := range s.queue {
			if q == el {
				s.queue = append(s.queue[:i], s.queue[i+1:]...)
				break
			}
		}
	case Ready:
		s.binder.Unbind(el)
	}
}

// Dispose tears the scope down: the observer stops, every element binding
// is revoked bottom-up, registered disposables run in reverse order and the
// behavior's unmount callback runs. Later calls do nothing.
func (s *Scope) Dispose() {
	if s.state == Destroyed {
		return
	}
	s.transition(Destroyed)
	s.cancel()
	s.finishResolve(ErrDisposed)

	if s.observer != nil {
		s.observer.Stop()
	}
	s.queue = nil
	s.binder.Close()

	for i := len(s.disposables) - 1; i >= 0; i-- {
		s.safely("disposable", s.disposables[i])
	}
	s.disposables = nil

	if s.unmount != nil {
		unmount := s.unmount
		s.unmount = nil
		s.safely("unmount", unmount)
	}
	s.metrics.ScopeDestroyed()
	s.logger.Debug("scope destroyed")
}

func (s *Scope) safely(what string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			s.report(oerrors.New("E011").WithScope(s.name).WithDetail(fmt.Sprintf("%s: %v", what, r)))
		}
	}()
	fn()
}

func (s *Scope) transition(to State) {
	s.state = to
	s.metrics.ScopeTransition(s.name, to.String())
}

func (s *Scope) report(err error) {
	s.metrics.Diagnostic(oerrors.Code(err))
	s.logger.Error("scope error", "error", err)
	if s.onError != nil {
		s.onError(err)
	}
}

// Capture records an o-ref element and runs its hook, if one is installed.
// The returned release runs that element's cleanup only.
func (s *Scope) Capture(ctx context.Context, name string, el host.Element) func() {
	c := &refCapture{el: el, ctx: ctx}
	s.refs[name] = append(s.refs[name], c)
	if hook, ok := s.refHooks[name]; ok {
		s.runRefHook(c, hook)
	}
	return func() {
		captures := s.refs[name]
		for i, existing := range captures {
			if existing != c {
				continue
			}
			captures = append(captures[:i:i], captures[i+1:]...)
			if len(captures) == 0 {
				delete(s.refs, name)
			} else {
				s.refs[name] = captures
			}
			break
		}
		if cleanup := c.cleanup; cleanup != nil {
			c.cleanup = nil
			s.safely("ref cleanup", cleanup)
		}
	}
}

func (s *Scope) runRefHook(c *refCapture, hook RefHook) {
	if prev := c.cleanup; prev != nil {
		c.cleanup = nil
		s.safely("ref cleanup", prev)
	}
	var cleanup func()
	s.safely("ref hook", func() { cleanup = hook(c.el, c.ctx) })
	c.cleanup = cleanup
}
