package scope

import (
	"context"
	"log/slog"
	"sort"

	oerrors "github.com/vango-dev/orbit/internal/errors"
	"github.com/vango-dev/orbit/pkg/host"
	"github.com/vango-dev/orbit/pkg/store"
)

// Ctx is what a behavior sees of its scope.
type Ctx interface {
	// State populates the scope store with initial and returns the root
	// view. Each StateHooks entry watches one path and runs after every
	// change to it. A second call panics with E003.
	State(initial map[string]any, hooks ...StateHooks) *store.Object

	// Ref installs element hooks keyed by o-ref name and returns the live
	// ref table. A second call panics with E004.
	Ref(hooks ...RefHooks) *Refs

	// Compute evaluates expr against a snapshot of the state and returns
	// the result as display text. Errors are reported and yield "".
	Compute(expr string) string

	// Disposables registers functions that run when the scope is disposed.
	Disposables(fns ...func())

	// Context is canceled when the scope is disposed.
	Context() context.Context

	Logger() *slog.Logger
	Root() host.Element
}

// StateHooks maps a state path to a watcher.
type StateHooks map[string]func(this *store.Object, value any)

// RefHook runs when the named element is bound. ctx is canceled when the
// element is unbound; the returned function, if any, runs at that point.
type RefHook func(el host.Element, ctx context.Context) func()

// RefHooks maps an o-ref name to its hook.
type RefHooks map[string]RefHook

// Refs is a live view of the scope's captured elements.
type Refs struct {
	scope *Scope
}

// Get returns the most recently bound element captured under name, or nil.
func (r *Refs) Get(name string) host.Element {
	captures := r.scope.refs[name]
	if len(captures) == 0 {
		return nil
	}
	return captures[len(captures)-1].el
}

// All returns every element captured under name in bind order.
func (r *Refs) All(name string) []host.Element {
	captures := r.scope.refs[name]
	out := make([]host.Element, len(captures))
	for i, c := range captures {
		out[i] = c.el
	}
	return out
}

// Names returns the captured names in sorted order.
func (r *Refs) Names() []string {
	names := make([]string, 0, len(r.scope.refs))
	for name := range r.scope.refs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type scopeCtx struct {
	scope *Scope
}

func (c *scopeCtx) State(initial map[string]any, hooks ...StateHooks) *store.Object {
	s := c.scope
	if s.stateTaken {
		panic(oerrors.New("E003"))
	}
	s.stateTaken = true

	root, err := s.store.Init(initial)
	if err != nil {
		panic(oerrors.FromError(err, "E003"))
	}

	for _, set := range hooks {
		paths := make([]string, 0, len(set))
		for path := range set {
			paths = append(paths, path)
		}
		sort.Strings(paths)
		for _, path := range paths {
			fn := set[path]
			if fn == nil {
				continue
			}
			primed := false
			unsubscribe := s.store.Subscribe(path, func(v any) {
				// Subscribe replays the current value once; watchers only
				// see changes.
				if !primed {
					primed = true
					return
				}
				fn(root, v)
			})
			s.disposables = append(s.disposables, unsubscribe)
		}
	}
	return root
}

func (c *scopeCtx) Ref(hooks ...RefHooks) *Refs {
	s := c.scope
	if s.refTaken {
		panic(oerrors.New("E004"))
	}
	s.refTaken = true

	var names []string
	for _, set := range hooks {
		for name, hook := range set {
			if hook == nil {
				continue
			}
			if _, seen := s.refHooks[name]; !seen {
				names = append(names, name)
			}
			s.refHooks[name] = hook
		}
	}
	sort.Strings(names)
	for _, name := range names {
		for _, c := range s.refs[name] {
			s.runRefHook(c, s.refHooks[name])
		}
	}
	return &Refs{scope: s}
}

func (c *scopeCtx) Compute(expr string) string {
	s := c.scope
	v, err := s.evaluator.Evaluate(expr, s.store.Snapshot())
	if err != nil {
		s.report(oerrors.FromError(err, "E021").WithScope(s.name))
		return ""
	}
	return store.Stringify(v)
}

func (c *scopeCtx) Disposables(fns ...func()) {
	for _, fn := range fns {
		if fn != nil {
			c.scope.disposables = append(c.scope.disposables, fn)
		}
	}
}

func (c *scopeCtx) Context() context.Context { return c.scope.ctx }

func (c *scopeCtx) Logger() *slog.Logger { return c.scope.logger }

func (c *scopeCtx) Root() host.Element { return c.scope.root }
