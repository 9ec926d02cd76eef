package directive

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	oerrors "github.com/vango-dev/orbit/internal/errors"
	"github.com/vango-dev/orbit/pkg/host"
	"github.com/vango-dev/orbit/pkg/store"
	"github.com/vango-dev/orbit/pkg/telemetry"
)

// RefSink receives captured elements. ctx is canceled when the element
// is unbound; the returned function releases the capture.
type RefSink interface {
	Capture(ctx context.Context, name string, el host.Element) (release func())
}

// Config configures a Binder.
type Config struct {
	Store    *store.Store
	Document host.Document

	// Registry defaults to NewRegistry(NewVocabulary(DefaultPrefix)).
	Registry *Registry

	// Refs receives o-ref captures. Optional.
	Refs RefSink

	// Context is the parent of every element context.
	Context context.Context

	// Scope names the owning scope in diagnostics.
	Scope string

	Logger  *slog.Logger
	Metrics *telemetry.Metrics

	// OnError receives every diagnostic.
	OnError func(error)
}

// controller owns what one element's bindings acquired.
type controller struct {
	ctx      context.Context
	cancel   context.CancelFunc
	cleanups []func()
	kinds    []string
	item     *itemContext
}

// Binder installs and revokes directive bindings for one store.
type Binder struct {
	store    *store.Store
	doc      host.Document
	registry *Registry
	refs     RefSink
	ctx      context.Context
	scope    string
	logger   *slog.Logger
	metrics  *telemetry.Metrics
	onError  func(error)

	controllers map[host.Element]*controller
	items       map[host.Element]*itemContext
	closed      bool
}

// NewBinder creates a Binder.
func NewBinder(cfg Config) *Binder {
	b := &Binder{
		store:       cfg.Store,
		doc:         cfg.Document,
		registry:    cfg.Registry,
		refs:        cfg.Refs,
		ctx:         cfg.Context,
		scope:       cfg.Scope,
		logger:      cfg.Logger,
		metrics:     cfg.Metrics,
		onError:     cfg.OnError,
		controllers: make(map[host.Element]*controller),
		items:       make(map[host.Element]*itemContext),
	}
	if b.registry == nil {
		b.registry = NewRegistry(NewVocabulary(DefaultPrefix))
	}
	if b.ctx == nil {
		b.ctx = context.Background()
	}
	if b.logger == nil {
		b.logger = slog.Default()
	}
	return b
}

// Store returns the bound store.
func (b *Binder) Store() *store.Store {
	return b.store
}

// Document returns the host document.
func (b *Binder) Document() host.Document {
	return b.doc
}

// Vocabulary returns the attribute vocabulary.
func (b *Binder) Vocabulary() Vocabulary {
	return b.registry.Vocabulary()
}

// Bound reports whether el has a live controller.
func (b *Binder) Bound(el host.Element) bool {
	_, ok := b.controllers[el]
	return ok
}

// Len returns the number of bound elements.
func (b *Binder) Len() int {
	return len(b.controllers)
}

// Bind installs every directive on el. Binding an element twice is a no-op.
func (b *Binder) Bind(el host.Element) {
	if b.closed || el == nil {
		return
	}
	if _, ok := b.controllers[el]; ok {
		return
	}

	ctx, cancel := context.WithCancel(b.ctx)
	ctl := &controller{ctx: ctx, cancel: cancel, item: b.itemFor(el)}
	b.controllers[el] = ctl

	for _, attr := range el.Attrs() {
		handler, kind, ok := b.registry.Lookup(attr.Name)
		if !ok || handler == nil {
			continue
		}
		binding := &Binding{
			Element: el,
			Name:    attr.Name,
			Value:   attr.Value,
			Kind:    kind,
			binder:  b,
			ctl:     ctl,
		}
		if err := b.install(handler, binding); err != nil {
			b.report(err, binding)
			continue
		}
		ctl.kinds = append(ctl.kinds, kind)
		b.metrics.BindingInstalled(kind)
	}
}

func (b *Binder) install(h Handler, binding *Binding) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = oerrors.New("E011").Wrap(fmt.Errorf("%v", r))
		}
	}()
	return h(binding)
}

// Unbind revokes everything el's bindings acquired. It is safe to call on
// elements that were never bound.
func (b *Binder) Unbind(el host.Element) {
	ctl, ok := b.controllers[el]
	if !ok {
		return
	}
	delete(b.controllers, el)
	delete(b.items, el)

	ctl.cancel()
	for i := len(ctl.cleanups) - 1; i >= 0; i-- {
		ctl.cleanups[i]()
	}
	ctl.cleanups = nil
	for _, kind := range ctl.kinds {
		b.metrics.BindingRemoved(kind)
	}
}

// BindTree binds el and its descendants in document order, stopping at
// nested scopes.
func (b *Binder) BindTree(el host.Element) {
	vocab := b.Vocabulary()
	host.Walk(el, func(n host.Element) bool {
		if n != el && vocab.IsScope(n) {
			return false
		}
		b.Bind(n)
		return true
	})
}

// UnbindTree unbinds el's descendants, deepest first, then el.
func (b *Binder) UnbindTree(el host.Element) {
	for _, child := range el.Children() {
		b.UnbindTree(child)
	}
	b.Unbind(el)
}

// Close unbinds every element, children before parents, and rejects later
// binds.
func (b *Binder) Close() {
	if b.closed {
		return
	}
	b.closed = true

	type bound struct {
		el    host.Element
		depth int
	}
	all := make([]bound, 0, len(b.controllers))
	for el := range b.controllers {
		all = append(all, bound{el: el, depth: depth(el)})
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].depth > all[j].depth })

	for _, e := range all {
		b.Unbind(e.el)
	}
	b.items = make(map[host.Element]*itemContext)
}

func depth(el host.Element) int {
	n := 0
	for p := el.Parent(); p != nil; p = p.Parent() {
		n++
	}
	return n
}

// report sends a diagnostic to the log, metrics and the error handler.
func (b *Binder) report(err error, binding *Binding) {
	oe := oerrors.FromError(err, "E005")
	if binding != nil && oe.Attribute == "" {
		oe.WithAttribute(binding.Name, binding.Value)
	}
	if oe.Scope == "" {
		oe.WithScope(b.scope)
	}

	b.metrics.Diagnostic(oe.Code)
	b.logger.Error("directive failed",
		"scope", b.scope,
		"code", oe.Code,
		"attribute", oe.Attribute,
		"value", oe.Value,
		"error", oe.Error(),
	)
	if b.onError != nil {
		b.onError(oe)
	}
}
