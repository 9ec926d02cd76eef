package directive

import (
	"context"
	"strings"

	"github.com/vango-dev/orbit/pkg/host"
	"github.com/vango-dev/orbit/pkg/store"
)

// Binding is one directive being installed on an element.
type Binding struct {
	Element host.Element
	Name    string
	Value   string
	Kind    string

	binder *Binder
	ctl    *controller
}

// Binder returns the binder installing the directive.
func (b *Binding) Binder() *Binder {
	return b.binder
}

// Store returns the bound store.
func (b *Binding) Store() *store.Store {
	return b.binder.store
}

// Context is cancelled when the element is unbound.
func (b *Binding) Context() context.Context {
	return b.ctl.ctx
}

// Path returns the directive value resolved against the element's item
// context.
func (b *Binding) Path() string {
	return b.Resolve(b.Value)
}

// Resolve maps a path through the element's item context.
func (b *Binding) Resolve(path string) string {
	return b.ctl.item.resolve(strings.TrimSpace(path))
}

// Defer registers fn to run when the element is unbound.
func (b *Binding) Defer(fn func()) {
	b.ctl.cleanups = append(b.ctl.cleanups, fn)
}

// Subscribe subscribes fn to path for the element's lifetime.
func (b *Binding) Subscribe(path string, fn func(any)) {
	b.Defer(b.binder.store.Subscribe(path, fn))
}

// Listen adds an event listener for the element's lifetime.
func (b *Binding) Listen(typ string, fn func(host.Event), opts host.ListenerOptions) {
	opts.Context = b.ctl.ctx
	b.Defer(b.Element.AddEventListener(typ, fn, opts))
}

// Report sends a runtime diagnostic for this directive without removing it.
func (b *Binding) Report(err error) {
	b.binder.report(err, b)
}

// itemContext maps a list alias to the indexed path of one item.
type itemContext struct {
	alias  string
	path   string
	parent *itemContext
}

func (c *itemContext) resolve(path string) string {
	for ctx := c; ctx != nil; ctx = ctx.parent {
		if path == ctx.alias {
			return ctx.path
		}
		if rest, ok := strings.CutPrefix(path, ctx.alias); ok && (rest[0] == '.' || rest[0] == '[') {
			return ctx.path + rest
		}
	}
	return path
}

// itemFor returns the item context of the nearest ancestor clone.
func (b *Binder) itemFor(el host.Element) *itemContext {
	for n := el; n != nil; n = n.Parent() {
		if ctx, ok := b.items[n]; ok {
			return ctx
		}
	}
	return nil
}

// ItemPath returns the indexed path an alias resolves to for el, or "" when
// el is not inside a list item.
func (b *Binder) ItemPath(el host.Element) string {
	if ctx := b.itemFor(el); ctx != nil {
		return ctx.path
	}
	return ""
}
