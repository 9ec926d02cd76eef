package directive

import (
	"sort"
	"strings"
)

// Handler installs one directive on b.Element. Returning an error skips the
// directive; other directives on the element are still bound.
type Handler func(b *Binding) error

// Directive kinds used for metrics and diagnostics.
const (
	KindRef       = "ref"
	KindText      = "text"
	KindHTML      = "html"
	KindModel     = "model"
	KindShow      = "show"
	KindIf        = "if"
	KindFor       = "for"
	KindTeleport  = "teleport"
	KindEvent     = "event"
	KindAttribute = "attribute"
	KindProperty  = "property"
)

type entry struct {
	name    string
	prefix  bool
	kind    string
	handler Handler
}

// Registry maps attribute names to handlers. Exact names are matched first,
// then the longest matching prefix.
type Registry struct {
	vocab    Vocabulary
	exact    map[string]entry
	prefixes []entry
}

// NewRegistry returns a registry with the default directives for vocab.
func NewRegistry(vocab Vocabulary) *Registry {
	r := &Registry{
		vocab: vocab,
		exact: make(map[string]entry),
	}

	r.Register(vocab.Scope, "", nil)
	r.RegisterPrefix(vocab.Scope, "", nil)
	r.Register(vocab.Load, "", nil)
	r.Register(vocab.TeleportTarget, "", nil)

	r.Register(vocab.Ref, KindRef, bindRef)
	r.Register(vocab.Text, KindText, bindText)
	r.Register(vocab.HTML, KindHTML, bindHTML)
	r.Register(vocab.Model, KindModel, bindModel)
	r.Register(vocab.Show, KindShow, bindShow)
	r.Register(vocab.If, KindIf, bindIf)
	r.Register(vocab.For, KindFor, bindFor)
	r.Register(vocab.Teleport, KindTeleport, bindTeleport)

	r.RegisterPrefix(vocab.On, KindEvent, bindEvent)
	r.RegisterPrefix(vocab.Bind, KindAttribute, bindAttribute)
	r.RegisterPrefix(vocab.Prefix, KindProperty, bindProperty)

	return r
}

// Vocabulary returns the registry's vocabulary.
func (r *Registry) Vocabulary() Vocabulary {
	return r.vocab
}

// Register installs h for the exact attribute name. A nil handler marks the
// attribute as known but inert.
func (r *Registry) Register(name, kind string, h Handler) {
	name = strings.ToLower(name)
	r.exact[name] = entry{name: name, kind: kind, handler: h}
}

// RegisterPrefix installs h for every attribute starting with prefix.
func (r *Registry) RegisterPrefix(prefix, kind string, h Handler) {
	prefix = strings.ToLower(prefix)
	for i, e := range r.prefixes {
		if e.name == prefix {
			r.prefixes[i] = entry{name: prefix, prefix: true, kind: kind, handler: h}
			return
		}
	}
	r.prefixes = append(r.prefixes, entry{name: prefix, prefix: true, kind: kind, handler: h})
	sort.SliceStable(r.prefixes, func(i, j int) bool {
		return len(r.prefixes[i].name) > len(r.prefixes[j].name)
	})
}

// Lookup returns the handler and kind for an attribute name. ok is false
// for attributes outside the vocabulary; a nil handler with ok true means
// the attribute is recognized and ignored.
func (r *Registry) Lookup(name string) (h Handler, kind string, ok bool) {
	if e, found := r.exact[name]; found {
		return e.handler, e.kind, true
	}
	for _, e := range r.prefixes {
		if strings.HasPrefix(name, e.name) && len(name) > len(e.name) {
			return e.handler, e.kind, true
		}
	}
	return nil, "", false
}
