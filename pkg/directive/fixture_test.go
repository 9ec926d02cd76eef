package directive

import (
	"io"
	"log/slog"
	"testing"

	oerrors "github.com/vango-dev/orbit/internal/errors"
	"github.com/vango-dev/orbit/pkg/dom"
	"github.com/vango-dev/orbit/pkg/host"
	"github.com/vango-dev/orbit/pkg/observe"
	"github.com/vango-dev/orbit/pkg/store"
)

type fixture struct {
	t      *testing.T
	doc    *dom.Document
	store  *store.Store
	binder *Binder
	obs    *observe.Observer
	errs   []error
}

type fixtureOption func(*Config)

func withRefs(refs RefSink) fixtureOption {
	return func(c *Config) { c.Refs = refs }
}

// newFixture binds every element under rootID (or the whole document) the
// way a scope does.
func newFixture(t *testing.T, markup string, state map[string]any, rootID string, opts ...fixtureOption) *fixture {
	t.Helper()

	doc, err := dom.ParseFragment(markup)
	if err != nil {
		t.Fatalf("ParseFragment: %v", err)
	}
	s := store.New()
	if _, err := s.Init(state); err != nil {
		t.Fatalf("Init: %v", err)
	}

	f := &fixture{t: t, doc: doc, store: s}
	cfg := Config{
		Store:    s,
		Document: doc,
		Scope:    "test",
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		OnError:  func(err error) { f.errs = append(f.errs, err) },
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	f.binder = NewBinder(cfg)

	var root host.Element = doc.Root()
	if rootID != "" {
		root = f.el(rootID)
	}
	f.obs = observe.Observe(doc, root, observe.Hooks{
		OnMount:   f.binder.Bind,
		OnUnmount: f.binder.Unbind,
	}, observe.Options{})
	doc.Flush()
	return f
}

func (f *fixture) el(id string) *dom.Element {
	f.t.Helper()
	el := f.doc.ElementByID(id)
	if el == nil {
		f.t.Fatalf("no element #%s", id)
	}
	return el.(*dom.Element)
}

func (f *fixture) write(path string, v any) {
	f.store.Write(path, v)
	f.doc.Flush()
}

func (f *fixture) codes() []string {
	out := make([]string, 0, len(f.errs))
	for _, err := range f.errs {
		out = append(out, oerrors.Code(err))
	}
	return out
}

// texts returns the text of every element with the given tag under el.
func texts(el host.Element, tag string) []string {
	var out []string
	host.Walk(el, func(n host.Element) bool {
		if n.Tag() == tag {
			out = append(out, n.Text())
		}
		return true
	})
	return out
}

func elements(el host.Element, tag string) []host.Element {
	var out []host.Element
	host.Walk(el, func(n host.Element) bool {
		if n.Tag() == tag {
			out = append(out, n)
		}
		return true
	})
	return out
}
