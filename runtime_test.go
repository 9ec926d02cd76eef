package orbit

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	oerrors "github.com/vango-dev/orbit/internal/errors"
	"github.com/vango-dev/orbit/pkg/dom"
	"github.com/vango-dev/orbit/pkg/host"
	"github.com/vango-dev/orbit/pkg/scope"
)

func counter(ctx Ctx, props map[string]any) func() {
	start := 0
	if v, ok := props["start"].(float64); ok {
		start = int(v)
	}
	ctx.State(map[string]any{
		"count": start,
		"inc": Action(func(this *Object, _ ...any) any {
			this.Set("count", this.Int("count")+1)
			return nil
		}),
	})
	return nil
}

type testRuntime struct {
	*Runtime
	t    *testing.T
	doc  *dom.Document
	errs []error
}

func newTestRuntime(t *testing.T, markup string, opts ...Option) *testRuntime {
	t.Helper()
	doc, err := dom.ParseFragment(markup)
	if err != nil {
		t.Fatalf("ParseFragment: %v", err)
	}
	tr := &testRuntime{t: t, doc: doc}
	opts = append([]Option{
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithErrorHandler(func(err error) { tr.errs = append(tr.errs, err) }),
	}, opts...)
	tr.Runtime = New(doc, opts...)
	tr.Define("counter", counter)
	return tr
}

func (tr *testRuntime) start() {
	tr.t.Helper()
	if err := tr.Start(); err != nil {
		tr.t.Fatalf("Start: %v", err)
	}
	tr.doc.Flush()
}

func (tr *testRuntime) el(id string) *dom.Element {
	tr.t.Helper()
	el := tr.doc.ElementByID(id)
	if el == nil {
		tr.t.Fatalf("no element #%s", id)
	}
	return el.(*dom.Element)
}

func (tr *testRuntime) text(id string) string {
	return tr.el(id).Text()
}

func (tr *testRuntime) codes() []string {
	var out []string
	for _, err := range tr.errs {
		out = append(out, oerrors.Code(err))
	}
	return out
}

func TestStartMountsScopes(t *testing.T) {
	tr := newTestRuntime(t, `
		<div o-scope="counter"><span id="a" o-text="count"></span><button id="inc-a" o-onclick="inc"></button></div>
		<div o-scope="counter" o-scope-props='{"start":10}'><span id="b" o-text="count"></span></div>
		<div o-scope="missing"><span id="c" o-text="count">inert</span></div>`)
	tr.start()

	if got := tr.text("a"); got != "0" {
		t.Errorf("a = %q, want 0", got)
	}
	if got := tr.text("b"); got != "10" {
		t.Errorf("b = %q, want 10", got)
	}
	if got := tr.text("c"); got != "inert" {
		t.Errorf("c = %q, want inert", got)
	}
	if diff := cmp.Diff([]string{"E001"}, tr.codes()); diff != "" {
		t.Errorf("codes mismatch (-want +got):\n%s", diff)
	}

	dom.Click(tr.el("inc-a"))
	tr.doc.Flush()
	if got := tr.text("a"); got != "1" {
		t.Errorf("a after click = %q, want 1", got)
	}
	if got := tr.text("b"); got != "10" {
		t.Errorf("b after click = %q, scopes must not share state", got)
	}
	if n := len(tr.Scopes()); n != 2 {
		t.Errorf("scopes = %d, want 2", n)
	}
}

func TestStartTwice(t *testing.T) {
	tr := newTestRuntime(t, `<div></div>`)
	tr.start()
	err := tr.Start()
	if code := oerrors.Code(err); code != "E050" {
		t.Errorf("second Start code = %q, want E050", code)
	}
}

func TestStopIsReversible(t *testing.T) {
	tr := newTestRuntime(t, `<div o-scope="counter"><span id="n" o-text="count"></span><button id="b" o-onclick="inc"></button></div>`)
	tr.start()
	dom.Click(tr.el("b"))
	tr.doc.Flush()

	tr.Stop()
	if n := tr.el("b").ListenerCount(""); n != 0 {
		t.Errorf("listeners after Stop = %d, want 0", n)
	}
	if n := len(tr.Scopes()); n != 0 {
		t.Errorf("scopes after Stop = %d, want 0", n)
	}
	dom.Click(tr.el("b"))
	tr.doc.Flush()
	if got := tr.text("n"); got != "1" {
		t.Errorf("text after Stop = %q, want 1", got)
	}

	tr.start()
	if got := tr.text("n"); got != "0" {
		t.Errorf("text after restart = %q, want fresh state", got)
	}
	dom.Click(tr.el("b"))
	tr.doc.Flush()
	if got := tr.text("n"); got != "1" {
		t.Errorf("text after restart click = %q, want 1", got)
	}
}

func TestInsertedAndRemovedScopes(t *testing.T) {
	tr := newTestRuntime(t, `<main id="main"></main>`)
	tr.start()

	root := tr.doc.CreateElement("section")
	root.SetAttr("o-scope", "counter")
	span := tr.doc.CreateElement("span")
	span.SetAttr("o-text", "count")
	root.AppendChild(span)
	tr.el("main").InsertBefore(root, nil)
	tr.doc.Flush()

	if got := span.Text(); got != "0" {
		t.Errorf("inserted scope text = %q, want 0", got)
	}
	s := tr.ScopeFor(root)
	if s == nil {
		t.Fatal("no scope for inserted root")
	}

	root.Remove()
	tr.doc.Flush()
	if s.State() != scope.Destroyed {
		t.Errorf("state after removal = %v, want destroyed", s.State())
	}
	if tr.ScopeFor(root) != nil {
		t.Error("removed root still tracked")
	}
}

func TestVisibleScopeWaits(t *testing.T) {
	tr := newTestRuntime(t, `<div id="lazy" o-scope="counter" o-load="visible"><span id="n" o-text="count">later</span></div>`)
	tr.start()

	if got := tr.text("n"); got != "later" {
		t.Fatalf("text before visible = %q, want later", got)
	}

	lazy := tr.el("lazy")
	tr.doc.SetVisible(lazy)
	tr.doc.Flush()

	if got := tr.text("n"); got != "0" {
		t.Errorf("text after visible = %q, want 0", got)
	}
	if _, ok := lazy.Attr("o-load"); ok {
		t.Error("o-load still present after reveal")
	}
}

func TestLazyBehavior(t *testing.T) {
	tr := newTestRuntime(t, `<div o-scope="lazy"><span id="n" o-text="greeting"></span></div>`)
	tr.Lazy("lazy", func(ctx context.Context) (Behavior, error) {
		return MountFunc(func(ctx Ctx, _ map[string]any) func() {
			ctx.State(map[string]any{"greeting": "hello"})
			return nil
		}), nil
	})
	tr.start()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	for tr.text("n") != "hello" {
		if err := tr.doc.Await(ctx); err != nil {
			t.Fatalf("text = %q after waiting: %v", tr.text("n"), err)
		}
	}
}

func TestNestedScopesStopInnerFirst(t *testing.T) {
	tr := newTestRuntime(t, `<div o-scope="outer"><div o-scope="inner"></div></div>`)
	var order []string
	for _, name := range []string{"outer", "inner"} {
		tr.Define(name, func(ctx Ctx, _ map[string]any) func() {
			return func() { order = append(order, name) }
		})
	}
	tr.start()
	tr.Stop()

	if diff := cmp.Diff([]string{"inner", "outer"}, order); diff != "" {
		t.Errorf("unmount order mismatch (-want +got):\n%s", diff)
	}
}

func TestCustomPrefix(t *testing.T) {
	tr := newTestRuntime(t, `<div x-scope="counter"><span id="n" x-text="count" o-text="ignored"></span><button id="b" x-onclick="inc"></button></div>`,
		WithPrefix("x-"))
	tr.start()

	dom.Click(tr.el("b"))
	tr.doc.Flush()
	if got := tr.text("n"); got != "1" {
		t.Errorf("text = %q, want 1", got)
	}
	if len(tr.errs) != 0 {
		t.Errorf("errors = %v, want none", tr.errs)
	}
}

func TestNames(t *testing.T) {
	tr := newTestRuntime(t, `<div></div>`)
	tr.Define("toggle", func(Ctx, map[string]any) func() { return nil })
	if diff := cmp.Diff([]string{"counter", "toggle"}, tr.Names()); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}
	var _ host.Document = tr.Document()
}
