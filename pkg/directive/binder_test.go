package directive

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/vango-dev/orbit/pkg/dom"
	"github.com/vango-dev/orbit/pkg/host"
	"github.com/vango-dev/orbit/pkg/store"
)

func TestTextAndHTML(t *testing.T) {
	f := newFixture(t, `<span id="t" o-text="name"></span><div id="h" o-html="markup"></div>`, map[string]any{
		"name":   "Ada",
		"markup": "<b>bold</b>",
	}, "")

	if got := f.el("t").Text(); got != "Ada" {
		t.Errorf("text = %q, want Ada", got)
	}
	if got := f.el("h").InnerHTML(); got != "<b>bold</b>" {
		t.Errorf("html = %q", got)
	}

	f.write("name", nil)
	if got := f.el("t").Text(); got != "" {
		t.Errorf("nil text = %q, want empty", got)
	}

	f.write("name", map[string]any{"first": "Ada"})
	if got := f.el("t").Text(); got != `{"first":"Ada"}` {
		t.Errorf("object text = %q", got)
	}

	f.write("name", 2.0)
	if got := f.el("t").Text(); got != "2" {
		t.Errorf("number text = %q", got)
	}
}

func TestShow(t *testing.T) {
	f := newFixture(t, `<p id="p" o-show="visible">x</p>`, map[string]any{"visible": false}, "")

	if !f.el("p").HasAttr("hidden") {
		t.Error("expected hidden")
	}
	f.write("visible", "yes")
	if f.el("p").HasAttr("hidden") {
		t.Error("expected visible")
	}
}

func TestModelText(t *testing.T) {
	f := newFixture(t, `<input id="i" o-model="name"><textarea id="ta" o-model="bio"></textarea>`, map[string]any{
		"name": "Ada",
		"bio":  "hi",
	}, "")

	input := f.el("i")
	if got := input.Property("value"); got != "Ada" {
		t.Fatalf("initial value = %v", got)
	}

	dom.Input(input, "Grace")
	if got := f.store.Read("name"); got != "Grace" {
		t.Errorf("store = %v, want Grace", got)
	}

	f.write("name", "Linus")
	if got := input.Property("value"); got != "Linus" {
		t.Errorf("value = %v, want Linus", got)
	}

	dom.Input(f.el("ta"), "longer")
	if got := f.store.Read("bio"); got != "longer" {
		t.Errorf("bio = %v", got)
	}
}

func TestModelCheckboxRadioNumber(t *testing.T) {
	f := newFixture(t, `
		<input id="c" type="checkbox" o-model="done">
		<input id="ra" type="radio" name="pick" value="a" o-model="pick">
		<input id="rb" type="radio" name="pick" value="b" o-model="pick">
		<input id="n" type="number" o-model="qty">`,
		map[string]any{"done": false, "pick": "b", "qty": 1}, "")

	dom.Click(f.el("c"))
	if got := f.store.Read("done"); got != true {
		t.Errorf("done = %v, want true", got)
	}

	if f.el("ra").Property("checked") != false || f.el("rb").Property("checked") != true {
		t.Fatal("radio b should start checked")
	}
	dom.Click(f.el("ra"))
	if got := f.store.Read("pick"); got != "a" {
		t.Errorf("pick = %v, want a", got)
	}
	if f.el("rb").Property("checked") != false {
		t.Error("radio b should be unchecked after picking a")
	}

	dom.Input(f.el("n"), "42")
	if got := f.store.Read("qty"); got != 42.0 {
		t.Errorf("qty = %#v, want 42.0", got)
	}
}

func TestModelUnsupportedElement(t *testing.T) {
	f := newFixture(t, `<div id="d" o-model="x" o-text="x"></div>`, map[string]any{"x": "still bound"}, "")

	if diff := cmp.Diff([]string{"E008"}, f.codes()); diff != "" {
		t.Errorf("codes mismatch (-want +got):\n%s", diff)
	}
	if got := f.el("d").Text(); got != "still bound" {
		t.Errorf("sibling directive text = %q", got)
	}
}

func TestEvents(t *testing.T) {
	calls := 0
	f := newFixture(t, `<button id="b" o-onclick="inc"></button><form id="f" o-onsubmit-prevent="save"></form>`, map[string]any{
		"count": 0,
		"inc": store.Action(func(this *store.Object, args ...any) any {
			if _, ok := args[0].(host.Event); !ok {
				t.Errorf("handler argument %T, want host.Event", args[0])
			}
			this.Set("count", this.Int("count")+1)
			return nil
		}),
		"save": store.Action(func(*store.Object, ...any) any {
			calls++
			return nil
		}),
	}, "")

	dom.Click(f.el("b"))
	dom.Click(f.el("b"))
	if got := f.store.Read("count"); got != 2 {
		t.Errorf("count = %v, want 2", got)
	}

	// handlers are looked up when the event fires
	f.store.Write("inc", store.Action(func(this *store.Object, args ...any) any {
		this.Set("count", 100)
		return nil
	}))
	dom.Click(f.el("b"))
	if got := f.store.Read("count"); got != 100 {
		t.Errorf("count = %v, want 100", got)
	}

	if dom.Dispatch(f.el("f"), dom.NewEvent("submit")) {
		t.Error("submit default should be prevented")
	}
	if calls != 1 {
		t.Errorf("save calls = %d", calls)
	}
}

func TestEventModifiers(t *testing.T) {
	hits := map[string]int{}
	handler := func(name string) store.Action {
		return func(*store.Object, ...any) any {
			hits[name]++
			return nil
		}
	}
	f := newFixture(t, `
		<div id="outer" o-onclick="outer">
			<button id="once" o-onclick-once="once"></button>
			<button id="stop" o-onclick-stop="stop"></button>
		</div>
		<button id="bad" o-onclick-sideways="x"></button>
		<button id="empty" o-on="x"></button>`,
		map[string]any{"outer": handler("outer"), "once": handler("once"), "stop": handler("stop")}, "")

	dom.Click(f.el("once"))
	dom.Click(f.el("once"))
	dom.Click(f.el("stop"))

	want := map[string]int{"once": 1, "outer": 2, "stop": 1}
	if diff := cmp.Diff(want, hits); diff != "" {
		t.Errorf("hits mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"E009"}, f.codes()); diff != "" {
		t.Errorf("codes mismatch (-want +got):\n%s", diff)
	}
}

func TestEventHandlerPanicIsReported(t *testing.T) {
	f := newFixture(t, `<button id="b" o-onclick="boom"></button>`, map[string]any{
		"boom": store.Action(func(*store.Object, ...any) any { panic("kaboom") }),
	}, "")

	dom.Click(f.el("b"))
	if diff := cmp.Diff([]string{"E011"}, f.codes()); diff != "" {
		t.Errorf("codes mismatch (-want +got):\n%s", diff)
	}
}

func TestAttributePassthrough(t *testing.T) {
	f := newFixture(t, `<a id="a" o-bind-href="url" o-bind-aria-busy="busy" o-bind-tabindex="tab"></a>`, map[string]any{
		"url":  "/docs",
		"busy": true,
		"tab":  2,
	}, "")

	a := f.el("a")
	if v, _ := a.Attr("href"); v != "/docs" {
		t.Errorf("href = %q", v)
	}
	if !a.HasAttr("aria-busy") {
		t.Error("aria-busy should be present")
	}
	if v, _ := a.Attr("tabindex"); v != "2" {
		t.Errorf("tabindex = %q", v)
	}

	f.write("busy", false)
	f.write("url", nil)
	if a.HasAttr("aria-busy") || a.HasAttr("href") {
		t.Error("false and nil should remove attributes")
	}

	f.write("tab", map[string]any{})
	if diff := cmp.Diff([]string{"E005"}, f.codes()); diff != "" {
		t.Errorf("codes mismatch (-want +got):\n%s", diff)
	}
}

func TestPropertyPassthrough(t *testing.T) {
	f := newFixture(t, `<input id="i" o-value="v" o-tag-name="v"><div id="d" o-text-content="msg"></div>`, map[string]any{
		"v":   "x",
		"msg": "hello",
	}, "")

	if got := f.el("i").Property("value"); got != "x" {
		t.Errorf("value = %v", got)
	}
	if got := f.el("d").Text(); got != "hello" {
		t.Errorf("textContent = %q", got)
	}

	// the failing assignment stays subscribed
	f.write("v", "y")
	if diff := cmp.Diff([]string{"E005", "E005"}, f.codes()); diff != "" {
		t.Errorf("codes mismatch (-want +got):\n%s", diff)
	}
	if got := f.el("i").Property("value"); got != "y" {
		t.Errorf("value = %v", got)
	}
}

type refRecorder struct {
	captured map[string]host.Element
	released []string
}

func (r *refRecorder) Capture(_ context.Context, name string, el host.Element) func() {
	r.captured[name] = el
	return func() {
		delete(r.captured, name)
		r.released = append(r.released, name)
	}
}

func TestRefCapture(t *testing.T) {
	refs := &refRecorder{captured: map[string]host.Element{}}
	f := newFixture(t, `<div id="root"><canvas id="c" o-ref="canvas"></canvas></div>`, map[string]any{}, "", withRefs(refs))

	if refs.captured["canvas"] != host.Element(f.el("c")) {
		t.Fatal("canvas not captured")
	}

	f.el("c").Remove()
	f.doc.Flush()

	if len(refs.captured) != 0 {
		t.Error("capture should be released")
	}
	if diff := cmp.Diff([]string{"canvas"}, refs.released); diff != "" {
		t.Errorf("released mismatch (-want +got):\n%s", diff)
	}
}

func TestUnbindIsIdempotent(t *testing.T) {
	f := newFixture(t, `<span id="t" o-text="name"></span>`, map[string]any{"name": "a"}, "")
	el := f.el("t")

	f.binder.Unbind(el)
	f.binder.Unbind(el)
	f.binder.Unbind(f.doc.CreateElement("p"))

	if n := f.store.SubscriberCount("name"); n != 0 {
		t.Errorf("subscribers = %d, want 0", n)
	}
	f.write("name", "b")
	if got := el.Text(); got != "a" {
		t.Errorf("unbound element updated to %q", got)
	}
}

func TestCloseTearsDownBottomUp(t *testing.T) {
	f := newFixture(t, `<div id="root" o-text="a"><p id="child" o-text="a"></p><p id="other" o-onclick="noop"></p></div>`, map[string]any{"a": "x"}, "root")

	if f.binder.Len() != 3 {
		t.Fatalf("bound = %d, want 3", f.binder.Len())
	}

	f.obs.Stop()
	f.binder.Close()

	if f.binder.Len() != 0 || f.store.SubscriberCount("a") != 0 {
		t.Errorf("bound=%d subscribers=%d after Close", f.binder.Len(), f.store.SubscriberCount("a"))
	}
	if f.el("other").ListenerCount("") != 0 {
		t.Error("listeners should be removed")
	}

	f.binder.Bind(f.el("child"))
	if f.binder.Bound(f.el("child")) {
		t.Error("Bind after Close should be ignored")
	}
}
