package directive

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/vango-dev/orbit/pkg/host"
	"github.com/vango-dev/orbit/pkg/observe"
	"github.com/vango-dev/orbit/pkg/store"
)

func TestConditional(t *testing.T) {
	f := newFixture(t, `<div id="root"><template o-if="open"><p o-text="msg"></p><p>static</p></template><span>after</span></div>`, map[string]any{
		"open": false,
		"msg":  "hello",
	}, "")

	root := f.el("root")
	if got := texts(root, "p"); len(got) != 0 {
		t.Fatalf("closed conditional rendered %v", got)
	}

	f.write("open", true)
	if diff := cmp.Diff([]string{"template", "p", "p", "span"}, tagsOf(root.Children())); diff != "" {
		t.Errorf("clones not at the placeholder position (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"hello", "static"}, texts(root, "p")); diff != "" {
		t.Errorf("texts mismatch (-want +got):\n%s", diff)
	}

	first := elements(root, "p")[0]
	f.write("open", 1)
	if elements(root, "p")[0] != first {
		t.Error("truthy to truthy should keep existing clones")
	}

	f.write("open", false)
	if got := texts(root, "p"); len(got) != 0 {
		t.Errorf("clones not removed: %v", got)
	}
	if n := f.store.SubscriberCount("msg"); n != 0 {
		t.Errorf("removed clone still subscribed (%d)", n)
	}
}

func TestStructuralRequiresTemplate(t *testing.T) {
	f := newFixture(t, `<div id="d" o-if="x" o-for="y" o-teleport="#z" o-text="label"></div>`, map[string]any{"label": "ok"}, "")

	if diff := cmp.Diff([]string{"E002", "E002", "E002"}, f.codes()); diff != "" {
		t.Errorf("codes mismatch (-want +got):\n%s", diff)
	}
	if got := f.el("d").Text(); got != "ok" {
		t.Errorf("sibling binding text = %q", got)
	}
}

func TestListReconciliation(t *testing.T) {
	f := newFixture(t, `<ul id="list"><template o-for="items" as="item"><li o-text="item.name"></li></template></ul>`, map[string]any{
		"items": []any{
			map[string]any{"name": "a"},
			map[string]any{"name": "b"},
			map[string]any{"name": "c"},
		},
	}, "")

	list := f.el("list")
	var removed []string
	observe.Observe(f.doc, list, observe.Hooks{
		OnUnmount: func(el host.Element) { removed = append(removed, el.Text()) },
	}, observe.Options{})

	if diff := cmp.Diff([]string{"a", "b", "c"}, texts(list, "li")); diff != "" {
		t.Fatalf("initial items (-want +got):\n%s", diff)
	}
	before := elements(list, "li")

	items := f.store.Read("items").(*store.Array)
	items.Push(map[string]any{"name": "d"}, map[string]any{"name": "e"})
	f.doc.Flush()

	after := elements(list, "li")
	if len(after) != 5 {
		t.Fatalf("items after grow = %d, want 5", len(after))
	}
	for i := range before {
		if after[i] != before[i] {
			t.Errorf("item %d was recreated", i)
		}
	}
	if diff := cmp.Diff([]string{"a", "b", "c", "d", "e"}, texts(list, "li")); diff != "" {
		t.Errorf("grown items (-want +got):\n%s", diff)
	}

	items.Splice(2, 3)
	f.doc.Flush()

	if diff := cmp.Diff([]string{"e", "d", "c"}, removed); diff != "" {
		t.Errorf("removal order (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"a", "b"}, texts(list, "li")); diff != "" {
		t.Errorf("shrunk items (-want +got):\n%s", diff)
	}

	f.write("items[1].name", "B")
	if diff := cmp.Diff([]string{"a", "B"}, texts(list, "li")); diff != "" {
		t.Errorf("item update (-want +got):\n%s", diff)
	}
}

func TestListDefaultAliasAndEvents(t *testing.T) {
	f := newFixture(t, `<ul id="list"><template o-for="todos"><li><span o-text="$.title"></span><input type="checkbox" o-model="$.done"></li></template></ul>`, map[string]any{
		"todos": []any{
			map[string]any{"title": "write", "done": false},
			map[string]any{"title": "test", "done": true},
		},
	}, "")

	if diff := cmp.Diff([]string{"write", "test"}, texts(f.el("list"), "span")); diff != "" {
		t.Errorf("titles (-want +got):\n%s", diff)
	}

	boxes := elements(f.el("list"), "input")
	if boxes[0].Property("checked") != false || boxes[1].Property("checked") != true {
		t.Error("checkboxes should follow done")
	}
	if got := f.binder.ItemPath(boxes[1]); got != "todos[1]" {
		t.Errorf("ItemPath = %q", got)
	}
}

func TestNestedLists(t *testing.T) {
	f := newFixture(t, `<div id="root"><template o-for="groups" as="g"><section><template o-for="g.tags" as="t"><i o-text="t"></i></template><b o-text="g.name"></b></section></template></div>`, map[string]any{
		"groups": []any{
			map[string]any{"name": "g1", "tags": []any{"x", "y"}},
			map[string]any{"name": "g2", "tags": []any{"z"}},
		},
	}, "")

	root := f.el("root")
	if diff := cmp.Diff([]string{"g1", "g2"}, texts(root, "b")); diff != "" {
		t.Errorf("group names (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"x", "y", "z"}, texts(root, "i")); diff != "" {
		t.Errorf("tags (-want +got):\n%s", diff)
	}

	f.store.Read("groups[1].tags").(*store.Array).Push("w")
	f.doc.Flush()
	if diff := cmp.Diff([]string{"x", "y", "z", "w"}, texts(root, "i")); diff != "" {
		t.Errorf("tags after push (-want +got):\n%s", diff)
	}
}

func TestListNonSequence(t *testing.T) {
	f := newFixture(t, `<ul id="list"><template o-for="items"><li></li></template></ul>`, map[string]any{
		"items": []any{1, 2},
	}, "")

	f.write("items", "oops")
	if n := len(elements(f.el("list"), "li")); n != 0 {
		t.Errorf("items = %d, want 0", n)
	}
	if diff := cmp.Diff([]string{"E006"}, f.codes()); diff != "" {
		t.Errorf("codes mismatch (-want +got):\n%s", diff)
	}

	f.write("items", nil)
	if len(f.errs) != 1 {
		t.Error("nil list should render nothing without a diagnostic")
	}
}

func TestEmptyTemplate(t *testing.T) {
	f := newFixture(t, `<template o-if="on"></template>`, map[string]any{"on": true}, "")
	if diff := cmp.Diff([]string{"E007"}, f.codes()); diff != "" {
		t.Errorf("codes mismatch (-want +got):\n%s", diff)
	}
}

func TestUnbindRemovesClones(t *testing.T) {
	f := newFixture(t, `<ul id="list"><template id="tpl" o-for="items"><li o-text="$"></li></template></ul>`, map[string]any{
		"items": []any{"a", "b"},
	}, "")

	f.el("tpl").Remove()
	f.doc.Flush()

	if n := len(elements(f.el("list"), "li")); n != 0 {
		t.Errorf("clones left behind: %d", n)
	}
	if f.binder.Len() != 2 {
		t.Errorf("bound = %d, want body and ul", f.binder.Len())
	}
}

func TestTeleport(t *testing.T) {
	f := newFixture(t, `
		<div id="root">
			<template id="tpl" o-teleport="#modal"><p o-text="msg"></p></template>
			<template id="named" o-teleport="toasts"><em>toast</em></template>
		</div>
		<div id="modal"></div>
		<aside id="aside" o-teleport-target="toasts"></aside>`,
		map[string]any{"msg": "hi"}, "root")

	if diff := cmp.Diff([]string{"hi"}, texts(f.el("modal"), "p")); diff != "" {
		t.Fatalf("teleported content (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"toast"}, texts(f.el("aside"), "em")); diff != "" {
		t.Fatalf("named target (-want +got):\n%s", diff)
	}

	f.write("msg", "updated")
	if diff := cmp.Diff([]string{"updated"}, texts(f.el("modal"), "p")); diff != "" {
		t.Errorf("teleported binding (-want +got):\n%s", diff)
	}

	f.binder.Unbind(f.el("tpl"))
	if n := len(f.el("modal").Children()); n != 0 {
		t.Errorf("teleported content left behind: %d", n)
	}
	if n := f.store.SubscriberCount("msg"); n != 0 {
		t.Errorf("teleported bindings still subscribed: %d", n)
	}
}

func TestTeleportMissingTarget(t *testing.T) {
	f := newFixture(t, `<template o-teleport="#nowhere"><p></p></template>`, map[string]any{}, "")
	if diff := cmp.Diff([]string{"E012"}, f.codes()); diff != "" {
		t.Errorf("codes mismatch (-want +got):\n%s", diff)
	}
}

func tagsOf(els []host.Element) []string {
	out := make([]string, len(els))
	for i, el := range els {
		out[i] = el.Tag()
	}
	return out
}
