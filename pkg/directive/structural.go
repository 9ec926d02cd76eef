package directive

import (
	"fmt"
	"strconv"
	"strings"

	oerrors "github.com/vango-dev/orbit/internal/errors"
	"github.com/vango-dev/orbit/pkg/fieldpath"
	"github.com/vango-dev/orbit/pkg/host"
	"github.com/vango-dev/orbit/pkg/observe"
	"github.com/vango-dev/orbit/pkg/store"
)

// insertAfter places el right after anchor.
func insertAfter(anchor, el host.Element) {
	parent := anchor.Parent()
	if parent == nil {
		return
	}
	parent.InsertBefore(el, anchor.NextSibling())
}

func requireTemplate(b *Binding) error {
	if !b.Element.IsTemplate() {
		return oerrors.New("E002").WithDetail(fmt.Sprintf("found <%s>", b.Element.Tag()))
	}
	return nil
}

func bindIf(b *Binding) error {
	if err := requireTemplate(b); err != nil {
		return err
	}

	tpl := b.Element
	binder := b.binder
	var clones []host.Element

	reset := func() {
		for _, c := range clones {
			c.Remove()
			delete(binder.items, c)
		}
		clones = nil
	}

	b.Subscribe(b.Path(), func(v any) {
		if !store.Truthy(v) {
			reset()
			return
		}
		if len(clones) > 0 {
			return
		}
		content := tpl.Content()
		if len(content) == 0 {
			b.Report(oerrors.New("E007"))
			return
		}
		anchor := tpl
		for _, node := range content {
			c := node.Clone()
			if item := b.ctl.item; item != nil {
				binder.items[c] = item
			}
			insertAfter(anchor, c)
			clones = append(clones, c)
			anchor = c
		}
	})
	b.Defer(reset)
	return nil
}

func bindFor(b *Binding) error {
	if err := requireTemplate(b); err != nil {
		return err
	}

	tpl := b.Element
	binder := b.binder
	path := b.Path()
	alias := DefaultAlias
	if as, ok := tpl.Attr(AliasAttr); ok && strings.TrimSpace(as) != "" {
		alias = strings.TrimSpace(as)
	}

	var clones []host.Element

	truncate := func(n int) {
		for len(clones) > n {
			last := clones[len(clones)-1]
			clones = clones[:len(clones)-1]
			last.Remove()
			delete(binder.items, last)
		}
	}

	b.Subscribe(path, func(v any) {
		n := 0
		switch list := v.(type) {
		case nil:
		case *store.Array:
			n = list.Len()
		default:
			truncate(0)
			b.Report(oerrors.New("E006").WithDetail(fmt.Sprintf("got %T", v)))
			return
		}

		truncate(n)
		if len(clones) >= n {
			return
		}

		content := tpl.Content()
		if len(content) == 0 {
			b.Report(oerrors.New("E007"))
			return
		}
		anchor := tpl
		if len(clones) > 0 {
			anchor = clones[len(clones)-1]
		}
		for i := len(clones); i < n; i++ {
			c := content[0].Clone()
			binder.items[c] = &itemContext{
				alias:  alias,
				path:   fieldpath.Concat(path, strconv.Itoa(i)),
				parent: b.ctl.item,
			}
			insertAfter(anchor, c)
			clones = append(clones, c)
			anchor = c
		}
	})
	b.Defer(func() { truncate(0) })
	return nil
}

func bindTeleport(b *Binding) error {
	if err := requireTemplate(b); err != nil {
		return err
	}

	target := findTeleportTarget(b)
	if target == nil {
		return oerrors.New("E012").WithDetail(fmt.Sprintf("no element matches %q", b.Value))
	}

	binder := b.binder
	boundary := binder.Vocabulary().IsScope

	type teleported struct {
		el       host.Element
		observer *observe.Observer
	}
	var moved []teleported

	for _, node := range b.Element.Content() {
		c := node.Clone()
		if item := b.ctl.item; item != nil {
			binder.items[c] = item
		}
		target.InsertBefore(c, nil)
		obs := observe.Observe(binder.doc, c, observe.Hooks{
			OnMount:   binder.Bind,
			OnUnmount: binder.Unbind,
		}, observe.Options{Boundary: boundary})
		moved = append(moved, teleported{el: c, observer: obs})
	}

	b.Defer(func() {
		for i := len(moved) - 1; i >= 0; i-- {
			t := moved[i]
			t.observer.Stop()
			binder.UnbindTree(t.el)
			t.el.Remove()
			delete(binder.items, t.el)
		}
		moved = nil
	})
	return nil
}

// findTeleportTarget resolves "#id" through the document and any other
// value through the teleport target marker.
func findTeleportTarget(b *Binding) host.Element {
	doc := b.binder.doc
	if doc == nil {
		return nil
	}
	value := strings.TrimSpace(b.Value)
	if id, ok := strings.CutPrefix(value, "#"); ok {
		return doc.ElementByID(id)
	}

	marker := b.binder.Vocabulary().TeleportTarget
	var found host.Element
	host.Walk(doc.Root(), func(el host.Element) bool {
		if found != nil {
			return false
		}
		if v, ok := el.Attr(marker); ok && v == value {
			found = el
			return false
		}
		return true
	})
	return found
}
