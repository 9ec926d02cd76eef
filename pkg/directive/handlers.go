package directive

import (
	"fmt"
	"strings"

	oerrors "github.com/vango-dev/orbit/internal/errors"
	"github.com/vango-dev/orbit/pkg/host"
	"github.com/vango-dev/orbit/pkg/store"
)

func bindRef(b *Binding) error {
	refs := b.binder.refs
	if refs == nil {
		return nil
	}
	name := strings.TrimSpace(b.Value)
	if release := refs.Capture(b.Context(), name, b.Element); release != nil {
		b.Defer(release)
	}
	return nil
}

func bindText(b *Binding) error {
	el := b.Element
	b.Subscribe(b.Path(), func(v any) {
		el.SetText(store.Stringify(v))
	})
	return nil
}

func bindHTML(b *Binding) error {
	el := b.Element
	b.Subscribe(b.Path(), func(v any) {
		if err := el.SetHTML(store.Stringify(v)); err != nil {
			b.Report(oerrors.New("E005").Wrap(err))
		}
	})
	return nil
}

func bindShow(b *Binding) error {
	el := b.Element
	b.Subscribe(b.Path(), func(v any) {
		_, hidden := el.Attr("hidden")
		switch show := store.Truthy(v); {
		case show && hidden:
			el.RemoveAttr("hidden")
		case !show && !hidden:
			el.SetAttr("hidden", "")
		}
	})
	return nil
}

func bindModel(b *Binding) error {
	el := b.Element
	path := b.Path()
	s := b.Store()

	switch el.Tag() {
	case "input":
		typ, _ := el.Attr("type")
		switch strings.ToLower(typ) {
		case "checkbox":
			b.Listen("change", func(host.Event) {
				s.Write(path, store.Truthy(el.Property("checked")))
			}, host.ListenerOptions{})
			b.Subscribe(path, func(v any) {
				setIfChanged(b, "checked", store.Truthy(v))
			})
			return nil

		case "radio":
			b.Listen("change", func(host.Event) {
				if store.Truthy(el.Property("checked")) {
					s.Write(path, store.Stringify(el.Property("value")))
				}
			}, host.ListenerOptions{})
			b.Subscribe(path, func(v any) {
				setIfChanged(b, "checked", store.Stringify(v) == store.Stringify(el.Property("value")))
			})
			return nil

		case "number", "range":
			b.Listen("input", func(host.Event) {
				raw := store.Stringify(el.Property("value"))
				if f, ok := store.ToFloat(raw); ok && raw != "" {
					s.Write(path, f)
					return
				}
				s.Write(path, raw)
			}, host.ListenerOptions{})
			b.Subscribe(path, func(v any) {
				setIfChanged(b, "value", store.Stringify(v))
			})
			return nil
		}
		bindValue(b, path, "input")
		return nil

	case "textarea":
		bindValue(b, path, "input")
		return nil

	case "select":
		bindValue(b, path, "change")
		return nil
	}

	return oerrors.New("E008").WithDetail(fmt.Sprintf("<%s> has no value to bind", el.Tag()))
}

func bindValue(b *Binding, path, event string) {
	el := b.Element
	s := b.Store()
	b.Listen(event, func(host.Event) {
		s.Write(path, store.Stringify(el.Property("value")))
	}, host.ListenerOptions{})
	b.Subscribe(path, func(v any) {
		setIfChanged(b, "value", store.Stringify(v))
	})
}

// setIfChanged assigns a form property only when it differs, so that a
// write originating from the element does not reset it.
func setIfChanged(b *Binding, name string, value any) {
	current := b.Element.Property(name)
	if name == "value" && store.Stringify(current) == value {
		return
	}
	if name == "checked" && store.Truthy(current) == value {
		return
	}
	if err := b.Element.SetProperty(name, value); err != nil {
		b.Report(oerrors.New("E005").Wrap(err))
	}
}

var eventModifiers = map[string]bool{
	"prevent": true,
	"stop":    true,
	"capture": true,
	"once":    true,
	"passive": true,
}

func bindEvent(b *Binding) error {
	spec := strings.TrimPrefix(b.Name, b.binder.Vocabulary().On)
	parts := strings.Split(spec, "-")
	typ, modifiers := parts[0], parts[1:]
	if typ == "" {
		return oerrors.New("E009").WithDetail("missing event type")
	}

	flags := make(map[string]bool, len(modifiers))
	for _, m := range modifiers {
		if !eventModifiers[m] {
			return oerrors.New("E009").WithDetail(fmt.Sprintf("unknown modifier %q", m))
		}
		flags[m] = true
	}

	path := b.Path()
	s := b.Store()
	b.Listen(typ, func(ev host.Event) {
		if flags["prevent"] {
			ev.PreventDefault()
		}
		if flags["stop"] {
			ev.StopPropagation()
		}
		fn, ok := s.Read(path).(store.Action)
		if !ok {
			return
		}
		defer func() {
			if r := recover(); r != nil {
				b.Report(oerrors.New("E011").Wrap(fmt.Errorf("%v", r)))
			}
		}()
		fn(s.Root(), ev)
	}, host.ListenerOptions{
		Capture: flags["capture"],
		Once:    flags["once"],
		Passive: flags["passive"],
	})
	return nil
}

func bindAttribute(b *Binding) error {
	el := b.Element
	attr := strings.TrimPrefix(b.Name, b.binder.Vocabulary().Bind)
	b.Subscribe(b.Path(), func(v any) {
		switch x := v.(type) {
		case nil:
			el.RemoveAttr(attr)
		case bool:
			if x {
				el.SetAttr(attr, "")
			} else {
				el.RemoveAttr(attr)
			}
		case string:
			el.SetAttr(attr, x)
		default:
			if _, ok := store.ToFloat(x); ok {
				el.SetAttr(attr, store.Stringify(x))
				return
			}
			b.Report(oerrors.New("E005").WithDetail(fmt.Sprintf("cannot set attribute %s to %T", attr, v)))
		}
	})
	return nil
}

func bindProperty(b *Binding) error {
	el := b.Element
	prop := propertyName(strings.TrimPrefix(b.Name, b.binder.Vocabulary().Prefix))
	b.Subscribe(b.Path(), func(v any) {
		if err := el.SetProperty(prop, store.Plain(v)); err != nil {
			b.Report(oerrors.New("E005").WithDetail("property " + prop).Wrap(err))
		}
	})
	return nil
}

// propertyName converts a kebab-case attribute suffix to a camelCase
// property name.
func propertyName(s string) string {
	parts := strings.Split(s, "-")
	for i := 1; i < len(parts); i++ {
		if parts[i] != "" {
			parts[i] = strings.ToUpper(parts[i][:1]) + parts[i][1:]
		}
	}
	return strings.Join(parts, "")
}
