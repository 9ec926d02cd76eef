package dom

import "github.com/vango-dev/orbit/pkg/host"

type listener struct {
	typ     string
	fn      func(host.Event)
	opts    host.ListenerOptions
	removed bool
}

// Event is a dispatched event.
type Event struct {
	typ       string
	target    *Element
	current   *Element
	prevented bool
	stopped   bool
	passive   bool

	// Detail carries an optional payload.
	Detail any
}

var _ host.Event = (*Event)(nil)

// NewEvent creates an event of the given type.
func NewEvent(typ string) *Event {
	return &Event{typ: typ}
}

func (ev *Event) Type() string { return ev.typ }

func (ev *Event) Target() host.Element {
	if ev.target == nil {
		return nil
	}
	return ev.target
}

func (ev *Event) CurrentTarget() host.Element {
	if ev.current == nil {
		return nil
	}
	return ev.current
}

// PreventDefault marks the default action as cancelled. It has no effect
// inside passive listeners.
func (ev *Event) PreventDefault() {
	if !ev.passive {
		ev.prevented = true
	}
}

func (ev *Event) DefaultPrevented() bool { return ev.prevented }

func (ev *Event) StopPropagation() { ev.stopped = true }

// AddEventListener registers fn and returns its remover.
func (e *Element) AddEventListener(typ string, fn func(host.Event), opts host.ListenerOptions) func() {
	l := &listener{typ: typ, fn: fn, opts: opts}
	e.listeners = append(e.listeners, l)
	return func() { e.removeListener(l) }
}

// ListenerCount returns the number of live listeners for typ. An empty typ
// counts every listener.
func (e *Element) ListenerCount(typ string) int {
	n := 0
	for _, l := range e.listeners {
		if typ == "" || l.typ == typ {
			n++
		}
	}
	return n
}

func (e *Element) removeListener(l *listener) {
	if l.removed {
		return
	}
	l.removed = true
	for i, existing := range e.listeners {
		if existing == l {
			e.listeners = append(e.listeners[:i:i], e.listeners[i+1:]...)
			return
		}
	}
}

type phase uint8

const (
	capturePhase phase = iota + 1
	targetPhase
	bubblePhase
)

// Dispatch delivers ev to target through the capture, target and bubble
// phases. It returns false when the default action was prevented.
func Dispatch(target *Element, ev *Event) bool {
	ev.target = target

	var path []*Element
	for n := target.parent; n != nil; n = n.parent {
		if n.kind == elementNode {
			path = append(path, n)
		}
	}

	for i := len(path) - 1; i >= 0 && !ev.stopped; i-- {
		path[i].invoke(ev, capturePhase)
	}
	if !ev.stopped {
		target.invoke(ev, targetPhase)
	}
	for i := 0; i < len(path) && !ev.stopped; i++ {
		path[i].invoke(ev, bubblePhase)
	}

	ev.current = nil
	ev.passive = false
	return !ev.prevented
}

func (e *Element) invoke(ev *Event, p phase) {
	listeners := append([]*listener(nil), e.listeners...)
	for _, l := range listeners {
		if l.removed || l.typ != ev.typ {
			continue
		}
		if p == capturePhase && !l.opts.Capture || p == bubblePhase && l.opts.Capture {
			continue
		}
		if ctx := l.opts.Context; ctx != nil && ctx.Err() != nil {
			e.removeListener(l)
			continue
		}
		if l.opts.Once {
			e.removeListener(l)
		}
		ev.current = e
		ev.passive = l.opts.Passive
		l.fn(ev)
	}
}

// Click dispatches a click. Clicking a checkbox or radio toggles its checked
// state and fires change unless the click was prevented.
func Click(el *Element) bool {
	ok := Dispatch(el, NewEvent("click"))
	if !ok || el.tag != "input" {
		return ok
	}
	switch t, _ := el.Attr("type"); t {
	case "checkbox":
		Check(el, !propBool(el.Property("checked")))
	case "radio":
		Check(el, true)
	}
	return ok
}

// Input sets an element's value and fires input.
func Input(el *Element, value string) {
	el.SetProperty("value", value)
	Dispatch(el, NewEvent("input"))
}

// Change sets an element's value and fires change.
func Change(el *Element, value string) {
	el.SetProperty("value", value)
	Dispatch(el, NewEvent("change"))
}

// Check sets an element's checked state and fires change.
func Check(el *Element, checked bool) {
	el.SetProperty("checked", checked)
	Dispatch(el, NewEvent("change"))
}
