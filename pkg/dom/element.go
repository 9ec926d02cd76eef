package dom

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/vango-dev/orbit/pkg/host"
)

// ErrReadOnly is returned when assigning a read-only property.
var ErrReadOnly = errors.New("dom: property is read-only")

type nodeKind uint8

const (
	elementNode nodeKind = iota
	textNode
	commentNode
	fragmentNode
)

// Element is a node of an in-memory document. Text, comment and template
// content nodes share the type but are never returned through host.Element.
type Element struct {
	kind   nodeKind
	tag    string
	attrs  []host.Attr
	data   string
	parent *Element
	nodes  []*Element

	// content holds a template's inert children.
	content *Element

	props     map[string]any
	listeners []*listener
	doc       *Document
}

var _ host.Element = (*Element)(nil)

// Tag returns the lower-case tag name.
func (e *Element) Tag() string {
	return e.tag
}

// Document returns the owning document.
func (e *Element) Document() *Document {
	return e.doc
}

// Attrs returns a copy of the attributes in document order.
func (e *Element) Attrs() []host.Attr {
	out := make([]host.Attr, len(e.attrs))
	copy(out, e.attrs)
	return out
}

// Attr returns the value of the named attribute.
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// HasAttr reports whether the named attribute is present.
func (e *Element) HasAttr(name string) bool {
	_, ok := e.Attr(name)
	return ok
}

// SetAttr sets an attribute, keeping its position when it already exists.
func (e *Element) SetAttr(name, value string) {
	name = strings.ToLower(name)
	for i, a := range e.attrs {
		if a.Name == name {
			e.attrs[i].Value = value
			return
		}
	}
	e.attrs = append(e.attrs, host.Attr{Name: name, Value: value})
}

// RemoveAttr removes an attribute if present.
func (e *Element) RemoveAttr(name string) {
	for i, a := range e.attrs {
		if a.Name == name {
			e.attrs = append(e.attrs[:i], e.attrs[i+1:]...)
			return
		}
	}
}

// Parent returns the parent element, or nil when detached or at the top of
// template content.
func (e *Element) Parent() host.Element {
	if e.parent == nil || e.parent.kind != elementNode {
		return nil
	}
	return e.parent
}

// Children returns the element children.
func (e *Element) Children() []host.Element {
	out := make([]host.Element, 0, len(e.nodes))
	for _, n := range e.nodes {
		if n.kind == elementNode {
			out = append(out, n)
		}
	}
	return out
}

// NextSibling returns the next element sibling.
func (e *Element) NextSibling() host.Element {
	if e.parent == nil {
		return nil
	}
	siblings := e.parent.nodes
	for i, n := range siblings {
		if n != e {
			continue
		}
		for _, next := range siblings[i+1:] {
			if next.kind == elementNode {
				return next
			}
		}
		break
	}
	return nil
}

// InsertBefore inserts child before ref, or appends it when ref is nil or
// not a child of e. A child that is already attached is moved.
func (e *Element) InsertBefore(child, ref host.Element) {
	c := asElement(child)
	if c == nil || c == e || c.Contains(e) {
		return
	}
	if c.parent != nil {
		c.Remove()
	}

	r := asElement(ref)
	at := len(e.nodes)
	if r != nil {
		for i, n := range e.nodes {
			if n == r {
				at = i
				break
			}
		}
	}

	e.nodes = append(e.nodes, nil)
	copy(e.nodes[at+1:], e.nodes[at:])
	e.nodes[at] = c
	c.parent = e

	if c.kind == elementNode {
		e.doc.record(e, []*Element{c}, nil)
	}
}

// AppendChild appends child.
func (e *Element) AppendChild(child host.Element) {
	e.InsertBefore(child, nil)
}

// Remove detaches the element from its parent.
func (e *Element) Remove() {
	p := e.parent
	if p == nil {
		return
	}
	for i, n := range p.nodes {
		if n == e {
			p.nodes = append(p.nodes[:i], p.nodes[i+1:]...)
			break
		}
	}
	if e.kind == elementNode {
		p.doc.record(p, nil, []*Element{e})
	}
	e.parent = nil
}

// Clone returns a detached deep copy without listeners or properties.
func (e *Element) Clone() host.Element {
	return e.clone()
}

func (e *Element) clone() *Element {
	c := &Element{
		kind: e.kind,
		tag:  e.tag,
		data: e.data,
		doc:  e.doc,
	}
	if len(e.attrs) > 0 {
		c.attrs = make([]host.Attr, len(e.attrs))
		copy(c.attrs, e.attrs)
	}
	for _, n := range e.nodes {
		child := n.clone()
		child.parent = c
		c.nodes = append(c.nodes, child)
	}
	if e.content != nil {
		c.content = e.content.clone()
	}
	return c
}

// IsTemplate reports whether e is a template element.
func (e *Element) IsTemplate() bool {
	return e.kind == elementNode && e.tag == "template"
}

// Content returns the top-level elements of a template's content.
func (e *Element) Content() []host.Element {
	if e.content == nil {
		return nil
	}
	return e.content.Children()
}

// Text returns the concatenated text of all descendants.
func (e *Element) Text() string {
	if e.kind == textNode {
		return e.data
	}
	var b strings.Builder
	e.collectText(&b)
	return b.String()
}

func (e *Element) collectText(b *strings.Builder) {
	for _, n := range e.nodes {
		switch n.kind {
		case textNode:
			b.WriteString(n.data)
		case elementNode:
			n.collectText(b)
		}
	}
}

// SetText replaces the children with a single text node.
func (e *Element) SetText(text string) {
	e.clearChildren()
	if text == "" {
		return
	}
	t := &Element{kind: textNode, data: text, parent: e, doc: e.doc}
	e.nodes = append(e.nodes, t)
}

// SetHTML replaces the children with parsed markup.
func (e *Element) SetHTML(markup string) error {
	nodes, err := e.doc.parseInto(e, markup)
	if err != nil {
		return err
	}
	e.clearChildren()
	for _, n := range nodes {
		e.InsertBefore(n, nil)
	}
	return nil
}

func (e *Element) clearChildren() {
	nodes := append([]*Element(nil), e.nodes...)
	for _, n := range nodes {
		n.Remove()
	}
	e.nodes = nil
}

// Contains reports whether other is e or a descendant of e.
func (e *Element) Contains(other host.Element) bool {
	o := asElement(other)
	for n := o; n != nil; n = n.parent {
		if n == e {
			return true
		}
	}
	return false
}

// Property reads a live property. Form state lives in properties once set,
// falling back to the attributes it reflects.
func (e *Element) Property(name string) any {
	switch name {
	case "value":
		if v, ok := e.props["value"]; ok {
			return v
		}
		return e.defaultValue()
	case "checked":
		if v, ok := e.props["checked"]; ok {
			return v
		}
		return e.HasAttr("checked")
	case "textContent":
		return e.Text()
	case "innerHTML":
		return e.InnerHTML()
	case "outerHTML":
		return e.OuterHTML()
	case "hidden", "disabled", "readOnly", "required":
		return e.HasAttr(strings.ToLower(name))
	case "id":
		v, _ := e.Attr("id")
		return v
	case "className":
		v, _ := e.Attr("class")
		return v
	case "tagName":
		return strings.ToUpper(e.tag)
	}
	return e.props[name]
}

// SetProperty assigns a live property.
func (e *Element) SetProperty(name string, value any) error {
	switch name {
	case "value":
		e.setProp("value", propString(value))
	case "checked":
		e.setProp("checked", propBool(value))
	case "textContent":
		e.SetText(propString(value))
	case "innerHTML":
		return e.SetHTML(propString(value))
	case "hidden", "disabled", "readOnly", "required":
		attr := strings.ToLower(name)
		if propBool(value) {
			e.SetAttr(attr, "")
		} else {
			e.RemoveAttr(attr)
		}
	case "id":
		e.SetAttr("id", propString(value))
	case "className":
		e.SetAttr("class", propString(value))
	case "tagName", "nodeName", "nodeType", "outerHTML", "parentNode", "children", "firstChild", "lastChild":
		return fmt.Errorf("%w: %s", ErrReadOnly, name)
	default:
		e.setProp(name, value)
	}
	return nil
}

func (e *Element) setProp(name string, value any) {
	if e.props == nil {
		e.props = make(map[string]any)
	}
	e.props[name] = value
}

func (e *Element) defaultValue() string {
	switch e.tag {
	case "textarea":
		return e.Text()
	case "select":
		var first string
		found := false
		for _, opt := range e.options() {
			v := opt.optionValue()
			if !found {
				first, found = v, true
			}
			if opt.HasAttr("selected") {
				return v
			}
		}
		return first
	case "input":
		if v, ok := e.Attr("value"); ok {
			return v
		}
		if t, _ := e.Attr("type"); t == "checkbox" || t == "radio" {
			return "on"
		}
		return ""
	case "option":
		return e.optionValue()
	}
	v, _ := e.Attr("value")
	return v
}

func (e *Element) options() []*Element {
	var out []*Element
	var walk func(*Element)
	walk = func(n *Element) {
		for _, c := range n.nodes {
			if c.kind != elementNode {
				continue
			}
			if c.tag == "option" {
				out = append(out, c)
				continue
			}
			walk(c)
		}
	}
	walk(e)
	return out
}

func (e *Element) optionValue() string {
	if v, ok := e.Attr("value"); ok {
		return v
	}
	return strings.TrimSpace(e.Text())
}

func asElement(h host.Element) *Element {
	if h == nil {
		return nil
	}
	e, _ := h.(*Element)
	return e
}

func propString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case fmt.Stringer:
		return x.String()
	}
	return fmt.Sprint(v)
}

func propBool(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case int:
		return x != 0
	case float64:
		return x != 0 && x == x
	}
	return true
}
