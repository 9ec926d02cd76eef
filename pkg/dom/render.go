package dom

import (
	"io"
	"strings"
)

// RenderOptions configures HTML output.
type RenderOptions struct {
	// IDs adds a data-oid attribute to every element so that a remote
	// client can address it. See Document.ElementByOID.
	IDs bool
}

// renderer writes markup and keeps the first write error.
type renderer struct {
	w    io.Writer
	doc  *Document
	opts RenderOptions
	err  error
}

func (r *renderer) write(s string) {
	if r.err != nil {
		return
	}
	_, r.err = io.WriteString(r.w, s)
}

// Render writes the document. Pages parsed as a whole get a doctype.
func (d *Document) Render(w io.Writer, opts RenderOptions) error {
	r := &renderer{w: w, doc: d, opts: opts}
	if d.full {
		r.write("<!DOCTYPE html>")
	}
	r.node(d.root)
	return r.err
}

// HTML returns the rendered document.
func (d *Document) HTML() string {
	var b strings.Builder
	d.Render(&b, RenderOptions{})
	return b.String()
}

// OuterHTML returns the element's markup.
func (e *Element) OuterHTML() string {
	var b strings.Builder
	r := &renderer{w: &b, doc: e.doc}
	r.node(e)
	return b.String()
}

// Render writes the element's markup to w.
func (e *Element) Render(w io.Writer, opts RenderOptions) error {
	r := &renderer{w: w, doc: e.doc, opts: opts}
	r.node(e)
	return r.err
}

// RenderInner writes the markup of the element's children to w.
func (e *Element) RenderInner(w io.Writer, opts RenderOptions) error {
	r := &renderer{w: w, doc: e.doc, opts: opts}
	r.children(e)
	return r.err
}

// InnerHTML returns the markup of the element's children.
func (e *Element) InnerHTML() string {
	var b strings.Builder
	e.RenderInner(&b, RenderOptions{})
	return b.String()
}

func (r *renderer) node(e *Element) {
	switch e.kind {
	case textNode:
		if p := e.parent; p != nil && rawTextElements[p.tag] {
			r.write(e.data)
		} else {
			r.write(escapeText(e.data))
		}
	case commentNode:
		r.write("<!--" + e.data + "-->")
	case fragmentNode:
		r.children(e)
	case elementNode:
		r.element(e)
	}
}

func (r *renderer) element(e *Element) {
	r.write("<" + e.tag)
	for _, a := range r.attrs(e) {
		if a.Value == "" && isBooleanAttr(a.Name) {
			r.write(" " + a.Name)
			continue
		}
		r.write(" " + a.Name + `="` + escapeAttr(a.Value) + `"`)
	}
	if r.opts.IDs && e.doc != nil {
		r.write(` data-oid="` + e.doc.OID(e) + `"`)
	}
	r.write(">")

	if voidElements[e.tag] {
		return
	}

	if e.content != nil {
		r.children(e.content)
	} else if e.tag == "textarea" {
		r.write(escapeText(propString(e.Property("value"))))
	} else {
		r.children(e)
	}
	r.write("</" + e.tag + ">")
}

func (r *renderer) children(e *Element) {
	for _, n := range e.nodes {
		r.node(n)
	}
}

type renderAttr struct {
	Name  string
	Value string
}

// attrs returns the attributes to write. Live form state overrides the
// value and checked attributes of inputs so that rendered output reflects
// what a user would see.
func (r *renderer) attrs(e *Element) []renderAttr {
	out := make([]renderAttr, 0, len(e.attrs)+1)
	_, liveValue := e.props["value"]
	_, liveChecked := e.props["checked"]
	input := e.tag == "input"

	for _, a := range e.attrs {
		if input && (a.Name == "value" && liveValue || a.Name == "checked" && liveChecked) {
			continue
		}
		out = append(out, renderAttr{Name: a.Name, Value: a.Value})
	}
	if input && liveValue {
		out = append(out, renderAttr{Name: "value", Value: propString(e.props["value"])})
	}
	if input && liveChecked && propBool(e.props["checked"]) {
		out = append(out, renderAttr{Name: "checked"})
	}
	return out
}

// booleanAttrs are written without a value when empty.
var booleanAttrs = map[string]bool{
	"allowfullscreen": true,
	"async":           true,
	"autofocus":       true,
	"autoplay":        true,
	"checked":         true,
	"controls":        true,
	"default":         true,
	"defer":           true,
	"disabled":        true,
	"hidden":          true,
	"multiple":        true,
	"muted":           true,
	"novalidate":      true,
	"open":            true,
	"readonly":        true,
	"required":        true,
	"selected":        true,
}

func isBooleanAttr(name string) bool {
	return booleanAttrs[name]
}
