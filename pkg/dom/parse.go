package dom

import (
	"fmt"
	"io"
	"strings"

	"github.com/vango-dev/orbit/pkg/host"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Parse parses a complete HTML page.
func Parse(r io.Reader, opts ...Option) (*Document, error) {
	n, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("dom: parse: %w", err)
	}

	d := newDocument(opts)
	d.full = true
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			d.root = d.convert(c)
			break
		}
	}
	if d.root == nil {
		return nil, fmt.Errorf("dom: parse: no document element")
	}
	for _, child := range d.root.nodes {
		if child.kind == elementNode && child.tag == "body" {
			d.body = child
		}
	}
	if d.body == nil {
		d.body = d.CreateElement("body")
		d.body.parent = d.root
		d.root.nodes = append(d.root.nodes, d.body)
	}
	return d, nil
}

// ParseString parses a complete HTML page from a string.
func ParseString(src string, opts ...Option) (*Document, error) {
	return Parse(strings.NewReader(src), opts...)
}

// ParseFragment creates a document whose root is a body element holding
// the parsed markup.
func ParseFragment(markup string, opts ...Option) (*Document, error) {
	d := newDocument(opts)
	d.root = d.CreateElement("body")
	d.body = d.root

	nodes, err := d.parseInto(d.root, markup)
	if err != nil {
		return nil, err
	}
	for _, n := range nodes {
		n.parent = d.root
		d.root.nodes = append(d.root.nodes, n)
	}
	return d, nil
}

// MustParseFragment is like ParseFragment but panics on error.
func MustParseFragment(markup string, opts ...Option) *Document {
	d, err := ParseFragment(markup, opts...)
	if err != nil {
		panic(err)
	}
	return d
}

// parseInto parses markup in the context of el and returns detached nodes.
func (d *Document) parseInto(el *Element, markup string) ([]*Element, error) {
	context := &html.Node{
		Type:     html.ElementNode,
		Data:     el.tag,
		DataAtom: atom.Lookup([]byte(el.tag)),
	}
	parsed, err := html.ParseFragment(strings.NewReader(markup), context)
	if err != nil {
		return nil, fmt.Errorf("dom: parse fragment: %w", err)
	}

	out := make([]*Element, 0, len(parsed))
	for _, n := range parsed {
		if e := d.convert(n); e != nil {
			out = append(out, e)
		}
	}
	return out, nil
}

// convert copies a parsed node tree. Template children become the
// template's inert content.
func (d *Document) convert(n *html.Node) *Element {
	var e *Element
	switch n.Type {
	case html.ElementNode:
		e = d.CreateElement(n.Data)
		for _, a := range n.Attr {
			name := a.Key
			if a.Namespace != "" {
				name = a.Namespace + ":" + a.Key
			}
			e.attrs = append(e.attrs, host.Attr{Name: name, Value: a.Val})
		}
	case html.TextNode:
		e = &Element{kind: textNode, data: n.Data, doc: d}
	case html.CommentNode:
		e = &Element{kind: commentNode, data: n.Data, doc: d}
	default:
		return nil
	}

	parent := e
	if e.content != nil {
		parent = e.content
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if child := d.convert(c); child != nil {
			child.parent = parent
			parent.nodes = append(parent.nodes, child)
		}
	}
	return e
}
