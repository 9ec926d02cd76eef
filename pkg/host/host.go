package host

import "context"

// Attr is one attribute of an element.
type Attr struct {
	Name  string
	Value string
}

// ListenerOptions configures an event listener.
type ListenerOptions struct {
	// Capture registers the listener for the capture phase.
	Capture bool

	// Once removes the listener after its first invocation.
	Once bool

	// Passive listeners cannot prevent the default action.
	Passive bool

	// Context revokes the listener when it is done.
	Context context.Context
}

// Event is a dispatched host event.
type Event interface {
	Type() string
	Target() Element
	CurrentTarget() Element
	PreventDefault()
	DefaultPrevented() bool
	StopPropagation()
}

// Element is a node of the host tree.
type Element interface {
	// Tag returns the lower-case tag name.
	Tag() string

	// Attrs returns the attributes in document order.
	Attrs() []Attr
	Attr(name string) (string, bool)
	SetAttr(name, value string)
	RemoveAttr(name string)

	// Parent returns the parent element, or nil when detached.
	Parent() Element

	// Children returns the element children in order.
	Children() []Element

	// NextSibling returns the next element sibling, or nil.
	NextSibling() Element

	// InsertBefore inserts child before ref. A nil ref appends.
	InsertBefore(child, ref Element)

	// Remove detaches the element from its parent.
	Remove()

	// Clone returns a detached deep copy.
	Clone() Element

	// IsTemplate reports whether the element is an inert template.
	IsTemplate() bool

	// Content returns the top-level elements of a template's inert content.
	Content() []Element

	Text() string
	SetText(text string)
	SetHTML(markup string) error

	// Property reads a live element property.
	Property(name string) any

	// SetProperty assigns a live element property. It fails for read-only
	// or ill-typed assignments.
	SetProperty(name string, value any) error

	// AddEventListener registers fn for events of type typ and returns a
	// function that removes it.
	AddEventListener(typ string, fn func(Event), opts ListenerOptions) func()

	// Contains reports whether other is the element or one of its
	// descendants.
	Contains(other Element) bool
}

// Mutation is one structural change reported by a mutation observer.
type Mutation struct {
	Added   []Element
	Removed []Element
}

// Document is the host document.
type Document interface {
	Root() Element
	ElementByID(id string) Element

	// ObserveMutations reports batches of structural changes below root.
	ObserveMutations(root Element, fn func([]Mutation)) (stop func())

	// ObserveVisibility calls fn once, the first time el becomes visible.
	ObserveVisibility(el Element, fn func()) (stop func())

	// Post schedules task on the document's thread. Safe for concurrent use.
	Post(task func())
}

// Walk visits el and its descendants in document order. Returning false
// from fn skips the element's subtree.
func Walk(el Element, fn func(Element) bool) {
	if el == nil || !fn(el) {
		return
	}
	for _, child := range el.Children() {
		Walk(child, fn)
	}
}
