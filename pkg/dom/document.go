package dom

import (
	"context"
	"log/slog"
	"sync"

	"github.com/vango-dev/orbit/pkg/host"
)

// maxFlushRounds bounds Flush when tasks keep scheduling more work.
const maxFlushRounds = 1000

// Option configures a Document.
type Option func(*Document)

// WithLogger sets the document's logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Document) {
		if logger != nil {
			d.logger = logger
		}
	}
}

type mutationObserver struct {
	root   *Element
	fn     func([]host.Mutation)
	queue  []host.Mutation
	active bool
}

type visibilityWatcher struct {
	fn     func()
	active bool
}

// Document is an in-memory host document.
type Document struct {
	root *Element
	body *Element

	// full is set for documents parsed from a complete page.
	full bool

	observers []*mutationObserver
	watchers  map[*Element][]*visibilityWatcher

	mu    sync.Mutex
	tasks []func()
	wake  chan struct{}

	ids   *IDGenerator
	oids  map[string]*Element
	oidOf map[*Element]string

	logger *slog.Logger
}

var _ host.Document = (*Document)(nil)

func newDocument(opts []Option) *Document {
	d := &Document{
		watchers: make(map[*Element][]*visibilityWatcher),
		wake:     make(chan struct{}, 1),
		ids:      NewIDGenerator("o"),
		oids:     make(map[string]*Element),
		oidOf:    make(map[*Element]string),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// NewDocument creates an empty document with an html, head and body.
func NewDocument(opts ...Option) *Document {
	d := newDocument(opts)
	d.full = true
	d.root = d.CreateElement("html")
	d.root.nodes = []*Element{d.CreateElement("head"), d.CreateElement("body")}
	for _, n := range d.root.nodes {
		n.parent = d.root
	}
	d.body = d.root.nodes[1]
	return d
}

// CreateElement creates a detached element owned by d.
func (d *Document) CreateElement(tag string) *Element {
	e := &Element{kind: elementNode, tag: tag, doc: d}
	if tag == "template" {
		e.content = &Element{kind: fragmentNode, doc: d}
	}
	return e
}

// Root returns the document element.
func (d *Document) Root() host.Element {
	return d.root
}

// Body returns the body element.
func (d *Document) Body() *Element {
	return d.body
}

// ElementByID returns the first element with the given id attribute.
func (d *Document) ElementByID(id string) host.Element {
	var found *Element
	host.Walk(d.root, func(el host.Element) bool {
		if found != nil {
			return false
		}
		if v, ok := el.Attr("id"); ok && v == id {
			found = asElement(el)
			return false
		}
		return true
	})
	if found == nil {
		return nil
	}
	return found
}

// OID returns the element's stable render id, assigning one on first use.
func (d *Document) OID(e *Element) string {
	if id, ok := d.oidOf[e]; ok {
		return id
	}
	id := d.ids.Next()
	d.oidOf[e] = id
	d.oids[id] = e
	return id
}

// ElementByOID returns the element that was assigned id, if it is still
// attached.
func (d *Document) ElementByOID(id string) *Element {
	e := d.oids[id]
	if e == nil || !d.root.Contains(e) {
		return nil
	}
	return e
}

// ObserveMutations registers fn for structural changes in root's subtree.
// Records are queued and delivered as one batch per observer on Flush.
func (d *Document) ObserveMutations(root host.Element, fn func([]host.Mutation)) func() {
	obs := &mutationObserver{root: asElement(root), fn: fn, active: true}
	d.observers = append(d.observers, obs)
	return func() {
		if !obs.active {
			return
		}
		obs.active = false
		obs.queue = nil
		for i, o := range d.observers {
			if o == obs {
				d.observers = append(d.observers[:i:i], d.observers[i+1:]...)
				break
			}
		}
	}
}

// ObserveVisibility calls fn on the first SetVisible for el.
func (d *Document) ObserveVisibility(el host.Element, fn func()) func() {
	e := asElement(el)
	w := &visibilityWatcher{fn: fn, active: true}
	d.watchers[e] = append(d.watchers[e], w)
	return func() {
		w.active = false
	}
}

// SetVisible signals that el became visible. Watchers run on the next
// Flush.
func (d *Document) SetVisible(el host.Element) {
	e := asElement(el)
	watchers := d.watchers[e]
	delete(d.watchers, e)
	for _, w := range watchers {
		w := w
		d.Post(func() {
			if w.active {
				w.active = false
				w.fn()
			}
		})
	}
}

// Post schedules task for the next Flush. It is safe for concurrent use.
func (d *Document) Post(task func()) {
	d.mu.Lock()
	d.tasks = append(d.tasks, task)
	d.mu.Unlock()

	select {
	case d.wake <- struct{}{}:
	default:
	}
}

// Wake is signaled after a task is posted. A goroutine that owns the
// document can select on it and then call Flush.
func (d *Document) Wake() <-chan struct{} {
	return d.wake
}

// Pending returns the number of scheduled tasks.
func (d *Document) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.tasks)
}

// Flush runs scheduled tasks and delivers queued mutation records until
// neither produces more work.
func (d *Document) Flush() {
	for round := 0; round < maxFlushRounds; round++ {
		ran := d.runTasks()
		delivered := d.deliverMutations()
		if !ran && !delivered {
			return
		}
	}
	d.logger.Warn("dom: flush did not settle", "rounds", maxFlushRounds)
}

// Await blocks until at least one task has been posted, then flushes.
func (d *Document) Await(ctx context.Context) error {
	for {
		if d.Pending() > 0 {
			d.Flush()
			return nil
		}
		select {
		case <-d.wake:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (d *Document) runTasks() bool {
	d.mu.Lock()
	tasks := d.tasks
	d.tasks = nil
	d.mu.Unlock()

	for _, task := range tasks {
		task()
	}
	return len(tasks) > 0
}

func (d *Document) deliverMutations() bool {
	delivered := false
	observers := append([]*mutationObserver(nil), d.observers...)
	for _, obs := range observers {
		if !obs.active || len(obs.queue) == 0 {
			continue
		}
		batch := obs.queue
		obs.queue = nil
		obs.fn(batch)
		delivered = true
	}
	return delivered
}

// record queues a mutation for every observer whose root contains target.
func (d *Document) record(target *Element, added, removed []*Element) {
	if d == nil {
		return
	}
	for _, obs := range d.observers {
		if !obs.active || obs.root == nil || !obs.root.Contains(target) {
			continue
		}
		m := host.Mutation{}
		for _, e := range added {
			m.Added = append(m.Added, e)
		}
		for _, e := range removed {
			m.Removed = append(m.Removed, e)
		}
		obs.queue = append(obs.queue, m)
	}
}
