// Package observe turns host tree mutations and visibility signals into
// ordered mount and unmount callbacks.
//
// Every element under the observed root is reported to OnMount exactly once
// while it stays attached: the elements present when observation starts,
// and every element inserted later. Parents are mounted before their
// children. Removed elements are reported to OnUnmount children first.
package observe

import (
	"github.com/vango-dev/orbit/pkg/host"
)

// Hooks receive mount and unmount notifications.
type Hooks struct {
	OnMount   func(host.Element)
	OnUnmount func(host.Element)
}

// Options configure which parts of the tree are reported.
type Options struct {
	// Boundary reports elements that start a region owned by someone else.
	// A boundary element is neither reported nor descended into. The
	// observed root is never treated as a boundary.
	Boundary func(host.Element) bool

	// Deferred reports elements whose subtree waits for a visibility signal
	// before it is mounted.
	Deferred func(host.Element) bool

	// Reveal is called when a deferred element becomes visible, before its
	// subtree is mounted. It must clear whatever Deferred checks.
	Reveal func(host.Element)
}

// Observer watches one subtree.
type Observer struct {
	doc   host.Document
	root  host.Element
	hooks Hooks
	opts  Options

	mounted  map[host.Element]struct{}
	watching map[host.Element]func()

	stopMutations func()
	stopped       bool
}

// Observe reports every element currently under root, then keeps reporting
// structural changes until Stop is called.
func Observe(doc host.Document, root host.Element, hooks Hooks, opts Options) *Observer {
	o := &Observer{
		doc:      doc,
		root:     root,
		hooks:    hooks,
		opts:     opts,
		mounted:  make(map[host.Element]struct{}),
		watching: make(map[host.Element]func()),
	}
	o.stopMutations = doc.ObserveMutations(root, o.handle)
	o.mount(root)
	return o
}

// Stop disconnects the observer. Mounted elements are not unmounted.
func (o *Observer) Stop() {
	if o.stopped {
		return
	}
	o.stopped = true
	o.stopMutations()
	for el, stop := range o.watching {
		stop()
		delete(o.watching, el)
	}
	o.mounted = make(map[host.Element]struct{})
}

// Mounted reports whether el is currently mounted.
func (o *Observer) Mounted(el host.Element) bool {
	_, ok := o.mounted[el]
	return ok
}

// Pending returns the number of deferred elements awaiting visibility.
func (o *Observer) Pending() int {
	return len(o.watching)
}

func (o *Observer) handle(batch []host.Mutation) {
	if o.stopped {
		return
	}
	for _, m := range batch {
		for _, el := range m.Removed {
			if o.root.Contains(el) {
				// moved within the root; its bindings stay
				continue
			}
			o.unmount(el)
		}
		for _, el := range m.Added {
			if !o.root.Contains(el) || o.excluded(el) {
				continue
			}
			o.mount(el)
		}
	}
}

// excluded reports whether an ancestor of el below the root is a boundary
// or still deferred.
func (o *Observer) excluded(el host.Element) bool {
	for p := el.Parent(); p != nil && p != o.root; p = p.Parent() {
		if o.isBoundary(p) || o.isDeferred(p) {
			return true
		}
	}
	return false
}

func (o *Observer) isBoundary(el host.Element) bool {
	return el != o.root && o.opts.Boundary != nil && o.opts.Boundary(el)
}

func (o *Observer) isDeferred(el host.Element) bool {
	return o.opts.Deferred != nil && o.opts.Deferred(el)
}

func (o *Observer) mount(el host.Element) {
	if o.stopped || o.isBoundary(el) || !o.root.Contains(el) {
		return
	}
	if o.isDeferred(el) {
		o.wait(el)
		return
	}

	if _, ok := o.mounted[el]; !ok {
		o.mounted[el] = struct{}{}
		if o.hooks.OnMount != nil {
			o.hooks.OnMount(el)
		}
	}

	for _, child := range el.Children() {
		o.mount(child)
	}
}

func (o *Observer) wait(el host.Element) {
	if _, ok := o.watching[el]; ok {
		return
	}
	o.watching[el] = o.doc.ObserveVisibility(el, func() {
		delete(o.watching, el)
		if o.stopped {
			return
		}
		if o.opts.Reveal != nil {
			o.opts.Reveal(el)
		}
		if !o.root.Contains(el) || o.excluded(el) {
			return
		}
		o.mount(el)
	})
}

func (o *Observer) unmount(el host.Element) {
	if stop, ok := o.watching[el]; ok {
		stop()
		delete(o.watching, el)
	}
	if o.isBoundary(el) {
		return
	}
	for _, child := range el.Children() {
		o.unmount(child)
	}
	if _, ok := o.mounted[el]; !ok {
		return
	}
	delete(o.mounted, el)
	if o.hooks.OnUnmount != nil {
		o.hooks.OnUnmount(el)
	}
}
