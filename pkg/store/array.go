package store

import (
	"sort"
	"strconv"

	"github.com/vango-dev/orbit/pkg/fieldpath"
)

// Array is a view of one array in the store's tree. The backing slice is
// reloaded from its parent on every access, so a view stays valid across
// mutations that reallocate.
type Array struct {
	store *Store
	path  string
	load  func() []any
	save  func([]any)
}

// Path returns the array's field path.
func (a *Array) Path() string {
	return a.path
}

// Len returns the number of items.
func (a *Array) Len() int {
	return len(a.load())
}

// At returns the item at i (negative counts from the end), wrapped like
// Object.Get. Out of range yields nil.
func (a *Array) At(i int) any {
	items := a.load()
	if i < 0 {
		i += len(items)
	}
	if i < 0 || i >= len(items) {
		return nil
	}
	path := fieldpath.Concat(a.path, strconv.Itoa(i))
	a.store.track(path)
	return a.store.wrap(path, items[i], nil,
		func() any {
			items := a.load()
			if i < len(items) {
				return items[i]
			}
			return nil
		},
		func(v any) {
			items := a.load()
			if i < len(items) {
				items[i] = v
			}
		},
	)
}

// Values returns every item wrapped like At.
func (a *Array) Values() []any {
	n := a.Len()
	out := make([]any, n)
	for i := 0; i < n; i++ {
		out[i] = a.At(i)
	}
	return out
}

// Raw returns the backing slice. Mutating it bypasses notification.
func (a *Array) Raw() []any {
	return a.load()
}

// Set assigns item i and notifies that index when the value changed.
// Setting i == Len() appends.
func (a *Array) Set(i int, value any) {
	value = normalize(value)
	items := a.load()
	switch {
	case i >= 0 && i < len(items):
		if Same(items[i], value) {
			return
		}
		items[i] = value
	case i == len(items):
		a.save(append(items, value))
	default:
		return
	}
	a.store.Notify(fieldpath.Concat(a.path, strconv.Itoa(i)))
}

// Push appends items and returns the new length.
func (a *Array) Push(items ...any) int {
	next := a.load()
	for _, item := range items {
		next = append(next, normalize(item))
	}
	a.save(next)
	a.store.Notify(a.path)
	return len(next)
}

// Pop removes and returns the last item.
func (a *Array) Pop() any {
	items := a.load()
	var last any
	if len(items) > 0 {
		last = items[len(items)-1]
		a.save(items[:len(items)-1])
	}
	a.store.Notify(a.path)
	return last
}

// Shift removes and returns the first item.
func (a *Array) Shift() any {
	items := a.load()
	var first any
	if len(items) > 0 {
		first = items[0]
		a.save(append([]any(nil), items[1:]...))
	}
	a.store.Notify(a.path)
	return first
}

// Unshift prepends items and returns the new length.
func (a *Array) Unshift(items ...any) int {
	current := a.load()
	next := make([]any, 0, len(items)+len(current))
	for _, item := range items {
		next = append(next, normalize(item))
	}
	next = append(next, current...)
	a.save(next)
	a.store.Notify(a.path)
	return len(next)
}

// Splice removes deleteCount items starting at start, inserts items in their
// place and returns the removed items. A negative start counts from the end;
// both arguments are clamped to the array bounds.
func (a *Array) Splice(start, deleteCount int, items ...any) []any {
	current := a.load()
	n := len(current)

	if start < 0 {
		start += n
		if start < 0 {
			start = 0
		}
	}
	if start > n {
		start = n
	}
	if deleteCount < 0 {
		deleteCount = 0
	}
	if start+deleteCount > n {
		deleteCount = n - start
	}

	removed := append([]any(nil), current[start:start+deleteCount]...)

	next := make([]any, 0, n-deleteCount+len(items))
	next = append(next, current[:start]...)
	for _, item := range items {
		next = append(next, normalize(item))
	}
	next = append(next, current[start+deleteCount:]...)

	a.save(next)
	a.store.Notify(a.path)
	return removed
}

// Sort sorts the array in place. A nil less orders items by their string
// form.
func (a *Array) Sort(less func(x, y any) bool) {
	items := a.load()
	if less == nil {
		less = func(x, y any) bool { return Stringify(x) < Stringify(y) }
	}
	sort.SliceStable(items, func(i, j int) bool { return less(items[i], items[j]) })
	a.save(items)
	a.store.Notify(a.path)
}

// Reverse reverses the array in place.
func (a *Array) Reverse() {
	items := a.load()
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
	a.save(items)
	a.store.Notify(a.path)
}
