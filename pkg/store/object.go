package store

import (
	"sort"

	"github.com/vango-dev/orbit/pkg/fieldpath"
)

// Computed is a derived value. It is evaluated each time it is read, with
// this bound to the object that holds it.
type Computed func(this *Object) any

// Action is a callable leaf in the state tree.
type Action func(this *Object, args ...any) any

// Object is a view of one object in the store's tree.
type Object struct {
	store *Store
	path  string
	data  map[string]any
}

// Path returns the object's field path ("" for the root).
func (o *Object) Path() string {
	return o.path
}

// Store returns the store the view belongs to.
func (o *Object) Store() *Store {
	return o.store
}

// Has reports whether key exists.
func (o *Object) Has(key string) bool {
	_, ok := o.data[key]
	return ok
}

// Keys returns the object's keys in sorted order.
func (o *Object) Keys() []string {
	keys := make([]string, 0, len(o.data))
	for k := range o.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the value at key. Nested objects and arrays are returned as
// views, computed values are evaluated with key's path as the current caller.
func (o *Object) Get(key string) any {
	path := fieldpath.Concat(o.path, key)
	o.store.track(path)
	return o.store.wrap(path, o.data[key], o, func() any { return o.data[key] }, func(v any) { o.data[key] = v })
}

// Set assigns value to key and notifies when the value changed by identity.
// Keys holding a Computed are read-only and ignore writes.
func (o *Object) Set(key string, value any) {
	value = normalize(value)
	prev, exists := o.data[key]
	if _, ok := prev.(Computed); ok {
		return
	}
	if exists && Same(prev, value) {
		return
	}
	o.data[key] = value
	o.store.Notify(fieldpath.Concat(o.path, key))
}

// Delete removes key and notifies its subscribers.
func (o *Object) Delete(key string) {
	if _, ok := o.data[key]; !ok {
		return
	}
	delete(o.data, key)
	o.store.Notify(fieldpath.Concat(o.path, key))
}

// Call invokes the Action stored at key with this bound to o.
// It returns nil when key does not hold an Action.
func (o *Object) Call(key string, args ...any) any {
	fn, ok := o.Get(key).(Action)
	if !ok {
		return nil
	}
	return fn(o, args...)
}

// Object returns the nested object at key, or nil.
func (o *Object) Object(key string) *Object {
	v, _ := o.Get(key).(*Object)
	return v
}

// Array returns the nested array at key, or nil.
func (o *Object) Array(key string) *Array {
	v, _ := o.Get(key).(*Array)
	return v
}

// String returns the value at key stringified.
func (o *Object) String(key string) string {
	return Stringify(o.Get(key))
}

// Int returns the numeric value at key as an int, or 0.
func (o *Object) Int(key string) int {
	f, _ := toFloat(o.Get(key))
	return int(f)
}

// Float returns the numeric value at key, or 0.
func (o *Object) Float(key string) float64 {
	f, _ := toFloat(o.Get(key))
	return f
}

// Bool returns the truthiness of the value at key.
func (o *Object) Bool(key string) bool {
	return Truthy(o.Get(key))
}

// Raw returns the underlying map. Mutating it bypasses notification.
func (o *Object) Raw() map[string]any {
	return o.data
}

// wrap turns a raw value found at path into what readers see.
func (s *Store) wrap(path string, raw any, holder *Object, load func() any, save func(any)) any {
	switch v := raw.(type) {
	case map[string]any:
		return &Object{store: s, path: path, data: v}
	case []any:
		return &Array{
			store: s,
			path:  path,
			load: func() []any {
				items, _ := load().([]any)
				return items
			},
			save: func(items []any) { save(items) },
		}
	case Computed:
		if holder == nil {
			return nil
		}
		return s.evaluate(path, v, holder)
	default:
		return raw
	}
}
