package store

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// normalize converts a value into the store's internal representation:
// map[string]any for objects, []any for arrays, Computed and Action for
// function leaves. Existing map[string]any and []any values are converted in
// place so identity is preserved.
func normalize(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case map[string]any:
		for k, item := range x {
			x[k] = normalize(item)
		}
		return x
	case []any:
		for i, item := range x {
			x[i] = normalize(item)
		}
		return x
	case *Object:
		if x == nil {
			return nil
		}
		return x.data
	case *Array:
		if x == nil {
			return nil
		}
		return x.load()
	case Computed, Action:
		return x
	case func(this *Object) any:
		return Computed(x)
	case func(this *Object, args ...any) any:
		return Action(x)
	case func() any:
		return Computed(func(*Object) any { return x() })
	case string, bool, int, int64, float64, []byte:
		return x
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return v
		}
		if rv.IsNil() {
			return nil
		}
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = normalize(iter.Value().Interface())
		}
		return out
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return nil
		}
		out := make([]any, rv.Len())
		for i := range out {
			out[i] = normalize(rv.Index(i).Interface())
		}
		return out
	}
	return v
}

// Same reports whether a and b are the same value. Objects and arrays compare
// by identity, functions are never the same, everything else compares by ==.
func Same(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch x := a.(type) {
	case *Object:
		y, ok := b.(*Object)
		return ok && x.store == y.store && x.path == y.path
	case *Array:
		y, ok := b.(*Array)
		return ok && x.store == y.store && x.path == y.path
	}

	ra, rb := reflect.ValueOf(a), reflect.ValueOf(b)
	if ra.Type() != rb.Type() {
		return false
	}
	switch ra.Kind() {
	case reflect.Func:
		return false
	case reflect.Map, reflect.Pointer, reflect.Chan, reflect.UnsafePointer:
		return ra.Pointer() == rb.Pointer()
	case reflect.Slice:
		return ra.Pointer() == rb.Pointer() && ra.Len() == rb.Len()
	}
	if !ra.Type().Comparable() {
		return false
	}
	if f, ok := a.(float64); ok && math.IsNaN(f) {
		return math.IsNaN(b.(float64))
	}
	return a == b
}

// Truthy reports whether v counts as true in a condition: nil, false, zero,
// NaN and the empty string are false.
func Truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		return x != ""
	case *Object, *Array:
		return true
	}
	if f, ok := toFloat(v); ok {
		return f != 0 && !math.IsNaN(f)
	}
	return true
}

// Stringify renders v as text: nil becomes "", objects and arrays become
// JSON, everything else its natural string form.
func Stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return formatFloat(x)
	case float32:
		return formatFloat(float64(x))
	case Computed, Action:
		return ""
	case *Object, *Array, map[string]any, []any:
		data, err := json.Marshal(plain(x))
		if err != nil {
			return ""
		}
		return string(data)
	case fmt.Stringer:
		return x.String()
	case error:
		return x.Error()
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10)
	case reflect.Func:
		return ""
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct:
		data, err := json.Marshal(plain(normalize(v)))
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(data)
	}
	return fmt.Sprint(v)
}

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// toFloat converts numeric values, and numeric strings, to float64.
func toFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		return f, err == nil
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

// ToFloat converts v to a number the way numeric inputs are coerced.
func ToFloat(v any) (float64, bool) {
	return toFloat(v)
}

// plainObject copies an object view into plain maps and slices. Computed
// values are evaluated, actions are dropped.
func plainObject(o *Object) map[string]any {
	out := make(map[string]any, len(o.data))
	for _, key := range o.Keys() {
		if _, ok := o.data[key].(Action); ok {
			continue
		}
		v := plain(o.Get(key))
		if _, isFunc := v.(funcMarker); isFunc {
			continue
		}
		out[key] = v
	}
	return out
}

// funcMarker stands in for a function leaf during plain conversion.
type funcMarker struct{}

// Plain converts v, which may contain views, into plain maps and slices.
func Plain(v any) any {
	out := plain(v)
	if _, ok := out.(funcMarker); ok {
		return nil
	}
	return out
}

func plain(v any) any {
	switch x := v.(type) {
	case *Object:
		return plainObject(x)
	case *Array:
		n := x.Len()
		out := make([]any, n)
		for i := 0; i < n; i++ {
			item := plain(x.At(i))
			if _, ok := item.(funcMarker); ok {
				item = nil
			}
			out[i] = item
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, item := range x {
			item = plain(item)
			if _, ok := item.(funcMarker); ok {
				continue
			}
			out[k] = item
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			item = plain(item)
			if _, ok := item.(funcMarker); ok {
				item = nil
			}
			out[i] = item
		}
		return out
	case Computed, Action:
		return funcMarker{}
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return nil
		}
	}
	return v
}
