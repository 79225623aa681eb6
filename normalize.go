package laguz

import (
	"maps"
	"reflect"
)

// normalize shallow-copies maps and slices so that every recomputation
// yields a new reference. A wrapper result becomes a shallow copy of its raw
// container when T can hold it (any, map[string]any and so on); a selector
// typed to return the wrapper itself gets the wrapper back unchanged.
func normalize[T any](v T) T {
	out, ok := shallowCopy(any(v)).(T)
	if !ok {
		return v
	}
	return out
}

func shallowCopy(v any) any {
	if v == nil {
		return nil
	}
	if raw, ok := rawCopy(v); ok {
		return raw
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Map:
		if rv.IsNil() {
			return v
		}
		out := reflect.MakeMapWithSize(rv.Type(), rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out.SetMapIndex(iter.Key(), iter.Value())
		}
		return out.Interface()
	case reflect.Slice:
		if rv.IsNil() {
			return v
		}
		out := reflect.MakeSlice(rv.Type(), rv.Len(), rv.Len())
		reflect.Copy(out, rv)
		return out.Interface()
	}
	return v
}

// rawCopy copies a wrapper's raw container one level deep. Boxed arrays
// among the children are handed out as plain []any.
func rawCopy(v any) (any, bool) {
	switch w := v.(type) {
	case *Object:
		w.engine.mu.Lock()
		defer w.engine.mu.Unlock()
		out := make(map[string]any, len(w.raw))
		for k, child := range w.raw {
			out[k] = unbox(child)
		}
		return out, true
	case *Array:
		w.engine.mu.Lock()
		defer w.engine.mu.Unlock()
		out := make([]any, len(*w.raw), max(len(*w.raw), 1))
		for i, child := range *w.raw {
			out[i] = unbox(child)
		}
		return out, true
	case *Map:
		w.engine.mu.Lock()
		defer w.engine.mu.Unlock()
		out := make(map[any]any, len(w.raw))
		for k, child := range w.raw {
			out[k] = unbox(child)
		}
		return out, true
	case *Set:
		w.engine.mu.Lock()
		defer w.engine.mu.Unlock()
		return maps.Clone(w.raw), true
	}
	return nil, false
}

func unbox(v any) any {
	if s, ok := v.(*[]any); ok && s != nil {
		return *s
	}
	return v
}
