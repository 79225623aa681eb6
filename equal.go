package laguz

import (
	"math"
	"reflect"
	"unsafe"
)

// rawID returns the identity of a raw container. Leaves and unboxed slices
// have none.
func rawID(v any) (uintptr, bool) {
	switch c := v.(type) {
	case map[string]any:
		if c == nil {
			return 0, false
		}
		return reflect.ValueOf(c).Pointer(), true
	case *[]any:
		if c == nil {
			return 0, false
		}
		return uintptr(unsafe.Pointer(c)), true
	case map[any]any:
		if c == nil {
			return 0, false
		}
		return reflect.ValueOf(c).Pointer(), true
	case map[any]struct{}:
		if c == nil {
			return 0, false
		}
		return reflect.ValueOf(c).Pointer(), true
	}
	return 0, false
}

// same is the identity comparison used to short-circuit redundant writes.
// Containers compare by raw identity, comparable leaves with ==, and NaN is
// the same as NaN.
func same(a, b any) bool {
	a, b = Unwrap(a), Unwrap(b)
	ia, okA := rawID(a)
	ib, okB := rawID(b)
	if okA || okB {
		return okA && okB && ia == ib
	}
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	if isNaN(a) && isNaN(b) {
		return true
	}
	if !reflect.ValueOf(a).Comparable() {
		return false
	}
	return a == b
}

func isNaN(v any) bool {
	switch f := v.(type) {
	case float64:
		return math.IsNaN(f)
	case float32:
		return math.IsNaN(float64(f))
	}
	return false
}

// shallowEqualSlices reports whether a and b are both slices of the same
// length whose elements are pairwise the same.
func shallowEqualSlices(a, b any) bool {
	va, okA := sliceValue(a)
	vb, okB := sliceValue(b)
	if !okA || !okB || va.Len() != vb.Len() {
		return false
	}
	for i := 0; i < va.Len(); i++ {
		if !same(va.Index(i).Interface(), vb.Index(i).Interface()) {
			return false
		}
	}
	return true
}

func sliceValue(v any) (reflect.Value, bool) {
	switch c := Unwrap(v).(type) {
	case nil:
		return reflect.Value{}, false
	case *[]any:
		if c == nil {
			return reflect.Value{}, false
		}
		return reflect.ValueOf(*c), true
	default:
		rv := reflect.ValueOf(c)
		if rv.Kind() != reflect.Slice {
			return reflect.Value{}, false
		}
		return rv, true
	}
}

// hashable reports whether v can be used as a Go map key.
func hashable(v any) bool {
	if v == nil {
		return true
	}
	return reflect.ValueOf(v).Comparable()
}

// unchanged reports whether writing next over prev is a no-op.
func unchanged(prev, next any) bool {
	return same(prev, next) || shallowEqualSlices(prev, next)
}
