package reactive

import (
	"math"
	"reflect"
)

// sameValue reports whether assigning b over a is a no-op.
//
// Comparable values use ==, with NaN equal to itself. Maps, slices,
// functions and channels compare by identity; slices must also agree in
// length. Any other uncomparable value is never the same.
func sameValue(a, b any) bool {
	if isNaN(a) && isNaN(b) {
		return true
	}
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	if va.Type() != vb.Type() {
		return false
	}
	if va.Comparable() && vb.Comparable() {
		return va.Equal(vb)
	}

	switch va.Kind() {
	case reflect.Slice:
		return va.Len() == vb.Len() && va.UnsafePointer() == vb.UnsafePointer()
	case reflect.Map, reflect.Func, reflect.Chan:
		return va.UnsafePointer() == vb.UnsafePointer()
	default:
		return false
	}
}

func isNaN(v any) bool {
	switch f := v.(type) {
	case float64:
		return math.IsNaN(f)
	case float32:
		return math.IsNaN(float64(f))
	default:
		return false
	}
}
