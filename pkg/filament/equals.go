package filament

import "reflect"

// identityEqual is the default no-op write check. Primitives compare by
// value; pointers, maps, channels, and functions compare by reference;
// slices compare by backing pointer and length. Deep comparison is never
// performed, so two distinct slices with equal contents are different
// values here and a write of one over the other propagates.
func identityEqual[T any](a, b T) bool {
	switch av := any(a).(type) {
	case nil:
		return any(b) == nil
	case int:
		bv, ok := any(b).(int)
		return ok && av == bv
	case int64:
		bv, ok := any(b).(int64)
		return ok && av == bv
	case uint64:
		bv, ok := any(b).(uint64)
		return ok && av == bv
	case float64:
		bv, ok := any(b).(float64)
		return ok && av == bv
	case string:
		bv, ok := any(b).(string)
		return ok && av == bv
	case bool:
		bv, ok := any(b).(bool)
		return ok && av == bv
	}

	ra := reflect.ValueOf(a)
	rb := reflect.ValueOf(b)
	if !ra.IsValid() || !rb.IsValid() {
		return ra.IsValid() == rb.IsValid()
	}
	if ra.Type() != rb.Type() {
		return false
	}
	switch ra.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return ra.Pointer() == rb.Pointer()
	case reflect.Slice:
		return ra.Pointer() == rb.Pointer() && ra.Len() == rb.Len()
	}
	if ra.Comparable() && rb.Comparable() {
		return ra.Equal(rb)
	}
	// Non-comparable values never match, so the write always propagates.
	return false
}

// neverEqual disables no-op suppression. Container signals use it: every
// mutation republishes, even when the contents did not change.
func neverEqual[T any](a, b T) bool { return false }
