package filament

import (
	"reflect"
	"strconv"
	"strings"
)

// Select returns a computed view of a dotted path inside s. Views are
// memoized per signal and path: repeated calls with the same path return
// the same instance. Disposing the signal disposes its cached views.
//
// Path segments address struct fields and string-keyed map entries by
// name. An all-digit segment indexes a slice or array when the walk is at
// one; anywhere else it is an ordinary field name. Missing fields,
// out-of-range indexes, unexported fields, and nil links all resolve to
// nil; the walk never panics.
func Select[T any](rt *Runtime, s *Signal[T], path string) *Computed[any] {
	s.base.selMu.Lock()
	defer s.base.selMu.Unlock()
	if c, ok := s.base.selectors[path]; ok {
		return c
	}

	segments := strings.Split(path, ".")
	name := s.base.name
	if name == "" {
		name = "signal"
	}
	c := NewComputed(rt, func() (any, error) {
		v, err := s.Get()
		if err != nil {
			return nil, err
		}
		return resolvePath(v, segments), nil
	}, WithName[any](name+"."+path))

	if s.base.selectors == nil {
		s.base.selectors = make(map[string]*Computed[any])
	}
	s.base.selectors[path] = c
	return c
}

// resolvePath walks one segment at a time, unwrapping pointers and
// interfaces along the way. Any dead end yields nil.
func resolvePath(v any, segments []string) any {
	current := v
	for _, seg := range segments {
		if current == nil {
			return nil
		}
		rv := reflect.ValueOf(current)
		for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
			if rv.IsNil() {
				return nil
			}
			rv = rv.Elem()
		}

		var next reflect.Value
		switch rv.Kind() {
		case reflect.Slice, reflect.Array:
			idx, ok := digitIndex(seg)
			if !ok || idx >= rv.Len() {
				return nil
			}
			next = rv.Index(idx)
		case reflect.Map:
			if rv.Type().Key().Kind() != reflect.String {
				return nil
			}
			next = rv.MapIndex(reflect.ValueOf(seg).Convert(rv.Type().Key()))
			if !next.IsValid() {
				return nil
			}
		case reflect.Struct:
			next = rv.FieldByName(seg)
			if !next.IsValid() || !next.CanInterface() {
				return nil
			}
		default:
			return nil
		}
		current = next.Interface()
	}
	return current
}

func digitIndex(seg string) (int, bool) {
	if seg == "" {
		return 0, false
	}
	for _, r := range seg {
		if r < '0' || r > '9' {
			return 0, false
		}
	}
	idx, err := strconv.Atoi(seg)
	if err != nil {
		return 0, false
	}
	return idx, true
}
