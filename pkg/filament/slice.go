package filament

import (
	"fmt"
	"sort"
)

// SliceSignal wraps a Signal[[]T] with the sequence mutation vocabulary.
// Every mutator runs the native operation against the current slice, then
// writes a fresh shallow copy back through the signal, so a mutation that
// leaves the contents element-wise identical still notifies: the wrapper
// installs neverEqual on its backing signal.
type SliceSignal[T any] struct {
	rt  *Runtime
	sig *Signal[[]T]
}

// NewSliceSignal creates a slice signal from initial. A nil initial
// becomes an empty slice.
func NewSliceSignal[T any](rt *Runtime, initial []T, opts ...SignalOption[[]T]) *SliceSignal[T] {
	if initial == nil {
		initial = make([]T, 0)
	}
	opts = append(opts, withKind[[]T](KindSlice), WithEquals(neverEqual[[]T]))
	return &SliceSignal[T]{rt: rt, sig: NewSignal(rt, initial, opts...)}
}

// Signal exposes the backing slice signal for Get, Peek, On, and custom
// computed views.
func (s *SliceSignal[T]) Signal() *Signal[[]T] { return s.sig }

// Get returns the current slice and creates a dependency.
func (s *SliceSignal[T]) Get() ([]T, error) { return s.sig.Get() }

// Peek returns the current slice without tracking.
func (s *SliceSignal[T]) Peek() ([]T, error) { return s.sig.Peek() }

// On registers an event handler on the backing signal.
func (s *SliceSignal[T]) On(kind EventKind, h func(Event[[]T])) func() {
	return s.sig.On(kind, h)
}

// Dispose disposes the backing signal.
func (s *SliceSignal[T]) Dispose() { s.sig.Dispose() }

// publish writes a fresh shallow copy of items through the signal.
func (s *SliceSignal[T]) publish(items []T) error {
	fresh := make([]T, len(items))
	copy(fresh, items)
	return s.sig.Set(fresh)
}

// Append adds an item to the end of the slice.
func (s *SliceSignal[T]) Append(item T) error {
	return s.AppendAll(item)
}

// AppendAll adds multiple items to the end of the slice.
func (s *SliceSignal[T]) AppendAll(items ...T) error {
	cur, err := s.sig.Peek()
	if err != nil {
		return err
	}
	return s.publish(append(cur, items...))
}

// Prepend adds an item to the beginning of the slice.
func (s *SliceSignal[T]) Prepend(item T) error {
	return s.PrependAll(item)
}

// PrependAll adds multiple items to the beginning of the slice, keeping
// their order.
func (s *SliceSignal[T]) PrependAll(items ...T) error {
	cur, err := s.sig.Peek()
	if err != nil {
		return err
	}
	next := make([]T, 0, len(items)+len(cur))
	next = append(next, items...)
	next = append(next, cur...)
	return s.sig.Set(next)
}

// RemoveFirst removes and returns the first item. On an empty slice it
// returns the zero value and false, and still republishes.
func (s *SliceSignal[T]) RemoveFirst() (T, bool, error) {
	var zero T
	cur, err := s.sig.Peek()
	if err != nil {
		return zero, false, err
	}
	if len(cur) == 0 {
		return zero, false, s.publish(cur)
	}
	head := cur[0]
	return head, true, s.publish(cur[1:])
}

// RemoveLast removes and returns the last item. On an empty slice it
// returns the zero value and false, and still republishes.
func (s *SliceSignal[T]) RemoveLast() (T, bool, error) {
	var zero T
	cur, err := s.sig.Peek()
	if err != nil {
		return zero, false, err
	}
	if len(cur) == 0 {
		return zero, false, s.publish(cur)
	}
	last := cur[len(cur)-1]
	return last, true, s.publish(cur[:len(cur)-1])
}

// Splice removes deleteCount items at start, inserts items in their
// place, and returns the removed items. Negative start counts from the
// end; start and deleteCount are clamped to the bounds.
func (s *SliceSignal[T]) Splice(start, deleteCount int, items ...T) ([]T, error) {
	cur, err := s.sig.Peek()
	if err != nil {
		return nil, err
	}
	n := len(cur)
	if start < 0 {
		start += n
		if start < 0 {
			start = 0
		}
	} else if start > n {
		start = n
	}
	if deleteCount < 0 {
		deleteCount = 0
	}
	if deleteCount > n-start {
		deleteCount = n - start
	}

	removed := make([]T, deleteCount)
	copy(removed, cur[start:start+deleteCount])

	next := make([]T, 0, n-deleteCount+len(items))
	next = append(next, cur[:start]...)
	next = append(next, items...)
	next = append(next, cur[start+deleteCount:]...)
	if err := s.sig.Set(next); err != nil {
		return nil, err
	}
	return removed, nil
}

// Sort orders the slice in place with less, then republishes. The sort is
// stable.
func (s *SliceSignal[T]) Sort(less func(a, b T) bool) error {
	cur, err := s.sig.Peek()
	if err != nil {
		return err
	}
	sort.SliceStable(cur, func(i, j int) bool { return less(cur[i], cur[j]) })
	return s.publish(cur)
}

// Reverse reverses the slice in place, then republishes.
func (s *SliceSignal[T]) Reverse() error {
	cur, err := s.sig.Peek()
	if err != nil {
		return err
	}
	for i, j := 0, len(cur)-1; i < j; i, j = i+1, j-1 {
		cur[i], cur[j] = cur[j], cur[i]
	}
	return s.publish(cur)
}

// SetAt assigns the item at index i; i equal to the length appends. Other
// out-of-range indexes fail without publishing.
func (s *SliceSignal[T]) SetAt(i int, item T) error {
	cur, err := s.sig.Peek()
	if err != nil {
		return err
	}
	if i < 0 || i > len(cur) {
		return fmt.Errorf("filament: index %d out of range [0, %d]", i, len(cur))
	}
	if i == len(cur) {
		return s.publish(append(cur, item))
	}
	cur[i] = item
	return s.publish(cur)
}

// Resize truncates or zero-extends the slice to length n.
func (s *SliceSignal[T]) Resize(n int) error {
	if n < 0 {
		return fmt.Errorf("filament: negative length %d", n)
	}
	cur, err := s.sig.Peek()
	if err != nil {
		return err
	}
	next := make([]T, n)
	copy(next, cur)
	return s.sig.Set(next)
}

// Len returns the current length. This reads the signal and creates a
// dependency; after disposal it returns zero.
func (s *SliceSignal[T]) Len() int {
	cur, _ := s.sig.Get()
	return len(cur)
}

// At returns the item at index i, reporting whether it exists. This reads
// the signal and creates a dependency.
func (s *SliceSignal[T]) At(i int) (T, bool) {
	cur, _ := s.sig.Get()
	if i < 0 || i >= len(cur) {
		var zero T
		return zero, false
	}
	return cur[i], true
}

// Values returns a copy of the current contents. This reads the signal
// and creates a dependency.
func (s *SliceSignal[T]) Values() []T {
	cur, _ := s.sig.Get()
	out := make([]T, len(cur))
	copy(out, cur)
	return out
}

// Find returns a computed view of the first item matching pred, or nil
// when none does. Every call builds a new view; views are not cached.
func (s *SliceSignal[T]) Find(pred func(T) bool) *Computed[*T] {
	return NewComputed(s.rt, func() (*T, error) {
		items, err := s.sig.Get()
		if err != nil {
			return nil, err
		}
		for _, item := range items {
			if pred(item) {
				found := item
				return &found, nil
			}
		}
		return nil, nil
	})
}

// Filter returns a computed view of the items matching pred.
func (s *SliceSignal[T]) Filter(pred func(T) bool) *Computed[[]T] {
	return NewComputed(s.rt, func() ([]T, error) {
		items, err := s.sig.Get()
		if err != nil {
			return nil, err
		}
		out := make([]T, 0, len(items))
		for _, item := range items {
			if pred(item) {
				out = append(out, item)
			}
		}
		return out, nil
	})
}

// SortBy returns a computed view of the items ordered by less, leaving
// the source untouched.
func (s *SliceSignal[T]) SortBy(less func(a, b T) bool) *Computed[[]T] {
	return NewComputed(s.rt, func() ([]T, error) {
		items, err := s.sig.Get()
		if err != nil {
			return nil, err
		}
		out := make([]T, len(items))
		copy(out, items)
		sort.SliceStable(out, func(i, j int) bool { return less(out[i], out[j]) })
		return out, nil
	})
}

// Slice returns a computed view of the half-open range [start, end).
// Negative bounds count from the end; both are clamped.
func (s *SliceSignal[T]) Slice(start, end int) *Computed[[]T] {
	return NewComputed(s.rt, func() ([]T, error) {
		items, err := s.sig.Get()
		if err != nil {
			return nil, err
		}
		n := len(items)
		lo, hi := start, end
		if lo < 0 {
			lo += n
		}
		if lo < 0 {
			lo = 0
		} else if lo > n {
			lo = n
		}
		if hi < 0 {
			hi += n
		}
		if hi < lo {
			hi = lo
		} else if hi > n {
			hi = n
		}
		out := make([]T, hi-lo)
		copy(out, items[lo:hi])
		return out, nil
	})
}

// MapSlice returns a computed view applying fn to every item. It is a
// free function because methods cannot introduce the result type.
func MapSlice[T, U any](s *SliceSignal[T], fn func(T) U) *Computed[[]U] {
	return NewComputed(s.rt, func() ([]U, error) {
		items, err := s.sig.Get()
		if err != nil {
			return nil, err
		}
		out := make([]U, len(items))
		for i, item := range items {
			out[i] = fn(item)
		}
		return out, nil
	})
}
