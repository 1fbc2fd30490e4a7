package filament

// MapEntry is one key/value pair in a MapSignal view.
type MapEntry[K comparable, V any] struct {
	Key   K
	Value V
}

// MapSignal wraps a Signal[map[K]V] with the keyed mutation vocabulary.
// Mutators mutate the current map in place, then write a fresh copy back
// through the signal; like SliceSignal, the backing signal never
// suppresses a write, so deleting an absent key still notifies.
type MapSignal[K comparable, V any] struct {
	rt  *Runtime
	sig *Signal[map[K]V]
}

// NewMapSignal creates a map signal from initial. A nil initial becomes
// an empty map.
func NewMapSignal[K comparable, V any](rt *Runtime, initial map[K]V, opts ...SignalOption[map[K]V]) *MapSignal[K, V] {
	if initial == nil {
		initial = make(map[K]V)
	}
	opts = append(opts, withKind[map[K]V](KindMap), WithEquals(neverEqual[map[K]V]))
	return &MapSignal[K, V]{rt: rt, sig: NewSignal(rt, initial, opts...)}
}

// Signal exposes the backing map signal.
func (m *MapSignal[K, V]) Signal() *Signal[map[K]V] { return m.sig }

// On registers an event handler on the backing signal.
func (m *MapSignal[K, V]) On(kind EventKind, h func(Event[map[K]V])) func() {
	return m.sig.On(kind, h)
}

// Dispose disposes the backing signal.
func (m *MapSignal[K, V]) Dispose() { m.sig.Dispose() }

func (m *MapSignal[K, V]) publish(cur map[K]V) error {
	fresh := make(map[K]V, len(cur))
	for k, v := range cur {
		fresh[k] = v
	}
	return m.sig.Set(fresh)
}

// SetKey stores value under key.
func (m *MapSignal[K, V]) SetKey(key K, value V) error {
	cur, err := m.sig.Peek()
	if err != nil {
		return err
	}
	if cur == nil {
		cur = make(map[K]V)
	}
	cur[key] = value
	return m.publish(cur)
}

// DeleteKey removes key. The republish happens even when key was absent.
func (m *MapSignal[K, V]) DeleteKey(key K) error {
	cur, err := m.sig.Peek()
	if err != nil {
		return err
	}
	delete(cur, key)
	return m.publish(cur)
}

// UpdateKey applies fn to the value under key and stores the result. The
// zero value feeds fn when key is absent.
func (m *MapSignal[K, V]) UpdateKey(key K, fn func(V) V) error {
	cur, err := m.sig.Peek()
	if err != nil {
		return err
	}
	if cur == nil {
		cur = make(map[K]V)
	}
	cur[key] = fn(cur[key])
	return m.publish(cur)
}

// Clear removes every entry.
func (m *MapSignal[K, V]) Clear() error {
	cur, err := m.sig.Peek()
	if err != nil {
		return err
	}
	clear(cur)
	return m.publish(cur)
}

// GetKey returns the value under key. This reads the signal and creates a
// dependency.
func (m *MapSignal[K, V]) GetKey(key K) (V, bool) {
	cur, _ := m.sig.Get()
	v, ok := cur[key]
	return v, ok
}

// HasKey reports whether key is present. This reads the signal and
// creates a dependency.
func (m *MapSignal[K, V]) HasKey(key K) bool {
	cur, _ := m.sig.Get()
	_, ok := cur[key]
	return ok
}

// Len returns the entry count. This reads the signal and creates a
// dependency; after disposal it returns zero.
func (m *MapSignal[K, V]) Len() int {
	cur, _ := m.sig.Get()
	return len(cur)
}

// Snapshot returns a copy of the current contents. This reads the signal
// and creates a dependency.
func (m *MapSignal[K, V]) Snapshot() map[K]V {
	cur, _ := m.sig.Get()
	out := make(map[K]V, len(cur))
	for k, v := range cur {
		out[k] = v
	}
	return out
}

// Get returns a computed view of the value under key, nil when absent.
// Every call builds a new view; views are not cached.
func (m *MapSignal[K, V]) Get(key K) *Computed[*V] {
	return NewComputed(m.rt, func() (*V, error) {
		cur, err := m.sig.Get()
		if err != nil {
			return nil, err
		}
		v, ok := cur[key]
		if !ok {
			return nil, nil
		}
		out := v
		return &out, nil
	})
}

// Entries returns a computed view of the current pairs. Iteration order
// is not specified.
func (m *MapSignal[K, V]) Entries() *Computed[[]MapEntry[K, V]] {
	return NewComputed(m.rt, func() ([]MapEntry[K, V], error) {
		cur, err := m.sig.Get()
		if err != nil {
			return nil, err
		}
		out := make([]MapEntry[K, V], 0, len(cur))
		for k, v := range cur {
			out = append(out, MapEntry[K, V]{Key: k, Value: v})
		}
		return out, nil
	})
}

// Keys returns a computed view of the current keys. Iteration order is
// not specified.
func (m *MapSignal[K, V]) Keys() *Computed[[]K] {
	return NewComputed(m.rt, func() ([]K, error) {
		cur, err := m.sig.Get()
		if err != nil {
			return nil, err
		}
		out := make([]K, 0, len(cur))
		for k := range cur {
			out = append(out, k)
		}
		return out, nil
	})
}

// Values returns a computed view of the current values. Iteration order
// is not specified.
func (m *MapSignal[K, V]) Values() *Computed[[]V] {
	return NewComputed(m.rt, func() ([]V, error) {
		cur, err := m.sig.Get()
		if err != nil {
			return nil, err
		}
		out := make([]V, 0, len(cur))
		for _, v := range cur {
			out = append(out, v)
		}
		return out, nil
	})
}
