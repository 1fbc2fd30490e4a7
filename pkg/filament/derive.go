package filament

// Derivation combines a fixed set of same-typed sources into one output
// value. Unlike Computed, its source set is explicit, so disposal can
// detach the tracking effect from every source eagerly.
type Derivation[S, T any] struct {
	sig *Signal[T]
	eff *Effect
}

// Derive evaluates compute over the current source values, seeds the
// output, and re-evaluates whenever any source changes. Recompute
// failures keep the previous value: the error is recorded on the output
// and an error event fires.
func Derive[S, T any](rt *Runtime, sources []*Signal[S], compute func([]S) (T, error), opts ...SignalOption[T]) *Derivation[S, T] {
	srcs := make([]*Signal[S], len(sources))
	copy(srcs, sources)

	evaluate := func() (T, error) {
		vals := make([]S, len(srcs))
		for i, src := range srcs {
			v, err := src.Get()
			if err != nil {
				var zero T
				return zero, err
			}
			vals[i] = v
		}
		return invokeCompute(func() (T, error) { return compute(vals) })
	}

	var seed T
	rt.Untracked(func() {
		seed, _ = evaluate()
	})

	opts = append(opts, withKind[T](KindDerived))
	sig := NewSignal(rt, seed, opts...)
	d := &Derivation[S, T]{sig: sig}

	d.eff = CreateEffect(rt, func() error {
		v, err := evaluate()
		if err != nil {
			sig.recordError(&ComputationError{Signal: sig.Name(), Err: err}, errKindComputation)
			return nil
		}
		return sig.Set(v)
	})
	return d
}

// Get returns the derived value, tracking it as a dependency of the
// running computation.
func (d *Derivation[S, T]) Get() (T, error) { return d.sig.Get() }

// Peek returns the derived value without tracking.
func (d *Derivation[S, T]) Peek() (T, error) { return d.sig.Peek() }

// On registers an event handler on the output signal.
func (d *Derivation[S, T]) On(kind EventKind, h func(Event[T])) func() {
	return d.sig.On(kind, h)
}

// Err returns the most recent recompute error.
func (d *Derivation[S, T]) Err() error { return d.sig.Err() }

// ID returns the output signal's identifier.
func (d *Derivation[S, T]) ID() uint64 { return d.sig.ID() }

// Name returns the output signal's name.
func (d *Derivation[S, T]) Name() string { return d.sig.Name() }

// Signal exposes the output signal.
func (d *Derivation[S, T]) Signal() *Signal[T] { return d.sig }

// Dispose detaches the tracking effect from every source immediately and
// disposes the output signal. Subsequent source writes do not re-run the
// computation.
func (d *Derivation[S, T]) Dispose() {
	d.eff.detach()
	d.sig.Dispose()
}
