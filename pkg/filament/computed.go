package filament

// Computed is a read-only signal recomputed from whatever its compute
// function reads. Dependencies are discovered by running compute, not
// declared.
type Computed[T any] struct {
	sig *Signal[T]
	eff *Effect
}

// NewComputed evaluates compute once untracked to seed the output signal,
// then installs a tracking effect that re-evaluates it immediately and on
// every dependency change. A recompute that returns the seed value is
// absorbed by the output's identity check, so the double evaluation at
// construction notifies nobody.
//
// Recompute failures keep the previous value: the error is recorded on
// the output signal and an error event fires.
func NewComputed[T any](rt *Runtime, compute func() (T, error), opts ...SignalOption[T]) *Computed[T] {
	var seed T
	rt.Untracked(func() {
		seed, _ = invokeCompute(compute)
	})

	opts = append(opts, withKind[T](KindComputed))
	sig := NewSignal(rt, seed, opts...)
	c := &Computed[T]{sig: sig}

	c.eff = CreateEffect(rt, func() error {
		v, err := invokeCompute(compute)
		if err != nil {
			sig.recordError(&ComputationError{Signal: sig.Name(), Err: err}, errKindComputation)
			return nil
		}
		return sig.Set(v)
	})
	return c
}

// invokeCompute runs compute behind a recover so a panicking body
// surfaces as an error.
func invokeCompute[T any](compute func() (T, error)) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = recovered(r)
		}
	}()
	return compute()
}

// Get returns the computed value, tracking it as a dependency of the
// running computation. Chains of computeds compose through this.
func (c *Computed[T]) Get() (T, error) { return c.sig.Get() }

// Peek returns the computed value without tracking.
func (c *Computed[T]) Peek() (T, error) { return c.sig.Peek() }

// On registers an event handler on the output signal.
func (c *Computed[T]) On(kind EventKind, h func(Event[T])) func() {
	return c.sig.On(kind, h)
}

// Err returns the most recent recompute error.
func (c *Computed[T]) Err() error { return c.sig.Err() }

// ID returns the output signal's identifier.
func (c *Computed[T]) ID() uint64 { return c.sig.ID() }

// Name returns the output signal's name.
func (c *Computed[T]) Name() string { return c.sig.Name() }

// Signal exposes the output signal for wiring into other collaborators.
func (c *Computed[T]) Signal() *Signal[T] { return c.sig }

// Dispose disposes the output signal and marks the tracking effect dead.
// Sources release the dead effect lazily on their next notification;
// nothing is detached eagerly here. Derivations behave differently, see
// Derivation.Dispose.
func (c *Computed[T]) Dispose() {
	c.eff.Dispose()
	c.sig.Dispose()
}
