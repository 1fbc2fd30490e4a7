package filament

// Listener is a computation that re-runs when one of its tracked signals
// changes. Effects implement it; signals hold their subscribers as
// Listeners so they never depend on a concrete computation type.
type Listener interface {
	// Run re-executes the computation.
	Run()

	// ID returns the unique identifier used to deduplicate subscribers.
	ID() uint64

	// Disposed reports whether the computation is terminally disposed.
	// Disposed listeners are pruned from subscriber sets at notify time.
	Disposed() bool
}
