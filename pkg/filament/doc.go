// Package filament is a fine-grained reactive state engine. Dependencies
// are tracked automatically at runtime: reading a signal inside an effect
// or computed subscribes that computation to the signal's changes.
//
// Everything hangs off an explicit Runtime; there are no package-level
// engines:
//
//	rt := filament.New()
//	count := filament.NewSignal(rt, 0)
//
// # Core Types
//
// Signal[T] is a reactive value cell:
//
//	count := filament.NewSignal(rt, 0)
//	v, err := count.Get()   // read (subscribes the running computation)
//	err = count.Set(5)      // write (runs the full pipeline, notifies)
//	err = count.Update(func(n int) int { return n + 1 })
//
// Computed[T] is a derived signal recomputed from whatever it reads:
//
//	doubled := filament.NewComputed(rt, func() (int, error) {
//	    v, err := count.Get()
//	    return v * 2, err
//	})
//
// Effect runs side effects when dependencies change:
//
//	filament.CreateEffect(rt, func() error {
//	    v, _ := count.Get()
//	    fmt.Println("count is", v)
//	    return nil
//	})
//
// # Write Pipeline
//
// Set runs a fixed sequence: the identity check suppresses writes of the
// current value, transforms fold over the candidate, the validator sees
// the raw candidate, the raw candidate is stored, subscribers and change
// handlers run, and persistence saves last. The transformed result is
// handed to change handlers as Event.Old; it is never stored.
//
// # Batching
//
// Batch defers and deduplicates effect re-runs; change events still fire
// synchronously inside the batch:
//
//	rt.Batch(func() {
//	    a.Set(1)
//	    b.Set(2)
//	})  // an effect reading both a and b runs once here
//
// # Lifecycle Events
//
// Signals emit init (asynchronous, once), change, dispose, and error
// events through On. The init event is delivered by a zero-delay timer,
// an explicit rt.Flush, or the close of the outermost batch, whichever
// comes first; handlers registered synchronously after construction are
// guaranteed to observe it.
//
// # Concurrency
//
// A Runtime and its signals form a cooperative unit meant to be driven
// from one goroutine. Internal structures are still locked, so the init
// timer and observers on other goroutines stay safe, but effect ordering
// is only defined within the driving goroutine.
package filament
