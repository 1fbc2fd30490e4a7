package filament

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/zoobzio/capitan"
)

// sourceTracker is implemented by listeners that record which signals
// they read, for disposal bookkeeping and eager detachment.
type sourceTracker interface {
	trackSource(*signalBase)
}

// Effect re-runs its body whenever a tracked signal changes.
//
// Tracking is monotonic: every run adds the signals it read, and nothing
// is released until disposal. A branch that stops being read keeps its
// subscription and keeps re-running the effect. Disposal marks the effect
// dead; each source drops it the next time it notifies.
type Effect struct {
	id uint64
	rt *Runtime
	fn func() error

	sourcesMu sync.Mutex
	sources   []*signalBase

	running  atomic.Bool
	disposed atomic.Bool
}

// CreateEffect registers fn and runs it immediately. Signals read during
// the run become tracked dependencies. An error or panic from fn is
// reported to the runtime; the effect stays alive and re-runs on the next
// change.
func CreateEffect(rt *Runtime, fn func() error) *Effect {
	e := &Effect{id: rt.nextID(), rt: rt, fn: fn}
	e.Run()
	return e
}

// Run executes the effect body with this effect on the tracking stack.
// Re-entrant runs, such as an effect writing its own dependency, are
// skipped instead of recursing.
func (e *Effect) Run() {
	if e.disposed.Load() {
		return
	}
	if !e.running.CompareAndSwap(false, true) {
		return
	}
	defer e.running.Store(false)

	e.rt.pushListener(e)
	defer e.rt.popListener()

	start := time.Now()
	if err := e.invoke(); err != nil {
		e.rt.reportError(errKindComputation, &ComputationError{Err: err})
	}
	dur := time.Since(start)
	e.rt.observer.EffectRan(e.id, dur)
	capitan.Emit(e.rt.ctx, EffectRan,
		KeyEffectID.Field(int(e.id)),
		KeyDuration.Field(dur),
	)
}

func (e *Effect) invoke() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = recovered(r)
		}
	}()
	return e.fn()
}

// ID implements Listener.
func (e *Effect) ID() uint64 { return e.id }

// Disposed implements Listener.
func (e *Effect) Disposed() bool { return e.disposed.Load() }

// trackSource records a source once, keyed by signal ID.
func (e *Effect) trackSource(src *signalBase) {
	e.sourcesMu.Lock()
	defer e.sourcesMu.Unlock()
	for _, s := range e.sources {
		if s.id == src.id {
			return
		}
	}
	e.sources = append(e.sources, src)
}

// Dispose marks the effect dead. Sources prune it lazily on their next
// notification; no subscriber set is touched here.
func (e *Effect) Dispose() {
	e.disposed.Store(true)
}

// detach marks the effect dead and removes it from every tracked source
// immediately. Derivations use this for precise cleanup.
func (e *Effect) detach() {
	e.disposed.Store(true)
	e.sourcesMu.Lock()
	sources := e.sources
	e.sources = nil
	e.sourcesMu.Unlock()
	for _, src := range sources {
		src.unsubscribe(e.id)
	}
}

var (
	_ Listener      = (*Effect)(nil)
	_ sourceTracker = (*Effect)(nil)
)
