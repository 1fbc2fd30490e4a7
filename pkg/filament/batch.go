package filament

import "github.com/zoobzio/capitan"

// Batch runs fn with effect notification deferred. Writes inside fn go
// through the full pipeline and fire their change events synchronously,
// but subscribers are only marked pending; the outermost Batch runs each
// pending subscriber once on close, then drains the deferred init queue.
//
// Batch is reentrant. Closing an inner batch neither flushes nor resets
// pending state.
func (rt *Runtime) Batch(fn func()) {
	rt.batchDepth++
	defer func() {
		rt.batchDepth--
		if rt.batchDepth == 0 {
			rt.flushPending()
			rt.Flush()
		}
	}()
	fn()
}

// batching reports whether a batch is open.
func (rt *Runtime) batching() bool { return rt.batchDepth > 0 }

// queuePending records a listener for the outermost batch close, once per
// listener per batch regardless of how many of its sources changed.
func (rt *Runtime) queuePending(l Listener) {
	if rt.pendingIDs.Add(l.ID()) {
		rt.pending = append(rt.pending, l)
	}
}

func (rt *Runtime) flushPending() {
	if len(rt.pending) == 0 {
		return
	}
	batch := rt.pending
	rt.pending = nil
	rt.pendingIDs.Clear()

	rt.observer.BatchFlushed(len(batch))
	capitan.Emit(rt.ctx, BatchFlushed, KeyPending.Field(len(batch)))

	for _, l := range batch {
		if l.Disposed() {
			continue
		}
		l.Run()
	}
}
