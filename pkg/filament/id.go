package filament

import "sync/atomic"

// nextID returns a runtime-unique ID for signals, effects, and handler
// registrations.
func (rt *Runtime) nextID() uint64 {
	return atomic.AddUint64(&rt.idCounter, 1)
}
