package filament

// EventKind identifies a lifecycle event on a signal.
type EventKind int32

const (
	// EventInit fires once per signal, asynchronously, after construction.
	EventInit EventKind = iota

	// EventChange fires synchronously after every accepted write, batched
	// or not.
	EventChange

	// EventDispose fires once, at the start of disposal, before handlers
	// and subscribers are released.
	EventDispose

	// EventError fires when validation, a computation, or another handler
	// fails.
	EventError
)

func (k EventKind) String() string {
	switch k {
	case EventInit:
		return "init"
	case EventChange:
		return "change"
	case EventDispose:
		return "dispose"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// Event is delivered to handlers registered with On.
//
// For change events, Value holds the stored value and Old holds the result
// of the write's transform pipeline. The stored value is always the raw
// write; the transformed result only ever reaches handlers through Old.
type Event[T any] struct {
	Kind  EventKind
	Value T
	Old   T
	Err   error // set for error events
}

// maxErrorDepth caps nested error-event emission per signal. A handler
// that fails while handling an error event re-enters the error path; past
// this depth the failure is logged and dropped.
const maxErrorDepth = 8
