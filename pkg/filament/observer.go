package filament

import "time"

// SignalKind classifies a live signal for observers and the inspector.
type SignalKind string

const (
	KindSignal   SignalKind = "signal"
	KindComputed SignalKind = "computed"
	KindDerived  SignalKind = "derived"
	KindSlice    SignalKind = "slice"
	KindMap      SignalKind = "map"
)

// SignalInfo is a point-in-time description of a live signal.
type SignalInfo struct {
	ID          uint64     `json:"id"`
	Name        string     `json:"name"`
	Kind        SignalKind `json:"kind"`
	Subscribers int        `json:"subscribers"`
}

// Inspectable is the registry-facing view of a live signal, consumed by
// pkg/inspect.
type Inspectable interface {
	Info() SignalInfo

	// ValueString returns the current value encoded by the signal's codec.
	ValueString() (string, error)
}

// Observer receives engine lifecycle callbacks. Callbacks run inline on
// the goroutine driving the engine, so implementations must be fast and
// must not call back into the runtime. See pkg/instrument for Prometheus
// and OpenTelemetry implementations and a fan-out combinator.
type Observer interface {
	SignalCreated(info SignalInfo)
	SignalWritten(info SignalInfo, dur time.Duration)
	SignalDisposed(info SignalInfo)
	EffectRan(id uint64, dur time.Duration)
	BatchFlushed(pending int)
	EngineError(kind string, err error)
}

// NoOpObserver discards every callback. Embed it to implement Observer
// partially.
type NoOpObserver struct{}

func (NoOpObserver) SignalCreated(SignalInfo)                {}
func (NoOpObserver) SignalWritten(SignalInfo, time.Duration) {}
func (NoOpObserver) SignalDisposed(SignalInfo)               {}
func (NoOpObserver) EffectRan(uint64, time.Duration)         {}
func (NoOpObserver) BatchFlushed(int)                        {}
func (NoOpObserver) EngineError(string, error)               {}

var _ Observer = NoOpObserver{}
