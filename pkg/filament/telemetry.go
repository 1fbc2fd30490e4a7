package filament

import "github.com/zoobzio/capitan"

// Signal lifecycle telemetry.
var (
	// SignalCreated is emitted when a signal is constructed.
	SignalCreated = capitan.NewSignal(
		"filament.signal.created",
		"Signal constructed",
	)

	// SignalWritten is emitted when a signal accepts a write.
	SignalWritten = capitan.NewSignal(
		"filament.signal.written",
		"Signal accepted a write",
	)

	// SignalDisposed is emitted when a signal is disposed.
	SignalDisposed = capitan.NewSignal(
		"filament.signal.disposed",
		"Signal disposed",
	)
)

// Failure telemetry.
var (
	// WriteRejected is emitted when a validator refuses a write.
	WriteRejected = capitan.NewSignal(
		"filament.write.rejected",
		"Validator refused a write",
	)

	// HandlerFailed is emitted when an event handler panics.
	HandlerFailed = capitan.NewSignal(
		"filament.handler.failed",
		"Event handler panicked",
	)

	// PersistFailed is emitted when a persistence save fails.
	PersistFailed = capitan.NewSignal(
		"filament.persist.failed",
		"Persistence save failed",
	)
)

// Scheduler telemetry.
var (
	// EffectRan is emitted after each effect execution.
	EffectRan = capitan.NewSignal(
		"filament.effect.ran",
		"Effect executed",
	)

	// BatchFlushed is emitted when the outermost batch flushes.
	BatchFlushed = capitan.NewSignal(
		"filament.batch.flushed",
		"Batch flushed pending effects",
	)
)
