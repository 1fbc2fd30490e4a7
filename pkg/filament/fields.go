package filament

import "github.com/zoobzio/capitan"

// Field keys for engine telemetry.
var (
	// KeySignalID is the numeric identifier of the signal involved.
	KeySignalID = capitan.NewIntKey("signal_id")

	// KeySignalName is the configured name of the signal involved.
	KeySignalName = capitan.NewStringKey("signal_name")

	// KeySignalKind is the signal classification: signal, computed,
	// derived, slice, or map.
	KeySignalKind = capitan.NewStringKey("signal_kind")

	// KeyEffectID is the numeric identifier of the effect involved.
	KeyEffectID = capitan.NewIntKey("effect_id")

	// KeyEventKind is the event kind whose handler was running.
	KeyEventKind = capitan.NewStringKey("event_kind")

	// KeyError is the error message when an operation fails.
	KeyError = capitan.NewStringKey("error")

	// KeyPending is the number of effects flushed by a batch.
	KeyPending = capitan.NewIntKey("pending")

	// KeyDuration is how long the operation took.
	KeyDuration = capitan.NewDurationKey("duration")
)
