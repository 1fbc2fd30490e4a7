package filament

import (
	"errors"
	"fmt"
)

// Sentinel errors for matching with errors.Is.
var (
	// ErrDisposed matches any operation against a disposed signal.
	ErrDisposed = errors.New("filament: signal disposed")

	// ErrRejected matches writes refused by a validator.
	ErrRejected = errors.New("filament: write rejected")
)

// Error kind labels reported to Observer.EngineError and used as metric
// labels by pkg/instrument.
const (
	errKindValidation  = "validation"
	errKindComputation = "computation"
	errKindHandler     = "handler"
	errKindPersistence = "persistence"
)

// DisposedError reports an operation against a disposed signal.
type DisposedError struct {
	Signal string // signal name, may be empty
	Op     string // "get", "peek", "set"
}

func (e *DisposedError) Error() string {
	if e.Signal == "" {
		return fmt.Sprintf("filament: %s on disposed signal", e.Op)
	}
	return fmt.Sprintf("filament: %s on disposed signal %q", e.Op, e.Signal)
}

func (e *DisposedError) Is(target error) bool { return target == ErrDisposed }

// ValidationError reports a write refused by a signal's validator. The
// signal keeps its prior value.
type ValidationError struct {
	Signal string
	Reason string
	Value  any // the refused value
}

func (e *ValidationError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("filament: write rejected for signal %q", e.Signal)
	}
	return fmt.Sprintf("filament: write rejected for signal %q: %s", e.Signal, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrRejected }

// ComputationError wraps an error or panic escaping user code run by the
// engine: transforms, transform chains, computed and derived recomputes,
// and effect bodies.
type ComputationError struct {
	Signal string // owning signal name, may be empty
	Err    error
}

func (e *ComputationError) Error() string {
	if e.Signal == "" {
		return fmt.Sprintf("filament: computation failed: %v", e.Err)
	}
	return fmt.Sprintf("filament: computation failed for %q: %v", e.Signal, e.Err)
}

func (e *ComputationError) Unwrap() error { return e.Err }

// HandlerError wraps a panic escaping an event handler. The emission that
// triggered the handler is unaffected; remaining handlers still run.
type HandlerError struct {
	Signal string
	Kind   EventKind
	Err    error
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("filament: %s handler failed for signal %q: %v", e.Kind, e.Signal, e.Err)
}

func (e *HandlerError) Unwrap() error { return e.Err }

// recovered converts a recover() value into an error.
func recovered(r any) error {
	if err, ok := r.(error); ok {
		return err
	}
	return fmt.Errorf("panic: %v", r)
}
