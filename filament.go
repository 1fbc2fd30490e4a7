// Package filament provides the public API for the filament reactive
// state engine.
//
// This is the recommended import for most applications:
//
//	import "github.com/filament-go/filament"
//
// Usage:
//
//	rt := filament.New()
//	count := filament.NewSignal(rt, 0)
//	doubled := filament.NewComputed(rt, func() (int, error) {
//		v, err := count.Get()
//		return v * 2, err
//	})
//	filament.CreateEffect(rt, func() error {
//		v, err := doubled.Get()
//		fmt.Println("doubled is now", v)
//		return err
//	})
//	count.Set(21)
package filament

import (
	"github.com/zoobzio/pipz"

	corefilament "github.com/filament-go/filament/pkg/filament"
)

// =============================================================================
// Runtime
// =============================================================================

// Runtime owns the effect-tracking stack, the batch coordinator, and the
// signal registry. Every signal, computed, and effect belongs to exactly
// one Runtime; independent runtimes never observe each other.
type Runtime = corefilament.Runtime

// Option configures a Runtime at construction.
type Option = corefilament.Option

// New creates a reactive runtime.
//
// Example:
//
//	rt := filament.New(
//		filament.WithLogger(logger),
//		filament.WithRegistry(),
//	)
var New = corefilament.New

// WithLogger sets the runtime's structured logger.
var WithLogger = corefilament.WithLogger

// WithClock substitutes the runtime clock, usually a fake in tests.
var WithClock = corefilament.WithClock

// WithContext sets the base context passed to persistence stores.
var WithContext = corefilament.WithContext

// WithObserver attaches an engine observer for metrics or tracing.
var WithObserver = corefilament.WithObserver

// WithErrorHandler sets a callback invoked for every engine error.
var WithErrorHandler = corefilament.WithErrorHandler

// WithRegistry enables the introspection registry used by inspectors.
var WithRegistry = corefilament.WithRegistry

// Untracked runs fn with dependency tracking suspended and returns its
// result. For the statement form, use rt.Untracked.
func Untracked[T any](rt *Runtime, fn func() T) T {
	return corefilament.Untracked(rt, fn)
}

// =============================================================================
// Reactive primitives (re-export from pkg/filament)
// =============================================================================

// NewSignal creates a reactive value owned by rt.
//
// Example:
//
//	count := filament.NewSignal(rt, 0)
//	count.Set(1)
//	v, _ := count.Get() // 1
func NewSignal[T any](rt *Runtime, initial T, opts ...SignalOption[T]) *Signal[T] {
	return corefilament.NewSignal(rt, initial, opts...)
}

// NewComputed creates a derived value that automatically tracks every
// signal its compute function reads.
//
// Example:
//
//	doubled := filament.NewComputed(rt, func() (int, error) {
//		v, err := count.Get()
//		return v * 2, err
//	})
func NewComputed[T any](rt *Runtime, compute func() (T, error), opts ...SignalOption[T]) *Computed[T] {
	return corefilament.NewComputed(rt, compute, opts...)
}

// CreateEffect registers a side effect that runs immediately and re-runs
// whenever a signal it read changes.
var CreateEffect = corefilament.CreateEffect

// Derive combines a fixed set of source signals into one computed value.
// Unlike NewComputed it subscribes to the listed sources eagerly instead
// of tracking reads.
func Derive[S, T any](rt *Runtime, sources []*Signal[S], compute func([]S) (T, error), opts ...SignalOption[T]) *Derivation[S, T] {
	return corefilament.Derive(rt, sources, compute, opts...)
}

// Select creates a computed view of a nested path inside a signal's value,
// like "user.address.city" or "items.3". Unresolvable paths yield nil.
func Select[T any](rt *Runtime, s *Signal[T], path string) *Computed[any] {
	return corefilament.Select(rt, s, path)
}

// Core type aliases
type Signal[T any] = corefilament.Signal[T]
type Computed[T any] = corefilament.Computed[T]
type Derivation[S, T any] = corefilament.Derivation[S, T]
type Effect = corefilament.Effect
type SignalOption[T any] = corefilament.SignalOption[T]

// =============================================================================
// Containers (re-export from pkg/filament)
// =============================================================================

// NewSliceSignal creates a signal wrapping a slice with mutation helpers
// (Append, Splice, Sort, SetAt) and computed views (Find, Filter, SortBy).
func NewSliceSignal[T any](rt *Runtime, initial []T, opts ...SignalOption[[]T]) *SliceSignal[T] {
	return corefilament.NewSliceSignal(rt, initial, opts...)
}

// NewMapSignal creates a signal wrapping a map with keyed mutation helpers
// and computed views (Get, Entries, Keys, Values).
func NewMapSignal[K comparable, V any](rt *Runtime, initial map[K]V, opts ...SignalOption[map[K]V]) *MapSignal[K, V] {
	return corefilament.NewMapSignal(rt, initial, opts...)
}

// MapSlice creates a computed projection of every element of a slice
// signal.
func MapSlice[T, U any](s *SliceSignal[T], fn func(T) U) *Computed[[]U] {
	return corefilament.MapSlice(s, fn)
}

// Container type aliases
type SliceSignal[T any] = corefilament.SliceSignal[T]
type MapSignal[K comparable, V any] = corefilament.MapSignal[K, V]
type MapEntry[K comparable, V any] = corefilament.MapEntry[K, V]

// =============================================================================
// Signal options (re-export from pkg/filament)
// =============================================================================

// WithName labels a signal for logs, registry listings, and error messages.
func WithName[T any](name string) SignalOption[T] {
	return corefilament.WithName[T](name)
}

// WithEquals overrides the identity-based equality used to suppress
// writes that do not change the value.
func WithEquals[T any](equal func(a, b T) bool) SignalOption[T] {
	return corefilament.WithEquals(equal)
}

// WithValidator guards writes with a validator. Rejected writes leave the
// value unchanged and surface ErrRejected.
func WithValidator[T any](v Validator[T]) SignalOption[T] {
	return corefilament.WithValidator(v)
}

// WithValidatorFunc is WithValidator for a plain bool predicate.
func WithValidatorFunc[T any](fn func(T) bool) SignalOption[T] {
	return corefilament.WithValidatorFunc(fn)
}

// WithTransform folds a transform over accepted writes. The transformed
// result is delivered to change handlers; the stored value stays raw.
func WithTransform[T any](fn Transform[T]) SignalOption[T] {
	return corefilament.WithTransform(fn)
}

// WithTransformChain runs a pipz pipeline as the signal's transform stage.
func WithTransformChain[T any](chain pipz.Chainable[T]) SignalOption[T] {
	return corefilament.WithTransformChain(chain)
}

// WithCodec sets the codec used for persistence and ValueString.
func WithCodec[T any](codec Codec) SignalOption[T] {
	return corefilament.WithCodec[T](codec)
}

// WithPersistence loads the signal's initial value from store at
// construction and saves every accepted write back under key.
//
// Example:
//
//	st, _ := store.NewBolt(path)
//	theme := filament.NewSignal(rt, "dark",
//		filament.WithPersistence[string](st, "ui.theme"))
func WithPersistence[T any](store Store, key string) SignalOption[T] {
	return corefilament.WithPersistence[T](store, key)
}

// WithLoading marks the signal as loading until its first write.
func WithLoading[T any]() SignalOption[T] {
	return corefilament.WithLoading[T]()
}

// =============================================================================
// Events (re-export from pkg/filament)
// =============================================================================

// Event is delivered to handlers registered with On.
type Event[T any] = corefilament.Event[T]

// EventKind identifies a lifecycle event on a signal.
type EventKind = corefilament.EventKind

// EventKind constants
const (
	EventInit    = corefilament.EventInit
	EventChange  = corefilament.EventChange
	EventDispose = corefilament.EventDispose
	EventError   = corefilament.EventError
)

// =============================================================================
// Validation and transforms (re-export from pkg/filament)
// =============================================================================

// Validator inspects a candidate value and accepts or rejects it.
type Validator[T any] = corefilament.Validator[T]

// Validation is a validator's verdict.
type Validation = corefilament.Validation

// Transform rewrites an accepted value before change handlers see it.
type Transform[T any] = corefilament.Transform[T]

// ValidBool adapts a bool predicate into a Validator.
func ValidBool[T any](fn func(T) bool) Validator[T] {
	return corefilament.ValidBool(fn)
}

// StructRules validates struct values against their `validate` tags using
// go-playground/validator.
//
// Example:
//
//	type Profile struct {
//		Email string `validate:"required,email"`
//	}
//	sig := filament.NewSignal(rt, Profile{},
//		filament.WithValidator(filament.StructRules[Profile]()))
func StructRules[T any]() Validator[T] {
	return corefilament.StructRules[T]()
}

// ComposeTransforms folds transforms left to right into one.
func ComposeTransforms[T any](fns ...Transform[T]) Transform[T] {
	return corefilament.ComposeTransforms(fns...)
}

// =============================================================================
// Codecs and stores (re-export from pkg/filament)
// =============================================================================

// Codec serializes signal values for persistence and inspection.
type Codec = corefilament.Codec

// JSONCodec encodes values as JSON. The default.
type JSONCodec = corefilament.JSONCodec

// YAMLCodec encodes values as YAML.
type YAMLCodec = corefilament.YAMLCodec

// Store is the key-value contract persistence is built on. Implementations
// live in pkg/store.
type Store = corefilament.Store

// =============================================================================
// Errors (re-export from pkg/filament)
// =============================================================================

var ErrDisposed = corefilament.ErrDisposed
var ErrRejected = corefilament.ErrRejected

type ValidationError = corefilament.ValidationError
type ComputationError = corefilament.ComputationError
type HandlerError = corefilament.HandlerError
type DisposedError = corefilament.DisposedError

// =============================================================================
// Observability (re-export from pkg/filament)
// =============================================================================

// Observer receives engine lifecycle callbacks. Implementations live in
// pkg/instrument and pkg/inspect.
type Observer = corefilament.Observer

// NoOpObserver ignores every callback. Embed it to implement Observer
// partially.
type NoOpObserver = corefilament.NoOpObserver

// SignalInfo describes a live signal in the registry.
type SignalInfo = corefilament.SignalInfo

// Inspectable is the registry's view of a signal.
type Inspectable = corefilament.Inspectable

// SignalKind classifies signals in registry listings and metrics.
type SignalKind = corefilament.SignalKind

// SignalKind constants
const (
	KindSignal   = corefilament.KindSignal
	KindComputed = corefilament.KindComputed
	KindDerived  = corefilament.KindDerived
	KindSlice    = corefilament.KindSlice
	KindMap      = corefilament.KindMap
)
