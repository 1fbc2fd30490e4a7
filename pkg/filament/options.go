package filament

import "github.com/zoobzio/pipz"

// signalConfig collects construction options for a signal.
type signalConfig[T any] struct {
	name       string
	kind       SignalKind
	equal      func(a, b T) bool
	validator  Validator[T]
	transforms []Transform[T]
	chain      pipz.Chainable[T]
	codec      Codec
	store      Store
	persistKey string
	loading    bool
}

// SignalOption configures a signal at construction.
type SignalOption[T any] func(*signalConfig[T])

// WithName names the signal for logs, errors, and the inspector.
func WithName[T any](name string) SignalOption[T] {
	return func(c *signalConfig[T]) { c.name = name }
}

// WithEquals overrides the identity check that suppresses no-op writes.
func WithEquals[T any](equal func(a, b T) bool) SignalOption[T] {
	return func(c *signalConfig[T]) {
		if equal != nil {
			c.equal = equal
		}
	}
}

// WithValidator gates writes. A refused write keeps the prior value,
// records a ValidationError, and emits an error event.
func WithValidator[T any](v Validator[T]) SignalOption[T] {
	return func(c *signalConfig[T]) { c.validator = v }
}

// WithValidatorFunc is WithValidator for a plain predicate.
func WithValidatorFunc[T any](fn func(T) bool) SignalOption[T] {
	return func(c *signalConfig[T]) { c.validator = ValidBool(fn) }
}

// WithTransform appends a transform to the write pipeline.
func WithTransform[T any](fn Transform[T]) SignalOption[T] {
	return func(c *signalConfig[T]) { c.transforms = append(c.transforms, fn) }
}

// WithTransformChain runs a pipz pipeline after the plain transforms. A
// chain failure aborts the write and records a ComputationError.
func WithTransformChain[T any](chain pipz.Chainable[T]) SignalOption[T] {
	return func(c *signalConfig[T]) { c.chain = chain }
}

// WithCodec sets the persistence codec. Defaults to JSONCodec.
func WithCodec[T any](codec Codec) SignalOption[T] {
	return func(c *signalConfig[T]) {
		if codec != nil {
			c.codec = codec
		}
	}
}

// WithPersistence restores the signal from store at construction and
// saves it after every accepted write.
func WithPersistence[T any](store Store, key string) SignalOption[T] {
	return func(c *signalConfig[T]) {
		c.store = store
		c.persistKey = key
	}
}

// WithLoading marks the signal as loading at construction.
func WithLoading[T any]() SignalOption[T] {
	return func(c *signalConfig[T]) { c.loading = true }
}

// withKind tags the signal's classification. Container and computed
// constructors apply it after user options so it cannot be overridden.
func withKind[T any](k SignalKind) SignalOption[T] {
	return func(c *signalConfig[T]) { c.kind = k }
}

func buildConfig[T any](opts []SignalOption[T]) signalConfig[T] {
	cfg := signalConfig[T]{
		kind:  KindSignal,
		equal: identityEqual[T],
		codec: JSONCodec{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}
