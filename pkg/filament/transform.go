package filament

// Transform rewrites a written value. Transforms run in registration
// order. Their folded result rides the change event as Old; the stored
// value is always the raw write.
type Transform[T any] func(T) T

// ComposeTransforms folds several transforms into one, applied left to
// right.
func ComposeTransforms[T any](fns ...Transform[T]) Transform[T] {
	return func(v T) T {
		for _, fn := range fns {
			v = fn(v)
		}
		return v
	}
}
