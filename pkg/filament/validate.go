package filament

import "github.com/go-playground/validator/v10"

// Validation is the verdict returned by a Validator.
type Validation struct {
	Valid bool
	Err   string // reason, set when invalid
}

// Validator decides whether a candidate value may be written. Validators
// see the raw written value, not the transformed one.
type Validator[T any] func(T) Validation

// ValidBool adapts a plain predicate into a Validator.
func ValidBool[T any](fn func(T) bool) Validator[T] {
	return func(v T) Validation {
		if fn(v) {
			return Validation{Valid: true}
		}
		return Validation{}
	}
}

// StructRules builds a Validator from `validate` struct tags. T must be a
// struct type; anything else fails validation with the library's error.
//
//	type Profile struct {
//		Email string `validate:"required,email"`
//		Age   int    `validate:"gte=0,lte=150"`
//	}
//	sig := NewSignal(rt, Profile{}, WithValidator(StructRules[Profile]()))
func StructRules[T any]() Validator[T] {
	v := validator.New(validator.WithRequiredStructEnabled())
	return func(value T) Validation {
		if err := v.Struct(value); err != nil {
			return Validation{Err: err.Error()}
		}
		return Validation{Valid: true}
	}
}
