// Package optional provides a small Option type for values that may or may not
// be present. The cursor engine uses it to model tri-state paging information
// (not fetched yet / exhausted / continuation token) and to report "maybe a
// document" results without overloading error returns.
package optional

import "fmt"

// Value represents a value of type T that may be absent.
// The zero Value is None.
type Value[T any] struct {
	value T
	isSet bool
}

// Some creates a Value containing the given value.
func Some[T any](value T) Value[T] {
	return Value[T]{value: value, isSet: true}
}

// None creates an empty Value.
func None[T any]() Value[T] {
	return Value[T]{}
}

// Get returns the value and whether it is present.
func (o Value[T]) Get() (T, bool) {
	return o.value, o.isSet
}

// NonEmpty returns true if the Value contains a value.
func (o Value[T]) NonEmpty() bool {
	return o.isSet
}

// Empty returns true if the Value does not contain a value.
func (o Value[T]) Empty() bool {
	return !o.isSet
}

// GetOrElse returns the value if present, or the provided default otherwise.
func (o Value[T]) GetOrElse(fallback T) T {
	if o.isSet {
		return o.value
	}

	return fallback
}

// GetOrPanic returns the value if present and panics otherwise.
// Use only where absence is a programming error.
func (o Value[T]) GetOrPanic() T {
	if !o.isSet {
		panic("called GetOrPanic on None")
	}

	return o.value
}

// String returns "Some(v)" or "None".
func (o Value[T]) String() string {
	if o.isSet {
		return fmt.Sprintf("Some(%v)", o.value)
	}

	return "None"
}

// Map transforms the value inside the Value using the provided function,
// preserving absence.
func Map[T any, U any](o Value[T], f func(T) U) Value[U] {
	if !o.isSet {
		return None[U]()
	}

	return Some(f(o.value))
}
