// Package pointer provides helpers for constructing and dereferencing pointers.
// The client uses pointer fields for per-call overrides, where nil means
// "not overridden" and a zero value is a meaningful setting.
package pointer

// To returns a pointer to the given value.
// This is useful when populating override structs from literals.
//
// Example:
//
//	opts := FindOptions{Timeout: pointer.To(5 * time.Second)}
func To[T any](v T) *T {
	return &v
}

// Value safely dereferences a pointer. If the pointer is nil, it returns the
// zero value of T and false; otherwise the dereferenced value and true.
func Value[T any](p *T) (T, bool) {
	if p == nil {
		var zero T

		return zero, false
	}

	return *p, true
}

// ValueOrElse dereferences a pointer, falling back to the given default when
// the pointer is nil.
func ValueOrElse[T any](p *T, fallback T) T {
	if p == nil {
		return fallback
	}

	return *p
}
