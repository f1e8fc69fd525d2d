// Package assert provides internal invariant checks that panic on violation.
// These are reserved for programmer errors (nil collaborators, impossible
// states), never for conditions a caller could reasonably trigger at runtime.
package assert

import "fmt"

// True panics if the given value is false. The optional args produce a
// formatted panic message when the first arg is a format string.
func True(value bool, args ...any) {
	if value {
		return
	}

	if len(args) == 0 {
		panic("assertion failed")
	}

	if format, ok := args[0].(string); ok {
		panic(fmt.Sprintf(format, args[1:]...))
	}

	panic(fmt.Sprintf("assertion failed: %v", args))
}

// NotNil panics if the given value is nil.
func NotNil(value any, args ...any) {
	True(value != nil, args...)
}
