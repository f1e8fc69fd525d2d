// Package errors provides shared error utilities for the client: sentinels
// used across packages and a collection type for accumulating the partial
// failures of batched operations such as InsertMany.
package errors

import "errors"

var (
	// ErrNotImplemented marks a contract method that has no implementation.
	ErrNotImplemented = errors.New("not implemented")

	// ErrWrongType is returned when a response payload does not have the
	// shape the caller asked to decode it into.
	ErrWrongType = errors.New("wrong type")
)

// Collection is a thread-unsafe utility for accumulating multiple errors.
// Batched writes use one Collection per logical call so that every failed
// chunk is reported, not just the first.
type Collection struct {
	errors []error
}

// Add appends an error to the collection. Nil errors are ignored.
func (c *Collection) Add(err error) {
	if err != nil {
		c.errors = append(c.errors, err)
	}
}

// Clear removes all errors from the collection.
func (c *Collection) Clear() {
	c.errors = nil
}

// HasError returns true if the collection contains at least one error.
func (c *Collection) HasError() bool {
	return len(c.errors) > 0
}

// Len returns the number of collected errors.
func (c *Collection) Len() int {
	return len(c.errors)
}

// GetError returns the collected errors as a single error: nil when empty,
// the sole error when there is one, or an errors.Join of all of them.
func (c *Collection) GetError() error {
	switch len(c.errors) {
	case 0:
		return nil
	case 1:
		return c.errors[0]
	default:
		return errors.Join(c.errors...)
	}
}
