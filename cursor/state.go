package cursor

import (
	"errors"
	"fmt"
)

// State is the lifecycle tag of a cursor. It only ever advances
// (Uninitialized → Started → Closed); Rewind is the one escape hatch back to
// Uninitialized.
type State int

const (
	// Uninitialized means no page has been requested yet. Builder methods are
	// only legal in this state.
	Uninitialized State = iota

	// Started means at least one page fetch has begun.
	Started

	// Closed means the cursor will refill its buffer no more. Already
	// buffered items stay readable through ReadBuffered but iteration yields
	// nothing.
	Closed
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Started:
		return "started"
	case Closed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ErrNoMoreDocuments is the sentinel returned by Next when the cursor is
// exhausted. Prefer TryNext or the Documents iterator when exhaustion is an
// expected, non-exceptional outcome.
var ErrNoMoreDocuments = errors.New("cursor: no more documents")

// StateError reports a builder method invoked on a cursor that has already
// started or closed. It is always a programmer error, so builders panic with
// it rather than returning it.
type StateError struct {
	Op    string
	State State
}

func (e *StateError) Error() string {
	return fmt.Sprintf("cursor: %s requires an unstarted cursor (cursor is %s); Clone or Rewind it first", e.Op, e.State)
}
