package timeouts

import (
	"fmt"
	"strings"
	"time"
)

// TimedOut classifies which budgets elapsed for a failed attempt. It is
// either "provided" (the caller passed a flat duration rather than a
// structured override) or a non-empty ordered list of category names that
// elapsed at the same instant.
type TimedOut struct {
	provided   time.Duration
	categories []Category
}

// ProvidedTimedOut reports that the caller's flat duration elapsed.
func ProvidedTimedOut(d time.Duration) TimedOut {
	return TimedOut{provided: d}
}

// CategoriesTimedOut reports that the named budgets elapsed simultaneously.
func CategoriesTimedOut(categories ...Category) TimedOut {
	return TimedOut{categories: categories}
}

// Provided returns the flat duration and true when the classification is the
// flat "provided" form.
func (t TimedOut) Provided() (time.Duration, bool) {
	return t.provided, len(t.categories) == 0
}

// Categories returns the list of budget names that elapsed, or nil for the
// provided form.
func (t TimedOut) Categories() []Category {
	return t.categories
}

func (t TimedOut) describe() string {
	if len(t.categories) == 0 {
		return fmt.Sprintf("the timeout provided via options (%dms) timed out", t.provided.Milliseconds())
	}

	if len(t.categories) == 1 {
		return fmt.Sprintf("%s timed out", t.categories[0])
	}

	names := make([]string, len(t.categories))
	for i, c := range t.categories {
		names[i] = string(c)
	}

	return fmt.Sprintf("%s simultaneously timed out", strings.Join(names, " and "))
}

// Error is the timeout error built by a Manager's error factory. Protocol
// packages embed it in their own per-family timeout error types; the core
// only guarantees the classification and the message format.
type Error struct {
	// Duration is the attempt budget that elapsed.
	Duration time.Duration

	// TimedOut names the budgets responsible.
	TimedOut TimedOut

	// Info carries the per-attempt diagnostics active when the budget was
	// computed.
	Info RequestInfo
}

func (e *Error) Error() string {
	return fmt.Sprintf("command timed out after %dms (%s)", e.Duration.Milliseconds(), e.TimedOut.describe())
}
