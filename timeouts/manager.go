package timeouts

import "time"

// RequestInfo carries per-attempt diagnostics through Advance and into the
// timeout error, so a surfaced failure can name the command and request
// without re-deriving them from logs.
type RequestInfo struct {
	RequestID string
	Command   string
	Attempt   int
}

// ErrorFactory lazily builds the timeout error for an attempt. It is only
// invoked if the attempt's budget actually elapses.
type ErrorFactory func() *Error

// AdvanceFunc computes the budget for the next attempt.
type AdvanceFunc func(info RequestInfo) (time.Duration, ErrorFactory)

// Manager is the ephemeral per-operation view of the timeout configuration.
// Initial exposes the budgets in force (for diagnostics and events); Advance
// yields the next attempt's budget together with the error to raise if it
// elapses.
//
// A Manager is created per logical operation and is not safe for concurrent
// use: a multipart manager tracks elapsed wall clock between Advance calls.
type Manager struct {
	initial Descriptor
	advance AdvanceFunc
}

// Custom builds a Manager from an arbitrary snapshot and advance function.
// Single and Multipart are both built on top of it; protocol extensions can
// use it directly for operations with unusual budget shapes.
func Custom(initial Descriptor, advance AdvanceFunc) *Manager {
	return &Manager{initial: initial, advance: advance}
}

// Initial returns the budgets currently in force for this operation.
func (m *Manager) Initial() Descriptor {
	return m.initial
}

// Advance returns the budget for the next attempt and the lazy error factory
// describing what elapsed if that budget runs out.
func (m *Manager) Advance(info RequestInfo) (time.Duration, ErrorFactory) {
	return m.advance(info)
}

// Single builds a Manager for a single-round-trip operation.
//
// With a flat override (Provided), both the request budget and the operation's
// category budget take the provided value, and an eventual timeout is reported
// in the "provided" form. Otherwise each budget resolves field-wise from the
// override or the base, and the attempt budget is the smaller of the request
// budget and the category budget; a tie reports both names.
func Single(base Descriptor, category Category, override *Override) *Manager {
	if v := providedOf(override); v != nil {
		flat := *v
		budget := normalize(flat)
		initial := base.set(CategoryRequest, budget).set(category, budget)

		return Custom(initial, func(info RequestInfo) (time.Duration, ErrorFactory) {
			return budget, func() *Error {
				return &Error{Duration: budget, TimedOut: ProvidedTimedOut(flat), Info: info}
			}
		})
	}

	requestBudget := resolve(override.get(CategoryRequest), base.Request)
	categoryBudget := resolve(override.get(category), base.Get(category))
	initial := base.set(CategoryRequest, requestBudget).set(category, categoryBudget)

	budget, timedOut := pickBudget(requestBudget, categoryBudget, category)

	return Custom(initial, func(info RequestInfo) (time.Duration, ErrorFactory) {
		return budget, func() *Error {
			return &Error{Duration: budget, TimedOut: timedOut, Info: info}
		}
	})
}

// Multipart builds a Manager for a multi-round-trip operation, such as
// draining a paginated read. The request budget bounds each round trip; the
// overall budget, resolved once, bounds the whole operation. The overall
// clock starts on the first Advance call.
//
// The overall budget resolves from, in priority order: the structured
// override's category field, the flat Provided value, then the base.
func Multipart(base Descriptor, category Category, override *Override) *Manager {
	requestBudget := resolve(override.get(CategoryRequest), base.Request)

	var overall time.Duration

	switch {
	case override.get(category) != nil:
		overall = normalize(*override.get(category))
	case providedOf(override) != nil:
		overall = normalize(*providedOf(override))
	default:
		overall = normalize(base.Get(category))
	}

	initial := base.set(CategoryRequest, requestBudget).set(category, overall)

	var started time.Time

	return Custom(initial, func(info RequestInfo) (time.Duration, ErrorFactory) {
		now := time.Now()
		if started.IsZero() {
			started = now
		}

		overallLeft := overall - now.Sub(started)
		if overallLeft < 0 {
			overallLeft = 0
		}

		var (
			budget   time.Duration
			timedOut TimedOut
		)

		switch {
		case overallLeft < requestBudget:
			budget, timedOut = overallLeft, CategoriesTimedOut(category)
		case overallLeft > requestBudget:
			budget, timedOut = requestBudget, CategoriesTimedOut(CategoryRequest)
		default:
			budget, timedOut = requestBudget, CategoriesTimedOut(CategoryRequest, category)
		}

		return budget, func() *Error {
			return &Error{Duration: budget, TimedOut: timedOut, Info: info}
		}
	})
}

// pickBudget takes the smaller of the request and category budgets and
// classifies which name(s) to report when it elapses. Equal budgets report
// both names, unless the operation's category is the request budget itself.
func pickBudget(requestBudget, categoryBudget time.Duration, category Category) (time.Duration, TimedOut) {
	switch {
	case requestBudget < categoryBudget:
		return requestBudget, CategoriesTimedOut(CategoryRequest)
	case categoryBudget < requestBudget:
		return categoryBudget, CategoriesTimedOut(category)
	case category == CategoryRequest:
		return requestBudget, CategoriesTimedOut(CategoryRequest)
	default:
		return requestBudget, CategoriesTimedOut(CategoryRequest, category)
	}
}

func providedOf(o *Override) *time.Duration {
	if o == nil {
		return nil
	}

	return o.Provided
}
