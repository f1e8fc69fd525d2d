// Package cursor implements the lazy, stateful iterator over paginated Data
// API queries. A cursor owns its query descriptor and a buffer of not-yet
// yielded items; it never owns the network transport, only a reference to the
// page Fetcher collaborator.
//
// A single cursor must not be driven by two concurrent consumers; its buffer
// and lifecycle state are not synchronized. Distinct cursors are independent.
package cursor

import (
	"context"

	"github.com/amp-labs/dataapi-go/assert"
	"github.com/amp-labs/dataapi-go/optional"
)

// Cursor lazily drives a paginated query. R is the raw page item type the
// Fetcher produces; T is the mapped type Next yields. A freshly created
// cursor has R == T with an identity mapping; Map composes further
// transformations.
type Cursor[R, T any] struct {
	fetcher Fetcher[R]
	query   Query
	mapFn   func(R) (T, error)

	state  State
	buffer []R

	// pageState plus fetched encode the tri-state continuation:
	// not fetched yet / exhausted / token in hand.
	pageState optional.Value[string]
	fetched   bool

	yielded int

	sortVector    []float32
	sortVectorSet bool
}

// New creates an idle cursor over the given query with an identity mapping.
func New[R any](fetcher Fetcher[R], query Query) *Cursor[R, R] {
	assert.NotNil(fetcher, "cursor.New: fetcher is nil")

	return &Cursor[R, R]{
		fetcher: fetcher,
		query:   query,
		mapFn:   func(r R) (R, error) { return r, nil },
	}
}

// Map returns a new cursor whose Next yields f applied to the receiver's
// mapped items. Mappings compose: Map(Map(c, f), g).Next() == g(f(raw)).
// Like every builder it requires an unstarted cursor.
func Map[R, T, U any](c *Cursor[R, T], f func(T) (U, error)) *Cursor[R, U] {
	c.requireUnstarted("Map")

	prev := c.mapFn

	return &Cursor[R, U]{
		fetcher: c.fetcher,
		query:   c.query,
		mapFn: func(r R) (U, error) {
			mid, err := prev(r)
			if err != nil {
				var zero U

				return zero, err
			}

			return f(mid)
		},
	}
}

// State returns the cursor's lifecycle tag.
func (c *Cursor[R, T]) State() State {
	return c.state
}

// Query returns a copy of the cursor's query descriptor.
func (c *Cursor[R, T]) Query() Query {
	return c.query
}

// Clone returns a fresh Uninitialized cursor over the same query. The
// mapping function is dropped (the clone yields raw items) and no buffer
// state is shared with the original, so a started cursor can be cloned and
// re-run safely.
func (c *Cursor[R, T]) Clone() *Cursor[R, R] {
	return New(c.fetcher, c.query)
}

// Rewind resets this cursor object back to Uninitialized: the buffer and
// continuation token are cleared so the server is re-queried from the start.
// Configuration and the mapping function are preserved.
func (c *Cursor[R, T]) Rewind() *Cursor[R, T] {
	c.state = Uninitialized
	c.buffer = nil
	c.pageState = optional.None[string]()
	c.fetched = false
	c.yielded = 0

	return c
}

// Close marks the cursor Closed. It is idempotent and does not clear the
// buffer: already-buffered-but-unread items remain readable via ReadBuffered,
// but iteration yields nothing more.
func (c *Cursor[R, T]) Close() {
	c.state = Closed
}

// BufferedCount returns the number of unread buffered items. No I/O.
func (c *Cursor[R, T]) BufferedCount() int {
	return len(c.buffer)
}

// ReadBuffered drains up to max raw (pre-mapping) items from the buffer
// without triggering any fetch. max <= 0 drains everything.
func (c *Cursor[R, T]) ReadBuffered(max int) []R {
	if max <= 0 || max > len(c.buffer) {
		max = len(c.buffer)
	}

	out := c.buffer[:max:max]
	c.buffer = c.buffer[max:]

	return out
}

// HasNext reports whether another item is available. When the buffer is
// empty it performs exactly one page fetch and buffers the result; it never
// loops, so a server page that was empty but carried a continuation token
// reports false until the next consumption call.
func (c *Cursor[R, T]) HasNext(ctx context.Context) (bool, error) {
	if c.state == Closed || (c.query.Limit > 0 && c.yielded >= c.query.Limit) {
		return false, nil
	}

	if len(c.buffer) > 0 {
		return true, nil
	}

	if c.done() {
		return false, nil
	}

	if err := c.fetchPage(ctx); err != nil {
		return false, err
	}

	return len(c.buffer) > 0, nil
}

// Next yields the next mapped item. It returns ErrNoMoreDocuments once the
// cursor is exhausted or closed. A mapping failure closes the cursor and
// propagates unchanged.
func (c *Cursor[R, T]) Next(ctx context.Context) (T, error) {
	var zero T

	raw, err := c.tryNextRaw(ctx)
	if err != nil {
		return zero, err
	}

	item, ok := raw.Get()
	if !ok {
		return zero, ErrNoMoreDocuments
	}

	mapped, err := c.mapFn(item)
	if err != nil {
		c.Close()

		return zero, err
	}

	c.yielded++

	return mapped, nil
}

// TryNext is Next with exhaustion as a value instead of a sentinel error:
// None means the cursor is done.
func (c *Cursor[R, T]) TryNext(ctx context.Context) (optional.Value[T], error) {
	mapped, err := c.Next(ctx)
	if err != nil {
		if err == ErrNoMoreDocuments { //nolint:errorlint // sentinel, never wrapped here
			return optional.None[T](), nil
		}

		return optional.None[T](), err
	}

	return optional.Some(mapped), nil
}

// tryNextRaw pops one raw item, fetching pages as needed. It keeps fetching
// while the server returns empty pages that still carry a continuation
// token. Natural exhaustion closes the cursor.
func (c *Cursor[R, T]) tryNextRaw(ctx context.Context) (optional.Value[R], error) {
	for {
		if c.state == Closed {
			return optional.None[R](), nil
		}

		if c.query.Limit > 0 && c.yielded >= c.query.Limit {
			c.Close()

			return optional.None[R](), nil
		}

		if len(c.buffer) > 0 {
			item := c.buffer[0]
			c.buffer = c.buffer[1:]

			return optional.Some(item), nil
		}

		if c.done() {
			c.Close()

			return optional.None[R](), nil
		}

		if err := c.fetchPage(ctx); err != nil {
			return optional.None[R](), err
		}
	}
}

// done reports that no further page can produce an item: the server said
// exhausted, or the configured limit has been fully yielded.
func (c *Cursor[R, T]) done() bool {
	if c.state == Closed {
		return true
	}

	if c.fetched && c.pageState.Empty() {
		return true
	}

	return c.query.Limit > 0 && c.yielded >= c.query.Limit
}

// fetchPage requests exactly one page from the Fetcher and buffers it.
// Pages are requested strictly in continuation-token order; there is no
// prefetch.
func (c *Cursor[R, T]) fetchPage(ctx context.Context) error {
	c.state = Started

	page, err := c.fetcher.FetchPage(ctx, c.query, c.pageState)
	if err != nil {
		return err
	}

	c.fetched = true
	c.pageState = page.PageState
	c.buffer = append(c.buffer, page.Items...)

	if !c.sortVectorSet {
		c.sortVector = page.SortVector
		c.sortVectorSet = true
	}

	return nil
}

// SortVector returns the vector the server used for similarity ranking, or
// nil when the cursor was not configured to request it. If no fetch has
// happened yet it performs exactly one (buffering the page as a side effect)
// and then restores the idle state, so a subsequent iteration of a cursor
// that was never consumed is unaffected. The result is cached; later calls
// never re-fetch.
func (c *Cursor[R, T]) SortVector(ctx context.Context) ([]float32, error) {
	if c.sortVectorSet {
		return c.sortVector, nil
	}

	if !c.query.IncludeSortVector {
		return nil, nil
	}

	wasIdle := c.state == Uninitialized

	if err := c.fetchPage(ctx); err != nil {
		return nil, err
	}

	if wasIdle {
		c.state = Uninitialized
	}

	return c.sortVector, nil
}

// requireUnstarted gates the builder surface. Reconfiguring a cursor that
// has already fetched is a programmer error and panics with a StateError.
func (c *Cursor[R, T]) requireUnstarted(op string) {
	if c.state != Uninitialized {
		panic(&StateError{Op: op, State: c.state})
	}
}
