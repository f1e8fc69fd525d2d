package cursor

import (
	"context"

	"github.com/amp-labs/dataapi-go/optional"
)

// Query is the immutable descriptor of a paginated server query: what to
// match, how to order, which fields to return, and the protocol-specific
// knobs of vector and hybrid search. Builder methods replace whole fields on
// a clone; a Query held by a running cursor is never mutated.
//
// A zero Limit or Skip means "disabled", mirroring the timeout convention.
type Query struct {
	Filter     map[string]any
	Sort       map[string]any
	Projection map[string]any
	Limit      int
	Skip       int

	// Vector / hybrid search knobs.
	IncludeSimilarity bool
	IncludeSortVector bool
	IncludeScores     bool
	RerankOn          string
	RerankQuery       string

	// Extra carries protocol options the core doesn't interpret.
	Extra map[string]any
}

// Page is one raw server page, already deserialized into items of type R.
// An empty PageState means the server omitted the continuation token and the
// query is exhausted. The token itself is opaque: the cursor passes it back
// verbatim and never inspects it.
type Page[R any] struct {
	Items     []R
	PageState optional.Value[string]

	// SortVector is the vector the server actually used for similarity
	// ranking, when the query asked for it.
	SortVector []float32
}

// Fetcher is the external collaborator that executes one page fetch. The
// client's implementation builds the wire command from the query, runs it
// through the timeout and retry machinery, and deserializes the raw items;
// the cursor only sequences the calls and buffers the results.
//
// pageState is None for the first request of a query; afterwards it carries
// the token from the previous page.
type Fetcher[R any] interface {
	FetchPage(ctx context.Context, q Query, pageState optional.Value[string]) (Page[R], error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc[R any] func(ctx context.Context, q Query, pageState optional.Value[string]) (Page[R], error)

func (f FetcherFunc[R]) FetchPage(
	ctx context.Context,
	q Query,
	pageState optional.Value[string],
) (Page[R], error) {
	return f(ctx, q, pageState)
}
