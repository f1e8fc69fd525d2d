package cursor

// Builder methods configure a cursor before its first fetch. Each one clones
// the receiver and returns the clone with the field replaced, so a "parent"
// cursor can keep being configured or consumed concurrently with its derived
// cursors. Calling any of them on a Started or Closed cursor panics with a
// StateError; Clone or Rewind first.

// with clones the receiver (keeping the mapping function) and applies mutate
// to the clone's query.
func (c *Cursor[R, T]) with(op string, mutate func(*Query)) *Cursor[R, T] {
	c.requireUnstarted(op)

	clone := &Cursor[R, T]{
		fetcher: c.fetcher,
		query:   c.query,
		mapFn:   c.mapFn,
	}

	mutate(&clone.query)

	return clone
}

// Filter replaces the cursor's match filter.
func (c *Cursor[R, T]) Filter(filter map[string]any) *Cursor[R, T] {
	return c.with("Filter", func(q *Query) { q.Filter = filter })
}

// Sort replaces the cursor's sort criteria.
func (c *Cursor[R, T]) Sort(sort map[string]any) *Cursor[R, T] {
	return c.with("Sort", func(q *Query) { q.Sort = sort })
}

// Project replaces the cursor's field projection.
func (c *Cursor[R, T]) Project(projection map[string]any) *Cursor[R, T] {
	return c.with("Project", func(q *Query) { q.Projection = projection })
}

// Limit caps the number of items the cursor yields. Zero means unlimited.
func (c *Cursor[R, T]) Limit(n int) *Cursor[R, T] {
	return c.with("Limit", func(q *Query) { q.Limit = n })
}

// Skip skips the first n matching items server-side. Zero means none.
func (c *Cursor[R, T]) Skip(n int) *Cursor[R, T] {
	return c.with("Skip", func(q *Query) { q.Skip = n })
}

// IncludeSimilarity asks the server to attach similarity scores to vector
// search results.
func (c *Cursor[R, T]) IncludeSimilarity(include bool) *Cursor[R, T] {
	return c.with("IncludeSimilarity", func(q *Query) { q.IncludeSimilarity = include })
}

// IncludeSortVector asks the server to return the vector it ranked by, which
// SortVector then exposes.
func (c *Cursor[R, T]) IncludeSortVector(include bool) *Cursor[R, T] {
	return c.with("IncludeSortVector", func(q *Query) { q.IncludeSortVector = include })
}

// IncludeScores asks the server to attach per-source scores to hybrid search
// results.
func (c *Cursor[R, T]) IncludeScores(include bool) *Cursor[R, T] {
	return c.with("IncludeScores", func(q *Query) { q.IncludeScores = include })
}

// RerankOn names the lexical field the reranking step reads.
func (c *Cursor[R, T]) RerankOn(field string) *Cursor[R, T] {
	return c.with("RerankOn", func(q *Query) { q.RerankOn = field })
}

// RerankQuery sets the natural-language query for the reranking step when it
// differs from the vector search text.
func (c *Cursor[R, T]) RerankQuery(query string) *Cursor[R, T] {
	return c.with("RerankQuery", func(q *Query) { q.RerankQuery = query })
}

// WithExtra attaches a protocol option the core does not interpret.
func (c *Cursor[R, T]) WithExtra(key string, value any) *Cursor[R, T] {
	return c.with("WithExtra", func(q *Query) {
		extra := make(map[string]any, len(q.Extra)+1)
		for k, v := range q.Extra {
			extra[k] = v
		}

		extra[key] = value
		q.Extra = extra
	})
}
