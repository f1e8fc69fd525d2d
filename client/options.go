package client

import (
	"time"

	"github.com/amp-labs/dataapi-go/retry"
	"github.com/amp-labs/dataapi-go/timeouts"
)

// CallOptions are the per-call knobs every operation accepts. A nil options
// pointer means "inherit everything". Timeouts is the most specific level of
// the override hierarchy; Retry overrides the family's policy slot for this
// call only.
type CallOptions struct {
	Timeouts *timeouts.Override
	Retry    retry.Policy
}

// WithTimeout is shorthand for CallOptions carrying a flat provided timeout.
func WithTimeout(d time.Duration) *CallOptions {
	return &CallOptions{Timeouts: timeouts.ProvidedOverride(d)}
}

func (o *CallOptions) timeoutOverride() *timeouts.Override {
	if o == nil {
		return nil
	}

	return o.Timeouts
}

func (o *CallOptions) retryPolicy() retry.Policy {
	if o == nil {
		return nil
	}

	return o.Retry
}

// FindOneOptions configure a FindOne call.
type FindOneOptions struct {
	CallOptions

	Sort              map[string]any
	Projection        map[string]any
	IncludeSimilarity bool
}

// FindOptions configure a Find cursor. Query shaping (sort, projection,
// limit) happens through the cursor's builder methods; these options only
// carry the cross-cutting knobs for the page fetches.
type FindOptions struct {
	CallOptions
}

// FindAndRerankOptions configure a hybrid search cursor.
type FindAndRerankOptions struct {
	CallOptions

	RerankOn      string
	RerankQuery   string
	IncludeScores bool
}

// UpdateOneOptions configure an UpdateOne call.
type UpdateOneOptions struct {
	CallOptions

	Upsert bool
	Sort   map[string]any
}

const (
	defaultInsertChunkSize   = 50
	maxInsertChunkSize       = 100
	defaultInsertConcurrency = 8
)

// InsertManyOptions configure an InsertMany call. Ordered inserts run the
// chunks sequentially and stop at the first failure; unordered inserts run
// them concurrently and report every failed chunk.
type InsertManyOptions struct {
	CallOptions

	Ordered     bool
	Concurrency int
	ChunkSize   int
}

func (o *InsertManyOptions) chunkSize() int {
	if o == nil || o.ChunkSize <= 0 {
		return defaultInsertChunkSize
	}

	return min(o.ChunkSize, maxInsertChunkSize)
}

func (o *InsertManyOptions) concurrency() int {
	if o == nil || o.Concurrency <= 0 {
		return defaultInsertConcurrency
	}

	return o.Concurrency
}

func (o *InsertManyOptions) ordered() bool {
	return o != nil && o.Ordered
}
