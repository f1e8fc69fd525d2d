package client

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/alitto/pond/v2"

	"github.com/amp-labs/dataapi-go/api"
	"github.com/amp-labs/dataapi-go/errors"
	"github.com/amp-labs/dataapi-go/retry"
	"github.com/amp-labs/dataapi-go/timeouts"
)

// InsertManyResult reports the outcome of InsertMany. On partial failure the
// IDs of the successfully inserted documents are still returned alongside
// the error.
type InsertManyResult struct {
	InsertedIDs []any
}

// insertManyRun is the shared machinery of one InsertMany call: every chunk
// draws from the same multipart budget and charges the same debt ledger.
type insertManyRun struct {
	manager *timeouts.Manager
	policy  retry.Policy
	ledger  *retry.Ledger
}

// InsertMany writes the documents in chunks. Ordered mode sends the chunks
// sequentially and stops at the first failure; unordered mode sends them
// concurrently through a bounded worker pool and reports every failed chunk
// in one joined error. The whole call shares a multipart general method
// budget, one request budget per chunk.
func (c *Collection[T]) InsertMany(
	ctx context.Context,
	docs []T,
	opts *InsertManyOptions,
) (InsertManyResult, error) {
	if len(docs) == 0 {
		return InsertManyResult{}, nil
	}

	chunks, err := c.chunkDocuments(docs, opts.chunkSize())
	if err != nil {
		return InsertManyResult{}, err
	}

	run := &insertManyRun{
		manager: timeouts.Multipart(c.db.client.defaults, timeouts.CategoryGeneralMethod,
			c.collapsed(callOptions(opts).timeoutOverride())),
		policy: c.policyFor(callOptions(opts).retryPolicy()),
		ledger: &retry.Ledger{},
	}

	if opts.ordered() {
		return c.insertSequential(ctx, chunks, run)
	}

	// Concurrent chunks share the multipart budget; the manager itself is
	// single-threaded, so serialize Advance.
	run.manager = synchronizedManager(run.manager)

	return c.insertConcurrent(ctx, chunks, run, opts.concurrency())
}

func synchronizedManager(m *timeouts.Manager) *timeouts.Manager {
	var mu sync.Mutex

	return timeouts.Custom(m.Initial(),
		func(info timeouts.RequestInfo) (time.Duration, timeouts.ErrorFactory) {
			mu.Lock()
			defer mu.Unlock()

			return m.Advance(info)
		})
}

func (c *Collection[T]) chunkDocuments(docs []T, size int) ([][]json.RawMessage, error) {
	serialized := make([]json.RawMessage, len(docs))

	for i, doc := range docs {
		raw, err := c.codec.Serialize(doc)
		if err != nil {
			return nil, err
		}

		serialized[i] = raw
	}

	var chunks [][]json.RawMessage

	for start := 0; start < len(serialized); start += size {
		end := min(start+size, len(serialized))
		chunks = append(chunks, serialized[start:end])
	}

	return chunks, nil
}

func (c *Collection[T]) insertSequential(
	ctx context.Context,
	chunks [][]json.RawMessage,
	run *insertManyRun,
) (InsertManyResult, error) {
	var result InsertManyResult

	for _, chunk := range chunks {
		ids, err := c.insertChunk(ctx, chunk, run, true)
		result.InsertedIDs = append(result.InsertedIDs, ids...)

		if err != nil {
			return result, err
		}
	}

	return result, nil
}

func (c *Collection[T]) insertConcurrent(
	ctx context.Context,
	chunks [][]json.RawMessage,
	run *insertManyRun,
	concurrency int,
) (InsertManyResult, error) {
	pool := pond.NewPool(concurrency)

	ids := make([][]any, len(chunks))
	errs := make([]error, len(chunks))

	for i, chunk := range chunks {
		pool.Submit(func() {
			ids[i], errs[i] = c.insertChunk(ctx, chunk, run, false)
		})
	}

	pool.StopAndWait()

	var (
		result InsertManyResult
		failed errors.Collection
	)

	for i := range chunks {
		result.InsertedIDs = append(result.InsertedIDs, ids[i]...)
		failed.Add(errs[i])
	}

	return result, failed.GetError()
}

// insertChunk inserts one chunk and returns the inserted IDs.
func (c *Collection[T]) insertChunk(
	ctx context.Context,
	chunk []json.RawMessage,
	run *insertManyRun,
	ordered bool,
) ([]any, error) {
	cmd := api.NewCommand("insertMany").
		Set("documents", chunk).
		Set("options", map[string]any{"ordered": ordered})

	rsp, err := c.db.client.run(ctx, runParams{
		path:       c.path(),
		cmd:        cmd,
		manager:    run.manager,
		idempotent: false,
		policy:     run.policy,
		keyspace:   c.db.keyspace,
		collection: c.name,
		ledger:     run.ledger,
	})
	if err != nil {
		return nil, err
	}

	var ids []any
	if err := statusField(rsp, "insertedIds", &ids); err != nil {
		return nil, err
	}

	return ids, nil
}
