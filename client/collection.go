package client

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/amp-labs/dataapi-go/api"
	"github.com/amp-labs/dataapi-go/assert"
	"github.com/amp-labs/dataapi-go/optional"
	"github.com/amp-labs/dataapi-go/retry"
	"github.com/amp-labs/dataapi-go/serdes"
	"github.com/amp-labs/dataapi-go/timeouts"
)

// ErrTooManyDocuments is returned by CountDocuments when the server had more
// matching documents than the caller's upper bound.
var ErrTooManyDocuments = errors.New("client: too many documents to count")

// Collection is a typed handle on one collection. T is the document type;
// the zero configuration deserializes through encoding/json.
type Collection[T any] struct {
	db       *Database
	name     string
	codec    serdes.Codec[T]
	override *timeouts.Override
	policy   retry.Policy
}

// CollectionOf creates a typed handle on the named collection.
func CollectionOf[T any](db *Database, name string, opts ...HandleOption) *Collection[T] {
	assert.NotNil(db, "client.CollectionOf: database is nil")
	assert.True(name != "", "client.CollectionOf: collection name is empty")

	cfg := readHandleOptions(opts)

	return &Collection[T]{
		db:       db,
		name:     name,
		codec:    serdes.JSON[T](),
		override: cfg.override,
		policy:   cfg.policy,
	}
}

// WithCodec returns a copy of the handle using the given codec instead of
// the default JSON one.
func (c *Collection[T]) WithCodec(codec serdes.Codec[T]) *Collection[T] {
	assert.NotNil(codec, "Collection.WithCodec: codec is nil")

	clone := *c
	clone.codec = codec

	return &clone
}

// Name returns the collection name.
func (c *Collection[T]) Name() string {
	return c.name
}

func (c *Collection[T]) path() string {
	return c.db.path() + "/" + c.name
}

// collapsed folds the override hierarchy for one call, least to most
// specific.
func (c *Collection[T]) collapsed(callOverride *timeouts.Override) *timeouts.Override {
	return timeouts.Collapse(c.db.client.override, c.db.override, c.override, callOverride)
}

func (c *Collection[T]) policyFor(callPolicy retry.Policy) retry.Policy {
	return firstPolicy(callPolicy, c.policy, c.db.policy)
}

// runSingle executes a single-round-trip data-plane command under the
// general method budget.
func (c *Collection[T]) runSingle(
	ctx context.Context,
	cmd *api.Command,
	idempotent bool,
	opts *CallOptions,
) (*api.Response, error) {
	manager := timeouts.Single(c.db.client.defaults, timeouts.CategoryGeneralMethod,
		c.collapsed(opts.timeoutOverride()))

	return c.db.client.run(ctx, runParams{
		path:       c.path(),
		cmd:        cmd,
		manager:    manager,
		idempotent: idempotent,
		policy:     c.policyFor(opts.retryPolicy()),
		keyspace:   c.db.keyspace,
		collection: c.name,
	})
}

// FindOne returns the first document matching the filter, or None when
// nothing matches.
func (c *Collection[T]) FindOne(
	ctx context.Context,
	filter map[string]any,
	opts *FindOneOptions,
) (optional.Value[T], error) {
	cmd := api.NewCommand("findOne").Set("filter", orEmpty(filter))

	if opts != nil {
		cmd.SetIfNotNil("sort", nonNilMap(opts.Sort)).
			SetIfNotNil("projection", nonNilMap(opts.Projection))

		if opts.IncludeSimilarity {
			cmd.Set("options", map[string]any{"includeSimilarity": true})
		}
	}

	rsp, err := c.runSingle(ctx, cmd, true, callOptions(opts))
	if err != nil {
		return optional.None[T](), err
	}

	if rsp.Data == nil || len(rsp.Data.Document) == 0 || string(rsp.Data.Document) == "null" {
		return optional.None[T](), nil
	}

	doc, err := c.codec.Deserialize(rsp.Data.Document)
	if err != nil {
		return optional.None[T](), err
	}

	return optional.Some(doc), nil
}

// InsertOneResult reports the outcome of InsertOne.
type InsertOneResult struct {
	InsertedID any
}

// InsertOne writes a single document. Inserts are not idempotent, so network
// failures are never retried; only protocol errors the server explicitly
// flags as retryable are.
func (c *Collection[T]) InsertOne(
	ctx context.Context,
	doc T,
	opts *CallOptions,
) (InsertOneResult, error) {
	raw, err := c.codec.Serialize(doc)
	if err != nil {
		return InsertOneResult{}, err
	}

	cmd := api.NewCommand("insertOne").Set("document", json.RawMessage(raw))

	rsp, err := c.runSingle(ctx, cmd, false, opts)
	if err != nil {
		return InsertOneResult{}, err
	}

	var ids []any
	if err := statusField(rsp, "insertedIds", &ids); err != nil {
		return InsertOneResult{}, err
	}

	result := InsertOneResult{}
	if len(ids) > 0 {
		result.InsertedID = ids[0]
	}

	return result, nil
}

// UpdateResult reports the outcome of UpdateOne.
type UpdateResult struct {
	MatchedCount  int
	ModifiedCount int
	UpsertedID    any
}

// UpdateOne applies the update to the first matching document.
func (c *Collection[T]) UpdateOne(
	ctx context.Context,
	filter map[string]any,
	update map[string]any,
	opts *UpdateOneOptions,
) (UpdateResult, error) {
	cmd := api.NewCommand("updateOne").
		Set("filter", orEmpty(filter)).
		Set("update", orEmpty(update))

	if opts != nil {
		cmd.SetIfNotNil("sort", nonNilMap(opts.Sort))

		if opts.Upsert {
			cmd.Set("options", map[string]any{"upsert": true})
		}
	}

	rsp, err := c.runSingle(ctx, cmd, false, callOptions(opts))
	if err != nil {
		return UpdateResult{}, err
	}

	var result UpdateResult

	if err := statusField(rsp, "matchedCount", &result.MatchedCount); err != nil {
		return UpdateResult{}, err
	}

	if err := statusField(rsp, "modifiedCount", &result.ModifiedCount); err != nil {
		return UpdateResult{}, err
	}

	if err := statusField(rsp, "upsertedId", &result.UpsertedID); err != nil {
		return UpdateResult{}, err
	}

	return result, nil
}

// DeleteResult reports the outcome of DeleteMany.
type DeleteResult struct {
	DeletedCount int
}

// DeleteMany deletes every matching document. The server deletes in batches
// and signals continuation through the moreData flag, so the whole call runs
// under a multipart general method budget, one request budget per batch.
func (c *Collection[T]) DeleteMany(
	ctx context.Context,
	filter map[string]any,
	opts *CallOptions,
) (DeleteResult, error) {
	manager := timeouts.Multipart(c.db.client.defaults, timeouts.CategoryGeneralMethod,
		c.collapsed(opts.timeoutOverride()))

	params := runParams{
		path:       c.path(),
		cmd:        nil,
		manager:    manager,
		idempotent: true,
		policy:     c.policyFor(opts.retryPolicy()),
		keyspace:   c.db.keyspace,
		collection: c.name,
		ledger:     &retry.Ledger{},
	}

	var result DeleteResult

	for {
		params.cmd = api.NewCommand("deleteMany").Set("filter", orEmpty(filter))

		rsp, err := c.db.client.run(ctx, params)
		if err != nil {
			return result, err
		}

		var deleted int
		if err := statusField(rsp, "deletedCount", &deleted); err != nil {
			return result, err
		}

		result.DeletedCount += deleted

		var moreData bool
		if err := statusField(rsp, "moreData", &moreData); err != nil {
			return result, err
		}

		if !moreData {
			return result, nil
		}
	}
}

// CountDocuments counts the documents matching the filter, up to upperBound.
// It returns ErrTooManyDocuments when the true count exceeds either the
// bound or the server's own counting ceiling.
func (c *Collection[T]) CountDocuments(
	ctx context.Context,
	filter map[string]any,
	upperBound int,
	opts *CallOptions,
) (int, error) {
	assert.True(upperBound > 0, "CountDocuments: upperBound must be positive")

	cmd := api.NewCommand("countDocuments").Set("filter", orEmpty(filter))

	rsp, err := c.runSingle(ctx, cmd, true, opts)
	if err != nil {
		return 0, err
	}

	var count int
	if err := statusField(rsp, "count", &count); err != nil {
		return 0, err
	}

	var moreData bool
	if err := statusField(rsp, "moreData", &moreData); err != nil {
		return 0, err
	}

	if moreData || count > upperBound {
		return 0, ErrTooManyDocuments
	}

	return count, nil
}

// EstimatedDocumentCount returns the server's cheap estimate of the
// collection size, ignoring any filter.
func (c *Collection[T]) EstimatedDocumentCount(ctx context.Context, opts *CallOptions) (int, error) {
	cmd := api.NewCommand("estimatedDocumentCount")

	rsp, err := c.runSingle(ctx, cmd, true, opts)
	if err != nil {
		return 0, err
	}

	var count int
	if err := statusField(rsp, "count", &count); err != nil {
		return 0, err
	}

	return count, nil
}

func orEmpty(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}

	return m
}

// nonNilMap returns the map as an any, or a nil any for SetIfNotNil.
func nonNilMap(m map[string]any) any {
	if m == nil {
		return nil
	}

	return m
}

// callOptions extracts the embedded CallOptions from a typed options struct,
// tolerating a nil pointer.
func callOptions[O any](opts *O) *CallOptions {
	if opts == nil {
		return nil
	}

	if co, ok := any(opts).(interface{ callOptions() *CallOptions }); ok {
		return co.callOptions()
	}

	return nil
}

func (o *FindOneOptions) callOptions() *CallOptions       { return &o.CallOptions }
func (o *FindOptions) callOptions() *CallOptions          { return &o.CallOptions }
func (o *FindAndRerankOptions) callOptions() *CallOptions { return &o.CallOptions }
func (o *UpdateOneOptions) callOptions() *CallOptions     { return &o.CallOptions }
func (o *InsertManyOptions) callOptions() *CallOptions    { return &o.CallOptions }
