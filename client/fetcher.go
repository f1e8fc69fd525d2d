package client

import (
	"context"
	"encoding/json"

	"github.com/amp-labs/dataapi-go/api"
	"github.com/amp-labs/dataapi-go/cursor"
	"github.com/amp-labs/dataapi-go/events"
	"github.com/amp-labs/dataapi-go/optional"
	"github.com/amp-labs/dataapi-go/retry"
	"github.com/amp-labs/dataapi-go/timeouts"
)

// Find returns a lazy cursor over the documents matching the filter. Shape
// the query with the cursor's builder methods before iterating. All page
// fetches share one multipart general method budget that starts ticking on
// the first fetch and spans the cursor's lifetime, including Rewind.
func (c *Collection[T]) Find(filter map[string]any, opts *FindOptions) *cursor.Cursor[json.RawMessage, T] {
	fetcher := c.newPageFetcher("find", callOptions(opts))

	raw := cursor.New[json.RawMessage](fetcher, cursor.Query{Filter: filter})

	return cursor.Map(raw, c.codec.Deserialize)
}

// FindAndRerank returns a hybrid search cursor: the server retrieves by the
// cursor's sort, reranks with the given query, and optionally annotates the
// scores.
func (c *Collection[T]) FindAndRerank(
	filter map[string]any,
	opts *FindAndRerankOptions,
) *cursor.Cursor[json.RawMessage, T] {
	query := cursor.Query{Filter: filter}

	if opts != nil {
		query.RerankOn = opts.RerankOn
		query.RerankQuery = opts.RerankQuery
		query.IncludeScores = opts.IncludeScores
	}

	fetcher := c.newPageFetcher("findAndRerank", callOptions(opts))

	raw := cursor.New[json.RawMessage](fetcher, query)

	return cursor.Map(raw, c.codec.Deserialize)
}

func (c *Collection[T]) newPageFetcher(command string, opts *CallOptions) *pageFetcher {
	return &pageFetcher{
		client:     c.db.client,
		path:       c.path(),
		keyspace:   c.db.keyspace,
		collection: c.name,
		command:    command,
		manager: timeouts.Multipart(c.db.client.defaults, timeouts.CategoryGeneralMethod,
			c.collapsed(opts.timeoutOverride())),
		policy: c.policyFor(opts.retryPolicy()),
		ledger: &retry.Ledger{},
	}
}

// pageFetcher executes one page fetch per call, all under a shared multipart
// budget and debt ledger. It implements cursor.Fetcher over raw documents;
// deserialization happens in the cursor's mapping.
type pageFetcher struct {
	client     *Client
	path       string
	keyspace   string
	collection string
	command    string
	manager    *timeouts.Manager
	policy     retry.Policy
	ledger     *retry.Ledger
}

var _ cursor.Fetcher[json.RawMessage] = (*pageFetcher)(nil)

func (f *pageFetcher) FetchPage(
	ctx context.Context,
	q cursor.Query,
	pageState optional.Value[string],
) (cursor.Page[json.RawMessage], error) {
	cmd := buildFindCommand(f.command, q, pageState)
	requestID := newRequestID()

	rsp, err := f.client.run(ctx, runParams{
		path:       f.path,
		cmd:        cmd,
		manager:    f.manager,
		idempotent: true,
		policy:     f.policy,
		keyspace:   f.keyspace,
		collection: f.collection,
		ledger:     f.ledger,
		requestID:  requestID,
	})
	if err != nil {
		return cursor.Page[json.RawMessage]{}, err
	}

	page := cursor.Page[json.RawMessage]{PageState: optional.None[string]()}

	if rsp.Data != nil {
		page.Items = rsp.Data.Documents
		page.SortVector = rsp.Data.SortVector

		if rsp.Data.NextPageState != nil {
			page.PageState = optional.Some(*rsp.Data.NextPageState)
		}
	}

	f.client.sinks.PageFetched(ctx, events.PageFetched{
		RequestID:  requestID,
		Command:    f.command,
		Collection: f.collection,
		Items:      len(page.Items),
	})

	return page, nil
}

// buildFindCommand translates the cursor's query descriptor into the wire
// command body.
func buildFindCommand(name string, q cursor.Query, pageState optional.Value[string]) *api.Command {
	cmd := api.NewCommand(name).Set("filter", orEmpty(q.Filter))

	cmd.SetIfNotNil("sort", nonNilMap(q.Sort)).
		SetIfNotNil("projection", nonNilMap(q.Projection))

	options := map[string]any{}

	if q.Limit > 0 {
		options["limit"] = q.Limit
	}

	if q.Skip > 0 {
		options["skip"] = q.Skip
	}

	if q.IncludeSimilarity {
		options["includeSimilarity"] = true
	}

	if q.IncludeSortVector {
		options["includeSortVector"] = true
	}

	if q.IncludeScores {
		options["includeScores"] = true
	}

	if q.RerankOn != "" {
		options["rerankOn"] = q.RerankOn
	}

	if q.RerankQuery != "" {
		options["rerankQuery"] = q.RerankQuery
	}

	if state, ok := pageState.Get(); ok {
		options["pageState"] = state
	}

	for k, v := range q.Extra {
		options[k] = v
	}

	if len(options) > 0 {
		cmd.Set("options", options)
	}

	return cmd
}
