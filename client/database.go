package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/amp-labs/dataapi-go/api"
	"github.com/amp-labs/dataapi-go/retry"
	"github.com/amp-labs/dataapi-go/timeouts"
)

// Database scopes a Client to one keyspace. Handles are cheap and immutable;
// create as many as needed.
type Database struct {
	client   *Client
	keyspace string
	override *timeouts.Override
	policy   retry.Policy
}

// Keyspace returns the keyspace this handle is bound to.
func (d *Database) Keyspace() string {
	return d.keyspace
}

// Client returns the owning client.
func (d *Database) Client() *Client {
	return d.client
}

func (d *Database) path() string {
	return "/api/json/v1/" + d.keyspace
}

// ListCollections returns the names of the collections in the keyspace. This
// is a control-plane call: it runs under the collection admin budget and the
// admin retry slot.
func (d *Database) ListCollections(ctx context.Context, opts *CallOptions) ([]string, error) {
	cmd := api.NewCommand("findCollections")

	override := timeouts.Collapse(d.client.override, d.override, opts.timeoutOverride())
	manager := timeouts.Single(d.client.defaults, timeouts.CategoryCollectionAdmin, override)

	rsp, err := d.client.run(ctx, runParams{
		path:       d.path(),
		cmd:        cmd,
		manager:    manager,
		idempotent: true,
		admin:      true,
		policy:     firstPolicy(opts.retryPolicy(), d.policy),
		keyspace:   d.keyspace,
	})
	if err != nil {
		return nil, err
	}

	var names []string
	if err := statusField(rsp, "collections", &names); err != nil {
		return nil, err
	}

	return names, nil
}

// firstPolicy returns the most specific non-nil policy override, or nil when
// the family slot should apply.
func firstPolicy(policies ...retry.Policy) retry.Policy {
	for _, p := range policies {
		if p != nil {
			return p
		}
	}

	return nil
}

// statusField decodes one field of the response status section into out.
// A response without that field leaves out untouched and returns nil.
func statusField(rsp *api.Response, name string, out any) error {
	raw, ok := rsp.Status[name]
	if !ok {
		return nil
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decoding status field %q: %w", name, err)
	}

	return nil
}
