// Package client is the user-facing surface of the Data API client: a Client
// holds the endpoint, credentials, and cross-cutting defaults; Database and
// Collection handles scope it to a keyspace and a collection; every operation
// flows through the shared timeout, retry, and event machinery.
package client

import (
	"log/slog"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/amp-labs/dataapi-go/assert"
	"github.com/amp-labs/dataapi-go/events"
	"github.com/amp-labs/dataapi-go/retry"
	"github.com/amp-labs/dataapi-go/timeouts"
	"github.com/amp-labs/dataapi-go/transport"
)

const tracerName = "github.com/amp-labs/dataapi-go"

// Option configures a Client at construction time.
type Option func(*Client)

// WithHTTPClient substitutes the whole http.Client, bypassing the default
// transport stack. Mostly useful in tests together with transport.NewCustom.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets the logger used by the transport and the default log sink.
// Without it the client does not log.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDefaultTimeouts replaces the stock budget descriptor.
func WithDefaultTimeouts(d timeouts.Descriptor) Option {
	return func(c *Client) {
		c.defaults = d
	}
}

// WithTimeouts sets the client-level timeout override, the least specific
// level of the hierarchy.
func WithTimeouts(override *timeouts.Override) Option {
	return func(c *Client) {
		c.override = override
	}
}

// WithRetryPolicy sets the data-plane retry policy slot. Nil means never
// retry.
func WithRetryPolicy(policy retry.Policy) Option {
	return func(c *Client) {
		c.dataPolicy = policy
	}
}

// WithAdminRetryPolicy sets the control-plane retry policy slot.
func WithAdminRetryPolicy(policy retry.Policy) Option {
	return func(c *Client) {
		c.adminPolicy = policy
	}
}

// WithSinks appends event sinks. Sinks observe command lifecycle events and
// can never affect command outcomes.
func WithSinks(sinks ...events.Sink) Option {
	return func(c *Client) {
		c.sinks = append(c.sinks, sinks...)
	}
}

// WithMetrics adds the Prometheus metrics sink.
func WithMetrics() Option {
	return func(c *Client) {
		c.sinks = append(c.sinks, events.NewMetricsSink())
	}
}

// Client is the root handle. It is immutable after construction and safe for
// concurrent use; all per-call state lives in the operations themselves.
type Client struct {
	endpoint   string
	token      TokenProvider
	httpClient *http.Client
	logger     *slog.Logger

	defaults timeouts.Descriptor
	override *timeouts.Override

	dataPolicy  retry.Policy
	adminPolicy retry.Policy

	sinks  events.Sinks
	tracer trace.Tracer
}

// New creates a Client for the given Data API endpoint. The endpoint is the
// database URL without the /api/json suffix; a trailing slash is tolerated.
// Panics if token is nil.
func New(endpoint string, token TokenProvider, opts ...Option) *Client {
	assert.NotNil(token, "client.New: token provider is nil")

	c := &Client{
		endpoint: strings.TrimSuffix(endpoint, "/"),
		token:    token,
		defaults: timeouts.Defaults(),
		tracer:   otel.Tracer(tracerName),
	}

	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	if c.httpClient == nil {
		rt := transport.NewDecompressor(transport.Get())
		c.httpClient = &http.Client{
			Transport: transport.NewLogging(rt, c.logger),
		}
	}

	if c.logger != nil {
		c.sinks = append(c.sinks, events.NewLogSink(c.logger))
	}

	return c
}

// Endpoint returns the configured endpoint with any trailing slash removed.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// HandleOption configures a Database or Collection handle.
type HandleOption func(*handleConfig)

type handleConfig struct {
	override *timeouts.Override
	policy   retry.Policy
}

// WithHandleTimeouts sets the handle-level timeout override.
func WithHandleTimeouts(override *timeouts.Override) HandleOption {
	return func(cfg *handleConfig) {
		cfg.override = override
	}
}

// WithHandleRetry sets the handle-level retry policy override.
func WithHandleRetry(policy retry.Policy) HandleOption {
	return func(cfg *handleConfig) {
		cfg.policy = policy
	}
}

func readHandleOptions(opts []HandleOption) *handleConfig {
	cfg := &handleConfig{}

	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}

	return cfg
}

// Database scopes the client to a keyspace.
func (c *Client) Database(keyspace string, opts ...HandleOption) *Database {
	assert.True(keyspace != "", "client.Database: keyspace is empty")

	cfg := readHandleOptions(opts)

	return &Database{
		client:   c,
		keyspace: keyspace,
		override: cfg.override,
		policy:   cfg.policy,
	}
}

func (c *Client) policySlot(admin bool) retry.Policy {
	if admin {
		return c.adminPolicy
	}

	return c.dataPolicy
}
