package client_test

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"go.opentelemetry.io/otel"

	"github.com/amp-labs/dataapi-go/api"
	"github.com/amp-labs/dataapi-go/client"
	"github.com/amp-labs/dataapi-go/events"
	"github.com/amp-labs/dataapi-go/retry"
	"github.com/amp-labs/dataapi-go/timeouts"
)

func TestNewPanicsWithoutToken(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		client.New("https://db.example.com", nil)
	})
}

func TestDatabasePanicsOnEmptyKeyspace(t *testing.T) {
	t.Parallel()

	c := client.New("https://db.example.com", client.StaticToken("t"))

	assert.Panics(t, func() {
		c.Database("")
	})
}

func TestEndpointTrailingSlashTrimmed(t *testing.T) {
	t.Parallel()

	c := client.New("https://db.example.com/", client.StaticToken("t"))

	assert.Equal(t, "https://db.example.com", c.Endpoint())
}

func TestListCollections(t *testing.T) {
	t.Parallel()

	fake := &fakeAPI{handle: func(n int, cmd wireCommand) (int, string) {
		return http.StatusOK, `{"status": {"collections": ["docs", "vectors"]}}`
	}}

	db := newTestClient(t, fake).Database("ks")

	names, err := db.ListCollections(t.Context(), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"docs", "vectors"}, names)

	cmd := fake.command(t, 0)
	assert.Equal(t, "findCollections", cmd.Name)
	assert.Equal(t, "/api/json/v1/ks", cmd.Path)
}

func TestListCollectionsTimeoutIsAdminFlavored(t *testing.T) {
	t.Parallel()

	blocking := &http.Client{Transport: blockingTransport()}

	c := client.New("https://db.example.com", client.StaticToken("t"),
		client.WithHTTPClient(blocking))

	_, err := c.Database("ks").ListCollections(t.Context(), &client.CallOptions{
		Timeouts: timeouts.ProvidedOverride(25 * time.Millisecond),
	})

	var adminTimeout *api.AdminTimeoutError
	require.ErrorAs(t, err, &adminTimeout)
}

func blockingTransport() http.RoundTripper {
	return roundTripFunc(func(req *http.Request) (*http.Response, error) {
		<-req.Context().Done()

		return nil, req.Context().Err()
	})
}

type roundTripFunc func(req *http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// trackingSink records lifecycle events for assertions.
type trackingSink struct {
	mu        sync.Mutex
	started   int
	succeeded int
	failed    int
	retried   int
	pages     int
}

func (s *trackingSink) CommandStarted(context.Context, events.CommandStarted) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.started++
}

func (s *trackingSink) CommandSucceeded(context.Context, events.CommandSucceeded) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.succeeded++
}

func (s *trackingSink) CommandFailed(context.Context, events.CommandFailed) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failed++
}

func (s *trackingSink) CommandRetried(context.Context, events.CommandRetried) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.retried++
}

func (s *trackingSink) PageFetched(context.Context, events.PageFetched) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pages++
}

func (s *trackingSink) snapshot() (started, succeeded, failed, retried, pages int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.started, s.succeeded, s.failed, s.retried, s.pages
}

func TestLifecycleEventsEmitted(t *testing.T) {
	t.Parallel()

	fake := &fakeAPI{handle: func(n int, cmd wireCommand) (int, string) {
		if n == 0 {
			return http.StatusServiceUnavailable, ""
		}

		return http.StatusOK, `{"data": {"documents": [{"_id": "a"}]}}`
	}}

	sink := &trackingSink{}
	coll := newTestCollection(t, fake, client.WithSinks(sink),
		client.WithRetryPolicy(&retry.Fixed{Retries: 2, Wait: time.Millisecond}))

	docs, err := coll.Find(nil, nil).ToArray(t.Context())
	require.NoError(t, err)
	assert.Len(t, docs, 1)

	started, succeeded, failed, retried, pages := sink.snapshot()
	assert.Equal(t, 2, started, "one event per attempt")
	assert.Equal(t, 1, succeeded)
	assert.Zero(t, failed)
	assert.Equal(t, 1, retried)
	assert.Equal(t, 1, pages)
}

func TestCommandSpansRecorded(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	fake := &fakeAPI{handle: func(n int, cmd wireCommand) (int, string) {
		return http.StatusOK, `{"status": {"count": 1}}`
	}}

	coll := newTestCollection(t, fake)

	_, err := coll.CountDocuments(t.Context(), nil, 10, nil)
	require.NoError(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "dataapi.countDocuments", spans[0].Name())

	attrs := spans[0].Attributes()

	found := false
	for _, attr := range attrs {
		if string(attr.Key) == "db.collection" {
			found = true

			assert.Equal(t, "docs", attr.Value.AsString())
		}
	}

	assert.True(t, found, "span carries the collection attribute")
}

func TestHandleLevelTimeoutApplies(t *testing.T) {
	t.Parallel()

	blocking := &http.Client{Transport: blockingTransport()}

	c := client.New("https://db.example.com", client.StaticToken("t"),
		client.WithHTTPClient(blocking))

	coll := client.CollectionOf[map[string]any](c.Database("ks"), "docs",
		client.WithHandleTimeouts(timeouts.ProvidedOverride(20*time.Millisecond)))

	start := time.Now()
	_, err := coll.FindOne(t.Context(), nil, nil)

	var timeoutErr *api.TimeoutError
	require.ErrorAs(t, err, &timeoutErr)
	assert.Less(t, time.Since(start), 5*time.Second)
}
