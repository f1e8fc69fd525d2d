package client_test

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/amp-labs/dataapi-go/client"
	"github.com/amp-labs/dataapi-go/transport"
)

// wireCommand is one command the fake server received.
type wireCommand struct {
	Name  string
	Body  map[string]any
	Path  string
	Token string
}

// fakeAPI is an in-process Data API double. The handler receives the ordinal
// of the command and the command itself, and returns the HTTP status and the
// raw response body.
type fakeAPI struct {
	mu       sync.Mutex
	commands []wireCommand
	handle   func(n int, cmd wireCommand) (int, string)
}

func (f *fakeAPI) transport(t *testing.T) http.RoundTripper {
	t.Helper()

	return transport.NewCustom(func(req *http.Request) (*http.Response, error) {
		raw, err := io.ReadAll(req.Body)
		if err != nil {
			return nil, err
		}

		var wire map[string]map[string]any
		if err := json.Unmarshal(raw, &wire); err != nil {
			return nil, err
		}

		var cmd wireCommand
		for name, body := range wire {
			cmd = wireCommand{Name: name, Body: body}
		}

		cmd.Path = req.URL.Path
		cmd.Token = req.Header.Get("Token")

		f.mu.Lock()
		ordinal := len(f.commands)
		f.commands = append(f.commands, cmd)
		f.mu.Unlock()

		status, body := f.handle(ordinal, cmd)

		header := http.Header{}
		header.Set("Content-Type", "application/json")

		return &http.Response{
			StatusCode: status,
			Header:     header,
			Body:       io.NopCloser(strings.NewReader(body)),
		}, nil
	})
}

func (f *fakeAPI) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.commands)
}

func (f *fakeAPI) command(t *testing.T, n int) wireCommand {
	t.Helper()

	f.mu.Lock()
	defer f.mu.Unlock()

	require.Less(t, n, len(f.commands))

	return f.commands[n]
}

func newTestClient(t *testing.T, fake *fakeAPI, opts ...client.Option) *client.Client {
	t.Helper()

	all := append([]client.Option{
		client.WithHTTPClient(&http.Client{Transport: fake.transport(t)}),
	}, opts...)

	return client.New("https://db.example.com", client.StaticToken("AstraCS:test-token"), all...)
}

func newTestCollection(t *testing.T, fake *fakeAPI, opts ...client.Option) *client.Collection[map[string]any] {
	t.Helper()

	c := newTestClient(t, fake, opts...)

	return client.CollectionOf[map[string]any](c.Database("ks"), "docs")
}
