package transport

import (
	"fmt"
	"net/http"

	"github.com/amp-labs/dataapi-go/errors"
)

// NewCustom creates an http.RoundTripper from a bare function. Tests use it
// to fake the Data API without binding a listener. A nil function yields a
// transport that fails every request with ErrNotImplemented, which is handy
// for detecting unintended HTTP calls.
func NewCustom(roundTrip func(req *http.Request) (*http.Response, error)) http.RoundTripper {
	if roundTrip == nil {
		roundTrip = func(req *http.Request) (*http.Response, error) {
			return nil, fmt.Errorf("%w: RoundTrip", errors.ErrNotImplemented)
		}
	}

	return &customTransport{roundTrip: roundTrip}
}

type customTransport struct {
	roundTrip func(req *http.Request) (*http.Response, error)
}

var _ http.RoundTripper = (*customTransport)(nil)

func (c *customTransport) RoundTrip(request *http.Request) (*http.Response, error) {
	return c.roundTrip(request)
}
