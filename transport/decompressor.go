package transport

import (
	"net/http"

	"github.com/fereidani/httpdecompressor"

	"github.com/amp-labs/dataapi-go/assert"
	"github.com/amp-labs/dataapi-go/closer"
)

// NewDecompressor wraps a round tripper so compressed response bodies are
// transparently decompressed based on the Content-Encoding header. Panics if
// roundTripper is nil.
func NewDecompressor(roundTripper http.RoundTripper) http.RoundTripper {
	assert.NotNil(roundTripper, "NewDecompressor: roundTripper is nil")

	return &decompressor{roundTripper: roundTripper}
}

type decompressor struct {
	roundTripper http.RoundTripper
}

var _ http.RoundTripper = (*decompressor)(nil)

func (d *decompressor) RoundTrip(request *http.Request) (*http.Response, error) {
	rsp, err := d.roundTripper.RoundTrip(request)
	if err != nil {
		return rsp, err
	}

	origBody := rsp.Body

	bodyReader, err := httpdecompressor.Reader(rsp)
	if err != nil {
		return nil, err
	}

	if bodyReader == origBody {
		return rsp, nil
	}

	// Closing the replacement body must release both the decoder and the
	// underlying connection, decoder first.
	multiCloser := &closer.Closer{}
	multiCloser.Add(bodyReader)
	multiCloser.Add(origBody)

	rsp.Body = closer.ForReader(bodyReader, multiCloser)

	return rsp, nil
}
