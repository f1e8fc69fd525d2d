// Package transport builds the HTTP transports the client speaks through:
// pooled connections, cached DNS, transparent response decompression, and
// request logging with redaction. Singleton instances are shared so every
// client in a process reuses the same connection pools.
package transport

import (
	"crypto/tls"
	"net"
	"net/http"
	"time"

	"github.com/amp-labs/dataapi-go/lazy"
)

const (
	defaultMaxIdleConns          = 100
	defaultIdleConnTimeout       = 90 * time.Second
	defaultTLSHandshakeTimeout   = 10 * time.Second
	defaultExpectContinueTimeout = 1 * time.Second
	defaultDialTimeout           = 30 * time.Second
	defaultKeepAlive             = 30 * time.Second
)

// New returns a fresh http.Transport built from the options. Prefer Get,
// which hands out shared singletons, unless the transport needs per-client
// tuning afterwards.
func New(options ...Option) *http.Transport {
	return create(readOptions(options...))
}

func create(cfg *config) *http.Transport {
	dialer := &net.Dialer{
		Timeout:   defaultDialTimeout,
		KeepAlive: defaultKeepAlive,
	}

	trans := &http.Transport{
		DialContext:           dialer.DialContext,
		MaxIdleConns:          defaultMaxIdleConns,
		IdleConnTimeout:       defaultIdleConnTimeout,
		TLSHandshakeTimeout:   defaultTLSHandshakeTimeout,
		ExpectContinueTimeout: defaultExpectContinueTimeout,
	}

	if cfg.disablePooling {
		trans.DisableKeepAlives = true
	}

	if cfg.enableDNSCache {
		useDNSCacheDialer(trans, defaultDialTimeout, defaultKeepAlive)
	}

	if cfg.insecureTLS {
		trans.TLSClientConfig = &tls.Config{
			InsecureSkipVerify: true, //nolint:gosec
		}
	}

	return trans
}

// Shared instances for the common configurations, created on first use.
var (
	pooledTransport = lazy.New[*http.Transport](func() *http.Transport {
		return create(&config{enableDNSCache: true})
	})

	unpooledTransport = lazy.New[*http.Transport](func() *http.Transport {
		return create(&config{disablePooling: true, enableDNSCache: true})
	})

	insecureTransport = lazy.New[*http.Transport](func() *http.Transport {
		return create(&config{enableDNSCache: true, insecureTLS: true})
	})
)

// Get returns a round tripper for the given options. Without overrides it
// hands out a shared singleton so connection pools are reused across
// clients; an override short-circuits everything else.
func Get(opts ...Option) http.RoundTripper {
	cfg := readOptions(opts...)

	for _, tr := range cfg.overrides {
		if tr != nil {
			return tr
		}
	}

	switch {
	case cfg.insecureTLS:
		return insecureTransport.Get()
	case cfg.disablePooling:
		return unpooledTransport.Get()
	default:
		return pooledTransport.Get()
	}
}
