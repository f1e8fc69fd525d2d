package transport

import "net/http"

// Option configures transport construction.
type Option func(*config)

type config struct {
	overrides      []http.RoundTripper
	disablePooling bool
	enableDNSCache bool
	insecureTLS    bool
}

// DisableConnectionPooling turns off HTTP keep-alive and connection reuse.
func DisableConnectionPooling(c *config) {
	c.disablePooling = true
}

// EnableDNSCache routes lookups through a shared caching resolver. Useful
// for clients that hit the same database endpoint thousands of times.
func EnableDNSCache(c *config) {
	c.enableDNSCache = true
}

// InsecureTLS skips certificate verification. Local testing only.
func InsecureTLS(c *config) {
	c.insecureTLS = true
}

// WithOverride substitutes a custom round tripper for the built transport.
// The first non-nil override wins.
func WithOverride(transports ...http.RoundTripper) Option {
	return func(c *config) {
		c.overrides = append(c.overrides, transports...)
	}
}

func readOptions(opts ...Option) *config {
	cfg := &config{}

	for _, o := range opts {
		if o != nil {
			o(cfg)
		}
	}

	return cfg
}
