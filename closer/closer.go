// Package closer provides small utilities for managing io.Closer resources.
// The transport layer uses it to tie a decompressing body reader and the
// underlying network body together so both are released in order.
package closer

import (
	"errors"
	"io"
)

// Closer is a collector that manages multiple io.Closer instances and closes
// them all at once, in the order they were added. Nil closers are skipped.
type Closer struct {
	closers []io.Closer
}

// Add appends an io.Closer to the collection.
func (c *Closer) Add(closer io.Closer) {
	c.closers = append(c.closers, closer)
}

// Close closes all registered closers. Every closer is attempted even when an
// earlier one fails; the failures are joined into a single error.
func (c *Closer) Close() error {
	var errs []error

	for _, closer := range c.closers {
		if closer != nil {
			if err := closer.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// readCloser pairs a reader with an independent closer.
type readCloser struct {
	io.Reader
	io.Closer
}

// ForReader combines a reader with a closer into an io.ReadCloser. Reads go to
// the reader; Close goes to the closer. This lets a wrapped body reader carry
// the cleanup for both itself and the resource it wraps.
func ForReader(r io.Reader, c io.Closer) io.ReadCloser {
	return &readCloser{Reader: r, Closer: c}
}

// Func adapts a plain cleanup function into an io.Closer.
func Func(closeFn func() error) io.Closer {
	if closeFn == nil {
		return nil
	}

	return &funcCloser{closeFn: closeFn}
}

type funcCloser struct {
	closeFn func() error
}

func (c *funcCloser) Close() error {
	return c.closeFn()
}
