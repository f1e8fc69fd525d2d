package cursor

import (
	"context"
	"errors"
	"iter"
)

// ToArray drains the cursor into a slice and closes it. A closed or
// exhausted cursor yields an empty (non-nil) slice; re-running requires
// Rewind or Clone.
func (c *Cursor[R, T]) ToArray(ctx context.Context) ([]T, error) {
	defer c.Close()

	out := []T{}

	for {
		v, err := c.Next(ctx)
		if errors.Is(err, ErrNoMoreDocuments) {
			return out, nil
		}

		if err != nil {
			return nil, err
		}

		out = append(out, v)
	}
}

// ForEach applies f to each item in order. Returning false from f stops
// early. The cursor is closed on exhaustion, early stop, or error alike.
func (c *Cursor[R, T]) ForEach(ctx context.Context, f func(item T) (bool, error)) error {
	defer c.Close()

	for {
		v, err := c.Next(ctx)
		if errors.Is(err, ErrNoMoreDocuments) {
			return nil
		}

		if err != nil {
			return err
		}

		cont, err := f(v)
		if err != nil {
			return err
		}

		if !cont {
			return nil
		}
	}
}

// Documents returns a range-over-func iterator over the cursor's items.
// Breaking out of the loop closes the cursor, same as natural exhaustion, so
// a second range over the same cursor yields nothing without Rewind or Clone.
//
//	for doc, err := range c.Documents(ctx) {
//	    if err != nil { ... }
//	    ...
//	}
func (c *Cursor[R, T]) Documents(ctx context.Context) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		defer c.Close()

		for {
			v, err := c.Next(ctx)
			if errors.Is(err, ErrNoMoreDocuments) {
				return
			}

			if err != nil {
				var zero T

				yield(zero, err)

				return
			}

			if !yield(v, nil) {
				return
			}
		}
	}
}
