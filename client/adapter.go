package client

import (
	"context"
	"errors"
	"time"

	"github.com/amp-labs/dataapi-go/api"
	"github.com/amp-labs/dataapi-go/events"
	"github.com/amp-labs/dataapi-go/retry"
)

// familyAdapter is the retry.Adapter for one API family. The data plane and
// the control plane differ only in their timeout error type and policy slot.
type familyAdapter struct {
	admin   bool
	slot    retry.Policy
	sinks   events.Sinks
	command string
}

var _ retry.Adapter = (*familyAdapter)(nil)

func (a *familyAdapter) ResolvePolicy(override retry.Policy) retry.Policy {
	if override != nil {
		return override
	}

	return a.slot
}

func (a *familyAdapter) NewContext(
	base retry.Base,
	attempt int,
	elapsed time.Duration,
	err error,
) *retry.Context {
	return &retry.Context{
		Attempt: attempt,
		Err:     err,
		Elapsed: elapsed,
		Base:    base,
	}
}

func (a *familyAdapter) IsTimeout(err error) bool {
	if a.admin {
		var adminTimeout *api.AdminTimeoutError

		return errors.As(err, &adminTimeout)
	}

	var timeout *api.TimeoutError

	return errors.As(err, &timeout)
}

func (a *familyAdapter) OnRetry(rctx *retry.Context, delay time.Duration, willRetry bool) {
	a.sinks.CommandRetried(context.Background(), events.CommandRetried{
		RequestID: rctx.RequestID,
		Command:   a.command,
		Attempt:   uint(rctx.Attempt),
		Delay:     delay,
		Err:       rctx.Err,
		WillRetry: willRetry,
	})
}
