package retry

import (
	"time"

	"github.com/amp-labs/dataapi-go/timeouts"
)

// Base holds the per-logical-call facts that every retry decision sees.
// It is built once when the call starts and never mutated.
type Base struct {
	// SafelyRetryable marks the operation as idempotent. Idempotent calls may
	// retry non-protocol errors (network failures, resets) unconditionally;
	// non-idempotent calls only retry protocol errors that carry an explicit
	// retryable flag.
	SafelyRetryable bool

	// Timeouts is the budget snapshot in force for the call.
	Timeouts timeouts.Descriptor

	// RequestID correlates all attempts of the call in logs and events.
	RequestID string

	// UserData is a free-form bag for custom policies; the core never reads it.
	UserData map[string]any
}

// Context is the ephemeral value a Policy inspects for one retry decision.
// A fresh Context is constructed for every failed attempt; only the attempt
// counter on the owning call advances between them.
type Context struct {
	// Attempt is the number of retries performed so far (0 on the first
	// failure).
	Attempt int

	// Err is the error that triggered the decision.
	Err error

	// Elapsed is the wall-clock duration of the failed attempt.
	Elapsed time.Duration

	Base
}

// RetryableError is implemented by protocol errors that carry the server's
// explicit "safe to retry" flag. Errors without it are treated as carrying no
// signal at all, which matters for non-idempotent calls.
type RetryableError interface {
	error
	Retryable() bool
}

// Adapter supplies the per-protocol pieces of the retry loop. There is one
// implementation per API family (data plane, control plane).
type Adapter interface {
	// ResolvePolicy picks the policy for this call from the caller override
	// and the family's configured slot. Returning nil or Never makes the
	// orchestrator a pass-through.
	ResolvePolicy(override Policy) Policy

	// NewContext builds the ephemeral decision context for a failed attempt.
	NewContext(base Base, attempt int, elapsed time.Duration, err error) *Context

	// IsTimeout reports whether err is the family's timeout error. Timeouts
	// are never retried.
	IsTimeout(err error) bool

	// OnRetry is the family's event hook, invoked after each retry decision.
	// willRetry is false when the decision declined and the original error is
	// about to surface. Hooks are observability only and must not affect
	// control flow.
	OnRetry(ctx *Context, delay time.Duration, willRetry bool)
}
