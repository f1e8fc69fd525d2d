package retry

import (
	"context"
	"errors"
	"time"

	"github.com/amp-labs/dataapi-go/assert"
	"github.com/amp-labs/dataapi-go/timeouts"
	"go.uber.org/atomic"
)

// Operation is the wrapped, fallible, time-bounded call. budget is the
// current attempt's deadline from the timeout manager; mkErr builds the
// protocol's timeout error if that budget elapses. The operation must honor
// the budget itself (typically via context.WithTimeout) and return mkErr()'s
// error when it does elapse.
type Operation[T any] func(ctx context.Context, budget time.Duration, mkErr timeouts.ErrorFactory) (T, error)

// Orchestrator drives the retry loop for one logical call. It is constructed
// per call; the attempt counter and the debt ledger are the only state shared
// across overlapping attempts.
type Orchestrator struct {
	adapter  Adapter
	policy   Policy
	base     Base
	attempts *atomic.Int64
	ledger   *Ledger
}

// New builds an Orchestrator for one logical call. The adapter resolves the
// effective policy from the caller override and its own configured slot; a
// nil ledger gets a private one, while callers that hedge overlapping
// attempts pass a shared ledger so debt is attributed once.
func New(adapter Adapter, base Base, override Policy, ledger *Ledger) *Orchestrator {
	assert.NotNil(adapter, "retry.New: adapter is nil")

	if ledger == nil {
		ledger = &Ledger{}
	}

	return &Orchestrator{
		adapter:  adapter,
		policy:   adapter.ResolvePolicy(override),
		base:     base,
		attempts: atomic.NewInt64(0),
		ledger:   ledger,
	}
}

// Attempts returns the number of retries performed so far on this call.
func (o *Orchestrator) Attempts() int {
	return int(o.attempts.Load())
}

// Run executes op through the orchestrator's retry loop.
//
// When no policy resolves (or the explicit Never policy does), Run degenerates
// to a single pass-through invocation. Otherwise, each failed attempt is
// charged to the debt ledger and judged: timeouts are never retried, the
// error must carry a recognized retry signal for the call's idempotency, the
// policy caps attempts and can veto. A rejected attempt surfaces the original
// error unwrapped. When the policy asks to reset the timeout, the next
// attempt's budget is extended by the outstanding debt so retries don't
// silently shrink below the advertised deadline.
func Run[T any](
	ctx context.Context,
	o *Orchestrator,
	tm *timeouts.Manager,
	info timeouts.RequestInfo,
	op Operation[T],
) (T, error) {
	var zero T

	if o.policy == nil || o.policy == Never {
		info.Attempt = 0

		budget, mkErr := tm.Advance(info)

		return op(ctx, budget, mkErr)
	}

	o.ledger.Enter()
	defer o.ledger.Exit()

	var localDebt, extension time.Duration

	for {
		attempt := int(o.attempts.Load())
		info.Attempt = attempt

		budget, mkErr := tm.Advance(info)
		budget += extension
		extension = 0

		start := time.Now()
		out, err := op(ctx, budget, mkErr)
		elapsed := time.Since(start)

		if err == nil {
			// Fold this call's debt back so overlapping siblings aren't
			// double-charged by a success they didn't pay for.
			o.ledger.Forgive(localDebt)

			return out, nil
		}

		o.ledger.Charge(elapsed)
		localDebt += elapsed

		rctx := o.adapter.NewContext(o.base, attempt, elapsed, err)

		if attempt >= o.policy.MaxRetries(rctx) ||
			o.adapter.IsTimeout(err) ||
			!carriesRetrySignal(err, o.base.SafelyRetryable) ||
			!o.policy.ShouldRetry(rctx) {
			o.adapter.OnRetry(rctx, 0, false)

			return zero, err
		}

		o.attempts.Inc()

		delay := o.policy.Delay(rctx)
		o.adapter.OnRetry(rctx, delay, true)

		if delay > 0 {
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()

				return zero, ctx.Err()
			case <-timer.C:
			}

			o.ledger.Charge(delay)
			localDebt += delay
		}

		if o.policy.ShouldResetTimeout(rctx) {
			extension = o.ledger.Debt()
		}
	}
}

// carriesRetrySignal decides whether the error carries a recognized "safe to
// retry" signal, given the call's idempotency. Protocol errors must carry the
// explicit flag either way; non-protocol errors (network failures) are only
// retryable when the call itself is idempotent.
func carriesRetrySignal(err error, safelyRetryable bool) bool {
	var protocolErr RetryableError
	if !errors.As(err, &protocolErr) {
		return safelyRetryable
	}

	return protocolErr.Retryable()
}
