package retry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/amp-labs/dataapi-go/timeouts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAdapter is a minimal per-protocol adapter for exercising the loop.
type fakeAdapter struct {
	policy   Policy
	retried  int
	declined int
}

func (a *fakeAdapter) ResolvePolicy(override Policy) Policy {
	if override != nil {
		return override
	}

	return a.policy
}

func (a *fakeAdapter) NewContext(base Base, attempt int, elapsed time.Duration, err error) *Context {
	return &Context{Attempt: attempt, Err: err, Elapsed: elapsed, Base: base}
}

func (a *fakeAdapter) IsTimeout(err error) bool {
	var te *timeouts.Error

	return errors.As(err, &te)
}

func (a *fakeAdapter) OnRetry(ctx *Context, delay time.Duration, willRetry bool) {
	if willRetry {
		a.retried++
	} else {
		a.declined++
	}
}

// protocolError mimics a server response error with an explicit retryable flag.
type protocolError struct {
	msg       string
	retryable bool
}

func (e *protocolError) Error() string   { return e.msg }
func (e *protocolError) Retryable() bool { return e.retryable }

func testManager() *timeouts.Manager {
	return timeouts.Single(timeouts.Defaults(), timeouts.CategoryGeneralMethod, nil)
}

func fastPolicy(retries int) Policy {
	return &Fixed{Retries: retries, Wait: time.Millisecond}
}

func TestRun_SuccessFirstAttempt(t *testing.T) {
	t.Parallel()

	adapter := &fakeAdapter{policy: Default()}
	orch := New(adapter, Base{SafelyRetryable: true}, nil, nil)

	calls := 0
	out, err := Run(t.Context(), orch, testManager(), timeouts.RequestInfo{},
		func(ctx context.Context, budget time.Duration, mkErr timeouts.ErrorFactory) (string, error) {
			calls++

			return "ok", nil
		})

	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, 1, calls)
	assert.Zero(t, adapter.retried)
}

func TestRun_DefaultPolicyExhaustsAfterFourInvocations(t *testing.T) {
	t.Parallel()

	adapter := &fakeAdapter{policy: &Fixed{Retries: 3, Wait: time.Millisecond}}
	orch := New(adapter, Base{SafelyRetryable: true}, nil, nil)

	permanent := errors.New("connection reset")

	calls := 0
	_, err := Run(t.Context(), orch, testManager(), timeouts.RequestInfo{},
		func(ctx context.Context, budget time.Duration, mkErr timeouts.ErrorFactory) (string, error) {
			calls++

			return "", permanent
		})

	require.Error(t, err)
	assert.Equal(t, permanent, err, "original error must surface unwrapped")
	assert.Equal(t, 4, calls, "initial attempt plus three retries")
	assert.Equal(t, 3, adapter.retried)
	assert.Equal(t, 1, adapter.declined)
}

func TestRun_NeverPolicyIsPassThrough(t *testing.T) {
	t.Parallel()

	adapter := &fakeAdapter{policy: Never}
	orch := New(adapter, Base{SafelyRetryable: true}, nil, nil)

	boom := errors.New("boom")

	calls := 0
	_, err := Run(t.Context(), orch, testManager(), timeouts.RequestInfo{},
		func(ctx context.Context, budget time.Duration, mkErr timeouts.ErrorFactory) (int, error) {
			calls++

			return 0, boom
		})

	require.Equal(t, boom, err)
	assert.Equal(t, 1, calls)
	assert.Zero(t, adapter.retried)
	assert.Zero(t, adapter.declined, "pass-through emits no events")
}

func TestRun_TimeoutsAreNeverRetried(t *testing.T) {
	t.Parallel()

	adapter := &fakeAdapter{policy: fastPolicy(5)}
	orch := New(adapter, Base{SafelyRetryable: true}, nil, nil)

	calls := 0
	_, err := Run(t.Context(), orch, testManager(), timeouts.RequestInfo{},
		func(ctx context.Context, budget time.Duration, mkErr timeouts.ErrorFactory) (int, error) {
			calls++

			return 0, mkErr()
		})

	var te *timeouts.Error

	require.ErrorAs(t, err, &te)
	assert.Equal(t, 1, calls)
	assert.Equal(t, 1, adapter.declined)
}

func TestRun_RetrySignal(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name            string
		safelyRetryable bool
		err             error
		wantCalls       int
	}{
		{
			name:            "idempotent call retries network errors",
			safelyRetryable: true,
			err:             errors.New("broken pipe"),
			wantCalls:       3,
		},
		{
			name:            "idempotent call needs flag on protocol errors",
			safelyRetryable: true,
			err:             &protocolError{msg: "server error", retryable: false},
			wantCalls:       1,
		},
		{
			name:            "idempotent call retries flagged protocol errors",
			safelyRetryable: true,
			err:             &protocolError{msg: "server busy", retryable: true},
			wantCalls:       3,
		},
		{
			name:            "non-idempotent call never retries network errors",
			safelyRetryable: false,
			err:             errors.New("broken pipe"),
			wantCalls:       1,
		},
		{
			name:            "non-idempotent call retries flagged protocol errors",
			safelyRetryable: false,
			err:             &protocolError{msg: "server busy", retryable: true},
			wantCalls:       3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			adapter := &fakeAdapter{policy: fastPolicy(2)}
			orch := New(adapter, Base{SafelyRetryable: tt.safelyRetryable}, nil, nil)

			calls := 0
			_, err := Run(t.Context(), orch, testManager(), timeouts.RequestInfo{},
				func(ctx context.Context, budget time.Duration, mkErr timeouts.ErrorFactory) (int, error) {
					calls++

					return 0, tt.err
				})

			require.Equal(t, tt.err, err)
			assert.Equal(t, tt.wantCalls, calls)
		})
	}
}

// vetoPolicy allows everything except its own final say.
type vetoPolicy struct{ Fixed }

func (p *vetoPolicy) ShouldRetry(*Context) bool { return false }

func TestRun_PolicyVetoConsultedLast(t *testing.T) {
	t.Parallel()

	adapter := &fakeAdapter{policy: &vetoPolicy{Fixed{Retries: 5, Wait: time.Millisecond}}}
	orch := New(adapter, Base{SafelyRetryable: true}, nil, nil)

	calls := 0
	_, err := Run(t.Context(), orch, testManager(), timeouts.RequestInfo{},
		func(ctx context.Context, budget time.Duration, mkErr timeouts.ErrorFactory) (int, error) {
			calls++

			return 0, errors.New("transient")
		})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestRun_CallerOverrideBeatsSlot(t *testing.T) {
	t.Parallel()

	adapter := &fakeAdapter{policy: fastPolicy(5)}
	orch := New(adapter, Base{SafelyRetryable: true}, Never, nil)

	calls := 0
	_, err := Run(t.Context(), orch, testManager(), timeouts.RequestInfo{},
		func(ctx context.Context, budget time.Duration, mkErr timeouts.ErrorFactory) (int, error) {
			calls++

			return 0, errors.New("transient")
		})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestRun_ResetTimeoutExtendsBudgetByDebt(t *testing.T) {
	t.Parallel()

	adapter := &fakeAdapter{policy: &Fixed{Retries: 2, Wait: 15 * time.Millisecond, ResetTimeout: true}}
	orch := New(adapter, Base{SafelyRetryable: true}, nil, nil)

	var budgets []time.Duration

	calls := 0
	_, err := Run(t.Context(), orch, testManager(), timeouts.RequestInfo{},
		func(ctx context.Context, budget time.Duration, mkErr timeouts.ErrorFactory) (int, error) {
			budgets = append(budgets, budget)
			calls++

			if calls < 3 {
				return 0, errors.New("transient")
			}

			return 1, nil
		})

	require.NoError(t, err)
	require.Len(t, budgets, 3)
	assert.Greater(t, budgets[1], budgets[0],
		"retry budget must be extended by the debt of the failed attempt and delay")
	assert.Greater(t, budgets[2], budgets[0])
}

func TestRun_ContextCanceledDuringDelay(t *testing.T) {
	t.Parallel()

	adapter := &fakeAdapter{policy: &Fixed{Retries: 3, Wait: time.Minute}}
	orch := New(adapter, Base{SafelyRetryable: true}, nil, nil)

	ctx, cancel := context.WithCancel(t.Context())

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := Run(ctx, orch, testManager(), timeouts.RequestInfo{},
		func(ctx context.Context, budget time.Duration, mkErr timeouts.ErrorFactory) (int, error) {
			return 0, errors.New("transient")
		})

	require.ErrorIs(t, err, context.Canceled)
}

func TestRun_AttemptCounterAdvances(t *testing.T) {
	t.Parallel()

	adapter := &fakeAdapter{policy: fastPolicy(2)}
	orch := New(adapter, Base{SafelyRetryable: true}, nil, nil)

	var seen []int

	_, _ = Run(t.Context(), orch, testManager(), timeouts.RequestInfo{},
		func(ctx context.Context, budget time.Duration, mkErr timeouts.ErrorFactory) (int, error) {
			seen = append(seen, orch.Attempts())

			return 0, fmt.Errorf("attempt %d failed", len(seen))
		})

	assert.Equal(t, []int{0, 1, 2}, seen)
	assert.Equal(t, 2, orch.Attempts())
}
