// Package retry orchestrates re-execution of failed, time-bounded Data API
// calls. A Policy decides whether a failed attempt may be retried and how long
// to wait; an Adapter supplies the per-protocol pieces (context construction,
// timeout-error detection, event hooks); the Orchestrator runs the loop and
// keeps the timeout-debt ledger so retries do not silently shrink the
// advertised deadline.
package retry

import "time"

const (
	defaultMaxRetries = 3
	defaultDelay      = 100 * time.Millisecond
)

// Policy decides retry eligibility and pacing for one protocol family.
// All methods receive the ephemeral Context for the failed attempt.
type Policy interface {
	// MaxRetries is the number of retries allowed after the initial attempt.
	MaxRetries(ctx *Context) int

	// Delay is how long to wait before the next attempt. Zero skips the wait.
	Delay(ctx *Context) time.Duration

	// ShouldRetry is consulted last and can veto a retry that every other
	// check allowed.
	ShouldRetry(ctx *Context) bool

	// ShouldResetTimeout reports whether the remaining deadline should be
	// extended by the debt accumulated for this logical call, so the retried
	// attempt still sees the advertised budget.
	ShouldResetTimeout(ctx *Context) bool
}

// Never is the explicit "never retry" policy. Resolving to it degenerates the
// orchestrator into a pass-through that invokes the operation exactly once.
var Never Policy = neverPolicy{}

type neverPolicy struct{}

func (neverPolicy) MaxRetries(*Context) int          { return 0 }
func (neverPolicy) Delay(*Context) time.Duration     { return 0 }
func (neverPolicy) ShouldRetry(*Context) bool        { return false }
func (neverPolicy) ShouldResetTimeout(*Context) bool { return false }

// Fixed is a policy with a fixed retry count and a fixed delay.
type Fixed struct {
	// Retries is the number of retries after the initial attempt.
	Retries int

	// Wait is the fixed delay between attempts.
	Wait time.Duration

	// ResetTimeout extends the deadline by accumulated debt on each retry.
	ResetTimeout bool
}

func (p *Fixed) MaxRetries(*Context) int          { return p.Retries }
func (p *Fixed) Delay(*Context) time.Duration     { return p.Wait }
func (p *Fixed) ShouldRetry(*Context) bool        { return true }
func (p *Fixed) ShouldResetTimeout(*Context) bool { return p.ResetTimeout }

// Default returns the stock policy: three retries with a short fixed delay.
func Default() Policy {
	return &Fixed{Retries: defaultMaxRetries, Wait: defaultDelay}
}

// Backoff is a policy that paces retries with exponential backoff and jitter.
type Backoff struct {
	// Retries is the number of retries after the initial attempt.
	Retries int

	// Base is the initial delay; Max caps it; Factor is the per-attempt
	// multiplier (2.0 doubles the delay each retry).
	Base   time.Duration
	Max    time.Duration
	Factor float64

	// Jitter randomizes the delay to avoid thundering herds.
	Jitter Jitter

	// ResetTimeout extends the deadline by accumulated debt on each retry.
	ResetTimeout bool
}

func (p *Backoff) MaxRetries(*Context) int { return p.Retries }

func (p *Backoff) Delay(ctx *Context) time.Duration {
	return p.Jitter.jitter(p.delay(uint(ctx.Attempt)))
}

func (p *Backoff) ShouldRetry(*Context) bool        { return true }
func (p *Backoff) ShouldResetTimeout(*Context) bool { return p.ResetTimeout }
