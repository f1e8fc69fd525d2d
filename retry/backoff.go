package retry

import (
	"math"
	"math/rand"
	"time"
)

// delay calculates the exponential backoff delay for the given attempt.
// The formula is Base * Factor^attempt, clamped between Base and Max.
func (p *Backoff) delay(attempt uint) time.Duration {
	f := float64(p.Base) * math.Pow(p.Factor, float64(attempt))

	d := time.Duration(f)
	if d < p.Base {
		return p.Base
	} else if d > p.Max {
		return p.Max
	}

	return d
}

// Jitter is the amount of randomness applied to a backoff delay:
//   - Negative values disable jitter (exact delay)
//   - 0.5 blends 50% random with 50% deterministic delay
//   - 1.0 is fully random between 0 and the delay
type Jitter float64

// EqualJitter blends half-random with half-deterministic delay:
// delay/2 + random(0, delay/2).
const EqualJitter Jitter = 0.5

// FullJitter is fully random between 0 and the calculated delay.
const FullJitter Jitter = 1.0

// WithoutJitter uses the exact calculated delay. Useful in tests where
// deterministic pacing matters.
const WithoutJitter Jitter = -1.0

// jitter applies the strategy to the given delay.
func (j Jitter) jitter(d time.Duration) time.Duration {
	if j < 0.0 {
		return d
	}

	//nolint:gosec // G404: math/rand is sufficient for jitter
	r := rand.Float64() * float64(d)

	if j > 0.0 && j < 1.0 {
		r = float64(j)*r + float64(1.0-j)*float64(d)
	}

	return time.Duration(r)
}
