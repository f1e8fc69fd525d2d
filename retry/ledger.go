package retry

import (
	"time"

	"go.uber.org/atomic"
)

// Ledger accounts for wall-clock time spent inside failed attempts and
// backoff delays ("debt"). Extending a deadline by the accumulated debt is
// what keeps a retried call from silently shrinking below the advertised
// budget.
//
// One Ledger may be shared by overlapping in-flight attempts of the same
// logical call. Each attempt charges its own failures and folds its share
// back on success, so a sibling's deadline reset never steals budget from a
// call that didn't spend any. The clock only fully resets when the last
// overlapping attempt finishes.
type Ledger struct {
	inFlight atomic.Int32
	debt     atomic.Int64
}

// Enter registers an in-flight attempt sequence.
func (l *Ledger) Enter() {
	l.inFlight.Inc()
}

// Exit deregisters an attempt sequence. When the last one leaves, the
// accumulated debt is cleared.
func (l *Ledger) Exit() {
	if l.inFlight.Dec() == 0 {
		l.debt.Store(0)
	}
}

// Charge adds wall-clock time spent on a failed attempt or a backoff delay.
func (l *Ledger) Charge(d time.Duration) {
	if d > 0 {
		l.debt.Add(int64(d))
	}
}

// Forgive removes a caller's own contribution after its attempt succeeded,
// so concurrently in-flight siblings are not double-charged. The ledger never
// goes negative.
func (l *Ledger) Forgive(d time.Duration) {
	if d <= 0 {
		return
	}

	for {
		cur := l.debt.Load()

		next := cur - int64(d)
		if next < 0 {
			next = 0
		}

		if l.debt.CAS(cur, next) {
			return
		}
	}
}

// Debt returns the currently outstanding debt.
func (l *Ledger) Debt() time.Duration {
	return time.Duration(l.debt.Load())
}
