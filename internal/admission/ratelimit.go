package admission

import "time"

// windowLength is the fixed rate-limit window.
const windowLength = 60 * time.Second

// rateWindow is a reset-on-expiry sliding window counter: the count resets
// to zero once the elapsed time since the window start exceeds the window
// length, rather than continuously sliding. Bursts at a window boundary can
// briefly reach up to twice the nominal quota; that is the accepted
// trade-off for O(1) memory and update cost.
//
// rateWindow is not safe for concurrent use on its own; it lives inside
// ConnState and is mutated under the connection's lock.
type rateWindow struct {
	count       int
	windowStart time.Time
}

// advance counts one message at the given instant and compares the
// post-increment count against the limit. The triggering message itself
// counts toward, and can itself exceed, the quota.
func (w *rateWindow) advance(now time.Time, limit int) (count int, exceeded bool) {
	if w.windowStart.IsZero() || now.Sub(w.windowStart) > windowLength {
		w.count = 0
		w.windowStart = now
	}
	w.count++
	return w.count, w.count > limit
}
