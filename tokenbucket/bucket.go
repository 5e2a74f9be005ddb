// Package tokenbucket implements a per-key token bucket rate limiter.
// Each key gets its own bucket: a capped reservoir of tokens that refills at
// a fixed rate over time. Every admitted request consumes one token.
package tokenbucket

import "time"

// bucket holds the token bucket state for a single key. It is owned by the
// limiter's map entry and is only touched with the limiter's mutex held.
type bucket struct {
	capacity       int
	tokens         int
	refillRate     int
	refillInterval time.Duration
	lastFilled     time.Time

	allowed uint64
	denied  uint64
}

func newBucket(capacity, refillRate int, refillInterval time.Duration, now time.Time) *bucket {
	return &bucket{
		capacity: capacity,
		// Start full: a first-seen key gets its whole burst allowance.
		tokens:         capacity,
		refillRate:     refillRate,
		refillInterval: refillInterval,
		lastFilled:     now,
	}
}

// refill reconciles the token count with the wall-clock time elapsed since
// lastFilled. Only whole intervals are credited; the fractional remainder is
// carried forward by anchoring lastFilled to now minus the remainder.
// Setting lastFilled = now would throw the remainder away on every call, so
// rapid repeated calls could starve the bucket forever. Advancing lastFilled
// by whole intervals relative to its old value instead drifts away from the
// wall clock over long runs. Invariant after every call: the unaccounted time
// since lastFilled is strictly less than one refillInterval.
func (b *bucket) refill(now time.Time) {
	elapsed := now.Sub(b.lastFilled)
	if elapsed < b.refillInterval {
		return
	}

	intervals := int64(elapsed / b.refillInterval)
	if intervals >= int64(b.capacity) || intervals*int64(b.refillRate) >= int64(b.capacity-b.tokens) {
		// Accumulated credit beyond capacity is discarded, not carried forward.
		b.tokens = b.capacity
	} else {
		b.tokens += int(intervals) * b.refillRate
	}

	b.lastFilled = now.Add(-(elapsed % b.refillInterval))
}

// request refills the bucket from elapsed time, then consumes one token if
// available. Deterministic given now and prior state.
func (b *bucket) request(now time.Time) bool {
	b.refill(now)

	if b.tokens > 0 {
		b.tokens--
		b.allowed++
		return true
	}

	b.denied++
	return false
}
