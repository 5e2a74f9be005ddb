package tokenbucket

import (
	"testing"
	"time"
)

// fakeClock is a manually advanced clock so refill arithmetic can be tested
// without sleeping.
type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.t = c.t.Add(d)
}

func TestBucketStartsFull(t *testing.T) {
	clock := newFakeClock()
	b := newBucket(5, 1, time.Second, clock.Now())

	if b.tokens != 5 {
		t.Errorf("new bucket has %d tokens, want 5", b.tokens)
	}
}

func TestRefillCreditsWholeIntervalsOnly(t *testing.T) {
	clock := newFakeClock()
	b := newBucket(10, 2, time.Second, clock.Now())
	b.tokens = 0

	// Less than one interval: no credit.
	clock.Advance(999 * time.Millisecond)
	b.refill(clock.Now())
	if b.tokens != 0 {
		t.Errorf("tokens after 999ms = %d, want 0", b.tokens)
	}

	// Crosses into the second whole interval relative to lastFilled.
	clock.Advance(1001 * time.Millisecond)
	b.refill(clock.Now())
	if b.tokens != 4 {
		t.Errorf("tokens after 2s total = %d, want 4", b.tokens)
	}
}

func TestRefillCapsAtCapacity(t *testing.T) {
	clock := newFakeClock()
	b := newBucket(3, 10, time.Second, clock.Now())
	b.tokens = 1

	// 5 intervals * 10 tokens would be 50; excess credit is discarded.
	clock.Advance(5 * time.Second)
	b.refill(clock.Now())
	if b.tokens != 3 {
		t.Errorf("tokens = %d, want capacity 3", b.tokens)
	}
}

func TestRefillVeryLongIdlePeriod(t *testing.T) {
	clock := newFakeClock()
	b := newBucket(100, 1, time.Millisecond, clock.Now())
	b.tokens = 0

	// Billions of intervals must not overflow the token arithmetic.
	clock.Advance(24 * time.Hour)
	b.refill(clock.Now())
	if b.tokens != 100 {
		t.Errorf("tokens = %d, want capacity 100", b.tokens)
	}
}

func TestRefillRemainderInvariant(t *testing.T) {
	clock := newFakeClock()
	b := newBucket(10, 1, time.Second, clock.Now())

	advances := []time.Duration{
		300 * time.Millisecond,
		1700 * time.Millisecond,
		2 * time.Second,
		999 * time.Millisecond,
		5500 * time.Millisecond,
	}
	for _, d := range advances {
		clock.Advance(d)
		b.refill(clock.Now())
		if unaccounted := clock.Now().Sub(b.lastFilled); unaccounted >= b.refillInterval {
			t.Fatalf("unaccounted time %v after advancing %v, want < %v", unaccounted, d, b.refillInterval)
		}
	}
}

// Refilling N times over a total elapsed time must credit exactly as many
// tokens as refilling once after the same elapsed time. This is the no-drift
// guarantee: repeated truncation of partial intervals must not under-credit.
func TestRefillRepeatedCallsDoNotDrift(t *testing.T) {
	clockA := newFakeClock()
	clockB := newFakeClock()
	stepwise := newBucket(1000, 1, time.Second, clockA.Now())
	oneshot := newBucket(1000, 1, time.Second, clockB.Now())
	stepwise.tokens = 0
	oneshot.tokens = 0

	// 40 steps of 700ms: 28s total, never aligned to the interval.
	const steps = 40
	const step = 700 * time.Millisecond
	for i := 0; i < steps; i++ {
		clockA.Advance(step)
		stepwise.refill(clockA.Now())
	}
	clockB.Advance(steps * step)
	oneshot.refill(clockB.Now())

	if stepwise.tokens != oneshot.tokens {
		t.Errorf("stepwise refill credited %d tokens, single refill credited %d", stepwise.tokens, oneshot.tokens)
	}
	if want := 28; stepwise.tokens != want {
		t.Errorf("tokens after 28s at 1 token/s = %d, want %d", stepwise.tokens, want)
	}
}

// Back-to-back refills with no time elapsing must never add tokens: the
// remainder anchoring prevents double-crediting the same elapsed time.
func TestRefillNoDoubleCredit(t *testing.T) {
	clock := newFakeClock()
	b := newBucket(10, 3, time.Second, clock.Now())
	b.tokens = 0

	clock.Advance(2500 * time.Millisecond)
	b.refill(clock.Now())
	if b.tokens != 6 {
		t.Fatalf("tokens after first refill = %d, want 6", b.tokens)
	}
	for i := 0; i < 100; i++ {
		b.refill(clock.Now())
	}
	if b.tokens != 6 {
		t.Errorf("tokens after 100 repeated refills = %d, want 6", b.tokens)
	}
}

func TestBucketRequestCounters(t *testing.T) {
	clock := newFakeClock()
	b := newBucket(2, 1, time.Second, clock.Now())

	outcomes := []bool{true, true, false, false}
	for i, want := range outcomes {
		if got := b.request(clock.Now()); got != want {
			t.Errorf("request %d = %v, want %v", i, got, want)
		}
	}
	if b.allowed != 2 || b.denied != 2 {
		t.Errorf("counters allowed=%d denied=%d, want 2 and 2", b.allowed, b.denied)
	}
}
