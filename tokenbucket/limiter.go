package tokenbucket

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Stats is a point-in-time snapshot of admission counters.
type Stats struct {
	Allowed uint64
	Denied  uint64
}

// Limiter is a token bucket rate limiter keyed by any comparable value
// (IP address strings, user ids, API tokens). A bucket is created lazily on
// the first request for a key, using the limiter's default parameters, and
// starts full so new keys get their burst allowance immediately.
//
// A Limiter is safe for concurrent use by multiple goroutines. All per-key
// state is guarded by a single mutex, so requests for the same key observe a
// total order of effects and a token is never spent twice.
type Limiter[K comparable] struct {
	mu      sync.Mutex
	buckets map[K]*bucket

	defaultCapacity       int
	defaultRefillRate     int
	defaultRefillInterval time.Duration

	// Aggregate counters across all keys, guarded by mu.
	allowed uint64
	denied  uint64

	now func() time.Time // swapped out in tests
}

// New creates a Limiter with the given default parameters for first-seen
// keys. Parameters are validated here, once; Request, SetVIP and Prune never
// fail at call time.
func New[K comparable](capacity, refillRate int, refillInterval time.Duration) (*Limiter[K], error) {
	if capacity <= 0 {
		return nil, ErrInvalidCapacity
	}
	if refillRate <= 0 {
		return nil, ErrInvalidRefillRate
	}
	if refillInterval <= 0 {
		return nil, ErrInvalidRefillInterval
	}

	log.Info().Int("capacity", capacity).Int("refill_rate", refillRate).Dur("refill_interval", refillInterval).Msg("Limiter: Initialized")
	return &Limiter[K]{
		buckets:               make(map[K]*bucket),
		defaultCapacity:       capacity,
		defaultRefillRate:     refillRate,
		defaultRefillInterval: refillInterval,
		now:                   time.Now,
	}, nil
}

// Request reports whether the next request for key is admitted. The key's
// bucket is refilled from elapsed time, then one token is consumed if any
// remain. A denied request is a normal outcome, not an error.
func (l *Limiter[K]) Request(key K) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, exists := l.buckets[key]
	if !exists {
		b = newBucket(l.defaultCapacity, l.defaultRefillRate, l.defaultRefillInterval, now)
		l.buckets[key] = b
	}

	admitted := b.request(now)
	if admitted {
		l.allowed++
	} else {
		l.denied++
	}
	return admitted
}

// SetVIP replaces the bucket parameters for key with a custom capacity and
// refill rate, keeping the limiter's default refill interval. The bucket is
// reset to full and its refill clock restarted, discarding any prior history:
// this is a refresh-to-full policy, not a merge. Both parameters must be
// positive; this is an administrative operation expected to be called rarely.
func (l *Limiter[K]) SetVIP(key K, capacity, refillRate int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, exists := l.buckets[key]
	if !exists {
		b = newBucket(capacity, refillRate, l.defaultRefillInterval, now)
		l.buckets[key] = b
	}

	b.capacity = capacity
	b.refillRate = refillRate
	b.tokens = capacity
	b.lastFilled = now
	log.Debug().Int("capacity", capacity).Int("refill_rate", refillRate).Msg("Limiter: VIP override set")
}

// Prune removes every bucket that has been idle for longer than age, bounding
// memory growth over an unbounded key space (per-IP limiting, for example).
// Eviction is purely by idleness; remaining tokens are not consulted.
func (l *Limiter[K]) Prune(age time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-age)
	pruned := 0
	for key, b := range l.buckets {
		if b.lastFilled.Before(cutoff) {
			delete(l.buckets, key)
			pruned++
		}
	}
	if pruned > 0 {
		log.Debug().Int("pruned", pruned).Int("remaining", len(l.buckets)).Msg("Limiter: Pruned idle buckets")
	}
}

// StartPruning launches a goroutine that calls Prune(age) every interval.
// The returned function stops the goroutine.
func (l *Limiter[K]) StartPruning(interval, age time.Duration) func() {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-ticker.C:
				l.Prune(age)
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()

	return func() { close(done) }
}

// Stats returns the aggregate allowed/denied counters across all keys.
func (l *Limiter[K]) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Stats{Allowed: l.allowed, Denied: l.denied}
}

// KeyStats returns the lifetime counters for a single key's bucket.
// The second return value is false if the key has no bucket, either because
// it was never seen or because it has been pruned.
func (l *Limiter[K]) KeyStats(key K) (Stats, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	b, exists := l.buckets[key]
	if !exists {
		return Stats{}, false
	}
	return Stats{Allowed: b.allowed, Denied: b.denied}, true
}

// Len returns the number of per-key buckets currently tracked.
func (l *Limiter[K]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}
