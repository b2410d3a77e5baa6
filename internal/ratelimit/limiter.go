// Package ratelimit implements a fixed-window request counter keyed by
// client identity. Window-boundary bursts are accepted behavior for
// this scheme; it is not a sliding window.
package ratelimit

import (
	"sync"
	"time"
)

type bucket struct {
	count         int
	windowResetAt time.Time
}

// Decision is the outcome of a single admission check.
type Decision struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// Limiter is an explicitly-owned fixed-window counter. Instantiate one
// per scope; there is no package-level state.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	limit   int
	window  time.Duration
	now     func() time.Time
}

// New builds a limiter admitting up to limit requests per window per key.
func New(limit int, window time.Duration) *Limiter {
	if limit <= 0 {
		limit = 100
	}
	if window <= 0 {
		window = time.Minute
	}
	return &Limiter{
		buckets: make(map[string]*bucket),
		limit:   limit,
		window:  window,
		now:     time.Now,
	}
}

// Allow runs the admission check for key. The read-compare-increment is
// a single atomic unit under the limiter mutex so concurrent requests
// cannot both observe a free slot and overshoot the ceiling. Expired
// buckets are swept inside the same critical section.
func (l *Limiter) Allow(key string) Decision {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.sweepLocked(now)

	b, ok := l.buckets[key]
	if !ok || !b.windowResetAt.After(now) {
		b = &bucket{count: 1, windowResetAt: now.Add(l.window)}
		l.buckets[key] = b
		return Decision{Allowed: true, Remaining: l.limit - 1, ResetAt: b.windowResetAt}
	}

	if b.count < l.limit {
		b.count++
		return Decision{Allowed: true, Remaining: l.limit - b.count, ResetAt: b.windowResetAt}
	}

	return Decision{Allowed: false, Remaining: 0, ResetAt: b.windowResetAt}
}

// Limit returns the configured ceiling.
func (l *Limiter) Limit() int {
	return l.limit
}

// Window returns the configured window length.
func (l *Limiter) Window() time.Duration {
	return l.window
}

// sweepLocked drops buckets whose window has passed to bound memory.
// Caller holds l.mu.
func (l *Limiter) sweepLocked(now time.Time) {
	for key, b := range l.buckets {
		if !b.windowResetAt.After(now) {
			delete(l.buckets, key)
		}
	}
}
