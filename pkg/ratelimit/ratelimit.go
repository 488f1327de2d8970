// Package ratelimit implements a per-key sliding window rate limiter.
//
// The limiter keeps, for each caller key, the timestamps of requests made
// within a trailing window. Old timestamps are pruned lazily on each Allow
// call; there is no background sweep and no persistence, so state resets on
// process restart. Keys are fully independent: exhausting one key never
// affects another.
package ratelimit

import (
	"math"
	"sync"
	"time"
)

// Decision is the outcome of a single admission check.
type Decision struct {
	// Allowed reports whether the request may proceed.
	Allowed bool

	// Remaining is the number of additional requests the key may make
	// within the current window. Zero when denied.
	Remaining int

	// RetryAfter is the suggested wait in whole seconds before retrying.
	// Only meaningful when Allowed is false; always >= 1 in that case.
	RetryAfter int
}

// SlidingWindow admits up to Max requests per key within a trailing Window.
//
// SlidingWindow is safe for concurrent use.
type SlidingWindow struct {
	max    int
	window time.Duration

	mu   sync.Mutex
	hits map[string][]time.Time

	// now is overridable for tests.
	now func() time.Time
}

// NewSlidingWindow returns a limiter allowing max requests per window.
func NewSlidingWindow(max int, window time.Duration) *SlidingWindow {
	if max <= 0 {
		max = 1
	}
	if window <= 0 {
		window = time.Second
	}
	return &SlidingWindow{
		max:    max,
		window: window,
		hits:   make(map[string][]time.Time),
		now:    time.Now,
	}
}

// Allow records an admission attempt for key and returns the decision.
//
// On denial, RetryAfter is derived from the oldest timestamp still inside
// the window: the number of whole seconds until that timestamp ages out.
// It is computed before the new request is recorded, so it reflects the
// real wait rather than zero.
func (l *SlidingWindow) Allow(key string) Decision {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)

	kept := l.hits[key][:0:len(l.hits[key])]
	for _, ts := range l.hits[key] {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}

	if len(kept) >= l.max {
		retry := int(math.Ceil(kept[0].Sub(cutoff).Seconds()))
		if retry < 1 {
			retry = 1
		}
		l.hits[key] = kept
		return Decision{Allowed: false, Remaining: 0, RetryAfter: retry}
	}

	kept = append(kept, now)
	l.hits[key] = kept

	return Decision{Allowed: true, Remaining: l.max - len(kept)}
}
