package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock lets tests advance time deterministically.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestLimiter(max int, window time.Duration) (*SlidingWindow, *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	l := NewSlidingWindow(max, window)
	l.now = clock.Now
	return l, clock
}

func TestSlidingWindow_AllowsWithinLimit(t *testing.T) {
	l, _ := newTestLimiter(3, time.Second)

	d := l.Allow("key")
	assert.True(t, d.Allowed)
	assert.Equal(t, 2, d.Remaining)
}

func TestSlidingWindow_Boundary(t *testing.T) {
	l, clock := newTestLimiter(3, time.Second)

	wantRemaining := []int{2, 1, 0}
	for i, want := range wantRemaining {
		clock.Advance(10 * time.Millisecond)
		d := l.Allow("key")
		require.True(t, d.Allowed, "call %d should be allowed", i+1)
		assert.Equal(t, want, d.Remaining, "call %d remaining", i+1)
	}

	// Fourth call inside the window is denied with a positive retry hint.
	clock.Advance(10 * time.Millisecond)
	d := l.Allow("key")
	require.False(t, d.Allowed)
	assert.Equal(t, 0, d.Remaining)
	assert.Greater(t, d.RetryAfter, 0)

	// Once the window has passed, the key is admitted again.
	clock.Advance(time.Second + time.Millisecond)
	d = l.Allow("key")
	require.True(t, d.Allowed)
	assert.Equal(t, 2, d.Remaining)
}

func TestSlidingWindow_KeysAreIndependent(t *testing.T) {
	l, _ := newTestLimiter(1, time.Minute)

	require.True(t, l.Allow("a").Allowed)
	require.False(t, l.Allow("a").Allowed)

	d := l.Allow("b")
	assert.True(t, d.Allowed, "denial for one key must not affect another")
}

func TestSlidingWindow_RetryAfterReflectsOldestHit(t *testing.T) {
	l, clock := newTestLimiter(2, 10*time.Second)

	require.True(t, l.Allow("key").Allowed)
	clock.Advance(4 * time.Second)
	require.True(t, l.Allow("key").Allowed)

	clock.Advance(2 * time.Second)
	d := l.Allow("key")
	require.False(t, d.Allowed)
	// Oldest hit is 6s old in a 10s window: 4s until it ages out.
	assert.Equal(t, 4, d.RetryAfter)
}

func TestSlidingWindow_ZeroConfigDefaults(t *testing.T) {
	l := NewSlidingWindow(0, 0)
	d := l.Allow("key")
	assert.True(t, d.Allowed)
	assert.Equal(t, 0, d.Remaining)
}
