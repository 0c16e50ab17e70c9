package http

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIPRateLimiter_Burst(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l := newIPRateLimiter(1, 3)
	l.lastCleanup = now
	l.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		assert.True(t, l.allow("203.0.113.1"), "request %d", i)
	}
	assert.False(t, l.allow("203.0.113.1"))
	assert.True(t, l.allow("203.0.113.2"))

	// One token refills per second.
	now = now.Add(time.Second)
	assert.True(t, l.allow("203.0.113.1"))
	assert.False(t, l.allow("203.0.113.1"))
}

func TestIPRateLimiter_HourlyReset(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	l := newIPRateLimiter(0.0001, 1)
	l.lastCleanup = now
	l.now = func() time.Time { return now }

	assert.True(t, l.allow("a"))
	assert.True(t, l.allow("b"))
	assert.False(t, l.allow("a"))
	assert.Equal(t, 2, l.size())

	now = now.Add(limiterResetInterval + time.Second)
	assert.True(t, l.allow("a"))
	assert.Equal(t, 1, l.size())
}

func TestIPRateLimiter_Concurrent(t *testing.T) {
	l := newIPRateLimiter(0.0001, 50)

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		allowed int
	)
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if l.allow("198.51.100.1") {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, allowed)
}
