package middlewares

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiterWindow(t *testing.T) {
	rl := NewRateLimiter(2, time.Second)
	now := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)

	assert.True(t, rl.allow("10.0.0.1", now))
	assert.True(t, rl.allow("10.0.0.1", now.Add(100*time.Millisecond)))
	assert.False(t, rl.allow("10.0.0.1", now.Add(200*time.Millisecond)))
	assert.True(t, rl.allow("10.0.0.1", now.Add(1100*time.Millisecond)))
}

func TestRateLimiterEvictsIdleClients(t *testing.T) {
	rl := NewRateLimiter(5, time.Second)
	now := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)

	for i := 0; i < 100; i++ {
		rl.allow(fmt.Sprintf("10.0.0.%d", i), now)
	}
	assert.Equal(t, 100, rl.trackedClients())

	rl.allow("10.0.1.1", now.Add(2*time.Second))
	assert.Equal(t, 1, rl.trackedClients())
}

func TestStrictLimiterBurstAndEviction(t *testing.T) {
	sl := newStrictLimiter(12*time.Second, 5)
	now := time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		assert.True(t, sl.allow("10.0.0.1", now))
	}
	assert.False(t, sl.allow("10.0.0.1", now))
	assert.True(t, sl.allow("10.0.0.1", now.Add(12*time.Second)))

	for i := 0; i < 50; i++ {
		sl.allow(fmt.Sprintf("10.0.1.%d", i), now)
	}
	assert.Len(t, sl.limiters, 51)

	later := now.Add(2 * time.Minute)
	assert.True(t, sl.allow("10.0.2.1", later))
	assert.Len(t, sl.limiters, 1)
}
