package ratelimit

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAllowBoundary(t *testing.T) {
	limiter := New(5, time.Minute)

	for i := 0; i < 5; i++ {
		decision := limiter.Allow("client-a")
		assert.True(t, decision.Allowed, "request %d should be admitted", i+1)
		assert.Equal(t, 4-i, decision.Remaining)
	}

	decision := limiter.Allow("client-a")
	assert.False(t, decision.Allowed, "6th request must be rejected")
	assert.Equal(t, 0, decision.Remaining)
}

func TestAllowKeysAreIndependent(t *testing.T) {
	limiter := New(1, time.Minute)

	assert.True(t, limiter.Allow("client-a").Allowed)
	assert.False(t, limiter.Allow("client-a").Allowed)
	assert.True(t, limiter.Allow("client-b").Allowed)
}

func TestAllowWindowReset(t *testing.T) {
	limiter := New(2, time.Minute)
	now := time.Unix(1000, 0)
	limiter.now = func() time.Time { return now }

	require.True(t, limiter.Allow("client-a").Allowed)
	require.True(t, limiter.Allow("client-a").Allowed)
	require.False(t, limiter.Allow("client-a").Allowed)

	// Once the window passes the counter starts fresh.
	now = now.Add(time.Minute + time.Second)
	decision := limiter.Allow("client-a")
	assert.True(t, decision.Allowed)
	assert.Equal(t, 1, decision.Remaining)
}

func TestAllowSweepsExpiredBuckets(t *testing.T) {
	limiter := New(3, time.Minute)
	now := time.Unix(1000, 0)
	limiter.now = func() time.Time { return now }

	limiter.Allow("client-a")
	limiter.Allow("client-b")
	require.Len(t, limiter.buckets, 2)

	now = now.Add(2 * time.Minute)
	limiter.Allow("client-c")
	assert.Len(t, limiter.buckets, 1, "expired buckets are swept on admission")
}

func TestAllowConcurrentNoOvershoot(t *testing.T) {
	const ceiling = 50
	limiter := New(ceiling, time.Minute)

	var admitted, rejected int64
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < 2*ceiling; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			decision := limiter.Allow("shared-key")
			mu.Lock()
			defer mu.Unlock()
			if decision.Allowed {
				admitted++
			} else {
				rejected++
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, ceiling, admitted, "exactly the ceiling must be admitted")
	assert.EqualValues(t, ceiling, rejected, "the rest must be rejected")
}

func TestNewAppliesDefaults(t *testing.T) {
	limiter := New(0, 0)
	assert.Equal(t, 100, limiter.Limit())
	assert.Equal(t, time.Minute, limiter.Window())
}
