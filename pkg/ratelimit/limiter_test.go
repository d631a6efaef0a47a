package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

func TestLimiterStore_SameKeySameLimiter(t *testing.T) {
	store := NewLimiterStore(rate.Limit(1), 2)

	a := store.GetLimiter("chat-1")
	b := store.GetLimiter("chat-1")
	other := store.GetLimiter("chat-2")

	assert.Same(t, a, b)
	assert.NotSame(t, a, other)
	assert.Equal(t, 2, store.Len())
}

func TestLimiterStore_EnforcesBurst(t *testing.T) {
	store := NewLimiterStore(rate.Limit(0.001), 2)
	limiter := store.GetLimiter("chat-1")

	assert.True(t, limiter.Allow())
	assert.True(t, limiter.Allow())
	assert.False(t, limiter.Allow())
}

func TestLimiterStore_PrunesIdleKeys(t *testing.T) {
	store := NewLimiterStore(rate.Limit(1), 1)
	store.ttl = 10 * time.Millisecond

	stale := store.GetLimiter("chat-1")
	time.Sleep(20 * time.Millisecond)
	store.GetLimiter("chat-2")

	assert.Equal(t, 1, store.Len())
	assert.NotSame(t, stale, store.GetLimiter("chat-1"))
}
