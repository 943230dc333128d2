package ratelimiter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNow struct {
	t time.Time
}

func (f *fakeNow) now() time.Time { return f.t }

func newTestLimiter(requests int, window time.Duration) (*TokenBucketLimiter, *fakeNow) {
	clk := &fakeNow{t: time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)}
	rl := NewTokenBucketLimiter(requests, window)
	rl.now = clk.now
	return rl, clk
}

func TestTokenBucketLimiter(t *testing.T) {
	rl, clk := newTestLimiter(2, time.Minute)

	ok, _ := rl.Allow("10.0.0.1")
	require.True(t, ok)
	ok, _ = rl.Allow("10.0.0.1")
	require.True(t, ok)

	ok, retry := rl.Allow("10.0.0.1")
	assert.False(t, ok)
	assert.Equal(t, 30*time.Second, retry)

	ok, _ = rl.Allow("10.0.0.2")
	assert.True(t, ok, "clients are counted separately")

	clk.t = clk.t.Add(10 * time.Second)
	ok, retry = rl.Allow("10.0.0.1")
	assert.False(t, ok)
	assert.Equal(t, 20*time.Second, retry, "retry reports the time left, not the whole window")

	clk.t = clk.t.Add(20 * time.Second)
	ok, _ = rl.Allow("10.0.0.1")
	assert.True(t, ok)
}

func TestTokenBucketLimiterRejectedRequestsCostNothing(t *testing.T) {
	rl, clk := newTestLimiter(1, time.Minute)

	ok, _ := rl.Allow("10.0.0.1")
	require.True(t, ok)
	for i := 0; i < 5; i++ {
		ok, _ = rl.Allow("10.0.0.1")
		require.False(t, ok)
	}

	clk.t = clk.t.Add(time.Minute)
	ok, _ = rl.Allow("10.0.0.1")
	assert.True(t, ok)
}

func TestTokenBucketLimiterForgetsIdleClients(t *testing.T) {
	rl, clk := newTestLimiter(1, time.Minute)

	for _, ip := range []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"} {
		ok, _ := rl.Allow(ip)
		require.True(t, ok)
	}
	assert.Len(t, rl.clients, 3)

	clk.t = clk.t.Add(2 * time.Minute)
	ok, _ := rl.Allow("10.0.0.4")
	require.True(t, ok)
	assert.Len(t, rl.clients, 1)
}
