package ratelimiter

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// TokenBucketLimiter gives every client its own bucket of RequestsPerTimeFrame
// tokens, refilled evenly over the time frame.
type TokenBucketLimiter struct {
	mu        sync.Mutex
	clients   map[string]*client
	limit     rate.Limit
	burst     int
	window    time.Duration
	lastSweep time.Time
	now       func() time.Time
}

type client struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewTokenBucketLimiter(requests int, window time.Duration) *TokenBucketLimiter {
	if requests < 1 {
		requests = 1
	}
	return &TokenBucketLimiter{
		clients: make(map[string]*client),
		limit:   rate.Every(window / time.Duration(requests)),
		burst:   requests,
		window:  window,
		now:     time.Now,
	}
}

// Allow takes a token for key. When the bucket is empty it returns false and
// the wait until the next token.
func (rl *TokenBucketLimiter) Allow(key string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.sweep(now)

	c, ok := rl.clients[key]
	if !ok {
		c = &client{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[key] = c
	}
	c.lastSeen = now

	r := c.limiter.ReserveN(now, 1)
	if !r.OK() {
		return false, rl.window
	}
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return false, delay
	}

	return true, 0
}

// sweep forgets clients idle for a whole window. Their bucket has refilled,
// so a fresh one is equivalent.
func (rl *TokenBucketLimiter) sweep(now time.Time) {
	if now.Sub(rl.lastSweep) < rl.window {
		return
	}
	rl.lastSweep = now

	for key, c := range rl.clients {
		if now.Sub(c.lastSeen) >= rl.window {
			delete(rl.clients, key)
		}
	}
}
