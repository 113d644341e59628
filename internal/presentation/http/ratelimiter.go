package http

import (
	"math"
	"sync"
	"time"
)

const unknownClientKey = "unknown"

type clientBucket struct {
	tokens   float64
	refilled time.Time
	seen     time.Time
}

// RateLimiter is a per-client token bucket. Idle clients are evicted after the TTL.
type RateLimiter struct {
	mu         sync.Mutex
	buckets    map[string]*clientBucket
	capacity   float64
	refillRate float64
	ttl        time.Duration
	now        func() time.Time

	stopOnce sync.Once
	done     chan struct{}
}

// NewRateLimiter starts a limiter allowing bursts of capacity requests refilled at refillPerSecond.
func NewRateLimiter(capacity int, refillPerSecond float64, ttl time.Duration) *RateLimiter {
	rl := &RateLimiter{
		buckets:    make(map[string]*clientBucket),
		capacity:   float64(capacity),
		refillRate: refillPerSecond,
		ttl:        ttl,
		now:        time.Now,
		done:       make(chan struct{}),
	}

	if ttl > 0 {
		go rl.evictLoop()
	}

	return rl
}

// Allow takes a token for key. When none is left it reports how long until the next one.
func (rl *RateLimiter) Allow(key string) (bool, time.Duration) {
	if key == "" {
		key = unknownClientKey
	}

	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	bucket, ok := rl.buckets[key]
	if !ok {
		bucket = &clientBucket{tokens: rl.capacity, refilled: now}
		rl.buckets[key] = bucket
	}
	bucket.seen = now

	if elapsed := now.Sub(bucket.refilled).Seconds(); elapsed > 0 {
		bucket.tokens = math.Min(rl.capacity, bucket.tokens+elapsed*rl.refillRate)
		bucket.refilled = now
	}

	if bucket.tokens >= 1 {
		bucket.tokens--
		return true, 0
	}

	missing := 1 - bucket.tokens
	return false, time.Duration(missing / rl.refillRate * float64(time.Second))
}

// Clients returns the number of tracked client buckets.
func (rl *RateLimiter) Clients() int {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	return len(rl.buckets)
}

// Stop ends the eviction loop. It is safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.stopOnce.Do(func() {
		close(rl.done)
	})
}

func (rl *RateLimiter) evictLoop() {
	ticker := time.NewTicker(rl.ttl)
	defer ticker.Stop()

	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
			rl.evictIdle()
		}
	}
}

func (rl *RateLimiter) evictIdle() {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	for key, bucket := range rl.buckets {
		if now.Sub(bucket.seen) > rl.ttl {
			delete(rl.buckets, key)
		}
	}
}

// retryAfterSeconds rounds a wait up to whole seconds for the Retry-After header.
func retryAfterSeconds(wait time.Duration) int {
	seconds := int(math.Ceil(wait.Seconds()))
	if seconds < 1 {
		return 1
	}
	return seconds
}
