package ratelimit

import (
	"sync"
	"time"
)

// bucket is a token bucket refilled lazily on each check.
type bucket struct {
	tokens     int
	maxTokens  int
	refillRate int
	refillTime time.Duration
	lastRefill time.Time
	mu         sync.Mutex
}

func newBucket(maxTokens, refillRate int, refillTime time.Duration) *bucket {
	return &bucket{
		tokens:     maxTokens,
		maxTokens:  maxTokens,
		refillRate: refillRate,
		refillTime: refillTime,
		lastRefill: time.Now(),
	}
}

// take consumes a token if one is available. When the bucket is empty it
// returns the wait until the next refill.
func (b *bucket) take() (bool, time.Duration) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(b.lastRefill)
	if add := int(elapsed/b.refillTime) * b.refillRate; add > 0 {
		b.tokens += add
		if b.tokens > b.maxTokens {
			b.tokens = b.maxTokens
		}
		b.lastRefill = now
	}

	if b.tokens > 0 {
		b.tokens--
		return true, 0
	}
	return false, b.lastRefill.Add(b.refillTime).Sub(now)
}

// FrameLimiter throttles websocket operations per user. Buckets are created
// on first use with limits depending on how expensive the operation is.
type FrameLimiter struct {
	buckets map[string]*bucket
	mu      sync.RWMutex
}

func NewFrameLimiter() *FrameLimiter {
	return &FrameLimiter{buckets: make(map[string]*bucket)}
}

// Allow checks whether the user may perform op right now.
func (fl *FrameLimiter) Allow(userID, op string) (bool, time.Duration) {
	key := userID + ":" + op

	fl.mu.RLock()
	b, ok := fl.buckets[key]
	fl.mu.RUnlock()

	if !ok {
		fl.mu.Lock()
		if b, ok = fl.buckets[key]; !ok {
			b = newBucket(limitsFor(op))
			fl.buckets[key] = b
		}
		fl.mu.Unlock()
	}

	return b.take()
}

func limitsFor(op string) (maxTokens, refillRate int, refillTime time.Duration) {
	switch op {
	case "send_message":
		// 20 messages per minute
		return 20, 1, 3 * time.Second
	case "create_room":
		// 5 rooms per hour
		return 5, 1, 12 * time.Minute
	case "upload_file":
		// 6 uploads per minute
		return 6, 1, 10 * time.Second
	case "translate_message":
		// 10 translations per minute
		return 10, 1, 6 * time.Second
	case "typing_start", "typing_stop":
		// 30 typing events per minute
		return 30, 1, 2 * time.Second
	default:
		// 30 operations per minute
		return 30, 1, 2 * time.Second
	}
}

// Cleanup drops buckets that have not been touched for an hour.
func (fl *FrameLimiter) Cleanup() {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	now := time.Now()
	for key, b := range fl.buckets {
		b.mu.Lock()
		idle := now.Sub(b.lastRefill) > time.Hour
		b.mu.Unlock()
		if idle {
			delete(fl.buckets, key)
		}
	}
}

// StartCleanup runs Cleanup periodically in the background.
func (fl *FrameLimiter) StartCleanup() {
	go func() {
		ticker := time.NewTicker(30 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			fl.Cleanup()
		}
	}()
}
