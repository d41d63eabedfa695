package ratelimit

import (
	"fmt"
	"math"
	"time"
)

// TokenBucket is a single refillable counter. Tokens accumulate continuously
// at a fixed rate up to a maximum capacity; consuming more tokens than are
// currently available fails without side effects.
//
// A TokenBucket is not safe for concurrent use by itself. The keyed limiters
// in this package own their buckets exclusively and serialize access; callers
// embedding a standalone bucket must do the same.
type TokenBucket struct {
	capacity    float64
	refillPerMs float64
	tokens      float64
	lastRefill  time.Time

	// now is swapped out in tests to drive refill deterministically.
	now func() time.Time
}

// NewTokenBucket creates a bucket that holds at most capacity tokens and
// refills at refillPerMs tokens per millisecond. The bucket starts full.
// Non-positive parameters indicate a deployment mistake and are rejected.
func NewTokenBucket(capacity, refillPerMs float64) (*TokenBucket, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("ratelimit: bucket capacity must be positive, got %v", capacity)
	}
	if refillPerMs <= 0 {
		return nil, fmt.Errorf("ratelimit: bucket refill rate must be positive, got %v", refillPerMs)
	}
	b := &TokenBucket{
		capacity:    capacity,
		refillPerMs: refillPerMs,
		tokens:      capacity,
		now:         time.Now,
	}
	b.lastRefill = b.now()
	return b, nil
}

// refill credits tokens for the wall-clock time elapsed since the last refill.
// Fractional tokens are kept so sub-window partial refills are observable.
// A clock that goes backwards credits nothing.
func (b *TokenBucket) refill() {
	now := b.now()
	elapsedMs := float64(now.Sub(b.lastRefill)) / float64(time.Millisecond)
	if elapsedMs > 0 {
		b.tokens = math.Min(b.capacity, b.tokens+elapsedMs*b.refillPerMs)
	}
	b.lastRefill = now
}

// Consume refills the bucket and then attempts to take n tokens. It returns
// false without taking anything when n is non-positive or more tokens are
// requested than are available.
func (b *TokenBucket) Consume(n float64) bool {
	b.refill()
	if n <= 0 {
		return false
	}
	if b.tokens >= n {
		b.tokens -= n
		return true
	}
	return false
}

// Tokens returns the current token count after applying any pending refill.
// It never consumes.
func (b *TokenBucket) Tokens() float64 {
	b.refill()
	return b.tokens
}

// RetryAfterMs reports how many milliseconds must elapse before n tokens can
// be consumed: 0 when n is already satisfiable, +Inf when n exceeds the
// bucket's capacity and can never be satisfied.
func (b *TokenBucket) RetryAfterMs(n float64) float64 {
	if n > b.capacity {
		return math.Inf(1)
	}
	b.refill()
	if b.tokens >= n {
		return 0
	}
	return math.Ceil((n - b.tokens) / b.refillPerMs)
}

// Reset restores the bucket to full capacity and restarts the refill clock.
func (b *TokenBucket) Reset() {
	b.tokens = b.capacity
	b.lastRefill = b.now()
}

// Capacity returns the configured maximum token count.
func (b *TokenBucket) Capacity() float64 {
	return b.capacity
}

// configure adjusts capacity and refill rate in place, clamping the current
// token count to the new capacity. Used by the keyed limiter when a caller
// supplies a different rule for an existing key.
func (b *TokenBucket) configure(capacity, refillPerMs float64) {
	b.capacity = capacity
	b.refillPerMs = refillPerMs
	if b.tokens > capacity {
		b.tokens = capacity
	}
}
