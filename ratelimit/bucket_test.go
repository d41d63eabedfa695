package ratelimit

import (
	"math"
	"testing"
	"time"
)

// fakeClock drives bucket refills deterministically in tests.
type fakeClock struct {
	t time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Unix(1700000000, 0)}
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestBucket(t *testing.T, capacity, refillPerMs float64) (*TokenBucket, *fakeClock) {
	t.Helper()
	b, err := NewTokenBucket(capacity, refillPerMs)
	if err != nil {
		t.Fatalf("NewTokenBucket(%v, %v) failed: %v", capacity, refillPerMs, err)
	}
	clock := newFakeClock()
	b.now = clock.Now
	b.Reset()
	return b, clock
}

func TestNewTokenBucketValidation(t *testing.T) {
	tests := []struct {
		name        string
		capacity    float64
		refillPerMs float64
		wantErr     bool
	}{
		{"valid", 10, 0.5, false},
		{"zero capacity", 0, 0.5, true},
		{"negative capacity", -1, 0.5, true},
		{"zero refill", 10, 0, true},
		{"negative refill", 10, -0.1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTokenBucket(tt.capacity, tt.refillPerMs)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewTokenBucket(%v, %v) error = %v, wantErr %v", tt.capacity, tt.refillPerMs, err, tt.wantErr)
			}
		})
	}
}

func TestTokenBucketStartsFull(t *testing.T) {
	b, _ := newTestBucket(t, 7, 0.1)
	if got := b.Tokens(); got != 7 {
		t.Errorf("fresh bucket Tokens() = %v, want 7", got)
	}
}

func TestTokenBucketConsumesAtMostCapacity(t *testing.T) {
	b, _ := newTestBucket(t, 5, 0.001)
	for i := 0; i < 5; i++ {
		if !b.Consume(1) {
			t.Fatalf("Consume(1) #%d = false, want true", i+1)
		}
	}
	if b.Consume(1) {
		t.Error("Consume(1) after exhaustion = true, want false")
	}
}

func TestTokenBucketRejectsNonPositive(t *testing.T) {
	b, _ := newTestBucket(t, 5, 0.001)
	if b.Consume(0) {
		t.Error("Consume(0) = true, want false")
	}
	if b.Consume(-3) {
		t.Error("Consume(-3) = true, want false")
	}
	if got := b.Tokens(); got != 5 {
		t.Errorf("Tokens() after rejected consumes = %v, want 5", got)
	}
}

func TestTokenBucketRefillRecovery(t *testing.T) {
	// capacity 10, 0.01 tokens/ms: a full drain refills in exactly 1000ms.
	b, clock := newTestBucket(t, 10, 0.01)
	for i := 0; i < 10; i++ {
		if !b.Consume(1) {
			t.Fatalf("initial drain: Consume #%d failed", i+1)
		}
	}
	clock.Advance(1000 * time.Millisecond)
	for i := 0; i < 10; i++ {
		if !b.Consume(1) {
			t.Fatalf("post-refill drain: Consume #%d failed", i+1)
		}
	}
	if b.Consume(1) {
		t.Error("Consume after second drain = true, want false")
	}
}

func TestTokenBucketFractionalRefill(t *testing.T) {
	b, clock := newTestBucket(t, 4, 0.001) // 1 token per second
	for i := 0; i < 4; i++ {
		b.Consume(1)
	}
	clock.Advance(500 * time.Millisecond)
	if got := b.Tokens(); got != 0.5 {
		t.Errorf("Tokens() after half-token refill = %v, want 0.5", got)
	}
	if b.Consume(1) {
		t.Error("Consume(1) with 0.5 tokens = true, want false")
	}
	clock.Advance(500 * time.Millisecond)
	if !b.Consume(1) {
		t.Error("Consume(1) after full token accrued = false, want true")
	}
}

func TestTokenBucketNeverExceedsCapacity(t *testing.T) {
	b, clock := newTestBucket(t, 3, 1)
	clock.Advance(time.Hour)
	if got := b.Tokens(); got != 3 {
		t.Errorf("Tokens() after long idle = %v, want capacity 3", got)
	}
}

func TestTokenBucketBackwardsClock(t *testing.T) {
	b, clock := newTestBucket(t, 5, 0.001)
	b.Consume(2)
	clock.Advance(-time.Minute)
	if got := b.Tokens(); got != 3 {
		t.Errorf("Tokens() after clock went backwards = %v, want 3", got)
	}
}

func TestTokenBucketRetryAfterMs(t *testing.T) {
	b, clock := newTestBucket(t, 5, 0.01)

	if got := b.RetryAfterMs(6); !math.IsInf(got, 1) {
		t.Errorf("RetryAfterMs(6) = %v, want +Inf", got)
	}
	if got := b.RetryAfterMs(5); got != 0 {
		t.Errorf("RetryAfterMs(5) on full bucket = %v, want 0", got)
	}

	for i := 0; i < 5; i++ {
		b.Consume(1)
	}
	// 1 token at 0.01/ms takes 100ms.
	if got := b.RetryAfterMs(1); got != 100 {
		t.Errorf("RetryAfterMs(1) on empty bucket = %v, want 100", got)
	}
	clock.Advance(100 * time.Millisecond)
	if got := b.RetryAfterMs(1); got != 0 {
		t.Errorf("RetryAfterMs(1) after waiting = %v, want 0", got)
	}
}

func TestTokenBucketReset(t *testing.T) {
	b, _ := newTestBucket(t, 5, 0.001)
	for i := 0; i < 5; i++ {
		b.Consume(1)
	}
	b.Reset()
	if got := b.Tokens(); got != 5 {
		t.Errorf("Tokens() after Reset = %v, want 5", got)
	}
}

func TestTokensDoesNotConsume(t *testing.T) {
	b, _ := newTestBucket(t, 5, 0.001)
	for i := 0; i < 10; i++ {
		b.Tokens()
	}
	if got := b.Tokens(); got != 5 {
		t.Errorf("Tokens() after repeated reads = %v, want 5", got)
	}
}
