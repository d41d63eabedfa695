package ratelimit

import (
	"sync"
	"time"
)

// GatewayConfig tunes the control-plane authentication limiter.
type GatewayConfig struct {
	// MaxTokens is the bucket capacity per key.
	MaxTokens float64

	// Window is the period over which MaxTokens refill.
	Window time.Duration

	// CleanupInterval is how often stale buckets are dropped. Zero disables
	// the cleanup goroutine.
	CleanupInterval time.Duration
}

// DefaultGatewayConfig matches the control-plane socket defaults: five
// attempts per minute per key.
func DefaultGatewayConfig() *GatewayConfig {
	return &GatewayConfig{
		MaxTokens:       5,
		Window:          time.Minute,
		CleanupInterval: time.Minute,
	}
}

// Gateway is the single-purpose limiter guarding the control-plane RPC
// socket. Unlike Keyed it has a fixed rule, and it supports charging a
// penalty for failed authentication attempts so that guessing locks out
// faster than honest reconnects.
type Gateway struct {
	mu      sync.Mutex
	buckets map[string]*gatewayBucket
	cfg     GatewayConfig

	stop     chan struct{}
	stopOnce sync.Once

	now func() time.Time
}

type gatewayBucket struct {
	bucket   *TokenBucket
	lastSeen time.Time
}

// NewGateway creates the limiter and starts its stale-bucket cleanup unless
// disabled. Dispose must be called to stop the cleanup goroutine; short-lived
// processes and tests rely on that for clean shutdown.
func NewGateway(cfg *GatewayConfig) *Gateway {
	if cfg == nil {
		cfg = DefaultGatewayConfig()
	}
	g := &Gateway{
		buckets: make(map[string]*gatewayBucket),
		cfg:     *cfg,
		stop:    make(chan struct{}),
		now:     time.Now,
	}
	if g.cfg.MaxTokens <= 0 {
		g.cfg.MaxTokens = 5
	}
	if g.cfg.Window <= 0 {
		g.cfg.Window = time.Minute
	}
	if g.cfg.CleanupInterval > 0 {
		go g.cleanupLoop()
	}
	return g
}

// Allow consumes one token for key and reports whether the attempt may
// proceed.
func (g *Gateway) Allow(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.bucket(key).Consume(1)
}

// Penalize charges one extra token beyond the normal per-attempt cost,
// clamping at zero. Callers invoke it after a failed authentication so a
// wrong token costs double and lockout accelerates.
func (g *Gateway) Penalize(key string) {
	g.PenalizeN(key, 1)
}

// PenalizeN charges n extra tokens, clamping at zero.
func (g *Gateway) PenalizeN(key string, n float64) {
	if n <= 0 {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	b := g.bucket(key)
	if !b.Consume(n) {
		// Not enough tokens to subtract normally; drain what is left.
		b.tokens = 0
	}
}

// RetryAfter reports how long key must wait before one token is available.
func (g *Gateway) RetryAfter(key string) time.Duration {
	g.mu.Lock()
	defer g.mu.Unlock()
	return msToDuration(g.bucket(key).RetryAfterMs(1))
}

// Dispose stops the cleanup goroutine. Safe to call multiple times.
func (g *Gateway) Dispose() {
	g.stopOnce.Do(func() { close(g.stop) })
}

// bucket returns the tracked bucket for key, creating it on first use.
// Callers must hold g.mu.
func (g *Gateway) bucket(key string) *TokenBucket {
	gb, ok := g.buckets[key]
	if !ok {
		refill := g.cfg.MaxTokens / (float64(g.cfg.Window) / float64(time.Millisecond))
		b, err := NewTokenBucket(g.cfg.MaxTokens, refill)
		if err != nil {
			// Config was sanitized in NewGateway; this cannot happen.
			panic(err)
		}
		b.now = g.now
		b.Reset()
		gb = &gatewayBucket{bucket: b}
		g.buckets[key] = gb
	}
	gb.lastSeen = g.now()
	return gb.bucket
}

func (g *Gateway) cleanupLoop() {
	ticker := time.NewTicker(g.cfg.CleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-g.stop:
			return
		case <-ticker.C:
			g.cleanup()
		}
	}
}

// cleanup drops buckets that have fully refilled and have not been seen for
// two windows.
func (g *Gateway) cleanup() {
	g.mu.Lock()
	defer g.mu.Unlock()
	now := g.now()
	for key, gb := range g.buckets {
		if now.Sub(gb.lastSeen) > 2*g.cfg.Window && gb.bucket.Tokens() >= gb.bucket.Capacity() {
			delete(g.buckets, key)
		}
	}
}
