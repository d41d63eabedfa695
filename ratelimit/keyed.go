package ratelimit

import (
	"container/list"
	"fmt"
	"math"
	"sync"
	"time"
)

// Rule configures the effective bucket for a single check: a key may consume
// at most Max tokens per Window. Rules are supplied by the caller on every
// call, so different abuse surfaces can share one limiter with different
// budgets.
type Rule struct {
	Max    float64
	Window time.Duration
}

// refillPerMs derives the refill rate that replenishes Max tokens over Window.
func (r Rule) refillPerMs() float64 {
	return r.Max / (float64(r.Window) / float64(time.Millisecond))
}

func (r Rule) validate() error {
	if r.Max <= 0 {
		return fmt.Errorf("ratelimit: rule max must be positive, got %v", r.Max)
	}
	if r.Window <= 0 {
		return fmt.Errorf("ratelimit: rule window must be positive, got %v", r.Window)
	}
	return nil
}

// Result is the outcome of a rate-limit check. A denied Result is normal
// control flow, not an error; callers translate it into a 429 or backoff
// response and retry after RetryAfter.
type Result struct {
	Allowed    bool
	Remaining  float64
	ResetAt    time.Time
	RetryAfter time.Duration
}

// KeyedConfig bounds the keyed limiter's memory use.
type KeyedConfig struct {
	// MaxKeys is the maximum number of tracked keys. Inserting beyond it
	// evicts the least-recently-touched key.
	MaxKeys int

	// IdleTTL is how long a fully-refilled entry may sit untouched before the
	// background sweep removes it.
	IdleTTL time.Duration

	// SweepInterval is how often the background sweep runs. Zero disables
	// the sweep goroutine entirely.
	SweepInterval time.Duration
}

// DefaultKeyedConfig returns the limits used by the gateway deployment.
func DefaultKeyedConfig() *KeyedConfig {
	return &KeyedConfig{
		MaxKeys:       10000,
		IdleTTL:       2 * time.Minute,
		SweepInterval: time.Minute,
	}
}

// Keyed answers "may this key proceed right now" over a bounded collection of
// per-key token buckets. Keys follow the namespace convention documented in
// the package comment (auth:<ip>, conn:<ip>, pair:<channel>:<user>, ...) so
// that exhausting one surface's budget cannot exhaust another's.
//
// All operations are synchronous; a check-and-consume for one key happens
// atomically under the limiter's lock. Callers never obtain a bucket
// reference, only derived Results.
type Keyed struct {
	mu      sync.Mutex
	entries map[string]*list.Element
	order   *list.List // front is least recently touched
	cfg     KeyedConfig

	stop     chan struct{}
	stopOnce sync.Once

	now func() time.Time
}

// keyedEntry is the LRU list payload for one key.
type keyedEntry struct {
	key        string
	bucket     *TokenBucket
	lastAccess time.Time
}

// NewKeyed creates a keyed limiter and, unless the sweep is disabled, starts
// its background sweep goroutine. Close must be called to stop the sweep.
func NewKeyed(cfg *KeyedConfig) *Keyed {
	if cfg == nil {
		cfg = DefaultKeyedConfig()
	}
	k := &Keyed{
		entries: make(map[string]*list.Element),
		order:   list.New(),
		cfg:     *cfg,
		stop:    make(chan struct{}),
		now:     time.Now,
	}
	if k.cfg.MaxKeys <= 0 {
		k.cfg.MaxKeys = DefaultKeyedConfig().MaxKeys
	}
	if k.cfg.SweepInterval > 0 {
		go k.sweepLoop()
	}
	return k
}

// Close stops the background sweep. Safe to call multiple times.
func (k *Keyed) Close() {
	k.stopOnce.Do(func() { close(k.stop) })
}

// Check consumes one token for key under rule and reports the outcome.
func (k *Keyed) Check(key string, rule Rule) (Result, error) {
	return k.check(key, rule, true)
}

// Peek reports the outcome a Check would have right now without consuming a
// token. Used by status and introspection surfaces.
func (k *Keyed) Peek(key string, rule Rule) (Result, error) {
	return k.check(key, rule, false)
}

func (k *Keyed) check(key string, rule Rule, consume bool) (Result, error) {
	if err := rule.validate(); err != nil {
		return Result{}, err
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	e, err := k.touch(key, rule)
	if err != nil {
		return Result{}, err
	}

	allowed := true
	if consume {
		allowed = e.bucket.Consume(1)
	} else {
		allowed = e.bucket.Tokens() >= 1
	}

	res := Result{
		Allowed:   allowed,
		Remaining: math.Floor(e.bucket.Tokens()),
		ResetAt:   k.resetAt(e.bucket),
	}
	if !allowed {
		res.RetryAfter = msToDuration(e.bucket.RetryAfterMs(1))
	}
	return res, nil
}

// touch returns the entry for key, creating it if needed, re-applying the
// caller's rule, moving it to the MRU position and evicting the oldest entry
// on overflow. The caller's own key is never the eviction victim because it
// has just been moved to the back of the list.
func (k *Keyed) touch(key string, rule Rule) (*keyedEntry, error) {
	if el, ok := k.entries[key]; ok {
		e := el.Value.(*keyedEntry)
		e.bucket.configure(rule.Max, rule.refillPerMs())
		e.lastAccess = k.now()
		k.order.MoveToBack(el)
		return e, nil
	}

	bucket, err := NewTokenBucket(rule.Max, rule.refillPerMs())
	if err != nil {
		return nil, err
	}
	bucket.now = k.now
	bucket.Reset()
	e := &keyedEntry{key: key, bucket: bucket, lastAccess: k.now()}
	k.entries[key] = k.order.PushBack(e)

	for len(k.entries) > k.cfg.MaxKeys {
		oldest := k.order.Front()
		if oldest == nil {
			break
		}
		victim := oldest.Value.(*keyedEntry)
		k.order.Remove(oldest)
		delete(k.entries, victim.key)
	}
	return e, nil
}

// Reset removes a single key, granting it a fresh bucket on next access.
func (k *Keyed) Reset(key string) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if el, ok := k.entries[key]; ok {
		k.order.Remove(el)
		delete(k.entries, key)
	}
}

// ResetAll clears every tracked key.
func (k *Keyed) ResetAll() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.entries = make(map[string]*list.Element)
	k.order.Init()
}

// Len reports how many keys are currently tracked.
func (k *Keyed) Len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.entries)
}

// sweepLoop periodically drops entries whose bucket has fully refilled and
// that have been idle past the TTL, bounding memory for transient keys such
// as rotating IPs. It never touches currently-active keys.
func (k *Keyed) sweepLoop() {
	ticker := time.NewTicker(k.cfg.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-k.stop:
			return
		case <-ticker.C:
			k.sweep()
		}
	}
}

func (k *Keyed) sweep() {
	k.mu.Lock()
	defer k.mu.Unlock()
	now := k.now()
	for el := k.order.Front(); el != nil; {
		next := el.Next()
		e := el.Value.(*keyedEntry)
		if now.Sub(e.lastAccess) > k.cfg.IdleTTL && e.bucket.Tokens() >= e.bucket.Capacity() {
			k.order.Remove(el)
			delete(k.entries, e.key)
		}
		el = next
	}
}

// resetAt is the instant at which the bucket will be full again.
func (k *Keyed) resetAt(b *TokenBucket) time.Time {
	deficit := b.Capacity() - b.Tokens()
	if deficit <= 0 {
		return k.now()
	}
	return k.now().Add(msToDuration(deficit / b.refillPerMs))
}

// msToDuration converts a millisecond count to a Duration, saturating on +Inf.
func msToDuration(ms float64) time.Duration {
	if math.IsInf(ms, 1) {
		return math.MaxInt64
	}
	return time.Duration(ms * float64(time.Millisecond))
}
