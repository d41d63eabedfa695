package ratelimit

import (
	"context"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
)

// Store counts hits for a key within a fixed window. Implementations back the
// distributed limiter used when several gateway processes share one budget.
type Store interface {
	// Increment adds one hit to key and returns the count and the remaining
	// window. The window TTL starts on the first hit.
	Increment(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

// RedisStore is a Store on a shared Redis instance, using INCR plus a
// first-hit EXPIRE inside one transaction.
type RedisStore struct {
	client *redis.Client
}

// RedisConfig carries the connection settings for a RedisStore.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisStore connects to Redis and verifies the connection with a ping.
func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("ratelimit: redis address is required")
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ratelimit: redis ping failed: %w", err)
	}
	return &RedisStore{client: client}, nil
}

// Close releases the underlying Redis connection pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Increment implements Store.
func (s *RedisStore) Increment(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	pipe := s.client.TxPipeline()
	counter := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, window)
	ttl := pipe.TTL(ctx, key)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, 0, err
	}
	remaining := ttl.Val()
	if remaining < 0 {
		remaining = window
	}
	return counter.Val(), remaining, nil
}

// Distributed checks a shared fixed-window budget through a Store, falling
// back to a process-local Keyed limiter when the store is unreachable. The
// circuit breaker keeps a flapping Redis from adding latency to the decision
// path: while the breaker is open every check is served locally.
type Distributed struct {
	store   Store
	local   *Keyed
	breaker *gobreaker.CircuitBreaker
}

// NewDistributed wires a store to a local fallback limiter. The local limiter
// remains owned by the caller and may be shared with other consumers.
func NewDistributed(store Store, local *Keyed) *Distributed {
	return &Distributed{
		store: store,
		local: local,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "ratelimit-store",
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 3
			},
		}),
	}
}

// Check consumes one hit for key under rule. Store failures are not
// propagated as denials; the check degrades to the local limiter so a Redis
// outage can never lock every caller out (or let every caller in).
func (d *Distributed) Check(ctx context.Context, key string, rule Rule) (Result, error) {
	if err := rule.validate(); err != nil {
		return Result{}, err
	}

	out, err := d.breaker.Execute(func() (any, error) {
		count, remaining, err := d.store.Increment(ctx, key, rule.Window)
		if err != nil {
			return nil, err
		}
		res := Result{
			Allowed:   float64(count) <= rule.Max,
			Remaining: rule.Max - float64(count),
			ResetAt:   time.Now().Add(remaining),
		}
		if res.Remaining < 0 {
			res.Remaining = 0
		}
		if !res.Allowed {
			res.RetryAfter = remaining
		}
		return res, nil
	})
	if err != nil {
		return d.local.Check(key, rule)
	}
	return out.(Result), nil
}
