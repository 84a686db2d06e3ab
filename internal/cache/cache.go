// Package cache keeps serialized query results in redis behind a circuit breaker.
package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"
	"github.com/rotisserie/eris"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/ougirez/ayudas/internal/config"
	"github.com/ougirez/ayudas/internal/pkg/logger"
	"github.com/ougirez/ayudas/internal/pkg/metrics"
)

const (
	keyPrefix     = "ayudas:"
	generationKey = keyPrefix + "generation"
)

// Cache stores query results. Cached values never outlive an Invalidate call.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Invalidate(ctx context.Context) error
	Close() error
}

// New returns a redis cache, or a Noop one when no address is configured.
func New(ctx context.Context, cfg config.CacheConfig) (Cache, error) {
	if cfg.RedisAddr == "" {
		return Noop{}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, eris.Wrapf(err, "cache: ping %s", cfg.RedisAddr)
	}

	return NewRedis(client, cfg), nil
}

// Redis namespaces keys by a generation counter; Invalidate bumps the counter
// so stale entries are never read again and expire through their TTL.
type Redis struct {
	client  redis.UniversalClient
	ttl     time.Duration
	breaker *gobreaker.CircuitBreaker[[]byte]
}

func NewRedis(client redis.UniversalClient, cfg config.CacheConfig) *Redis {
	failures := cfg.BreakerFailures
	if failures == 0 {
		failures = 5
	}

	settings := gobreaker.Settings{
		Name:        "redis-cache",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warnf(context.Background(), "circuit breaker %s: %s -> %s", name, from, to)
		},
	}

	return &Redis{
		client:  client,
		ttl:     cfg.TTL,
		breaker: gobreaker.NewCircuitBreaker[[]byte](settings),
	}
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	gen, err := r.generation(ctx)
	if err != nil {
		return nil, false, r.fail("get", err)
	}

	var found bool
	value, err := r.breaker.Execute(func() ([]byte, error) {
		b, err := r.client.Get(ctx, scopedKey(gen, key)).Bytes()
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		found = err == nil
		return b, err
	})
	if err != nil {
		return nil, false, r.fail("get", err)
	}

	if found {
		metrics.CacheHitsTotal.Inc()
	} else {
		metrics.CacheMissesTotal.Inc()
	}
	return value, found, nil
}

func (r *Redis) Set(ctx context.Context, key string, value []byte) error {
	gen, err := r.generation(ctx)
	if err != nil {
		return r.fail("set", err)
	}

	_, err = r.breaker.Execute(func() ([]byte, error) {
		return nil, r.client.Set(ctx, scopedKey(gen, key), value, r.ttl).Err()
	})
	if err != nil {
		return r.fail("set", err)
	}
	return nil
}

func (r *Redis) Invalidate(ctx context.Context) error {
	_, err := r.breaker.Execute(func() ([]byte, error) {
		return nil, r.client.Incr(ctx, generationKey).Err()
	})
	if err != nil {
		return r.fail("invalidate", err)
	}
	return nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}

func (r *Redis) generation(ctx context.Context) (int64, error) {
	raw, err := r.breaker.Execute(func() ([]byte, error) {
		b, err := r.client.Get(ctx, generationKey).Bytes()
		if errors.Is(err, redis.Nil) {
			return []byte("0"), nil
		}
		return b, err
	})
	if err != nil {
		return 0, err
	}

	gen, err := strconv.ParseInt(string(raw), 10, 64)
	if err != nil {
		return 0, eris.Wrapf(err, "cache: bad generation %q", raw)
	}
	return gen, nil
}

func (r *Redis) fail(operation string, err error) error {
	metrics.CacheErrorsTotal.WithLabelValues(operation).Inc()
	return eris.Wrapf(err, "cache: %s", operation)
}

func scopedKey(gen int64, key string) string {
	return fmt.Sprintf("%s%d:%s", keyPrefix, gen, key)
}

// Noop never stores anything.
type Noop struct{}

func (Noop) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (Noop) Set(context.Context, string, []byte) error         { return nil }
func (Noop) Invalidate(context.Context) error                  { return nil }
func (Noop) Close() error                                      { return nil }

// Fetch returns the cached value for key or computes it with load and stores it.
// Cache failures are logged and never fail the request.
func Fetch[T any](ctx context.Context, c Cache, key string, load func(context.Context) (T, error)) (T, error) {
	if raw, ok, err := c.Get(ctx, key); err != nil {
		logger.Warnf(ctx, "cache get %s: %v", key, err)
	} else if ok {
		var cached T
		decodeErr := sonic.Unmarshal(raw, &cached)
		if decodeErr == nil {
			return cached, nil
		}
		logger.Warnf(ctx, "cache decode %s: %v", key, decodeErr)
	}

	value, err := load(ctx)
	if err != nil {
		return value, err
	}

	raw, err := sonic.Marshal(value)
	if err != nil {
		logger.Warnf(ctx, "cache encode %s: %v", key, err)
		return value, nil
	}
	if err := c.Set(ctx, key, raw); err != nil {
		logger.Warnf(ctx, "cache set %s: %v", key, err)
	}

	return value, nil
}
