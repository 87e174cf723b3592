package ratelimit

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisLimiter implementa Limiter sobre Redis para despliegues con varias
// replicas del API. Usa INCR + EXPIRE por ventana fija.
type RedisLimiter struct {
	client *redis.Client
	prefix string
}

func NewRedisLimiter(client *redis.Client) *RedisLimiter {
	return &RedisLimiter{client: client, prefix: "rl"}
}

func (r *RedisLimiter) Allow(ctx context.Context, key string, windows []Window) (Result, error) {
	for _, w := range windows {
		rk := fmt.Sprintf("%s:%s:%s", r.prefix, key, w.Per)

		count, err := r.client.Incr(ctx, rk).Result()
		if err != nil {
			return Result{}, fmt.Errorf("ratelimit: incr %s: %w", rk, err)
		}
		if count == 1 {
			if err := r.client.Expire(ctx, rk, w.Per).Err(); err != nil {
				return Result{}, fmt.Errorf("ratelimit: expire %s: %w", rk, err)
			}
		}
		if int(count) > w.Limit {
			ttl, err := r.client.TTL(ctx, rk).Result()
			if err != nil || ttl < 0 {
				ttl = w.Per
			}
			return Result{Allowed: false, RetryAfter: ttl}, nil
		}
	}
	return Result{Allowed: true}, nil
}

var _ Limiter = (*RedisLimiter)(nil)
