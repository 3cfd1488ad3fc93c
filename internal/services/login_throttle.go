package services

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	maxFailedLogins    = 10
	failedLoginWindow  = 15 * time.Minute
	failedLoginKeyBase = "login_fail:"
)

// LoginThrottle counts failed logins per username.
type LoginThrottle interface {
	Blocked(ctx context.Context, username string) (bool, error)
	Failed(ctx context.Context, username string) error
	Reset(ctx context.Context, username string) error
}

// RedisLoginThrottle keeps the failure counters in Redis so they survive
// restarts and are shared between server processes.
type RedisLoginThrottle struct {
	redis  *redis.Client
	limit  int
	window time.Duration
}

func NewRedisLoginThrottle(client *redis.Client) *RedisLoginThrottle {
	return &RedisLoginThrottle{redis: client, limit: maxFailedLogins, window: failedLoginWindow}
}

func failedLoginKey(username string) string {
	return failedLoginKeyBase + strings.ToLower(username)
}

func (t *RedisLoginThrottle) Blocked(ctx context.Context, username string) (bool, error) {
	n, err := t.redis.Get(ctx, failedLoginKey(username)).Int()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return n >= t.limit, nil
}

// Failed bumps the counter. The window starts at the first failure.
func (t *RedisLoginThrottle) Failed(ctx context.Context, username string) error {
	key := failedLoginKey(username)
	pipe := t.redis.TxPipeline()
	pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, t.window)
	_, err := pipe.Exec(ctx)
	return err
}

func (t *RedisLoginThrottle) Reset(ctx context.Context, username string) error {
	return t.redis.Del(ctx, failedLoginKey(username)).Err()
}
