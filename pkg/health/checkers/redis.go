package checkers

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisChecker struct {
	client  redis.UniversalClient
	timeout time.Duration
}

func NewRedisChecker(client redis.UniversalClient) *RedisChecker {
	return &RedisChecker{client: client, timeout: time.Second}
}

func (c *RedisChecker) Name() string { return "redis" }

func (c *RedisChecker) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.client.Ping(ctx).Err()
}
