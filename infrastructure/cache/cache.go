package cache

import (
	"context"
	"time"

	"hacker-feed/infrastructure/logger"

	"github.com/redis/go-redis/v9"
)

// NewCache connects to Redis at addr. A nil client is returned on failure
// so callers can degrade to always-recompute instead of crashing.
func NewCache(ctx context.Context, addr, username, password string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Username: username,
		Password: password,
	})
	return ping(ctx, client)
}

// NewCacheFromURL connects using a redis:// connection string
// (e.g. REDIS_URL for managed instances).
func NewCacheFromURL(ctx context.Context, rawURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		logger.GetLogger().WithField("error", err).Warn("Invalid Redis URL")
		return nil, err
	}
	return ping(ctx, redis.NewClient(opts))
}

func ping(ctx context.Context, client *redis.Client) (*redis.Client, error) {
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.GetLogger().WithField("error", err).Warn("Redis not available - continuing without cache")
		_ = client.Close()
		return nil, err
	}
	return client, nil
}
