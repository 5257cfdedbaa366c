package cache

import (
	"context"
	"time"

	"lawlink-api/core/config"
	"lawlink-api/core/constants"
	"lawlink-api/core/logger"

	"github.com/redis/go-redis/v9"
)

type Cache interface {
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, key string) error
	Expire(ctx context.Context, key string, ttl time.Duration) error

	AddToTokenBlacklist(ctx context.Context, token string) error
	IsTokenBlacklisted(ctx context.Context, token string) (bool, error)

	Close() error
}

type redisCache struct {
	client *redis.Client
}

func NewCache() (Cache, error) {
	cfg := config.Get()
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), constants.DefaultTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	logger.Info("Cache:NewCache:Connected", "addr", cfg.Redis.Addr)
	return &redisCache{client: client}, nil
}

// NewCacheWithClient wraps an existing client, used by tests with miniredis.
func NewCacheWithClient(client *redis.Client) Cache {
	return &redisCache{client: client}
}

func (c *redisCache) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

func (c *redisCache) Get(ctx context.Context, key string) (string, error) {
	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", nil
	}
	return val, err
}

func (c *redisCache) Del(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}

func (c *redisCache) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return c.client.Expire(ctx, key, ttl).Err()
}

func (c *redisCache) AddToTokenBlacklist(ctx context.Context, token string) error {
	key := constants.RedisKeyTokenBlacklist + token
	return c.client.Set(ctx, key, "1", config.Get().JWT.RefreshTokenTTL).Err()
}

func (c *redisCache) IsTokenBlacklisted(ctx context.Context, token string) (bool, error) {
	key := constants.RedisKeyTokenBlacklist + token
	n, err := c.client.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (c *redisCache) Close() error {
	return c.client.Close()
}
