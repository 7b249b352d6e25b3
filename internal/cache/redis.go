package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultPrefix = "myshop:"
	versionKey    = "stats:version"
)

// Redis is a StatsCache shared by every instance behind the same Redis.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis connects to c.RedisAddr and checks the connection.
func NewRedis(ctx context.Context, c *Config) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr: c.RedisAddr,
		DB:   c.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("can't connect to redis at %s: %w", c.RedisAddr, err)
	}
	return NewRedisWithClient(client, c.Prefix), nil
}

func NewRedisWithClient(client *redis.Client, prefix string) *Redis {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &Redis{client: client, prefix: prefix}
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return r.client.Set(ctx, r.prefix+key, value, ttl).Err()
}

func (r *Redis) Version(ctx context.Context) (int64, error) {
	v, err := r.client.Get(ctx, r.prefix+versionKey).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return v, err
}

// Bump increments the shared version. Entries of older versions expire on
// their own TTL.
func (r *Redis) Bump(ctx context.Context) error {
	return r.client.Incr(ctx, r.prefix+versionKey).Err()
}

func (r *Redis) Close() error {
	return r.client.Close()
}
