package cache

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/kraenzle-ritter/resources/pkg/errors"
)

// DefaultPrefix namespaces keys written to a shared Redis.
const DefaultPrefix = "resources:"

// Redis is a Store backed by a Redis server.
type Redis struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	owned  bool
}

// NewRedis wraps an existing client. The client is not closed by Close.
func NewRedis(client *redis.Client, prefix string, ttl time.Duration) *Redis {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Redis{client: client, prefix: prefix, ttl: ttl}
}

// DialRedis connects to the server at url (redis://host:port/db) and checks
// the connection.
func DialRedis(ctx context.Context, url, prefix string, ttl time.Duration) (*Redis, error) {
	if url == "" {
		return nil, errors.NewConfigError("cache", "redis_url is required for the redis driver", nil)
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.NewConfigError("cache", "invalid redis_url", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.NewConfigError("cache", "redis ping failed", err)
	}

	r := NewRedis(client, prefix, ttl)
	r.owned = true
	return r, nil
}

// Get implements Store.
func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := r.client.Get(ctx, r.prefix+key).Result()
	if stderrors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.WrapStore("get", "redis", key, err)
	}
	return v, true, nil
}

// Set implements Store.
func (r *Redis) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = r.ttl
	}
	if err := r.client.Set(ctx, r.prefix+key, value, ttl).Err(); err != nil {
		return errors.WrapStore("set", "redis", key, err)
	}
	return nil
}

// Delete implements Store.
func (r *Redis) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.prefix+key).Err(); err != nil {
		return errors.WrapStore("delete", "redis", key, err)
	}
	return nil
}

// Health checks the connection.
func (r *Redis) Health(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close implements Store. Clients passed to NewRedis stay open.
func (r *Redis) Close() error {
	if !r.owned {
		return nil
	}
	return r.client.Close()
}
