// Package cache provides the key/value stores behind the resolution cache.
// Values are short strings (Wikidata ids or an empty marker); both the
// in-process and the Redis store expire entries after a TTL.
package cache

import (
	"context"
	"strings"
	"time"

	"github.com/kraenzle-ritter/resources/pkg/constants"
	"github.com/kraenzle-ritter/resources/pkg/errors"
)

// Store is a string cache with per-entry expiry.
type Store interface {
	// Get returns the cached value and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set stores value for ttl; a zero ttl uses the store's default.
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	// Delete removes key.
	Delete(ctx context.Context, key string) error
	// Close releases the store's resources.
	Close() error
}

// Drivers.
const (
	DriverNone   = "none"
	DriverMemory = "memory"
	DriverRedis  = "redis"
)

// Config selects and configures a store.
type Config struct {
	Driver   string        `mapstructure:"driver" yaml:"driver"`
	TTL      time.Duration `mapstructure:"ttl" yaml:"ttl"`
	RedisURL string        `mapstructure:"redis_url" yaml:"redis_url"`
	Prefix   string        `mapstructure:"prefix" yaml:"prefix"`
}

// Open builds the store named by cfg.Driver. The "none" driver and an empty
// driver return a nil Store, meaning caching is disabled.
func Open(ctx context.Context, cfg Config) (Store, error) {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = constants.CacheTTL
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", DriverNone:
		return nil, nil
	case DriverMemory:
		return NewMemory(ttl, constants.CacheCleanupInterval), nil
	case DriverRedis:
		r, err := DialRedis(ctx, cfg.RedisURL, cfg.Prefix, ttl)
		if err != nil {
			return nil, err
		}
		return r, nil
	default:
		return nil, errors.NewConfigError("cache", "unknown cache driver "+cfg.Driver, nil)
	}
}
