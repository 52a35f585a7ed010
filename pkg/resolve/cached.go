package resolve

import (
	"context"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/kraenzle-ritter/resources/internal/cache"
	"github.com/kraenzle-ritter/resources/internal/metrics"
	"github.com/kraenzle-ritter/resources/pkg/constants"
	"github.com/kraenzle-ritter/resources/pkg/logging"
	"github.com/kraenzle-ritter/resources/pkg/lookup"
)

// Cached decorates a Resolver with a TTL cache and request coalescing.
// OK and Empty outcomes are cached; Failed outcomes never are, so a
// transient outage does not pin a negative answer.
type Cached struct {
	next    Resolver
	store   cache.Store
	ttl     time.Duration
	group   singleflight.Group
	metrics *metrics.Metrics
}

// NewCached wraps next. A zero ttl uses constants.CacheTTL.
func NewCached(next Resolver, store cache.Store, ttl time.Duration, m *metrics.Metrics) *Cached {
	if ttl <= 0 {
		ttl = constants.CacheTTL
	}
	return &Cached{next: next, store: store, ttl: ttl, metrics: m}
}

// CacheKey returns the key under which a resolution is cached.
func CacheKey(provider, id string) string {
	return "resolve:" + strings.ToLower(strings.TrimSpace(provider)) + ":" + strings.TrimSpace(id)
}

// Resolve implements Resolver.
func (c *Cached) Resolve(ctx context.Context, provider, id string) lookup.Result[string] {
	key := CacheKey(provider, id)

	if v, ok, err := c.store.Get(ctx, key); err != nil {
		c.metrics.IncCache("error")
		logging.FromContext(ctx).Warn().Err(err).Str("key", key).Msg("Resolution cache read failed")
	} else if ok {
		c.metrics.IncCache("hit")
		if v == "" {
			return lookup.Empty[string]("cached: no wikidata entity")
		}
		return lookup.OK(v)
	}
	c.metrics.IncCache("miss")

	// The shared call outlives any one caller, so a caller that gives up
	// does not fail the others waiting on the same key.
	ch := c.group.DoChan(key, func() (any, error) {
		shared := context.WithoutCancel(ctx)
		r := c.next.Resolve(shared, provider, id)
		if !r.IsFailed() {
			if err := c.store.Set(shared, key, r.Value(), c.ttl); err != nil {
				logging.FromContext(ctx).Warn().Err(err).Str("key", key).Msg("Resolution cache write failed")
			}
		}
		return r, nil
	})
	select {
	case res := <-ch:
		return res.Val.(lookup.Result[string])
	case <-ctx.Done():
		return lookup.Failed[string](ctx.Err())
	}
}

// Forget drops a cached resolution.
func (c *Cached) Forget(ctx context.Context, provider, id string) error {
	return c.store.Delete(ctx, CacheKey(provider, id))
}
