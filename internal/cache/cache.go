// Package cache provides a time-bounded memo cache for external lookups.
package cache

import (
	"errors"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
)

// DefaultTTL is how long a lookup result stays valid.
const DefaultTTL = 24 * time.Hour

// TTL caches values by key for a fixed validity window. Error-shaped results
// are cached like any other value, so a hit is indistinguishable from the
// original call. A loader can decline caching for results that describe the
// caller rather than the source, such as a cancelled request.
type TTL[V any] struct {
	cache *gocache.Cache
	group singleflight.Group
}

// New creates a cache whose entries expire after ttl. Expired entries are
// purged every cleanupInterval; zero disables the janitor.
func New[V any](ttl, cleanupInterval time.Duration) *TTL[V] {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &TTL[V]{cache: gocache.New(ttl, cleanupInterval)}
}

// Get returns the cached value for key, if present and not expired.
func (c *TTL[V]) Get(key string) (V, bool) {
	if val, found := c.cache.Get(key); found {
		return val.(V), true
	}
	var zero V
	return zero, false
}

// errNotStored marks a shared load whose result the loader declined to cache.
var errNotStored = errors.New("cache: result not stored")

// GetOrLoad returns the cached value for key, calling load on a miss.
// Concurrent misses for the same key share a single load call. load reports
// whether its result may be cached; GetOrLoad reports false when the returned
// value came from a load that was not stored.
func (c *TTL[V]) GetOrLoad(key string, load func() (V, bool)) (V, bool) {
	if v, ok := c.Get(key); ok {
		return v, true
	}

	val, err, _ := c.group.Do(key, func() (interface{}, error) {
		if v, ok := c.Get(key); ok {
			return v, nil
		}
		v, keep := load()
		if !keep {
			return v, errNotStored
		}
		c.cache.Set(key, v, gocache.DefaultExpiration)
		return v, nil
	})
	return val.(V), err == nil
}

// Len returns the number of cached entries, including expired ones not yet purged.
func (c *TTL[V]) Len() int {
	return c.cache.ItemCount()
}

// Flush removes all entries.
func (c *TTL[V]) Flush() {
	c.cache.Flush()
}
