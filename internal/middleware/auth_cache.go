package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

const (
	adminCacheTTL      = 5 * time.Minute
	negativeCacheTTL   = 30 * time.Second
	maxCacheEntries    = 1000
	cacheCleanupPeriod = 60 * time.Second
)

// errCachedNotFound is returned for negative cache hits.
var errCachedNotFound = errors.New("admin key not found (cached)")

type cachedAdmin struct {
	name      string
	negative  bool
	fetchedAt time.Time
}

func (ca cachedAdmin) expired(now time.Time) bool {
	ttl := adminCacheTTL
	if ca.negative {
		ttl = negativeCacheTTL
	}

	return now.Sub(ca.fetchedAt) >= ttl
}

// hashKey returns the hex SHA-256 of an API key so raw keys never sit in memory.
func hashKey(apiKey string) string {
	h := sha256.Sum256([]byte(apiKey))
	return hex.EncodeToString(h[:])
}

// CachedAdminLookup wraps an AdminLookup with a bounded in-memory cache.
// Concurrent misses for the same key share one lookup.
type CachedAdminLookup struct {
	inner AdminLookup
	group singleflight.Group
	mu    sync.RWMutex
	cache map[string]cachedAdmin
}

// NewCachedAdminLookup creates a caching wrapper around inner. ctx bounds the
// lifetime of the background eviction goroutine.
func NewCachedAdminLookup(ctx context.Context, inner AdminLookup) *CachedAdminLookup {
	c := &CachedAdminLookup{
		inner: inner,
		cache: make(map[string]cachedAdmin),
	}
	go c.evictLoop(ctx)

	return c
}

func (c *CachedAdminLookup) evictLoop(ctx context.Context) {
	ticker := time.NewTicker(cacheCleanupPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.mu.Lock()
			c.evictExpiredLocked(time.Now())
			c.mu.Unlock()
		}
	}
}

func (c *CachedAdminLookup) evictExpiredLocked(now time.Time) {
	for k, v := range c.cache {
		if v.expired(now) {
			delete(c.cache, k)
		}
	}
}

// GetAdminByAPIKey returns the cached key name or delegates to the inner lookup.
// Failures are cached briefly so repeated bad keys do not reach the database.
func (c *CachedAdminLookup) GetAdminByAPIKey(ctx context.Context, apiKey string) (string, error) {
	hk := hashKey(apiKey)

	c.mu.RLock()
	entry, ok := c.cache[hk]
	c.mu.RUnlock()

	if ok && !entry.expired(time.Now()) {
		if entry.negative {
			return "", errCachedNotFound
		}

		return entry.name, nil
	}

	v, err, _ := c.group.Do(hk, func() (any, error) {
		name, err := c.inner.GetAdminByAPIKey(ctx, apiKey)
		c.store(hk, cachedAdmin{name: name, negative: err != nil, fetchedAt: time.Now()})

		return name, err
	})
	if err != nil {
		return "", err
	}

	name, _ := v.(string)

	return name, nil
}

func (c *CachedAdminLookup) store(hk string, entry cachedAdmin) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.cache) >= maxCacheEntries {
		c.evictExpiredLocked(time.Now())

		for k := range c.cache {
			if len(c.cache) < maxCacheEntries {
				break
			}
			delete(c.cache, k)
		}
	}

	c.cache[hk] = entry
}
