// Package geocode resolves place names to coordinates via Nominatim, with
// an explicit age-evicted cache.
package geocode

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/spectralvoice/hauntify/internal/model"
)

// Cache is an age-evicted in-memory cache of geocoding results. It is
// created at process start, injected into the client, swept on a timer
// tick, and never survives a restart.
type Cache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	ttl     time.Duration
}

type cacheEntry struct {
	hit     model.LocationHit
	expires time.Time
}

// NewCache creates a cache with the given entry lifetime.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
	}
}

// Get returns a cached hit if present and unexpired.
func (c *Cache) Get(place string) (model.LocationHit, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[cacheKey(place)]
	if !ok || time.Now().After(entry.expires) {
		return model.LocationHit{}, false
	}
	return entry.hit, true
}

// Put stores a hit under the normalized place name.
func (c *Cache) Put(place string, hit model.LocationHit) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cacheKey(place)] = cacheEntry{
		hit:     hit,
		expires: time.Now().Add(c.ttl),
	}
}

// Sweep removes expired entries and reports how many were evicted.
func (c *Cache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := time.Now()
	evicted := 0
	for key, entry := range c.entries {
		if now.After(entry.expires) {
			delete(c.entries, key)
			evicted++
		}
	}
	return evicted
}

// Len returns the current entry count.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// StartSweeper sweeps the cache on an interval until ctx is cancelled.
func (c *Cache) StartSweeper(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				c.Sweep()
			}
		}
	}()
}

func cacheKey(place string) string {
	return strings.ToLower(strings.TrimSpace(place))
}
