// In-memory TTL cache for website lookups
// Key: normalised domain → description (misses are cached too)
package services

import (
	"strings"
	"sync"
	"time"
)

type siteCacheEntry struct {
	Description string
	Found       bool
	CachedAt    time.Time
}

type siteCache struct {
	mu      sync.RWMutex
	entries map[string]*siteCacheEntry
	ttl     time.Duration
	now     func() time.Time
}

func newSiteCache(ttl time.Duration) *siteCache {
	return &siteCache{
		entries: map[string]*siteCacheEntry{},
		ttl:     ttl,
		now:     time.Now,
	}
}

func siteCacheKey(domain string) string {
	return strings.ToLower(strings.TrimSpace(domain))
}

// Get returns a cached lookup if still fresh, plus a hit boolean.
func (c *siteCache) Get(domain string) (string, bool, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[siteCacheKey(domain)]
	if !ok || c.now().Sub(e.CachedAt) > c.ttl {
		return "", false, false
	}
	return e.Description, e.Found, true
}

func (c *siteCache) Set(domain, description string, found bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[siteCacheKey(domain)] = &siteCacheEntry{
		Description: description,
		Found:       found,
		CachedAt:    c.now(),
	}
}
