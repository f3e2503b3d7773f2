package cache

import (
	"sync"
	"time"
)

// DefaultHealthCacheTTL is the default TTL for health check caching (30 seconds).
const DefaultHealthCacheTTL = 30 * time.Second

// HealthCache remembers the outcome of a health probe for a short TTL
// so frequent /api/health polling does not hit the store every time.
type HealthCache struct {
	mu        sync.RWMutex
	err       error
	checkedAt time.Time
	ttl       time.Duration
	now       func() time.Time
}

// NewHealthCache creates a new HealthCache with the specified TTL.
// A TTL of 0 effectively disables caching.
func NewHealthCache(ttl time.Duration) *HealthCache {
	return &HealthCache{ttl: ttl, now: time.Now}
}

// Get returns the cached probe result and whether it is still within TTL.
func (c *HealthCache) Get() (valid bool, err error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	valid = !c.checkedAt.IsZero() && c.now().Sub(c.checkedAt) < c.ttl
	return valid, c.err
}

// Set records a probe result.
func (c *HealthCache) Set(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = err
	c.checkedAt = c.now()
}

// Check returns the cached result or runs probe and caches its outcome.
func (c *HealthCache) Check(probe func() error) error {
	if valid, err := c.Get(); valid {
		return err
	}
	err := probe()
	c.Set(err)
	return err
}

// Invalidate clears the cache, forcing the next check to run the probe.
func (c *HealthCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checkedAt = time.Time{}
}
