package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"trade-signals/models"
	"trade-signals/observability"
	"trade-signals/repository"
)

// Namespaces for the two sentiment caches
const (
	NamespaceNews       = "news"
	NamespaceCommentary = "commentary"
)

// Cache is an in-memory TTL cache that writes through to a repository.Store.
// Concurrent fills of the same key are last-writer-wins.
type Cache struct {
	namespace string
	ttl       time.Duration
	store     repository.Store
	now       func() time.Time

	mu      sync.RWMutex
	entries map[string]models.CacheEntry
}

// New creates a cache for namespace. A zero ttl keeps entries in memory until the process
// restarts; such entries are never written to the store.
func New(namespace string, ttl time.Duration, store repository.Store) *Cache {
	return &Cache{
		namespace: namespace,
		ttl:       ttl,
		store:     store,
		now:       time.Now,
		entries:   make(map[string]models.CacheEntry),
	}
}

// WithClock replaces the time source (useful for testing)
func (c *Cache) WithClock(now func() time.Time) *Cache {
	c.now = now
	return c
}

// Namespace returns the cache's namespace
func (c *Cache) Namespace() string {
	return c.namespace
}

// Get returns the payload stored under key when it exists and has not expired
func (c *Cache) Get(key string) (json.RawMessage, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	metrics := observability.GetMetrics()
	if !ok || entry.IsExpired(c.now()) {
		metrics.RecordCacheMiss(c.namespace)
		return nil, false
	}
	metrics.RecordCacheHit(c.namespace)
	return entry.Payload, true
}

// GetJSON decodes the payload under key into out
func (c *Cache) GetJSON(key string, out any) (bool, error) {
	payload, ok := c.Get(key)
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return false, fmt.Errorf("decode cached %s entry %s: %w", c.namespace, key, err)
	}
	return true, nil
}

// Set stores payload under key and persists it unless the cache has no TTL.
// The in-memory entry is kept even when persisting fails.
func (c *Cache) Set(ctx context.Context, key string, payload json.RawMessage) error {
	entry := models.CacheEntry{
		Key:       key,
		Payload:   payload,
		CreatedAt: c.now(),
		TTL:       c.ttl,
	}

	c.mu.Lock()
	c.entries[key] = entry
	n := len(c.entries)
	c.mu.Unlock()

	observability.GetMetrics().SetCacheEntries(c.namespace, n)

	if c.store == nil || c.ttl <= 0 {
		return nil
	}
	if err := c.store.PutEntry(ctx, c.namespace, entry); err != nil {
		return fmt.Errorf("persist %s entry: %w", c.namespace, err)
	}
	return nil
}

// SetJSON encodes v and stores it under key
func (c *Cache) SetJSON(ctx context.Context, key string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s entry: %w", c.namespace, err)
	}
	return c.Set(ctx, key, payload)
}

// Load replaces the in-memory contents with the unexpired entries from the store.
// Stored entries without a TTL belong to an earlier process and are deleted.
func (c *Cache) Load(ctx context.Context) error {
	if c.store == nil {
		return nil
	}
	entries, err := c.store.LoadEntries(ctx, c.namespace)
	if err != nil {
		return fmt.Errorf("load %s entries: %w", c.namespace, err)
	}

	now := c.now()
	loaded := make(map[string]models.CacheEntry, len(entries))
	var stale []string
	for _, e := range entries {
		if e.TTL <= 0 {
			stale = append(stale, e.Key)
			continue
		}
		if e.IsExpired(now) {
			continue
		}
		loaded[e.Key] = e
	}

	if len(stale) > 0 {
		if err := c.store.DeleteEntries(ctx, c.namespace, stale); err != nil {
			observability.Warn("failed to delete stale cache entries", "namespace", c.namespace, "entries", len(stale), "error", err)
		}
	}

	c.mu.Lock()
	c.entries = loaded
	c.mu.Unlock()

	observability.GetMetrics().SetCacheEntries(c.namespace, len(loaded))
	observability.Info("cache loaded", "namespace", c.namespace, "entries", len(loaded), "stored", len(entries))
	return nil
}

// Prune drops entries expired at now from memory and the store, returning how many were removed
func (c *Cache) Prune(ctx context.Context, now time.Time) (int, error) {
	c.mu.Lock()
	var expired []string
	for key, e := range c.entries {
		if e.IsExpired(now) {
			expired = append(expired, key)
			delete(c.entries, key)
		}
	}
	n := len(c.entries)
	c.mu.Unlock()

	observability.GetMetrics().SetCacheEntries(c.namespace, n)

	if len(expired) == 0 || c.store == nil {
		return len(expired), nil
	}
	if err := c.store.DeleteEntries(ctx, c.namespace, expired); err != nil {
		return len(expired), fmt.Errorf("delete expired %s entries: %w", c.namespace, err)
	}
	return len(expired), nil
}

// Len returns the number of entries held in memory, expired or not
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
