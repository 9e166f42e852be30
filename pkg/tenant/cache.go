package tenant

import (
	"context"
	"sync"
	"time"
)

// Cache fronts the tenant Provider so hot tenants are not re-read from
// the database on every request.
type Cache interface {
	// Get retrieves a cached tenant by slug.
	Get(ctx context.Context, slug string) (*Tenant, bool)

	// Set stores a tenant with the given TTL.
	Set(ctx context.Context, slug string, t *Tenant, ttl time.Duration)

	// Delete evicts a tenant, e.g. after a subscription change.
	Delete(ctx context.Context, slug string)

	// Close releases cache resources.
	Close() error
}

// DefaultCacheSize caps the in-memory cache.
const DefaultCacheSize = 1000

type cacheItem struct {
	tenant    *Tenant
	expiresAt time.Time
}

// memoryCache is a size-capped in-memory cache with TTL expiry and LRU
// eviction, plus a background sweep for expired entries.
type memoryCache struct {
	mu      sync.Mutex
	items   map[string]cacheItem
	lru     []string
	maxSize int
	stop    chan struct{}
	done    chan struct{}
	closed  bool
}

// NewMemoryCache creates an in-memory tenant cache.
func NewMemoryCache(maxSize int) Cache {
	if maxSize <= 0 {
		maxSize = DefaultCacheSize
	}
	c := &memoryCache{
		items:   make(map[string]cacheItem),
		lru:     make([]string, 0, maxSize),
		maxSize: maxSize,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go c.sweep()
	return c
}

func (c *memoryCache) Get(ctx context.Context, slug string) (*Tenant, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	item, ok := c.items[slug]
	if !ok {
		return nil, false
	}
	if time.Now().After(item.expiresAt) {
		delete(c.items, slug)
		c.removeLRU(slug)
		return nil, false
	}

	c.touchLRU(slug)
	return item.tenant, true
}

func (c *memoryCache) Set(ctx context.Context, slug string, t *Tenant, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.items[slug]; !exists && len(c.items) >= c.maxSize && len(c.lru) > 0 {
		evict := c.lru[0]
		c.lru = c.lru[1:]
		delete(c.items, evict)
	}

	c.items[slug] = cacheItem{tenant: t, expiresAt: time.Now().Add(ttl)}
	c.touchLRU(slug)
}

func (c *memoryCache) Delete(ctx context.Context, slug string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.items, slug)
	c.removeLRU(slug)
}

func (c *memoryCache) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	close(c.stop)
	<-c.done
	return nil
}

func (c *memoryCache) sweep() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	defer close(c.done)

	for {
		select {
		case <-ticker.C:
			c.removeExpired()
		case <-c.stop:
			return
		}
	}
}

func (c *memoryCache) removeExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for slug, item := range c.items {
		if now.After(item.expiresAt) {
			delete(c.items, slug)
			c.removeLRU(slug)
		}
	}
}

func (c *memoryCache) touchLRU(slug string) {
	c.removeLRU(slug)
	c.lru = append(c.lru, slug)
}

func (c *memoryCache) removeLRU(slug string) {
	for i, s := range c.lru {
		if s == slug {
			c.lru = append(c.lru[:i], c.lru[i+1:]...)
			return
		}
	}
}
