package locator

import (
	"context"
	"sync"
)

// Cache wraps a Resolver with a per-source descriptor cache. It is the only
// mutable shared state between jobs against the same source: Resolve and
// Invalidate synchronize so a retry after invalidation always observes a
// freshly resolved descriptor, never the expired one.
type Cache struct {
	mu       sync.Mutex
	resolver Resolver
	entries  map[string]MediaDescriptor
}

func NewCache(resolver Resolver) *Cache {
	return &Cache{
		resolver: resolver,
		entries:  make(map[string]MediaDescriptor),
	}
}

func (c *Cache) Resolve(ctx context.Context, source string) (MediaDescriptor, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if desc, ok := c.entries[source]; ok && desc.Usable() {
		return desc, nil
	}

	desc, err := c.resolver.Resolve(ctx, source)
	if err != nil {
		return MediaDescriptor{}, err
	}
	c.entries[source] = desc
	return desc, nil
}

func (c *Cache) Invalidate(source string) {
	c.mu.Lock()
	delete(c.entries, source)
	c.mu.Unlock()
	c.resolver.Invalidate(source)
}
