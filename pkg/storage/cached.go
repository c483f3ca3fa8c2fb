package storage

import (
	"context"
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

type cacheEntry struct {
	value   []byte
	missing bool
}

// Cached wraps a Backend with an LRU read cache. Misses are cached too, so repeated
// lookups of absent keys (empty history, no grant) stay off the backend.
type Cached struct {
	inner Backend
	cache *lru.Cache[string, cacheEntry]
}

// NewCached wraps inner with an LRU cache holding up to size entries
func NewCached(inner Backend, size int) (*Cached, error) {
	cache, err := lru.New[string, cacheEntry](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create lru cache: %w", err)
	}
	return &Cached{inner: inner, cache: cache}, nil
}

// Get serves from cache, falling back to the wrapped backend
func (c *Cached) Get(ctx context.Context, key string) ([]byte, error) {
	if e, ok := c.cache.Get(key); ok {
		if e.missing {
			return nil, ErrNotFound
		}
		return append([]byte(nil), e.value...), nil
	}

	v, err := c.inner.Get(ctx, key)
	switch {
	case errors.Is(err, ErrNotFound):
		c.cache.Add(key, cacheEntry{missing: true})
		return nil, err
	case err != nil:
		return nil, err
	}

	c.cache.Add(key, cacheEntry{value: append([]byte(nil), v...)})
	return v, nil
}

// Commit writes through to the wrapped backend and refreshes the cache
func (c *Cached) Commit(ctx context.Context, writes []Write) error {
	if err := c.inner.Commit(ctx, writes); err != nil {
		// the backend may have applied part of the batch before failing
		for _, w := range writes {
			c.cache.Remove(w.Key)
		}
		return err
	}

	for _, w := range writes {
		if w.Delete {
			c.cache.Add(w.Key, cacheEntry{missing: true})
			continue
		}
		c.cache.Add(w.Key, cacheEntry{value: append([]byte(nil), w.Value...)})
	}
	return nil
}

// Len returns the number of cached entries
func (c *Cached) Len() int {
	return c.cache.Len()
}

// HealthCheck delegates to the wrapped backend
func (c *Cached) HealthCheck(ctx context.Context) error {
	return c.inner.HealthCheck(ctx)
}

// Close purges the cache and closes the wrapped backend
func (c *Cached) Close() error {
	c.cache.Purge()
	return c.inner.Close()
}
