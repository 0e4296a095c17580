// Package cache provides the bounded hot-set LRU sitting in front of the
// engine. It holds committed values only — the store Facade is the only
// caller, and it never populates the cache before the engine has
// committed a mutation (the WAL append follows the cache update).
package cache

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// defaultCapacity matches spec's documented default.
const defaultCapacity = 1000

// Cache is a bounded, least-recently-used key→value map. Any access —
// read or write — promotes the entry to most-recent; overflow evicts the
// least-recently-used entry.
type Cache struct {
	lru *lru.Cache[string, string]
}

// New creates a cache with the given capacity. A non-positive capacity
// falls back to the default.
func New(capacity int) *Cache {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	c, err := lru.New[string, string](capacity)
	if err != nil {
		// lru.New only errors on a non-positive size, which is guarded above.
		c, _ = lru.New[string, string](defaultCapacity)
	}
	return &Cache{lru: c}
}

// Get returns the cached value for key, promoting it to most-recent.
func (c *Cache) Get(key string) (string, bool) {
	return c.lru.Get(key)
}

// Put inserts or updates key, counting as an access.
func (c *Cache) Put(key, value string) {
	c.lru.Add(key, value)
}

// Evict removes key from the cache if present.
func (c *Cache) Evict(key string) {
	c.lru.Remove(key)
}
