package utils

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

type cacheEntry struct {
	data      interface{}
	expiresAt time.Time
}

// TTLCache is a small LRU with per-entry expiry, used for the public post
// listing. Entries are request-scoped snapshots, invalidated on publish and
// delete.
type TTLCache struct {
	lru *lru.Cache[string, cacheEntry]
}

func NewTTLCache(size int) (*TTLCache, error) {
	l, err := lru.New[string, cacheEntry](size)
	if err != nil {
		return nil, err
	}
	return &TTLCache{lru: l}, nil
}

func (c *TTLCache) Set(key string, data interface{}, ttl time.Duration) {
	c.lru.Add(key, cacheEntry{data: data, expiresAt: time.Now().Add(ttl)})
}

// Get returns nil if the key is absent or expired.
func (c *TTLCache) Get(key string) interface{} {
	entry, ok := c.lru.Get(key)
	if !ok {
		return nil
	}
	if time.Now().After(entry.expiresAt) {
		c.lru.Remove(key)
		return nil
	}
	return entry.data
}

func (c *TTLCache) Delete(key string) {
	c.lru.Remove(key)
}

// Purge drops every entry.
func (c *TTLCache) Purge() {
	c.lru.Purge()
}
