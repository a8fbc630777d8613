package embcache

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Entry is a cached vector with the time it was stored.
type Entry struct {
	Vector   []float32
	StoredAt time.Time
}

// Cache is a bounded in-process LRU of embeddings with a per-entry TTL.
// Safe for concurrent use; concurrent Puts of the same key keep the last one.
type Cache struct {
	lru *expirable.LRU[string, Entry]
	now func() time.Time
}

// NewCache creates a cache holding at most capacity entries for ttl each.
// ttl <= 0 disables expiry.
func NewCache(capacity int, ttl time.Duration) *Cache {
	if capacity <= 0 {
		capacity = 1
	}
	return &Cache{
		lru: expirable.NewLRU[string, Entry](capacity, nil, ttl),
		now: time.Now,
	}
}

// Get returns a copy of the cached entry.
func (c *Cache) Get(key string) (Entry, bool) {
	e, ok := c.lru.Get(key)
	if !ok {
		return Entry{}, false
	}
	e.Vector = cloneVector(e.Vector)
	return e, true
}

// Put stores a copy of vec under key.
func (c *Cache) Put(key string, vec []float32) {
	c.lru.Add(key, Entry{Vector: cloneVector(vec), StoredAt: c.now()})
}

// Evict removes key and reports whether it was present.
func (c *Cache) Evict(key string) bool {
	return c.lru.Remove(key)
}

// Purge drops every entry.
func (c *Cache) Purge() {
	c.lru.Purge()
}

// Len returns the number of live entries.
func (c *Cache) Len() int {
	return c.lru.Len()
}

func cloneVector(v []float32) []float32 {
	if v == nil {
		return nil
	}
	out := make([]float32, len(v))
	copy(out, v)
	return out
}
