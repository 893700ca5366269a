// Package cache holds completed values under string keys without keeping
// them alive: an entry disappears once the last outside reference to its
// value is dropped.
package cache

import (
	"runtime"
	"sync"
	"weak"

	"golang.org/x/sync/singleflight"
)

// Cache is a weak-valued map safe for concurrent use. With coalescing
// enabled, concurrent Do calls for one key share a single build.
type Cache[V any] struct {
	mu      sync.Mutex
	entries map[string]weak.Pointer[V]
	group   *singleflight.Group
}

// New returns an empty cache.
func New[V any](coalesce bool) *Cache[V] {
	c := &Cache[V]{entries: make(map[string]weak.Pointer[V])}
	if coalesce {
		c.group = &singleflight.Group{}
	}
	return c
}

type cleanupArg[V any] struct {
	key string
	ptr weak.Pointer[V]
}

// Get returns the live value stored under key.
func (c *Cache[V]) Get(key string) (*V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	wp, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	v := wp.Value()
	if v == nil {
		delete(c.entries, key)
		return nil, false
	}
	return v, true
}

// Put stores v under key, replacing any previous value.
func (c *Cache[V]) Put(key string, v *V) {
	if v == nil {
		return
	}
	wp := weak.Make(v)
	c.mu.Lock()
	c.entries[key] = wp
	c.mu.Unlock()
	runtime.AddCleanup(v, c.evict, cleanupArg[V]{key: key, ptr: wp})
}

// evict drops key unless it was overwritten with another value.
func (c *Cache[V]) evict(arg cleanupArg[V]) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if cur, ok := c.entries[arg.key]; ok && cur == arg.ptr {
		delete(c.entries, arg.key)
	}
}

// Len returns the number of entries whose value is still live.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, wp := range c.entries {
		if wp.Value() != nil {
			n++
		}
	}
	return n
}

// Do returns the cached value for key or builds and stores it. Failed builds
// are never stored. The second result reports a cache hit.
//
// When coalescing, callers that join an in-flight build receive its result,
// including its error.
func (c *Cache[V]) Do(key string, build func() (*V, error)) (*V, bool, error) {
	if v, ok := c.Get(key); ok {
		return v, true, nil
	}
	if c.group == nil {
		v, err := build()
		if err != nil {
			return nil, false, err
		}
		c.Put(key, v)
		return v, false, nil
	}
	hit := false
	res, err, _ := c.group.Do(key, func() (any, error) {
		if v, ok := c.Get(key); ok {
			hit = true
			return v, nil
		}
		v, err := build()
		if err != nil {
			return nil, err
		}
		c.Put(key, v)
		return v, nil
	})
	if err != nil {
		return nil, false, err
	}
	return res.(*V), hit, nil
}
