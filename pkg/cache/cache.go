// Package cache provides a fixed-capacity key/value store with
// least-recently-used eviction. Both Get and Set count as a use. The zero
// value is not usable; construct with New.
package cache

import (
	"container/list"
	"sync"
)

// DefaultCapacity bounds message caches when no explicit capacity is
// configured. Long conversations stay memory-bounded at this size.
const DefaultCapacity = 1000

type entry[K comparable, V any] struct {
	key   K
	value V
}

// Option mutates cache configuration.
type Option[K comparable, V any] func(*Cache[K, V])

// OnEvict attaches a hook invoked after an entry is evicted by the capacity
// policy. It does not fire for explicit Delete calls. The hook runs outside
// the cache lock, on the goroutine whose Set caused the eviction.
func OnEvict[K comparable, V any](fn func(K, V)) Option[K, V] {
	return func(c *Cache[K, V]) {
		c.onEvict = fn
	}
}

// Cache is a bounded LRU store. All methods are safe for concurrent use;
// each mutation is a single atomic step.
type Cache[K comparable, V any] struct {
	capacity int

	onEvict func(K, V)

	mu    sync.Mutex
	lru   *list.List
	index map[K]*list.Element
}

// New creates a cache holding at most capacity entries. A non-positive
// capacity falls back to DefaultCapacity.
func New[K comparable, V any](capacity int, options ...Option[K, V]) *Cache[K, V] {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	c := &Cache[K, V]{
		capacity: capacity,
		lru:      list.New(),
		index:    make(map[K]*list.Element),
	}
	for _, option := range options {
		option(c)
	}
	return c
}

// Set inserts or updates an entry and marks it most-recently-used. Inserting
// a new key at capacity evicts the least-recently-used entry first.
func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	if el, ok := c.index[key]; ok {
		el.Value.(*entry[K, V]).value = value
		c.lru.MoveToFront(el)
		c.mu.Unlock()
		return
	}
	var victim *entry[K, V]
	if c.lru.Len() >= c.capacity {
		victim = c.evictOldestLocked()
	}
	c.index[key] = c.lru.PushFront(&entry[K, V]{key: key, value: value})
	c.mu.Unlock()
	if victim != nil && c.onEvict != nil {
		c.onEvict(victim.key, victim.value)
	}
}

// Update applies fn to the value stored under key as one atomic step and
// marks the entry most-recently-used. Returns false without calling fn when
// key is absent. Concurrent Updates on one key never lose each other's
// changes.
func (c *Cache[K, V]) Update(key K, fn func(V) V) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.index[key]
	if !ok {
		return false
	}
	e := el.Value.(*entry[K, V])
	e.value = fn(e.value)
	c.lru.MoveToFront(el)
	return true
}

// Upsert replaces the entry under key with fn's result as one atomic step.
// fn receives the current value and whether one was present. Inserting a new
// key at capacity evicts the least-recently-used entry first.
func (c *Cache[K, V]) Upsert(key K, fn func(V, bool) V) {
	c.mu.Lock()
	if el, ok := c.index[key]; ok {
		e := el.Value.(*entry[K, V])
		e.value = fn(e.value, true)
		c.lru.MoveToFront(el)
		c.mu.Unlock()
		return
	}
	var zero V
	value := fn(zero, false)
	var victim *entry[K, V]
	if c.lru.Len() >= c.capacity {
		victim = c.evictOldestLocked()
	}
	c.index[key] = c.lru.PushFront(&entry[K, V]{key: key, value: value})
	c.mu.Unlock()
	if victim != nil && c.onEvict != nil {
		c.onEvict(victim.key, victim.value)
	}
}

// Get returns the value for key and marks the entry most-recently-used.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.index[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.lru.MoveToFront(el)
	return el.Value.(*entry[K, V]).value, true
}

// Delete removes an entry if present. Deleting an absent key is a no-op.
func (c *Cache[K, V]) Delete(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.index[key]; ok {
		c.lru.Remove(el)
		delete(c.index, key)
	}
}

// All returns every live entry as a key -> value map. Recency is not
// affected.
func (c *Cache[K, V]) All() map[K]V {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[K]V, len(c.index))
	for el := c.lru.Front(); el != nil; el = el.Next() {
		e := el.Value.(*entry[K, V])
		out[e.key] = e.value
	}
	return out
}

// Len returns the number of live entries.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// Capacity returns the fixed capacity set at construction.
func (c *Cache[K, V]) Capacity() int {
	return c.capacity
}

func (c *Cache[K, V]) evictOldestLocked() *entry[K, V] {
	el := c.lru.Back()
	if el == nil {
		return nil
	}
	e := el.Value.(*entry[K, V])
	c.lru.Remove(el)
	delete(c.index, e.key)
	return e
}
