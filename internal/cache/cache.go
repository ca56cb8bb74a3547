package cache

import "sync"

// Cache is a generic LRU cache with a hard capacity. Inserting into a full
// cache evicts the least recently used entry first.
//
// Cache is safe for concurrent use. The OnEvict callback runs with the
// cache lock held and must not call back into the cache.
type Cache[K comparable, V any] struct {
	mu       sync.Mutex
	entries  map[K]*lruNode[K, V]
	order    lruList[K, V]
	capacity int
	onEvict  func(K, V)

	hits      uint64
	misses    uint64
	evictions uint64
}

// New creates a cache holding at most capacity entries. A capacity of 0
// means unlimited. onEvict, if non-nil, is called for every entry removed
// by eviction, Delete or Clear.
func New[K comparable, V any](capacity int, onEvict func(K, V)) *Cache[K, V] {
	return &Cache[K, V]{
		entries:  make(map[K]*lruNode[K, V]),
		capacity: capacity,
		onEvict:  onEvict,
	}
}

// Get returns the value for key and marks it most recently used.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.entries[key]
	if !ok {
		c.misses++
		var zero V
		return zero, false
	}
	c.hits++
	c.order.moveToFront(n)
	return n.value, true
}

// Set stores value under key, evicting the oldest entry if the cache is
// full. Replacing an existing value does not call onEvict.
func (c *Cache[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if n, ok := c.entries[key]; ok {
		n.value = value
		c.order.moveToFront(n)
		return
	}
	c.insert(key, value)
}

// GetOrCreate returns the cached value or stores the result of create.
// create is called under lock, so it runs at most once per missing key.
func (c *Cache[K, V]) GetOrCreate(key K, create func() V) V {
	c.mu.Lock()
	defer c.mu.Unlock()

	if n, ok := c.entries[key]; ok {
		c.hits++
		c.order.moveToFront(n)
		return n.value
	}
	c.misses++
	value := create()
	c.insert(key, value)
	return value
}

// Delete removes key. It returns false if the key was not present.
func (c *Cache[K, V]) Delete(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.entries[key]
	if !ok {
		return false
	}
	c.drop(n)
	return true
}

// Clear removes every entry, calling onEvict for each.
func (c *Cache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.order.each(c.drop)
}

// Keys returns the keys from most to least recently used.
func (c *Cache[K, V]) Keys() []K {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]K, 0, len(c.entries))
	c.order.each(func(n *lruNode[K, V]) { keys = append(keys, n.key) })
	return keys
}

// Len returns the number of entries.
func (c *Cache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Capacity returns the maximum number of entries.
func (c *Cache[K, V]) Capacity() int {
	return c.capacity
}

// Stats returns cache statistics.
func (c *Cache[K, V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Stats{
		Len:       len(c.entries),
		Capacity:  c.capacity,
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
	}
}

// insert adds a new entry. Caller must hold c.mu.
func (c *Cache[K, V]) insert(key K, value V) {
	if c.capacity > 0 && len(c.entries) >= c.capacity {
		if oldest := c.order.back(); oldest != nil {
			c.evictions++
			c.drop(oldest)
		}
	}
	c.entries[key] = c.order.pushFront(key, value)
}

// drop removes n and notifies onEvict. Caller must hold c.mu.
func (c *Cache[K, V]) drop(n *lruNode[K, V]) {
	c.order.remove(n)
	delete(c.entries, n.key)
	if c.onEvict != nil {
		c.onEvict(n.key, n.value)
	}
}

// Stats contains cache statistics.
type Stats struct {
	Len       int
	Capacity  int
	Hits      uint64
	Misses    uint64
	Evictions uint64
}

// HitRate returns hits / (hits + misses), or 0 before any lookup.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}
