package dataloader

import (
	"container/list"
	"fmt"
	"sync"
)

// Cache is an LRU cache of preprocessed image tensors, keyed by file path.
// It is safe for use from multiple loaders at once.
type Cache struct {
	mu      sync.Mutex
	entries map[string][]float32
	lru     *list.List
	lruMap  map[string]*list.Element
	maxSize int

	hits   int64
	misses int64
}

// NewCache creates a cache holding at most maxSize items.
func NewCache(maxSize int) *Cache {
	return &Cache{
		entries: make(map[string][]float32),
		lru:     list.New(),
		lruMap:  make(map[string]*list.Element),
		maxSize: maxSize,
	}
}

// Get retrieves the tensor cached under key, marking it most recently used.
func (c *Cache) Get(key string) ([]float32, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if data, exists := c.entries[key]; exists {
		c.lru.MoveToFront(c.lruMap[key])
		c.hits++
		return data, true
	}
	c.misses++
	return nil, false
}

// Put stores data under key, evicting least recently used items as needed.
func (c *Cache) Put(key string, data []float32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; exists {
		c.lru.MoveToFront(c.lruMap[key])
		return
	}

	c.lruMap[key] = c.lru.PushFront(key)
	c.entries[key] = data

	for len(c.entries) > c.maxSize && c.lru.Len() > 0 {
		oldest := c.lru.Back()
		evicted := oldest.Value.(string)
		c.lru.Remove(oldest)
		delete(c.lruMap, evicted)
		delete(c.entries, evicted)
	}
}

// Clear drops all cached items. Statistics stay cumulative.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string][]float32)
	c.lru = list.New()
	c.lruMap = make(map[string]*list.Element)
}

// Stats returns a snapshot of the cache counters.
func (c *Cache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	var hitRate float64
	if total := c.hits + c.misses; total > 0 {
		hitRate = float64(c.hits) / float64(total) * 100
	}
	return CacheStats{
		Size:    len(c.entries),
		MaxSize: c.maxSize,
		Hits:    c.hits,
		Misses:  c.misses,
		HitRate: hitRate,
	}
}

// CacheStats holds cache counters at a point in time.
type CacheStats struct {
	Size    int
	MaxSize int
	Hits    int64
	Misses  int64
	HitRate float64
}

// String returns a one-line rendering of the counters.
func (cs CacheStats) String() string {
	return fmt.Sprintf("Cache: %d/%d items, Hits: %d, Misses: %d, Hit Rate: %.1f%%",
		cs.Size, cs.MaxSize, cs.Hits, cs.Misses, cs.HitRate)
}
