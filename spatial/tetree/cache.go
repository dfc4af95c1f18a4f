package tetree

import (
	"sync/atomic"

	"github.com/timandy/routine"

	"github.com/lucien-spatial/lucien/internal/xsync"
	"github.com/lucien-spatial/lucien/spatial"
)

// cacheKey identifies a (coords, level) pair; Enclosing is pure in its
// inputs so the packed result can be memoized by value.
type cacheKey struct {
	x, y, z uint32
	level   uint8
}

// PackedKeyCache memoizes Enclosing results by exact (coordinate, level):
// a repeated lookup for the same point and level is O(1) instead of
// O(level), while distinct points in the same cell are each computed once.
// Ancestor keys are not cached separately. Capacity is soft: once the
// approximate entry count crosses limit the whole cache is dropped rather
// than evicted piecewise, trading a burst of recomputation for not having
// to maintain per-entry recency under concurrent access.
type PackedKeyCache struct {
	entries xsync.Map[cacheKey, Key]
	count   atomic.Int64
	limit   int64
}

// NewPackedKeyCache creates a cache that resets itself once it holds
// roughly limit entries. Typical limits are 2^16 to 2^20 (spec §4.1
// "bounded caches, typical size 2^16-2^20 entries").
func NewPackedKeyCache(limit int64) *PackedKeyCache {
	return &PackedKeyCache{limit: limit}
}

// Enclosing returns the cached (or freshly computed and cached) key for p
// at level.
func (c *PackedKeyCache) Enclosing(x, y, z uint32, level uint8) Key {
	key := cacheKey{x: x, y: y, z: z, level: level}
	if v, ok := c.entries.Load(key); ok {
		return v
	}

	if c.count.Load() >= c.limit {
		c.entries = xsync.Map[cacheKey, Key]{}
		c.count.Store(0)
	}

	computed, loaded := c.entries.LoadOrStore(key, func() Key {
		return Enclosing(spatial.Coord{X: x, Y: y, Z: z}, level)
	})
	if !loaded {
		c.count.Add(1)
	}
	return computed
}

// perThread holds one PackedKeyCache per goroutine, avoiding lock
// contention on the shared cache's internal sync.Map during parallel bulk
// loads (spec §5 "per-thread/per-goroutine caches... before merging").
var perThread = routine.NewThreadLocalWithInitial[*PackedKeyCache](func() any {
	return NewPackedKeyCache(1 << 16)
})

// ThreadLocalCache returns the calling goroutine's private key cache.
func ThreadLocalCache() *PackedKeyCache {
	return perThread.Get().(*PackedKeyCache)
}
