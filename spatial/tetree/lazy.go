package tetree

import "github.com/lucien-spatial/lucien/spatial"

// LazyKey holds a (coordinate, level) pair and defers the O(level) chain
// walk until Resolve or ResolveCached is called; the result is then cached
// for the LazyKey's lifetime. LazyKey has no Compare, Bytes or Type of its
// own: ordering and serialization work on the resolved Key. Level, Coord
// and SameCell answer from the coordinates without resolving.
type LazyKey struct {
	coords   spatial.Coord
	level    uint8
	resolved bool
	key      Key
}

// NewLazyKey returns a LazyKey for p at level, unresolved.
func NewLazyKey(p spatial.Coord, level uint8) *LazyKey {
	return &LazyKey{coords: p, level: level}
}

// Level returns the key's level without forcing resolution.
func (lk *LazyKey) Level() uint8 { return lk.level }

// Coord returns the key's source coordinate without forcing resolution.
func (lk *LazyKey) Coord() spatial.Coord { return lk.coords }

// Resolve computes (if not already cached) and returns the packed Key.
func (lk *LazyKey) Resolve() Key {
	if !lk.resolved {
		lk.key = Enclosing(lk.coords, lk.level)
		lk.resolved = true
	}
	return lk.key
}

// ResolveCached is like Resolve but consults a shared or thread-local
// PackedKeyCache instead of always recomputing (spec §4.1's bounded
// caches). Still caches the result on lk itself for repeat callers.
func (lk *LazyKey) ResolveCached(cache *PackedKeyCache) Key {
	if !lk.resolved {
		lk.key = cache.Enclosing(lk.coords.X, lk.coords.Y, lk.coords.Z, lk.level)
		lk.resolved = true
	}
	return lk.key
}

// SameCell reports whether two unresolved LazyKeys are known to name the
// same cell without forcing resolution: true only when both coordinate
// and level already match exactly. A false result does not imply the
// cells differ — it may simply mean resolution is required to know.
func (lk *LazyKey) SameCell(other *LazyKey) bool {
	return lk.level == other.level && lk.coords == other.coords
}
