package index

import "github.com/lucien-spatial/lucien/spatial"

// Hit is one k-nearest result: an entity id and its distance from the
// query point (spec §4.4 "kNearest... ordered list of (id, distance)").
type Hit struct {
	ID       spatial.ID
	Distance float64
}

// RayHit is one ray-intersection result (spec §4.4 "rayIntersect...
// ordered list of (id, t, point, normal)").
type RayHit struct {
	ID     spatial.ID
	T      float64
	Point  spatial.Point
	Normal [3]float64
}

// Pair is an unordered pair of colliding entity ids (spec §4.4
// "findCollisions... a set of unordered pairs").
type Pair struct {
	A, B spatial.ID
}

// normalizePair returns the Pair of a and b in canonical (smaller id
// first) order, so two Pair values naming the same unordered pair compare
// equal.
func normalizePair(a, b spatial.ID) Pair {
	if a <= b {
		return Pair{a, b}
	}
	return Pair{b, a}
}

// CollisionFilter decides whether a candidate colliding pair should be
// reported. Layer/group logic lives in the caller (spec §4.4
// "findCollisions... the core exposes the filter hook").
type CollisionFilter func(a, b spatial.ID) bool

// AllPairs is the default CollisionFilter: every pair is reported.
func AllPairs(spatial.ID, spatial.ID) bool { return true }
