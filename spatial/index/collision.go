package index

import (
	"github.com/lucien-spatial/lucien/spatial"
	"github.com/lucien-spatial/lucien/spatial/nodemap"
)

// FindCollisions enumerates every colliding pair in the index, testing
// same-node pairs and pairs against topologically adjacent nodes (spec
// §4.4 "findCollisions... for each node, test all same-node pairs; for
// each node, test against spatially adjacent node entities via
// topological neighbors"). filter is consulted before a geometric test is
// even run; pass AllPairs to report every geometric collision.
func (e *Engine) FindCollisions(filter CollisionFilter) []Pair {
	visited := make(map[Pair]struct{})
	var out []Pair

	report := func(a, b spatial.ID) {
		if a == b || !filter(a, b) {
			return
		}
		p := normalizePair(a, b)
		if _, ok := visited[p]; ok {
			return
		}
		visited[p] = struct{}{}
		if e.entitiesCollide(a, b) {
			out = append(out, p)
		}
	}

	e.nodes.Visit(func(_ []byte, n *nodemap.Node) bool {
		ids := n.Ids()
		for i := 0; i < len(ids); i++ {
			for j := i + 1; j < len(ids); j++ {
				report(ids[i], ids[j])
			}
		}

		if e.cfg.scheme.Detector == nil {
			return true
		}
		for _, neighborKey := range e.cfg.scheme.Detector.FaceNeighbors(n.Key()) {
			neighbor := e.nodes.Get(neighborKey)
			if neighbor == nil {
				continue
			}
			for _, a := range ids {
				for _, b := range neighbor.Ids() {
					report(a, b)
				}
			}
		}
		return true
	})

	return out
}

// FindCollisionsFor enumerates every collision involving id specifically,
// reusing the same node-and-neighbor enumeration as FindCollisions but
// scoped to the nodes id itself occupies (spec §4.4 "findCollisions(id)").
func (e *Engine) FindCollisionsFor(id spatial.ID, filter CollisionFilter) []Pair {
	rec, ok := e.ents.Get(id)
	if !ok {
		return nil
	}

	visited := make(map[Pair]struct{})
	var out []Pair
	report := func(other spatial.ID) {
		if other == id || !filter(id, other) {
			return
		}
		p := normalizePair(id, other)
		if _, ok := visited[p]; ok {
			return
		}
		visited[p] = struct{}{}
		if e.entitiesCollide(id, other) {
			out = append(out, p)
		}
	}

	for _, k := range rec.Keys {
		if n := e.nodes.Get(k); n != nil {
			for _, other := range n.Ids() {
				report(other)
			}
		}
		if e.cfg.scheme.Detector == nil {
			continue
		}
		for _, neighborKey := range e.cfg.scheme.Detector.FaceNeighbors(k) {
			if neighbor := e.nodes.Get(neighborKey); neighbor != nil {
				for _, other := range neighbor.Ids() {
					report(other)
				}
			}
		}
	}
	return out
}

// entitiesCollide is the geometric collision predicate: AABB-AABB for two
// bounded entities, AABB-sphere or sphere-sphere (point entities present
// as a small fixed-radius sphere, matching rayIntersect's point-entity
// treatment) otherwise.
func (e *Engine) entitiesCollide(a, b spatial.ID) bool {
	ra, ok := e.ents.Get(a)
	if !ok {
		return false
	}
	rb, ok := e.ents.Get(b)
	if !ok {
		return false
	}

	switch {
	case ra.Bounds != nil && rb.Bounds != nil:
		return ra.Bounds.Intersects(*rb.Bounds)
	case ra.Bounds != nil:
		return ra.Bounds.MinDistanceSquared(rb.Pos) <= pointRadius*pointRadius
	case rb.Bounds != nil:
		return rb.Bounds.MinDistanceSquared(ra.Pos) <= pointRadius*pointRadius
	default:
		return ra.Pos.DistanceSquared(rb.Pos) <= (2 * pointRadius) * (2 * pointRadius)
	}
}
