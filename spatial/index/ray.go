package index

import (
	"math"
	"sort"

	"github.com/lucien-spatial/lucien/spatial"
	"github.com/lucien-spatial/lucien/spatial/nodemap"
)

// Ray is a half-line query origin+direction (spec §4.4 "rayIntersect").
// Direction need not be normalized; t is reported in units of Direction's
// own length.
type Ray struct {
	Origin    spatial.Point
	Direction [3]float64
}

// pointRadius is the small fixed radius point entities present to a ray
// cast (spec §4.4 "point-entity = ray-sphere with small radius").
const pointRadius = 0.5

// RayIntersect returns every entity the ray hits within maxDistance (0 or
// less means unbounded), ordered by non-decreasing t (spec §4.4 "Results
// sorted by t", spec §8 property 7). Bounded entities are tested as
// ray-AABB, point entities as ray-sphere with a small fixed radius.
func (e *Engine) RayIntersect(ray Ray, maxDistance float64, cancel CancelToken) ([]RayHit, error) {
	var hits []RayHit
	var cancelled bool

	e.nodes.Visit(func(_ []byte, n *nodemap.Node) bool {
		if cancel.Cancelled() {
			cancelled = true
			return false
		}
		if _, ok := rayBoxIntersect(ray, n.Key().Bounds(), maxDistance); !ok {
			return true
		}
		for _, id := range n.Ids() {
			rec, ok := e.ents.Get(id)
			if !ok {
				continue
			}
			if h, ok := e.testRayHit(ray, id, rec.Pos, rec.Bounds, maxDistance); ok {
				hits = append(hits, h)
			}
		}
		return true
	})

	sort.Slice(hits, func(i, j int) bool { return hits[i].T < hits[j].T })
	hits = dedupRayHits(hits)

	if cancelled {
		return hits, spatial.ErrCancelled{}
	}
	return hits, nil
}

// RayIntersectFirst returns the closest hit along the ray, or false if
// none qualifies. It stops expanding nodes once the best hit so far is
// closer than the next node's entry distance (spec §4.4
// "rayIntersectFirst terminates as soon as a hit's t is less than the
// current node's lower bound").
func (e *Engine) RayIntersectFirst(ray Ray, maxDistance float64, cancel CancelToken) (RayHit, bool, error) {
	type boundNode struct {
		node  *nodemap.Node
		entry float64
	}
	var candidates []boundNode
	e.nodes.Visit(func(_ []byte, n *nodemap.Node) bool {
		if entry, ok := rayBoxIntersect(ray, n.Key().Bounds(), maxDistance); ok {
			candidates = append(candidates, boundNode{node: n, entry: entry})
		}
		return true
	})
	sort.Slice(candidates, func(i, j int) bool { return candidates[i].entry < candidates[j].entry })

	best := RayHit{T: math.Inf(1)}
	found := false
	for _, c := range candidates {
		if cancel.Cancelled() {
			return best, found, spatial.ErrCancelled{}
		}
		if found && c.entry > best.T {
			break
		}
		for _, id := range c.node.Ids() {
			rec, ok := e.ents.Get(id)
			if !ok {
				continue
			}
			h, ok := e.testRayHit(ray, id, rec.Pos, rec.Bounds, maxDistance)
			if ok && (!found || h.T < best.T) {
				best, found = h, true
			}
		}
	}
	return best, found, nil
}

func (e *Engine) testRayHit(ray Ray, id spatial.ID, pos spatial.Point, bounds *spatial.AABB, maxDistance float64) (RayHit, bool) {
	if bounds != nil {
		t, normal, ok := rayAABBHit(ray, *bounds)
		if !ok || (maxDistance > 0 && t > maxDistance) {
			return RayHit{}, false
		}
		return RayHit{ID: id, T: t, Point: pointAt(ray, t), Normal: normal}, true
	}
	t, normal, ok := raySphereHit(ray, pos, pointRadius)
	if !ok || (maxDistance > 0 && t > maxDistance) {
		return RayHit{}, false
	}
	return RayHit{ID: id, T: t, Point: pointAt(ray, t), Normal: normal}, true
}

func pointAt(ray Ray, t float64) spatial.Point {
	ox, oy, oz := ray.Origin.Float64()
	return spatial.NewPoint(ox+ray.Direction[0]*t, oy+ray.Direction[1]*t, oz+ray.Direction[2]*t)
}

// rayBoxIntersect is the standard slab method, returning the entry
// distance along the ray if it intersects box within [0, maxDistance].
func rayBoxIntersect(ray Ray, box spatial.AABB, maxDistance float64) (float64, bool) {
	ox, oy, oz := ray.Origin.Float64()
	tMin, tMax := math.Inf(-1), math.Inf(1)

	axis := func(o, d float64, lo, hi uint32) bool {
		if d == 0 {
			return o >= float64(lo) && o <= float64(hi)
		}
		t0 := (float64(lo) - o) / d
		t1 := (float64(hi) - o) / d
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		if t0 > tMin {
			tMin = t0
		}
		if t1 < tMax {
			tMax = t1
		}
		return tMin <= tMax
	}

	if !axis(ox, ray.Direction[0], box.Min.X, box.Max.X) {
		return 0, false
	}
	if !axis(oy, ray.Direction[1], box.Min.Y, box.Max.Y) {
		return 0, false
	}
	if !axis(oz, ray.Direction[2], box.Min.Z, box.Max.Z) {
		return 0, false
	}
	if tMax < 0 {
		return 0, false
	}
	entry := tMin
	if entry < 0 {
		entry = 0
	}
	if maxDistance > 0 && entry > maxDistance {
		return 0, false
	}
	return entry, true
}

func rayAABBHit(ray Ray, box spatial.AABB) (float64, [3]float64, bool) {
	t, ok := rayBoxIntersect(ray, box, 0)
	if !ok {
		return 0, [3]float64{}, false
	}
	p := pointAt(ray, t)
	return t, boxNormalAt(box, p), true
}

// boxNormalAt picks the face of box closest to p as the hit normal.
func boxNormalAt(box spatial.AABB, p spatial.Point) [3]float64 {
	faces := []struct {
		dist   float64
		normal [3]float64
	}{
		{math.Abs(float64(p.X) - float64(box.Min.X)), [3]float64{-1, 0, 0}},
		{math.Abs(float64(p.X) - float64(box.Max.X)), [3]float64{1, 0, 0}},
		{math.Abs(float64(p.Y) - float64(box.Min.Y)), [3]float64{0, -1, 0}},
		{math.Abs(float64(p.Y) - float64(box.Max.Y)), [3]float64{0, 1, 0}},
		{math.Abs(float64(p.Z) - float64(box.Min.Z)), [3]float64{0, 0, -1}},
		{math.Abs(float64(p.Z) - float64(box.Max.Z)), [3]float64{0, 0, 1}},
	}
	best := faces[0]
	for _, f := range faces[1:] {
		if f.dist < best.dist {
			best = f
		}
	}
	return best.normal
}

func raySphereHit(ray Ray, center spatial.Point, radius float64) (float64, [3]float64, bool) {
	ox, oy, oz := ray.Origin.Float64()
	cx, cy, cz := center.Float64()
	lx, ly, lz := ox-cx, oy-cy, oz-cz

	dx, dy, dz := ray.Direction[0], ray.Direction[1], ray.Direction[2]
	a := dx*dx + dy*dy + dz*dz
	if a == 0 {
		return 0, [3]float64{}, false
	}
	b := 2 * (lx*dx + ly*dy + lz*dz)
	c := lx*lx + ly*ly + lz*lz - radius*radius

	disc := b*b - 4*a*c
	if disc < 0 {
		return 0, [3]float64{}, false
	}
	sq := math.Sqrt(disc)
	t0 := (-b - sq) / (2 * a)
	t1 := (-b + sq) / (2 * a)
	t := t0
	if t < 0 {
		t = t1
	}
	if t < 0 {
		return 0, [3]float64{}, false
	}

	hit := pointAt(ray, t)
	hx, hy, hz := hit.Float64()
	nx, ny, nz := hx-cx, hy-cy, hz-cz
	n := math.Sqrt(nx*nx + ny*ny + nz*nz)
	if n == 0 {
		return t, [3]float64{0, 0, 1}, true
	}
	return t, [3]float64{nx / n, ny / n, nz / n}, true
}

// dedupRayHits drops repeat ids left over by an entity spanning more than
// one node (spanning entities get tested once per overlapping node), kept
// sorted by the earliest t it was observed at.
func dedupRayHits(hits []RayHit) []RayHit {
	seen := make(map[spatial.ID]struct{}, len(hits))
	out := make([]RayHit, 0, len(hits))
	for _, h := range hits {
		if _, ok := seen[h.ID]; ok {
			continue
		}
		seen[h.ID] = struct{}{}
		out = append(out, h)
	}
	return out
}
