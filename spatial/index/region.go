package index

import "github.com/lucien-spatial/lucien/spatial"

// Classification is a region's relationship to a cell, used to prune
// subtrees during SFC traversal (spec §4.4 "frustumCull... inside /
// intersects / outside").
type Classification uint8

const (
	// Outside means the cell shares no point with the region; the engine
	// prunes it and everything beneath it.
	Outside Classification = iota
	// Intersects means the cell straddles the region's boundary; entities
	// in it must be tested individually.
	Intersects
	// Inside means the cell lies wholly within the region; every entity in
	// it qualifies without further testing.
	Inside
)

// Region is anything rangeQuery/frustumCull can test a cell against (spec
// §4.4 "Region may be AABB, sphere, frustum, plane-half-space").
type Region interface {
	// Classify reports b's relationship to the region.
	Classify(b spatial.AABB) Classification

	// ContainsPoint reports whether p itself lies in the region, used for
	// fine-grained per-entity testing inside an Intersects cell.
	ContainsPoint(p spatial.Coord) bool
}

// BoxRegion is an axis-aligned bounding box region.
type BoxRegion struct{ Box spatial.AABB }

func (r BoxRegion) Classify(b spatial.AABB) Classification {
	if !r.Box.Intersects(b) {
		return Outside
	}
	if boxContainsBox(r.Box, b) {
		return Inside
	}
	return Intersects
}

func (r BoxRegion) ContainsPoint(p spatial.Coord) bool { return r.Box.Contains(p) }

func boxContainsBox(outer, inner spatial.AABB) bool {
	return outer.Min.X <= inner.Min.X && outer.Max.X >= inner.Max.X &&
		outer.Min.Y <= inner.Min.Y && outer.Max.Y >= inner.Max.Y &&
		outer.Min.Z <= inner.Min.Z && outer.Max.Z >= inner.Max.Z
}

// SphereRegion is a spherical region, radius measured in the same
// fixed-point units as spatial.Coord.
type SphereRegion struct {
	Center spatial.Point
	Radius float64
}

func (r SphereRegion) Classify(b spatial.AABB) Classification {
	minDistSq := b.MinDistanceSquared(r.Center)
	if minDistSq > r.Radius*r.Radius {
		return Outside
	}
	if farthestDistanceSquared(b, r.Center) <= r.Radius*r.Radius {
		return Inside
	}
	return Intersects
}

func (r SphereRegion) ContainsPoint(p spatial.Coord) bool {
	return spatial.Point{Coord: p}.DistanceSquared(r.Center) <= r.Radius*r.Radius
}

// farthestDistanceSquared returns the squared distance from center to the
// farthest corner of b, used to decide whether b lies entirely within a
// sphere of a given radius.
func farthestDistanceSquared(b spatial.AABB, center spatial.Point) float64 {
	farthest := func(v uint32, lo, hi uint32) float64 {
		dLo := float64(v) - float64(lo)
		dHi := float64(hi) - float64(v)
		if dLo < 0 {
			dLo = -dLo
		}
		if dHi < 0 {
			dHi = -dHi
		}
		if dLo > dHi {
			return dLo
		}
		return dHi
	}
	dx := farthest(center.X, b.Min.X, b.Max.X)
	dy := farthest(center.Y, b.Min.Y, b.Max.Y)
	dz := farthest(center.Z, b.Min.Z, b.Max.Z)
	return dx*dx + dy*dy + dz*dz
}

// HalfSpaceRegion is the set of points on the inside of a plane:
// {p : Normal·p + D <= 0}.
type HalfSpaceRegion struct {
	Normal [3]float64
	D      float64
}

func (r HalfSpaceRegion) signedDistance(x, y, z float64) float64 {
	return r.Normal[0]*x + r.Normal[1]*y + r.Normal[2]*z + r.D
}

func (r HalfSpaceRegion) Classify(b spatial.AABB) Classification {
	allInside, allOutside := true, true
	corners := boxCorners(b)
	for _, c := range corners {
		d := r.signedDistance(c[0], c[1], c[2])
		if d > 0 {
			allInside = false
		} else {
			allOutside = false
		}
	}
	switch {
	case allInside:
		return Inside
	case allOutside:
		return Outside
	default:
		return Intersects
	}
}

func (r HalfSpaceRegion) ContainsPoint(p spatial.Coord) bool {
	return r.signedDistance(float64(p.X), float64(p.Y), float64(p.Z)) <= 0
}

func boxCorners(b spatial.AABB) [8][3]float64 {
	return [8][3]float64{
		{float64(b.Min.X), float64(b.Min.Y), float64(b.Min.Z)},
		{float64(b.Max.X), float64(b.Min.Y), float64(b.Min.Z)},
		{float64(b.Min.X), float64(b.Max.Y), float64(b.Min.Z)},
		{float64(b.Max.X), float64(b.Max.Y), float64(b.Min.Z)},
		{float64(b.Min.X), float64(b.Min.Y), float64(b.Max.Z)},
		{float64(b.Max.X), float64(b.Min.Y), float64(b.Max.Z)},
		{float64(b.Min.X), float64(b.Max.Y), float64(b.Max.Z)},
		{float64(b.Max.X), float64(b.Max.Y), float64(b.Max.Z)},
	}
}

// FrustumRegion is the intersection of up to six half-spaces (spec §4.4
// "frustumCull").
type FrustumRegion struct {
	Planes []HalfSpaceRegion
}

func (r FrustumRegion) Classify(b spatial.AABB) Classification {
	result := Inside
	for _, p := range r.Planes {
		switch p.Classify(b) {
		case Outside:
			return Outside
		case Intersects:
			result = Intersects
		}
	}
	return result
}

func (r FrustumRegion) ContainsPoint(p spatial.Coord) bool {
	for _, plane := range r.Planes {
		if !plane.ContainsPoint(p) {
			return false
		}
	}
	return true
}
