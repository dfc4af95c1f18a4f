package spatial

// MaxLevel is the deepest refinement level the key algebra supports.
// Coordinates range over [0, 1<<CoordBits).
const (
	MaxLevel  uint8 = 21
	CoordBits       = 21
	CoordMax        = 1 << CoordBits
)

// Coord is a point in the engine's fixed-point integer coordinate space.
// All three components must satisfy 0 <= c < CoordMax; this is a
// precondition enforced at the API boundary (spec §7), not a recovered
// error deeper in the tree.
type Coord struct {
	X, Y, Z uint32
}

// InDomain reports whether every component of c lies in [0, CoordMax).
func (c Coord) InDomain() bool {
	return c.X < CoordMax && c.Y < CoordMax && c.Z < CoordMax
}

// CellSize returns the edge length of a cell at level, i.e. 2^(MaxLevel-level).
func CellSize(level uint8) uint32 {
	return 1 << (MaxLevel - level)
}

// Point is a position in the engine's domain, expressed both as the
// fixed-point Coord used for indexing and as float64 world units for the
// floating-point geometry (ray casting, sphere tests) that operates
// alongside it.
type Point struct {
	Coord
}

// NewPoint constructs a Point from float64 world coordinates, truncating to
// the fixed-point grid.
func NewPoint(x, y, z float64) Point {
	return Point{Coord{uint32(x), uint32(y), uint32(z)}}
}

// Float64 returns the point's components as float64 world units.
func (p Point) Float64() (x, y, z float64) {
	return float64(p.X), float64(p.Y), float64(p.Z)
}

// DistanceSquared returns the squared Euclidean distance between two points,
// avoiding a sqrt for the common case of comparing distances.
func (p Point) DistanceSquared(q Point) float64 {
	dx := float64(p.X) - float64(q.X)
	dy := float64(p.Y) - float64(q.Y)
	dz := float64(p.Z) - float64(q.Z)
	return dx*dx + dy*dy + dz*dz
}

// AABB is an axis-aligned bounding box in the fixed-point coordinate space.
type AABB struct {
	Min, Max Coord
}

// BoundsOf returns the smallest AABB containing both a and b.
func BoundsOf(a, b Coord) AABB {
	lo := Coord{min32(a.X, b.X), min32(a.Y, b.Y), min32(a.Z, b.Z)}
	hi := Coord{max32(a.X, b.X), max32(a.Y, b.Y), max32(a.Z, b.Z)}
	return AABB{lo, hi}
}

// Contains reports whether p lies within the box, inclusive of its faces.
func (b AABB) Contains(p Coord) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// Intersects reports whether the two boxes share any point.
func (b AABB) Intersects(o AABB) bool {
	return b.Min.X <= o.Max.X && b.Max.X >= o.Min.X &&
		b.Min.Y <= o.Max.Y && b.Max.Y >= o.Min.Y &&
		b.Min.Z <= o.Max.Z && b.Max.Z >= o.Min.Z
}

// Union returns the smallest AABB containing both b and o.
func (b AABB) Union(o AABB) AABB {
	return AABB{
		Coord{min32(b.Min.X, o.Min.X), min32(b.Min.Y, o.Min.Y), min32(b.Min.Z, o.Min.Z)},
		Coord{max32(b.Max.X, o.Max.X), max32(b.Max.Y, o.Max.Y), max32(b.Max.Z, o.Max.Z)},
	}
}

// MinDistanceSquared returns the squared distance from p to the closest
// point of b (zero if p is inside b). This is the lower-bound distance
// function the k-nearest best-first search (spec §4.4) prioritizes nodes by.
func (b AABB) MinDistanceSquared(p Point) float64 {
	d := func(v, lo, hi uint32) float64 {
		switch {
		case v < lo:
			return float64(lo - v)
		case v > hi:
			return float64(v - hi)
		default:
			return 0
		}
	}
	dx := d(p.X, b.Min.X, b.Max.X)
	dy := d(p.Y, b.Min.Y, b.Max.Y)
	dz := d(p.Z, b.Min.Z, b.Max.Z)
	return dx*dx + dy*dy + dz*dz
}

func min32(a, b uint32) uint32 {
	if a < b {
		return a
	}
	return b
}

func max32(a, b uint32) uint32 {
	if a > b {
		return a
	}
	return b
}
