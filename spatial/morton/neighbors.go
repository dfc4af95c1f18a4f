package morton

import (
	"github.com/flier/goutil/pkg/opt"
	"github.com/lucien-spatial/lucien/spatial"
)

// edgeDeltas gives the 12 edge-neighbor offsets of a cube, each combining
// two of the three axes at +/-1 with the third held at 0.
var edgeDeltas = [12][3]int64{
	{1, 1, 0}, {1, -1, 0}, {-1, 1, 0}, {-1, -1, 0},
	{1, 0, 1}, {1, 0, -1}, {-1, 0, 1}, {-1, 0, -1},
	{0, 1, 1}, {0, 1, -1}, {0, -1, 1}, {0, -1, -1},
}

// vertexDeltas gives the 8 corner-neighbor offsets of a cube.
var vertexDeltas = [8][3]int64{
	{1, 1, 1}, {1, 1, -1}, {1, -1, 1}, {1, -1, -1},
	{-1, 1, 1}, {-1, 1, -1}, {-1, -1, 1}, {-1, -1, -1},
}

func (k Key) step(dx, dy, dz int64) opt.Option[spatial.Key] {
	size := int64(spatial.CellSize(k.level))
	min := k.minCorner()

	nx := int64(min.X) + dx*size
	ny := int64(min.Y) + dy*size
	nz := int64(min.Z) + dz*size

	if nx < 0 || ny < 0 || nz < 0 || nx >= spatial.CoordMax || ny >= spatial.CoordMax || nz >= spatial.CoordMax {
		return opt.None[spatial.Key]()
	}

	return opt.Some(spatial.Key(Enclosing(spatial.Coord{X: uint32(nx), Y: uint32(ny), Z: uint32(nz)}, k.level)))
}

// EdgeNeighbor returns the neighbor sharing edge i (0..11), or None at a
// domain boundary.
func (k Key) EdgeNeighbor(i int) opt.Option[spatial.Key] {
	d := edgeDeltas[i]
	return k.step(d[0], d[1], d[2])
}

// VertexNeighbor returns the neighbor sharing corner i (0..7), or None at a
// domain boundary.
func (k Key) VertexNeighbor(i int) opt.Option[spatial.Key] {
	d := vertexDeltas[i]
	return k.step(d[0], d[1], d[2])
}

// IsBoundary reports whether stepping from k across dir would leave the
// domain.
func (k Key) IsBoundary(dir spatial.Direction) bool {
	return k.FaceNeighbor(dir).IsNone()
}

// Detector implements spatial.NeighborDetector for the Morton scheme (spec
// §6 "NeighborDetector... Implemented by the key algebra; exposed through
// the engine").
type Detector struct{}

var _ spatial.NeighborDetector = Detector{}

func (Detector) FaceNeighbors(k spatial.Key) []spatial.Key {
	mk := k.(Key)
	out := make([]spatial.Key, 0, 6)
	for d := spatial.DirPosX; d <= spatial.DirNegZ; d++ {
		if n := mk.FaceNeighbor(d); n.IsSome() {
			out = append(out, n.Unwrap())
		}
	}
	return out
}

func (Detector) EdgeNeighbors(k spatial.Key) []spatial.Key {
	mk := k.(Key)
	out := make([]spatial.Key, 0, 12)
	for i := range edgeDeltas {
		if n := mk.EdgeNeighbor(i); n.IsSome() {
			out = append(out, n.Unwrap())
		}
	}
	return out
}

func (Detector) VertexNeighbors(k spatial.Key) []spatial.Key {
	mk := k.(Key)
	out := make([]spatial.Key, 0, 8)
	for i := range vertexDeltas {
		if n := mk.VertexNeighbor(i); n.IsSome() {
			out = append(out, n.Unwrap())
		}
	}
	return out
}

func (Detector) IsBoundary(k spatial.Key, dir spatial.Direction) bool {
	return k.(Key).IsBoundary(dir)
}
