package tetree

import (
	"github.com/flier/goutil/pkg/opt"
	"github.com/lucien-spatial/lucien/spatial"
)

var edgeDeltas = [12][3]int64{
	{1, 1, 0}, {1, -1, 0}, {-1, 1, 0}, {-1, -1, 0},
	{1, 0, 1}, {1, 0, -1}, {-1, 0, 1}, {-1, 0, -1},
	{0, 1, 1}, {0, 1, -1}, {0, -1, 1}, {0, -1, -1},
}

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

// EdgeNeighbor returns the neighbor sharing cube-edge i (0..11) of k's
// anchor cube, or None at a domain boundary. Tetree neighbors are reported
// at cube granularity rather than by the tetrahedron's own 4 faces / 6
// edges; this keeps FaceNeighbor/EdgeNeighbor/VertexNeighbor uniform
// across both schemes for spec §4.4's adjacency queries, at the cost of
// sometimes naming a cube-neighbor whose tetrahedron does not itself
// touch k (an accepted consequence of the same geometric gaps/overlaps
// spec §9 already acknowledges for tetree).
func (k Key) EdgeNeighbor(i int) opt.Option[spatial.Key] {
	d := edgeDeltas[i]
	return k.step(d[0], d[1], d[2])
}

func (k Key) VertexNeighbor(i int) opt.Option[spatial.Key] {
	d := vertexDeltas[i]
	return k.step(d[0], d[1], d[2])
}

func (k Key) IsBoundary(dir spatial.Direction) bool {
	return k.FaceNeighbor(dir).IsNone()
}

// Detector implements spatial.NeighborDetector for the tetree scheme.
type Detector struct{}

var _ spatial.NeighborDetector = Detector{}

func (Detector) FaceNeighbors(k spatial.Key) []spatial.Key {
	tk := k.(Key)
	out := make([]spatial.Key, 0, 6)
	for d := spatial.DirPosX; d <= spatial.DirNegZ; d++ {
		if n := tk.FaceNeighbor(d); n.IsSome() {
			out = append(out, n.Unwrap())
		}
	}
	return out
}

func (Detector) EdgeNeighbors(k spatial.Key) []spatial.Key {
	tk := k.(Key)
	out := make([]spatial.Key, 0, 12)
	for i := range edgeDeltas {
		if n := tk.EdgeNeighbor(i); n.IsSome() {
			out = append(out, n.Unwrap())
		}
	}
	return out
}

func (Detector) VertexNeighbors(k spatial.Key) []spatial.Key {
	tk := k.(Key)
	out := make([]spatial.Key, 0, 8)
	for i := range vertexDeltas {
		if n := tk.VertexNeighbor(i); n.IsSome() {
			out = append(out, n.Unwrap())
		}
	}
	return out
}

func (Detector) IsBoundary(k spatial.Key, dir spatial.Direction) bool {
	return k.(Key).IsBoundary(dir)
}
