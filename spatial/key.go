package spatial

import "github.com/flier/goutil/pkg/opt"

// Direction enumerates the 6 face directions of a cell, used by
// FaceNeighbor. Edge and vertex neighbors are addressed by small integer
// indices local to each scheme (12 edges / 8 vertices for Morton cubes, a
// scheme-specific count for tetree) since their topology differs between
// the two key families; Direction only captures the uniform face case
// every rectilinear-ish cell shares.
type Direction uint8

const (
	DirPosX Direction = iota
	DirNegX
	DirPosY
	DirNegY
	DirPosZ
	DirNegZ
)

// Key is the SpatialKey trait (spec §4.1 / §9): the operations both the
// Morton (octree) and Tetree schemes implement. The engine in spatial/index
// is written once against this interface and specialized per scheme only
// through the small Scheme value below.
type Key interface {
	// Level returns this key's refinement depth, 0..MaxLevel.
	Level() uint8

	// Parent returns the key one level up. Fails with ErrAtRoot at level 0.
	Parent() (Key, error)

	// Child returns the i'th child key. i must be < the scheme's child
	// count (8 for both Morton and Tetree). Fails with ErrMaxDepth at
	// level MaxLevel.
	Child(i uint8) (Key, error)

	// ChildIndex returns the index this key occupies among its parent's
	// children, i.e. the i such that Parent().Child(i) == this key.
	ChildIndex() uint8

	// Contains reports whether this key's cell contains p.
	Contains(p Coord) bool

	// Compare gives the key's position in SFC order: negative if this key
	// sorts before other, positive if after, zero if equal.
	Compare(other Key) int

	// FaceNeighbor returns the topological neighbor across the given face,
	// or None at a domain boundary.
	FaceNeighbor(dir Direction) opt.Option[Key]

	// Bounds returns the AABB of this key's cell.
	Bounds() AABB

	// Bytes returns the externally-stable byte representation of this key
	// (spec §6's SpatialKey trait: stable across process runs for a given
	// Configuration). This is also the byte string the node container in
	// spatial/nodemap indexes by.
	Bytes() []byte
}

// NeighborDetector is the consumed-interface contract (spec §6) that the
// out-of-scope ghost/distributed layer relies on. It is implemented by each
// scheme and exposed through the engine; Lucien's core never calls it
// itself beyond what FaceNeighbor already provides internally for
// collision detection (spec §4.4 "adjacent node entities").
type NeighborDetector interface {
	FaceNeighbors(k Key) []Key
	EdgeNeighbors(k Key) []Key
	VertexNeighbors(k Key) []Key
	IsBoundary(k Key, dir Direction) bool
}
