package spatial

// Scheme adapts one concrete key family (morton or tetree) to the
// engine in spatial/index, so Insert/Remove/KNearest/RangeQuery/... are
// written once against Scheme and Key rather than once per key family
// (spec §9: octree and tetree are "unified behind one abstract data
// type"). Concrete Schemes are constructed in spatial/index (see
// index.Morton(), index.Tetree()) rather than here, since building one
// requires importing the morton/tetree packages, which themselves import
// spatial — putting the constructors here would be an import cycle.
type Scheme struct {
	// Name identifies the scheme; InsertBatch checks it to decide whether
	// tetree lazy keys apply.
	Name string

	// ChildCount is the branching factor of the scheme's subdivision (8
	// for both Morton and Tetree).
	ChildCount uint8

	// Enclosing returns the unique level-ℓ key containing p.
	Enclosing func(p Coord, level uint8) Key

	// Root returns the scheme's level-0 key.
	Root func() Key

	// Detector exposes face/edge/vertex adjacency for this scheme (spec
	// §6 NeighborDetector).
	Detector NeighborDetector
}
