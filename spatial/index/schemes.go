package index

import (
	"github.com/lucien-spatial/lucien/spatial"
	"github.com/lucien-spatial/lucien/spatial/morton"
	"github.com/lucien-spatial/lucien/spatial/tetree"
)

// Morton returns the spatial.Scheme for the octree (Morton-keyed)
// subdivision (spec §3 "MortonKey (octree)").
func Morton() spatial.Scheme {
	return spatial.Scheme{
		Name:       "morton",
		ChildCount: morton.ChildCount,
		Enclosing: func(p spatial.Coord, level uint8) spatial.Key {
			return spatial.Key(morton.Enclosing(p, level))
		},
		Root:     func() spatial.Key { return spatial.Key(morton.Root()) },
		Detector: morton.Detector{},
	}
}

// Tetree returns the spatial.Scheme for the tetrahedral subdivision (spec
// §3 "TetreeKey (tetree)"). The root characteristic type is fixed at 0;
// Enclosing still classifies every point independently of which root type
// is nominally "the" root, since tetree keys carry their own type chain.
func Tetree() spatial.Scheme {
	return spatial.Scheme{
		Name:       "tetree",
		ChildCount: tetree.ChildCount,
		Enclosing: func(p spatial.Coord, level uint8) spatial.Key {
			return spatial.Key(tetree.Enclosing(p, level))
		},
		Root:     func() spatial.Key { return spatial.Key(tetree.Root(0)) },
		Detector: tetree.Detector{},
	}
}
