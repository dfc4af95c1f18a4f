package index

import (
	"github.com/lucien-spatial/lucien/spatial"
	"github.com/lucien-spatial/lucien/spatial/nodemap"
)

// RangeQuery reports every entity id whose record lies in region, pruning
// occupied nodes by Region.Classify before testing individual entities
// (spec §4.4 "rangeQuery... prune whole subtrees classified Outside, emit
// every entity in a subtree classified Inside without per-entity testing,
// and test individually within Intersects").
//
// The engine's nodemap only materializes currently occupied cells, not an
// implicit dense tree, so there is nothing to descend root-to-leaf: every
// occupied node is visited once and classified directly, which prunes the
// same Outside subtrees a literal descent would without needing to walk
// the ancestors of empty cells to find them.
func (e *Engine) RangeQuery(region Region, cancel CancelToken) ([]spatial.ID, error) {
	buf := e.getBuf()
	defer e.putBuf(buf)

	var cancelled bool
	e.nodes.Visit(func(_ []byte, n *nodemap.Node) bool {
		if cancel.Cancelled() {
			cancelled = true
			return false
		}
		switch region.Classify(n.Key().Bounds()) {
		case Outside:
			return true
		case Inside:
			buf.ids = append(buf.ids, n.Ids()...)
			return true
		default: // Intersects
			for _, id := range n.Ids() {
				rec, ok := e.ents.Get(id)
				if !ok {
					continue
				}
				if rec.Bounds != nil {
					if region.Classify(*rec.Bounds) != Outside {
						buf.ids = append(buf.ids, id)
					}
				} else if region.ContainsPoint(rec.Pos.Coord) {
					buf.ids = append(buf.ids, id)
				}
			}
			return true
		}
	})

	if cancelled {
		return append([]spatial.ID(nil), buf.ids...), spatial.ErrCancelled{}
	}
	return append([]spatial.ID(nil), buf.ids...), nil
}

// FrustumCull is RangeQuery specialized to a FrustumRegion (spec §4.4
// "frustumCull"), kept as a distinct entry point since callers building a
// view frustum from camera planes shouldn't need to know about the more
// general Region interface.
func (e *Engine) FrustumCull(frustum FrustumRegion, cancel CancelToken) ([]spatial.ID, error) {
	return e.RangeQuery(frustum, cancel)
}
