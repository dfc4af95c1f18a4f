package index

import (
	"github.com/lucien-spatial/lucien/internal/debug"
	"github.com/lucien-spatial/lucien/spatial"
	"github.com/lucien-spatial/lucien/spatial/entity"
	"github.com/lucien-spatial/lucien/spatial/nodemap"
)

// trySplit partitions key's entities among its children once occupancy
// crosses the configured threshold (spec §4.3 "Split"). Entities whose
// spanning set doesn't fit any single child (their bounds straddle more
// than one) are retained at the parent, matching the spec's "a node may
// thus remain non-empty after split".
//
// The node's state transitions Present -> Splitting for the duration of
// the redistribution (spec §4.4 "State machine"); a concurrent caller
// that loses the CAS race simply skips its own split attempt, since
// whichever goroutine wins will leave the node in a consistent post-split
// state.
func (e *Engine) trySplit(key spatial.Key, n *nodemap.Node) {
	if key.Level() >= e.cfg.maxLevel {
		return
	}
	if !e.nodes.CompareAndSwapState(key, nodemap.StatePresent, nodemap.StateSplitting) {
		return
	}

	ids := append([]spatial.ID(nil), n.Ids()...)
	childCount := e.cfg.scheme.ChildCount
	children := make([]spatial.Key, childCount)
	for i := uint8(0); i < childCount; i++ {
		c, err := key.Child(i)
		if err != nil {
			e.nodes.SetState(key, nodemap.StatePresent)
			return
		}
		children[i] = c
	}

	residual := make([]spatial.ID, 0, len(ids))
	childIDs := make([][]spatial.ID, childCount)

	for _, id := range ids {
		rec, ok := e.ents.Get(id)
		if !ok {
			continue
		}
		var matched []spatial.Key
		for i, ck := range children {
			match := false
			if rec.Bounds != nil {
				match = ck.Bounds().Intersects(*rec.Bounds)
			} else {
				match = ck.Contains(rec.Pos.Coord)
			}
			if match {
				childIDs[i] = append(childIDs[i], id)
				matched = append(matched, ck)
			}
		}
		if len(matched) > 0 {
			e.ents.Mutate(id, func(r *entity.Record) {
				r.RemoveKey(key)
				for _, ck := range matched {
					r.AddKey(ck)
				}
			})
		} else {
			residual = append(residual, id)
		}
	}

	for i, ck := range children {
		if len(childIDs[i]) == 0 {
			continue
		}
		e.nodes.Replace(ck, childIDs[i])
		if child := e.nodes.Get(ck); child != nil && e.cfg.shouldSplit(child.Len()) {
			e.trySplit(ck, child)
		}
	}

	emptied := e.nodes.Replace(key, residual)
	if emptied {
		e.nodes.Delete(key)
	} else {
		e.nodes.SetState(key, nodemap.StatePresent)
	}
	e.subdivides.Add(1)
	debug.Log(nil, "split", "key level=%d residual=%d", key.Level(), len(residual))
}

// tryMerge folds key's siblings back into their shared parent once they
// are jointly under the merge threshold (spec §4.3 "Merge"). key itself
// may already have been deleted by the caller; only its siblings and
// parent are consulted.
func (e *Engine) tryMerge(key spatial.Key) {
	if key.Level() == 0 {
		return
	}
	parentKey, err := key.Parent()
	if err != nil {
		return
	}

	childCount := e.cfg.scheme.ChildCount
	var siblingKeys []spatial.Key
	var siblingNodes []*nodemap.Node
	total := 0
	for i := uint8(0); i < childCount; i++ {
		ck, err := parentKey.Child(i)
		if err != nil {
			continue
		}
		n := e.nodes.Get(ck)
		if n == nil {
			continue
		}
		siblingKeys = append(siblingKeys, ck)
		siblingNodes = append(siblingNodes, n)
		total += n.Len()
	}

	if !e.cfg.shouldMerge(total) {
		return
	}

	e.nodes.GetOrCreate(parentKey)
	if !e.nodes.CompareAndSwapState(parentKey, nodemap.StatePresent, nodemap.StateMerging) {
		return
	}

	for i, sk := range siblingKeys {
		for _, id := range siblingNodes[i].Ids() {
			e.nodes.Add(parentKey, id)
			e.ents.Mutate(id, func(r *entity.Record) {
				r.RemoveKey(sk)
				r.AddKey(parentKey)
			})
		}
		e.nodes.Delete(sk)
	}

	e.nodes.SetState(parentKey, nodemap.StatePresent)
	e.merges.Add(1)
	debug.Log(nil, "merge", "parent level=%d siblings=%d", parentKey.Level(), len(siblingKeys))
}
