package index

import (
	"github.com/lucien-spatial/lucien/internal/debug"
	"github.com/lucien-spatial/lucien/spatial"
	"github.com/lucien-spatial/lucien/spatial/entity"
	"github.com/lucien-spatial/lucien/spatial/nodemap"
)

// Insert places a new entity in the index (spec §4.4 "insert"). If bounds
// is non-nil the entity spans every level-ℓ cell its box intersects;
// otherwise it occupies the single cell enclosing position.
func (e *Engine) Insert(id spatial.ID, content any, position spatial.Point, level uint8, bounds *spatial.AABB) error {
	if !position.InDomain() {
		return spatial.ErrOutOfDomain{Coord: position.Coord}
	}
	if level > e.cfg.maxLevel {
		return spatial.ErrMaxDepth{Level: level}
	}
	if e.ents.Has(id) {
		return spatial.ErrDuplicateID{ID: id}
	}

	keys := e.keysFor(position, level, bounds)

	rec := &entity.Record{ID: id, Content: content, Pos: position, Bounds: bounds, Level: level, Keys: keys}
	e.ents.Put(rec)
	e.cache.Put(rec)

	for _, k := range keys {
		n := e.nodes.Add(k, id)
		e.nodeInserts.Add(1)
		if e.cfg.autoBalance && e.cfg.shouldSplit(n.Len()) {
			e.trySplit(k, n)
		}
	}
	e.entityCount.Add(1)
	debug.Log(nil, "insert", "id=%d level=%d keys=%d", id, level, len(keys))
	return nil
}

// keysFor computes the spanning set for (position, level, bounds): a
// singleton for point entities, or every level-ℓ cell bounds intersects.
func (e *Engine) keysFor(position spatial.Point, level uint8, bounds *spatial.AABB) []spatial.Key {
	if bounds == nil {
		return []spatial.Key{e.cfg.scheme.Enclosing(position.Coord, level)}
	}
	return spanningKeys(e.cfg.scheme, *bounds, level)
}

// Remove deletes an entity and every node entry referencing it (spec §4.4
// "remove").
func (e *Engine) Remove(id spatial.ID) error {
	rec, ok := e.ents.Get(id)
	if !ok {
		return spatial.ErrNotFound{ID: id}
	}

	for _, k := range rec.Keys {
		emptied := e.nodes.Remove(k, id)
		e.nodeRemoves.Add(1)
		if emptied {
			e.nodes.Delete(k)
			if e.cfg.autoBalance {
				e.tryMerge(k)
			}
		}
	}
	e.ents.Delete(id)
	e.cache.Invalidate(id)
	e.entityCount.Add(-1)
	debug.Log(nil, "remove", "id=%d", id)
	return nil
}

// Update changes an entity's position and/or bounds, relocating it between
// nodes as needed (spec §4.4 "update"). Idempotent when newPosition equals
// the entity's current position and newBounds is equivalent to its
// current bounds.
func (e *Engine) Update(id spatial.ID, newPosition spatial.Point, newBounds *spatial.AABB) error {
	if !newPosition.InDomain() {
		return spatial.ErrOutOfDomain{Coord: newPosition.Coord}
	}

	rec, ok := e.ents.Get(id)
	if !ok {
		return spatial.ErrNotFound{ID: id}
	}

	newKeys := e.keysFor(newPosition, rec.Level, newBounds)
	removedKeys, addedKeys := diffKeys(rec.Keys, newKeys)

	for _, k := range removedKeys {
		emptied := e.nodes.Remove(k, id)
		e.nodeRemoves.Add(1)
		if emptied {
			e.nodes.Delete(k)
			if e.cfg.autoBalance {
				e.tryMerge(k)
			}
		}
	}
	for _, k := range addedKeys {
		n := e.nodes.Add(k, id)
		e.nodeInserts.Add(1)
		if e.cfg.autoBalance && e.cfg.shouldSplit(n.Len()) {
			e.trySplit(k, n)
		}
	}

	e.ents.Mutate(id, func(r *entity.Record) {
		r.Pos = newPosition
		r.Bounds = newBounds
		r.Keys = newKeys
	})
	e.cache.Invalidate(id)
	return nil
}

// Lookup returns the entity record for id, if present.
func (e *Engine) Lookup(id spatial.ID) (*entity.Record, bool) {
	if rec, ok := e.cache.Get(id); ok {
		return rec, true
	}
	rec, ok := e.ents.Get(id)
	if ok {
		e.cache.Put(rec)
	}
	return rec, ok
}

// Rebalance forces a full split/merge sweep over every currently occupied
// node, independent of autoBalance (spec §4.3 "A full tree rebalance is
// only invoked explicitly or when strategy.shouldRebalance signals").
func (e *Engine) Rebalance() {
	var keys []spatial.Key
	e.nodes.Visit(func(_ []byte, n *nodemap.Node) bool {
		keys = append(keys, n.Key())
		return true
	})
	for _, k := range keys {
		if n := e.nodes.Get(k); n != nil && e.cfg.shouldSplit(n.Len()) {
			e.trySplit(k, n)
		}
	}
	for _, k := range keys {
		if k.Level() > 0 {
			e.tryMerge(k)
		}
	}
}
