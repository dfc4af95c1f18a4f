// Package entity implements Lucien's entity manager: the registry mapping
// an entity id to its position and the set of node keys it currently
// occupies, plus a bounded cache of recently-touched entities for the
// engine's hot paths (spec §4.4 "Entity management").
package entity

import "github.com/lucien-spatial/lucien/spatial"

// Record is everything the index tracks about one entity: its content,
// position, optional bounds, and which node keys (spec: "entity.nodeKeySet")
// currently index it. Most entities occupy exactly one node key; entities
// with spatial extent that straddles a cell boundary may be registered
// under more than one.
type Record struct {
	ID      spatial.ID
	Content any
	Pos     spatial.Point
	Bounds  *spatial.AABB
	Level   uint8
	Keys    []spatial.Key
}

// HasKey reports whether k is among the record's node keys, comparing by
// Bytes() since spatial.Key values may come from different concrete key
// implementations that are otherwise incomparable.
func (r *Record) HasKey(k spatial.Key) bool {
	kb := k.Bytes()
	for _, existing := range r.Keys {
		if string(existing.Bytes()) == string(kb) {
			return true
		}
	}
	return false
}

// AddKey records k as one of the entity's node keys, if not already
// present.
func (r *Record) AddKey(k spatial.Key) {
	if !r.HasKey(k) {
		r.Keys = append(r.Keys, k)
	}
}

// RemoveKey drops k from the entity's node keys.
func (r *Record) RemoveKey(k spatial.Key) {
	kb := k.Bytes()
	for i, existing := range r.Keys {
		if string(existing.Bytes()) == string(kb) {
			r.Keys = append(r.Keys[:i], r.Keys[i+1:]...)
			return
		}
	}
}
