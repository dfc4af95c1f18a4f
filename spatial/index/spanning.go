package index

import "github.com/lucien-spatial/lucien/spatial"

// spanningKeys returns every level-ℓ key whose cell intersects box (spec
// §4.4 "insert... if bounds is present, also computes the set of keys at
// level ℓ whose cells intersect bounds"). It walks box on the level's cell
// grid rather than descending the tree, since both schemes place a cell's
// minimum corner on a multiple of CellSize(level) in every axis — callers
// are expected to choose a level coarse enough that this set stays small
// (scenario C's "small, enumerable set").
func spanningKeys(scheme spatial.Scheme, box spatial.AABB, level uint8) []spatial.Key {
	size := spatial.CellSize(level)

	alignDown := func(v uint32) uint32 { return (v / size) * size }

	minX, minY, minZ := alignDown(box.Min.X), alignDown(box.Min.Y), alignDown(box.Min.Z)

	seen := make(map[string]struct{})
	var keys []spatial.Key

	for x := minX; x <= box.Max.X; x += size {
		for y := minY; y <= box.Max.Y; y += size {
			for z := minZ; z <= box.Max.Z; z += size {
				k := scheme.Enclosing(spatial.Coord{X: x, Y: y, Z: z}, level)
				kb := string(k.Bytes())
				if _, ok := seen[kb]; ok {
					continue
				}
				seen[kb] = struct{}{}
				keys = append(keys, k)
			}
		}
	}
	return keys
}

// diffKeys partitions (oldKeys, newKeys) into the keys present only in
// oldKeys (removed) and only in newKeys (added), comparing by Bytes()
// (spec §4.4 "update... oldSet \ newSet... newSet \ oldSet").
func diffKeys(oldKeys, newKeys []spatial.Key) (removed, added []spatial.Key) {
	oldSet := make(map[string]spatial.Key, len(oldKeys))
	for _, k := range oldKeys {
		oldSet[string(k.Bytes())] = k
	}
	newSet := make(map[string]spatial.Key, len(newKeys))
	for _, k := range newKeys {
		newSet[string(k.Bytes())] = k
	}
	for kb, k := range oldSet {
		if _, ok := newSet[kb]; !ok {
			removed = append(removed, k)
		}
	}
	for kb, k := range newSet {
		if _, ok := oldSet[kb]; !ok {
			added = append(added, k)
		}
	}
	return removed, added
}
