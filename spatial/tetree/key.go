package tetree

import (
	"encoding/binary"

	"github.com/flier/goutil/pkg/opt"
	"github.com/lucien-spatial/lucien/spatial"
)

// Key is a tetree key: a Morton-style cube anchor plus an ancestor-type
// chain (spec §3 "TetreeKey (tetree)": "128-bit tuple: two 60-bit packed
// words encoding an ancestor-type chain"). typeLow packs 3 bits per level
// for levels 1..10, typeHigh packs 3 bits per level for levels 11..21; the
// level-0 (root) type lives in rootType since level 0 has no parent
// transition to record.
//
// anchor mirrors morton.Key's interleaved code and gives the cell's cube.
// The type chain alone cannot tell apart two cubes whose descent kept the
// same types, so anchor is part of both Compare and the externally-stable
// representation (Bytes).
type Key struct {
	anchor   uint64
	typeLow  uint64
	typeHigh uint64
	rootType uint8
	level    uint8
}

var _ spatial.Key = Key{}

func typeBitsAt(level uint8) (useHigh bool, shift uint) {
	if level <= 10 {
		return false, 3 * uint(level-1)
	}
	return true, 3 * uint(level-11)
}

func (k Key) typeAt(level uint8) uint8 {
	if level == 0 {
		return k.rootType
	}
	useHigh, shift := typeBitsAt(level)
	if useHigh {
		return uint8((k.typeHigh >> shift) & 0x7)
	}
	return uint8((k.typeLow >> shift) & 0x7)
}

func (k *Key) setTypeAt(level uint8, t uint8) {
	useHigh, shift := typeBitsAt(level)
	if useHigh {
		k.typeHigh |= uint64(t) << shift
	} else {
		k.typeLow |= uint64(t) << shift
	}
}

// Enclosing returns the unique level-ℓ tetree key whose tetrahedron
// contains p (spec §4.1 "enclosing(point, ℓ)"). O(level): the root type is
// classified once from p's coordinate-dominance order, then the type chain
// is walked forward one Bey refinement per level using the octant p falls
// into at that level (spec: "Computation is O(ℓ)").
func Enclosing(p spatial.Coord, level uint8) Key {
	mask := ^uint32(0) << (spatial.CoordBits - uint(level))
	full := encode(p.X, p.Y, p.Z)

	k := Key{
		anchor:   encode(p.X&mask, p.Y&mask, p.Z&mask),
		rootType: classifyRoot(p.X, p.Y, p.Z),
		level:    level,
	}

	current := k.rootType
	for i := uint8(1); i <= level; i++ {
		current = childType(current, octantAt(full, i))
		k.setTypeAt(i, current)
	}
	return k
}

// Root returns the level-0 key of the given characteristic type (0..5),
// covering the entire domain.
func Root(rootType uint8) Key {
	return Key{rootType: rootType % NumTypes}
}

func (k Key) Level() uint8 { return k.level }

func (k Key) Type() uint8 { return k.typeAt(k.level) }

func (k Key) Parent() (spatial.Key, error) {
	if k.level == 0 {
		return nil, spatial.ErrAtRoot{}
	}
	parent := k
	parent.level = k.level - 1
	parent.anchor = k.anchor & levelMask(parent.level)
	// Clear the vacated chain slot so two keys that differ only below
	// parent.level compare equal once truncated to it.
	useHigh, shift := typeBitsAt(k.level)
	if useHigh {
		parent.typeHigh &^= uint64(0x7) << shift
	} else {
		parent.typeLow &^= uint64(0x7) << shift
	}
	return parent, nil
}

func (k Key) Child(i uint8) (spatial.Key, error) {
	if k.level >= spatial.MaxLevel {
		return nil, spatial.ErrMaxDepth{Level: k.level}
	}
	if i >= ChildCount {
		panic("tetree: child index out of range")
	}
	child := k
	child.level = k.level + 1
	child.anchor = k.anchor | uint64(i)<<groupShift(child.level)
	child.setTypeAt(child.level, childType(k.typeAt(k.level), i))
	return child, nil
}

func (k Key) ChildIndex() uint8 {
	if k.level == 0 {
		return 0
	}
	return octantAt(k.anchor, k.level)
}

func (k Key) minCorner() spatial.Coord {
	x, y, z := decode(k.anchor)
	return spatial.Coord{X: x, Y: y, Z: z}
}

// Contains reports whether p falls into this key's tetrahedron. Because
// Bey refinement leaves known gaps and overlaps between sibling
// tetrahedra (spec §4.1, §9), containment for indexing purposes is
// defined operationally: p belongs to k iff classifying p at k's level
// reproduces k exactly. This costs O(level), same as Enclosing.
func (k Key) Contains(p spatial.Coord) bool {
	if !k.Bounds().Contains(p) {
		return false
	}
	return Enclosing(p, k.level).Equal(k)
}

func (k Key) Equal(o Key) bool {
	return k.level == o.level && k.anchor == o.anchor &&
		k.typeLow == o.typeLow && k.typeHigh == o.typeHigh && k.rootType == o.rootType
}

func (k Key) Bounds() spatial.AABB {
	size := spatial.CellSize(k.level)
	min := k.minCorner()
	return spatial.AABB{
		Min: min,
		Max: spatial.Coord{X: min.X + size - 1, Y: min.Y + size - 1, Z: min.Z + size - 1},
	}
}

// Compare gives the key's total order: lexicographic over (level,
// typeLow/typeHigh chain, root type, anchor), matching spec §4.1's "Order:
// lexicographic over (level, low-word, high-word)" for the tetree scheme.
func (k Key) Compare(other spatial.Key) int {
	o := other.(Key)
	switch {
	case k.level != o.level:
		if k.level < o.level {
			return -1
		}
		return 1
	case k.typeLow != o.typeLow:
		if k.typeLow < o.typeLow {
			return -1
		}
		return 1
	case k.typeHigh != o.typeHigh:
		if k.typeHigh < o.typeHigh {
			return -1
		}
		return 1
	case k.rootType != o.rootType:
		if k.rootType < o.rootType {
			return -1
		}
		return 1
	case k.anchor != o.anchor:
		if k.anchor < o.anchor {
			return -1
		}
		return 1
	default:
		return 0
	}
}

// Bytes returns the externally-stable representation: the two packed
// words, the root type, the level, and the anchor — 26 bytes, matching
// spec §3's "128-bit tuple" (two 64-bit words) plus every other field
// Compare's ordering depends on.
func (k Key) Bytes() []byte {
	var b [26]byte
	binary.BigEndian.PutUint64(b[0:8], k.typeLow)
	binary.BigEndian.PutUint64(b[8:16], k.typeHigh)
	b[16] = k.rootType
	b[17] = k.level
	binary.BigEndian.PutUint64(b[18:26], k.anchor)
	return b[:]
}

// FromBytes parses a Key previously produced by Bytes, including its
// anchor, so the parsed key keeps Compare, Bounds and Contains.
func FromBytes(b []byte) Key {
	return Key{
		typeLow:  binary.BigEndian.Uint64(b[0:8]),
		typeHigh: binary.BigEndian.Uint64(b[8:16]),
		rootType: b[16],
		level:    b[17],
		anchor:   binary.BigEndian.Uint64(b[18:26]),
	}
}

func (k Key) FaceNeighbor(dir spatial.Direction) opt.Option[spatial.Key] {
	size := int64(spatial.CellSize(k.level))
	min := k.minCorner()
	dx, dy, dz := faceDelta(dir)

	nx := int64(min.X) + dx*size
	ny := int64(min.Y) + dy*size
	nz := int64(min.Z) + dz*size

	if nx < 0 || ny < 0 || nz < 0 || nx >= spatial.CoordMax || ny >= spatial.CoordMax || nz >= spatial.CoordMax {
		return opt.None[spatial.Key]()
	}

	neighbor := Enclosing(spatial.Coord{X: uint32(nx), Y: uint32(ny), Z: uint32(nz)}, k.level)
	return opt.Some[spatial.Key](neighbor)
}

func faceDelta(dir spatial.Direction) (dx, dy, dz int64) {
	switch dir {
	case spatial.DirPosX:
		return 1, 0, 0
	case spatial.DirNegX:
		return -1, 0, 0
	case spatial.DirPosY:
		return 0, 1, 0
	case spatial.DirNegY:
		return 0, -1, 0
	case spatial.DirPosZ:
		return 0, 0, 1
	case spatial.DirNegZ:
		return 0, 0, -1
	default:
		panic("tetree: invalid direction")
	}
}
