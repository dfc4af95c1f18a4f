package morton

import (
	"encoding/binary"

	"github.com/flier/goutil/pkg/opt"
	"github.com/lucien-spatial/lucien/spatial"
)

// ChildCount is the number of children a Morton key has: 8, one per octant.
const ChildCount = 8

// Key is a Morton (Z-order) spatial key: a single 63-bit interleaved code
// plus an explicit level (spec §3 "MortonKey (octree)"). The code's top
// 3*level bits hold the interleaved coordinate prefix for this cell; all
// lower bits are zero.
type Key struct {
	code  uint64
	level uint8
}

var _ spatial.Key = Key{}

// Enclosing returns the unique level-ℓ key whose cell contains p (spec
// §4.1 "enclosing(point, ℓ)"). O(1): bit masking plus one interleave.
func Enclosing(p spatial.Coord, level uint8) Key {
	mask := ^uint32(0) << (spatial.CoordBits - uint(level))
	return Key{
		code:  encode(p.X&mask, p.Y&mask, p.Z&mask),
		level: level,
	}
}

// Root is the level-0 key covering the entire domain.
func Root() Key { return Key{} }

func (k Key) Level() uint8 { return k.level }

func (k Key) Parent() (spatial.Key, error) {
	if k.level == 0 {
		return nil, spatial.ErrAtRoot{}
	}
	return Key{code: k.code & levelMask(k.level - 1), level: k.level - 1}, nil
}

func (k Key) Child(i uint8) (spatial.Key, error) {
	if k.level >= spatial.MaxLevel {
		return nil, spatial.ErrMaxDepth{Level: k.level}
	}
	if i >= ChildCount {
		panic("morton: child index out of range")
	}
	child := k.level + 1
	return Key{code: k.code | uint64(i)<<groupShift(child), level: child}, nil
}

func (k Key) ChildIndex() uint8 {
	if k.level == 0 {
		return 0
	}
	return uint8((k.code >> groupShift(k.level)) & 0x7)
}

func (k Key) minCorner() spatial.Coord {
	x, y, z := decode(k.code)
	return spatial.Coord{X: x, Y: y, Z: z}
}

func (k Key) Contains(p spatial.Coord) bool {
	size := spatial.CellSize(k.level)
	min := k.minCorner()
	return p.X >= min.X && p.X < min.X+size &&
		p.Y >= min.Y && p.Y < min.Y+size &&
		p.Z >= min.Z && p.Z < min.Z+size
}

func (k Key) Bounds() spatial.AABB {
	size := spatial.CellSize(k.level)
	min := k.minCorner()
	return spatial.AABB{
		Min: min,
		Max: spatial.Coord{X: min.X + size - 1, Y: min.Y + size - 1, Z: min.Z + size - 1},
	}
}

// Compare gives the SFC order (spec "Total order is space-filling-curve
// order"): primarily by code, with level as a tie-break so an ancestor
// sorts immediately before the range of its descendants.
func (k Key) Compare(other spatial.Key) int {
	o := other.(Key)
	switch {
	case k.code < o.code:
		return -1
	case k.code > o.code:
		return 1
	case k.level < o.level:
		return -1
	case k.level > o.level:
		return 1
	default:
		return 0
	}
}

// Bytes returns the externally-stable byte representation: 8 bytes of
// big-endian code (so byte-wise comparison matches Compare's code
// ordering) followed by the level byte. This is also the key the node
// container's Adaptive Radix Tree indexes by.
func (k Key) Bytes() []byte {
	var b [9]byte
	binary.BigEndian.PutUint64(b[:8], k.code)
	b[8] = k.level
	return b[:]
}

// FromBytes parses a Key previously produced by Bytes.
func FromBytes(b []byte) Key {
	return Key{code: binary.BigEndian.Uint64(b[:8]), level: b[8]}
}

// faceDelta gives the (dx, dy, dz) unit step for each Direction, measured
// in cells at the key's own level.
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
		panic("morton: invalid direction")
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
