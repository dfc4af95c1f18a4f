package tetree_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/lucien-spatial/lucien/spatial"
	. "github.com/lucien-spatial/lucien/spatial/tetree"
)

func TestTetreeKey(t *testing.T) {
	Convey("Given the root key", t, func() {
		root := Root(0)

		Convey("It is at level 0 and has no parent", func() {
			So(root.Level(), ShouldEqual, uint8(0))
			_, err := root.Parent()
			So(err, ShouldHaveSameTypeAs, spatial.ErrAtRoot{})
		})

		Convey("Its children round-trip through ChildIndex and Parent", func() {
			for i := uint8(0); i < ChildCount; i++ {
				c, err := root.Child(i)
				So(err, ShouldBeNil)
				ck := c.(Key)
				So(ck.ChildIndex(), ShouldEqual, i)

				p, err := ck.Parent()
				So(err, ShouldBeNil)
				So(p.(Key).Equal(root), ShouldBeTrue)
			}
		})
	})

	Convey("Given a point enclosed at some level", t, func() {
		p := spatial.Coord{X: 50, Y: 120, Z: 5}
		level := uint8(8)
		k := Enclosing(p, level)

		Convey("Enclosing is deterministic: repeated calls agree", func() {
			k2 := Enclosing(p, level)
			So(k2.Equal(k), ShouldBeTrue)
		})

		Convey("The key's level matches and it contains the point", func() {
			So(k.Level(), ShouldEqual, level)
			So(k.Contains(p), ShouldBeTrue)
		})

		Convey("Bytes round-trip comparison order through FromBytes", func() {
			b := k.Bytes()
			k2 := FromBytes(b)
			So(k2.Compare(k), ShouldEqual, 0)
		})

		Convey("Parent-of-child is the identity (spec invariant 4)", func() {
			child, err := k.Child(2)
			So(err, ShouldBeNil)
			parent, err := child.(Key).Parent()
			So(err, ShouldBeNil)
			So(parent.(Key).Equal(k), ShouldBeTrue)
		})
	})

	Convey("Given a key at max depth", t, func() {
		k := Enclosing(spatial.Coord{X: 7, Y: 7, Z: 7}, spatial.MaxLevel)

		Convey("Child fails with ErrMaxDepth", func() {
			_, err := k.Child(0)
			So(err, ShouldHaveSameTypeAs, spatial.ErrMaxDepth{})
		})
	})

	Convey("Given root-type classification", t, func() {
		Convey("Every point gets a type in 0..5", func() {
			pts := []spatial.Coord{
				{X: 10, Y: 5, Z: 1}, {X: 1, Y: 5, Z: 10}, {X: 5, Y: 10, Z: 1},
				{X: 5, Y: 1, Z: 10}, {X: 10, Y: 1, Z: 5}, {X: 1, Y: 10, Z: 5},
				{X: 3, Y: 3, Z: 3},
			}
			for _, p := range pts {
				k := Enclosing(p, 4)
				So(k.Type(), ShouldBeLessThan, uint8(NumTypes))
			}
		})
	})

	Convey("Given two keys at different levels", t, func() {
		a := Enclosing(spatial.Coord{X: 1, Y: 1, Z: 1}, 3)
		b := Enclosing(spatial.Coord{X: 1, Y: 1, Z: 1}, 5)

		Convey("Compare orders the shallower key first", func() {
			So(a.Compare(b), ShouldBeLessThan, 0)
		})
	})
}

func TestTetreeDetector(t *testing.T) {
	Convey("Given a Detector and an interior key", t, func() {
		det := Detector{}
		k := spatial.Key(Enclosing(spatial.Coord{X: 1 << 19, Y: 1 << 19, Z: 1 << 19}, 5))

		Convey("FaceNeighbors away from the boundary are all present", func() {
			So(det.FaceNeighbors(k), ShouldHaveLength, 6)
		})

		Convey("IsBoundary is false away from the domain edge", func() {
			So(det.IsBoundary(k, spatial.DirPosX), ShouldBeFalse)
		})
	})

	Convey("Given a key at the domain's minimum corner", t, func() {
		k := Enclosing(spatial.Coord{X: 0, Y: 0, Z: 0}, 5)

		Convey("Stepping further negative returns a boundary", func() {
			det := Detector{}
			So(det.IsBoundary(spatial.Key(k), spatial.DirNegX), ShouldBeTrue)
		})
	})
}

func TestLazyKey(t *testing.T) {
	Convey("Given a LazyKey", t, func() {
		p := spatial.Coord{X: 42, Y: 7, Z: 99}
		level := uint8(6)
		lk := NewLazyKey(p, level)

		Convey("Level and Coord are available without resolving", func() {
			So(lk.Level(), ShouldEqual, level)
			So(lk.Coord(), ShouldResemble, p)
		})

		Convey("Resolve matches the eager Enclosing computation", func() {
			resolved := lk.Resolve()
			eager := Enclosing(p, level)
			So(resolved.Equal(eager), ShouldBeTrue)
		})

		Convey("ResolveCached agrees with Resolve", func() {
			cache := NewPackedKeyCache(1024)
			a := NewLazyKey(p, level).ResolveCached(cache)
			b := NewLazyKey(p, level).Resolve()
			So(a.Equal(b), ShouldBeTrue)
		})

		Convey("SameCell is true for identical coordinate/level pairs", func() {
			other := NewLazyKey(p, level)
			So(lk.SameCell(other), ShouldBeTrue)
		})
	})
}

func TestPackedKeyCache(t *testing.T) {
	Convey("Given a small PackedKeyCache", t, func() {
		cache := NewPackedKeyCache(4)

		Convey("Repeated lookups for the same cell return equal keys", func() {
			p := spatial.Coord{X: 3, Y: 3, Z: 3}
			a := cache.Enclosing(p.X, p.Y, p.Z, 4)
			b := cache.Enclosing(p.X, p.Y, p.Z, 4)
			So(a.Equal(b), ShouldBeTrue)
			So(a.Equal(Enclosing(p, 4)), ShouldBeTrue)
		})

		Convey("Lookups beyond the soft limit still return correct keys", func() {
			for i := uint32(0); i < 16; i++ {
				p := spatial.Coord{X: i, Y: i, Z: i}
				k := cache.Enclosing(p.X, p.Y, p.Z, 4)
				So(k.Equal(Enclosing(p, 4)), ShouldBeTrue)
			}
		})
	})
}
