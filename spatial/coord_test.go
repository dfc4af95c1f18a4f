package spatial_test

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	. "github.com/lucien-spatial/lucien/spatial"
)

func TestCoordDomain(t *testing.T) {
	Convey("Given coordinates inside and outside the domain", t, func() {
		inside := Coord{X: 0, Y: CoordMax - 1, Z: 100}
		outside := Coord{X: CoordMax, Y: 0, Z: 0}

		Convey("InDomain reports accordingly", func() {
			So(inside.InDomain(), ShouldBeTrue)
			So(outside.InDomain(), ShouldBeFalse)
		})
	})

	Convey("Given CellSize at various levels", t, func() {
		Convey("Level 0 spans the whole domain, MaxLevel is a single unit", func() {
			So(CellSize(0), ShouldEqual, uint32(CoordMax))
			So(CellSize(MaxLevel), ShouldEqual, uint32(1))
		})
	})
}

func TestAABB(t *testing.T) {
	Convey("Given two AABBs that overlap", t, func() {
		a := AABB{Min: Coord{0, 0, 0}, Max: Coord{10, 10, 10}}
		b := AABB{Min: Coord{5, 5, 5}, Max: Coord{15, 15, 15}}

		Convey("They intersect", func() {
			So(a.Intersects(b), ShouldBeTrue)
		})

		Convey("Their union contains both", func() {
			u := a.Union(b)
			So(u.Contains(Coord{0, 0, 0}), ShouldBeTrue)
			So(u.Contains(Coord{15, 15, 15}), ShouldBeTrue)
		})
	})

	Convey("Given two disjoint AABBs", t, func() {
		a := AABB{Min: Coord{0, 0, 0}, Max: Coord{1, 1, 1}}
		b := AABB{Min: Coord{100, 100, 100}, Max: Coord{200, 200, 200}}

		Convey("They do not intersect", func() {
			So(a.Intersects(b), ShouldBeFalse)
		})
	})

	Convey("Given a box and a point outside it", t, func() {
		box := AABB{Min: Coord{10, 10, 10}, Max: Coord{20, 20, 20}}

		Convey("MinDistanceSquared is zero for an interior point", func() {
			So(box.MinDistanceSquared(Point{Coord{15, 15, 15}}), ShouldEqual, 0.0)
		})

		Convey("MinDistanceSquared is positive for an exterior point", func() {
			d := box.MinDistanceSquared(Point{Coord{0, 10, 10}})
			So(d, ShouldEqual, 100.0) // 10 units away on X
		})
	})
}

func TestPointDistance(t *testing.T) {
	Convey("Given two points one unit apart on each axis", t, func() {
		p := NewPoint(0, 0, 0)
		q := NewPoint(1, 1, 1)

		Convey("DistanceSquared is 3", func() {
			So(p.DistanceSquared(q), ShouldEqual, 3.0)
		})
	})
}
