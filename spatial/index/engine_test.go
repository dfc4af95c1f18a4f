package index_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucien-spatial/lucien/spatial"
	"github.com/lucien-spatial/lucien/spatial/index"
)

func newOctree(maxPerNode int) *index.Engine {
	return index.New(index.Morton(), index.WithMaxEntitiesPerNode(maxPerNode))
}

func newTetree(maxPerNode int) *index.Engine {
	return index.New(index.Tetree(), index.WithMaxEntitiesPerNode(maxPerNode))
}

// Scenario A: point entities cluster into one node; a far entity gets its
// own. All five points share one 2048-unit level-10 cell, so that node
// exceeds the threshold and subdivides until the far entity lands in a
// separate cell; the four clustered entities stay together.
func TestScenarioA_PointEntityCluster(t *testing.T) {
	e := newOctree(4)

	pts := []spatial.Point{
		spatial.NewPoint(10, 10, 10),
		spatial.NewPoint(10, 10, 11),
		spatial.NewPoint(10, 11, 10),
		spatial.NewPoint(11, 10, 10),
		spatial.NewPoint(100, 100, 100),
	}
	for i, p := range pts {
		require.NoError(t, e.Insert(spatial.ID(i+1), nil, p, 10, nil))
	}

	rec1, ok := e.Lookup(1)
	require.True(t, ok)
	rec5, ok := e.Lookup(5)
	require.True(t, ok)
	assert.NotEqual(t, string(rec1.Keys[0].Bytes()), string(rec5.Keys[0].Bytes()))

	rec2, _ := e.Lookup(2)
	assert.Equal(t, string(rec1.Keys[0].Bytes()), string(rec2.Keys[0].Bytes()))

	hits, err := e.KNearest(spatial.NewPoint(10, 10, 10), 3, 0, index.Background())
	require.NoError(t, err)
	require.Len(t, hits, 3)
	assert.Equal(t, spatial.ID(1), hits[0].ID)
	assert.InDelta(t, 0, hits[0].Distance, 1e-9)
}

// Scenario B: a node that exceeds the threshold splits into children.
func TestScenarioB_Subdivision(t *testing.T) {
	e := newOctree(4)

	pts := []spatial.Point{
		spatial.NewPoint(10, 10, 10),
		spatial.NewPoint(10, 10, 11),
		spatial.NewPoint(10, 11, 10),
		spatial.NewPoint(11, 10, 10),
		spatial.NewPoint(11, 11, 11),
	}
	for i, p := range pts {
		require.NoError(t, e.Insert(spatial.ID(i+1), nil, p, 10, nil))
	}

	for i := range pts {
		rec, ok := e.Lookup(spatial.ID(i + 1))
		require.True(t, ok)
		require.Len(t, rec.Keys, 1)
		assert.Equal(t, uint8(11), rec.Keys[0].Level(), "entities should have redistributed to level 11 children")
	}
}

// Scenario C: bounded entity spanning in the tetree scheme.
func TestScenarioC_BoundedEntitySpanning(t *testing.T) {
	e := newTetree(16)

	bounds := spatial.AABB{Min: spatial.Coord{0, 0, 0}, Max: spatial.Coord{200, 200, 200}}
	require.NoError(t, e.Insert(1, "box", spatial.NewPoint(100, 100, 100), 5, &bounds))

	rec, ok := e.Lookup(1)
	require.True(t, ok)
	assert.Greater(t, len(rec.Keys), 0)
	for _, k := range rec.Keys {
		assert.True(t, k.Bounds().Intersects(bounds))
	}

	require.NoError(t, e.Remove(1))
	_, ok = e.Lookup(1)
	assert.False(t, ok)
}

// Scenario D: ray intersection ordering.
func TestScenarioD_RayIntersection(t *testing.T) {
	e := newOctree(16)

	require.NoError(t, e.Insert(1, nil, spatial.NewPoint(50, 50, 50), 10, nil))
	require.NoError(t, e.Insert(2, nil, spatial.NewPoint(100, 50, 50), 10, nil))

	ray := index.Ray{Origin: spatial.NewPoint(0, 50, 50), Direction: [3]float64{1, 0, 0}}

	first, found, err := e.RayIntersectFirst(ray, 0, index.Background())
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, spatial.ID(1), first.ID)
	assert.InDelta(t, 50, first.T, 1.0)

	all, err := e.RayIntersect(ray, 0, index.Background())
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, spatial.ID(1), all[0].ID)
	assert.Equal(t, spatial.ID(2), all[1].ID)
	assert.Less(t, all[0].T, all[1].T)
}

func TestInsertDuplicateAndOutOfDomain(t *testing.T) {
	e := newOctree(16)
	require.NoError(t, e.Insert(1, nil, spatial.NewPoint(1, 1, 1), 5, nil))

	err := e.Insert(1, nil, spatial.NewPoint(2, 2, 2), 5, nil)
	assert.IsType(t, spatial.ErrDuplicateID{}, err)

	err = e.Insert(2, nil, spatial.NewPoint(float64(spatial.CoordMax)+1, 0, 0), 5, nil)
	assert.IsType(t, spatial.ErrOutOfDomain{}, err)
}

func TestRemoveUnknown(t *testing.T) {
	e := newOctree(16)
	err := e.Remove(42)
	assert.IsType(t, spatial.ErrNotFound{}, err)
}

// Insert/remove inverse (spec §8 property 8): re-inserting after a
// remove leaves the index in an equivalent state.
func TestInsertRemoveInverse(t *testing.T) {
	e := newOctree(16)
	p := spatial.NewPoint(33, 44, 55)

	require.NoError(t, e.Insert(1, nil, p, 8, nil))
	before := e.Stats()

	require.NoError(t, e.Remove(1))
	require.NoError(t, e.Insert(1, nil, p, 8, nil))
	after := e.Stats()

	assert.Equal(t, before.EntityCount, after.EntityCount)
}

// Idempotent update (spec §8 property 9).
func TestUpdateIdempotent(t *testing.T) {
	e := newOctree(16)
	p := spatial.NewPoint(20, 20, 20)
	require.NoError(t, e.Insert(1, nil, p, 8, nil))

	require.NoError(t, e.Update(1, p, nil))
	rec1, _ := e.Lookup(1)
	keys1 := append([]spatial.Key(nil), rec1.Keys...)

	require.NoError(t, e.Update(1, p, nil))
	rec2, _ := e.Lookup(1)

	require.Len(t, rec2.Keys, len(keys1))
	assert.Equal(t, string(keys1[0].Bytes()), string(rec2.Keys[0].Bytes()))
}

func TestUpdateRelocatesEntity(t *testing.T) {
	e := newOctree(16)
	p1 := spatial.NewPoint(10, 10, 10)
	p2 := spatial.NewPoint(5000, 5000, 5000)
	require.NoError(t, e.Insert(1, nil, p1, 10, nil))

	rec, _ := e.Lookup(1)
	oldKey := rec.Keys[0]

	require.NoError(t, e.Update(1, p2, nil))
	rec, _ = e.Lookup(1)
	assert.NotEqual(t, string(oldKey.Bytes()), string(rec.Keys[0].Bytes()))
}

func TestRangeQuery(t *testing.T) {
	e := newOctree(16)
	require.NoError(t, e.Insert(1, nil, spatial.NewPoint(5, 5, 5), 10, nil))
	require.NoError(t, e.Insert(2, nil, spatial.NewPoint(5000, 5000, 5000), 10, nil))

	region := index.BoxRegion{Box: spatial.AABB{Min: spatial.Coord{0, 0, 0}, Max: spatial.Coord{100, 100, 100}}}
	ids, err := e.RangeQuery(region, index.Background())
	require.NoError(t, err)
	assert.Equal(t, []spatial.ID{1}, ids)
}

func TestRangeQueryCancellation(t *testing.T) {
	e := newOctree(16)
	require.NoError(t, e.Insert(1, nil, spatial.NewPoint(5, 5, 5), 10, nil))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	region := index.BoxRegion{Box: spatial.AABB{Min: spatial.Coord{0, 0, 0}, Max: spatial.Coord{10, 10, 10}}}
	_, err := e.RangeQuery(region, index.NewCancelToken(ctx))
	assert.IsType(t, spatial.ErrCancelled{}, err)
}

func TestFindCollisions(t *testing.T) {
	e := newOctree(16)
	require.NoError(t, e.Insert(1, nil, spatial.NewPoint(10, 10, 10), 10, nil))
	require.NoError(t, e.Insert(2, nil, spatial.NewPoint(10, 10, 10), 10, nil))
	require.NoError(t, e.Insert(3, nil, spatial.NewPoint(9000, 9000, 9000), 10, nil))

	pairs := e.FindCollisions(index.AllPairs)
	require.Len(t, pairs, 1)
	assert.Equal(t, index.Pair{A: 1, B: 2}, pairs[0])
}

func TestFindCollisionsFilter(t *testing.T) {
	e := newOctree(16)
	require.NoError(t, e.Insert(1, nil, spatial.NewPoint(10, 10, 10), 10, nil))
	require.NoError(t, e.Insert(2, nil, spatial.NewPoint(10, 10, 10), 10, nil))

	noPairs := e.FindCollisions(func(spatial.ID, spatial.ID) bool { return false })
	assert.Empty(t, noPairs)
}

func TestInsertBatch(t *testing.T) {
	e := newOctree(16)

	entries := make([]index.BatchEntry, 0, 200)
	for i := 0; i < 200; i++ {
		entries = append(entries, index.BatchEntry{
			ID:       spatial.ID(i + 1),
			Position: spatial.NewPoint(float64(i%64), float64((i*7)%64), float64((i*13)%64)),
			Level:    9,
		})
	}
	results := e.InsertBatch(entries)
	require.Len(t, results, len(entries))
	for _, r := range results {
		assert.True(t, r.IsOk())
	}
	assert.EqualValues(t, len(entries), e.Stats().EntityCount)

	for _, entry := range entries {
		_, ok := e.Lookup(entry.ID)
		assert.True(t, ok)
	}
}

func TestInsertBatchTetree(t *testing.T) {
	e := newTetree(16)

	entries := make([]index.BatchEntry, 0, 50)
	for i := 0; i < 50; i++ {
		entries = append(entries, index.BatchEntry{
			ID:       spatial.ID(i + 1),
			Position: spatial.NewPoint(float64(i), float64(i*3), float64(i*5)),
			Level:    7,
		})
	}
	results := e.InsertBatch(entries)
	for _, r := range results {
		assert.True(t, r.IsOk())
	}
	assert.EqualValues(t, len(entries), e.Stats().EntityCount)
}

func TestRebalance(t *testing.T) {
	e := newOctree(4)
	for i := 0; i < 5; i++ {
		require.NoError(t, e.Insert(spatial.ID(i+1), nil, spatial.NewPoint(10, 10, 10), 10, nil))
	}
	e.Rebalance()

	for i := 0; i < 5; i++ {
		rec, ok := e.Lookup(spatial.ID(i + 1))
		require.True(t, ok)
		assert.NotEmpty(t, rec.Keys)
	}
}
