package nodemap_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucien-spatial/lucien/spatial"
	"github.com/lucien-spatial/lucien/spatial/morton"
	"github.com/lucien-spatial/lucien/spatial/nodemap"
)

func key(x, y, z uint32, level uint8) spatial.Key {
	return spatial.Key(morton.Enclosing(spatial.Coord{X: x, Y: y, Z: z}, level))
}

func TestMapAddGetRemove(t *testing.T) {
	m := nodemap.New()
	k := key(10, 10, 10, 10)

	n := m.Add(k, spatial.ID(1))
	require.NotNil(t, n)
	assert.Equal(t, 1, n.Len())
	assert.Contains(t, n.Ids(), spatial.ID(1))

	n2 := m.Add(k, spatial.ID(2))
	assert.Equal(t, 2, n2.Len())

	got := m.Get(k)
	require.NotNil(t, got)
	assert.Equal(t, 2, got.Len())

	emptied := m.Remove(k, spatial.ID(1))
	assert.False(t, emptied)
	assert.Equal(t, 1, m.Get(k).Len())

	emptied = m.Remove(k, spatial.ID(2))
	assert.True(t, emptied)
}

func TestMapGetOrCreate(t *testing.T) {
	m := nodemap.New()
	k := key(1, 2, 3, 5)

	n1 := m.GetOrCreate(k)
	n2 := m.GetOrCreate(k)
	assert.Same(t, n1, n2)
	assert.Equal(t, 0, n1.Len())
}

func TestMapDelete(t *testing.T) {
	m := nodemap.New()
	k := key(1, 1, 1, 4)
	m.Add(k, spatial.ID(1))
	m.Delete(k)
	assert.Nil(t, m.Get(k))
}

func TestMapReplace(t *testing.T) {
	m := nodemap.New()
	k := key(7, 7, 7, 4)

	emptied := m.Replace(k, []spatial.ID{1, 2, 3})
	assert.False(t, emptied)
	assert.Equal(t, 3, m.Get(k).Len())

	emptied = m.Replace(k, nil)
	assert.True(t, emptied)
}

func TestMapVisit(t *testing.T) {
	m := nodemap.New()
	keys := []spatial.Key{
		key(1, 1, 1, 21),
		key(100, 100, 100, 21),
		key(1000, 1000, 1000, 21),
	}
	for i, k := range keys {
		m.Add(k, spatial.ID(i))
	}

	seen := map[string]bool{}
	m.Visit(func(kb []byte, n *nodemap.Node) bool {
		seen[string(kb)] = true
		return true
	})
	assert.Len(t, seen, len(keys))
}

func TestMapCompareAndSwapState(t *testing.T) {
	m := nodemap.New()
	k := key(2, 2, 2, 4)
	m.Add(k, spatial.ID(1))

	ok := m.CompareAndSwapState(k, nodemap.StatePresent, nodemap.StateSplitting)
	assert.True(t, ok)

	ok = m.CompareAndSwapState(k, nodemap.StatePresent, nodemap.StateSplitting)
	assert.False(t, ok, "state is no longer Present, CAS should fail")

	m.SetState(k, nodemap.StatePresent)
	n := m.Get(k)
	assert.Equal(t, nodemap.StatePresent, n.State())
}

func TestMapRangeOrdering(t *testing.T) {
	m := nodemap.New()
	var keys []spatial.Key
	for i := uint32(0); i < 50; i++ {
		k := key(i*1000, i*500, i*250, 21)
		keys = append(keys, k)
		m.Add(k, spatial.ID(i))
	}

	var seen [][]byte
	for kb, _ := range m.Range(nil, nil) {
		seen = append(seen, append([]byte(nil), kb...))
	}
	require.Len(t, seen, len(keys))
	for i := 1; i < len(seen); i++ {
		assert.LessOrEqual(t, string(seen[i-1]), string(seen[i]))
	}
}

func TestMapConcurrentAdd(t *testing.T) {
	m := nodemap.New()
	k := key(3, 3, 3, 6)

	const n = 200
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(id spatial.ID) {
			defer wg.Done()
			m.Add(k, id)
		}(spatial.ID(i))
	}
	wg.Wait()

	node := m.Get(k)
	require.NotNil(t, node)
	assert.Equal(t, n, node.Len())
}
