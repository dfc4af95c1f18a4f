package index_test

import (
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucien-spatial/lucien/spatial"
	"github.com/lucien-spatial/lucien/spatial/index"
)

// Scenario E: concurrent inserters and queriers, no invariant violations
// on a quiescent check afterward (spec §8 property 10).
func TestConcurrentInsertAndQuery(t *testing.T) {
	e := newOctree(16)

	const inserters = 20
	const perInserter = 200
	var wg sync.WaitGroup

	ids := make(chan spatial.ID, inserters*perInserter)

	wg.Add(inserters)
	for w := 0; w < inserters; w++ {
		go func(worker int) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(int64(worker)))
			for i := 0; i < perInserter; i++ {
				id := spatial.ID(worker*perInserter + i + 1)
				p := spatial.NewPoint(
					float64(rng.Intn(1<<20)),
					float64(rng.Intn(1<<20)),
					float64(rng.Intn(1<<20)),
				)
				if err := e.Insert(id, nil, p, 12, nil); err == nil {
					ids <- id
				}
			}
		}(w)
	}

	var qwg sync.WaitGroup
	stop := make(chan struct{})
	qwg.Add(5)
	for q := 0; q < 5; q++ {
		go func(seed int) {
			defer qwg.Done()
			rng := rand.New(rand.NewSource(int64(seed + 1000)))
			for {
				select {
				case <-stop:
					return
				default:
				}
				p := spatial.NewPoint(float64(rng.Intn(1<<20)), float64(rng.Intn(1<<20)), float64(rng.Intn(1<<20)))
				_, _ = e.KNearest(p, 10, 0, index.Background())
			}
		}(q)
	}

	wg.Wait()
	close(stop)
	qwg.Wait()
	close(ids)

	var inserted []spatial.ID
	for id := range ids {
		inserted = append(inserted, id)
	}
	require.NotEmpty(t, inserted)
	assert.EqualValues(t, len(inserted), e.Stats().EntityCount)

	for _, id := range inserted {
		rec, ok := e.Lookup(id)
		require.True(t, ok)
		hits, err := e.KNearest(rec.Pos, 1, 0, index.Background())
		require.NoError(t, err)
		require.Len(t, hits, 1)
		assert.Equal(t, id, hits[0].ID, "every inserted entity must be discoverable from its own position")
	}
}

// Concurrent insert/remove churn on a shared region must never corrupt
// the node map or registry (spec §8 property 1-4, "stop-the-world" check).
func TestConcurrentInsertRemoveChurn(t *testing.T) {
	e := newOctree(8)
	const n = 500

	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(id spatial.ID) {
			defer wg.Done()
			p := spatial.NewPoint(float64(id%64), float64((id*3)%64), float64((id*7)%64))
			if err := e.Insert(id, nil, p, 10, nil); err != nil {
				return
			}
			if id%2 == 0 {
				_ = e.Remove(id)
			}
		}(spatial.ID(i + 1))
	}
	wg.Wait()

	for i := 1; i <= n; i++ {
		id := spatial.ID(i)
		rec, ok := e.Lookup(id)
		if id%2 == 0 {
			assert.False(t, ok)
			continue
		}
		require.True(t, ok)
		for _, k := range rec.Keys {
			assert.True(t, k.Contains(rec.Pos.Coord))
		}
	}
}
