package index

import (
	"bytes"
	"runtime"
	"sort"
	"sync"

	"github.com/timandy/routine"

	"github.com/flier/goutil/pkg/res"
	"github.com/lucien-spatial/lucien/spatial"
	"github.com/lucien-spatial/lucien/spatial/entity"
	"github.com/lucien-spatial/lucien/spatial/tetree"
)

// BatchEntry is one entity to insert via InsertBatch (spec §4.4 "Bulk
// loading: insertBatch(records)").
type BatchEntry struct {
	ID       spatial.ID
	Content  any
	Position spatial.Point
	Level    uint8
	Bounds   *spatial.AABB
}

type resolvedEntry struct {
	entry BatchEntry
	keys  []spatial.Key
	err   error
}

// bulkTetreeCache is a goroutine-local tetree.PackedKeyCache, letting each
// worker in the parallel resolution phase below walk tetree ancestor
// chains without contending on a shared cache (spec §4.1 "Per-thread
// variants to avoid contention in bulk loading").
var bulkTetreeCache = routine.NewThreadLocalWithInitial[*tetree.PackedKeyCache](func() any {
	return tetree.NewPackedKeyCache(1 << 16)
})

// InsertBatch loads many entities at once: keys are resolved in parallel
// (using tetree.LazyKey plus a per-goroutine PackedKeyCache when the
// engine's scheme is tetree and bulk lazy keys are enabled, since Morton's
// O(1) Enclosing has nothing to amortize), then sorted by key bytes for
// node-map locality, then placed with per-insert subdivision checks
// suppressed, followed by one Rebalance when auto-balancing is enabled
// (spec §4.4 "batch node-map updates, and suppress per-insert subdivision
// checks. Final subdivision pass occurs once at the end").
func (e *Engine) InsertBatch(entries []BatchEntry) []res.Result[spatial.ID] {
	results := make([]res.Result[spatial.ID], len(entries))
	resolved := make([]resolvedEntry, len(entries))

	workers := runtime.GOMAXPROCS(0)
	if workers > len(entries) {
		workers = len(entries)
	}
	if workers < 1 {
		workers = 1
	}

	var wg sync.WaitGroup
	chunk := (len(entries) + workers - 1) / workers
	if chunk < 1 {
		chunk = 1
	}
	for start := 0; start < len(entries); start += chunk {
		end := start + chunk
		if end > len(entries) {
			end = len(entries)
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			for i := lo; i < hi; i++ {
				resolved[i] = e.resolveBatchEntry(entries[i])
			}
		}(start, end)
	}
	wg.Wait()

	order := make([]int, len(entries))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(i, j int) bool {
		a, b := resolved[order[i]], resolved[order[j]]
		if len(a.keys) == 0 || len(b.keys) == 0 {
			return len(a.keys) > len(b.keys)
		}
		return bytes.Compare(a.keys[0].Bytes(), b.keys[0].Bytes()) < 0
	})

	for _, i := range order {
		re := resolved[i]
		if re.err != nil {
			results[i] = res.Err[spatial.ID](re.err)
			continue
		}
		if e.ents.Has(re.entry.ID) {
			results[i] = res.Err[spatial.ID](spatial.ErrDuplicateID{ID: re.entry.ID})
			continue
		}

		rec := &entity.Record{
			ID: re.entry.ID, Content: re.entry.Content, Pos: re.entry.Position,
			Bounds: re.entry.Bounds, Level: re.entry.Level, Keys: re.keys,
		}
		e.ents.Put(rec)
		e.cache.Put(rec)
		for _, k := range re.keys {
			e.nodes.Add(k, re.entry.ID)
			e.nodeInserts.Add(1)
		}
		e.entityCount.Add(1)
		results[i] = res.Ok(re.entry.ID)
	}

	if e.cfg.autoBalance {
		e.Rebalance()
	}
	return results
}

func (e *Engine) resolveBatchEntry(entry BatchEntry) resolvedEntry {
	if !entry.Position.InDomain() {
		return resolvedEntry{entry: entry, err: spatial.ErrOutOfDomain{Coord: entry.Position.Coord}}
	}
	if entry.Level > e.cfg.maxLevel {
		return resolvedEntry{entry: entry, err: spatial.ErrMaxDepth{Level: entry.Level}}
	}

	if entry.Bounds != nil {
		return resolvedEntry{entry: entry, keys: spanningKeys(e.cfg.scheme, *entry.Bounds, entry.Level)}
	}

	if e.cfg.useBulkLazyKeys && e.cfg.scheme.Name == "tetree" {
		lazy := tetree.NewLazyKey(entry.Position.Coord, entry.Level)
		cache := bulkTetreeCache.Get().(*tetree.PackedKeyCache)
		return resolvedEntry{entry: entry, keys: []spatial.Key{lazy.ResolveCached(cache)}}
	}

	return resolvedEntry{entry: entry, keys: []spatial.Key{e.cfg.scheme.Enclosing(entry.Position.Coord, entry.Level)}}
}
