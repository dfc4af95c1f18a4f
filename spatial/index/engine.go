package index

import (
	"sync/atomic"

	"github.com/lucien-spatial/lucien/internal/xsync"
	"github.com/lucien-spatial/lucien/spatial"
	"github.com/lucien-spatial/lucien/spatial/entity"
	"github.com/lucien-spatial/lucien/spatial/nodemap"
)

// candidateBuf is the scratch slice query operations accumulate results
// into before they're sorted/filtered into the caller-facing shape. It is
// pooled below since range queries allocate one per call and the engine
// expects many concurrent queries in steady state.
type candidateBuf struct {
	ids      []spatial.ID
	fromPool bool
}

func resetCandidateBuf(b *candidateBuf) { b.ids = b.ids[:0] }

// Engine is the assembled spatial index: a node container keyed by the
// configured scheme's keys, an entity registry, a recency cache, and a
// pool of query scratch buffers (spec §5 "Spatial index engine").
type Engine struct {
	cfg    Config
	nodes  *nodemap.Map
	ents   *entity.Registry
	cache  *entity.Cache
	bufs   xsync.Pool[candidateBuf]
	pooled atomic.Int64

	entityCount atomic.Int64
	nodeInserts atomic.Int64
	nodeRemoves atomic.Int64
	subdivides  atomic.Int64
	merges      atomic.Int64
}

// Stats is a point-in-time snapshot of the engine's size (spec §6
// "Stats snapshot type implied by the external-collaborator contracts").
type Stats struct {
	EntityCount int64
	NodeInserts int64
	NodeRemoves int64
	Subdivides  int64
	Merges      int64
}

// New constructs an Engine for the given scheme.
func New(scheme spatial.Scheme, opts ...Option) *Engine {
	cfg := defaultConfig(scheme)
	for _, opt := range opts {
		opt(&cfg)
	}

	e := &Engine{
		cfg:   cfg,
		nodes: nodemap.New(),
		ents:  entity.New(64),
		cache: entity.NewCache(cfg.entityCachePerShard),
	}
	e.bufs.Reset = resetCandidateBuf
	return e
}

// getBuf pulls a pooled candidateBuf, capping how many are ever
// outstanding via a high-water counter: sync.Pool itself has no notion of
// a hard cap (items can be collected by the GC at any time, or not at
// all), so callers that need a genuine upper bound on concurrent scratch
// memory — as spec §5's "capped object pool" requires — must track
// outstanding count explicitly alongside it.
func (e *Engine) getBuf() *candidateBuf {
	if e.pooled.Add(1) > int64(e.cfg.poolHighWater) {
		e.pooled.Add(-1)
		return &candidateBuf{}
	}
	b := e.bufs.Get()
	b.fromPool = true
	return b
}

func (e *Engine) putBuf(b *candidateBuf) {
	if !b.fromPool {
		return
	}
	b.fromPool = false
	e.pooled.Add(-1)
	e.bufs.Put(b)
}

// Stats returns a snapshot of the engine's current size and activity
// counters.
func (e *Engine) Stats() Stats {
	return Stats{
		EntityCount: e.entityCount.Load(),
		NodeInserts: e.nodeInserts.Load(),
		NodeRemoves: e.nodeRemoves.Load(),
		Subdivides:  e.subdivides.Load(),
		Merges:      e.merges.Load(),
	}
}
