package entity

import (
	"sync"

	"github.com/flier/goutil/pkg/arena"
	"github.com/flier/goutil/pkg/arena/swiss"
	"github.com/lucien-spatial/lucien/spatial"
)

// registryShardCount mirrors nodemap's sharding rationale: independent
// locks per id range so concurrent inserts of unrelated entities don't
// serialize on one mutex.
const registryShardCount = 32

type registryShard struct {
	mu sync.RWMutex
	m  *swiss.Map[spatial.ID, *Record]
}

// Registry is the sharded-mutex wrapper over the teacher's arena-backed
// swiss table (spec §4.4): the authoritative store of every live entity's
// Record. Grounded on pkg/arena/swiss.Map, the teacher's open-addressing
// hash map, the same way spatial/nodemap is grounded on pkg/arena/art.
type Registry struct {
	shards [registryShardCount]*registryShard
}

// New creates an empty Registry. initialSizePerShard sizes each shard's
// backing swiss table up front, avoiding rehash churn during bulk loads
// (spec §5 "bulk loading").
func New(initialSizePerShard uint32) *Registry {
	r := &Registry{}
	for i := range r.shards {
		a := new(arena.Arena)
		r.shards[i] = &registryShard{m: swiss.NewMap[spatial.ID, *Record](a, initialSizePerShard)}
	}
	return r
}

func (r *Registry) shardFor(id spatial.ID) *registryShard {
	return r.shards[uint64(id)%registryShardCount]
}

// Get returns the record for id, if present.
func (r *Registry) Get(id spatial.ID) (*Record, bool) {
	s := r.shardFor(id)
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.m.Get(id)
}

// Put inserts or replaces the record for id.
func (r *Registry) Put(rec *Record) {
	s := r.shardFor(rec.ID)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m.Put(rec.ID, rec)
}

// Delete removes the record for id, reporting whether it was present.
func (r *Registry) Delete(id spatial.ID) bool {
	s := r.shardFor(id)
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.m.Delete(id)
}

// Has reports whether id is registered, without the cost of copying its
// Record out.
func (r *Registry) Has(id spatial.ID) bool {
	s := r.shardFor(id)
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.m.Has(id)
}

// Mutate looks up id and, if present, calls fn with the shard's write lock
// held, so callers can adjust a Record's Keys/Pos atomically with respect
// to concurrent Get/Put/Delete on the same id.
func (r *Registry) Mutate(id spatial.ID, fn func(*Record)) bool {
	s := r.shardFor(id)
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.m.Get(id)
	if !ok {
		return false
	}
	fn(rec)
	return true
}
