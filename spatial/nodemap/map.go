package nodemap

import (
	"hash/maphash"
	"sync"

	"github.com/flier/goutil/pkg/arena"
	"github.com/flier/goutil/pkg/arena/art"
	"github.com/lucien-spatial/lucien/spatial"
)

// shardCount is the number of independent ART shards backing a Map.
// Sharding lets concurrent inserts into unrelated regions of the index
// proceed without contending on a single tree or arena (spec §4.2, §5
// "per-key serializability, not global linearizability").
const shardCount = 64

// shard pairs one Adaptive Radix Tree of *Node with the arena it allocates
// from and the lock serializing writers. Readers also take the read lock:
// the teacher's ART is not a persistent structure, so a write that grows a
// node's arena-backed id Slice in place is a data race against an
// unsynchronized reader — RWMutex gives every shard many-readers/one-
// writer semantics without needing a persistent tree. Reads are therefore
// not lock-free.
type shard struct {
	mu   sync.RWMutex
	tree art.Tree[*Node]
	a    arena.Arena
}

func (s *shard) get(key []byte) *Node {
	p := s.tree.Search(key)
	if p == nil {
		return nil
	}
	return *p
}

// Map is the concurrent node container: spatial.Key bytes -> Node (spec
// §4.2 "NodeMap"). It shards by a hash of the key bytes rather than the
// bytes' own leading byte, since a scheme whose keys share a long common
// coordinate prefix (e.g. many points in the same region at increasing
// level) would otherwise funnel all their nodes into one shard.
type Map struct {
	shards [shardCount]*shard
	seed   maphash.Seed
}

// New creates an empty Map.
func New() *Map {
	m := &Map{seed: maphash.MakeSeed()}
	for i := range m.shards {
		m.shards[i] = &shard{}
	}
	return m
}

func (m *Map) shardFor(key []byte) *shard {
	var h maphash.Hash
	h.SetSeed(m.seed)
	_, _ = h.Write(key)
	return m.shards[h.Sum64()%shardCount]
}

// GetOrCreate returns the node at key, creating an empty Present node if
// none exists yet.
func (m *Map) GetOrCreate(key spatial.Key) *Node {
	kb := key.Bytes()
	s := m.shardFor(kb)

	s.mu.RLock()
	if n := s.get(kb); n != nil {
		s.mu.RUnlock()
		return n
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if n := s.get(kb); n != nil {
		return n
	}
	n := newNode(key)
	s.tree.Insert(&s.a, kb, n)
	return n
}

// Get returns the node at key, or nil if absent.
func (m *Map) Get(key spatial.Key) *Node {
	kb := key.Bytes()
	s := m.shardFor(kb)
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.get(kb)
}

// Add appends id to the node at key, creating the node if necessary.
func (m *Map) Add(key spatial.Key, id spatial.ID) *Node {
	kb := key.Bytes()
	s := m.shardFor(kb)
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.get(kb)
	if n == nil {
		n = newNode(key)
		s.tree.Insert(&s.a, kb, n)
	}
	n.add(&s.a, id)
	return n
}

// Remove deletes id from the node at key. Reports whether the node became
// empty, in which case the caller (the engine) should consider merging the
// node back into its parent (spec §4.3 "auto-merge").
func (m *Map) Remove(key spatial.Key, id spatial.ID) (emptied bool) {
	kb := key.Bytes()
	s := m.shardFor(kb)
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.get(kb)
	if n == nil {
		return false
	}
	n.remove(id)
	return n.Len() == 0
}

// Delete removes the node at key entirely.
func (m *Map) Delete(key spatial.Key) {
	kb := key.Bytes()
	s := m.shardFor(kb)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tree.Delete(&s.a, kb)
}

// SetState transitions the node at key's lifecycle state.
func (m *Map) SetState(key spatial.Key, state State) {
	kb := key.Bytes()
	s := m.shardFor(kb)
	s.mu.Lock()
	defer s.mu.Unlock()
	if n := s.get(kb); n != nil {
		n.setState(state)
	}
}

// CompareAndSwapState atomically transitions the node at key from old to
// new, reporting whether the swap took effect. The engine uses this to
// claim exclusive rights to subdivide or merge a node (spec §4.4 "a node
// in Splitting or Merging must not be observed... as simultaneously
// empty") without holding the shard lock for the whole operation.
func (m *Map) CompareAndSwapState(key spatial.Key, old, new State) bool {
	kb := key.Bytes()
	s := m.shardFor(kb)
	s.mu.RLock()
	n := s.get(kb)
	s.mu.RUnlock()
	if n == nil {
		return false
	}
	return n.state.CompareAndSwap(uint32(old), uint32(new))
}

// Replace overwrites the node at key's id set wholesale (used when
// subdivision or merge redistributes entities in bulk rather than one at
// a time). Reports whether the node is now empty.
func (m *Map) Replace(key spatial.Key, ids []spatial.ID) (emptied bool) {
	kb := key.Bytes()
	s := m.shardFor(kb)
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.get(kb)
	if n == nil {
		if len(ids) == 0 {
			return true
		}
		n = newNode(key)
		s.tree.Insert(&s.a, kb, n)
	}
	n.ids = n.ids.SetLen(0)
	for _, id := range ids {
		n.add(&s.a, id)
	}
	return n.Len() == 0
}

// Visit calls cb for every (key, node) pair across all shards in no
// particular cross-shard order, stopping early if cb returns false. Each
// shard is visited under its own read lock, so cb never observes a
// half-written node but may observe shards at different logical times
// relative to one another (per-key serializability, spec §5).
func (m *Map) Visit(cb func(key []byte, n *Node) bool) {
	for _, s := range m.shards {
		s.mu.RLock()
		cont := s.tree.Visit(func(key []byte, n **Node) bool {
			return !cb(key, *n)
		})
		s.mu.RUnlock()
		if cont {
			return
		}
	}
}

// VisitPrefix is like Visit but restricted to keys sharing prefix. Because
// sharding is by hash rather than by key prefix, this still has to walk
// every shard; each shard's own VisitPrefix stays cheap via the ART's
// prefix compression.
func (m *Map) VisitPrefix(prefix []byte, cb func(key []byte, n *Node) bool) {
	for _, s := range m.shards {
		s.mu.RLock()
		cont := s.tree.VisitPrefix(prefix, func(key []byte, n **Node) bool {
			return !cb(key, *n)
		})
		s.mu.RUnlock()
		if cont {
			return
		}
	}
}
