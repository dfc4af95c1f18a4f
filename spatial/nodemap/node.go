// Package nodemap implements the concurrent node container: a sharded
// Adaptive Radix Tree keyed by a spatial.Key's byte representation,
// mapping each occupied cell to the set of entity ids it holds (spec §4.2
// "NodeMap").
package nodemap

import (
	"sync/atomic"

	"github.com/flier/goutil/pkg/arena"
	"github.com/flier/goutil/pkg/arena/slice"
	"github.com/lucien-spatial/lucien/spatial"
)

// State is a node's position in its lifecycle state machine (spec §4.2:
// "a node being split or merged is never visible to readers in a
// half-updated state").
type State uint32

const (
	StatePresent State = iota
	StateSplitting
	StateMerging
	StateRemoved
)

// Node is one occupied cell: the entity ids it directly holds, plus a
// lifecycle state a caller can check before trusting the id set (spec
// §4.2, §4.3 subdivision/merge). Ids are kept in an arena-backed,
// append-friendly Slice (teacher's pkg/arena/slice), avoiding a
// heap-allocated []spatial.ID per node — the same idiom the teacher uses
// for its own variable-length node payloads.
//
// Node also carries the spatial.Key that produced it. The key's Bytes()
// is what indexes the node in the shard's ART tree; keeping the Key value
// lets geometric queries (Bounds, Contains) use it directly instead of
// parsing it back from the indexed bytes.
type Node struct {
	key   spatial.Key
	ids   slice.Slice[spatial.ID]
	state atomic.Uint32
}

func newNode(key spatial.Key) *Node {
	n := &Node{key: key}
	n.state.Store(uint32(StatePresent))
	return n
}

// Key returns the spatial key this node is indexed by.
func (n *Node) Key() spatial.Key { return n.key }

// State returns the node's current lifecycle state. Safe to call without
// holding the owning shard's lock: state is the one field readers may
// consult advisoraly outside the lock before deciding whether to wait.
func (n *Node) State() State { return State(n.state.Load()) }

func (n *Node) setState(s State) { n.state.Store(uint32(s)) }

// Ids returns the entity ids directly stored at this node. The slice
// shares the node's arena-backed backing array; callers must not retain it
// past the shard lock that produced it.
func (n *Node) Ids() []spatial.ID { return n.ids.Raw() }

// Len is the number of entity ids held directly at this node.
func (n *Node) Len() int { return n.ids.Len() }

// add appends id to the node's id set. Caller must hold the owning shard's
// write lock.
func (n *Node) add(a arena.AllocatorExt, id spatial.ID) {
	n.ids = n.ids.AppendOne(a, id)
}

// remove deletes id from the node's id set, if present. Caller must hold
// the owning shard's write lock. O(n) in the node's occupancy, which spec
// §4.2 expects to stay small (nodes subdivide once occupancy crosses the
// configured fan-out threshold).
func (n *Node) remove(id spatial.ID) (removed bool) {
	raw := n.ids.Raw()
	for i, existing := range raw {
		if existing == id {
			raw[i] = raw[len(raw)-1]
			n.ids = n.ids.SetLen(len(raw) - 1)
			return true
		}
	}
	return false
}
