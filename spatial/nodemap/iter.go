//go:build go1.23

package nodemap

import (
	"bytes"
	"container/heap"
	"iter"
)

// entry is one (key, node) pair pulled from a single shard's ordered ART
// iteration.
type entry struct {
	key  []byte
	node *Node
}

// shardCursor walks one shard's sorted key range lazily, a value at a
// time, by running the shard's own Visit in a goroutine that blocks on a
// channel — the ART's Visit is push-style (callback-driven), so a cursor
// that can be advanced one entry at a time needs this adapter to turn it
// into a pull-style source for the heap merge below.
type shardCursor struct {
	ch   chan entry
	done chan struct{}
	cur  entry
	ok   bool
}

func newShardCursor(s *shard, lo, hi []byte) *shardCursor {
	c := &shardCursor{ch: make(chan entry), done: make(chan struct{})}
	go func() {
		defer close(c.ch)
		s.mu.RLock()
		defer s.mu.RUnlock()
		s.tree.Visit(func(key []byte, n **Node) bool {
			if lo != nil && bytes.Compare(key, lo) < 0 {
				return false
			}
			if hi != nil && bytes.Compare(key, hi) >= 0 {
				return true // ART visits in ascending order; nothing further qualifies.
			}
			select {
			case c.ch <- entry{key: key, node: *n}:
				return false
			case <-c.done:
				return true
			}
		})
	}()
	c.advance()
	return c
}

func (c *shardCursor) advance() {
	c.cur, c.ok = <-c.ch
}

func (c *shardCursor) close() {
	select {
	case <-c.done:
	default:
		close(c.done)
	}
	for range c.ch {
		// drain so the producer goroutine's Visit can return.
	}
}

// cursorHeap orders shardCursors by their current key, implementing
// container/heap.Interface for the k-way merge (spec §4.2's cross-shard
// ordered range iteration, composed here with a Go 1.23 iterator so
// callers can range over spec §4.5 range queries lazily, O(depth) memory,
// same as the morton/tetree key algebra's own iteration style).
type cursorHeap []*shardCursor

func (h cursorHeap) Len() int { return len(h) }
func (h cursorHeap) Less(i, j int) bool {
	return bytes.Compare(h[i].cur.key, h[j].cur.key) < 0
}
func (h cursorHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *cursorHeap) Push(x any)        { *h = append(*h, x.(*shardCursor)) }
func (h *cursorHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// Range returns a lazily-evaluated, key-ordered sequence of every (key,
// node) pair across all shards whose key falls in [lo, hi) (either bound
// nil means unbounded). Memory use is O(shardCount), not O(matching keys):
// only one pending entry per shard is buffered at a time.
func (m *Map) Range(lo, hi []byte) iter.Seq2[[]byte, *Node] {
	return func(yield func([]byte, *Node) bool) {
		h := make(cursorHeap, 0, shardCount)
		for _, s := range m.shards {
			c := newShardCursor(s, lo, hi)
			if c.ok {
				h = append(h, c)
			} else {
				c.close()
			}
		}
		heap.Init(&h)

		defer func() {
			for _, c := range h {
				c.close()
			}
		}()

		for h.Len() > 0 {
			top := h[0]
			if !yield(top.cur.key, top.cur.node) {
				return
			}
			top.advance()
			if top.ok {
				heap.Fix(&h, 0)
			} else {
				heap.Pop(&h)
				top.close()
			}
		}
	}
}
