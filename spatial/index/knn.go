package index

import (
	"container/heap"
	"math"
	"sort"

	"github.com/lucien-spatial/lucien/spatial"
	"github.com/lucien-spatial/lucien/spatial/nodemap"
)

// nodeQueueItem is one occupied node awaiting expansion in the k-nearest
// best-first search, prioritized by the lower-bound distance from the
// query point to its cell (spec §4.4 "kNearest... A priority queue over
// keys").
type nodeQueueItem struct {
	node  *nodemap.Node
	bound float64
}

type nodeQueue []nodeQueueItem

func (q nodeQueue) Len() int            { return len(q) }
func (q nodeQueue) Less(i, j int) bool  { return q[i].bound < q[j].bound }
func (q nodeQueue) Swap(i, j int)       { q[i], q[j] = q[j], q[i] }
func (q *nodeQueue) Push(x any)         { *q = append(*q, x.(nodeQueueItem)) }
func (q *nodeQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

// candidateHeap is a bounded max-heap of the best k candidates seen so
// far: the root is always the current worst of the retained set, so a
// new, better candidate can evict it in O(log k).
type candidateHeap []Hit

func (h candidateHeap) Len() int            { return len(h) }
func (h candidateHeap) Less(i, j int) bool  { return h[i].Distance > h[j].Distance }
func (h candidateHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *candidateHeap) Push(x any)         { *h = append(*h, x.(Hit)) }
func (h *candidateHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// KNearest returns the k closest entities to point, ascending by distance
// with ties broken by id (spec §4.4 "kNearest", spec §8 property 5). A
// maxDistance of 0 or less means unbounded.
func (e *Engine) KNearest(point spatial.Point, k int, maxDistance float64, cancel CancelToken) ([]Hit, error) {
	if k <= 0 {
		return nil, nil
	}
	maxDistSq := maxDistance * maxDistance

	best := make(candidateHeap, 0, k)
	heap.Init(&best)

	var pq nodeQueue
	e.nodes.Visit(func(_ []byte, n *nodemap.Node) bool {
		bound := n.Key().Bounds().MinDistanceSquared(point)
		if maxDistance > 0 && bound > maxDistSq {
			return true
		}
		pq = append(pq, nodeQueueItem{node: n, bound: bound})
		return true
	})
	heap.Init(&pq)

	for pq.Len() > 0 {
		if cancel.Cancelled() {
			return sortedHits(best), spatial.ErrCancelled{}
		}
		top := heap.Pop(&pq).(nodeQueueItem)
		if best.Len() >= k && top.bound > best[0].Distance {
			break
		}
		for _, id := range top.node.Ids() {
			rec, ok := e.ents.Get(id)
			if !ok {
				continue
			}
			d := rec.Pos.DistanceSquared(point)
			if maxDistance > 0 && d > maxDistSq {
				continue
			}
			candidate := Hit{ID: id, Distance: d}
			switch {
			case best.Len() < k:
				heap.Push(&best, candidate)
			case d < best[0].Distance || (d == best[0].Distance && id < best[0].ID):
				heap.Pop(&best)
				heap.Push(&best, candidate)
			}
		}
	}

	return sortedHits(best), nil
}

// sortedHits returns best's contents sorted ascending by distance, with
// ties broken by id (spec §4.4 "ties broken by id order (deterministic)").
// The heap holds squared distances; the returned hits carry the Euclidean
// distance.
func sortedHits(best candidateHeap) []Hit {
	out := append([]Hit(nil), best...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Distance != out[j].Distance {
			return out[i].Distance < out[j].Distance
		}
		return out[i].ID < out[j].ID
	})
	for i := range out {
		out[i].Distance = math.Sqrt(out[i].Distance)
	}
	return out
}
