//go:build go1.23

// Package xsync provides the concurrency-safe primitives the engine's hot
// paths build on directly: a memoizing map (spatial/tetree's packed-key
// cache, spec §4.1 "bounded caches") and a typed object pool (spatial/index's
// query scratch buffers, spec §4.4 "object pools"). Both are strongly-typed
// wrappers over the stdlib's untyped sync primitives.
package xsync

import "sync"

// Map is a strongly-typed sync.Map, used as a lock-free memoization table:
// a goroutine that loses a concurrent LoadOrStore race simply recomputes
// and discards its result, which is safe as long as the computation is
// pure in its key — exactly the contract spatial/tetree's key cache needs.
type Map[K comparable, V any] struct {
	impl sync.Map
}

// Load returns the value stored for k, if any.
func (m *Map[K, V]) Load(k K) (V, bool) {
	v, ok := m.impl.Load(k)
	if !ok {
		var zero V
		return zero, false
	}
	return v.(V), true //nolint:errcheck
}

// Store unconditionally sets the value for k.
func (m *Map[K, V]) Store(k K, v V) {
	m.impl.Store(k, v)
}

// LoadOrStore returns the existing value for k, computing and storing one
// with make if absent. make may run even when loaded is true, since a
// concurrent writer can win the race after make returns but before the
// store lands; the computed-but-discarded result is simply dropped.
func (m *Map[K, V]) LoadOrStore(k K, make func() V) (actual V, loaded bool) {
	if v, ok := m.Load(k); ok {
		return v, true
	}
	w, loaded := m.impl.LoadOrStore(k, make())
	return w.(V), loaded //nolint:errcheck
}
