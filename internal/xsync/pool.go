package xsync

import "sync"

// Pool is a strongly-typed sync.Pool. spatial/index draws its range-query
// (and so frustum-cull) scratch buffers from one of these per Engine;
// k-nearest and collision queries allocate their own.
type Pool[T any] struct {
	New   func() *T // constructs a fresh value when the pool is empty
	Reset func(*T)  // clears a value before it's handed back out

	impl sync.Pool
}

// Get returns a pooled value, constructing one with New (or the zero
// value, if New is nil) when the pool has nothing cached.
func (p *Pool[T]) Get() *T {
	if v, ok := p.impl.Get().(*T); ok && v != nil {
		return v
	}
	if p.New != nil {
		return p.New()
	}
	return new(T)
}

// Put resets v, if Reset is set, and returns it to the pool.
func (p *Pool[T]) Put(v *T) {
	if p.Reset != nil {
		p.Reset(v)
	}
	p.impl.Put(v)
}
