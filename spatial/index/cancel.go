package index

import "context"

// CancelToken is the cooperative cancellation handle threaded through
// long-running queries (spec §5 "cooperative query cancellation via
// CancelToken"). It wraps a context.Context, the idiomatic Go mechanism
// for this, rather than inventing a bespoke cancel type — the teacher's
// own blocking operations (e.g. pkg/xsync primitives) take a
// context.Context where cancellation matters.
type CancelToken struct {
	ctx context.Context
}

// NewCancelToken wraps ctx as a CancelToken.
func NewCancelToken(ctx context.Context) CancelToken {
	return CancelToken{ctx: ctx}
}

// Background returns a CancelToken that never cancels.
func Background() CancelToken {
	return CancelToken{ctx: context.Background()}
}

// Cancelled reports whether the token's context has been cancelled.
func (t CancelToken) Cancelled() bool {
	if t.ctx == nil {
		return false
	}
	select {
	case <-t.ctx.Done():
		return true
	default:
		return false
	}
}
