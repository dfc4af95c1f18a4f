package spatial

import "fmt"

// Error kinds surfaced at the API boundary (spec §7). Each is a distinct
// comparable type so callers can recover it with errors.As, or with the
// generic github.com/flier/goutil/pkg/xerrors.AsA[T] helper this module's
// dependency on flier/goutil already provides.

// ErrOutOfDomain reports a position whose coordinates are negative or
// exceed CoordMax in some axis.
type ErrOutOfDomain struct {
	Coord Coord
}

func (e ErrOutOfDomain) Error() string {
	return fmt.Sprintf("spatial: coordinate %+v is out of domain [0, %d)", e.Coord, CoordMax)
}

// ErrDuplicateID reports an insert for an ID already present in the engine.
type ErrDuplicateID struct {
	ID ID
}

func (e ErrDuplicateID) Error() string {
	return fmt.Sprintf("spatial: entity %d already exists", e.ID)
}

// ErrNotFound reports a remove/update/lookup for an unknown entity.
type ErrNotFound struct {
	ID ID
}

func (e ErrNotFound) Error() string {
	return fmt.Sprintf("spatial: entity %d not found", e.ID)
}

// ErrAtRoot reports Parent() called on a level-0 key.
type ErrAtRoot struct{}

func (ErrAtRoot) Error() string { return "spatial: key is at the root; no parent" }

// ErrMaxDepth reports Child() on a level-MaxLevel key, or an insert whose
// level exceeds MaxLevel.
type ErrMaxDepth struct{ Level uint8 }

func (e ErrMaxDepth) Error() string {
	return fmt.Sprintf("spatial: level %d exceeds MaxLevel (%d)", e.Level, MaxLevel)
}

// ErrCancelled reports a query terminated by its CancelToken.
type ErrCancelled struct{}

func (ErrCancelled) Error() string { return "spatial: query cancelled" }

// ErrInvariantViolation indicates an internal bug: some bidirectional
// consistency or structural invariant (spec §8) was found broken. Per spec
// §7 this is fatal — the operation aborts and the caller is expected to
// terminate the process; it is never returned as a recoverable condition
// from a well-formed engine.
type ErrInvariantViolation struct {
	Detail string
}

func (e ErrInvariantViolation) Error() string {
	return "spatial: invariant violation: " + e.Detail
}
