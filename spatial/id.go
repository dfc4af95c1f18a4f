package spatial

// ID is an opaque, totally ordered, hashable entity identifier. The engine
// never interprets it beyond comparison and hashing.
type ID uint64

// Less gives a deterministic tie-break order for entities that otherwise
// compare equal (e.g. two k-nearest candidates at the same distance, spec §8
// property 5).
func (id ID) Less(other ID) bool { return id < other }
