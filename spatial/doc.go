// Package spatial defines the shared vocabulary of the Lucien spatial index:
// entity identifiers, coordinates, bounding boxes, and the SpatialKey trait
// that the octree (package morton) and tetree (package tetree) schemes both
// implement.
//
// Nothing in this package is scheme-specific. spatial/index assembles the
// engine on top of a Scheme value (see scheme.go) so that the same insert,
// remove, k-nearest, range, ray, and collision algorithms run unmodified
// against either key family.
package spatial
