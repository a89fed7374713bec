package space

import (
	"github.com/l7mp/depart/pkg/geometry"
)

// IndexSpace is a region of index points: a bounding rectangle, optionally
// refined by a sparsity map. Dense (Sparsity == nil) iff its points are
// exactly Bounds.
type IndexSpace[T geometry.Scalar] struct {
	Bounds   geometry.Rect[T]
	Sparsity *Map[T]
}

// Dense builds a dense index space (no sparsity refinement).
func Dense[T geometry.Scalar](bounds geometry.Rect[T]) IndexSpace[T] {
	return IndexSpace[T]{Bounds: bounds}
}

// Sparse builds a sparse index space refined by the given (already Valid)
// sparsity map. Every entry of sparsity must be contained in bounds;
// violating that invariant is a programming error.
func Sparse[T geometry.Scalar](bounds geometry.Rect[T], sparsity *Map[T]) IndexSpace[T] {
	for _, e := range sparsity.Entries() {
		if !bounds.ContainsRect(e.Bounds) {
			panic("space: sparsity entry escapes index space bounds")
		}
	}
	return IndexSpace[T]{Bounds: bounds, Sparsity: sparsity}
}

// PendingSparse builds a sparse index space refined by a sparsity map that
// may still be Pending: the bounds-containment invariant Sparse enforces
// eagerly is deferred here, since a Pending map hasn't got entries to check
// yet. The caller — a partition operator's deferred constructor — hands
// this handle back to its own caller immediately and only Finalizes the map
// once its algorithm runs. Reading the space's points (Entries, Contains,
// Volume) before the map reaches Valid is the caller's own deferral bug,
// and panics inside Map.Entries the same way it would for any other
// premature read.
func PendingSparse[T geometry.Scalar](bounds geometry.Rect[T], sparsity *Map[T]) IndexSpace[T] {
	return IndexSpace[T]{Bounds: bounds, Sparsity: sparsity}
}

// IsDense reports whether the space has no sparsity refinement.
func (s IndexSpace[T]) IsDense() bool { return s.Sparsity == nil }

// Contains reports whether p is one of the space's points.
func (s IndexSpace[T]) Contains(p geometry.Point[T]) bool {
	if !s.Bounds.Contains(p) {
		return false
	}
	if s.IsDense() {
		return true
	}
	return s.Sparsity.Contains(p)
}

// Volume returns the number of points in the space.
func (s IndexSpace[T]) Volume() int64 {
	if s.IsDense() {
		return s.Bounds.Volume()
	}
	return s.Sparsity.Volume()
}

// IsEmpty reports whether the space has no points.
func (s IndexSpace[T]) IsEmpty() bool {
	return s.Volume() == 0
}

// Entries returns the space's points as a list of disjoint entries: either
// the single dense bounding rect, or the sparsity map's entries.
func (s IndexSpace[T]) Entries() []Entry[T] {
	if s.IsDense() {
		if s.Bounds.Empty() {
			return nil
		}
		return []Entry[T]{{Bounds: s.Bounds}}
	}
	return s.Sparsity.Entries()
}
