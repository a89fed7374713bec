package space

import (
	"github.com/l7mp/depart/pkg/geometry"
)

// Entry is a sparsity map's entry: its contribution to a sparsity
// map's points is Bounds ∩ (Bitmap ? bits_set(Bitmap) : full) ∩
// (SubSparsity ? SubSparsity.Points() : full). Bitmap and SubSparsity are
// both optional; an entry with neither is simply its dense Bounds.
type Entry[T geometry.Scalar] struct {
	Bounds      geometry.Rect[T]
	Bitmap      *HierarchicalBitMap[T]
	SubSparsity *Map[T]
}

// Dense reports whether the entry contributes every point of its Bounds
// (no bitmap, no sub-sparsity refinement).
func (e Entry[T]) Dense() bool {
	return e.Bitmap == nil && e.SubSparsity == nil
}

// Contains reports whether p (assumed to already lie within e.Bounds) is
// part of the entry's contribution.
func (e Entry[T]) Contains(p geometry.Point[T]) bool {
	if e.Bitmap != nil && !e.Bitmap.Test(p) {
		return false
	}
	if e.SubSparsity != nil && !e.SubSparsity.Contains(p) {
		return false
	}
	return true
}

// Volume returns the number of points the entry contributes.
func (e Entry[T]) Volume() int64 {
	if e.Dense() {
		return e.Bounds.Volume()
	}
	var n int64
	it := e.Bounds.Iterator()
	for p, ok := it.Next(); ok; p, ok = it.Next() {
		if e.Contains(p) {
			n++
		}
	}
	return n
}

// mergeable reports whether two entries are adjacent along exactly one
// dimension with matching extents on every other dimension, and carry the
// same bitmap/sub-sparsity state, so they can be consolidated into one.
func mergeable[T geometry.Scalar](a, b Entry[T]) (dim int, ok bool) {
	if !sameRefinement(a, b) {
		return 0, false
	}
	n := a.Bounds.Dim()
	diffDim := -1
	for d := 0; d < n; d++ {
		if a.Bounds.Lo[d] != b.Bounds.Lo[d] || a.Bounds.Hi[d] != b.Bounds.Hi[d] {
			if diffDim >= 0 {
				return 0, false
			}
			diffDim = d
		}
	}
	if diffDim < 0 {
		return 0, false
	}
	if a.Bounds.Hi[diffDim]+1 == b.Bounds.Lo[diffDim] || b.Bounds.Hi[diffDim]+1 == a.Bounds.Lo[diffDim] {
		return diffDim, true
	}
	return 0, false
}

func sameRefinement[T geometry.Scalar](a, b Entry[T]) bool {
	if a.Dense() != b.Dense() {
		return false
	}
	if a.SubSparsity != b.SubSparsity {
		return false
	}
	// Consolidation only fires for entries with no bitmap, or bitmaps that
	// are both nil; a bitmap can't be merged across a boundary without
	// relinearizing it, so entries carrying one are never merge candidates.
	return a.Bitmap == nil && b.Bitmap == nil
}

func mergeEntries[T geometry.Scalar](a, b Entry[T], dim int) Entry[T] {
	lo := a.Bounds.Lo.Clone()
	hi := a.Bounds.Hi.Clone()
	if a.Bounds.Lo[dim] > b.Bounds.Lo[dim] {
		lo[dim] = b.Bounds.Lo[dim]
	}
	if a.Bounds.Hi[dim] < b.Bounds.Hi[dim] {
		hi[dim] = b.Bounds.Hi[dim]
	}
	return Entry[T]{Bounds: geometry.NewRect(lo, hi), SubSparsity: a.SubSparsity}
}
