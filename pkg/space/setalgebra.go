package space

import (
	"github.com/l7mp/depart/pkg/geometry"
)

// Intersect returns the points in both a and b. When both operands are
// dense the result is computed as a single rect intersection with no
// bitmap touched at all.
func Intersect[T geometry.Scalar](a, b IndexSpace[T]) IndexSpace[T] {
	bounds := a.Bounds.Intersection(b.Bounds)
	if bounds.Empty() {
		return Dense[T](bounds)
	}
	if a.IsDense() && b.IsDense() {
		return Dense[T](bounds)
	}

	bm := NewHierarchicalBitMap[T](bounds)
	it := bounds.Iterator()
	any := false
	for p, ok := it.Next(); ok; p, ok = it.Next() {
		if a.Contains(p) && b.Contains(p) {
			bm.Set(p)
			any = true
		}
	}
	if !any {
		return Dense[T](geometry.EmptyRect[T](bounds.Dim()))
	}
	return Sparse[T](bounds, NewValid([]Entry[T]{{Bounds: bounds, Bitmap: bm}}))
}

// Union returns the points in either a or b.
func Union[T geometry.Scalar](a, b IndexSpace[T]) IndexSpace[T] {
	return UnionMany([]IndexSpace[T]{a, b})
}

// UnionMany returns the points in any of xs.
func UnionMany[T geometry.Scalar](xs []IndexSpace[T]) IndexSpace[T] {
	nonEmpty := make([]IndexSpace[T], 0, len(xs))
	for _, x := range xs {
		if !x.Bounds.Empty() {
			nonEmpty = append(nonEmpty, x)
		}
	}
	if len(nonEmpty) == 0 {
		if len(xs) == 0 {
			// No operand gives no dimension, and a zero-dimension rect cannot
			// be made empty; an empty valid sparsity map gives volume 0.
			return IndexSpace[T]{Bounds: geometry.EmptyRect[T](0), Sparsity: NewValid[T](nil)}
		}
		return Dense[T](geometry.EmptyRect[T](xs[0].Bounds.Dim()))
	}

	bounds := nonEmpty[0].Bounds
	allDense := true
	for _, x := range nonEmpty[1:] {
		bounds = enclosing(bounds, x.Bounds)
	}
	for _, x := range nonEmpty {
		if !x.IsDense() {
			allDense = false
		}
	}
	if allDense && coversWhole(nonEmpty, bounds) {
		return Dense[T](bounds)
	}

	bm := NewHierarchicalBitMap[T](bounds)
	for _, x := range nonEmpty {
		setAll(bm, x)
	}
	if bm.IsEmpty() {
		return Dense[T](geometry.EmptyRect[T](bounds.Dim()))
	}
	return Sparse[T](bounds, NewValid([]Entry[T]{{Bounds: bounds, Bitmap: bm}}))
}

// Difference returns the points in a but not in b.
func Difference[T geometry.Scalar](a, b IndexSpace[T]) IndexSpace[T] {
	if a.Bounds.Empty() {
		return Dense[T](geometry.EmptyRect[T](a.Bounds.Dim()))
	}
	overlap := a.Bounds.Intersection(b.Bounds)
	if overlap.Empty() {
		// b cannot remove anything from a.
		return a
	}
	if a.IsDense() && b.IsDense() && overlap.ContainsRect(a.Bounds) {
		return Dense[T](geometry.EmptyRect[T](a.Bounds.Dim()))
	}

	bm := NewHierarchicalBitMap[T](a.Bounds)
	setAll(bm, a)
	it := overlap.Iterator()
	for p, ok := it.Next(); ok; p, ok = it.Next() {
		if b.Contains(p) {
			bm.Clear(p)
		}
	}
	if bm.IsEmpty() {
		return Dense[T](geometry.EmptyRect[T](a.Bounds.Dim()))
	}
	return Sparse[T](a.Bounds, NewValid([]Entry[T]{{Bounds: a.Bounds, Bitmap: bm}}))
}

// setAll marks every point of x in bm, which must cover x.Bounds.
func setAll[T geometry.Scalar](bm *HierarchicalBitMap[T], x IndexSpace[T]) {
	it := x.Iterator()
	for r, ok := it.Next(); ok; r, ok = it.Next() {
		rit := r.Iterator()
		for p, ok := rit.Next(); ok; p, ok = rit.Next() {
			bm.Set(p)
		}
	}
}

func enclosing[T geometry.Scalar](a, b geometry.Rect[T]) geometry.Rect[T] {
	if a.Empty() {
		return b
	}
	if b.Empty() {
		return a
	}
	n := a.Dim()
	lo := make(geometry.Point[T], n)
	hi := make(geometry.Point[T], n)
	for d := 0; d < n; d++ {
		lo[d] = a.Lo[d]
		if b.Lo[d] < lo[d] {
			lo[d] = b.Lo[d]
		}
		hi[d] = a.Hi[d]
		if b.Hi[d] > hi[d] {
			hi[d] = b.Hi[d]
		}
	}
	return geometry.NewRect(lo, hi)
}

// coversWhole reports whether xs' (dense) bounds are known to cover every
// point of bounds exactly, letting UnionMany take the all-dense fast path.
// It reports true only for a single input whose volume equals bounds';
// several inputs always take the bitmap path, even when they tile bounds.
func coversWhole[T geometry.Scalar](xs []IndexSpace[T], bounds geometry.Rect[T]) bool {
	var total int64
	for _, x := range xs {
		total += x.Bounds.Volume()
	}
	// Volume equality alone does not prove several inputs tile bounds with no
	// overlap and no gaps, so only the single-input case is accepted here.
	return total == bounds.Volume() && len(xs) == 1
}

// Contains reports whether p is a point of s.
func Contains[T geometry.Scalar](s IndexSpace[T], p geometry.Point[T]) bool { return s.Contains(p) }

// Volume returns the number of points in s.
func Volume[T geometry.Scalar](s IndexSpace[T]) int64 { return s.Volume() }

// IsEmpty reports whether s has no points.
func IsEmpty[T geometry.Scalar](s IndexSpace[T]) bool { return s.IsEmpty() }
