package space

import (
	"math/bits"

	"github.com/l7mp/depart/pkg/geometry"
)

// HierarchicalBitMap is a dense bit-per-point map over a rectangle's
// linearized points, with a coarse summary layer so emptiness/overlap
// queries over large sparse regions can skip whole 64-bit words without
// touching them — the "hierarchical" structure Realm's HierarchicalBitMap
// uses (original_source/runtime/realm/sparsity.h) to avoid scanning every
// bit of a sparsity entry when most of it is empty.
type HierarchicalBitMap[T geometry.Scalar] struct {
	bounds  geometry.Rect[T]
	stride  []int64 // stride[0]=1; dimension 0 varies fastest, matching RectIterator order.
	bits    []uint64
	summary []uint64 // bit i set iff bits[i] != 0
}

// NewHierarchicalBitMap allocates an all-clear bitmap over bounds.
func NewHierarchicalBitMap[T geometry.Scalar](bounds geometry.Rect[T]) *HierarchicalBitMap[T] {
	n := bounds.Dim()
	stride := make([]int64, n)
	var acc int64 = 1
	for d := 0; d < n; d++ {
		stride[d] = acc
		extent := int64(bounds.Hi[d]-bounds.Lo[d]) + 1
		if extent < 0 {
			extent = 0
		}
		acc *= extent
	}
	vol := bounds.Volume()
	nwords := int((vol + 63) / 64)
	if nwords == 0 {
		nwords = 1
	}
	return &HierarchicalBitMap[T]{
		bounds:  bounds,
		stride:  stride,
		bits:    make([]uint64, nwords),
		summary: make([]uint64, (nwords+63)/64+1),
	}
}

func (b *HierarchicalBitMap[T]) offset(p geometry.Point[T]) int64 {
	var off int64
	for d := range p {
		off += int64(p[d]-b.bounds.Lo[d]) * b.stride[d]
	}
	return off
}

// Set marks p (which must lie within bounds) as present.
func (b *HierarchicalBitMap[T]) Set(p geometry.Point[T]) {
	off := b.offset(p)
	w, bit := off/64, uint(off%64)
	b.bits[w] |= 1 << bit
	b.markSummary(int(w))
}

// Clear marks p as absent.
func (b *HierarchicalBitMap[T]) Clear(p geometry.Point[T]) {
	off := b.offset(p)
	w, bit := off/64, uint(off%64)
	b.bits[w] &^= 1 << bit
	if b.bits[w] == 0 {
		b.clearSummary(int(w))
	}
}

// Test reports whether p is present.
func (b *HierarchicalBitMap[T]) Test(p geometry.Point[T]) bool {
	off := b.offset(p)
	w, bit := off/64, uint(off%64)
	return b.bits[w]&(1<<bit) != 0
}

func (b *HierarchicalBitMap[T]) markSummary(word int) {
	sw, sbit := word/64, uint(word%64)
	b.summary[sw] |= 1 << sbit
}

func (b *HierarchicalBitMap[T]) clearSummary(word int) {
	sw, sbit := word/64, uint(word%64)
	b.summary[sw] &^= 1 << sbit
}

// IsEmpty reports whether no point is set, using the summary layer to skip
// all-zero words in bulk.
func (b *HierarchicalBitMap[T]) IsEmpty() bool {
	for _, s := range b.summary {
		if s != 0 {
			return false
		}
	}
	return true
}

// PopCount returns the number of set bits.
func (b *HierarchicalBitMap[T]) PopCount() int64 {
	var n int64
	for _, w := range b.bits {
		n += int64(bits.OnesCount64(w))
	}
	return n
}

// And returns the bitwise AND of b and other, which must share bounds.
func (b *HierarchicalBitMap[T]) And(other *HierarchicalBitMap[T]) *HierarchicalBitMap[T] {
	return b.combine(other, func(x, y uint64) uint64 { return x & y })
}

// Or returns the bitwise OR of b and other, which must share bounds.
func (b *HierarchicalBitMap[T]) Or(other *HierarchicalBitMap[T]) *HierarchicalBitMap[T] {
	return b.combine(other, func(x, y uint64) uint64 { return x | y })
}

// AndNot returns b with every bit set in other cleared.
func (b *HierarchicalBitMap[T]) AndNot(other *HierarchicalBitMap[T]) *HierarchicalBitMap[T] {
	return b.combine(other, func(x, y uint64) uint64 { return x &^ y })
}

func (b *HierarchicalBitMap[T]) combine(other *HierarchicalBitMap[T], op func(uint64, uint64) uint64) *HierarchicalBitMap[T] {
	out := NewHierarchicalBitMap[T](b.bounds)
	for i := range out.bits {
		out.bits[i] = op(b.bits[i], other.bits[i])
		if out.bits[i] != 0 {
			out.markSummary(i)
		}
	}
	return out
}

// Clone returns an independent copy of b.
func (b *HierarchicalBitMap[T]) Clone() *HierarchicalBitMap[T] {
	out := &HierarchicalBitMap[T]{
		bounds:  b.bounds,
		stride:  append([]int64(nil), b.stride...),
		bits:    append([]uint64(nil), b.bits...),
		summary: append([]uint64(nil), b.summary...),
	}
	return out
}
