package space

import (
	"fmt"

	"github.com/l7mp/depart/pkg/geometry"
)

// EqualSplit partitions s's points, in lex order, into n roughly-equal
// pieces whose volumes differ by at most one granularity unit.
// Lower-indexed colors receive the extra points when the volume doesn't
// divide evenly.
func EqualSplit[T geometry.Scalar](s IndexSpace[T], n int, granularity int64) []IndexSpace[T] {
	if n <= 0 {
		panic("space: EqualSplit requires n > 0")
	}
	if granularity <= 0 {
		granularity = 1
	}

	total := s.Volume()
	units := total / granularity
	base := units / int64(n)
	extra := units % int64(n)

	counts := make([]int64, n)
	for i := 0; i < n; i++ {
		counts[i] = base * granularity
		if int64(i) < extra {
			counts[i] += granularity
		}
	}
	// Any remainder smaller than one granularity unit goes to the last
	// color, so the split still covers every point of s exactly.
	assigned := int64(0)
	for _, c := range counts {
		assigned += c
	}
	if rem := total - assigned; rem > 0 {
		counts[n-1] += rem
	}

	return sliceByCount(s, counts)
}

// WeightedSplit partitions s's points, in lex order, into len(weights)
// pieces whose volumes are proportional to weights. Boundaries are
// cumulative-weight prefix sums floored to a unit of granularity, with the
// final boundary pinned to vol exactly rather than floored — so rounding
// error never escapes the split, and it collects wherever the cumulative
// ratio crosses a unit boundary (weights [1,2,1] over volume 10 yields
// 2,5,3 — the shortfall from flooring the first two boundaries lands on
// the last slice, not spread across low-indexed colors one unit at a
// time).
func WeightedSplit[T geometry.Scalar](s IndexSpace[T], weights []int64, granularity int64) []IndexSpace[T] {
	if len(weights) == 0 {
		panic("space: WeightedSplit requires at least one weight")
	}
	if granularity <= 0 {
		granularity = 1
	}

	var total int64
	for _, w := range weights {
		if w < 0 {
			panic(fmt.Sprintf("space: WeightedSplit got negative weight %d", w))
		}
		total += w
	}
	if total == 0 {
		panic("space: WeightedSplit requires at least one positive weight")
	}

	vol := s.Volume()
	units := vol / granularity

	counts := make([]int64, len(weights))
	var cumWeight, prevBoundary int64
	for i, w := range weights {
		cumWeight += w
		var boundary int64
		if i == len(weights)-1 {
			boundary = units
		} else {
			boundary = (cumWeight * units) / total
		}
		counts[i] = (boundary - prevBoundary) * granularity
		prevBoundary = boundary
	}
	// Leftover points smaller than one granularity unit (vol % granularity)
	// go to the last color, matching EqualSplit's rule and keeping the
	// split's union equal to s exactly.
	var assigned int64
	for _, c := range counts {
		assigned += c
	}
	if rem := vol - assigned; rem > 0 {
		counts[len(counts)-1] += rem
	}

	return sliceByCount(s, counts)
}

// sliceByCount walks s's points in lex order and cuts them into
// consecutive pieces of the given sizes. Because this is a pure lex-order
// slice, outputs are disjoint by construction and their union is exactly

// sliceByCount walks s's points in lex order and cuts them into
// consecutive pieces of the given sizes. Because this is a pure lex-order
// slice, outputs are disjoint by construction and their union is exactly
// s's points. Points are consumed one at a time but coalesced into
// maximal contiguous runs along dimension 0 before being recorded as an
// entry, the same run-length technique pkg/space's iterator uses for
// bitmapped entries.
func sliceByCount[T geometry.Scalar](s IndexSpace[T], counts []int64) []IndexSpace[T] {
	out := make([]IndexSpace[T], len(counts))
	entries := make([][]Entry[T], len(counts))

	colorIdx := 0
	remaining := advanceToNonZero(counts, &colorIdx)

	var runStart, runEnd geometry.Point[T]
	haveRun := false
	flush := func() {
		if haveRun && colorIdx < len(counts) {
			entries[colorIdx] = append(entries[colorIdx], Entry[T]{Bounds: geometry.NewRect(runStart, runEnd)})
		}
		haveRun = false
	}

	it := s.Iterator()
	for r, ok := it.Next(); ok; r, ok = it.Next() {
		rit := r.Iterator()
		for p, ok := rit.Next(); ok; p, ok = rit.Next() {
			if colorIdx >= len(counts) {
				flush()
				break
			}
			if remaining == 0 {
				flush()
				colorIdx++
				remaining = advanceToNonZero(counts, &colorIdx)
				if colorIdx >= len(counts) {
					break
				}
			}
			if haveRun && contiguous(runEnd, p) {
				runEnd = p
			} else {
				flush()
				runStart, runEnd = p, p
				haveRun = true
			}
			remaining--
		}
	}
	flush()

	for i := range out {
		if len(entries[i]) == 0 {
			out[i] = Dense[T](geometry.EmptyRect[T](s.Bounds.Dim()))
			continue
		}
		bounds := entries[i][0].Bounds
		for _, e := range entries[i][1:] {
			bounds = enclosing(bounds, e.Bounds)
		}
		if len(entries[i]) == 1 && bounds.Volume() == entries[i][0].Bounds.Volume() {
			out[i] = Dense[T](bounds)
			continue
		}
		out[i] = Sparse[T](bounds, NewValid(entries[i]))
	}
	return out
}

// advanceToNonZero moves *idx forward to the next color with a positive
// count (counts of zero contribute an empty output space) and returns that
// count, or 0 with *idx == len(counts) if none remain.
func advanceToNonZero(counts []int64, idx *int) int64 {
	for *idx < len(counts) && counts[*idx] == 0 {
		*idx++
	}
	if *idx >= len(counts) {
		return 0
	}
	return counts[*idx]
}

// contiguous reports whether b immediately follows a in this package's
// iteration order within one row: equal on every dimension above 0, and one
// greater on dimension 0 (the fastest-varying dimension). A point starting
// the next row is not contiguous, so a run never spans two rows.
func contiguous[T geometry.Scalar](a, b geometry.Point[T]) bool {
	if len(a) == 0 {
		return false
	}
	if a[0]+1 == b[0] {
		for d := 1; d < len(a); d++ {
			if a[d] != b[d] {
				return false
			}
		}
		return true
	}
	return false
}
