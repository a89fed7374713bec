package space

import (
	"github.com/l7mp/depart/pkg/geometry"
)

// Iterator yields a finite, restartable sequence of non-empty rects
// covering an IndexSpace's points, in entry-index order; within an entry
// that carries a bitmap, it yields lex-order run-length groups of set bits.
// Dense entries are yielded whole, as a single rect.
type Iterator[T geometry.Scalar] struct {
	entries []Entry[T]
	idx     int
	run     *runIterator[T]
}

// Cursor is a restartable snapshot of an Iterator's position.
type Cursor[T geometry.Scalar] struct {
	entries []Entry[T]
	idx     int
}

// Iterator returns a fresh iterator over s.
func (s IndexSpace[T]) Iterator() *Iterator[T] {
	return &Iterator[T]{entries: s.Entries()}
}

// Save captures it's current position for later Resume.
func (it *Iterator[T]) Save() Cursor[T] {
	return Cursor[T]{entries: it.entries, idx: it.idx}
}

// Resume builds an iterator that continues from a previously saved cursor.
func Resume[T geometry.Scalar](c Cursor[T]) *Iterator[T] {
	return &Iterator[T]{entries: c.entries, idx: c.idx}
}

// Next returns the next covering rect, or false once exhausted.
func (it *Iterator[T]) Next() (geometry.Rect[T], bool) {
	for {
		if it.run != nil {
			if r, ok := it.run.Next(); ok {
				return r, true
			}
			it.run = nil
		}
		if it.idx >= len(it.entries) {
			return geometry.Rect[T]{}, false
		}
		e := it.entries[it.idx]
		it.idx++
		if e.Dense() {
			return e.Bounds, true
		}
		it.run = newRunIterator(e)
	}
}

// runIterator walks the lex-order run-length groups of an entry's set bits
// (or sub-sparsity contribution), coalescing consecutive contributing
// points along dimension 0 into a single rect per run.
type runIterator[T geometry.Scalar] struct {
	entry Entry[T]
	rit   *geometry.RectIterator[T]
	done  bool
}

func newRunIterator[T geometry.Scalar](e Entry[T]) *runIterator[T] {
	return &runIterator[T]{entry: e, rit: e.Bounds.Iterator()}
}

func (r *runIterator[T]) Next() (geometry.Rect[T], bool) {
	if r.done {
		return geometry.Rect[T]{}, false
	}
	// Find the next contributing point.
	var start geometry.Point[T]
	found := false
	for {
		p, ok := r.rit.Next()
		if !ok {
			r.done = true
			return geometry.Rect[T]{}, false
		}
		if r.entry.Contains(p) {
			start = p
			found = true
			break
		}
	}
	if !found {
		r.done = true
		return geometry.Rect[T]{}, false
	}

	// Extend the run along dimension 0 while points remain contributing and
	// adjacent; the iterator already visits dimension 0 fastest, so a
	// contiguous run shows up as consecutive Next() calls.
	end := start.Clone()
	for {
		cursor := r.rit.Save()
		p, ok := r.rit.Next()
		if !ok {
			break
		}
		sameOuter := true
		for d := 1; d < p.Dim(); d++ {
			if p[d] != start[d] {
				sameOuter = false
				break
			}
		}
		if sameOuter && p[0] == end[0]+1 && r.entry.Contains(p) {
			end = p
			continue
		}
		// Not part of this run: rewind to before p for the next call.
		r.rit = geometry.Resume(cursor)
		break
	}
	return geometry.NewRect(start, end), true
}
