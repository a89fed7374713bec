package partition

import (
	"github.com/l7mp/depart/pkg/engine"
	"github.com/l7mp/depart/pkg/event"
	"github.com/l7mp/depart/pkg/geometry"
	"github.com/l7mp/depart/pkg/space"
)

// batchOp is the batch set-algebra operator form: pure set-algebra over
// already-valid inputs, scheduling one internal computation per output, all
// sharing a single precondition and completing together.
type batchOp[T geometry.Scalar] struct {
	*base[T]
	compute []func() space.IndexSpace[T]
}

func newBatchOp[T geometry.Scalar](ctx *engine.Context, bounds []geometry.Rect[T], precondition event.ID, compute []func() space.IndexSpace[T]) (*batchOp[T], []space.IndexSpace[T]) {
	b, handles := newBase(ctx, bounds, precondition)
	op := &batchOp[T]{base: b, compute: compute}
	ctx.Scheduler.Submit(op, "")
	return op, handles
}

func (o *batchOp[T]) Run() error {
	for i, f := range o.compute {
		o.pending[i] = f().Entries()
	}
	return nil
}

// ComputeDifferences schedules len(as) independent differences as[i] \
// bs[i], one output per pair.
func ComputeDifferences[T geometry.Scalar](ctx *engine.Context, as, bs []space.IndexSpace[T], precondition event.ID) ([]space.IndexSpace[T], event.ID) {
	bounds := make([]geometry.Rect[T], len(as))
	compute := make([]func() space.IndexSpace[T], len(as))
	for i := range as {
		bounds[i] = as[i].Bounds
		a, b := as[i], bs[i]
		compute[i] = func() space.IndexSpace[T] { return space.Difference(a, b) }
	}
	op, handles := newBatchOp(ctx, bounds, precondition, compute)
	return handles, op.Completion()
}

// ComputeIntersections schedules len(as) independent intersections. If bs
// has one element it is broadcast against every element of as; otherwise
// bs must have the same length as as, pairing element-wise.
func ComputeIntersections[T geometry.Scalar](ctx *engine.Context, as, bs []space.IndexSpace[T], precondition event.ID) ([]space.IndexSpace[T], event.ID) {
	bounds := make([]geometry.Rect[T], len(as))
	compute := make([]func() space.IndexSpace[T], len(as))
	for i := range as {
		a := as[i]
		b := bs[0]
		if len(bs) == len(as) {
			b = bs[i]
		}
		bounds[i] = a.Bounds.Intersection(b.Bounds)
		compute[i] = func() space.IndexSpace[T] { return space.Intersect(a, b) }
	}
	op, handles := newBatchOp(ctx, bounds, precondition, compute)
	return handles, op.Completion()
}

// ComputeUnion schedules a single output: the union of every element of xs.
func ComputeUnion[T geometry.Scalar](ctx *engine.Context, xs []space.IndexSpace[T], precondition event.ID) (space.IndexSpace[T], event.ID) {
	var enclosingBounds geometry.Rect[T]
	for i, x := range xs {
		if i == 0 {
			enclosingBounds = x.Bounds
			continue
		}
		enclosingBounds = enclosing(enclosingBounds, x.Bounds)
	}
	compute := []func() space.IndexSpace[T]{func() space.IndexSpace[T] { return space.UnionMany(xs) }}
	op, handles := newBatchOp(ctx, []geometry.Rect[T]{enclosingBounds}, precondition, compute)
	return handles[0], op.Completion()
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
		lo[d] = min(a.Lo[d], b.Lo[d])
		hi[d] = max(a.Hi[d], b.Hi[d])
	}
	return geometry.NewRect(lo, hi)
}
