package partition

import (
	"github.com/l7mp/depart/pkg/engine"
	"github.com/l7mp/depart/pkg/event"
	"github.com/l7mp/depart/pkg/geometry"
	"github.com/l7mp/depart/pkg/space"
)

// splitOp is a pure algorithmic operator that computes its outputs
// immediately once its precondition triggers, using
// pkg/space's split rules. It reads no field data.
//
// Unlike the other operators in this package, a split's output bounds
// depend only on parent, n/weights, and granularity — all known at
// construction time, before the precondition has triggered. So the split
// itself runs once, eagerly, in the constructor (it is a pure function with
// no field data to wait on); what stays deferred is only writing the
// already-computed entries into the pending sparsity maps and triggering
// their validity, which must still wait for the precondition like any
// other operator's outputs.
type splitOp[T geometry.Scalar] struct {
	*base[T]
	results []space.IndexSpace[T]
}

func newSplitOp[T geometry.Scalar](ctx *engine.Context, precondition event.ID, results []space.IndexSpace[T]) (*splitOp[T], []space.IndexSpace[T]) {
	bounds := make([]geometry.Rect[T], len(results))
	for i, r := range results {
		bounds[i] = r.Bounds
	}
	b, handles := newBase(ctx, bounds, precondition)
	op := &splitOp[T]{base: b, results: results}
	ctx.Scheduler.Submit(op, "")
	return op, handles
}

func (o *splitOp[T]) Run() error {
	for i, r := range o.results {
		o.pending[i] = r.Entries()
	}
	return nil
}

// CreateEqualSubspaces is the deferred operator form of space.EqualSplit.
func CreateEqualSubspaces[T geometry.Scalar](ctx *engine.Context, parent space.IndexSpace[T], n int, granularity int64, precondition event.ID) ([]space.IndexSpace[T], event.ID) {
	op, handles := newSplitOp(ctx, precondition, space.EqualSplit(parent, n, granularity))
	return handles, op.Completion()
}

// CreateWeightedSubspaces is the deferred operator form of
// space.WeightedSplit.
func CreateWeightedSubspaces[T geometry.Scalar](ctx *engine.Context, parent space.IndexSpace[T], weights []int64, granularity int64, precondition event.ID) ([]space.IndexSpace[T], event.ID) {
	op, handles := newSplitOp(ctx, precondition, space.WeightedSplit(parent, weights, granularity))
	return handles, op.Completion()
}
