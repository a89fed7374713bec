package partition

import (
	"github.com/l7mp/depart/pkg/accessor"
	"github.com/l7mp/depart/pkg/engine"
	"github.com/l7mp/depart/pkg/event"
	"github.com/l7mp/depart/pkg/geometry"
	"github.com/l7mp/depart/pkg/space"
)

// byPreimageOp computes, for each target, the points of parent whose field
// value lands in that target.
type byPreimageOp[T, T2 geometry.Scalar] struct {
	*base[T]
	fieldData []accessor.Descriptor[T, geometry.Point[T2]]
	targets   []space.IndexSpace[T2]
}

// ByPreimage constructs a deferred by-preimage operator. Outputs are
// computed independently per target and are pairwise disjoint only if the
// targets themselves are; this operator enforces no disjointness of its own.
func ByPreimage[T, T2 geometry.Scalar](
	ctx *engine.Context,
	parent space.IndexSpace[T],
	fieldData []accessor.Descriptor[T, geometry.Point[T2]],
	targets []space.IndexSpace[T2],
	precondition event.ID,
) ([]space.IndexSpace[T], event.ID) {
	bounds := make([]geometry.Rect[T], len(targets))
	for i := range targets {
		bounds[i] = parent.Bounds
	}
	b, handles := newBase(ctx, bounds, precondition)

	op := &byPreimageOp[T, T2]{base: b, fieldData: fieldData, targets: targets}
	ctx.Scheduler.Submit(op, "")
	return handles, b.Completion()
}

func (o *byPreimageOp[T, T2]) Run() error {
	builders := make([]runBuilder[T], len(o.outputs))
	for _, fd := range o.fieldData {
		it := fd.IndexSpace.Iterator()
		for r, ok := it.Next(); ok; r, ok = it.Next() {
			rit := r.Iterator()
			for p, ok := rit.Next(); ok; p, ok = rit.Next() {
				v, err := fd.At(p)
				if err != nil {
					return &OpError{Kind: KindInvalidDescriptor, Err: err}
				}
				for j, t := range o.targets {
					if t.Contains(v) {
						builders[j].add(p)
					}
				}
			}
		}
	}
	for i := range builders {
		o.pending[i] = builders[i].result()
	}
	return nil
}
