package partition

import (
	"github.com/l7mp/depart/pkg/accessor"
	"github.com/l7mp/depart/pkg/engine"
	"github.com/l7mp/depart/pkg/event"
	"github.com/l7mp/depart/pkg/geometry"
	"github.com/l7mp/depart/pkg/space"
)

// byFieldOp buckets parent's points by the value of a field, one output
// per requested color.
type byFieldOp[T geometry.Scalar, C comparable] struct {
	*base[T]
	fieldData  []accessor.Descriptor[T, C]
	colorIndex map[C]int
}

// ByField constructs a deferred by-field operator. fieldData must cover
// parent exactly (pairwise-disjoint index spaces whose union equals
// parent); colors are the only field values that produce an output —
// points whose field value isn't in colors are silently dropped.
func ByField[T geometry.Scalar, C comparable](
	ctx *engine.Context,
	parent space.IndexSpace[T],
	fieldData []accessor.Descriptor[T, C],
	colors []C,
	precondition event.ID,
) ([]space.IndexSpace[T], event.ID) {
	bounds := make([]geometry.Rect[T], len(colors))
	for i := range colors {
		bounds[i] = parent.Bounds
	}
	b, handles := newBase(ctx, bounds, precondition)

	colorIndex := make(map[C]int, len(colors))
	for i, c := range colors {
		colorIndex[c] = i
	}

	op := &byFieldOp[T, C]{base: b, fieldData: fieldData, colorIndex: colorIndex}
	ctx.Scheduler.Submit(op, "")
	return handles, b.Completion()
}

func (o *byFieldOp[T, C]) Run() error {
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
				idx, known := o.colorIndex[v]
				if !known {
					continue
				}
				builders[idx].add(p)
			}
		}
	}
	for i := range builders {
		o.pending[i] = builders[i].result()
	}
	return nil
}
