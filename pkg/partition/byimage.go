package partition

import (
	"github.com/l7mp/depart/pkg/accessor"
	"github.com/l7mp/depart/pkg/engine"
	"github.com/l7mp/depart/pkg/event"
	"github.com/l7mp/depart/pkg/geometry"
	"github.com/l7mp/depart/pkg/space"
)

// byImageOp computes, for each source, the image of its points (intersected
// with the field data's domain) through the field, clipped to the codomain.
type byImageOp[T, T2 geometry.Scalar] struct {
	*base[T2]
	codomain  space.IndexSpace[T2]
	fieldData []accessor.Descriptor[T, geometry.Point[T2]]
	sources   []space.IndexSpace[T]
}

// ByImage constructs a deferred by-image operator. Duplicate images within
// a source are collapsed (the output is a point set, not a multiset);
// outputs across sources may overlap.
func ByImage[T, T2 geometry.Scalar](
	ctx *engine.Context,
	codomain space.IndexSpace[T2],
	fieldData []accessor.Descriptor[T, geometry.Point[T2]],
	sources []space.IndexSpace[T],
	precondition event.ID,
) ([]space.IndexSpace[T2], event.ID) {
	bounds := make([]geometry.Rect[T2], len(sources))
	for i := range sources {
		bounds[i] = codomain.Bounds
	}
	b, handles := newBase(ctx, bounds, precondition)

	op := &byImageOp[T, T2]{base: b, codomain: codomain, fieldData: fieldData, sources: sources}
	ctx.Scheduler.Submit(op, "")
	return handles, b.Completion()
}

func (o *byImageOp[T, T2]) Run() error {
	for i, s := range o.sources {
		bm := space.NewHierarchicalBitMap[T2](o.codomain.Bounds)
		for _, fd := range o.fieldData {
			domain := space.Intersect(s, fd.IndexSpace)
			it := domain.Iterator()
			for r, ok := it.Next(); ok; r, ok = it.Next() {
				rit := r.Iterator()
				for p, ok := rit.Next(); ok; p, ok = rit.Next() {
					v, err := fd.At(p)
					if err != nil {
						return &OpError{Kind: KindInvalidDescriptor, Err: err}
					}
					if o.codomain.Contains(v) {
						bm.Set(v)
					}
				}
			}
		}
		o.pending[i] = []space.Entry[T2]{{Bounds: o.codomain.Bounds, Bitmap: bm}}
	}
	return nil
}
