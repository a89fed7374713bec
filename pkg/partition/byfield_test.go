package partition_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/l7mp/depart/pkg/accessor"
	"github.com/l7mp/depart/pkg/engine"
	"github.com/l7mp/depart/pkg/event"
	"github.com/l7mp/depart/pkg/geometry"
	"github.com/l7mp/depart/pkg/partition"
	"github.com/l7mp/depart/pkg/space"
)

var _ = Describe("ByField and ByPreimage", func() {
	It("chains by-field bucketing into a preimage partition of edges by node color", func() {
		ctx := engine.New(1, discard, 2)
		defer ctx.Shutdown()

		nodes := space.Dense(rect1(0, 7))
		colorFD := []accessor.Descriptor[int64, int64]{
			scalarField1D([]int32{0, 0, 1, 1, 2, 2, 0, 1}),
		}

		nodesByColor, colorDone := partition.ByField(ctx, nodes, colorFD, []int64{0, 1, 2}, event.NoEvent)
		Expect(ctx.Events.Wait(colorDone)).To(Succeed())

		Expect(points1D(nodesByColor[0])).To(Equal([]int64{0, 1, 6}))
		Expect(points1D(nodesByColor[1])).To(Equal([]int64{2, 3, 7}))
		Expect(points1D(nodesByColor[2])).To(Equal([]int64{4, 5}))

		edges := space.Dense(rect1(0, 3))
		srcFD := []accessor.Descriptor[int64, geometry.Point[int64]]{
			pointField1D([]int32{0, 2, 5, 7}),
		}

		edgesBySource, preimageDone := partition.ByPreimage(ctx, edges, srcFD, nodesByColor, colorDone)
		Expect(ctx.Events.Wait(preimageDone)).To(Succeed())

		// Edge 0 -> node 0 in N0; edge 1 -> node 2 in N1; edge 2 -> node 5
		// in N2; edge 3 -> node 7 in N1: E0={0}, E1={1,3}, E2={2}.
		Expect(points1D(edgesBySource[0])).To(Equal([]int64{0}))
		Expect(points1D(edgesBySource[1])).To(Equal([]int64{1, 3}))
		Expect(points1D(edgesBySource[2])).To(Equal([]int64{2}))
	})

	It("silently drops points whose field value isn't in the requested colors", func() {
		ctx := engine.New(2, discard, 2)
		defer ctx.Shutdown()

		parent := space.Dense(rect1(0, 4))
		colorFD := []accessor.Descriptor[int64, int64]{
			scalarField1D([]int32{0, 9, 1, 9, 0}),
		}
		outs, done := partition.ByField(ctx, parent, colorFD, []int64{0, 1}, event.NoEvent)
		Expect(ctx.Events.Wait(done)).To(Succeed())

		Expect(points1D(outs[0])).To(Equal([]int64{0, 4}))
		Expect(points1D(outs[1])).To(Equal([]int64{2}))
	})
})
