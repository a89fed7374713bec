package partition_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/l7mp/depart/pkg/engine"
	"github.com/l7mp/depart/pkg/event"
	"github.com/l7mp/depart/pkg/partition"
	"github.com/l7mp/depart/pkg/space"
)

var _ = Describe("set-algebra batch forms", func() {
	It("computes one union output from many inputs, deferred on a shared precondition", func() {
		ctx := engine.New(6, discard, 2)
		defer ctx.Shutdown()

		a := buildSparse1D([]int64{0, 1, 2}, rect1(0, 9))
		b := buildSparse1D([]int64{5, 6}, rect1(0, 9))

		pre, triggerPre := ctx.Events.Create()
		u, done := partition.ComputeUnion(ctx, []space.IndexSpace[int64]{a, b}, pre)
		triggerPre(false)
		Expect(ctx.Events.Wait(done)).To(Succeed())

		Expect(points1D(u)).To(Equal([]int64{0, 1, 2, 5, 6}))
	})

	It("computes pairwise differences, one output per pair", func() {
		ctx := engine.New(7, discard, 2)
		defer ctx.Shutdown()

		a1 := buildSparse1D([]int64{0, 1, 2, 3}, rect1(0, 9))
		b1 := buildSparse1D([]int64{1, 2}, rect1(0, 9))
		a2 := buildSparse1D([]int64{5, 6}, rect1(0, 9))
		b2 := buildSparse1D([]int64{6}, rect1(0, 9))

		outs, done := partition.ComputeDifferences(ctx, []space.IndexSpace[int64]{a1, a2}, []space.IndexSpace[int64]{b1, b2}, event.NoEvent)
		Expect(ctx.Events.Wait(done)).To(Succeed())

		Expect(points1D(outs[0])).To(Equal([]int64{0, 3}))
		Expect(points1D(outs[1])).To(Equal([]int64{5}))
	})

	It("broadcasts a single b across every a in ComputeIntersections", func() {
		ctx := engine.New(8, discard, 2)
		defer ctx.Shutdown()

		a1 := buildSparse1D([]int64{0, 1, 2}, rect1(0, 9))
		a2 := buildSparse1D([]int64{2, 3, 4}, rect1(0, 9))
		b := buildSparse1D([]int64{2}, rect1(0, 9))

		outs, done := partition.ComputeIntersections(ctx, []space.IndexSpace[int64]{a1, a2}, []space.IndexSpace[int64]{b}, event.NoEvent)
		Expect(ctx.Events.Wait(done)).To(Succeed())

		Expect(points1D(outs[0])).To(Equal([]int64{2}))
		Expect(points1D(outs[1])).To(Equal([]int64{2}))
	})
})
