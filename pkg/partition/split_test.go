package partition_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/l7mp/depart/pkg/engine"
	"github.com/l7mp/depart/pkg/event"
	"github.com/l7mp/depart/pkg/partition"
	"github.com/l7mp/depart/pkg/space"
)

var _ = Describe("deferred equal/weighted subspaces", func() {
	It("computes CreateEqualSubspaces only once the precondition triggers", func() {
		ctx := engine.New(4, discard, 2)
		defer ctx.Shutdown()

		parent := space.Dense(rect1(0, 99))
		pre, triggerPre := ctx.Events.Create()

		outs, done := partition.CreateEqualSubspaces(ctx, parent, 4, 1, pre)
		Expect(ctx.Events.HasTriggered(done)).To(BeFalse())

		triggerPre(false)
		Expect(ctx.Events.Wait(done)).To(Succeed())

		volumes := make([]int64, len(outs))
		for i, o := range outs {
			volumes[i] = o.Volume()
		}
		Expect(volumes).To(Equal([]int64{25, 25, 25, 25}))
	})

	It("poisons the outputs of CreateWeightedSubspaces when the precondition is poisoned", func() {
		ctx := engine.New(5, discard, 2)
		defer ctx.Shutdown()

		parent := space.Dense(rect1(0, 9))
		pre, triggerPre := ctx.Events.Create()
		_, done := partition.CreateWeightedSubspaces(ctx, parent, []int64{1, 2, 1}, 1, pre)

		triggerPre(true)
		err := ctx.Events.Wait(done)
		Expect(err).To(HaveOccurred())
	})
})
