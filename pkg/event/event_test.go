package event_test

import (
	"sync"
	"sync/atomic"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/l7mp/depart/pkg/event"
)

var _ = Describe("Table", func() {
	var tbl *event.Table

	BeforeEach(func() {
		tbl = event.NewTable(1)
	})

	Describe("basic trigger/waiter lifecycle", func() {
		It("starts untriggered and reports triggered after firing", func() {
			id, trigger := tbl.Create()
			Expect(tbl.HasTriggered(id)).To(BeFalse())
			trigger(false)
			Expect(tbl.HasTriggered(id)).To(BeTrue())
			Expect(tbl.IsPoisoned(id)).To(BeFalse())
		})

		It("runs a waiter immediately if already triggered", func() {
			id, trigger := tbl.Create()
			trigger(false)

			ran := false
			tbl.AddWaiter(id, func(poisoned bool) { ran = true })
			Expect(ran).To(BeTrue())
		})

		It("releases waiters in FIFO order on trigger", func() {
			id, trigger := tbl.Create()
			var order []int
			var mu sync.Mutex
			for i := 0; i < 5; i++ {
				i := i
				tbl.AddWaiter(id, func(poisoned bool) {
					mu.Lock()
					order = append(order, i)
					mu.Unlock()
				})
			}
			trigger(false)
			Expect(order).To(Equal([]int{0, 1, 2, 3, 4}))
		})

		It("panics on double trigger", func() {
			_, trigger := tbl.Create()
			trigger(false)
			Expect(func() { trigger(false) }).To(Panic())
		})

		It("NO_EVENT is always triggered and never poisoned", func() {
			Expect(tbl.HasTriggered(event.NoEvent)).To(BeTrue())
			Expect(tbl.IsPoisoned(event.NoEvent)).To(BeFalse())

			ran := false
			tbl.AddWaiter(event.NoEvent, func(poisoned bool) { ran = true })
			Expect(ran).To(BeTrue())
		})
	})

	Describe("concurrent registration and trigger", func() {
		It("loses no notifications under a race between AddWaiter and trigger", func() {
			for i := 0; i < 200; i++ {
				id, trigger := tbl.Create()
				var count int32
				var wg sync.WaitGroup
				wg.Add(1)
				go func() {
					defer wg.Done()
					tbl.AddWaiter(id, func(poisoned bool) { atomic.AddInt32(&count, 1) })
				}()
				trigger(false)
				wg.Wait()
				Expect(atomic.LoadInt32(&count)).To(Equal(int32(1)))
			}
		})
	})

	Describe("Merge", func() {
		It("triggers immediately for an empty input set", func() {
			merged := tbl.Merge()
			Expect(tbl.HasTriggered(merged)).To(BeTrue())
			Expect(tbl.IsPoisoned(merged)).To(BeFalse())
		})

		It("triggers immediately when all inputs are already triggered", func() {
			id1, t1 := tbl.Create()
			id2, t2 := tbl.Create()
			t1(false)
			t2(false)
			merged := tbl.Merge(id1, id2)
			Expect(tbl.HasTriggered(merged)).To(BeTrue())
		})

		It("triggers only once all inputs have triggered", func() {
			id1, t1 := tbl.Create()
			id2, t2 := tbl.Create()
			merged := tbl.Merge(id1, id2)
			Expect(tbl.HasTriggered(merged)).To(BeFalse())
			t1(false)
			Expect(tbl.HasTriggered(merged)).To(BeFalse())
			t2(false)
			Expect(tbl.HasTriggered(merged)).To(BeTrue())
		})

		It("propagates poisoning from any input to a merged event", func() {
			id1, t1 := tbl.Create()
			id2, t2 := tbl.Create()
			em := tbl.Merge(id1, id2)

			t1(true)  // poison e1's trigger...
			t2(false) // ...but trigger e2 clean.

			Expect(tbl.HasTriggered(em)).To(BeTrue())
			Expect(tbl.IsPoisoned(em)).To(BeTrue())
		})
	})

	Describe("Wait", func() {
		It("returns nil for a clean trigger", func() {
			id, trigger := tbl.Create()
			go trigger(false)
			Expect(tbl.Wait(id)).To(Succeed())
		})

		It("returns a PoisonedError for a poisoned trigger", func() {
			id, trigger := tbl.Create()
			go trigger(true)
			err := tbl.Wait(id)
			Expect(err).To(HaveOccurred())
			var pe *event.PoisonedError
			Expect(err).To(BeAssignableToTypeOf(pe))
		})
	})
})
