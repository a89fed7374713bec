package space_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/l7mp/depart/pkg/geometry"
	"github.com/l7mp/depart/pkg/space"
)

func sparseOf(bounds geometry.Rect[int64], pts ...int64) space.IndexSpace[int64] {
	bm := space.NewHierarchicalBitMap[int64](bounds)
	for _, c := range pts {
		bm.Set(geometry.NewPoint(c))
	}
	return space.Sparse(bounds, space.NewValid([]space.Entry[int64]{{Bounds: bounds, Bitmap: bm}}))
}

var _ = Describe("set algebra", func() {
	var a, b space.IndexSpace[int64]

	BeforeEach(func() {
		bounds := rect1(0, 19)
		a = sparseOf(bounds, 0, 1, 2, 5, 10, 15)
		b = sparseOf(bounds, 2, 3, 4, 15, 16)
	})

	It("Intersect takes the dense/dense fast path without touching a bitmap", func() {
		da := space.Dense(rect1(0, 9))
		db := space.Dense(rect1(5, 14))
		got := space.Intersect(da, db)
		Expect(got.IsDense()).To(BeTrue())
		Expect(got.Bounds).To(Equal(rect1(5, 9)))
	})

	It("Intersect agrees pointwise with both operands", func() {
		got := space.Intersect(a, b)
		for c := int64(0); c < 20; c++ {
			p := geometry.NewPoint(c)
			Expect(got.Contains(p)).To(Equal(a.Contains(p) && b.Contains(p)))
		}
	})

	It("Union agrees pointwise with either operand", func() {
		got := space.Union(a, b)
		for c := int64(0); c < 20; c++ {
			p := geometry.NewPoint(c)
			Expect(got.Contains(p)).To(Equal(a.Contains(p) || b.Contains(p)))
		}
	})

	It("Difference removes exactly b's points from a", func() {
		got := space.Difference(a, b)
		for c := int64(0); c < 20; c++ {
			p := geometry.NewPoint(c)
			Expect(got.Contains(p)).To(Equal(a.Contains(p) && !b.Contains(p)))
		}
	})

	It("round-trips: difference(union(a,b),b) is a subset of a", func() {
		u := space.Union(a, b)
		d := space.Difference(u, b)
		for c := int64(0); c < 20; c++ {
			p := geometry.NewPoint(c)
			if d.Contains(p) {
				Expect(a.Contains(p)).To(BeTrue())
			}
		}
	})

	It("round-trips: intersect(a, difference(u,a)) is empty", func() {
		u := space.Union(a, b)
		diff := space.Difference(u, a)
		got := space.Intersect(a, diff)
		Expect(got.IsEmpty()).To(BeTrue())
	})

	It("UnionMany of nothing is empty", func() {
		got := space.UnionMany([]space.IndexSpace[int64]{})
		Expect(got.IsEmpty()).To(BeTrue())
	})
})
