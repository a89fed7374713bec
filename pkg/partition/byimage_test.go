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

var _ = Describe("ByImage", func() {
	It("computes the image of a border-face set as the diagonal of cells", func() {
		ctx := engine.New(3, discard, 2)
		defer ctx.Shutdown()

		cells := space.Dense(geometry.NewRect(geometry.NewPoint[int64](0, 0), geometry.NewPoint[int64](3, 3)))

		// 16 faces, face i's right_cell is (i%4, i/4).
		coords := make([]int32, 0, 32)
		for i := int32(0); i < 16; i++ {
			coords = append(coords, i%4, i/4)
		}
		rightCellFD := []accessor.Descriptor[int64, geometry.Point[int64]]{pointField1DTo2D(coords)}

		border := buildSparse1D([]int64{0, 5, 10, 15}, rect1(0, 15))

		outs, done := partition.ByImage(ctx, cells, rightCellFD, []space.IndexSpace[int64]{border}, event.NoEvent)
		Expect(ctx.Events.Wait(done)).To(Succeed())

		Expect(points2D(outs[0])).To(Equal([][2]int64{{0, 0}, {1, 1}, {2, 2}, {3, 3}}))
	})
})

func buildSparse1D(pts []int64, bounds geometry.Rect[int64]) space.IndexSpace[int64] {
	bm := space.NewHierarchicalBitMap[int64](bounds)
	for _, c := range pts {
		bm.Set(geometry.NewPoint(c))
	}
	return space.Sparse(bounds, space.NewValid([]space.Entry[int64]{{Bounds: bounds, Bitmap: bm}}))
}
