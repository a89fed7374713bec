package accessor_test

import (
	"encoding/binary"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/l7mp/depart/pkg/accessor"
	"github.com/l7mp/depart/pkg/accessor/meminstance"
	"github.com/l7mp/depart/pkg/geometry"
	"github.com/l7mp/depart/pkg/space"
)

var _ = Describe("Descriptor", func() {
	It("reads a little-endian int32 scalar field at the right offset", func() {
		inst := meminstance.New(32)
		for i := int64(0); i < 8; i++ {
			buf := make([]byte, 4)
			binary.LittleEndian.PutUint32(buf, uint32(i*10))
			Expect(inst.Write(i*4, buf)).To(Succeed())
		}

		bounds := geometry.NewRect(geometry.NewPoint[int64](0), geometry.NewPoint[int64](7))
		desc := accessor.Descriptor[int64, int64]{
			Instance:   inst,
			IndexSpace: space.Dense(bounds),
			Layout:     accessor.LayoutDescriptor{PerDimStride: []int64{4}, ElementSize: 4},
			Decode:     accessor.ScalarDecoder[int64](4),
		}

		v, err := desc.At(geometry.NewPoint[int64](3))
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(Equal(int64(30)))
	})

	It("surfaces ErrInstanceDestroyed once the backing instance is torn down", func() {
		inst := meminstance.New(16)
		desc := accessor.Descriptor[int64, int64]{
			Instance: inst,
			Layout:   accessor.LayoutDescriptor{PerDimStride: []int64{4}, ElementSize: 4},
			Decode:   accessor.ScalarDecoder[int64](4),
		}
		inst.Destroy()
		_, err := desc.At(geometry.NewPoint[int64](0))
		Expect(err).To(MatchError(accessor.ErrInstanceDestroyed))
	})

	It("surfaces ErrOffsetOutOfRange for an offset beyond the instance", func() {
		inst := meminstance.New(8)
		desc := accessor.Descriptor[int64, int64]{
			Instance: inst,
			Layout:   accessor.LayoutDescriptor{BaseOffset: 0, PerDimStride: []int64{100}, ElementSize: 4},
			Decode:   accessor.ScalarDecoder[int64](4),
		}
		_, err := desc.At(geometry.NewPoint[int64](1))
		Expect(err).To(MatchError(accessor.ErrOffsetOutOfRange))
	})

	It("decodes a packed point field for preimage-style lookups", func() {
		inst := meminstance.New(32)
		buf := make([]byte, 8)
		binary.LittleEndian.PutUint32(buf[0:4], 5)
		binary.LittleEndian.PutUint32(buf[4:8], 7)
		Expect(inst.Write(0, buf)).To(Succeed())

		decode := accessor.PointDecoder[int64](2, 4)
		p := decode(buf)
		Expect(p).To(Equal(geometry.NewPoint[int64](5, 7)))
	})
})
