package partition_test

import (
	"encoding/binary"

	"github.com/l7mp/depart/pkg/accessor"
	"github.com/l7mp/depart/pkg/accessor/meminstance"
	"github.com/l7mp/depart/pkg/geometry"
	"github.com/l7mp/depart/pkg/space"
)

func rect1(lo, hi int64) geometry.Rect[int64] {
	return geometry.NewRect(geometry.NewPoint(lo), geometry.NewPoint(hi))
}

func int32Instance(values []int32) *meminstance.Instance {
	inst := meminstance.New(int64(len(values)) * 4)
	buf := make([]byte, 4)
	for i, v := range values {
		binary.LittleEndian.PutUint32(buf, uint32(v))
		if err := inst.Write(int64(i)*4, buf); err != nil {
			panic(err)
		}
	}
	return inst
}

func scalarField1D(values []int32) accessor.Descriptor[int64, int64] {
	bounds := rect1(0, int64(len(values)-1))
	return accessor.Descriptor[int64, int64]{
		Instance:   int32Instance(values),
		IndexSpace: space.Dense(bounds),
		Layout:     accessor.LayoutDescriptor{PerDimStride: []int64{4}, ElementSize: 4},
		Decode:     accessor.ScalarDecoder[int64](4),
	}
}

func pointField1D(values []int32) accessor.Descriptor[int64, geometry.Point[int64]] {
	bounds := rect1(0, int64(len(values)-1))
	return accessor.Descriptor[int64, geometry.Point[int64]]{
		Instance:   int32Instance(values),
		IndexSpace: space.Dense(bounds),
		Layout:     accessor.LayoutDescriptor{PerDimStride: []int64{4}, ElementSize: 4},
		Decode:     accessor.PointDecoder[int64](1, 4),
	}
}

// pointField1DTo2D builds a field over a 1-D domain of len(coords)/2 points
// whose value is a 2-D point, packed as consecutive (x,y) int32 pairs —
// used for a by-image "right_cell" style field.
func pointField1DTo2D(coords []int32) accessor.Descriptor[int64, geometry.Point[int64]] {
	n := len(coords) / 2
	bounds := rect1(0, int64(n-1))
	return accessor.Descriptor[int64, geometry.Point[int64]]{
		Instance:   int32Instance(coords),
		IndexSpace: space.Dense(bounds),
		Layout:     accessor.LayoutDescriptor{PerDimStride: []int64{8}, ElementSize: 8},
		Decode:     accessor.PointDecoder[int64](2, 4),
	}
}

func points2D(s space.IndexSpace[int64]) [][2]int64 {
	var out [][2]int64
	it := s.Iterator()
	for r, ok := it.Next(); ok; r, ok = it.Next() {
		rit := r.Iterator()
		for p, ok := rit.Next(); ok; p, ok = rit.Next() {
			out = append(out, [2]int64{p[0], p[1]})
		}
	}
	return out
}

func points1D(s space.IndexSpace[int64]) []int64 {
	var out []int64
	it := s.Iterator()
	for r, ok := it.Next(); ok; r, ok = it.Next() {
		rit := r.Iterator()
		for p, ok := rit.Next(); ok; p, ok = rit.Next() {
			out = append(out, p[0])
		}
	}
	return out
}
