package accessor

import (
	"encoding/binary"

	"github.com/l7mp/depart/pkg/geometry"
)

// ScalarDecoder builds a Decode function for a Descriptor whose field value
// is a single little-endian integer scalar, the common case for by-field
// colors.
func ScalarDecoder[V geometry.Scalar](size int) func([]byte) V {
	switch size {
	case 4:
		return func(b []byte) V { return V(int32(binary.LittleEndian.Uint32(b))) }
	case 8:
		return func(b []byte) V { return V(int64(binary.LittleEndian.Uint64(b))) }
	default:
		panic("accessor: ScalarDecoder only supports 4- or 8-byte elements")
	}
}

// PointDecoder builds a Decode function for a Descriptor whose field value
// is an N'-dimensional point packed as N' consecutive little-endian
// coordinates of the given coordWidth bytes each — the value type
// by-preimage and by-image read to follow a pointer field into another
// index space.
func PointDecoder[T geometry.Scalar](dim int, coordWidth int) func([]byte) geometry.Point[T] {
	return func(b []byte) geometry.Point[T] {
		p := make(geometry.Point[T], dim)
		for i := 0; i < dim; i++ {
			chunk := b[i*coordWidth : (i+1)*coordWidth]
			switch coordWidth {
			case 4:
				p[i] = T(int32(binary.LittleEndian.Uint32(chunk)))
			case 8:
				p[i] = T(int64(binary.LittleEndian.Uint64(chunk)))
			default:
				panic("accessor: PointDecoder only supports 4- or 8-byte coordinates")
			}
		}
		return p
	}
}
