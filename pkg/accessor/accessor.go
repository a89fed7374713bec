// Package accessor implements the field-data accessor: a way for a
// partition operator to read the value of a field at a point without
// knowing how the backing instance lays out its bytes.
package accessor

import (
	"errors"

	"github.com/l7mp/depart/pkg/geometry"
	"github.com/l7mp/depart/pkg/space"
)

// ErrInstanceDestroyed is returned by an Instance whose backing storage has
// been released. It is an invalid-descriptor error: fatal for the operator
// reading it, not for the process.
var ErrInstanceDestroyed = errors.New("accessor: instance destroyed")

// ErrOffsetOutOfRange is returned when a computed byte offset falls outside
// an instance's storage — an out-of-range field offset, the other
// invalid-descriptor case.
var ErrOffsetOutOfRange = errors.New("accessor: offset out of range")

// Instance is the engine's view of a region of external storage: a flat
// byte-addressable blob the core never allocates or owns. Read returns a
// view into memory the Instance already holds, not a fresh copy tied to
// engine bookkeeping.
type Instance interface {
	// ID identifies the instance, for error reporting and dedup keys.
	ID() uint64
	// Read returns a size-byte view of the instance's storage starting at
	// offset. Returns ErrInstanceDestroyed or ErrOffsetOutOfRange.
	Read(offset int64, size int64) ([]byte, error)
}

// LayoutDescriptor resolves a point to a byte offset once, at descriptor
// creation, rather than through ad-hoc pointer arithmetic scattered across
// callers: offset(p) = BaseOffset + Σ_d p[d]*PerDimStride[d].
type LayoutDescriptor struct {
	BaseOffset   int64
	PerDimStride []int64
	ElementSize  int64
}

// Offset computes the byte offset of p under this layout. p's dimension
// must match len(PerDimStride).
func (l LayoutDescriptor) Offset(p geometry.Point[int64]) int64 {
	off := l.BaseOffset
	for d, c := range p {
		off += c * l.PerDimStride[d]
	}
	return off
}

// Descriptor is a field-data descriptor: a field of type V
// defined over every point of IndexSpace, backed by one Instance and
// resolved through Layout. Decode turns the raw bytes at a point's offset
// into a V.
type Descriptor[T geometry.Scalar, V any] struct {
	Instance   Instance
	IndexSpace space.IndexSpace[T]
	Layout     LayoutDescriptor
	Decode     func([]byte) V
}

// At returns the field value at p, which must be a point of d.IndexSpace.
func (d Descriptor[T, V]) At(p geometry.Point[T]) (V, error) {
	var zero V
	off := d.offsetOf(p)
	raw, err := d.Instance.Read(off, d.Layout.ElementSize)
	if err != nil {
		return zero, err
	}
	return d.Decode(raw), nil
}

func (d Descriptor[T, V]) offsetOf(p geometry.Point[T]) int64 {
	off := d.Layout.BaseOffset
	for dim, c := range p {
		off += int64(c) * d.Layout.PerDimStride[dim]
	}
	return off
}
