package partition

import (
	"github.com/l7mp/depart/pkg/engine"
	"github.com/l7mp/depart/pkg/event"
	"github.com/l7mp/depart/pkg/geometry"
	"github.com/l7mp/depart/pkg/space"
)

// outputSlot pairs a pending output sparsity map with the trigger function
// for its validity event — the handle the operator's caller already holds
// via space.PendingSparse, and the function only the operator itself may
// call, exactly once, when it finishes writing that output.
type outputSlot[T geometry.Scalar] struct {
	m       *space.Map[T]
	trigger func(bool)
}

// base is the bookkeeping every operator in this package shares: an id,
// its precondition, its pending outputs, and its own completion event.
// Concrete operators embed base and implement Run; base supplies the rest
// of the scheduler.Operator interface.
type base[T geometry.Scalar] struct {
	id           uint64
	precondition event.ID
	completion   event.ID
	completeFn   func(bool)
	outputs      []outputSlot[T]
	pending      [][]space.Entry[T]
}

// newBase allocates an operator's completion event and n pending output
// sparsity maps (each bound to its own validity event), returning the base
// and the IndexSpace handles the constructor hands back to its caller.
func newBase[T geometry.Scalar](ctx *engine.Context, bounds []geometry.Rect[T], precondition event.ID) (*base[T], []space.IndexSpace[T]) {
	n := len(bounds)
	b := &base[T]{
		id:           ctx.NextOperatorID(),
		precondition: precondition,
		outputs:      make([]outputSlot[T], n),
		pending:      make([][]space.Entry[T], n),
	}
	b.completion, b.completeFn = ctx.Events.Create()

	handles := make([]space.IndexSpace[T], n)
	for i, bd := range bounds {
		vid, vtrig := ctx.Events.Create()
		m := space.NewPending[T](vid)
		b.outputs[i] = outputSlot[T]{m: m, trigger: vtrig}
		handles[i] = space.PendingSparse(bd, m)
	}
	return b, handles
}

func (b *base[T]) ID() uint64             { return b.id }
func (b *base[T]) Precondition() event.ID { return b.precondition }

func (b *base[T]) Outputs() []uint64 {
	ids := make([]uint64, len(b.outputs))
	for i, o := range b.outputs {
		ids[i] = o.m.ID()
	}
	return ids
}

// FinalizeOutputs writes every output's pending entries (or none, if
// poisoned) and triggers its validity event.
func (b *base[T]) FinalizeOutputs(poisoned bool) {
	for i, o := range b.outputs {
		if poisoned {
			o.m.Finalize(nil)
		} else {
			o.m.Finalize(b.pending[i])
		}
		o.trigger(poisoned)
	}
}

// Complete triggers the operator's own completion event, the
// Completing -> Done transition.
func (b *base[T]) Complete(poisoned bool) {
	b.completeFn(poisoned)
}

// Completion returns the operator's completion event, for the constructor
// to hand back to its caller.
func (b *base[T]) Completion() event.ID { return b.completion }

// contiguous reports whether b immediately follows a in this package's
// iteration order (dimension 0 fastest), the same run-coalescing test
// pkg/space's split and iterator use.
func contiguous[T geometry.Scalar](a, b geometry.Point[T]) bool {
	if len(a) == 0 {
		return false
	}
	if a[0]+1 != b[0] {
		return false
	}
	for d := 1; d < len(a); d++ {
		if a[d] != b[d] {
			return false
		}
	}
	return true
}

// runBuilder accumulates a stream of points, assumed to arrive in this
// package's lex iteration order, into maximal dimension-0-contiguous runs —
// the same run-length technique pkg/space's iterator and split use, applied
// here to points selected by field value rather than by position.
type runBuilder[T geometry.Scalar] struct {
	start, end geometry.Point[T]
	have       bool
	entries    []space.Entry[T]
}

func (rb *runBuilder[T]) add(p geometry.Point[T]) {
	if rb.have && contiguous[T](rb.end, p) {
		rb.end = p
		return
	}
	rb.flush()
	rb.start, rb.end = p, p
	rb.have = true
}

func (rb *runBuilder[T]) flush() {
	if rb.have {
		rb.entries = append(rb.entries, space.Entry[T]{Bounds: geometry.NewRect(rb.start, rb.end)})
	}
	rb.have = false
}

func (rb *runBuilder[T]) result() []space.Entry[T] {
	rb.flush()
	return rb.entries
}
