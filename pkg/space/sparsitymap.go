package space

import (
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/l7mp/depart/pkg/event"
	"github.com/l7mp/depart/pkg/geometry"
)

// LifecycleState is a sparsity map's position in the Pending → Valid →
// Destroyed lifecycle.
type LifecycleState int

const (
	Pending LifecycleState = iota
	Valid
	Destroyed
)

func (s LifecycleState) String() string {
	switch s {
	case Pending:
		return "Pending"
	case Valid:
		return "Valid"
	case Destroyed:
		return "Destroyed"
	default:
		return "Unknown"
	}
}

var idSeq atomic.Uint64

// Map is a sparsity map: a globally named, immutable-once-valid
// collection of entries whose bounds are pairwise disjoint. Exactly one
// producer (the operator that created it) ever writes its entries, exactly
// once, via Finalize.
type Map[T geometry.Scalar] struct {
	id uint64

	mu       sync.RWMutex
	state    LifecycleState
	entries  []Entry[T]
	refcount int32

	// validity triggers when the map transitions Pending -> Valid. It is
	// owned by the event table that allocated it, not by the Map itself,
	// so the Map need not know which table minted the id.
	validity event.ID
}

// NewPending allocates a fresh Pending sparsity map, referencing the given
// validity event (to be triggered by the producing operator once entries
// are finalized, never before: an operator never triggers its completion
// event before all of its output sparsity maps are valid.
func NewPending[T geometry.Scalar](validity event.ID) *Map[T] {
	return &Map[T]{
		id:       idSeq.Add(1),
		state:    Pending,
		refcount: 1,
		validity: validity,
	}
}

// NewValid builds an already-Valid sparsity map directly from entries, for
// set-algebra producers that compute synchronously once their inputs are
// valid (no separate pending window).
func NewValid[T geometry.Scalar](entries []Entry[T]) *Map[T] {
	m := &Map[T]{id: idSeq.Add(1), state: Valid, refcount: 1, validity: event.NoEvent}
	m.entries = consolidate(entries)
	return m
}

// ID returns the map's engine-wide unique identifier.
func (m *Map[T]) ID() uint64 { return m.id }

// Validity returns the event that triggers when the map becomes Valid.
func (m *Map[T]) Validity() event.ID { return m.validity }

// State returns the map's current lifecycle state.
func (m *Map[T]) State() LifecycleState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Finalize writes the map's entries exactly once, consolidating adjacent
// entries, and transitions Pending -> Valid. Calling Finalize twice, or on
// a non-Pending map, is a programming error.
func (m *Map[T]) Finalize(entries []Entry[T]) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != Pending {
		panic(fmt.Sprintf("space: Finalize called on sparsity map %d in state %s", m.id, m.state))
	}
	m.entries = consolidate(entries)
	m.state = Valid
}

// Entries returns the map's entries. Calling this before the map is Valid
// is a programming error.
func (m *Map[T]) Entries() []Entry[T] {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.state != Valid {
		panic(fmt.Sprintf("space: Entries read on sparsity map %d in state %s", m.id, m.state))
	}
	return m.entries
}

// Contains reports whether p is covered by any of the map's entries.
func (m *Map[T]) Contains(p geometry.Point[T]) bool {
	for _, e := range m.Entries() {
		if e.Bounds.Contains(p) && e.Contains(p) {
			return true
		}
	}
	return false
}

// Volume returns the total number of points across all entries (entries
// are pairwise disjoint by invariant, so this is a plain sum).
func (m *Map[T]) Volume() int64 {
	var n int64
	for _, e := range m.Entries() {
		n += e.Volume()
	}
	return n
}

// Retain increments the map's reference count.
func (m *Map[T]) Retain() {
	atomic.AddInt32(&m.refcount, 1)
}

// Release decrements the map's reference count, transitioning it to
// Destroyed once no references remain.
func (m *Map[T]) Release() {
	if atomic.AddInt32(&m.refcount, -1) == 0 {
		m.mu.Lock()
		m.state = Destroyed
		m.entries = nil
		m.mu.Unlock()
	}
}

// consolidate merges adjacent, equally-refined entries to keep entry counts
// bounded, then sorts the result into lex order on each
// entry's low corner so iteration and by-field bucketing see a stable,
// predictable order.
func consolidate[T geometry.Scalar](entries []Entry[T]) []Entry[T] {
	out := make([]Entry[T], 0, len(entries))
	for _, e := range entries {
		if e.Bounds.Empty() {
			continue
		}
		out = append(out, e)
	}

	changed := true
	for changed {
		changed = false
		sort.Slice(out, func(i, j int) bool { return out[i].Bounds.Lo.Less(out[j].Bounds.Lo) })
		for i := 0; i < len(out); i++ {
			for j := i + 1; j < len(out); j++ {
				if dim, ok := mergeable(out[i], out[j]); ok {
					out[i] = mergeEntries(out[i], out[j], dim)
					out = append(out[:j], out[j+1:]...)
					changed = true
					break
				}
			}
			if changed {
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Bounds.Lo.Less(out[j].Bounds.Lo) })
	return out
}
