// Package event implements the one-shot completion tokens ("events") that
// the scheduler and partition operators use to chain deferred work. An
// Event is an integer id into a Table, an arena that breaks the cycle
// between a waiter list and the work items it would otherwise own; callers
// never see a pointer into the table's internals.
package event

import (
	"fmt"
	"sync"
)

// ID names an event: (creator node, generation), packed into a uint64 so
// Event values stay cheap, comparable handles.
type ID uint64

// NewID packs a creator-node id and a per-node generation counter into a
// single Event ID.
func NewID(creator uint32, generation uint32) ID {
	return ID(uint64(creator)<<32 | uint64(generation))
}

func (id ID) Creator() uint32    { return uint32(id >> 32) }
func (id ID) Generation() uint32 { return uint32(id) }

func (id ID) String() string {
	return fmt.Sprintf("ev(%d.%d)", id.Creator(), id.Generation())
}

// NoEvent is the sentinel that is always triggered and never poisoned.
const NoEvent ID = 0

// WorkItem is released, in FIFO order, when the event it was registered
// against triggers.
type WorkItem func(poisoned bool)

type state struct {
	mu        sync.Mutex
	triggered bool
	poisoned  bool
	waiters   []WorkItem
}

// Table is the event arena: it owns every Event's state by id and is the
// only thing that can trigger one. All of its methods are linearizable:
// every event-state transition is atomic with respect to every other.
type Table struct {
	mu      sync.Mutex
	creator uint32
	nextGen uint32
	events  map[ID]*state
}

// NewTable creates an event arena whose events are named with the given
// creator-node id, distinguishing events minted by different engine
// contexts or processes.
func NewTable(creator uint32) *Table {
	return &Table{creator: creator, events: make(map[ID]*state)}
}

// Create allocates a fresh, untriggered event and returns its id together
// with a single-use trigger function. Calling the trigger function more
// than once is a programming error and panics, rather than being silently
// tolerated.
func (t *Table) Create() (ID, func(poisoned bool)) {
	t.mu.Lock()
	t.nextGen++
	id := NewID(t.creator, t.nextGen)
	st := &state{}
	t.events[id] = st
	t.mu.Unlock()

	var fired bool
	var once sync.Mutex
	trigger := func(poisoned bool) {
		once.Lock()
		defer once.Unlock()
		if fired {
			panic(fmt.Sprintf("event: double trigger of %s", id))
		}
		fired = true
		t.trigger(id, poisoned)
	}
	return id, trigger
}

func (t *Table) lookup(id ID) *state {
	if id == NoEvent {
		return nil
	}
	t.mu.Lock()
	st := t.events[id]
	t.mu.Unlock()
	if st == nil {
		panic(fmt.Sprintf("event: reference to nonexistent event %s", id))
	}
	return st
}

func (t *Table) trigger(id ID, poisoned bool) {
	st := t.lookup(id)
	st.mu.Lock()
	st.triggered = true
	st.poisoned = poisoned
	waiters := st.waiters
	st.waiters = nil
	st.mu.Unlock()

	for _, w := range waiters {
		w(poisoned)
	}
}

// HasTriggered reports whether id has triggered. Once true, it is true for
// every subsequent call.
func (t *Table) HasTriggered(id ID) bool {
	if id == NoEvent {
		return true
	}
	st := t.lookup(id)
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.triggered
}

// IsPoisoned reports whether id triggered with the poison flag set. Calling
// this before the event has triggered returns false.
func (t *Table) IsPoisoned(id ID) bool {
	if id == NoEvent {
		return false
	}
	st := t.lookup(id)
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.triggered && st.poisoned
}

// AddWaiter schedules work to run when id triggers. If id has already
// triggered, work runs immediately, on the calling goroutine. Otherwise
// work is appended to id's waiter list and released, in FIFO order along
// with every other waiter, exactly once when id triggers.
func (t *Table) AddWaiter(id ID, work WorkItem) {
	if id == NoEvent {
		work(false)
		return
	}
	st := t.lookup(id)
	st.mu.Lock()
	if st.triggered {
		poisoned := st.poisoned
		st.mu.Unlock()
		work(poisoned)
		return
	}
	st.waiters = append(st.waiters, work)
	st.mu.Unlock()
}
