package event

import (
	"sync"
	"sync/atomic"
)

// Merge returns an event that triggers exactly when every id in ids has
// triggered, poisoned iff any of them was. An input set with no id other
// than NoEvent returns NoEvent itself, and a single such id is returned
// unchanged; otherwise a fresh event is created, and if every input has
// already triggered it triggers at once, via AddWaiter's fire-if-already-
// triggered rule.
func (t *Table) Merge(ids ...ID) ID {
	live := make([]ID, 0, len(ids))
	for _, id := range ids {
		if id != NoEvent {
			live = append(live, id)
		}
	}
	if len(live) == 0 {
		return NoEvent
	}
	if len(live) == 1 {
		return live[0]
	}

	merged, trigger := t.Create()

	remaining := int32(len(live))
	var anyPoisoned int32
	var once sync.Once

	for _, id := range live {
		t.AddWaiter(id, func(poisoned bool) {
			if poisoned {
				atomic.StoreInt32(&anyPoisoned, 1)
			}
			if atomic.AddInt32(&remaining, -1) == 0 {
				once.Do(func() {
					trigger(atomic.LoadInt32(&anyPoisoned) != 0)
				})
			}
		})
	}
	return merged
}
