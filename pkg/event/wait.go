package event

import "fmt"

// PoisonedError is what Wait returns when the awaited event triggered
// poisoned, so a top-level wait on a poisoned event raises to the caller
// instead of silently returning success.
type PoisonedError struct {
	Event ID
}

func (e *PoisonedError) Error() string {
	return fmt.Sprintf("event %s triggered poisoned", e.Event)
}

// Wait blocks the calling goroutine until id triggers. It is a blocking
// helper for top-level code only — it must never be called from inside an
// operator's algorithm, which may only register waiters; operators have no
// suspension points.
func (t *Table) Wait(id ID) error {
	done := make(chan bool, 1)
	t.AddWaiter(id, func(poisoned bool) { done <- poisoned })
	if <-done {
		return &PoisonedError{Event: id}
	}
	return nil
}
