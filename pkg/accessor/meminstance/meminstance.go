// Package meminstance is an in-process reference Instance: a flat byte
// buffer standing in for a region instance backed by real device or host
// memory. It is what the engine's own tests and cmd/departctl use to
// populate field data without a real storage layer.
package meminstance

import (
	"sync"
	"sync/atomic"

	"github.com/l7mp/depart/pkg/accessor"
)

var idSeq atomic.Uint64

// Instance is a flat, growable-at-construction byte buffer implementing
// accessor.Instance. Reads and writes are safe for concurrent use; a Read
// returns a view of the buffer, so a later Write changes what that view
// shows. Destroy
// is idempotent and causes every subsequent Read to fail with
// accessor.ErrInstanceDestroyed, modeling an external task tearing down
// backing storage out from under a live descriptor.
type Instance struct {
	id   uint64
	mu   sync.RWMutex
	data []byte
	dead bool
}

// New allocates a zero-filled instance of the given size in bytes.
func New(size int64) *Instance {
	return &Instance{id: idSeq.Add(1), data: make([]byte, size)}
}

// ID implements accessor.Instance.
func (i *Instance) ID() uint64 { return i.id }

// Read implements accessor.Instance.
func (i *Instance) Read(offset, size int64) ([]byte, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	if i.dead {
		return nil, accessor.ErrInstanceDestroyed
	}
	if offset < 0 || size < 0 || offset+size > int64(len(i.data)) {
		return nil, accessor.ErrOffsetOutOfRange
	}
	return i.data[offset : offset+size : offset+size], nil
}

// Write stores b at offset, for use by external initialization tasks
// before an operator's precondition triggers. Returns
// accessor.ErrOffsetOutOfRange if b would overrun the buffer.
func (i *Instance) Write(offset int64, b []byte) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.dead {
		return accessor.ErrInstanceDestroyed
	}
	if offset < 0 || offset+int64(len(b)) > int64(len(i.data)) {
		return accessor.ErrOffsetOutOfRange
	}
	copy(i.data[offset:], b)
	return nil
}

// Destroy releases the instance; every subsequent Read fails.
func (i *Instance) Destroy() {
	i.mu.Lock()
	i.dead = true
	i.data = nil
	i.mu.Unlock()
}
