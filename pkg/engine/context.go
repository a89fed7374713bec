// Package engine ties together the event table, operator scheduler, and
// logger every partition operator needs into one object threaded explicitly
// through operator constructors, instead of a singleton runtime and
// process-wide task table.
package engine

import (
	"sync/atomic"

	"github.com/go-logr/logr"

	"github.com/l7mp/depart/pkg/event"
	"github.com/l7mp/depart/pkg/scheduler"
)

// Context is an engine instance: its own event namespace (events minted by
// one Context never collide with another's), its own operator scheduler,
// and a logger operators and the scheduler log through.
type Context struct {
	Events    *event.Table
	Scheduler *scheduler.Scheduler
	Log       logr.Logger

	opSeq atomic.Uint64
}

// New builds a Context whose event ids are namespaced under creator, with a
// scheduler worker pool of the given size.
func New(creator uint32, log logr.Logger, workers int) *Context {
	events := event.NewTable(creator)
	return &Context{
		Events:    events,
		Scheduler: scheduler.New(events, log, workers),
		Log:       log,
	}
}

// NextOperatorID returns a fresh, Context-unique operator id for use as a
// scheduler.Operator's ID.
func (c *Context) NextOperatorID() uint64 {
	return c.opSeq.Add(1)
}

// Shutdown drains the Context's scheduler. Callers must not submit further
// operators afterward.
func (c *Context) Shutdown() {
	c.Scheduler.Shutdown()
}
