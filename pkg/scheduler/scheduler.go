// Package scheduler implements the operator scheduler: a ready queue of
// operators whose precondition has triggered, a worker pool
// draining it, at-most-one-in-flight enforcement on output sparsity maps,
// optional dedup of identical in-flight requests, and a bounded record of
// recent operator failures.
package scheduler

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/go-logr/logr"
	"k8s.io/client-go/util/workqueue"

	"github.com/l7mp/depart/pkg/event"
)

// Status is an operator's position in its lifecycle state machine, as
// observed from the scheduler's side.
type Status int32

const (
	StatusCreated Status = iota
	StatusReady
	StatusRunning
	StatusFinalizing
	StatusCompleting
	StatusDone
	StatusCancelled
)

func (s Status) String() string {
	switch s {
	case StatusCreated:
		return "Created"
	case StatusReady:
		return "Ready"
	case StatusRunning:
		return "Running"
	case StatusFinalizing:
		return "Finalizing"
	case StatusCompleting:
		return "Completing"
	case StatusDone:
		return "Done"
	case StatusCancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// Operator is anything the scheduler can run: a partition operator's
// precondition-gated algorithm, wired to its own output sparsity maps and
// completion event by its constructor. The scheduler calls Run,
// FinalizeOutputs, and Complete in that order, on one goroutine, at most
// once each: Ready -> Running -> Finalizing -> Completing -> Done, on a
// worker goroutine. When the precondition triggers poisoned, Run is skipped
// and FinalizeOutputs and Complete run on the goroutine that delivers that
// trigger, with the operator in Cancelled.
type Operator interface {
	// ID identifies the operator, for dedup bookkeeping and error records.
	ID() uint64
	// Precondition is the event the operator waits on before running.
	Precondition() event.ID
	// Outputs lists the sparsity map ids this operator will write, for
	// at-most-one-in-flight enforcement.
	Outputs() []uint64
	// Completion is the event the operator triggers once its outputs are
	// finalized, for wiring the dataflow graph pkg/visualize renders.
	Completion() event.ID
	// Run executes the operator's algorithm. Returning a non-nil error
	// poisons the operator's outputs and completion.
	Run() error
	// FinalizeOutputs writes and validates the operator's pending output
	// sparsity maps, poisoned if the precondition was poisoned or Run
	// failed.
	FinalizeOutputs(poisoned bool)
	// Complete triggers the operator's own completion event.
	Complete(poisoned bool)
}

// Edge describes one operator's place in the dataflow graph, for
// pkg/visualize.
type Edge struct {
	ID           uint64
	Status       Status
	Precondition event.ID
	Completion   event.ID
	Outputs      []uint64
	Fingerprint  string
}

type entry struct {
	op          Operator
	fingerprint string
	status      atomic.Int32
}

// Scheduler is the engine-wide operator ready queue and worker pool.
type Scheduler struct {
	events *event.Table
	log    logr.Logger

	queue workqueue.TypedRateLimitingInterface[uint64]

	mu      sync.Mutex
	entries map[uint64]*entry
	dedup   map[string]uint64
	claimed map[uint64]struct{}

	errs *errorRing

	wg sync.WaitGroup
}

// New builds a Scheduler backed by nworkers worker goroutines, all reading
// from a shared workqueue.TypedRateLimitingInterface ready queue, the same
// queue type used to drain controller-style reconcile work, repurposed here
// for operator ids instead of reconcile requests.
func New(events *event.Table, log logr.Logger, nworkers int) *Scheduler {
	if nworkers <= 0 {
		nworkers = 1
	}
	s := &Scheduler{
		events:  events,
		log:     log.WithName("scheduler"),
		queue:   workqueue.NewTypedRateLimitingQueue(workqueue.DefaultTypedControllerRateLimiter[uint64]()),
		entries: make(map[uint64]*entry),
		dedup:   make(map[string]uint64),
		claimed: make(map[uint64]struct{}),
		errs:    newErrorRing(64),
	}
	s.wg.Add(nworkers)
	for i := 0; i < nworkers; i++ {
		go s.worker()
	}
	return s
}

// FindInFlight returns the operator id already registered under
// fingerprint, if any, letting a caller reuse its completion event instead
// of submitting a duplicate request.
func (s *Scheduler) FindInFlight(fingerprint string) (uint64, bool) {
	if fingerprint == "" {
		return 0, false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.dedup[fingerprint]
	return id, ok
}

// Submit registers op with the scheduler. Op runs once its precondition
// triggers clean; if the precondition is already poisoned, or triggers
// poisoned, op's outputs and completion are poisoned without Run ever
// being called. fingerprint may be empty to opt out of dedup.
//
// Submit panics if any of op's declared outputs is already claimed by
// another in-flight operator: reusing an output handle for another request
// is a programming error, not a runtime one.
func (s *Scheduler) Submit(op Operator, fingerprint string) {
	s.mu.Lock()
	for _, oid := range op.Outputs() {
		if _, busy := s.claimed[oid]; busy {
			s.mu.Unlock()
			panic(fmt.Sprintf("scheduler: output sparsity map %d already claimed by an in-flight operator", oid))
		}
	}
	for _, oid := range op.Outputs() {
		s.claimed[oid] = struct{}{}
	}
	e := &entry{op: op, fingerprint: fingerprint}
	e.status.Store(int32(StatusCreated))
	s.entries[op.ID()] = e
	if fingerprint != "" {
		s.dedup[fingerprint] = op.ID()
	}
	s.mu.Unlock()

	s.events.AddWaiter(op.Precondition(), func(poisoned bool) {
		if poisoned {
			s.finish(e, true)
			return
		}
		e.status.Store(int32(StatusReady))
		s.queue.Add(op.ID())
	})
}

func (s *Scheduler) worker() {
	defer s.wg.Done()
	for {
		id, shutdown := s.queue.Get()
		if shutdown {
			return
		}
		s.runOne(id)
		s.queue.Done(id)
	}
}

func (s *Scheduler) runOne(id uint64) {
	s.mu.Lock()
	e := s.entries[id]
	s.mu.Unlock()
	if e == nil {
		return
	}

	e.status.Store(int32(StatusRunning))
	err := e.op.Run()
	poisoned := err != nil
	if poisoned {
		s.errs.record(id, err)
		s.log.Error(err, "operator failed", "operator", id)
	}
	s.finish(e, poisoned)
}

func (s *Scheduler) finish(e *entry, poisoned bool) {
	if poisoned {
		e.status.Store(int32(StatusCancelled))
	} else {
		e.status.Store(int32(StatusFinalizing))
	}
	e.op.FinalizeOutputs(poisoned)
	if !poisoned {
		e.status.Store(int32(StatusCompleting))
	}
	e.op.Complete(poisoned)
	if !poisoned {
		e.status.Store(int32(StatusDone))
	}

	s.mu.Lock()
	for _, oid := range e.op.Outputs() {
		delete(s.claimed, oid)
	}
	if e.fingerprint != "" && s.dedup[e.fingerprint] == e.op.ID() {
		delete(s.dedup, e.fingerprint)
	}
	s.mu.Unlock()
}

// Snapshot returns the current state of every operator the scheduler has
// ever seen, for pkg/visualize's dataflow graph rendering.
func (s *Scheduler) Snapshot() []Edge {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Edge, 0, len(s.entries))
	for id, e := range s.entries {
		out = append(out, Edge{
			ID:           id,
			Status:       Status(e.status.Load()),
			Precondition: e.op.Precondition(),
			Completion:   e.op.Completion(),
			Outputs:      e.op.Outputs(),
			Fingerprint:  e.fingerprint,
		})
	}
	return out
}

// RecentErrors returns the scheduler's bounded history of operator
// failures, most recent last.
func (s *Scheduler) RecentErrors() []FailureRecord {
	return s.errs.snapshot()
}

// Shutdown stops dequeuing and drains the worker pool. Cancellation has no
// per-operator form: callers compose it by poisoning preconditions before
// calling Shutdown, which only stops accepting new ready work.
func (s *Scheduler) Shutdown() {
	s.queue.ShutDown()
	s.wg.Wait()
}
