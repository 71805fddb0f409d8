// Package des implements the discrete-event simulator core: the virtual
// clock, the event queue, the handler registry, and the run loop. It has no
// knowledge of production lines or stations — those are built on top of it
// in package line.
package des

import "github.com/sebastiankruger/factoryphysics-sim/internal/fpsim/event"

// Handler reacts to a dispatched event. It runs to completion atomically
// with respect to the clock: no suspension points, no re-entrant scheduling
// concerns. It may call Simulator.Schedule to enqueue future events.
type Handler func(e event.Event)

// Stats accumulates run-loop counters. They reset with the simulator.
type Stats struct {
	EventsProcessed int
}

// Simulator owns the clock, the event queue, and the kind→handler registry.
// It is single-threaded by contract: nothing here takes a lock, matching
// the single-writer event loop the production line is required to funnel
// all mutation through.
type Simulator struct {
	clock    float64
	queue    *event.Queue
	handlers map[event.Kind]Handler
	stats    Stats
}

// New returns a Simulator at clock zero with an empty queue and no
// registered handlers.
func New() *Simulator {
	return &Simulator{
		queue:    event.NewQueue(),
		handlers: make(map[event.Kind]Handler),
	}
}

// Clock returns the current virtual time: the timestamp of the event most
// recently dispatched, or zero before the first dispatch.
func (s *Simulator) Clock() float64 { return s.clock }

// Stats returns a snapshot of the run-loop counters.
func (s *Simulator) Stats() Stats { return s.stats }

// RegisterHandler binds fn to kind, replacing any prior registration.
func (s *Simulator) RegisterHandler(kind event.Kind, fn Handler) {
	s.handlers[kind] = fn
}

// Schedule enqueues e for future dispatch. e.Time must be >= Clock(); the
// caller (package line) is responsible for never scheduling into the past.
func (s *Simulator) Schedule(e event.Event) {
	s.queue.Schedule(e)
}

// PeekNextTime returns the timestamp of the next pending event without
// dispatching it, or false if the queue is empty.
func (s *Simulator) PeekNextTime() (float64, bool) {
	return s.queue.PeekTime()
}

// Run drains the event queue, dispatching each event to its registered
// handler in non-decreasing timestamp order (ties broken by insertion
// order). It stops when the queue is empty, when the next event's
// timestamp would meet or exceed maxTime (checked before popping, so the
// clock never overshoots the bound), or once EventsProcessed has reached
// maxEvents. A zero maxTime or maxEvents means "no limit".
func (s *Simulator) Run(maxTime float64, maxEvents int) {
	for {
		nextTime, ok := s.queue.PeekTime()
		if !ok {
			return
		}
		if maxTime > 0 && nextTime >= maxTime {
			return
		}
		if maxEvents > 0 && s.stats.EventsProcessed >= maxEvents {
			return
		}

		e, _ := s.queue.PopNext()
		s.clock = e.Time
		s.stats.EventsProcessed++

		if h, ok := s.handlers[e.Kind]; ok {
			h(e)
		}
		// Unhandled kinds are silently skipped but still counted above.
	}
}

// Reset returns the simulator to zero clock, empty queue, and zero stats.
// Registered handlers are preserved — resetting is meant to start a fresh
// run of the same wiring, not to undo RegisterHandler calls.
func (s *Simulator) Reset() {
	s.clock = 0
	s.queue.Reset()
	s.stats = Stats{}
}
