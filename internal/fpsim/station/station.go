// Package station implements the per-station state machine: Idle/Processing
// transitions, the waiting-job FIFO queue, and time-weighted state
// statistics.
package station

import (
	"github.com/gammazero/deque"

	"github.com/sebastiankruger/factoryphysics-sim/internal/fpsim/sampling"
)

// State is a station's current state. Blocked and Starved are reserved for
// a future finite-buffer extension — the current line model uses infinite
// inter-station queues and CONWIP as its sole WIP cap, so nothing ever
// transitions into them.
type State int

const (
	Idle State = iota
	Processing
	Blocked
	Starved
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Processing:
		return "Processing"
	case Blocked:
		return "Blocked"
	case Starved:
		return "Starved"
	default:
		return "Unknown"
	}
}

// Station is a single stage of the production line: a service-time
// parameterization, a current job (if any), a FIFO queue of waiting jobs,
// and the time-weighted counters needed to derive utilization.
type Station struct {
	ID                 int
	Name               string
	MeanProcessingTime float64
	CVProcessing       float64

	state      State
	currentJob uint64
	hasJob     bool

	queue   deque.Deque[uint64]
	present map[uint64]bool

	totalIdleTime       float64
	totalBlockedTime    float64
	totalStarvedTime    float64
	totalProcessed      uint64
	lastStateChangeTime float64
}

// New returns an Idle station with the given identity and service-time
// parameters.
func New(id int, name string, meanProcessingTime, cvProcessing float64) *Station {
	return &Station{
		ID:                  id,
		Name:                name,
		MeanProcessingTime:  meanProcessingTime,
		CVProcessing:        cvProcessing,
		state:               Idle,
		present:             make(map[uint64]bool),
		lastStateChangeTime: 0,
	}
}

// State returns the station's current state.
func (s *Station) State() State { return s.state }

// CurrentJob returns the job currently occupying the station, if any.
func (s *Station) CurrentJob() (uint64, bool) { return s.currentJob, s.hasJob }

// QueueLen returns the number of jobs waiting behind the current job.
func (s *Station) QueueLen() int { return s.queue.Len() }

// UpdateStatistics adds the elapsed time since the last state change to the
// counter for whichever state the station is currently in, then advances
// lastStateChangeTime to now. Processing time is not tracked by its own
// counter: it is the implicit residual of total elapsed time minus
// idle+blocked+starved, consistent with Utilization's own computation. This
// must be called immediately before every state transition so the elapsed
// interval is attributed to the state being exited, not the state being
// entered.
func (s *Station) UpdateStatistics(now float64) {
	elapsed := now - s.lastStateChangeTime
	switch s.state {
	case Idle:
		s.totalIdleTime += elapsed
	case Blocked:
		s.totalBlockedTime += elapsed
	case Starved:
		s.totalStarvedTime += elapsed
	case Processing:
		// tracked implicitly; see doc comment above.
	}
	s.lastStateChangeTime = now
}

// StartProcessing transitions the station from Idle to Processing with the
// given job. Callers must have already verified the station is Idle and
// must call UpdateStatistics(now) first (StartProcessing does not call it
// itself, since the line's try_start_processing sequences this explicitly
// alongside the branch that doesn't transition at all).
func (s *Station) StartProcessing(job uint64) {
	s.state = Processing
	s.currentJob = job
	s.hasJob = true
}

// FinishProcessing transitions the station back to Idle, clearing the
// current job and incrementing total_processed. Like StartProcessing, it
// does not call UpdateStatistics itself — callers sequence that first.
func (s *Station) FinishProcessing() uint64 {
	job := s.currentJob
	s.hasJob = false
	s.currentJob = 0
	s.state = Idle
	s.totalProcessed++
	return job
}

// EnqueueIfAbsent appends job to the waiting queue unless it is already
// present. The membership check guards against a job being routed onto a
// busy station that already holds it queued — a routing bug in the code
// that calls this, not here; the guard itself is intentional, matching the
// defensive double-enqueue protection in the source this was ported from.
func (s *Station) EnqueueIfAbsent(job uint64) {
	if s.present[job] {
		return
	}
	s.queue.PushBack(job)
	s.present[job] = true
}

// DequeueFront removes and returns the job at the head of the waiting
// queue. The second return is false if the queue is empty.
func (s *Station) DequeueFront() (uint64, bool) {
	if s.queue.Len() == 0 {
		return 0, false
	}
	job := s.queue.PopFront()
	delete(s.present, job)
	return job, true
}

// SampleServiceTime draws this station's next service duration from src
// using MeanProcessingTime and CVProcessing.
func (s *Station) SampleServiceTime(src *sampling.Source) float64 {
	return src.Gamma(s.MeanProcessingTime, s.CVProcessing)
}

// Utilization flushes counters to now, then returns the fraction of total
// elapsed time spent Processing: (total - idle - blocked - starved) /
// total, or 0 if total <= 0.
func (s *Station) Utilization(now float64) float64 {
	s.UpdateStatistics(now)
	total := now
	if total <= 0 {
		return 0
	}
	busy := total - s.totalIdleTime - s.totalBlockedTime - s.totalStarvedTime
	return busy / total
}

// AvgProcessingTime returns the mean processing duration per completed job:
// the same implicit residual Utilization uses, divided by total_processed.
// Returns 0 if nothing has been processed yet.
func (s *Station) AvgProcessingTime(now float64) float64 {
	if s.totalProcessed == 0 {
		return 0
	}
	s.UpdateStatistics(now)
	busy := now - s.totalIdleTime - s.totalBlockedTime - s.totalStarvedTime
	return busy / float64(s.totalProcessed)
}

// TotalProcessed returns the number of jobs this station has completed.
func (s *Station) TotalProcessed() uint64 { return s.totalProcessed }

// Reset returns the station to its just-constructed Idle state.
func (s *Station) Reset() {
	s.state = Idle
	s.currentJob = 0
	s.hasJob = false
	s.queue.Clear()
	s.present = make(map[uint64]bool)
	s.totalIdleTime = 0
	s.totalBlockedTime = 0
	s.totalStarvedTime = 0
	s.totalProcessed = 0
	s.lastStateChangeTime = 0
}
