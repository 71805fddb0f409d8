package line

import (
	"github.com/pkg/errors"

	"github.com/sebastiankruger/factoryphysics-sim/internal/fpsim/station"
)

// checkInvariants validates the invariants that must hold between event
// dispatches (I1, I2, I3, I6). A violation indicates a simulator bug, not a
// recoverable condition, so it panics with a diagnostic naming which
// invariant failed — the error taxonomy is explicit that these must never
// be silently swallowed.
//
// I4 (a job occupies at most one location) and I5 (station time counters
// sum to the clock) are enforced structurally rather than re-derived here:
// I4 by station.EnqueueIfAbsent's membership guard plus the fact that
// tryStartProcessing only ever places a job at the single station a
// ProcessingEnd or Arrival routes it to, and I5 by UpdateStatistics always
// being called immediately before a state transition.
func (pl *ProductionLine) checkInvariants() {
	admitted := len(pl.arrivalTime)
	completed := len(pl.completionTime)
	wipFromTimestamps := admitted - completed

	if pl.systemWIP != wipFromTimestamps {
		panic(errors.Errorf(
			"invariant I1 violated: system_wip=%d but admitted-completed=%d",
			pl.systemWIP, wipFromTimestamps,
		))
	}

	if pl.systemWIP < 0 || pl.systemWIP > pl.conwipLevel {
		panic(errors.Errorf(
			"invariant I2 violated: system_wip=%d outside [0,%d]",
			pl.systemWIP, pl.conwipLevel,
		))
	}

	for _, st := range pl.stations {
		_, hasJob := st.CurrentJob()
		switch st.State() {
		case station.Idle:
			if hasJob {
				panic(errors.Errorf("invariant I3 violated: station %d Idle with a current job", st.ID))
			}
		case station.Processing:
			if !hasJob {
				panic(errors.Errorf("invariant I3 violated: station %d Processing with no current job", st.ID))
			}
		}
	}

	if next, ok := pl.sim.PeekNextTime(); ok && next < pl.sim.Clock() {
		panic(errors.Errorf(
			"invariant I6 violated: next event time %v is before clock %v",
			next, pl.sim.Clock(),
		))
	}
}
