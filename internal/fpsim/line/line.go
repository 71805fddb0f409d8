// Package line composes the discrete-event simulator with a sequence of
// stations under CONWIP admission control: it is the production line
// itself, threading jobs from station 0 through station N-1 with no
// routing variation, and aggregating the resulting statistics.
package line

import (
	"strconv"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/sebastiankruger/factoryphysics-sim/internal/fpsim/des"
	"github.com/sebastiankruger/factoryphysics-sim/internal/fpsim/event"
	"github.com/sebastiankruger/factoryphysics-sim/internal/fpsim/sampling"
	"github.com/sebastiankruger/factoryphysics-sim/internal/fpsim/station"
)

// rejectionWarnRatio is the fraction of generated arrivals that must be
// rejected before the line logs an admission-pressure warning. It's checked
// periodically (every rejectionWarnSampleEvery generated arrivals), not on
// every single rejection, so a saturated CONWIP cap doesn't flood logs.
const (
	rejectionWarnRatio       = 0.5
	rejectionWarnSampleEvery = 100
)

// ProductionLine owns N stations in fixed linear order, the simulator
// driving them, CONWIP admission state, and the per-job timestamp tables
// needed to derive statistics.
type ProductionLine struct {
	runID   uuid.UUID
	sim     *des.Simulator
	sampler *sampling.Source

	stations []*station.Station

	conwipLevel int
	systemWIP   int
	arrivalRate float64
	cvArrival   float64

	entityCounter  uint64
	arrivalTime    map[uint64]float64
	completionTime map[uint64]float64
	completedJobs  []uint64

	arrivalsGenerated uint64
	arrivalsRejected  uint64

	cfg Config
}

// New validates cfg and constructs a ProductionLine with N stations, all
// Idle, wired to a fresh simulator with Arrival and ProcessingEnd handlers
// registered.
func New(cfg Config) (*ProductionLine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "line.New")
	}

	stations := make([]*station.Station, cfg.NumStations)
	for i := 0; i < cfg.NumStations; i++ {
		name := stationName(cfg, i)
		stations[i] = station.New(i, name, cfg.MeanProcessingTimes[i], cfg.CVProcessing[i])
	}

	pl := &ProductionLine{
		runID:          uuid.New(),
		sim:            des.New(),
		sampler:        sampling.NewSource(cfg.Seed),
		stations:       stations,
		conwipLevel:    cfg.ConwipLevel,
		arrivalRate:    cfg.ArrivalRate,
		cvArrival:      cfg.CVArrival,
		arrivalTime:    make(map[uint64]float64),
		completionTime: make(map[uint64]float64),
		cfg:            cfg,
	}

	pl.sim.RegisterHandler(event.Arrival, pl.handleArrival)
	pl.sim.RegisterHandler(event.ProcessingEnd, pl.handleProcessingEnd)

	log.Info().
		Str("run_id", pl.runID.String()).
		Int("num_stations", cfg.NumStations).
		Int("conwip_level", cfg.ConwipLevel).
		Float64("arrival_rate", cfg.ArrivalRate).
		Msg("production line constructed")

	return pl, nil
}

func stationName(cfg Config, i int) string {
	if i < len(cfg.StationNames) && cfg.StationNames[i] != "" {
		return cfg.StationNames[i]
	}
	return defaultStationName(i)
}

// RunID returns the identifier stamped on this line at construction, the
// same value surfaced on every Statistics this line produces.
func (pl *ProductionLine) RunID() uuid.UUID { return pl.runID }

// SystemWIP returns the current count of admitted-but-not-completed jobs.
func (pl *ProductionLine) SystemWIP() int { return pl.systemWIP }

// Clock returns the simulator's current virtual time.
func (pl *ProductionLine) Clock() float64 { return pl.sim.Clock() }

// GenerateArrivals pre-generates the inter-arrival stream up to duration
// and schedules each as an Arrival event. When cv_arrival == 0 this
// produces perfectly periodic arrivals at interval 1/arrival_rate — a
// first-class deterministic case, not an error. When cv_arrival == 1 it
// samples Exponential(arrival_rate) (a true Poisson process). Otherwise it
// reproduces the source's documented anomaly of scaling the exponential
// rate by cv_arrival rather than sampling a CV-matched Gamma inter-arrival
// process: this is a deliberate fidelity choice for regression parity, not
// an oversight.
func (pl *ProductionLine) GenerateArrivals(duration float64) {
	t := 0.0
	for {
		var delta float64
		switch {
		case pl.cvArrival == 0:
			delta = 1.0 / pl.arrivalRate
		case pl.cvArrival == 1:
			delta = pl.sampler.Exponential(pl.arrivalRate)
		default:
			delta = pl.sampler.Exponential(pl.arrivalRate * pl.cvArrival)
		}
		t += delta
		if t >= duration {
			return
		}
		pl.sim.Schedule(event.Event{Time: t, Kind: event.Arrival})
	}
}

// Run pre-generates arrivals over [0, duration), executes the event loop to
// completion (or until duration is reached), and returns aggregated
// statistics over jobs that arrived at or after warmup.
func (pl *ProductionLine) Run(duration, warmup float64) Statistics {
	log.Info().
		Str("run_id", pl.runID.String()).
		Float64("duration", duration).
		Float64("warmup", warmup).
		Msg("run starting")

	pl.GenerateArrivals(duration)
	pl.sim.Run(duration, 0)

	stats := pl.getStatistics(warmup)

	log.Info().
		Str("run_id", pl.runID.String()).
		Uint64("total_completed", stats.TotalCompleted).
		Float64("throughput", stats.Throughput).
		Float64("avg_cycle_time", stats.AvgCycleTime).
		Msg("run finished")

	return stats
}

// handleArrival admits a job if CONWIP headroom allows, else drops the
// arrival silently — admission rejection is a modeling choice, not an
// error (see the error taxonomy). The gap is still surfaced via
// ArrivalsRejected for callers who want it.
func (pl *ProductionLine) handleArrival(e event.Event) {
	pl.arrivalsGenerated++

	if pl.systemWIP >= pl.conwipLevel {
		pl.arrivalsRejected++
		pl.warnOnRejectionPressure()
		pl.checkInvariants()
		return
	}

	pl.entityCounter++
	jobID := pl.entityCounter
	pl.arrivalTime[jobID] = pl.sim.Clock()
	pl.systemWIP++

	pl.tryStartProcessing(0, jobID)
	pl.checkInvariants()
}

// tryStartProcessing places job j at station s: immediately, if s is Idle,
// else onto s's waiting queue (de-duplicated — see station.EnqueueIfAbsent).
func (pl *ProductionLine) tryStartProcessing(s int, j uint64) {
	st := pl.stations[s]
	now := pl.sim.Clock()

	if st.State() == station.Idle {
		st.UpdateStatistics(now)
		st.StartProcessing(j)
		d := st.SampleServiceTime(pl.sampler)
		if d < 0.001 {
			d = 0.001
		}
		pl.sim.Schedule(event.Event{Time: now + d, Kind: event.ProcessingEnd, StationID: s, JobID: j})
		return
	}

	st.EnqueueIfAbsent(j)
}

// handleProcessingEnd completes job j at station s, routes it to s+1 or
// records its completion at the last station, re-seeding one Arrival on
// every completion (the CONWIP pull signal that keeps the line loaded once
// steady state is reached), then drains s's waiting queue if non-empty.
func (pl *ProductionLine) handleProcessingEnd(e event.Event) {
	s := e.StationID
	j := e.JobID
	st := pl.stations[s]
	now := pl.sim.Clock()

	st.UpdateStatistics(now)
	st.FinishProcessing()

	if s < len(pl.stations)-1 {
		pl.tryStartProcessing(s+1, j)
	} else {
		pl.completionTime[j] = now
		pl.completedJobs = append(pl.completedJobs, j)
		pl.systemWIP--

		if pl.systemWIP < pl.conwipLevel {
			pl.sim.Schedule(event.Event{Time: now, Kind: event.Arrival})
		}
	}

	if head, ok := st.DequeueFront(); ok {
		pl.tryStartProcessing(s, head)
	}

	pl.checkInvariants()
}

func (pl *ProductionLine) warnOnRejectionPressure() {
	if pl.arrivalsGenerated%rejectionWarnSampleEvery != 0 {
		return
	}
	ratio := float64(pl.arrivalsRejected) / float64(pl.arrivalsGenerated)
	if ratio < rejectionWarnRatio {
		return
	}
	log.Warn().
		Str("run_id", pl.runID.String()).
		Uint64("arrivals_generated", pl.arrivalsGenerated).
		Uint64("arrivals_rejected", pl.arrivalsRejected).
		Float64("rejection_ratio", ratio).
		Msg("CONWIP admission rejecting a majority of arrivals")
}

// UpdateParameters adjusts a station's service-time parameters between runs.
// Per the concurrency model, the simulation core does not guard against
// calling this mid-run — callers are expected to only do so between Run
// calls, or to treat a mid-run call as a deliberate intervention.
func (pl *ProductionLine) UpdateParameters(stationID int, mean, cv *float64) error {
	if stationID < 0 || stationID >= len(pl.stations) {
		return errors.Errorf("line: station_id %d out of range [0,%d)", stationID, len(pl.stations))
	}
	st := pl.stations[stationID]
	if mean != nil {
		if *mean <= 0 {
			return errors.Errorf("line: mean_processing_time must be > 0, got %v", *mean)
		}
		st.MeanProcessingTime = *mean
	}
	if cv != nil {
		if *cv < 0 {
			return errors.Errorf("line: cv_processing must be >= 0, got %v", *cv)
		}
		st.CVProcessing = *cv
	}
	return nil
}

// Reset returns the line to its just-constructed state: zero clock, empty
// queues, zero WIP, all stations Idle. A new RunID is not assigned — Reset
// restarts the same logical run, it does not start a new one. The sampler
// is not reseeded: it continues its sequence from where the last run left
// it.
func (pl *ProductionLine) Reset() {
	pl.sim.Reset()
	for _, st := range pl.stations {
		st.Reset()
	}
	pl.systemWIP = 0
	pl.entityCounter = 0
	pl.arrivalTime = make(map[uint64]float64)
	pl.completionTime = make(map[uint64]float64)
	pl.completedJobs = nil
	pl.arrivalsGenerated = 0
	pl.arrivalsRejected = 0
}

func defaultStationName(i int) string {
	return "station-" + strconv.Itoa(i)
}
