package line

import "github.com/google/uuid"

// StationStat is one station's entry in a Statistics record.
type StationStat struct {
	StationID         int
	Name              string
	Utilization       float64
	TotalProcessed    uint64
	AvgProcessingTime float64
}

// Statistics is the record returned by Run: throughput, cycle time, and WIP
// derived over jobs that arrived at or after the warmup cutoff, plus
// per-station utilization and processing counts. RunID and the
// Arrivals{Generated,Rejected} fields are additive instrumentation beyond
// the original statistics record — they make admission-rejection pressure
// and run identity visible without the caller re-deriving them.
type Statistics struct {
	RunID             uuid.UUID
	Throughput        float64
	AvgCycleTime      float64
	AvgWIP            float64
	TotalCompleted    uint64
	SimulationTime    float64
	ArrivalsGenerated uint64
	ArrivalsRejected  uint64
	StationStats      []StationStat
}

// getStatistics flushes station counters to the current clock, derives
// cycle times for jobs that arrived at or after warmup, and aggregates
// throughput/cycle-time/WIP via Little's Law.
func (pl *ProductionLine) getStatistics(warmup float64) Statistics {
	clock := pl.sim.Clock()

	var cycleTimes []float64
	for _, j := range pl.completedJobs {
		at := pl.arrivalTime[j]
		if at < warmup {
			continue
		}
		cycleTimes = append(cycleTimes, pl.completionTime[j]-at)
	}

	observedDuration := clock - warmup
	throughput := 0.0
	if observedDuration > 0 {
		throughput = float64(len(cycleTimes)) / observedDuration
	}

	avgCycleTime := 0.0
	if len(cycleTimes) > 0 {
		sum := 0.0
		for _, ct := range cycleTimes {
			sum += ct
		}
		avgCycleTime = sum / float64(len(cycleTimes))
	}

	avgWIP := throughput * avgCycleTime

	stationStats := make([]StationStat, len(pl.stations))
	for i, st := range pl.stations {
		stationStats[i] = StationStat{
			StationID:         st.ID,
			Name:              st.Name,
			Utilization:       st.Utilization(clock),
			TotalProcessed:    st.TotalProcessed(),
			AvgProcessingTime: st.AvgProcessingTime(clock),
		}
	}

	return Statistics{
		RunID:             pl.runID,
		Throughput:        throughput,
		AvgCycleTime:      avgCycleTime,
		AvgWIP:            avgWIP,
		TotalCompleted:    uint64(len(pl.completedJobs)),
		SimulationTime:    clock,
		ArrivalsGenerated: pl.arrivalsGenerated,
		ArrivalsRejected:  pl.arrivalsRejected,
		StationStats:      stationStats,
	}
}
