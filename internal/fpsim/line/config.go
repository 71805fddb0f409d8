package line

import (
	"github.com/pkg/errors"
)

// Config carries everything needed to construct a ProductionLine. Every
// field here is an explicit constructor argument — the simulation core
// never reaches into environment variables or files for its own parameters;
// that's the harness's job (see package config).
type Config struct {
	NumStations         int
	ConwipLevel         int
	MeanProcessingTimes []float64
	CVProcessing        []float64
	ArrivalRate         float64
	CVArrival           float64
	Seed                int64
	StationNames        []string // optional; defaults to "station-N" when nil
}

// Validate fails fast on any of the parameter classes the error taxonomy
// names: insufficient stations, a sub-one CONWIP level, non-positive
// processing times, negative CVs, a non-positive arrival rate, or a
// mismatched per-station slice length.
func (c Config) Validate() error {
	if c.NumStations < 1 {
		return errors.Errorf("line: num_stations must be >= 1, got %d", c.NumStations)
	}
	if c.ConwipLevel < 1 {
		return errors.Errorf("line: conwip_level must be >= 1, got %d", c.ConwipLevel)
	}
	if len(c.MeanProcessingTimes) != c.NumStations {
		return errors.Errorf("line: mean_processing_times has length %d, want %d", len(c.MeanProcessingTimes), c.NumStations)
	}
	if len(c.CVProcessing) != c.NumStations {
		return errors.Errorf("line: cv_processing has length %d, want %d", len(c.CVProcessing), c.NumStations)
	}
	for i, te := range c.MeanProcessingTimes {
		if te <= 0 {
			return errors.Errorf("line: station %d mean_processing_time must be > 0, got %v", i, te)
		}
	}
	for i, cv := range c.CVProcessing {
		if cv < 0 {
			return errors.Errorf("line: station %d cv_processing must be >= 0, got %v", i, cv)
		}
	}
	if c.ArrivalRate <= 0 {
		return errors.Errorf("line: arrival_rate must be > 0, got %v", c.ArrivalRate)
	}
	if c.CVArrival < 0 {
		return errors.Errorf("line: cv_arrival must be >= 0, got %v", c.CVArrival)
	}
	return nil
}
