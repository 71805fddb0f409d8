package line_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sebastiankruger/factoryphysics-sim/internal/estimator"
	"github.com/sebastiankruger/factoryphysics-sim/internal/fpsim/line"
)

func TestValidateRejectsInvalidParameters(t *testing.T) {
	tests := []struct {
		name string
		cfg  line.Config
	}{
		{"zero stations", line.Config{NumStations: 0, ConwipLevel: 1, MeanProcessingTimes: nil, CVProcessing: nil, ArrivalRate: 1}},
		{"zero conwip", line.Config{NumStations: 1, ConwipLevel: 0, MeanProcessingTimes: []float64{1}, CVProcessing: []float64{0}, ArrivalRate: 1}},
		{"mismatched mean length", line.Config{NumStations: 2, ConwipLevel: 1, MeanProcessingTimes: []float64{1}, CVProcessing: []float64{0, 0}, ArrivalRate: 1}},
		{"mismatched cv length", line.Config{NumStations: 2, ConwipLevel: 1, MeanProcessingTimes: []float64{1, 1}, CVProcessing: []float64{0}, ArrivalRate: 1}},
		{"non-positive mean", line.Config{NumStations: 1, ConwipLevel: 1, MeanProcessingTimes: []float64{0}, CVProcessing: []float64{0}, ArrivalRate: 1}},
		{"negative cv processing", line.Config{NumStations: 1, ConwipLevel: 1, MeanProcessingTimes: []float64{1}, CVProcessing: []float64{-1}, ArrivalRate: 1}},
		{"non-positive arrival rate", line.Config{NumStations: 1, ConwipLevel: 1, MeanProcessingTimes: []float64{1}, CVProcessing: []float64{0}, ArrivalRate: 0}},
		{"negative cv arrival", line.Config{NumStations: 1, ConwipLevel: 1, MeanProcessingTimes: []float64{1}, CVProcessing: []float64{0}, ArrivalRate: 1, CVArrival: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := line.New(tt.cfg)
			assert.Error(t, err)
		})
	}
}

func TestScenarioDeterministicSerialLineBottleneckLimited(t *testing.T) {
	pl, err := line.New(line.Config{
		NumStations:         3,
		ConwipLevel:         1,
		MeanProcessingTimes: []float64{1, 1, 1},
		CVProcessing:        []float64{0, 0, 0},
		ArrivalRate:         10,
		CVArrival:           0,
		Seed:                1,
	})
	require.NoError(t, err)

	stats := pl.Run(1000, 10)

	assert.InDelta(t, 1.0/3.0, stats.Throughput, 0.01)
	assert.InDelta(t, 3.0, stats.AvgCycleTime, 1e-9)
	// AvgWIP is throughput times the 3-unit cycle time, so over a finite
	// window it sits just under 1 rather than at exactly 1.
	assert.InDelta(t, 3.0*stats.Throughput, stats.AvgWIP, 1e-9)
}

func TestScenarioMM1MatchesKingmanApproximation(t *testing.T) {
	pl, err := line.New(line.Config{
		NumStations:         1,
		ConwipLevel:         1_000_000,
		MeanProcessingTimes: []float64{2},
		CVProcessing:        []float64{1},
		ArrivalRate:         0.4,
		CVArrival:           1,
		Seed:                7,
	})
	require.NoError(t, err)

	stats := pl.Run(1_000_000, 10_000)

	want := estimator.CycleTime(2, 0.8, 1, 1)
	assert.InDelta(t, want, stats.AvgCycleTime, want*0.05)
}

func TestScenarioUtilizationCeilingBottleneckLimitsThroughput(t *testing.T) {
	pl, err := line.New(line.Config{
		NumStations:         2,
		ConwipLevel:         50,
		MeanProcessingTimes: []float64{1, 0.5},
		CVProcessing:        []float64{1, 1},
		ArrivalRate:         10,
		CVArrival:           1,
		Seed:                3,
	})
	require.NoError(t, err)

	stats := pl.Run(5000, 100)

	assert.LessOrEqual(t, stats.Throughput, 1.0+1e-6)
}

func TestScenarioCONWIPClampNeverExceeded(t *testing.T) {
	pl, err := line.New(line.Config{
		NumStations:         4,
		ConwipLevel:         2,
		MeanProcessingTimes: []float64{1, 1, 1, 1},
		CVProcessing:        []float64{0.5, 0.5, 0.5, 0.5},
		ArrivalRate:         5,
		CVArrival:           1,
		Seed:                11,
	})
	require.NoError(t, err)

	stats := pl.Run(500, 0)

	assert.LessOrEqual(t, int(stats.TotalCompleted), 10000) // sanity, not a tight bound
	assert.LessOrEqual(t, pl.SystemWIP(), 2)
	assert.GreaterOrEqual(t, pl.SystemWIP(), 0)
}

func TestScenarioReproducibilityWithSameSeed(t *testing.T) {
	cfg := line.Config{
		NumStations:         3,
		ConwipLevel:         5,
		MeanProcessingTimes: []float64{1, 1.2, 0.8},
		CVProcessing:        []float64{0.5, 1, 0.7},
		ArrivalRate:         0.6,
		CVArrival:           1,
		Seed:                42,
	}

	plA, err := line.New(cfg)
	require.NoError(t, err)
	statsA := plA.Run(2000, 100)

	plB, err := line.New(cfg)
	require.NoError(t, err)
	statsB := plB.Run(2000, 100)

	assert.Equal(t, statsA.Throughput, statsB.Throughput)
	assert.Equal(t, statsA.AvgCycleTime, statsB.AvgCycleTime)
	assert.Equal(t, statsA.AvgWIP, statsB.AvgWIP)
	assert.Equal(t, statsA.TotalCompleted, statsB.TotalCompleted)
}

func TestScenarioLittlesLawRoundTrip(t *testing.T) {
	pl, err := line.New(line.Config{
		NumStations:         2,
		ConwipLevel:         10,
		MeanProcessingTimes: []float64{1, 1},
		CVProcessing:        []float64{1, 1},
		ArrivalRate:         0.5,
		CVArrival:           1,
		Seed:                5,
	})
	require.NoError(t, err)

	stats := pl.Run(5000, 200)

	assert.InDelta(t, stats.AvgWIP, stats.Throughput*stats.AvgCycleTime, 1e-9)
}

func TestCVProcessingZeroYieldsDeterministicServiceTimes(t *testing.T) {
	pl, err := line.New(line.Config{
		NumStations:         1,
		ConwipLevel:         1,
		MeanProcessingTimes: []float64{2.5},
		CVProcessing:        []float64{0},
		ArrivalRate:         10,
		CVArrival:           0,
		Seed:                9,
	})
	require.NoError(t, err)

	stats := pl.Run(100, 5)

	assert.InDelta(t, 2.5, stats.AvgCycleTime, 1e-9)
}

func TestConwipLevelOneForcesStrictSerialFlow(t *testing.T) {
	pl, err := line.New(line.Config{
		NumStations:         2,
		ConwipLevel:         1,
		MeanProcessingTimes: []float64{1, 1},
		CVProcessing:        []float64{0.3, 0.3},
		ArrivalRate:         5,
		CVArrival:           1,
		Seed:                13,
	})
	require.NoError(t, err)

	stats := pl.Run(200, 0)
	assert.LessOrEqual(t, stats.AvgWIP, 1.0+1e-9)
}

func TestUpdateParametersValidatesStationIDAndValues(t *testing.T) {
	pl, err := line.New(line.Config{
		NumStations:         1,
		ConwipLevel:         1,
		MeanProcessingTimes: []float64{1},
		CVProcessing:        []float64{0},
		ArrivalRate:         1,
	})
	require.NoError(t, err)

	badMean := -1.0
	err = pl.UpdateParameters(0, &badMean, nil)
	assert.Error(t, err)

	err = pl.UpdateParameters(5, nil, nil)
	assert.Error(t, err)

	newMean := 3.0
	err = pl.UpdateParameters(0, &newMean, nil)
	assert.NoError(t, err)
}

func TestResetReturnsLineToInitialState(t *testing.T) {
	pl, err := line.New(line.Config{
		NumStations:         1,
		ConwipLevel:         2,
		MeanProcessingTimes: []float64{1},
		CVProcessing:        []float64{0.5},
		ArrivalRate:         1,
		CVArrival:           1,
		Seed:                1,
	})
	require.NoError(t, err)

	pl.Run(100, 0)
	pl.Reset()

	assert.Equal(t, 0, pl.SystemWIP())
	assert.Equal(t, 0.0, pl.Clock())
}

func TestRunIDStableAcrossStatisticsOfSameLine(t *testing.T) {
	pl, err := line.New(line.Config{
		NumStations:         1,
		ConwipLevel:         1,
		MeanProcessingTimes: []float64{1},
		CVProcessing:        []float64{0},
		ArrivalRate:         1,
	})
	require.NoError(t, err)

	stats := pl.Run(10, 0)
	assert.Equal(t, pl.RunID(), stats.RunID)
	assert.NotEqual(t, stats.RunID.String(), "")
}

func TestSaturatedConwipRejectsArrivalsBoundedByGenerated(t *testing.T) {
	pl, err := line.New(line.Config{
		NumStations:         1,
		ConwipLevel:         1,
		MeanProcessingTimes: []float64{5},
		CVProcessing:        []float64{0.5},
		ArrivalRate:         10, // heavily saturating against a tight CONWIP
		CVArrival:           1,
		Seed:                2,
	})
	require.NoError(t, err)

	stats := pl.Run(100, 0)
	assert.Greater(t, stats.ArrivalsRejected, uint64(0))
	assert.LessOrEqual(t, stats.ArrivalsRejected, stats.ArrivalsGenerated)
}

func TestCompletionNeverPrecedesArrival(t *testing.T) {
	pl, err := line.New(line.Config{
		NumStations:         3,
		ConwipLevel:         4,
		MeanProcessingTimes: []float64{1, 1, 1},
		CVProcessing:        []float64{0.6, 0.6, 0.6},
		ArrivalRate:         1,
		CVArrival:           1,
		Seed:                21,
	})
	require.NoError(t, err)

	stats := pl.Run(2000, 0)
	require.Greater(t, stats.TotalCompleted, uint64(0))
	assert.False(t, math.IsNaN(stats.AvgCycleTime))
	assert.GreaterOrEqual(t, stats.AvgCycleTime, 0.0)
}
