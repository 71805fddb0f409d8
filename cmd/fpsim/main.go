// Command fpsim is a thin harness over the factoryphysics-sim library: it
// loads run parameters from the environment, constructs a production line,
// runs it once, and logs the resulting statistics. The simulation core
// itself is a library — this binary exists only to exercise it end to end.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/sebastiankruger/factoryphysics-sim/internal/estimator"
	"github.com/sebastiankruger/factoryphysics-sim/internal/fpsim/config"
	"github.com/sebastiankruger/factoryphysics-sim/internal/fpsim/line"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("fpsim: unrecovered panic")
			os.Exit(1)
		}
	}()

	cfg := config.Load()
	log.Info().
		Int64("seed", cfg.Seed).
		Int("num_stations", cfg.NumStations).
		Int("conwip_level", cfg.ConwipLevel).
		Float64("arrival_rate", cfg.ArrivalRate).
		Dur("run_duration", cfg.RunDuration).
		Dur("warmup_duration", cfg.WarmupDuration).
		Msg("fpsim: loaded configuration")

	lineCfg := lineConfigFromHarness(cfg)

	pl, err := line.New(lineCfg)
	if err != nil {
		log.Fatal().Err(err).Msg("fpsim: failed to construct production line")
	}

	stats := pl.Run(cfg.RunDuration.Seconds(), cfg.WarmupDuration.Seconds())

	log.Info().
		Str("run_id", stats.RunID.String()).
		Float64("throughput", stats.Throughput).
		Float64("avg_cycle_time", stats.AvgCycleTime).
		Float64("avg_wip", stats.AvgWIP).
		Uint64("total_completed", stats.TotalCompleted).
		Uint64("arrivals_generated", stats.ArrivalsGenerated).
		Uint64("arrivals_rejected", stats.ArrivalsRejected).
		Msg("fpsim: run complete")

	for _, ss := range stats.StationStats {
		log.Info().
			Int("station_id", ss.StationID).
			Str("name", ss.Name).
			Float64("utilization", ss.Utilization).
			Uint64("total_processed", ss.TotalProcessed).
			Float64("avg_processing_time", ss.AvgProcessingTime).
			Msg("fpsim: station statistics")
	}

	if cfg.NumStations == 1 {
		u := estimator.Utilization(cfg.ArrivalRate, 1.0/cfg.MeanProcessingTime)
		predicted := estimator.CycleTime(cfg.MeanProcessingTime, u, cfg.CVArrival, cfg.CVProcessing)
		fmt.Fprintf(os.Stderr,
			"Kingman estimate for this single-station configuration: %.4f (simulated: %.4f)\n",
			predicted, stats.AvgCycleTime,
		)
	}
}

func lineConfigFromHarness(cfg config.Config) line.Config {
	means := make([]float64, cfg.NumStations)
	cvs := make([]float64, cfg.NumStations)
	for i := range means {
		means[i] = cfg.MeanProcessingTime
		cvs[i] = cfg.CVProcessing
	}

	return line.Config{
		NumStations:         cfg.NumStations,
		ConwipLevel:         cfg.ConwipLevel,
		MeanProcessingTimes: means,
		CVProcessing:        cvs,
		ArrivalRate:         cfg.ArrivalRate,
		CVArrival:           cfg.CVArrival,
		Seed:                cfg.Seed,
	}
}
