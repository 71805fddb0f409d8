// Package config loads the harness's default run parameters from
// environment variables, in the same getEnvOrDefault style the teacher's
// own internal/config package uses. It never reaches into the simulation
// core — internal/fpsim/line.Config is built from explicit constructor
// arguments regardless of where those argument values originated.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the harness's default run parameters: enough to construct
// a single-line run from cmd/fpsim without requiring flags for the common
// case.
type Config struct {
	Seed               int64
	NumStations        int
	ConwipLevel        int
	MeanProcessingTime float64
	CVProcessing       float64
	ArrivalRate        float64
	CVArrival          float64
	RunDuration        time.Duration
	WarmupDuration     time.Duration
}

// Load reads FPSIM_* environment variables, falling back to defaults tuned
// for a quick, representative demo run (a 3-station line at moderate
// utilization) when unset.
func Load() Config {
	return Config{
		Seed:               getEnvAsInt64OrDefault("FPSIM_SEED", 1),
		NumStations:        getEnvAsIntOrDefault("FPSIM_NUM_STATIONS", 3),
		ConwipLevel:        getEnvAsIntOrDefault("FPSIM_CONWIP_LEVEL", 5),
		MeanProcessingTime: getEnvAsFloatOrDefault("FPSIM_MEAN_PROCESSING_TIME", 1.0),
		CVProcessing:       getEnvAsFloatOrDefault("FPSIM_CV_PROCESSING", 1.0),
		ArrivalRate:        getEnvAsFloatOrDefault("FPSIM_ARRIVAL_RATE", 0.8),
		CVArrival:          getEnvAsFloatOrDefault("FPSIM_CV_ARRIVAL", 1.0),
		RunDuration:        getDurationOrDefault("FPSIM_RUN_DURATION", 10_000*time.Second),
		WarmupDuration:     getDurationOrDefault("FPSIM_WARMUP_DURATION", 500*time.Second),
	}
}

func getEnvAsIntOrDefault(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getEnvAsInt64OrDefault(key string, def int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return def
	}
	return n
}

func getEnvAsFloatOrDefault(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func getDurationOrDefault(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
