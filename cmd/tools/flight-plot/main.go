// Command flight-plot renders a kicked ball's flight to PNG: height over
// time and the ground track with hop touchdowns. With -fit it also
// samples the flight through two ceiling cameras, runs the kick solver on
// the noisy sightings and overlays the fitted flight.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/banshee-data/kickoff/internal/config"
	"github.com/banshee-data/kickoff/internal/monitoring"
	"github.com/banshee-data/kickoff/internal/physics/ballflight"
	"github.com/banshee-data/kickoff/internal/physics/kicksolver"
	"github.com/banshee-data/kickoff/internal/version"
)

var (
	configFile = flag.String("config", "", "Path to tuning JSON (defaults built in)")
	kickFlag   = flag.String("kick", "0,0,0", "Kick position x,y,z in mm")
	velFlag    = flag.String("vel", "3000,1000,2500", "Kick velocity vx,vy,vz in mm/s")
	step       = flag.Duration("step", 5*time.Millisecond, "Sampling interval")
	maxTime    = flag.Duration("max", 10*time.Second, "Longest flight to plot")
	outDir     = flag.String("out", "plots", "Output directory")
	fit        = flag.Bool("fit", false, "Fit synthetic camera sightings and overlay the result")
	samples    = flag.Int("samples", 20, "Sightings handed to the kick solver with -fit")
	noise      = flag.Float64("noise", 0.5, "Sighting noise standard deviation in mm")
	seed       = flag.Int64("seed", 1, "Noise seed")
	logLevel   = flag.String("log-level", "info", "Log level: debug, info, warn, error")
	showVer    = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Parse()
	if *showVer {
		fmt.Println(version.String())
		return
	}
	log := newLogger(*logLevel)
	log.Debug().Str("version", version.Version).Str("git_sha", version.GitSHA).Msg("starting")
	monitoring.SetLogger(func(format string, v ...interface{}) {
		log.Debug().Msgf(format, v...)
	})

	if err := run(log); err != nil {
		log.Error().Err(err).Msg("flight-plot failed")
		os.Exit(1)
	}
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		Level(lvl).With().Timestamp().Logger()
}

func run(log zerolog.Logger) error {
	tuning := config.EmptyTuningConfig()
	if *configFile != "" {
		var err error
		if tuning, err = config.LoadTuningConfig(*configFile); err != nil {
			return err
		}
	}
	params := ballflight.ParamsFromTuning(tuning)

	kickPos, err := parseVec(*kickFlag)
	if err != nil {
		return fmt.Errorf("-kick: %w", err)
	}
	kickVel, err := parseVec(*velFlag)
	if err != nil {
		return fmt.Errorf("-vel: %w", err)
	}

	truth := ballflight.NewState(kickPos, kickVel, 0, params)
	series := []flightSeries{sampleFlight("true", truth, step.Seconds(), maxTime.Seconds())}
	log.Info().
		Str("id", truth.ID.String()).
		Int("hops", truth.Trajectory().HopCount()).
		Float64("rest_s", truth.Trajectory().RestTime()).
		Msg("flight computed")

	var sightings []kicksolver.Observation
	if *fit {
		rng := rand.New(rand.NewSource(*seed))
		sightings = observe(truth, cameras, *samples, 0.01, *noise, rng)
		solver := kicksolver.NewSolver(kicksolver.ConfigFromTuning(tuning), nil)
		f, err := solver.Solve(kickPos, sightings, cameras)
		if err != nil {
			log.Warn().Err(err).Msg("kick fit rejected")
		} else {
			log.Info().
				Floats64("velocity", []float64{f.Velocity.X, f.Velocity.Y, f.Velocity.Z}).
				Float64("offset_s", f.Offset).
				Float64("rms_mm", f.RMS).
				Int("iterations", f.Iterations).
				Msg("kick fitted")
			series = append(series, sampleFlight("fitted", f.FlightState(params), step.Seconds(), maxTime.Seconds()))
		}
	}

	if err := os.MkdirAll(*outDir, 0755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}
	files, err := render(*outDir, series, sightings)
	if err != nil {
		return err
	}
	for _, f := range files {
		log.Info().Str("file", filepath.Clean(f)).Msg("plot written")
	}
	return nil
}

// parseVec parses "x,y,z".
func parseVec(s string) (r3.Vec, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return r3.Vec{}, fmt.Errorf("want x,y,z, got %q", s)
	}
	var v [3]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return r3.Vec{}, fmt.Errorf("invalid float '%s': %w", p, err)
		}
		v[i] = f
	}
	return r3.Vec{X: v[0], Y: v[1], Z: v[2]}, nil
}
