// Package main provides CMA-ES tuning of the orbit attraction parameters:
// it searches for settings where agents settle into a ring around a parked
// pointer instead of collapsing onto it or drifting away.
//
// Usage: go run ./cmd/tune -preset orbit -output tune-out
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/heroflow/config"
)

// EvalRecord is one row of tune_log.csv.
type EvalRecord struct {
	Eval            int     `csv:"eval"`
	Fitness         float64 `csv:"fitness"`
	Occupancy       float64 `csv:"occupancy"`
	Swirl           float64 `csv:"swirl"`
	Spread          float64 `csv:"spread"`
	InfluenceRadius float64 `csv:"influence_radius"`
	Exponent        float64 `csv:"exponent"`
	Attract         float64 `csv:"attract"`
	Orbit           float64 `csv:"orbit"`
	Repel           float64 `csv:"repel"`
	Friction        float64 `csv:"friction"`
}

// formatDuration formats a duration as HH:MM:SS or MM:SS for shorter durations.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}

func main() {
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	preset := flag.String("preset", "orbit", "Preset to tune")
	frames := flag.Int("frames", 1200, "Frames per evaluation run")
	seeds := flag.Int("seeds", 3, "Number of seeds per evaluation")
	maxEvals := flag.Int("max-evals", 200, "Maximum number of evaluations")
	population := flag.Int("population", 0, "CMA-ES population size (0 = auto)")
	targetRadius := flag.Float64("target-radius", 0, "Ring radius to aim for (0 = preset orbit radius)")
	outputDir := flag.String("output", "", "Output directory for results")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	if *outputDir == "" {
		slog.Error("--output is required")
		os.Exit(1)
	}
	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		slog.Error("failed to create output directory", "error", err)
		os.Exit(1)
	}

	baseCfg, err := config.Load(*configPath, *preset)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if baseCfg.Field.Attract.Mode != config.AttractOrbit {
		slog.Warn("preset does not use orbit attraction; forcing it", "preset", *preset, "mode", baseCfg.Field.Attract.Mode)
		baseCfg.Field.Attract.Mode = config.AttractOrbit
	}
	// Tuning runs must not be skewed by adaptive quality or frame skipping.
	baseCfg.Quality.Enabled = false

	radius := *targetRadius
	if radius <= 0 {
		radius = baseCfg.Field.Attract.OrbitRadius
	}

	params := NewParamVector(baseCfg)
	evalSeeds := make([]int64, *seeds)
	for i := range evalSeeds {
		evalSeeds[i] = int64(i*1000 + 42)
	}
	evaluator := NewFitnessEvaluator(params, *frames, evalSeeds, baseCfg, radius)

	dim := params.Dim()
	initX := params.Normalize(params.DefaultVector())

	popSize := *population
	if popSize == 0 {
		popSize = 4 + int(3.0*float64(dim)/2.0)
	}
	method := &optimize.CmaEsChol{
		InitStepSize: 0.3,
		Population:   popSize,
	}
	settings := &optimize.Settings{
		FuncEvaluations: *maxEvals,
		Concurrent:      0,
	}

	logPath := filepath.Join(*outputDir, "tune_log.csv")
	logFile, err := os.Create(logPath)
	if err != nil {
		slog.Error("failed to create log file", "error", err)
		os.Exit(1)
	}
	defer logFile.Close()

	evalCount := 0
	bestFitness := 0.0
	var bestParams []float64
	startTime := time.Now()

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			raw := params.Denormalize(x)
			fitness := evaluator.Evaluate(raw)
			evalCount++

			clamped := params.Clamp(raw)
			if bestParams == nil || fitness < bestFitness {
				bestFitness = fitness
				bestParams = clamped
			}

			m := evaluator.LastMetrics()
			rec := []EvalRecord{{
				Eval: evalCount, Fitness: fitness,
				Occupancy: m.Occupancy, Swirl: m.Swirl, Spread: m.Spread,
				InfluenceRadius: clamped[0], Exponent: clamped[1], Attract: clamped[2],
				Orbit: clamped[3], Repel: clamped[4], Friction: clamped[5],
			}}
			writeRow := gocsv.MarshalWithoutHeaders
			if evalCount == 1 {
				writeRow = gocsv.Marshal
			}
			if err := writeRow(rec, logFile); err != nil {
				slog.Error("failed to write log row", "eval", evalCount, "error", err)
			}

			elapsed := time.Since(startTime)
			avgPerEval := elapsed / time.Duration(evalCount)
			remaining := time.Duration(*maxEvals-evalCount) * avgPerEval
			fmt.Printf("Eval %d/%d: ring=%.1f%% swirl=%.2f (best=%.3f) | elapsed: %s, ETA: %s\n",
				evalCount, *maxEvals, m.Occupancy*100, m.Swirl, -bestFitness,
				formatDuration(elapsed), formatDuration(remaining))

			return fitness
		},
	}

	fmt.Printf("Starting CMA-ES tuning with %d parameters, population=%d, max_evals=%d\n", dim, popSize, *maxEvals)
	fmt.Printf("Preset: %s, target radius: %.0f, seeds per evaluation: %d, frames per run: %d\n",
		*preset, radius, *seeds, *frames)

	result, err := optimize.Minimize(problem, initX, settings, method)
	if err != nil {
		slog.Info("optimization ended", "reason", err)
	}
	if bestParams == nil && result != nil {
		bestParams = params.Clamp(params.Denormalize(result.X))
	}
	if bestParams == nil {
		slog.Error("no evaluations completed")
		os.Exit(1)
	}

	fmt.Printf("\nTuning complete after %d evaluations in %s\n", evalCount, formatDuration(time.Since(startTime)))
	fmt.Printf("Best ring score: %.3f\n", -bestFitness)
	fmt.Println("\nBest parameters:")
	for i, spec := range params.Specs {
		fmt.Printf("  %s: %.6f\n", spec.Path, bestParams[i])
	}

	bestCfg := baseCfg.Clone()
	params.ApplyToConfig(bestCfg, bestParams)
	configOutPath := filepath.Join(*outputDir, "best_config.yaml")
	if err := bestCfg.WriteYAML(configOutPath); err != nil {
		slog.Error("failed to write best config", "error", err)
		os.Exit(1)
	}
	fmt.Printf("\nBest config saved to: %s\n", configOutPath)
}
