package main

import (
	"fmt"
	"math"
	"sync"

	"gonum.org/v1/gonum/spatial/r2"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/heroflow/config"
	"github.com/pthm-cable/heroflow/game"
	"github.com/pthm-cable/heroflow/renderer"
)

// Fitness weights.
const (
	ringBand        = 0.25 // Ring half-width as a fraction of the target radius
	swirlBonus      = 0.2  // Tangential motion adds up to this much on top of occupancy
	sampleEvery     = 10
	warmupFraction  = 0.25
	viewportPadding = 1.5 // Viewport edge as a multiple of the influence radius
)

// FitnessEvaluator runs headless simulations with a fixed pointer and scores
// how well agents settle into an orbit ring around it.
type FitnessEvaluator struct {
	params       *ParamVector
	frames       int
	seeds        []int64
	baseConfig   *config.Config
	targetRadius float64

	mu          sync.Mutex
	lastMetrics runMetrics // averaged over seeds from the most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, frames int, seeds []int64, baseCfg *config.Config, targetRadius float64) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:       params,
		frames:       frames,
		seeds:        seeds,
		baseConfig:   baseCfg,
		targetRadius: targetRadius,
	}
}

// runMetrics summarises one headless run after warmup.
type runMetrics struct {
	Occupancy float64 // Mean share of agents inside the ring band
	Swirl     float64 // Mean tangential share of velocity for agents inside the band
	Spread    float64 // Std dev of the ring occupancy across samples
}

func (m runMetrics) fitness() float64 {
	return -(m.Occupancy * (1 + swirlBonus*m.Swirl))
}

// LastMetrics returns the seed-averaged metrics of the most recent evaluation.
func (fe *FitnessEvaluator) LastMetrics() runMetrics {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastMetrics
}

// Evaluate computes fitness for a parameter vector (lower = better).
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	results := make([]runMetrics, len(fe.seeds))
	errs := make([]error, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			results[idx], errs[idx] = fe.runSimulation(x, s)
		}(i, seed)
	}
	wg.Wait()

	var avg runMetrics
	for i, r := range results {
		if errs[i] != nil {
			// An invalid parameter combination scores worst.
			return 0
		}
		avg.Occupancy += r.Occupancy
		avg.Swirl += r.Swirl
		avg.Spread += r.Spread
	}
	n := float64(len(results))
	avg.Occupancy /= n
	avg.Swirl /= n
	avg.Spread /= n

	fe.mu.Lock()
	fe.lastMetrics = avg
	fe.mu.Unlock()

	return avg.fitness()
}

// runSimulation executes one headless run with the pointer parked at the
// center of the viewport.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed int64) (runMetrics, error) {
	cfg := fe.baseConfig.Clone()
	fe.params.ApplyToConfig(cfg, x)
	if err := cfg.Validate(); err != nil {
		return runMetrics{}, err
	}

	sim, err := game.New(cfg, renderer.NopSurface{}, game.Options{Seed: seed})
	if err != nil {
		return runMetrics{}, fmt.Errorf("creating simulator: %w", err)
	}
	defer sim.Close()

	side := int(2 * viewportPadding * max(cfg.Field.Attract.InfluenceRadius, fe.targetRadius))
	sim.Setup(side, side)
	center := r2.Vec{X: float64(side) / 2, Y: float64(side) / 2}
	sim.PointerMove(center.X, center.Y)

	warmup := int(float64(fe.frames) * warmupFraction)
	var occupancy, swirl []float64
	for f := 0; f < fe.frames; f++ {
		sim.Frame()
		if f < warmup || f%sampleEvery != 0 {
			continue
		}
		occ, sw := ringSample(sim, center, fe.targetRadius)
		occupancy = append(occupancy, occ)
		swirl = append(swirl, sw)
	}
	if len(occupancy) == 0 {
		return runMetrics{}, nil
	}

	mean, std := stat.MeanStdDev(occupancy, nil)
	return runMetrics{
		Occupancy: mean,
		Swirl:     stat.Mean(swirl, nil),
		Spread:    std,
	}, nil
}

// ringSample returns the share of agents within the ring band around center
// and the mean tangential share of their velocity.
func ringSample(sim *game.Simulator, center r2.Vec, radius float64) (occupancy, swirl float64) {
	agents := sim.Agents()
	if len(agents) == 0 {
		return 0, 0
	}
	band := radius * ringBand
	var inside int
	var tangential float64
	for i := range agents {
		a := &agents[i]
		d := r2.Sub(a.Pos, center)
		dist := r2.Norm(d)
		if math.Abs(dist-radius) > band || dist == 0 {
			continue
		}
		inside++
		speed := a.Speed()
		if speed > 0 {
			radial := r2.Dot(a.Vel, d) / dist
			tangential += math.Sqrt(max(speed*speed-radial*radial, 0)) / speed
		}
	}
	if inside == 0 {
		return 0, 0
	}
	return float64(inside) / float64(len(agents)), tangential / float64(inside)
}
