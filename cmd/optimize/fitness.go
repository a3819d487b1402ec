package main

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/miasma/config"
	"github.com/pthm-cable/miasma/game"
	"github.com/pthm-cable/miasma/systems"
	"github.com/pthm-cable/miasma/telemetry"
)

// Targets describe the steady state the search aims for.
type Targets struct {
	Fill     float64 // mean live wisps as a fraction of max_particles
	Coverage float64 // fraction of cells above the coverage threshold
}

// FitnessEvaluator runs headless simulations and scores them.
type FitnessEvaluator struct {
	params      *ParamVector
	maxTicks    int32
	seeds       []int64
	baseConfig  *config.Config
	layout      *systems.HouseLayout
	targets     Targets
	statsWindow float64

	mu          sync.Mutex
	lastSummary runSummary
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks int32, seeds []int64, baseCfg *config.Config, layout *systems.HouseLayout, targets Targets) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		maxTicks:    maxTicks,
		seeds:       seeds,
		baseConfig:  baseCfg,
		layout:      layout,
		targets:     targets,
		statsWindow: 5.0,
	}
}

// LastSummary returns the averaged summary of the most recent evaluation.
func (fe *FitnessEvaluator) LastSummary() runSummary {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastSummary
}

// Windows skipped while the field fills from empty.
const warmupWindows = 4

// runSummary holds the steady-state measures of one run.
type runSummary struct {
	fill       float64 // mean live wisps / max_particles
	coverage   float64 // mean coverage fraction
	pressureCV float64 // coefficient of variation of total pressure
	valid      bool
}

// Evaluate computes fitness for a parameter vector (lower = better).
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	results := make([]runSummary, len(fe.seeds))
	var wg sync.WaitGroup

	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			results[idx] = fe.runSimulation(x, s)
		}(i, seed)
	}
	wg.Wait()

	var total float64
	var avg runSummary
	for _, r := range results {
		total += fe.computeFitness(r)
		avg.fill += r.fill
		avg.coverage += r.coverage
		avg.pressureCV += r.pressureCV
	}
	n := float64(len(fe.seeds))
	avg.fill /= n
	avg.coverage /= n
	avg.pressureCV /= n
	avg.valid = true

	fe.mu.Lock()
	fe.lastSummary = avg
	fe.mu.Unlock()

	return total / n
}

// runSimulation executes a single headless run and summarises its windows.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed int64) runSummary {
	cfg := *fe.baseConfig
	fe.params.ApplyToConfig(&cfg, x)

	var windows []telemetry.FieldStats
	g, err := game.NewGameWithOptions(game.Options{
		Seed:           seed,
		StatsWindowSec: fe.statsWindow,
		Config:         &cfg,
		StatsCallback: func(s telemetry.FieldStats) {
			windows = append(windows, s)
		},
	})
	if err != nil {
		return runSummary{}
	}
	defer g.Unload()

	if err := g.LoadHouse(fe.layout); err != nil {
		return runSummary{}
	}
	for g.Tick() < fe.maxTicks {
		g.Step()
	}

	return summarize(windows, cfg.Spawner.MaxParticles)
}

// summarize reduces post-warmup windows to the steady-state measures.
func summarize(windows []telemetry.FieldStats, maxParticles int) runSummary {
	if len(windows) <= warmupWindows || maxParticles <= 0 {
		return runSummary{}
	}
	steady := windows[warmupWindows:]

	fill := make([]float64, len(steady))
	coverage := make([]float64, len(steady))
	pressure := make([]float64, len(steady))
	for i, w := range steady {
		fill[i] = float64(w.LiveWisps) / float64(maxParticles)
		coverage[i] = w.CoverageFrac
		pressure[i] = w.TotalPressure
	}

	var cv float64
	if mean := stat.Mean(pressure, nil); mean > 0 && len(pressure) > 1 {
		cv = stat.StdDev(pressure, nil) / mean
	}
	return runSummary{
		fill:       stat.Mean(fill, nil),
		coverage:   stat.Mean(coverage, nil),
		pressureCV: cv,
		valid:      true,
	}
}

// Fitness weights.
const (
	weightFill      = 1.0
	weightCoverage  = 1.0
	weightStability = 0.5
	invalidFitness  = 10.0
)

// computeFitness scores a run by squared distance from the targets plus a
// penalty for a pressure total that keeps swinging.
func (fe *FitnessEvaluator) computeFitness(r runSummary) float64 {
	if !r.valid {
		return invalidFitness
	}
	df := r.fill - fe.targets.Fill
	dc := r.coverage - fe.targets.Coverage
	return weightFill*df*df + weightCoverage*dc*dc + weightStability*math.Min(r.pressureCV, 1)
}
