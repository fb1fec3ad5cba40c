package engine

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/piwi3910/floorplan/internal/model"
)

// ProgressHook receives every convergence sample as it is recorded.
type ProgressHook func(p model.TracePoint)

// AnnealResult is the outcome of an annealing run. Best is always a valid
// layout, even when Run also returns an error.
type AnnealResult struct {
	Best        model.Configuration
	BestMetrics model.Metrics
	Stats       model.AnnealStats
	Trace       []model.TracePoint
}

// Annealer shrinks the bounding box of a feasible layout by simulated
// annealing over swap, relocate and flip moves.
type Annealer struct {
	Settings model.Settings
	Hook     ProgressHook

	rng *rand.Rand
	now func() time.Time
}

func NewAnnealer(settings model.Settings) *Annealer {
	seed := settings.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Annealer{
		Settings: settings,
		rng:      rand.New(rand.NewSource(seed)),
		now:      time.Now,
	}
}

// move is the outcome of one perturbation.
type move int

const (
	moveNone move = iota
	moveSwap
	moveRelocate
	moveFlipRelocate
)

// Run anneals cfg inside bounds. The input must be a complete, valid layout
// of at least two tiles; it is not modified.
//
// The loop ends when the temperature falls to StopTemperature, when
// MaxIterations or TimeLimit is reached, or when ctx is done. Cancellation
// and mid-run failures return the best layout found so far together with
// the error.
func (a *Annealer) Run(ctx context.Context, cfg model.Configuration, bounds model.CanvasBounds) (AnnealResult, error) {
	s := a.Settings
	if err := s.Validate(); err != nil {
		return AnnealResult{Best: cfg.Clone()}, err
	}
	if cfg.Len() < 2 {
		return AnnealResult{Best: cfg.Clone()}, fmt.Errorf("%w: got %d", model.ErrDegenerateInput, cfg.Len())
	}
	if err := cfg.Validate(bounds); err != nil {
		return AnnealResult{Best: cfg.Clone()}, err
	}

	start := a.now()
	current := cfg.Clone()
	currentMetrics, err := current.Evaluate()
	if err != nil {
		return AnnealResult{Best: current}, err
	}

	res := AnnealResult{
		Best:        current.Clone(),
		BestMetrics: currentMetrics,
	}
	temperature := s.InitialTemperature
	stats := &res.Stats

	finish := func(reason model.StopReason) {
		stats.StopReason = reason
		stats.FinalTemperature = temperature
		stats.Elapsed = a.now().Sub(start)
		a.sample(&res, stats.Iterations, temperature, currentMetrics.Area)
	}
	a.sample(&res, 0, temperature, currentMetrics.Area)

	for temperature > s.StopTemperature {
		if err := ctx.Err(); err != nil {
			finish(model.StopCancelled)
			return res, fmt.Errorf("annealing cancelled after %d iterations: %w", stats.Iterations, err)
		}
		if stats.Iterations >= s.MaxIterations {
			finish(model.StopIterationLimit)
			return res, nil
		}
		if s.TimeLimit > 0 && a.now().Sub(start) >= s.TimeLimit {
			finish(model.StopTimeLimit)
			return res, nil
		}

		trial := current.Clone()
		switch a.perturb(&trial, bounds) {
		case moveSwap:
			stats.Swaps++
		case moveRelocate:
			stats.Relocations++
		case moveFlipRelocate:
			stats.Relocations++
			stats.Flips++
		default:
			stats.NoOps++
		}
		stats.Iterations++

		trialMetrics, err := trial.Evaluate()
		if err != nil {
			finish(model.StopAborted)
			return res, fmt.Errorf("iteration %d: %w", stats.Iterations, err)
		}

		if a.accept(res.BestMetrics.Area, trialMetrics.Area, temperature) {
			stats.Accepted++
			current, currentMetrics = trial, trialMetrics
			temperature *= 1 - s.CoolingRate

			if currentMetrics.Area < res.BestMetrics.Area {
				stats.Improvements++
				res.Best = current.Clone()
				res.BestMetrics = currentMetrics
			}
		}

		if s.TraceEvery > 0 && stats.Iterations%s.TraceEvery == 0 {
			a.sample(&res, stats.Iterations, temperature, currentMetrics.Area)
		}
	}

	finish(model.StopCooled)
	return res, nil
}

// accept applies the Metropolis criterion against the best area seen so far.
// Strict improvements are always taken; anything else is taken with
// probability exp((best-trial)/T).
func (a *Annealer) accept(bestArea, trialArea int, temperature float64) bool {
	if trialArea < bestArea {
		return true
	}
	p := math.Exp(float64(bestArea-trialArea) / temperature)
	return a.rng.Float64() < p
}

// perturb applies one random move to cfg.
func (a *Annealer) perturb(cfg *model.Configuration, bounds model.CanvasBounds) move {
	if a.rng.Float64() < a.Settings.SwapProbability {
		ok, err := a.swapRandom(cfg, bounds)
		if err != nil || !ok {
			return moveNone
		}
		return moveSwap
	}
	return a.relocateRandom(cfg, a.rng.Intn(cfg.Len()), bounds)
}

// swapRandom exchanges the origins of two distinct random tiles, undoing the
// exchange if it breaks feasibility.
func (a *Annealer) swapRandom(cfg *model.Configuration, bounds model.CanvasBounds) (bool, error) {
	n := cfg.Len()
	if n < 2 {
		return false, fmt.Errorf("swap: %w", model.ErrDegenerateInput)
	}
	i := a.rng.Intn(n)
	j := a.rng.Intn(n - 1)
	if j >= i {
		j++
	}
	return cfg.SwapOrigins(i, j, bounds), nil
}

// relocateRandom moves tile i to a uniformly chosen feasible origin other
// than its current one. When there is none, the tile is flipped and the
// search repeated once, this time allowing the current origin; if that fails
// too the flip is undone.
func (a *Annealer) relocateRandom(cfg *model.Configuration, i int, bounds model.CanvasBounds) move {
	t := cfg.Tiles[i]
	if spots := movedSpots(cfg.FreeSpots(i, bounds), t.X, t.Y); len(spots) > 0 {
		p := spots[a.rng.Intn(len(spots))]
		if cfg.TryMove(i, p.X, p.Y, bounds) {
			return moveRelocate
		}
		return moveNone
	}

	cfg.Tiles[i].Flip()
	if spots := cfg.FreeSpots(i, bounds); len(spots) > 0 {
		p := spots[a.rng.Intn(len(spots))]
		if cfg.TryMove(i, p.X, p.Y, bounds) {
			return moveFlipRelocate
		}
	}
	cfg.Tiles[i].Flip()
	return moveNone
}

// movedSpots drops the origin (x, y) from spots.
func movedSpots(spots []model.Point, x, y int) []model.Point {
	out := spots[:0]
	for _, p := range spots {
		if p.X != x || p.Y != y {
			out = append(out, p)
		}
	}
	return out
}

// sample appends a convergence point and notifies the hook. Duplicate
// samples for the same iteration are skipped.
func (a *Annealer) sample(res *AnnealResult, iteration int, temperature float64, currentArea int) {
	if n := len(res.Trace); n > 0 && res.Trace[n-1].Iteration == iteration {
		return
	}
	p := model.TracePoint{
		Iteration:   iteration,
		Temperature: temperature,
		CurrentArea: currentArea,
		BestArea:    res.BestMetrics.Area,
	}
	res.Trace = append(res.Trace, p)
	if a.Hook != nil {
		a.Hook(p)
	}
}
