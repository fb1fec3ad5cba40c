package engine

import (
	"context"
	"fmt"

	"github.com/piwi3910/floorplan/internal/model"
)

// ComparisonScenario defines a named set of settings to compare.
type ComparisonScenario struct {
	Name     string
	Settings model.Settings
}

// ComparisonResult holds the outcome and statistics of one scenario.
type ComparisonResult struct {
	Scenario       ComparisonScenario
	Canvas         model.CanvasBounds
	InitialMetrics model.Metrics
	Result         AnnealResult
	Err            error
}

// Improvement returns how much the bounding-box area shrank, in percent.
func (r ComparisonResult) Improvement() float64 {
	if r.InitialMetrics.Area == 0 {
		return 0
	}
	return float64(r.InitialMetrics.Area-r.Result.BestMetrics.Area) / float64(r.InitialMetrics.Area) * 100.0
}

// CompareScenarios places and anneals the same tiles once per scenario and
// returns the results in scenario order. A failing scenario records its error
// and does not stop the others; cancellation of ctx does.
func CompareScenarios(ctx context.Context, scenarios []ComparisonScenario, tiles []model.Tile) []ComparisonResult {
	results := make([]ComparisonResult, 0, len(scenarios))

	for _, scenario := range scenarios {
		if ctx.Err() != nil {
			break
		}
		r := ComparisonResult{Scenario: scenario}

		cfg, bounds, err := PlaceInitial(tiles, scenario.Settings.Placer)
		r.Canvas = bounds
		if err != nil {
			r.Err = err
			results = append(results, r)
			continue
		}
		if r.InitialMetrics, err = cfg.Evaluate(); err != nil {
			r.Err = err
			results = append(results, r)
			continue
		}

		r.Result, r.Err = NewAnnealer(scenario.Settings).Run(ctx, cfg, bounds)
		results = append(results, r)
	}

	return results
}

// BuildDefaultScenarios generates what-if variants of the base settings:
// the other placer, a faster and a slower cooling schedule.
func BuildDefaultScenarios(base model.Settings) []ComparisonScenario {
	scenarios := []ComparisonScenario{
		{Name: "Current Settings", Settings: base},
	}

	altPlacer := base
	if base.Placer == model.PlacerGuillotine {
		altPlacer.Placer = model.PlacerGrid
		scenarios = append(scenarios, ComparisonScenario{Name: "Grid Placer", Settings: altPlacer})
	} else {
		altPlacer.Placer = model.PlacerGuillotine
		scenarios = append(scenarios, ComparisonScenario{Name: "Guillotine Placer", Settings: altPlacer})
	}

	if fast := base.CoolingRate * 2; fast < 1 {
		s := base
		s.CoolingRate = fast
		scenarios = append(scenarios, ComparisonScenario{
			Name:     fmt.Sprintf("Fast Cooling (%.4f)", fast),
			Settings: s,
		})
	}

	slow := base
	slow.CoolingRate = base.CoolingRate / 2
	scenarios = append(scenarios, ComparisonScenario{
		Name:     fmt.Sprintf("Slow Cooling (%.4f)", slow.CoolingRate),
		Settings: slow,
	})

	return scenarios
}
