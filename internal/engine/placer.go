package engine

import (
	"fmt"
	"sort"

	"github.com/piwi3910/floorplan/internal/model"
)

// Placer produces the first feasible layout. Implementations commit every
// origin through Configuration.TryMove so the non-overlap and containment
// invariants hold regardless of strategy.
type Placer interface {
	Name() string
	Place(cfg *model.Configuration, bounds model.CanvasBounds) error
}

// NewPlacer returns the placer registered under kind.
func NewPlacer(kind model.PlacerKind) (Placer, error) {
	switch kind {
	case model.PlacerGrid, "":
		return GridPlacer{}, nil
	case model.PlacerGuillotine:
		return GuillotinePlacer{}, nil
	default:
		return nil, fmt.Errorf("%w: unknown placer %q", model.ErrInvalidConfig, kind)
	}
}

// PlaceInitial copies tiles into a new configuration, sizes the canvas and
// runs the requested placer. On failure the partial configuration is still
// returned alongside the error.
func PlaceInitial(tiles []model.Tile, kind model.PlacerKind) (model.Configuration, model.CanvasBounds, error) {
	cfg := model.NewConfiguration(tiles)
	for i := range cfg.Tiles {
		cfg.Tiles[i].Placed = false
	}
	bounds := model.ComputeCanvasBounds(cfg.Tiles)

	placer, err := NewPlacer(kind)
	if err != nil {
		return cfg, bounds, err
	}
	if len(cfg.Tiles) == 0 {
		return cfg, bounds, fmt.Errorf("%w: no tiles to place", model.ErrInvalidConfig)
	}
	return cfg, bounds, placer.Place(&cfg, bounds)
}

// placementOrder returns tile indices sorted by area descending (largest
// first = less fragmentation). Ties keep input order.
func placementOrder(tiles []model.Tile) []int {
	order := make([]int, len(tiles))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return tiles[order[i]].Area() > tiles[order[j]].Area()
	})
	return order
}

func infeasible(cfg *model.Configuration, i int, bounds model.CanvasBounds) error {
	t := cfg.Tiles[i]
	return &model.PlacementError{
		TileID: t.ID,
		Index:  i,
		Width:  t.Width,
		Height: t.Height,
		Canvas: bounds,
	}
}

// GridPlacer scans candidate origins row by row (y ascending, then x
// ascending) and commits each tile at the first feasible one.
type GridPlacer struct{}

func (GridPlacer) Name() string { return string(model.PlacerGrid) }

func (GridPlacer) Place(cfg *model.Configuration, bounds model.CanvasBounds) error {
	for _, i := range placementOrder(cfg.Tiles) {
		if !firstFit(cfg, i, bounds) {
			return infeasible(cfg, i, bounds)
		}
	}
	return nil
}

// firstFit commits tile i at the first feasible origin in row-major order.
func firstFit(cfg *model.Configuration, i int, bounds model.CanvasBounds) bool {
	t := cfg.Tiles[i]
	for y := 0; y+t.Height <= bounds.Height; y++ {
		for x := 0; x+t.Width <= bounds.Width; x++ {
			if cfg.TryMove(i, x, y, bounds) {
				cfg.Tiles[i].Placed = true
				return true
			}
		}
	}
	return false
}
