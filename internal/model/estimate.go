package model

// AreaEstimate holds the bounds a layout's bounding-box area can be judged
// against before and after optimization.
type AreaEstimate struct {
	TileCount     int          `json:"tile_count"`
	TotalTileArea int          `json:"total_tile_area"` // Sum of all tile areas
	MaxLongSide   int          `json:"max_long_side"`   // Longest side of any tile
	MaxShortSide  int          `json:"max_short_side"`  // Largest short side of any tile
	LowerBound    int          `json:"lower_bound"`     // No feasible layout can be smaller
	Canvas        CanvasBounds `json:"canvas"`
}

// EstimateArea computes a lower bound on the bounding-box area. Every box
// holds the summed tile area, and since tiles may be flipped one side must
// reach the longest tile side while both sides reach the largest short side.
func EstimateArea(tiles []Tile) AreaEstimate {
	est := AreaEstimate{TileCount: len(tiles), Canvas: ComputeCanvasBounds(tiles)}
	for _, t := range tiles {
		est.TotalTileArea += t.Area()
		long, short := t.Width, t.Height
		if short > long {
			long, short = short, long
		}
		est.MaxLongSide = max(est.MaxLongSide, long)
		est.MaxShortSide = max(est.MaxShortSide, short)
	}
	est.LowerBound = max(est.TotalTileArea, est.MaxLongSide*est.MaxShortSide)
	return est
}

// Excess returns how far area lies above the lower bound, in percent.
func (e AreaEstimate) Excess(area int) float64 {
	if e.LowerBound == 0 {
		return 0
	}
	return float64(area-e.LowerBound) / float64(e.LowerBound) * 100.0
}
