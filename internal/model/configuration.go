package model

import "fmt"

// Configuration is one complete layout: an ordered set of tiles owned by a
// single caller. Trial and best snapshots are independent clones.
type Configuration struct {
	Tiles []Tile `json:"tiles"`
}

// NewConfiguration copies tiles into a fresh configuration.
func NewConfiguration(tiles []Tile) Configuration {
	cp := make([]Tile, len(tiles))
	copy(cp, tiles)
	return Configuration{Tiles: cp}
}

// Clone returns a deep copy.
func (c Configuration) Clone() Configuration {
	return NewConfiguration(c.Tiles)
}

// Len returns the number of tiles.
func (c Configuration) Len() int {
	return len(c.Tiles)
}

// fitsAt reports whether tile i with its current footprint could sit at
// (x, y) without leaving the canvas or overlapping another placed tile.
func (c Configuration) fitsAt(i, x, y int, b CanvasBounds) bool {
	moved := c.Tiles[i]
	moved.X, moved.Y = x, y
	if !b.Contains(moved) {
		return false
	}
	for j, other := range c.Tiles {
		if j == i || !other.Placed {
			continue
		}
		if Overlaps(moved, other) {
			return false
		}
	}
	return true
}

// TryMove is the feasibility/placement primitive. It assigns (x, y) to tile
// i, checks containment and overlap against every other placed tile, and
// either keeps the new origin (true) or restores the previous one (false).
// The Placed flag is left to the caller.
func (c *Configuration) TryMove(i, x, y int, b CanvasBounds) bool {
	t := &c.Tiles[i]
	savedX, savedY := t.X, t.Y
	t.X, t.Y = x, y
	if !c.fitsAt(i, x, y, b) {
		t.X, t.Y = savedX, savedY
		return false
	}
	return true
}

// FreeSpots lists every origin, in row-major order, at which TryMove would
// succeed for tile i. The configuration is not modified.
func (c Configuration) FreeSpots(i int, b CanvasBounds) []Point {
	t := c.Tiles[i]
	var spots []Point
	for y := 0; y+t.Height <= b.Height; y++ {
		for x := 0; x+t.Width <= b.Width; x++ {
			if c.fitsAt(i, x, y, b) {
				spots = append(spots, Point{X: x, Y: y})
			}
		}
	}
	return spots
}

// collides reports whether placed tile i overlaps any other placed tile or
// leaves the canvas.
func (c Configuration) collides(i int, b CanvasBounds) bool {
	return !c.fitsAt(i, c.Tiles[i].X, c.Tiles[i].Y, b)
}

// SwapOrigins exchanges the origins of tiles i and j. If either tile would
// then leave the canvas or overlap another placed tile, the exchange is
// undone and false is returned.
func (c *Configuration) SwapOrigins(i, j int, b CanvasBounds) bool {
	a, o := &c.Tiles[i], &c.Tiles[j]
	a.X, o.X = o.X, a.X
	a.Y, o.Y = o.Y, a.Y
	if c.collides(i, b) || c.collides(j, b) {
		a.X, o.X = o.X, a.X
		a.Y, o.Y = o.Y, a.Y
		return false
	}
	return true
}

// OverlappingPairs returns the index pairs of placed tiles that overlap.
func (c Configuration) OverlappingPairs() [][2]int {
	var pairs [][2]int
	for i := 0; i < len(c.Tiles); i++ {
		if !c.Tiles[i].Placed {
			continue
		}
		for j := i + 1; j < len(c.Tiles); j++ {
			if c.Tiles[j].Placed && Overlaps(c.Tiles[i], c.Tiles[j]) {
				pairs = append(pairs, [2]int{i, j})
			}
		}
	}
	return pairs
}

// Validate checks that every tile is placed, inside the canvas and free of
// overlaps.
func (c Configuration) Validate(b CanvasBounds) error {
	if len(c.Tiles) == 0 {
		return fmt.Errorf("%w: no tiles", ErrInvalidConfig)
	}
	for i, t := range c.Tiles {
		if !t.Placed {
			return fmt.Errorf("tile %d (%s): %w", i, t.ID, ErrUnplacedTile)
		}
		if !b.Contains(t) {
			return fmt.Errorf("%w: tile %d (%s) at (%d, %d) leaves the %dx%d canvas",
				ErrInvalidConfig, i, t.ID, t.X, t.Y, b.Width, b.Height)
		}
	}
	if pairs := c.OverlappingPairs(); len(pairs) > 0 {
		return fmt.Errorf("%w: tiles %d and %d overlap", ErrInvalidConfig, pairs[0][0], pairs[0][1])
	}
	return nil
}

// Evaluate computes the bounding box of the layout, its area and the share
// of that area left empty. Every tile must be placed.
func (c Configuration) Evaluate() (Metrics, error) {
	if len(c.Tiles) == 0 {
		return Metrics{}, fmt.Errorf("%w: no tiles", ErrInvalidConfig)
	}
	var m Metrics
	for i, t := range c.Tiles {
		if !t.Placed {
			return Metrics{}, fmt.Errorf("tile %d (%s): %w", i, t.ID, ErrUnplacedTile)
		}
		m.MaxX = max(m.MaxX, t.Right())
		m.MaxY = max(m.MaxY, t.Top())
		m.FilledArea += t.Area()
	}
	m.Area = m.MaxX * m.MaxY
	if m.Area > 0 {
		m.EmptyPercent = float64(m.Area-m.FilledArea) / float64(m.Area) * 100.0
	}
	return m, nil
}
