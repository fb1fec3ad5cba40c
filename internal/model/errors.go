package model

import (
	"errors"
	"fmt"
)

var (
	// ErrInput is returned for malformed tile input.
	ErrInput = errors.New("floorplan: invalid input")
	// ErrPlacementInfeasible is returned when a tile has no feasible origin
	// inside the canvas.
	ErrPlacementInfeasible = errors.New("floorplan: placement infeasible")
	// ErrDegenerateInput is returned when there are too few tiles to optimize.
	ErrDegenerateInput = errors.New("floorplan: at least two tiles are required")
	// ErrInvalidConfig is returned for bad settings or an empty configuration.
	ErrInvalidConfig = errors.New("floorplan: invalid configuration")
	// ErrUnplacedTile is returned when an unplaced tile is evaluated.
	ErrUnplacedTile = errors.New("floorplan: tile is not placed")
)

// InputError describes one bad line or row of tile input.
type InputError struct {
	Source string // File name or "stdin"
	Line   int    // 1-based
	Text   string // Offending content
	Reason string
}

func (e *InputError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("%s:%d: %s (%q)", e.Source, e.Line, e.Reason, e.Text)
	}
	return fmt.Sprintf("line %d: %s (%q)", e.Line, e.Reason, e.Text)
}

func (e *InputError) Unwrap() error { return ErrInput }

// PlacementError reports the tile that could not be placed and the canvas
// that was too small for it.
type PlacementError struct {
	TileID string
	Index  int
	Width  int
	Height int
	Canvas CanvasBounds
}

func (e *PlacementError) Error() string {
	return fmt.Sprintf("tile %s (%dx%d) does not fit anywhere in the %dx%d canvas",
		e.TileID, e.Width, e.Height, e.Canvas.Width, e.Canvas.Height)
}

func (e *PlacementError) Unwrap() error { return ErrPlacementInfeasible }
