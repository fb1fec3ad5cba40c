package model

import (
	"math"

	"github.com/google/uuid"
)

// Orientation records whether a tile has been turned 90 degrees.
type Orientation int

const (
	OrientationLandscape Orientation = iota // As given / width >= height on output
	OrientationPortrait                     // Flipped / width < height on output
)

func (o Orientation) String() string {
	if o == OrientationPortrait {
		return "Portrait"
	}
	return "Landscape"
}

// Point is an integer grid coordinate.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Tile is one rectangle of the floor plan.
// Width and Height always describe the current footprint, so a flip swaps them.
type Tile struct {
	ID          string      `json:"id"`
	Label       string      `json:"label"`
	Width       int         `json:"width"`
	Height      int         `json:"height"`
	Orientation Orientation `json:"orientation"`
	Placed      bool        `json:"placed"`
	X           int         `json:"x"` // Bottom-left corner, valid when Placed
	Y           int         `json:"y"`
}

func NewTile(label string, w, h int) Tile {
	return Tile{
		ID:          uuid.New().String()[:8],
		Label:       label,
		Width:       w,
		Height:      h,
		Orientation: OrientationLandscape,
	}
}

// Flip turns the tile 90 degrees: width and height are exchanged and the
// orientation flag toggles. Flipping twice restores the tile.
func (t *Tile) Flip() {
	t.Width, t.Height = t.Height, t.Width
	if t.Orientation == OrientationPortrait {
		t.Orientation = OrientationLandscape
	} else {
		t.Orientation = OrientationPortrait
	}
}

// Area returns the footprint area.
func (t Tile) Area() int {
	return t.Width * t.Height
}

// Right returns the x coordinate one past the footprint.
func (t Tile) Right() int {
	return t.X + t.Width
}

// Top returns the y coordinate one past the footprint.
func (t Tile) Top() int {
	return t.Y + t.Height
}

// OutputOrientation resolves the orientation written to result files:
// landscape when the footprint is at least as wide as it is tall.
func (t Tile) OutputOrientation() Orientation {
	if t.Width >= t.Height {
		return OrientationLandscape
	}
	return OrientationPortrait
}

// FootprintFor rebuilds a footprint from a tile's two original dimensions and
// the orientation recorded by OutputOrientation.
func FootprintFor(w0, h0 int, o Orientation) (w, h int) {
	long, short := w0, h0
	if short > long {
		long, short = short, long
	}
	if o == OrientationPortrait {
		return short, long
	}
	return long, short
}

// Overlaps returns true if the two tiles intersect with positive area.
// Tiles that only share an edge or a corner do not overlap.
func Overlaps(a, b Tile) bool {
	return a.X < b.X+b.Width && a.X+a.Width > b.X &&
		a.Y < b.Y+b.Height && a.Y+a.Height > b.Y
}

// CanvasBounds is the working area searched by placement. It is never part
// of the output.
type CanvasBounds struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// ComputeCanvasBounds derives a square canvas from the tiles' summed
// half-perimeters and the tile count. The result is generous enough that a
// first-fit scan almost always succeeds.
func ComputeCanvasBounds(tiles []Tile) CanvasBounds {
	sum := 0
	for _, t := range tiles {
		sum += t.Width + t.Height
	}
	side := int(math.Sqrt(float64(sum)) + 1)
	k := int(math.Sqrt(float64(len(tiles))) + 1)
	return CanvasBounds{Width: side * k, Height: side * k}
}

// Contains reports whether the tile's footprint lies inside the canvas.
func (b CanvasBounds) Contains(t Tile) bool {
	return t.X >= 0 && t.Y >= 0 && t.X+t.Width <= b.Width && t.Y+t.Height <= b.Height
}

// Metrics is the bounding-box evaluation of a configuration.
type Metrics struct {
	Area         int     `json:"area"`
	MaxX         int     `json:"max_x"`
	MaxY         int     `json:"max_y"`
	FilledArea   int     `json:"filled_area"`
	EmptyPercent float64 `json:"empty_percent"`
}

// TopRight returns the upper-right corner of the bounding box.
func (m Metrics) TopRight() Point {
	return Point{X: m.MaxX, Y: m.MaxY}
}
