package export

import (
	"fmt"

	"github.com/piwi3910/floorplan/internal/model"
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"
	"github.com/yofu/dxf/table"
)

// DXF layer names.
const (
	LayerTiles  = "tiles"
	LayerBounds = "bounds"
	LayerLabels = "labels"
)

// ExportDXF writes the layout as a DXF drawing in grid units: one closed
// LWPOLYLINE per tile on the tiles layer, the bounding box on the bounds
// layer and each tile's label at its centre.
func ExportDXF(path string, cfg model.Configuration) error {
	if cfg.Len() == 0 {
		return fmt.Errorf("no tiles to export")
	}
	m, err := cfg.Evaluate()
	if err != nil {
		return err
	}

	d := dxf.NewDrawing()
	if _, err := d.AddLayer(LayerTiles, color.Cyan, table.LT_CONTINUOUS, false); err != nil {
		return fmt.Errorf("add layer %s: %w", LayerTiles, err)
	}
	if _, err := d.AddLayer(LayerBounds, color.Red, table.LT_CONTINUOUS, false); err != nil {
		return fmt.Errorf("add layer %s: %w", LayerBounds, err)
	}
	if _, err := d.AddLayer(LayerLabels, color.White, table.LT_CONTINUOUS, false); err != nil {
		return fmt.Errorf("add layer %s: %w", LayerLabels, err)
	}

	if err := d.ChangeLayer(LayerTiles); err != nil {
		return err
	}
	for i, t := range cfg.Tiles {
		if _, err := d.LwPolyline(true, rectVertices(t.X, t.Y, t.Width, t.Height)...); err != nil {
			return fmt.Errorf("tile %d: %w", i, err)
		}
	}

	if err := d.ChangeLayer(LayerBounds); err != nil {
		return err
	}
	if _, err := d.LwPolyline(true, rectVertices(0, 0, m.MaxX, m.MaxY)...); err != nil {
		return fmt.Errorf("bounding box: %w", err)
	}

	if err := d.ChangeLayer(LayerLabels); err != nil {
		return err
	}
	for _, t := range cfg.Tiles {
		height := float64(min(t.Width, t.Height)) / 4
		cx := float64(t.X) + float64(t.Width)/2
		cy := float64(t.Y) + float64(t.Height)/2
		if _, err := d.Text(t.Label, cx, cy, 0, height); err != nil {
			return fmt.Errorf("label %q: %w", t.Label, err)
		}
	}

	return d.SaveAs(path)
}

// rectVertices lists the four corners of a rectangle counter-clockwise.
func rectVertices(x, y, w, h int) [][]float64 {
	x0, y0 := float64(x), float64(y)
	x1, y1 := float64(x+w), float64(y+h)
	return [][]float64{{x0, y0}, {x1, y0}, {x1, y1}, {x0, y1}}
}
