package importer

import (
	"fmt"
	"math"
	"path/filepath"

	"github.com/piwi3910/floorplan/internal/model"
	"github.com/yofu/dxf"
	"github.com/yofu/dxf/entity"
)

// ImportDXF imports tiles from a DXF drawing. Every LWPOLYLINE with at least
// three vertices and every CIRCLE becomes one tile sized to its bounding
// box, rounded to whole grid units.
func ImportDXF(path string) ([]model.Tile, error) {
	source := filepath.Base(path)

	drawing, err := dxf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open DXF file: %w", err)
	}

	entities := drawing.Entities()
	if len(entities) == 0 {
		return nil, &model.InputError{Source: source, Reason: "DXF file contains no entities"}
	}

	var tiles []model.Tile
	for n, ent := range entities {
		var w, h float64
		switch e := ent.(type) {
		case *entity.LwPolyline:
			if len(e.Vertices) < 3 {
				continue
			}
			w, h = vertexExtent(e.Vertices)
		case *entity.Circle:
			w, h = 2*e.Radius, 2*e.Radius
		default:
			continue
		}

		tw, th := int(math.Round(w)), int(math.Round(h))
		if tw <= 0 || th <= 0 {
			return nil, &model.InputError{Source: source, Line: n + 1,
				Text:   fmt.Sprintf("%.3f x %.3f", w, h),
				Reason: "shape is smaller than one grid unit"}
		}
		tiles = append(tiles, model.NewTile(fmt.Sprintf("DXF %d", len(tiles)+1), tw, th))
	}

	if len(tiles) == 0 {
		return nil, &model.InputError{Source: source, Reason: "no closed shapes found in DXF file"}
	}
	return tiles, nil
}

// vertexExtent returns the bounding-box width and height of a vertex list.
func vertexExtent(vertices [][]float64) (w, h float64) {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, v := range vertices {
		if len(v) < 2 {
			continue
		}
		minX, maxX = math.Min(minX, v[0]), math.Max(maxX, v[0])
		minY, maxY = math.Min(minY, v[1]), math.Max(maxY, v[1])
	}
	if math.IsInf(minX, 1) {
		return 0, 0
	}
	return maxX - minX, maxY - minY
}
