package export

import (
	"fmt"

	"github.com/piwi3910/floorplan/internal/model"
	"github.com/xuri/excelize/v2"
)

const (
	placementsSheet = "Placements"
	summarySheet    = "Summary"
	gapsSheet       = "Gaps"
)

var placementHeaders = []interface{}{"ID", "Label", "X", "Y", "Width", "Height", "Orientation"}

// ExportXLSX writes a run to a workbook with a "Placements" sheet listing
// every tile of the final layout, a "Summary" sheet with the metrics,
// settings and run statistics, and a "Gaps" sheet with the empty regions of
// the bounding box.
func ExportXLSX(path string, rec model.RunRecord) error {
	if rec.Final.Len() == 0 {
		return fmt.Errorf("no tiles to export")
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), placementsSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	for _, name := range []string{summarySheet, gapsSheet} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("create %s sheet: %w", name, err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"E6E6E6"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	if err := f.SetSheetRow(placementsSheet, "A1", &placementHeaders); err != nil {
		return err
	}
	if err := f.SetCellStyle(placementsSheet, "A1", "G1", headerStyle); err != nil {
		return err
	}
	for i, t := range rec.Final.Tiles {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{t.ID, t.Label, t.X, t.Y, t.Width, t.Height, int(t.OutputOrientation())}
		if err := f.SetSheetRow(placementsSheet, cell, &row); err != nil {
			return fmt.Errorf("write tile %d: %w", i, err)
		}
	}
	if err := f.SetColWidth(placementsSheet, "A", "B", 14); err != nil {
		return err
	}

	gaps := model.DetectGaps(rec.Final, 1)

	summary := [][]interface{}{
		{"Name", rec.Name},
		{"Created", rec.CreatedAt},
		{"Tiles", rec.Final.Len()},
		{"Canvas", fmt.Sprintf("%d x %d", rec.Canvas.Width, rec.Canvas.Height)},
		{"Placer", string(rec.Settings.Placer)},
		{"Initial Area", rec.InitialMetrics.Area},
		{"Final Area", rec.FinalMetrics.Area},
		{"Top Right", fmt.Sprintf("(%d, %d)", rec.FinalMetrics.MaxX, rec.FinalMetrics.MaxY)},
		{"Empty %", rec.FinalMetrics.EmptyPercent},
		{"Improvement %", rec.Improvement()},
		{"Lower Bound", model.EstimateArea(rec.Input).LowerBound},
		{"Initial Temperature", rec.Settings.InitialTemperature},
		{"Cooling Rate", rec.Settings.CoolingRate},
		{"Stop Temperature", rec.Settings.StopTemperature},
		{"Seed", rec.Settings.Seed},
		{"Iterations", rec.Stats.Iterations},
		{"Accepted", rec.Stats.Accepted},
		{"Improvements", rec.Stats.Improvements},
		{"Stop Reason", string(rec.Stats.StopReason)},
		{"Elapsed", rec.Stats.Elapsed.String()},
		{"Gaps", len(gaps)},
		{"Gap Area", model.TotalGapArea(gaps)},
	}
	for i, row := range summary {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return fmt.Errorf("write summary row %d: %w", i, err)
		}
	}
	if err := f.SetCellStyle(summarySheet, "A1", fmt.Sprintf("A%d", len(summary)), headerStyle); err != nil {
		return err
	}
	if err := f.SetColWidth(summarySheet, "A", "A", 22); err != nil {
		return err
	}

	gapHeaders := []interface{}{"X", "Y", "Width", "Height", "Area"}
	if err := f.SetSheetRow(gapsSheet, "A1", &gapHeaders); err != nil {
		return err
	}
	if err := f.SetCellStyle(gapsSheet, "A1", "E1", headerStyle); err != nil {
		return err
	}
	for i, g := range gaps {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{g.X, g.Y, g.Width, g.Height, g.Area()}
		if err := f.SetSheetRow(gapsSheet, cell, &row); err != nil {
			return fmt.Errorf("write gap %d: %w", i, err)
		}
	}

	return f.SaveAs(path)
}
