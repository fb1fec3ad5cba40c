// Package export writes annealed layouts to result files, printable reports,
// spreadsheets, CAD drawings and charts.
package export

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/piwi3910/floorplan/internal/model"
)

// ResultRow is one parsed line of a results file.
type ResultRow struct {
	X           int
	Y           int
	Orientation model.Orientation
}

// WriteResults writes one "x,y,orientation" line per tile in configuration
// order. The orientation is derived from the final footprint and the tiles
// themselves are left untouched.
func WriteResults(w io.Writer, cfg model.Configuration) error {
	bw := bufio.NewWriter(w)
	for _, t := range cfg.Tiles {
		if _, err := fmt.Fprintf(bw, "%d,%d,%d\n", t.X, t.Y, int(t.OutputOrientation())); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteResultsFile creates (or truncates) path and writes the results to it.
func WriteResultsFile(path string, cfg model.Configuration) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create results file: %w", err)
	}
	if err := WriteResults(f, cfg); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}

// ReadResults parses a results file back into rows. Blank lines are skipped.
func ReadResults(r io.Reader) ([]ResultRow, error) {
	var rows []ResultRow
	scanner := bufio.NewScanner(r)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		bad := func(reason string) error {
			return &model.InputError{Source: "results", Line: lineNum, Text: line, Reason: reason}
		}

		fields := strings.Split(line, ",")
		if len(fields) != 3 {
			return nil, bad(fmt.Sprintf("expected 3 fields x,y,orientation, got %d", len(fields)))
		}
		var vals [3]int
		for i, f := range fields {
			v, err := strconv.Atoi(strings.TrimSpace(f))
			if err != nil {
				return nil, bad(fmt.Sprintf("%q is not an integer", f))
			}
			vals[i] = v
		}
		if vals[0] < 0 || vals[1] < 0 {
			return nil, bad("coordinates must not be negative")
		}
		if vals[2] != int(model.OrientationLandscape) && vals[2] != int(model.OrientationPortrait) {
			return nil, bad(fmt.Sprintf("orientation must be 0 or 1, got %d", vals[2]))
		}
		rows = append(rows, ResultRow{X: vals[0], Y: vals[1], Orientation: model.Orientation(vals[2])})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return rows, nil
}

// Rebuild applies result rows to the original input tiles, restoring each
// tile's origin and footprint. The row count must match the tile count.
func Rebuild(input []model.Tile, rows []ResultRow) (model.Configuration, error) {
	if len(input) != len(rows) {
		return model.Configuration{}, fmt.Errorf("%w: %d result rows for %d tiles", model.ErrInput, len(rows), len(input))
	}
	cfg := model.NewConfiguration(input)
	for i, row := range rows {
		t := &cfg.Tiles[i]
		if w, _ := model.FootprintFor(t.Width, t.Height, row.Orientation); w != t.Width {
			t.Flip()
		}
		t.X, t.Y = row.X, row.Y
		t.Placed = true
	}
	return cfg, nil
}
