// Package importer reads tile lists from plain text, CSV, Excel and DXF
// sources. Every malformed line or row is reported as a *model.InputError.
package importer

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/piwi3910/floorplan/internal/model"
	"github.com/xuri/excelize/v2"
)

// ImportFile reads tiles from path, choosing the reader by file extension:
// .csv, .xlsx/.xlsm and .dxf have dedicated readers; anything else is read
// as plain "width,height" lines.
func ImportFile(path string) ([]model.Tile, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return ImportCSV(path)
	case ".xlsx", ".xlsm":
		return ImportExcel(path)
	case ".dxf":
		return ImportDXF(path)
	default:
		return ReadTilesFile(path)
	}
}

// ReadTilesFile reads plain "width,height" lines from a file.
func ReadTilesFile(path string) ([]model.Tile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open tile file: %w", err)
	}
	defer f.Close()
	return ReadTiles(f, filepath.Base(path))
}

// ReadTiles parses one "width,height" pair of positive integers per line.
// Blank lines are skipped. The first malformed line stops the read.
func ReadTiles(r io.Reader, source string) ([]model.Tile, error) {
	var tiles []model.Tile
	scanner := bufio.NewScanner(r)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		fields := strings.Split(line, ",")
		if len(fields) != 2 {
			return nil, &model.InputError{Source: source, Line: lineNum, Text: line,
				Reason: fmt.Sprintf("expected 2 fields width,height, got %d", len(fields))}
		}
		w, err := parseDimension(fields[0])
		if err != nil {
			return nil, &model.InputError{Source: source, Line: lineNum, Text: line, Reason: "width " + err.Error()}
		}
		h, err := parseDimension(fields[1])
		if err != nil {
			return nil, &model.InputError{Source: source, Line: lineNum, Text: line, Reason: "height " + err.Error()}
		}

		tiles = append(tiles, model.NewTile(fmt.Sprintf("T%d", len(tiles)+1), w, h))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", source, err)
	}
	return tiles, nil
}

// parseDimension parses a positive integer.
func parseDimension(s string) (int, error) {
	s = strings.TrimSpace(s)
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%q is not an integer", s)
	}
	if v <= 0 {
		return 0, fmt.Errorf("%d must be positive", v)
	}
	return v, nil
}

// maxQuantity caps the copies a single row may expand to.
const maxQuantity = 10000

// ColumnMapping maps semantic column roles to their indices in the data.
type ColumnMapping struct {
	Label    int
	Width    int
	Height   int
	Quantity int
}

// headerAliases maps canonical column names to their accepted aliases (all lowercase).
var headerAliases = map[string][]string{
	"label":    {"label", "name", "tile", "block", "module", "id", "description"},
	"width":    {"width", "w", "x", "dx"},
	"height":   {"height", "h", "y", "dy"},
	"quantity": {"quantity", "qty", "count", "copies", "n"},
}

// DetectCSVDelimiter determines the most likely CSV delimiter. It tries
// comma, semicolon, tab and pipe; the one that yields the most consistent
// multi-column rows wins.
func DetectCSVDelimiter(data []byte) rune {
	candidates := []rune{',', ';', '\t', '|'}
	bestDelimiter := ','
	bestScore := 0

	for _, delim := range candidates {
		reader := csv.NewReader(bytes.NewReader(data))
		reader.Comma = delim
		reader.LazyQuotes = true
		reader.FieldsPerRecord = -1

		records, err := reader.ReadAll()
		if err != nil || len(records) < 1 {
			continue
		}

		firstCols := len(records[0])
		if firstCols < 2 {
			continue
		}

		score := 0
		for _, row := range records {
			if len(row) == firstCols {
				score++
			}
		}

		weighted := score*10 + firstCols
		if weighted > bestScore {
			bestScore = weighted
			bestDelimiter = delim
		}
	}

	return bestDelimiter
}

// DetectColumns examines a header row and returns a ColumnMapping.
// Returns the mapping and true if a header was detected, or the positional
// mapping Width, Height, Quantity, Label and false otherwise.
func DetectColumns(row []string) (ColumnMapping, bool) {
	mapping := ColumnMapping{Label: -1, Width: -1, Height: -1, Quantity: -1}

	isHeader := false
	for i, cell := range row {
		normalized := strings.ToLower(strings.TrimSpace(cell))
		for role, aliases := range headerAliases {
			for _, alias := range aliases {
				if normalized != alias {
					continue
				}
				isHeader = true
				switch role {
				case "label":
					if mapping.Label == -1 {
						mapping.Label = i
					}
				case "width":
					if mapping.Width == -1 {
						mapping.Width = i
					}
				case "height":
					if mapping.Height == -1 {
						mapping.Height = i
					}
				case "quantity":
					if mapping.Quantity == -1 {
						mapping.Quantity = i
					}
				}
			}
		}
	}

	if !isHeader {
		return ColumnMapping{Width: 0, Height: 1, Quantity: 2, Label: 3}, false
	}
	return mapping, true
}

// getCell safely retrieves a cell value from a row by column index.
func getCell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// isEmptyRow returns true if the row has no meaningful content.
func isEmptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// parseRow turns one spreadsheet row into tiles, one per quantity.
func parseRow(row []string, mapping ColumnMapping, source string, lineNum, tileCount int) ([]model.Tile, error) {
	text := strings.Join(row, ",")
	bad := func(reason string) error {
		return &model.InputError{Source: source, Line: lineNum, Text: text, Reason: reason}
	}

	w, err := parseDimension(getCell(row, mapping.Width))
	if err != nil {
		return nil, bad("width " + err.Error())
	}
	h, err := parseDimension(getCell(row, mapping.Height))
	if err != nil {
		return nil, bad("height " + err.Error())
	}

	qty := 1
	if q := getCell(row, mapping.Quantity); q != "" {
		if qty, err = parseDimension(q); err != nil {
			return nil, bad("quantity " + err.Error())
		}
		if qty > maxQuantity {
			return nil, bad(fmt.Sprintf("quantity %d exceeds the limit of %d", qty, maxQuantity))
		}
	}

	label := getCell(row, mapping.Label)
	if label == "" {
		label = fmt.Sprintf("T%d", tileCount+1)
	}

	tiles := make([]model.Tile, 0, qty)
	for i := 0; i < qty; i++ {
		l := label
		if qty > 1 {
			l = fmt.Sprintf("%s #%d", label, i+1)
		}
		tiles = append(tiles, model.NewTile(l, w, h))
	}
	return tiles, nil
}

// importFromRows is the shared logic for CSV and Excel data. All row errors
// are collected and returned together.
func importFromRows(rows [][]string, source string) ([]model.Tile, error) {
	if len(rows) == 0 {
		return nil, &model.InputError{Source: source, Line: 0, Reason: "no data rows found"}
	}

	mapping, hasHeader := DetectColumns(rows[0])
	startRow := 0
	if hasHeader {
		startRow = 1
		var missing []string
		if mapping.Width == -1 {
			missing = append(missing, "Width")
		}
		if mapping.Height == -1 {
			missing = append(missing, "Height")
		}
		if len(missing) > 0 {
			return nil, &model.InputError{Source: source, Line: 1, Text: strings.Join(rows[0], ","),
				Reason: "required columns not found in header: " + strings.Join(missing, ", ")}
		}
	}

	var tiles []model.Tile
	var errs []error
	for i := startRow; i < len(rows); i++ {
		if isEmptyRow(rows[i]) {
			continue
		}
		parsed, err := parseRow(rows[i], mapping, source, i+1, len(tiles))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		tiles = append(tiles, parsed...)
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return tiles, nil
}

// ImportCSV imports tiles from a CSV file with automatic delimiter detection.
func ImportCSV(path string) ([]model.Tile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open file: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &model.InputError{Source: filepath.Base(path), Reason: "file is empty"}
	}
	return ImportCSVFromReader(bytes.NewReader(data), DetectCSVDelimiter(data), filepath.Base(path))
}

// ImportCSVFromReader imports tiles from a CSV reader with a known delimiter.
func ImportCSVFromReader(r io.Reader, delimiter rune, source string) ([]model.Tile, error) {
	reader := csv.NewReader(r)
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("cannot read CSV: %w", err)
	}
	return importFromRows(records, source)
}

// ImportExcel imports tiles from the first sheet of an Excel workbook.
func ImportExcel(path string) ([]model.Tile, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &model.InputError{Source: filepath.Base(path), Reason: "workbook has no sheets"}
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("cannot read Excel data: %w", err)
	}
	return importFromRows(rows, filepath.Base(path))
}
