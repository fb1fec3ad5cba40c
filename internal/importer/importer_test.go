package importer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/piwi3910/floorplan/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"github.com/yofu/dxf"
)

// ─── ReadTiles ─────────────────────────────────────────────

func TestReadTiles_Valid(t *testing.T) {
	tiles, err := ReadTiles(strings.NewReader("4,2\n3,3\n\n 2 , 5 \n"), "tiles.txt")
	require.NoError(t, err)
	require.Len(t, tiles, 3)

	assert.Equal(t, 4, tiles[0].Width)
	assert.Equal(t, 2, tiles[0].Height)
	assert.Equal(t, 2, tiles[2].Width)
	assert.Equal(t, 5, tiles[2].Height)
	assert.Equal(t, "T3", tiles[2].Label)
	for _, tile := range tiles {
		assert.False(t, tile.Placed)
		assert.Equal(t, model.OrientationLandscape, tile.Orientation)
	}
}

func TestReadTiles_Malformed(t *testing.T) {
	tests := []struct {
		name  string
		input string
		line  int
	}{
		{"too many fields", "4,2\n1,2,3\n", 2},
		{"single field", "4\n", 1},
		{"non-integer", "4,2\n3,3\n4.5,2\n", 3},
		{"letters", "a,b\n", 1},
		{"zero", "0,3\n", 1},
		{"negative", "3,-1\n", 1},
		{"semicolon", "4;2\n", 1},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tiles, err := ReadTiles(strings.NewReader(tc.input), "tiles.txt")
			require.Error(t, err)
			assert.Nil(t, tiles, "no partial result on input errors")
			assert.ErrorIs(t, err, model.ErrInput)

			var ie *model.InputError
			require.True(t, errors.As(err, &ie))
			assert.Equal(t, tc.line, ie.Line)
			assert.Equal(t, "tiles.txt", ie.Source)
		})
	}
}

func TestReadTiles_Empty(t *testing.T) {
	tiles, err := ReadTiles(strings.NewReader(""), "empty")
	require.NoError(t, err)
	assert.Empty(t, tiles)
}

func TestReadTilesFile_Missing(t *testing.T) {
	_, err := ReadTilesFile(filepath.Join(t.TempDir(), "nope.txt"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

// ─── DetectCSVDelimiter / DetectColumns ────────────────────

func TestDetectCSVDelimiter(t *testing.T) {
	assert.Equal(t, ',', DetectCSVDelimiter([]byte("Width,Height\n4,2\n3,3\n")))
	assert.Equal(t, ';', DetectCSVDelimiter([]byte("Width;Height\n4;2\n3;3\n")))
	assert.Equal(t, '\t', DetectCSVDelimiter([]byte("Width\tHeight\n4\t2\n3\t3\n")))
	assert.Equal(t, '|', DetectCSVDelimiter([]byte("Width|Height\n4|2\n3|3\n")))
}

func TestDetectColumns(t *testing.T) {
	mapping, isHeader := DetectColumns([]string{"Name", "W", "H", "Qty"})
	assert.True(t, isHeader)
	assert.Equal(t, ColumnMapping{Label: 0, Width: 1, Height: 2, Quantity: 3}, mapping)

	mapping, isHeader = DetectColumns([]string{"4", "2"})
	assert.False(t, isHeader)
	assert.Equal(t, 0, mapping.Width)
	assert.Equal(t, 1, mapping.Height)
}

// ─── CSV ───────────────────────────────────────────────────

func TestImportCSV_WithHeaderAndQuantity(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tiles.csv")
	content := "Label;Width;Height;Qty\nALU;4;2;2\nRAM;3;3;\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	tiles, err := ImportCSV(path)
	require.NoError(t, err)
	require.Len(t, tiles, 3)
	assert.Equal(t, "ALU #1", tiles[0].Label)
	assert.Equal(t, "ALU #2", tiles[1].Label)
	assert.Equal(t, "RAM", tiles[2].Label)
	assert.Equal(t, 3, tiles[2].Width)
}

func TestImportCSV_CollectsRowErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tiles.csv")
	require.NoError(t, os.WriteFile(path, []byte("Width,Height\n4,x\n3,3\n0,1\n"), 0644))

	tiles, err := ImportCSV(path)
	require.Error(t, err)
	assert.Nil(t, tiles)
	assert.ErrorIs(t, err, model.ErrInput)
	assert.Contains(t, err.Error(), "tiles.csv:2")
	assert.Contains(t, err.Error(), "tiles.csv:4")
}

func TestImportCSVFromReader_QuantityLimit(t *testing.T) {
	tiles, err := ImportCSVFromReader(strings.NewReader("width,height,quantity\n4,2,100000000000\n"), ',', "huge.csv")
	require.Error(t, err)
	assert.Nil(t, tiles)

	var ie *model.InputError
	require.True(t, errors.As(err, &ie))
	assert.Equal(t, 2, ie.Line)
	assert.Contains(t, ie.Reason, "exceeds the limit")

	tiles, err = ImportCSVFromReader(strings.NewReader(fmt.Sprintf("width,height,quantity\n1,1,%d\n", maxQuantity)), ',', "max.csv")
	require.NoError(t, err)
	assert.Len(t, tiles, maxQuantity)
}

func TestImportCSV_MissingRequiredColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tiles.csv")
	require.NoError(t, os.WriteFile(path, []byte("Label,Width\nA,4\n"), 0644))

	_, err := ImportCSV(path)
	require.ErrorIs(t, err, model.ErrInput)
	assert.Contains(t, err.Error(), "Height")
}

func TestImportCSV_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tiles.csv")
	require.NoError(t, os.WriteFile(path, []byte("  \n"), 0644))

	_, err := ImportCSV(path)
	assert.ErrorIs(t, err, model.ErrInput)
}

// ─── Excel ─────────────────────────────────────────────────

func writeTestXLSX(t *testing.T, rows [][]interface{}) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tiles.xlsx")

	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		for j, cell := range row {
			cellRef, err := excelize.CoordinatesToCellName(j+1, i+1)
			require.NoError(t, err)
			require.NoError(t, f.SetCellValue(sheet, cellRef, cell))
		}
	}
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())
	return path
}

func TestImportExcel(t *testing.T) {
	path := writeTestXLSX(t, [][]interface{}{
		{"Block", "Width", "Height"},
		{"CPU", 4, 2},
		{"GPU", 2, 5},
	})

	tiles, err := ImportExcel(path)
	require.NoError(t, err)
	require.Len(t, tiles, 2)
	assert.Equal(t, "CPU", tiles[0].Label)
	assert.Equal(t, 2, tiles[1].Width)
	assert.Equal(t, 5, tiles[1].Height)
}

func TestImportExcel_BadRow(t *testing.T) {
	path := writeTestXLSX(t, [][]interface{}{
		{"Width", "Height"},
		{4, "wide"},
	})

	_, err := ImportExcel(path)
	assert.ErrorIs(t, err, model.ErrInput)
}

// ─── DXF ───────────────────────────────────────────────────

func TestImportDXF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tiles.dxf")

	d := dxf.NewDrawing()
	_, err := d.LwPolyline(true, []float64{0, 0}, []float64{4, 0}, []float64{4, 2}, []float64{0, 2})
	require.NoError(t, err)
	_, err = d.Circle(10, 10, 0, 1.5)
	require.NoError(t, err)
	require.NoError(t, d.SaveAs(path))

	tiles, err := ImportDXF(path)
	require.NoError(t, err)
	require.Len(t, tiles, 2)
	assert.Equal(t, 4, tiles[0].Width)
	assert.Equal(t, 2, tiles[0].Height)
	assert.Equal(t, 3, tiles[1].Width)
	assert.Equal(t, 3, tiles[1].Height)
}

func TestVertexExtent(t *testing.T) {
	w, h := vertexExtent([][]float64{{1, 1}, {5, 2}, {3, 7}})
	assert.Equal(t, 4.0, w)
	assert.Equal(t, 6.0, h)

	w, h = vertexExtent(nil)
	assert.Zero(t, w)
	assert.Zero(t, h)
}

// ─── ImportFile ────────────────────────────────────────────

func TestImportFile_DispatchesByExtension(t *testing.T) {
	dir := t.TempDir()

	txt := filepath.Join(dir, "tiles.txt")
	require.NoError(t, os.WriteFile(txt, []byte("4,2\n3,3\n"), 0644))
	tiles, err := ImportFile(txt)
	require.NoError(t, err)
	assert.Len(t, tiles, 2)

	csvPath := filepath.Join(dir, "tiles.CSV")
	require.NoError(t, os.WriteFile(csvPath, []byte("width,height,qty\n1,1,3\n"), 0644))
	tiles, err = ImportFile(csvPath)
	require.NoError(t, err)
	assert.Len(t, tiles, 3)
}
