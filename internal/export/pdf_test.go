package export

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/piwi3910/floorplan/internal/model"
)

// buildTestLayout returns a small feasible layout:
//
//	3 . . .
//	2 B B C
//	1 A A C
//	0 A A C
//	  0 1 2
func buildTestLayout() model.Configuration {
	return model.NewConfiguration([]model.Tile{
		{ID: "a", Label: "A", Width: 2, Height: 2, Placed: true, X: 0, Y: 0},
		{ID: "b", Label: "B", Width: 2, Height: 1, Placed: true, X: 0, Y: 2},
		{ID: "c", Label: "C", Width: 1, Height: 3, Placed: true, X: 2, Y: 0, Orientation: model.OrientationPortrait},
	})
}

func mustEvaluate(t *testing.T, cfg model.Configuration) model.Metrics {
	t.Helper()
	m, err := cfg.Evaluate()
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	return m
}

func TestExportPDF_CreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "layout.pdf")
	cfg := buildTestLayout()

	err := ExportPDF(path, cfg, mustEvaluate(t, cfg), PDFOptions{Title: "Test"})
	if err != nil {
		t.Fatalf("ExportPDF returned error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("PDF file was not created: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Errorf("file does not start with a PDF header")
	}
	if len(data) < 500 {
		t.Errorf("PDF file seems too small: %d bytes", len(data))
	}
}

func TestExportPDF_WithQRAndStats(t *testing.T) {
	dir := t.TempDir()
	cfg := buildTestLayout()
	m := mustEvaluate(t, cfg)

	plain := filepath.Join(dir, "plain.pdf")
	withQR := filepath.Join(dir, "qr.pdf")

	if err := ExportPDF(plain, cfg, m, PDFOptions{}); err != nil {
		t.Fatalf("ExportPDF returned error: %v", err)
	}
	stats := &model.AnnealStats{Iterations: 120, StopReason: model.StopCooled}
	if err := ExportPDF(withQR, cfg, m, PDFOptions{IncludeQR: true, ShowGaps: true, Stats: stats}); err != nil {
		t.Fatalf("ExportPDF with QR returned error: %v", err)
	}

	plainInfo, _ := os.Stat(plain)
	qrInfo, _ := os.Stat(withQR)
	if qrInfo.Size() <= plainInfo.Size() {
		t.Errorf("expected embedded QR image to grow the file: %d <= %d", qrInfo.Size(), plainInfo.Size())
	}
}

func TestExportPDF_LargeLayoutSkipsQR(t *testing.T) {
	var tiles []model.Tile
	for i := 0; i < 200; i++ {
		tiles = append(tiles, model.Tile{Label: "T", Width: 1, Height: 1, Placed: true, X: i * 1000, Y: i * 1000})
	}
	cfg := model.NewConfiguration(tiles)

	path := filepath.Join(t.TempDir(), "large.pdf")
	if err := ExportPDF(path, cfg, mustEvaluate(t, cfg), PDFOptions{IncludeQR: true}); err != nil {
		t.Fatalf("ExportPDF returned error: %v", err)
	}
}

func TestExportPDF_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.pdf")
	if err := ExportPDF(path, model.Configuration{}, model.Metrics{}, PDFOptions{}); err == nil {
		t.Fatal("expected error for empty layout, got nil")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("no file should be written for an empty layout")
	}
}

func TestStatsLine(t *testing.T) {
	m := model.Metrics{Area: 9, MaxX: 3, MaxY: 3, FilledArea: 9, EmptyPercent: 0}
	line := statsLine(m, nil)
	if !strings.Contains(line, "Top right: (3, 3)") {
		t.Errorf("unexpected stats line: %s", line)
	}
	if strings.Contains(line, "Iterations") {
		t.Errorf("stats line without a run should not mention iterations: %s", line)
	}

	line = statsLine(m, &model.AnnealStats{Iterations: 7, StopReason: model.StopTimeLimit})
	if !strings.Contains(line, "Iterations: 7 | Stop: time-limit") {
		t.Errorf("unexpected stats line: %s", line)
	}
}

func TestLabelFontSize(t *testing.T) {
	tests := []struct {
		w, h float64
		want float64
	}{
		{100, 100, 8},
		{30, 100, 7},
		{10, 100, 6},
	}
	for _, tc := range tests {
		if got := labelFontSize(tc.w, tc.h); got != tc.want {
			t.Errorf("labelFontSize(%v, %v) = %v, want %v", tc.w, tc.h, got, tc.want)
		}
	}
}
