package export

import (
	"bytes"
	"fmt"
	"math"

	"github.com/go-pdf/fpdf"
	"github.com/piwi3910/floorplan/internal/model"
	qrcode "github.com/skip2/go-qrcode"
)

// tileColor represents an RGB fill color for a tile.
type tileColor struct {
	R, G, B int
}

var tileColors = []tileColor{
	{R: 76, G: 175, B: 80},  // green
	{R: 33, G: 150, B: 243}, // blue
	{R: 255, G: 152, B: 0},  // orange
	{R: 156, G: 39, B: 176}, // purple
	{R: 0, G: 188, B: 212},  // cyan
	{R: 244, G: 67, B: 54},  // red
	{R: 255, G: 235, B: 59}, // yellow
	{R: 121, G: 85, B: 72},  // brown
}

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	statsHeight  = 12.0
	drawAreaTop  = marginTop + headerHeight + 8.0
	qrSize       = 45.0
	qrGap        = 8.0

	// qrMaxBytes keeps the encoded results within a QR code that still
	// scans reliably at qrSize on paper.
	qrMaxBytes = 1200
)

// PDFOptions controls the layout report.
type PDFOptions struct {
	Title     string
	Stats     *model.AnnealStats // Optional annealing summary
	IncludeQR bool               // Embed the results text as a QR code
	ShowGaps  bool               // Hatch the empty regions of the bounding box
}

// ExportPDF renders the layout on a single page: every tile scaled into the
// drawing area with its (x, y) origin, the bounding box outline and a stats
// line. With IncludeQR the results text is embedded as a QR code so the
// layout can be recovered from a printout.
func ExportPDF(path string, cfg model.Configuration, metrics model.Metrics, opts PDFOptions) error {
	if cfg.Len() == 0 {
		return fmt.Errorf("no tiles to export")
	}
	if metrics.MaxX <= 0 || metrics.MaxY <= 0 {
		return fmt.Errorf("empty bounding box %dx%d", metrics.MaxX, metrics.MaxY)
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)
	pdf.AddPage()

	title := opts.Title
	if title == "" {
		title = "Floor Plan"
	}
	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight,
		fmt.Sprintf("%s (%d tiles, %d x %d)", title, cfg.Len(), metrics.MaxX, metrics.MaxY), "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 5, statsLine(metrics, opts.Stats), "", 0, "L", false, 0, "")

	drawWidth := pageWidth - marginLeft - marginRight
	if opts.IncludeQR {
		drawWidth -= qrSize + qrGap
	}
	drawHeight := pageHeight - drawAreaTop - marginBottom - statsHeight

	scale := math.Min(drawWidth/float64(metrics.MaxX), drawHeight/float64(metrics.MaxY))
	boxW := float64(metrics.MaxX) * scale
	boxH := float64(metrics.MaxY) * scale
	offsetX := marginLeft + (drawWidth-boxW)/2
	offsetY := drawAreaTop

	// Grid y grows upwards, the page grows downwards.
	toPage := func(x, y, h int) (float64, float64) {
		return offsetX + float64(x)*scale, offsetY + float64(metrics.MaxY-y-h)*scale
	}

	pdf.SetFillColor(245, 245, 245)
	pdf.SetDrawColor(100, 100, 100)
	pdf.SetLineWidth(0.5)
	pdf.Rect(offsetX, offsetY, boxW, boxH, "FD")

	for i, t := range cfg.Tiles {
		col := tileColors[i%len(tileColors)]
		px, py := toPage(t.X, t.Y, t.Height)
		pw, ph := float64(t.Width)*scale, float64(t.Height)*scale

		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.SetDrawColor(30, 30, 30)
		pdf.SetLineWidth(0.3)
		pdf.Rect(px, py, pw, ph, "FD")

		if pw > 10 && ph > 5 {
			pdf.SetFont("Helvetica", "", labelFontSize(pw, ph))
			pdf.SetTextColor(0, 0, 0)
			coords := fmt.Sprintf("(%d, %d)", t.X, t.Y)
			if w := pdf.GetStringWidth(coords); w < pw-1 {
				pdf.SetXY(px+(pw-w)/2, py+ph/2-2)
				pdf.CellFormat(w, 4, coords, "", 0, "C", false, 0, "")
			}
			if ph > 12 {
				if w := pdf.GetStringWidth(t.Label); w < pw-1 {
					pdf.SetXY(px+(pw-w)/2, py+ph/2+2)
					pdf.CellFormat(w, 4, t.Label, "", 0, "C", false, 0, "")
				}
			}
		}
	}

	if opts.ShowGaps {
		for _, g := range model.DetectGaps(cfg, 1) {
			gx, gy := toPage(g.X, g.Y, g.Height)
			drawHatchPattern(pdf, gx, gy, float64(g.Width)*scale, float64(g.Height)*scale)
		}
	}

	// Bounding box outline on top of the tiles
	pdf.SetDrawColor(200, 0, 0)
	pdf.SetLineWidth(0.6)
	pdf.Rect(offsetX, offsetY, boxW, boxH, "D")

	drawDimensionAnnotations(pdf, metrics, offsetX, offsetY, boxW, boxH)

	if opts.IncludeQR {
		if err := drawResultsQR(pdf, cfg, pageWidth-marginRight-qrSize, drawAreaTop); err != nil {
			return err
		}
	}

	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(marginLeft, pageHeight-marginBottom)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 4, "Generated by floorplan - simulated annealing layout", "", 0, "C", false, 0, "")

	return pdf.OutputFileAndClose(path)
}

// statsLine summarizes the bounding box and, when present, the run.
func statsLine(m model.Metrics, stats *model.AnnealStats) string {
	s := fmt.Sprintf("Area: %d | Top right: (%d, %d) | Filled: %d | Empty: %.1f%%",
		m.Area, m.MaxX, m.MaxY, m.FilledArea, m.EmptyPercent)
	if stats != nil {
		s += fmt.Sprintf(" | Iterations: %d | Stop: %s", stats.Iterations, stats.StopReason)
	}
	return s
}

// drawResultsQR embeds the results text as a QR code. Layouts whose text is
// too long for a readable code get a note instead.
func drawResultsQR(pdf *fpdf.Fpdf, cfg model.Configuration, x, y float64) error {
	var buf bytes.Buffer
	if err := WriteResults(&buf, cfg); err != nil {
		return fmt.Errorf("failed to render results text: %w", err)
	}

	pdf.SetFont("Helvetica", "", 7)
	pdf.SetTextColor(80, 80, 80)

	if buf.Len() > qrMaxBytes {
		pdf.SetXY(x, y)
		pdf.MultiCell(qrSize, 4, fmt.Sprintf("Results too long for a QR code (%d bytes)", buf.Len()), "", "L", false)
		pdf.SetTextColor(0, 0, 0)
		return nil
	}

	png, err := qrcode.Encode(buf.String(), qrcode.Medium, 512)
	if err != nil {
		return fmt.Errorf("failed to generate QR code: %w", err)
	}
	pdf.RegisterImageOptionsReader("results_qr", fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(png))
	pdf.ImageOptions("results_qr", x, y, qrSize, qrSize, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	pdf.SetXY(x, y+qrSize+1)
	pdf.CellFormat(qrSize, 4, "Scan for x,y,orientation", "", 0, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	return nil
}

// drawHatchPattern draws diagonal lines inside a rectangle to mark empty space.
func drawHatchPattern(pdf *fpdf.Fpdf, x, y, w, h float64) {
	pdf.SetDrawColor(200, 0, 0)
	pdf.SetLineWidth(0.15)

	spacing := 3.0
	maxDist := w + h

	for d := spacing; d < maxDist; d += spacing {
		x1 := x + math.Max(0, d-h)
		y1 := y + math.Min(h, d)
		x2 := x + math.Min(w, d)
		y2 := y + math.Max(0, d-w)

		pdf.Line(x1, y1, x2, y2)
	}
}

// drawDimensionAnnotations adds width and height labels outside the bounding box.
func drawDimensionAnnotations(pdf *fpdf.Fpdf, m model.Metrics, offsetX, offsetY, boxW, boxH float64) {
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(80, 80, 80)

	widthLabel := fmt.Sprintf("%d", m.MaxX)
	wLabelW := pdf.GetStringWidth(widthLabel)
	pdf.SetXY(offsetX+(boxW-wLabelW)/2, offsetY+boxH+1)
	pdf.CellFormat(wLabelW, 4, widthLabel, "", 0, "C", false, 0, "")

	heightLabel := fmt.Sprintf("%d", m.MaxY)
	pdf.TransformBegin()
	pdf.TransformRotate(90, offsetX-3, offsetY+boxH/2)
	hLabelW := pdf.GetStringWidth(heightLabel)
	pdf.SetXY(offsetX-3-hLabelW/2, offsetY+boxH/2-2)
	pdf.CellFormat(hLabelW, 4, heightLabel, "", 0, "C", false, 0, "")
	pdf.TransformEnd()

	pdf.SetTextColor(0, 0, 0)
}

// labelFontSize returns an appropriate font size based on the rectangle dimensions.
func labelFontSize(w, h float64) float64 {
	minDim := math.Min(w, h)
	switch {
	case minDim > 40:
		return 8
	case minDim > 20:
		return 7
	default:
		return 6
	}
}
