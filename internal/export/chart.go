package export

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/piwi3910/floorplan/internal/model"
)

// ConvergenceChart builds a line chart of the best and current bounding-box
// area over the sampled iterations.
func ConvergenceChart(trace []model.TracePoint) *charts.Line {
	xs := make([]string, len(trace))
	best := make([]opts.LineData, len(trace))
	current := make([]opts.LineData, len(trace))
	for i, p := range trace {
		xs[i] = strconv.Itoa(p.Iteration)
		best[i] = opts.LineData{Value: p.BestArea}
		current[i] = opts.LineData{Value: p.CurrentArea}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Annealing convergence"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Bounding-box area",
			Subtitle: fmt.Sprintf("%d samples", len(trace)),
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Iteration"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Area"}),
	)
	line.SetXAxis(xs).
		AddSeries("Best area", best).
		AddSeries("Current area", current)
	return line
}

// RenderConvergenceChart writes the chart as a standalone HTML page.
func RenderConvergenceChart(w io.Writer, trace []model.TracePoint) error {
	if len(trace) == 0 {
		return fmt.Errorf("no trace samples to chart")
	}
	return ConvergenceChart(trace).Render(w)
}

// ExportConvergenceChart renders the convergence chart to an HTML file.
func ExportConvergenceChart(path string, trace []model.TracePoint) error {
	if len(trace) == 0 {
		return fmt.Errorf("no trace samples to chart")
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create chart file: %w", err)
	}
	if err := RenderConvergenceChart(f, trace); err != nil {
		f.Close()
		return fmt.Errorf("render chart: %w", err)
	}
	return f.Close()
}
