// floorplan packs rectangular tiles into a compact layout.
//
// Tiles are read one "width,height" pair per line, placed on a square canvas
// by a first-fit scan and then improved by simulated annealing that shrinks
// the bounding box. The final layout is written as one "x,y,orientation" line
// per tile.
//
// Build:
//
//	go build -o floorplan ./cmd/floorplan
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/piwi3910/floorplan/internal/engine"
	"github.com/piwi3910/floorplan/internal/export"
	"github.com/piwi3910/floorplan/internal/importer"
	"github.com/piwi3910/floorplan/internal/model"
	"github.com/piwi3910/floorplan/internal/project"
)

// Exit codes.
const (
	exitOK         = 0
	exitInput      = 1
	exitInfeasible = 2
	exitCancelled  = 130
)

const recentRunsLimit = 10

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// options holds the parsed command line.
type options struct {
	in, out           string
	pdf, xlsx, dxf    string
	chart, runPath    string
	configPath        string
	profile, profiles string
	compare, debug    bool
	logPath           string
	saveProfile       string
	importProfile     string
	exportProfile     string
	verify, replay    string
	placer            string
	t0, alpha, tstop  float64
	maxIter           int
	timeLimit         time.Duration
	seed              int64
	setFlags          map[string]bool // Flags given on the command line
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	o := &options{setFlags: map[string]bool{}}
	defaults := model.DefaultSettings()

	fs := flag.NewFlagSet("floorplan", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.in, "in", "tiles.txt", "Tile list (.txt, .csv, .xlsx or .dxf)")
	fs.StringVar(&o.out, "out", "", "Results file (default from config, usually results.txt)")
	fs.StringVar(&o.pdf, "pdf", "", "Write a PDF layout report")
	fs.StringVar(&o.xlsx, "xlsx", "", "Write an Excel workbook of the run")
	fs.StringVar(&o.dxf, "dxf", "", "Write the layout as a DXF drawing")
	fs.StringVar(&o.chart, "chart", "", "Write an HTML convergence chart")
	fs.StringVar(&o.runPath, "run", "", "Save the complete run as JSON")
	fs.StringVar(&o.configPath, "config", project.DefaultConfigPath(), "Application config file")
	fs.StringVar(&o.profile, "profile", "", "Named settings profile (Default, Quick, Thorough, Dense or custom)")
	fs.StringVar(&o.profiles, "profiles", project.DefaultProfilesPath(), "Custom profiles file")
	fs.StringVar(&o.placer, "placer", string(defaults.Placer), "Initial placer: grid or guillotine")
	fs.Float64Var(&o.t0, "t0", defaults.InitialTemperature, "Initial temperature")
	fs.Float64Var(&o.alpha, "alpha", defaults.CoolingRate, "Cooling rate applied on each accepted move")
	fs.Float64Var(&o.tstop, "tstop", defaults.StopTemperature, "Stop temperature")
	fs.IntVar(&o.maxIter, "max-iter", defaults.MaxIterations, "Maximum annealing iterations")
	fs.DurationVar(&o.timeLimit, "time-limit", defaults.TimeLimit, "Wall-clock limit (0 disables)")
	fs.Int64Var(&o.seed, "seed", 0, "Random seed (0 seeds from the clock)")
	fs.BoolVar(&o.compare, "compare", false, "Run the default scenario comparison instead of a single run")
	fs.BoolVar(&o.debug, "debug", false, "Enable debug logging")
	fs.StringVar(&o.logPath, "log", defaultLogFileName, "Debug log file")
	fs.StringVar(&o.saveProfile, "save-profile", "", "Save the resolved settings as a custom profile and exit")
	fs.StringVar(&o.importProfile, "import-profile", "", "Add a profile file to the custom profiles and exit")
	fs.StringVar(&o.exportProfile, "export-profile", "", "Write the resolved settings to a profile file and exit")
	fs.StringVar(&o.verify, "verify", "", "Check a results file against -in instead of running")
	fs.StringVar(&o.replay, "replay", "", "Re-export a saved run instead of running")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	fs.Visit(func(f *flag.Flag) { o.setFlags[f.Name] = true })
	return o, nil
}

// resolveSettings layers the settings: defaults, then the app config, then a
// named profile, then flags given on the command line.
func resolveSettings(o *options, appCfg model.AppConfig) (model.Settings, error) {
	s := model.DefaultSettings()
	appCfg.ApplyToSettings(&s)

	if o.profile != "" {
		profiles, err := project.AllProfiles(o.profiles)
		if err != nil {
			return s, fmt.Errorf("loading profiles: %w", err)
		}
		p, ok := model.FindProfile(profiles, o.profile)
		if !ok {
			return s, fmt.Errorf("%w: unknown profile %q", model.ErrInvalidConfig, o.profile)
		}
		log.Printf("using profile %s", p.Name)
		s = p.Settings
	}

	set := o.setFlags
	if set["placer"] {
		s.Placer = model.PlacerKind(o.placer)
	}
	if set["t0"] {
		s.InitialTemperature = o.t0
	}
	if set["alpha"] {
		s.CoolingRate = o.alpha
	}
	if set["tstop"] {
		s.StopTemperature = o.tstop
	}
	if set["max-iter"] {
		s.MaxIterations = o.maxIter
	}
	if set["time-limit"] {
		s.TimeLimit = o.timeLimit
	}
	if set["seed"] {
		s.Seed = o.seed
	}
	return s, s.Validate()
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	o, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		fmt.Fprintf(stderr, "floorplan: %v\n", err)
		return exitInput
	}

	if logFile := setupLogging(o.debug, o.logPath); logFile != nil {
		defer logFile.Close()
	}

	appCfg, err := project.LoadAppConfig(o.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "floorplan: %v\n", err)
		return exitInput
	}
	if o.importProfile != "" {
		return runImportProfile(o, stdout, stderr)
	}
	settings, err := resolveSettings(o, appCfg)
	if err != nil {
		fmt.Fprintf(stderr, "floorplan: %v\n", err)
		return exitInput
	}
	if o.saveProfile != "" || o.exportProfile != "" {
		return runSaveProfile(o, settings, stdout, stderr)
	}
	if o.replay != "" {
		return runReplay(o, stdout, stderr)
	}
	if o.out == "" {
		o.out = appCfg.ResultsPath
	}
	if o.out == "" {
		o.out = "results.txt"
	}
	log.Printf("settings: %+v", settings)

	tiles, err := importer.ImportFile(o.in)
	if err != nil {
		fmt.Fprintf(stderr, "floorplan: %v\n", err)
		return exitInput
	}
	if len(tiles) == 0 {
		fmt.Fprintf(stderr, "floorplan: %s contains no tiles\n", o.in)
		return exitInput
	}
	log.Printf("read %d tiles from %s", len(tiles), o.in)

	if o.verify != "" {
		return runVerify(o.verify, tiles, stdout, stderr)
	}
	if o.compare {
		return runCompare(ctx, settings, tiles, stdout, stderr)
	}

	name := strings.TrimSuffix(filepath.Base(o.in), filepath.Ext(o.in))
	cfg, bounds, err := engine.PlaceInitial(tiles, settings.Placer)
	if err != nil {
		fmt.Fprintf(stderr, "floorplan: %v\n", err)
		if errors.Is(err, model.ErrPlacementInfeasible) {
			savePartialRun(o, name, settings, tiles, cfg, bounds, stdout, stderr)
			return exitInfeasible
		}
		return exitInput
	}
	initial, err := cfg.Evaluate()
	if err != nil {
		fmt.Fprintf(stderr, "floorplan: %v\n", err)
		return exitInput
	}
	log.Printf("canvas %dx%d, %s placer", bounds.Width, bounds.Height, settings.Placer)
	printMetrics(stdout, "Initial", initial)

	annealer := engine.NewAnnealer(settings)
	annealer.Hook = func(p model.TracePoint) {
		log.Printf("iter=%d T=%.3f current=%d best=%d", p.Iteration, p.Temperature, p.CurrentArea, p.BestArea)
	}
	res, runErr := annealer.Run(ctx, cfg, bounds)
	cancelled := errors.Is(runErr, context.Canceled) || errors.Is(runErr, context.DeadlineExceeded)
	if runErr != nil && !cancelled {
		fmt.Fprintf(stderr, "floorplan: %v\n", runErr)
		if errors.Is(runErr, model.ErrDegenerateInput) || errors.Is(runErr, model.ErrInvalidConfig) {
			return exitInput
		}
		return exitInfeasible
	}
	if cancelled {
		fmt.Fprintln(stderr, "floorplan: interrupted, writing best layout found so far")
	}

	printMetrics(stdout, "Final", res.BestMetrics)
	est := model.EstimateArea(tiles)
	fmt.Fprintf(stdout, "Lower bound: %d  (final is %.1f%% above)\n", est.LowerBound, est.Excess(res.BestMetrics.Area))
	if gaps := model.DetectGaps(res.Best, 1); len(gaps) > 0 {
		g := gaps[0]
		fmt.Fprintf(stdout, "Gaps: %d  largest: %dx%d at (%d, %d)\n", len(gaps), g.Width, g.Height, g.X, g.Y)
	}
	fmt.Fprintf(stdout, "Iterations: %d  Accepted: %d  Stop: %s  Elapsed: %s\n",
		res.Stats.Iterations, res.Stats.Accepted, res.Stats.StopReason, res.Stats.Elapsed.Round(time.Millisecond))

	rec := model.NewRunRecord(name, settings, tiles)
	rec.Canvas = bounds
	rec.Initial = cfg
	rec.Final = res.Best
	rec.InitialMetrics = initial
	rec.FinalMetrics = res.BestMetrics
	rec.Stats = res.Stats
	rec.Trace = res.Trace

	if err := writeOutputs(o, rec, &appCfg); err != nil {
		fmt.Fprintf(stderr, "floorplan: %v\n", err)
		return exitInput
	}
	if cancelled {
		return exitCancelled
	}
	return exitOK
}

func printMetrics(w io.Writer, title string, m model.Metrics) {
	tr := m.TopRight()
	fmt.Fprintf(w, "%s area: %d  top right: (%d, %d)  empty: %.2f%%\n", title, m.Area, tr.X, tr.Y, m.EmptyPercent)
}

// writeOutputs writes the results file and every optional report requested
// on the command line.
func writeOutputs(o *options, rec model.RunRecord, appCfg *model.AppConfig) error {
	if err := export.WriteResultsFile(o.out, rec.Final); err != nil {
		return err
	}
	log.Printf("wrote results to %s", o.out)

	if err := writeReports(o, rec); err != nil {
		return err
	}
	if o.runPath != "" {
		if err := project.SaveRun(o.runPath, rec); err != nil {
			return err
		}
		appCfg.AddRecentRun(o.runPath, recentRunsLimit)
		if err := project.SaveAppConfig(o.configPath, *appCfg); err != nil {
			log.Printf("could not update recent runs: %v", err)
		}
	}
	return nil
}

// writeReports writes the optional PDF, workbook, drawing and chart.
func writeReports(o *options, rec model.RunRecord) error {
	if o.pdf != "" {
		opts := export.PDFOptions{Title: rec.Name, Stats: &rec.Stats, IncludeQR: true, ShowGaps: true}
		if err := export.ExportPDF(o.pdf, rec.Final, rec.FinalMetrics, opts); err != nil {
			return fmt.Errorf("pdf export: %w", err)
		}
	}
	if o.xlsx != "" {
		if err := export.ExportXLSX(o.xlsx, rec); err != nil {
			return fmt.Errorf("xlsx export: %w", err)
		}
	}
	if o.dxf != "" {
		if err := export.ExportDXF(o.dxf, rec.Final); err != nil {
			return fmt.Errorf("dxf export: %w", err)
		}
	}
	if o.chart != "" {
		if err := export.ExportConvergenceChart(o.chart, rec.Trace); err != nil {
			return fmt.Errorf("chart export: %w", err)
		}
	}
	return nil
}

// savePartialRun reports how far placement got and, when -run is given,
// saves the partial layout so it can be inspected.
func savePartialRun(o *options, name string, settings model.Settings, tiles []model.Tile,
	cfg model.Configuration, bounds model.CanvasBounds, stdout, stderr io.Writer) {
	placed := 0
	for _, t := range cfg.Tiles {
		if t.Placed {
			placed++
		}
	}
	fmt.Fprintf(stdout, "Placed %d of %d tiles on the %dx%d canvas\n", placed, len(cfg.Tiles), bounds.Width, bounds.Height)
	if o.runPath == "" {
		return
	}

	rec := model.NewRunRecord(name, settings, tiles)
	rec.Canvas = bounds
	rec.Initial = cfg
	rec.Final = cfg
	rec.Stats.StopReason = model.StopAborted
	if err := project.SaveRun(o.runPath, rec); err != nil {
		fmt.Fprintf(stderr, "floorplan: %v\n", err)
		return
	}
	fmt.Fprintf(stdout, "Partial layout saved to %s\n", o.runPath)
}

// runImportProfile adds a shared profile file to the custom profiles.
func runImportProfile(o *options, stdout, stderr io.Writer) int {
	p, err := project.ImportProfile(o.importProfile)
	if err != nil {
		fmt.Fprintf(stderr, "floorplan: %v\n", err)
		return exitInput
	}
	if err := project.UpsertCustomProfile(o.profiles, p); err != nil {
		fmt.Fprintf(stderr, "floorplan: %v\n", err)
		return exitInput
	}
	fmt.Fprintf(stdout, "Imported profile %s into %s\n", p.Name, o.profiles)
	return exitOK
}

// runSaveProfile stores the resolved settings as a custom profile and/or
// writes them to a standalone profile file.
func runSaveProfile(o *options, settings model.Settings, stdout, stderr io.Writer) int {
	name := o.saveProfile
	if name == "" {
		name = o.profile
	}
	if name == "" {
		name = "Custom"
	}
	p := model.SettingsProfile{Name: name, Description: "Saved from the command line", Settings: settings}

	if o.saveProfile != "" {
		if err := project.UpsertCustomProfile(o.profiles, p); err != nil {
			fmt.Fprintf(stderr, "floorplan: %v\n", err)
			return exitInput
		}
		fmt.Fprintf(stdout, "Saved profile %s to %s\n", p.Name, o.profiles)
	}
	if o.exportProfile != "" {
		if err := project.ExportProfile(o.exportProfile, p); err != nil {
			fmt.Fprintf(stderr, "floorplan: %v\n", err)
			return exitInput
		}
		fmt.Fprintf(stdout, "Exported profile %s to %s\n", p.Name, o.exportProfile)
	}
	return exitOK
}

// runVerify rebuilds the layout described by a results file and checks it
// against the input tiles and their canvas.
func runVerify(path string, tiles []model.Tile, stdout, stderr io.Writer) int {
	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(stderr, "floorplan: %v\n", err)
		return exitInput
	}
	defer f.Close()

	rows, err := export.ReadResults(f)
	if err != nil {
		fmt.Fprintf(stderr, "floorplan: %v\n", err)
		return exitInput
	}
	layout, err := export.Rebuild(tiles, rows)
	if err != nil {
		fmt.Fprintf(stderr, "floorplan: %v\n", err)
		return exitInput
	}
	if err := layout.Validate(model.ComputeCanvasBounds(tiles)); err != nil {
		fmt.Fprintf(stderr, "floorplan: %s: %v\n", path, err)
		return exitInfeasible
	}
	m, err := layout.Evaluate()
	if err != nil {
		fmt.Fprintf(stderr, "floorplan: %v\n", err)
		return exitInfeasible
	}
	printMetrics(stdout, "Verified", m)
	return exitOK
}

// runReplay loads a saved run, checks its final layout and writes the
// requested reports from it without annealing again.
func runReplay(o *options, stdout, stderr io.Writer) int {
	rec, err := project.LoadRun(o.replay)
	if err != nil {
		fmt.Fprintf(stderr, "floorplan: %v\n", err)
		return exitInput
	}
	if err := rec.Final.Validate(rec.Canvas); err != nil {
		fmt.Fprintf(stderr, "floorplan: %s: %v\n", o.replay, err)
		return exitInfeasible
	}
	fmt.Fprintf(stdout, "Run %s (%s, %d tiles)\n", rec.Name, rec.CreatedAt, len(rec.Final.Tiles))
	printMetrics(stdout, "Initial", rec.InitialMetrics)
	printMetrics(stdout, "Final", rec.FinalMetrics)

	if o.setFlags["out"] {
		if err := export.WriteResultsFile(o.out, rec.Final); err != nil {
			fmt.Fprintf(stderr, "floorplan: %v\n", err)
			return exitInput
		}
	}
	if err := writeReports(o, rec); err != nil {
		fmt.Fprintf(stderr, "floorplan: %v\n", err)
		return exitInput
	}
	return exitOK
}

// runCompare anneals the default scenarios and prints one row per scenario.
func runCompare(ctx context.Context, base model.Settings, tiles []model.Tile, stdout, stderr io.Writer) int {
	results := engine.CompareScenarios(ctx, engine.BuildDefaultScenarios(base), tiles)

	tw := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "Scenario\tInitial\tFinal\tImprovement\tEmpty\tIterations\tStop")
	code := exitOK
	for _, r := range results {
		if r.Err != nil && !errors.Is(r.Err, context.Canceled) {
			fmt.Fprintf(tw, "%s\t-\t-\t-\t-\t-\t%v\n", r.Scenario.Name, r.Err)
			if errors.Is(r.Err, model.ErrPlacementInfeasible) {
				code = exitInfeasible
			} else if code == exitOK {
				code = exitInput
			}
			continue
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%.1f%%\t%.1f%%\t%d\t%s\n",
			r.Scenario.Name, r.InitialMetrics.Area, r.Result.BestMetrics.Area, r.Improvement(),
			r.Result.BestMetrics.EmptyPercent, r.Result.Stats.Iterations, r.Result.Stats.StopReason)
	}
	if err := tw.Flush(); err != nil {
		fmt.Fprintf(stderr, "floorplan: %v\n", err)
		return exitInput
	}
	if ctx.Err() != nil {
		return exitCancelled
	}
	return code
}
