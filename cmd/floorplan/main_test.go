package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/piwi3910/floorplan/internal/export"
	"github.com/piwi3910/floorplan/internal/importer"
	"github.com/piwi3910/floorplan/internal/model"
	"github.com/piwi3910/floorplan/internal/project"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testEnv keeps every file a run touches inside a temp directory.
type testEnv struct {
	dir    string
	in     string
	out    string
	config string
}

func newTestEnv(t *testing.T, tiles string) testEnv {
	t.Helper()
	dir := t.TempDir()
	env := testEnv{
		dir:    dir,
		in:     filepath.Join(dir, "tiles.txt"),
		out:    filepath.Join(dir, "results.txt"),
		config: filepath.Join(dir, "config.json"),
	}
	require.NoError(t, os.WriteFile(env.in, []byte(tiles), 0644))
	return env
}

// args returns the flags every test run needs plus extra.
func (e testEnv) args(extra ...string) []string {
	base := []string{
		"-in", e.in,
		"-out", e.out,
		"-config", e.config,
		"-profiles", filepath.Join(e.dir, "profiles.json"),
		"-seed", "42",
		"-t0", "1000",
		"-alpha", "0.05",
		"-tstop", "1",
	}
	return append(base, extra...)
}

func runCLI(t *testing.T, ctx context.Context, args []string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := run(ctx, args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

const scenarioTiles = "4,2\n3,3\n2,5\n2,2\n1,3\n"

func TestRun_WritesFeasibleResults(t *testing.T) {
	env := newTestEnv(t, scenarioTiles)

	code, stdout, stderr := runCLI(t, context.Background(), env.args())
	require.Equal(t, exitOK, code, stderr)
	assert.Contains(t, stdout, "Initial area:")
	assert.Contains(t, stdout, "Final area:")
	assert.Contains(t, stdout, "top right:")
	assert.Contains(t, stdout, "Lower bound: 34")

	input, err := importer.ReadTilesFile(env.in)
	require.NoError(t, err)

	f, err := os.Open(env.out)
	require.NoError(t, err)
	defer f.Close()
	rows, err := export.ReadResults(f)
	require.NoError(t, err)
	require.Len(t, rows, len(input))

	layout, err := export.Rebuild(input, rows)
	require.NoError(t, err)
	assert.NoError(t, layout.Validate(model.ComputeCanvasBounds(input)))
}

func TestRun_MalformedInput(t *testing.T) {
	env := newTestEnv(t, "4,2\n4;2\n")

	code, _, stderr := runCLI(t, context.Background(), env.args())
	assert.Equal(t, exitInput, code)
	assert.Contains(t, stderr, "tiles.txt:2")

	_, err := os.Stat(env.out)
	assert.True(t, os.IsNotExist(err), "no results on input errors")
}

func TestRun_MissingInput(t *testing.T) {
	env := newTestEnv(t, "")
	require.NoError(t, os.Remove(env.in))

	code, _, _ := runCLI(t, context.Background(), env.args())
	assert.Equal(t, exitInput, code)
}

func TestRun_EmptyInput(t *testing.T) {
	env := newTestEnv(t, "\n\n")

	code, _, stderr := runCLI(t, context.Background(), env.args())
	assert.Equal(t, exitInput, code)
	assert.Contains(t, stderr, "no tiles")
}

func TestRun_SingleTileIsDegenerate(t *testing.T) {
	env := newTestEnv(t, "4,2\n")

	code, _, stderr := runCLI(t, context.Background(), env.args())
	assert.Equal(t, exitInput, code)
	assert.Contains(t, stderr, "at least two tiles")
}

func TestRun_PlacementInfeasible(t *testing.T) {
	// Canvas is 22x22, far shorter than the 100-unit tile.
	env := newTestEnv(t, "1,100\n1,1\n")

	code, _, stderr := runCLI(t, context.Background(), env.args())
	assert.Equal(t, exitInfeasible, code)
	assert.Contains(t, stderr, "does not fit anywhere")
}

func TestRun_CancelledWritesBestSoFar(t *testing.T) {
	env := newTestEnv(t, scenarioTiles)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	code, stdout, stderr := runCLI(t, ctx, env.args())
	assert.Equal(t, exitCancelled, code)
	assert.Contains(t, stderr, "interrupted")
	assert.Contains(t, stdout, "Final area:")

	data, err := os.ReadFile(env.out)
	require.NoError(t, err)
	assert.Equal(t, 5, strings.Count(string(data), "\n"))
}

func TestRun_AllOutputs(t *testing.T) {
	env := newTestEnv(t, scenarioTiles)
	paths := map[string]string{
		"-pdf":   filepath.Join(env.dir, "layout.pdf"),
		"-xlsx":  filepath.Join(env.dir, "run.xlsx"),
		"-dxf":   filepath.Join(env.dir, "layout.dxf"),
		"-chart": filepath.Join(env.dir, "chart.html"),
		"-run":   filepath.Join(env.dir, "runs", "run.json"),
	}
	var extra []string
	for flagName, p := range paths {
		extra = append(extra, flagName, p)
	}

	code, _, stderr := runCLI(t, context.Background(), env.args(extra...))
	require.Equal(t, exitOK, code, stderr)

	for flagName, p := range paths {
		info, err := os.Stat(p)
		if assert.NoError(t, err, flagName) {
			assert.Positive(t, info.Size(), flagName)
		}
	}

	rec, err := project.LoadRun(paths["-run"])
	require.NoError(t, err)
	assert.Equal(t, "tiles", rec.Name)
	assert.Len(t, rec.Final.Tiles, 5)
	assert.LessOrEqual(t, rec.FinalMetrics.Area, rec.InitialMetrics.Area)

	appCfg, err := project.LoadAppConfig(env.config)
	require.NoError(t, err)
	assert.Equal(t, []string{paths["-run"]}, appCfg.RecentRuns)
}

func TestRun_Compare(t *testing.T) {
	env := newTestEnv(t, scenarioTiles)

	code, stdout, stderr := runCLI(t, context.Background(), env.args("-compare"))
	require.Equal(t, exitOK, code, stderr)
	assert.Contains(t, stdout, "Current Settings")
	assert.Contains(t, stdout, "Guillotine Placer")
	assert.Contains(t, stdout, "Slow Cooling")
}

func TestRun_BadSettings(t *testing.T) {
	env := newTestEnv(t, scenarioTiles)

	code, _, stderr := runCLI(t, context.Background(), env.args("-placer", "spiral"))
	assert.Equal(t, exitInput, code)
	assert.Contains(t, stderr, "unknown placer")

	code, _, _ = runCLI(t, context.Background(), env.args("-profile", "nope"))
	assert.Equal(t, exitInput, code)
}

func TestRun_Help(t *testing.T) {
	code, _, stderr := runCLI(t, context.Background(), []string{"-h"})
	assert.Equal(t, exitOK, code)
	assert.Contains(t, stderr, "-time-limit")
}

func TestResolveSettings_Layering(t *testing.T) {
	dir := t.TempDir()
	o, err := parseFlags([]string{
		"-profiles", filepath.Join(dir, "profiles.json"),
		"-profile", "quick",
		"-alpha", "0.1",
	}, &bytes.Buffer{})
	require.NoError(t, err)

	appCfg := model.DefaultAppConfig()
	appCfg.DefaultInitialTemperature = 1
	s, err := resolveSettings(o, appCfg)
	require.NoError(t, err)

	quick, _ := model.FindProfile(model.BuiltInProfiles(), "Quick")
	assert.Equal(t, 0.1, s.CoolingRate, "explicit flag wins")
	assert.Equal(t, quick.Settings.InitialTemperature, s.InitialTemperature, "profile replaces config")
	assert.Equal(t, quick.Settings.TimeLimit, s.TimeLimit)
}

func TestResolveSettings_ConfigDefaults(t *testing.T) {
	o, err := parseFlags(nil, &bytes.Buffer{})
	require.NoError(t, err)

	appCfg := model.DefaultAppConfig()
	appCfg.DefaultPlacer = model.PlacerGuillotine
	s, err := resolveSettings(o, appCfg)
	require.NoError(t, err)
	assert.Equal(t, model.PlacerGuillotine, s.Placer, "unset flags keep the config value")
}

func TestRun_PlacementInfeasibleSavesPartialRun(t *testing.T) {
	env := newTestEnv(t, "1,100\n1,1\n")
	runPath := filepath.Join(env.dir, "partial.json")

	code, stdout, _ := runCLI(t, context.Background(), env.args("-run", runPath))
	require.Equal(t, exitInfeasible, code)
	assert.Contains(t, stdout, "Placed 0 of 2 tiles")

	rec, err := project.LoadRun(runPath)
	require.NoError(t, err)
	assert.Equal(t, model.StopAborted, rec.Stats.StopReason)
	assert.Len(t, rec.Final.Tiles, 2)
	assert.ErrorIs(t, rec.Final.Validate(rec.Canvas), model.ErrUnplacedTile)

	code, _, stderr := runCLI(t, context.Background(), env.args("-replay", runPath))
	assert.Equal(t, exitInfeasible, code)
	assert.Contains(t, stderr, "not placed")
}

func TestRun_VerifyResults(t *testing.T) {
	env := newTestEnv(t, scenarioTiles)
	code, _, stderr := runCLI(t, context.Background(), env.args())
	require.Equal(t, exitOK, code, stderr)

	code, stdout, stderr := runCLI(t, context.Background(), env.args("-verify", env.out))
	require.Equal(t, exitOK, code, stderr)
	assert.Contains(t, stdout, "Verified area:")
}

func TestRun_VerifyRejectsOverlap(t *testing.T) {
	env := newTestEnv(t, "2,2\n2,2\n")
	bad := filepath.Join(env.dir, "bad.txt")
	require.NoError(t, os.WriteFile(bad, []byte("0,0,0\n1,1,0\n"), 0644))

	code, _, stderr := runCLI(t, context.Background(), env.args("-verify", bad))
	assert.Equal(t, exitInfeasible, code)
	assert.Contains(t, stderr, "overlap")

	short := filepath.Join(env.dir, "short.txt")
	require.NoError(t, os.WriteFile(short, []byte("0,0,0\n"), 0644))
	code, _, _ = runCLI(t, context.Background(), env.args("-verify", short))
	assert.Equal(t, exitInput, code)
}

func TestRun_ReplayWritesReports(t *testing.T) {
	env := newTestEnv(t, scenarioTiles)
	runPath := filepath.Join(env.dir, "run.json")
	code, _, stderr := runCLI(t, context.Background(), env.args("-run", runPath))
	require.Equal(t, exitOK, code, stderr)

	dxfPath := filepath.Join(env.dir, "replay.dxf")
	replayOut := filepath.Join(env.dir, "replay.txt")
	code, stdout, stderr := runCLI(t, context.Background(), []string{
		"-config", env.config,
		"-profiles", filepath.Join(env.dir, "profiles.json"),
		"-replay", runPath,
		"-dxf", dxfPath,
		"-out", replayOut,
	})
	require.Equal(t, exitOK, code, stderr)
	assert.Contains(t, stdout, "Run tiles")
	assert.FileExists(t, dxfPath)

	original, err := os.ReadFile(env.out)
	require.NoError(t, err)
	replayed, err := os.ReadFile(replayOut)
	require.NoError(t, err)
	assert.Equal(t, string(original), string(replayed))
}

func TestRun_SaveExportImportProfile(t *testing.T) {
	env := newTestEnv(t, scenarioTiles)
	profiles := filepath.Join(env.dir, "profiles.json")
	shared := filepath.Join(env.dir, "shared.json")

	code, stdout, stderr := runCLI(t, context.Background(), env.args("-alpha", "0.2", "-save-profile", "Fast", "-export-profile", shared))
	require.Equal(t, exitOK, code, stderr)
	assert.Contains(t, stdout, "Saved profile Fast")
	assert.Contains(t, stdout, "Exported profile Fast")

	saved, err := project.LoadCustomProfiles(profiles)
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, 0.2, saved[0].Settings.CoolingRate)

	// Import the shared file into a fresh profiles store and select it by name.
	other := filepath.Join(env.dir, "other.json")
	code, _, stderr = runCLI(t, context.Background(), []string{
		"-config", env.config, "-profiles", other, "-import-profile", shared,
	})
	require.Equal(t, exitOK, code, stderr)

	o, err := parseFlags([]string{"-profiles", other, "-profile", "fast"}, &bytes.Buffer{})
	require.NoError(t, err)
	s, err := resolveSettings(o, model.DefaultAppConfig())
	require.NoError(t, err)
	assert.Equal(t, 0.2, s.CoolingRate)
}

func TestRun_SaveProfileRejectsBuiltInName(t *testing.T) {
	env := newTestEnv(t, scenarioTiles)

	code, _, stderr := runCLI(t, context.Background(), env.args("-save-profile", "Quick"))
	assert.Equal(t, exitInput, code)
	assert.Contains(t, stderr, "built-in")
}
