package domain

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/pmezard/go-difflib/difflib"
	"golang.org/x/sync/errgroup"

	"gooze.dev/pkg/weave/internal/adapter"
	"gooze.dev/pkg/weave/internal/controller"
	"gooze.dev/pkg/weave/internal/ir"
	m "gooze.dev/pkg/weave/internal/model"
	weavepkg "gooze.dev/pkg/weave/pkg"
)

// ErrNoSources is returned when the given paths hold no IR programs.
var ErrNoSources = errors.New("no IR programs found")

// WeaveArgs contains the arguments for weaving IR programs to disk.
type WeaveArgs struct {
	Paths    []m.Path
	Output   m.Path
	Config   m.WeaveConfig
	Parallel int
}

// EstimateArgs contains the arguments for listing mutation points.
type EstimateArgs struct {
	Paths    []m.Path
	Config   m.WeaveConfig
	Parallel int
}

// DiffArgs contains the arguments for diffing one program against its woven
// form.
type DiffArgs struct {
	Path    m.Path
	Config  m.WeaveConfig
	Context int
}

// RunArgs contains the arguments for running the harness.
type RunArgs struct {
	Paths           []m.Path
	Output          m.Path
	Operators       []m.OperatorKind
	Parallel        int
	ShardIndex      int
	TotalShardCount int
}

// ViewArgs contains the arguments for displaying saved results.
type ViewArgs struct {
	Output m.Path
}

// Workflow drives the weave commands.
type Workflow interface {
	Weave(ctx context.Context, args WeaveArgs) error
	Estimate(ctx context.Context, args EstimateArgs) error
	Diff(ctx context.Context, args DiffArgs) error
	Run(ctx context.Context, args RunArgs) error
	View(ctx context.Context, args ViewArgs) error
}

type workflow struct {
	adapter.SourceFSAdapter
	adapter.IRFileAdapter
	adapter.ReportStore
	controller.UI
	Orchestrator
	MutantStreamer
}

// NewWorkflow creates a Workflow with the provided dependencies.
func NewWorkflow(
	fsAdapter adapter.SourceFSAdapter,
	irAdapter adapter.IRFileAdapter,
	reportStore adapter.ReportStore,
	ui controller.UI,
	orchestrator Orchestrator,
	streamer MutantStreamer,
) Workflow {
	return &workflow{
		SourceFSAdapter: fsAdapter,
		IRFileAdapter:   irAdapter,
		ReportStore:     reportStore,
		UI:              ui,
		Orchestrator:    orchestrator,
		MutantStreamer:  streamer,
	}
}

// wovenSource is a source together with its woven program and the points
// allocated while weaving it.
type wovenSource struct {
	source   m.Source
	woven    *ir.Program
	registry *Registry
}

func (w *workflow) load(ctx context.Context, paths []m.Path) ([]m.Source, error) {
	sources, err := w.Get(ctx, paths)
	if err != nil {
		slog.Error("Failed to load sources", "error", err)
		return nil, fmt.Errorf("get sources: %w", err)
	}

	if len(sources) == 0 {
		return nil, fmt.Errorf("%w in %v", ErrNoSources, paths)
	}

	return sources, nil
}

// weaveSources weaves each source with its own registry, classes in parallel.
func (w *workflow) weaveSources(ctx context.Context, sources []m.Source, config m.WeaveConfig, parallel int) ([]wovenSource, error) {
	out := make([]wovenSource, 0, len(sources))

	for _, source := range sources {
		registry := NewRegistry()

		woven, err := NewWeaver(registry, config).WeaveProgram(ctx, source.Program, parallel)
		if err != nil {
			slog.Error("Failed to weave source", "source", source.Origin.Path, "error", err)
			return nil, fmt.Errorf("weave %s: %w", source.Origin.Path, err)
		}

		slog.Info("Woven source", "source", source.Origin.Path, "mutants", len(registry.Points()))

		out = append(out, wovenSource{source: source, woven: woven, registry: registry})
	}

	return out, nil
}

func allPoints(woven []wovenSource) []m.MutationPoint {
	var points []m.MutationPoint
	for _, ws := range woven {
		points = append(points, ws.registry.Points()...)
	}

	return points
}

func (w *workflow) Weave(ctx context.Context, args WeaveArgs) error {
	if err := w.Start(ctx, controller.WithWeaveMode()); err != nil {
		slog.Error("Failed to start workflow UI", "error", err)
		return err
	}
	defer w.Close(ctx)

	sources, err := w.load(ctx, args.Paths)
	if err != nil {
		return err
	}

	woven, err := w.weaveSources(ctx, sources, args.Config, args.Parallel)
	if err != nil {
		return err
	}

	if err := w.MkdirAll(args.Output); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	for _, ws := range woven {
		data, err := w.Format(ctx, ws.woven)
		if err != nil {
			return fmt.Errorf("encode %s: %w", ws.source.Origin.Path, err)
		}

		path := w.JoinPath(string(args.Output), ws.source.Name()+m.WovenExt)
		if err := w.WriteFile(path, data, 0o600); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}

		slog.Debug("Wrote woven program", "path", path)
	}

	w.saveMutants(args.Output, woven)

	return w.DisplayEstimation(ctx, allPoints(woven), nil)
}

// saveMutants writes mutants.txt. Failures are logged and otherwise ignored.
func (w *workflow) saveMutants(dir m.Path, woven []wovenSource) {
	var buf bytes.Buffer

	for _, ws := range woven {
		if err := ws.registry.WriteReport(&buf, ws.source.Origin.Path); err != nil {
			slog.Error("Failed to render mutation report", "source", ws.source.Origin.Path, "error", err)
			return
		}
	}

	if err := w.SaveMutants(dir, buf.Bytes()); err != nil {
		slog.Error("Failed to save mutation report", "dir", dir, "error", err)
	}
}

func (w *workflow) Estimate(ctx context.Context, args EstimateArgs) error {
	if err := w.Start(ctx, controller.WithEstimateMode()); err != nil {
		slog.Error("Failed to start workflow UI", "error", err)
		return err
	}

	woven, err := w.estimate(ctx, args)
	if err != nil {
		w.Close(ctx)
		slog.Error("Failed to generate mutants", "error", err)

		return w.DisplayEstimation(ctx, nil, fmt.Errorf("generate mutants: %w", err))
	}

	if err := w.DisplayEstimation(ctx, allPoints(woven), nil); err != nil {
		w.Close(ctx)
		slog.Error("Failed to display estimation", "error", err)

		return fmt.Errorf("display: %w", err)
	}

	// Wait for UI to be closed by user (press 'q')
	w.Wait(ctx)
	w.Close(ctx)

	return nil
}

func (w *workflow) estimate(ctx context.Context, args EstimateArgs) ([]wovenSource, error) {
	sources, err := w.load(ctx, args.Paths)
	if err != nil {
		return nil, err
	}

	return w.weaveSources(ctx, sources, args.Config, args.Parallel)
}

func (w *workflow) Diff(ctx context.Context, args DiffArgs) error {
	sources, err := w.load(ctx, []m.Path{args.Path})
	if err != nil {
		return err
	}

	woven, err := w.weaveSources(ctx, sources[:1], args.Config, 1)
	if err != nil {
		return err
	}

	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(w.Print(sources[0].Program)),
		B:        difflib.SplitLines(w.Print(woven[0].woven)),
		FromFile: string(args.Path),
		ToFile:   sources[0].Name() + m.WovenExt,
		Context:  args.Context,
	})
	if err != nil {
		return fmt.Errorf("diff %s: %w", args.Path, err)
	}

	return w.DisplayDiff(ctx, args.Path, diff)
}

func (w *workflow) Run(ctx context.Context, args RunArgs) error {
	if err := w.Start(ctx, controller.WithTestMode()); err != nil {
		slog.Error("Failed to start workflow UI", "error", err)
		return err
	}
	defer w.Close(ctx)

	sources, err := w.load(ctx, args.Paths)
	if err != nil {
		return err
	}

	config := m.WeaveConfig{Operators: args.Operators, Track: true}

	woven, err := w.weaveSources(ctx, sources, config, args.Parallel)
	if err != nil {
		return err
	}

	w.saveMutants(args.Output, woven)

	results, err := weavepkg.NewFileSpill[m.MutantResult]("")
	if err != nil {
		return fmt.Errorf("create result spill: %w", err)
	}

	defer func() {
		if err := results.Remove(); err != nil {
			slog.Error("Failed to remove result spill", "path", results.Path(), "error", err)
		}
	}()

	w.DisplayConcurrencyInfo(ctx, normalizeBufferSize(args.Parallel), shardedCount(woven, args.ShardIndex, args.TotalShardCount))

	var errs *multierror.Error

	reports := make([]m.Report, 0, len(woven))

	for _, ws := range woven {
		start := results.Len()

		if err := w.testSource(ctx, ws, args, results); err != nil {
			errs = multierror.Append(errs, err)
		}

		report, err := collectReport(ws.source, results, start)
		if err != nil {
			return err
		}

		reports = append(reports, report)
	}

	if err := w.SaveReports(args.Output, reports); err != nil {
		slog.Error("Failed to save results", "dir", args.Output, "error", err)
	}

	score, err := mutationScoreFromResults(results)
	if err != nil {
		return fmt.Errorf("compute mutation score: %w", err)
	}

	w.DisplayMutationScore(ctx, score)

	return errs.ErrorOrNil()
}

// testSource runs the harness over one woven source and appends a verdict for
// every mutant of the shard to results.
func (w *workflow) testSource(ctx context.Context, ws wovenSource, args RunArgs, results weavepkg.FileSpill[m.MutantResult]) error {
	baseline, err := w.Baseline(ctx, ws.woven, true)
	if err != nil {
		slog.Error("Baseline failed", "source", ws.source.Origin.Path, "error", err)
		return fmt.Errorf("%s: %w", ws.source.Origin.Path, err)
	}

	var (
		errs    *multierror.Error
		errsMux sync.Mutex
		group   errgroup.Group
	)

	group.SetLimit(normalizeBufferSize(args.Parallel))

	points := w.Shard(ctx, w.Stream(ctx, ws.registry.Points(), args.Parallel), args.Parallel, args.ShardIndex, args.TotalShardCount)

	for point := range points {
		group.Go(func() error {
			result, err := w.TestMutation(ctx, ws.woven, baseline, point)
			if err != nil {
				slog.Error("Mutant failed", "class", point.Class, "id", point.ID, "error", err)

				errsMux.Lock()
				errs = multierror.Append(errs, err)
				errsMux.Unlock()
			}

			w.DisplayCompletedTestInfo(ctx, result)

			return results.Append(result)
		})
	}

	if err := group.Wait(); err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		errs = multierror.Append(errs, err)
	}

	return errs.ErrorOrNil()
}

// shardSize returns how many of n points fall in the shard.
// shardedCount is the number of mutants this shard tests. Each source is
// sharded on its own.
func shardedCount(woven []wovenSource, shardIndex, totalShardCount int) int {
	count := 0
	for _, ws := range woven {
		count += shardSize(len(ws.registry.Points()), shardIndex, totalShardCount)
	}

	return count
}

func shardSize(n, shardIndex, totalShardCount int) int {
	if totalShardCount <= 0 {
		return n
	}

	if shardIndex < 0 || shardIndex >= totalShardCount || shardIndex >= n {
		return 0
	}

	return (n-shardIndex-1)/totalShardCount + 1
}

// collectReport gathers the results appended since start, ordered by class
// and id.
func collectReport(source m.Source, results weavepkg.FileSpill[m.MutantResult], start uint64) (m.Report, error) {
	report := m.Report{Source: source.Origin.Path, Hash: source.Origin.Hash, Results: []m.MutantResult{}}

	err := results.Range(func(index uint64, result m.MutantResult) error {
		if index >= start {
			report.Results = append(report.Results, result)
		}

		return nil
	})
	if err != nil {
		return m.Report{}, fmt.Errorf("read results: %w", err)
	}

	sort.Slice(report.Results, func(i, j int) bool {
		a, b := report.Results[i].Point, report.Results[j].Point
		if a.Class != b.Class {
			return a.Class < b.Class
		}

		return a.ID < b.ID
	})

	return report, nil
}

func (w *workflow) View(ctx context.Context, args ViewArgs) error {
	if err := w.Start(ctx, controller.WithViewMode()); err != nil {
		slog.Error("Failed to start workflow UI", "error", err)
		return err
	}
	defer w.Close(ctx)

	reports, err := w.LoadReports(args.Output)
	if err != nil {
		slog.Error("Failed to load results", "dir", args.Output, "error", err)
		return fmt.Errorf("load results: %w", err)
	}

	if err := w.DisplayResults(ctx, reports); err != nil {
		return err
	}

	totals := make(map[m.TestStatus]int)

	for _, report := range reports {
		for status, n := range report.Counts() {
			totals[status] += n
		}
	}

	w.DisplayMutationScore(ctx, mutationScore(totals[m.Killed], totals[m.Survived]))

	return nil
}
