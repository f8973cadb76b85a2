package domain

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"gooze.dev/pkg/weave/internal/adapter"
	"gooze.dev/pkg/weave/internal/controller"
	"gooze.dev/pkg/weave/internal/ir"
	m "gooze.dev/pkg/weave/internal/model"
)

type mockUI struct {
	mock.Mock
}

func (u *mockUI) Start(ctx context.Context, _ ...controller.StartOption) error {
	return u.Called(ctx).Error(0)
}

func (u *mockUI) Close(ctx context.Context) { u.Called(ctx) }

func (u *mockUI) Wait(ctx context.Context) { u.Called(ctx) }

func (u *mockUI) DisplayEstimation(ctx context.Context, points []m.MutationPoint, err error) error {
	return u.Called(ctx, points, err).Error(0)
}

func (u *mockUI) DisplayDiff(ctx context.Context, path m.Path, diff string) error {
	return u.Called(ctx, path, diff).Error(0)
}

func (u *mockUI) DisplayConcurrencyInfo(ctx context.Context, parallel int, count int) {
	u.Called(ctx, parallel, count)
}

func (u *mockUI) DisplayCompletedTestInfo(ctx context.Context, result m.MutantResult) {
	u.Called(ctx, result)
}

func (u *mockUI) DisplayResults(ctx context.Context, reports []m.Report) error {
	return u.Called(ctx, reports).Error(0)
}

func (u *mockUI) DisplayMutationScore(ctx context.Context, score float64) {
	u.Called(ctx, score)
}

// aorPoints is the number of arithmetic mutants in weaveFixture: div, ddiv,
// both branches of step, the counter of count, and both statements of Q.both.
const aorPoints = 9 + 7 + 18 + 9 + 18

func newTestWorkflow(t *testing.T, ui controller.UI) (Workflow, m.Path) {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "calc"+m.IRExt), []byte(weaveFixture), 0o600))

	irAdapter := adapter.NewLocalIRFileAdapter()
	wf := NewWorkflow(
		adapter.NewLocalSourceFSAdapter(irAdapter),
		irAdapter,
		adapter.NewLocalReportStore(),
		ui,
		NewOrchestrator(),
		NewMutantStreamer(),
	)

	return wf, m.Path(dir)
}

func readLines(t *testing.T, path string) []string {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

func TestWorkflow_Weave(t *testing.T) {
	ui := &mockUI{}
	wf, src := newTestWorkflow(t, ui)
	out := filepath.Join(t.TempDir(), "out")

	ui.On("Start", mock.Anything).Return(nil).Once()
	ui.On("DisplayEstimation", mock.Anything, mock.MatchedBy(func(points []m.MutationPoint) bool {
		return len(points) == aorPoints
	}), nil).Return(nil).Once()
	ui.On("Close", mock.Anything).Once()

	err := wf.Weave(context.Background(), WeaveArgs{
		Paths:    []m.Path{src},
		Output:   m.Path(out),
		Config:   ops(m.OperatorAOR),
		Parallel: 2,
	})
	require.NoError(t, err)
	ui.AssertExpectations(t)

	data, err := os.ReadFile(filepath.Join(out, "calc"+m.WovenExt))
	require.NoError(t, err)

	woven, err := ir.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, SelectorLocal, woven.Class("P").Method("div").Body[0].(*ir.Assign).Dst.(*ir.Local).Name)

	lines := readLines(t, filepath.Join(out, m.MutantsFile))
	require.Len(t, lines, aorPoints)
	assert.Equal(t, filepath.Join(string(src), "calc"+m.IRExt)+"\tP\t0\tdiv\taor", lines[0])
}

func TestWorkflow_WeaveSeveralSources(t *testing.T) {
	ui := &mockUI{}
	wf, src := newTestWorkflow(t, ui)
	out := filepath.Join(t.TempDir(), "out")
	other := filepath.Join(string(src), "other"+m.IRExt)

	require.NoError(t, os.WriteFile(other, []byte(weaveFixture), 0o600))

	ui.On("Start", mock.Anything).Return(nil).Once()
	ui.On("DisplayEstimation", mock.Anything, mock.Anything, nil).Return(nil).Once()
	ui.On("Close", mock.Anything).Once()

	err := wf.Weave(context.Background(), WeaveArgs{
		Paths:  []m.Path{src},
		Output: m.Path(out),
		Config: ops(m.OperatorAOR),
	})
	require.NoError(t, err)

	lines := readLines(t, filepath.Join(out, m.MutantsFile))
	require.Len(t, lines, 2*aorPoints)
	assert.Equal(t, filepath.Join(string(src), "calc"+m.IRExt)+"\tP\t0\tdiv\taor", lines[0])
	assert.Equal(t, other+"\tP\t0\tdiv\taor", lines[aorPoints])
}

func TestWorkflow_WeaveNoSources(t *testing.T) {
	ui := &mockUI{}
	wf, _ := newTestWorkflow(t, ui)

	ui.On("Start", mock.Anything).Return(nil).Once()
	ui.On("Close", mock.Anything).Once()

	err := wf.Weave(context.Background(), WeaveArgs{Paths: []m.Path{m.Path(t.TempDir())}, Output: m.Path(t.TempDir())})
	require.ErrorIs(t, err, ErrNoSources)
	ui.AssertExpectations(t)
}

func TestWorkflow_Estimate(t *testing.T) {
	ui := &mockUI{}
	wf, src := newTestWorkflow(t, ui)

	ui.On("Start", mock.Anything).Return(nil).Once()
	ui.On("DisplayEstimation", mock.Anything, mock.MatchedBy(func(points []m.MutationPoint) bool {
		return len(points) == aorPoints && points[0].Class == "P" && points[len(points)-1].Class == "Q"
	}), nil).Return(nil).Once()
	ui.On("Wait", mock.Anything).Once()
	ui.On("Close", mock.Anything).Once()

	err := wf.Estimate(context.Background(), EstimateArgs{Paths: []m.Path{src}, Config: ops(m.OperatorAOR), Parallel: 4})
	require.NoError(t, err)
	ui.AssertExpectations(t)
}

func TestWorkflow_EstimateReportsErrors(t *testing.T) {
	ui := &mockUI{}
	wf, _ := newTestWorkflow(t, ui)

	ui.On("Start", mock.Anything).Return(nil).Once()
	ui.On("Close", mock.Anything).Once()
	ui.On("DisplayEstimation", mock.Anything, []m.MutationPoint(nil), mock.MatchedBy(func(err error) bool {
		return err != nil && strings.Contains(err.Error(), ErrNoSources.Error())
	})).Return(nil).Once()

	err := wf.Estimate(context.Background(), EstimateArgs{Paths: []m.Path{m.Path(t.TempDir())}, Config: m.DefaultWeaveConfig()})
	require.NoError(t, err)
	ui.AssertExpectations(t)
}

func TestWorkflow_Diff(t *testing.T) {
	ui := &mockUI{}
	wf, src := newTestWorkflow(t, ui)
	path := m.Path(filepath.Join(string(src), "calc"+m.IRExt))

	var diff string

	ui.On("DisplayDiff", mock.Anything, path, mock.Anything).Run(func(args mock.Arguments) {
		diff = args.String(2)
	}).Return(nil).Once()

	err := wf.Diff(context.Background(), DiffArgs{Path: path, Config: ops(m.OperatorABS), Context: 3})
	require.NoError(t, err)
	ui.AssertExpectations(t)

	assert.Contains(t, diff, "--- "+string(path))
	assert.Contains(t, diff, "+++ calc"+m.WovenExt)
	assert.Contains(t, diff, SelectorLocal)
}

func TestWorkflow_RunAndView(t *testing.T) {
	ui := &mockUI{}
	wf, src := newTestWorkflow(t, ui)
	out := m.Path(t.TempDir())

	ui.On("Start", mock.Anything).Return(nil)
	ui.On("Close", mock.Anything)
	ui.On("DisplayConcurrencyInfo", mock.Anything, 2, aorPoints).Once()
	ui.On("DisplayCompletedTestInfo", mock.Anything, mock.Anything).Times(aorPoints)
	ui.On("DisplayMutationScore", mock.Anything, mock.MatchedBy(func(score float64) bool {
		return score > 0 && score < 1
	})).Twice()

	err := wf.Run(context.Background(), RunArgs{
		Paths:     []m.Path{src},
		Output:    out,
		Operators: []m.OperatorKind{m.OperatorAOR},
		Parallel:  2,
	})
	require.NoError(t, err)

	reports, err := adapter.NewLocalReportStore().LoadReports(out)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	require.Len(t, reports[0].Results, aorPoints)
	assert.NotEmpty(t, reports[0].Hash)

	counts := reports[0].Counts()
	assert.Positive(t, counts[m.Killed])
	assert.Positive(t, counts[m.Survived])
	assert.Equal(t, 7+9+9, counts[m.NotCovered], "ddiv, the negative branch of step and count")
	assert.Zero(t, counts[m.Error])

	first := reports[0].Results[0]
	assert.Equal(t, m.MutationPoint{Class: "P", Method: "div", Operator: m.OperatorAOR, ID: 0}, first.Point)
	assert.Equal(t, m.Killed, first.Status)

	assert.Len(t, readLines(t, filepath.Join(string(out), m.MutantsFile)), aorPoints)

	ui.On("DisplayResults", mock.Anything, reports).Return(nil).Once()

	require.NoError(t, wf.View(context.Background(), ViewArgs{Output: out}))
	ui.AssertExpectations(t)
}

func TestWorkflow_RunShard(t *testing.T) {
	ui := &mockUI{}
	wf, src := newTestWorkflow(t, ui)
	out := m.Path(t.TempDir())
	shard := (aorPoints-1-1)/2 + 1

	ui.On("Start", mock.Anything).Return(nil)
	ui.On("Close", mock.Anything)
	ui.On("DisplayConcurrencyInfo", mock.Anything, 1, shard).Once()
	ui.On("DisplayCompletedTestInfo", mock.Anything, mock.Anything).Times(shard)
	ui.On("DisplayMutationScore", mock.Anything, mock.Anything).Once()

	err := wf.Run(context.Background(), RunArgs{
		Paths:           []m.Path{src},
		Output:          out,
		Operators:       []m.OperatorKind{m.OperatorAOR},
		Parallel:        1,
		ShardIndex:      1,
		TotalShardCount: 2,
	})
	require.NoError(t, err)
	ui.AssertExpectations(t)

	reports, err := adapter.NewLocalReportStore().LoadReports(out)
	require.NoError(t, err)
	require.Len(t, reports, 1)
	require.Len(t, reports[0].Results, shard)
	assert.Equal(t, int64(1), reports[0].Results[0].Point.ID)
}

func TestWorkflow_RunShardSeveralSources(t *testing.T) {
	ui := &mockUI{}
	wf, src := newTestWorkflow(t, ui)
	out := m.Path(t.TempDir())
	shard := (aorPoints-1-1)/2 + 1

	require.NoError(t, os.WriteFile(filepath.Join(string(src), "other"+m.IRExt), []byte(weaveFixture), 0o600))

	ui.On("Start", mock.Anything).Return(nil)
	ui.On("Close", mock.Anything)
	ui.On("DisplayConcurrencyInfo", mock.Anything, 1, 2*shard).Once()
	ui.On("DisplayCompletedTestInfo", mock.Anything, mock.Anything).Times(2 * shard)
	ui.On("DisplayMutationScore", mock.Anything, mock.Anything).Once()

	err := wf.Run(context.Background(), RunArgs{
		Paths:           []m.Path{src},
		Output:          out,
		Operators:       []m.OperatorKind{m.OperatorAOR},
		Parallel:        1,
		ShardIndex:      1,
		TotalShardCount: 2,
	})
	require.NoError(t, err)
	ui.AssertExpectations(t)
}

func TestShardedCount(t *testing.T) {
	sized := func(n int) wovenSource {
		r := NewRegistry()
		for i := 0; i < n; i++ {
			r.Allocate("P", "f", m.OperatorAOR)
		}

		return wovenSource{registry: r}
	}

	woven := []wovenSource{sized(3), sized(3)}

	assert.Equal(t, 2, shardedCount(woven, 1, 2))
	assert.Equal(t, 4, shardedCount(woven, 0, 2))
	assert.Equal(t, 6, shardedCount(woven, 0, 0))
	assert.Equal(t, 0, shardedCount(woven, 3, 2))
}

func TestWorkflow_ViewWithoutResults(t *testing.T) {
	ui := &mockUI{}
	wf, _ := newTestWorkflow(t, ui)

	ui.On("Start", mock.Anything).Return(nil).Once()
	ui.On("Close", mock.Anything).Once()

	err := wf.View(context.Background(), ViewArgs{Output: m.Path(t.TempDir())})
	require.ErrorIs(t, err, adapter.ErrNoReports)
	ui.AssertExpectations(t)
}
