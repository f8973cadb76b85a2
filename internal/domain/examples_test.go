package domain

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gooze.dev/pkg/weave/internal/adapter"
	"gooze.dev/pkg/weave/internal/interp"
	m "gooze.dev/pkg/weave/internal/model"
)

func loadExamples(t *testing.T, root string) []m.Source {
	t.Helper()

	sources, err := adapter.NewLocalSourceFSAdapter(adapter.NewLocalIRFileAdapter()).Get(context.Background(), []m.Path{m.Path(root)})
	require.NoError(t, err)
	require.NotEmpty(t, sources)

	return sources
}

func TestExamples_WovenBaselineMatchesOriginal(t *testing.T) {
	for _, root := range []string{
		"../../examples/basic",
		"../../examples/branch",
		"../../examples/logical",
		"../../examples/loops",
	} {
		t.Run(root, func(t *testing.T) {
			ctx := context.Background()
			orch := NewOrchestrator(interp.WithStepLimit(100_000))

			for _, source := range loadExamples(t, root) {
				registry := NewRegistry()

				woven, err := NewWeaver(registry, m.WeaveConfig{Operators: m.AllOperators(), Track: true}).
					WeaveProgram(ctx, source.Program, 4)
				require.NoError(t, err)
				assert.NotEmpty(t, registry.Points())

				want, err := orch.Baseline(ctx, source.Program, false)
				require.NoError(t, err)

				got, err := orch.Baseline(ctx, woven, true)
				require.NoError(t, err)

				assert.Equal(t, want.Outcomes, got.Outcomes)
				assert.Positive(t, got.Reached())

				for _, point := range registry.Points() {
					result, err := orch.TestMutation(ctx, woven, got, point)
					require.NoError(t, err)
					assert.NotEqual(t, m.Error, result.Status, "%s#%d", point.Class, point.ID)
				}
			}
		})
	}
}

func TestExamples_InvalidProgramFailsToWeave(t *testing.T) {
	sources := loadExamples(t, "../../examples/invalid")

	_, err := NewWeaver(NewRegistry(), m.DefaultWeaveConfig()).WeaveProgram(context.Background(), sources[0].Program, 1)
	require.ErrorIs(t, err, ErrMalformedIR)
}
