package cmd

import (
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"gooze.dev/pkg/weave/internal/domain"
	m "gooze.dev/pkg/weave/internal/model"
)

func TestViewCmd_UsesRootOutputFlagByDefault(t *testing.T) {
	cmd, mockWf := newTestCmd(t, newViewCmd())

	mockWf.On("View", mock.Anything, mock.MatchedBy(func(args domain.ViewArgs) bool {
		return args.Output == m.Path(defaultOutputDir)
	})).Return(nil).Once()

	cmd.SetArgs([]string{"view"})
	require.NoError(t, cmd.Execute())

	mockWf.AssertExpectations(t)
}

func TestViewCmd_RootOutputFlagIsPassedThrough(t *testing.T) {
	cmd, mockWf := newTestCmd(t, newViewCmd())

	mockWf.On("View", mock.Anything, mock.MatchedBy(func(args domain.ViewArgs) bool {
		return args.Output == m.Path("./results-dir")
	})).Return(nil).Once()

	cmd.SetArgs([]string{"view", "--output", "./results-dir"})
	require.NoError(t, cmd.Execute())

	mockWf.AssertExpectations(t)
}

func TestViewCmd_PositionalArgsAreRejected(t *testing.T) {
	cmd, mockWf := newTestCmd(t, newViewCmd())

	cmd.SetArgs([]string{"view", "./custom-results"})
	require.Error(t, cmd.Execute())

	mockWf.AssertNotCalled(t, "View", mock.Anything, mock.Anything)
}
