package cmd

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/mock"

	"gooze.dev/pkg/weave/internal/domain"
)

type mockWorkflow struct {
	mock.Mock
}

func (w *mockWorkflow) Weave(ctx context.Context, args domain.WeaveArgs) error {
	return w.Called(ctx, args).Error(0)
}

func (w *mockWorkflow) Estimate(ctx context.Context, args domain.EstimateArgs) error {
	return w.Called(ctx, args).Error(0)
}

func (w *mockWorkflow) Diff(ctx context.Context, args domain.DiffArgs) error {
	return w.Called(ctx, args).Error(0)
}

func (w *mockWorkflow) Run(ctx context.Context, args domain.RunArgs) error {
	return w.Called(ctx, args).Error(0)
}

func (w *mockWorkflow) View(ctx context.Context, args domain.ViewArgs) error {
	return w.Called(ctx, args).Error(0)
}

// newTestCmd builds a root command with sub attached, routes logs to a temp
// file and swaps the shared workflow for a mock.
func newTestCmd(t *testing.T, sub *cobra.Command) (*cobra.Command, *mockWorkflow) {
	t.Helper()

	t.Setenv("WEAVE_LOG_FILENAME", filepath.Join(t.TempDir(), "weave.log"))

	mockWf := &mockWorkflow{}
	originalWorkflow := workflow
	workflow = mockWf

	t.Cleanup(func() { workflow = originalWorkflow })

	cmd := newRootCmd()
	cmd.AddCommand(sub)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})

	return cmd, mockWf
}
