package cmd

import (
	"github.com/spf13/cobra"

	"gooze.dev/pkg/weave/internal/domain"
	m "gooze.dev/pkg/weave/internal/model"
)

var diffContextFlag int

// diffCmd represents the diff command.
var diffCmd = newDiffCmd()

func newDiffCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diff <file>",
		Short: "Show a unified diff between a program and its woven form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := weaveConfig()
			if err != nil {
				return err
			}

			return workflow.Diff(cmd.Context(), domain.DiffArgs{
				Path:    m.Path(args[0]),
				Config:  config,
				Context: diffContextFlag,
			})
		},
	}

	cmd.Flags().IntVarP(&diffContextFlag, contextFlagName, "U", defaultContext, "lines of context around each change")

	return cmd
}

func init() {
	rootCmd.AddCommand(diffCmd)
}
