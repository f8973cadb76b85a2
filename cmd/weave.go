package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"gooze.dev/pkg/weave/internal/domain"
	m "gooze.dev/pkg/weave/internal/model"
)

var trackFlag bool

// weaveCmd represents the weave command.
var weaveCmd = newWeaveCmd()

func newWeaveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "weave [paths...]",
		Short: "Weave mutants into IR programs",
		Long:  weaveLongDescription,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := weaveConfig()
			if err != nil {
				return err
			}

			return workflow.Weave(cmd.Context(), domain.WeaveArgs{
				Paths:    sourcePaths(args),
				Output:   m.Path(viper.GetString(outputFlagName)),
				Config:   config,
				Parallel: viper.GetInt(parallelConfigKey),
			})
		},
	}

	cmd.Flags().BoolVar(&trackFlag, trackFlagName, defaultTrack, "record which mutants the unmutated run reaches")
	bindFlagToConfig(cmd.Flags().Lookup(trackFlagName), trackConfigKey)

	return cmd
}

func init() {
	rootCmd.AddCommand(weaveCmd)
}
