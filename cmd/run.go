package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"gooze.dev/pkg/weave/internal/domain"
	m "gooze.dev/pkg/weave/internal/model"
)

var runShardFlag string

// runCmd represents the run command.
var runCmd = newRunCmd()

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [paths...]",
		Short: "Run the test vectors against every mutant",
		Long:  runLongDescription,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := weaveConfig()
			if err != nil {
				return err
			}

			shardIndex, totalShards := parseShardFlag(runShardFlag)

			return workflow.Run(cmd.Context(), domain.RunArgs{
				Paths:           sourcePaths(args),
				Output:          m.Path(viper.GetString(outputFlagName)),
				Operators:       config.Operators,
				Parallel:        viper.GetInt(parallelConfigKey),
				ShardIndex:      shardIndex,
				TotalShardCount: totalShards,
			})
		},
	}

	configureRunFlags(cmd)

	return cmd
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func configureRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&runShardFlag, shardFlagName, "s", "", "shard index and total shard count in the format INDEX/TOTAL (e.g., 0/3)")
}

func parseShardFlag(shard string) (int, int) {
	if shard == "" {
		return 0, 1
	}

	var index, total int

	_, err := fmt.Sscanf(shard, "%d/%d", &index, &total)
	if err != nil || total <= 0 || index < 0 || index >= total {
		return 0, 1
	}

	return index, total
}
