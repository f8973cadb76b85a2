// Package cmd provides the root command and CLI setup for weave.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"gooze.dev/pkg/weave/internal/adapter"
	"gooze.dev/pkg/weave/internal/controller"
	"gooze.dev/pkg/weave/internal/domain"
	"gooze.dev/pkg/weave/internal/interp"
	m "gooze.dev/pkg/weave/internal/model"
)

var irAdapter adapter.IRFileAdapter
var fsAdapter adapter.SourceFSAdapter
var reportStore adapter.ReportStore
var orchestrator domain.Orchestrator
var streamer domain.MutantStreamer
var workflow domain.Workflow
var ui controller.UI

// outputDirFlag is a root-level flag shared by commands that read/write outputs.
var outputDirFlag string

// operatorsFlag selects the mutation operators to weave.
var operatorsFlag []string

// parallelFlag limits how many classes are woven and mutants tested at once.
var parallelFlag int

var verboseFlag bool
var logFileFlag string

func init() {
	configureRootFlags(rootCmd)

	// Initialize shared dependencies.
	ui = controller.NewUI(rootCmd, controller.IsTTY(os.Stdout))
	irAdapter = adapter.NewLocalIRFileAdapter()
	fsAdapter = adapter.NewLocalSourceFSAdapter(irAdapter)
	reportStore = adapter.NewLocalReportStore()
	orchestrator = domain.NewOrchestrator(
		interp.WithStepLimit(viper.GetInt(stepLimitConfigKey)),
		interp.WithMaxDepth(viper.GetInt(maxDepthConfigKey)),
	)
	streamer = domain.NewMutantStreamer()
	workflow = domain.NewWorkflow(
		fsAdapter,
		irAdapter,
		reportStore,
		ui,
		orchestrator,
		streamer,
	)
}

const pathPatternsHelp = `Paths select *.ir.yaml programs:
  - ./...          recursively scan current directory
  - ./ir/...       recursively scan the ir directory
  - ./a ./b.ir.yaml  scan a directory and a single file`

const rootLongDescription = `Weave instruments IR programs for mutation testing. Every candidate
mutant is compiled into the program once, guarded by a per-class selector,
so a single woven program can run any mutant without rebuilding.

` + pathPatternsHelp

const weaveLongDescription = `Weave the given programs and write <name>.woven.ir.yaml and mutants.txt
to the output directory (default: current directory tree).

` + pathPatternsHelp

const runLongDescription = `Weave the given programs with reachability tracking and run their test
vectors once per mutant. Results are written to results.yaml.

` + pathPatternsHelp

const listLongDescription = `List the mutation points each class and method would receive.

` + pathPatternsHelp

// rootCmd represents the base command when called without any subcommands.
var rootCmd = baseRootCmd()

func baseRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "weave",
		Short: "Mutation weaving for IR programs",
		Long:  rootLongDescription,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			configureLogger(logFileFlag, viper.GetBool(logVerboseKey))
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
}

func newRootCmd() *cobra.Command {
	cmd := baseRootCmd()
	configureRootFlags(cmd)

	return cmd
}

func configureRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().
		StringVarP(
			&outputDirFlag, outputFlagName, "o",
			viper.GetString(outputFlagName),
			"output directory for woven programs and results",
		)
	bindFlagToConfig(cmd.PersistentFlags().Lookup(outputFlagName), outputFlagName)

	cmd.PersistentFlags().StringSliceVarP(&operatorsFlag, operatorsFlagName, "m", viper.GetStringSlice(operatorsConfigKey), "mutation operators to weave (abs, aor, lcr, ror, uoi)")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(operatorsFlagName), operatorsConfigKey)

	cmd.PersistentFlags().IntVarP(&parallelFlag, parallelFlagName, "p", viper.GetInt(parallelConfigKey), "number of parallel workers")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(parallelFlagName), parallelConfigKey)

	cmd.PersistentFlags().BoolVarP(&verboseFlag, verboseFlagName, "v", viper.GetBool(logVerboseKey), "log at debug level")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(verboseFlagName), logVerboseKey)

	cmd.PersistentFlags().StringVar(&logFileFlag, logFileFlagName, "", "log file (default from log.filename)")
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)

	err := rootCmd.ExecuteContext(ctx)

	stop()

	if err != nil {
		os.Exit(1)
	}
}

func parsePaths(args []string) []m.Path {
	paths := make([]m.Path, 0, len(args))
	for _, arg := range args {
		paths = append(paths, m.Path(arg))
	}

	return paths
}

// sourcePaths returns the paths named on the command line, or the current
// directory tree when none are given.
func sourcePaths(args []string) []m.Path {
	if len(args) == 0 {
		return []m.Path{"./..."}
	}

	return parsePaths(args)
}
