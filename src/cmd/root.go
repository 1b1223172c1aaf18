package cmd

import (
	"github.com/spf13/cobra"

	"wavebuild/src/logger"
)

var verboseCount int

var rootCmd = &cobra.Command{
	Use:   "wavebuild",
	Short: "Dependency-aware, cache-accelerated build runner",
	Long: `wavebuild runs the build, test and lint tools of a multi-module
workspace in dependency order, in parallel waves, skipping targets whose
inputs have not changed since the last successful run.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		switch verboseCount {
		case 0:
			logger.SetLevel(logger.WarnLevel)
		case 1:
			logger.SetLevel(logger.InfoLevel)
		default:
			logger.SetLevel(logger.DebugLevel)
		}
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().CountVarP(&verboseCount, "verbose", "v", "Increase verbosity (use -vv for debug level)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(graphCmd)
	rootCmd.AddCommand(cleanCmd)
}
