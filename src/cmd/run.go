package cmd

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"wavebuild/src"
	"wavebuild/src/config"
	"wavebuild/src/events"
	"wavebuild/src/executor"
	"wavebuild/src/logger"
	"wavebuild/src/project"
	"wavebuild/src/toolrunner"
	"wavebuild/src/workspace"
)

var runJobs int

func init() {
	runCmd.Flags().IntVarP(&runJobs, "jobs", "j", 0, "Maximum concurrent tool invocations (overrides config)")
}

var runCmd = &cobra.Command{
	Use:   "run [target...]",
	Short: "Execute build targets",
	Long: `Execute the targets declared in wavebuild.yaml. With no arguments every
target runs; with arguments only the named targets and their transitive
dependencies run.`,
	RunE: runRun,
}

func runRun(cmd *cobra.Command, args []string) error {
	workspaceRoot, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}

	cfg, err := config.Load(workspaceRoot)
	if err != nil {
		return err
	}

	manifest, err := project.Load(workspaceRoot)
	if err != nil {
		return err
	}
	targets, err := manifest.Select(args)
	if err != nil {
		return err
	}

	maxConcurrency := cfg.Build.MaxConcurrency
	if runJobs > 0 {
		maxConcurrency = runJobs
	}

	fs := workspace.NewOSFileSystem(workspaceRoot)
	runner := toolrunner.NewExecRunner(0)
	exec, err := executor.New(fs, runner, executor.Options{
		Rules:          manifest.RuleMap(),
		WorkspaceRoot:  workspaceRoot,
		CacheDir:       cfg.Build.CacheDir,
		MaxConcurrency: maxConcurrency,
		Params:         manifest.Params,
		Sink:           events.NewLogSink(logger.Default()),
	})
	if err != nil {
		return err
	}

	results, err := exec.ExecuteBatch(cmd.Context(), targets)
	if err != nil {
		return err
	}

	return renderResults(results)
}

func renderResults(results map[string]*src.BuildResult) error {
	ids := make([]string, 0, len(results))
	for id := range results {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	failures := 0
	for _, id := range ids {
		result := results[id]
		switch result.Status {
		case src.BuildStatusFailure:
			failures++
			fmt.Printf("FAIL    %s (%dms)\n", id, result.DurationMs)
		case src.BuildStatusSkipped:
			fmt.Printf("SKIP    %s\n", id)
		case src.BuildStatusCached:
			fmt.Printf("CACHED  %s\n", id)
		default:
			fmt.Printf("OK      %s (%dms)\n", id, result.DurationMs)
		}
		for _, diag := range result.Diagnostics {
			code := diag.Code
			if code != "" {
				code = " " + code
			}
			fmt.Printf("        %s:%d:%d %s%s: %s\n",
				diag.File, diag.Line, diag.Column, diag.Severity, code, diag.Message)
		}
	}

	if failures > 0 {
		return fmt.Errorf("%d target(s) failed", failures)
	}
	return nil
}
