package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"wavebuild/src/project"
	"wavebuild/src/resolver"
)

var graphCmd = &cobra.Command{
	Use:   "graph [target...]",
	Short: "Show the wave-grouped execution order without building",
	RunE:  runGraph,
}

func runGraph(cmd *cobra.Command, args []string) error {
	workspaceRoot, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}

	manifest, err := project.Load(workspaceRoot)
	if err != nil {
		return err
	}
	targets, err := manifest.Select(args)
	if err != nil {
		return err
	}

	res, err := resolver.New(targets, manifest.RuleMap())
	if err != nil {
		return err
	}
	plan, err := res.Resolve()
	if err != nil {
		return err
	}

	for i, wave := range plan.Waves {
		fmt.Printf("wave %d: %s\n", i+1, strings.Join(wave, ", "))
	}
	return nil
}
