package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"wavebuild/src/cache"
	"wavebuild/src/config"
	"wavebuild/src/logger"
	"wavebuild/src/project"
	"wavebuild/src/workspace"
)

var cleanCmd = &cobra.Command{
	Use:   "clean [target...]",
	Short: "Clear cache records so targets rebuild from scratch",
	RunE:  runClean,
}

func runClean(cmd *cobra.Command, args []string) error {
	workspaceRoot, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get current directory: %w", err)
	}

	cfg, err := config.Load(workspaceRoot)
	if err != nil {
		return err
	}

	ids := args
	if len(ids) == 0 {
		manifest, err := project.Load(workspaceRoot)
		if err != nil {
			return err
		}
		for _, target := range manifest.Targets {
			ids = append(ids, target.ID)
		}
	}

	manager := cache.NewManager(workspace.NewOSFileSystem(workspaceRoot), cfg.Build.CacheDir)
	for _, id := range ids {
		if err := manager.Clear(id); err != nil {
			return fmt.Errorf("failed to clear cache for %s: %w", id, err)
		}
		logger.Info("cleared cache for %s", id)
	}
	return nil
}
