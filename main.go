package main

import (
	"os"

	"wavebuild/src/cmd"
	"wavebuild/src/config"
	"wavebuild/src/logger"
)

func main() {
	logger.Initialize()

	workspaceRoot, err := os.Getwd()
	if err == nil {
		if cfg, err := config.Load(workspaceRoot); err == nil {
			if err := config.InitializeLogger(cfg, workspaceRoot); err != nil {
				logger.Warn("Failed to initialize logger from config: %v", err)
			}
		}
	}

	if err := cmd.Execute(); err != nil {
		logger.Error("Command failed: %v", err)
		os.Exit(1)
	}
}
