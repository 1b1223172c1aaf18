package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"wavebuild/src/logger"
)

// ConfigDir is the reserved directory for wavebuild state under a
// workspace root. The cache lives beneath it as well.
const ConfigDir = ".wavebuild"

type Config struct {
	Version int           `yaml:"version"`
	Build   BuildConfig   `yaml:"build"`
	Logging LoggingConfig `yaml:"logging"`
}

type BuildConfig struct {
	MaxConcurrency int    `yaml:"max_concurrency"`
	CacheDir       string `yaml:"cache_dir,omitempty"`
}

type LoggingConfig struct {
	Level string    `yaml:"level"`
	Sinks []LogSink `yaml:"sinks"`
}

type LogSink struct {
	Type     string `yaml:"type"` // "console" or "file"
	Filename string `yaml:"filename,omitempty"`
	Colorize bool   `yaml:"colorize,omitempty"`
}

func Default() *Config {
	return &Config{
		Version: 1,
		Build: BuildConfig{
			MaxConcurrency: 4,
		},
		Logging: LoggingConfig{
			Level: "info",
			Sinks: []LogSink{{Type: "console", Colorize: true}},
		},
	}
}

// Load reads .wavebuild/config.yaml under the workspace root, falling
// back to defaults when the file is absent.
func Load(workspaceRoot string) (*Config, error) {
	configPath := filepath.Join(workspaceRoot, ConfigDir, "config.yaml")

	cfg := Default()
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return cfg, nil
}

// Save writes the config back under the workspace root.
func Save(workspaceRoot string, cfg *Config) error {
	configPath := filepath.Join(workspaceRoot, ConfigDir, "config.yaml")
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// InitializeLogger builds the package-level logger from config.
func InitializeLogger(cfg *Config, workspaceRoot string) error {
	level, err := logger.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}

	var sinks []logger.Sink
	for _, sinkCfg := range cfg.Logging.Sinks {
		switch sinkCfg.Type {
		case "console":
			sinks = append(sinks, logger.NewConsoleSink(sinkCfg.Colorize))
		case "file":
			filename := sinkCfg.Filename
			if filename == "" {
				filename = "wavebuild.log"
			}
			if !filepath.IsAbs(filename) {
				filename = filepath.Join(workspaceRoot, ConfigDir, filename)
			}
			sink, err := logger.NewFileSink(filename)
			if err != nil {
				return fmt.Errorf("failed to create file sink: %w", err)
			}
			sinks = append(sinks, sink)
		default:
			return fmt.Errorf("unknown sink type: %s", sinkCfg.Type)
		}
	}

	logger.Initialize(sinks...)
	logger.SetLevel(level)
	return nil
}
