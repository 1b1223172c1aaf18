package src

import (
	"time"
)

// Rule is an immutable named build recipe. Rules are supplied by the
// caller (typically the build manifest) and never mutated by the core.
type Rule struct {
	ID      string   `yaml:"id"`
	Name    string   `yaml:"name,omitempty"`
	Inputs  []string `yaml:"inputs,omitempty"`
	Outputs []string `yaml:"outputs,omitempty"`
	Command string   `yaml:"command"`
}

// Target is one invocation of a rule against a specific module.
type Target struct {
	ID        string            `yaml:"id"`
	RuleID    string            `yaml:"rule"`
	ModuleID  string            `yaml:"module"`
	DependsOn []string          `yaml:"depends_on,omitempty"`
	Env       map[string]string `yaml:"env,omitempty"`
}

type BuildStatus string

const (
	BuildStatusPending BuildStatus = "pending"
	BuildStatusRunning BuildStatus = "running"
	BuildStatusSuccess BuildStatus = "success"
	BuildStatusCached  BuildStatus = "cached"
	BuildStatusFailure BuildStatus = "failure"
	BuildStatusSkipped BuildStatus = "skipped"
)

type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
	SeverityDebug   Severity = "debug"
)

// Diagnostic is one structured finding extracted from raw tool output.
type Diagnostic struct {
	File     string
	Line     int
	Column   int
	Severity Severity
	Message  string
	Code     string
}

// BuildResult is the per-target outcome of one batch. Results are
// produced fresh each batch and never persisted.
type BuildResult struct {
	TargetID    string
	Status      BuildStatus
	Diagnostics []Diagnostic
	Output      string
	StartedAt   time.Time
	FinishedAt  time.Time
	DurationMs  int64
}
