package toolrunner

import (
	"context"
	"fmt"
	"time"
)

// Invocation is one external tool execution request. Env entries are
// merged over the process environment.
type Invocation struct {
	Command string
	Dir     string
	Env     map[string]string
	Timeout time.Duration
}

// Result is a completed execution. A non-zero exit code is a valid
// result, not an error; errors are reserved for the tool never
// producing an exit code at all.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

func (r *Result) CombinedOutput() string {
	if r.Stdout == "" {
		return r.Stderr
	}
	if r.Stderr == "" {
		return r.Stdout
	}
	return r.Stdout + "\n" + r.Stderr
}

// Runner executes tool invocations.
type Runner interface {
	Run(ctx context.Context, inv Invocation) (*Result, error)
}

type ErrorReason string

const (
	ReasonTimeout    ErrorReason = "timeout"
	ReasonSpawnError ErrorReason = "spawn-error"
	ReasonSignal     ErrorReason = "signal"
)

// RunError tags the ways an invocation can fail without an exit code.
type RunError struct {
	Reason ErrorReason
	Err    error
}

func (e *RunError) Error() string {
	return fmt.Sprintf("%s: %v", e.Reason, e.Err)
}

func (e *RunError) Unwrap() error {
	return e.Err
}
