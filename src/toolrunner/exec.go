package toolrunner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"time"
)

const defaultTimeout = 5 * time.Minute

// ExecRunner runs tool commands as subprocesses.
type ExecRunner struct {
	timeout time.Duration
}

func NewExecRunner(timeout time.Duration) *ExecRunner {
	if timeout == 0 {
		timeout = defaultTimeout
	}
	return &ExecRunner{timeout: timeout}
}

func (r *ExecRunner) Run(ctx context.Context, inv Invocation) (*Result, error) {
	argv, err := SplitCommand(inv.Command)
	if err != nil {
		return nil, &RunError{Reason: ReasonSpawnError, Err: err}
	}

	timeout := inv.Timeout
	if timeout == 0 {
		timeout = r.timeout
	}
	cmdCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(cmdCtx, argv[0], argv[1:]...)
	cmd.Dir = inv.Dir
	cmd.Env = mergeEnv(inv.Env)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()
	if err != nil {
		if cmdCtx.Err() == context.DeadlineExceeded {
			return nil, &RunError{
				Reason: ReasonTimeout,
				Err:    fmt.Errorf("command timed out after %v", timeout),
			}
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			if exitErr.ExitCode() < 0 {
				return nil, &RunError{Reason: ReasonSignal, Err: err}
			}
			return &Result{
				ExitCode: exitErr.ExitCode(),
				Stdout:   stdout.String(),
				Stderr:   stderr.String(),
			}, nil
		}
		return nil, &RunError{Reason: ReasonSpawnError, Err: err}
	}

	return &Result{
		ExitCode: 0,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
	}, nil
}

// mergeEnv layers the invocation's overrides over the process
// environment, in sorted key order.
func mergeEnv(overrides map[string]string) []string {
	env := os.Environ()
	if len(overrides) == 0 {
		return env
	}
	keys := make([]string, 0, len(overrides))
	for k := range overrides {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		env = append(env, k+"="+overrides[k])
	}
	return env
}
