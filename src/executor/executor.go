package executor

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"wavebuild/src"
	"wavebuild/src/cache"
	"wavebuild/src/diagnostics"
	"wavebuild/src/events"
	"wavebuild/src/resolver"
	"wavebuild/src/toolrunner"
	"wavebuild/src/workspace"
)

const defaultMaxConcurrency = 4

// Options configures an Executor for a workspace.
type Options struct {
	// Rules maps rule ids to the recipes targets may reference.
	Rules map[string]src.Rule
	// WorkspaceRoot is the absolute workspace path, used as the tool
	// working directory and for relativizing diagnostic paths.
	WorkspaceRoot string
	// CacheDir overrides the default cache directory (workspace-relative).
	CacheDir string
	// MaxConcurrency caps simultaneous tool invocations within a wave.
	MaxConcurrency int
	// Params are caller-supplied command parameters, validated at
	// construction time.
	Params map[string]any
	// Sink receives progress events; nil means no telemetry.
	Sink events.Sink
}

// Executor runs batches of targets: resolves the wave plan, skips
// targets with failed dependencies, serves unchanged targets from
// cache, and dispatches the rest to the tool runner with bounded
// parallelism. It owns the in-memory result map for one batch only.
type Executor struct {
	fs             workspace.FileSystem
	runner         toolrunner.Runner
	cache          *cache.Manager
	rules          map[string]src.Rule
	workspaceRoot  string
	maxConcurrency int
	params         map[string]toolrunner.ParamValue
	sink           events.Sink
}

func New(fs workspace.FileSystem, runner toolrunner.Runner, opts Options) (*Executor, error) {
	params, err := toolrunner.ValidateParams(opts.Params)
	if err != nil {
		return nil, err
	}
	maxConcurrency := opts.MaxConcurrency
	if maxConcurrency <= 0 {
		maxConcurrency = defaultMaxConcurrency
	}
	sink := opts.Sink
	if sink == nil {
		sink = events.NopSink{}
	}
	return &Executor{
		fs:             fs,
		runner:         runner,
		cache:          cache.NewManager(fs, opts.CacheDir),
		rules:          opts.Rules,
		workspaceRoot:  opts.WorkspaceRoot,
		maxConcurrency: maxConcurrency,
		params:         params,
		sink:           sink,
	}, nil
}

// Resolve computes the execution plan for a batch without running it.
func (e *Executor) Resolve(targets []src.Target) (*resolver.Plan, error) {
	res, err := resolver.New(targets, e.rules)
	if err != nil {
		return nil, err
	}
	return res.Resolve()
}

// ExecuteBatch runs one batch to completion and returns a result per
// target id. Target-level failures become failure results; only
// resolution errors (unknown rules or dependencies, cycles) are
// returned as errors, and in that case nothing executes.
func (e *Executor) ExecuteBatch(ctx context.Context, targets []src.Target) (map[string]*src.BuildResult, error) {
	res, err := resolver.New(targets, e.rules)
	if err != nil {
		return nil, err
	}
	plan, err := res.Resolve()
	if err != nil {
		return nil, err
	}

	byID := make(map[string]src.Target, len(targets))
	for _, target := range targets {
		byID[target.ID] = target
	}

	batchID := uuid.NewString()
	e.sink.BatchStarted(batchID, plan.Waves)

	results := make(map[string]*src.BuildResult, len(targets))
	blocked := make(map[string]bool) // failed or skipped so far
	rebuilt := make(map[string]bool) // actually executed, not cached

	for _, wave := range plan.Waves {
		var eligible []string
		for _, id := range wave {
			if e.anyBlocked(res.Dependencies(id), blocked) {
				now := time.Now()
				result := &src.BuildResult{
					TargetID:   id,
					Status:     src.BuildStatusSkipped,
					StartedAt:  now,
					FinishedAt: now,
				}
				results[id] = result
				blocked[id] = true
				e.sink.TargetCompleted(id, result)
				continue
			}
			eligible = append(eligible, id)
		}

		// Dispatch in sub-batches of at most maxConcurrency; the whole
		// sub-batch completes before the next one starts, bounding
		// simultaneous subprocesses.
		for start := 0; start < len(eligible); start += e.maxConcurrency {
			chunk := eligible[start:min(start+e.maxConcurrency, len(eligible))]

			var wg sync.WaitGroup
			var mu sync.Mutex
			for _, id := range chunk {
				target := byID[id]
				forced := e.anyRebuilt(res.Dependencies(id), rebuilt)

				wg.Add(1)
				go func(target src.Target, forced bool) {
					defer wg.Done()
					result := e.executeTarget(ctx, target, forced)
					mu.Lock()
					results[target.ID] = result
					mu.Unlock()
				}(target, forced)
			}
			wg.Wait()
		}

		// Wave N+1 never starts before every member of wave N has a
		// final status; the rebuilt set must be complete before any
		// dependent consults its cache.
		for _, id := range wave {
			result, ok := results[id]
			if !ok {
				continue
			}
			switch result.Status {
			case src.BuildStatusFailure:
				blocked[id] = true
			case src.BuildStatusSuccess:
				rebuilt[id] = true
			}
		}
	}

	e.sink.BatchCompleted(batchID, results)
	return results, nil
}

func (e *Executor) anyBlocked(deps []string, blocked map[string]bool) bool {
	for _, dep := range deps {
		if blocked[dep] {
			return true
		}
	}
	return false
}

func (e *Executor) anyRebuilt(deps []string, rebuilt map[string]bool) bool {
	for _, dep := range deps {
		if rebuilt[dep] {
			return true
		}
	}
	return false
}

// executeTarget runs one target: cache check (unless a dependency
// rebuilt this run, which forces a rebuild regardless of cache state),
// tool invocation, diagnostic parsing, and cache persist on success.
func (e *Executor) executeTarget(ctx context.Context, target src.Target, forced bool) *src.BuildResult {
	rule := e.rules[target.RuleID]
	started := time.Now()

	if !forced && e.cache.IsValid(target, rule) {
		result := &src.BuildResult{
			TargetID:   target.ID,
			Status:     src.BuildStatusCached,
			StartedAt:  started,
			FinishedAt: started,
		}
		e.sink.TargetCompleted(target.ID, result)
		return result
	}

	e.sink.TargetStarted(target.ID)
	result := &src.BuildResult{
		TargetID:  target.ID,
		Status:    src.BuildStatusRunning,
		StartedAt: started,
	}

	command, err := toolrunner.Substitute(rule.Command, e.paramsFor(target))
	if err != nil {
		e.finishFailure(result, fmt.Sprintf("invalid command for rule %s: %v", rule.ID, err))
		return result
	}

	runResult, err := e.runner.Run(ctx, toolrunner.Invocation{
		Command: command,
		Dir:     e.workspaceRoot,
		Env:     target.Env,
	})
	if err != nil {
		// The tool never produced an exit code (timeout, spawn failure,
		// signal); captured as a synthetic diagnostic, never thrown.
		e.finishFailure(result, err.Error())
		return result
	}

	output := runResult.CombinedOutput()
	for _, line := range strings.Split(output, "\n") {
		if line != "" {
			e.sink.TargetOutput(target.ID, line)
		}
	}

	result.Output = output
	result.Diagnostics = diagnostics.Parse(output, e.workspaceRoot)

	if runResult.ExitCode == 0 {
		if err := e.cache.Save(target, rule); err != nil {
			// A stale cache on the next run is worse than a failed
			// target on this one.
			e.finishFailure(result, err.Error())
			return result
		}
		result.Status = src.BuildStatusSuccess
	} else {
		result.Status = src.BuildStatusFailure
	}

	e.finish(result)
	return result
}

func (e *Executor) paramsFor(target src.Target) map[string]toolrunner.ParamValue {
	params := make(map[string]toolrunner.ParamValue, len(e.params)+3)
	for name, value := range e.params {
		params[name] = value
	}
	params["target"] = toolrunner.ParamValue{Kind: toolrunner.ParamString, Str: target.ID}
	params["module"] = toolrunner.ParamValue{Kind: toolrunner.ParamString, Str: target.ModuleID}
	params["rule"] = toolrunner.ParamValue{Kind: toolrunner.ParamString, Str: target.RuleID}
	return params
}

func (e *Executor) finish(result *src.BuildResult) {
	result.FinishedAt = time.Now()
	result.DurationMs = result.FinishedAt.Sub(result.StartedAt).Milliseconds()
	e.sink.TargetCompleted(result.TargetID, result)
}

func (e *Executor) finishFailure(result *src.BuildResult, message string) {
	result.Status = src.BuildStatusFailure
	result.Diagnostics = append(result.Diagnostics, src.Diagnostic{
		Severity: src.SeverityError,
		Message:  message,
	})
	e.finish(result)
}
