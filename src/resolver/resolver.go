package resolver

import (
	"fmt"
	"sort"
	"strings"

	"wavebuild/src"
)

type ErrorReason string

const (
	ReasonExecutionFailed    ErrorReason = "execution-failed"
	ReasonCircularDependency ErrorReason = "circular-dependency"
)

// BuildExecutionError is a resolution-fatal error: no targets execute
// when one is raised. It always names the offending target and, for
// cycles, carries the full cycle path.
type BuildExecutionError struct {
	Reason   ErrorReason
	TargetID string
	Cycle    []string
	message  string
}

func (e *BuildExecutionError) Error() string {
	return e.message
}

// Plan is the derived execution order for one batch. Waves is the list
// of parallel-eligible groups; SortedTargets is the wave-concatenated
// flat order for callers that want one.
type Plan struct {
	SortedTargets []string
	Waves         [][]string
}

// Resolver validates one batch of targets against a rule map and
// computes its wave-grouped execution order. It holds no state across
// batches.
type Resolver struct {
	targets    map[string]src.Target
	ids        []string
	deps       map[string][]string
	dependents map[string][]string
}

// New validates the batch: every target's rule id must resolve in the
// rule map and every dependsOn entry must name a target in the same
// batch. Either violation aborts before any execution.
func New(targets []src.Target, rules map[string]src.Rule) (*Resolver, error) {
	r := &Resolver{
		targets:    make(map[string]src.Target, len(targets)),
		deps:       make(map[string][]string, len(targets)),
		dependents: make(map[string][]string, len(targets)),
	}

	for _, target := range targets {
		if _, dup := r.targets[target.ID]; dup {
			return nil, &BuildExecutionError{
				Reason:   ReasonExecutionFailed,
				TargetID: target.ID,
				message:  fmt.Sprintf("duplicate target id %s in batch", target.ID),
			}
		}
		if _, ok := rules[target.RuleID]; !ok {
			return nil, &BuildExecutionError{
				Reason:   ReasonExecutionFailed,
				TargetID: target.ID,
				message:  fmt.Sprintf("target %s references unknown rule %s", target.ID, target.RuleID),
			}
		}
		r.targets[target.ID] = target
		r.ids = append(r.ids, target.ID)
	}
	sort.Strings(r.ids)

	for _, target := range targets {
		for _, depID := range target.DependsOn {
			if _, ok := r.targets[depID]; !ok {
				return nil, &BuildExecutionError{
					Reason:   ReasonExecutionFailed,
					TargetID: target.ID,
					message:  fmt.Sprintf("target %s depends on unknown target %s", target.ID, depID),
				}
			}
			r.deps[target.ID] = append(r.deps[target.ID], depID)
			r.dependents[depID] = append(r.dependents[depID], target.ID)
		}
	}

	return r, nil
}

// Resolve checks the graph for cycles and computes the wave-grouped
// topological order.
func (r *Resolver) Resolve() (*Plan, error) {
	if err := r.detectCycles(); err != nil {
		return nil, err
	}
	return r.sortWaves(), nil
}

// detectCycles runs a depth-first traversal with an explicit
// recursion-stack set keyed by target id. Revisiting an id that is
// still on the stack is a cycle; a self-dependency is a 1-node cycle.
func (r *Resolver) detectCycles() error {
	visited := make(map[string]bool, len(r.ids))
	onStack := make(map[string]bool, len(r.ids))

	var visit func(id string, path []string) *BuildExecutionError
	visit = func(id string, path []string) *BuildExecutionError {
		visited[id] = true
		onStack[id] = true
		path = append(path, id)

		for _, depID := range r.deps[id] {
			if !visited[depID] {
				if err := visit(depID, path); err != nil {
					return err
				}
			} else if onStack[depID] {
				start := 0
				for i, name := range path {
					if name == depID {
						start = i
						break
					}
				}
				cycle := append(append([]string{}, path[start:]...), depID)
				return &BuildExecutionError{
					Reason:   ReasonCircularDependency,
					TargetID: depID,
					Cycle:    cycle,
					message:  fmt.Sprintf("dependency cycle detected: %s", strings.Join(cycle, " -> ")),
				}
			}
		}

		onStack[id] = false
		return nil
	}

	for _, id := range r.ids {
		if !visited[id] {
			if err := visit(id, nil); err != nil {
				return err
			}
		}
	}
	return nil
}

// sortWaves runs Kahn's algorithm grouped by wave: the first wave is
// every zero-in-degree target, and each completed wave releases the
// next. Ids are sorted within a wave so the flat order is reproducible.
func (r *Resolver) sortWaves() *Plan {
	inDegree := make(map[string]int, len(r.ids))
	for _, id := range r.ids {
		inDegree[id] = len(r.deps[id])
	}

	var wave []string
	for _, id := range r.ids {
		if inDegree[id] == 0 {
			wave = append(wave, id)
		}
	}

	plan := &Plan{}
	for len(wave) > 0 {
		sort.Strings(wave)
		plan.Waves = append(plan.Waves, wave)
		plan.SortedTargets = append(plan.SortedTargets, wave...)

		var next []string
		for _, id := range wave {
			for _, dependent := range r.dependents[id] {
				inDegree[dependent]--
				if inDegree[dependent] == 0 {
					next = append(next, dependent)
				}
			}
		}
		wave = next
	}

	return plan
}

// Dependencies returns the declared dependency ids of a target.
func (r *Resolver) Dependencies(id string) []string {
	return r.deps[id]
}
