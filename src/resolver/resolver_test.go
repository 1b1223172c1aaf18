package resolver

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wavebuild/src"
)

var testRules = map[string]src.Rule{
	"compile": {ID: "compile", Command: "tsc"},
}

func target(id string, deps ...string) src.Target {
	return src.Target{ID: id, RuleID: "compile", ModuleID: id, DependsOn: deps}
}

func TestResolve_Waves(t *testing.T) {
	tests := []struct {
		name    string
		targets []src.Target
		waves   [][]string
	}{
		{
			name:    "independent targets share one wave",
			targets: []src.Target{target("a"), target("b"), target("c")},
			waves:   [][]string{{"a", "b", "c"}},
		},
		{
			name:    "chain is strictly ordered",
			targets: []src.Target{target("c", "b"), target("b", "a"), target("a")},
			waves:   [][]string{{"a"}, {"b"}, {"c"}},
		},
		{
			name: "diamond",
			targets: []src.Target{
				target("app", "left", "right"),
				target("left", "base"),
				target("right", "base"),
				target("base"),
			},
			waves: [][]string{{"base"}, {"left", "right"}, {"app"}},
		},
		{
			name: "transitive dependents never share a wave",
			targets: []src.Target{
				target("a"),
				target("b", "a"),
				target("z", "a"),
				target("c", "b", "z"),
			},
			waves: [][]string{{"a"}, {"b", "z"}, {"c"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := New(tt.targets, testRules)
			require.NoError(t, err)

			plan, err := r.Resolve()
			require.NoError(t, err)
			assert.Equal(t, tt.waves, plan.Waves)

			var flat []string
			for _, wave := range tt.waves {
				flat = append(flat, wave...)
			}
			assert.Equal(t, flat, plan.SortedTargets)
		})
	}
}

func TestResolve_TopologicalSoundness(t *testing.T) {
	targets := []src.Target{
		target("e", "d"),
		target("d", "b", "c"),
		target("c", "a"),
		target("b", "a"),
		target("a"),
	}
	r, err := New(targets, testRules)
	require.NoError(t, err)
	plan, err := r.Resolve()
	require.NoError(t, err)

	waveOf := map[string]int{}
	for i, wave := range plan.Waves {
		for _, id := range wave {
			waveOf[id] = i
		}
	}
	for _, tgt := range targets {
		for _, dep := range tgt.DependsOn {
			assert.Less(t, waveOf[dep], waveOf[tgt.ID],
				"%s must build before %s", dep, tgt.ID)
		}
	}
}

func TestResolve_Cycles(t *testing.T) {
	tests := []struct {
		name    string
		targets []src.Target
	}{
		{
			name:    "two-node cycle",
			targets: []src.Target{target("a", "b"), target("b", "a")},
		},
		{
			name:    "self dependency",
			targets: []src.Target{target("a", "a")},
		},
		{
			name: "cycle behind a chain",
			targets: []src.Target{
				target("a"),
				target("b", "a", "d"),
				target("c", "b"),
				target("d", "c"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := New(tt.targets, testRules)
			require.NoError(t, err)

			_, err = r.Resolve()
			require.Error(t, err)

			var execErr *BuildExecutionError
			require.True(t, errors.As(err, &execErr))
			assert.Equal(t, ReasonCircularDependency, execErr.Reason)
			assert.NotEmpty(t, execErr.TargetID)
			assert.GreaterOrEqual(t, len(execErr.Cycle), 2)
			// The cycle path closes on itself.
			assert.Equal(t, execErr.Cycle[0], execErr.Cycle[len(execErr.Cycle)-1])
		})
	}
}

func TestResolve_SelfCyclePath(t *testing.T) {
	r, err := New([]src.Target{target("a", "a")}, testRules)
	require.NoError(t, err)

	_, err = r.Resolve()
	var execErr *BuildExecutionError
	require.True(t, errors.As(err, &execErr))
	assert.Equal(t, []string{"a", "a"}, execErr.Cycle)
	assert.Contains(t, execErr.Error(), "a -> a")
}

func TestNew_UnknownRule(t *testing.T) {
	targets := []src.Target{{ID: "a", RuleID: "no-such-rule", ModuleID: "a"}}

	_, err := New(targets, testRules)
	require.Error(t, err)

	var execErr *BuildExecutionError
	require.True(t, errors.As(err, &execErr))
	assert.Equal(t, ReasonExecutionFailed, execErr.Reason)
	assert.Equal(t, "a", execErr.TargetID)
}

func TestNew_UnknownDependency(t *testing.T) {
	_, err := New([]src.Target{target("a", "ghost")}, testRules)
	require.Error(t, err)

	var execErr *BuildExecutionError
	require.True(t, errors.As(err, &execErr))
	assert.Equal(t, ReasonExecutionFailed, execErr.Reason)
	assert.Equal(t, "a", execErr.TargetID)
}

func TestNew_DuplicateTargetID(t *testing.T) {
	_, err := New([]src.Target{target("a"), target("a")}, testRules)
	require.Error(t, err)

	var execErr *BuildExecutionError
	require.True(t, errors.As(err, &execErr))
	assert.Equal(t, ReasonExecutionFailed, execErr.Reason)
}
