package project

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleManifest = `
rules:
  compile:
    inputs: ["src/**/*.ts"]
    outputs: ["dist/**/*.js"]
    command: "tsc {{module}}"
  lint:
    inputs: ["src/**/*.ts"]
    command: "eslint src"
targets:
  - id: lib
    rule: compile
    module: lib
  - id: app
    rule: compile
    module: app
    depends_on: [lib]
    env:
      NODE_ENV: production
  - id: lint-app
    rule: lint
    module: app
    depends_on: [app]
params:
  jobs: 4
`

func TestParse(t *testing.T) {
	manifest, err := Parse([]byte(sampleManifest))
	require.NoError(t, err)

	require.Len(t, manifest.Targets, 3)
	assert.Equal(t, "app", manifest.Targets[1].ID)
	assert.Equal(t, []string{"lib"}, manifest.Targets[1].DependsOn)
	assert.Equal(t, "production", manifest.Targets[1].Env["NODE_ENV"])

	rules := manifest.RuleMap()
	require.Contains(t, rules, "compile")
	assert.Equal(t, "compile", rules["compile"].ID)
	assert.Equal(t, []string{"src/**/*.ts"}, rules["compile"].Inputs)
	assert.Equal(t, "tsc {{module}}", rules["compile"].Command)

	assert.Equal(t, 4, manifest.Params["jobs"])
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name     string
		manifest string
		wantErr  string
	}{
		{
			name:     "no targets",
			manifest: "rules:\n  compile:\n    command: tsc\n",
			wantErr:  "no targets",
		},
		{
			name:     "target without rule",
			manifest: "targets:\n  - id: a\n",
			wantErr:  "has no rule",
		},
		{
			name:     "unknown rule reference",
			manifest: "targets:\n  - id: a\n    rule: ghost\n",
			wantErr:  "unknown rule",
		},
		{
			name:     "rule without command",
			manifest: "rules:\n  compile: {}\ntargets:\n  - id: a\n    rule: compile\n",
			wantErr:  "has no command",
		},
		{
			name:     "not yaml",
			manifest: "{{{{",
			wantErr:  "failed to parse",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.manifest))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSelect(t *testing.T) {
	manifest, err := Parse([]byte(sampleManifest))
	require.NoError(t, err)

	t.Run("empty selection takes everything", func(t *testing.T) {
		targets, err := manifest.Select(nil)
		require.NoError(t, err)
		assert.Len(t, targets, 3)
	})

	t.Run("selection pulls transitive dependencies", func(t *testing.T) {
		targets, err := manifest.Select([]string{"lint-app"})
		require.NoError(t, err)
		require.Len(t, targets, 3)
		// Manifest order is preserved.
		assert.Equal(t, "lib", targets[0].ID)
		assert.Equal(t, "app", targets[1].ID)
		assert.Equal(t, "lint-app", targets[2].ID)
	})

	t.Run("leaf selection stays narrow", func(t *testing.T) {
		targets, err := manifest.Select([]string{"lib"})
		require.NoError(t, err)
		require.Len(t, targets, 1)
		assert.Equal(t, "lib", targets[0].ID)
	})

	t.Run("unknown target errors", func(t *testing.T) {
		_, err := manifest.Select([]string{"ghost"})
		require.Error(t, err)
	})
}
