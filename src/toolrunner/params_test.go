package toolrunner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateParams(t *testing.T) {
	params, err := ValidateParams(map[string]any{
		"name":    "app",
		"jobs":    4,
		"strict":  true,
		"ratio":   0.5,
		"flags":   []any{"-a", "-b"},
		"options": map[string]any{"target": "es2020"},
	})
	require.NoError(t, err)

	assert.Equal(t, ParamString, params["name"].Kind)
	assert.Equal(t, ParamNumber, params["jobs"].Kind)
	assert.Equal(t, ParamBool, params["strict"].Kind)
	assert.Equal(t, ParamArray, params["flags"].Kind)
	assert.Equal(t, ParamObject, params["options"].Kind)
}

func TestValidateParams_RejectsUnknownTypes(t *testing.T) {
	_, err := ValidateParams(map[string]any{"bad": struct{}{}})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidParam)
	assert.Contains(t, err.Error(), "bad")

	_, err = ValidateParams(map[string]any{"nested": []any{"ok", make(chan int)}})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidParam)
}

func TestRender(t *testing.T) {
	tests := []struct {
		name  string
		value ParamValue
		want  string
	}{
		{"string", ParamValue{Kind: ParamString, Str: "hello"}, "hello"},
		{"integer number", ParamValue{Kind: ParamNumber, Num: 4}, "4"},
		{"fractional number", ParamValue{Kind: ParamNumber, Num: 0.5}, "0.5"},
		{"bool", ParamValue{Kind: ParamBool, Bool: true}, "true"},
		{
			"array joins with spaces",
			ParamValue{Kind: ParamArray, Array: []ParamValue{
				{Kind: ParamString, Str: "-a"},
				{Kind: ParamString, Str: "-b"},
			}},
			"-a -b",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.value.Render())
		})
	}
}

func TestSubstitute(t *testing.T) {
	params := map[string]ParamValue{
		"module": {Kind: ParamString, Str: "lib"},
		"jobs":   {Kind: ParamNumber, Num: 4},
	}

	got, err := Substitute("tsc --project {{module}} -j {{jobs}}", params)
	require.NoError(t, err)
	assert.Equal(t, "tsc --project lib -j 4", got)
}

func TestSubstitute_NoPlaceholders(t *testing.T) {
	got, err := Substitute("tsc --noEmit", nil)
	require.NoError(t, err)
	assert.Equal(t, "tsc --noEmit", got)
}

func TestSubstitute_UnknownPlaceholder(t *testing.T) {
	_, err := Substitute("tsc {{missing}}", map[string]ParamValue{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownParam)
	assert.Contains(t, err.Error(), "missing")
}

func TestSplitCommand(t *testing.T) {
	argv, err := SplitCommand(`sh -c "exit 3"`)
	require.NoError(t, err)
	assert.Equal(t, []string{"sh", "-c", "exit 3"}, argv)

	_, err = SplitCommand("")
	assert.Error(t, err)

	_, err = SplitCommand(`echo "unterminated`)
	assert.Error(t, err)
}
