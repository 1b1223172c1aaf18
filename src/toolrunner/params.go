package toolrunner

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/kballard/go-shellquote"
)

// Tool parameters arrive as loosely typed maps (YAML manifests, caller
// config). They are validated into a closed union of kinds before any
// command substitution happens, so a bad parameter fails loudly instead
// of leaking "%!v(...)" noise into a shell command.

type ParamKind string

const (
	ParamString ParamKind = "string"
	ParamNumber ParamKind = "number"
	ParamBool   ParamKind = "bool"
	ParamArray  ParamKind = "array"
	ParamObject ParamKind = "object"
)

var (
	ErrInvalidParam = errors.New("invalid tool parameter")
	ErrUnknownParam = errors.New("unknown tool parameter")
)

// ParamValue is one validated parameter.
type ParamValue struct {
	Kind   ParamKind
	Str    string
	Num    float64
	Bool   bool
	Array  []ParamValue
	Object map[string]ParamValue
}

// ValidateParams converts a raw map into typed parameters, rejecting
// anything outside the supported kinds.
func ValidateParams(raw map[string]any) (map[string]ParamValue, error) {
	params := make(map[string]ParamValue, len(raw))
	for name, value := range raw {
		v, err := validateValue(value)
		if err != nil {
			return nil, fmt.Errorf("%w %q: %v", ErrInvalidParam, name, err)
		}
		params[name] = v
	}
	return params, nil
}

func validateValue(value any) (ParamValue, error) {
	switch v := value.(type) {
	case string:
		return ParamValue{Kind: ParamString, Str: v}, nil
	case bool:
		return ParamValue{Kind: ParamBool, Bool: v}, nil
	case int:
		return ParamValue{Kind: ParamNumber, Num: float64(v)}, nil
	case int64:
		return ParamValue{Kind: ParamNumber, Num: float64(v)}, nil
	case float64:
		return ParamValue{Kind: ParamNumber, Num: v}, nil
	case []any:
		arr := make([]ParamValue, 0, len(v))
		for i, elem := range v {
			pv, err := validateValue(elem)
			if err != nil {
				return ParamValue{}, fmt.Errorf("element %d: %v", i, err)
			}
			arr = append(arr, pv)
		}
		return ParamValue{Kind: ParamArray, Array: arr}, nil
	case map[string]any:
		obj := make(map[string]ParamValue, len(v))
		for key, elem := range v {
			pv, err := validateValue(elem)
			if err != nil {
				return ParamValue{}, fmt.Errorf("key %q: %v", key, err)
			}
			obj[key] = pv
		}
		return ParamValue{Kind: ParamObject, Object: obj}, nil
	default:
		return ParamValue{}, fmt.Errorf("unsupported type %T", value)
	}
}

// Render produces the substitution text for a parameter.
func (v ParamValue) Render() string {
	switch v.Kind {
	case ParamString:
		return v.Str
	case ParamNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case ParamBool:
		return strconv.FormatBool(v.Bool)
	case ParamArray:
		parts := make([]string, 0, len(v.Array))
		for _, elem := range v.Array {
			parts = append(parts, elem.Render())
		}
		return strings.Join(parts, " ")
	case ParamObject:
		plain := make(map[string]string, len(v.Object))
		for key, elem := range v.Object {
			plain[key] = elem.Render()
		}
		data, err := json.Marshal(plain)
		if err != nil {
			return ""
		}
		return string(data)
	default:
		return ""
	}
}

var placeholderPattern = regexp.MustCompile(`\{\{(\w+)\}\}`)

// Substitute replaces every {{name}} placeholder in a command template
// with the rendered parameter of that name. A placeholder with no
// matching parameter is an error rather than a silently broken command.
func Substitute(command string, params map[string]ParamValue) (string, error) {
	var missing []string
	substituted := placeholderPattern.ReplaceAllStringFunc(command, func(match string) string {
		name := placeholderPattern.FindStringSubmatch(match)[1]
		value, ok := params[name]
		if !ok {
			missing = append(missing, name)
			return match
		}
		return value.Render()
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("%w: %s", ErrUnknownParam, strings.Join(missing, ", "))
	}
	return substituted, nil
}

// SplitCommand tokenizes a command string the way a shell would.
func SplitCommand(command string) ([]string, error) {
	argv, err := shellquote.Split(command)
	if err != nil {
		return nil, fmt.Errorf("failed to parse command %q: %w", command, err)
	}
	if len(argv) == 0 {
		return nil, fmt.Errorf("empty command")
	}
	return argv, nil
}
