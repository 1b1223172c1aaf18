package diagnostics

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"wavebuild/src"
	"wavebuild/src/glob"
)

// Raw tool output comes in a handful of known shapes: a lint-style JSON
// array, a compiler-style JSON object, or line-oriented text. Parse
// recognizes them in that order and extracts whatever diagnostics it
// can; unparseable input yields an empty list, never an error.
func Parse(rawOutput, workspaceRoot string) []src.Diagnostic {
	trimmed := strings.TrimSpace(rawOutput)
	if trimmed == "" {
		return []src.Diagnostic{}
	}

	if strings.HasPrefix(trimmed, "[") {
		if diags, ok := parseLintJSON(trimmed, workspaceRoot); ok {
			return diags
		}
	}
	if strings.HasPrefix(trimmed, "{") {
		if diags, ok := parseCompilerJSON(trimmed, workspaceRoot); ok {
			return diags
		}
	}

	return parseTextLines(trimmed, workspaceRoot)
}

type lintMessage struct {
	Line     int    `json:"line"`
	Column   int    `json:"column"`
	Severity int    `json:"severity"`
	Message  string `json:"message"`
	RuleID   string `json:"ruleId"`
}

type lintFileResult struct {
	FilePath string        `json:"filePath"`
	Messages []lintMessage `json:"messages"`
}

func parseLintJSON(raw, workspaceRoot string) ([]src.Diagnostic, bool) {
	var files []lintFileResult
	if err := json.Unmarshal([]byte(raw), &files); err != nil {
		return nil, false
	}

	diags := []src.Diagnostic{}
	for _, file := range files {
		for _, msg := range file.Messages {
			severity := src.SeverityWarning
			if msg.Severity == 2 {
				severity = src.SeverityError
			}
			diags = append(diags, src.Diagnostic{
				File:     relativize(file.FilePath, workspaceRoot),
				Line:     msg.Line,
				Column:   msg.Column,
				Severity: severity,
				Message:  msg.Message,
				Code:     msg.RuleID,
			})
		}
	}
	return diags, true
}

type compilerDiagnostic struct {
	File struct {
		FileName string `json:"fileName"`
	} `json:"file"`
	Line        int             `json:"line"`
	Column      int             `json:"column"`
	MessageText string          `json:"messageText"`
	Code        json.RawMessage `json:"code"`
}

type compilerOutput struct {
	Diagnostics []compilerDiagnostic `json:"diagnostics"`
}

func parseCompilerJSON(raw, workspaceRoot string) ([]src.Diagnostic, bool) {
	var out compilerOutput
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, false
	}

	diags := []src.Diagnostic{}
	for _, d := range out.Diagnostics {
		diags = append(diags, src.Diagnostic{
			File:     relativize(d.File.FileName, workspaceRoot),
			Line:     d.Line,
			Column:   d.Column,
			Severity: src.SeverityError,
			Message:  d.MessageText,
			Code:     renderCode(d.Code),
		})
	}
	return diags, true
}

// renderCode turns a compiler diagnostic code into its string form;
// numeric codes get the conventional uppercase prefix (2345 -> TS2345).
func renderCode(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var num int
	if err := json.Unmarshal(raw, &num); err == nil {
		return fmt.Sprintf("TS%d", num)
	}
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		return str
	}
	return ""
}

var (
	// path(line,col): severity CODE: message
	parenStyle = regexp.MustCompile(`^(.+?)\((\d+),(\d+)\):\s*(error|warning|info|debug)(?:\s+(\S+))?:\s*(.*)$`)
	// path:line:col - severity: message  |  path:line:col: severity: message
	colonStyle = regexp.MustCompile(`^(.+?):(\d+):(\d+)(?:\s*-\s*|:\s*)(error|warning|info|debug):\s*(.*)$`)
)

func parseTextLines(raw, workspaceRoot string) []src.Diagnostic {
	diags := []src.Diagnostic{}
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if m := parenStyle.FindStringSubmatch(line); m != nil {
			diags = append(diags, src.Diagnostic{
				File:     relativize(m[1], workspaceRoot),
				Line:     atoi(m[2]),
				Column:   atoi(m[3]),
				Severity: parseSeverity(m[4]),
				Message:  m[6],
				Code:     m[5],
			})
			continue
		}
		if m := colonStyle.FindStringSubmatch(line); m != nil {
			diags = append(diags, src.Diagnostic{
				File:     relativize(m[1], workspaceRoot),
				Line:     atoi(m[2]),
				Column:   atoi(m[3]),
				Severity: parseSeverity(m[4]),
				Message:  m[5],
			})
		}
		// Anything else is tool chatter, not a diagnostic.
	}
	return diags
}

// parseSeverity is deliberately lenient: anything unrecognized is a
// warning, matching how downstream consumers expect malformed tool
// output to degrade.
func parseSeverity(s string) src.Severity {
	switch strings.ToLower(s) {
	case "error":
		return src.SeverityError
	case "warning":
		return src.SeverityWarning
	case "info":
		return src.SeverityInfo
	case "debug":
		return src.SeverityDebug
	default:
		return src.SeverityWarning
	}
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// relativize normalizes separators and strips the workspace root prefix
// from absolute paths so diagnostics always reference workspace-relative
// files.
func relativize(p, workspaceRoot string) string {
	p = glob.Normalize(p)
	if workspaceRoot == "" {
		return p
	}
	root := strings.TrimSuffix(glob.Normalize(workspaceRoot), "/")
	if p == root {
		return ""
	}
	if strings.HasPrefix(p, root+"/") {
		return strings.TrimPrefix(p, root+"/")
	}
	return p
}
