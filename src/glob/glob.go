package glob

import (
	"fmt"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"wavebuild/src/workspace"
)

// Matcher tests /-separated relative paths against a single glob
// pattern. Supported syntax: * (within a segment), ** (across
// segments), ? (single character) and [...] character classes; every
// other character matches literally.
type Matcher struct {
	pattern string
}

func NewMatcher(pattern string) Matcher {
	return Matcher{pattern: Normalize(pattern)}
}

func (m Matcher) Pattern() string {
	return m.pattern
}

func (m Matcher) Match(p string) bool {
	ok, err := doublestar.Match(m.pattern, Normalize(p))
	if err != nil {
		// Malformed pattern, e.g. an unclosed character class.
		return false
	}
	return ok
}

// Normalize converts path separators to /.
func Normalize(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}

// MatchesAny reports whether path matches the pattern set. Patterns
// prefixed with ! are negations and win over any positive match. An
// empty positive set matches everything not negated.
func MatchesAny(p string, patterns []string) bool {
	p = Normalize(p)

	positives := 0
	for _, pattern := range patterns {
		if strings.HasPrefix(pattern, "!") {
			if NewMatcher(pattern[1:]).Match(p) {
				return false
			}
		} else {
			positives++
		}
	}
	if positives == 0 {
		return true
	}

	for _, pattern := range patterns {
		if strings.HasPrefix(pattern, "!") {
			continue
		}
		if NewMatcher(pattern).Match(p) {
			return true
		}
	}
	return false
}

// Expand walks baseDir recursively and returns every file whose path
// relative to baseDir matches the pattern set, in walk order.
// Directories are always recursed into; filtering applies to files
// only. Callers needing a deterministic order must sort the result.
func Expand(fs workspace.FileSystem, baseDir string, patterns []string) ([]string, error) {
	files := []string{}

	var walk func(rel string) error
	walk = func(rel string) error {
		dir := path.Join(baseDir, rel)
		if dir == "" {
			dir = "."
		}
		entries, err := fs.ReadDir(dir)
		if err != nil {
			return fmt.Errorf("failed to walk %s: %w", dir, err)
		}
		for _, entry := range entries {
			childRel := entry.Name
			if rel != "" {
				childRel = rel + "/" + entry.Name
			}
			if entry.IsDir {
				if err := walk(childRel); err != nil {
					return err
				}
				continue
			}
			if MatchesAny(childRel, patterns) {
				files = append(files, childRel)
			}
		}
		return nil
	}

	if err := walk(""); err != nil {
		return nil, err
	}
	return files, nil
}
