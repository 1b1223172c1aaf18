package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"sort"
	"time"

	"github.com/cespare/xxhash/v2"

	"wavebuild/src"
	"wavebuild/src/glob"
	"wavebuild/src/workspace"
)

// DefaultDir is where cache records live unless configured otherwise,
// relative to the workspace root.
const DefaultDir = ".wavebuild/cache"

// ErrWriteFailed marks a failed cache persist. A silent write failure
// would serve a stale cache on the next run, so Save never swallows it.
var ErrWriteFailed = errors.New("cache write failed")

// Entry is the persisted input/output content-hash snapshot for one
// target id.
type Entry struct {
	TargetID     string
	InputHashes  map[string]string
	OutputHashes map[string]string
	Timestamp    time.Time
}

// Manager owns the cache records under one directory. No other
// component reads or writes cache files directly.
type Manager struct {
	fs  workspace.FileSystem
	dir string
}

func NewManager(fs workspace.FileSystem, dir string) *Manager {
	if dir == "" {
		dir = DefaultDir
	}
	return &Manager{fs: fs, dir: dir}
}

// HashBytes is the content hash used uniformly for snapshots and cache
// comparison: a stable hex digest over raw bytes.
func HashBytes(data []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(data))
}

func (m *Manager) recordPath(targetID string) string {
	return path.Join(m.dir, targetID+".json")
}

// snapshot hashes every workspace file matched by the pattern set. An
// empty pattern set snapshots nothing: a rule that declares no inputs
// hashes zero files rather than the whole tree.
func (m *Manager) snapshot(patterns []string) (map[string]string, error) {
	hashes := map[string]string{}
	if len(patterns) == 0 {
		return hashes, nil
	}
	files, err := glob.Expand(m.fs, "", patterns)
	if err != nil {
		return nil, err
	}
	for _, file := range files {
		data, err := m.fs.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to hash %s: %w", file, err)
		}
		hashes[file] = HashBytes(data)
	}
	return hashes, nil
}

// IsValid reports whether the stored entry for the target still matches
// a fresh hash snapshot of its rule's inputs: same path set, same
// hashes. Any added, removed or modified input invalidates.
func (m *Manager) IsValid(target src.Target, rule src.Rule) bool {
	entry, ok := m.Load(target.ID)
	if !ok {
		return false
	}

	current, err := m.snapshot(rule.Inputs)
	if err != nil {
		return false
	}
	if len(current) != len(entry.InputHashes) {
		return false
	}
	for file, hash := range current {
		if entry.InputHashes[file] != hash {
			return false
		}
	}
	return true
}

// Save snapshots the rule's inputs and outputs and persists a new entry
// for the target, overwriting any previous one.
func (m *Manager) Save(target src.Target, rule src.Rule) error {
	inputs, err := m.snapshot(rule.Inputs)
	if err != nil {
		return fmt.Errorf("failed to snapshot inputs for %s: %w", target.ID, err)
	}
	outputs, err := m.snapshot(rule.Outputs)
	if err != nil {
		return fmt.Errorf("failed to snapshot outputs for %s: %w", target.ID, err)
	}

	rec := record{
		TargetID:     target.ID,
		InputHashes:  toPairs(inputs),
		OutputHashes: toPairs(outputs),
		Timestamp:    time.Now(),
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: failed to encode entry for %s: %v", ErrWriteFailed, target.ID, err)
	}

	if err := m.fs.MkdirAll(m.dir); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	if err := m.fs.WriteFile(m.recordPath(target.ID), data); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFailed, err)
	}
	return nil
}

// Load returns the stored entry for a target id. A missing or
// unparseable record reads as absent, never as an error; corruption
// just forces a rebuild.
func (m *Manager) Load(targetID string) (*Entry, bool) {
	recPath := m.recordPath(targetID)
	if !m.fs.Exists(recPath) {
		return nil, false
	}
	data, err := m.fs.ReadFile(recPath)
	if err != nil {
		return nil, false
	}
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, false
	}
	return &Entry{
		TargetID:     rec.TargetID,
		InputHashes:  fromPairs(rec.InputHashes),
		OutputHashes: fromPairs(rec.OutputHashes),
		Timestamp:    rec.Timestamp,
	}, true
}

// Clear deletes the record for a target id. Clearing an absent record
// is a no-op.
func (m *Manager) Clear(targetID string) error {
	recPath := m.recordPath(targetID)
	if !m.fs.Exists(recPath) {
		return nil
	}
	return m.fs.Remove(recPath)
}

// On disk the hash maps are flattened to path/hash pairs ordered by
// path, so records diff cleanly and decode deterministically.
type record struct {
	TargetID     string     `json:"targetId"`
	InputHashes  []hashPair `json:"inputHashes"`
	OutputHashes []hashPair `json:"outputHashes"`
	Timestamp    time.Time  `json:"timestamp"`
}

type hashPair struct {
	Path string `json:"path"`
	Hash string `json:"hash"`
}

func toPairs(hashes map[string]string) []hashPair {
	paths := make([]string, 0, len(hashes))
	for p := range hashes {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	pairs := make([]hashPair, 0, len(paths))
	for _, p := range paths {
		pairs = append(pairs, hashPair{Path: p, Hash: hashes[p]})
	}
	return pairs
}

func fromPairs(pairs []hashPair) map[string]string {
	hashes := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		hashes[pair.Path] = pair.Hash
	}
	return hashes
}
