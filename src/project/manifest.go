package project

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"wavebuild/src"
)

// ManifestName is the build manifest looked up at the workspace root.
const ManifestName = "wavebuild.yaml"

// Manifest is the caller-side description of a workspace's rules and
// targets. The executor core never reads it; the CLI loads it and hands
// the decoded model over.
type Manifest struct {
	Rules   map[string]ruleSpec `yaml:"rules"`
	Targets []src.Target        `yaml:"targets"`
	Params  map[string]any      `yaml:"params,omitempty"`
}

type ruleSpec struct {
	Name    string   `yaml:"name,omitempty"`
	Inputs  []string `yaml:"inputs,omitempty"`
	Outputs []string `yaml:"outputs,omitempty"`
	Command string   `yaml:"command"`
}

// Load reads and validates the manifest under the workspace root.
func Load(workspaceRoot string) (*Manifest, error) {
	manifestPath := filepath.Join(workspaceRoot, ManifestName)
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", ManifestName, err)
	}
	return Parse(data)
}

// Parse decodes and validates manifest bytes.
func Parse(data []byte) (*Manifest, error) {
	var manifest Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	if err := manifest.validate(); err != nil {
		return nil, err
	}
	return &manifest, nil
}

func (m *Manifest) validate() error {
	if len(m.Targets) == 0 {
		return fmt.Errorf("manifest declares no targets")
	}
	for i, target := range m.Targets {
		if target.ID == "" {
			return fmt.Errorf("target %d has no id", i)
		}
		if target.RuleID == "" {
			return fmt.Errorf("target %s has no rule", target.ID)
		}
		if _, ok := m.Rules[target.RuleID]; !ok {
			return fmt.Errorf("target %s references unknown rule %s", target.ID, target.RuleID)
		}
	}
	for id, rule := range m.Rules {
		if rule.Command == "" {
			return fmt.Errorf("rule %s has no command", id)
		}
	}
	return nil
}

// RuleMap converts the manifest's rules into the core model, keyed and
// stamped with their manifest ids.
func (m *Manifest) RuleMap() map[string]src.Rule {
	rules := make(map[string]src.Rule, len(m.Rules))
	for id, spec := range m.Rules {
		name := spec.Name
		if name == "" {
			name = id
		}
		rules[id] = src.Rule{
			ID:      id,
			Name:    name,
			Inputs:  spec.Inputs,
			Outputs: spec.Outputs,
			Command: spec.Command,
		}
	}
	return rules
}

// Select returns the named targets plus their transitive dependencies,
// or every target when names is empty.
func (m *Manifest) Select(names []string) ([]src.Target, error) {
	if len(names) == 0 {
		return m.Targets, nil
	}

	byID := make(map[string]src.Target, len(m.Targets))
	for _, target := range m.Targets {
		byID[target.ID] = target
	}

	selected := map[string]bool{}
	var visit func(id string) error
	visit = func(id string) error {
		if selected[id] {
			return nil
		}
		target, ok := byID[id]
		if !ok {
			return fmt.Errorf("unknown target %s", id)
		}
		selected[id] = true
		for _, dep := range target.DependsOn {
			if err := visit(dep); err != nil {
				return err
			}
		}
		return nil
	}
	for _, name := range names {
		if err := visit(name); err != nil {
			return nil, err
		}
	}

	// Preserve manifest order for the selection.
	var targets []src.Target
	for _, target := range m.Targets {
		if selected[target.ID] {
			targets = append(targets, target)
		}
	}
	return targets, nil
}
