package rules

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/solatis/vizcore/internal/types"
)

// ruleFile is the wrapped rule file form: `rules: [...]`.
type ruleFile struct {
	Rules []types.StyleRule `yaml:"rules"`
}

// LoadFile reads a rule list from a YAML or JSON file.
// JSON is parsed by the YAML decoder, which accepts it as a subset.
func LoadFile(path string) ([]types.StyleRule, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml", ".json":
	default:
		return nil, fmt.Errorf("%w: %s", types.ErrUnsupportedFormat, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules: %w", err)
	}
	rules, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return rules, nil
}

// Parse decodes a rule list. The document is either a bare sequence of
// rules or a mapping with a `rules` key. An empty document is no rules.
func Parse(data []byte) ([]types.StyleRule, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil, nil
	}

	root := doc.Content[0]
	switch root.Kind {
	case yaml.SequenceNode:
		var rules []types.StyleRule
		if err := root.Decode(&rules); err != nil {
			return nil, err
		}
		return rules, nil
	case yaml.MappingNode:
		var f ruleFile
		if err := root.Decode(&f); err != nil {
			return nil, err
		}
		return f.Rules, nil
	default:
		return nil, fmt.Errorf("expected a rule list, got %s", root.Tag)
	}
}
