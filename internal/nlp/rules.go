package nlp

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"mosdacbot/internal/domain"

	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var defaultRulesYAML []byte

// RuleSet is an ordered rule list plus the result used when nothing matches
type RuleSet struct {
	Rules    []domain.Rule `yaml:"rules"`
	Fallback domain.Rule   `yaml:"fallback"`
}

// DefaultRuleSet returns the built-in rule set
func DefaultRuleSet() RuleSet {
	rs, err := ParseRuleSet(defaultRulesYAML)
	if err != nil {
		panic(fmt.Sprintf("embedded rules: %v", err))
	}
	return rs
}

// LoadRuleSet reads a rule set from a YAML file
func LoadRuleSet(path string) (RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RuleSet{}, fmt.Errorf("read rules: %w", err)
	}
	return ParseRuleSet(data)
}

// ParseRuleSet decodes and validates a rule set
func ParseRuleSet(data []byte) (RuleSet, error) {
	var rs RuleSet
	if err := yaml.Unmarshal(data, &rs); err != nil {
		return RuleSet{}, fmt.Errorf("parse rules: %w", err)
	}
	if err := rs.Validate(); err != nil {
		return RuleSet{}, err
	}
	return rs, nil
}

// Validate checks that every rule can match and produces a usable result
func (rs RuleSet) Validate() error {
	if len(rs.Rules) == 0 {
		return fmt.Errorf("rule set has no rules")
	}

	names := make(map[string]bool, len(rs.Rules))
	for i, r := range rs.Rules {
		if r.Name == "" {
			return fmt.Errorf("rule %d: name required", i)
		}
		if names[r.Name] {
			return fmt.Errorf("rule %q: duplicate name", r.Name)
		}
		names[r.Name] = true

		if err := validateResult(r); err != nil {
			return fmt.Errorf("rule %q: %w", r.Name, err)
		}

		if len(r.Keywords) == 0 {
			return fmt.Errorf("rule %q: at least one keyword required", r.Name)
		}
		for _, kw := range r.Keywords {
			if strings.TrimSpace(kw) == "" {
				return fmt.Errorf("rule %q: empty keyword", r.Name)
			}
		}
	}

	if err := validateResult(rs.Fallback); err != nil {
		return fmt.Errorf("fallback: %w", err)
	}
	return nil
}

func validateResult(r domain.Rule) error {
	if r.Intent == "" {
		return fmt.Errorf("intent required")
	}
	if r.Template == "" {
		return fmt.Errorf("template required")
	}
	if r.Confidence < 0 || r.Confidence > 1 {
		return fmt.Errorf("confidence %v outside [0,1]", r.Confidence)
	}
	return nil
}
