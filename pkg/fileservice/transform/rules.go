package transform

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

type rulesFile struct {
	Rules []Rule `yaml:"rules"`
}

// LoadRules parses a YAML rule list:
//
//	rules:
//	  - pattern: "colour"
//	    replacement: "color"
//
// Rules keep file order. A rule without a pattern is an error.
func LoadRules(r io.Reader) ([]Rule, error) {
	var f rulesFile
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("parsing rules: %w", err)
	}

	for i, rule := range f.Rules {
		if rule.Pattern == "" {
			return nil, fmt.Errorf("rule %d: pattern is required", i)
		}
	}
	return f.Rules, nil
}

// LoadRulesFile reads rules from a YAML file
func LoadRulesFile(path string) ([]Rule, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening rules file: %w", err)
	}
	defer file.Close()

	return LoadRules(file)
}
