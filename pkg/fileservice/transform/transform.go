// Package transform rewrites text content through ordered replacement rules.
//
// Rule order matters: a later rule sees the output of earlier ones. A
// Pipeline applies its rules in insertion order, so the same rule set always
// produces the same output for the same input.
package transform

import (
	"fmt"
	"strings"
	"sync"
)

// Transformer rewrites text content
type Transformer interface {
	Apply(content string) string
}

// Rule replaces every occurrence of Pattern with Replacement
type Rule struct {
	Pattern     string `json:"pattern" yaml:"pattern"`
	Replacement string `json:"replacement" yaml:"replacement"`
}

// Pipeline is an ordered set of rules keyed by pattern. It is safe for
// concurrent use.
type Pipeline struct {
	mu    sync.RWMutex
	rules []Rule
}

// New creates a pipeline with the given rules added in order
func New(rules ...Rule) *Pipeline {
	p := &Pipeline{}
	for _, r := range rules {
		p.AddRule(r.Pattern, r.Replacement)
	}
	return p
}

// AddRule appends a rule. If a rule with the same pattern exists its
// replacement is updated and it keeps its position.
func (p *Pipeline) AddRule(pattern, replacement string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i := range p.rules {
		if p.rules[i].Pattern == pattern {
			p.rules[i].Replacement = replacement
			return
		}
	}
	p.rules = append(p.rules, Rule{Pattern: pattern, Replacement: replacement})
}

// Rules returns a copy of the rules in application order
func (p *Pipeline) Rules() []Rule {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]Rule, len(p.rules))
	copy(out, p.rules)
	return out
}

// Len returns the number of rules
func (p *Pipeline) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.rules)
}

// Apply runs every rule over content in order. Empty patterns are skipped.
func (p *Pipeline) Apply(content string) string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	for _, rule := range p.rules {
		if rule.Pattern == "" {
			continue
		}
		content = strings.ReplaceAll(content, rule.Pattern, rule.Replacement)
	}
	return content
}

// Func adapts a function to the Transformer interface
type Func func(string) string

func (f Func) Apply(content string) string {
	return f(content)
}

// Chain applies transformers left to right
func Chain(ts ...Transformer) Transformer {
	return Func(func(content string) string {
		for _, t := range ts {
			content = t.Apply(content)
		}
		return content
	})
}

// Uppercase upper-cases content
func Uppercase() Transformer {
	return Func(strings.ToUpper)
}

// Default is the built-in normalization: upper-case, spaces to underscores,
// then newlines escaped as a literal "\n".
func Default() Transformer {
	return Chain(
		Uppercase(),
		New(
			Rule{Pattern: " ", Replacement: "_"},
			Rule{Pattern: "\n", Replacement: `\n`},
		),
	)
}

// Preset returns a built-in transformer by name. The empty name and "none"
// return nil.
func Preset(name string) (Transformer, error) {
	switch strings.ToLower(name) {
	case "", "none":
		return nil, nil
	case "default":
		return Default(), nil
	case "uppercase":
		return Uppercase(), nil
	default:
		return nil, fmt.Errorf("unknown transform preset %q", name)
	}
}
