package review

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Policy is the optional part of a rules file beyond the rule toggles.
type Policy struct {
	// Required checks are always listed in the prompt.
	Required []RequiredCheck `yaml:"required,omitempty" json:"required,omitempty"`
	// TypeOverrides forces the issue type for a category, e.g. security: error.
	TypeOverrides map[string]string `yaml:"typeOverrides,omitempty" json:"typeOverrides,omitempty"`
}

// RequiredCheck is a policy check that should always be evaluated.
type RequiredCheck struct {
	ID   string `yaml:"id" json:"id"`
	Text string `yaml:"text" json:"text"`
}

// RulesFile is the on-disk rules format. YAML and JSON are both accepted.
//
//	rules:
//	  checkSecurity: true
//	  checkCodeStyle: false
//	required:
//	  - id: go-errors
//	    text: Ensure errors are wrapped with context
//	typeOverrides:
//	  security: error
type RulesFile struct {
	Rules  RuleSet `yaml:"rules"`
	Policy `yaml:",inline"`
}

// LoadRules loads a rules file. An empty path returns nil, nil. Rules the
// file does not mention keep their default (enabled).
func LoadRules(path string) (*RulesFile, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules file: %w", err)
	}
	var rf RulesFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parsing rules file: %w", err)
	}
	rules := DefaultRules()
	for name, enabled := range rf.Rules {
		rules[canonicalRule(name)] = enabled
	}
	rf.Rules = rules
	for cat, t := range rf.TypeOverrides {
		if _, ok := knownTypes[IssueType(t)]; !ok {
			return nil, fmt.Errorf("rules file: typeOverrides.%s: unknown issue type %q", cat, t)
		}
	}
	return &rf, nil
}

// RulesFromList builds a RuleSet that enables exactly the named rules. Bare
// names such as "security" are accepted.
func RulesFromList(names []string) (RuleSet, error) {
	known := make(map[string]bool, len(RuleNames))
	for _, n := range RuleNames {
		known[n] = true
	}
	rs := make(RuleSet, len(RuleNames))
	for _, n := range RuleNames {
		rs[n] = false
	}
	for _, name := range names {
		canon := canonicalRule(name)
		if !known[canon] {
			return nil, fmt.Errorf("unknown rule %q (known: %s)", name, strings.Join(RuleNames, ", "))
		}
		rs[canon] = true
	}
	return rs, nil
}

// canonicalRule maps "security", "Security" or "checkSecurity" to the
// checkSecurity form. "style" is an alias of checkCodeStyle.
func canonicalRule(name string) string {
	name = strings.TrimSpace(name)
	bare := strings.ToLower(strings.TrimPrefix(name, "check"))
	for _, known := range RuleNames {
		if strings.ToLower(strings.TrimPrefix(known, "check")) == bare {
			return known
		}
	}
	if bare == "style" {
		return "checkCodeStyle"
	}
	return name
}

// PromptSection returns additional prompt instructions derived from p.
func (p *Policy) PromptSection() string {
	if p == nil || len(p.Required) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\nRequired checks (always evaluate these):\n")
	for _, req := range p.Required {
		fmt.Fprintf(&b, "- [%s] %s\n", req.ID, req.Text)
	}
	return b.String()
}

// ApplyTypeOverrides post-processes issues to enforce the type overrides of
// p. Parsing issues are never changed.
func ApplyTypeOverrides(issues []Issue, p *Policy) []Issue {
	if p == nil || len(p.TypeOverrides) == 0 {
		return issues
	}
	for i := range issues {
		if issues[i].Category == CategoryParsing {
			continue
		}
		if override, ok := p.TypeOverrides[string(issues[i].Category)]; ok {
			issues[i].Type = IssueType(override)
		}
	}
	return issues
}
