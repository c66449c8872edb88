package tokenizer

import (
	"os"

	"github.com/pingcap/errors"
	"gopkg.in/yaml.v3"
)

// RulesFile represents the structure of a YAML rules file: a table mapping
// context names to ordered rule lists.
type RulesFile struct {
	Name      string                  `yaml:"name,omitempty"`
	ScopeName string                  `yaml:"scope_name,omitempty"`
	FileTypes []string                `yaml:"file_types,omitempty"`
	Contexts  map[string]*ContextSpec `yaml:"contexts"`
}

// ContextSpec is a named, ordered sequence of rules plus the label used for
// text no rule claims.
type ContextSpec struct {
	Default string     `yaml:"default,omitempty"`
	Rules   []RuleSpec `yaml:"rules"`
}

// RuleSpec is a single entry of a context. Exactly one of Match or Include
// must be set.
type RuleSpec struct {
	Match   string   `yaml:"match,omitempty"`
	Token   string   `yaml:"token,omitempty"`   // label for the whole match
	Tokens  []string `yaml:"tokens,omitempty"`  // labels for capture groups 1..n
	Default string   `yaml:"default,omitempty"` // label for match text no capture claims

	Include string      `yaml:"include,omitempty"`
	Push    *ContextRef `yaml:"push,omitempty"`
	Next    string      `yaml:"next,omitempty"`
	Pop     bool        `yaml:"pop,omitempty"`
}

// ContextRef names the target of a push. In YAML it is either a context name
// or an inline anonymous context, given as a mapping with default/rules or as
// a bare list of rules.
type ContextRef struct {
	Name   string
	Inline *ContextSpec
}

// UnmarshalYAML accepts the three spellings of a context reference.
func (r *ContextRef) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		r.Name = node.Value
		return nil
	case yaml.MappingNode:
		var spec ContextSpec
		if err := node.Decode(&spec); err != nil {
			return err
		}
		r.Inline = &spec
		return nil
	case yaml.SequenceNode:
		var rules []RuleSpec
		if err := node.Decode(&rules); err != nil {
			return err
		}
		r.Inline = &ContextSpec{Rules: rules}
		return nil
	}
	return errors.Errorf("line %d: push target must be a context name or an inline context", node.Line)
}

// MarshalYAML writes named references as scalars and inline contexts as mappings.
func (r ContextRef) MarshalYAML() (interface{}, error) {
	if r.Inline != nil {
		return r.Inline, nil
	}
	return r.Name, nil
}

// LoadRulesFile loads and parses a YAML rules file.
func LoadRulesFile(filename string) (*RulesFile, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Annotatef(err, "failed to read rules file '%s'", filename)
	}

	rules, err := ParseRules(data)
	if err != nil {
		return nil, errors.Annotatef(err, "failed to parse YAML in rules file '%s'", filename)
	}
	return rules, nil
}

// ParseRules parses a YAML rule table.
func ParseRules(data []byte) (*RulesFile, error) {
	var rules RulesFile
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, errors.Trace(err)
	}
	return &rules, nil
}

// YAML renders the rule table back to YAML.
func (rf *RulesFile) YAML() ([]byte, error) {
	data, err := yaml.Marshal(rf)
	if err != nil {
		return nil, errors.Annotate(err, "failed to marshal rules to YAML")
	}
	return data, nil
}

// LoadGrammarFile loads a YAML rules file and compiles it.
func LoadGrammarFile(filename string, opts ...Option) (*Grammar, error) {
	rules, err := LoadRulesFile(filename)
	if err != nil {
		return nil, err
	}
	g, err := Compile(rules, opts...)
	if err != nil {
		return nil, errors.Trace(err)
	}
	return g, nil
}

func (rs *RuleSpec) directiveCount() int {
	n := 0
	if rs.Push != nil {
		n++
	}
	if rs.Next != "" {
		n++
	}
	if rs.Pop {
		n++
	}
	return n
}
