// Package ink carries the rule table for the ink narrative scripting language
// together with the static editor metadata that goes with it: keywords for
// autocompletion, comment delimiters, and helpers that pick divert targets and
// declarations out of token streams.
package ink

import (
	_ "embed"
	"sort"
	"strings"
	"sync"

	"github.com/pingcap/errors"
	"github.com/spicery/ink-tokenizer/pkg/tokenizer"
)

//go:embed ink.yaml
var source []byte

// Token labels that consumers look for.
const (
	LabelDivertTarget = "divert.target"
	LabelKnotName     = "flow.knot.declaration.name"
	LabelStitchName   = "flow.stitch.declaration.name"
	LabelChoiceLabel  = "choice.label.name"
	LabelGatherLabel  = "gather.label.name"
)

// CommentConfig holds the delimiters a host uses for comment toggling.
type CommentConfig struct {
	LineStart  string
	BlockStart string
	BlockEnd   string
}

// Comments are the ink comment delimiters.
var Comments = CommentConfig{
	LineStart:  "//",
	BlockStart: "/*",
	BlockEnd:   "*/",
}

// Keywords is the autocompletion vocabulary.
var Keywords = []string{
	"CONST",
	"CHOICE_COUNT",
	"DONE",
	"END",
	"INCLUDE",
	"LIST",
	"LIST_ALL",
	"LIST_COUNT",
	"LIST_INVERT",
	"LIST_MAX",
	"LIST_MIN",
	"LIST_RANGE",
	"LIST_VALUE",
	"TODO",
	"TURNS_SINCE",
	"VAR",
}

// Completion is one autocompletion entry.
type Completion struct {
	Caption string `json:"caption"`
	Value   string `json:"value"`
	Meta    string `json:"meta"`
}

// Completions returns the keywords starting with prefix, sorted.
func Completions(prefix string) []Completion {
	var out []Completion
	for _, kw := range Keywords {
		if strings.HasPrefix(kw, prefix) {
			out = append(out, Completion{Caption: kw, Value: kw, Meta: "Ink Keyword"})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Value < out[j].Value })
	return out
}

// Source returns the YAML rule table.
func Source() []byte {
	return append([]byte(nil), source...)
}

// Rules parses the embedded rule table.
func Rules() (*tokenizer.RulesFile, error) {
	return tokenizer.ParseRules(source)
}

// Compile compiles the embedded rule table with the given options.
func Compile(opts ...tokenizer.Option) (*tokenizer.Grammar, error) {
	rules, err := Rules()
	if err != nil {
		return nil, errors.Annotate(err, "embedded ink rules")
	}
	g, err := tokenizer.Compile(rules, opts...)
	if err != nil {
		return nil, errors.Annotate(err, "embedded ink rules")
	}
	return g, nil
}

var (
	defaultOnce    sync.Once
	defaultGrammar *tokenizer.Grammar
)

// Grammar returns the process-wide compiled ink grammar. The embedded table
// is known to compile, so a failure is a programming error.
func Grammar() *tokenizer.Grammar {
	defaultOnce.Do(func() {
		g, err := Compile()
		if err != nil {
			panic(err)
		}
		defaultGrammar = g
	})
	return defaultGrammar
}

// DivertTargets returns the tokens naming divert targets, in line order.
func DivertTargets(tokens []tokenizer.Token) []tokenizer.Token {
	return filter(tokens, func(label string) bool {
		return label == LabelDivertTarget
	})
}

// Declarations returns the tokens that declare a divert destination: knot,
// stitch, choice label and gather label names.
func Declarations(tokens []tokenizer.Token) []tokenizer.Token {
	return filter(tokens, IsDeclaration)
}

// IsDeclaration reports whether label names a divert destination.
func IsDeclaration(label string) bool {
	switch label {
	case LabelKnotName, LabelStitchName, LabelChoiceLabel, LabelGatherLabel:
		return true
	}
	return false
}

func filter(tokens []tokenizer.Token, keep func(label string) bool) []tokenizer.Token {
	var out []tokenizer.Token
	for _, tok := range tokens {
		if keep(tok.Label) {
			out = append(out, tok)
		}
	}
	return out
}

// TargetName returns the target text with all whitespace removed.
func TargetName(tok tokenizer.Token) string {
	return strings.Join(strings.Fields(tok.Text), "")
}
