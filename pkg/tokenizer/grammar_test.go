package tokenizer

import (
	stderrors "errors"
	"strings"
	"testing"
	"time"

	"github.com/dlclark/regexp2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompileErrors(t *testing.T) {
	start := func(rules ...RuleSpec) *RulesFile {
		return &RulesFile{Contexts: map[string]*ContextSpec{
			"start": {Rules: rules},
			"other": {},
		}}
	}

	tests := []struct {
		name   string
		rules  *RulesFile
		reason string
	}{
		{"Nil table", nil, "no contexts"},
		{"Empty table", &RulesFile{}, "no contexts"},
		{"Missing root", &RulesFile{Contexts: map[string]*ContextSpec{"main": {}}}, "missing root context 'start'"},
		{"Match and include", start(RuleSpec{Match: "a", Include: "other"}), "both match and include"},
		{"Neither match nor include", start(RuleSpec{Token: "a"}), "neither match nor include"},
		{"Include with label", start(RuleSpec{Include: "other", Token: "a"}), "cannot carry labels"},
		{"Include with directive", start(RuleSpec{Include: "other", Pop: true}), "cannot carry labels"},
		{"Token and tokens", start(RuleSpec{Match: "(a)", Token: "a", Tokens: []string{"b"}}), "both token and tokens"},
		{"Two directives", start(RuleSpec{Match: "a", Pop: true, Next: "other"}), "more than one of push, pop and next"},
		{"Invalid pattern", start(RuleSpec{Match: "(a"}), "invalid pattern"},
		{"Too many labels", start(RuleSpec{Match: "(a)", Tokens: []string{"x", "y"}}), "2 labels for 1 capture groups"},
		{"Unknown include", start(RuleSpec{Include: "missing"}), "unknown context 'missing'"},
		{"Unknown next", start(RuleSpec{Match: "a", Next: "missing"}), "unknown context 'missing'"},
		{"Unknown push", start(RuleSpec{Match: "a", Push: &ContextRef{Name: "missing"}}), "unknown context 'missing'"},
		{"Push without target", start(RuleSpec{Match: "a", Push: &ContextRef{}}), "push without a target"},
		{
			"Error inside inline context",
			start(RuleSpec{Match: "a", Push: &ContextRef{Inline: &ContextSpec{Rules: []RuleSpec{{Match: "["}}}}}),
			"invalid pattern",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := Compile(tt.rules)
			assert.Nil(t, g)
			var gerr *GrammarError
			require.True(t, stderrors.As(err, &gerr), "unexpected error type %T", err)
			assert.Contains(t, gerr.Error(), tt.reason)
		})
	}
}

func TestGrammarErrorMessage(t *testing.T) {
	_, err := Compile(&RulesFile{Contexts: map[string]*ContextSpec{
		"start": {Rules: []RuleSpec{{Match: "a"}, {Match: "(b"}}},
	}})
	require.Error(t, err)

	var gerr *GrammarError
	require.ErrorAs(t, err, &gerr)
	assert.Equal(t, "start", gerr.Context)
	assert.Equal(t, 1, gerr.Rule)
	assert.NotNil(t, gerr.Unwrap())
	assert.True(t, strings.HasPrefix(err.Error(), "grammar error in context 'start' rule 1: invalid pattern"))
}

func TestCompileAllowsCycles(t *testing.T) {
	g := compileYAML(t, `
contexts:
  start:
    rules:
      - include: start
`)
	assert.Equal(t, 1, g.NumContexts())
}

func TestContextIDs(t *testing.T) {
	g := compileYAML(t, exprRules)

	assert.Equal(t, "expr", g.Name())
	assert.Equal(t, "source.expr", g.ScopeName())
	assert.Equal(t, []string{"expr"}, g.FileTypes())
	assert.Equal(t, 3, g.NumContexts())

	id, ok := g.ContextID("start")
	require.True(t, ok)
	assert.Equal(t, RootContext, id)

	id, ok = g.ContextID("paren")
	require.True(t, ok)
	assert.Equal(t, "paren", g.ContextName(id))
	assert.Equal(t, "paren.text", g.DefaultLabelOf(id))

	// Inline contexts are reachable by id only.
	_, ok = g.ContextID("start/3")
	assert.False(t, ok)
	assert.Equal(t, "start/3", g.ContextName(2))
	assert.Equal(t, "string", g.DefaultLabelOf(2))

	assert.Equal(t, DefaultLabel, g.DefaultLabelOf(RootContext))
	assert.Equal(t, "#7", g.ContextName(7))
	assert.Equal(t, DefaultLabel, g.DefaultLabelOf(7))

	// Ids depend only on the table.
	again := compileYAML(t, exprRules)
	for i := 0; i < g.NumContexts(); i++ {
		assert.Equal(t, g.ContextName(ContextID(i)), again.ContextName(ContextID(i)))
	}
}

func TestDirectiveString(t *testing.T) {
	assert.Equal(t, "none", DirectiveNone.String())
	assert.Equal(t, "push", DirectivePush.String())
	assert.Equal(t, "pop", DirectivePop.String())
	assert.Equal(t, "next", DirectiveNext.String())
}

func TestNextReplacesTop(t *testing.T) {
	g := compileYAML(t, `
contexts:
  start:
    rules:
      - match: 'VAR'
        token: keyword
        next: value
  value:
    default: value.text
    rules:
      - match: ';'
        token: end
        next: start
`)

	res := g.TokenizeLine("VAR x; y", g.InitialStack())
	assert.Equal(t, [][2]string{
		{"keyword", "VAR"},
		{"value.text", " x"},
		{"end", ";"},
		{"text", " y"},
	}, pairs(res.Tokens))
	assert.Equal(t, 1, res.State.Depth())

	// Next at the root replaces the root entry.
	res = g.TokenizeLine("VAR", g.InitialStack())
	assert.Equal(t, []string{"value"}, g.StackNames(res.State))
}

func TestMatchTimeoutIsOptIn(t *testing.T) {
	patterns := func(g *Grammar) []*regexp2.Regexp {
		var out []*regexp2.Regexp
		for _, ctx := range g.contexts {
			for _, r := range ctx.rules {
				if r.pattern != nil {
					out = append(out, r.pattern)
				}
			}
		}
		return out
	}

	unbounded := patterns(compileYAML(t, exprRules))
	require.NotEmpty(t, unbounded)
	for _, p := range unbounded {
		assert.Equal(t, regexp2.DefaultMatchTimeout, p.MatchTimeout)
	}

	for _, p := range patterns(compileYAML(t, exprRules, WithMatchTimeout(50*time.Millisecond))) {
		assert.Equal(t, 50*time.Millisecond, p.MatchTimeout)
	}
}
