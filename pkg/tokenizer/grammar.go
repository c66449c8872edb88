package tokenizer

import (
	"fmt"
	"sort"
	"time"

	"github.com/dlclark/regexp2"
	"go.uber.org/zap"
)

const (
	// RootContextName is the context every grammar starts in.
	RootContextName = "start"
	// DefaultLabel labels unclaimed text in contexts that declare no default.
	DefaultLabel = "text"
)

// ContextID enumerates the contexts of a compiled grammar. IDs are only
// meaningful together with the Grammar that assigned them.
type ContextID int

// RootContext is the id of the "start" context in every grammar.
const RootContext ContextID = 0

// Directive is the stack transition a matched rule requests.
type Directive int

const (
	DirectiveNone Directive = iota
	DirectivePush
	DirectivePop
	DirectiveNext
)

func (d Directive) String() string {
	switch d {
	case DirectivePush:
		return "push"
	case DirectivePop:
		return "pop"
	case DirectiveNext:
		return "next"
	}
	return "none"
}

type ruleKind int

const (
	matchRule ruleKind = iota
	includeRule
)

type rule struct {
	kind    ruleKind
	source  string
	pattern *regexp2.Regexp
	// whole means labels[0] covers the entire match; otherwise labels[i]
	// labels capture group i and "" marks a group that emits no token.
	whole     bool
	labels    []string
	leftover  string
	directive Directive
	target    ContextID // push/next target, or the included context
}

type context struct {
	id           ContextID
	name         string
	defaultLabel string
	rules        []rule
}

// Grammar is a compiled rule table. It is immutable and safe for concurrent
// use by any number of goroutines.
type Grammar struct {
	name      string
	scopeName string
	fileTypes []string
	contexts  []*context
	ids       map[string]ContextID
	logger    *zap.Logger
	observer  Observer
}

// Compile resolves a rule table into a Grammar. Includes are kept as
// references to other contexts and are only followed while matching, so
// cyclic tables compile. Any unknown context reference or invalid pattern
// aborts compilation with a *GrammarError.
func Compile(rf *RulesFile, opts ...Option) (*Grammar, error) {
	o := newOptions(opts)
	if rf == nil || len(rf.Contexts) == 0 {
		return nil, &GrammarError{Rule: -1, Reason: "rule table has no contexts"}
	}
	if rf.Contexts[RootContextName] == nil {
		return nil, &GrammarError{Rule: -1, Reason: fmt.Sprintf("missing root context '%s'", RootContextName)}
	}

	c := &compiler{
		g: &Grammar{
			name:      rf.Name,
			scopeName: rf.ScopeName,
			fileTypes: append([]string(nil), rf.FileTypes...),
			ids:       make(map[string]ContextID, len(rf.Contexts)),
			logger:    o.logger,
			observer:  o.observer,
		},
		timeout: o.matchTimeout,
	}

	// The root context always gets id 0; the rest follow in name order so
	// ids are stable for a given table.
	names := make([]string, 0, len(rf.Contexts))
	for name := range rf.Contexts {
		if name != RootContextName {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	c.declare(RootContextName, rf.Contexts[RootContextName], true)
	for _, name := range names {
		c.declare(name, rf.Contexts[name], true)
	}

	// Inline push targets are declared while compiling, so the slice grows.
	for i := 0; i < len(c.specs); i++ {
		if err := c.compileContext(ContextID(i)); err != nil {
			return nil, err
		}
	}
	return c.g, nil
}

type compiler struct {
	g       *Grammar
	specs   []*ContextSpec
	timeout time.Duration
}

func (c *compiler) declare(name string, spec *ContextSpec, named bool) ContextID {
	id := ContextID(len(c.g.contexts))
	if spec == nil {
		spec = &ContextSpec{}
	}
	c.g.contexts = append(c.g.contexts, &context{id: id, name: name})
	c.specs = append(c.specs, spec)
	if named {
		c.g.ids[name] = id
	}
	return id
}

func (c *compiler) resolve(ctx *context, index int, name string) (ContextID, error) {
	id, ok := c.g.ids[name]
	if !ok {
		return 0, &GrammarError{Context: ctx.name, Rule: index, Reason: fmt.Sprintf("unknown context '%s'", name)}
	}
	return id, nil
}

func (c *compiler) compileContext(id ContextID) error {
	ctx := c.g.contexts[id]
	spec := c.specs[id]
	ctx.defaultLabel = spec.Default
	if ctx.defaultLabel == "" {
		ctx.defaultLabel = DefaultLabel
	}
	ctx.rules = make([]rule, 0, len(spec.Rules))
	for i := range spec.Rules {
		r, err := c.compileRule(ctx, i, &spec.Rules[i])
		if err != nil {
			return err
		}
		ctx.rules = append(ctx.rules, r)
	}
	return nil
}

func (c *compiler) compileRule(ctx *context, index int, rs *RuleSpec) (rule, error) {
	fail := func(reason string, err error) (rule, error) {
		return rule{}, &GrammarError{Context: ctx.name, Rule: index, Reason: reason, Err: err}
	}

	switch {
	case rs.Include != "" && rs.Match != "":
		return fail("rule has both match and include", nil)
	case rs.Include != "":
		if rs.directiveCount() > 0 || rs.Token != "" || len(rs.Tokens) > 0 || rs.Default != "" {
			return fail("include rule cannot carry labels or directives", nil)
		}
		target, err := c.resolve(ctx, index, rs.Include)
		if err != nil {
			return rule{}, err
		}
		return rule{kind: includeRule, source: rs.Include, target: target}, nil
	case rs.Match == "":
		return fail("rule has neither match nor include", nil)
	}

	if rs.Token != "" && len(rs.Tokens) > 0 {
		return fail("rule has both token and tokens", nil)
	}
	if rs.directiveCount() > 1 {
		return fail("rule has more than one of push, pop and next", nil)
	}

	// \G pins the match to the cursor: rules never search forward.
	pattern, err := regexp2.Compile(`\G(?:`+rs.Match+`)`, regexp2.None)
	if err != nil {
		return fail(fmt.Sprintf("invalid pattern %q", rs.Match), err)
	}
	if c.timeout > 0 {
		pattern.MatchTimeout = c.timeout
	}
	groups := len(pattern.GetGroupNumbers()) - 1
	if len(rs.Tokens) > groups {
		return fail(fmt.Sprintf("%d labels for %d capture groups", len(rs.Tokens), groups), nil)
	}

	r := rule{
		kind:     matchRule,
		source:   rs.Match,
		pattern:  pattern,
		leftover: rs.Default,
	}
	if len(rs.Tokens) > 0 {
		r.labels = make([]string, groups+1)
		copy(r.labels[1:], rs.Tokens)
	} else {
		r.whole = true
		r.labels = []string{rs.Token}
	}

	switch {
	case rs.Pop:
		r.directive = DirectivePop
	case rs.Next != "":
		r.directive = DirectiveNext
		if r.target, err = c.resolve(ctx, index, rs.Next); err != nil {
			return rule{}, err
		}
	case rs.Push != nil:
		r.directive = DirectivePush
		switch {
		case rs.Push.Inline != nil:
			r.target = c.declare(fmt.Sprintf("%s/%d", ctx.name, index), rs.Push.Inline, false)
		case rs.Push.Name != "":
			if r.target, err = c.resolve(ctx, index, rs.Push.Name); err != nil {
				return rule{}, err
			}
		default:
			return fail("push without a target", nil)
		}
	}
	return r, nil
}

// Name returns the grammar's display name.
func (g *Grammar) Name() string {
	return g.name
}

// ScopeName returns the grammar's root scope, e.g. "source.ink".
func (g *Grammar) ScopeName() string {
	return g.scopeName
}

// FileTypes returns the file extensions the grammar is meant for.
func (g *Grammar) FileTypes() []string {
	return append([]string(nil), g.fileTypes...)
}

// InitialStack returns the entering state of a document's first line.
func (g *Grammar) InitialStack() ContextStack {
	return RootStack()
}

// NumContexts returns the number of contexts, inline ones included.
func (g *Grammar) NumContexts() int {
	return len(g.contexts)
}

// ContextID looks up a named context.
func (g *Grammar) ContextID(name string) (ContextID, bool) {
	id, ok := g.ids[name]
	return id, ok
}

// ContextName returns the display name of a context. Inline contexts are
// named after the rule that pushes them.
func (g *Grammar) ContextName(id ContextID) string {
	if int(id) < 0 || int(id) >= len(g.contexts) {
		return fmt.Sprintf("#%d", int(id))
	}
	return g.contexts[id].name
}

// DefaultLabelOf returns the label fallback text receives in a context.
func (g *Grammar) DefaultLabelOf(id ContextID) string {
	return g.context(id).defaultLabel
}

// StackNames renders a stack as context names, bottom first.
func (g *Grammar) StackNames(s ContextStack) []string {
	ids := s.frames()
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = g.ContextName(id)
	}
	return names
}

// context returns the context for id; unknown ids from a foreign stack
// resolve to the root context.
func (g *Grammar) context(id ContextID) *context {
	if int(id) < 0 || int(id) >= len(g.contexts) {
		return g.contexts[RootContext]
	}
	return g.contexts[id]
}
