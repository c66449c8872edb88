package tokenizer

import (
	"go.uber.org/zap"
)

// maxZeroWidthSteps bounds how many zero-width matches may change the stack
// at a single offset before the tokenizer forces a one-rune advance.
const maxZeroWidthSteps = 8

// Result is the outcome of tokenizing one line: the tokens, whose texts
// concatenate to the line, and the stack to enter the next line with.
type Result struct {
	Tokens []Token
	State  ContextStack
}

// TokenizeLine tokenizes a single line (without its line terminator) starting
// from the entering stack. It never fails: text no rule claims is labeled with
// the active context's default. Without WithMatchTimeout it is a pure function
// of its arguments.
func (g *Grammar) TokenizeLine(line string, entering ContextStack) Result {
	in := newLineInput(line)
	b := &tokenBuilder{in: in, tokens: make([]Token, 0, 8)}
	stack := entering

	pos, steps := 0, 0
	for pos < in.length() {
		top := stack.Top()
		m := g.tryDispatch(in, pos, top)
		switch {
		case m == nil:
			b.fallback(g.context(top).defaultLabel, pos)
			g.observer.FallbackRune()
			pos++
			steps = 0
		case !m.zeroWidth():
			b.mapCaptures(m, g.context(top).defaultLabel)
			stack = stack.Apply(m.rule.directive, m.rule.target)
			pos = m.whole.end
			steps = 0
		default:
			// A zero-width match may switch contexts so that a rule of the
			// new context claims the text; otherwise advance by one rune.
			next := stack.Apply(m.rule.directive, m.rule.target)
			if steps < maxZeroWidthSteps && !next.Equal(stack) {
				stack = next
				steps++
				continue
			}
			b.fallback(g.context(top).defaultLabel, pos)
			g.observer.FallbackRune()
			pos++
			steps = 0
		}
	}

	stack = g.endOfLine(in, stack)
	g.observer.LineTokenized(len(b.tokens))
	return Result{Tokens: b.tokens, State: stack}
}

// endOfLine lets rules that match at the very end of the line, such as "$",
// apply their directives. Nothing is emitted since no text is left.
func (g *Grammar) endOfLine(in *lineInput, stack ContextStack) ContextStack {
	for i := 0; i < maxZeroWidthSteps; i++ {
		m := g.tryDispatch(in, in.length(), stack.Top())
		if m == nil {
			break
		}
		next := stack.Apply(m.rule.directive, m.rule.target)
		if next.Equal(stack) {
			break
		}
		stack = next
	}
	return stack
}

// tryDispatch runs the dispatcher and downgrades failures to "no match".
func (g *Grammar) tryDispatch(in *lineInput, pos int, active ContextID) *Match {
	m, err := g.dispatch(in, pos, active)
	if err != nil {
		g.logger.Debug("dispatch failed, using default token",
			zap.String("context", g.ContextName(active)),
			zap.Int("offset", in.offsets[pos]),
			zap.Error(err))
		g.observer.DispatchFailed(err)
		return nil
	}
	return m
}

// TokenizeLines tokenizes consecutive lines, threading each line's exit
// stack into the next.
func (g *Grammar) TokenizeLines(lines []string, entering ContextStack) []Result {
	results := make([]Result, len(lines))
	state := entering
	for i, line := range lines {
		results[i] = g.TokenizeLine(line, state)
		state = results[i].State
	}
	return results
}
