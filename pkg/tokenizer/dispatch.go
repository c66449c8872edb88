package tokenizer

import (
	"sort"
	"unicode/utf8"

	"go.uber.org/zap"
)

// lineInput is a line decoded once into runes, which is what the pattern
// engine works on, with the byte offset of every rune for building tokens.
type lineInput struct {
	text    string
	runes   []rune
	offsets []int // offsets[i] is the byte offset of rune i; offsets[len(runes)] == len(text)
}

func newLineInput(text string) *lineInput {
	in := &lineInput{
		text:    text,
		runes:   make([]rune, 0, len(text)),
		offsets: make([]int, 0, len(text)+1),
	}
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		in.runes = append(in.runes, r)
		in.offsets = append(in.offsets, i)
		i += size
	}
	in.offsets = append(in.offsets, len(text))
	return in
}

func (in *lineInput) length() int {
	return len(in.runes)
}

func (in *lineInput) span(start, end int) Span {
	return Span{Start: in.offsets[start], End: in.offsets[end]}
}

// runeIndex converts a byte offset to a rune index; ok is false when the
// offset does not start a rune.
func (in *lineInput) runeIndex(offset int) (int, bool) {
	i := sort.SearchInts(in.offsets, offset)
	if i >= len(in.offsets) || in.offsets[i] != offset {
		return 0, false
	}
	return i, true
}

type runeSpan struct {
	start, end int
}

// Match describes the rule that claimed the text at a cursor.
type Match struct {
	Context ContextID // context declaring the rule, possibly reached through includes
	Rule    int       // index of the rule within Context
	Span    Span      // byte range of the whole match; empty for zero-width matches

	rule   *rule
	whole  runeSpan
	groups []runeSpan // indexed by group number, start == -1 when unmatched
}

// Directive returns the stack transition the matched rule requests.
func (m *Match) Directive() Directive {
	return m.rule.directive
}

// Target returns the push/next target of the matched rule.
func (m *Match) Target() ContextID {
	return m.rule.target
}

func (m *Match) zeroWidth() bool {
	return m.whole.start == m.whole.end
}

// Dispatch finds the first rule of the active context, in declared order and
// descending into includes in place, whose pattern matches anchored at the
// byte offset. It returns nil without error when no rule matches, a
// *GrammarCycleError when resolving includes re-enters a context and an
// *OffsetError when offset does not start a rune of the line. The line end
// itself is a valid offset.
func (g *Grammar) Dispatch(line string, offset int, active ContextID) (*Match, error) {
	in := newLineInput(line)
	pos, ok := in.runeIndex(offset)
	if !ok {
		return nil, &OffsetError{Offset: offset, Len: len(line)}
	}
	return g.dispatch(in, pos, active)
}

func (g *Grammar) dispatch(in *lineInput, pos int, active ContextID) (*Match, error) {
	var path [8]ContextID
	return g.scan(in, pos, g.context(active).id, path[:0])
}

// scan walks one context's rules. path holds the contexts currently being
// resolved; entering one of them again would loop forever.
func (g *Grammar) scan(in *lineInput, pos int, id ContextID, path []ContextID) (*Match, error) {
	for _, visiting := range path {
		if visiting == id {
			return nil, g.cycleError(in, pos, append(path, id))
		}
	}
	path = append(path, id)

	ctx := g.contexts[id]
	for i := range ctx.rules {
		r := &ctx.rules[i]
		if r.kind == includeRule {
			m, err := g.scan(in, pos, r.target, path)
			if err != nil || m != nil {
				return m, err
			}
			continue
		}

		found, err := r.pattern.FindRunesMatchStartingAt(in.runes, pos)
		if err != nil {
			perr := &PatternError{Context: ctx.name, Rule: i, Err: err}
			g.logger.Debug("pattern evaluation failed",
				zap.String("context", ctx.name), zap.Int("rule", i), zap.Error(err))
			g.observer.DispatchFailed(perr)
			continue
		}
		if found == nil || found.Index != pos {
			continue
		}

		m := &Match{
			Context: id,
			Rule:    i,
			rule:    r,
			whole:   runeSpan{start: found.Index, end: found.Index + found.Length},
		}
		m.Span = in.span(m.whole.start, m.whole.end)
		if !r.whole {
			m.groups = make([]runeSpan, len(r.labels))
			for n := 1; n < len(r.labels); n++ {
				grp := found.GroupByNumber(n)
				if grp == nil || len(grp.Captures) == 0 {
					m.groups[n] = runeSpan{start: -1, end: -1}
					continue
				}
				m.groups[n] = runeSpan{start: grp.Index, end: grp.Index + grp.Length}
			}
		}
		return m, nil
	}
	return nil, nil
}

func (g *Grammar) cycleError(in *lineInput, pos int, path []ContextID) error {
	names := make([]string, len(path))
	for i, id := range path {
		names[i] = g.contexts[id].name
	}
	return &GrammarCycleError{Path: names, Offset: in.offsets[pos]}
}
