package tokenizer

// tokenBuilder accumulates the tokens of one line. Every rune of the line
// passes through exactly one emit or fallback call, in order.
type tokenBuilder struct {
	in     *lineInput
	tokens []Token
	// open is set while the last token came from the default-token fallback
	// and may still absorb further fallback runes with the same label.
	open bool
}

func (b *tokenBuilder) emit(label string, start, end int) {
	if start >= end {
		return
	}
	span := b.in.span(start, end)
	b.tokens = append(b.tokens, NewToken(label, b.in.text[span.Start:span.End], span))
	b.open = false
}

// fallback consumes the single rune at pos. Consecutive fallback runes with
// the same label are coalesced into one token.
func (b *tokenBuilder) fallback(label string, pos int) {
	span := b.in.span(pos, pos+1)
	if b.open {
		last := &b.tokens[len(b.tokens)-1]
		if last.Label == label && last.Span.End == span.Start {
			last.Span.End = span.End
			last.Text = b.in.text[last.Span.Start:last.Span.End]
			return
		}
	}
	b.tokens = append(b.tokens, NewToken(label, b.in.text[span.Start:span.End], span))
	b.open = true
}

// mapCaptures turns a match into tokens. Labeled, non-empty captures become
// tokens in the order they occur; captures nested in an already emitted one,
// or reaching outside the match (lookaround), are skipped. Match text no
// labeled capture claims is emitted under the rule's leftover label, or
// under fallbackLabel when the rule has none, so no character is lost.
func (b *tokenBuilder) mapCaptures(m *Match, fallbackLabel string) {
	r := m.rule
	leftover := r.leftover
	if leftover == "" {
		leftover = fallbackLabel
	}

	if r.whole {
		label := r.labels[0]
		if label == "" {
			label = leftover
		}
		b.emit(label, m.whole.start, m.whole.end)
		return
	}

	cursor := m.whole.start
	for n := 1; n < len(m.groups); n++ {
		label := r.labels[n]
		grp := m.groups[n]
		if label == "" || grp.start < 0 || grp.start == grp.end {
			continue
		}
		if grp.start < cursor || grp.end > m.whole.end {
			continue
		}
		b.emit(leftover, cursor, grp.start)
		b.emit(label, grp.start, grp.end)
		cursor = grp.end
	}
	b.emit(leftover, cursor, m.whole.end)
}
