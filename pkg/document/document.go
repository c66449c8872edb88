// Package document drives the line tokenizer over whole texts. It keeps the
// exit stack of every line so an edit only re-tokenizes from the first
// changed line until the stacks agree again with the ones computed before.
package document

import (
	"strings"

	"github.com/pingcap/errors"
	"github.com/spicery/ink-tokenizer/pkg/metrics"
	"github.com/spicery/ink-tokenizer/pkg/tokenizer"
)

// Line is one tokenized line.
type Line struct {
	Text   string
	Tokens []tokenizer.Token
	State  tokenizer.ContextStack // stack to enter the next line with
}

// Document is a text split into tokenized lines. It is not safe for
// concurrent mutation; distinct documents may share a Grammar freely.
type Document struct {
	grammar *tokenizer.Grammar
	lines   []Line
}

// New splits text into lines and tokenizes all of them.
func New(g *tokenizer.Grammar, text string) *Document {
	d := &Document{grammar: g}
	for _, s := range SplitLines(text) {
		d.lines = append(d.lines, Line{Text: s})
	}
	d.retokenize(0, len(d.lines))
	return d
}

// SplitLines splits on "\n" and drops a trailing "\r" from each line. An
// empty text is a single empty line.
func SplitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// Grammar returns the grammar the document is tokenized with.
func (d *Document) Grammar() *tokenizer.Grammar {
	return d.grammar
}

// Len returns the number of lines.
func (d *Document) Len() int {
	return len(d.lines)
}

// Line returns line i.
func (d *Document) Line(i int) Line {
	return d.lines[i]
}

// Tokens returns the tokens of line i.
func (d *Document) Tokens(i int) []tokenizer.Token {
	return d.lines[i].Tokens
}

// State returns the exit stack of line i.
func (d *Document) State(i int) tokenizer.ContextStack {
	return d.lines[i].State
}

// Text joins the lines back with "\n".
func (d *Document) Text() string {
	texts := make([]string, len(d.lines))
	for i, l := range d.lines {
		texts[i] = l.Text
	}
	return strings.Join(texts, "\n")
}

// Replace substitutes lines [from, to) with lines and re-tokenizes what the
// edit can affect. It returns the number of lines that were re-tokenized.
func (d *Document) Replace(from, to int, lines []string) (int, error) {
	if from < 0 || to < from || to > len(d.lines) {
		return 0, errors.Errorf("invalid line range [%d, %d) for a document of %d lines", from, to, len(d.lines))
	}

	updated := make([]Line, 0, len(d.lines)-(to-from)+len(lines))
	updated = append(updated, d.lines[:from]...)
	for _, s := range lines {
		updated = append(updated, Line{Text: s})
	}
	stable := len(updated)
	updated = append(updated, d.lines[to:]...)
	d.lines = updated

	n := d.retokenize(from, stable)
	metrics.RetokenizedLinesHistogram.Observe(float64(n))
	return n, nil
}

func (d *Document) entering(i int) tokenizer.ContextStack {
	if i == 0 {
		return d.grammar.InitialStack()
	}
	return d.lines[i-1].State
}

// retokenize tokenizes from line from onwards. Lines from index stable on
// still hold results computed before the edit; once such a line exits with
// its previous stack, every following line is unaffected.
func (d *Document) retokenize(from, stable int) int {
	state := d.entering(from)
	n := 0
	for i := from; i < len(d.lines); i++ {
		res := d.grammar.TokenizeLine(d.lines[i].Text, state)
		n++
		converged := i >= stable && res.State.Equal(d.lines[i].State)
		d.lines[i].Tokens = res.Tokens
		d.lines[i].State = res.State
		if converged {
			break
		}
		state = res.State
	}
	return n
}
