package document

import (
	"unicode/utf8"

	"github.com/spicery/ink-tokenizer/pkg/tokenizer"
	"golang.org/x/text/width"
)

// Position locates a byte offset of a line in the units different hosts
// count in.
type Position struct {
	Line   int `json:"line"`   // zero-based line index
	Byte   int `json:"byte"`   // byte offset within the line
	Rune   int `json:"rune"`   // rune offset within the line
	Column int `json:"column"` // display column, wide runes count twice
}

// Position converts a byte offset on line i. Offsets past the end of the line
// are clamped.
func (d *Document) Position(i, offset int) Position {
	text := d.lines[i].Text
	if offset > len(text) {
		offset = len(text)
	}
	prefix := text[:offset]
	return Position{
		Line:   i,
		Byte:   offset,
		Rune:   utf8.RuneCountInString(prefix),
		Column: DisplayWidth(prefix),
	}
}

// DisplayWidth returns the number of terminal cells s occupies.
func DisplayWidth(s string) int {
	n := 0
	for _, r := range s {
		n += runeWidth(r)
	}
	return n
}

func runeWidth(r rune) int {
	switch width.LookupRune(r).Kind() {
	case width.EastAsianWide, width.EastAsianFullwidth:
		return 2
	}
	return 1
}

// Located is a token together with where it sits in the document.
type Located struct {
	Token tokenizer.Token `json:"token"`
	Start Position        `json:"start"`
	End   Position        `json:"end"`
}

// Find returns every token of the document for which keep returns true.
func (d *Document) Find(keep func(tokenizer.Token) bool) []Located {
	var out []Located
	for i, l := range d.lines {
		for _, tok := range l.Tokens {
			if keep(tok) {
				out = append(out, Located{
					Token: tok,
					Start: d.Position(i, tok.Span.Start),
					End:   d.Position(i, tok.Span.End),
				})
			}
		}
	}
	return out
}

// FindLabel returns the tokens labeled exactly label.
func (d *Document) FindLabel(label string) []Located {
	return d.Find(func(tok tokenizer.Token) bool {
		return tok.Label == label
	})
}
