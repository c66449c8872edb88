package tokenizer

import (
	"encoding/json"
	"strings"
)

// Span is a half-open byte range [Start, End) within a line.
type Span struct {
	Start int
	End   int
}

// MarshalJSON implements custom JSON marshaling for Span.
func (s Span) MarshalJSON() ([]byte, error) {
	arr := [2]int{s.Start, s.End}
	return json.Marshal(arr)
}

// UnmarshalJSON implements custom JSON unmarshaling for Span.
func (s *Span) UnmarshalJSON(data []byte) error {
	var arr [2]int
	if err := json.Unmarshal(data, &arr); err != nil {
		return err
	}
	s.Start = arr[0]
	s.End = arr[1]
	return nil
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int {
	return s.End - s.Start
}

// Token is a labeled span of a single line.
type Token struct {
	// Label is a dot-segmented scope such as "divert.target". Consumers depend
	// on these strings verbatim.
	Label string `json:"label"`
	Text  string `json:"text"`
	Span  Span   `json:"span"`
}

// NewToken creates a new token with the basic required fields.
func NewToken(label, text string, span Span) Token {
	return Token{
		Label: label,
		Text:  text,
		Span:  span,
	}
}

// HasScope reports whether the token's label is scope or lies beneath it,
// segment-wise: "divert" covers "divert.target" but not "diverted".
func (t Token) HasScope(scope string) bool {
	return LabelHasScope(t.Label, scope)
}

// LabelHasScope reports whether label equals scope or starts with scope
// followed by a dot.
func LabelHasScope(label, scope string) bool {
	if scope == "" {
		return true
	}
	if !strings.HasPrefix(label, scope) {
		return false
	}
	return len(label) == len(scope) || label[len(scope)] == '.'
}

// Join concatenates the token texts, which for any tokenizer result
// reproduces the tokenized line.
func Join(tokens []Token) string {
	var sb strings.Builder
	for _, tok := range tokens {
		sb.WriteString(tok.Text)
	}
	return sb.String()
}
