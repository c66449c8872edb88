package tokenizer

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLabelHasScope(t *testing.T) {
	tests := []struct {
		label    string
		scope    string
		expected bool
	}{
		{"divert.target", "divert", true},
		{"divert.target", "divert.target", true},
		{"divert", "divert", true},
		{"diverted", "divert", false},
		{"divert", "divert.target", false},
		{"choice.bullets", "", true},
		{"logic.punctuation", "logic.punct", false},
	}

	for _, tt := range tests {
		t.Run(tt.label+"/"+tt.scope, func(t *testing.T) {
			assert.Equal(t, tt.expected, LabelHasScope(tt.label, tt.scope))
			assert.Equal(t, tt.expected, NewToken(tt.label, "x", Span{0, 1}).HasScope(tt.scope))
		})
	}
}

func TestTokenJSON(t *testing.T) {
	tok := NewToken("divert.target", "knot", Span{Start: 3, End: 7})
	data, err := json.Marshal(tok)
	require.NoError(t, err)
	assert.JSONEq(t, `{"label":"divert.target","text":"knot","span":[3,7]}`, string(data))
	assert.Equal(t, 4, tok.Span.Len())

	var span Span
	assert.Error(t, json.Unmarshal([]byte(`{"start":1}`), &span))
}

func TestJoin(t *testing.T) {
	assert.Equal(t, "", Join(nil))
	assert.Equal(t, "-> knot", Join([]Token{
		NewToken("divert.operator", "->", Span{0, 2}),
		NewToken("text", " ", Span{2, 3}),
		NewToken("divert.target", "knot", Span{3, 7}),
	}))
}
