// Package highlight maps token labels to terminal colors.
package highlight

import (
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/pingcap/errors"
	"github.com/spicery/ink-tokenizer/pkg/document"
	"github.com/spicery/ink-tokenizer/pkg/tokenizer"
)

// Theme maps label scopes to colors. A label takes the style of its longest
// scope prefix: "divert.target" prefers a "divert.target" entry over "divert".
type Theme struct {
	styles map[string]*color.Color
}

// NewTheme builds a theme from scope attributes.
func NewTheme(styles map[string][]color.Attribute) *Theme {
	t := &Theme{styles: make(map[string]*color.Color, len(styles))}
	for scope, attrs := range styles {
		t.Set(scope, attrs...)
	}
	return t
}

// DefaultTheme returns the built-in ink theme.
func DefaultTheme() *Theme {
	return NewTheme(map[string][]color.Attribute{
		"comment":                      {color.FgHiBlack},
		"punctuation.definition":       {color.FgHiBlack},
		"escape":                       {color.FgRed},
		"todo.TODO":                    {color.FgBlack, color.BgYellow},
		"flow.knot.declaration":        {color.FgMagenta},
		"flow.knot.declaration.name":   {color.FgHiMagenta, color.Bold},
		"flow.stitch.declaration":      {color.FgMagenta},
		"flow.stitch.declaration.name": {color.FgHiMagenta},
		"choice.bullets":               {color.FgHiYellow, color.Bold},
		"choice.label.name":            {color.FgCyan},
		"choice.weaveBracket":          {color.FgHiBlack},
		"gather.bullets":               {color.FgHiYellow, color.Bold},
		"gather.label.name":            {color.FgCyan},
		"divert":                       {color.FgCyan},
		"divert.target":                {color.FgHiCyan, color.Underline},
		"divert.to-special":            {color.FgRed},
		"divert.to-tunnel":             {color.FgHiCyan},
		"logic":                        {color.FgGreen},
		"conditional":                  {color.FgGreen},
		"var-decl.keyword":             {color.FgBlue, color.Bold},
		"var-decl.name":                {color.FgHiBlue},
		"list-decl.keyword":            {color.FgBlue, color.Bold},
		"list-decl.name":               {color.FgHiBlue},
		"include.keyword":              {color.FgBlue, color.Bold},
		"external.keyword":             {color.FgBlue, color.Bold},
		"tag":                          {color.FgHiBlack},
		"glue":                         {color.FgHiRed},
	})
}

// Set assigns attributes to a scope, replacing any previous entry.
func (t *Theme) Set(scope string, attrs ...color.Attribute) {
	t.styles[scope] = color.New(attrs...)
}

// ForceColor enables escape sequences even when the output is not a terminal.
func (t *Theme) ForceColor() {
	for _, c := range t.styles {
		c.EnableColor()
	}
}

// Scopes returns the configured scopes, sorted.
func (t *Theme) Scopes() []string {
	scopes := make([]string, 0, len(t.styles))
	for scope := range t.styles {
		scopes = append(scopes, scope)
	}
	sort.Strings(scopes)
	return scopes
}

// Lookup returns the color for a label, or nil when no scope covers it.
func (t *Theme) Lookup(label string) *color.Color {
	for scope := label; scope != ""; {
		if c, ok := t.styles[scope]; ok {
			return c
		}
		i := strings.LastIndexByte(scope, '.')
		if i < 0 {
			break
		}
		scope = scope[:i]
	}
	return nil
}

// RenderLine writes the tokens of one line followed by a newline.
func RenderLine(w io.Writer, tokens []tokenizer.Token, t *Theme) error {
	for _, tok := range tokens {
		var err error
		if c := t.Lookup(tok.Label); c != nil {
			_, err = io.WriteString(w, c.Sprint(tok.Text))
		} else {
			_, err = io.WriteString(w, tok.Text)
		}
		if err != nil {
			return errors.Trace(err)
		}
	}
	_, err := io.WriteString(w, "\n")
	return errors.Trace(err)
}

// Render writes the whole document.
func Render(w io.Writer, doc *document.Document, t *Theme) error {
	for i := 0; i < doc.Len(); i++ {
		if err := RenderLine(w, doc.Tokens(i), t); err != nil {
			return err
		}
	}
	return nil
}

var attributeNames = map[string]color.Attribute{
	"bold":       color.Bold,
	"faint":      color.Faint,
	"italic":     color.Italic,
	"underline":  color.Underline,
	"reverse":    color.ReverseVideo,
	"black":      color.FgBlack,
	"red":        color.FgRed,
	"green":      color.FgGreen,
	"yellow":     color.FgYellow,
	"blue":       color.FgBlue,
	"magenta":    color.FgMagenta,
	"cyan":       color.FgCyan,
	"white":      color.FgWhite,
	"hi-black":   color.FgHiBlack,
	"hi-red":     color.FgHiRed,
	"hi-green":   color.FgHiGreen,
	"hi-yellow":  color.FgHiYellow,
	"hi-blue":    color.FgHiBlue,
	"hi-magenta": color.FgHiMagenta,
	"hi-cyan":    color.FgHiCyan,
	"hi-white":   color.FgHiWhite,
	"bg-black":   color.BgBlack,
	"bg-red":     color.BgRed,
	"bg-green":   color.BgGreen,
	"bg-yellow":  color.BgYellow,
	"bg-blue":    color.BgBlue,
	"bg-magenta": color.BgMagenta,
	"bg-cyan":    color.BgCyan,
	"bg-white":   color.BgWhite,
}

// ParseAttributes converts attribute names such as "hi-cyan" or "bold".
func ParseAttributes(names []string) ([]color.Attribute, error) {
	attrs := make([]color.Attribute, 0, len(names))
	for _, name := range names {
		a, ok := attributeNames[strings.ToLower(strings.TrimSpace(name))]
		if !ok {
			return nil, errors.Errorf("unknown color attribute '%s'", name)
		}
		attrs = append(attrs, a)
	}
	return attrs, nil
}

// Apply overrides theme entries from a scope -> attribute names table.
func (t *Theme) Apply(overrides map[string][]string) error {
	for scope, names := range overrides {
		attrs, err := ParseAttributes(names)
		if err != nil {
			return errors.Annotatef(err, "theme scope '%s'", scope)
		}
		t.Set(scope, attrs...)
	}
	return nil
}
