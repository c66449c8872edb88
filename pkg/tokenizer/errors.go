package tokenizer

import (
	"fmt"
	"strings"
)

// GrammarError reports a rule table that cannot be compiled. Compilation stops
// at the first GrammarError and no part of the grammar is usable.
type GrammarError struct {
	Context string // context holding the offending rule, empty for table-level problems
	Rule    int    // index of the offending rule, -1 for context-level problems
	Reason  string
	Err     error // underlying cause, e.g. a pattern syntax error
}

func (e *GrammarError) Error() string {
	var sb strings.Builder
	sb.WriteString("grammar error")
	if e.Context != "" {
		fmt.Fprintf(&sb, " in context '%s'", e.Context)
		if e.Rule >= 0 {
			fmt.Fprintf(&sb, " rule %d", e.Rule)
		}
	}
	sb.WriteString(": ")
	sb.WriteString(e.Reason)
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

func (e *GrammarError) Unwrap() error {
	return e.Err
}

// GrammarCycleError is raised when a single dispatch attempt re-enters a
// context that is already being resolved through includes at the same offset.
// The tokenizer treats it as "no match" and falls back to the default token.
type GrammarCycleError struct {
	Path   []string // include path, ending with the re-entered context
	Offset int      // byte offset of the dispatch attempt
}

func (e *GrammarCycleError) Error() string {
	return fmt.Sprintf("include cycle at offset %d: %s", e.Offset, strings.Join(e.Path, " -> "))
}

// PatternError wraps a failure while evaluating a single rule's pattern,
// typically a match timeout. The rule is skipped.
type PatternError struct {
	Context string
	Rule    int
	Err     error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("pattern of rule %d in context '%s' failed: %v", e.Rule, e.Context, e.Err)
}

func (e *PatternError) Unwrap() error {
	return e.Err
}

// OffsetError is returned by Dispatch for a byte offset that is not the start
// of a rune in the line, or lies past its end.
type OffsetError struct {
	Offset int
	Len    int // byte length of the line
}

func (e *OffsetError) Error() string {
	return fmt.Sprintf("offset %d is not a rune boundary of a %d byte line", e.Offset, e.Len)
}
