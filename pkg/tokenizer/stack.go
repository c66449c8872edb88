package tokenizer

import (
	"strconv"
	"strings"
)

// ContextStack is the ordered sequence of active contexts, bottom first.
// It is an immutable value: every transition returns a new stack, so a stack
// handed out for one line can be kept and reused as the entering state of the
// next line. The zero value is the root stack.
type ContextStack struct {
	ids []ContextID
}

// RootStack returns the single-entry stack holding the root context.
func RootStack() ContextStack {
	return ContextStack{}
}

// NewContextStack builds a stack from bottom-to-top context ids. An empty
// argument list yields the root stack.
func NewContextStack(ids ...ContextID) ContextStack {
	if len(ids) == 0 {
		return RootStack()
	}
	return ContextStack{ids: append([]ContextID(nil), ids...)}
}

func (s ContextStack) frames() []ContextID {
	if len(s.ids) == 0 {
		return []ContextID{RootContext}
	}
	return s.ids
}

// Top returns the active context.
func (s ContextStack) Top() ContextID {
	f := s.frames()
	return f[len(f)-1]
}

// Depth returns the number of entries; it is never less than one.
func (s ContextStack) Depth() int {
	return len(s.frames())
}

// IDs returns a copy of the entries, bottom first.
func (s ContextStack) IDs() []ContextID {
	return append([]ContextID(nil), s.frames()...)
}

// Push returns the stack with id appended on top.
func (s ContextStack) Push(id ContextID) ContextStack {
	f := s.frames()
	ids := make([]ContextID, len(f)+1)
	copy(ids, f)
	ids[len(f)] = id
	return ContextStack{ids: ids}
}

// Pop returns the stack without its top entry. Popping a single-entry stack
// is a no-op.
func (s ContextStack) Pop() ContextStack {
	f := s.frames()
	if len(f) <= 1 {
		return s
	}
	return ContextStack{ids: append([]ContextID(nil), f[:len(f)-1]...)}
}

// Replace returns the stack with its top entry replaced by id.
func (s ContextStack) Replace(id ContextID) ContextStack {
	f := s.frames()
	ids := append([]ContextID(nil), f...)
	ids[len(ids)-1] = id
	return ContextStack{ids: ids}
}

// Apply performs a directive transition.
func (s ContextStack) Apply(d Directive, target ContextID) ContextStack {
	switch d {
	case DirectivePush:
		return s.Push(target)
	case DirectivePop:
		return s.Pop()
	case DirectiveNext:
		return s.Replace(target)
	}
	return s
}

// Equal reports whether both stacks hold the same entries.
func (s ContextStack) Equal(other ContextStack) bool {
	a, b := s.frames(), other.frames()
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (s ContextStack) String() string {
	f := s.frames()
	parts := make([]string, len(f))
	for i, id := range f {
		parts[i] = strconv.Itoa(int(id))
	}
	return "[" + strings.Join(parts, " ") + "]"
}
