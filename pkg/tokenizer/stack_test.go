package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextStack(t *testing.T) {
	var zero ContextStack
	assert.True(t, zero.Equal(RootStack()))
	assert.True(t, NewContextStack().Equal(RootStack()))
	assert.Equal(t, 1, zero.Depth())
	assert.Equal(t, RootContext, zero.Top())
	assert.Equal(t, "[0]", zero.String())

	s := RootStack().Push(3).Push(5)
	assert.Equal(t, 3, s.Depth())
	assert.Equal(t, ContextID(5), s.Top())
	assert.Equal(t, []ContextID{0, 3, 5}, s.IDs())
	assert.Equal(t, "[0 3 5]", s.String())
	assert.True(t, s.Equal(NewContextStack(0, 3, 5)))
	assert.False(t, s.Equal(NewContextStack(0, 3)))

	assert.Equal(t, "[0 3]", s.Pop().String())
	assert.Equal(t, "[0 3 7]", s.Replace(7).String())
	assert.Equal(t, "[0]", RootStack().Pop().String())
	assert.Equal(t, "[4]", RootStack().Replace(4).String())
}

func TestContextStackIsImmutable(t *testing.T) {
	base := RootStack().Push(1)
	a := base.Push(2)
	b := base.Push(3)
	assert.Equal(t, "[0 1]", base.String())
	assert.Equal(t, "[0 1 2]", a.String())
	assert.Equal(t, "[0 1 3]", b.String())

	ids := a.IDs()
	ids[0] = 9
	assert.Equal(t, "[0 1 2]", a.String())

	src := []ContextID{0, 4}
	c := NewContextStack(src...)
	src[1] = 8
	assert.Equal(t, "[0 4]", c.String())

	_ = a.Replace(6)
	_ = a.Pop()
	assert.Equal(t, "[0 1 2]", a.String())
}

func TestContextStackApply(t *testing.T) {
	s := NewContextStack(0, 2)
	tests := []struct {
		directive Directive
		expected  string
	}{
		{DirectiveNone, "[0 2]"},
		{DirectivePush, "[0 2 5]"},
		{DirectivePop, "[0]"},
		{DirectiveNext, "[0 5]"},
	}
	for _, tt := range tests {
		t.Run(tt.directive.String(), func(t *testing.T) {
			assert.Equal(t, tt.expected, s.Apply(tt.directive, 5).String())
		})
	}
}
