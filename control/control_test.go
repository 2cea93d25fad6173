package control

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnvironment_Lookup(t *testing.T) {
	root := NewPrimitiveEnvironment()
	child := NewChild(1, root)
	child.Bind("x", Int(5))

	assert.Equal(t, Int(5), child.Lookup("x"))

	grandchild := NewChild(2, child)
	assert.Equal(t, Int(5), grandchild.Lookup("x"), "lookup must recurse into parent chain")

	free := grandchild.Lookup("Print")
	assert.Equal(t, KindId, free.Kind)
	assert.Equal(t, "Print", free.Str)
}

func TestEnvironment_BindAfterRemovedPanics(t *testing.T) {
	e := NewPrimitiveEnvironment()
	e.Removed = true
	assert.Panics(t, func() { e.Bind("x", Int(1)) })
}

func TestPrim_currying(t *testing.T) {
	p := NewPrim("Conc", 2)
	assert.False(t, p.Ready())
	p2 := p.WithArg(Str("ab"))
	assert.False(t, p2.Ready())
	p3 := p2.WithArg(Str("cd"))
	assert.True(t, p3.Ready())
	assert.Len(t, p3.PrimArgs, 2)
	assert.Len(t, p.PrimArgs, 0, "WithArg must not mutate the receiver")
}

func TestSymbol_Lexeme(t *testing.T) {
	assert.Equal(t, "5", Int(5).Lexeme())
	assert.Equal(t, "'hi'", Str("hi").Lexeme())
	assert.Equal(t, "true", Bool(true).Lexeme())
	assert.Equal(t, "false", Bool(false).Lexeme())
	assert.Equal(t, "dummy", Dummy().Lexeme())
}
