package lexer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tstword/mipsasm/internal/token"
)

func TestStackYieldsBaseFileTokensWithoutPush(t *testing.T) {
	s := NewStack("main.s", []byte("add"))
	tok := s.NextToken()
	require.Equal(t, token.Mnemonic, tok.Kind)
	assert.Equal(t, "main.s", s.CurrentFile())
}

func TestStackPushResumesOuterFrameOnExhaustion(t *testing.T) {
	s := NewStack("main.s", []byte("add\n"))
	require.NoError(t, s.Push("child.s", []byte("sub")))
	assert.Equal(t, "child.s", s.CurrentFile())

	first := s.NextToken() // sub, from child.s
	require.Equal(t, token.Mnemonic, first.Kind)
	assert.Equal(t, "sub", first.Str)

	// child.s is now exhausted; the stack pops back to main.s.
	second := s.NextToken()
	require.Equal(t, token.Mnemonic, second.Kind)
	assert.Equal(t, "add", second.Str)
	assert.Equal(t, "main.s", s.CurrentFile())
}

func TestStackNextTokenAfterFullExhaustionReturnsNone(t *testing.T) {
	s := NewStack("main.s", []byte("add"))
	_ = s.NextToken() // add
	tok := s.NextToken()
	assert.Equal(t, token.None, tok.Kind)
	assert.True(t, s.Empty())
}

func TestStackPushBeyondMaxDepthFails(t *testing.T) {
	s := NewStack("f0.s", []byte(""))
	for i := 0; i < maxIncludeDepth-1; i++ {
		require.NoError(t, s.Push("f.s", []byte("")))
	}
	err := s.Push("one.too.many.s", []byte(""))
	assert.Error(t, err)
}
