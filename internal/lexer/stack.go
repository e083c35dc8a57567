package lexer

import (
	"fmt"

	"github.com/tstword/mipsasm/internal/token"
)

// maxIncludeDepth bounds the include stack. The spec performs no cycle
// detection; this is the chosen backstop against runaway recursion.
const maxIncludeDepth = 64

// Stack is an ordered sequence of scanners, one per currently-open source
// file. `.include` pushes a new scanner; exhaustion of the top scanner
// pops it and resumes the one beneath.
type Stack struct {
	frames []*Lexer
}

// NewStack creates an include stack with a single initial scanner.
func NewStack(file string, src []byte) *Stack {
	return &Stack{frames: []*Lexer{New(file, src)}}
}

// Push opens a new scanner on top of the stack for `.include`.
func (s *Stack) Push(file string, src []byte) error {
	if len(s.frames) >= maxIncludeDepth {
		return fmt.Errorf("include depth exceeds %d, probable include cycle", maxIncludeDepth)
	}
	s.frames = append(s.frames, New(file, src))
	return nil
}

// CurrentFile reports the file backing the active scanner, or "" if the
// stack is empty.
func (s *Stack) CurrentFile() string {
	if len(s.frames) == 0 {
		return ""
	}
	return s.frames[len(s.frames)-1].file
}

// Empty reports whether every scanner has been exhausted and popped.
func (s *Stack) Empty() bool { return len(s.frames) == 0 }

// NextToken pulls the next token from the active scanner, popping
// exhausted scanners (None) until a real token is produced or the whole
// stack is empty.
func (s *Stack) NextToken() token.Token {
	for len(s.frames) > 0 {
		top := s.frames[len(s.frames)-1]
		tok := top.NextToken()
		if tok.Kind == token.None {
			s.frames = s.frames[:len(s.frames)-1]
			continue
		}
		return tok
	}
	return token.Token{Kind: token.None}
}
