// Package lexer implements the scanner (C2): a restartable character-stream
// to token-stream converter with an include stack.
package lexer

import (
	"fmt"
	"strconv"

	"github.com/tstword/mipsasm/internal/token"
)

// Lexer scans one source buffer. Pushing and popping for .include is
// handled by Stack, not by Lexer itself.
type Lexer struct {
	file string
	src  []byte
	pos  int
	line int
	col  int
	ch   byte
}

// New creates a scanner over src, attributed to file in diagnostics.
func New(file string, src []byte) *Lexer {
	l := &Lexer{file: file, src: src, line: 1, col: 0}
	l.advance()
	return l
}

func (l *Lexer) advance() {
	if l.pos >= len(l.src) {
		l.ch = 0
	} else {
		l.ch = l.src[l.pos]
	}
	l.pos++
	l.col++
}

func (l *Lexer) peek() byte {
	if l.pos >= len(l.src) {
		return 0
	}
	return l.src[l.pos]
}

func (l *Lexer) here() token.Position {
	return token.Position{File: l.file, Line: l.line, Col: l.col}
}

func isIdentStart(ch byte) bool {
	return ch == '_' || ch == '$' || ch == '.' || (ch >= 'A' && ch <= 'Z') || (ch >= 'a' && ch <= 'z')
}

func isIdentCont(ch byte) bool {
	return ch == '_' || (ch >= 'A' && ch <= 'Z') || (ch >= 'a' && ch <= 'z') || (ch >= '0' && ch <= '9')
}

func isDigit(ch byte) bool { return ch >= '0' && ch <= '9' }

func isHex(ch byte) bool {
	return isDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

// NextToken returns the next token, advancing line/column bookkeeping. It
// is restartable after Invalid: the next call resumes from the character
// following the one that failed.
func (l *Lexer) NextToken() token.Token {
	for l.ch == ' ' || l.ch == '\t' {
		l.advance()
	}

	pos := l.here()

	switch {
	case l.ch == 0:
		return token.Token{Kind: token.None, Pos: pos}

	case l.ch == '\n':
		l.advance()
		l.line++
		l.col = 0
		return token.Token{Kind: token.Eol, Pos: pos, Str: "\n"}

	case l.ch == '#':
		for l.ch != '\n' && l.ch != 0 {
			l.advance()
		}
		return l.NextToken()

	case l.ch == ':':
		l.advance()
		return token.Token{Kind: token.Colon, Pos: pos, Str: ":"}

	case l.ch == ',':
		l.advance()
		return token.Token{Kind: token.Comma, Pos: pos, Str: ","}

	case l.ch == '(':
		l.advance()
		return token.Token{Kind: token.LParen, Pos: pos, Str: "("}

	case l.ch == ')':
		l.advance()
		return token.Token{Kind: token.RParen, Pos: pos, Str: ")"}

	case l.ch == '"':
		return l.scanString(pos)

	case l.ch == '\'':
		return l.scanCharLiteral(pos)

	case l.ch == '-' || isDigit(l.ch):
		return l.scanNumber(pos)

	case isIdentStart(l.ch):
		return l.scanIdentifier(pos)

	default:
		bad := l.ch
		l.advance()
		return token.Token{Kind: token.Invalid, Pos: pos, Str: fmt.Sprintf("unexpected character %q", bad)}
	}
}

func (l *Lexer) scanIdentifier(pos token.Position) token.Token {
	start := l.pos - 1
	l.advance()
	for isIdentCont(l.ch) {
		l.advance()
	}
	text := string(l.src[start : l.pos-1])

	if entry, ok := token.Lookup(text); ok {
		switch entry.Kind {
		case token.Mnemonic:
			return token.Token{Kind: token.Mnemonic, Pos: pos, Str: text, Entry: entry}
		case token.Directive:
			return token.Token{Kind: token.Directive, Pos: pos, Str: text, Entry: entry}
		case token.Register:
			return token.Token{Kind: token.Register, Pos: pos, Str: text, Reg: entry.Reg}
		}
	}
	return token.Token{Kind: token.Identifier, Pos: pos, Str: text}
}

func (l *Lexer) scanNumber(pos token.Position) token.Token {
	start := l.pos - 1
	neg := false
	if l.ch == '-' {
		neg = true
		l.advance()
		if !isDigit(l.ch) {
			return token.Token{Kind: token.Invalid, Pos: pos, Str: "expected digit after '-'"}
		}
	}

	var digits string
	base := 10
	if l.ch == '0' && (l.peek() == 'x' || l.peek() == 'X') {
		l.advance()
		l.advance()
		ds := l.pos - 1
		for isHex(l.ch) {
			l.advance()
		}
		digits = string(l.src[ds : l.pos-1])
		base = 16
		if digits == "" {
			return token.Token{Kind: token.Invalid, Pos: pos, Str: "malformed hex literal"}
		}
	} else if l.ch == '0' {
		ds := l.pos - 1
		for isDigit(l.ch) {
			l.advance()
		}
		digits = string(l.src[ds : l.pos-1])
		base = 10
	} else {
		ds := l.pos - 1
		for isDigit(l.ch) {
			l.advance()
		}
		digits = string(l.src[ds : l.pos-1])
		base = 10
	}
	_ = start

	uval, err := strconv.ParseUint(digits, base, 64)
	if err != nil {
		return token.Token{Kind: token.Invalid, Pos: pos, Str: fmt.Sprintf("integer literal %q too wide", digits)}
	}

	if neg {
		if uval > 1<<31 {
			return token.Token{Kind: token.Invalid, Pos: pos, Str: fmt.Sprintf("integer literal -%s overflows 32 bits", digits)}
		}
		return token.Token{Kind: token.Integer, Pos: pos, Int: uint32(-int64(uval))}
	}
	if uval > 0xFFFFFFFF {
		return token.Token{Kind: token.Invalid, Pos: pos, Str: fmt.Sprintf("integer literal %q overflows 32 bits", digits)}
	}
	return token.Token{Kind: token.Integer, Pos: pos, Int: uint32(uval)}
}

var escapeValues = map[byte]byte{
	'a': 7, 'b': 8, 'f': 12, 'n': 10, 'r': 13, 't': 9, 'v': 11,
	'\\': '\\', '\'': '\'', '"': '"', '?': '?', '0': 0,
}

func (l *Lexer) scanCharLiteral(pos token.Position) token.Token {
	l.advance() // consume opening '
	var val byte
	if l.ch == '\\' {
		l.advance()
		ev, ok := escapeValues[l.ch]
		if !ok {
			return token.Token{Kind: token.Invalid, Pos: pos, Str: fmt.Sprintf("bad escape '\\%c'", l.ch)}
		}
		val = ev
		l.advance()
	} else if l.ch == 0 || l.ch == '\'' {
		return token.Token{Kind: token.Invalid, Pos: pos, Str: "empty character literal"}
	} else {
		val = l.ch
		l.advance()
	}
	if l.ch != '\'' {
		return token.Token{Kind: token.Invalid, Pos: pos, Str: "non-terminated character literal"}
	}
	l.advance()
	return token.Token{Kind: token.Integer, Pos: pos, Int: uint32(val)}
}

func (l *Lexer) scanString(pos token.Position) token.Token {
	l.advance() // consume opening quote
	buf := make([]byte, 0, 16)
	for {
		if l.ch == 0 || l.ch == '\n' {
			return token.Token{Kind: token.Invalid, Pos: pos, Str: "non-terminated string literal"}
		}
		if l.ch == '"' {
			l.advance()
			return token.Token{Kind: token.String, Pos: pos, Str: string(buf)}
		}
		if l.ch == '\\' {
			l.advance()
			ev, ok := escapeValues[l.ch]
			if !ok {
				return token.Token{Kind: token.Invalid, Pos: pos, Str: fmt.Sprintf("bad escape '\\%c'", l.ch)}
			}
			buf = append(buf, ev)
			l.advance()
			continue
		}
		buf = append(buf, l.ch)
		l.advance()
	}
}
