// Package parser implements the line-oriented recursive-descent parser
// (C4) and its operand validator (C5): one ast.Line per call, built
// directly off the token stream rather than a whole-program token slice.
package parser

import (
	"github.com/tstword/mipsasm/internal/ast"
	"github.com/tstword/mipsasm/internal/diag"
	"github.com/tstword/mipsasm/internal/lexer"
	"github.com/tstword/mipsasm/internal/token"
)

// Parser turns the token stream from a shared *lexer.Stack into one
// ast.Line at a time. The driver (C7) owns the Stack itself so it can
// push a new scanner frame when Next returns a `.include` line.
type Parser struct {
	stack *lexer.Stack
	diags *diag.List
	cur   token.Token
}

// New creates a Parser over stack, reporting diagnostics into diags.
func New(stack *lexer.Stack, diags *diag.List) *Parser {
	p := &Parser{stack: stack, diags: diags}
	p.advance()
	return p
}

func (p *Parser) advance() { p.cur = p.stack.NextToken() }

// skipToEol discards the remainder of a bad line up to (but not past) its
// Eol token. It never reads beyond that boundary: the token following Eol
// may belong to a `.include`d file the driver hasn't pushed yet, so the
// read is left for the next Next() call to perform (see Next).
func (p *Parser) skipToEol() {
	for p.cur.Kind != token.Eol && p.cur.Kind != token.None {
		p.advance()
	}
}

// Next parses and returns the next source line. The second return is
// false once the include stack is fully exhausted.
func (p *Parser) Next() (*ast.Line, bool) {
	for p.cur.Kind == token.Eol {
		p.advance()
	}
	if p.cur.Kind == token.None {
		return nil, false
	}

	line := &ast.Line{Pos: p.cur.Pos}

	if p.cur.Kind == token.Identifier {
		name, namePos := p.cur.Str, p.cur.Pos
		p.advance()
		if p.cur.Kind != token.Colon {
			p.diags.Add(diag.New(namePos, diag.Syntactic, "unexpected identifier %q", name))
			p.skipToEol()
			return line, true
		}
		line.HasLabel = true
		line.Label = name
		line.LabelPos = namePos
		p.advance()
	}

	if p.cur.Kind == token.Eol || p.cur.Kind == token.None {
		return line, true
	}

	if p.cur.Kind != token.Mnemonic && p.cur.Kind != token.Directive {
		p.diags.Add(diag.New(p.cur.Pos, diag.Syntactic, "expected instruction or directive, found %s", p.cur))
		p.skipToEol()
		return line, true
	}

	line.Entry = p.cur.Entry
	p.advance()
	line.Operands = p.parseOperands(line.Entry)

	switch p.cur.Kind {
	case token.Eol, token.None:
		// Leave the token in place. Consuming it now would read past this
		// line's boundary: for a `.include` line that means reading the
		// parent's next token before the driver has pushed the child
		// frame (P4). The leading skip-Eol loop at the top of the next
		// Next() call performs this read instead, once the driver has
		// had the chance to push a new frame in between.
	default:
		p.diags.Add(diag.New(p.cur.Pos, diag.Syntactic, "unexpected trailing token %s", p.cur))
		p.skipToEol()
	}
	return line, true
}

// parseOperands validates and consumes the operand list against entry's
// declared format triple (C5), honoring Repeat and Optional slots.
func (p *Parser) parseOperands(entry *token.ReservedEntry) []ast.Operand {
	format := entry.Op.Format
	var operands []ast.Operand

	for slot := 0; slot < len(format); slot++ {
		allowed := format[slot]
		if allowed == token.ClassNone {
			break
		}
		bare := allowed &^ (token.ClassRepeat | token.ClassOptional)

		if p.cur.Kind == token.Eol || p.cur.Kind == token.None {
			if !allowed.Has(token.ClassOptional) {
				p.diags.Add(diag.New(p.cur.Pos, diag.Syntactic, "%s: missing operand", entry.Name))
			}
			return operands
		}

		op, ok := p.parseOperand(bare)
		if !ok {
			p.skipToEol()
			return operands
		}
		operands = append(operands, op)

		if allowed.Has(token.ClassRepeat) {
			for p.cur.Kind == token.Comma {
				p.advance()
				op, ok := p.parseOperand(bare)
				if !ok {
					p.skipToEol()
					return operands
				}
				operands = append(operands, op)
			}
			continue
		}

		if slot < len(format)-1 && format[slot+1] != token.ClassNone {
			if p.cur.Kind != token.Comma {
				if !format[slot+1].Has(token.ClassOptional) {
					p.diags.Add(diag.New(p.cur.Pos, diag.Syntactic, "%s: expected ','", entry.Name))
				}
				return operands
			}
			p.advance()
		}
	}

	if p.cur.Kind != token.Eol && p.cur.Kind != token.None {
		p.diags.Add(diag.New(p.cur.Pos, diag.Syntactic, "%s: too many operands", entry.Name))
	}
	return operands
}

// parseOperand consumes one operand token (or imm(reg)/(reg) address
// form) and validates it against the permitted classes for its slot.
func (p *Parser) parseOperand(allowed token.OperandClass) (ast.Operand, bool) {
	switch p.cur.Kind {
	case token.Register:
		if !allowed.Has(token.ClassRegister) {
			return p.operandError(allowed)
		}
		op := ast.Operand{Kind: ast.OperandRegister, Pos: p.cur.Pos, Reg: p.cur.Reg}
		p.advance()
		return op, true

	case token.Integer:
		val, pos := p.cur.Int, p.cur.Pos
		p.advance()
		if p.cur.Kind == token.LParen {
			return p.parseAddress(pos, val, allowed)
		}
		if !allowed.Has(token.ClassImmediate) {
			p.diags.Add(diag.New(pos, diag.Syntactic, "immediate operand not permitted here"))
			return ast.Operand{}, false
		}
		return ast.Operand{Kind: ast.OperandImmediate, Pos: pos, Imm: val}, true

	case token.LParen:
		return p.parseAddress(p.cur.Pos, 0, allowed)

	case token.Identifier:
		if !allowed.Has(token.ClassLabel) {
			return p.operandError(allowed)
		}
		op := ast.Operand{Kind: ast.OperandLabel, Pos: p.cur.Pos, Name: p.cur.Str}
		p.advance()
		return op, true

	case token.String:
		if !allowed.Has(token.ClassString) {
			return p.operandError(allowed)
		}
		op := ast.Operand{Kind: ast.OperandString, Pos: p.cur.Pos, Name: p.cur.Str}
		p.advance()
		return op, true
	}
	return p.operandError(allowed)
}

// parseAddress consumes the '(' reg ')' suffix of an imm(reg) (or bare
// (reg)) address operand, pos/disp having already been read by the
// caller.
func (p *Parser) parseAddress(pos token.Position, disp uint32, allowed token.OperandClass) (ast.Operand, bool) {
	p.advance() // consume '('
	if p.cur.Kind != token.Register {
		p.diags.Add(diag.New(p.cur.Pos, diag.Syntactic, "expected register inside '(' ')'"))
		return ast.Operand{}, false
	}
	base := p.cur.Reg
	p.advance()
	if p.cur.Kind != token.RParen {
		p.diags.Add(diag.New(p.cur.Pos, diag.Syntactic, "expected ')'"))
		return ast.Operand{}, false
	}
	p.advance()
	if !allowed.Has(token.ClassAddress) {
		p.diags.Add(diag.New(pos, diag.Syntactic, "address operand not permitted here"))
		return ast.Operand{}, false
	}
	return ast.Operand{Kind: ast.OperandAddress, Pos: pos, Reg: base, Imm: disp}, true
}

func (p *Parser) operandError(allowed token.OperandClass) (ast.Operand, bool) {
	p.diags.Add(diag.New(p.cur.Pos, diag.Syntactic, "unexpected token %s, wanted operand", p.cur))
	return ast.Operand{}, false
}
