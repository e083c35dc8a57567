// Package ast holds the operand and line record types shared between the
// parser (C4/C5) and the encoder (C6).
package ast

import "github.com/tstword/mipsasm/internal/token"

// OperandKind is the discriminant of an Operand's payload.
type OperandKind int

const (
	OperandRegister OperandKind = iota
	OperandImmediate
	OperandLabel
	OperandString
	OperandAddress
)

// Operand is one parsed operand node.
type Operand struct {
	Kind OperandKind
	Pos  token.Position

	Reg  int    // OperandRegister, or the base register of OperandAddress
	Imm  uint32 // OperandImmediate, or the displacement of OperandAddress
	Name string // OperandLabel / OperandString text
}

// Line is one parsed source line: an optional label, an optional
// mnemonic-or-directive with its operand list.
type Line struct {
	HasLabel bool
	Label    string
	LabelPos token.Position

	// Entry is nil for a label-only line.
	Entry    *token.ReservedEntry
	Operands []Operand
	Pos      token.Position
}
