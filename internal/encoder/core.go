package encoder

import (
	"fmt"

	"github.com/tstword/mipsasm/internal/ast"
	"github.com/tstword/mipsasm/internal/token"
)

func packR(op, rs, rt, rd, shamt, funct uint32) uint32 {
	return op<<26 | rs<<21 | rt<<16 | rd<<11 | shamt<<6 | funct
}

func packI(op, rs, rt, imm uint32) uint32 {
	return op<<26 | rs<<21 | rt<<16 | (imm & 0xFFFF)
}

func packJ(op, target uint32) uint32 {
	return op<<26 | ((target & 0x0FFFFFFF) >> 2)
}

func fits16(imm uint32) bool {
	v := int32(imm)
	return v >= -32768 && v <= 32767
}

// immALUSize returns the declared size for an immediate-form core ALU
// instruction: 4 bytes when the literal immediate fits the 16-bit
// sign-extended field, 12 otherwise (lui $1 / or-immediate $1 / op $1).
// The decision depends only on the parsed literal, so it is identical on
// both the layout and patch passes.
func immALUSize(imm uint32) uint32 {
	if fits16(imm) {
		return 4
	}
	return 12
}

var loadStoreOp = map[string]uint32{
	"lb": 0x20, "lh": 0x21, "lw": 0x23, "lbu": 0x24, "lhu": 0x25,
	"sb": 0x28, "sh": 0x29, "sw": 0x2B,
}

// sizeOfCore computes the exact byte span a core instruction occupies
// given its parsed operands, before any symbol is resolved. The result
// depends only on statically-known operand kinds/values (I3).
func sizeOfCore(entry *token.ReservedEntry, operands []ast.Operand) uint32 {
	switch entry.Op.Name {
	case "lb", "lh", "lw", "lbu", "lhu", "sb", "sh", "sw":
		if len(operands) > 1 && operands[1].Kind == ast.OperandLabel {
			return 8
		}
		return 4
	case "addi", "addiu", "andi", "ori", "xori", "slti", "sltiu":
		if len(operands) > 2 && operands[2].Kind == ast.OperandImmediate {
			return immALUSize(operands[2].Imm)
		}
		return 4
	default:
		return 4
	}
}

// buildCore produces the final machine words for a core instruction.
// labelVal/hasLabel carry the resolved absolute address of this
// instruction's single permitted Label operand, if any; pc is this
// instruction's own address (for PC-relative branch math).
func buildCore(entry *token.ReservedEntry, operands []ast.Operand, pc uint32, labelVal uint32, hasLabel bool) ([]uint32, error) {
	op := entry.Op
	name := op.Name

	reg := func(i int) uint32 { return uint32(operands[i].Reg) }
	imm := func(i int) uint32 { return operands[i].Imm }

	switch {
	case op.Primary == 0:
		// R-type: the spec dispatches these by funct; the table lookup in
		// lexer/token already resolved the entry, so here we only need the
		// per-shape field layout.
		switch name {
		case "add", "addu", "sub", "subu", "and", "or", "xor", "nor", "slt", "sltu":
			return []uint32{packR(0, reg(1), reg(2), reg(0), 0, uint32(op.Funct))}, nil
		case "sll", "srl", "sra":
			return []uint32{packR(0, 0, reg(1), reg(0), imm(2)&0x1F, uint32(op.Funct))}, nil
		case "sllv", "srlv", "srav":
			return []uint32{packR(0, reg(2), reg(1), reg(0), 0, uint32(op.Funct))}, nil
		case "jr":
			return []uint32{packR(0, reg(0), 0, 0, 0, uint32(op.Funct))}, nil
		case "jalr":
			rd := uint32(31)
			rs := reg(0)
			if len(operands) > 1 {
				rd = reg(0)
				rs = reg(1)
			}
			return []uint32{packR(0, rs, 0, rd, 0, uint32(op.Funct))}, nil
		case "syscall":
			return []uint32{packR(0, 0, 0, 0, 0, uint32(op.Funct))}, nil
		case "mfhi", "mflo":
			return []uint32{packR(0, 0, 0, reg(0), 0, uint32(op.Funct))}, nil
		case "mthi", "mtlo":
			return []uint32{packR(0, reg(0), 0, 0, 0, uint32(op.Funct))}, nil
		case "mult", "multu", "div", "divu":
			return []uint32{packR(0, reg(0), reg(1), 0, 0, uint32(op.Funct))}, nil
		}

	case op.Primary == 0x1C: // SPECIAL2: mul
		return []uint32{packR(uint32(op.Primary), reg(1), reg(2), reg(0), 0, uint32(op.Funct))}, nil

	case name == "lui":
		return []uint32{packI(uint32(op.Primary), 0, reg(0), imm(1))}, nil

	case name == "addi", name == "addiu", name == "andi", name == "ori", name == "xori", name == "slti", name == "sltiu":
		v := imm(2)
		if fits16(v) {
			return []uint32{packI(uint32(op.Primary), reg(1), reg(0), v)}, nil
		}
		return immALUExpansion(name, reg(0), reg(1), v), nil

	case name == "lb", name == "lh", name == "lw", name == "lbu", name == "lhu",
		name == "sb", name == "sh", name == "sw":
		if hasLabel {
			return []uint32{
				packI(0x0F, 0, 1, labelVal>>16),
				packI(loadStoreOp[name], 1, reg(0), labelVal&0xFFFF),
			}, nil
		}
		base := operands[1]
		return []uint32{packI(loadStoreOp[name], uint32(base.Reg), reg(0), base.Imm)}, nil

	case name == "beq", name == "bne":
		off := branchOffset(pc, labelVal)
		return []uint32{packI(uint32(op.Primary), reg(0), reg(1), off)}, nil

	case name == "blez", name == "bgtz":
		off := branchOffset(pc, labelVal)
		return []uint32{packI(uint32(op.Primary), reg(0), 0, off)}, nil

	case name == "bltz", name == "bgez", name == "bltzal", name == "bgezal":
		off := branchOffset(pc, labelVal)
		return []uint32{packI(uint32(op.Primary), reg(0), uint32(op.RT), off)}, nil

	case name == "j", name == "jal":
		return []uint32{packJ(uint32(op.Primary), labelVal)}, nil
	}

	return nil, fmt.Errorf("unhandled core instruction %q", name)
}

// branchOffset implements spec.md §4.6/P5: (target - (pc+4)) >> 2.
func branchOffset(pc, target uint32) uint32 {
	delta := int32(target) - int32(pc+4)
	return uint32(delta>>2) & 0xFFFF
}

// registerFunct is the R-type equivalent of each immediate-form ALU op,
// used for the third word of its overflow expansion.
var registerFunct = map[string]uint32{
	"addi": 0x20, "addiu": 0x21, "andi": 0x24, "ori": 0x25, "xori": 0x26,
	"slti": 0x2A, "sltiu": 0x2B,
}

// immALUExpansion synthesizes the lui $1,hi / op $1,$1,lo / real-op rd,rs,$1
// sequence for an immediate-form ALU op whose literal overflows 16 bits.
// ori is used instead of addiu for the low half whenever the original op
// is andi/ori/xori/sltiu, or whenever bit 15 of the low half is set (with
// the high half clean or not), since addiu would sign-extend it.
func immALUExpansion(name string, rd, rs, v uint32) []uint32 {
	hi := v >> 16
	lo := v & 0xFFFF
	logical := name == "andi" || name == "ori" || name == "xori" || name == "sltiu"
	var loadLow uint32
	if logical || lo&0x8000 != 0 {
		loadLow = packI(0x0D, 1, 1, lo) // ori $1, $1, lo
	} else {
		loadLow = packI(0x09, 1, 1, lo) // addiu $1, $1, lo
	}
	real := packR(0, rs, 1, rd, 0, registerFunct[name])
	return []uint32{
		packI(0x0F, 0, 1, hi), // lui $1, hi
		loadLow,
		real,
	}
}
