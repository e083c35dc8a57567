package encoder

import (
	"fmt"

	"github.com/tstword/mipsasm/internal/ast"
	"github.com/tstword/mipsasm/internal/token"
)

// sizeOfPseudo computes the exact declared size for a pseudo-instruction
// occurrence. Every size in the table is fixed except the
// bge/bgt/ble/blt(u) family, whose size depends on whether the second
// operand is a register or an immediate — a choice fixed by the parsed
// operand kind, hence stable across both passes.
func sizeOfPseudo(entry *token.ReservedEntry, operands []ast.Operand) uint32 {
	switch entry.Op.Name {
	case "bge", "bgt", "ble", "blt", "bgeu", "bgtu", "bleu", "bltu":
		if len(operands) > 1 && operands[1].Kind == ast.OperandImmediate {
			return 12
		}
		return 8
	default:
		return uint32(entry.Op.Size)
	}
}

// buildPseudo produces the final machine words for a pseudo-instruction.
func buildPseudo(entry *token.ReservedEntry, operands []ast.Operand, pc uint32, labelVal uint32, hasLabel bool) ([]uint32, error) {
	name := entry.Op.Name
	reg := func(i int) uint32 { return uint32(operands[i].Reg) }

	switch name {
	case "move":
		// addu rd, $0, rs
		return []uint32{packR(0, 0, reg(1), reg(0), 0, 0x21)}, nil

	case "li":
		// Always the 2-instruction lui/ori form (see DESIGN.md).
		v := operands[1].Imm
		return []uint32{
			packI(0x0F, 0, 1, v>>16),
			packI(0x0D, 1, reg(0), v&0xFFFF),
		}, nil

	case "la":
		// lui $1, label>>16 ; ori rd, $1, label&0xFFFF
		return []uint32{
			packI(0x0F, 0, 1, labelVal>>16),
			packI(0x0D, 1, reg(0), labelVal&0xFFFF),
		}, nil

	case "not":
		// nor rd, rs, $0
		return []uint32{packR(0, reg(1), 0, reg(0), 0, 0x27)}, nil

	case "neg":
		// sub rd, $0, rs
		return []uint32{packR(0, 0, reg(1), reg(0), 0, 0x22)}, nil

	case "abs":
		// sra $1, rs, 31 ; xor rd, $1, rs ; sub rd, rd, $1
		rs := reg(1)
		rd := reg(0)
		return []uint32{
			packR(0, 0, rs, 1, 31, 0x03),
			packR(0, 1, rs, rd, 0, 0x26),
			packR(0, rd, 1, rd, 0, 0x22),
		}, nil

	case "rol":
		// srl $1, rs, (32-shamt) ; sll rd, rs, shamt ; or rd, rd, $1
		return rotateWords(reg(0), reg(1), operands[2].Imm, true), nil

	case "ror":
		// sll $1, rs, (32-shamt) ; srl rd, rs, shamt ; or rd, rd, $1
		return rotateWords(reg(0), reg(1), operands[2].Imm, false), nil

	case "sgt":
		// slt rd, rt, rs
		return []uint32{packR(0, reg(2), reg(1), reg(0), 0, 0x2A)}, nil

	case "sne":
		// subu rd, rs, rt ; sltu rd, $0, rd
		rd := reg(0)
		return []uint32{
			packR(0, reg(1), reg(2), rd, 0, 0x23),
			packR(0, 0, rd, rd, 0, 0x2B),
		}, nil

	case "b":
		// bgez $0, label
		off := branchOffset(pc, labelVal)
		return []uint32{packI(0x01, 0, 0x01, off)}, nil

	case "beqz":
		// beq rs, $0, label
		off := branchOffset(pc, labelVal)
		return []uint32{packI(0x04, reg(0), 0, off)}, nil

	case "bnez":
		// bne rs, $0, label
		off := branchOffset(pc, labelVal)
		return []uint32{packI(0x05, reg(0), 0, off)}, nil

	case "bge", "bgt", "ble", "blt", "bgeu", "bgtu", "bleu", "bltu":
		return buildCondBranch(name, operands, pc, labelVal)
	}

	return nil, fmt.Errorf("unhandled pseudo-instruction %q", name)
}

func rotateWords(rd, rs, shamt uint32, left bool) []uint32 {
	shamt &= 0x1F
	comp := (32 - shamt) & 0x1F
	if left {
		return []uint32{
			packR(0, 0, rs, 1, comp, 0x02), // srl $1, rs, 32-shamt
			packR(0, 0, rs, rd, shamt, 0x00), // sll rd, rs, shamt
			packR(0, rd, 1, rd, 0, 0x25),      // or rd, rd, $1
		}
	}
	return []uint32{
		packR(0, 0, rs, 1, comp, 0x00), // sll $1, rs, 32-shamt
		packR(0, 0, rs, rd, shamt, 0x02), // srl rd, rs, shamt
		packR(0, rd, 1, rd, 0, 0x25),      // or rd, rd, $1
	}
}

// buildCondBranch expands bge/bgt/ble/blt(u), in either register or
// immediate second-operand form, into a compare followed by a
// zero-test branch. `pc` is this pseudo-instruction's own address; the
// branch word's own address is pc + 8 when an addiu $1 prefix is
// present (immediate form), or pc + 4 otherwise (register form).
func buildCondBranch(name string, operands []ast.Operand, pc uint32, labelVal uint32) ([]uint32, error) {
	rs := uint32(operands[0].Reg)
	unsigned := name == "bgeu" || name == "bgtu" || name == "bleu" || name == "bltu"
	sltFunct := uint32(0x2A)
	if unsigned {
		sltFunct = 0x2B
	}

	// Normalize to a single shape: "is rs `<` rhs" (strict-less), then
	// decide whether the branch fires on the slt result being zero or
	// non-zero.
	//   bge rs,rhs,L  ->  t = rs<rhs ; beq t,$0,L
	//   bgt rs,rhs,L  ->  t = rhs<rs ; bne t,$0,L
	//   ble rs,rhs,L  ->  t = rhs<rs ; beq t,$0,L
	//   blt rs,rhs,L  ->  t = rs<rhs ; bne t,$0,L
	swapOrder := name == "bgt" || name == "bgtu" || name == "ble" || name == "bleu"
	branchOnZero := name == "bge" || name == "bgeu" || name == "ble" || name == "bleu"

	var words []uint32
	var slt uint32
	cmpPC := pc

	if operands[1].Kind == ast.OperandImmediate {
		// addiu $1, $0, imm ; slt $1, a, b ; branch
		words = append(words, packI(0x09, 0, 1, operands[1].Imm))
		if swapOrder {
			slt = packR(0, 1, rs, 1, 0, sltFunct)
		} else {
			slt = packR(0, rs, 1, 1, 0, sltFunct)
		}
		words = append(words, slt)
		cmpPC = pc + 8
	} else {
		rt := uint32(operands[1].Reg)
		if swapOrder {
			slt = packR(0, rt, rs, 1, 0, sltFunct)
		} else {
			slt = packR(0, rs, rt, 1, 0, sltFunct)
		}
		words = append(words, slt)
		cmpPC = pc + 4
	}

	off := branchOffset(cmpPC, labelVal)
	if branchOnZero {
		words = append(words, packI(0x04, 1, 0, off)) // beq $1, $0, label
	} else {
		words = append(words, packI(0x05, 1, 0, off)) // bne $1, $0, label
	}
	return words, nil
}
