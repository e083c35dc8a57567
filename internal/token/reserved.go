package token

import "sort"

// Opcode table. Order is not semantically significant but must stay
// stable: other components may hold a *OpcodeEntry across the whole run.
var opcodeTable = []OpcodeEntry{
	// --- R-type ALU (op=0, dispatch by funct) ---
	{Name: "add", Funct: 0x20, Format: [3]OperandClass{ClassRegister, ClassRegister, ClassRegister}, Type: Core, Size: 4},
	{Name: "addu", Funct: 0x21, Format: [3]OperandClass{ClassRegister, ClassRegister, ClassRegister}, Type: Core, Size: 4},
	{Name: "sub", Funct: 0x22, Format: [3]OperandClass{ClassRegister, ClassRegister, ClassRegister}, Type: Core, Size: 4},
	{Name: "subu", Funct: 0x23, Format: [3]OperandClass{ClassRegister, ClassRegister, ClassRegister}, Type: Core, Size: 4},
	{Name: "and", Funct: 0x24, Format: [3]OperandClass{ClassRegister, ClassRegister, ClassRegister}, Type: Core, Size: 4},
	{Name: "or", Funct: 0x25, Format: [3]OperandClass{ClassRegister, ClassRegister, ClassRegister}, Type: Core, Size: 4},
	{Name: "xor", Funct: 0x26, Format: [3]OperandClass{ClassRegister, ClassRegister, ClassRegister}, Type: Core, Size: 4},
	{Name: "nor", Funct: 0x27, Format: [3]OperandClass{ClassRegister, ClassRegister, ClassRegister}, Type: Core, Size: 4},
	{Name: "slt", Funct: 0x2A, Format: [3]OperandClass{ClassRegister, ClassRegister, ClassRegister}, Type: Core, Size: 4},
	{Name: "sltu", Funct: 0x2B, Format: [3]OperandClass{ClassRegister, ClassRegister, ClassRegister}, Type: Core, Size: 4},

	// --- R-type shifts ---
	{Name: "sll", Funct: 0x00, Format: [3]OperandClass{ClassRegister, ClassRegister, ClassImmediate}, Type: Core, Size: 4},
	{Name: "srl", Funct: 0x02, Format: [3]OperandClass{ClassRegister, ClassRegister, ClassImmediate}, Type: Core, Size: 4},
	{Name: "sra", Funct: 0x03, Format: [3]OperandClass{ClassRegister, ClassRegister, ClassImmediate}, Type: Core, Size: 4},
	{Name: "sllv", Funct: 0x04, Format: [3]OperandClass{ClassRegister, ClassRegister, ClassRegister}, Type: Core, Size: 4},
	{Name: "srlv", Funct: 0x06, Format: [3]OperandClass{ClassRegister, ClassRegister, ClassRegister}, Type: Core, Size: 4},
	{Name: "srav", Funct: 0x07, Format: [3]OperandClass{ClassRegister, ClassRegister, ClassRegister}, Type: Core, Size: 4},

	// --- R-type control/mul-div ---
	{Name: "jr", Funct: 0x08, Format: [3]OperandClass{ClassRegister}, Type: Core, Size: 4},
	{Name: "jalr", Funct: 0x09, Format: [3]OperandClass{ClassRegister, ClassRegister | ClassOptional}, Type: Core, Size: 4},
	{Name: "syscall", Funct: 0x0C, Format: [3]OperandClass{}, Type: Core, Size: 4},
	{Name: "mfhi", Funct: 0x10, Format: [3]OperandClass{ClassRegister}, Type: Core, Size: 4},
	{Name: "mthi", Funct: 0x11, Format: [3]OperandClass{ClassRegister}, Type: Core, Size: 4},
	{Name: "mflo", Funct: 0x12, Format: [3]OperandClass{ClassRegister}, Type: Core, Size: 4},
	{Name: "mtlo", Funct: 0x13, Format: [3]OperandClass{ClassRegister}, Type: Core, Size: 4},
	{Name: "mult", Funct: 0x18, Format: [3]OperandClass{ClassRegister, ClassRegister}, Type: Core, Size: 4},
	{Name: "multu", Funct: 0x19, Format: [3]OperandClass{ClassRegister, ClassRegister}, Type: Core, Size: 4},
	{Name: "div", Funct: 0x1A, Format: [3]OperandClass{ClassRegister, ClassRegister}, Type: Core, Size: 4},
	{Name: "divu", Funct: 0x1B, Format: [3]OperandClass{ClassRegister, ClassRegister}, Type: Core, Size: 4},

	// mul is a SPECIAL2 core instruction per the adopted design note
	// (op=0x1C, funct=0x02), not a pseudo.
	{Name: "mul", Primary: 0x1C, Funct: 0x02, Format: [3]OperandClass{ClassRegister, ClassRegister, ClassRegister}, Type: Core, Size: 4},

	// --- I-type immediate ALU ---
	{Name: "addi", Primary: 0x08, Format: [3]OperandClass{ClassRegister, ClassRegister, ClassImmediate}, Type: Core, Size: 4},
	{Name: "addiu", Primary: 0x09, Format: [3]OperandClass{ClassRegister, ClassRegister, ClassImmediate}, Type: Core, Size: 4},
	{Name: "andi", Primary: 0x0C, Format: [3]OperandClass{ClassRegister, ClassRegister, ClassImmediate}, Type: Core, Size: 4},
	{Name: "ori", Primary: 0x0D, Format: [3]OperandClass{ClassRegister, ClassRegister, ClassImmediate}, Type: Core, Size: 4},
	{Name: "xori", Primary: 0x0E, Format: [3]OperandClass{ClassRegister, ClassRegister, ClassImmediate}, Type: Core, Size: 4},
	{Name: "slti", Primary: 0x0A, Format: [3]OperandClass{ClassRegister, ClassRegister, ClassImmediate}, Type: Core, Size: 4},
	{Name: "sltiu", Primary: 0x0B, Format: [3]OperandClass{ClassRegister, ClassRegister, ClassImmediate}, Type: Core, Size: 4},
	{Name: "lui", Primary: 0x0F, Format: [3]OperandClass{ClassRegister, ClassImmediate}, Type: Core, Size: 4},

	// --- I-type loads/stores ---
	{Name: "lb", Primary: 0x20, Format: [3]OperandClass{ClassRegister, ClassAddress | ClassLabel}, Type: Core, Size: 4},
	{Name: "lh", Primary: 0x21, Format: [3]OperandClass{ClassRegister, ClassAddress | ClassLabel}, Type: Core, Size: 4},
	{Name: "lw", Primary: 0x23, Format: [3]OperandClass{ClassRegister, ClassAddress | ClassLabel}, Type: Core, Size: 4},
	{Name: "lbu", Primary: 0x24, Format: [3]OperandClass{ClassRegister, ClassAddress | ClassLabel}, Type: Core, Size: 4},
	{Name: "lhu", Primary: 0x25, Format: [3]OperandClass{ClassRegister, ClassAddress | ClassLabel}, Type: Core, Size: 4},
	{Name: "sb", Primary: 0x28, Format: [3]OperandClass{ClassRegister, ClassAddress | ClassLabel}, Type: Core, Size: 4},
	{Name: "sh", Primary: 0x29, Format: [3]OperandClass{ClassRegister, ClassAddress | ClassLabel}, Type: Core, Size: 4},
	{Name: "sw", Primary: 0x2B, Format: [3]OperandClass{ClassRegister, ClassAddress | ClassLabel}, Type: Core, Size: 4},

	// --- I-type branches ---
	{Name: "beq", Primary: 0x04, Format: [3]OperandClass{ClassRegister, ClassRegister, ClassLabel}, Type: Core, Size: 4},
	{Name: "bne", Primary: 0x05, Format: [3]OperandClass{ClassRegister, ClassRegister, ClassLabel}, Type: Core, Size: 4},
	{Name: "blez", Primary: 0x06, Format: [3]OperandClass{ClassRegister, ClassLabel}, Type: Core, Size: 4},
	{Name: "bgtz", Primary: 0x07, Format: [3]OperandClass{ClassRegister, ClassLabel}, Type: Core, Size: 4},
	// REGIMM family (op=1), dispatched further by the rt field.
	{Name: "bltz", Primary: 0x01, RT: 0x00, Format: [3]OperandClass{ClassRegister, ClassLabel}, Type: Core, Size: 4},
	{Name: "bgez", Primary: 0x01, RT: 0x01, Format: [3]OperandClass{ClassRegister, ClassLabel}, Type: Core, Size: 4},
	{Name: "bltzal", Primary: 0x01, RT: 0x10, Format: [3]OperandClass{ClassRegister, ClassLabel}, Type: Core, Size: 4},
	{Name: "bgezal", Primary: 0x01, RT: 0x11, Format: [3]OperandClass{ClassRegister, ClassLabel}, Type: Core, Size: 4},

	// --- J-type ---
	{Name: "j", Primary: 0x02, Format: [3]OperandClass{ClassLabel}, Type: Core, Size: 4},
	{Name: "jal", Primary: 0x03, Format: [3]OperandClass{ClassLabel}, Type: Core, Size: 4},

	// --- Pseudo-instructions (§4.6 repertoire; Size is the declared,
	// invariant layout size — see DESIGN.md for the li/la sizing
	// decision). ---
	{Name: "move", Format: [3]OperandClass{ClassRegister, ClassRegister}, Type: Pseudo, Size: 4},
	{Name: "li", Format: [3]OperandClass{ClassRegister, ClassImmediate}, Type: Pseudo, Size: 8},
	{Name: "la", Format: [3]OperandClass{ClassRegister, ClassLabel}, Type: Pseudo, Size: 8},
	{Name: "not", Format: [3]OperandClass{ClassRegister, ClassRegister}, Type: Pseudo, Size: 4},
	{Name: "neg", Format: [3]OperandClass{ClassRegister, ClassRegister}, Type: Pseudo, Size: 4},
	{Name: "abs", Format: [3]OperandClass{ClassRegister, ClassRegister}, Type: Pseudo, Size: 12},
	{Name: "rol", Format: [3]OperandClass{ClassRegister, ClassRegister, ClassImmediate}, Type: Pseudo, Size: 12},
	{Name: "ror", Format: [3]OperandClass{ClassRegister, ClassRegister, ClassImmediate}, Type: Pseudo, Size: 12},
	{Name: "sgt", Format: [3]OperandClass{ClassRegister, ClassRegister, ClassRegister}, Type: Pseudo, Size: 4},
	{Name: "sne", Format: [3]OperandClass{ClassRegister, ClassRegister, ClassRegister}, Type: Pseudo, Size: 8},
	{Name: "b", Format: [3]OperandClass{ClassLabel}, Type: Pseudo, Size: 4},
	{Name: "beqz", Format: [3]OperandClass{ClassRegister, ClassLabel}, Type: Pseudo, Size: 4},
	{Name: "bnez", Format: [3]OperandClass{ClassRegister, ClassLabel}, Type: Pseudo, Size: 4},
	// bge/bgt/ble/blt (+u) variants: base size is the register/register
	// form; the encoder adds 4 bytes when the second operand is an
	// immediate (known at parse time, stable across both passes).
	{Name: "bge", Format: [3]OperandClass{ClassRegister, ClassRegister | ClassImmediate, ClassLabel}, Type: Pseudo, Size: 8},
	{Name: "bgt", Format: [3]OperandClass{ClassRegister, ClassRegister | ClassImmediate, ClassLabel}, Type: Pseudo, Size: 8},
	{Name: "ble", Format: [3]OperandClass{ClassRegister, ClassRegister | ClassImmediate, ClassLabel}, Type: Pseudo, Size: 8},
	{Name: "blt", Format: [3]OperandClass{ClassRegister, ClassRegister | ClassImmediate, ClassLabel}, Type: Pseudo, Size: 8},
	{Name: "bgeu", Format: [3]OperandClass{ClassRegister, ClassRegister | ClassImmediate, ClassLabel}, Type: Pseudo, Size: 8},
	{Name: "bgtu", Format: [3]OperandClass{ClassRegister, ClassRegister | ClassImmediate, ClassLabel}, Type: Pseudo, Size: 8},
	{Name: "bleu", Format: [3]OperandClass{ClassRegister, ClassRegister | ClassImmediate, ClassLabel}, Type: Pseudo, Size: 8},
	{Name: "bltu", Format: [3]OperandClass{ClassRegister, ClassRegister | ClassImmediate, ClassLabel}, Type: Pseudo, Size: 8},

	// --- Directives ---
	{Name: ".text", Type: DirectiveType, Format: [3]OperandClass{}, Size: 0},
	{Name: ".data", Type: DirectiveType, Format: [3]OperandClass{}, Size: 0},
	{Name: ".ktext", Type: DirectiveType, Format: [3]OperandClass{}, Size: 0},
	{Name: ".kdata", Type: DirectiveType, Format: [3]OperandClass{}, Size: 0},
	{Name: ".include", Type: DirectiveType, Format: [3]OperandClass{ClassString}, Size: 0},
	{Name: ".align", Type: DirectiveType, Format: [3]OperandClass{ClassImmediate}, Size: 0},
	{Name: ".byte", Type: DirectiveType, Format: [3]OperandClass{ClassImmediate | ClassRepeat}, Size: 1},
	{Name: ".half", Type: DirectiveType, Format: [3]OperandClass{ClassImmediate | ClassRepeat}, Size: 2},
	{Name: ".word", Type: DirectiveType, Format: [3]OperandClass{(ClassImmediate | ClassLabel) | ClassRepeat}, Size: 4},
	{Name: ".ascii", Type: DirectiveType, Format: [3]OperandClass{ClassString}, Size: 0},
	{Name: ".asciiz", Type: DirectiveType, Format: [3]OperandClass{ClassString}, Size: 0},
	{Name: ".space", Type: DirectiveType, Format: [3]OperandClass{ClassImmediate}, Size: 0},
}

// registerAliases maps the canonical MIPS register aliases (without the
// leading $, which init adds) to their numeric encoding; init adds the
// bare $0..$31 form separately.
var registerAliases = map[string]int{
	"zero": 0, "at": 1,
	"v0": 2, "v1": 3,
	"a0": 4, "a1": 5, "a2": 6, "a3": 7,
	"t0": 8, "t1": 9, "t2": 10, "t3": 11, "t4": 12, "t5": 13, "t6": 14, "t7": 15,
	"s0": 16, "s1": 17, "s2": 18, "s3": 19, "s4": 20, "s5": 21, "s6": 22, "s7": 23,
	"t8": 24, "t9": 25,
	"k0": 26, "k1": 27,
	"gp": 28, "sp": 29, "fp": 30, "s8": 30,
	"ra": 31,
}

var reservedTable []ReservedEntry

func init() {
	reservedTable = make([]ReservedEntry, 0, len(opcodeTable)+32)

	for i := range opcodeTable {
		e := &opcodeTable[i]
		kind := Mnemonic
		if e.Type == DirectiveType {
			kind = Directive
		}
		reservedTable = append(reservedTable, ReservedEntry{Name: e.Name, Kind: kind, Op: e})
	}

	for i := 0; i <= 31; i++ {
		reservedTable = append(reservedTable, ReservedEntry{
			Name: "$" + itoa(i),
			Kind: Register,
			Reg:  i,
		})
	}
	for name, num := range registerAliases {
		reservedTable = append(reservedTable, ReservedEntry{
			Name: "$" + name,
			Kind: Register,
			Reg:  num,
		})
	}

	sort.Slice(reservedTable, func(i, j int) bool { return reservedTable[i].Name < reservedTable[j].Name })
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	buf := [4]byte{}
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

// Lookup performs a binary search over the sorted reserved table (I5).
func Lookup(name string) (*ReservedEntry, bool) {
	lo, hi := 0, len(reservedTable)
	for lo < hi {
		mid := (lo + hi) / 2
		if reservedTable[mid].Name < name {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo < len(reservedTable) && reservedTable[lo].Name == name {
		return &reservedTable[lo], true
	}
	return nil, false
}
