package token

// OperandClass is a bitfield describing which operand shapes an operand
// slot accepts.
type OperandClass uint8

const (
	ClassNone      OperandClass = 0
	ClassLabel     OperandClass = 1 << 0
	ClassImmediate OperandClass = 1 << 1
	ClassRegister  OperandClass = 1 << 2
	ClassAddress   OperandClass = 1 << 3
	ClassString    OperandClass = 1 << 4
	// Repeat marks a slot that also consumes any number of trailing
	// operands of the same permitted classes.
	ClassRepeat OperandClass = 1 << 5
	// Optional marks a slot that may be absent entirely.
	ClassOptional OperandClass = 1 << 6
)

func (c OperandClass) Has(f OperandClass) bool { return c&f != 0 }

// InstrType classifies an opcode-table entry.
type InstrType int

const (
	Core InstrType = iota
	Pseudo
	DirectiveType
)

// OpcodeEntry is the static encoding descriptor for one mnemonic or
// directive. Ordering in the backing table is not semantically
// significant but must be stable: the encoder never reorders it.
type OpcodeEntry struct {
	Name string

	Primary uint8 // 6-bit primary opcode field
	Funct   uint8 // 6-bit funct field (R-type / SPECIAL2)
	RT      uint8 // rt-field override, REGIMM branch-on-condition family

	// Format is the operand-format triple: up to three operand slots,
	// each a union of permitted OperandClass values.
	Format [3]OperandClass

	Type InstrType

	// Size is the declared encoded size in bytes of the entry's base form.
	// Core entries all declare 4, but the encoder sizes a load/store with a
	// label operand at 8 and an immediate ALU op whose literal does not fit
	// 16 bits at 12; the bge/bgt/ble/blt(u) pseudos grow from 8 to 12 with
	// an immediate second operand. Each occurrence's size depends only on
	// its parsed operands, so it is the same on both passes (I3).
	// Data directives record their per-item width here (0 for the rest).
	Size int
}

// ReservedEntry is the static descriptor a reserved name maps to.
type ReservedEntry struct {
	Name string
	Kind Kind // Mnemonic, Directive, or Register

	// Op is set for Mnemonic and Directive entries.
	Op *OpcodeEntry

	// Reg is set (0..31) for Register entries.
	Reg int
}
