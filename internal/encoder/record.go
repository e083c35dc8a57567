package encoder

import (
	"github.com/tstword/mipsasm/internal/ast"
	"github.com/tstword/mipsasm/internal/token"
)

// Record is the instruction record of spec.md §3: enough of a parsed line
// to re-encode it once a forward-referenced label is resolved. Segment
// and Offset are captured at first-emission time so the terminal pass can
// seek back to the exact span pass 1 reserved (I2).
type Record struct {
	Entry    *token.ReservedEntry
	Operands []ast.Operand
	Segment  int
	Offset   uint32
	Pos      token.Position
	Size     uint32 // the exact byte span reserved for this occurrence
}
