package encoder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tstword/mipsasm/internal/ast"
)

func TestBuildPseudoMove(t *testing.T) {
	entry := mustLookup(t, "move")
	words, err := buildPseudo(entry, []ast.Operand{reg(8), reg(9)}, 0, 0, false)
	require.NoError(t, err)
	assert.Equal(t, []uint32{packR(0, 0, 9, 8, 0, 0x21)}, words)
}

func TestBuildPseudoLiAlwaysExpandsToTwoWords(t *testing.T) {
	entry := mustLookup(t, "li")
	words, err := buildPseudo(entry, []ast.Operand{reg(8), imm(0x12345678)}, 0, 0, false)
	require.NoError(t, err)
	require.Len(t, words, 2)
	assert.Equal(t, uint32(0x3C011234), words[0])
	assert.Equal(t, uint32(0x34285678), words[1])
}

func TestBuildPseudoLiSmallImmediateStillTwoWords(t *testing.T) {
	// li's declared size (I3) is always 8 bytes, so even a small literal
	// keeps the lui/ori shape rather than collapsing to one instruction.
	entry := mustLookup(t, "li")
	words, err := buildPseudo(entry, []ast.Operand{reg(8), imm(5)}, 0, 0, false)
	require.NoError(t, err)
	require.Len(t, words, 2)
	assert.Equal(t, uint32(0x3C010000), words[0])
	assert.Equal(t, packI(0x0D, 1, 8, 5), words[1])
}

func TestBuildPseudoLaUsesResolvedLabel(t *testing.T) {
	entry := mustLookup(t, "la")
	words, err := buildPseudo(entry, []ast.Operand{reg(8), label("msg")}, 0, 0x10010004, true)
	require.NoError(t, err)
	assert.Equal(t, packI(0x0F, 0, 1, 0x1001), words[0])
	assert.Equal(t, packI(0x0D, 1, 8, 0x0004), words[1])
}

func TestBuildPseudoNotAndNeg(t *testing.T) {
	notEntry := mustLookup(t, "not")
	words, err := buildPseudo(notEntry, []ast.Operand{reg(8), reg(9)}, 0, 0, false)
	require.NoError(t, err)
	assert.Equal(t, []uint32{packR(0, 9, 0, 8, 0, 0x27)}, words)

	negEntry := mustLookup(t, "neg")
	words, err = buildPseudo(negEntry, []ast.Operand{reg(8), reg(9)}, 0, 0, false)
	require.NoError(t, err)
	assert.Equal(t, []uint32{packR(0, 0, 9, 8, 0, 0x22)}, words)
}

func TestBuildPseudoAbsThreeWords(t *testing.T) {
	entry := mustLookup(t, "abs")
	words, err := buildPseudo(entry, []ast.Operand{reg(8), reg(9)}, 0, 0, false)
	require.NoError(t, err)
	require.Len(t, words, 3)
	assert.Equal(t, packR(0, 0, 9, 1, 31, 0x03), words[0])
	assert.Equal(t, packR(0, 1, 9, 8, 0, 0x26), words[1])
	assert.Equal(t, packR(0, 8, 1, 8, 0, 0x22), words[2])
}

func TestBuildPseudoRolRorShamtWrap(t *testing.T) {
	rol := mustLookup(t, "rol")
	words, err := buildPseudo(rol, []ast.Operand{reg(8), reg(9), imm(4)}, 0, 0, false)
	require.NoError(t, err)
	require.Len(t, words, 3)
	assert.Equal(t, packR(0, 0, 9, 1, 28, 0x02), words[0], "srl $1, rs, 32-4")
	assert.Equal(t, packR(0, 0, 9, 8, 4, 0x00), words[1], "sll rd, rs, 4")
	assert.Equal(t, packR(0, 8, 1, 8, 0, 0x25), words[2], "or rd, rd, $1")

	ror := mustLookup(t, "ror")
	words, err = buildPseudo(ror, []ast.Operand{reg(8), reg(9), imm(0)}, 0, 0, false)
	require.NoError(t, err)
	assert.Equal(t, packR(0, 0, 9, 1, 0, 0x00), words[0], "shamt=0 wraps comp to 0, not 32")
}

func TestBuildPseudoSgtAndSne(t *testing.T) {
	sgt := mustLookup(t, "sgt")
	words, err := buildPseudo(sgt, []ast.Operand{reg(8), reg(9), reg(10)}, 0, 0, false)
	require.NoError(t, err)
	assert.Equal(t, []uint32{packR(0, 10, 9, 8, 0, 0x2A)}, words)

	sne := mustLookup(t, "sne")
	words, err = buildPseudo(sne, []ast.Operand{reg(8), reg(9), reg(10)}, 0, 0, false)
	require.NoError(t, err)
	require.Len(t, words, 2)
	assert.Equal(t, packR(0, 9, 10, 8, 0, 0x23), words[0])
	assert.Equal(t, packR(0, 0, 8, 8, 0, 0x2B), words[1])
}

func TestBuildPseudoBUnconditional(t *testing.T) {
	entry := mustLookup(t, "b")
	words, err := buildPseudo(entry, []ast.Operand{label("target")}, 0x00400000, 0x00400004, true)
	require.NoError(t, err)
	assert.Equal(t, []uint32{packI(0x01, 0, 0x01, 0)}, words)
}

func TestBuildPseudoBeqzBnez(t *testing.T) {
	beqz := mustLookup(t, "beqz")
	words, err := buildPseudo(beqz, []ast.Operand{reg(8), label("l")}, 0x00400000, 0x00400004, true)
	require.NoError(t, err)
	assert.Equal(t, []uint32{packI(0x04, 8, 0, 0)}, words)

	bnez := mustLookup(t, "bnez")
	words, err = buildPseudo(bnez, []ast.Operand{reg(8), label("l")}, 0x00400000, 0x00400004, true)
	require.NoError(t, err)
	assert.Equal(t, []uint32{packI(0x05, 8, 0, 0)}, words)
}

func TestSizeOfPseudoCondBranchDependsOnOperandKind(t *testing.T) {
	entry := mustLookup(t, "bge")
	reg8 := sizeOfPseudo(entry, []ast.Operand{reg(8), reg(9), label("l")})
	assert.EqualValues(t, 8, reg8)

	imm8 := sizeOfPseudo(entry, []ast.Operand{reg(8), imm(5), label("l")})
	assert.EqualValues(t, 12, imm8)
}

func TestBuildCondBranchBgeRegisterForm(t *testing.T) {
	entry := mustLookup(t, "bge")
	words, err := buildCondBranch("bge", []ast.Operand{reg(8), reg(9), label("target")}, 0x00400000, 0x00400008)
	require.NoError(t, err)
	require.Len(t, words, 2)
	assert.Equal(t, packR(0, 8, 9, 1, 0, 0x2A), words[0], "slt $1, $t0, $t1")
	assert.Equal(t, uint32(0x10200000), words[1], "beq $1, $0, target (displacement 0)")
	_ = entry
}

func TestBuildCondBranchBltImmediateFormAddsAddiuPrefix(t *testing.T) {
	words, err := buildCondBranch("blt", []ast.Operand{reg(8), imm(5), label("target")}, 0x00400000, 0x0040000C)
	require.NoError(t, err)
	require.Len(t, words, 3)
	assert.Equal(t, packI(0x09, 0, 1, 5), words[0], "addiu $1, $0, 5")
	assert.Equal(t, packR(0, 8, 1, 1, 0, 0x2A), words[1], "slt $1, $t0, $1")
	assert.Equal(t, packI(0x05, 1, 0, 0), words[2], "bne $1, $0, target (displacement 0)")
}

func TestBuildCondBranchSwapsOperandsForBgtAndBle(t *testing.T) {
	bgt, err := buildCondBranch("bgt", []ast.Operand{reg(8), reg(9), label("l")}, 0, 4)
	require.NoError(t, err)
	assert.Equal(t, packR(0, 9, 8, 1, 0, 0x2A), bgt[0], "slt $1, rt, rs")

	ble, err := buildCondBranch("ble", []ast.Operand{reg(8), reg(9), label("l")}, 0, 4)
	require.NoError(t, err)
	assert.Equal(t, packR(0, 9, 8, 1, 0, 0x2A), ble[0], "slt $1, rt, rs")
}

func TestBuildCondBranchUnsignedUsesSltuFunct(t *testing.T) {
	words, err := buildCondBranch("bltu", []ast.Operand{reg(8), reg(9), label("l")}, 0, 4)
	require.NoError(t, err)
	assert.Equal(t, packR(0, 8, 9, 1, 0, 0x2B), words[0], "sltu instead of slt")
}
