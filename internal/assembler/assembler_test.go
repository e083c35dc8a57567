package assembler_test

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tstword/mipsasm/internal/assembler"
	"github.com/tstword/mipsasm/internal/encoder"
)

func words(t *testing.T, data []byte, n int) []uint32 {
	t.Helper()
	out := make([]uint32, n)
	for i := 0; i < n; i++ {
		out[i] = binary.NativeEndian.Uint32(data[i*4 : i*4+4])
	}
	return out
}

// S1: add $t0, $t1, $t2
func TestScenarioS1SimpleRType(t *testing.T) {
	res := assembler.New().AssembleSource("s1.s", []byte("add $t0, $t1, $t2\n"))
	require.False(t, res.Failed(), res.Diagnostics.Error())

	data, base, size := res.Encoder.Segment(encoder.Text)
	require.EqualValues(t, 4, size)
	assert.EqualValues(t, 0x00400000, base)
	assert.Equal(t, uint32(0x012a4020), words(t, data, 1)[0])
}

// S2: .data / msg: .asciiz "hi"
func TestScenarioS2AsciizDirective(t *testing.T) {
	res := assembler.New().AssembleSource("s2.s", []byte(".data\nmsg: .asciiz \"hi\"\n"))
	require.False(t, res.Failed(), res.Diagnostics.Error())

	data, base, size := res.Encoder.Segment(encoder.Data)
	require.EqualValues(t, 3, size)
	assert.Equal(t, []byte{0x68, 0x69, 0x00}, data[:3])

	seg, offset, ok := res.Encoder.LookupSymbol("msg")
	require.True(t, ok)
	assert.Equal(t, encoder.Data, seg)
	assert.EqualValues(t, 0, offset)
	assert.EqualValues(t, base, 0x10010000)
}

// S3: forward-referenced j target, resolved in the terminal pass.
func TestScenarioS3ForwardJump(t *testing.T) {
	src := "  j end\n  addi $t0, $t0, 1\nend:\n  syscall\n"
	res := assembler.New().AssembleSource("s3.s", []byte(src))
	require.False(t, res.Failed(), res.Diagnostics.Error())

	data, _, size := res.Encoder.Segment(encoder.Text)
	require.EqualValues(t, 12, size)

	seg, offset, ok := res.Encoder.LookupSymbol("end")
	require.True(t, ok)
	assert.Equal(t, encoder.Text, seg)
	assert.EqualValues(t, 0x00400008, 0x00400000+offset)

	w := words(t, data, 3)
	assert.Equal(t, uint32(0x08100002), w[0], "j end")
	assert.Equal(t, uint32(0x21080001), w[1], "addi $t0,$t0,1")
	assert.Equal(t, uint32(0x0000000C), w[2], "syscall")
}

// S4: li always expands to the 2-instruction lui/ori form.
func TestScenarioS4LiExpansion(t *testing.T) {
	res := assembler.New().AssembleSource("s4.s", []byte("li $t0, 0x12345678\n"))
	require.False(t, res.Failed(), res.Diagnostics.Error())

	data, _, size := res.Encoder.Segment(encoder.Text)
	require.EqualValues(t, 8, size)

	w := words(t, data, 2)
	assert.Equal(t, uint32(0x3C011234), w[0], "lui $1, 0x1234")
	assert.Equal(t, uint32(0x34285678), w[1], "ori $8, $1, 0x5678")
}

// S5: redefining a label reports one diagnostic and fails the run, but
// both occurrences are still encoded.
func TestScenarioS5DoubleDefinition(t *testing.T) {
	src := "lbl: add $t0,$t0,$t0\nlbl: sub $t0,$t0,$t0\n"
	res := assembler.New().AssembleSource("s5.s", []byte(src))
	require.True(t, res.Failed())
	require.Len(t, res.Diagnostics.Errors, 1)
	assert.Contains(t, res.Diagnostics.Errors[0].Message, "lbl")

	data, _, size := res.Encoder.Segment(encoder.Text)
	require.EqualValues(t, 8, size)
	w := words(t, data, 2)
	assert.Equal(t, uint32(0x01084020), w[0], "add $t0,$t0,$t0")
	assert.Equal(t, uint32(0x01084022), w[1], "sub $t0,$t0,$t0")

	seg, offset, ok := res.Encoder.LookupSymbol("lbl")
	require.True(t, ok)
	assert.Equal(t, encoder.Text, seg)
	assert.EqualValues(t, 0, offset, "keeps the first binding")
}

// S6: bge expands to slt+beq; the branch displacement is 0 when target
// sits exactly at the branch word's pc+4.
func TestScenarioS6CondBranchExpansion(t *testing.T) {
	src := "bge $t0, $t1, target\ntarget:\n  syscall\n"
	res := assembler.New().AssembleSource("s6.s", []byte(src))
	require.False(t, res.Failed(), res.Diagnostics.Error())

	data, _, size := res.Encoder.Segment(encoder.Text)
	require.EqualValues(t, 12, size)

	w := words(t, data, 3)
	assert.Equal(t, uint32(0x0109082a), w[0], "slt $1, $t0, $t1")
	assert.Equal(t, uint32(0x10200000), w[1], "beq $1, $0, target (displacement 0)")
}

// .word forward-referencing a label defined later in the same segment
// must be patched by the terminal pass rather than silently left as 0.
func TestWordForwardReferenceIsPatched(t *testing.T) {
	src := ".data\n.word target\ntarget: .word 7\n"
	res := assembler.New().AssembleSource("word_fwd.s", []byte(src))
	require.False(t, res.Failed(), res.Diagnostics.Error())

	data, base, size := res.Encoder.Segment(encoder.Data)
	require.EqualValues(t, 8, size)

	seg, offset, ok := res.Encoder.LookupSymbol("target")
	require.True(t, ok)
	assert.Equal(t, encoder.Data, seg)
	assert.EqualValues(t, 4, offset)

	w := words(t, data, 2)
	assert.Equal(t, base+offset, w[0], ".word target patched to target's address")
	assert.EqualValues(t, 7, w[1])
}

// A .word operand naming a label that's never defined must fail the run
// with an undefined-symbol diagnostic, not silently encode as 0.
func TestWordUndefinedLabelReportsDiagnostic(t *testing.T) {
	src := ".data\n.word nowhere\n"
	res := assembler.New().AssembleSource("word_undef.s", []byte(src))
	require.True(t, res.Failed())
	require.NotEmpty(t, res.Diagnostics.Errors)
	assert.Contains(t, res.Diagnostics.Errors[0].Message, "nowhere")
}

// Mixing a resolved and a still-undefined label in one repeated .word
// line must still diagnose the undefined one.
func TestWordMixedLabelsReportsOnlyUndefinedOne(t *testing.T) {
	src := "known:\n.data\n.word known, missing\n"
	res := assembler.New().AssembleSource("word_mixed.s", []byte(src))
	require.True(t, res.Failed())
	require.Len(t, res.Diagnostics.Errors, 1)
	assert.Contains(t, res.Diagnostics.Errors[0].Message, "missing")
}

func TestIncludeInlinesTarget(t *testing.T) {
	files := map[string][]byte{
		"main.s":  []byte(".include \"child.s\"\nadd $t0,$t0,$t0\n"),
		"child.s": []byte("sub $t1,$t1,$t1\n"),
	}
	asm := assembler.NewWithReader(func(path string) ([]byte, error) {
		src, ok := files[path]
		if !ok {
			return nil, assert.AnError
		}
		return src, nil
	})

	res := asm.AssembleFile("main.s")
	require.False(t, res.Failed(), res.Diagnostics.Error())

	data, _, size := res.Encoder.Segment(encoder.Text)
	require.EqualValues(t, 8, size)
	w := words(t, data, 2)
	assert.Equal(t, uint32(0x01294822), w[0], "sub $t1,$t1,$t1 (from the included file)")
	assert.Equal(t, uint32(0x01084020), w[1], "add $t0,$t0,$t0 (from main.s)")
}
