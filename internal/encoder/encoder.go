package encoder

import (
	"encoding/binary"

	"github.com/tstword/mipsasm/internal/ast"
	"github.com/tstword/mipsasm/internal/diag"
	"github.com/tstword/mipsasm/internal/symtab"
	"github.com/tstword/mipsasm/internal/token"
)

// sink abstracts the two places encoded bytes can go: the live cursor of
// the active segment (layout pass, or any instruction resolved on first
// sight), or a fixed address being patched during the terminal resolution
// pass (§4.6). Both core.go, pseudo.go and directive.go write through one
// of these so neither needs to know which pass it's in.
type sink struct {
	seg   *segment
	patch bool
	addr  uint32
}

func (s *sink) addrNow() uint32 {
	if s.patch {
		return s.addr
	}
	return s.seg.Offset
}

func (s *sink) setAddr(addr uint32) {
	if s.patch {
		s.addr = addr
	} else {
		s.seg.Offset = addr
	}
}

func (s *sink) put(data []byte) {
	if s.patch {
		s.seg.writeAt(s.addr, data)
		s.addr += uint32(len(data))
		return
	}
	s.seg.emit(data)
}

// wordBytes renders w in the host's native byte order, matching the
// endianness byte objfile stamps into the object header.
func wordBytes(w uint32) []byte {
	buf := make([]byte, 4)
	binary.NativeEndian.PutUint32(buf, w)
	return buf
}

// Encoder lowers parsed lines into segment byte images across the
// layout pass and the terminal resolution pass (C6).
type Encoder struct {
	segs    [numSegments]*segment
	active  int
	symbols *symtab.Table[*Record]
	diags   *diag.List
}

// NewEncoder creates an Encoder starting in .text, sharing diags with the
// rest of the assembly run, using the default segment bases.
func NewEncoder(diags *diag.List) *Encoder {
	return NewEncoderWithBases(diags, segmentBases)
}

// NewEncoderWithBases creates an Encoder whose segment base addresses
// are overridden (config.Segments), recomputing each segment's limit as
// "one below the next segment" the same way the defaults are derived.
func NewEncoderWithBases(diags *diag.List, bases [numSegments]uint32) *Encoder {
	limits := [numSegments]uint32{
		Text:  bases[Data] - 1,
		Data:  bases[KText] - 1,
		KText: bases[KData] - 1,
		KData: 0xFFFFFFFF,
	}
	e := &Encoder{active: Text, symbols: symtab.New[*Record](), diags: diags}
	for i := 0; i < numSegments; i++ {
		e.segs[i] = newSegment(i, bases[i], limits[i])
	}
	return e
}

// Segment returns the byte image assembled for segment id so far.
func (e *Encoder) Segment(id int) (bytes []byte, base uint32, size uint32) {
	s := e.segs[id]
	return s.Bytes, s.base(), s.High
}

func (e *Encoder) resolveLabelNow(name string) (uint32, bool) {
	ent, ok := e.symbols.Lookup(name)
	if !ok || ent.Status == symtab.Undefined {
		return 0, false
	}
	return e.segs[ent.Segment].base() + ent.Offset, true
}

// LookupSymbol reports the segment and segment-relative offset name was
// bound at, if it has been Defined (or Doubly redefined, in which case
// I1 keeps the first binding and that's what's reported).
func (e *Encoder) LookupSymbol(name string) (segment int, offset uint32, ok bool) {
	ent, found := e.symbols.Lookup(name)
	if !found || ent.Status == symtab.Undefined {
		return 0, 0, false
	}
	return ent.Segment, ent.Offset, true
}

func buildWords(entry *token.ReservedEntry, operands []ast.Operand, pc, labelVal uint32, hasLabel bool) ([]uint32, error) {
	if entry.Op.Type == token.Pseudo {
		return buildPseudo(entry, operands, pc, labelVal, hasLabel)
	}
	return buildCore(entry, operands, pc, labelVal, hasLabel)
}

func labelOperand(operands []ast.Operand) *ast.Operand {
	for i := range operands {
		if operands[i].Kind == ast.OperandLabel {
			return &operands[i]
		}
	}
	return nil
}

// Emit assembles one parsed line (C7 calls this once per ast.Line): label
// definition, segment-directive switches, data directives, and
// core/pseudo instructions, deferring exactly those occurrences that
// reference a symbol not yet defined.
func (e *Encoder) Emit(line *ast.Line) error {
	if line.Entry == nil {
		if line.HasLabel {
			e.defineLabel(line.Label, line.LabelPos)
		}
		return nil
	}

	op := line.Entry.Op
	seg := e.segs[e.active]

	align := uint32(0)
	switch {
	case op.Type == token.DirectiveType:
		_, align = directiveDataSize(op.Name)
	case e.active == Text || e.active == KText:
		align = 4
	}
	if align > 1 {
		seg.Offset = alignUp(seg.Offset, align)
	}
	addr := seg.Offset

	if line.HasLabel {
		e.defineLabel(line.Label, line.LabelPos)
	}

	if op.Type == token.DirectiveType {
		switch op.Name {
		case ".text":
			e.active = Text
			return nil
		case ".data":
			e.active = Data
			return nil
		case ".ktext":
			e.active = KText
			return nil
		case ".kdata":
			e.active = KData
			return nil
		case ".include":
			return nil
		}
		if e.active != Data && e.active != KData {
			e.diags.Add(diag.New(line.Pos, diag.Semantic, "%s not permitted outside a data segment", op.Name))
			return nil
		}

		// .word is the only directive whose operands may carry labels
		// (§4.6). Register every one so a still-undefined reference is
		// diagnosed, and if any hasn't been Defined yet, defer the whole
		// line to the terminal pass instead of letting runDirective
		// silently encode it as 0 now.
		var undefined []string
		for i := range line.Operands {
			if line.Operands[i].Kind != ast.OperandLabel {
				continue
			}
			if sym := e.symbols.Reference(line.Operands[i].Name); sym.Status == symtab.Undefined {
				undefined = append(undefined, line.Operands[i].Name)
			}
		}
		if len(undefined) > 0 {
			item, _ := directiveDataSize(op.Name)
			size := item * uint32(len(line.Operands))
			seg.reserve(size)
			rec := &Record{
				Entry:    line.Entry,
				Operands: line.Operands,
				Segment:  e.active,
				Offset:   addr - seg.base(),
				Pos:      line.Pos,
				Size:     size,
			}
			for _, name := range undefined {
				e.symbols.AddPending(name, rec)
			}
			return nil
		}

		return e.runDirective(line.Entry, line.Operands, line.Pos, &sink{seg: seg})
	}

	if e.active != Text && e.active != KText {
		e.diags.Add(diag.New(line.Pos, diag.Semantic, "instructions not permitted outside a text segment"))
		return nil
	}

	size := sizeOfCore(line.Entry, line.Operands)
	if op.Type == token.Pseudo {
		size = sizeOfPseudo(line.Entry, line.Operands)
	}
	if size > 0 && addr+size-1 > seg.limit() {
		e.diags.Add(diag.New(line.Pos, diag.Resource, "%s at %#x overflows segment %s", op.Name, addr, SegmentName(e.active)))
		return nil
	}

	lop := labelOperand(line.Operands)
	if lop == nil {
		words, err := buildWords(line.Entry, line.Operands, addr, 0, false)
		if err != nil {
			e.diags.Add(diag.New(line.Pos, diag.Semantic, "%s", err))
			return nil
		}
		return e.writeWords(&sink{seg: seg}, words)
	}

	sym := e.symbols.Reference(lop.Name)
	if sym.Status != symtab.Undefined {
		labelVal := e.segs[sym.Segment].base() + sym.Offset
		words, err := buildWords(line.Entry, line.Operands, addr, labelVal, true)
		if err != nil {
			e.diags.Add(diag.New(line.Pos, diag.Semantic, "%s", err))
			return nil
		}
		return e.writeWords(&sink{seg: seg}, words)
	}

	// Forward reference: the size is already known (I3), so reserve the
	// span now and defer the actual encoding to the terminal pass. Offset
	// is recorded relative to the segment base, matching symtab Entry's
	// convention (and LookupSymbol's contract); the base is re-added
	// wherever a recorded offset turns back into an address.
	seg.reserve(size)
	e.symbols.AddPending(lop.Name, &Record{
		Entry:    line.Entry,
		Operands: line.Operands,
		Segment:  e.active,
		Offset:   addr - seg.base(),
		Pos:      line.Pos,
		Size:     size,
	})
	return nil
}

func (e *Encoder) defineLabel(name string, pos token.Position) {
	seg := e.segs[e.active]
	_, dup := e.symbols.Define(name, e.active, seg.Offset-seg.base())
	if dup {
		e.diags.Add(diag.New(pos, diag.Symbolic, "redefinition of label %q", name))
	}
}

func (e *Encoder) writeWords(snk *sink, words []uint32) error {
	for _, w := range words {
		snk.put(wordBytes(w))
	}
	return nil
}

// ResolvePending runs the terminal resolution pass (§4.6): every symbol
// still Undefined after the layout pass fails each of its pending
// occurrences; every Defined (or Doubly, which keeps its first binding,
// per I1) symbol re-encodes each pending occurrence at its recorded
// (segment, offset), patching in place rather than re-scanning.
func (e *Encoder) ResolvePending() []*diag.Error {
	var errs []*diag.Error
	for _, sym := range e.symbols.DeclaredOrder() {
		if sym.Status == symtab.Undefined {
			for _, rec := range sym.Pending {
				errs = append(errs, diag.New(rec.Pos, diag.Symbolic, "undefined symbol %q", sym.Name))
			}
			continue
		}
		labelVal := e.segs[sym.Segment].base() + sym.Offset
		for _, rec := range sym.Pending {
			seg := e.segs[rec.Segment]
			snk := &sink{seg: seg, patch: true, addr: seg.base() + rec.Offset}
			var words []uint32
			var err error
			if rec.Entry.Op.Type == token.DirectiveType {
				err = e.runDirective(rec.Entry, rec.Operands, rec.Pos, snk)
			} else {
				words, err = buildWords(rec.Entry, rec.Operands, seg.base()+rec.Offset, labelVal, true)
				if err == nil {
					e.writeWords(snk, words)
				}
			}
			if err != nil {
				errs = append(errs, diag.New(rec.Pos, diag.Semantic, "%s", err))
			}
		}
	}
	return errs
}
