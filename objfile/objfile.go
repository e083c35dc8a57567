// Package objfile implements the bit-exact relocatable object-file format
// of spec.md §6: a short host-endianness file header, one section header
// per non-empty segment, then the segment payloads themselves. This is
// the one component built directly on encoding/binary rather than a
// third-party library — see DESIGN.md for why.
package objfile

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/tstword/mipsasm/internal/encoder"
)

const (
	magic       = "mips"
	version     = 1
	headerSize  = 8
	sectionSize = 12
)

// Segment ids as they appear in the object file (1-indexed, unlike the
// encoder's internal 0-indexed Text/Data/KText/KData constants).
const (
	fileText  = 1
	fileData  = 2
	fileKText = 3
	fileKData = 4
)

var fileSegmentID = [4]byte{encoder.Text: fileText, encoder.Data: fileData, encoder.KText: fileKText, encoder.KData: fileKData}

// Section is one segment's payload plus its object-file segment id.
type Section struct {
	SegmentID byte
	Data      []byte
}

// File is a fully decoded object file.
type File struct {
	Endianness byte // 1 = little-endian, 2 = big-endian
	Version    byte
	Sections   []Section
}

// hostEndianness reports which endianness byte this host records,
// without resorting to unsafe: it round-trips a known value through
// NativeEndian and inspects the resulting byte order.
func hostEndianness() byte {
	var buf [2]byte
	binary.NativeEndian.PutUint16(buf[:], 1)
	if buf[0] == 1 {
		return 1
	}
	return 2
}

// Write serializes every non-empty segment of enc into w, in
// Text/Data/KText/KData order.
func Write(w io.Writer, enc *encoder.Encoder) error {
	var sections []Section
	for _, id := range [4]int{encoder.Text, encoder.Data, encoder.KText, encoder.KData} {
		bytes, _, size := enc.Segment(id)
		if size == 0 {
			continue
		}
		sections = append(sections, Section{SegmentID: fileSegmentID[id], Data: bytes[:size]})
	}

	header := make([]byte, headerSize)
	copy(header[0:4], magic)
	header[4] = hostEndianness()
	header[5] = version
	header[6] = byte(len(sections))
	header[7] = 0
	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("objfile: write header: %w", err)
	}

	offset := uint32(headerSize + sectionSize*len(sections))
	for _, s := range sections {
		sh := make([]byte, sectionSize)
		sh[3] = s.SegmentID
		binary.NativeEndian.PutUint32(sh[4:8], offset)
		binary.NativeEndian.PutUint32(sh[8:12], uint32(len(s.Data)))
		if _, err := w.Write(sh); err != nil {
			return fmt.Errorf("objfile: write section header: %w", err)
		}
		offset += uint32(len(s.Data))
	}

	for _, s := range sections {
		if _, err := w.Write(s.Data); err != nil {
			return fmt.Errorf("objfile: write segment payload: %w", err)
		}
	}
	return nil
}

// Read parses an object file previously produced by Write.
func Read(r io.Reader) (*File, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("objfile: read: %w", err)
	}
	if len(raw) < headerSize {
		return nil, fmt.Errorf("objfile: truncated header")
	}
	if string(raw[0:4]) != magic {
		return nil, fmt.Errorf("objfile: bad magic %q", raw[0:4])
	}

	f := &File{Endianness: raw[4], Version: raw[5]}
	shnum := int(raw[6])

	type rawHeader struct {
		segID  byte
		offset uint32
		size   uint32
	}
	headers := make([]rawHeader, shnum)
	pos := headerSize
	for i := 0; i < shnum; i++ {
		if pos+sectionSize > len(raw) {
			return nil, fmt.Errorf("objfile: truncated section header %d", i)
		}
		sh := raw[pos : pos+sectionSize]
		headers[i] = rawHeader{
			segID:  sh[3],
			offset: binary.NativeEndian.Uint32(sh[4:8]),
			size:   binary.NativeEndian.Uint32(sh[8:12]),
		}
		pos += sectionSize
	}

	for _, h := range headers {
		if int(h.offset)+int(h.size) > len(raw) {
			return nil, fmt.Errorf("objfile: segment %d payload out of bounds", h.segID)
		}
		f.Sections = append(f.Sections, Section{
			SegmentID: h.segID,
			Data:      raw[h.offset : h.offset+h.size],
		})
	}
	return f, nil
}
