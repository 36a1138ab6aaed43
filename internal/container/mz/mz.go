// Package mz loads the MZ (DOS real-mode) executable container: a
// single header, an optional relocation table, and one code region
// running from the end of the header to the file's declared length.
package mz

import (
	"fmt"

	"github.com/xyproto/dismod/internal/container"
	"github.com/xyproto/dismod/internal/image"
	"github.com/xyproto/dismod/internal/reloc"
)

// RegionCode is the single region id every MZ module exposes.
const RegionCode container.RegionID = 0

// Header is the 28-byte MZ header (IMAGE_DOS_HEADER's common prefix).
type Header struct {
	Magic       uint16 // 00: "MZ" signature (0x5A4D)
	BytesOnLast uint16 // 02: bytes on the last page of the file
	Pages       uint16 // 04: pages in file (512-byte pages)
	Relocations uint16 // 06: number of relocation entries
	HeaderParas uint16 // 08: size of header in 16-byte paragraphs
	MinAlloc    uint16 // 0a: minimum extra paragraphs needed
	MaxAlloc    uint16 // 0c: maximum extra paragraphs needed
	InitSS      uint16 // 0e: initial (relative) SS
	InitSP      uint16 // 10: initial SP
	Checksum    uint16 // 12
	InitIP      uint16 // 14: initial IP
	InitCS      uint16 // 16: initial (relative) CS
	RelocOffset uint16 // 18: file offset of relocation table
	OverlayNo   uint16 // 1a: overlay number
}

// ErrNotMZ is returned when the image does not start with the MZ signature.
var ErrNotMZ = fmt.Errorf("mz: missing MZ signature")

func readHeader(im *image.Image) (Header, error) {
	var h Header
	magic, err := im.U16(0x00)
	if err != nil {
		return h, err
	}
	if magic != 0x5A4D {
		return h, ErrNotMZ
	}
	fields := []*uint16{
		&h.BytesOnLast, &h.Pages, &h.Relocations, &h.HeaderParas,
		&h.MinAlloc, &h.MaxAlloc, &h.InitSS, &h.InitSP, &h.Checksum,
		&h.InitIP, &h.InitCS, &h.RelocOffset, &h.OverlayNo,
	}
	h.Magic = magic
	for i, f := range fields {
		v, err := im.U16(0x02 + 2*i)
		if err != nil {
			return h, err
		}
		*f = v
	}
	return h, nil
}

// RealAddr linearizes a segment:offset pair the way real mode's
// segment arithmetic does; segments at or above 0xfff0 are relative to
// the PSP rather than the load segment, so they wrap back near zero.
func RealAddr(segment, offset uint16) uint32 {
	if segment < 0xfff0 {
		return uint32(segment)*0x10 + uint32(offset)
	}
	return uint32(segment)*0x10 + uint32(offset) - 0x100000
}

// Reloc is one MZ relocation entry: a segment:offset pair naming a
// location in the code region whose stored word is a segment value
// the loader must patch to the actual load segment.
type Reloc struct {
	Offset  uint16
	Segment uint16
}

// Module is a loaded MZ executable: its header, code region, and
// relocation entries, ready for the scanner.
type Module struct {
	Header     Header
	Arena      *container.Arena
	Resolver   *reloc.Index
	Relocs     []Reloc
	EntryPoint int // offset within RegionCode
}

// Load parses an MZ image: the header, the relocation table, and the
// code region spanning from the end of the header to the declared
// file length (bytes beyond the on-disk length up to MinAlloc read as
// implicit zero, the paragraphs requested by e_minalloc).
func Load(raw []byte) (*Module, error) {
	im := image.New(raw)
	h, err := readHeader(im)
	if err != nil {
		return nil, err
	}

	codeStart := int(h.HeaderParas) * 16
	length := (int(h.Pages)-1)*512 + int(h.BytesOnLast)
	if h.BytesOnLast == 0 {
		length += 512
	}
	length -= codeStart
	if length < 0 {
		length = 0
	}

	data, err := im.Slice(codeStart, min(length, im.Len()-codeStart))
	if err != nil {
		return nil, err
	}

	minAlloc := length + int(h.MinAlloc)*16
	region := container.NewRegion(RegionCode, "code", 0, codeStart, length, minAlloc, container.Bits16, data)

	arena := container.NewArena()
	arena.Add(region)

	var relocs []Reloc
	idx := reloc.NewIndex()
	relocOff := int(h.RelocOffset)
	for i := 0; i < int(h.Relocations); i++ {
		off := relocOff + i*4
		word, err := im.U16(off)
		if err != nil {
			break
		}
		seg, err := im.U16(off + 2)
		if err != nil {
			break
		}
		relocs = append(relocs, Reloc{Offset: word, Segment: seg})

		siteOff := int(RealAddr(seg, word))
		if siteOff < 0 || siteOff+2 > length {
			continue
		}
		idx.AddRelocation(RegionCode, container.Relocation{
			SourceOffsets: []int{siteOff},
			Kind:          container.TargetInternalSegment,
			ModuleOrSeg:   int(RegionCode),
			OrdinalOrName: siteOff,
			Size:          container.FixupSegmentOnly,
		})
	}

	entry := int(RealAddr(h.InitCS, h.InitIP))
	idx.AddName(RegionCode, entry, "start")

	return &Module{
		Header:     h,
		Arena:      arena,
		Resolver:   idx,
		Relocs:     relocs,
		EntryPoint: entry,
	}, nil
}

// EntryPoints returns the single program entry point, seeded as a
// function start the way read_code() marks INSTR_FUNC on it before
// the first scan.
func (m *Module) EntryPoints() []container.EntryPoint {
	return []container.EntryPoint{
		{Region: RegionCode, Offset: m.EntryPoint, Name: "start", IsFunc: true},
	}
}
