// Package ne loads the NE (16-bit Windows/OS2 New Executable) container:
// a header, a segment table with per-segment relocation chains, an
// entry table, resident/non-resident name tables, an import module
// table, and (see resource.go) a resource directory.
package ne

import (
	"fmt"

	"github.com/xyproto/dismod/internal/container"
	"github.com/xyproto/dismod/internal/image"
	"github.com/xyproto/dismod/internal/reloc"
)

// Header is the NE executable header.
type Header struct {
	LinkerVer, LinkerRev byte
	EntryTabOffset       uint16
	EntryTabLength       uint16
	Checksum             uint32
	Flags                uint16
	AutoDataSeg          byte
	HeapSize             uint16
	StackSize            uint16
	InitIP               uint16
	InitCS               uint16
	InitSP               uint16
	InitSS               uint16
	SegCount             uint16
	ModRefCount          uint16
	NonResNameTabLen     uint16
	SegTabOffset         uint16
	ResourceTabOffset    uint16
	ResNameTabOffset     uint16
	ModRefTabOffset      uint16
	ImportNameTabOffset  uint16
	NonResNameTabOffset  uint32
	MovableEntryCount    uint16
	AlignShift           uint16
	ResSegCount          uint16
	TargetOS             byte
	OtherFlags           byte
	ReturnThunksOffset   uint16
	SegRefBytesOffset    uint16
	SwapArea             uint16
	ExpectVerMinor       byte
	ExpectVerMajor       byte
}

// Segment flag bits (relative to the start of the segment table entry).
const (
	SegFlagData       = 0x0001
	SegFlagHasReloc   = 0x0100
	SegFlagBig        = 0x2000 // 32-bit segment
)

// Entry is one slot of the entry table: a named or anonymous export.
type Entry struct {
	Flags   byte
	Segment byte // 0xFE = absolute value, 0 = unused ordinal slot
	Offset  uint16
	Name    string
}

// ImportModule is one entry of the import module name table.
type ImportModule struct {
	Name string
}

// ErrNotNE is returned when the image lacks the "NE" signature at the
// offset named by the MZ stub's e_lfanew field.
var ErrNotNE = fmt.Errorf("ne: missing NE signature")

func readHeader(im *image.Image, base int) (Header, error) {
	var h Header
	magic, err := im.U16(base)
	if err != nil {
		return h, err
	}
	if magic != 0x454E {
		return h, ErrNotNE
	}
	b := func(off int) byte { v, _ := im.U8(base + off); return v }
	w := func(off int) uint16 { v, _ := im.U16(base + off); return v }
	d := func(off int) uint32 { v, _ := im.U32(base + off); return v }

	h.LinkerVer, h.LinkerRev = b(0x02), b(0x03)
	h.EntryTabOffset, h.EntryTabLength = w(0x04), w(0x06)
	h.Checksum = d(0x08)
	h.Flags = w(0x0c)
	h.AutoDataSeg = b(0x0e)
	h.HeapSize, h.StackSize = w(0x10), w(0x12)
	h.InitIP, h.InitCS = w(0x14), w(0x16)
	h.InitSP, h.InitSS = w(0x18), w(0x1a)
	h.SegCount, h.ModRefCount = w(0x1c), w(0x1e)
	h.NonResNameTabLen = w(0x20)
	h.SegTabOffset, h.ResourceTabOffset = w(0x22), w(0x24)
	h.ResNameTabOffset, h.ModRefTabOffset = w(0x26), w(0x28)
	h.ImportNameTabOffset = w(0x2a)
	h.NonResNameTabOffset = d(0x2c)
	h.MovableEntryCount = w(0x30)
	h.AlignShift = w(0x32)
	h.ResSegCount = w(0x34)
	h.TargetOS, h.OtherFlags = b(0x36), b(0x37)
	h.ReturnThunksOffset, h.SegRefBytesOffset = w(0x38), w(0x3a)
	h.SwapArea = w(0x3c)
	h.ExpectVerMinor, h.ExpectVerMajor = b(0x3e), b(0x3f)
	return h, nil
}

// Segment is one NE segment: its on-disk data, relocation entries,
// and a code region wired into the shared arena once loaded.
type Segment struct {
	CS       uint16 // 1-based segment number
	Flags    uint16
	MinAlloc int
	Relocs   []container.Relocation
}

// Module is a loaded NE executable.
type Module struct {
	Header       Header
	Name         string
	Description  string
	EntryTable   []Entry
	ImportTable  []ImportModule
	Segments     []*Segment
	Resources    *ResourceTable
	Arena        *container.Arena
	Resolver     *reloc.Index
}

func bigSegment(flags uint16) container.Bitness {
	if flags&SegFlagBig != 0 {
		return container.Bits32
	}
	return container.Bits16
}

// Load parses an NE image starting at the MZ stub's e_lfanew offset.
func Load(raw []byte, lfanew int) (*Module, error) {
	im := image.New(raw)
	h, err := readHeader(im, lfanew)
	if err != nil {
		return nil, err
	}

	m := &Module{Header: h, Arena: container.NewArena(), Resolver: reloc.NewIndex()}

	m.EntryTable = readEntryTable(im, lfanew+int(h.EntryTabOffset))

	residentName, ordinalNames, _ := readNameTable(im, lfanew+int(h.ResNameTabOffset))
	m.Name = residentName
	if h.NonResNameTabOffset != 0 {
		nonResidentName, nonResidentNames, _ := readNameTable(im, int(h.NonResNameTabOffset))
		m.Description = nonResidentName
		for ord, name := range nonResidentNames {
			if _, ok := ordinalNames[ord]; !ok {
				ordinalNames[ord] = name
			}
		}
	}
	for i := range m.EntryTable {
		if name, ok := ordinalNames[uint16(i+1)]; ok {
			m.EntryTable[i].Name = name
		}
	}
	m.ImportTable = readImportTable(im, h, lfanew)
	if h.ResourceTabOffset != h.ResNameTabOffset {
		m.Resources, _ = parseResourceTable(im, lfanew+int(h.ResourceTabOffset))
	}

	segTabBase := lfanew + int(h.SegTabOffset)
	for i := 0; i < int(h.SegCount); i++ {
		entryOff := segTabBase + i*8
		sectOff, _ := im.U16(entryOff)
		length, _ := im.U16(entryOff + 2)
		flags, _ := im.U16(entryOff + 4)
		minAlloc, _ := im.U16(entryOff + 6)

		start := int(sectOff) << h.AlignShift
		segLen := int(length)
		if length == 0 {
			segLen = 0x10000
		}
		alloc := int(minAlloc)
		if minAlloc == 0 {
			alloc = 0x10000
		}

		seg := &Segment{CS: uint16(i + 1), Flags: flags, MinAlloc: alloc}
		m.Segments = append(m.Segments, seg)

		data, _ := im.Slice(start, min(segLen, im.Len()-start))
		region := container.NewRegion(container.RegionID(i+1), fmt.Sprintf("segment %d", i+1), 0, start, segLen, alloc, bigSegment(flags), data)
		m.Arena.Add(region)

		if flags&SegFlagHasReloc != 0 {
			relocTabOff := start + segLen
			count, _ := im.U16(relocTabOff)
			relocTable, _ := im.Slice(relocTabOff+2, int(count)*8)
			segRelocs := reloc.ParseNESegmentRelocations(data, relocTable, region.ID, nil)
			seg.Relocs = segRelocs
			for _, r := range segRelocs {
				m.Resolver.AddRelocation(region.ID, r)
			}
		}
	}

	for i, e := range m.EntryTable {
		if e.Name == "" || e.Segment == 0 || e.Segment == 0xFE {
			continue
		}
		m.Resolver.AddName(container.RegionID(e.Segment), int(e.Offset), e.Name)
		_ = i
	}

	return m, nil
}

// EntryPoints lists the scanner's seed set: every entry-table slot
// that carries the exported bit (flags&1) and lives in a code
// segment, plus the program entry point itself.
func (m *Module) EntryPoints() []container.EntryPoint {
	var out []container.EntryPoint
	for _, e := range m.EntryTable {
		if e.Segment == 0 || e.Segment == 0xFE {
			continue
		}
		seg := m.segment(e.Segment)
		if seg == nil || seg.Flags&SegFlagData != 0 {
			continue
		}
		if e.Flags&1 == 0 {
			continue
		}
		out = append(out, container.EntryPoint{Region: container.RegionID(e.Segment), Offset: int(e.Offset), Name: e.Name, IsFunc: true})
	}
	if m.Header.InitCS != 0 || m.Header.InitIP != 0 {
		out = append(out, container.EntryPoint{Region: container.RegionID(m.Header.InitCS), Offset: int(m.Header.InitIP), Name: "start", IsFunc: true})
	}
	return out
}

func (m *Module) segment(cs byte) *Segment {
	idx := int(cs) - 1
	if idx < 0 || idx >= len(m.Segments) {
		return nil
	}
	return m.Segments[idx]
}

// readEntryTable decodes the variable-length bundle format: a length
// byte of 0 ends the table; a bundle with index byte 0x00 is a gap of
// `length` unused ordinals; index 0xFF is a movable bundle (6 bytes
// per entry, with an embedded INT 3Fh CD pattern); anything else is a
// fixed bundle referencing that segment number directly (3 bytes per
// entry).
func readEntryTable(im *image.Image, base int) []Entry {
	var out []Entry
	cursor := base
	for {
		length, err := im.U8(cursor)
		if err != nil || length == 0 {
			break
		}
		cursor++
		index, err := im.U8(cursor)
		if err != nil {
			break
		}
		cursor++
		for i := 0; i < int(length); i++ {
			switch index {
			case 0x00:
				out = append(out, Entry{})
			case 0xFF:
				flags, _ := im.U8(cursor)
				segment, _ := im.U8(cursor + 3)
				offset, _ := im.U16(cursor + 4)
				out = append(out, Entry{Flags: flags, Segment: segment, Offset: offset})
				cursor += 6
			default:
				flags, _ := im.U8(cursor)
				offset, _ := im.U16(cursor + 1)
				out = append(out, Entry{Flags: flags, Segment: index, Offset: offset})
				cursor += 3
			}
		}
	}
	return out
}

// readNameTable reads a resident or non-resident name table: a
// sequence of Pascal strings each followed by a 2-byte entry-table
// ordinal, terminated by a zero-length string. The first string is
// the module's own name/description, returned separately; every
// string after that names an ordinal slot in the entry table, keyed
// by ordinal in the returned map.
func readNameTable(im *image.Image, base int) (string, map[uint16]string, error) {
	first, n, err := im.PascalString(base)
	if err != nil {
		return "", nil, err
	}
	names := make(map[uint16]string)
	cursor := base + n + 2 // skip the module-name entry's trailing ordinal word
	for {
		name, consumed, err := im.PascalString(cursor)
		if err != nil || consumed <= 1 {
			break
		}
		ord, err := im.U16(cursor + consumed)
		if err != nil {
			break
		}
		names[ord] = name
		cursor += consumed + 2
	}
	return first, names, nil
}

func readImportTable(im *image.Image, h Header, lfanew int) []ImportModule {
	var out []ImportModule
	modTabBase := lfanew + int(h.ModRefTabOffset)
	nameTabBase := lfanew + int(h.ImportNameTabOffset)
	for i := 0; i < int(h.ModRefCount); i++ {
		relOff, err := im.U16(modTabBase + i*2)
		if err != nil {
			break
		}
		name, _, err := im.PascalString(nameTabBase + int(relOff))
		if err != nil {
			continue
		}
		out = append(out, ImportModule{Name: name})
	}
	return out
}
