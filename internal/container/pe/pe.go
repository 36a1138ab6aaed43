// Package pe loads the PE/PE+ (32- or 64-bit Portable Executable)
// container: COFF file header, optional header (distinguished by its
// magic), data directories, section table, base relocations, and
// import thunks.
package pe

import (
	"fmt"

	"github.com/xyproto/dismod/internal/container"
	"github.com/xyproto/dismod/internal/image"
	"github.com/xyproto/dismod/internal/reloc"
)

const (
	magicPE32     = 0x10b
	magicPE32Plus = 0x20b
)

// Section flag bits (IMAGE_SCN_*) this adapter inspects.
const (
	SectionCode = 0x00000020
	SectionData = 0x00000040
)

// Directory indices into the optional header's data directory array.
const (
	DirExport      = 0
	DirImport      = 1
	DirBaseReloc   = 5
	DirResource    = 2
	DirDelayImport = 13
)

// FileHeader is the COFF file header (IMAGE_FILE_HEADER).
type FileHeader struct {
	Machine              uint16
	NumberOfSections     uint16
	TimeDateStamp        uint32
	PointerToSymbolTable uint32
	NumberOfSymbols      uint32
	SizeOfOptionalHeader uint16
	Characteristics      uint16
}

// OptionalHeader is the subset of the 32/64-bit optional header this
// analyzer needs, normalized to one shape regardless of PE/PE+.
type OptionalHeader struct {
	Magic              uint16
	AddressOfEntry     uint32
	ImageBase          uint64
	SectionAlignment   uint32
	FileAlignment      uint32
	SizeOfImage        uint32
	SizeOfHeaders      uint32
	DllCharacteristics uint16
	NumberOfRvaAndSizes uint32
}

// Directory is one data directory slot: an RVA + size pair.
type Directory struct {
	RVA  uint32
	Size uint32
}

// Section is one section header (IMAGE_SECTION_HEADER).
type Section struct {
	Name            string
	VirtualSize     uint32
	VirtualAddress  uint32
	SizeOfRawData   uint32
	PointerToRawData uint32
	Characteristics uint32
}

// ErrBadMagic is returned for an optional-header magic other than
// 0x10b (PE32) or 0x20b (PE32+).
type ErrBadMagic struct{ Magic uint16 }

func (e *ErrBadMagic) Error() string { return fmt.Sprintf("pe: unknown optional header magic 0x%x", e.Magic) }

// ErrNotPE is returned when the signature at e_lfanew isn't "PE\0\0".
var ErrNotPE = fmt.Errorf("pe: missing PE signature")

// Module is a loaded PE/PE+ image.
type Module struct {
	FileHeader FileHeader
	Optional   OptionalHeader
	Dirs       []Directory
	Sections   []Section
	Imports    []reloc.ImportThunk
	Exports    []Export
	Resources  *ResourceNode
	Arena      *container.Arena
	Resolver   *reloc.Index

	raw []byte
}

// Load parses a PE image starting at the MZ stub's e_lfanew offset.
// Every region's LoadAddr is the base-applied VA (ImageBase plus the
// section RVA); whether the base is subtracted again for display is
// decided at render time (see StripImageBaseByDefault).
func Load(raw []byte, lfanew int) (*Module, error) {
	im := image.New(raw)
	sig, err := im.U32(lfanew)
	if err != nil {
		return nil, err
	}
	if sig != 0x00004550 {
		return nil, ErrNotPE
	}

	fhOff := lfanew + 4
	var fh FileHeader
	fh.Machine, _ = im.U16(fhOff)
	fh.NumberOfSections, _ = im.U16(fhOff + 2)
	fh.TimeDateStamp, _ = im.U32(fhOff + 4)
	fh.PointerToSymbolTable, _ = im.U32(fhOff + 8)
	fh.NumberOfSymbols, _ = im.U32(fhOff + 12)
	fh.SizeOfOptionalHeader, _ = im.U16(fhOff + 16)
	fh.Characteristics, _ = im.U16(fhOff + 18)

	optOff := fhOff + 20
	magic, err := im.U16(optOff)
	if err != nil {
		return nil, err
	}

	var opt OptionalHeader
	opt.Magic = magic
	var afterOpt int
	switch magic {
	case magicPE32:
		opt.AddressOfEntry, _ = im.U32(optOff + 16)
		base32, _ := im.U32(optOff + 28)
		opt.ImageBase = uint64(base32)
		opt.SectionAlignment, _ = im.U32(optOff + 32)
		opt.FileAlignment, _ = im.U32(optOff + 36)
		opt.SizeOfImage, _ = im.U32(optOff + 56)
		opt.SizeOfHeaders, _ = im.U32(optOff + 60)
		opt.DllCharacteristics, _ = im.U16(optOff + 70)
		opt.NumberOfRvaAndSizes, _ = im.U32(optOff + 92)
		afterOpt = optOff + 96
	case magicPE32Plus:
		opt.AddressOfEntry, _ = im.U32(optOff + 16)
		opt.ImageBase, _ = im.U64(optOff + 24)
		opt.SectionAlignment, _ = im.U32(optOff + 32)
		opt.FileAlignment, _ = im.U32(optOff + 36)
		opt.SizeOfImage, _ = im.U32(optOff + 56)
		opt.SizeOfHeaders, _ = im.U32(optOff + 60)
		opt.DllCharacteristics, _ = im.U16(optOff + 70)
		opt.NumberOfRvaAndSizes, _ = im.U32(optOff + 108)
		afterOpt = optOff + 112
	default:
		return nil, &ErrBadMagic{Magic: magic}
	}

	m := &Module{FileHeader: fh, Optional: opt, raw: raw, Arena: container.NewArena(), Resolver: reloc.NewIndex()}

	for i := 0; i < int(opt.NumberOfRvaAndSizes); i++ {
		rva, _ := im.U32(afterOpt + i*8)
		size, _ := im.U32(afterOpt + i*8 + 4)
		m.Dirs = append(m.Dirs, Directory{RVA: rva, Size: size})
	}

	sectOff := fhOff + int(fh.SizeOfOptionalHeader) + 20
	for i := 0; i < int(fh.NumberOfSections); i++ {
		e := sectOff + i*40
		nameBytes, _ := im.Slice(e, 8)
		name := string(trimNulBytes(nameBytes))
		vsize, _ := im.U32(e + 8)
		vaddr, _ := im.U32(e + 12)
		rawSize, _ := im.U32(e + 16)
		rawPtr, _ := im.U32(e + 20)
		chars, _ := im.U32(e + 36)

		sec := Section{Name: name, VirtualSize: vsize, VirtualAddress: vaddr, SizeOfRawData: rawSize, PointerToRawData: rawPtr, Characteristics: chars}
		m.Sections = append(m.Sections, sec)

		minAlloc := int(vsize)
		if minAlloc == 0 {
			minAlloc = int(rawSize)
		}
		data, _ := im.Slice(int(rawPtr), min(int(rawSize), im.Len()-int(rawPtr)))
		bits := container.Bits32
		if magic == magicPE32Plus {
			bits = container.Bits64
		}
		region := container.NewRegion(container.RegionID(i), name, opt.ImageBase+uint64(vaddr), int(rawPtr), int(rawSize), minAlloc, bits, data)
		region.ImageBased = true
		m.Arena.Add(region)
	}

	if len(m.Dirs) > DirBaseReloc && m.Dirs[DirBaseReloc].Size > 0 {
		dir := m.Dirs[DirBaseReloc]
		if fileOff, ok := m.rvaToFileOffset(dir.RVA); ok {
			relocs := reloc.ParsePEBaseRelocations(raw, uint32(fileOff), dir.Size, m.rvaLookup, nil)
			m.attachBaseRelocations(relocs)
		}
	}

	bits64 := magic == magicPE32Plus
	if len(m.Dirs) > DirImport && m.Dirs[DirImport].Size > 0 {
		if fileOff, ok := m.rvaToFileOffset(m.Dirs[DirImport].RVA); ok {
			thunks := reloc.ParsePEImportThunks(raw, uint32(fileOff), m.rvaToFileOffset, m.cstringAt, bits64)
			m.Imports = append(m.Imports, thunks...)
			m.attachImportThunks(thunks)
		}
	}
	if len(m.Dirs) > DirDelayImport && m.Dirs[DirDelayImport].Size > 0 {
		if fileOff, ok := m.rvaToFileOffset(m.Dirs[DirDelayImport].RVA); ok {
			thunks := reloc.ParsePEDelayImportThunks(raw, uint32(fileOff), m.rvaToFileOffset, m.cstringAt, bits64)
			m.Imports = append(m.Imports, thunks...)
			m.attachImportThunks(thunks)
		}
	}
	if len(m.Dirs) > DirResource && m.Dirs[DirResource].Size > 0 {
		if fileOff, ok := m.rvaToFileOffset(m.Dirs[DirResource].RVA); ok {
			m.Resources, _ = parseResourceDirectory(im, fileOff, fileOff)
		}
	}
	if len(m.Dirs) > DirExport && m.Dirs[DirExport].Size > 0 {
		if fileOff, ok := m.rvaToFileOffset(m.Dirs[DirExport].RVA); ok {
			m.Exports = m.parseExportDirectory(fileOff)
		}
	}

	return m, nil
}

// attachImportThunks registers every resolved import (regular or
// delay-load) as both a symbolic name and a relocation entry at its
// IAT slot, so an indirect call/jmp through that slot resolves to the
// imported name the way a HIGHLOW relocation resolves to a segment.
func (m *Module) attachImportThunks(thunks []reloc.ImportThunk) {
	for _, th := range thunks {
		region, off, ok := m.fileOffsetToRegionOffset(th.IATOffset)
		if !ok {
			continue
		}
		name := th.Name
		if name == "" {
			name = fmt.Sprintf("%s.#%d", th.Module, th.Ordinal)
		} else {
			name = th.Module + "." + name
		}
		m.Resolver.AddName(region, off, name)
		m.Resolver.AddRelocation(region, container.Relocation{
			SourceOffsets: []int{off},
			Kind:          container.TargetImportedName,
			Name:          name,
			Label:         name,
			OrdinalOrName: th.Ordinal,
			Size:          container.FixupPointer32,
		})
	}
}

// rvaLookup implements reloc.RVALookup: it maps an RVA to the region
// owning it and its whole-image file offset.
func (m *Module) rvaLookup(rva uint32) (container.RegionID, int, bool) {
	return m.fileOffsetToRegionOffset2(rva)
}

func (m *Module) fileOffsetToRegionOffset2(rva uint32) (container.RegionID, int, bool) {
	for i, sec := range m.Sections {
		if rva >= sec.VirtualAddress && rva < sec.VirtualAddress+max(sec.VirtualSize, sec.SizeOfRawData) {
			fileOff := int(sec.PointerToRawData) + int(rva-sec.VirtualAddress)
			return container.RegionID(i), fileOff, true
		}
	}
	return 0, 0, false
}

// rvaToFileOffset translates an RVA to a byte offset within the whole
// image (as opposed to within one region's Data slice).
func (m *Module) rvaToFileOffset(rva uint32) (int, bool) {
	for _, sec := range m.Sections {
		if rva >= sec.VirtualAddress && rva < sec.VirtualAddress+max(sec.VirtualSize, sec.SizeOfRawData) {
			return int(sec.PointerToRawData) + int(rva-sec.VirtualAddress), true
		}
	}
	return 0, false
}

// rvaToRegionOffset translates an RVA all the way to a region-local,
// zero-based offset (unlike fileOffsetToRegionOffset2, whose second
// return value is a whole-image file offset meant for direct byte
// reads, not for indexing into a Region's own Data slice).
func (m *Module) rvaToRegionOffset(rva int) (container.RegionID, int, bool) {
	_, fileOff, ok := m.fileOffsetToRegionOffset2(uint32(rva))
	if !ok {
		return 0, 0, false
	}
	return m.fileOffsetToRegionOffset(fileOff)
}

// fileOffsetToRegionOffset maps a whole-image file offset (as produced
// by rvaToFileOffset) back to a region id + in-region offset.
func (m *Module) fileOffsetToRegionOffset(fileOff int) (container.RegionID, int, bool) {
	for i, sec := range m.Sections {
		if fileOff >= int(sec.PointerToRawData) && fileOff < int(sec.PointerToRawData)+int(sec.SizeOfRawData) {
			return container.RegionID(i), fileOff - int(sec.PointerToRawData), true
		}
	}
	return 0, 0, false
}

func (m *Module) attachBaseRelocations(relocs []container.Relocation) {
	for _, r := range relocs {
		region, off, ok := m.fileOffsetToRegionOffset(r.SourceOffsets[0])
		if !ok {
			continue
		}
		r.SourceOffsets = []int{off}
		m.Resolver.AddRelocation(region, r)
	}
}

func (m *Module) cstringAt(fileOffset int) string {
	im := image.New(m.raw)
	s, _ := im.CString(fileOffset)
	return s
}

// EntryPoints returns the program entry point plus every exported
// function's address, so the scanner reaches code reachable only
// through the export table and not through the program's own flow.
func (m *Module) EntryPoints() []container.EntryPoint {
	var out []container.EntryPoint
	if region, off, ok := m.rvaToRegionOffset(int(m.Optional.AddressOfEntry)); ok {
		out = append(out, container.EntryPoint{Region: region, Offset: off, Name: "entry point", IsFunc: true})
	}
	for _, e := range m.Exports {
		region, off, ok := m.rvaToRegionOffset(int(e.RVA))
		if !ok {
			continue
		}
		out = append(out, container.EntryPoint{Region: region, Offset: off, Name: e.Name, IsFunc: true})
	}
	return out
}

// IsCode reports whether a section carries the executable-code flag.
func (s Section) IsCode() bool { return s.Characteristics&SectionCode != 0 }

// IsData reports whether a section carries the initialized-data flag.
func (s Section) IsData() bool { return s.Characteristics&SectionData != 0 }

// StripImageBaseByDefault implements the default from the relative-
// addressing toggle: strip (display section-relative addresses) for
// DLLs, keep the absolute VA for EXEs.
func (m *Module) StripImageBaseByDefault() bool {
	const characteristicsDLL = 0x2000
	return m.FileHeader.Characteristics&characteristicsDLL != 0
}

func trimNulBytes(b []byte) []byte {
	for i, c := range b {
		if c == 0 {
			return b[:i]
		}
	}
	return b
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func max(a, b uint32) uint32 {
	if a > b {
		return a
	}
	return b
}
