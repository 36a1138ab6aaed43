package pe

import (
	"encoding/binary"
	"testing"
)

const lfanew = 0x40

// peBuilder assembles a minimal but structurally valid PE32 image one
// section at a time, filling in only the fields this adapter reads.
type peBuilder struct {
	characteristics uint16
	entryRVA        uint32
	imageBase       uint32
	dirs            []Directory
	sections        []peSection
}

type peSection struct {
	name       string
	vaddr      uint32
	chars      uint32
	data       []byte
	virtualLen uint32 // 0 means len(data)
}

func (b *peBuilder) addSection(s peSection) { b.sections = append(b.sections, s) }

func (b *peBuilder) build(t *testing.T) []byte {
	t.Helper()

	const fhOff = lfanew + 4
	const optOff = fhOff + 20
	const optSize = 96
	afterOpt := optOff + optSize
	numDirs := len(b.dirs)
	sectOff := afterOpt + numDirs*8
	headerEnd := sectOff + len(b.sections)*40

	// Lay out each section's raw data back to back after the headers,
	// 16-byte aligned, and remember the resulting file offsets.
	rawOffsets := make([]int, len(b.sections))
	cursor := (headerEnd + 15) &^ 15
	for i, s := range b.sections {
		rawOffsets[i] = cursor
		cursor += (len(s.data) + 15) &^ 15
	}

	buf := make([]byte, cursor)
	buf[lfanew] = 'P'
	buf[lfanew+1] = 'E'
	// bytes lfanew+2, lfanew+3 stay zero

	binary.LittleEndian.PutUint16(buf[fhOff:], 0x014c) // IMAGE_FILE_MACHINE_I386
	binary.LittleEndian.PutUint16(buf[fhOff+2:], uint16(len(b.sections)))
	binary.LittleEndian.PutUint16(buf[fhOff+16:], uint16(optSize+numDirs*8))
	binary.LittleEndian.PutUint16(buf[fhOff+18:], b.characteristics)

	binary.LittleEndian.PutUint16(buf[optOff:], magicPE32)
	binary.LittleEndian.PutUint32(buf[optOff+16:], b.entryRVA)
	binary.LittleEndian.PutUint32(buf[optOff+28:], b.imageBase)
	binary.LittleEndian.PutUint32(buf[optOff+32:], 0x1000)
	binary.LittleEndian.PutUint32(buf[optOff+36:], 0x200)
	binary.LittleEndian.PutUint32(buf[optOff+92:], uint32(numDirs))

	for i, d := range b.dirs {
		binary.LittleEndian.PutUint32(buf[afterOpt+i*8:], d.RVA)
		binary.LittleEndian.PutUint32(buf[afterOpt+i*8+4:], d.Size)
	}

	for i, s := range b.sections {
		e := sectOff + i*40
		copy(buf[e:e+8], s.name)
		vlen := s.virtualLen
		if vlen == 0 {
			vlen = uint32(len(s.data))
		}
		binary.LittleEndian.PutUint32(buf[e+8:], vlen)
		binary.LittleEndian.PutUint32(buf[e+12:], s.vaddr)
		binary.LittleEndian.PutUint32(buf[e+16:], uint32(len(s.data)))
		binary.LittleEndian.PutUint32(buf[e+20:], uint32(rawOffsets[i]))
		binary.LittleEndian.PutUint32(buf[e+36:], s.chars)
		copy(buf[rawOffsets[i]:], s.data)
	}

	return buf
}

func TestLoadRejectsBadSignature(t *testing.T) {
	raw := make([]byte, lfanew+4) // all-zero signature at e_lfanew
	_, err := Load(raw, lfanew)
	if err != ErrNotPE {
		t.Fatalf("err = %v, want ErrNotPE", err)
	}
}

func TestLoadParsesHeaderAndSections(t *testing.T) {
	code := []byte{0x90, 0x90, 0xC3} // nop; nop; ret
	b := &peBuilder{
		entryRVA:  0x1000,
		imageBase: 0x00400000,
	}
	b.addSection(peSection{name: ".text", vaddr: 0x1000, chars: SectionCode, data: code})
	raw := b.build(t)

	m, err := Load(raw, lfanew)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.Optional.Magic != magicPE32 {
		t.Errorf("Magic = %#x, want PE32", m.Optional.Magic)
	}
	if m.Optional.ImageBase != 0x00400000 {
		t.Errorf("ImageBase = %#x, want 0x400000", m.Optional.ImageBase)
	}
	if len(m.Sections) != 1 || m.Sections[0].Name != ".text" {
		t.Fatalf("Sections = %+v, want one .text section", m.Sections)
	}
	if !m.Sections[0].IsCode() {
		t.Error(".text section should report IsCode() true")
	}

	region, ok := m.Arena.Get(0)
	if !ok {
		t.Fatal(".text region not registered in arena")
	}
	if len(region.Data) != len(code) {
		t.Fatalf("region.Data length = %d, want %d", len(region.Data), len(code))
	}

	entries := m.EntryPoints()
	if len(entries) != 1 || entries[0].Offset != 0 || !entries[0].IsFunc {
		t.Fatalf("EntryPoints() = %+v, want a single function entry at offset 0", entries)
	}
}

func TestStripImageBaseByDefaultDistinguishesDLLFromEXE(t *testing.T) {
	const characteristicsDLL = 0x2000

	dll := &peBuilder{characteristics: characteristicsDLL}
	dll.addSection(peSection{name: ".text", vaddr: 0x1000, chars: SectionCode, data: []byte{0xC3}})
	m, err := Load(dll.build(t), lfanew)
	if err != nil {
		t.Fatalf("Load (dll): %v", err)
	}
	if !m.StripImageBaseByDefault() {
		t.Error("a DLL (IMAGE_FILE_DLL set) should strip the image base by default")
	}

	exe := &peBuilder{characteristics: 0}
	exe.addSection(peSection{name: ".text", vaddr: 0x1000, chars: SectionCode, data: []byte{0xC3}})
	m2, err := Load(exe.build(t), lfanew)
	if err != nil {
		t.Fatalf("Load (exe): %v", err)
	}
	if m2.StripImageBaseByDefault() {
		t.Error("an EXE should not strip the image base by default")
	}
}

func TestLoadParsesExportDirectory(t *testing.T) {
	const edataVA = 0x2000
	// export directory struct: only the fields the parser reads need
	// real values; the rest of the 40-byte struct stays zero.
	edata := make([]byte, 64)
	binary.LittleEndian.PutUint32(edata[16:], 5)           // base ordinal
	binary.LittleEndian.PutUint32(edata[20:], 1)           // NumberOfFunctions
	binary.LittleEndian.PutUint32(edata[24:], 1)           // NumberOfNames
	binary.LittleEndian.PutUint32(edata[28:], edataVA+40)  // AddressOfFunctions
	binary.LittleEndian.PutUint32(edata[32:], edataVA+44)  // AddressOfNames
	binary.LittleEndian.PutUint32(edata[36:], edataVA+48)  // AddressOfNameOrdinals
	binary.LittleEndian.PutUint32(edata[40:], 0x1000+1)    // Functions[0] RVA
	binary.LittleEndian.PutUint32(edata[44:], edataVA+50)  // Names[0] -> name string RVA
	binary.LittleEndian.PutUint16(edata[48:], 0)           // NameOrdinals[0]
	copy(edata[50:], "Foo\x00")

	b := &peBuilder{
		entryRVA:  0x1000,
		imageBase: 0x00400000,
		dirs:      []Directory{{RVA: edataVA, Size: uint32(len(edata))}},
	}
	b.addSection(peSection{name: ".text", vaddr: 0x1000, chars: SectionCode, data: []byte{0xC3}})
	b.addSection(peSection{name: ".edata", vaddr: edataVA, data: edata})
	raw := b.build(t)

	m, err := Load(raw, lfanew)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(m.Exports) != 1 {
		t.Fatalf("len(Exports) = %d, want 1", len(m.Exports))
	}
	got := m.Exports[0]
	if got.Ordinal != 5 || got.Name != "Foo" || got.RVA != 0x1001 {
		t.Errorf("Exports[0] = %+v, want {Ordinal:5 Name:Foo RVA:0x1001}", got)
	}
}
