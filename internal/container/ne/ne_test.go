package ne

import (
	"encoding/binary"
	"testing"
)

const lfanew = 0x40

// buildNE assembles a minimal but structurally valid NE image: one
// exported entry-table slot, one code segment, and a resident name
// table naming both the module and that entry-table ordinal.
func buildNE(t *testing.T) []byte {
	t.Helper()

	const (
		entryTabOff = 0x40 // relative to lfanew
		segTabOff   = entryTabOff + 6
		resNameOff  = segTabOff + 8 // relative to lfanew
	)

	buf := make([]byte, lfanew+0x100)
	base := lfanew

	buf[base] = 'N'
	buf[base+1] = 'E'
	binary.LittleEndian.PutUint16(buf[base+0x04:], entryTabOff) // EntryTabOffset
	binary.LittleEndian.PutUint16(buf[base+0x1c:], 1)           // SegCount
	binary.LittleEndian.PutUint16(buf[base+0x1e:], 0)           // ModRefCount
	binary.LittleEndian.PutUint16(buf[base+0x22:], uint16(segTabOff))  // SegTabOffset
	binary.LittleEndian.PutUint16(buf[base+0x24:], uint16(resNameOff)) // ResourceTabOffset == ResNameTabOffset, skips resource parsing
	binary.LittleEndian.PutUint16(buf[base+0x26:], uint16(resNameOff)) // ResNameTabOffset
	binary.LittleEndian.PutUint32(buf[base+0x2c:], 0)                  // NonResNameTabOffset, 0 skips it
	binary.LittleEndian.PutUint16(buf[base+0x32:], 0)                  // AlignShift

	// Entry table: one fixed bundle referencing segment 1, exported
	// (flags bit 0 set), offset 0, terminated by a zero-length bundle.
	et := lfanew + entryTabOff
	buf[et+0] = 1    // bundle length
	buf[et+1] = 1    // bundle index => segment 1
	buf[et+2] = 0x01 // entry flags: exported
	buf[et+3] = 0x00 // offset lo
	buf[et+4] = 0x00 // offset hi
	buf[et+5] = 0x00 // terminator

	// Segment table: one 16-bit code segment, 3 bytes of code starting
	// right after the resident name table.
	code := []byte{0x90, 0x90, 0xC3} // nop; nop; ret
	codeStart := lfanew + resNameOff + 15
	st := lfanew + segTabOff
	binary.LittleEndian.PutUint16(buf[st+0:], uint16(codeStart)) // sectOff, AlignShift 0
	binary.LittleEndian.PutUint16(buf[st+2:], uint16(len(code))) // length
	binary.LittleEndian.PutUint16(buf[st+4:], 0)                 // flags: code, no reloc
	binary.LittleEndian.PutUint16(buf[st+6:], uint16(len(code))) // minAlloc
	copy(buf[codeStart:], code)

	// Resident name table: module name "MYMOD", then "Foo" for
	// entry-table ordinal 1, then the zero-length terminator.
	rn := lfanew + resNameOff
	rn += writePascal(buf, rn, "MYMOD", 0)
	rn += writePascal(buf, rn, "Foo", 1)
	buf[rn] = 0 // terminator

	return buf[:codeStart+len(code)]
}

// writePascal writes a Pascal-string name-table record (length byte,
// bytes, 2-byte ordinal) at off and returns its length in bytes.
func writePascal(buf []byte, off int, s string, ordinal uint16) int {
	buf[off] = byte(len(s))
	copy(buf[off+1:], s)
	binary.LittleEndian.PutUint16(buf[off+1+len(s):], ordinal)
	return 1 + len(s) + 2
}

func TestLoadRejectsBadSignature(t *testing.T) {
	raw := make([]byte, lfanew+2)
	_, err := Load(raw, lfanew)
	if err != ErrNotNE {
		t.Fatalf("err = %v, want ErrNotNE", err)
	}
}

func TestLoadParsesEntryTableAndSegment(t *testing.T) {
	raw := buildNE(t)
	m, err := Load(raw, lfanew)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(m.EntryTable) != 1 {
		t.Fatalf("len(EntryTable) = %d, want 1", len(m.EntryTable))
	}
	if m.EntryTable[0].Segment != 1 || m.EntryTable[0].Offset != 0 {
		t.Errorf("EntryTable[0] = %+v, want Segment 1, Offset 0", m.EntryTable[0])
	}

	region, ok := m.Arena.Get(1)
	if !ok {
		t.Fatal("segment 1 region not registered in arena")
	}
	want := []byte{0x90, 0x90, 0xC3}
	if len(region.Data) != len(want) {
		t.Fatalf("region.Data length = %d, want %d", len(region.Data), len(want))
	}
	for i, b := range want {
		if region.Data[i] != b {
			t.Errorf("region.Data[%d] = %#x, want %#x", i, region.Data[i], b)
		}
	}
}

// TestLoadPopulatesEntryNamesFromResidentTable is a regression test:
// Entry.Name must be back-filled from the resident name table's
// ordinal-keyed records, not left blank.
func TestLoadPopulatesEntryNamesFromResidentTable(t *testing.T) {
	raw := buildNE(t)
	m, err := Load(raw, lfanew)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.Name != "MYMOD" {
		t.Errorf("Name = %q, want %q", m.Name, "MYMOD")
	}
	if len(m.EntryTable) != 1 || m.EntryTable[0].Name != "Foo" {
		t.Fatalf("EntryTable = %+v, want entry 0 named %q", m.EntryTable, "Foo")
	}
}

func TestEntryPointsIncludesExportedEntry(t *testing.T) {
	raw := buildNE(t)
	m, err := Load(raw, lfanew)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	entries := m.EntryPoints()
	if len(entries) != 1 {
		t.Fatalf("EntryPoints() = %+v, want exactly one entry", entries)
	}
	if entries[0].Region != 1 || entries[0].Offset != 0 || entries[0].Name != "Foo" || !entries[0].IsFunc {
		t.Errorf("EntryPoints()[0] = %+v, want Region 1, Offset 0, Name Foo, IsFunc true", entries[0])
	}
}

func TestResolverCarriesEntryName(t *testing.T) {
	raw := buildNE(t)
	m, err := Load(raw, lfanew)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	name, ok := m.Resolver.NameAt(1, 0)
	if !ok || name != "Foo" {
		t.Errorf("Resolver.NameAt(1, 0) = %q, %v, want %q, true", name, ok, "Foo")
	}
}
