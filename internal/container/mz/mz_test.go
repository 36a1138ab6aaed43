package mz

import (
	"encoding/binary"
	"testing"
)

// buildMZ assembles a minimal but structurally valid MZ image: a
// 32-byte header (HeaderParas=2), no relocations, and a code region
// holding exactly the given bytes (the whole file fits in one page).
func buildMZ(t *testing.T, code []byte, initCS, initIP uint16) []byte {
	t.Helper()
	const headerParas = 2
	codeStart := headerParas * 16

	buf := make([]byte, codeStart+len(code))
	binary.LittleEndian.PutUint16(buf[0x00:], 0x5A4D) // "MZ"
	binary.LittleEndian.PutUint16(buf[0x02:], uint16(len(buf)%512))
	pages := uint16(len(buf)/512 + 1)
	binary.LittleEndian.PutUint16(buf[0x04:], pages)
	binary.LittleEndian.PutUint16(buf[0x06:], 0) // no relocations
	binary.LittleEndian.PutUint16(buf[0x08:], headerParas)
	binary.LittleEndian.PutUint16(buf[0x16:], initCS)
	binary.LittleEndian.PutUint16(buf[0x14:], initIP)
	copy(buf[codeStart:], code)
	return buf
}

func TestLoadRejectsBadMagic(t *testing.T) {
	_, err := Load([]byte{0x00, 0x00, 0x00, 0x00})
	if err != ErrNotMZ {
		t.Fatalf("err = %v, want ErrNotMZ", err)
	}
}

func TestLoadParsesHeaderAndCodeRegion(t *testing.T) {
	code := []byte{0x90, 0x90, 0xC3} // nop; nop; ret
	raw := buildMZ(t, code, 0, 0)

	m, err := Load(raw)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.Header.Magic != 0x5A4D {
		t.Errorf("Magic = %#x, want 0x5a4d", m.Header.Magic)
	}

	region, ok := m.Arena.Get(RegionCode)
	if !ok {
		t.Fatal("code region not registered in arena")
	}
	if len(region.Data) != len(code) {
		t.Fatalf("region.Data length = %d, want %d", len(region.Data), len(code))
	}
	for i, b := range code {
		if region.Data[i] != b {
			t.Errorf("region.Data[%d] = %#x, want %#x", i, region.Data[i], b)
		}
	}
}

func TestEntryPointRealModeAddressing(t *testing.T) {
	raw := buildMZ(t, []byte{0xC3}, 0x0010, 0x0004)
	m, err := Load(raw)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := int(RealAddr(0x0010, 0x0004))
	if m.EntryPoint != want {
		t.Errorf("EntryPoint = %#x, want %#x", m.EntryPoint, want)
	}

	entries := m.EntryPoints()
	if len(entries) != 1 || entries[0].Offset != want || !entries[0].IsFunc {
		t.Errorf("EntryPoints() = %+v, want a single function entry at %#x", entries, want)
	}
}

func TestRealAddrWraparoundNearPSP(t *testing.T) {
	got := RealAddr(0xfff0, 0x0000)
	seg := uint32(0xfff0)
	want := seg*0x10 - 0x100000
	if got != want {
		t.Errorf("RealAddr(0xfff0, 0) = %#x, want %#x", got, want)
	}
}

func TestLoadRelocationsSeedResolverIndex(t *testing.T) {
	// One relocation entry pointing at offset 0 of the code segment,
	// plus the 4-byte relocation record appended after the header.
	const headerParas = 3 // header + reloc table fit in 3 paragraphs (48 bytes)
	relocTableOff := 28
	code := []byte{0x90, 0x90}

	buf := make([]byte, headerParas*16+len(code))
	binary.LittleEndian.PutUint16(buf[0x00:], 0x5A4D)
	binary.LittleEndian.PutUint16(buf[0x02:], uint16(len(buf)%512))
	binary.LittleEndian.PutUint16(buf[0x04:], uint16(len(buf)/512+1))
	binary.LittleEndian.PutUint16(buf[0x06:], 1) // one relocation
	binary.LittleEndian.PutUint16(buf[0x08:], headerParas)
	binary.LittleEndian.PutUint16(buf[0x18:], uint16(relocTableOff))
	binary.LittleEndian.PutUint16(buf[relocTableOff:], 0x0000)   // reloc offset word
	binary.LittleEndian.PutUint16(buf[relocTableOff+2:], 0x0000) // reloc segment
	copy(buf[headerParas*16:], code)

	m, err := Load(buf)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(m.Relocs) != 1 {
		t.Fatalf("len(Relocs) = %d, want 1", len(m.Relocs))
	}
	if _, ok := m.Resolver.RelocationAt(RegionCode, 0); !ok {
		t.Error("resolver index should carry a relocation at code offset 0")
	}
}
