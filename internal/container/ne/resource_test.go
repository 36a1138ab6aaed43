package ne

import (
	"encoding/binary"
	"testing"

	"github.com/xyproto/dismod/internal/image"
)

func TestParseResourceTableNumericIDs(t *testing.T) {
	buf := make([]byte, 32)
	binary.LittleEndian.PutUint16(buf[0:], 0) // AlignShift

	binary.LittleEndian.PutUint16(buf[2:], 0x8003) // TYPEINFO: numeric type 3
	binary.LittleEndian.PutUint16(buf[4:], 1)      // one resource

	binary.LittleEndian.PutUint16(buf[10:], 5)      // NAMEINFO: offset 5
	binary.LittleEndian.PutUint16(buf[12:], 2)      // length 2
	binary.LittleEndian.PutUint16(buf[16:], 0x8007) // numeric resource id 7

	im := image.New(buf)
	rt, err := parseResourceTable(im, 0)
	if err != nil {
		t.Fatalf("parseResourceTable: %v", err)
	}
	if len(rt.Types) != 1 {
		t.Fatalf("len(Types) = %d, want 1", len(rt.Types))
	}
	ty := rt.Types[0]
	if ty.TypeID != 0x8003 || ty.TypeName != "" {
		t.Errorf("Types[0] = {TypeID:%#x TypeName:%q}, want {0x8003, \"\"}", ty.TypeID, ty.TypeName)
	}
	if len(ty.Resources) != 1 {
		t.Fatalf("len(Resources) = %d, want 1", len(ty.Resources))
	}
	r := ty.Resources[0]
	if r.Offset != 5 || r.Length != 2 || r.ID != 0x8007 || r.Name != "" {
		t.Errorf("Resources[0] = %+v, want {Offset:5 Length:2 ID:0x8007 Name:\"\"}", r)
	}
}

func TestParseResourceTableNamedIDs(t *testing.T) {
	buf := make([]byte, 48)
	binary.LittleEndian.PutUint16(buf[0:], 0) // AlignShift

	binary.LittleEndian.PutUint16(buf[2:], 30) // TYPEINFO: type name at offset 30
	binary.LittleEndian.PutUint16(buf[4:], 1)  // one resource

	binary.LittleEndian.PutUint16(buf[16:], 40) // NAMEINFO: resource name at offset 40

	buf[30] = 3
	copy(buf[31:], "TYP")
	buf[40] = 3
	copy(buf[41:], "Res")

	im := image.New(buf)
	rt, err := parseResourceTable(im, 0)
	if err != nil {
		t.Fatalf("parseResourceTable: %v", err)
	}
	if len(rt.Types) != 1 || rt.Types[0].TypeName != "TYP" {
		t.Fatalf("Types = %+v, want one type named %q", rt.Types, "TYP")
	}
	if len(rt.Types[0].Resources) != 1 || rt.Types[0].Resources[0].Name != "Res" {
		t.Fatalf("Resources = %+v, want one resource named %q", rt.Types[0].Resources, "Res")
	}
}

func TestParseResourceTableStopsAtZeroTypeID(t *testing.T) {
	buf := make([]byte, 16)
	binary.LittleEndian.PutUint16(buf[0:], 0) // AlignShift
	// buf[2:4] stays zero: terminator right away

	im := image.New(buf)
	rt, err := parseResourceTable(im, 0)
	if err != nil {
		t.Fatalf("parseResourceTable: %v", err)
	}
	if len(rt.Types) != 0 {
		t.Errorf("Types = %+v, want none", rt.Types)
	}
}
