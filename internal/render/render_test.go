package render

import (
	"strings"
	"testing"

	"github.com/xyproto/dismod/internal/container/mz"
	"github.com/xyproto/dismod/internal/container/ne"
	"github.com/xyproto/dismod/internal/container/pe"
	"github.com/xyproto/dismod/internal/reloc"
)

func TestMZHeaderPrintsFields(t *testing.T) {
	var buf strings.Builder
	MZHeader(&buf, mz.Header{Pages: 3, HeaderParas: 2, InitCS: 0x10, InitIP: 0x20})
	out := buf.String()
	for _, want := range []string{"pages", "3", "initial cs:ip", "0010:0020"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestNEHeaderPrintsNameAndDescription(t *testing.T) {
	m := &ne.Module{Name: "MYMOD", Description: "a test module"}
	var buf strings.Builder
	NEHeader(&buf, m)
	out := buf.String()
	for _, want := range []string{"MYMOD", "a test module"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestNEEntriesSkipsUnusedOrdinalsAndShowsName(t *testing.T) {
	m := &ne.Module{EntryTable: []ne.Entry{
		{}, // unused ordinal slot, Segment == 0
		{Segment: 1, Offset: 0x40, Name: "Foo"},
	}}
	var buf strings.Builder
	NEEntries(&buf, m)
	out := buf.String()
	if strings.Count(out, "Foo") != 1 {
		t.Errorf("expected exactly one row naming the exported entry, got:\n%s", out)
	}
	if !strings.Contains(out, "0x40") {
		t.Errorf("output missing exported entry offset:\n%s", out)
	}
}

func TestNESegmentsShowsDataAndRelocFlags(t *testing.T) {
	m := &ne.Module{Segments: []*ne.Segment{
		{Flags: ne.SegFlagData | ne.SegFlagHasReloc, MinAlloc: 0x1000},
	}}
	var buf strings.Builder
	NESegments(&buf, m)
	out := buf.String()
	if !strings.Contains(out, "data,reloc") {
		t.Errorf("output missing %q:\n%s", "data,reloc", out)
	}
}

func TestPEHeaderDistinguishesPE32Plus(t *testing.T) {
	m := &pe.Module{Optional: pe.OptionalHeader{Magic: 0x20b, ImageBase: 0x140000000}}
	var buf strings.Builder
	PEHeader(&buf, m)
	out := buf.String()
	if !strings.Contains(out, "PE32+") {
		t.Errorf("output missing %q:\n%s", "PE32+", out)
	}
}

func TestPESectionsShowsCodeAndDataFlags(t *testing.T) {
	m := &pe.Module{Sections: []pe.Section{
		{Name: ".text", Characteristics: pe.SectionCode},
		{Name: ".data", Characteristics: pe.SectionData},
	}}
	var buf strings.Builder
	PESections(&buf, m)
	out := buf.String()
	if !strings.Contains(out, ".text") || !strings.Contains(out, "code") {
		t.Errorf("output missing .text/code:\n%s", out)
	}
	if !strings.Contains(out, ".data") {
		t.Errorf("output missing .data:\n%s", out)
	}
}

func TestPEImportsLabelsOrdinalVsName(t *testing.T) {
	m := &pe.Module{Imports: []reloc.ImportThunk{
		{Module: "kernel32.dll", Ordinal: 42, IATOffset: 0x2000},
		{Module: "user32.dll", Ordinal: -1, Name: "MessageBoxA", IATOffset: 0x2004},
	}}
	var buf strings.Builder
	PEImports(&buf, m)
	out := buf.String()
	if !strings.Contains(out, "#42") {
		t.Errorf("output missing ordinal label %q:\n%s", "#42", out)
	}
	if !strings.Contains(out, "MessageBoxA") {
		t.Errorf("output missing named import:\n%s", out)
	}
}
