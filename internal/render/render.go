// Package render prints loaded modules and scan results as text:
// header dumps, segment/section/import/resource tables (via
// tablewriter), and instruction listings (via xfmt).
package render

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/xyproto/dismod/internal/container"
	"github.com/xyproto/dismod/internal/container/mz"
	"github.com/xyproto/dismod/internal/container/ne"
	"github.com/xyproto/dismod/internal/container/pe"
)

func newTable(w io.Writer, header []string) *tablewriter.Table {
	t := tablewriter.NewWriter(w)
	t.SetHeader(header)
	t.SetAutoFormatHeaders(false)
	t.SetBorder(false)
	return t
}

// MZHeader prints an MZ header as a two-column field/value table.
func MZHeader(w io.Writer, h mz.Header) {
	t := newTable(w, []string{"field", "value"})
	t.Append([]string{"pages", fmt.Sprintf("%d", h.Pages)})
	t.Append([]string{"bytes on last page", fmt.Sprintf("%d", h.BytesOnLast)})
	t.Append([]string{"relocations", fmt.Sprintf("%d", h.Relocations)})
	t.Append([]string{"header paragraphs", fmt.Sprintf("%d", h.HeaderParas)})
	t.Append([]string{"min alloc", fmt.Sprintf("%d", h.MinAlloc)})
	t.Append([]string{"max alloc", fmt.Sprintf("%d", h.MaxAlloc)})
	t.Append([]string{"initial ss:sp", fmt.Sprintf("%04x:%04x", h.InitSS, h.InitSP)})
	t.Append([]string{"initial cs:ip", fmt.Sprintf("%04x:%04x", h.InitCS, h.InitIP)})
	t.Append([]string{"relocation table offset", fmt.Sprintf("0x%x", h.RelocOffset)})
	t.Append([]string{"overlay number", fmt.Sprintf("%d", h.OverlayNo)})
	t.Render()
}

// NEHeader prints an NE header summary.
func NEHeader(w io.Writer, m *ne.Module) {
	t := newTable(w, []string{"field", "value"})
	t.Append([]string{"module name", m.Name})
	t.Append([]string{"description", m.Description})
	t.Append([]string{"segments", fmt.Sprintf("%d", m.Header.SegCount)})
	t.Append([]string{"modules referenced", fmt.Sprintf("%d", m.Header.ModRefCount)})
	t.Append([]string{"initial cs:ip", fmt.Sprintf("%04x:%04x", m.Header.InitCS, m.Header.InitIP)})
	t.Append([]string{"initial ss:sp", fmt.Sprintf("%04x:%04x", m.Header.InitSS, m.Header.InitSP)})
	t.Append([]string{"heap size", fmt.Sprintf("%d", m.Header.HeapSize)})
	t.Append([]string{"stack size", fmt.Sprintf("%d", m.Header.StackSize)})
	t.Append([]string{"alignment shift", fmt.Sprintf("%d", m.Header.AlignShift)})
	t.Render()
}

// NESegments prints the segment table: number, flags, bitness, minimum allocation, relocation count.
func NESegments(w io.Writer, m *ne.Module) {
	t := newTable(w, []string{"seg", "flags", "bits", "min alloc", "relocs"})
	for i, seg := range m.Segments {
		t.Append([]string{
			fmt.Sprintf("%d", i+1),
			segFlagString(seg.Flags),
			fmt.Sprintf("%d", bitsOf(seg.Flags)),
			fmt.Sprintf("%d", seg.MinAlloc),
			fmt.Sprintf("%d", len(seg.Relocs)),
		})
	}
	t.Render()
}

func bitsOf(flags uint16) int {
	if flags&ne.SegFlagBig != 0 {
		return 32
	}
	return 16
}

func segFlagString(flags uint16) string {
	s := "code"
	if flags&ne.SegFlagData != 0 {
		s = "data"
	}
	if flags&ne.SegFlagHasReloc != 0 {
		s += ",reloc"
	}
	return s
}

// NEImports prints the module reference table.
func NEImports(w io.Writer, m *ne.Module) {
	t := newTable(w, []string{"#", "module"})
	for i, imp := range m.ImportTable {
		t.Append([]string{fmt.Sprintf("%d", i+1), imp.Name})
	}
	t.Render()
}

// NEEntries prints the entry table: ordinal, segment, offset, name.
func NEEntries(w io.Writer, m *ne.Module) {
	t := newTable(w, []string{"ordinal", "segment", "offset", "name"})
	for i, e := range m.EntryTable {
		if e.Segment == 0 {
			continue
		}
		t.Append([]string{
			fmt.Sprintf("%d", i+1),
			fmt.Sprintf("%d", e.Segment),
			fmt.Sprintf("0x%x", e.Offset),
			e.Name,
		})
	}
	t.Render()
}

// PEHeader prints the COFF/optional header summary.
func PEHeader(w io.Writer, m *pe.Module) {
	bits := "PE32"
	if m.Optional.Magic == 0x20b {
		bits = "PE32+"
	}
	t := newTable(w, []string{"field", "value"})
	t.Append([]string{"format", bits})
	t.Append([]string{"machine", fmt.Sprintf("0x%x", m.FileHeader.Machine)})
	t.Append([]string{"sections", fmt.Sprintf("%d", m.FileHeader.NumberOfSections)})
	t.Append([]string{"entry point rva", fmt.Sprintf("0x%x", m.Optional.AddressOfEntry)})
	t.Append([]string{"image base", fmt.Sprintf("0x%x", m.Optional.ImageBase)})
	t.Append([]string{"size of image", fmt.Sprintf("0x%x", m.Optional.SizeOfImage)})
	t.Append([]string{"characteristics", fmt.Sprintf("0x%x", m.FileHeader.Characteristics)})
	t.Append([]string{"dll characteristics", fmt.Sprintf("0x%x", m.Optional.DllCharacteristics)})
	t.Render()
}

// PESections prints the section table.
func PESections(w io.Writer, m *pe.Module) {
	t := newTable(w, []string{"name", "virtual addr", "virtual size", "raw size", "flags"})
	for _, s := range m.Sections {
		flags := ""
		if s.IsCode() {
			flags += "code "
		}
		if s.IsData() {
			flags += "data"
		}
		t.Append([]string{
			s.Name,
			fmt.Sprintf("0x%x", s.VirtualAddress),
			fmt.Sprintf("0x%x", s.VirtualSize),
			fmt.Sprintf("0x%x", s.SizeOfRawData),
			flags,
		})
	}
	t.Render()
}

// PEImports prints the resolved import thunks (regular and delay-load combined).
func PEImports(w io.Writer, m *pe.Module) {
	t := newTable(w, []string{"module", "ordinal/name", "iat offset"})
	for _, imp := range m.Imports {
		label := imp.Name
		if imp.Ordinal >= 0 {
			label = fmt.Sprintf("#%d", imp.Ordinal)
		}
		t.Append([]string{imp.Module, label, fmt.Sprintf("0x%x", imp.IATOffset)})
	}
	t.Render()
}

// regionName returns a human label for a code region, used by listing
// output when no symbolic name has been resolved for it.
func regionName(arena *container.Arena, id container.RegionID) string {
	if r, ok := arena.Get(id); ok && r.Name != "" {
		return r.Name
	}
	return fmt.Sprintf("region %d", id)
}
