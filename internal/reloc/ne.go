package reloc

import (
	"encoding/binary"

	"github.com/xyproto/dismod/internal/container"
	"github.com/xyproto/dismod/internal/diag"
)

// NE fixup record reloc_type low bits.
const (
	neRelocInternal     = 0
	neRelocImportOrd    = 1
	neRelocImportName   = 2
	neRelocOSFixup      = 3
	neRelocAdditiveFlag = 0x04
)

// ParseNESegmentRelocations walks one segment's 8-byte fixup records,
// following each non-additive entry's in-segment linked list (every
// location to fix up stores the offset of the next one, terminated by
// 0xFFFF) to recover every source offset the relocation touches.
func ParseNESegmentRelocations(segData []byte, relocTable []byte, segID container.RegionID, sink diag.Sink) []container.Relocation {
	var out []container.Relocation
	for i := 0; i+8 <= len(relocTable); i += 8 {
		rec := relocTable[i : i+8]
		addrType := rec[0]
		relocType := rec[1] & 0x03
		additive := rec[1]&neRelocAdditiveFlag != 0
		firstOffset := int(binary.LittleEndian.Uint16(rec[2:4]))

		rel := container.Relocation{Size: container.FixupSize(addrType), OrdinalOrName: -1}
		switch relocType {
		case neRelocInternal:
			rel.Kind = container.TargetInternalSegment
			rel.ModuleOrSeg = int(rec[4])
			rel.OrdinalOrName = int(binary.LittleEndian.Uint16(rec[6:8]))
		case neRelocImportOrd:
			rel.Kind = container.TargetImportedOrdinal
			rel.ModuleOrSeg = int(binary.LittleEndian.Uint16(rec[4:6]))
			rel.OrdinalOrName = int(binary.LittleEndian.Uint16(rec[6:8]))
		case neRelocImportName:
			rel.Kind = container.TargetImportedName
			rel.ModuleOrSeg = int(binary.LittleEndian.Uint16(rec[4:6]))
			rel.OrdinalOrName = int(binary.LittleEndian.Uint16(rec[6:8]))
		case neRelocOSFixup:
			rel.Kind = container.TargetAbsoluteVA
			rel.ModuleOrSeg = int(binary.LittleEndian.Uint16(rec[4:6]))
			if sink != nil {
				sink.Emit(diag.Diagnostic{Kind: diag.RelocUnknownType, Region: int(segID), Offset: firstOffset})
			}
		}

		rel.SourceOffsets = chainOffsets(segData, firstOffset, additive, sink, segID)
		out = append(out, rel)
	}
	return out
}

// chainOffsets follows the linked list NE additive-bit-clear fixups
// embed directly in the segment's own bytes, guarding against cycles
// and out-of-range links so a malformed chain can't loop forever.
func chainOffsets(segData []byte, first int, additive bool, sink diag.Sink, segID container.RegionID) []int {
	if additive || first < 0 || first+2 > len(segData) {
		return []int{first}
	}
	var offs []int
	seen := make(map[int]bool)
	off := first
	for off != 0xFFFF {
		if off < 0 || off+2 > len(segData) || seen[off] {
			if sink != nil {
				sink.Emit(diag.Diagnostic{Kind: diag.RelocOutsideSection, Region: int(segID), Offset: off})
			}
			break
		}
		seen[off] = true
		offs = append(offs, off)
		off = int(binary.LittleEndian.Uint16(segData[off : off+2]))
	}
	return offs
}
