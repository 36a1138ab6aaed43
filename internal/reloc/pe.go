package reloc

import (
	"encoding/binary"

	"github.com/xyproto/dismod/internal/container"
	"github.com/xyproto/dismod/internal/diag"
)

// PE base relocation types (IMAGE_REL_BASED_*) this parser understands;
// any other type is reported via diag.RelocUnknownType and skipped.
const (
	peRelocAbsolute = 0
	peRelocHighLow  = 3
	peRelocDir64    = 10
)

// RVALookup maps an RVA within the image to the region that owns it
// and its whole-image file offset, for both a base relocation's own
// source location and (reading the pointer found there) its target.
type RVALookup func(rva uint32) (container.RegionID, int, bool)

// ParsePEBaseRelocations walks the .reloc directory's page blocks,
// each a page RVA + block size followed by an array of 16-bit entries
// (4-bit type, 12-bit in-page offset), translating every HIGHLOW/
// DIR64 entry into a Relocation whose target is resolved by reading
// the pointer value already stored at that location in image bytes
// (valid when the image is analyzed at its preferred base, i.e. no
// relocation delta is being applied).
func ParsePEBaseRelocations(image []byte, dirOffset, dirSize uint32, lookup RVALookup, sink diag.Sink) []container.Relocation {
	var out []container.Relocation
	pos := dirOffset
	end := dirOffset + dirSize
	for pos+8 <= end && int(pos+8) <= len(image) {
		pageRVA := binary.LittleEndian.Uint32(image[pos : pos+4])
		blockSize := binary.LittleEndian.Uint32(image[pos+4 : pos+8])
		if blockSize < 8 || int(pos+blockSize) > len(image) {
			break
		}
		entries := image[pos+8 : pos+blockSize]
		for i := 0; i+2 <= len(entries); i += 2 {
			word := binary.LittleEndian.Uint16(entries[i : i+2])
			typ := word >> 12
			inPage := uint32(word & 0x0FFF)
			if typ == peRelocAbsolute {
				continue // padding entry, carries no fixup
			}
			if typ != peRelocHighLow && typ != peRelocDir64 {
				if sink != nil {
					sink.Emit(diag.Diagnostic{Kind: diag.RelocUnknownType, Offset: int(pageRVA + inPage)})
				}
				continue
			}

			_, srcOff, ok := lookup(pageRVA + inPage)
			if !ok {
				if sink != nil {
					sink.Emit(diag.Diagnostic{Kind: diag.RelocOutsideSection, Offset: int(pageRVA + inPage)})
				}
				continue
			}

			width := 4
			if typ == peRelocDir64 {
				width = 8
			}
			rel := container.Relocation{
				SourceOffsets: []int{srcOff},
				Kind:          container.TargetAbsoluteVA,
				OrdinalOrName: -1,
				Size:          container.FixupPointer32,
			}
			if ptrVA, ok := readPointer(image, srcOff, width); ok {
				if tRegion, tOff, ok := lookup(uint32(ptrVA)); ok {
					rel.Kind = container.TargetInternalSegment
					rel.ModuleOrSeg = int(tRegion)
					rel.OrdinalOrName = tOff
				}
			}
			out = append(out, rel)
		}
		pos += blockSize
	}
	return out
}

func readPointer(image []byte, off, width int) (uint64, bool) {
	if off < 0 || off+width > len(image) {
		return 0, false
	}
	if width == 8 {
		return binary.LittleEndian.Uint64(image[off : off+8]), true
	}
	return uint64(binary.LittleEndian.Uint32(image[off : off+4])), true
}

// ImportThunk is one resolved IAT slot: either an ordinal import or a
// named import, located by its RVA in the image.
type ImportThunk struct {
	IATOffset int
	Module    string
	Ordinal   int // -1 if Name is used instead
	Name      string
}

// ParsePEImportThunks walks the import directory's descriptor array
// (OriginalFirstThunk/Name/FirstThunk quintuples, zero-filled
// terminator) and each descriptor's thunk array, producing one
// ImportThunk per non-null IAT slot.
func ParsePEImportThunks(image []byte, dirOffset uint32, rvaToFileOffset func(uint32) (int, bool), cstringAt func(fileOffset int) string, bits64 bool) []ImportThunk {
	var out []ImportThunk
	pos := dirOffset
	entrySize := uint32(20)
	for int(pos+entrySize) <= len(image) {
		originalThunk := binary.LittleEndian.Uint32(image[pos : pos+4])
		nameRVA := binary.LittleEndian.Uint32(image[pos+12 : pos+16])
		firstThunk := binary.LittleEndian.Uint32(image[pos+16 : pos+20])
		if originalThunk == 0 && nameRVA == 0 && firstThunk == 0 {
			break
		}
		pos += entrySize

		nameOff, ok := rvaToFileOffset(nameRVA)
		if !ok {
			continue
		}
		module := cstringAt(nameOff)

		thunkRVA := originalThunk
		if thunkRVA == 0 {
			thunkRVA = firstThunk
		}
		thunkOff, ok := rvaToFileOffset(thunkRVA)
		if !ok {
			continue
		}
		iatOff, ok := rvaToFileOffset(firstThunk)
		if !ok {
			continue
		}

		width := 4
		if bits64 {
			width = 8
		}
		out = append(out, walkThunkArray(image, thunkOff, iatOff, module, width, bits64, rvaToFileOffset, cstringAt)...)
	}
	return out
}

func walkThunkArray(image []byte, thunkOff, iatOff int, module string, width int, bits64 bool, rvaToFileOffset func(uint32) (int, bool), cstringAt func(int) string) []ImportThunk {
	var out []ImportThunk
	for {
		if int(thunkOff+width) > len(image) {
			break
		}
		var raw uint64
		if bits64 {
			raw = binary.LittleEndian.Uint64(image[thunkOff : thunkOff+8])
		} else {
			raw = uint64(binary.LittleEndian.Uint32(image[thunkOff : thunkOff+4]))
		}
		if raw == 0 {
			break
		}
		ordFlag := uint64(1) << 31
		if bits64 {
			ordFlag = uint64(1) << 63
		}
		th := ImportThunk{IATOffset: iatOff, Module: module, Ordinal: -1}
		if raw&ordFlag != 0 {
			th.Ordinal = int(raw & 0xFFFF)
		} else {
			hintOff, ok := rvaToFileOffset(uint32(raw))
			if ok {
				th.Name = cstringAt(hintOff + 2) // skip the 2-byte hint
			}
		}
		out = append(out, th)
		thunkOff += width
		iatOff += width
	}
	return out
}

// ParsePEDelayImportThunks walks the delay-load import directory
// (32-byte IMAGE_DELAYLOAD_DESCRIPTOR entries: DllNameRVA at +4,
// ImportAddressTableRVA at +12, ImportNameTableRVA at +16), which
// names imports resolved lazily on first call rather than at load
// time but is otherwise shaped like the regular import directory.
func ParsePEDelayImportThunks(image []byte, dirOffset uint32, rvaToFileOffset func(uint32) (int, bool), cstringAt func(fileOffset int) string, bits64 bool) []ImportThunk {
	var out []ImportThunk
	pos := dirOffset
	entrySize := uint32(32)
	for int(pos+entrySize) <= len(image) {
		nameRVA := binary.LittleEndian.Uint32(image[pos+4 : pos+8])
		iatRVA := binary.LittleEndian.Uint32(image[pos+12 : pos+16])
		nameTabRVA := binary.LittleEndian.Uint32(image[pos+16 : pos+20])
		if nameRVA == 0 && iatRVA == 0 && nameTabRVA == 0 {
			break
		}
		pos += entrySize

		nameOff, ok := rvaToFileOffset(nameRVA)
		if !ok {
			continue
		}
		module := cstringAt(nameOff)

		thunkOff, ok := rvaToFileOffset(nameTabRVA)
		if !ok {
			continue
		}
		iatOff, ok := rvaToFileOffset(iatRVA)
		if !ok {
			continue
		}

		width := 4
		if bits64 {
			width = 8
		}
		out = append(out, walkThunkArray(image, thunkOff, iatOff, module, width, bits64, rvaToFileOffset, cstringAt)...)
	}
	return out
}
