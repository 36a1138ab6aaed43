package pe

import "github.com/xyproto/dismod/internal/image"

// Export is one entry of the export directory: an ordinal (Base +
// index into AddressOfFunctions), optionally named via the
// AddressOfNames/AddressOfNameOrdinals parallel arrays.
type Export struct {
	Ordinal int
	Name    string
	RVA     uint32
}

// parseExportDirectory reads IMAGE_EXPORT_DIRECTORY at dirOff (an
// absolute file offset) and returns every export slot, named ones
// matched up via the name-pointer/name-ordinal parallel tables.
func (m *Module) parseExportDirectory(dirOff int) []Export {
	im := image.New(m.raw)
	base, _ := im.U32(dirOff + 16)
	numFuncs, _ := im.U32(dirOff + 20)
	numNames, _ := im.U32(dirOff + 24)
	addrFunctionsRVA, _ := im.U32(dirOff + 28)
	addrNamesRVA, _ := im.U32(dirOff + 32)
	addrNameOrdinalsRVA, _ := im.U32(dirOff + 36)

	funcsOff, ok := m.rvaToFileOffset(addrFunctionsRVA)
	if !ok {
		return nil
	}

	exports := make([]Export, 0, numFuncs)
	byOrdinalIndex := make(map[int]int, numFuncs)
	for i := uint32(0); i < numFuncs; i++ {
		rva, err := im.U32(funcsOff + int(i)*4)
		if err != nil || rva == 0 {
			continue
		}
		byOrdinalIndex[int(i)] = len(exports)
		exports = append(exports, Export{Ordinal: int(base) + int(i), RVA: rva})
	}

	namesOff, ok1 := m.rvaToFileOffset(addrNamesRVA)
	ordsOff, ok2 := m.rvaToFileOffset(addrNameOrdinalsRVA)
	if !ok1 || !ok2 {
		return exports
	}
	for i := uint32(0); i < numNames; i++ {
		nameRVA, err := im.U32(namesOff + int(i)*4)
		if err != nil {
			continue
		}
		nameOff, ok := m.rvaToFileOffset(nameRVA)
		if !ok {
			continue
		}
		ordIndex, err := im.U16(ordsOff + int(i)*2)
		if err != nil {
			continue
		}
		if idx, found := byOrdinalIndex[int(ordIndex)]; found {
			exports[idx].Name = m.cstringAt(nameOff)
		}
	}
	return exports
}
