// Package analyze ties the container adapters, scanner, and resolver
// together: given a raw file image it detects the container format by
// magic, loads the matching adapter, and runs the control-flow
// scanner over every entry point it reports.
package analyze

import (
	"fmt"

	"github.com/xyproto/dismod/internal/container"
	"github.com/xyproto/dismod/internal/container/mz"
	"github.com/xyproto/dismod/internal/container/ne"
	"github.com/xyproto/dismod/internal/container/pe"
	"github.com/xyproto/dismod/internal/diag"
	"github.com/xyproto/dismod/internal/image"
	"github.com/xyproto/dismod/internal/scan"
	"github.com/xyproto/dismod/internal/xdecode"
)

// Format names the container kind a file was recognized as.
type Format int

const (
	FormatUnknown Format = iota
	FormatMZ
	FormatNE
	FormatPE
)

func (f Format) String() string {
	switch f {
	case FormatMZ:
		return "MZ (DOS executable)"
	case FormatNE:
		return "NE (New Executable)"
	case FormatPE:
		return "PE (Portable Executable)"
	default:
		return "unknown"
	}
}

// ErrUnrecognized is the fatal error for a file whose magic matches
// none of MZ/NE/PE.
var ErrUnrecognized = fmt.Errorf("file format not recognized")

// Result is a fully loaded and scanned module, format-agnostic from
// here on: the render and specfile packages work off Arena/Resolver/
// Scanner regardless of which adapter produced them.
type Result struct {
	Format   Format
	Arena    *container.Arena
	Resolver container.Resolver
	Mode     xdecode.Mode
	Scanner  *scan.Scanner

	MZ *mz.Module
	NE *ne.Module
	PE *pe.Module
}

// Load detects the container format by magic, parses it with the
// matching adapter, and scans every entry point the adapter reports.
// disassemble controls whether the scan runs at all (dump-header-only
// invocations skip it, matching the cost profile of the original
// dump-mode selection bitmask).
func Load(raw []byte, disassemble bool, sink diag.Sink) (*Result, error) {
	im := image.New(raw)
	magic, err := im.U16(0)
	if err != nil {
		return nil, err
	}
	if magic != 0x5A4D { // "MZ"
		return nil, ErrUnrecognized
	}

	lfanew32, err := im.U32(0x3C)
	lfanew := int(lfanew32)
	if err == nil && lfanew > 0 {
		if sig, err := im.U32(lfanew); err == nil && sig == 0x00004550 {
			return loadPE(raw, lfanew, disassemble, sink)
		}
		if sig16, err := im.U16(lfanew); err == nil && sig16 == 0x454E {
			return loadNE(raw, lfanew, disassemble, sink)
		}
	}
	return loadMZ(raw, disassemble, sink)
}

func loadMZ(raw []byte, disassemble bool, sink diag.Sink) (*Result, error) {
	mod, err := mz.Load(raw)
	if err != nil {
		return nil, err
	}
	res := &Result{Format: FormatMZ, Arena: mod.Arena, Resolver: mod.Resolver, Mode: xdecode.Mode16, MZ: mod}
	if disassemble {
		res.Scanner = scan.New(mod.Arena, mod.Resolver, res.Mode, sink)
		res.Scanner.Run(mod.EntryPoints())
	}
	return res, nil
}

func loadNE(raw []byte, lfanew int, disassemble bool, sink diag.Sink) (*Result, error) {
	mod, err := ne.Load(raw, lfanew)
	if err != nil {
		return nil, err
	}
	res := &Result{Format: FormatNE, Arena: mod.Arena, Resolver: mod.Resolver, Mode: xdecode.Mode16, NE: mod}
	if disassemble {
		res.Scanner = scan.New(mod.Arena, mod.Resolver, res.Mode, sink)
		res.Scanner.Run(mod.EntryPoints())
	}
	return res, nil
}

func loadPE(raw []byte, lfanew int, disassemble bool, sink diag.Sink) (*Result, error) {
	mod, err := pe.Load(raw, lfanew)
	if err != nil {
		return nil, err
	}
	mode := xdecode.Mode32
	if mod.Optional.Magic == 0x20b {
		mode = xdecode.Mode64
	}
	res := &Result{Format: FormatPE, Arena: mod.Arena, Resolver: mod.Resolver, Mode: mode, PE: mod}
	if disassemble {
		res.Scanner = scan.New(mod.Arena, mod.Resolver, mode, sink)
		res.Scanner.Run(mod.EntryPoints())
	}
	return res, nil
}
