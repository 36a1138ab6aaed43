package render

import (
	"fmt"
	"io"
	"sort"

	"github.com/xyproto/dismod/internal/container"
	"github.com/xyproto/dismod/internal/scan"
	"github.com/xyproto/dismod/internal/xfmt"
)

// ListingOptions controls how a disassembly listing is printed.
type ListingOptions struct {
	Syntax        xfmt.Syntax
	SuppressRaw   bool // omit the raw byte column
	SuppressAddrs bool // omit the address column
	NoColor       bool // disable ANSI highlighting of branch markers

	// ShowAbsolute prints a region's LoadAddr-relative address (the
	// image's absolute VA for PE, the segment's real-mode address for
	// MZ/NE) instead of the section/segment-relative offset.
	ShowAbsolute bool
}

const (
	ansiFunctionStart = "\x1b[1;32m" // bold green: a call target
	ansiReset         = "\x1b[0m"
)

// Listing prints every scanned instruction, grouped by region and
// sorted by offset: a "; <region name>" line heads each region, then
// one "address: bytes  instruction" line per instruction.
func Listing(w io.Writer, arena *container.Arena, s *scan.Scanner, opts ListingOptions) {
	byRegion := make(map[container.RegionID][]scan.Result)
	for _, r := range s.Instructions {
		byRegion[r.Region] = append(byRegion[r.Region], r)
	}

	regions := make([]container.RegionID, 0, len(byRegion))
	for id := range byRegion {
		regions = append(regions, id)
	}
	sort.Slice(regions, func(i, j int) bool { return regions[i] < regions[j] })

	for _, id := range regions {
		results := byRegion[id]
		sort.Slice(results, func(i, j int) bool { return results[i].Offset < results[j].Offset })

		fmt.Fprintf(w, "; %s\n", regionName(arena, id))
		region, _ := arena.Get(id)
		for _, r := range results {
			printInstruction(w, region, r, opts)
		}
	}
}

func printInstruction(w io.Writer, region *container.Region, r scan.Result, opts ListingOptions) {
	line := xfmt.Format(r.Instr, opts.Syntax)

	if !opts.NoColor && region != nil && region.Has(r.Offset, container.FunctionStart) {
		line = ansiFunctionStart + line + ansiReset
	}

	if !opts.SuppressAddrs {
		addr := uint64(r.Offset)
		if opts.ShowAbsolute && region != nil {
			addr = region.LoadAddr + uint64(r.Offset)
		}
		fmt.Fprintf(w, "%08x: ", addr)
	}
	if !opts.SuppressRaw {
		raw := ""
		if region != nil {
			data := region.Bytes(r.Offset)
			if len(data) >= r.Instr.Length {
				raw = fmt.Sprintf("%x", data[:r.Instr.Length])
			}
		}
		fmt.Fprintf(w, "%-24s ", raw)
	}
	fmt.Fprintln(w, line)
}
