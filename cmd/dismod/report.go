package main

import (
	"os"

	"github.com/xyproto/dismod/internal/analyze"
	"github.com/xyproto/dismod/internal/render"
	"github.com/xyproto/dismod/internal/specfile"
)

func printHeader(result *analyze.Result, opts runOptions) {
	switch result.Format {
	case analyze.FormatMZ:
		render.MZHeader(os.Stdout, result.MZ.Header)
	case analyze.FormatNE:
		render.NEHeader(os.Stdout, result.NE)
		if opts.table {
			render.NESegments(os.Stdout, result.NE)
			render.NEImports(os.Stdout, result.NE)
			render.NEEntries(os.Stdout, result.NE)
		}
	case analyze.FormatPE:
		render.PEHeader(os.Stdout, result.PE)
		if opts.table {
			render.PESections(os.Stdout, result.PE)
			render.PEImports(os.Stdout, result.PE)
		}
	}
}

// showAbsolute resolves the -pe-relative toggle for one loaded module.
// An on/off value always wins, whether it came from the flag, the
// project file, or DISMOD_RELATIVE; "auto" (the default) asks the PE
// module whether it strips the image base by convention (DLLs do,
// EXEs don't) and is meaningless for MZ/NE, which have no image base.
func showAbsolute(result *analyze.Result, opts runOptions) bool {
	switch opts.peRelative {
	case "off":
		return true
	case "on":
		return false
	}
	if result.Format != analyze.FormatPE {
		return false
	}
	return !result.PE.StripImageBaseByDefault()
}

func printResources(result *analyze.Result) {
	switch result.Format {
	case analyze.FormatNE:
		render.NEResources(os.Stdout, result.NE.Resources)
	case analyze.FormatPE:
		render.PEResources(os.Stdout, result.PE.Resources)
	}
}

// exportsOf collects the named/ordinal exports of a loaded module in
// the shape the specfile writer expects, whichever container format
// produced them.
func exportsOf(result *analyze.Result) []specfile.Export {
	var out []specfile.Export
	switch result.Format {
	case analyze.FormatNE:
		for i, e := range result.NE.EntryTable {
			if e.Segment == 0 {
				continue
			}
			out = append(out, specfile.Export{Ordinal: i + 1, Name: e.Name})
		}
	case analyze.FormatPE:
		for _, e := range result.PE.Exports {
			out = append(out, specfile.Export{Ordinal: e.Ordinal, Name: e.Name})
		}
	}
	return out
}
