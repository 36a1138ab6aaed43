// Package reloc builds the shared container.Resolver implementation:
// a per-region index of relocation entries and symbolic names, filled
// in by the NE and PE container adapters and consulted by the
// scanner and formatter without either needing format-specific code.
package reloc

import "github.com/xyproto/dismod/internal/container"

// Index is a container.Resolver backed by plain maps, built once after
// a container's relocation tables and name tables are parsed.
type Index struct {
	regions map[container.RegionID]*regionEntries
}

type regionEntries struct {
	bySource map[int]container.Relocation // keyed by every source offset the relocation touches
	names    map[int]string               // offset -> symbolic name (entry table / exports)
}

// NewIndex returns an empty resolver index ready for a container
// adapter to populate via AddRelocation and AddName.
func NewIndex() *Index {
	return &Index{regions: make(map[container.RegionID]*regionEntries)}
}

func (idx *Index) region(id container.RegionID) *regionEntries {
	r, ok := idx.regions[id]
	if !ok {
		r = &regionEntries{bySource: make(map[int]container.Relocation), names: make(map[int]string)}
		idx.regions[id] = r
	}
	return r
}

// AddRelocation registers rel against every offset in its
// SourceOffsets list (a relocation may cover more than one byte range,
// e.g. a 32-bit pointer split across a segment word and an offset word).
func (idx *Index) AddRelocation(region container.RegionID, rel container.Relocation) {
	r := idx.region(region)
	for _, off := range rel.SourceOffsets {
		r.bySource[off] = rel
	}
}

// AddName registers a symbolic name for an offset within a region
// (an export, an entry-table name, or an import thunk name).
func (idx *Index) AddName(region container.RegionID, offset int, name string) {
	idx.region(region).names[offset] = name
}

func (idx *Index) NameAt(region container.RegionID, offset int) (string, bool) {
	r, ok := idx.regions[region]
	if !ok {
		return "", false
	}
	name, ok := r.names[offset]
	return name, ok
}

func (idx *Index) RelocationAt(region container.RegionID, offset int) (container.Relocation, bool) {
	r, ok := idx.regions[region]
	if !ok {
		return container.Relocation{}, false
	}
	rel, ok := r.bySource[offset]
	return rel, ok
}

// ResolveTarget turns a relocation into a jump point for the scanner
// (an internal region+offset) or a label-only result for an import
// that has no code to scan (the common case for IAT/export entries).
func (idx *Index) ResolveTarget(rel container.Relocation) container.ResolvedTarget {
	switch rel.Kind {
	case container.TargetInternalSegment:
		return container.ResolvedTarget{
			Region: container.RegionID(rel.ModuleOrSeg),
			Offset: rel.OrdinalOrName,
			Label:  rel.Label,
			Found:  true,
		}
	case container.TargetImportedOrdinal, container.TargetImportedName:
		return container.ResolvedTarget{Label: rel.Label, Found: rel.Label != ""}
	case container.TargetAbsoluteVA:
		return container.ResolvedTarget{Label: rel.Label, Found: rel.Label != ""}
	default:
		return container.ResolvedTarget{}
	}
}
