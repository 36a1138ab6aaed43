// Package scan implements the iterative control-flow scanner: given a
// code region and a set of entry points, it walks reachable bytes,
// decodes each instruction once, marks the region's flag vector, and
// follows branches (direct and, through a Resolver, far) to discover
// further entry points.
package scan

import (
	"github.com/xyproto/dismod/internal/container"
	"github.com/xyproto/dismod/internal/diag"
	"github.com/xyproto/dismod/internal/xdecode"
)

// Result is one decoded instruction kept for later formatting, keyed
// by its region and offset.
type Result struct {
	Region container.RegionID
	Offset int
	Instr  *xdecode.Instruction
}

// Scanner walks one or more regions from a worklist of entry points,
// decoding every reachable instruction exactly once.
type Scanner struct {
	arena    *container.Arena
	resolver container.Resolver
	mode     xdecode.Mode
	sink     diag.Sink

	Instructions []Result
}

func New(arena *container.Arena, resolver container.Resolver, mode xdecode.Mode, sink diag.Sink) *Scanner {
	return &Scanner{arena: arena, resolver: resolver, mode: mode, sink: sink}
}

type workItem struct {
	region container.RegionID
	offset int
	isFunc bool
}

// Run scans every entry point to a fixed point: each newly discovered
// branch target is pushed back onto the worklist until nothing new is
// found. Only the given entry points and the branch targets reached
// from them are scanned; relocation targets are not added.
func (s *Scanner) Run(entries []container.EntryPoint) {
	var work []workItem
	for _, e := range entries {
		work = append(work, workItem{region: e.Region, offset: e.Offset, isFunc: e.IsFunc})
	}

	for len(work) > 0 {
		item := work[len(work)-1]
		work = work[:len(work)-1]

		region, ok := s.arena.Get(item.region)
		if !ok {
			continue
		}
		if region.Has(item.offset, container.Scanned) {
			continue
		}

		more := s.scanStraightLine(region, item.offset, item.isFunc)
		work = append(work, more...)
	}
}

// scanStraightLine decodes forward from offset until a Stops
// instruction, an already-scanned byte, or the region boundary,
// marking every byte of every instruction along the way and returning
// newly discovered branch targets for the worklist.
func (s *Scanner) scanStraightLine(region *container.Region, offset int, isFunc bool) []workItem {
	var next []workItem
	first := true

	for offset < region.Length {
		if region.Has(offset, container.Scanned) {
			if !region.Has(offset, container.Valid) {
				s.emit(diag.ScanMidInstruction, region.ID, offset, "")
			}
			return next
		}

		data := region.Bytes(offset)
		in, diags, err := xdecode.Decode(offset, data, s.mode)
		for _, d := range diags {
			s.emit(d.Kind, region.ID, offset, d.Detail)
		}
		if err != nil {
			s.emit(diag.ScanPastEnd, region.ID, offset, err.Error())
			region.Set(offset, container.Scanned)
			return next
		}
		if offset+in.Length > region.Length {
			s.emit(diag.InstructionHangsOverBoundary, region.ID, offset, "")
		}

		for b := offset; b < offset+in.Length && b < region.Length; b++ {
			region.Set(b, container.Scanned|container.Valid)
		}
		s.Instructions = append(s.Instructions, Result{Region: region.ID, Offset: offset, Instr: in})
		if first && isFunc {
			region.Set(offset, container.FunctionStart)
			first = false
		}
		region.Set(offset, container.JumpTarget)

		if in.IsBranch() {
			next = append(next, s.branchTargets(region, offset, in)...)
		}
		if in.Stops() {
			return next
		}

		offset += in.Length
	}
	return next
}

// branchTargets resolves where a branch instruction's operand 0
// points, seeding the worklist with internal targets and looking up
// far targets through the Resolver.
func (s *Scanner) branchTargets(region *container.Region, offset int, in *xdecode.Instruction) []workItem {
	if in.NumArgs == 0 {
		return nil
	}
	arg := in.Args[0]
	isCall := in.Entry.Mnemonic == "call" || in.Entry.Mnemonic == "callf"

	if in.IsFar() {
		if s.resolver == nil {
			return nil
		}
		rel, ok := s.resolver.RelocationAt(region.ID, arg.IP)
		if !ok {
			s.emit(diag.BranchOutsideRegion, region.ID, offset, "")
			return nil
		}
		target := s.resolver.ResolveTarget(rel)
		if !target.Found {
			return nil
		}
		return []workItem{{region: target.Region, offset: target.Offset, isFunc: isCall}}
	}

	targetOff := int(arg.Value)
	if targetOff < 0 || targetOff >= region.Length {
		s.emit(diag.BranchOutsideRegion, region.ID, offset, "")
		return nil
	}
	return []workItem{{region: region.ID, offset: targetOff, isFunc: isCall}}
}

func (s *Scanner) emit(kind diag.Kind, region container.RegionID, offset int, detail string) {
	if s.sink == nil {
		return
	}
	s.sink.Emit(diag.Diagnostic{Kind: kind, Region: int(region), Offset: offset, Detail: detail})
}
