package scan

import (
	"testing"

	"github.com/xyproto/dismod/internal/container"
	"github.com/xyproto/dismod/internal/xdecode"
)

type fakeResolver struct {
	relocs map[int]container.Relocation
	target container.ResolvedTarget
}

func (f *fakeResolver) NameAt(region container.RegionID, offset int) (string, bool) { return "", false }

func (f *fakeResolver) RelocationAt(region container.RegionID, offset int) (container.Relocation, bool) {
	r, ok := f.relocs[offset]
	return r, ok
}

func (f *fakeResolver) ResolveTarget(rel container.Relocation) container.ResolvedTarget {
	return f.target
}

func TestScannerStraightLineStopsAtRet(t *testing.T) {
	arena := container.NewArena()
	// nop; nop; ret
	arena.Add(container.NewRegion(0, "code", 0, 0, 3, 3, container.Bits32, []byte{0x90, 0x90, 0xC3}))

	s := New(arena, nil, xdecode.Mode32, nil)
	s.Run([]container.EntryPoint{{Region: 0, Offset: 0, IsFunc: true}})

	if len(s.Instructions) != 3 {
		t.Fatalf("len(Instructions) = %d, want 3 (two nops plus ret)", len(s.Instructions))
	}

	region, _ := arena.Get(0)
	if !region.Has(0, container.FunctionStart) {
		t.Error("offset 0 should carry FunctionStart (it was the entry point)")
	}
	if region.Has(1, container.FunctionStart) {
		t.Error("offset 1 should not carry FunctionStart")
	}
	for _, off := range []int{0, 1, 2} {
		if !region.Has(off, container.Scanned) {
			t.Errorf("offset %d should be marked Scanned", off)
		}
	}
}

func TestScannerDoesNotRescanSameOffsetTwice(t *testing.T) {
	arena := container.NewArena()
	// jmp short -2 (loop forever to offset 0): EB FE
	arena.Add(container.NewRegion(0, "code", 0, 0, 2, 2, container.Bits32, []byte{0xEB, 0xFE}))

	s := New(arena, nil, xdecode.Mode32, nil)
	s.Run([]container.EntryPoint{{Region: 0, Offset: 0, IsFunc: true}})

	if len(s.Instructions) != 1 {
		t.Fatalf("len(Instructions) = %d, want 1 (a self-jump must not infinite-loop the scanner)", len(s.Instructions))
	}
}

func TestScannerFollowsFarBranchThroughResolver(t *testing.T) {
	arena := container.NewArena()
	arena.Add(container.NewRegion(0, "code", 0, 0, 7, 7, container.Bits32, []byte{0x9A, 0, 0, 0, 0, 0, 0})) // callf ptr16:32
	arena.Add(container.NewRegion(1, "target", 0, 0, 1, 1, container.Bits32, []byte{0xC3}))            // ret

	resolver := &fakeResolver{
		relocs: map[int]container.Relocation{1: {}},
		target: container.ResolvedTarget{Region: 1, Offset: 0, Found: true},
	}
	s := New(arena, resolver, xdecode.Mode32, nil)
	s.Run([]container.EntryPoint{{Region: 0, Offset: 0, IsFunc: true}})

	target, _ := arena.Get(1)
	if !target.Has(0, container.Scanned) {
		t.Error("far call target region should have been scanned through the resolver")
	}
}
