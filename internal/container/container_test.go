package container

import "testing"

func TestRegionBytes(t *testing.T) {
	r := NewRegion(0, "code", 0x1000, 0, 4, 8, Bits32, []byte{0xAA, 0xBB, 0xCC, 0xDD})
	if got := r.Bytes(1); len(got) != 3 || got[0] != 0xBB {
		t.Errorf("Bytes(1) = %x, want starting at 0xBB", got)
	}
	if got := r.Bytes(-1); got != nil {
		t.Errorf("Bytes(-1) = %x, want nil", got)
	}
	if got := r.Bytes(4); got != nil {
		t.Errorf("Bytes(4) = %x, want nil (at Length boundary)", got)
	}
}

func TestRegionFlagsPadding(t *testing.T) {
	r := NewRegion(0, "code", 0, 0, 4, 16, Bits16, []byte{1, 2, 3, 4})
	if len(r.Flags) != 16 {
		t.Fatalf("len(Flags) = %d, want MinAlloc 16", len(r.Flags))
	}
	r.Set(10, Scanned)
	if !r.Has(10, Scanned) {
		t.Error("Has(10, Scanned) = false after Set")
	}
	if r.Has(11, Scanned) {
		t.Error("Has(11, Scanned) = true, should be unset")
	}
}

func TestRegionSetOutOfRangeIsNoOp(t *testing.T) {
	r := NewRegion(0, "code", 0, 0, 2, 2, Bits16, []byte{1, 2})
	r.Set(-1, Scanned)
	r.Set(100, Scanned)
	if r.Has(-1, Scanned) || r.Has(100, Scanned) {
		t.Error("Has should report false for any out-of-range offset regardless of Set calls")
	}
}

func TestRegionMinAllocFloor(t *testing.T) {
	r := NewRegion(0, "code", 0, 0, 10, 4, Bits16, make([]byte, 10))
	if r.MinAlloc != 10 {
		t.Errorf("MinAlloc = %d, want 10 (floored to Length)", r.MinAlloc)
	}
}

func TestArenaAddGetAll(t *testing.T) {
	a := NewArena()
	r1 := NewRegion(1, "seg1", 0, 0, 4, 4, Bits16, make([]byte, 4))
	r2 := NewRegion(2, "seg2", 0, 0, 4, 4, Bits16, make([]byte, 4))
	a.Add(r1)
	a.Add(r2)

	if got, ok := a.Get(1); !ok || got != r1 {
		t.Errorf("Get(1) = %+v, %v, want r1, true", got, ok)
	}
	if _, ok := a.Get(99); ok {
		t.Error("Get(99) should report not found")
	}

	all := a.All()
	if len(all) != 2 || all[0] != r1 || all[1] != r2 {
		t.Errorf("All() = %+v, want [r1, r2] in insertion order", all)
	}
}

func TestArenaAddReplaceKeepsOrder(t *testing.T) {
	a := NewArena()
	r1 := NewRegion(1, "seg1", 0, 0, 4, 4, Bits16, make([]byte, 4))
	r1b := NewRegion(1, "seg1-replaced", 0, 0, 4, 4, Bits16, make([]byte, 4))
	a.Add(r1)
	a.Add(r1b)

	all := a.All()
	if len(all) != 1 {
		t.Fatalf("All() length = %d, want 1 (re-Add should replace, not duplicate)", len(all))
	}
	if all[0].Name != "seg1-replaced" {
		t.Errorf("All()[0].Name = %q, want the replacement region", all[0].Name)
	}
}
