package render

import (
	"strings"
	"testing"

	"github.com/xyproto/dismod/internal/container"
	"github.com/xyproto/dismod/internal/scan"
	"github.com/xyproto/dismod/internal/xdecode"
	"github.com/xyproto/dismod/internal/xfmt"
)

func decodeAt(t *testing.T, data []byte) *xdecode.Instruction {
	t.Helper()
	in, _, err := xdecode.Decode(0, data, xdecode.Mode32)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	return in
}

func TestListingPrintsAddressAndRawBytes(t *testing.T) {
	code := []byte{0x90, 0xC3} // nop; ret
	region := container.NewRegion(1, "CODE", 0, 0, len(code), len(code), container.Bits32, code)
	region.Set(0, container.FunctionStart)
	arena := container.NewArena()
	arena.Add(region)

	s := &scan.Scanner{Instructions: []scan.Result{
		{Region: 1, Offset: 0, Instr: decodeAt(t, code)},
		{Region: 1, Offset: 1, Instr: decodeAt(t, code[1:])},
	}}

	var buf strings.Builder
	Listing(&buf, arena, s, ListingOptions{Syntax: xfmt.IntelNASM, NoColor: true})
	out := buf.String()

	if !strings.Contains(out, "CODE") {
		t.Errorf("output missing region name:\n%s", out)
	}
	if !strings.Contains(out, "00000000:") || !strings.Contains(out, "00000001:") {
		t.Errorf("output missing address columns:\n%s", out)
	}
	if !strings.Contains(out, "nop") || !strings.Contains(out, "ret") {
		t.Errorf("output missing mnemonics:\n%s", out)
	}
	if !strings.Contains(out, "90") || !strings.Contains(out, "c3") {
		t.Errorf("output missing raw byte columns:\n%s", out)
	}
}

func TestListingSuppressesAddrsAndRawWhenAsked(t *testing.T) {
	code := []byte{0xC3}
	region := container.NewRegion(1, "CODE", 0, 0, len(code), len(code), container.Bits32, code)
	arena := container.NewArena()
	arena.Add(region)

	s := &scan.Scanner{Instructions: []scan.Result{{Region: 1, Offset: 0, Instr: decodeAt(t, code)}}}

	var buf strings.Builder
	Listing(&buf, arena, s, ListingOptions{Syntax: xfmt.IntelNASM, SuppressRaw: true, SuppressAddrs: true, NoColor: true})
	out := buf.String()
	if strings.Contains(out, ":") {
		t.Errorf("address column should be suppressed:\n%s", out)
	}
	if strings.Contains(out, "c3") {
		t.Errorf("raw byte column should be suppressed:\n%s", out)
	}
}

func TestListingColorsFunctionStart(t *testing.T) {
	code := []byte{0xC3}
	region := container.NewRegion(1, "CODE", 0, 0, len(code), len(code), container.Bits32, code)
	region.Set(0, container.FunctionStart)
	arena := container.NewArena()
	arena.Add(region)

	s := &scan.Scanner{Instructions: []scan.Result{{Region: 1, Offset: 0, Instr: decodeAt(t, code)}}}

	var buf strings.Builder
	Listing(&buf, arena, s, ListingOptions{Syntax: xfmt.IntelNASM})
	if !strings.Contains(buf.String(), ansiFunctionStart) {
		t.Error("a function-start instruction should be ANSI-highlighted when NoColor is false")
	}
}
