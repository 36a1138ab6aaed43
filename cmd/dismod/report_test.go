package main

import (
	"testing"

	"github.com/xyproto/dismod/internal/analyze"
	"github.com/xyproto/dismod/internal/container/ne"
	"github.com/xyproto/dismod/internal/container/pe"
)

func TestExportsOfNE(t *testing.T) {
	result := &analyze.Result{Format: analyze.FormatNE, NE: &ne.Module{EntryTable: []ne.Entry{
		{}, // unused ordinal, skipped
		{Segment: 1, Offset: 0x10, Name: "Foo"},
	}}}
	got := exportsOf(result)
	if len(got) != 1 || got[0].Ordinal != 2 || got[0].Name != "Foo" {
		t.Fatalf("exportsOf = %+v, want one export {Ordinal:2 Name:Foo}", got)
	}
}

func TestExportsOfPE(t *testing.T) {
	result := &analyze.Result{Format: analyze.FormatPE, PE: &pe.Module{Exports: []pe.Export{
		{Ordinal: 5, Name: "Bar", RVA: 0x1000},
	}}}
	got := exportsOf(result)
	if len(got) != 1 || got[0].Ordinal != 5 || got[0].Name != "Bar" {
		t.Fatalf("exportsOf = %+v, want one export {Ordinal:5 Name:Bar}", got)
	}
}

func TestShowAbsoluteExplicitOverridesFormat(t *testing.T) {
	result := &analyze.Result{Format: analyze.FormatMZ}
	opts := runOptions{peRelativeExplicit: true, peRelative: "off"}
	if !showAbsolute(result, opts) {
		t.Error("explicit -pe-relative=off should force showAbsolute true regardless of format")
	}
}

func TestShowAbsoluteAutoIsFalseForNonPE(t *testing.T) {
	result := &analyze.Result{Format: analyze.FormatMZ}
	if showAbsolute(result, runOptions{}) {
		t.Error("auto mode should be false for a non-PE format")
	}
}

func TestShowAbsoluteAutoFollowsStripImageBaseForPE(t *testing.T) {
	dll := &analyze.Result{Format: analyze.FormatPE, PE: &pe.Module{FileHeader: pe.FileHeader{Characteristics: 0x2000}}}
	if showAbsolute(dll, runOptions{}) {
		t.Error("a DLL strips its image base by default, so showAbsolute should stay false in auto mode")
	}

	exe := &analyze.Result{Format: analyze.FormatPE, PE: &pe.Module{}}
	if !showAbsolute(exe, runOptions{}) {
		t.Error("an EXE does not strip its image base by default, so showAbsolute should be true in auto mode")
	}
}
