package diag

import (
	"strings"
	"testing"
)

type recordingSink struct {
	emitted []Diagnostic
}

func (s *recordingSink) Emit(d Diagnostic) { s.emitted = append(s.emitted, d) }

func TestDedupSinkDropsRepeats(t *testing.T) {
	rec := &recordingSink{}
	s := NewDedupSink(rec)

	d := Diagnostic{Kind: UnknownOpcode, Region: 1, Offset: 0x10}
	s.Emit(d)
	s.Emit(d)
	s.Emit(d)

	if len(rec.emitted) != 1 {
		t.Fatalf("len(emitted) = %d, want 1 (repeats of the same kind/region/offset should be dropped)", len(rec.emitted))
	}
}

func TestDedupSinkDistinctOffsetsPassThrough(t *testing.T) {
	rec := &recordingSink{}
	s := NewDedupSink(rec)

	s.Emit(Diagnostic{Kind: UnknownOpcode, Region: 1, Offset: 0x10})
	s.Emit(Diagnostic{Kind: UnknownOpcode, Region: 1, Offset: 0x11})
	s.Emit(Diagnostic{Kind: ScanPastEnd, Region: 1, Offset: 0x10})

	if len(rec.emitted) != 3 {
		t.Fatalf("len(emitted) = %d, want 3 distinct (kind, region, offset) triples", len(rec.emitted))
	}
}

func TestTextSinkFormatsLine(t *testing.T) {
	var buf strings.Builder
	s := NewTextSink(&buf)
	s.Emit(Diagnostic{Kind: UnknownOpcode, Region: 2, Offset: 0x20, Detail: "0xFF"})

	got := buf.String()
	if !strings.Contains(got, "region 2") || !strings.Contains(got, "0x20") || !strings.Contains(got, "0xFF") {
		t.Errorf("TextSink output = %q, missing expected fields", got)
	}
}

func TestDiagnosticStringOmitsEmptyDetail(t *testing.T) {
	d := Diagnostic{Kind: ScanPastEnd, Region: 0, Offset: 0}
	if strings.HasSuffix(d.String(), ": ") {
		t.Errorf("String() = %q, should not leave a trailing empty detail separator", d.String())
	}
}
