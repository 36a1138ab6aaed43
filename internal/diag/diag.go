// Package diag implements the error taxonomy used across the
// analyzer: fatal per-file errors are plain Go errors returned up the
// call stack;
// every recovered condition becomes a Diagnostic appended to a Sink,
// deduplicated so "no diagnostic is printed more than once for the
// same byte" holds automatically.
package diag

import "fmt"

// Kind names one recovered (non-fatal) condition.
type Kind int

const (
	// decoder diagnostics
	DuplicateSegmentPrefix Kind = iota
	OperandSizeOnNonSized
	AddressSizeOnNonMemory
	LockNotAllowed
	RepNotAllowed
	UnknownOpcode

	// scanner diagnostics
	ScanPastEnd
	ScanMidInstruction
	BranchOutsideRegion
	InstructionHangsOverBoundary

	// resolver diagnostics
	RelocMissing
	RelocOutsideSection
	RelocUnknownType
	RelocSizeUnknown
)

func (k Kind) String() string {
	switch k {
	case DuplicateSegmentPrefix:
		return "duplicate segment prefix"
	case OperandSizeOnNonSized:
		return "operand-size override on non-sized instruction"
	case AddressSizeOnNonMemory:
		return "address-size override on non-memory instruction"
	case LockNotAllowed:
		return "lock prefix not valid for this instruction"
	case RepNotAllowed:
		return "rep prefix not valid for this instruction"
	case UnknownOpcode:
		return "unknown opcode"
	case ScanPastEnd:
		return "attempt to scan past end of region"
	case ScanMidInstruction:
		return "attempt to scan byte that does not begin an instruction"
	case BranchOutsideRegion:
		return "branch target outside region"
	case InstructionHangsOverBoundary:
		return "instruction hangs over minimum-allocation boundary"
	case RelocMissing:
		return "relocation site without a matching relocation entry"
	case RelocOutsideSection:
		return "relocation target outside any section"
	case RelocUnknownType:
		return "unknown relocation type"
	case RelocSizeUnknown:
		return "relocation size not understood, using numeric fallback"
	default:
		return "diagnostic"
	}
}

// Diagnostic is one recovered condition, located by region+offset so
// the sink can dedup and a renderer can annotate a disassembly line.
type Diagnostic struct {
	Kind    Kind
	Region  int
	Offset  int
	Detail  string
}

func (d Diagnostic) String() string {
	if d.Detail != "" {
		return fmt.Sprintf("%s at region %d offset 0x%x: %s", d.Kind, d.Region, d.Offset, d.Detail)
	}
	return fmt.Sprintf("%s at region %d offset 0x%x", d.Kind, d.Region, d.Offset)
}

// Sink receives diagnostics as they are raised. Implementations must
// be safe to call sequentially within one file's analysis; a single
// process never analyzes more than one file concurrently.
type Sink interface {
	Emit(d Diagnostic)
}

type key struct {
	kind   Kind
	region int
	offset int
}

// DedupSink wraps another Sink and drops repeats of the same
// (Kind, Region, Offset) triple, so no diagnostic is printed more
// than once for the same byte.
type DedupSink struct {
	inner Sink
	seen  map[key]bool
}

// NewDedupSink wraps inner.
func NewDedupSink(inner Sink) *DedupSink {
	return &DedupSink{inner: inner, seen: make(map[key]bool)}
}

// Emit forwards d to the wrapped sink unless an identical (kind,
// region, offset) triple was already emitted.
func (s *DedupSink) Emit(d Diagnostic) {
	k := key{d.Kind, d.Region, d.Offset}
	if s.seen[k] {
		return
	}
	s.seen[k] = true
	s.inner.Emit(d)
}
