// Package xdecode implements the instruction decoder: turning
// a byte cursor into a decoded instruction record.
package xdecode

import "github.com/xyproto/dismod/internal/xtab"

// Mode is the default operand/address width of the code region being
// decoded.
type Mode int

const (
	Mode16 Mode = 16
	Mode32 Mode = 32
	Mode64 Mode = 64
)

// Prefix is a bit in the prefix bitmask.
type Prefix uint32

const (
	PrefixES Prefix = 1 << iota
	PrefixCS
	PrefixSS
	PrefixDS
	PrefixFS
	PrefixGS
	PrefixOperandSize
	PrefixAddressSize
	PrefixLock
	PrefixRepNE
	PrefixRepE
	PrefixWait
	PrefixREX
	PrefixREXB
	PrefixREXX
	PrefixREXR
	PrefixREXW
)

var segPrefixes = [6]Prefix{PrefixES, PrefixCS, PrefixSS, PrefixDS, PrefixFS, PrefixGS}

// DispKind is the decoded ModR/M displacement kind.
type DispKind int

const (
	DispNone DispKind = iota
	Disp8
	Disp16Or32
	DispRegisterDirect
)

// Arg is one decoded argument slot.
type Arg struct {
	Type  xtab.ArgType
	IP    int    // offset of the value bytes, for relocation matching
	Value uint64 // raw numeric value (immediate/displacement) or register index
	Text  string // reserved: filled by the formatter or the resolver, never the decoder
}

// VEX is the decoded VEX-prefix state.
type VEX struct {
	Present bool
	Reg2    int  // implicit second source register, -1 if VEX not present
	L256    bool // the VEX.L "256-bit" flag
}

// Instruction is the product of decoding one byte range. It is purely numeric: no argument's Text
// field is populated by the decoder.
type Instruction struct {
	Prefixes Prefix
	Entry    xtab.Entry
	Args     [3]Arg
	NumArgs  int

	ModRMByte byte
	ModRMDisp DispKind
	ModRMReg  int // -1 if absolute (no register), 16 if RIP-relative
	SIBByte   byte
	SIBScale  int // 1/2/4/8
	SIBIndex  int // -1 if absent
	UsedMem   bool

	VEX       VEX
	vexEscape int // implied escape class from the VEX prefix: 1=0F, 2=0F38, 3=0F3A

	OpSize   int // 8/16/32/64/80
	AddrSize int // 16/32/64

	Length int // total bytes consumed, including prefixes
}

// IsBranch reports whether operand 0 is a branch target.
func (in *Instruction) IsBranch() bool { return in.Entry.Flags&xtab.Branches != 0 }

// Stops reports whether this instruction ends straight-line scanning.
func (in *Instruction) Stops() bool { return in.Entry.Flags&xtab.Stops != 0 }

// IsFar reports whether this is a far (inter-segment) transfer.
func (in *Instruction) IsFar() bool { return in.Entry.Flags&xtab.FarOp != 0 }
