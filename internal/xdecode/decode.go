package xdecode

import (
	"github.com/xyproto/dismod/internal/diag"
	"github.com/xyproto/dismod/internal/xtab"
)

// Decode turns a byte cursor at instruction pointer ip into a decoded
// instruction record. It never returns a fatal error for an
// unrecognized opcode — it substitutes xtab.Unknown and consumes one
// byte — but does return ErrTruncated when
// the bytes available are insufficient to finish decoding, so the
// scanner can treat that as "hangs over the minimum-allocation
// boundary".
func Decode(ip int, data []byte, mode Mode) (*Instruction, []diag.Diagnostic, error) {
	c := newCursor(data)
	in := &Instruction{ModRMReg: -1, SIBIndex: -1}
	var diags []diag.Diagnostic

	if err := decodePrefixes(c, in, mode, &diags); err != nil {
		return nil, diags, err
	}

	vexPresent, err := tryVEX(c, in, mode)
	if err != nil {
		return nil, diags, err
	}

	var entry xtab.Entry
	var groupReg = -1

	if vexPresent {
		entry, err = decodeVEXOpcode(c, in)
	} else {
		entry, groupReg, err = lookupOpcode(c, in, mode)
	}
	if err != nil {
		return nil, diags, err
	}
	if !entry.Valid() {
		in.Entry = xtab.Unknown
		in.Length = 1
		diags = append(diags, diag.Diagnostic{Kind: diag.UnknownOpcode, Offset: ip})
		return in, diags, nil
	}
	in.Entry = entry

	resolveSizes(in, mode)

	if err := parseArgs(c, in, entry, groupReg, ip); err != nil {
		return nil, diags, err
	}

	applyMnemonicAdjustments(in, mode)
	checkPrefixLegality(in, entry, &diags, ip)

	in.Length = c.pos
	if in.Length == 0 {
		in.Length = 1 // a wholly-unknown zero-length read still advances one byte
	}
	return in, diags, nil
}

// decodePrefixes consumes the legacy-prefix run and, in 64-bit mode,
// a single trailing REX byte.
func decodePrefixes(c *cursor, in *Instruction, mode Mode, diags *[]diag.Diagnostic) error {
	sawSeg := false
	for {
		if c.remaining() == 0 {
			return nil
		}
		b := c.b[c.pos]
		switch b {
		case 0x26, 0x2E, 0x36, 0x3E, 0x64, 0x65:
			var idx int
			switch b {
			case 0x26:
				idx = 0
			case 0x2E:
				idx = 1
			case 0x36:
				idx = 2
			case 0x3E:
				idx = 3
			case 0x64:
				idx = 4
			case 0x65:
				idx = 5
			}
			if in.Prefixes&(segPrefixes[0]|segPrefixes[1]|segPrefixes[2]|segPrefixes[3]|segPrefixes[4]|segPrefixes[5]) != 0 {
				sawSeg = true
			}
			in.Prefixes &^= segPrefixes[0] | segPrefixes[1] | segPrefixes[2] | segPrefixes[3] | segPrefixes[4] | segPrefixes[5]
			in.Prefixes |= segPrefixes[idx]
			c.pos++
		case 0x66:
			in.Prefixes |= PrefixOperandSize
			c.pos++
		case 0x67:
			in.Prefixes |= PrefixAddressSize
			c.pos++
		case 0xF0:
			in.Prefixes |= PrefixLock
			c.pos++
		case 0xF2:
			in.Prefixes |= PrefixRepNE
			in.Prefixes &^= PrefixRepE
			c.pos++
		case 0xF3:
			in.Prefixes |= PrefixRepE
			in.Prefixes &^= PrefixRepNE
			c.pos++
		case 0x9B:
			in.Prefixes |= PrefixWait
			c.pos++
		default:
			if mode == Mode64 && b >= 0x40 && b <= 0x4F {
				in.Prefixes |= PrefixREX
				in.Prefixes &^= PrefixREXB | PrefixREXX | PrefixREXR | PrefixREXW
				if b&0x01 != 0 {
					in.Prefixes |= PrefixREXB
				}
				if b&0x02 != 0 {
					in.Prefixes |= PrefixREXX
				}
				if b&0x04 != 0 {
					in.Prefixes |= PrefixREXR
				}
				if b&0x08 != 0 {
					in.Prefixes |= PrefixREXW
				}
				c.pos++
				continue // REX must be the last prefix; loop once more to stop on non-REX
			}
			if sawSeg {
				*diags = append(*diags, diag.Diagnostic{Kind: diag.DuplicateSegmentPrefix})
			}
			return nil
		}
	}
}

// lookupOpcode dispatches the 0x0F escape, D8-DF FPU escape,
// or the one-byte table with group fallback. groupReg is the ModR/M
// reg field used as a group-table subcode, or -1 if none was consumed
// here (left for parseArgs to read via RM/MEM when the entry wants it).
func lookupOpcode(c *cursor, in *Instruction, mode Mode) (xtab.Entry, int, error) {
	op, err := c.u8()
	if err != nil {
		return xtab.Entry{}, -1, err
	}

	if op == 0x0F {
		return lookup0F(c, in)
	}

	if op >= 0xD8 && op <= 0xDF {
		return lookupFPU(c, in, op)
	}

	var table *[256]xtab.Entry
	if mode == Mode64 {
		table = &xtab.OneByte64
	} else {
		table = &xtab.OneByte32
	}
	e := table[op]
	if e.Valid() {
		return e, -1, nil
	}
	if mode == Mode64 && op == 0x82 {
		return xtab.Entry{}, -1, nil
	}

	// Group fallback: peek the ModR/M reg field without consuming the
	// byte (parseArgs consumes it properly afterward).
	if c.remaining() == 0 {
		return xtab.Entry{}, -1, nil
	}
	reg := int((c.b[c.pos] >> 3) & 7)
	if ge, ok := xtab.Lookup(uint16(op), reg); ok {
		return ge, reg, nil
	}
	return xtab.Entry{}, -1, nil
}

func lookup0F(c *cursor, in *Instruction) (xtab.Entry, int, error) {
	op2, err := c.u8()
	if err != nil {
		return xtab.Entry{}, -1, err
	}

	if op2 == 0x38 || op2 == 0x3A {
		sub, err := c.u8()
		if err != nil {
			return xtab.Entry{}, -1, err
		}
		e, ok := xtab.ThreeByte[xtab.ThreeByteKey{Escape: op2, Subcode: sub}]
		if ok {
			return e, -1, nil
		}
		return xtab.Entry{}, -1, nil
	}

	if op2 == 0x00 || op2 == 0x01 || op2 == 0xBA || op2 == 0xC7 {
		if c.remaining() == 0 {
			return xtab.Entry{}, -1, nil
		}
		reg := int((c.b[c.pos] >> 3) & 7)
		gk := uint16(0x0F00)
		switch op2 {
		case 0x01:
			gk = 0x0F01
		case 0xBA:
			gk = 0x0FBA
		case 0xC7:
			gk = 0x0FC7
		}
		if ge, ok := xtab.Lookup(gk, reg); ok {
			return ge, reg, nil
		}
	}

	// SSE tables selected by the currently active prefix; on a hit,
	// clear the consumed prefix bit.
	if e, ok := sseLookup(op2, in); ok {
		return e, -1, nil
	}

	e, ok := xtab.TwoByte[uint16(op2)]
	if ok {
		return e, -1, nil
	}
	return xtab.Entry{}, -1, nil
}

func sseLookup(op2 byte, in *Instruction) (xtab.Entry, bool) {
	if in.Prefixes&PrefixRepE != 0 {
		if e, ok := xtab.SSERepE[uint16(op2)]; ok {
			in.Prefixes &^= PrefixRepE
			return e, true
		}
	}
	if in.Prefixes&PrefixRepNE != 0 {
		if e, ok := xtab.SSERepNE[uint16(op2)]; ok {
			in.Prefixes &^= PrefixRepNE
			return e, true
		}
	}
	if in.Prefixes&PrefixOperandSize != 0 {
		if e, ok := xtab.SSEOp32[uint16(op2)]; ok {
			in.Prefixes &^= PrefixOperandSize
			return e, true
		}
	}
	if e, ok := xtab.SSEPlain[uint16(op2)]; ok {
		return e, true
	}
	return xtab.Entry{}, false
}

func lookupFPU(c *cursor, in *Instruction, escape byte) (xtab.Entry, int, error) {
	if c.remaining() == 0 {
		return xtab.Entry{}, -1, ErrTruncated
	}
	modrm := c.b[c.pos]
	mod := modrm >> 6
	reg := int((modrm >> 3) & 7)
	row := int(escape - 0xD8)

	if mod < 3 {
		return xtab.FPUMem[row][reg], reg, nil
	}
	if e := xtab.FPUReg[row][reg]; e.Valid() {
		return e, reg, nil
	}
	if e, ok := xtab.FPUSingle[xtab.FPUSingleKey{Escape: escape, ModRM: modrm}]; ok {
		return e, reg, nil
	}
	return xtab.Entry{}, -1, nil
}

// resolveSizes computes the effective operand and address width.
func resolveSizes(in *Instruction, mode Mode) {
	opSize := in.Entry.Size
	if opSize == xtab.SizeResolve {
		opSize = int(mode)
		if mode != Mode16 {
			opSize = 32
		}
		if in.Prefixes&PrefixOperandSize != 0 {
			if opSize == 32 {
				opSize = 16
			} else if opSize == 16 {
				opSize = 32
			}
		}
		if in.Prefixes&PrefixREXW != 0 {
			opSize = 64
		}
		if in.Entry.Flags&(xtab.StackOp|xtab.Default64) != 0 && mode == Mode64 && in.Prefixes&PrefixREXW == 0 && in.Prefixes&PrefixOperandSize == 0 {
			opSize = 64
		}
	}
	in.OpSize = opSize

	addrSize := int(mode)
	if in.Prefixes&PrefixAddressSize != 0 {
		switch mode {
		case Mode16:
			addrSize = 32
		case Mode32:
			addrSize = 16
		case Mode64:
			addrSize = 32
		}
	}
	in.AddrSize = addrSize
}

// checkPrefixLegality raises the non-fatal decoder diagnostics.
func checkPrefixLegality(in *Instruction, e xtab.Entry, diags *[]diag.Diagnostic, ip int) {
	if in.Prefixes&PrefixOperandSize != 0 && e.Size != xtab.SizeResolve && e.Size != 0 {
		*diags = append(*diags, diag.Diagnostic{Kind: diag.OperandSizeOnNonSized, Offset: ip})
	}
	if in.Prefixes&PrefixAddressSize != 0 && !in.UsedMem {
		*diags = append(*diags, diag.Diagnostic{Kind: diag.AddressSizeOnNonMemory, Offset: ip})
	}
	if in.Prefixes&PrefixLock != 0 && e.Flags&xtab.AllowLock == 0 {
		*diags = append(*diags, diag.Diagnostic{Kind: diag.LockNotAllowed, Offset: ip})
	}
	if (in.Prefixes&PrefixRepE != 0 && e.Flags&xtab.AllowRepE == 0) ||
		(in.Prefixes&PrefixRepNE != 0 && e.Flags&xtab.AllowRepNE == 0) {
		*diags = append(*diags, diag.Diagnostic{Kind: diag.RepNotAllowed, Offset: ip})
	}
}
