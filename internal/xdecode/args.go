package xdecode

import "github.com/xyproto/dismod/internal/xtab"

func needsModRM(t xtab.ArgType) bool {
	switch t {
	case xtab.RM, xtab.MEM, xtab.MM, xtab.XM, xtab.MMXONLY, xtab.XMMONLY,
		xtab.REG, xtab.MMX, xtab.XMM, xtab.SEG16, xtab.REG32, xtab.CR32, xtab.DR32, xtab.TR32:
		return true
	}
	return false
}

// parseArgs consumes value bytes for every populated argument slot
// (including the implied third slot from
// Arg2Imm/Arg2Imm8/Arg2CL), in table order. ip is the instruction's
// own offset, needed to compute REL targets.
func parseArgs(c *cursor, in *Instruction, entry xtab.Entry, groupReg int, ip int) error {
	types := make([]xtab.ArgType, 0, 3)
	if entry.Arg0 != xtab.NONE {
		types = append(types, entry.Arg0)
	}
	if entry.Arg1 != xtab.NONE {
		types = append(types, entry.Arg1)
	}
	switch {
	case entry.Flags&xtab.Arg2Imm != 0:
		types = append(types, xtab.IMM)
	case entry.Flags&xtab.Arg2Imm8 != 0:
		types = append(types, xtab.IMM8)
	case entry.Flags&xtab.Arg2CL != 0:
		types = append(types, xtab.CL)
	}

	needModRM := groupReg >= 0
	for _, t := range types {
		if needsModRM(t) {
			needModRM = true
		}
	}

	// REGONLY names the register held in the opcode byte's low 3 bits.
	opcodeReg := 0
	if c.pos > 0 {
		opcodeReg = int(c.b[c.pos-1] & 7)
	}
	if in.Prefixes&PrefixREXB != 0 {
		opcodeReg += 8
	}

	var mr modrmResult
	if needModRM {
		var err error
		mr, err = parseModRM(c, in, in.AddrSize)
		if err != nil {
			return err
		}
		in.ModRMDisp = mr.disp
		in.SIBScale = mr.sibScale
		in.SIBIndex = mr.sibIndex
		in.UsedMem = mr.usedMem
		if mr.disp == DispRegisterDirect {
			in.ModRMReg = mr.rm
		} else {
			in.ModRMReg = mr.rm // -1 absolute, 16 RIP-relative, or base register
		}
	}

	in.NumArgs = len(types)
	for i, t := range types {
		slot := &in.Args[i]
		slot.Type = t
		switch t {
		case xtab.RM, xtab.MEM, xtab.MM, xtab.XM, xtab.MMXONLY, xtab.XMMONLY:
			if mr.disp == DispRegisterDirect {
				slot.Value = uint64(mr.rm)
			} else {
				slot.Value = uint64(mr.dispVal)
				slot.IP = ip + c.pos - dispByteLen(mr.disp, in.AddrSize)
			}
		case xtab.REGONLY:
			slot.Value = uint64(opcodeReg)
			in.ModRMDisp = DispRegisterDirect
		case xtab.REG, xtab.MMX, xtab.XMM, xtab.SEG16, xtab.REG32, xtab.CR32, xtab.DR32, xtab.TR32:
			slot.Value = uint64(mr.reg)
		case xtab.IMM8:
			slot.IP = ip + c.pos
			v, err := c.sized(1, false)
			if err != nil {
				return err
			}
			slot.Value = v
		case xtab.IMM16:
			slot.IP = ip + c.pos
			v, err := c.sized(2, false)
			if err != nil {
				return err
			}
			slot.Value = v
		case xtab.IMM:
			n := immBytes(in.OpSize, entry.Flags&xtab.AllowImm64 != 0)
			slot.IP = ip + c.pos
			v, err := c.sized(n, false)
			if err != nil {
				return err
			}
			slot.Value = v
		case xtab.REL8:
			slot.IP = ip + c.pos
			v, err := c.sized(1, true)
			if err != nil {
				return err
			}
			slot.Value = clipAddr(ip+c.pos+int(int8(v)), in.AddrSize)
		case xtab.REL:
			n := 2
			if in.OpSize != 16 {
				n = 4
			}
			slot.IP = ip + c.pos
			v, err := c.sized(n, true)
			if err != nil {
				return err
			}
			slot.Value = clipAddr(ip+c.pos+int(int64(v)), in.AddrSize)
		case xtab.MOFFS:
			n := in.AddrSize / 8
			slot.IP = ip + c.pos
			v, err := c.sized(n, false)
			if err != nil {
				return err
			}
			slot.Value = v
		case xtab.SEGPTR:
			slot.IP = ip + c.pos
			var offBytes int
			if in.OpSize == 16 {
				offBytes = 2
			} else {
				offBytes = 4
			}
			off, err := c.sized(offBytes, false)
			if err != nil {
				return err
			}
			seg, err := c.u16()
			if err != nil {
				return err
			}
			slot.Value = (uint64(seg) << 32) | off
		case xtab.ST:
			slot.Value = 0
		case xtab.STX:
			slot.Value = uint64(mr.rm & 7)
		default:
			// fixed-register / implicit-operand types (AL, CX, ES,
			// DSBX, ONE, ...) carry no bytes and no variable value.
		}
	}
	return nil
}

func dispByteLen(d DispKind, addrSize int) int {
	switch d {
	case Disp8:
		return 1
	case Disp16Or32:
		if addrSize == 16 {
			return 2
		}
		return 4
	}
	return 0
}

func immBytes(opSize int, allow64 bool) int {
	switch opSize {
	case 8:
		return 1
	case 16:
		return 2
	case 64:
		if allow64 {
			return 8
		}
		return 4
	default:
		return 4
	}
}

func clipAddr(v int, addrSize int) uint64 {
	switch addrSize {
	case 16:
		return uint64(uint16(v))
	case 32:
		return uint64(uint32(v))
	default:
		return uint64(v)
	}
}
