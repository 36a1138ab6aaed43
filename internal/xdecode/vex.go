package xdecode

import "github.com/xyproto/dismod/internal/xtab"

// tryVEX detects a 0xC4 (three-byte) or 0xC5 (two-byte) VEX prefix.
// In 16/32-bit mode these bytes collide with the legacy
// LES/LDS opcodes, disambiguated by the following byte's mod field
// (mod==3 means VEX; LES/LDS never addresses a register directly). In
// 64-bit mode LES/LDS don't exist, so the bytes are always VEX.
func tryVEX(c *cursor, in *Instruction, mode Mode) (bool, error) {
	if c.remaining() == 0 {
		return false, nil
	}
	b0 := c.b[c.pos]
	if b0 != 0xC4 && b0 != 0xC5 {
		return false, nil
	}
	if mode != Mode64 {
		if c.remaining() < 2 {
			return false, nil
		}
		if c.b[c.pos+1]>>6 != 3 {
			return false, nil
		}
	}

	var mm int // implied escape class: 1=0F, 2=0F38, 3=0F3A
	var vvvv int
	var w bool

	if b0 == 0xC5 {
		c.pos++
		b1, err := c.u8()
		if err != nil {
			return false, err
		}
		mm = 1
		vvvv = int((^b1 >> 3) & 0xF)
		in.VEX.L256 = b1&0x04 != 0
		setVEXPP(in, b1&0x03)
		if b1&0x80 == 0 {
			in.Prefixes |= PrefixREXR
		}
	} else {
		c.pos++
		b1, err := c.u8()
		if err != nil {
			return false, err
		}
		b2, err := c.u8()
		if err != nil {
			return false, err
		}
		mm = int(b1 & 0x1F)
		if b1&0x80 == 0 {
			in.Prefixes |= PrefixREXR
		}
		if b1&0x40 == 0 {
			in.Prefixes |= PrefixREXX
		}
		if b1&0x20 == 0 {
			in.Prefixes |= PrefixREXB
		}
		w = b2&0x80 != 0
		vvvv = int((^b2 >> 3) & 0xF)
		in.VEX.L256 = b2&0x04 != 0
		setVEXPP(in, b2&0x03)
	}

	in.VEX.Present = true
	in.VEX.Reg2 = vvvv
	if w {
		in.Prefixes |= PrefixREXW
	}
	in.vexEscape = mm
	return true, nil
}

func setVEXPP(in *Instruction, pp byte) {
	in.Prefixes &^= PrefixOperandSize | PrefixRepE | PrefixRepNE
	switch pp {
	case 1:
		in.Prefixes |= PrefixOperandSize
	case 2:
		in.Prefixes |= PrefixRepE
	case 3:
		in.Prefixes |= PrefixRepNE
	}
}

// decodeVEXOpcode reads the opcode byte following a VEX prefix and
// looks it up in the same 0F/0F38/0F3A-derived tables the legacy
// escape path uses, selected by the implied pp prefix.
func decodeVEXOpcode(c *cursor, in *Instruction) (xtab.Entry, error) {
	op, err := c.u8()
	if err != nil {
		return xtab.Entry{}, err
	}

	switch in.vexEscape {
	case 2, 3: // 0F38 / 0F3A
		escape := byte(0x38)
		if in.vexEscape == 3 {
			escape = 0x3A
		}
		if e, ok := xtab.ThreeByte[xtab.ThreeByteKey{Escape: escape, Subcode: op}]; ok {
			return e, nil
		}
		return xtab.Entry{}, nil
	default: // 0F
		if e, ok := sseLookup(op, in); ok {
			return e, nil
		}
		if e, ok := xtab.TwoByte[uint16(op)]; ok {
			return e, nil
		}
		return xtab.Entry{}, nil
	}
}
